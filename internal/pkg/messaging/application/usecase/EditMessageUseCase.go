package usecase

import (
	"context"
	"strings"

	messaging "github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/domain"
	storeport "github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/store/port"
)

// EditMessageInput replaces a message's content on behalf of its author.
type EditMessageInput struct {
	MessageID string
	CallerID  string
	Content   string
}

// EditMessageUseCase edits a message. Only the original sender may edit, and
// never after the message was tombstoned.
type EditMessageUseCase struct {
	Store storeport.MessageStore
}

func NewEditMessageUseCase(store storeport.MessageStore) *EditMessageUseCase {
	return &EditMessageUseCase{Store: store}
}

func (uc *EditMessageUseCase) Execute(ctx context.Context, in EditMessageInput) (*messaging.Message, error) {
	if in.MessageID == "" || in.CallerID == "" || strings.TrimSpace(in.Content) == "" {
		return nil, messaging.ErrValidation
	}
	msg, err := uc.Store.Edit(ctx, in.MessageID, in.CallerID, in.Content)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return msg, nil
}
