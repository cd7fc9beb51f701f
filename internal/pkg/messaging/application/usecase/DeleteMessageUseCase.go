package usecase

import (
	"context"

	messaging "github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/domain"
	storeport "github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/store/port"
)

// DeleteMessageInput tombstones a message on behalf of its author.
type DeleteMessageInput struct {
	MessageID string
	CallerID  string
}

// DeleteMessageUseCase soft-deletes a message. The tombstone is terminal:
// later edits and deletes fail with a conflict.
type DeleteMessageUseCase struct {
	Store storeport.MessageStore
}

func NewDeleteMessageUseCase(store storeport.MessageStore) *DeleteMessageUseCase {
	return &DeleteMessageUseCase{Store: store}
}

func (uc *DeleteMessageUseCase) Execute(ctx context.Context, in DeleteMessageInput) (*messaging.Message, error) {
	if in.MessageID == "" || in.CallerID == "" {
		return nil, messaging.ErrValidation
	}
	msg, err := uc.Store.SoftDelete(ctx, in.MessageID, in.CallerID)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return msg, nil
}
