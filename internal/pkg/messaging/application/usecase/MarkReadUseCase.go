package usecase

import (
	"context"

	messaging "github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/domain"
	storeport "github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/store/port"
)

// MarkReadInput records the caller's read position in a conversation.
type MarkReadInput struct {
	ConversationID string
	CallerID       string
}

// MarkReadUseCase advances the caller's read position and bulk-transitions
// other senders' messages from sent to read.
type MarkReadUseCase struct {
	Store storeport.MessageStore
}

func NewMarkReadUseCase(store storeport.MessageStore) *MarkReadUseCase {
	return &MarkReadUseCase{Store: store}
}

func (uc *MarkReadUseCase) Execute(ctx context.Context, in MarkReadInput) (int64, error) {
	if in.ConversationID == "" || in.CallerID == "" {
		return 0, messaging.ErrValidation
	}
	n, err := uc.Store.MarkRead(ctx, in.ConversationID, in.CallerID)
	if err != nil {
		return 0, wrapStoreErr(err)
	}
	return n, nil
}
