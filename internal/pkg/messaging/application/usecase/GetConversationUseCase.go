package usecase

import (
	"context"

	messaging "github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/domain"
	storeport "github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/store/port"
)

// GetConversationInput identifies the conversation and the caller.
type GetConversationInput struct {
	ConversationID string
	CallerID       string
}

// GetConversationUseCase fetches one conversation, hiding its existence from
// non-participants.
type GetConversationUseCase struct {
	Store storeport.ConversationStore
}

func NewGetConversationUseCase(store storeport.ConversationStore) *GetConversationUseCase {
	return &GetConversationUseCase{Store: store}
}

func (uc *GetConversationUseCase) Execute(ctx context.Context, in GetConversationInput) (*messaging.Conversation, error) {
	if in.ConversationID == "" || in.CallerID == "" {
		return nil, messaging.ErrValidation
	}
	conv, err := uc.Store.Get(ctx, in.ConversationID, in.CallerID)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return conv, nil
}
