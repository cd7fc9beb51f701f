package usecase

import (
	"context"

	messaging "github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/domain"
	storeport "github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/store/port"
)

// ListConversationsInput pages a user's conversations.
type ListConversationsInput struct {
	UserID string
	Page   int
	Limit  int
	Type   *messaging.ConversationType
	Status messaging.ConversationStatus
}

// ListConversationsUseCase returns the user's conversations, most recently
// updated first.
type ListConversationsUseCase struct {
	Store storeport.ConversationStore
}

func NewListConversationsUseCase(store storeport.ConversationStore) *ListConversationsUseCase {
	return &ListConversationsUseCase{Store: store}
}

func (uc *ListConversationsUseCase) Execute(ctx context.Context, in ListConversationsInput) ([]messaging.Conversation, error) {
	if in.UserID == "" {
		return nil, messaging.ErrValidation
	}
	convs, err := uc.Store.ListForUser(ctx, in.UserID, storeport.ListConversationsFilter{
		Page:   in.Page,
		Limit:  in.Limit,
		Type:   in.Type,
		Status: in.Status,
	})
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return convs, nil
}
