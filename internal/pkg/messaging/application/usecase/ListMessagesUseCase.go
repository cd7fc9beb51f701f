package usecase

import (
	"context"
	"time"

	messaging "github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/domain"
	storeport "github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/store/port"
)

// ListMessagesInput pages a conversation's messages for a caller.
type ListMessagesInput struct {
	ConversationID string
	CallerID       string
	Page           int
	Limit          int
	Before         *time.Time
	After          *time.Time
}

// ListMessagesUseCase fetches messages ascending by ordering key, tombstones
// included.
type ListMessagesUseCase struct {
	Store storeport.MessageStore
}

func NewListMessagesUseCase(store storeport.MessageStore) *ListMessagesUseCase {
	return &ListMessagesUseCase{Store: store}
}

func (uc *ListMessagesUseCase) Execute(ctx context.Context, in ListMessagesInput) ([]messaging.Message, error) {
	if in.ConversationID == "" || in.CallerID == "" {
		return nil, messaging.ErrValidation
	}
	msgs, err := uc.Store.List(ctx, in.ConversationID, in.CallerID, storeport.ListMessagesFilter{
		Page:   in.Page,
		Limit:  in.Limit,
		Before: in.Before,
		After:  in.After,
	})
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return msgs, nil
}
