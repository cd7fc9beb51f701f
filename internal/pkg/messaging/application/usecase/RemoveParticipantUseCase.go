package usecase

import (
	"context"

	messaging "github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/domain"
	storeport "github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/store/port"
)

// RemoveParticipantInput removes a member on behalf of a moderator/admin.
type RemoveParticipantInput struct {
	ConversationID string
	UserID         string
	ActingUserID   string
}

// RemoveParticipantUseCase drops a member. The store enforces the role
// requirement and the not-a-member conflict.
type RemoveParticipantUseCase struct {
	Store storeport.ConversationStore
}

func NewRemoveParticipantUseCase(store storeport.ConversationStore) *RemoveParticipantUseCase {
	return &RemoveParticipantUseCase{Store: store}
}

func (uc *RemoveParticipantUseCase) Execute(ctx context.Context, in RemoveParticipantInput) error {
	if in.ConversationID == "" || in.UserID == "" || in.ActingUserID == "" {
		return messaging.ErrValidation
	}
	return wrapStoreErr(uc.Store.RemoveParticipant(ctx, in.ConversationID, in.UserID, in.ActingUserID))
}
