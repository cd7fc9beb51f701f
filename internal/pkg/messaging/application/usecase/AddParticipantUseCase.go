package usecase

import (
	"context"

	messaging "github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/domain"
	storeport "github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/store/port"
)

// AddParticipantInput adds a user to a conversation on behalf of a
// moderator/admin.
type AddParticipantInput struct {
	ConversationID string
	UserID         string
	ActingUserID   string
}

// AddParticipantUseCase registers a new member. The store enforces the
// role requirement and duplicate-membership conflict.
type AddParticipantUseCase struct {
	Store storeport.ConversationStore
}

func NewAddParticipantUseCase(store storeport.ConversationStore) *AddParticipantUseCase {
	return &AddParticipantUseCase{Store: store}
}

func (uc *AddParticipantUseCase) Execute(ctx context.Context, in AddParticipantInput) error {
	if in.ConversationID == "" || in.UserID == "" || in.ActingUserID == "" {
		return messaging.ErrValidation
	}
	return wrapStoreErr(uc.Store.AddParticipant(ctx, in.ConversationID, in.UserID, in.ActingUserID))
}
