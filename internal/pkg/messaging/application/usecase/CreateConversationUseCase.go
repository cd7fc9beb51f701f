package usecase

import (
	"context"

	messaging "github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/domain"
	storeport "github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/store/port"
)

// CreateConversationInput carries the data to open a conversation. The
// creator must appear in ParticipantIDs.
type CreateConversationInput struct {
	CreatorID      string
	ParticipantIDs []string
	Type           messaging.ConversationType
	Title          *string
	OpportunityID  *string
}

// CreateConversationUseCase opens a conversation. Direct creates are
// idempotent: the existing active conversation between the pair is returned
// instead of a duplicate.
type CreateConversationUseCase struct {
	Store storeport.ConversationStore
}

func NewCreateConversationUseCase(store storeport.ConversationStore) *CreateConversationUseCase {
	return &CreateConversationUseCase{Store: store}
}

func (uc *CreateConversationUseCase) Execute(ctx context.Context, in CreateConversationInput) (*messaging.Conversation, error) {
	if in.CreatorID == "" || len(in.ParticipantIDs) == 0 {
		return nil, messaging.ErrValidation
	}
	creatorIncluded := false
	for _, id := range in.ParticipantIDs {
		if id == in.CreatorID {
			creatorIncluded = true
			break
		}
	}
	if !creatorIncluded {
		return nil, messaging.ErrValidation
	}

	conv, err := uc.Store.Create(ctx, storeport.CreateConversationParams{
		CreatorID:      in.CreatorID,
		ParticipantIDs: in.ParticipantIDs,
		Type:           in.Type,
		Title:          in.Title,
		OpportunityID:  in.OpportunityID,
	})
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return conv, nil
}
