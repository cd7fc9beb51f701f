package port

import (
	"context"

	messaging "github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/domain"
)

// CreateConversationParams carries everything needed to open a conversation.
// For direct conversations ParticipantIDs must hold exactly two users and the
// create is idempotent: an existing active direct conversation between the
// same pair is returned instead of a duplicate.
type CreateConversationParams struct {
	CreatorID      string
	ParticipantIDs []string
	Type           messaging.ConversationType
	Title          *string
	OpportunityID  *string
}

// ListConversationsFilter pages a user's conversations, most recently
// updated first. Status defaults to active when empty.
type ListConversationsFilter struct {
	Page   int
	Limit  int
	Type   *messaging.ConversationType
	Status messaging.ConversationStatus
}

// ConversationStore owns conversation and participant rows and their
// membership invariants. Implementations must return the domain sentinels
// (ErrNotFound, ErrPermissionDenied, ErrConflict, ErrValidation) for caller
// mistakes and plain errors for infrastructure failures.
type ConversationStore interface {
	// Create opens a conversation and registers its participants. The
	// creator of a group or opportunity conversation is made admin.
	Create(ctx context.Context, p CreateConversationParams) (*messaging.Conversation, error)

	// FindDirect looks up the active direct conversation between the
	// unordered pair. It returns (nil, nil) when none exists.
	FindDirect(ctx context.Context, userA, userB string) (*messaging.Conversation, error)

	// ListForUser pages the caller's conversations ordered by UpdatedAt
	// descending.
	ListForUser(ctx context.Context, userID string, f ListConversationsFilter) ([]messaging.Conversation, error)

	// Get returns the conversation. ErrNotFound covers both a missing row
	// and a caller who is not a participant.
	Get(ctx context.Context, conversationID, callerID string) (*messaging.Conversation, error)

	// Participants returns all membership rows for the conversation.
	Participants(ctx context.Context, conversationID string) ([]messaging.Participant, error)

	// AddParticipant requires actingUserID to hold moderator or admin in
	// the conversation; ErrConflict if userID is already a member.
	AddParticipant(ctx context.Context, conversationID, userID, actingUserID string) error

	// RemoveParticipant requires the same role as AddParticipant;
	// ErrConflict if userID is not a member.
	RemoveParticipant(ctx context.Context, conversationID, userID, actingUserID string) error
}
