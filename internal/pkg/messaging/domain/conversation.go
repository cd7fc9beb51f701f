package messaging

import "time"

// ConversationType distinguishes how a conversation was opened.
type ConversationType string

const (
	ConversationTypeDirect      ConversationType = "direct"
	ConversationTypeGroup       ConversationType = "group"
	ConversationTypeOpportunity ConversationType = "opportunity"
)

// ConversationStatus is the lifecycle state of a conversation.
type ConversationStatus string

const (
	ConversationStatusActive   ConversationStatus = "active"
	ConversationStatusArchived ConversationStatus = "archived"
	ConversationStatusDeleted  ConversationStatus = "deleted"
)

// Conversation groups participants and messages. At most one active direct
// conversation may exist per unordered pair of users; direct conversations
// always have exactly two participants.
type Conversation struct {
	ID            string             `db:"id"`
	Type          ConversationType   `db:"type"`
	Title         *string            `db:"title"`
	OpportunityID *string            `db:"opportunity_id"`
	Status        ConversationStatus `db:"status"`
	CreatedAt     time.Time          `db:"created_at"`
	UpdatedAt     time.Time          `db:"updated_at"`
}

// ValidType reports whether t is a known conversation type.
func ValidType(t ConversationType) bool {
	switch t {
	case ConversationTypeDirect, ConversationTypeGroup, ConversationTypeOpportunity:
		return true
	}
	return false
}
