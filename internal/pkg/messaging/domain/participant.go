package messaging

import "time"

// ParticipantRole expresses a user's role within a conversation.
type ParticipantRole string

const (
	ParticipantRoleMember    ParticipantRole = "member"
	ParticipantRoleModerator ParticipantRole = "moderator"
	ParticipantRoleAdmin     ParticipantRole = "admin"
)

// CanManageMembers reports whether the role may add or remove participants.
func (r ParticipantRole) CanManageMembers() bool {
	return r == ParticipantRoleModerator || r == ParticipantRoleAdmin
}

// NotifyChannel selects the asynchronous channel used to reach a participant
// when they are offline.
type NotifyChannel string

const (
	NotifyChannelEmail NotifyChannel = "email"
	NotifyChannelPush  NotifyChannel = "push"
	NotifyChannelSMS   NotifyChannel = "sms"
)

// Participant captures membership and read position.
// Primary key: (ConversationID, UserID).
type Participant struct {
	ConversationID string          `db:"conversation_id"`
	UserID         string          `db:"user_id"`
	Role           ParticipantRole `db:"role"`
	JoinedAt       time.Time       `db:"joined_at"`
	LastReadAt     *time.Time      `db:"last_read_at"`
	NotifyVia      NotifyChannel   `db:"notify_via"`
}
