package adapter

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	messaging "github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/domain"
	storeport "github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/store/port"
)

// MemoryStore implements both store ports in process memory. Conversations
// and messages share one lock because append touches the conversation's
// UpdatedAt and markRead touches the participant row.
type MemoryStore struct {
	mu            sync.Mutex
	conversations map[string]*messaging.Conversation
	participants  map[string][]*messaging.Participant // conversationID -> members
	messages      map[string][]*messaging.Message     // conversationID -> append order
	byMessageID   map[string]*messaging.Message
	seq           int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		conversations: make(map[string]*messaging.Conversation),
		participants:  make(map[string][]*messaging.Participant),
		messages:      make(map[string][]*messaging.Message),
		byMessageID:   make(map[string]*messaging.Message),
	}
}

var (
	_ storeport.ConversationStore = (*MemoryStore)(nil)
	_ storeport.MessageStore      = (*MemoryStore)(nil)
)

func (s *MemoryStore) Create(ctx context.Context, p storeport.CreateConversationParams) (*messaging.Conversation, error) {
	if !messaging.ValidType(p.Type) || len(p.ParticipantIDs) == 0 {
		return nil, messaging.ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if p.Type == messaging.ConversationTypeDirect {
		if len(p.ParticipantIDs) != 2 || p.ParticipantIDs[0] == p.ParticipantIDs[1] {
			return nil, messaging.ErrValidation
		}
		if existing := s.findDirectLocked(p.ParticipantIDs[0], p.ParticipantIDs[1]); existing != nil {
			out := *existing
			return &out, nil
		}
	}

	now := time.Now().UTC()
	conv := &messaging.Conversation{
		ID:            uuid.NewString(),
		Type:          p.Type,
		Title:         p.Title,
		OpportunityID: p.OpportunityID,
		Status:        messaging.ConversationStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.conversations[conv.ID] = conv

	for _, uid := range p.ParticipantIDs {
		if uid == "" {
			continue
		}
		role := messaging.ParticipantRoleMember
		if uid == p.CreatorID && p.Type != messaging.ConversationTypeDirect {
			role = messaging.ParticipantRoleAdmin
		}
		s.participants[conv.ID] = append(s.participants[conv.ID], &messaging.Participant{
			ConversationID: conv.ID,
			UserID:         uid,
			Role:           role,
			JoinedAt:       now,
			NotifyVia:      messaging.NotifyChannelEmail,
		})
	}

	out := *conv
	return &out, nil
}

func (s *MemoryStore) FindDirect(ctx context.Context, userA, userB string) (*messaging.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if conv := s.findDirectLocked(userA, userB); conv != nil {
		out := *conv
		return &out, nil
	}
	return nil, nil
}

func (s *MemoryStore) findDirectLocked(userA, userB string) *messaging.Conversation {
	for id, conv := range s.conversations {
		if conv.Type != messaging.ConversationTypeDirect || conv.Status != messaging.ConversationStatusActive {
			continue
		}
		members := s.participants[id]
		if len(members) != 2 {
			continue
		}
		a, b := members[0].UserID, members[1].UserID
		if (a == userA && b == userB) || (a == userB && b == userA) {
			return conv
		}
	}
	return nil
}

func (s *MemoryStore) ListForUser(ctx context.Context, userID string, f storeport.ListConversationsFilter) ([]messaging.Conversation, error) {
	status := f.Status
	if status == "" {
		status = messaging.ConversationStatusActive
	}

	s.mu.Lock()
	var convs []messaging.Conversation
	for id, conv := range s.conversations {
		if conv.Status != status {
			continue
		}
		if f.Type != nil && conv.Type != *f.Type {
			continue
		}
		if s.memberLocked(id, userID) == nil {
			continue
		}
		convs = append(convs, *conv)
	}
	s.mu.Unlock()

	sort.Slice(convs, func(i, j int) bool {
		return convs[i].UpdatedAt.After(convs[j].UpdatedAt)
	})
	return page(convs, f.Page, f.Limit, 20), nil
}

func (s *MemoryStore) Get(ctx context.Context, conversationID, callerID string) (*messaging.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.conversations[conversationID]
	if !ok || s.memberLocked(conversationID, callerID) == nil {
		return nil, messaging.ErrNotFound
	}
	out := *conv
	return &out, nil
}

func (s *MemoryStore) Participants(ctx context.Context, conversationID string) ([]messaging.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	members := make([]messaging.Participant, 0, len(s.participants[conversationID]))
	for _, p := range s.participants[conversationID] {
		members = append(members, *p)
	}
	return members, nil
}

func (s *MemoryStore) AddParticipant(ctx context.Context, conversationID, userID, actingUserID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireManagerLocked(conversationID, actingUserID); err != nil {
		return err
	}
	if s.memberLocked(conversationID, userID) != nil {
		return messaging.ErrConflict
	}
	s.participants[conversationID] = append(s.participants[conversationID], &messaging.Participant{
		ConversationID: conversationID,
		UserID:         userID,
		Role:           messaging.ParticipantRoleMember,
		JoinedAt:       time.Now().UTC(),
		NotifyVia:      messaging.NotifyChannelEmail,
	})
	return nil
}

func (s *MemoryStore) RemoveParticipant(ctx context.Context, conversationID, userID, actingUserID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireManagerLocked(conversationID, actingUserID); err != nil {
		return err
	}
	members := s.participants[conversationID]
	for i, p := range members {
		if p.UserID == userID {
			s.participants[conversationID] = append(members[:i], members[i+1:]...)
			return nil
		}
	}
	return messaging.ErrConflict
}

func (s *MemoryStore) Append(ctx context.Context, p storeport.AppendMessageParams) (*messaging.Message, error) {
	if len(p.Attachments) > messaging.MaxAttachmentsPerMessage {
		return nil, messaging.ErrValidation
	}
	msg, err := messaging.NewMessage(messaging.Message{
		ConversationID: p.ConversationID,
		SenderID:       p.SenderID,
		Content:        p.Content,
		Type:           p.Type,
		ParentID:       p.ParentID,
		Attachments:    p.Attachments,
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[p.ConversationID]
	if !ok || s.memberLocked(p.ConversationID, p.SenderID) == nil {
		return nil, messaging.ErrPermissionDenied
	}

	s.seq++
	msg.ID = uuid.NewString()
	msg.Seq = s.seq
	for i := range msg.Attachments {
		msg.Attachments[i].ID = uuid.NewString()
		msg.Attachments[i].MessageID = msg.ID
	}

	s.messages[p.ConversationID] = append(s.messages[p.ConversationID], msg)
	s.byMessageID[msg.ID] = msg
	conv.UpdatedAt = msg.CreatedAt

	out := *msg
	return &out, nil
}

func (s *MemoryStore) List(ctx context.Context, conversationID, callerID string, f storeport.ListMessagesFilter) ([]messaging.Message, error) {
	s.mu.Lock()
	if s.memberLocked(conversationID, callerID) == nil {
		s.mu.Unlock()
		return nil, messaging.ErrPermissionDenied
	}
	var msgs []messaging.Message
	for _, m := range s.messages[conversationID] {
		if f.Before != nil && !m.CreatedAt.Before(*f.Before) {
			continue
		}
		if f.After != nil && !m.CreatedAt.After(*f.After) {
			continue
		}
		msgs = append(msgs, *m)
	}
	s.mu.Unlock()

	sort.Slice(msgs, func(i, j int) bool {
		if msgs[i].CreatedAt.Equal(msgs[j].CreatedAt) {
			return msgs[i].Seq < msgs[j].Seq
		}
		return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
	})
	return page(msgs, f.Page, f.Limit, 50), nil
}

func (s *MemoryStore) MarkRead(ctx context.Context, conversationID, callerID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	member := s.memberLocked(conversationID, callerID)
	if member == nil {
		return 0, messaging.ErrPermissionDenied
	}
	now := time.Now().UTC()
	member.LastReadAt = &now

	var n int64
	for _, m := range s.messages[conversationID] {
		if m.SenderID != callerID && m.Status == messaging.MessageStatusSent {
			m.Status = messaging.MessageStatusRead
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) Edit(ctx context.Context, messageID, callerID, newContent string) (*messaging.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.authorMessageLocked(messageID, callerID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	m.Content = strings.TrimSpace(newContent)
	m.EditedAt = &now
	out := *m
	return &out, nil
}

func (s *MemoryStore) SoftDelete(ctx context.Context, messageID, callerID string) (*messaging.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.authorMessageLocked(messageID, callerID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	m.Content = messaging.Tombstone
	m.DeletedAt = &now
	out := *m
	return &out, nil
}

func (s *MemoryStore) UnreadBacklogs(ctx context.Context, olderThan time.Time) ([]storeport.UnreadBacklog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var backlogs []storeport.UnreadBacklog
	for convID, members := range s.participants {
		for _, p := range members {
			var count int
			var oldest time.Time
			for _, m := range s.messages[convID] {
				if m.SenderID == p.UserID || m.Status != messaging.MessageStatusSent {
					continue
				}
				if p.LastReadAt != nil && !m.CreatedAt.After(*p.LastReadAt) {
					continue
				}
				if count == 0 || m.CreatedAt.Before(oldest) {
					oldest = m.CreatedAt
				}
				count++
			}
			if count > 0 && oldest.Before(olderThan) {
				backlogs = append(backlogs, storeport.UnreadBacklog{
					ConversationID: convID,
					UserID:         p.UserID,
					Unread:         count,
					OldestUnread:   oldest,
				})
			}
		}
	}
	return backlogs, nil
}

func (s *MemoryStore) authorMessageLocked(messageID, callerID string) (*messaging.Message, error) {
	m, ok := s.byMessageID[messageID]
	if !ok {
		return nil, messaging.ErrNotFound
	}
	if m.SenderID != callerID {
		return nil, messaging.ErrPermissionDenied
	}
	if m.Deleted() {
		return nil, messaging.ErrConflict
	}
	return m, nil
}

func (s *MemoryStore) requireManagerLocked(conversationID, actingUserID string) error {
	p := s.memberLocked(conversationID, actingUserID)
	if p == nil {
		return messaging.ErrPermissionDenied
	}
	if !p.Role.CanManageMembers() {
		return messaging.ErrPermissionDenied
	}
	return nil
}

func (s *MemoryStore) memberLocked(conversationID, userID string) *messaging.Participant {
	for _, p := range s.participants[conversationID] {
		if p.UserID == userID {
			return p
		}
	}
	return nil
}

func page[T any](items []T, pageNum, limit, defaultLimit int) []T {
	if limit <= 0 {
		limit = defaultLimit
	}
	offset := 0
	if pageNum > 1 {
		offset = (pageNum - 1) * limit
	}
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
