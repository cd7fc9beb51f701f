package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	cacheport "github.com/utkogui/voluntariado-sub002/internal/infrastructure/cache/port"
	messaging "github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/domain"
	storeport "github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/store/port"
)

const (
	participantCacheTTL    = 30 * time.Second
	participantCachePrefix = "messaging:participants:"
)

// PgConversationStore is the Postgres adapter for the conversation store.
// Participant lists are hot on every fan-out and delivery decision, so they
// are cached with a short TTL when a cache is provided.
type PgConversationStore struct {
	pool  *pgxpool.Pool
	cache cacheport.Cache
}

// NewPgConversationStore builds the adapter. cache may be nil.
func NewPgConversationStore(pool *pgxpool.Pool, cache cacheport.Cache) *PgConversationStore {
	return &PgConversationStore{pool: pool, cache: cache}
}

var _ storeport.ConversationStore = (*PgConversationStore)(nil)

func (s *PgConversationStore) Create(ctx context.Context, p storeport.CreateConversationParams) (*messaging.Conversation, error) {
	if !messaging.ValidType(p.Type) || len(p.ParticipantIDs) == 0 {
		return nil, messaging.ErrValidation
	}
	if p.Type == messaging.ConversationTypeDirect {
		if len(p.ParticipantIDs) != 2 || p.ParticipantIDs[0] == p.ParticipantIDs[1] {
			return nil, messaging.ErrValidation
		}
		existing, err := s.FindDirect(ctx, p.ParticipantIDs[0], p.ParticipantIDs[1])
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}

	conv, err := s.insert(ctx, p)
	if err == nil {
		return conv, nil
	}

	// Lost a race on the unique active-direct-pair index: return the winner.
	var pgErr *pgconn.PgError
	if p.Type == messaging.ConversationTypeDirect && errors.As(err, &pgErr) && pgErr.Code == "23505" {
		existing, findErr := s.FindDirect(ctx, p.ParticipantIDs[0], p.ParticipantIDs[1])
		if findErr == nil && existing != nil {
			return existing, nil
		}
	}
	return nil, err
}

func (s *PgConversationStore) insert(ctx context.Context, p storeport.CreateConversationParams) (*messaging.Conversation, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	conv := messaging.Conversation{
		Type:          p.Type,
		Title:         p.Title,
		OpportunityID: p.OpportunityID,
		Status:        messaging.ConversationStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO messaging.conversation (type, title, opportunity_id, status, created_at, updated_at, direct_key)
		VALUES ($1, $2, NULLIF($3, '')::uuid, $4, $5, $5, NULLIF($6, ''))
		RETURNING id::text
	`, conv.Type, conv.Title, deref(p.OpportunityID), conv.Status, now, directKey(p)).Scan(&conv.ID)
	if err != nil {
		return nil, err
	}

	for _, uid := range p.ParticipantIDs {
		if uid == "" {
			continue
		}
		role := messaging.ParticipantRoleMember
		if uid == p.CreatorID && p.Type != messaging.ConversationTypeDirect {
			role = messaging.ParticipantRoleAdmin
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO messaging.participant (conversation_id, user_id, role, joined_at, notify_via)
			VALUES ($1::uuid, $2::uuid, $3, $4, $5)
		`, conv.ID, uid, role, now, messaging.NotifyChannelEmail); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &conv, nil
}

func (s *PgConversationStore) FindDirect(ctx context.Context, userA, userB string) (*messaging.Conversation, error) {
	var conv messaging.Conversation
	err := s.pool.QueryRow(ctx, `
		SELECT c.id::text, c.type, c.title, c.opportunity_id::text, c.status, c.created_at, c.updated_at
		FROM messaging.conversation c
		JOIN messaging.participant pa ON pa.conversation_id = c.id AND pa.user_id = $1::uuid
		JOIN messaging.participant pb ON pb.conversation_id = c.id AND pb.user_id = $2::uuid
		WHERE c.type = 'direct' AND c.status = 'active'
		LIMIT 1
	`, userA, userB).Scan(&conv.ID, &conv.Type, &conv.Title, &conv.OpportunityID, &conv.Status, &conv.CreatedAt, &conv.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (s *PgConversationStore) ListForUser(ctx context.Context, userID string, f storeport.ListConversationsFilter) ([]messaging.Conversation, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if f.Page > 1 {
		offset = (f.Page - 1) * limit
	}
	status := f.Status
	if status == "" {
		status = messaging.ConversationStatusActive
	}

	rows, err := s.pool.Query(ctx, `
		SELECT c.id::text, c.type, c.title, c.opportunity_id::text, c.status, c.created_at, c.updated_at
		FROM messaging.conversation c
		JOIN messaging.participant p ON p.conversation_id = c.id
		WHERE p.user_id = $1::uuid
		  AND c.status = $2
		  AND ($3::text IS NULL OR c.type = $3)
		ORDER BY c.updated_at DESC
		LIMIT $4 OFFSET $5
	`, userID, status, typeFilter(f.Type), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var convs []messaging.Conversation
	for rows.Next() {
		var conv messaging.Conversation
		if err := rows.Scan(&conv.ID, &conv.Type, &conv.Title, &conv.OpportunityID, &conv.Status, &conv.CreatedAt, &conv.UpdatedAt); err != nil {
			return nil, err
		}
		convs = append(convs, conv)
	}
	return convs, rows.Err()
}

func (s *PgConversationStore) Get(ctx context.Context, conversationID, callerID string) (*messaging.Conversation, error) {
	var conv messaging.Conversation
	err := s.pool.QueryRow(ctx, `
		SELECT c.id::text, c.type, c.title, c.opportunity_id::text, c.status, c.created_at, c.updated_at
		FROM messaging.conversation c
		JOIN messaging.participant p ON p.conversation_id = c.id AND p.user_id = $2::uuid
		WHERE c.id = $1::uuid
	`, conversationID, callerID).Scan(&conv.ID, &conv.Type, &conv.Title, &conv.OpportunityID, &conv.Status, &conv.CreatedAt, &conv.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, messaging.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (s *PgConversationStore) Participants(ctx context.Context, conversationID string) ([]messaging.Participant, error) {
	if cached, ok := s.cachedParticipants(ctx, conversationID); ok {
		return cached, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT conversation_id::text, user_id::text, role, joined_at, last_read_at, notify_via
		FROM messaging.participant
		WHERE conversation_id = $1::uuid
	`, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []messaging.Participant
	for rows.Next() {
		var p messaging.Participant
		if err := rows.Scan(&p.ConversationID, &p.UserID, &p.Role, &p.JoinedAt, &p.LastReadAt, &p.NotifyVia); err != nil {
			return nil, err
		}
		members = append(members, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	s.storeParticipants(ctx, conversationID, members)
	return members, nil
}

func (s *PgConversationStore) AddParticipant(ctx context.Context, conversationID, userID, actingUserID string) error {
	if err := s.requireManager(ctx, conversationID, actingUserID); err != nil {
		return err
	}

	ct, err := s.pool.Exec(ctx, `
		INSERT INTO messaging.participant (conversation_id, user_id, role, joined_at, notify_via)
		VALUES ($1::uuid, $2::uuid, $3, $4, $5)
		ON CONFLICT (conversation_id, user_id) DO NOTHING
	`, conversationID, userID, messaging.ParticipantRoleMember, time.Now().UTC(), messaging.NotifyChannelEmail)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return messaging.ErrConflict
	}
	s.invalidateParticipants(ctx, conversationID)
	return nil
}

func (s *PgConversationStore) RemoveParticipant(ctx context.Context, conversationID, userID, actingUserID string) error {
	if err := s.requireManager(ctx, conversationID, actingUserID); err != nil {
		return err
	}

	ct, err := s.pool.Exec(ctx, `
		DELETE FROM messaging.participant
		WHERE conversation_id = $1::uuid AND user_id = $2::uuid
	`, conversationID, userID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return messaging.ErrConflict
	}
	s.invalidateParticipants(ctx, conversationID)
	return nil
}

func (s *PgConversationStore) requireManager(ctx context.Context, conversationID, actingUserID string) error {
	var role messaging.ParticipantRole
	err := s.pool.QueryRow(ctx, `
		SELECT role FROM messaging.participant
		WHERE conversation_id = $1::uuid AND user_id = $2::uuid
	`, conversationID, actingUserID).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return messaging.ErrPermissionDenied
	}
	if err != nil {
		return err
	}
	if !role.CanManageMembers() {
		return messaging.ErrPermissionDenied
	}
	return nil
}

func (s *PgConversationStore) cachedParticipants(ctx context.Context, conversationID string) ([]messaging.Participant, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, participantCachePrefix+conversationID)
	if err != nil {
		return nil, false
	}
	var members []messaging.Participant
	if err := json.Unmarshal([]byte(raw), &members); err != nil {
		return nil, false
	}
	return members, true
}

func (s *PgConversationStore) storeParticipants(ctx context.Context, conversationID string, members []messaging.Participant) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(members)
	if err != nil {
		return
	}
	_ = s.cache.Set(ctx, participantCachePrefix+conversationID, string(raw), participantCacheTTL)
}

func (s *PgConversationStore) invalidateParticipants(ctx context.Context, conversationID string) {
	if s.cache == nil {
		return
	}
	_, _ = s.cache.Del(ctx, participantCachePrefix+conversationID)
}

// directKey builds the unordered-pair key backing the unique
// active-direct-pair index. Empty for non-direct conversations.
func directKey(p storeport.CreateConversationParams) string {
	if p.Type != messaging.ConversationTypeDirect || len(p.ParticipantIDs) != 2 {
		return ""
	}
	a, b := p.ParticipantIDs[0], p.ParticipantIDs[1]
	if b < a {
		a, b = b, a
	}
	return a + ":" + b
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func typeFilter(t *messaging.ConversationType) *string {
	if t == nil {
		return nil
	}
	v := string(*t)
	return &v
}
