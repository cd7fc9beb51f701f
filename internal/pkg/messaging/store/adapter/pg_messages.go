package adapter

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	messaging "github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/domain"
	storeport "github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/store/port"
)

// PgMessageStore is the Postgres adapter for the message store. The seq
// column is a bigserial; together with created_at it gives every
// conversation a deterministic total order.
type PgMessageStore struct {
	pool *pgxpool.Pool
}

func NewPgMessageStore(pool *pgxpool.Pool) *PgMessageStore {
	return &PgMessageStore{pool: pool}
}

var _ storeport.MessageStore = (*PgMessageStore)(nil)

func (s *PgMessageStore) Append(ctx context.Context, p storeport.AppendMessageParams) (*messaging.Message, error) {
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

	if err := s.requireParticipant(ctx, p.ConversationID, p.SenderID); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO messaging.message (conversation_id, sender_id, content, type, parent_id, status, created_at)
		VALUES ($1::uuid, $2::uuid, $3, $4, $5::uuid, $6, $7)
		RETURNING id::text, seq
	`, msg.ConversationID, msg.SenderID, msg.Content, msg.Type, msg.ParentID, msg.Status, msg.CreatedAt).Scan(&msg.ID, &msg.Seq)
	if err != nil {
		return nil, err
	}

	for i := range msg.Attachments {
		att := &msg.Attachments[i]
		att.MessageID = msg.ID
		err = tx.QueryRow(ctx, `
			INSERT INTO messaging.attachment (message_id, file_name, file_url, file_type, file_size)
			VALUES ($1::uuid, $2, $3, $4, $5)
			RETURNING id::text
		`, att.MessageID, att.FileName, att.FileURL, att.FileType, att.FileSize).Scan(&att.ID)
		if err != nil {
			return nil, err
		}
	}

	if _, err := tx.Exec(ctx, `
		UPDATE messaging.conversation SET updated_at = $2 WHERE id = $1::uuid
	`, msg.ConversationID, msg.CreatedAt); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *PgMessageStore) List(ctx context.Context, conversationID, callerID string, f storeport.ListMessagesFilter) ([]messaging.Message, error) {
	if err := s.requireParticipant(ctx, conversationID, callerID); err != nil {
		return nil, err
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := 0
	if f.Page > 1 {
		offset = (f.Page - 1) * limit
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id::text, conversation_id::text, sender_id::text, content, type, parent_id::text, status, seq, created_at, edited_at, deleted_at
		FROM messaging.message
		WHERE conversation_id = $1::uuid
		  AND ($2::timestamptz IS NULL OR created_at < $2)
		  AND ($3::timestamptz IS NULL OR created_at > $3)
		ORDER BY created_at ASC, seq ASC
		LIMIT $4 OFFSET $5
	`, conversationID, f.Before, f.After, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []messaging.Message
	for rows.Next() {
		var m messaging.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Content, &m.Type, &m.ParentID, &m.Status, &m.Seq, &m.CreatedAt, &m.EditedAt, &m.DeletedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.loadAttachments(ctx, msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (s *PgMessageStore) MarkRead(ctx context.Context, conversationID, callerID string) (int64, error) {
	if err := s.requireParticipant(ctx, conversationID, callerID); err != nil {
		return 0, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		UPDATE messaging.participant SET last_read_at = $3
		WHERE conversation_id = $1::uuid AND user_id = $2::uuid
	`, conversationID, callerID, time.Now().UTC()); err != nil {
		return 0, err
	}

	ct, err := tx.Exec(ctx, `
		UPDATE messaging.message SET status = 'read'
		WHERE conversation_id = $1::uuid AND sender_id <> $2::uuid AND status = 'sent'
	`, conversationID, callerID)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

func (s *PgMessageStore) Edit(ctx context.Context, messageID, callerID, newContent string) (*messaging.Message, error) {
	return s.mutate(ctx, messageID, callerID, func(tx pgx.Tx, m *messaging.Message) error {
		if m.Deleted() {
			return messaging.ErrConflict
		}
		now := time.Now().UTC()
		content := strings.TrimSpace(newContent)
		m.Content = content
		m.EditedAt = &now
		_, err := tx.Exec(ctx, `
			UPDATE messaging.message SET content = $2, edited_at = $3 WHERE id = $1::uuid
		`, messageID, content, now)
		return err
	})
}

func (s *PgMessageStore) SoftDelete(ctx context.Context, messageID, callerID string) (*messaging.Message, error) {
	return s.mutate(ctx, messageID, callerID, func(tx pgx.Tx, m *messaging.Message) error {
		if m.Deleted() {
			return messaging.ErrConflict
		}
		now := time.Now().UTC()
		m.Content = messaging.Tombstone
		m.DeletedAt = &now
		_, err := tx.Exec(ctx, `
			UPDATE messaging.message SET content = $2, deleted_at = $3 WHERE id = $1::uuid
		`, messageID, messaging.Tombstone, now)
		return err
	})
}

func (s *PgMessageStore) UnreadBacklogs(ctx context.Context, olderThan time.Time) ([]storeport.UnreadBacklog, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT m.conversation_id::text, p.user_id::text, COUNT(*), MIN(m.created_at)
		FROM messaging.message m
		JOIN messaging.participant p ON p.conversation_id = m.conversation_id
		WHERE m.status = 'sent'
		  AND m.sender_id <> p.user_id
		  AND (p.last_read_at IS NULL OR m.created_at > p.last_read_at)
		GROUP BY m.conversation_id, p.user_id
		HAVING MIN(m.created_at) < $1
	`, olderThan)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var backlogs []storeport.UnreadBacklog
	for rows.Next() {
		var b storeport.UnreadBacklog
		if err := rows.Scan(&b.ConversationID, &b.UserID, &b.Unread, &b.OldestUnread); err != nil {
			return nil, err
		}
		backlogs = append(backlogs, b)
	}
	return backlogs, rows.Err()
}

// mutate loads the message under a row lock, applies the author-only rule,
// and runs fn inside the transaction.
func (s *PgMessageStore) mutate(ctx context.Context, messageID, callerID string, fn func(pgx.Tx, *messaging.Message) error) (*messaging.Message, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var m messaging.Message
	err = tx.QueryRow(ctx, `
		SELECT id::text, conversation_id::text, sender_id::text, content, type, parent_id::text, status, seq, created_at, edited_at, deleted_at
		FROM messaging.message
		WHERE id = $1::uuid
		FOR UPDATE
	`, messageID).Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Content, &m.Type, &m.ParentID, &m.Status, &m.Seq, &m.CreatedAt, &m.EditedAt, &m.DeletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, messaging.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if m.SenderID != callerID {
		return nil, messaging.ErrPermissionDenied
	}

	if err := fn(tx, &m); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *PgMessageStore) requireParticipant(ctx context.Context, conversationID, userID string) error {
	var ok bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM messaging.participant
			WHERE conversation_id = $1::uuid AND user_id = $2::uuid
		)
	`, conversationID, userID).Scan(&ok)
	if err != nil {
		return err
	}
	if !ok {
		return messaging.ErrPermissionDenied
	}
	return nil
}

func (s *PgMessageStore) loadAttachments(ctx context.Context, msgs []messaging.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	ids := make([]string, len(msgs))
	index := make(map[string]*messaging.Message, len(msgs))
	for i := range msgs {
		ids[i] = msgs[i].ID
		index[msgs[i].ID] = &msgs[i]
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id::text, message_id::text, file_name, file_url, file_type, file_size
		FROM messaging.attachment
		WHERE message_id = ANY($1::uuid[])
	`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var att messaging.Attachment
		if err := rows.Scan(&att.ID, &att.MessageID, &att.FileName, &att.FileURL, &att.FileType, &att.FileSize); err != nil {
			return err
		}
		if m, ok := index[att.MessageID]; ok {
			m.Attachments = append(m.Attachments, att)
		}
	}
	return rows.Err()
}
