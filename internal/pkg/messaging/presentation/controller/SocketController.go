package controller

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	identityport "github.com/utkogui/voluntariado-sub002/internal/infrastructure/identity/port"
	"github.com/utkogui/voluntariado-sub002/internal/infrastructure/realtime"
	"github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/application/usecase"
	"github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/delivery"
	messaging "github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/domain"
	storeport "github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/store/port"
)

const (
	defaultReadTimeout = 60 * time.Second
	inflightTimeout    = 5 * time.Second

	// subscribeLimit caps how many rooms a fresh connection auto-joins.
	subscribeLimit = 200
)

// SocketController handles the websocket endpoint for realtime messaging.
// Each connection is one handler goroutine reading frames sequentially, so a
// client's own actions are never reordered; different connections proceed in
// parallel. The only blocking step per event is the durable store call;
// fan-out and presence are local.
type SocketController struct {
	hub      *realtime.Hub
	verifier identityport.Verifier
	delivery *delivery.Coordinator
	log      *slog.Logger

	listConvsUC *usecase.ListConversationsUseCase
	getConvUC   *usecase.GetConversationUseCase
	sendUC      *usecase.SendMessageUseCase
	markReadUC  *usecase.MarkReadUseCase
	editUC      *usecase.EditMessageUseCase
	deleteUC    *usecase.DeleteMessageUseCase
}

// NewSocketController wires the gateway against the stores, hub, identity
// verifier and delivery coordinator.
func NewSocketController(
	conversations storeport.ConversationStore,
	messages storeport.MessageStore,
	hub *realtime.Hub,
	verifier identityport.Verifier,
	coordinator *delivery.Coordinator,
	log *slog.Logger,
) *SocketController {
	return &SocketController{
		hub:         hub,
		verifier:    verifier,
		delivery:    coordinator,
		log:         log,
		listConvsUC: usecase.NewListConversationsUseCase(conversations),
		getConvUC:   usecase.NewGetConversationUseCase(conversations),
		sendUC:      usecase.NewSendMessageUseCase(messages),
		markReadUC:  usecase.NewMarkReadUseCase(messages),
		editUC:      usecase.NewEditMessageUseCase(messages),
		deleteUC:    usecase.NewDeleteMessageUseCase(messages),
	}
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Browser clients are served from several platform domains; origin
		// enforcement happens at the edge proxy.
		return true
	},
}

type attachmentPayload struct {
	FileName string `json:"file_name"`
	FileURL  string `json:"file_url"`
	FileType string `json:"file_type"`
	FileSize int64  `json:"file_size"`
}

type inboundEvent struct {
	Event          string              `json:"event"`
	ConversationID string              `json:"conversation_id,omitempty"`
	MessageID      string              `json:"message_id,omitempty"`
	Content        string              `json:"content,omitempty"`
	Type           string              `json:"type,omitempty"`
	ParentID       *string             `json:"parent_id,omitempty"`
	Attachments    []attachmentPayload `json:"attachments,omitempty"`
}

type errorEvent struct {
	Event          string `json:"event"`
	ConversationID string `json:"conversation_id,omitempty"`
	MessageID      string `json:"message_id,omitempty"`
	Code           string `json:"code"`
	Error          string `json:"error"`
}

type ackEvent struct {
	Event          string `json:"event"`
	ConversationID string `json:"conversation_id,omitempty"`
}

type messageEvent struct {
	Event          string         `json:"event"`
	ConversationID string         `json:"conversation_id"`
	Message        messageSummary `json:"message"`
}

type memberEvent struct {
	Event          string `json:"event"`
	ConversationID string `json:"conversation_id"`
	UserID         string `json:"user_id"`
	IsTyping       *bool  `json:"is_typing,omitempty"`
}

type deletedEvent struct {
	Event          string `json:"event"`
	MessageID      string `json:"message_id"`
	ConversationID string `json:"conversation_id"`
}

type messageSummary struct {
	ID             string              `json:"id"`
	ConversationID string              `json:"conversation_id"`
	SenderID       string              `json:"sender_id"`
	Content        string              `json:"content"`
	Type           string              `json:"type"`
	ParentID       *string             `json:"parent_id,omitempty"`
	Status         string              `json:"status"`
	Seq            int64               `json:"seq"`
	CreatedAt      time.Time           `json:"created_at"`
	EditedAt       *time.Time          `json:"edited_at,omitempty"`
	DeletedAt      *time.Time          `json:"deleted_at,omitempty"`
	Attachments    []attachmentPayload `json:"attachments,omitempty"`
}

// Handle authenticates the handshake, upgrades to websocket and processes
// events until the client disconnects. Authentication failure aborts before
// presence is registered.
func (ctl *SocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := ctl.authenticate(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or missing credential"})
			return
		}

		ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the response.
			return
		}

		conn := realtime.NewConnection(userID, ws)
		conn.Start()
		ctl.hub.Attach(conn)
		ctl.log.Info("gateway: session active", "user_id", userID, "session_id", conn.SessionID())

		defer func() {
			ctl.hub.Detach(conn)
			conn.Close(websocket.CloseNormalClosure, "session closed")
			ctl.log.Info("gateway: session closed", "user_id", userID, "session_id", conn.SessionID())
		}()

		ws.SetReadLimit(1 << 20) // 1MB payload cap
		_ = ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		})

		ctl.reply(conn, ackEvent{Event: "connected"})
		ctl.subscribeAll(conn)

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) &&
					!errors.Is(err, websocket.ErrCloseSent) {
					ctl.log.Warn("gateway: read failed", "user_id", userID, "err", err)
				}
				return
			}

			var ev inboundEvent
			if err := json.Unmarshal(data, &ev); err != nil {
				ctl.replyError(conn, ev, "validation_error", "invalid payload")
				continue
			}
			ctl.handleEvent(conn, ev)
		}
	}
}

// authenticate pulls the bearer token from the Authorization header or the
// token query parameter and resolves it through the identity collaborator.
func (ctl *SocketController) authenticate(c *gin.Context) (string, error) {
	token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	if token == "" || token == c.GetHeader("Authorization") {
		token = c.Query("token")
	}
	return ctl.verifier.Verify(token)
}

// subscribeAll joins the connection to one room per conversation the user
// belongs to.
func (ctl *SocketController) subscribeAll(sess realtime.Session) {
	ctx, cancel := context.WithTimeout(context.Background(), inflightTimeout)
	defer cancel()

	convs, err := ctl.listConvsUC.Execute(ctx, usecase.ListConversationsInput{
		UserID: sess.UserID(),
		Limit:  subscribeLimit,
	})
	if err != nil {
		ctl.log.Error("gateway: loading conversations failed", "user_id", sess.UserID(), "err", err)
		return
	}
	for _, conv := range convs {
		ctl.hub.Join(conv.ID, sess)
	}
}

// handleEvent dispatches one inbound event. Store-backed events run under a
// bounded deadline derived from the background context: a disconnect never
// cancels an in-flight store operation, and its eventual success still
// produces a broadcast to the room.
func (ctl *SocketController) handleEvent(sess realtime.Session, ev inboundEvent) {
	switch ev.Event {
	case "join_conversation":
		ctl.handleJoin(sess, ev)
	case "leave_conversation":
		ctl.handleLeave(sess, ev)
	case "send_message":
		ctl.handleSend(sess, ev)
	case "typing_start":
		ctl.handleTyping(sess, ev, true)
	case "typing_stop":
		ctl.handleTyping(sess, ev, false)
	case "message_read":
		ctl.handleRead(sess, ev)
	case "message_edit":
		ctl.handleEdit(sess, ev)
	case "message_delete":
		ctl.handleDelete(sess, ev)
	default:
		ctl.replyError(sess, ev, "validation_error", "unknown event")
	}
}

func (ctl *SocketController) handleJoin(sess realtime.Session, ev inboundEvent) {
	if ev.ConversationID == "" {
		ctl.replyError(sess, ev, "validation_error", "conversation_id is required")
		return
	}

	ctx, cancel := ctl.opContext()
	defer cancel()

	_, err := ctl.getConvUC.Execute(ctx, usecase.GetConversationInput{
		ConversationID: ev.ConversationID,
		CallerID:       sess.UserID(),
	})
	if err != nil {
		ctl.emitUseCaseError(sess, ev, "error", err)
		return
	}

	ctl.hub.Join(ev.ConversationID, sess)
	ctl.reply(sess, ackEvent{Event: "joined", ConversationID: ev.ConversationID})
	ctl.broadcast(ev.ConversationID, memberEvent{
		Event:          "user_joined",
		ConversationID: ev.ConversationID,
		UserID:         sess.UserID(),
	}, sess.UserID())
}

func (ctl *SocketController) handleLeave(sess realtime.Session, ev inboundEvent) {
	if ev.ConversationID == "" {
		ctl.replyError(sess, ev, "validation_error", "conversation_id is required")
		return
	}
	ctl.hub.Leave(ev.ConversationID, sess)
	ctl.reply(sess, ackEvent{Event: "left", ConversationID: ev.ConversationID})
	ctl.broadcast(ev.ConversationID, memberEvent{
		Event:          "user_left",
		ConversationID: ev.ConversationID,
		UserID:         sess.UserID(),
	}, sess.UserID())
}

// handleSend persists first, then fans out: the broadcast happens only after
// the store confirmed the append, in confirmation order per conversation.
func (ctl *SocketController) handleSend(sess realtime.Session, ev inboundEvent) {
	if ev.ConversationID == "" {
		ctl.replyError(sess, ev, "validation_error", "conversation_id is required")
		return
	}

	ctx, cancel := ctl.opContext()
	defer cancel()

	msg, err := ctl.sendUC.Execute(ctx, usecase.SendMessageInput{
		ConversationID: ev.ConversationID,
		SenderID:       sess.UserID(),
		Content:        ev.Content,
		Type:           messaging.MessageType(ev.Type),
		ParentID:       ev.ParentID,
		Attachments:    toAttachments(ev.Attachments),
	})
	if err != nil {
		ctl.emitUseCaseError(sess, ev, "message_error", err)
		return
	}

	out := messageEvent{Event: "new_message", ConversationID: msg.ConversationID, Message: toSummary(msg)}
	payload, err := json.Marshal(out)
	if err != nil {
		ctl.replyError(sess, ev, "internal_error", "failed to encode message")
		return
	}

	ctl.hub.Broadcast(msg.ConversationID, payload, "")
	if !ctl.hub.InRoom(msg.ConversationID, sess.UserID()) {
		_ = sess.Send(payload)
	}

	ctl.delivery.MessageAppended(ctx, msg)
}

func (ctl *SocketController) handleTyping(sess realtime.Session, ev inboundEvent, isTyping bool) {
	if ev.ConversationID == "" || !ctl.hub.InRoom(ev.ConversationID, sess.UserID()) {
		return
	}
	ctl.broadcast(ev.ConversationID, memberEvent{
		Event:          "user_typing",
		ConversationID: ev.ConversationID,
		UserID:         sess.UserID(),
		IsTyping:       &isTyping,
	}, sess.UserID())
}

func (ctl *SocketController) handleRead(sess realtime.Session, ev inboundEvent) {
	if ev.ConversationID == "" {
		ctl.replyError(sess, ev, "validation_error", "conversation_id is required")
		return
	}

	ctx, cancel := ctl.opContext()
	defer cancel()

	_, err := ctl.markReadUC.Execute(ctx, usecase.MarkReadInput{
		ConversationID: ev.ConversationID,
		CallerID:       sess.UserID(),
	})
	if err != nil {
		ctl.emitUseCaseError(sess, ev, "error", err)
		return
	}
	ctl.broadcast(ev.ConversationID, memberEvent{
		Event:          "messages_read",
		ConversationID: ev.ConversationID,
		UserID:         sess.UserID(),
	}, "")
}

func (ctl *SocketController) handleEdit(sess realtime.Session, ev inboundEvent) {
	if ev.MessageID == "" {
		ctl.replyError(sess, ev, "validation_error", "message_id is required")
		return
	}

	ctx, cancel := ctl.opContext()
	defer cancel()

	msg, err := ctl.editUC.Execute(ctx, usecase.EditMessageInput{
		MessageID: ev.MessageID,
		CallerID:  sess.UserID(),
		Content:   ev.Content,
	})
	if err != nil {
		ctl.emitUseCaseError(sess, ev, "edit_error", err)
		return
	}
	ctl.broadcast(msg.ConversationID, messageEvent{
		Event:          "message_edited",
		ConversationID: msg.ConversationID,
		Message:        toSummary(msg),
	}, "")
}

func (ctl *SocketController) handleDelete(sess realtime.Session, ev inboundEvent) {
	if ev.MessageID == "" {
		ctl.replyError(sess, ev, "validation_error", "message_id is required")
		return
	}

	ctx, cancel := ctl.opContext()
	defer cancel()

	msg, err := ctl.deleteUC.Execute(ctx, usecase.DeleteMessageInput{
		MessageID: ev.MessageID,
		CallerID:  sess.UserID(),
	})
	if err != nil {
		ctl.emitUseCaseError(sess, ev, "delete_error", err)
		return
	}
	ctl.broadcast(msg.ConversationID, deletedEvent{
		Event:          "message_deleted",
		MessageID:      msg.ID,
		ConversationID: msg.ConversationID,
	}, "")
}

// opContext bounds a store operation. Derived from the background context so
// the operation survives a client disconnect.
func (ctl *SocketController) opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), inflightTimeout)
}

func (ctl *SocketController) broadcast(conversationID string, v any, excludeUserID string) {
	payload, err := json.Marshal(v)
	if err != nil {
		return
	}
	ctl.hub.Broadcast(conversationID, payload, excludeUserID)
}

func (ctl *SocketController) reply(sess realtime.Session, v any) {
	if payload, err := json.Marshal(v); err == nil {
		_ = sess.Send(payload)
	}
}

// emitUseCaseError maps domain sentinels to typed error events. Timeouts and
// persistence failures are logged in full and surfaced generically so
// internals never leak.
func (ctl *SocketController) emitUseCaseError(sess realtime.Session, ev inboundEvent, errorEventName string, err error) {
	switch {
	case errors.Is(err, messaging.ErrValidation):
		ctl.replyErrorNamed(sess, ev, errorEventName, "validation_error", "invalid request")
	case errors.Is(err, messaging.ErrPermissionDenied):
		ctl.replyErrorNamed(sess, ev, errorEventName, "permission_denied", "not allowed")
	case errors.Is(err, messaging.ErrNotFound):
		ctl.replyErrorNamed(sess, ev, errorEventName, "not_found", "not found")
	case errors.Is(err, messaging.ErrConflict):
		ctl.replyErrorNamed(sess, ev, errorEventName, "conflict", "conflicting state")
	case errors.Is(err, messaging.ErrTimeout):
		ctl.log.Warn("gateway: store operation timed out",
			"user_id", sess.UserID(), "event", ev.Event, "err", err)
		ctl.replyErrorNamed(sess, ev, errorEventName, "internal_error", "operation failed")
	default:
		ctl.log.Error("gateway: store operation failed",
			"user_id", sess.UserID(), "event", ev.Event, "err", err)
		ctl.replyErrorNamed(sess, ev, errorEventName, "internal_error", "operation failed")
	}
}

func (ctl *SocketController) replyError(sess realtime.Session, ev inboundEvent, code, msg string) {
	ctl.replyErrorNamed(sess, ev, "error", code, msg)
}

func (ctl *SocketController) replyErrorNamed(sess realtime.Session, ev inboundEvent, eventName, code, msg string) {
	ctl.reply(sess, errorEvent{
		Event:          eventName,
		ConversationID: ev.ConversationID,
		MessageID:      ev.MessageID,
		Code:           code,
		Error:          msg,
	})
}

func toAttachments(in []attachmentPayload) []messaging.Attachment {
	if len(in) == 0 {
		return nil
	}
	out := make([]messaging.Attachment, len(in))
	for i, a := range in {
		out[i] = messaging.Attachment{
			FileName: a.FileName,
			FileURL:  a.FileURL,
			FileType: a.FileType,
			FileSize: a.FileSize,
		}
	}
	return out
}

func toSummary(msg *messaging.Message) messageSummary {
	s := messageSummary{
		ID:             msg.ID,
		ConversationID: msg.ConversationID,
		SenderID:       msg.SenderID,
		Content:        msg.Content,
		Type:           string(msg.Type),
		ParentID:       msg.ParentID,
		Status:         string(msg.Status),
		Seq:            msg.Seq,
		CreatedAt:      msg.CreatedAt,
		EditedAt:       msg.EditedAt,
		DeletedAt:      msg.DeletedAt,
	}
	for _, a := range msg.Attachments {
		s.Attachments = append(s.Attachments, attachmentPayload{
			FileName: a.FileName,
			FileURL:  a.FileURL,
			FileType: a.FileType,
			FileSize: a.FileSize,
		})
	}
	return s
}
