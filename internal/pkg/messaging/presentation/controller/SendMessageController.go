package controller

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/utkogui/voluntariado-sub002/internal/infrastructure/realtime"
	"github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/application/usecase"
	"github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/delivery"
	messaging "github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/domain"
	storeport "github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/store/port"
)

// SendMessageController is the REST path for sending a message. The append
// goes through the same store as the websocket path, then fans out to any
// connected room members and hands the message to the delivery coordinator.

type SendMessageController struct {
	UC       *usecase.SendMessageUseCase
	Hub      *realtime.Hub
	Delivery *delivery.Coordinator
}

func NewSendMessageController(store storeport.MessageStore, hub *realtime.Hub, coordinator *delivery.Coordinator) *SendMessageController {
	return &SendMessageController{
		UC:       usecase.NewSendMessageUseCase(store),
		Hub:      hub,
		Delivery: coordinator,
	}
}

type sendMessageRequest struct {
	Content     string              `json:"content"`
	Type        string              `json:"type" validate:"omitempty,oneof=text image file system opportunity_share"`
	ParentID    *string             `json:"parent_id"`
	Attachments []attachmentPayload `json:"attachments" validate:"omitempty,max=10,dive"`
}

func (h *SendMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := callerID(c)
		if !ok {
			return
		}

		var req sendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := validate.Struct(req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		msgType := messaging.MessageType(req.Type)
		if req.Type == "" {
			msgType = messaging.MessageTypeText
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		msg, err := h.UC.Execute(ctx, usecase.SendMessageInput{
			ConversationID: c.Param("conversationId"),
			SenderID:       caller,
			Content:        req.Content,
			Type:           msgType,
			ParentID:       req.ParentID,
			Attachments:    toAttachments(req.Attachments),
		})
		if err != nil {
			respondError(c, err)
			return
		}

		summary := toSummary(msg)
		if payload, mErr := json.Marshal(messageEvent{
			Event:          "new_message",
			ConversationID: msg.ConversationID,
			Message:        summary,
		}); mErr == nil {
			h.Hub.Broadcast(msg.ConversationID, payload, "")
		}
		h.Delivery.MessageAppended(ctx, msg)

		c.JSON(http.StatusCreated, summary)
	}
}
