package controller

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/utkogui/voluntariado-sub002/internal/infrastructure/realtime"
	"github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/application/usecase"
	storeport "github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/store/port"
)

// EditMessageController rewrites a message's content. Authors only; deleted
// messages stay deleted.

type EditMessageController struct {
	UC  *usecase.EditMessageUseCase
	Hub *realtime.Hub
}

func NewEditMessageController(store storeport.MessageStore, hub *realtime.Hub) *EditMessageController {
	return &EditMessageController{UC: usecase.NewEditMessageUseCase(store), Hub: hub}
}

type editMessageRequest struct {
	Content string `json:"content" validate:"required"`
}

func (h *EditMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := callerID(c)
		if !ok {
			return
		}

		var req editMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := validate.Struct(req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		msg, err := h.UC.Execute(ctx, usecase.EditMessageInput{
			MessageID: c.Param("messageId"),
			CallerID:  caller,
			Content:   req.Content,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		summary := toSummary(msg)
		if payload, mErr := json.Marshal(messageEvent{
			Event:          "message_edited",
			ConversationID: msg.ConversationID,
			Message:        summary,
		}); mErr == nil {
			h.Hub.Broadcast(msg.ConversationID, payload, "")
		}

		c.JSON(http.StatusOK, summary)
	}
}
