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

// DeleteMessageController soft-deletes a message, leaving a tombstone in the
// timeline.

type DeleteMessageController struct {
	UC  *usecase.DeleteMessageUseCase
	Hub *realtime.Hub
}

func NewDeleteMessageController(store storeport.MessageStore, hub *realtime.Hub) *DeleteMessageController {
	return &DeleteMessageController{UC: usecase.NewDeleteMessageUseCase(store), Hub: hub}
}

func (h *DeleteMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := callerID(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		msg, err := h.UC.Execute(ctx, usecase.DeleteMessageInput{
			MessageID: c.Param("messageId"),
			CallerID:  caller,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		if payload, mErr := json.Marshal(deletedEvent{
			Event:          "message_deleted",
			MessageID:      msg.ID,
			ConversationID: msg.ConversationID,
		}); mErr == nil {
			h.Hub.Broadcast(msg.ConversationID, payload, "")
		}

		c.Status(http.StatusNoContent)
	}
}
