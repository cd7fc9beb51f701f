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

// MarkReadController marks every message in a conversation as read for the
// caller and lets connected room members know.

type MarkReadController struct {
	UC  *usecase.MarkReadUseCase
	Hub *realtime.Hub
}

func NewMarkReadController(store storeport.MessageStore, hub *realtime.Hub) *MarkReadController {
	return &MarkReadController{UC: usecase.NewMarkReadUseCase(store), Hub: hub}
}

func (h *MarkReadController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := callerID(c)
		if !ok {
			return
		}
		conversationID := c.Param("conversationId")

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		updated, err := h.UC.Execute(ctx, usecase.MarkReadInput{
			ConversationID: conversationID,
			CallerID:       caller,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		if payload, mErr := json.Marshal(memberEvent{
			Event:          "messages_read",
			ConversationID: conversationID,
			UserID:         caller,
		}); mErr == nil {
			h.Hub.Broadcast(conversationID, payload, "")
		}

		c.JSON(http.StatusOK, gin.H{"updated": updated})
	}
}
