package controller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/application/usecase"
	storeport "github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/store/port"
)

// RemoveParticipantController removes a member from a conversation. Members
// may remove themselves; removing anyone else requires a manager role.

type RemoveParticipantController struct {
	UC *usecase.RemoveParticipantUseCase
}

func NewRemoveParticipantController(store storeport.ConversationStore) *RemoveParticipantController {
	return &RemoveParticipantController{UC: usecase.NewRemoveParticipantUseCase(store)}
}

func (h *RemoveParticipantController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := callerID(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		err := h.UC.Execute(ctx, usecase.RemoveParticipantInput{
			ConversationID: c.Param("conversationId"),
			UserID:         c.Param("userId"),
			ActingUserID:   caller,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
