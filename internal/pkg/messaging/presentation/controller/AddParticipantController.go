package controller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/application/usecase"
	storeport "github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/store/port"
)

// AddParticipantController adds a member to a group or opportunity
// conversation. Only moderators and admins may manage membership.

type AddParticipantController struct {
	UC *usecase.AddParticipantUseCase
}

func NewAddParticipantController(store storeport.ConversationStore) *AddParticipantController {
	return &AddParticipantController{UC: usecase.NewAddParticipantUseCase(store)}
}

type addParticipantRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

func (h *AddParticipantController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := callerID(c)
		if !ok {
			return
		}

		var req addParticipantRequest
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

		err := h.UC.Execute(ctx, usecase.AddParticipantInput{
			ConversationID: c.Param("conversationId"),
			UserID:         req.UserID,
			ActingUserID:   caller,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"user_id": req.UserID})
	}
}
