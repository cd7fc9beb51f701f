package controller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/application/usecase"
	messaging "github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/domain"
	storeport "github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/store/port"
)

// CreateConversationController handles the conversation creation endpoint.
// One controller per endpoint.

type CreateConversationController struct {
	UC *usecase.CreateConversationUseCase
}

func NewCreateConversationController(store storeport.ConversationStore) *CreateConversationController {
	return &CreateConversationController{UC: usecase.NewCreateConversationUseCase(store)}
}

type createConversationRequest struct {
	Type           string   `json:"type" validate:"required,oneof=direct group opportunity"`
	ParticipantIDs []string `json:"participant_ids" validate:"required,min=1,dive,required"`
	Title          *string  `json:"title" validate:"omitempty,max=200"`
	OpportunityID  *string  `json:"opportunity_id"`
}

func (h *CreateConversationController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := callerID(c)
		if !ok {
			return
		}

		var req createConversationRequest
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

		conv, err := h.UC.Execute(ctx, usecase.CreateConversationInput{
			CreatorID:      caller,
			ParticipantIDs: req.ParticipantIDs,
			Type:           messaging.ConversationType(req.Type),
			Title:          req.Title,
			OpportunityID:  req.OpportunityID,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"id":         conv.ID,
			"type":       conv.Type,
			"title":      conv.Title,
			"status":     conv.Status,
			"created_at": conv.CreatedAt,
		})
	}
}
