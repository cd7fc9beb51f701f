package controller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/application/usecase"
	storeport "github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/store/port"
)

// GetConversationController returns one conversation with its participant
// roster. Only participants may read it.

type GetConversationController struct {
	UC    *usecase.GetConversationUseCase
	Store storeport.ConversationStore
}

func NewGetConversationController(store storeport.ConversationStore) *GetConversationController {
	return &GetConversationController{UC: usecase.NewGetConversationUseCase(store), Store: store}
}

func (h *GetConversationController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := callerID(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		conv, err := h.UC.Execute(ctx, usecase.GetConversationInput{
			ConversationID: c.Param("conversationId"),
			CallerID:       caller,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		participants, err := h.Store.Participants(ctx, conv.ID)
		if err != nil {
			respondError(c, err)
			return
		}

		roster := make([]gin.H, 0, len(participants))
		for _, p := range participants {
			roster = append(roster, gin.H{
				"user_id":      p.UserID,
				"role":         p.Role,
				"joined_at":    p.JoinedAt,
				"last_read_at": p.LastReadAt,
				"notify_via":   p.NotifyVia,
			})
		}

		c.JSON(http.StatusOK, gin.H{
			"id":             conv.ID,
			"type":           conv.Type,
			"title":          conv.Title,
			"opportunity_id": conv.OpportunityID,
			"status":         conv.Status,
			"created_at":     conv.CreatedAt,
			"updated_at":     conv.UpdatedAt,
			"participants":   roster,
		})
	}
}
