package controller

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/application/usecase"
	messaging "github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/domain"
	storeport "github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/store/port"
)

// ListConversationsController returns the caller's conversations, most
// recently active first.

type ListConversationsController struct {
	UC *usecase.ListConversationsUseCase
}

func NewListConversationsController(store storeport.ConversationStore) *ListConversationsController {
	return &ListConversationsController{UC: usecase.NewListConversationsUseCase(store)}
}

func (h *ListConversationsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := callerID(c)
		if !ok {
			return
		}

		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

		in := usecase.ListConversationsInput{
			UserID: caller,
			Page:   page,
			Limit:  limit,
			Status: messaging.ConversationStatus(c.DefaultQuery("status", string(messaging.ConversationStatusActive))),
		}
		if t := c.Query("type"); t != "" {
			ct := messaging.ConversationType(t)
			in.Type = &ct
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		convs, err := h.UC.Execute(ctx, in)
		if err != nil {
			respondError(c, err)
			return
		}

		out := make([]gin.H, 0, len(convs))
		for _, conv := range convs {
			out = append(out, gin.H{
				"id":             conv.ID,
				"type":           conv.Type,
				"title":          conv.Title,
				"opportunity_id": conv.OpportunityID,
				"status":         conv.Status,
				"created_at":     conv.CreatedAt,
				"updated_at":     conv.UpdatedAt,
			})
		}
		c.JSON(http.StatusOK, gin.H{"conversations": out, "page": page, "limit": limit})
	}
}
