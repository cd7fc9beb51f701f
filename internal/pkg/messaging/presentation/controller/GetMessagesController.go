package controller

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/application/usecase"
	storeport "github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/store/port"
)

// GetMessagesController fetches a conversation's history in ascending
// timeline order. Deleted messages appear as tombstones.

type GetMessagesController struct {
	UC *usecase.ListMessagesUseCase
}

func NewGetMessagesController(store storeport.MessageStore) *GetMessagesController {
	return &GetMessagesController{UC: usecase.NewListMessagesUseCase(store)}
}

func (h *GetMessagesController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := callerID(c)
		if !ok {
			return
		}

		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

		in := usecase.ListMessagesInput{
			ConversationID: c.Param("conversationId"),
			CallerID:       caller,
			Page:           page,
			Limit:          limit,
		}
		if raw := c.Query("before"); raw != "" {
			t, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "before must be RFC3339"})
				return
			}
			in.Before = &t
		}
		if raw := c.Query("after"); raw != "" {
			t, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "after must be RFC3339"})
				return
			}
			in.After = &t
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		msgs, err := h.UC.Execute(ctx, in)
		if err != nil {
			respondError(c, err)
			return
		}

		out := make([]messageSummary, 0, len(msgs))
		for i := range msgs {
			out = append(out, toSummary(&msgs[i]))
		}
		c.JSON(http.StatusOK, gin.H{"messages": out, "page": page, "limit": limit})
	}
}
