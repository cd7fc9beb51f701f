package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	identityport "github.com/utkogui/voluntariado-sub002/internal/infrastructure/identity/port"
	"github.com/utkogui/voluntariado-sub002/internal/infrastructure/realtime"
	"github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/delivery"
	"github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/presentation/controller"
	storeport "github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/store/port"
)

// Deps carries the shared collaborators the messaging endpoints need.
type Deps struct {
	Conversations storeport.ConversationStore
	Messages      storeport.MessageStore
	Hub           *realtime.Hub
	Verifier      identityport.Verifier
	Delivery      *delivery.Coordinator
	Log           *slog.Logger
}

// RegisterRoutes registers messaging HTTP and websocket endpoints under the
// given router group. It constructs per-endpoint controllers and binds them
// directly to routes.
func RegisterRoutes(g *gin.RouterGroup, d Deps) {
	createCtl := controller.NewCreateConversationController(d.Conversations)
	listCtl := controller.NewListConversationsController(d.Conversations)
	getCtl := controller.NewGetConversationController(d.Conversations)
	addPartCtl := controller.NewAddParticipantController(d.Conversations)
	rmPartCtl := controller.NewRemoveParticipantController(d.Conversations)
	sendCtl := controller.NewSendMessageController(d.Messages, d.Hub, d.Delivery)
	getMsgsCtl := controller.NewGetMessagesController(d.Messages)
	markReadCtl := controller.NewMarkReadController(d.Messages, d.Hub)
	editCtl := controller.NewEditMessageController(d.Messages, d.Hub)
	deleteCtl := controller.NewDeleteMessageController(d.Messages, d.Hub)
	socketCtl := controller.NewSocketController(d.Conversations, d.Messages, d.Hub, d.Verifier, d.Delivery, d.Log)

	// The websocket endpoint authenticates its own handshake.
	g.GET("/messaging/ws", socketCtl.Handle())

	auth := g.Group("", RequireAuth(d.Verifier))

	auth.POST("/conversations", createCtl.Handle())
	auth.GET("/conversations", listCtl.Handle())
	auth.GET("/conversations/:conversationId", getCtl.Handle())
	auth.POST("/conversations/:conversationId/participants", addPartCtl.Handle())
	auth.DELETE("/conversations/:conversationId/participants/:userId", rmPartCtl.Handle())
	auth.POST("/conversations/:conversationId/messages", sendCtl.Handle())
	auth.GET("/conversations/:conversationId/messages", getMsgsCtl.Handle())
	auth.POST("/conversations/:conversationId/read", markReadCtl.Handle())
	auth.PATCH("/messages/:messageId", editCtl.Handle())
	auth.DELETE("/messages/:messageId", deleteCtl.Handle())
}

// RequireAuth resolves the bearer token through the identity verifier and
// stores the user id on the request context.
func RequireAuth(verifier identityport.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if token == "" || token == header {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		userID, err := verifier.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid credential"})
			return
		}
		c.Set("auth_user_id", userID)
		c.Next()
	}
}
