package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	v1 "github.com/utkogui/voluntariado-sub002/cmd/api/router/v1"
	cacheadapter "github.com/utkogui/voluntariado-sub002/internal/infrastructure/cache/adapter"
	"github.com/utkogui/voluntariado-sub002/internal/infrastructure/database"
	identityadapter "github.com/utkogui/voluntariado-sub002/internal/infrastructure/identity/adapter"
	queueadapter "github.com/utkogui/voluntariado-sub002/internal/infrastructure/queue/adapter"
	"github.com/utkogui/voluntariado-sub002/internal/infrastructure/realtime"
	"github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/delivery"
	httpHandler "github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/presentation/http"
	storeadapter "github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/store/adapter"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file loaded", "err", err)
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := database.NewPoolFromEnv(ctx)
	if err != nil {
		log.Error("database connection failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	cache, err := cacheadapter.NewRedisAdapter()
	if err != nil {
		log.Error("redis connection failed", "err", err)
		os.Exit(1)
	}
	defer cache.Close()

	queueClient, err := queueadapter.NewAsynqClientFromEnv()
	if err != nil {
		log.Error("queue client setup failed", "err", err)
		os.Exit(1)
	}
	defer queueClient.Close()

	verifier, err := identityadapter.NewJWTVerifierFromEnv()
	if err != nil {
		log.Error("identity setup failed", "err", err)
		os.Exit(1)
	}

	conversations := storeadapter.NewPgConversationStore(pool, cache)
	messages := storeadapter.NewPgMessageStore(pool)

	registry := realtime.NewRegistry()
	hub := realtime.NewHub(registry)
	defer hub.Close()

	coordinator := delivery.NewCoordinator(registry, conversations, queueClient, log)

	r := gin.Default()
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	v1.RegisterRoutes(r, httpHandler.Deps{
		Conversations: conversations,
		Messages:      messages,
		Hub:           hub,
		Verifier:      verifier,
		Delivery:      coordinator,
		Log:           log,
	})

	// Start HTTP server (blocks until shutdown)
	if err := r.Run(); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
