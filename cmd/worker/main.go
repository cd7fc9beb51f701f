package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	cacheadapter "github.com/utkogui/voluntariado-sub002/internal/infrastructure/cache/adapter"
	"github.com/utkogui/voluntariado-sub002/internal/infrastructure/database"
	queueadapter "github.com/utkogui/voluntariado-sub002/internal/infrastructure/queue/adapter"
	"github.com/utkogui/voluntariado-sub002/internal/jobs"
	"github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/application/task"
	messaging "github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/domain"
	notifyadapter "github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/notify/adapter"
	notifyport "github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/notify/port"
	storeadapter "github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/store/adapter"
)

// The worker drains the notifications queue and runs the periodic unread
// digest sweep. It shares the stores with the API but never serves traffic.
func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file loaded", "err", err)
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	pool, err := database.NewPoolFromEnv(ctx)
	cancel()
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

	dispatcher, err := buildDispatcher()
	if err != nil {
		log.Error("notification channel setup failed", "err", err)
		os.Exit(1)
	}

	srv, err := queueadapter.NewAsynqServer()
	if err != nil {
		log.Error("queue server setup failed", "err", err)
		os.Exit(1)
	}
	task.RegisterNotifyOfflineTask(srv, dispatcher)
	task.RegisterUnreadDigestTask(srv, dispatcher)

	queueClient, err := queueadapter.NewAsynqClientFromEnv()
	if err != nil {
		log.Error("queue client setup failed", "err", err)
		os.Exit(1)
	}
	defer queueClient.Close()

	conversations := storeadapter.NewPgConversationStore(pool, cache)
	messages := storeadapter.NewPgMessageStore(pool)

	digest := jobs.NewDigestJob(messages, conversations, queueClient, log)
	scheduler := cron.New()
	if err := digest.Schedule(scheduler); err != nil {
		log.Error("digest schedule failed", "err", err)
		os.Exit(1)
	}
	scheduler.Start()
	defer scheduler.Stop()

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("worker started")
	if err := srv.Run(runCtx); err != nil {
		log.Error("worker stopped", "err", err)
		os.Exit(1)
	}
}

// buildDispatcher wires one dispatcher per configured channel. Email is
// mandatory; push and SMS are optional and fall back to email when absent.
func buildDispatcher() (notifyport.Dispatcher, error) {
	email, err := notifyadapter.NewEmailDispatcherFromEnv()
	if err != nil {
		return nil, err
	}

	channels := map[messaging.NotifyChannel]notifyport.Dispatcher{
		messaging.NotifyChannelEmail: email,
	}
	if push, err := notifyadapter.NewPushDispatcherFromEnv(); err == nil {
		channels[messaging.NotifyChannelPush] = push
	}
	if sms, err := notifyadapter.NewSMSDispatcherFromEnv(); err == nil {
		channels[messaging.NotifyChannelSMS] = sms
	}
	return notifyadapter.NewMux(channels)
}
