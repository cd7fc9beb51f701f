package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	qport "github.com/utkogui/voluntariado-sub002/internal/infrastructure/queue/port"
	"github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/application/task"
	messaging "github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/domain"
	storeport "github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/store/port"
)

const (
	// digestSchedule runs the sweep every morning, server time.
	digestSchedule = "0 9 * * *"

	// backlogAge is how long a backlog must sit unread before it is nudged.
	backlogAge = 24 * time.Hour

	sweepTimeout = 2 * time.Minute
)

// DigestJob periodically sweeps unread backlogs and enqueues one digest task
// per (conversation, participant). Uniqueness on the queue keeps a rerun of
// the sweep from double-nudging anyone.
type DigestJob struct {
	messages      storeport.MessageStore
	conversations storeport.ConversationStore
	queue         qport.Client
	log           *slog.Logger
}

func NewDigestJob(messages storeport.MessageStore, conversations storeport.ConversationStore, queue qport.Client, log *slog.Logger) *DigestJob {
	return &DigestJob{messages: messages, conversations: conversations, queue: queue, log: log}
}

// Schedule registers the job on the given cron runner.
func (j *DigestJob) Schedule(c *cron.Cron) error {
	_, err := c.AddFunc(digestSchedule, j.Sweep)
	return err
}

// Sweep is one full pass over backlogs older than backlogAge.
func (j *DigestJob) Sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()
	j.sweepAt(ctx, time.Now().Add(-backlogAge))
}

// sweepAt enqueues a digest for every backlog older than the cutoff. Failures
// on individual backlogs are logged and skipped so one bad row never stalls
// the rest.
func (j *DigestJob) sweepAt(ctx context.Context, cutoff time.Time) {
	backlogs, err := j.messages.UnreadBacklogs(ctx, cutoff)
	if err != nil {
		j.log.Error("digest: backlog sweep failed", "err", err)
		return
	}
	if len(backlogs) == 0 {
		return
	}

	channels := make(map[string]map[string]messaging.NotifyChannel)
	enqueued := 0
	for _, b := range backlogs {
		ch, err := j.channelFor(ctx, channels, b.ConversationID, b.UserID)
		if err != nil {
			j.log.Warn("digest: participant lookup failed",
				"conversation_id", b.ConversationID, "user_id", b.UserID, "err", err)
			continue
		}

		payload, err := json.Marshal(task.UnreadDigestTaskPayload{
			ConversationID: b.ConversationID,
			UserID:         b.UserID,
			Unread:         b.Unread,
			Channel:        string(ch),
		})
		if err != nil {
			continue
		}

		_, err = j.queue.Enqueue(ctx, qport.Task{Type: task.UnreadDigestTaskType, Payload: payload}, qport.EnqueueOption{
			Queue:     task.NotificationsQueue,
			MaxRetry:  3,
			UniqueTTL: 20 * time.Hour,
		})
		if err != nil {
			j.log.Warn("digest: enqueue failed",
				"conversation_id", b.ConversationID, "user_id", b.UserID, "err", err)
			continue
		}
		enqueued++
	}
	j.log.Info("digest: sweep complete", "backlogs", len(backlogs), "enqueued", enqueued)
}

// channelFor resolves a participant's notification channel, caching the
// roster per conversation for the duration of the sweep.
func (j *DigestJob) channelFor(ctx context.Context, cache map[string]map[string]messaging.NotifyChannel, conversationID, userID string) (messaging.NotifyChannel, error) {
	roster, ok := cache[conversationID]
	if !ok {
		participants, err := j.conversations.Participants(ctx, conversationID)
		if err != nil {
			return "", err
		}
		roster = make(map[string]messaging.NotifyChannel, len(participants))
		for _, p := range participants {
			roster[p.UserID] = p.NotifyVia
		}
		cache[conversationID] = roster
	}
	if ch, ok := roster[userID]; ok && ch != "" {
		return ch, nil
	}
	return messaging.NotifyChannelEmail, nil
}
