package broadcast

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/gambitov02/Gambittt/internal/domain"
	"github.com/gambitov02/Gambittt/internal/store"
)

// Transport is the minimal sending surface the engine needs. Each call
// classifies its own failure into the domain.Delivery taxonomy.
type Transport interface {
	SendText(ctx context.Context, chatID int64, text string) domain.Delivery
	CopyMessage(ctx context.Context, chatID int64, fromChatID int64, messageID int) domain.Delivery
}

// MessageRef identifies an existing message to copy.
type MessageRef struct {
	ChatID    int64
	MessageID int
}

// Job is one broadcast: either verbatim Text, or a copy of an existing
// message when Copy is set. Jobs are ephemeral, never persisted.
type Job struct {
	Text string
	Copy *MessageRef
}

// Report is the final tally of one run. Every recipient in the snapshot
// lands in exactly one counter.
type Report struct {
	Delivered int
	Blocked   int
	Failed    int
}

// Total is the number of recipients processed.
func (r Report) Total() int { return r.Delivered + r.Blocked + r.Failed }

const (
	defaultPace = 50 * time.Millisecond
	// retryMargin pads the transport's retry-after before the single retry.
	retryMargin = 500 * time.Millisecond
)

// Engine delivers one job to the full subscribed set, sequentially, with
// pacing between sends and a global pause on rate limits. A single
// logical worker runs per job; there is no per-recipient concurrency
// because the rate limit applies to the whole sending identity.
type Engine struct {
	ledger    store.Ledger
	transport Transport
	log       *zap.Logger
	pace      time.Duration
	margin    time.Duration

	// sleep is swapped out in tests.
	sleep func(ctx context.Context, d time.Duration)
}

func NewEngine(ledger store.Ledger, transport Transport, log *zap.Logger, pace time.Duration) *Engine {
	if pace <= 0 {
		pace = defaultPace
	}
	return &Engine{
		ledger:    ledger,
		transport: transport,
		log:       log,
		pace:      pace,
		margin:    retryMargin,
		sleep:     sleepCtx,
	}
}

// Run delivers the job to a snapshot of the current subscriber set.
// Subscription changes during the run are not observed. Each recipient's
// outcome is durable once applied; there is no rollback across
// recipients if the process dies mid-run.
func (e *Engine) Run(ctx context.Context, job Job) (Report, error) {
	ids, err := e.ledger.SubscriberIDs(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("list subscribers: %w", err)
	}
	e.log.Info("broadcast started", zap.Int("recipients", len(ids)))

	var rep Report
	for _, id := range ids {
		d := e.deliver(ctx, job, id)
		switch d.Kind {
		case domain.Delivered:
			rep.Delivered++
			e.sleep(ctx, e.pace)

		case domain.PermanentlyBlocked:
			// Recipient is gone for good: drop the user and its payment
			// reference, count once, move on.
			rep.Blocked++
			if err := e.ledger.DeleteUser(ctx, id); err != nil {
				e.log.Error("delete blocked user failed",
					zap.Int64("user", id), zap.Error(err))
			}

		case domain.RateLimited:
			// The limit is transport-global, so the whole run pauses, not
			// just this recipient. Then one retry; a second failure of any
			// kind counts as failed.
			e.log.Warn("rate limited, pausing run",
				zap.Int64("user", id),
				zap.Duration("retry_after", d.RetryAfter))
			e.sleep(ctx, d.RetryAfter+e.margin)
			if retry := e.deliver(ctx, job, id); retry.Kind == domain.Delivered {
				rep.Delivered++
				e.sleep(ctx, e.pace)
			} else {
				rep.Failed++
			}

		default: // domain.TransientError
			rep.Failed++
			e.log.Warn("delivery failed",
				zap.Int64("user", id), zap.Error(d.Err))
		}
	}

	e.log.Info("broadcast finished",
		zap.Int("delivered", rep.Delivered),
		zap.Int("blocked", rep.Blocked),
		zap.Int("failed", rep.Failed),
	)
	return rep, nil
}

func (e *Engine) deliver(ctx context.Context, job Job, chatID int64) domain.Delivery {
	if job.Copy != nil {
		return e.transport.CopyMessage(ctx, chatID, job.Copy.ChatID, job.Copy.MessageID)
	}
	return e.transport.SendText(ctx, chatID, job.Text)
}

// sleepCtx waits d but returns early if the process is shutting down.
func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
