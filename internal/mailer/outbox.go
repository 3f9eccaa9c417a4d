package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/yukikurage/survey-api/internal/models"
	"github.com/yukikurage/survey-api/internal/repository"
)

const (
	defaultPollInterval = 30 * time.Second
	defaultBatchSize    = 20
)

// Enqueue persists msg as a pending delivery. Pass a repository bound to the
// caller's transaction so the email only exists if the transaction commits.
func Enqueue(ctx context.Context, deliveries repository.EmailDeliveryRepository, kind models.EmailKind, msg Message) (*models.EmailDelivery, error) {
	delivery := &models.EmailDelivery{
		Kind:      kind,
		Recipient: msg.To,
		Subject:   msg.Subject,
		Body:      msg.HTMLBody,
		Status:    models.EmailStatusPending,
	}
	if err := deliveries.Create(ctx, delivery); err != nil {
		return nil, fmt.Errorf("enqueue email: %w", err)
	}
	return delivery, nil
}

// Dispatcher drains pending deliveries and records each outcome.
// Failed deliveries stay failed; nothing is retried automatically.
type Dispatcher struct {
	deliveries   repository.EmailDeliveryRepository
	mailer       Mailer
	sendTimeout  time.Duration
	pollInterval time.Duration
	batchSize    int
	nudge        chan struct{}
}

// NewDispatcher creates a Dispatcher sending through mailer.
func NewDispatcher(deliveries repository.EmailDeliveryRepository, mailer Mailer, sendTimeout time.Duration) *Dispatcher {
	return &Dispatcher{
		deliveries:   deliveries,
		mailer:       mailer,
		sendTimeout:  sendTimeout,
		pollInterval: defaultPollInterval,
		batchSize:    defaultBatchSize,
		nudge:        make(chan struct{}, 1),
	}
}

// Nudge wakes the dispatcher without blocking. Call it after committing a
// transaction that enqueued mail.
func (d *Dispatcher) Nudge() {
	select {
	case d.nudge <- struct{}{}:
	default:
	}
}

// Run drains the outbox on every nudge and tick until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()

	slog.Info("email dispatcher started", "poll_interval", d.pollInterval)
	for {
		if _, _, err := d.Drain(ctx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("email dispatcher drain failed", "error", err)
		}

		select {
		case <-ctx.Done():
			slog.Info("email dispatcher stopped")
			return
		case <-d.nudge:
		case <-ticker.C:
		}
	}
}

// Drain sends every pending delivery once and returns how many were sent and failed.
func (d *Dispatcher) Drain(ctx context.Context) (sent, failed int, err error) {
	for {
		pending, err := d.deliveries.ListPending(ctx, d.batchSize)
		if err != nil {
			return sent, failed, fmt.Errorf("list pending emails: %w", err)
		}
		if len(pending) == 0 {
			return sent, failed, nil
		}

		for i := range pending {
			if err := ctx.Err(); err != nil {
				return sent, failed, err
			}
			ok, err := d.deliver(ctx, &pending[i])
			if ok {
				sent++
			} else {
				failed++
			}
			if err != nil {
				// the row is still pending; stop instead of sending it again
				return sent, failed, err
			}
		}
	}
}

// deliver sends one delivery and records the outcome. It reports whether the
// send succeeded and any error recording the outcome.
func (d *Dispatcher) deliver(ctx context.Context, delivery *models.EmailDelivery) (bool, error) {
	sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()

	msg := Message{To: delivery.Recipient, Subject: delivery.Subject, HTMLBody: delivery.Body}
	sendErr := d.mailer.Send(sendCtx, msg)

	if sendErr != nil {
		slog.Error("email delivery failed",
			"delivery_id", delivery.ID,
			"kind", delivery.Kind,
			"recipient", delivery.Recipient,
			"error", sendErr,
		)
		if err := d.deliveries.MarkFailed(ctx, delivery.ID, sendErr.Error()); err != nil {
			return false, fmt.Errorf("record email failure %s: %w", delivery.ID, err)
		}
		return false, nil
	}

	slog.Info("email delivered", "delivery_id", delivery.ID, "kind", delivery.Kind, "recipient", delivery.Recipient)
	if err := d.deliveries.MarkSent(ctx, delivery.ID, time.Now().UTC()); err != nil {
		return true, fmt.Errorf("record email delivery %s: %w", delivery.ID, err)
	}
	return true, nil
}
