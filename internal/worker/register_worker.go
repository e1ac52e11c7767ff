// Package worker keeps the shared register sheet in step with SQLite.
// It consumes the AMQP movement events and polls for rows the queue
// missed.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"mouvements/internal/amqp"
	"mouvements/internal/core"
	"mouvements/internal/register"
)

// Store is the slice of the SQLite repository the worker needs.
type Store interface {
	GetMovement(ctx context.Context, id int64) (core.Movement, error)
	PendingRegisterSync(ctx context.Context, limit int) ([]core.Movement, error)
	MarkRegisterSynced(ctx context.Context, id int64) error
	MarkRegisterSyncError(ctx context.Context, id int64) error
}

// RegisterWorker mirrors movement changes to the register.
type RegisterWorker struct {
	store     Store
	register  register.Writer
	batchSize int
}

func NewRegisterWorker(store Store, reg register.Writer, batchSize int) *RegisterWorker {
	return &RegisterWorker{
		store:     store,
		register:  reg,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes one movement event from the queue. A
// movement that has vanished since the event was published is dropped;
// the deletion event for it is already in flight or processed.
func (w *RegisterWorker) HandleSyncMessage(ctx context.Context, msg *amqp.MovementSyncMessage) error {
	slog.InfoContext(ctx, "Processing movement sync message",
		"id", msg.ID,
		"action", msg.Action)

	if msg.Action == amqp.ActionDeleted {
		if err := w.register.DeleteMovement(ctx, msg.ID); err != nil {
			return fmt.Errorf("delete register row: %w", err)
		}
		return nil
	}

	m, err := w.store.GetMovement(ctx, msg.ID)
	if errors.Is(err, core.ErrMovementNotFound) {
		slog.WarnContext(ctx, "Movement gone before register sync, dropping message",
			"id", msg.ID,
			"action", msg.Action)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get movement from storage: %w", err)
	}

	return w.mirror(ctx, m)
}

// ProcessPending mirrors movements still flagged pending. This is the
// backup path for lost AMQP messages and broker downtime.
func (w *RegisterWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.store.PendingRegisterSync(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending movements: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending register syncs", "count", len(pending))

	for _, m := range pending {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.mirror(ctx, m); err != nil {
			slog.ErrorContext(ctx, "Failed to mirror movement", "id", m.ID, "error", err)
		}
	}
	return nil
}

// StartupSyncCheck drains the pending backlog once at worker startup,
// with a larger batch, to recover from downtime.
func (w *RegisterWorker) StartupSyncCheck(ctx context.Context) error {
	pending, err := w.store.PendingRegisterSync(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending movements for startup check: %w", err)
	}
	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending register syncs on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending register syncs on startup, processing...",
		"count", len(pending))

	synced, failed := 0, 0
	for _, m := range pending {
		if err := w.mirror(ctx, m); err != nil {
			slog.ErrorContext(ctx, "Failed to mirror movement during startup",
				"id", m.ID, "error", err)
			failed++
			continue
		}
		synced++
	}

	slog.InfoContext(ctx, "Startup register sync completed",
		"total", len(pending),
		"synced", synced,
		"errors", failed)
	return nil
}

// RunPoller calls ProcessPending on a fixed interval until the context
// is cancelled.
func (w *RegisterWorker) RunPoller(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.ProcessPending(ctx); err != nil && !errors.Is(err, context.Canceled) {
				slog.ErrorContext(ctx, "Pending register sync pass failed", "error", err)
			}
		}
	}
}

func (w *RegisterWorker) mirror(ctx context.Context, m core.Movement) error {
	if err := w.register.UpsertMovement(ctx, m); err != nil {
		if markErr := w.store.MarkRegisterSyncError(ctx, m.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark register sync error",
				"id", m.ID, "error", markErr)
		}
		return fmt.Errorf("upsert register row: %w", err)
	}

	if err := w.store.MarkRegisterSynced(ctx, m.ID); err != nil {
		// The register write went through; only the local flag is stale.
		slog.ErrorContext(ctx, "Failed to mark movement as synced",
			"id", m.ID, "error", err)
	}

	slog.InfoContext(ctx, "Movement mirrored to register",
		"id", m.ID,
		"type", string(m.Type),
		"month_key", m.MonthKey)
	return nil
}
