package services

import (
	"context"

	"mouvements/internal/core"
)

// MovementStore is the persistence surface the lifecycle service and the
// aggregator build on. *storage.SQLiteRepository implements it.
type MovementStore interface {
	InsertMovement(ctx context.Context, m *core.Movement) (int64, error)
	UpdateMovement(ctx context.Context, m core.Movement) error
	DeleteMovement(ctx context.Context, id int64) error
	GetMovement(ctx context.Context, id int64) (core.Movement, error)

	ListByMonth(ctx context.Context, monthKey string) ([]core.Movement, error)
	ListUnacknowledged(ctx context.Context, monthKey string) ([]core.Movement, error)
	SearchMovements(ctx context.Context, query, monthKey string) ([]core.Movement, error)
	ListRecent(ctx context.Context, limit int) ([]core.Movement, error)

	DistinctMonths(ctx context.Context) ([]string, error)
	CountByTypeForMonth(ctx context.Context, monthKey string) (map[core.MovementType]int, error)
	CountByMonth(ctx context.Context) ([]core.MonthCount, error)
	CountMovements(ctx context.Context) (int, error)
	CountAcknowledged(ctx context.Context) (int, error)
	CountForMonth(ctx context.Context, monthKey string) (int, error)
}

// Notifier sends the per-change email to the IT service inbox. Failures
// are downgraded to warnings by the lifecycle service; they never fail
// the request.
type Notifier interface {
	MovementCreated(ctx context.Context, m core.Movement) error
	MovementModified(ctx context.Context, m core.Movement) error
	MovementDeleted(ctx context.Context, m core.Movement) error
}

// EventPublisher hands movement change events to the register worker.
// *amqp.Client implements it.
type EventPublisher interface {
	PublishMovementSync(ctx context.Context, id int64, action string) error
}
