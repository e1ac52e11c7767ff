// Package register mirrors movements to the shared register sheet the
// HR and IT services consult outside the application.
package register

import (
	"context"

	"mouvements/internal/core"
)

// Writer is the outbound port to the register. Rows are keyed by the
// movement ID, so a delete only needs the ID.
type Writer interface {
	UpsertMovement(ctx context.Context, m core.Movement) error
	DeleteMovement(ctx context.Context, id int64) error
}
