// Package services orchestrates the movement lifecycle across SQLite,
// email notification and the AMQP register queue, and aggregates the
// monthly statistics the dashboard shows.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"mouvements/internal/amqp"
	"mouvements/internal/core"
)

// Warning messages flashed to the user when a side channel fails but the
// movement itself went through.
const (
	warnCreateNotify = "Le mouvement a été créé mais l'envoi de l'email de notification a échoué."
	warnUpdateNotify = "Le mouvement a été modifié mais l'envoi de l'email de notification a échoué."
	warnDeleteNotify = "Le mouvement a été supprimé mais l'envoi de l'email de notification a échoué."
)

// MovementService owns the movement lifecycle. Writes go to SQLite
// first; email and AMQP dispatch are best effort and reported back as a
// warning string, never as an error.
type MovementService struct {
	store     MovementStore
	notifier  Notifier
	publisher EventPublisher
	now       func() time.Time
}

func NewMovementService(store MovementStore, notifier Notifier, publisher EventPublisher) *MovementService {
	return &MovementService{
		store:     store,
		notifier:  notifier,
		publisher: publisher,
		now:       time.Now,
	}
}

// Create validates and persists a new movement, then notifies and
// publishes the register event. The returned warning is non-empty when
// the notification email could not be sent.
func (s *MovementService) Create(ctx context.Context, in core.MovementInput, actor core.Actor) (core.Movement, string, error) {
	if err := in.Validate(); err != nil {
		return core.Movement{}, "", err
	}

	now := s.now()
	m := movementFromInput(in)
	m.CreatedAt = now
	m.UpdatedAt = now
	m.CreatedBy = actor

	if _, err := s.store.InsertMovement(ctx, &m); err != nil {
		return core.Movement{}, "", fmt.Errorf("create movement: %w", err)
	}

	warning := ""
	if err := s.notify(ctx, m, s.notifierCreated); err != nil {
		warning = warnCreateNotify
	}
	s.publish(ctx, m.ID, amqp.ActionCreated)

	return m, warning, nil
}

// Update overwrites the editable fields of an existing movement. The
// month key is recomputed from the new effective date; acknowledgement
// state is left untouched.
func (s *MovementService) Update(ctx context.Context, id int64, in core.MovementInput, actor core.Actor) (core.Movement, string, error) {
	if err := in.Validate(); err != nil {
		return core.Movement{}, "", err
	}

	m, err := s.store.GetMovement(ctx, id)
	if err != nil {
		return core.Movement{}, "", err
	}

	applyInput(&m, in)
	m.UpdatedAt = s.now()
	m.UpdatedBy = &actor

	if err := s.store.UpdateMovement(ctx, m); err != nil {
		return core.Movement{}, "", fmt.Errorf("update movement: %w", err)
	}

	warning := ""
	if err := s.notify(ctx, m, s.notifierModified); err != nil {
		warning = warnUpdateNotify
	}
	s.publish(ctx, m.ID, amqp.ActionModified)

	return m, warning, nil
}

// Delete removes a movement. The notification email goes out before the
// row disappears so it can still render the movement; a failed email
// does not block the deletion.
func (s *MovementService) Delete(ctx context.Context, id int64) (string, error) {
	m, err := s.store.GetMovement(ctx, id)
	if err != nil {
		return "", err
	}

	warning := ""
	if err := s.notify(ctx, m, s.notifierDeleted); err != nil {
		warning = warnDeleteNotify
	}

	if err := s.store.DeleteMovement(ctx, id); err != nil {
		return "", fmt.Errorf("delete movement: %w", err)
	}
	s.publish(ctx, id, amqp.ActionDeleted)

	return warning, nil
}

// SetAcknowledged records whether the IT service has processed the
// movement. Setting the current value again is a no-op; no notification
// is sent either way.
func (s *MovementService) SetAcknowledged(ctx context.Context, id int64, acknowledged bool, actor core.Actor) (core.Movement, error) {
	m, err := s.store.GetMovement(ctx, id)
	if err != nil {
		return core.Movement{}, err
	}
	if m.Acknowledged == acknowledged {
		return m, nil
	}

	now := s.now()
	if acknowledged {
		m.Acknowledged = true
		m.AcknowledgedAt = &now
		m.AcknowledgedBy = &actor
	} else {
		m.Acknowledged = false
		m.AcknowledgedAt = nil
		m.AcknowledgedBy = nil
	}
	m.UpdatedAt = now
	m.UpdatedBy = &actor

	if err := s.store.UpdateMovement(ctx, m); err != nil {
		return core.Movement{}, fmt.Errorf("set acknowledged: %w", err)
	}
	s.publish(ctx, m.ID, amqp.ActionModified)

	return m, nil
}

// Get returns one movement by ID.
func (s *MovementService) Get(ctx context.Context, id int64) (core.Movement, error) {
	return s.store.GetMovement(ctx, id)
}

// MovementsForMonth returns a month's movements in canonical order:
// type declaration order, then last name, then first name.
func (s *MovementService) MovementsForMonth(ctx context.Context, monthKey string) ([]core.Movement, error) {
	movements, err := s.store.ListByMonth(ctx, monthKey)
	if err != nil {
		return nil, err
	}
	core.SortCanonical(movements)
	return movements, nil
}

// Unacknowledged lists movements still waiting on the IT service, newest
// first. An empty monthKey spans all months.
func (s *MovementService) Unacknowledged(ctx context.Context, monthKey string) ([]core.Movement, error) {
	return s.store.ListUnacknowledged(ctx, monthKey)
}

// Search matches names, employee number, job title and department.
func (s *MovementService) Search(ctx context.Context, query, monthKey string) ([]core.Movement, error) {
	return s.store.SearchMovements(ctx, query, monthKey)
}

// Recent returns the latest recorded movements.
func (s *MovementService) Recent(ctx context.Context, limit int) ([]core.Movement, error) {
	return s.store.ListRecent(ctx, limit)
}

func movementFromInput(in core.MovementInput) core.Movement {
	m := core.Movement{}
	applyInput(&m, in)
	return m
}

func applyInput(m *core.Movement, in core.MovementInput) {
	m.Type = in.Type
	m.LastName = in.LastName
	m.FirstName = in.FirstName
	m.EmployeeNumber = in.EmployeeNumber
	m.JobTitle = in.JobTitle
	m.ContractKind = in.ContractKind
	m.Department = in.Department
	m.EffectiveDate = in.EffectiveDate
	m.Note = in.Note
	m.MonthKey = core.MonthKeyFor(in.EffectiveDate)
}

func (s *MovementService) notifierCreated(ctx context.Context, m core.Movement) error {
	return s.notifier.MovementCreated(ctx, m)
}

func (s *MovementService) notifierModified(ctx context.Context, m core.Movement) error {
	return s.notifier.MovementModified(ctx, m)
}

func (s *MovementService) notifierDeleted(ctx context.Context, m core.Movement) error {
	return s.notifier.MovementDeleted(ctx, m)
}

func (s *MovementService) notify(ctx context.Context, m core.Movement, send func(context.Context, core.Movement) error) error {
	if s.notifier == nil {
		slog.WarnContext(ctx, "Notifier not available, skipping notification email", "id", m.ID)
		return nil
	}
	if err := send(ctx, m); err != nil {
		slog.WarnContext(ctx, "Failed to send notification email",
			"id", m.ID,
			"type", string(m.Type),
			"error", err)
		return err
	}
	return nil
}

func (s *MovementService) publish(ctx context.Context, id int64, action string) {
	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping sync message", "id", id)
		return
	}
	if err := s.publisher.PublishMovementSync(ctx, id, action); err != nil {
		// The movement is saved locally; the worker's pending poller will
		// pick it up even if the broker is down.
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"id", id,
			"action", action,
			"error", err)
	}
}
