package services

import (
	"context"
	"time"

	"mouvements/internal/core"
)

// StatsService aggregates stored movements for the dashboard and the
// notification emails. All its methods are read-only.
type StatsService struct {
	store MovementStore
	now   func() time.Time
}

func NewStatsService(store MovementStore) *StatsService {
	return &StatsService{store: store, now: time.Now}
}

// CountByTypeForMonth returns the per-type counts of one month with all
// four types present, zero where the month has none.
func (s *StatsService) CountByTypeForMonth(ctx context.Context, monthKey string) (map[core.MovementType]int, error) {
	raw, err := s.store.CountByTypeForMonth(ctx, monthKey)
	if err != nil {
		return nil, err
	}
	return core.FillTypeCounts(raw), nil
}

// GroupByTypeForMonth buckets a month's movements by type, each bucket
// sorted by last name then first name. Every type is present, empty
// when the month has none of it.
func (s *StatsService) GroupByTypeForMonth(ctx context.Context, monthKey string) (map[core.MovementType][]core.Movement, error) {
	movements, err := s.store.ListByMonth(ctx, monthKey)
	if err != nil {
		return nil, err
	}
	core.SortCanonical(movements)
	return core.GroupByType(movements), nil
}

// AvailableMonths returns the month filter options, most recent first.
// The current calendar month is offered even when it has no movements
// yet, merged into its place in the descending order.
func (s *StatsService) AvailableMonths(ctx context.Context) ([]string, error) {
	stored, err := s.store.DistinctMonths(ctx)
	if err != nil {
		return nil, err
	}

	current := core.MonthKeyFor(s.now())
	months := make([]string, 0, len(stored)+1)
	merged := false
	for _, m := range stored {
		if m == current {
			merged = true
		} else if !merged && m < current {
			months = append(months, current)
			merged = true
		}
		months = append(months, m)
	}
	if !merged {
		months = append(months, current)
	}
	return months, nil
}

// CountByMonth returns total movements per month, most recent first.
func (s *StatsService) CountByMonth(ctx context.Context) ([]core.MonthCount, error) {
	return s.store.CountByMonth(ctx)
}

// General computes the global figures of the admin statistics page.
func (s *StatsService) General(ctx context.Context) (core.GeneralStatistics, error) {
	total, err := s.store.CountMovements(ctx)
	if err != nil {
		return core.GeneralStatistics{}, err
	}
	acknowledged, err := s.store.CountAcknowledged(ctx)
	if err != nil {
		return core.GeneralStatistics{}, err
	}
	currentMonth, err := s.store.CountForMonth(ctx, core.MonthKeyFor(s.now()))
	if err != nil {
		return core.GeneralStatistics{}, err
	}

	return core.GeneralStatistics{
		Total:           total,
		Acknowledged:    acknowledged,
		Pending:         total - acknowledged,
		CurrentMonth:    currentMonth,
		AcknowledgedPct: core.AcknowledgedPercentage(acknowledged, total),
	}, nil
}
