package http

import (
	"context"
	"net/http"
	"sync/atomic"

	"mouvements/internal/core"
	"mouvements/internal/log"
)

// groupView is one movement type section of the dashboard, in canonical
// type order.
type groupView struct {
	Type      core.MovementType
	Label     string
	Color     string
	Icon      string
	Count     int
	Movements []core.Movement
}

// monthPage is the cached per-month dashboard payload.
type monthPage struct {
	MonthKey string
	Total    int
	Groups   []groupView
}

func (s *Server) monthPageFor(ctx context.Context, monthKey string) (monthPage, error) {
	if page, ok := s.monthCache.Get(monthKey); ok {
		atomic.AddInt64(&s.appMetrics.cacheHits, 1)
		return page, nil
	}
	atomic.AddInt64(&s.appMetrics.cacheMisses, 1)

	grouped, err := s.stats.GroupByTypeForMonth(ctx, monthKey)
	if err != nil {
		return monthPage{}, err
	}

	page := monthPage{MonthKey: monthKey}
	for _, t := range core.MovementTypes() {
		movements := grouped[t]
		page.Total += len(movements)
		page.Groups = append(page.Groups, groupView{
			Type:      t,
			Label:     t.Label(),
			Color:     t.Color(),
			Icon:      t.Icon(),
			Count:     len(movements),
			Movements: movements,
		})
	}

	s.monthCache.Set(monthKey, page)
	return page, nil
}

// invalidateMonth drops the cached dashboard for a month after a
// mutation. An empty key is ignored.
func (s *Server) invalidateMonth(monthKey string) {
	if monthKey != "" {
		s.monthCache.Delete(monthKey)
	}
}

type monthOption struct {
	Key      string
	Label    string
	Selected bool
}

func (s *Server) monthOptions(ctx context.Context, selected string) ([]monthOption, error) {
	months, err := s.stats.AvailableMonths(ctx)
	if err != nil {
		return nil, err
	}
	options := make([]monthOption, 0, len(months))
	for _, key := range months {
		options = append(options, monthOption{
			Key:      key,
			Label:    core.MonthLabel(key),
			Selected: key == selected,
		})
	}
	return options, nil
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	monthKey := requestedMonth(r)

	page, err := s.monthPageFor(r.Context(), monthKey)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Dashboard load failed",
			log.FieldError, err,
			log.FieldMonthKey, monthKey,
			log.FieldComponent, log.ComponentHTTP)
		http.Error(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}

	months, err := s.monthOptions(r.Context(), monthKey)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Month list load failed",
			log.FieldError, err,
			log.FieldComponent, log.ComponentHTTP)
		http.Error(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}

	data := struct {
		MonthKey   string
		MonthLabel string
		Months     []monthOption
		Total      int
		Groups     []groupView
		Flash      flash
		Actor      core.Actor
	}{
		MonthKey:   monthKey,
		MonthLabel: core.MonthLabel(monthKey),
		Months:     months,
		Total:      page.Total,
		Groups:     page.Groups,
		Flash:      flashFrom(r),
		Actor:      actorFrom(r.Context()),
	}

	s.render(w, r, "dashboard.html", data)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := sanitizeInput(r.URL.Query().Get("q"))
	monthKey := requestedMonth(r)

	var movements []core.Movement
	if query != "" {
		var err error
		movements, err = s.movements.Search(r.Context(), query, monthKey)
		if err != nil {
			s.logger.ErrorContext(r.Context(), "Search failed",
				log.FieldError, err,
				log.FieldMonthKey, monthKey,
				log.FieldComponent, log.ComponentHTTP)
			http.Error(w, "Erreur interne du serveur", http.StatusInternalServerError)
			return
		}
	}

	data := struct {
		Query      string
		MonthKey   string
		MonthLabel string
		Movements  []core.Movement
		Flash      flash
		Actor      core.Actor
	}{
		Query:      query,
		MonthKey:   monthKey,
		MonthLabel: core.MonthLabel(monthKey),
		Movements:  movements,
		Flash:      flashFrom(r),
		Actor:      actorFrom(r.Context()),
	}

	s.render(w, r, "search.html", data)
}

func (s *Server) handlePending(w http.ResponseWriter, r *http.Request) {
	monthKey := requestedMonth(r)

	movements, err := s.movements.Unacknowledged(r.Context(), monthKey)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Pending list load failed",
			log.FieldError, err,
			log.FieldMonthKey, monthKey,
			log.FieldComponent, log.ComponentHTTP)
		http.Error(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}

	data := struct {
		MonthKey   string
		MonthLabel string
		Movements  []core.Movement
		Flash      flash
		Actor      core.Actor
	}{
		MonthKey:   monthKey,
		MonthLabel: core.MonthLabel(monthKey),
		Movements:  movements,
		Flash:      flashFrom(r),
		Actor:      actorFrom(r.Context()),
	}

	s.render(w, r, "pending.html", data)
}
