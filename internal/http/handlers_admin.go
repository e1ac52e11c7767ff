package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"mouvements/internal/core"
	"mouvements/internal/log"
)

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	general, err := s.stats.General(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "General statistics load failed",
			log.FieldError, err,
			log.FieldComponent, log.ComponentHTTP)
		http.Error(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}

	byMonth, err := s.stats.CountByMonth(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Monthly counts load failed",
			log.FieldError, err,
			log.FieldComponent, log.ComponentHTTP)
		http.Error(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}

	users, err := s.users.ListUsers(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "User directory load failed",
			log.FieldError, err,
			log.FieldComponent, log.ComponentHTTP)
		http.Error(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}

	recent, err := s.movements.Recent(r.Context(), 10)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Recent movements load failed",
			log.FieldError, err,
			log.FieldComponent, log.ComponentHTTP)
		http.Error(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}

	monthKey := requestedMonth(r)
	counts, err := s.stats.CountByTypeForMonth(r.Context(), monthKey)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Type counts load failed",
			log.FieldError, err,
			log.FieldMonthKey, monthKey,
			log.FieldComponent, log.ComponentHTTP)
		http.Error(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}

	type typeCount struct {
		Label string
		Color string
		Icon  string
		Count int
	}
	typeCounts := make([]typeCount, 0, len(core.MovementTypes()))
	for _, t := range core.MovementTypes() {
		typeCounts = append(typeCounts, typeCount{
			Label: t.Label(),
			Color: t.Color(),
			Icon:  t.Icon(),
			Count: counts[t],
		})
	}

	type monthRow struct {
		Key   string
		Label string
		Count int
	}
	monthRows := make([]monthRow, 0, len(byMonth))
	for _, mc := range byMonth {
		monthRows = append(monthRows, monthRow{
			Key:   mc.MonthKey,
			Label: core.MonthLabel(mc.MonthKey),
			Count: mc.Count,
		})
	}

	data := struct {
		General     core.GeneralStatistics
		MonthKey    string
		MonthLabel  string
		TypeCounts  []typeCount
		Months      []monthRow
		Recent      []core.Movement
		Users       []core.Actor
		MailEnabled bool
		Flash       flash
		Actor       core.Actor
	}{
		General:     general,
		MonthKey:    monthKey,
		MonthLabel:  core.MonthLabel(monthKey),
		TypeCounts:  typeCounts,
		Months:      monthRows,
		Recent:      recent,
		Users:       users,
		MailEnabled: s.testMail != nil,
		Flash:       flashFrom(r),
		Actor:       actorFrom(r.Context()),
	}

	s.render(w, r, "statistics.html", data)
}

func (s *Server) handleTestEmail(w http.ResponseWriter, r *http.Request) {
	if s.testMail == nil {
		s.redirectFlash(w, r, "/statistiques", flashWarning, "L'envoi d'emails n'est pas configuré.")
		return
	}
	if err := s.testMail.SendTest(r.Context()); err != nil {
		s.logger.ErrorContext(r.Context(), "Test email failed",
			log.FieldError, err,
			log.FieldComponent, log.ComponentNotify)
		s.redirectFlash(w, r, "/statistiques", flashDanger, "L'envoi de l'email de test a échoué.")
		return
	}
	s.redirectFlash(w, r, "/statistiques", flashSuccess, "L'email de test a été envoyé.")
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	health := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.uptime).String(),
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(health)
}

// handleReady performs readiness check with dependency verification
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]interface{})

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	// A cheap storage round-trip through the statistics service.
	if _, err := s.stats.General(r.Context()); err != nil {
		checks["storage"] = fmt.Sprintf("failed: %v", err)
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["storage"] = "ok"
	}

	checks["cache"] = map[string]interface{}{
		"month_entries": s.monthCache.Size(),
		"status":        "ok",
	}
	checks["rate_limiter"] = map[string]interface{}{
		"active_clients": s.rateLimiter.ActiveClients(),
		"status":         "ok",
	}

	response := map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}

	w.WriteHeader(httpStatus)
	json.NewEncoder(w).Encode(response)
}

// handleMetrics provides application and security metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	securityMetrics := s.securityDetector.GetMetrics()
	rateLimitMetrics := s.rateLimiter.GetMetrics()
	traceMetrics := s.traceMiddleware.GetMetrics()

	cacheHits := atomic.LoadInt64(&s.appMetrics.cacheHits)
	cacheMisses := atomic.LoadInt64(&s.appMetrics.cacheMisses)
	uptime := time.Since(s.appMetrics.uptime)

	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, "# HELP http_requests_total Total number of HTTP requests\n")
	fmt.Fprintf(w, "# TYPE http_requests_total counter\n")
	fmt.Fprintf(w, "http_requests_total %d\n\n", traceMetrics.TotalRequests)

	fmt.Fprintf(w, "# HELP http_request_duration_avg_ms Mean response time in milliseconds\n")
	fmt.Fprintf(w, "# TYPE http_request_duration_avg_ms gauge\n")
	fmt.Fprintf(w, "http_request_duration_avg_ms %d\n\n", traceMetrics.AverageResponseTime)

	fmt.Fprintf(w, "# HELP cache_hits_total Total cache hits\n")
	fmt.Fprintf(w, "# TYPE cache_hits_total counter\n")
	fmt.Fprintf(w, "cache_hits_total %d\n\n", cacheHits)

	fmt.Fprintf(w, "# HELP cache_misses_total Total cache misses\n")
	fmt.Fprintf(w, "# TYPE cache_misses_total counter\n")
	fmt.Fprintf(w, "cache_misses_total %d\n\n", cacheMisses)

	fmt.Fprintf(w, "# HELP cache_entries Current cache entries\n")
	fmt.Fprintf(w, "# TYPE cache_entries gauge\n")
	fmt.Fprintf(w, "cache_entries{type=\"month\"} %d\n\n", s.monthCache.Size())

	fmt.Fprintf(w, "# HELP rate_limit_hits_total Total rate limit hits\n")
	fmt.Fprintf(w, "# TYPE rate_limit_hits_total counter\n")
	fmt.Fprintf(w, "rate_limit_hits_total %d\n\n", rateLimitMetrics.TotalHits)

	fmt.Fprintf(w, "# HELP suspicious_requests_total Total suspicious requests detected\n")
	fmt.Fprintf(w, "# TYPE suspicious_requests_total counter\n")
	fmt.Fprintf(w, "suspicious_requests_total %d\n\n", securityMetrics.SuspiciousRequests)

	fmt.Fprintf(w, "# HELP active_rate_limit_clients Currently tracked rate limit clients\n")
	fmt.Fprintf(w, "# TYPE active_rate_limit_clients gauge\n")
	fmt.Fprintf(w, "active_rate_limit_clients %d\n\n", s.rateLimiter.ActiveClients())

	fmt.Fprintf(w, "# HELP uptime_seconds Application uptime in seconds\n")
	fmt.Fprintf(w, "# TYPE uptime_seconds gauge\n")
	fmt.Fprintf(w, "uptime_seconds %.0f\n\n", uptime.Seconds())
}
