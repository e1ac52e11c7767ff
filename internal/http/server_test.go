package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"mouvements/internal/core"
	"mouvements/internal/log"
	"mouvements/internal/services"
)

// memStore is an in-memory MovementStore backing the handler tests.
type memStore struct {
	mu        sync.Mutex
	nextID    int64
	movements map[int64]core.Movement
}

func newMemStore() *memStore {
	return &memStore{nextID: 1, movements: make(map[int64]core.Movement)}
}

func (s *memStore) InsertMovement(_ context.Context, m *core.Movement) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.ID = s.nextID
	s.nextID++
	s.movements[m.ID] = *m
	return m.ID, nil
}

func (s *memStore) UpdateMovement(_ context.Context, m core.Movement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.movements[m.ID]; !ok {
		return core.ErrMovementNotFound
	}
	s.movements[m.ID] = m
	return nil
}

func (s *memStore) DeleteMovement(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.movements[id]; !ok {
		return core.ErrMovementNotFound
	}
	delete(s.movements, id)
	return nil
}

func (s *memStore) GetMovement(_ context.Context, id int64) (core.Movement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.movements[id]
	if !ok {
		return core.Movement{}, core.ErrMovementNotFound
	}
	return m, nil
}

func (s *memStore) ListByMonth(_ context.Context, monthKey string) ([]core.Movement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Movement
	for _, m := range s.movements {
		if m.MonthKey == monthKey {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *memStore) ListUnacknowledged(_ context.Context, monthKey string) ([]core.Movement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Movement
	for _, m := range s.movements {
		if m.MonthKey == monthKey && !m.Acknowledged {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *memStore) SearchMovements(_ context.Context, query, monthKey string) ([]core.Movement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := strings.ToLower(query)
	var out []core.Movement
	for _, m := range s.movements {
		if m.MonthKey != monthKey {
			continue
		}
		if strings.Contains(strings.ToLower(m.LastName), q) ||
			strings.Contains(strings.ToLower(m.FirstName), q) ||
			strings.Contains(strings.ToLower(m.EmployeeNumber), q) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *memStore) ListRecent(_ context.Context, limit int) ([]core.Movement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Movement
	for _, m := range s.movements {
		if len(out) >= limit {
			break
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *memStore) DistinctMonths(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]bool)
	for _, m := range s.movements {
		seen[m.MonthKey] = true
	}
	var out []string
	for key := range seen {
		out = append(out, key)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(out)))
	return out, nil
}

func (s *memStore) CountByTypeForMonth(_ context.Context, monthKey string) (map[core.MovementType]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[core.MovementType]int)
	for _, m := range s.movements {
		if m.MonthKey == monthKey {
			counts[m.Type]++
		}
	}
	return counts, nil
}

func (s *memStore) CountByMonth(_ context.Context) ([]core.MonthCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byMonth := make(map[string]int)
	for _, m := range s.movements {
		byMonth[m.MonthKey]++
	}
	var out []core.MonthCount
	for key, count := range byMonth {
		out = append(out, core.MonthCount{MonthKey: key, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MonthKey > out[j].MonthKey })
	return out, nil
}

func (s *memStore) CountMovements(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.movements), nil
}

func (s *memStore) CountAcknowledged(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.movements {
		if m.Acknowledged {
			n++
		}
	}
	return n, nil
}

func (s *memStore) CountForMonth(_ context.Context, monthKey string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.movements {
		if m.MonthKey == monthKey {
			n++
		}
	}
	return n, nil
}

// memDirectory is an in-memory user directory.
type memDirectory struct {
	mu     sync.Mutex
	nextID int64
	users  map[string]core.Actor
}

func newMemDirectory() *memDirectory {
	return &memDirectory{nextID: 1, users: make(map[string]core.Actor)}
}

func (d *memDirectory) GetUserByUsername(_ context.Context, username string) (core.Actor, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	a, ok := d.users[username]
	if !ok {
		return core.Actor{}, core.ErrUserNotFound
	}
	return a, nil
}

func (d *memDirectory) CreateUser(_ context.Context, a *core.Actor) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	a.ID = d.nextID
	d.nextID++
	d.users[a.Username] = *a
	return nil
}

func (d *memDirectory) ListUsers(_ context.Context) ([]core.Actor, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]core.Actor, 0, len(d.users))
	for _, a := range d.users {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayName < out[j].DisplayName })
	return out, nil
}

type fakeTestMailer struct {
	sent int
	err  error
}

func (m *fakeTestMailer) SendTest(context.Context) error {
	if m.err != nil {
		return m.err
	}
	m.sent++
	return nil
}

type testEnv struct {
	server *Server
	store  *memStore
	users  *memDirectory
	mailer *fakeTestMailer
}

func newTestServer(t *testing.T) *testEnv {
	t.Helper()

	store := newMemStore()
	users := newMemDirectory()
	mailer := &fakeTestMailer{}

	server, err := NewServer(Config{
		Port:      "0",
		BaseURL:   "http://localhost",
		Movements: services.NewMovementService(store, nil, nil),
		Stats:     services.NewStatsService(store),
		Users:     users,
		TestMail:  mailer,
		Logger:    log.New(log.DefaultConfig()),
	})
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		server.Shutdown(ctx)
	})

	return &testEnv{server: server, store: store, users: users, mailer: mailer}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) seed(t *testing.T, m core.Movement) core.Movement {
	t.Helper()
	if m.MonthKey == "" {
		m.MonthKey = core.MonthKeyFor(m.EffectiveDate)
	}
	if _, err := e.store.InsertMovement(context.Background(), &m); err != nil {
		t.Fatalf("seed movement: %v", err)
	}
	return m
}

func postForm(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func validForm() url.Values {
	return url.Values{
		"type":       {"ENTREE"},
		"nom":        {"Durand"},
		"prenom":     {"Claire"},
		"matricule":  {"A12345"},
		"fonction":   {"Développeuse"},
		"contrat":    {"CDI"},
		"service":    {"DSI"},
		"date_effet": {"2024-03-15"},
	}
}

func TestServer_Dashboard(t *testing.T) {
	env := newTestServer(t)
	env.seed(t, core.Movement{
		Type: core.Entry, LastName: "Durand", FirstName: "Claire",
		EmployeeNumber: "A12345", JobTitle: "Développeuse",
		ContractKind: "CDI", Department: "DSI",
		EffectiveDate: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
	})

	rec := env.do(httptest.NewRequest(http.MethodGet, "/?mois=2024-03", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET / status = %d, want 200", rec.Code)
	}

	body := rec.Body.String()
	for _, want := range []string{"Mars 2024", "Durand", "Entrée", "1 mouvement(s)"} {
		if !strings.Contains(body, want) {
			t.Errorf("dashboard body missing %q", want)
		}
	}
	// All four type sections are rendered even when empty.
	for _, label := range []string{"Entrée", "Sortie", "Mobilité", "Renouvellement CDD"} {
		if !strings.Contains(body, label) {
			t.Errorf("dashboard body missing section %q", label)
		}
	}
}

func TestServer_DashboardMalformedMonthFallsBack(t *testing.T) {
	env := newTestServer(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/?mois=n'importe-quoi", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET / status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), core.MonthLabel(core.CurrentMonthKey())) {
		t.Error("malformed month should fall back to the current month")
	}
}

func TestServer_SecurityHeaders(t *testing.T) {
	env := newTestServer(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q, want DENY", got)
	}
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if rec.Header().Get("Content-Security-Policy") == "" {
		t.Error("Content-Security-Policy header missing")
	}
}

func TestServer_MetricsCountSuspiciousRequests(t *testing.T) {
	env := newTestServer(t)

	if rec := env.do(httptest.NewRequest(http.MethodGet, "/.git/config", nil)); rec.Code == http.StatusOK {
		t.Fatal("probe path should not resolve")
	}

	rec := env.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /metrics status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "suspicious_requests_total 1") {
		t.Error("metrics should count the suspicious request")
	}
}

func TestServer_CreateMovement(t *testing.T) {
	env := newTestServer(t)

	rec := env.do(postForm("/mouvements", validForm()))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("POST /mouvements status = %d, want 303", rec.Code)
	}

	location := rec.Header().Get("Location")
	if !strings.HasPrefix(location, "/?mois=2024-03") {
		t.Errorf("redirect = %q, want dashboard for 2024-03", location)
	}
	if !strings.Contains(location, "niveau=success") {
		t.Errorf("redirect = %q, want a success flash", location)
	}

	movements, _ := env.store.ListByMonth(context.Background(), "2024-03")
	if len(movements) != 1 {
		t.Fatalf("stored %d movements, want 1", len(movements))
	}
	if movements[0].MonthKey != "2024-03" {
		t.Errorf("MonthKey = %q, want 2024-03", movements[0].MonthKey)
	}
}

func TestServer_CreateMovement_ValidationFlash(t *testing.T) {
	env := newTestServer(t)

	form := validForm()
	form.Set("nom", "")
	rec := env.do(postForm("/mouvements", form))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}

	location, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parse redirect: %v", err)
	}
	if location.Path != "/mouvements/nouveau" {
		t.Errorf("redirect path = %q, want /mouvements/nouveau", location.Path)
	}
	if location.Query().Get("niveau") != "danger" {
		t.Errorf("flash level = %q, want danger", location.Query().Get("niveau"))
	}
	if !strings.Contains(location.Query().Get("flash"), "Nom") {
		t.Errorf("flash = %q, should name the offending field", location.Query().Get("flash"))
	}

	if n, _ := env.store.CountMovements(context.Background()); n != 0 {
		t.Errorf("stored %d movements, want 0 after validation failure", n)
	}
}

func TestServer_UpdateMovesDashboardMonth(t *testing.T) {
	env := newTestServer(t)
	seeded := env.seed(t, core.Movement{
		Type: core.Entry, LastName: "Durand", FirstName: "Claire",
		EmployeeNumber: "A12345", JobTitle: "Développeuse",
		ContractKind: "CDI", Department: "DSI",
		EffectiveDate: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
	})

	form := validForm()
	form.Set("date_effet", "2024-07-01")
	rec := env.do(postForm("/mouvements/1", form))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if !strings.HasPrefix(rec.Header().Get("Location"), "/?mois=2024-07") {
		t.Errorf("redirect = %q, want dashboard for 2024-07", rec.Header().Get("Location"))
	}

	updated, err := env.store.GetMovement(context.Background(), seeded.ID)
	if err != nil {
		t.Fatalf("GetMovement() error = %v", err)
	}
	if updated.MonthKey != "2024-07" {
		t.Errorf("MonthKey = %q, want 2024-07", updated.MonthKey)
	}
}

func TestServer_DeleteMovement(t *testing.T) {
	env := newTestServer(t)
	env.seed(t, core.Movement{
		Type: core.Exit, LastName: "Martin", FirstName: "Paul",
		EmployeeNumber: "B200", JobTitle: "Comptable",
		ContractKind: "CDI", Department: "Finances",
		EffectiveDate: time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
	})

	rec := env.do(postForm("/mouvements/1/supprimer", url.Values{}))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if n, _ := env.store.CountMovements(context.Background()); n != 0 {
		t.Errorf("stored %d movements, want 0 after delete", n)
	}
}

func TestServer_DeleteUnknownMovement(t *testing.T) {
	env := newTestServer(t)

	rec := env.do(postForm("/mouvements/99/supprimer", url.Values{}))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	location, _ := url.Parse(rec.Header().Get("Location"))
	if location.Query().Get("niveau") != "danger" {
		t.Errorf("flash level = %q, want danger for an unknown movement", location.Query().Get("niveau"))
	}
}

func TestServer_Acknowledge(t *testing.T) {
	env := newTestServer(t)
	env.seed(t, core.Movement{
		Type: core.Mobility, LastName: "Albert", FirstName: "Zoé",
		EmployeeNumber: "C300", JobTitle: "Cheffe de projet",
		ContractKind: "CDI", Department: "DSI",
		EffectiveDate: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
	})

	rec := env.do(postForm("/mouvements/1/prise-en-compte", url.Values{"etat": {"1"}}))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}

	m, _ := env.store.GetMovement(context.Background(), 1)
	if !m.Acknowledged || m.AcknowledgedAt == nil || m.AcknowledgedBy == nil {
		t.Error("acknowledgement fields should all be set")
	}

	// The pending list return path goes back to the pending view.
	env.seed(t, core.Movement{
		Type: core.Entry, LastName: "Brun", FirstName: "Luc",
		EmployeeNumber: "D400", JobTitle: "Technicien",
		ContractKind: "CDD", Department: "Logistique",
		EffectiveDate: time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC),
	})
	rec = env.do(postForm("/mouvements/2/prise-en-compte", url.Values{"etat": {"1"}, "retour": {"en-attente"}}))
	if !strings.HasPrefix(rec.Header().Get("Location"), "/en-attente?mois=2024-03") {
		t.Errorf("redirect = %q, want the pending list", rec.Header().Get("Location"))
	}
}

func TestServer_PendingList(t *testing.T) {
	env := newTestServer(t)
	env.seed(t, core.Movement{
		Type: core.Entry, LastName: "Durand", FirstName: "Claire",
		EmployeeNumber: "A12345", JobTitle: "Développeuse",
		ContractKind: "CDI", Department: "DSI",
		EffectiveDate: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
	})
	acked := time.Date(2024, 3, 16, 10, 0, 0, 0, time.UTC)
	env.seed(t, core.Movement{
		Type: core.Exit, LastName: "Martin", FirstName: "Paul",
		EmployeeNumber: "B200", JobTitle: "Comptable",
		ContractKind: "CDI", Department: "Finances",
		EffectiveDate: time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		Acknowledged:  true, AcknowledgedAt: &acked,
	})

	rec := env.do(httptest.NewRequest(http.MethodGet, "/en-attente?mois=2024-03", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Durand") {
		t.Error("pending list should contain the unacknowledged movement")
	}
	if strings.Contains(body, "Martin") {
		t.Error("pending list should not contain acknowledged movements")
	}
}

func TestServer_Search(t *testing.T) {
	env := newTestServer(t)
	env.seed(t, core.Movement{
		Type: core.Entry, LastName: "Durand", FirstName: "Claire",
		EmployeeNumber: "A12345", JobTitle: "Développeuse",
		ContractKind: "CDI", Department: "DSI",
		EffectiveDate: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
	})

	rec := env.do(httptest.NewRequest(http.MethodGet, "/recherche?q=dur&mois=2024-03", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Durand") {
		t.Error("search results should contain the matching movement")
	}

	rec = env.do(httptest.NewRequest(http.MethodGet, "/recherche?q=zzz&mois=2024-03", nil))
	if !strings.Contains(rec.Body.String(), "Aucun résultat") {
		t.Error("empty search should show the no-results message")
	}
}

func TestServer_Statistics(t *testing.T) {
	env := newTestServer(t)
	env.seed(t, core.Movement{
		Type: core.Entry, LastName: "Durand", FirstName: "Claire",
		EmployeeNumber: "A12345", JobTitle: "Développeuse",
		ContractKind: "CDI", Department: "DSI",
		EffectiveDate: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
	})

	rec := env.do(httptest.NewRequest(http.MethodGet, "/statistiques", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"Statistiques", "Mars 2024", "Taux de prise en compte"} {
		if !strings.Contains(body, want) {
			t.Errorf("statistics body missing %q", want)
		}
	}
}

func TestServer_StatisticsListsUsers(t *testing.T) {
	env := newTestServer(t)
	if err := env.users.CreateUser(context.Background(), &core.Actor{
		Username: "cdupont", DisplayName: "Catherine Dupont", Role: "user",
	}); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	rec := env.do(httptest.NewRequest(http.MethodGet, "/statistiques", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Utilisateurs") {
		t.Error("statistics page should have the user directory section")
	}
	for _, want := range []string{"Catherine Dupont", "cdupont"} {
		if !strings.Contains(body, want) {
			t.Errorf("user list missing %q", want)
		}
	}
}

func TestServer_TestEmail(t *testing.T) {
	env := newTestServer(t)

	rec := env.do(postForm("/admin/email-test", url.Values{}))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if env.mailer.sent != 1 {
		t.Errorf("sent %d test emails, want 1", env.mailer.sent)
	}
	location, _ := url.Parse(rec.Header().Get("Location"))
	if location.Path != "/statistiques" {
		t.Errorf("redirect path = %q, want /statistiques", location.Path)
	}
}

func TestServer_ActorProvisioning(t *testing.T) {
	env := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-User", "cdupont")
	req.Header.Set("X-Forwarded-Name", "Catherine Dupont")
	rec := env.do(req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	actor, err := env.users.GetUserByUsername(context.Background(), "cdupont")
	if err != nil {
		t.Fatalf("user should be provisioned on first request: %v", err)
	}
	if actor.DisplayName != "Catherine Dupont" {
		t.Errorf("DisplayName = %q, want Catherine Dupont", actor.DisplayName)
	}
	if !strings.Contains(rec.Body.String(), "Catherine Dupont") {
		t.Error("page should show the resolved actor")
	}
}

func TestServer_CreateRecordsActor(t *testing.T) {
	env := newTestServer(t)

	req := postForm("/mouvements", validForm())
	req.Header.Set("X-Forwarded-User", "cdupont")
	if rec := env.do(req); rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}

	m, err := env.store.GetMovement(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetMovement() error = %v", err)
	}
	if m.CreatedBy.Username != "cdupont" {
		t.Errorf("CreatedBy = %q, want cdupont", m.CreatedBy.Username)
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trims whitespace", "  Durand  ", "Durand"},
		{"strips control characters", "Dur\x00and\x07", "Durand"},
		{"keeps accents", "Zoé Lefèvre", "Zoé Lefèvre"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeInput(tt.input); got != tt.want {
				t.Errorf("sanitizeInput(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRequestedMonth(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"valid month", "/?mois=2024-03", "2024-03"},
		{"missing month", "/", core.CurrentMonthKey()},
		{"malformed month", "/?mois=03-2024", core.CurrentMonthKey()},
		{"junk", "/?mois=abc", core.CurrentMonthKey()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, tt.url, nil)
			if got := requestedMonth(r); got != tt.want {
				t.Errorf("requestedMonth() = %q, want %q", got, tt.want)
			}
		})
	}
}
