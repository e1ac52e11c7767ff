package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"mouvements/internal/core"
)

type fakeMonthStore struct {
	movements []core.Movement
	err       error
}

func (f *fakeMonthStore) ListByMonth(context.Context, string) ([]core.Movement, error) {
	return f.movements, f.err
}

type fakeMailer struct {
	to      string
	subject string
	body    string
	err     error
	sent    int
}

func (f *fakeMailer) Send(_ context.Context, to, subject, htmlBody string) error {
	f.sent++
	f.to = to
	f.subject = subject
	f.body = htmlBody
	return f.err
}

func testMovement() core.Movement {
	return core.Movement{
		ID:             42,
		Type:           core.Entry,
		LastName:       "Durand",
		FirstName:      "Claire",
		EmployeeNumber: "A12345",
		JobTitle:       "Développeuse",
		ContractKind:   "CDI",
		Department:     "DSI",
		EffectiveDate:  time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		MonthKey:       "2024-03",
	}
}

func TestDispatcher_Subjects(t *testing.T) {
	m := testMovement()
	tests := []struct {
		name     string
		dispatch func(*Dispatcher, context.Context, core.Movement) error
		want     string
	}{
		{
			name:     "created",
			dispatch: (*Dispatcher).MovementCreated,
			want:     "[EMSR] Nouveau mouvement - Entrée - Claire Durand (Mars 2024)",
		},
		{
			name:     "modified",
			dispatch: (*Dispatcher).MovementModified,
			want:     "[EMSR] Mouvement modifié - Entrée - Claire Durand (Mars 2024)",
		},
		{
			name:     "deleted",
			dispatch: (*Dispatcher).MovementDeleted,
			want:     "[EMSR] Mouvement supprimé - Entrée - Claire Durand (Mars 2024)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mailer := &fakeMailer{}
			d := NewDispatcher(&fakeMonthStore{movements: []core.Movement{m}}, mailer, "dsi@example.fr", "http://mouvements.local")

			if err := tt.dispatch(d, context.Background(), m); err != nil {
				t.Fatalf("dispatch error = %v", err)
			}
			if mailer.subject != tt.want {
				t.Errorf("subject = %q, want %q", mailer.subject, tt.want)
			}
			if mailer.to != "dsi@example.fr" {
				t.Errorf("to = %q, want dsi@example.fr", mailer.to)
			}
		})
	}
}

func TestDispatcher_BodyCarriesTheMonth(t *testing.T) {
	m := testMovement()
	other := testMovement()
	other.ID = 43
	other.Type = core.Exit
	other.LastName = "Martin"
	other.FirstName = "Paul"

	mailer := &fakeMailer{}
	d := NewDispatcher(&fakeMonthStore{movements: []core.Movement{other, m}}, mailer, "dsi@example.fr", "http://mouvements.local")

	if err := d.MovementCreated(context.Background(), m); err != nil {
		t.Fatalf("MovementCreated() error = %v", err)
	}

	for _, want := range []string{
		"Claire Durand",
		"Paul Martin",
		"Mars 2024",
		"Entrée", "Sortie", "Mobilité", "Renouvellement CDD",
		"A12345",
		"http://mouvements.local/?mois=2024-03",
		"2 mouvement(s)",
	} {
		if !strings.Contains(mailer.body, want) {
			t.Errorf("body should contain %q", want)
		}
	}
	if !strings.Contains(mailer.body, `class="highlighted"`) {
		t.Error("the changed movement should be highlighted")
	}
}

func TestDispatcher_StoreFailure(t *testing.T) {
	mailer := &fakeMailer{}
	d := NewDispatcher(&fakeMonthStore{err: errors.New("db closed")}, mailer, "dsi@example.fr", "")

	err := d.MovementCreated(context.Background(), testMovement())

	var nErr *NotificationError
	if !errors.As(err, &nErr) {
		t.Fatalf("error = %v, want *NotificationError", err)
	}
	if nErr.Op != "load month" {
		t.Errorf("Op = %q, want load month", nErr.Op)
	}
	if mailer.sent != 0 {
		t.Error("nothing should be sent when the month cannot be loaded")
	}
}

func TestDispatcher_SendFailure(t *testing.T) {
	mailer := &fakeMailer{err: &TransportError{Host: "smtp.local", Err: errors.New("connection refused")}}
	d := NewDispatcher(&fakeMonthStore{}, mailer, "dsi@example.fr", "")

	err := d.MovementModified(context.Background(), testMovement())

	var nErr *NotificationError
	if !errors.As(err, &nErr) {
		t.Fatalf("error = %v, want *NotificationError", err)
	}
	var tErr *TransportError
	if !errors.As(err, &tErr) {
		t.Errorf("error chain should carry the *TransportError, got %v", err)
	}
}

func TestDispatcher_SendTest(t *testing.T) {
	mailer := &fakeMailer{}
	d := NewDispatcher(&fakeMonthStore{}, mailer, "dsi@example.fr", "http://mouvements.local")

	if err := d.SendTest(context.Background()); err != nil {
		t.Fatalf("SendTest() error = %v", err)
	}
	if mailer.subject != "[EMSR] Email de test" {
		t.Errorf("subject = %q", mailer.subject)
	}
	if !strings.Contains(mailer.body, "http://mouvements.local") {
		t.Error("test email should link back to the dashboard")
	}
}
