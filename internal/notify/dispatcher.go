package notify

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"

	"mouvements/internal/core"
)

//go:embed templates/*.html
var templateFS embed.FS

var emailTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// MonthStore gives the dispatcher the month's movements so the email
// can carry the full monthly picture, not just the changed row.
type MonthStore interface {
	ListByMonth(ctx context.Context, monthKey string) ([]core.Movement, error)
}

type emailAction struct {
	subjectVerb string
	intro       string
}

var (
	actionCreated = emailAction{
		subjectVerb: "Nouveau mouvement",
		intro:       "Un nouveau mouvement de personnel a été enregistré.",
	}
	actionModified = emailAction{
		subjectVerb: "Mouvement modifié",
		intro:       "Un mouvement de personnel a été modifié.",
	}
	actionDeleted = emailAction{
		subjectVerb: "Mouvement supprimé",
		intro:       "Un mouvement de personnel a été supprimé.",
	}
)

// Dispatcher renders and sends the per-change email. One email per
// lifecycle change, addressed to the IT service inbox.
type Dispatcher struct {
	store     MonthStore
	mailer    Mailer
	recipient string
	baseURL   string
}

func NewDispatcher(store MonthStore, mailer Mailer, recipient, baseURL string) *Dispatcher {
	return &Dispatcher{
		store:     store,
		mailer:    mailer,
		recipient: recipient,
		baseURL:   baseURL,
	}
}

func (d *Dispatcher) MovementCreated(ctx context.Context, m core.Movement) error {
	return d.dispatch(ctx, m, actionCreated)
}

func (d *Dispatcher) MovementModified(ctx context.Context, m core.Movement) error {
	return d.dispatch(ctx, m, actionModified)
}

// MovementDeleted is called before the row is removed, so the month
// listing still includes the movement being deleted.
func (d *Dispatcher) MovementDeleted(ctx context.Context, m core.Movement) error {
	return d.dispatch(ctx, m, actionDeleted)
}

func (d *Dispatcher) dispatch(ctx context.Context, m core.Movement, action emailAction) error {
	movements, err := d.store.ListByMonth(ctx, m.MonthKey)
	if err != nil {
		return &NotificationError{Op: "load month", Err: err}
	}
	core.SortCanonical(movements)

	subject := fmt.Sprintf("[EMSR] %s - %s - %s (%s)",
		action.subjectVerb, m.Type.Label(), m.DisplayName(), core.MonthLabel(m.MonthKey))

	body, err := d.render("movement_notification.html", buildEmailData(m, action, movements, d.baseURL))
	if err != nil {
		return err
	}

	if err := d.mailer.Send(ctx, d.recipient, subject, body); err != nil {
		return &NotificationError{Op: "send", Err: err}
	}

	slog.InfoContext(ctx, "Notification email sent",
		"id", m.ID,
		"subject", subject,
		"recipient", d.recipient)
	return nil
}

// SendTest sends a plain test email so admins can verify the SMTP
// settings without touching real movements.
func (d *Dispatcher) SendTest(ctx context.Context) error {
	body, err := d.render("test_email.html", struct{ DashboardURL string }{d.baseURL})
	if err != nil {
		return err
	}
	if err := d.mailer.Send(ctx, d.recipient, "[EMSR] Email de test", body); err != nil {
		return &NotificationError{Op: "send", Err: err}
	}
	return nil
}

func (d *Dispatcher) render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := emailTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", &NotificationError{Op: "render", Err: err}
	}
	return buf.String(), nil
}

type emailData struct {
	Intro        string
	Movement     movementView
	MonthLabel   string
	Total        int
	Groups       []groupView
	DashboardURL string
}

type groupView struct {
	Label     string
	Color     string
	Icon      string
	Count     int
	Movements []movementView
}

type movementView struct {
	Name           string
	EmployeeNumber string
	JobTitle       string
	ContractKind   string
	Department     string
	EffectiveDate  string
	Note           string
	Highlighted    bool
}

func buildEmailData(changed core.Movement, action emailAction, movements []core.Movement, baseURL string) emailData {
	grouped := core.GroupByType(movements)

	groups := make([]groupView, 0, len(core.MovementTypes()))
	for _, typ := range core.MovementTypes() {
		bucket := grouped[typ]
		views := make([]movementView, 0, len(bucket))
		for _, m := range bucket {
			views = append(views, toView(m, m.ID == changed.ID))
		}
		groups = append(groups, groupView{
			Label:     typ.Label(),
			Color:     typ.Color(),
			Icon:      typ.Icon(),
			Count:     len(bucket),
			Movements: views,
		})
	}

	return emailData{
		Intro:        action.intro,
		Movement:     toView(changed, true),
		MonthLabel:   core.MonthLabel(changed.MonthKey),
		Total:        len(movements),
		Groups:       groups,
		DashboardURL: baseURL + "/?mois=" + changed.MonthKey,
	}
}

func toView(m core.Movement, highlighted bool) movementView {
	return movementView{
		Name:           m.DisplayName(),
		EmployeeNumber: m.EmployeeNumber,
		JobTitle:       m.JobTitle,
		ContractKind:   m.ContractKind,
		Department:     m.Department,
		EffectiveDate:  m.EffectiveDate.Format("02/01/2006"),
		Note:           m.Note,
		Highlighted:    highlighted,
	}
}
