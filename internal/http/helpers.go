package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"mouvements/internal/core"
	"mouvements/internal/log"
)

type contextKey string

const actorContextKey contextKey = "actor"

// fallbackActor is used when the reverse proxy forwards no identity,
// e.g. on a trusted internal network without SSO.
var fallbackActor = core.Actor{Username: "systeme", DisplayName: "Système", Role: "user"}

// withActor resolves the acting user from the X-Forwarded-User header
// and stores it in the request context. Unknown users are provisioned
// in the directory on first request.
func (s *Server) withActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := fallbackActor
		if username := sanitizeInput(r.Header.Get("X-Forwarded-User")); username != "" {
			resolved, err := s.resolveActor(r.Context(), username, sanitizeInput(r.Header.Get("X-Forwarded-Name")))
			if err != nil {
				s.logger.ErrorContext(r.Context(), "Actor resolution failed",
					log.FieldError, err,
					log.FieldActor, username,
					log.FieldComponent, log.ComponentHTTP)
			} else {
				actor = resolved
			}
		}
		ctx := context.WithValue(r.Context(), actorContextKey, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) resolveActor(ctx context.Context, username, displayName string) (core.Actor, error) {
	actor, err := s.users.GetUserByUsername(ctx, username)
	if err == nil {
		return actor, nil
	}
	if !errors.Is(err, core.ErrUserNotFound) {
		return core.Actor{}, err
	}
	if displayName == "" {
		displayName = username
	}
	created := core.Actor{Username: username, DisplayName: displayName, Role: "user"}
	if err := s.users.CreateUser(ctx, &created); err != nil {
		return core.Actor{}, err
	}
	s.logger.InfoContext(ctx, "User provisioned",
		log.FieldActor, username,
		log.FieldComponent, log.ComponentHTTP)
	return created, nil
}

func actorFrom(ctx context.Context) core.Actor {
	if a, ok := ctx.Value(actorContextKey).(core.Actor); ok {
		return a
	}
	return fallbackActor
}

// requestedMonth returns the validated ?mois= query parameter, falling
// back to the current month for absent or malformed values.
func requestedMonth(r *http.Request) string {
	mois := strings.TrimSpace(r.URL.Query().Get("mois"))
	if core.IsValidMonthKey(mois) {
		return mois
	}
	return core.CurrentMonthKey()
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid movement id %q", r.PathValue("id"))
	}
	return id, nil
}

// Flash severity levels, rendered as Bootstrap alert classes.
const (
	flashSuccess = "success"
	flashWarning = "warning"
	flashDanger  = "danger"
)

// redirectFlash sends a 303 carrying a one-shot message in the query
// string. The app keeps no server-side session, so flashes travel with
// the redirect.
func (s *Server) redirectFlash(w http.ResponseWriter, r *http.Request, target, level, message string) {
	v := url.Values{}
	v.Set("flash", message)
	v.Set("niveau", level)
	sep := "?"
	if strings.Contains(target, "?") {
		sep = "&"
	}
	http.Redirect(w, r, target+sep+v.Encode(), http.StatusSeeOther)
}

type flash struct {
	Message string
	Level   string
}

func flashFrom(r *http.Request) flash {
	f := flash{
		Message: r.URL.Query().Get("flash"),
		Level:   r.URL.Query().Get("niveau"),
	}
	switch f.Level {
	case flashSuccess, flashWarning, flashDanger:
	default:
		f.Level = flashSuccess
	}
	return f
}

// sanitizeInput trims whitespace and strips control characters from
// user-provided values before they reach the domain layer.
func sanitizeInput(input string) string {
	cleaned := strings.Map(func(r rune) rune {
		if r < 32 && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, input)
	return strings.TrimSpace(cleaned)
}

// fieldLabels maps domain validation fields to the labels shown in the
// forms.
var fieldLabels = map[string]string{
	"type":           "Type de mouvement",
	"lastName":       "Nom",
	"firstName":      "Prénom",
	"employeeNumber": "Matricule",
	"jobTitle":       "Fonction",
	"contractKind":   "Type de contrat",
	"department":     "Service",
	"effectiveDate":  "Date d'effet",
}

func validationMessage(vErr *core.ValidationError) string {
	label, ok := fieldLabels[vErr.Field]
	if !ok {
		label = vErr.Field
	}
	if strings.Contains(vErr.Message, "at most") {
		return fmt.Sprintf("Le champ « %s » dépasse la longueur maximale autorisée.", label)
	}
	return fmt.Sprintf("Le champ « %s » est obligatoire ou invalide.", label)
}

// movementInputFromForm maps the submitted form to a MovementInput.
// Validation happens in the service; only the date needs parsing here.
func movementInputFromForm(r *http.Request) (core.MovementInput, error) {
	typ, _ := core.ParseMovementType(sanitizeInput(r.Form.Get("type")))

	in := core.MovementInput{
		Type:           typ,
		LastName:       sanitizeInput(r.Form.Get("nom")),
		FirstName:      sanitizeInput(r.Form.Get("prenom")),
		EmployeeNumber: sanitizeInput(r.Form.Get("matricule")),
		JobTitle:       sanitizeInput(r.Form.Get("fonction")),
		ContractKind:   sanitizeInput(r.Form.Get("contrat")),
		Department:     sanitizeInput(r.Form.Get("service")),
		Note:           sanitizeInput(r.Form.Get("note")),
	}

	if raw := sanitizeInput(r.Form.Get("date_effet")); raw != "" {
		date, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return in, fmt.Errorf("invalid effective date %q", raw)
		}
		in.EffectiveDate = date
	}
	return in, nil
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.logger.ErrorContext(r.Context(), "Template execution failed",
			log.FieldError, err,
			"template", name,
			log.FieldComponent, log.ComponentTemplate)
		http.Error(w, "Erreur interne du serveur", http.StatusInternalServerError)
	}
}
