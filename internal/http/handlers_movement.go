package http

import (
	"errors"
	"net/http"
	"time"

	"mouvements/internal/core"
	"mouvements/internal/log"
)

type formPage struct {
	Title      string
	Action     string
	Submit     string
	Types      []core.MovementType
	Movement   core.Movement
	DateValue  string
	Flash      flash
	Actor      core.Actor
	MaxLengths map[string]int
}

func formMaxLengths() map[string]int {
	return map[string]int{
		"Nom":       core.MaxLastNameLen,
		"Prenom":    core.MaxFirstNameLen,
		"Matricule": core.MaxEmployeeNumberLen,
		"Fonction":  core.MaxJobTitleLen,
		"Contrat":   core.MaxContractKindLen,
		"Service":   core.MaxDepartmentLen,
	}
}

func (s *Server) handleNewForm(w http.ResponseWriter, r *http.Request) {
	data := formPage{
		Title:      "Nouveau mouvement",
		Action:     "/mouvements",
		Submit:     "Créer le mouvement",
		Types:      core.MovementTypes(),
		DateValue:  time.Now().Format("2006-01-02"),
		Flash:      flashFrom(r),
		Actor:      actorFrom(r.Context()),
		MaxLengths: formMaxLengths(),
	}
	s.render(w, r, "movement_form.html", data)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.redirectFlash(w, r, "/mouvements/nouveau", flashDanger, "Formulaire invalide.")
		return
	}

	in, err := movementInputFromForm(r)
	if err != nil {
		s.redirectFlash(w, r, "/mouvements/nouveau", flashDanger, "La date d'effet est invalide.")
		return
	}

	actor := actorFrom(r.Context())
	created, warning, err := s.movements.Create(r.Context(), in, actor)
	if err != nil {
		var vErr *core.ValidationError
		if errors.As(err, &vErr) {
			s.redirectFlash(w, r, "/mouvements/nouveau", flashDanger, validationMessage(vErr))
			return
		}
		s.logger.ErrorContext(r.Context(), "Movement creation failed",
			log.FieldError, err,
			log.FieldActor, actor.Username,
			log.FieldComponent, log.ComponentHTTP)
		s.redirectFlash(w, r, "/mouvements/nouveau", flashDanger, "La création du mouvement a échoué.")
		return
	}

	s.invalidateMonth(created.MonthKey)
	s.audit.LogMovementChange(r.Context(), log.OpCreate, created.ID, string(created.Type), created.MonthKey, created.EmployeeNumber)

	target := "/?mois=" + created.MonthKey
	if warning != "" {
		s.redirectFlash(w, r, target, flashWarning, warning)
		return
	}
	s.redirectFlash(w, r, target, flashSuccess, "Le mouvement a été créé.")
}

func (s *Server) handleEditForm(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.redirectFlash(w, r, "/", flashDanger, "Mouvement introuvable.")
		return
	}

	movement, err := s.movements.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, core.ErrMovementNotFound) {
			s.redirectFlash(w, r, "/", flashDanger, "Mouvement introuvable.")
			return
		}
		s.logger.ErrorContext(r.Context(), "Movement load failed",
			log.FieldError, err,
			log.FieldMovementID, id,
			log.FieldComponent, log.ComponentHTTP)
		http.Error(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}

	data := formPage{
		Title:      "Modifier le mouvement",
		Action:     "/mouvements/" + r.PathValue("id"),
		Submit:     "Enregistrer les modifications",
		Types:      core.MovementTypes(),
		Movement:   movement,
		DateValue:  movement.EffectiveDate.Format("2006-01-02"),
		Flash:      flashFrom(r),
		Actor:      actorFrom(r.Context()),
		MaxLengths: formMaxLengths(),
	}
	s.render(w, r, "movement_form.html", data)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.redirectFlash(w, r, "/", flashDanger, "Mouvement introuvable.")
		return
	}
	if err := r.ParseForm(); err != nil {
		s.redirectFlash(w, r, "/mouvements/"+r.PathValue("id")+"/modifier", flashDanger, "Formulaire invalide.")
		return
	}

	in, err := movementInputFromForm(r)
	if err != nil {
		s.redirectFlash(w, r, "/mouvements/"+r.PathValue("id")+"/modifier", flashDanger, "La date d'effet est invalide.")
		return
	}

	// Keep the previous month key so the old dashboard view is also
	// refreshed when the effective date moves across months.
	previous, err := s.movements.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, core.ErrMovementNotFound) {
			s.redirectFlash(w, r, "/", flashDanger, "Mouvement introuvable.")
			return
		}
		http.Error(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}

	actor := actorFrom(r.Context())
	updated, warning, err := s.movements.Update(r.Context(), id, in, actor)
	if err != nil {
		var vErr *core.ValidationError
		if errors.As(err, &vErr) {
			s.redirectFlash(w, r, "/mouvements/"+r.PathValue("id")+"/modifier", flashDanger, validationMessage(vErr))
			return
		}
		if errors.Is(err, core.ErrMovementNotFound) {
			s.redirectFlash(w, r, "/", flashDanger, "Mouvement introuvable.")
			return
		}
		s.logger.ErrorContext(r.Context(), "Movement update failed",
			log.FieldError, err,
			log.FieldMovementID, id,
			log.FieldActor, actor.Username,
			log.FieldComponent, log.ComponentHTTP)
		s.redirectFlash(w, r, "/mouvements/"+r.PathValue("id")+"/modifier", flashDanger, "La modification du mouvement a échoué.")
		return
	}

	s.invalidateMonth(previous.MonthKey)
	s.invalidateMonth(updated.MonthKey)
	s.audit.LogMovementChange(r.Context(), log.OpUpdate, updated.ID, string(updated.Type), updated.MonthKey, updated.EmployeeNumber)

	target := "/?mois=" + updated.MonthKey
	if warning != "" {
		s.redirectFlash(w, r, target, flashWarning, warning)
		return
	}
	s.redirectFlash(w, r, target, flashSuccess, "Le mouvement a été modifié.")
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.redirectFlash(w, r, "/", flashDanger, "Mouvement introuvable.")
		return
	}

	// The month key is needed after the row is gone.
	previous, err := s.movements.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, core.ErrMovementNotFound) {
			s.redirectFlash(w, r, "/", flashDanger, "Mouvement introuvable.")
			return
		}
		http.Error(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}

	warning, err := s.movements.Delete(r.Context(), id)
	if err != nil {
		if errors.Is(err, core.ErrMovementNotFound) {
			s.redirectFlash(w, r, "/", flashDanger, "Mouvement introuvable.")
			return
		}
		s.logger.ErrorContext(r.Context(), "Movement deletion failed",
			log.FieldError, err,
			log.FieldMovementID, id,
			log.FieldComponent, log.ComponentHTTP)
		s.redirectFlash(w, r, "/?mois="+previous.MonthKey, flashDanger, "La suppression du mouvement a échoué.")
		return
	}

	s.invalidateMonth(previous.MonthKey)
	s.audit.LogMovementChange(r.Context(), log.OpDelete, previous.ID, string(previous.Type), previous.MonthKey, previous.EmployeeNumber)

	target := "/?mois=" + previous.MonthKey
	if warning != "" {
		s.redirectFlash(w, r, target, flashWarning, warning)
		return
	}
	s.redirectFlash(w, r, target, flashSuccess, "Le mouvement a été supprimé.")
}

func (s *Server) handleAcknowledge(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.redirectFlash(w, r, "/", flashDanger, "Mouvement introuvable.")
		return
	}
	if err := r.ParseForm(); err != nil {
		s.redirectFlash(w, r, "/", flashDanger, "Formulaire invalide.")
		return
	}

	acknowledged := r.Form.Get("etat") == "1"
	actor := actorFrom(r.Context())

	movement, err := s.movements.SetAcknowledged(r.Context(), id, acknowledged, actor)
	if err != nil {
		if errors.Is(err, core.ErrMovementNotFound) {
			s.redirectFlash(w, r, "/", flashDanger, "Mouvement introuvable.")
			return
		}
		s.logger.ErrorContext(r.Context(), "Acknowledgement update failed",
			log.FieldError, err,
			log.FieldMovementID, id,
			log.FieldActor, actor.Username,
			log.FieldComponent, log.ComponentHTTP)
		s.redirectFlash(w, r, "/", flashDanger, "La mise à jour de la prise en compte a échoué.")
		return
	}

	s.invalidateMonth(movement.MonthKey)
	s.audit.LogMovementChange(r.Context(), log.OpAcknowledge, movement.ID, string(movement.Type), movement.MonthKey, movement.EmployeeNumber)

	// Acknowledgements usually come from the pending list; go back to
	// where the user was.
	target := "/?mois=" + movement.MonthKey
	if r.Form.Get("retour") == "en-attente" {
		target = "/en-attente?mois=" + movement.MonthKey
	}

	message := "Le mouvement a été marqué comme pris en compte."
	if !acknowledged {
		message = "La prise en compte du mouvement a été annulée."
	}
	s.redirectFlash(w, r, target, flashSuccess, message)
}
