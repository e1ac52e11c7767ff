package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrMovementNotFound = errors.New("movement not found")
	ErrUserNotFound     = errors.New("user not found")
)

// ValidationError reports the first field of a movement that failed
// validation. The field name matches the form field in the web layer.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type (
	// Actor identifies the user performing a create/update/acknowledge
	// action. Owned by the user directory; movements reference it by ID.
	Actor struct {
		ID          int64
		Username    string
		DisplayName string
		Role        string
	}

	// Movement is a single recorded personnel event (hiring, departure,
	// internal mobility, fixed-term contract renewal).
	Movement struct {
		ID             int64
		Type           MovementType
		LastName       string
		FirstName      string
		EmployeeNumber string
		JobTitle       string
		ContractKind   string
		Department     string
		EffectiveDate  time.Time
		Note           string

		// MonthKey is always recomputed from EffectiveDate, never set by
		// callers.
		MonthKey string

		Acknowledged   bool
		AcknowledgedAt *time.Time
		AcknowledgedBy *Actor

		CreatedAt time.Time
		UpdatedAt time.Time
		CreatedBy Actor
		UpdatedBy *Actor
	}

	// MovementInput carries the caller-editable fields of a movement.
	// Audit fields, MonthKey and acknowledgement state are owned by the
	// lifecycle service.
	MovementInput struct {
		Type           MovementType
		LastName       string
		FirstName      string
		EmployeeNumber string
		JobTitle       string
		ContractKind   string
		Department     string
		EffectiveDate  time.Time
		Note           string
	}
)

// Maximum lengths of the required free-text fields.
const (
	MaxLastNameLen       = 100
	MaxFirstNameLen      = 100
	MaxEmployeeNumberLen = 20
	MaxJobTitleLen       = 150
	MaxContractKindLen   = 100
	MaxDepartmentLen     = 150
)

// DisplayName returns the human name used in notification subjects and
// list views.
func (m Movement) DisplayName() string {
	return strings.TrimSpace(m.FirstName + " " + m.LastName)
}

// Validate checks required fields, maximum lengths and the effective
// date. It returns a *ValidationError tagged with the offending field.
func (in MovementInput) Validate() error {
	if !in.Type.IsValid() {
		return &ValidationError{Field: "type", Message: "unknown movement type"}
	}
	textFields := []struct {
		field string
		value string
		max   int
	}{
		{"lastName", in.LastName, MaxLastNameLen},
		{"firstName", in.FirstName, MaxFirstNameLen},
		{"employeeNumber", in.EmployeeNumber, MaxEmployeeNumberLen},
		{"jobTitle", in.JobTitle, MaxJobTitleLen},
		{"contractKind", in.ContractKind, MaxContractKindLen},
		{"department", in.Department, MaxDepartmentLen},
	}
	for _, f := range textFields {
		if strings.TrimSpace(f.value) == "" {
			return &ValidationError{Field: f.field, Message: "is required"}
		}
		if len([]rune(f.value)) > f.max {
			return &ValidationError{
				Field:   f.field,
				Message: fmt.Sprintf("must be at most %d characters", f.max),
			}
		}
	}
	if in.EffectiveDate.IsZero() {
		return &ValidationError{Field: "effectiveDate", Message: "is required"}
	}
	return nil
}
