package core

import (
	"strings"
	"testing"
	"time"
)

func validInput() MovementInput {
	return MovementInput{
		Type:           Entry,
		LastName:       "Durand",
		FirstName:      "Claire",
		EmployeeNumber: "A12345",
		JobTitle:       "Technicienne informatique",
		ContractKind:   "CDI",
		Department:     "Service informatique",
		EffectiveDate:  time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestMovementInputValidate(t *testing.T) {
	if err := validInput().Validate(); err != nil {
		t.Fatalf("valid input should pass validation, got %v", err)
	}

	tests := []struct {
		name      string
		mutate    func(*MovementInput)
		wantField string
	}{
		{
			name:      "unknown type",
			mutate:    func(in *MovementInput) { in.Type = "PROMOTION" },
			wantField: "type",
		},
		{
			name:      "blank last name",
			mutate:    func(in *MovementInput) { in.LastName = "   " },
			wantField: "lastName",
		},
		{
			name:      "last name too long",
			mutate:    func(in *MovementInput) { in.LastName = strings.Repeat("a", 101) },
			wantField: "lastName",
		},
		{
			name:      "blank first name",
			mutate:    func(in *MovementInput) { in.FirstName = "" },
			wantField: "firstName",
		},
		{
			name:      "employee number too long",
			mutate:    func(in *MovementInput) { in.EmployeeNumber = strings.Repeat("9", 21) },
			wantField: "employeeNumber",
		},
		{
			name:      "job title too long",
			mutate:    func(in *MovementInput) { in.JobTitle = strings.Repeat("x", 151) },
			wantField: "jobTitle",
		},
		{
			name:      "blank contract kind",
			mutate:    func(in *MovementInput) { in.ContractKind = "" },
			wantField: "contractKind",
		},
		{
			name:      "blank department",
			mutate:    func(in *MovementInput) { in.Department = " " },
			wantField: "department",
		},
		{
			name:      "zero effective date",
			mutate:    func(in *MovementInput) { in.EffectiveDate = time.Time{} },
			wantField: "effectiveDate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			err := in.Validate()
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			var verr *ValidationError
			ok := false
			if verr, ok = err.(*ValidationError); !ok {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("expected field %q, got %q", tt.wantField, verr.Field)
			}
		})
	}
}

func TestMovementInputValidateMaxLengthBoundary(t *testing.T) {
	in := validInput()
	in.LastName = strings.Repeat("a", MaxLastNameLen)
	in.EmployeeNumber = strings.Repeat("9", MaxEmployeeNumberLen)
	if err := in.Validate(); err != nil {
		t.Fatalf("values at the maximum length should pass, got %v", err)
	}
}

func TestDisplayName(t *testing.T) {
	m := Movement{FirstName: "Claire", LastName: "Durand"}
	if got := m.DisplayName(); got != "Claire Durand" {
		t.Errorf("DisplayName() = %q, want %q", got, "Claire Durand")
	}
}

func TestParseMovementType(t *testing.T) {
	tests := []struct {
		in     string
		want   MovementType
		wantOK bool
	}{
		{"ENTREE", Entry, true},
		{"entree", Entry, true},
		{" Sortie ", Exit, true},
		{"MOBILITE", Mobility, true},
		{"RENOUVELLEMENT_CDD", FixedTermRenewal, true},
		{"PROMOTION", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseMovementType(tt.in)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("ParseMovementType(%q) = (%q, %v), want (%q, %v)",
				tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestMovementTypeTables(t *testing.T) {
	wantLabels := map[MovementType]string{
		Entry:            "Entrée",
		Exit:             "Sortie",
		Mobility:         "Mobilité",
		FixedTermRenewal: "Renouvellement CDD",
	}
	for mt, want := range wantLabels {
		if got := mt.Label(); got != want {
			t.Errorf("%s.Label() = %q, want %q", mt, got, want)
		}
	}

	order := MovementTypes()
	if len(order) != 4 {
		t.Fatalf("expected 4 movement types, got %d", len(order))
	}
	for i, mt := range order {
		if mt.Order() != i {
			t.Errorf("%s.Order() = %d, want %d", mt, mt.Order(), i)
		}
	}
	if MovementType("PROMOTION").Order() != len(order) {
		t.Error("unknown types should sort last")
	}
}

func TestAcknowledgedPercentage(t *testing.T) {
	tests := []struct {
		acknowledged int
		total        int
		want         float64
	}{
		{0, 0, 0},
		{3, 10, 30.0},
		{1, 3, 33.3},
		{2, 3, 66.7},
		{10, 10, 100.0},
	}
	for _, tt := range tests {
		if got := AcknowledgedPercentage(tt.acknowledged, tt.total); got != tt.want {
			t.Errorf("AcknowledgedPercentage(%d, %d) = %v, want %v",
				tt.acknowledged, tt.total, got, tt.want)
		}
	}
}
