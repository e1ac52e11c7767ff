package google

import (
	"testing"
	"time"

	"mouvements/internal/core"
)

func TestFindRowIndex(t *testing.T) {
	values := [][]any{
		{"ID"},
		{"12"},
		{},
		{"note sans identifiant"},
		{"34"},
	}

	tests := []struct {
		name string
		id   int64
		want int
	}{
		{name: "first data row", id: 12, want: 1},
		{name: "after gaps", id: 34, want: 4},
		{name: "absent", id: 99, want: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := findRowIndex(values, tt.id); got != tt.want {
				t.Errorf("findRowIndex(%d) = %d, want %d", tt.id, got, tt.want)
			}
		})
	}
}

func TestFindRowIndex_HeaderNeverMatches(t *testing.T) {
	// A numeric-looking header cell must not be treated as data.
	values := [][]any{{"7"}, {"7"}}
	if got := findRowIndex(values, 7); got != 1 {
		t.Errorf("findRowIndex should skip the header row, got %d", got)
	}
}

func TestRowValues(t *testing.T) {
	m := core.Movement{
		ID:             42,
		Type:           core.Mobility,
		LastName:       "Durand",
		FirstName:      "Claire",
		EmployeeNumber: "A12345",
		JobTitle:       "Développeuse",
		ContractKind:   "CDI",
		Department:     "DSI",
		EffectiveDate:  time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		MonthKey:       "2024-03",
		Acknowledged:   true,
		Note:           "Changement de service",
	}

	row := rowValues(m)
	if len(row) != 12 {
		t.Fatalf("rowValues() has %d columns, want 12", len(row))
	}

	want := []any{
		int64(42), "Mobilité", "Durand", "Claire", "A12345",
		"Développeuse", "CDI", "DSI", "15/03/2024", "2024-03", "Oui",
		"Changement de service",
	}
	for i := range want {
		if row[i] != want[i] {
			t.Errorf("column %d = %v, want %v", i, row[i], want[i])
		}
	}
}

func TestRowValues_Unacknowledged(t *testing.T) {
	row := rowValues(core.Movement{Type: core.Entry})
	if row[10] != "Non" {
		t.Errorf("acknowledged column = %v, want Non", row[10])
	}
}
