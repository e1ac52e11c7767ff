package core

import "strings"

// MovementType is the closed set of personnel event kinds. The stored
// values keep the historical French codes so existing exports and the
// shared register stay readable.
type MovementType string

const (
	Entry            MovementType = "ENTREE"
	Exit             MovementType = "SORTIE"
	Mobility         MovementType = "MOBILITE"
	FixedTermRenewal MovementType = "RENOUVELLEMENT_CDD"
)

// movementTypes lists all types in canonical declaration order. Grouped
// views and notification emails follow this order.
var movementTypes = []MovementType{Entry, Exit, Mobility, FixedTermRenewal}

var typeLabels = map[MovementType]string{
	Entry:            "Entrée",
	Exit:             "Sortie",
	Mobility:         "Mobilité",
	FixedTermRenewal: "Renouvellement CDD",
}

// typeColors maps each type to its badge color in the UI and emails.
var typeColors = map[MovementType]string{
	Entry:            "success",
	Exit:             "danger",
	Mobility:         "warning",
	FixedTermRenewal: "info",
}

var typeIcons = map[MovementType]string{
	Entry:            "fa-plus-circle",
	Exit:             "fa-minus-circle",
	Mobility:         "fa-exchange-alt",
	FixedTermRenewal: "fa-redo",
}

// MovementTypes returns all types in canonical order. The returned slice
// is a copy.
func MovementTypes() []MovementType {
	out := make([]MovementType, len(movementTypes))
	copy(out, movementTypes)
	return out
}

// ParseMovementType parses a stored or submitted type code,
// case-insensitively. ok is false for unknown codes.
func ParseMovementType(s string) (MovementType, bool) {
	t := MovementType(strings.ToUpper(strings.TrimSpace(s)))
	if t.IsValid() {
		return t, true
	}
	return "", false
}

func (t MovementType) IsValid() bool {
	_, ok := typeLabels[t]
	return ok
}

func (t MovementType) String() string {
	return string(t)
}

// Label returns the French display label ("Entrée", "Sortie", ...).
func (t MovementType) Label() string {
	if label, ok := typeLabels[t]; ok {
		return label
	}
	return string(t)
}

func (t MovementType) Color() string {
	if color, ok := typeColors[t]; ok {
		return color
	}
	return "secondary"
}

func (t MovementType) Icon() string {
	if icon, ok := typeIcons[t]; ok {
		return icon
	}
	return "fa-question-circle"
}

// Order returns the position of the type in canonical order. Unknown
// types sort last.
func (t MovementType) Order() int {
	for i, mt := range movementTypes {
		if mt == t {
			return i
		}
	}
	return len(movementTypes)
}
