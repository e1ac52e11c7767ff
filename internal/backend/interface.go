package backend

import (
	"context"

	"mouvements/internal/register"
)

// CleanupFunc releases resources held by a register backend.
type CleanupFunc func() error

// Result bundles a register writer with its optional cleanup.
type Result struct {
	Register register.Writer
	Cleanup  CleanupFunc
}

// Factory creates register backends from configuration.
type Factory interface {
	CreateRegister(ctx context.Context, config Config) (*Result, error)
}

// Config selects and parameterizes the register backend.
type Config struct {
	Type Type

	// Google Sheets settings, used when Type is GoogleBackend.
	GoogleSpreadsheetID string
	GoogleRegisterSheet string
}

// Type identifies a register backend implementation.
type Type string

const (
	// MemoryBackend keeps the register in memory, for development and
	// tests.
	MemoryBackend Type = "memory"
	// GoogleBackend mirrors the register to a Google Sheets document.
	GoogleBackend Type = "google"
)

func (t Type) String() string {
	return string(t)
}

// IsValid checks if the backend type is supported
func (t Type) IsValid() bool {
	switch t {
	case MemoryBackend, GoogleBackend:
		return true
	default:
		return false
	}
}
