package backend

import (
	"context"
	"fmt"
	"log/slog"

	"mouvements/internal/register/google"
	"mouvements/internal/register/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new register backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateRegister implements Factory.CreateRegister
func (f *DefaultFactory) CreateRegister(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case GoogleBackend:
		return f.createGoogleRegister(ctx, config)
	case MemoryBackend:
		return f.createMemoryRegister()
	default:
		return nil, fmt.Errorf("unsupported register backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createGoogleRegister(ctx context.Context, config Config) (*Result, error) {
	cli, err := google.NewFromEnv(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets register: %w", err)
	}

	f.logger.Info("Initialized Google Sheets register",
		"spreadsheet_id", config.GoogleSpreadsheetID,
		"sheet", config.GoogleRegisterSheet)

	return &Result{
		Register: cli,
		Cleanup:  nil,
	}, nil
}

func (f *DefaultFactory) createMemoryRegister() (*Result, error) {
	store := memory.New()

	f.logger.Info("Initialized in-memory register")

	return &Result{
		Register: store,
		Cleanup:  nil,
	}, nil
}
