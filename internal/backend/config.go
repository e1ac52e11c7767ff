package backend

import (
	"fmt"

	"mouvements/internal/config"
)

// FromAppConfig maps the application configuration onto a backend
// selection.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("application config is nil")
	}

	cfg := Config{
		Type:                Type(appConfig.RegisterBackend),
		GoogleSpreadsheetID: appConfig.GoogleSpreadsheetID,
		GoogleRegisterSheet: appConfig.GoogleRegisterSheet,
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the backend configuration for consistency.
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid register backend type %q: must be one of %v", c.Type, TypeStrings())
	}
	if c.Type == GoogleBackend {
		if c.GoogleSpreadsheetID == "" {
			return fmt.Errorf("google register backend requires a spreadsheet ID")
		}
		if c.GoogleRegisterSheet == "" {
			return fmt.Errorf("google register backend requires a sheet name")
		}
	}
	return nil
}

// Types lists the supported backend types.
func Types() []Type {
	return []Type{MemoryBackend, GoogleBackend}
}

// TypeStrings lists the supported backend types as strings, for error
// messages and usage output.
func TypeStrings() []string {
	types := Types()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.String()
	}
	return out
}
