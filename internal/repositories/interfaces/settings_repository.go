package interfaces

import (
	"context"

	"godeliver/internal/models"
)

type SettingsRepository interface {
	// GetDispatchSettings loads the singleton dispatch configuration,
	// falling back to built-in defaults when the document is absent.
	GetDispatchSettings(ctx context.Context) (*models.DispatchSettings, error)
}
