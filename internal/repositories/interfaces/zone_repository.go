package interfaces

import (
	"context"

	"godeliver/internal/models"
)

type ZoneRepository interface {
	// ListPublished returns all zones with publish=true in stable iteration
	// order. Zone resolution takes the first polygon containing a point, so
	// the order is part of the observable behavior for overlapping zones.
	ListPublished(ctx context.Context) ([]*models.Zone, error)
}
