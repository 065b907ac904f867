package services

import (
	"context"
	"fmt"

	"godeliver/internal/models"
	"godeliver/internal/repositories/interfaces"
	"godeliver/internal/utils"
)

// CandidateQuery describes one radius tier of a broadcast.
type CandidateQuery struct {
	RadiusKM          float64
	ZoneID            string
	MinWallet         float64
	ExcludedDriverIDs []string
	OrderID           string
	VendorLat         float64
	VendorLng         float64
}

type DriverLocator interface {
	// FindCandidates returns the unordered set of drivers eligible for one
	// offer tier: active, funded, zone-matching, push-reachable, not a
	// rejecter, not already holding the offer, and within the radius of the
	// vendor. No ranking is applied; ranking exists only in the admin
	// manual-assignment view.
	FindCandidates(ctx context.Context, query *CandidateQuery) ([]*models.Driver, error)
}

type driverLocator struct {
	driverRepo interfaces.DriverRepository
}

func NewDriverLocator(driverRepo interfaces.DriverRepository) DriverLocator {
	return &driverLocator{
		driverRepo: driverRepo,
	}
}

func (l *driverLocator) FindCandidates(ctx context.Context, query *CandidateQuery) ([]*models.Driver, error) {
	drivers, err := l.driverRepo.ListActiveWithMinWallet(ctx, query.MinWallet)
	if err != nil {
		return nil, fmt.Errorf("failed to load driver pool: %w", err)
	}

	excluded := make(map[string]bool, len(query.ExcludedDriverIDs))
	for _, id := range query.ExcludedDriverIDs {
		excluded[id] = true
	}

	var candidates []*models.Driver
	for _, driver := range drivers {
		if driver.ZoneID == "" || driver.ZoneID != query.ZoneID {
			continue
		}
		if driver.Location == nil || driver.FCMToken == "" {
			continue
		}
		if excluded[driver.ID] {
			continue
		}
		if driver.HasPendingOrder(query.OrderID) {
			continue
		}

		distance := utils.CalculateDistance(
			driver.Location.Latitude, driver.Location.Longitude,
			query.VendorLat, query.VendorLng,
		)
		if distance > query.RadiusKM {
			continue
		}

		candidates = append(candidates, driver)
	}

	return candidates, nil
}
