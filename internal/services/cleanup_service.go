package services

import (
	"context"
	"fmt"

	"godeliver/internal/models"
	"godeliver/internal/repositories/interfaces"
	"godeliver/pkg/logger"
)

// CleanupService removes a resolved order from every losing driver's
// pending-offer inbox. It runs twice on purpose: synchronously right after an
// assignment commits, and again from the change-stream listener when the
// order reaches a terminal status. The purge is idempotent, so the overlap
// only narrows the stale-offer window.
type CleanupService interface {
	PurgeOrderFromOtherDrivers(ctx context.Context, orderID, winningDriverID string) error

	// HandleOrderChange is the async path: it fires when an order's status
	// transitions into {Driver Accepted, Order Completed, Order Cancelled}.
	HandleOrderChange(ctx context.Context, before, after *models.Order) error
}

type cleanupService struct {
	driverRepo interfaces.DriverRepository
	logger     *logger.Logger
}

func NewCleanupService(driverRepo interfaces.DriverRepository, log *logger.Logger) CleanupService {
	return &cleanupService{
		driverRepo: driverRepo,
		logger:     log,
	}
}

func (s *cleanupService) PurgeOrderFromOtherDrivers(ctx context.Context, orderID, winningDriverID string) error {
	purged, err := s.driverRepo.PurgeOrderRequests(ctx, orderID, winningDriverID)
	if err != nil {
		return fmt.Errorf("failed to purge order %s from driver inboxes: %w", orderID, err)
	}

	if purged > 0 {
		s.logger.WithOrderID(orderID).WithFields(map[string]interface{}{
			"purged_drivers": purged,
			"winning_driver": winningDriverID,
		}).Info("Purged resolved order from pending-offer inboxes")
	}

	return nil
}

func (s *cleanupService) HandleOrderChange(ctx context.Context, before, after *models.Order) error {
	if after == nil || !after.Status.IsTerminalForDispatch() {
		return nil
	}
	if before != nil && before.Status.IsTerminalForDispatch() {
		// Already resolved before this event; the earlier transition's
		// cleanup covered it.
		return nil
	}

	return s.PurgeOrderFromOtherDrivers(ctx, after.ID, after.DriverID)
}
