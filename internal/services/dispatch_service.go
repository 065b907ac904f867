package services

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"godeliver/internal/models"
	"godeliver/internal/repositories/interfaces"
	"godeliver/internal/utils"
	"godeliver/pkg/logger"
	"godeliver/pkg/push"
	"godeliver/pkg/websocket"
)

// DispatchService is the state machine reacting to order document changes:
// it broadcasts new orders to nearby drivers in expanding radius rings,
// schedules auto-cancellation when no ring has anyone, and advances the order
// once a driver accepts.
type DispatchService interface {
	HandleOrderChange(ctx context.Context, before, after *models.Order) error
}

type dispatchService struct {
	orderRepo    interfaces.OrderRepository
	driverRepo   interfaces.DriverRepository
	settingsRepo interfaces.SettingsRepository
	zoneService  ZoneService
	locator      DriverLocator
	notifier     NotificationService
	hub          *websocket.Hub
	logger       *logger.Logger
}

func NewDispatchService(
	orderRepo interfaces.OrderRepository,
	driverRepo interfaces.DriverRepository,
	settingsRepo interfaces.SettingsRepository,
	zoneService ZoneService,
	locator DriverLocator,
	notifier NotificationService,
	hub *websocket.Hub,
	log *logger.Logger,
) DispatchService {
	return &dispatchService{
		orderRepo:    orderRepo,
		driverRepo:   driverRepo,
		settingsRepo: settingsRepo,
		zoneService:  zoneService,
		locator:      locator,
		notifier:     notifier,
		hub:          hub,
		logger:       log,
	}
}

func (s *dispatchService) HandleOrderChange(ctx context.Context, before, after *models.Order) error {
	if after == nil {
		return nil
	}

	// Every write re-triggers this handler, including our own auto-cancel
	// merge. If nothing meaningful changed versus the previous version, exit
	// before touching anything — this guard is what breaks the retrigger
	// loop.
	if before != nil && isDispatchNoOp(before, after) {
		return nil
	}

	if after.TakeAway {
		return nil
	}

	switch after.Status {
	case models.OrderStatusCancelled, models.OrderStatusPlaced:
		return nil
	case models.OrderStatusDriverAccepted:
		if before == nil || before.Status != models.OrderStatusDriverAccepted {
			return s.advanceToShipped(ctx, after)
		}
		return nil
	}

	if after.Status.IsBroadcastable() {
		return s.broadcast(ctx, after)
	}

	return nil
}

// isDispatchNoOp reports whether the change carries nothing the broadcast
// path reacts to: either the documents are identical or only the advisory
// auto-cancel timestamp (and bookkeeping timestamp) moved.
func isDispatchNoOp(before, after *models.Order) bool {
	a := *before
	b := *after
	a.OrderAutoCancelAt = nil
	b.OrderAutoCancelAt = nil
	a.UpdatedAt = time.Time{}
	b.UpdatedAt = time.Time{}
	return reflect.DeepEqual(a, b)
}

func (s *dispatchService) advanceToShipped(ctx context.Context, order *models.Order) error {
	if err := s.orderRepo.UpdateStatus(ctx, order.ID, models.OrderStatusShipped); err != nil {
		return fmt.Errorf("failed to advance accepted order to shipped: %w", err)
	}

	s.logger.LogDispatchEvent(order.ID, "order_shipped", map[string]interface{}{
		"driver_id": order.DriverID,
	})

	return nil
}

func (s *dispatchService) broadcast(ctx context.Context, order *models.Order) error {
	log := s.logger.WithOrderID(order.ID)

	settings, err := s.settingsRepo.GetDispatchSettings(ctx)
	if err != nil {
		return fmt.Errorf("failed to load dispatch settings: %w", err)
	}

	zoneID, err := s.zoneService.ResolveZone(ctx,
		order.Address.Location.Latitude, order.Address.Location.Longitude)
	if err != nil {
		return fmt.Errorf("failed to resolve delivery zone: %w", err)
	}

	for _, radius := range utils.SearchRadiusTiersKM {
		candidates, err := s.locator.FindCandidates(ctx, &CandidateQuery{
			RadiusKM:          radius,
			ZoneID:            zoneID,
			MinWallet:         settings.MinimumDepositToAccept,
			ExcludedDriverIDs: order.RejectedByDrivers,
			OrderID:           order.ID,
			VendorLat:         order.Vendor.Latitude,
			VendorLng:         order.Vendor.Longitude,
		})
		if err != nil {
			return fmt.Errorf("failed to find candidates at %.0f km: %w", radius, err)
		}
		if len(candidates) == 0 {
			continue
		}

		// First non-empty tier wins; larger radii are never consulted.
		return s.offerToCandidates(ctx, order, settings, radius, candidates)
	}

	return s.scheduleAutoCancel(ctx, order, settings, log)
}

func (s *dispatchService) offerToCandidates(ctx context.Context, order *models.Order, settings *models.DispatchSettings, radius float64, candidates []*models.Driver) error {
	driverIDs := make([]string, len(candidates))
	for i, candidate := range candidates {
		driverIDs[i] = candidate.ID
	}

	if err := s.driverRepo.AddOrderRequest(ctx, driverIDs, order.ID); err != nil {
		return fmt.Errorf("failed to append offer to driver inboxes: %w", err)
	}

	for _, candidate := range candidates {
		s.notifier.Enqueue(&push.NotificationRequest{
			Token: candidate.FCMToken,
			Title: "New delivery order nearby",
			Body: fmt.Sprintf("A new order from %s is within %.0f km. You have %d seconds to accept or reject.",
				order.Vendor.Title, radius, settings.DriverAcceptRejectDurationSec),
			Data: map[string]string{
				"type":      "order_offer",
				"order_id":  order.ID,
				"radius_km": fmt.Sprintf("%.0f", radius),
				"countdown": fmt.Sprintf("%d", settings.DriverAcceptRejectDurationSec),
			},
			Priority: "high",
			Sound:    "default",
		})
	}

	if err := s.orderRepo.UpdateStatus(ctx, order.ID, models.OrderStatusDriverPending); err != nil {
		return fmt.Errorf("failed to mark order driver-pending: %w", err)
	}

	s.logger.LogDispatchEvent(order.ID, "offer_broadcast", map[string]interface{}{
		"radius_km":  radius,
		"candidates": len(candidates),
	})

	if s.hub != nil {
		s.hub.Publish(websocket.EventOfferBroadcast, order.ID, map[string]interface{}{
			"radius_km":  radius,
			"candidates": len(candidates),
		})
	}

	return nil
}

// scheduleAutoCancel stamps the advisory deadline for the external reaper.
// Status stays untouched: the order remains eligible for a later broadcast
// when its document changes again.
func (s *dispatchService) scheduleAutoCancel(ctx context.Context, order *models.Order, settings *models.DispatchSettings, log *logger.Logger) error {
	deadline := time.Now().Add(time.Duration(settings.OrderAutoCancelDurationMin) * time.Minute)

	if err := s.orderRepo.SetAutoCancelAt(ctx, order.ID, deadline); err != nil {
		return fmt.Errorf("failed to schedule auto-cancel: %w", err)
	}

	log.WithField("auto_cancel_at", deadline).Info("No candidates in any radius tier, scheduled auto-cancel")

	if s.hub != nil {
		s.hub.Publish(websocket.EventAutoCancelSchedule, order.ID, map[string]interface{}{
			"auto_cancel_at": deadline,
		})
	}

	return nil
}
