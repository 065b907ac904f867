package services

import (
	"context"
	"testing"
	"time"

	"godeliver/internal/models"
	"godeliver/pkg/logger"
)

// Geometry used throughout: vendor at the origin, delivery address inside a
// published zone around the origin, drivers offset north by fractions of a
// degree (0.01 degree of latitude is roughly 1.11 km).

func broadcastableOrder() *models.Order {
	return &models.Order{
		ID:     "order-1",
		Status: models.OrderStatusAccepted,
		Vendor: models.VendorInfo{ID: "vendor-1", Title: "Pizza Corner", Latitude: 0, Longitude: 0},
		Address: models.DeliveryAddress{
			AddressLine: "12 Test St",
			Location:    models.Location{Latitude: 0.02, Longitude: 0.02},
		},
	}
}

func testDriver(id, zoneID string, latOffset float64) *models.Driver {
	return &models.Driver{
		ID:           id,
		Role:         models.RoleDriver,
		FirstName:    "Driver",
		LastName:     id,
		IsActive:     true,
		IsOnline:     true,
		FCMToken:     "token-" + id,
		ZoneID:       zoneID,
		WalletAmount: 100,
		Location:     &models.Location{Latitude: latOffset, Longitude: 0},
	}
}

func newDispatchFixture(orderRepo *fakeOrderRepo, driverRepo *fakeDriverRepo) (DispatchService, *recordingProvider, NotificationService) {
	zoneRepo := &fakeZoneRepo{zones: []*models.Zone{
		zoneSquare("zone-1", true, -1, -1, 1, 1),
	}}
	provider := &recordingProvider{}
	log := logger.NewNop()
	notifier := NewNotificationService(provider, log)
	notifier.Start()

	svc := NewDispatchService(
		orderRepo,
		driverRepo,
		&fakeSettingsRepo{},
		NewZoneService(zoneRepo),
		NewDriverLocator(driverRepo),
		notifier,
		nil,
		log,
	)
	return svc, provider, notifier
}

func TestBroadcastOffersNearestNonEmptyTier(t *testing.T) {
	order := broadcastableOrder()
	orderRepo := newFakeOrderRepo(order)
	// near is ~1.7 km out (2 km tier), far is ~8.9 km out (10 km tier).
	driverRepo := newFakeDriverRepo(
		testDriver("near", "zone-1", 0.015),
		testDriver("far", "zone-1", 0.08),
	)
	svc, provider, notifier := newDispatchFixture(orderRepo, driverRepo)

	if err := svc.HandleOrderChange(context.Background(), nil, order); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	notifier.Stop()

	near := driverRepo.get("near")
	if !near.HasPendingOrder(order.ID) {
		t.Fatal("expected near driver's inbox to hold the offer")
	}
	far := driverRepo.get("far")
	if far.HasPendingOrder(order.ID) {
		t.Fatal("expected far driver to be skipped once a closer tier matched")
	}

	if got := orderRepo.get(order.ID).Status; got != models.OrderStatusDriverPending {
		t.Fatalf("expected order status %q, got %q", models.OrderStatusDriverPending, got)
	}
	if provider.sentCount() != 1 {
		t.Fatalf("expected 1 push, got %d", provider.sentCount())
	}
}

func TestBroadcastWidensUntilCandidatesFound(t *testing.T) {
	order := broadcastableOrder()
	orderRepo := newFakeOrderRepo(order)
	// Only driver is ~16.7 km out: tiers 1..10 are empty, tier 20 matches.
	driverRepo := newFakeDriverRepo(testDriver("remote", "zone-1", 0.15))
	svc, _, notifier := newDispatchFixture(orderRepo, driverRepo)

	if err := svc.HandleOrderChange(context.Background(), nil, order); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	notifier.Stop()

	if !driverRepo.get("remote").HasPendingOrder(order.ID) {
		t.Fatal("expected the 20 km tier to reach the remote driver")
	}
	if orderRepo.get(order.ID).OrderAutoCancelAt != nil {
		t.Fatal("expected no auto-cancel when a tier produced candidates")
	}
}

func TestBroadcastExcludesRejectedDrivers(t *testing.T) {
	order := broadcastableOrder()
	order.Status = models.OrderStatusDriverRejected
	order.RejectedByDrivers = []string{"near"}
	orderRepo := newFakeOrderRepo(order)
	driverRepo := newFakeDriverRepo(
		testDriver("near", "zone-1", 0.005),
		testDriver("backup", "zone-1", 0.04),
	)
	svc, _, notifier := newDispatchFixture(orderRepo, driverRepo)

	if err := svc.HandleOrderChange(context.Background(), nil, order); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	notifier.Stop()

	if driverRepo.get("near").HasPendingOrder(order.ID) {
		t.Fatal("expected rejecting driver to be excluded from the re-broadcast")
	}
	if !driverRepo.get("backup").HasPendingOrder(order.ID) {
		t.Fatal("expected next driver out to receive the offer instead")
	}
}

func TestBroadcastExcludesOtherZones(t *testing.T) {
	order := broadcastableOrder()
	orderRepo := newFakeOrderRepo(order)
	// Geographically close but registered to a different zone.
	driverRepo := newFakeDriverRepo(testDriver("foreign", "zone-2", 0.005))
	svc, _, notifier := newDispatchFixture(orderRepo, driverRepo)

	if err := svc.HandleOrderChange(context.Background(), nil, order); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	notifier.Stop()

	if driverRepo.get("foreign").HasPendingOrder(order.ID) {
		t.Fatal("expected driver in another zone to be excluded")
	}
	if orderRepo.get(order.ID).OrderAutoCancelAt == nil {
		t.Fatal("expected auto-cancel when no same-zone drivers exist")
	}
}

func TestNoCandidatesSchedulesAutoCancel(t *testing.T) {
	order := broadcastableOrder()
	orderRepo := newFakeOrderRepo(order)
	driverRepo := newFakeDriverRepo()
	svc, provider, notifier := newDispatchFixture(orderRepo, driverRepo)

	before := time.Now()
	if err := svc.HandleOrderChange(context.Background(), nil, order); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	notifier.Stop()

	stored := orderRepo.get(order.ID)
	if stored.OrderAutoCancelAt == nil {
		t.Fatal("expected auto-cancel deadline to be stamped")
	}
	want := before.Add(15 * time.Minute)
	if diff := stored.OrderAutoCancelAt.Sub(want); diff < -time.Minute || diff > time.Minute {
		t.Fatalf("expected deadline ~15 min out, got %v", stored.OrderAutoCancelAt)
	}
	// The fallback is a deadline only: the status must stay broadcastable so
	// a later document change can retry.
	if stored.Status != models.OrderStatusAccepted {
		t.Fatalf("expected status untouched, got %q", stored.Status)
	}
	if provider.sentCount() != 0 {
		t.Fatalf("expected no pushes, got %d", provider.sentCount())
	}
}

func TestTakeawayOrdersAreIgnored(t *testing.T) {
	order := broadcastableOrder()
	order.TakeAway = true
	orderRepo := newFakeOrderRepo(order)
	driverRepo := newFakeDriverRepo(testDriver("near", "zone-1", 0.005))
	svc, _, notifier := newDispatchFixture(orderRepo, driverRepo)

	if err := svc.HandleOrderChange(context.Background(), nil, order); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	notifier.Stop()

	if driverRepo.get("near").HasPendingOrder(order.ID) {
		t.Fatal("takeaway orders must never reach driver inboxes")
	}
	if orderRepo.get(order.ID).OrderAutoCancelAt != nil {
		t.Fatal("takeaway orders must not be scheduled for auto-cancel")
	}
}

func TestAutoCancelStampDoesNotRetrigger(t *testing.T) {
	before := broadcastableOrder()
	after := broadcastableOrder()
	deadline := time.Now().Add(15 * time.Minute)
	after.OrderAutoCancelAt = &deadline
	after.UpdatedAt = time.Now()

	orderRepo := newFakeOrderRepo(after)
	driverRepo := newFakeDriverRepo(testDriver("near", "zone-1", 0.005))
	svc, _, notifier := newDispatchFixture(orderRepo, driverRepo)

	// Only the advisory deadline moved: the handler must treat this as its
	// own echo and do nothing, or the fallback write would loop forever.
	if err := svc.HandleOrderChange(context.Background(), before, after); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	notifier.Stop()

	if driverRepo.get("near").HasPendingOrder(after.ID) {
		t.Fatal("expected no broadcast on an auto-cancel echo")
	}
	if len(orderRepo.statusUpdates) != 0 {
		t.Fatalf("expected no status writes, got %v", orderRepo.statusUpdates)
	}
}

func TestDriverAcceptedAdvancesToShipped(t *testing.T) {
	before := broadcastableOrder()
	before.Status = models.OrderStatusDriverPending

	after := broadcastableOrder()
	after.Status = models.OrderStatusDriverAccepted
	after.DriverID = "winner"

	orderRepo := newFakeOrderRepo(after)
	svc, _, notifier := newDispatchFixture(orderRepo, newFakeDriverRepo())

	if err := svc.HandleOrderChange(context.Background(), before, after); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	notifier.Stop()

	if got := orderRepo.get(after.ID).Status; got != models.OrderStatusShipped {
		t.Fatalf("expected %q, got %q", models.OrderStatusShipped, got)
	}
}

func TestAlreadyShippedNotReadvanced(t *testing.T) {
	before := broadcastableOrder()
	before.Status = models.OrderStatusDriverAccepted
	before.DriverID = "winner"

	after := broadcastableOrder()
	after.Status = models.OrderStatusDriverAccepted
	after.DriverID = "winner"
	after.UpdatedAt = time.Now()

	orderRepo := newFakeOrderRepo(after)
	svc, _, notifier := newDispatchFixture(orderRepo, newFakeDriverRepo())

	if err := svc.HandleOrderChange(context.Background(), before, after); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	notifier.Stop()

	if len(orderRepo.statusUpdates) != 0 {
		t.Fatalf("expected no repeat advancement, got %v", orderRepo.statusUpdates)
	}
}

func TestCancelledAndPlacedOrdersAreIgnored(t *testing.T) {
	for _, status := range []models.OrderStatus{models.OrderStatusCancelled, models.OrderStatusPlaced} {
		order := broadcastableOrder()
		order.Status = status
		orderRepo := newFakeOrderRepo(order)
		driverRepo := newFakeDriverRepo(testDriver("near", "zone-1", 0.005))
		svc, _, notifier := newDispatchFixture(orderRepo, driverRepo)

		if err := svc.HandleOrderChange(context.Background(), nil, order); err != nil {
			t.Fatalf("status %q: unexpected error: %v", status, err)
		}
		notifier.Stop()

		if driverRepo.get("near").HasPendingOrder(order.ID) {
			t.Fatalf("status %q must not be broadcast", status)
		}
	}
}
