package services

import (
	"context"
	"sync"
	"time"

	"godeliver/internal/models"
	"godeliver/internal/repositories/interfaces"
	"godeliver/pkg/push"
)

// In-memory doubles mirroring the mongodb repository semantics, including the
// conditional-update acceptance race, so the service tests can exercise real
// concurrency without a database.

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*models.Order

	statusUpdates []models.OrderStatus
}

func newFakeOrderRepo(orders ...*models.Order) *fakeOrderRepo {
	r := &fakeOrderRepo{orders: make(map[string]*models.Order)}
	for _, o := range orders {
		dup := *o
		r.orders[o.ID] = &dup
	}
	return r
}

func (r *fakeOrderRepo) get(id string) *models.Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.orders[id]; ok {
		dup := *o
		return &dup
	}
	return nil
}

func (r *fakeOrderRepo) GetByID(ctx context.Context, id string) (*models.Order, error) {
	if o := r.get(id); o != nil {
		return o, nil
	}
	return nil, interfaces.ErrOrderNotFound
}

func (r *fakeOrderRepo) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return interfaces.ErrOrderNotFound
	}
	o.Status = status
	o.UpdatedAt = time.Now()
	r.statusUpdates = append(r.statusUpdates, status)
	return nil
}

func (r *fakeOrderRepo) SetAutoCancelAt(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return interfaces.ErrOrderNotFound
	}
	o.OrderAutoCancelAt = &at
	return nil
}

func (r *fakeOrderRepo) AddRejectedDriver(ctx context.Context, orderID, driverID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return interfaces.ErrOrderNotFound
	}
	for _, id := range o.RejectedByDrivers {
		if id == driverID {
			return nil
		}
	}
	o.RejectedByDrivers = append(o.RejectedByDrivers, driverID)
	return nil
}

func (r *fakeOrderRepo) AcceptDriverFCFS(ctx context.Context, orderID string, driver *models.Driver) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return interfaces.ErrOrderNotFound
	}
	if o.Status == models.OrderStatusDriverPending && o.DriverID == "" {
		o.DriverID = driver.ID
		o.Driver = driver.Snapshot()
		o.Status = models.OrderStatusDriverAccepted
		o.UpdatedAt = time.Now()
		return nil
	}
	if o.DriverID != "" {
		return interfaces.ErrOrderAlreadyAssigned
	}
	return interfaces.ErrOrderNotPending
}

func (r *fakeOrderRepo) ManualAssignDriver(ctx context.Context, orderID string, driver *models.Driver, assignedBy, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return interfaces.ErrOrderNotFound
	}
	if !o.Status.IsManualAssignEligible() || o.TakeAway || o.DriverID != "" {
		return interfaces.ErrPreconditionFailed
	}
	now := time.Now()
	o.DriverID = driver.ID
	o.Driver = driver.Snapshot()
	o.Status = models.OrderStatusDriverPending
	o.ManualAssignment = &models.ManualAssignment{
		DriverID:   driver.ID,
		AssignedBy: assignedBy,
		Reason:     reason,
		AssignedAt: now,
	}
	o.UpdatedAt = now
	return nil
}

func (r *fakeOrderRepo) RemoveDriver(ctx context.Context, orderID, removedBy, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return interfaces.ErrOrderNotFound
	}
	if !o.Status.IsDriverRemovable() {
		return interfaces.ErrPreconditionFailed
	}
	now := time.Now()
	o.DriverID = ""
	o.Driver = nil
	o.Status = models.OrderStatusAccepted
	o.ManualAssignment = nil
	o.DriverRemoval = &models.DriverRemoval{
		RemovedBy: removedBy,
		Reason:    reason,
		RemovedAt: now,
	}
	o.UpdatedAt = now
	return nil
}

type fakeDriverRepo struct {
	mu      sync.Mutex
	drivers []*models.Driver
}

func newFakeDriverRepo(drivers ...*models.Driver) *fakeDriverRepo {
	r := &fakeDriverRepo{}
	for _, d := range drivers {
		dup := *d
		r.drivers = append(r.drivers, &dup)
	}
	return r
}

func (r *fakeDriverRepo) find(id string) *models.Driver {
	for _, d := range r.drivers {
		if d.ID == id {
			return d
		}
	}
	return nil
}

func (r *fakeDriverRepo) get(id string) *models.Driver {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d := r.find(id); d != nil {
		dup := *d
		dup.OrderRequestData = append([]string(nil), d.OrderRequestData...)
		return &dup
	}
	return nil
}

func (r *fakeDriverRepo) GetByID(ctx context.Context, id string) (*models.Driver, error) {
	if d := r.get(id); d != nil {
		return d, nil
	}
	return nil, interfaces.ErrDriverNotFound
}

func (r *fakeDriverRepo) ListActiveWithMinWallet(ctx context.Context, minWallet float64) ([]*models.Driver, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Driver
	for _, d := range r.drivers {
		if d.Role == models.RoleDriver && d.IsActive && d.WalletAmount >= minWallet {
			dup := *d
			dup.OrderRequestData = append([]string(nil), d.OrderRequestData...)
			out = append(out, &dup)
		}
	}
	return out, nil
}

func (r *fakeDriverRepo) ListActive(ctx context.Context) ([]*models.Driver, error) {
	return r.ListActiveWithMinWallet(ctx, 0)
}

func (r *fakeDriverRepo) AddOrderRequest(ctx context.Context, driverIDs []string, orderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range driverIDs {
		d := r.find(id)
		if d == nil {
			continue
		}
		if !d.HasPendingOrder(orderID) {
			d.OrderRequestData = append(d.OrderRequestData, orderID)
		}
	}
	return nil
}

func (r *fakeDriverRepo) RemoveOrderRequest(ctx context.Context, driverID, orderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d := r.find(driverID)
	if d == nil {
		return interfaces.ErrDriverNotFound
	}
	d.OrderRequestData = removeString(d.OrderRequestData, orderID)
	return nil
}

func (r *fakeDriverRepo) PurgeOrderRequests(ctx context.Context, orderID, exceptDriverID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var purged int64
	for _, d := range r.drivers {
		if d.ID == exceptDriverID || !d.HasPendingOrder(orderID) {
			continue
		}
		d.OrderRequestData = removeString(d.OrderRequestData, orderID)
		purged++
	}
	return purged, nil
}

func removeString(list []string, value string) []string {
	out := list[:0]
	for _, v := range list {
		if v != value {
			out = append(out, v)
		}
	}
	return out
}

type fakeZoneRepo struct {
	zones []*models.Zone
}

func (r *fakeZoneRepo) ListPublished(ctx context.Context) ([]*models.Zone, error) {
	var out []*models.Zone
	for _, z := range r.zones {
		if z.Publish {
			out = append(out, z)
		}
	}
	return out, nil
}

type fakeSettingsRepo struct {
	settings *models.DispatchSettings
}

func (r *fakeSettingsRepo) GetDispatchSettings(ctx context.Context) (*models.DispatchSettings, error) {
	if r.settings != nil {
		return r.settings, nil
	}
	return &models.DispatchSettings{
		ID:                            models.DispatchSettingsID,
		MinimumDepositToAccept:        0,
		DriverAcceptRejectDurationSec: 30,
		OrderAutoCancelDurationMin:    15,
	}, nil
}

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []*models.AuditLog
}

func (r *fakeAuditRepo) Create(ctx context.Context, entry *models.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeAuditRepo) ListByOrder(ctx context.Context, orderID string, limit int64) ([]*models.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.AuditLog
	for _, e := range r.entries {
		if e.OrderID == orderID {
			out = append(out, e)
		}
	}
	return out, nil
}

// recordingProvider captures push requests and can be told to fail the first
// N sends, for exercising the retry loop.
type recordingProvider struct {
	mu       sync.Mutex
	sent     []*push.NotificationRequest
	failures int
	err      error
}

func (p *recordingProvider) SendNotification(ctx context.Context, request *push.NotificationRequest) (*push.NotificationResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failures > 0 {
		p.failures--
		return nil, p.err
	}
	p.sent = append(p.sent, request)
	return &push.NotificationResponse{Success: true, Token: request.Token}, nil
}

func (p *recordingProvider) SendBulkNotifications(ctx context.Context, requests []*push.NotificationRequest) ([]*push.NotificationResponse, error) {
	out := make([]*push.NotificationResponse, 0, len(requests))
	for _, req := range requests {
		resp, err := p.SendNotification(ctx, req)
		if err != nil {
			return nil, err
		}
		out = append(out, resp)
	}
	return out, nil
}

func (p *recordingProvider) sentCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sent)
}
