package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"godeliver/internal/models"
	"godeliver/internal/repositories/interfaces"
	"godeliver/internal/utils"
	"godeliver/pkg/logger"
	"godeliver/pkg/push"
	"godeliver/pkg/websocket"
)

// Validation errors surfaced by the manual admin paths. Handlers map these
// onto the invalid-argument / failed-precondition taxonomy.
var (
	ErrNotADriver       = errors.New(utils.MsgDriverNotDriverRole)
	ErrDriverInactive   = errors.New(utils.MsgDriverNotActive)
	ErrOrderNotEligible = errors.New(utils.MsgOrderStatusChanged)
	ErrTakeawayOrder    = errors.New(utils.MsgTakeawayNotDispatched)
)

// AssignmentResult is the structured outcome of the FCFS acceptance race.
// Losing is a normal outcome, not an error: the reason tells the driver app
// why the offer is gone.
type AssignmentResult struct {
	Success bool   `json:"success"`
	Reason  string `json:"reason,omitempty"`
}

// AssignmentService owns every mutation that binds or unbinds a driver and
// an order: the FCFS acceptance race, driver rejection, and the admin
// override paths.
type AssignmentService interface {
	// AcceptOrderFCFS attempts first-come-first-served acceptance. At most
	// one concurrent call per order succeeds; the rest get a reason.
	AcceptOrderFCFS(ctx context.Context, orderID, driverID string) (*AssignmentResult, error)

	// RejectOrder records the driver's refusal and clears the offer from
	// their inbox. The two writes hit independent documents and are
	// deliberately non-atomic: the orchestrator re-reads the rejection set
	// on a fresh trigger.
	RejectOrder(ctx context.Context, orderID, driverID string) error

	// ManualAssign is the admin override of the broadcast/FCFS flow.
	ManualAssign(ctx context.Context, orderID, driverID, assignedBy, reason string) error

	// ManualRemove strips a pending assignment and returns the order to the
	// broadcastable pool.
	ManualRemove(ctx context.Context, orderID, removedBy, reason string) error

	// GetAvailableDrivers lists manual-assignment candidates for an order,
	// ranked online-first, then wallet, then recency. Presentation order
	// only; no correctness hangs on it.
	GetAvailableDrivers(ctx context.Context, orderID, zoneID string) ([]*models.AvailableDriver, error)
}

type assignmentService struct {
	orderRepo  interfaces.OrderRepository
	driverRepo interfaces.DriverRepository
	auditRepo  interfaces.AuditLogRepository
	cleanup    CleanupService
	notifier   NotificationService
	hub        *websocket.Hub
	logger     *logger.Logger
}

func NewAssignmentService(
	orderRepo interfaces.OrderRepository,
	driverRepo interfaces.DriverRepository,
	auditRepo interfaces.AuditLogRepository,
	cleanup CleanupService,
	notifier NotificationService,
	hub *websocket.Hub,
	log *logger.Logger,
) AssignmentService {
	return &assignmentService{
		orderRepo:  orderRepo,
		driverRepo: driverRepo,
		auditRepo:  auditRepo,
		cleanup:    cleanup,
		notifier:   notifier,
		hub:        hub,
		logger:     log,
	}
}

func (s *assignmentService) AcceptOrderFCFS(ctx context.Context, orderID, driverID string) (*AssignmentResult, error) {
	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return nil, err
	}

	err = s.orderRepo.AcceptDriverFCFS(ctx, orderID, driver)
	switch {
	case err == nil:
	case errors.Is(err, interfaces.ErrOrderAlreadyAssigned):
		return &AssignmentResult{Success: false, Reason: utils.MsgOrderAlreadyAssigned}, nil
	case errors.Is(err, interfaces.ErrOrderNotPending):
		return &AssignmentResult{Success: false, Reason: utils.MsgOrderNotPending}, nil
	default:
		return nil, err
	}

	log := s.logger.WithOrderID(orderID).WithDriverID(driverID)
	log.Info("Driver won FCFS acceptance")

	// Best effort: the async cleanup listener heals any miss here once the
	// accepted status lands in the change stream.
	if err := s.cleanup.PurgeOrderFromOtherDrivers(ctx, orderID, driverID); err != nil {
		log.WithError(err).Warn("Post-acceptance cleanup failed, deferring to change-stream cleanup")
	}

	if s.hub != nil {
		s.hub.Publish(websocket.EventDriverAssigned, orderID, map[string]interface{}{
			"driver_id": driverID,
			"mode":      "fcfs",
		})
	}

	return &AssignmentResult{Success: true}, nil
}

func (s *assignmentService) RejectOrder(ctx context.Context, orderID, driverID string) error {
	if err := s.orderRepo.AddRejectedDriver(ctx, orderID, driverID); err != nil {
		return err
	}

	if err := s.driverRepo.RemoveOrderRequest(ctx, driverID, orderID); err != nil {
		return err
	}

	s.logger.WithOrderID(orderID).WithDriverID(driverID).Info("Driver rejected order offer")

	if s.hub != nil {
		s.hub.Publish(websocket.EventDriverRejected, orderID, map[string]interface{}{
			"driver_id": driverID,
		})
	}

	return nil
}

func (s *assignmentService) ManualAssign(ctx context.Context, orderID, driverID, assignedBy, reason string) error {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return err
	}

	if driver.Role != models.RoleDriver {
		return ErrNotADriver
	}
	if !driver.IsActive {
		return ErrDriverInactive
	}
	if order.TakeAway {
		return ErrTakeawayOrder
	}
	if !order.Status.IsManualAssignEligible() {
		return ErrOrderNotEligible
	}

	// The repository re-checks eligibility inside the transaction; a
	// concurrent FCFS accept between the validation above and the commit
	// surfaces as ErrPreconditionFailed.
	if err := s.orderRepo.ManualAssignDriver(ctx, orderID, driver, assignedBy, reason); err != nil {
		return err
	}

	log := s.logger.WithOrderID(orderID).WithDriverID(driverID)
	log.WithField("assigned_by", assignedBy).Info("Admin manually assigned driver")

	if err := s.cleanup.PurgeOrderFromOtherDrivers(ctx, orderID, driverID); err != nil {
		log.WithError(err).Warn("Post-assignment cleanup failed, deferring to change-stream cleanup")
	}

	s.notifier.Enqueue(&push.NotificationRequest{
		Token:    driver.FCMToken,
		Title:    "Order assigned to you",
		Body:     fmt.Sprintf("An admin assigned you order from %s.", order.Vendor.Title),
		Data:     map[string]string{"type": "manual_assignment", "order_id": orderID},
		Priority: "high",
	})

	s.writeAudit(ctx, &models.AuditLog{
		ActorID:  assignedBy,
		Action:   models.AuditActionManualAssign,
		OrderID:  orderID,
		DriverID: driverID,
		Reason:   reason,
	})

	if s.hub != nil {
		s.hub.Publish(websocket.EventDriverAssigned, orderID, map[string]interface{}{
			"driver_id":   driverID,
			"mode":        "manual",
			"assigned_by": assignedBy,
		})
	}

	return nil
}

func (s *assignmentService) ManualRemove(ctx context.Context, orderID, removedBy, reason string) error {
	if _, err := s.orderRepo.GetByID(ctx, orderID); err != nil {
		return err
	}

	if err := s.orderRepo.RemoveDriver(ctx, orderID, removedBy, reason); err != nil {
		return err
	}

	// No cleanup call: clearing the order back to "Order Accepted"
	// re-enters the broadcast path on the next change event, which refreshes
	// every inbox naturally.

	s.logger.WithOrderID(orderID).WithField("removed_by", removedBy).Info("Admin removed driver from order")

	s.writeAudit(ctx, &models.AuditLog{
		ActorID: removedBy,
		Action:  models.AuditActionDriverRemove,
		OrderID: orderID,
		Reason:  reason,
	})

	if s.hub != nil {
		s.hub.Publish(websocket.EventDriverRemoved, orderID, map[string]interface{}{
			"removed_by": removedBy,
		})
	}

	return nil
}

func (s *assignmentService) GetAvailableDrivers(ctx context.Context, orderID, zoneID string) ([]*models.AvailableDriver, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	drivers, err := s.driverRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	available := make([]*models.AvailableDriver, 0, len(drivers))
	for _, driver := range drivers {
		if zoneID != "" && driver.ZoneID != zoneID {
			continue
		}
		if order.HasRejectedBy(driver.ID) {
			continue
		}
		if driver.HasPendingOrder(orderID) {
			continue
		}

		entry := &models.AvailableDriver{
			ID:           driver.ID,
			Name:         driver.FullName(),
			Phone:        driver.Phone,
			Email:        driver.Email,
			ZoneID:       driver.ZoneID,
			Vehicle:      driver.Vehicle,
			WalletAmount: driver.WalletAmount,
			IsOnline:     driver.IsOnline,
			LastSeen:     driver.LastSeen,
		}
		if driver.Location != nil {
			entry.DistanceKM = utils.CalculateDistance(
				driver.Location.Latitude, driver.Location.Longitude,
				order.Vendor.Latitude, order.Vendor.Longitude,
			)
		}

		available = append(available, entry)
	}

	sort.SliceStable(available, func(i, j int) bool {
		if available[i].IsOnline != available[j].IsOnline {
			return available[i].IsOnline
		}
		if available[i].WalletAmount != available[j].WalletAmount {
			return available[i].WalletAmount > available[j].WalletAmount
		}
		return laterSeen(available[i].LastSeen, available[j].LastSeen)
	})

	return available, nil
}

// laterSeen orders non-nil, more recent timestamps first.
func laterSeen(a, b *time.Time) bool {
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}
	return a.After(*b)
}

func (s *assignmentService) writeAudit(ctx context.Context, entry *models.AuditLog) {
	if s.auditRepo == nil {
		return
	}
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		s.logger.WithError(err).WithOrderID(entry.OrderID).Warn("Failed to write audit log entry")
	}
}
