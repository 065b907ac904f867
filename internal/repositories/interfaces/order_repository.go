package interfaces

import (
	"context"
	"time"

	"godeliver/internal/models"
)

type OrderRepository interface {
	GetByID(ctx context.Context, id string) (*models.Order, error)

	// UpdateStatus sets the order status unconditionally. Idempotent re-sets
	// are fine: the dispatch state machine tolerates re-triggers.
	UpdateStatus(ctx context.Context, id string, status models.OrderStatus) error

	// SetAutoCancelAt merge-writes the advisory auto-cancel deadline without
	// touching any field the broadcast path reacts to.
	SetAutoCancelAt(ctx context.Context, id string, at time.Time) error

	// AddRejectedDriver appends the driver to the order's rejection set
	// ($addToSet: idempotent, commutative with concurrent appends).
	AddRejectedDriver(ctx context.Context, orderID, driverID string) error

	// AcceptDriverFCFS is the single-document compare-and-swap behind
	// first-come-first-served acceptance: it commits only while the order is
	// still in "Driver Pending" with no driver assigned. Loss reasons are
	// ErrOrderAlreadyAssigned, ErrOrderNotPending, or ErrOrderNotFound.
	AcceptDriverFCFS(ctx context.Context, orderID string, driver *models.Driver) error

	// ManualAssignDriver re-reads the order inside a transaction, re-checks
	// that it is still eligible for manual assignment (and not takeaway), and
	// writes the assignment plus audit sub-record. ErrPreconditionFailed when
	// the re-check loses a race.
	ManualAssignDriver(ctx context.Context, orderID string, driver *models.Driver, assignedBy, reason string) error

	// RemoveDriver clears the assignment and returns the order to
	// "Order Accepted" inside a transaction; ErrPreconditionFailed when the
	// order is no longer in a removable status.
	RemoveDriver(ctx context.Context, orderID, removedBy, reason string) error
}
