package mongodb

import (
	"context"
	"fmt"
	"time"

	"godeliver/internal/models"
	"godeliver/internal/repositories/interfaces"
	"godeliver/pkg/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type orderRepository struct {
	collection *mongo.Collection
	db         *database.MongoDB
}

func NewOrderRepository(db *database.MongoDB) interfaces.OrderRepository {
	return &orderRepository{
		collection: db.Collection("orders"),
		db:         db,
	}
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, interfaces.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return &order, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if result.MatchedCount == 0 {
		return interfaces.ErrOrderNotFound
	}

	return nil
}

// SetAutoCancelAt is the only write the no-candidate fallback makes. It must
// not touch status or any other field the broadcast path reads, otherwise the
// change-stream guard could not recognize it as a dispatch no-op.
func (r *orderRepository) SetAutoCancelAt(ctx context.Context, id string, at time.Time) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"order_auto_cancel_at": at}},
	)
	if err != nil {
		return fmt.Errorf("failed to set auto-cancel deadline: %w", err)
	}
	if result.MatchedCount == 0 {
		return interfaces.ErrOrderNotFound
	}

	return nil
}

func (r *orderRepository) AddRejectedDriver(ctx context.Context, orderID, driverID string) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": orderID},
		bson.M{
			"$addToSet": bson.M{"rejected_by_drivers": driverID},
			"$set":      bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to add rejected driver: %w", err)
	}
	if result.MatchedCount == 0 {
		return interfaces.ErrOrderNotFound
	}

	return nil
}

// AcceptDriverFCFS implements the first-come-first-served race as a single
// conditional update: the filter only matches while the order is still in
// "Driver Pending" with no driver set, so exactly one concurrent acceptance
// can commit. Losers get a precise reason by re-reading the document.
func (r *orderRepository) AcceptDriverFCFS(ctx context.Context, orderID string, driver *models.Driver) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{
			"_id":       orderID,
			"status":    models.OrderStatusDriverPending,
			"driver_id": "",
		},
		bson.M{"$set": bson.M{
			"driver_id":  driver.ID,
			"driver":     driver.Snapshot(),
			"status":     models.OrderStatusDriverAccepted,
			"updated_at": time.Now(),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to accept order: %w", err)
	}
	if result.MatchedCount == 1 {
		return nil
	}

	order, err := r.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.DriverID != "" {
		return interfaces.ErrOrderAlreadyAssigned
	}
	return interfaces.ErrOrderNotPending
}

// ManualAssignDriver runs the admin override inside a session transaction.
// The eligibility re-check inside the transaction is what closes the window
// between the handler's validation and the commit: a concurrent FCFS accept
// or status change surfaces as ErrPreconditionFailed instead of a silent
// overwrite.
func (r *orderRepository) ManualAssignDriver(ctx context.Context, orderID string, driver *models.Driver, assignedBy, reason string) error {
	_, err := r.db.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		var order models.Order
		if err := r.collection.FindOne(sessCtx, bson.M{"_id": orderID}).Decode(&order); err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, interfaces.ErrOrderNotFound
			}
			return nil, fmt.Errorf("failed to reload order: %w", err)
		}

		if !order.Status.IsManualAssignEligible() || order.TakeAway {
			return nil, interfaces.ErrPreconditionFailed
		}

		now := time.Now()
		update := bson.M{"$set": bson.M{
			"driver_id": driver.ID,
			"driver":    driver.Snapshot(),
			"status":    models.OrderStatusDriverPending,
			"manual_assignment": &models.ManualAssignment{
				DriverID:   driver.ID,
				AssignedBy: assignedBy,
				Reason:     reason,
				AssignedAt: now,
			},
			"updated_at": now,
		}}

		if _, err := r.collection.UpdateOne(sessCtx, bson.M{"_id": orderID}, update); err != nil {
			return nil, fmt.Errorf("failed to write manual assignment: %w", err)
		}

		return nil, nil
	})

	return err
}

// RemoveDriver clears the assignment and parks the order back in
// "Order Accepted", which naturally re-enters the broadcast path on the next
// change event.
func (r *orderRepository) RemoveDriver(ctx context.Context, orderID, removedBy, reason string) error {
	_, err := r.db.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		var order models.Order
		if err := r.collection.FindOne(sessCtx, bson.M{"_id": orderID}).Decode(&order); err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, interfaces.ErrOrderNotFound
			}
			return nil, fmt.Errorf("failed to reload order: %w", err)
		}

		if !order.Status.IsDriverRemovable() {
			return nil, interfaces.ErrPreconditionFailed
		}

		now := time.Now()
		update := bson.M{"$set": bson.M{
			"driver_id":         "",
			"driver":            nil,
			"status":            models.OrderStatusAccepted,
			"manual_assignment": nil,
			"driver_removal": &models.DriverRemoval{
				RemovedBy: removedBy,
				Reason:    reason,
				RemovedAt: now,
			},
			"updated_at": now,
		}}

		if _, err := r.collection.UpdateOne(sessCtx, bson.M{"_id": orderID}, update); err != nil {
			return nil, fmt.Errorf("failed to write driver removal: %w", err)
		}

		return nil, nil
	})

	return err
}
