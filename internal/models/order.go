package models

import (
	"time"
)

type OrderStatus string

// Status strings are written by the external ordering flow and mirrored by the
// driver apps, so the literal values are part of the shared contract.
const (
	OrderStatusPlaced         OrderStatus = "Order Placed"
	OrderStatusAccepted       OrderStatus = "Order Accepted"
	OrderStatusDriverPending  OrderStatus = "Driver Pending"
	OrderStatusDriverAccepted OrderStatus = "Driver Accepted"
	OrderStatusDriverRejected OrderStatus = "Driver Rejected"
	OrderStatusShipped        OrderStatus = "Order Shipped"
	OrderStatusInTransit      OrderStatus = "In Transit"
	OrderStatusCompleted      OrderStatus = "Order Completed"
	OrderStatusRejected       OrderStatus = "Order Rejected"
	OrderStatusCancelled      OrderStatus = "Order Cancelled"
)

// IsBroadcastable reports whether an order in this status (re-)enters the
// expanding-radius broadcast.
func (s OrderStatus) IsBroadcastable() bool {
	switch s {
	case OrderStatusAccepted, OrderStatusDriverPending, OrderStatusDriverRejected:
		return true
	}
	return false
}

// IsTerminalForDispatch reports whether the order will not be re-dispatched:
// either resolved to a driver or taken out of circulation entirely.
func (s OrderStatus) IsTerminalForDispatch() bool {
	switch s {
	case OrderStatusDriverAccepted, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// IsManualAssignEligible reports whether an admin may still override the
// broadcast with a manual assignment.
func (s OrderStatus) IsManualAssignEligible() bool {
	return s.IsBroadcastable()
}

// IsDriverRemovable reports whether an admin may strip the current assignment.
func (s OrderStatus) IsDriverRemovable() bool {
	switch s {
	case OrderStatusDriverPending, OrderStatusDriverRejected:
		return true
	}
	return false
}

type VendorInfo struct {
	ID        string  `json:"id" bson:"id"`
	Author    string  `json:"author" bson:"author"`
	Title     string  `json:"title" bson:"title"`
	FCMToken  string  `json:"fcm_token" bson:"fcm_token"`
	Latitude  float64 `json:"latitude" bson:"latitude"`
	Longitude float64 `json:"longitude" bson:"longitude"`
}

type DeliveryAddress struct {
	AddressLine string   `json:"address_line" bson:"address_line"`
	Location    Location `json:"location" bson:"location"`
}

type ManualAssignment struct {
	DriverID   string    `json:"driver_id" bson:"driver_id"`
	AssignedBy string    `json:"assigned_by" bson:"assigned_by"`
	Reason     string    `json:"reason" bson:"reason"`
	AssignedAt time.Time `json:"assigned_at" bson:"assigned_at"`
}

type DriverRemoval struct {
	RemovedBy string    `json:"removed_by" bson:"removed_by"`
	Reason    string    `json:"reason" bson:"reason"`
	RemovedAt time.Time `json:"removed_at" bson:"removed_at"`
}

type Order struct {
	ID                string            `json:"id" bson:"_id"`
	Status            OrderStatus       `json:"status" bson:"status"`
	DriverID          string            `json:"driver_id" bson:"driver_id"` // empty = unassigned
	Driver            *DriverSnapshot   `json:"driver" bson:"driver"`
	RejectedByDrivers []string          `json:"rejected_by_drivers" bson:"rejected_by_drivers"`
	TakeAway          bool              `json:"take_away" bson:"take_away"`
	Vendor            VendorInfo        `json:"vendor" bson:"vendor"`
	Address           DeliveryAddress   `json:"address" bson:"address"`
	OrderAutoCancelAt *time.Time        `json:"order_auto_cancel_at" bson:"order_auto_cancel_at"`
	ManualAssignment  *ManualAssignment `json:"manual_assignment" bson:"manual_assignment"`
	DriverRemoval     *DriverRemoval    `json:"driver_removal" bson:"driver_removal"`
	CreatedAt         time.Time         `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at" bson:"updated_at"`
}

// HasRejectedBy reports whether the given driver already declined this order.
func (o *Order) HasRejectedBy(driverID string) bool {
	for _, id := range o.RejectedByDrivers {
		if id == driverID {
			return true
		}
	}
	return false
}
