package models

import (
	"strings"
	"time"
)

const RoleDriver = "driver"

type VehicleInfo struct {
	Make        string `json:"make" bson:"make"`
	Model       string `json:"model" bson:"model"`
	Color       string `json:"color" bson:"color"`
	PlateNumber string `json:"plate_number" bson:"plate_number"`
}

type Driver struct {
	ID           string       `json:"id" bson:"_id"`
	Role         string       `json:"role" bson:"role"`
	FirstName    string       `json:"first_name" bson:"first_name"`
	LastName     string       `json:"last_name" bson:"last_name"`
	Phone        string       `json:"phone" bson:"phone"`
	Email        string       `json:"email" bson:"email"`
	IsActive     bool         `json:"is_active" bson:"is_active"`
	IsOnline     bool         `json:"is_online" bson:"is_online"`
	FCMToken     string       `json:"fcm_token" bson:"fcm_token"`
	ZoneID       string       `json:"zone_id" bson:"zone_id"`
	Location     *Location    `json:"location" bson:"location"`
	WalletAmount float64      `json:"wallet_amount" bson:"wallet_amount"`
	Vehicle      *VehicleInfo `json:"vehicle" bson:"vehicle"`

	// OrderRequestData is the driver's pending-offer inbox: the set of order
	// IDs currently broadcast to this driver, awaiting accept or reject.
	// Mutated only through $addToSet/$pull so concurrent dispatch cycles for
	// different orders compose without a lock.
	OrderRequestData []string `json:"order_request_data" bson:"order_request_data"`

	LastSeen  *time.Time `json:"last_seen" bson:"last_seen"`
	CreatedAt time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" bson:"updated_at"`
}

func (d *Driver) FullName() string {
	return strings.TrimSpace(d.FirstName + " " + d.LastName)
}

// HasPendingOrder reports whether the order is already in this driver's inbox.
func (d *Driver) HasPendingOrder(orderID string) bool {
	for _, id := range d.OrderRequestData {
		if id == orderID {
			return true
		}
	}
	return false
}

// Snapshot captures the driver's public fields for denormalization onto an
// order at assignment time.
func (d *Driver) Snapshot() *DriverSnapshot {
	return &DriverSnapshot{
		ID:        d.ID,
		FirstName: d.FirstName,
		LastName:  d.LastName,
		Phone:     d.Phone,
		Email:     d.Email,
		FCMToken:  d.FCMToken,
		Vehicle:   d.Vehicle,
	}
}

type DriverSnapshot struct {
	ID        string       `json:"id" bson:"id"`
	FirstName string       `json:"first_name" bson:"first_name"`
	LastName  string       `json:"last_name" bson:"last_name"`
	Phone     string       `json:"phone" bson:"phone"`
	Email     string       `json:"email" bson:"email"`
	FCMToken  string       `json:"fcm_token" bson:"fcm_token"`
	Vehicle   *VehicleInfo `json:"vehicle" bson:"vehicle"`
}

// AvailableDriver is the admin manual-assignment view of a candidate driver.
type AvailableDriver struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Phone        string       `json:"phone"`
	Email        string       `json:"email"`
	ZoneID       string       `json:"zone_id"`
	Vehicle      *VehicleInfo `json:"vehicle"`
	WalletAmount float64      `json:"wallet_amount"`
	IsOnline     bool         `json:"is_online"`
	LastSeen     *time.Time   `json:"last_seen"`
	DistanceKM   float64      `json:"distance_km"`
}
