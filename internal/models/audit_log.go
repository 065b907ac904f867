package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AuditAction string

const (
	AuditActionManualAssign AuditAction = "manual_assign"
	AuditActionDriverRemove AuditAction = "driver_remove"
)

// AuditLog records an admin override against an order for the activity feed.
type AuditLog struct {
	ID        primitive.ObjectID     `json:"id" bson:"_id,omitempty"`
	ActorID   string                 `json:"actor_id" bson:"actor_id"`
	Action    AuditAction            `json:"action" bson:"action"`
	OrderID   string                 `json:"order_id" bson:"order_id"`
	DriverID  string                 `json:"driver_id" bson:"driver_id"`
	Reason    string                 `json:"reason" bson:"reason"`
	Metadata  map[string]interface{} `json:"metadata" bson:"metadata"`
	CreatedAt time.Time              `json:"created_at" bson:"created_at"`
}
