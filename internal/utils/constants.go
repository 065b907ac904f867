package utils

import "time"

// Application Constants
const (
	AppName    = "GoDeliver"
	AppVersion = "1.0.0"

	// Default values
	DefaultTimeZone = "UTC"

	// Authentication
	JWTAccessTokenTTL  = 24 * time.Hour
	JWTRefreshTokenTTL = 7 * 24 * time.Hour

	// Dispatch Constants
	DefaultMinimumDeposit         = 0.0
	DefaultAcceptRejectDuration   = 30 * time.Second
	DefaultOrderAutoCancelMinutes = 15
	MaxSearchRadiusKM             = 20.0

	// Notification
	NotificationQueueSize     = 256
	NotificationWorkers       = 4
	NotificationRetryAttempts = 3
	NotificationRetryBackoff  = 2 * time.Second
	NotificationTimeout       = 10 * time.Second

	// Cache
	SettingsCacheTTL = 5 * time.Minute
	ZoneCacheTTL     = 10 * time.Minute
)

// SearchRadiusTiersKM is the fixed ascending radius ladder tried during a
// broadcast. The first tier that yields any candidate wins; larger tiers are
// never consulted for that broadcast.
var SearchRadiusTiersKM = []float64{1, 2, 3, 5, 10, 20}

// Response Status
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Error Messages
const (
	ErrValidationFailed = "Validation failed"
	ErrInternalServer   = "Internal server error"
	ErrUnauthorized     = "Unauthorized access"
	ErrForbidden        = "Access forbidden"

	MsgOrderAlreadyAssigned  = "Order already assigned"
	MsgOrderNotPending       = "Order not in Driver Pending status"
	MsgOrderStatusChanged    = "Order status changed during assignment"
	MsgDriverNotActive       = "Driver is not active"
	MsgDriverNotDriverRole   = "Referenced user is not a driver"
	MsgTakeawayNotDispatched = "Takeaway orders are not dispatched to drivers"
	MsgOrderNotRemovable     = "Order has no removable driver assignment"
)
