package models

// DispatchSettingsID is the `_id` of the singleton settings document.
const DispatchSettingsID = "driver_nearby"

// DispatchSettings is the operator-tunable dispatch configuration, a single
// document in the settings collection.
type DispatchSettings struct {
	ID string `json:"id" bson:"_id"`

	// MinimumDepositToAccept is the wallet balance a driver must hold to be
	// offered an order.
	MinimumDepositToAccept float64 `json:"minimum_deposit_to_accept" bson:"minimum_deposit_to_ride_accept"`

	// DriverAcceptRejectDurationSec is the accept/reject countdown shown in
	// the offer notification, in seconds.
	DriverAcceptRejectDurationSec int `json:"driver_accept_reject_duration" bson:"driver_order_accept_reject_duration"`

	// OrderAutoCancelDurationMin is the advisory auto-cancel deadline stamped
	// on orders no tier could serve, in minutes.
	OrderAutoCancelDurationMin int `json:"order_auto_cancel_duration" bson:"order_auto_cancel_duration"`
}
