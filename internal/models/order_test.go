package models

import "testing"

func TestStatusPredicates(t *testing.T) {
	broadcastable := map[OrderStatus]bool{
		OrderStatusPlaced:         false,
		OrderStatusAccepted:       true,
		OrderStatusDriverPending:  true,
		OrderStatusDriverAccepted: false,
		OrderStatusDriverRejected: true,
		OrderStatusShipped:        false,
		OrderStatusInTransit:      false,
		OrderStatusCompleted:      false,
		OrderStatusRejected:       false,
		OrderStatusCancelled:      false,
	}
	for status, want := range broadcastable {
		if got := status.IsBroadcastable(); got != want {
			t.Errorf("IsBroadcastable(%q) = %v, want %v", status, got, want)
		}
	}

	terminal := map[OrderStatus]bool{
		OrderStatusDriverAccepted: true,
		OrderStatusCompleted:      true,
		OrderStatusCancelled:      true,
		OrderStatusDriverPending:  false,
		OrderStatusShipped:        false,
	}
	for status, want := range terminal {
		if got := status.IsTerminalForDispatch(); got != want {
			t.Errorf("IsTerminalForDispatch(%q) = %v, want %v", status, got, want)
		}
	}

	removable := map[OrderStatus]bool{
		OrderStatusDriverPending:  true,
		OrderStatusDriverRejected: true,
		OrderStatusDriverAccepted: false,
		OrderStatusAccepted:       false,
	}
	for status, want := range removable {
		if got := status.IsDriverRemovable(); got != want {
			t.Errorf("IsDriverRemovable(%q) = %v, want %v", status, got, want)
		}
	}
}

func TestHasRejectedBy(t *testing.T) {
	order := &Order{RejectedByDrivers: []string{"a", "b"}}
	if !order.HasRejectedBy("a") {
		t.Fatal("expected a in rejection set")
	}
	if order.HasRejectedBy("c") {
		t.Fatal("did not expect c in rejection set")
	}
}

func TestDriverSnapshot(t *testing.T) {
	driver := &Driver{
		ID:        "d1",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Phone:     "+100",
		FCMToken:  "tok",
		Vehicle:   &VehicleInfo{PlateNumber: "34 ABC 123"},
		// Fields below must not leak into the snapshot.
		WalletAmount:     999,
		OrderRequestData: []string{"order-1"},
	}

	snap := driver.Snapshot()
	if snap.ID != "d1" || snap.FirstName != "Ada" || snap.FCMToken != "tok" {
		t.Fatalf("snapshot missing identity fields: %+v", snap)
	}
	if snap.Vehicle == nil || snap.Vehicle.PlateNumber != "34 ABC 123" {
		t.Fatal("snapshot missing vehicle")
	}
}

func TestFullName(t *testing.T) {
	d := &Driver{FirstName: "Ada", LastName: "Lovelace"}
	if got := d.FullName(); got != "Ada Lovelace" {
		t.Fatalf("got %q", got)
	}
	solo := &Driver{FirstName: "Cher"}
	if got := solo.FullName(); got != "Cher" {
		t.Fatalf("got %q", got)
	}
}
