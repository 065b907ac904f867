package services

import (
	"errors"
	"testing"
	"time"

	"godeliver/pkg/logger"
	"godeliver/pkg/push"
)

func TestNotificationDelivered(t *testing.T) {
	provider := &recordingProvider{}
	svc := NewNotificationService(provider, logger.NewNop())
	svc.Start()

	svc.Enqueue(&push.NotificationRequest{Token: "tok", Title: "hello"})
	svc.Stop()

	if provider.sentCount() != 1 {
		t.Fatalf("expected 1 delivery, got %d", provider.sentCount())
	}
}

func TestNotificationRetriesTransientFailure(t *testing.T) {
	provider := &recordingProvider{
		failures: 1,
		err:      errors.New("temporarily unavailable"),
	}
	svc := NewNotificationService(provider, logger.NewNop())
	svc.Start()

	svc.Enqueue(&push.NotificationRequest{Token: "tok", Title: "hello"})
	svc.Stop()

	if provider.sentCount() != 1 {
		t.Fatalf("expected delivery on retry, got %d sends", provider.sentCount())
	}
}

func TestNotificationDropsEmptyToken(t *testing.T) {
	provider := &recordingProvider{}
	svc := NewNotificationService(provider, logger.NewNop())
	svc.Start()

	svc.Enqueue(&push.NotificationRequest{Token: "", Title: "unroutable"})
	svc.Enqueue(nil)
	svc.Stop()

	if provider.sentCount() != 0 {
		t.Fatalf("expected no deliveries, got %d", provider.sentCount())
	}
}

func TestEnqueueNeverBlocks(t *testing.T) {
	// No workers started: the queue fills and overflow is dropped instead of
	// stalling the caller.
	provider := &recordingProvider{}
	svc := NewNotificationService(provider, logger.NewNop())

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			svc.Enqueue(&push.NotificationRequest{Token: "tok", Title: "flood"})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Enqueue blocked on a full queue")
	}
}
