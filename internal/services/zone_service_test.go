package services

import (
	"context"
	"testing"

	"godeliver/internal/models"
)

func zoneSquare(id string, publish bool, minLat, minLng, maxLat, maxLng float64) *models.Zone {
	return &models.Zone{
		ID:      id,
		Name:    id,
		Publish: publish,
		Area: []models.Location{
			{Latitude: minLat, Longitude: minLng},
			{Latitude: minLat, Longitude: maxLng},
			{Latitude: maxLat, Longitude: maxLng},
			{Latitude: maxLat, Longitude: minLng},
		},
	}
}

func TestResolveZoneInside(t *testing.T) {
	svc := NewZoneService(&fakeZoneRepo{zones: []*models.Zone{
		zoneSquare("zone-1", true, -1, -1, 1, 1),
	}})

	id, err := svc.ResolveZone(context.Background(), 0.5, 0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "zone-1" {
		t.Fatalf("expected zone-1, got %q", id)
	}
}

func TestResolveZoneOutside(t *testing.T) {
	svc := NewZoneService(&fakeZoneRepo{zones: []*models.Zone{
		zoneSquare("zone-1", true, -1, -1, 1, 1),
	}})

	id, err := svc.ResolveZone(context.Background(), 5, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "" {
		t.Fatalf("expected no zone, got %q", id)
	}
}

func TestResolveZoneSkipsUnpublished(t *testing.T) {
	svc := NewZoneService(&fakeZoneRepo{zones: []*models.Zone{
		zoneSquare("zone-draft", false, -1, -1, 1, 1),
	}})

	id, err := svc.ResolveZone(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "" {
		t.Fatalf("expected unpublished zone to be ignored, got %q", id)
	}
}

func TestResolveZoneOverlapFirstMatchWins(t *testing.T) {
	svc := NewZoneService(&fakeZoneRepo{zones: []*models.Zone{
		zoneSquare("zone-a", true, -1, -1, 1, 1),
		zoneSquare("zone-b", true, -2, -2, 2, 2),
	}})

	id, err := svc.ResolveZone(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "zone-a" {
		t.Fatalf("expected first matching zone to win, got %q", id)
	}
}

func TestResolveZoneInvalidCoordinates(t *testing.T) {
	svc := NewZoneService(&fakeZoneRepo{})

	if _, err := svc.ResolveZone(context.Background(), 120, 0); err == nil {
		t.Fatal("expected error for out-of-range latitude")
	}
}
