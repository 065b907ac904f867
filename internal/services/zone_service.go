package services

import (
	"context"
	"fmt"

	"godeliver/internal/models"
	"godeliver/internal/repositories/interfaces"
	"godeliver/internal/utils"
)

type ZoneService interface {
	// ResolveZone maps a delivery point to a zone ID, or "" when no
	// published zone contains it. When polygons overlap the first match in
	// repository order wins; no tie-break beyond that is defined.
	ResolveZone(ctx context.Context, lat, lng float64) (string, error)
}

type zoneService struct {
	zoneRepo interfaces.ZoneRepository
}

func NewZoneService(zoneRepo interfaces.ZoneRepository) ZoneService {
	return &zoneService{
		zoneRepo: zoneRepo,
	}
}

func (s *zoneService) ResolveZone(ctx context.Context, lat, lng float64) (string, error) {
	if !utils.IsValidCoordinates(lat, lng) {
		return "", fmt.Errorf("invalid coordinates: %f,%f", lat, lng)
	}

	zones, err := s.zoneRepo.ListPublished(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list zones: %w", err)
	}

	point := utils.Point{Lat: lat, Lng: lng}
	for _, zone := range zones {
		if utils.IsPointInPolygon(point, zonePolygon(zone)) {
			return zone.ID, nil
		}
	}

	return "", nil
}

func zonePolygon(zone *models.Zone) utils.Polygon {
	polygon := make(utils.Polygon, len(zone.Area))
	for i, vertex := range zone.Area {
		polygon[i] = utils.Point{Lat: vertex.Latitude, Lng: vertex.Longitude}
	}
	return polygon
}
