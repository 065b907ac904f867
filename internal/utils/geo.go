package utils

import (
	"fmt"
	"math"
)

type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Polygon []Point

func (p Point) String() string {
	return fmt.Sprintf("%.6f,%.6f", p.Lat, p.Lng)
}

func IsValidCoordinates(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// IsPointInPolygon tests polygon membership with a standard ray cast over the
// ordered vertex list. The polygon is closed implicitly from the last vertex
// back to the first; winding order does not matter.
func IsPointInPolygon(point Point, polygon Polygon) bool {
	if len(polygon) < 3 {
		return false
	}

	x, y := point.Lng, point.Lat
	inside := false
	var xinters float64

	p1x, p1y := polygon[0].Lng, polygon[0].Lat
	for i := 1; i <= len(polygon); i++ {
		p2x, p2y := polygon[i%len(polygon)].Lng, polygon[i%len(polygon)].Lat

		if y > math.Min(p1y, p2y) {
			if y <= math.Max(p1y, p2y) {
				if x <= math.Max(p1x, p2x) {
					if p1y != p2y {
						xinters = (y-p1y)/(p2y-p1y)*(p2x-p1x) + p1x
					} else {
						xinters = p1x
					}
					if p1x == p2x || x <= xinters {
						inside = !inside
					}
				}
			}
		}
		p1x, p1y = p2x, p2y
	}

	return inside
}

func IsPointInCircle(point Point, center Point, radiusKM float64) bool {
	return CalculateDistance(center.Lat, center.Lng, point.Lat, point.Lng) <= radiusKM
}
