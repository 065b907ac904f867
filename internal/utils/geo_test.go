package utils

import "testing"

func squarePolygon() Polygon {
	return Polygon{
		{Lat: 0, Lng: 0},
		{Lat: 0, Lng: 10},
		{Lat: 10, Lng: 10},
		{Lat: 10, Lng: 0},
	}
}

func TestIsPointInPolygonInside(t *testing.T) {
	if !IsPointInPolygon(Point{Lat: 5, Lng: 5}, squarePolygon()) {
		t.Fatal("expected center of square to be inside")
	}
}

func TestIsPointInPolygonOutside(t *testing.T) {
	if IsPointInPolygon(Point{Lat: 15, Lng: 5}, squarePolygon()) {
		t.Fatal("expected point north of square to be outside")
	}
	if IsPointInPolygon(Point{Lat: 5, Lng: -1}, squarePolygon()) {
		t.Fatal("expected point west of square to be outside")
	}
}

func TestIsPointInPolygonDegenerate(t *testing.T) {
	// Fewer than three vertices cannot enclose anything.
	line := Polygon{{Lat: 0, Lng: 0}, {Lat: 10, Lng: 10}}
	if IsPointInPolygon(Point{Lat: 5, Lng: 5}, line) {
		t.Fatal("expected degenerate polygon to contain nothing")
	}
	if IsPointInPolygon(Point{Lat: 5, Lng: 5}, Polygon{}) {
		t.Fatal("expected empty polygon to contain nothing")
	}
}

func TestIsPointInPolygonConcave(t *testing.T) {
	// L-shape: the notch at the top right is outside.
	l := Polygon{
		{Lat: 0, Lng: 0},
		{Lat: 0, Lng: 10},
		{Lat: 5, Lng: 10},
		{Lat: 5, Lng: 5},
		{Lat: 10, Lng: 5},
		{Lat: 10, Lng: 0},
	}
	if !IsPointInPolygon(Point{Lat: 7, Lng: 2}, l) {
		t.Fatal("expected point in the vertical arm to be inside")
	}
	if IsPointInPolygon(Point{Lat: 7, Lng: 7}, l) {
		t.Fatal("expected point in the notch to be outside")
	}
}

func TestIsValidCoordinates(t *testing.T) {
	valid := [][2]float64{{0, 0}, {90, 180}, {-90, -180}, {41.0082, 28.9784}}
	for _, c := range valid {
		if !IsValidCoordinates(c[0], c[1]) {
			t.Fatalf("expected %v,%v to be valid", c[0], c[1])
		}
	}

	invalid := [][2]float64{{91, 0}, {-91, 0}, {0, 181}, {0, -181}}
	for _, c := range invalid {
		if IsValidCoordinates(c[0], c[1]) {
			t.Fatalf("expected %v,%v to be invalid", c[0], c[1])
		}
	}
}
