// Package geo places dispatch positions on the static Stockholm map and
// measures distances between them.
package geo

import (
	"math"

	"github.com/kiranshivaraju/rescueassist/pkg/models"
)

// Bounds is the geographic box covered by a map image.
type Bounds struct {
	North, South, West, East float64
}

// Stockholm is the area shown by the dispatch map.
var Stockholm = Bounds{North: 60.0, South: 59.2, West: 17.5, East: 18.5}

// Point is a position on the map in percent of its height (Top) and width (Left).
type Point struct {
	Top  float64 `json:"top"`
	Left float64 `json:"left"`
}

// Project maps p linearly onto b. Positions outside the box are clamped
// to its edge, so both coordinates are always within [0, 100].
func (b Bounds) Project(p models.Position) Point {
	top := (b.North - p.Lat) / (b.North - b.South) * 100
	left := (p.Lng - b.West) / (b.East - b.West) * 100
	return Point{Top: clamp(top), Left: clamp(left)}
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

const earthRadiusKm = 6371.0

// DistanceKm is the great-circle distance between a and b.
func DistanceKm(a, b models.Position) float64 {
	lat1, lat2 := radians(a.Lat), radians(b.Lat)
	dLat := lat2 - lat1
	dLng := radians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
