package providers

import (
	"context"
	"math"

	"lightnav/internal/model"
)

// LocalMatrix estimates a matrix from straight-line distances at a fixed
// average speed. It backs development and tests when no routing upstream is
// configured, and degrades planning gracefully when the real provider is
// down.
type LocalMatrix struct {
	SpeedKPH float64
}

func NewLocalMatrix() *LocalMatrix { return &LocalMatrix{SpeedKPH: 50} }

func (c *LocalMatrix) Matrix(_ context.Context, coords []model.GeoPoint) (*model.Matrix, error) {
	n := len(coords)
	speed := c.SpeedKPH
	if speed <= 0 {
		speed = 50
	}
	durations := make([][]float64, n)
	distances := make([][]float64, n)
	for i := 0; i < n; i++ {
		durations[i] = make([]float64, n)
		distances[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			km := HaversineKM(coords[i], coords[j])
			distances[i][j] = km
			durations[i][j] = km / speed * 3600
		}
	}
	return &model.Matrix{Durations: durations, Distances: distances}, nil
}

// HaversineKM returns the great-circle distance between two points in km.
func HaversineKM(a, b model.GeoPoint) float64 {
	const r = 6371.0
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return r * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}
