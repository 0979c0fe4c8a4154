// Package lights simulates signalized intersections for a geographic region
// and derives phase timing, approach-speed advice and whole-route delay
// analysis from them.
package lights

import (
	"hash/fnv"
	"log"
	"math"
	"math/rand"
	"strconv"
	"sync/atomic"

	"lightnav/internal/model"
)

// Cycle time ranges in seconds per intersection class. Bigger intersections
// run longer cycles.
var cycleRanges = map[string][2]int{
	model.ClassSmall:   {45, 60},
	model.ClassMedium:  {60, 90},
	model.ClassLarge:   {90, 120},
	model.ClassComplex: {120, 180},
}

const yellowSec = 3

// Key identifies an intersection by its coordinates rounded to 5 decimals.
type Key struct {
	Lon float64
	Lat float64
}

func keyFor(lon, lat float64) Key {
	return Key{Lon: round5(lon), Lat: round5(lat)}
}

func round5(v float64) float64 { return math.Round(v*1e5) / 1e5 }

// Map is an immutable snapshot of the simulated intersections for one
// region. Initialization replaces the whole snapshot; nothing mutates a
// published Map.
type Map struct {
	Min    model.GeoPoint
	Max    model.GeoPoint
	Lights map[Key]model.Light
}

// Service owns the process-wide intersection snapshot. Initialize publishes
// a fresh Map atomically, so concurrent readers either see the old complete
// snapshot or the new one, never a partial write.
type Service struct {
	cur atomic.Pointer[Map]
}

func NewService() *Service { return &Service{} }

// Snapshot returns the current map, or nil if none has been initialized.
func (s *Service) Snapshot() *Map { return s.cur.Load() }

// Initialize generates the light map for a bounding region and publishes it,
// replacing any previous snapshot entirely.
func (s *Service) Initialize(min, max model.GeoPoint) *Map {
	m := Generate(min, max)
	s.cur.Store(m)
	log.Printf("lights: initialized %d intersections for region [%.4f,%.4f]..[%.4f,%.4f]",
		len(m.Lights), min.Lon, min.Lat, max.Lon, max.Lat)
	return m
}

// Generate builds the simulated intersection set for a bounding box. The
// generator is seeded from the box corners, so the same box always yields the
// same layout — a reproducibility requirement, since detection results must
// be stable across calls for one region.
func Generate(min, max model.GeoPoint) *Map {
	rng := rand.New(rand.NewSource(regionSeed(min, max)))

	centerLon := (min.Lon + max.Lon) / 2
	centerLat := (min.Lat + max.Lat) / 2
	maxDist := math.Hypot(max.Lon-centerLon, max.Lat-centerLat)

	area := (max.Lon - min.Lon) * (max.Lat - min.Lat)
	count := int(area * 50000)
	if count < 10 {
		count = 10
	}
	if count > 100 {
		count = 100
	}

	out := &Map{Min: min, Max: max, Lights: make(map[Key]model.Light, count)}
	for i := 0; i < count; i++ {
		// Positions cluster toward the box center: a small distance factor
		// keeps the sample near the midpoint.
		df := rng.Float64()
		lon := min.Lon + (max.Lon-min.Lon)*(0.5+(rng.Float64()-0.5)*df)
		lat := min.Lat + (max.Lat-min.Lat)*(0.5+(rng.Float64()-0.5)*df)

		ratio := 0.0
		if maxDist > 0 {
			ratio = math.Hypot(lon-centerLon, lat-centerLat) / maxDist
		}
		class := classForRatio(ratio)
		r := cycleRanges[class]
		cycle := r[0] + rng.Intn(r[1]-r[0]+1)
		offset := rng.Intn(cycle)

		out.Lights[keyFor(lon, lat)] = model.Light{
			Coordinates: model.GeoPoint{Lon: lon, Lat: lat},
			Class:       class,
			CycleTime:   cycle,
			Offset:      offset,
			GreenTime:   int(0.4 * float64(cycle)),
			YellowTime:  yellowSec,
		}
	}
	return out
}

// classForRatio maps normalized distance from the region center to an
// intersection class: closer to center means larger, more complex junctions.
func classForRatio(ratio float64) string {
	switch {
	case ratio < 0.2:
		return model.ClassComplex
	case ratio < 0.4:
		return model.ClassLarge
	case ratio < 0.7:
		return model.ClassMedium
	default:
		return model.ClassSmall
	}
}

// regionSeed hashes the box corners to a deterministic RNG seed.
func regionSeed(min, max model.GeoPoint) int64 {
	h := fnv.New64a()
	for _, v := range []float64{min.Lon, min.Lat, max.Lon, max.Lat} {
		_, _ = h.Write([]byte(strconv.FormatFloat(round5(v), 'f', 5, 64)))
	}
	return int64(h.Sum64() & math.MaxInt64)
}
