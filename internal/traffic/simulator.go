// Package traffic estimates congestion levels for route segments without a
// live feed, combining time-of-day patterns with daylight, weather and
// road-complexity signals.
package traffic

import (
	"context"
	"log"
	"math/rand"
	"time"

	"lightnav/internal/model"
	"lightnav/internal/providers"
)

// Congestion levels, low to high. Segment delay factors index into this.
const (
	LevelFree = iota
	LevelLight
	LevelModerate
	LevelHeavy
)

// DelayFactors is the fractional travel-time penalty per congestion level.
var DelayFactors = [4]float64{0, 0.15, 0.3, 0.6}

// Colors maps a congestion level to its display color.
var Colors = [4]string{"green", "yellow", "orange", "red"}

// Simulator derives a congestion level for a segment at a given instant.
// Both collaborators are optional; with neither set the simulator falls back
// to a pure rush-hour schedule.
type Simulator struct {
	Daylight providers.Daylight
	Risk     providers.AccidentRisk
}

func NewSimulator(daylight providers.Daylight, risk providers.AccidentRisk) *Simulator {
	return &Simulator{Daylight: daylight, Risk: risk}
}

// Level returns the congestion level for travel between start and end at the
// given instant. The estimate is probabilistic but reproducible: the jitter
// RNG is seeded from the timestamp, so the same inputs always yield the same
// level.
func (s *Simulator) Level(ctx context.Context, start, end model.GeoPoint, at time.Time) int {
	if s.Daylight == nil && s.Risk == nil {
		return s.fallbackLevel(at)
	}

	midLat := (start.Lat + end.Lat) / 2
	midLon := (start.Lon + end.Lon) / 2

	prob := baseProbability(at.Hour())

	if s.Daylight != nil {
		light := s.Daylight.Conditions(midLat, midLon, at)
		if light.LightLevel < 3 {
			prob -= 0.1
		}
	}
	if s.Risk != nil {
		risk := s.Risk.Risk(ctx, midLat, midLon, at)
		if risk.VisibilityReduced {
			prob += 0.15
		}
		if risk.Factors.RoadComplexity > 1 {
			prob += 0.1
		}
	}

	switch at.Weekday() {
	case time.Saturday, time.Sunday:
		prob *= 0.7
	}

	rng := rand.New(rand.NewSource(at.UnixMilli() % 100000))
	prob += rng.Float64()*0.3 - 0.15

	if prob < 0 {
		prob = 0
	}
	if prob > 1 {
		prob = 1
	}
	return levelForProbability(prob)
}

// fallbackLevel is the schedule-only estimate used when no collaborators are
// configured.
func (s *Simulator) fallbackLevel(at time.Time) int {
	h := at.Hour()
	if (h >= 7 && h <= 9) || (h >= 16 && h <= 19) {
		return LevelModerate
	}
	return LevelLight
}

// baseProbability is the congestion prior for an hour of day. Morning and
// evening rush dominate, midday stays moderate, nights are quiet.
func baseProbability(hour int) float64 {
	switch {
	case hour >= 7 && hour <= 9:
		return 0.7
	case hour >= 16 && hour <= 19:
		return 0.8
	case hour >= 10 && hour <= 15:
		return 0.3
	case hour >= 20 && hour <= 23:
		return 0.2
	default:
		return 0.1
	}
}

func levelForProbability(p float64) int {
	switch {
	case p < 0.2:
		return LevelFree
	case p < 0.5:
		return LevelLight
	case p < 0.8:
		return LevelModerate
	default:
		return LevelHeavy
	}
}

// ColorFor returns the display color for a level, clamping unknown values.
func ColorFor(level int) string {
	if level < 0 || level >= len(Colors) {
		log.Printf("traffic: unknown level %d", level)
		return Colors[LevelLight]
	}
	return Colors[level]
}

// DelayFor returns the delay fraction for a level, clamping unknown values.
func DelayFor(level int) float64 {
	if level < 0 || level >= len(DelayFactors) {
		return DelayFactors[LevelLight]
	}
	return DelayFactors[level]
}
