package providers

import (
	"context"
	"math"
	"math/rand"
	"strings"
	"time"

	"lightnav/internal/model"
)

// HeuristicRisk estimates accident risk from lighting, weather and
// time-of-day factors. Road complexity is pseudo-random but seeded from the
// coordinates, so the same location always scores the same; in a real system
// it would come from an accident-hotspot database. Never hard-fails: a
// failing weather collaborator degrades to clear conditions.
type HeuristicRisk struct {
	Daylight Daylight
	Weather  Weather
}

func NewHeuristicRisk(daylight Daylight, weather Weather) *HeuristicRisk {
	return &HeuristicRisk{Daylight: daylight, Weather: weather}
}

func (h *HeuristicRisk) Risk(ctx context.Context, lat, lon float64, at time.Time) model.RiskInfo {
	light := h.Daylight.Conditions(lat, lon, at)

	condition := "clear"
	visibilityReduced := false
	if h.Weather != nil {
		if w, err := h.Weather.Current(ctx, lat, lon); err == nil {
			condition = w.Condition
			visibilityReduced = w.VisibilityReduced
		}
	}

	var f model.RiskFactors
	switch {
	case light.LightLevel < 3:
		f.LowLight = 3.0
	case light.LightLevel < 6:
		f.LowLight = 2.0
	}
	switch {
	case containsAny(condition, "thunderstorm", "snow", "blizzard"):
		f.Weather = 3.0
	case containsAny(condition, "rain", "drizzle", "fog", "mist"):
		f.Weather = 2.0
	case containsAny(condition, "clouds", "cloudy"):
		f.Weather = 0.5
	}
	switch hr := at.UTC().Hour(); {
	case (hr >= 7 && hr <= 9) || (hr >= 16 && hr <= 18):
		f.TimeOfDay = 2.0
	case hr >= 23 || hr <= 4:
		f.TimeOfDay = 2.5 // fatigue and impaired drivers
	default:
		f.TimeOfDay = 1.0
	}
	f.RoadComplexity = roadComplexity(lat, lon)

	total := f.LowLight*1.5 + f.Weather*1.3 + f.TimeOfDay*1.0 + f.RoadComplexity*1.2
	score := math.Min(10, math.Max(0, total*1.1))
	level := "low"
	if score > 7 {
		level = "high"
	} else if score > 4 {
		level = "medium"
	}
	return model.RiskInfo{
		Score:             math.Round(score*10) / 10,
		Level:             level,
		Factors:           f,
		LightConditions:   light.Status,
		LightLevel:        light.LightLevel,
		VisibilityReduced: visibilityReduced,
	}
}

// roadComplexity draws a stable value in [0,2) seeded from the coordinates.
func roadComplexity(lat, lon float64) float64 {
	seed := int64(math.Mod(lat*1000+lon*1000, 100000))
	rng := rand.New(rand.NewSource(seed))
	return rng.Float64() * 2
}

func containsAny(condition string, words ...string) bool {
	c := strings.ToLower(condition)
	for _, w := range words {
		if strings.Contains(c, w) {
			return true
		}
	}
	return false
}
