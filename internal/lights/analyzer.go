package lights

import (
	"time"

	"lightnav/internal/model"
)

// DefaultAvgSpeedMS is the assumed travel speed when the caller gives none
// (about 40 km/h urban average).
const DefaultAvgSpeedMS = 11.0

// AnalyzeRoute walks the route through every detected light in along-route
// order, carrying a running clock: each light's arrival depends on the time
// spent (or saved) at the previous ones. For every light it compares the
// unadjusted delay against the best speed advisory and accumulates both
// totals. start is the departure instant; no wall clock is read here.
func (s *Service) AnalyzeRoute(route []model.GeoPoint, avgSpeedMS float64, start time.Time) model.LightAnalysis {
	if avgSpeedMS <= 0 {
		avgSpeedMS = DefaultAvgSpeedMS
	}

	detected := s.Detect(route, DefaultRadiusM)
	analysis := model.LightAnalysis{Lights: make([]model.LightReport, 0, len(detected))}

	current := start
	prevDistM := 0.0
	for i, d := range detected {
		distM := d.DistanceAlongRoute * MetersPerDegree
		arrival := current.Add(time.Duration((distM - prevDistM) / avgSpeedMS * float64(time.Second)))
		original := EstimatePhase(d.Light, arrival)

		advisory := AdviseSpeed(d.Light, current, avgSpeedMS, distM-prevDistM)

		optimizedDelay := original.DelaySec
		if advisory.Optimized {
			optimizedDelay = 0
			current = time.Unix(advisory.ArrivalUnix, 0)
		} else {
			current = arrival.Add(time.Duration(original.DelaySec) * time.Second)
		}

		analysis.Lights = append(analysis.Lights, model.LightReport{
			Position:         i + 1,
			DistanceM:        distM,
			Coordinates:      d.Coordinates,
			Class:            d.Class,
			CycleTime:        d.CycleTime,
			EstimatedArrival: arrival.UTC().Format("15:04:05"),
			OriginalDelaySec: original.DelaySec,
			OptimizedDelay:   optimizedDelay,
			Phase:            original.Phase,
			Advisory:         advisory,
		})
		analysis.OriginalDelay += original.DelaySec
		analysis.OptimizedDelay += optimizedDelay
		prevDistM = distM
	}
	analysis.TimeSavedSec = analysis.OriginalDelay - analysis.OptimizedDelay
	return analysis
}
