package lights

import (
	"time"

	"lightnav/internal/model"
)

// Candidate speed bounds for the advisory search, in m/s. The scan stays
// within 80-120% of the current speed and inside [5, 30] (18-108 km/h).
const (
	minAdvisorySpeed = 5.0
	maxAdvisorySpeed = 30.0
	speedStep        = 0.5
)

// AdviseSpeed searches approach speeds near the current one for the arrival
// with the smallest expected delay at the light. A non-positive speed is a
// caller error and yields StatusInvalidInput. When the unmodified speed
// already arrives on green there is nothing to optimize. Zero time saved
// with no better candidate in range is an expected outcome, not an error.
func AdviseSpeed(l model.Light, now time.Time, speedMS, distanceM float64) model.SpeedAdvisory {
	if speedMS <= 0 {
		return model.SpeedAdvisory{Status: model.StatusInvalidInput}
	}

	baseArrival := arrivalAt(now, distanceM, speedMS)
	base := EstimatePhase(l, baseArrival)
	if base.Phase == model.PhaseGreen {
		return model.SpeedAdvisory{
			Status:         model.StatusOK,
			Optimized:      false,
			SuggestedSpeed: speedMS,
			SuggestedKMH:   speedMS * 3.6,
			CurrentKMH:     speedMS * 3.6,
			Phase:          base.Phase,
			TimeSavedSec:   0,
			ArrivalUnix:    baseArrival.Unix(),
		}
	}

	minSpeed := speedMS * 0.8
	if minSpeed < minAdvisorySpeed {
		minSpeed = minAdvisorySpeed
	}
	maxSpeed := speedMS * 1.2
	if maxSpeed > maxAdvisorySpeed {
		maxSpeed = maxAdvisorySpeed
	}

	bestSpeed := speedMS
	bestDelay := base.DelaySec
	bestPhase := base.Phase
	bestArrival := baseArrival
	for i := 0; i <= int((maxSpeed-minSpeed)/speedStep); i++ {
		candidate := minSpeed + speedStep*float64(i)
		arrival := arrivalAt(now, distanceM, candidate)
		est := EstimatePhase(l, arrival)
		if est.DelaySec < bestDelay {
			bestDelay = est.DelaySec
			bestSpeed = candidate
			bestPhase = est.Phase
			bestArrival = arrival
		}
		if est.Phase == model.PhaseGreen {
			break
		}
	}

	return model.SpeedAdvisory{
		Status:         model.StatusOK,
		Optimized:      bestSpeed != speedMS,
		SuggestedSpeed: bestSpeed,
		SuggestedKMH:   bestSpeed * 3.6,
		CurrentKMH:     speedMS * 3.6,
		Phase:          bestPhase,
		TimeSavedSec:   base.DelaySec - bestDelay,
		ArrivalUnix:    bestArrival.Unix(),
	}
}

func arrivalAt(now time.Time, distanceM, speedMS float64) time.Time {
	return now.Add(time.Duration(distanceM / speedMS * float64(time.Second)))
}
