package lights

import (
	"time"

	"lightnav/internal/model"
)

// Expected delay in seconds by where in the cycle an arrival lands. Arriving
// just after the light turned red costs the most; arriving near the end of
// red costs little.
const (
	delayYellow   = 5
	delayRedStart = 30
	delayRedMid   = 20
	delayRedEnd   = 5
)

// EstimatePhase computes the active phase and expected delay for an arrival
// at the given instant. Pure function of the light's timing and the
// timestamp: position in cycle is (unix seconds + offset) mod cycle, so the
// estimate is periodic in CycleTime.
func EstimatePhase(l model.Light, at time.Time) model.PhaseEstimate {
	pos := int((at.Unix() + int64(l.Offset)) % int64(l.CycleTime))
	switch {
	case pos < l.GreenTime:
		return model.PhaseEstimate{Phase: model.PhaseGreen, DelaySec: 0}
	case pos < l.GreenTime+l.YellowTime:
		return model.PhaseEstimate{Phase: model.PhaseYellow, DelaySec: delayYellow}
	default:
		redPos := pos - l.GreenTime - l.YellowTime
		frac := float64(redPos) / float64(l.RedTime())
		delay := delayRedMid
		if frac < 0.25 {
			delay = delayRedStart
		} else if frac >= 0.75 {
			delay = delayRedEnd
		}
		return model.PhaseEstimate{Phase: model.PhaseRed, DelaySec: delay}
	}
}
