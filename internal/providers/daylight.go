package providers

import (
	"time"

	"lightnav/internal/model"
)

// HourlyDaylight is a coarse hour-of-day daylight model. It is a heuristic
// placeholder, not an astronomical computation: consumers only rely on the
// 0-10 light level and the status label.
type HourlyDaylight struct{}

func (HourlyDaylight) Conditions(_, _ float64, at time.Time) model.DaylightInfo {
	at = at.UTC()
	var level float64
	var status string
	switch h := at.Hour(); {
	case h >= 6 && h < 8:
		level, status = 4, "dawn"
	case h >= 8 && h < 12:
		level, status = 8, "morning"
	case h >= 12 && h < 17:
		level, status = 9, "afternoon"
	case h >= 17 && h < 19:
		level, status = 4, "dusk"
	default:
		level, status = 1, "night"
	}
	info := model.DaylightInfo{Status: status, LightLevel: level, Noon: "12:00"}
	// Approximate sun events by season (northern hemisphere).
	switch m := at.Month(); {
	case m >= time.March && m <= time.May:
		info.Dawn, info.Sunrise, info.Sunset, info.Dusk = "05:30", "06:00", "19:00", "19:30"
	case m >= time.June && m <= time.August:
		info.Dawn, info.Sunrise, info.Sunset, info.Dusk = "04:30", "05:00", "20:00", "20:30"
	case m >= time.September && m <= time.November:
		info.Dawn, info.Sunrise, info.Sunset, info.Dusk = "06:00", "06:30", "18:00", "18:30"
	default:
		info.Dawn, info.Sunrise, info.Sunset, info.Dusk = "06:30", "07:00", "17:00", "17:30"
	}
	return info
}
