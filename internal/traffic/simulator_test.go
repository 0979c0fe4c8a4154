package traffic

import (
	"context"
	"testing"
	"time"

	"lightnav/internal/model"
	"lightnav/internal/providers"
)

type fixedDaylight struct{ level float64 }

func (d fixedDaylight) Conditions(lat, lon float64, at time.Time) model.DaylightInfo {
	return model.DaylightInfo{LightLevel: d.level}
}

type fixedRisk struct{ info model.RiskInfo }

func (r fixedRisk) Risk(ctx context.Context, lat, lon float64, at time.Time) model.RiskInfo {
	return r.info
}

var segStart = model.GeoPoint{Lon: 16.90, Lat: 52.40}
var segEnd = model.GeoPoint{Lon: 16.95, Lat: 52.42}

func TestFallbackSchedule(t *testing.T) {
	s := NewSimulator(nil, nil)
	cases := []struct {
		hour  int
		level int
	}{
		{8, LevelModerate},
		{17, LevelModerate},
		{12, LevelLight},
		{2, LevelLight},
		{22, LevelLight},
	}
	for _, c := range cases {
		at := time.Date(2024, 6, 12, c.hour, 0, 0, 0, time.UTC)
		if got := s.Level(context.Background(), segStart, segEnd, at); got != c.level {
			t.Fatalf("hour %d: level %d, want %d", c.hour, got, c.level)
		}
	}
}

func TestLevelIsDeterministicForTimestamp(t *testing.T) {
	s := NewSimulator(fixedDaylight{level: 8}, fixedRisk{})
	at := time.Date(2024, 6, 12, 17, 30, 0, 0, time.UTC)
	a := s.Level(context.Background(), segStart, segEnd, at)
	b := s.Level(context.Background(), segStart, segEnd, at)
	if a != b {
		t.Fatalf("same timestamp gave levels %d and %d", a, b)
	}
}

func TestLevelStaysInRange(t *testing.T) {
	s := NewSimulator(fixedDaylight{level: 1}, fixedRisk{info: model.RiskInfo{
		VisibilityReduced: true,
		Factors:           model.RiskFactors{RoadComplexity: 1.8},
	}})
	for hour := 0; hour < 24; hour++ {
		at := time.Date(2024, 6, 12, hour, 0, 0, 0, time.UTC)
		lvl := s.Level(context.Background(), segStart, segEnd, at)
		if lvl < LevelFree || lvl > LevelHeavy {
			t.Fatalf("hour %d: level %d out of range", hour, lvl)
		}
	}
}

func TestBaseProbabilityBuckets(t *testing.T) {
	cases := []struct {
		hour int
		want float64
	}{
		{7, 0.7}, {9, 0.7},
		{16, 0.8}, {19, 0.8},
		{10, 0.3}, {15, 0.3},
		{20, 0.2}, {23, 0.2},
		{0, 0.1}, {5, 0.1},
	}
	for _, c := range cases {
		if got := baseProbability(c.hour); got != c.want {
			t.Fatalf("hour %d: prob %v, want %v", c.hour, got, c.want)
		}
	}
}

func TestLevelCuts(t *testing.T) {
	cases := []struct {
		p    float64
		want int
	}{
		{0.0, LevelFree}, {0.19, LevelFree},
		{0.2, LevelLight}, {0.49, LevelLight},
		{0.5, LevelModerate}, {0.79, LevelModerate},
		{0.8, LevelHeavy}, {1.0, LevelHeavy},
	}
	for _, c := range cases {
		if got := levelForProbability(c.p); got != c.want {
			t.Fatalf("p=%v: level %d, want %d", c.p, got, c.want)
		}
	}
}

func TestColorAndDelayClamp(t *testing.T) {
	if ColorFor(LevelHeavy) != "red" || ColorFor(LevelFree) != "green" {
		t.Fatal("level colors wrong")
	}
	if ColorFor(9) != Colors[LevelLight] {
		t.Fatal("unknown level should clamp to light traffic color")
	}
	if DelayFor(LevelHeavy) != 0.6 || DelayFor(-1) != DelayFactors[LevelLight] {
		t.Fatal("delay factors wrong")
	}
}

var _ providers.Daylight = fixedDaylight{}
var _ providers.AccidentRisk = fixedRisk{}
