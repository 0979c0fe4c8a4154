package route

import (
	"context"
	"testing"
	"time"

	"lightnav/internal/model"
	"lightnav/internal/providers"
	"lightnav/internal/traffic"
)

type stubMatrix struct {
	mx  *model.Matrix
	err error
}

func (s stubMatrix) Matrix(ctx context.Context, coords []model.GeoPoint) (*model.Matrix, error) {
	return s.mx, s.err
}

var testWaypoints = []model.GeoPoint{
	{Lon: 16.90, Lat: 52.40},
	{Lon: 16.95, Lat: 52.41},
	{Lon: 16.92, Lat: 52.43},
}

func testMatrix() *model.Matrix {
	return &model.Matrix{
		Durations: [][]float64{
			{0, 300, 500},
			{300, 0, 200},
			{500, 200, 0},
		},
		Distances: [][]float64{
			{0, 3.5, 5.1},
			{3.5, 0, 2.2},
			{5.1, 2.2, 0},
		},
	}
}

// 3 AM on a Wednesday: off-peak, so neither the optimizer's rush adjustment
// nor the fallback traffic schedule inflates anything.
var offPeak = time.Date(2024, 6, 12, 3, 0, 0, 0, time.UTC)

func TestBuildPlanComposesSegments(t *testing.T) {
	p := &Planner{Matrix: stubMatrix{mx: testMatrix()}}
	plan, err := p.BuildPlan(context.Background(), testWaypoints, offPeak, BuildOptions{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if plan.Order[0] != 0 {
		t.Fatalf("order must start at 0: %v", plan.Order)
	}
	if len(plan.Segments) != len(testWaypoints)-1 {
		t.Fatalf("got %d segments, want %d", len(plan.Segments), len(testWaypoints)-1)
	}
	// best order is 0->1->2: 300+200=500s
	if plan.BaseDurationSec != 500 {
		t.Fatalf("base duration %v, want 500", plan.BaseDurationSec)
	}
	if plan.TrafficDelaySec != 0 || plan.TrafficDelayText != "No delays" {
		t.Fatalf("unexpected traffic delay: %v %q", plan.TrafficDelaySec, plan.TrafficDelayText)
	}
	if plan.DurationText != "0h 8m" {
		t.Fatalf("duration text %q", plan.DurationText)
	}
	for i, seg := range plan.Segments {
		if len(seg.Geometry) < 2 {
			t.Fatalf("segment %d: geometry too short", i)
		}
		first := seg.Geometry[0]
		want := testWaypoints[plan.Order[i]]
		if first != want {
			t.Fatalf("segment %d starts at %v, want %v", i, first, want)
		}
	}
}

func TestBuildPlanAppliesTrafficDelay(t *testing.T) {
	p := &Planner{
		Matrix:  stubMatrix{mx: testMatrix()},
		Traffic: traffic.NewSimulator(nil, nil),
	}
	rush := time.Date(2024, 6, 12, 8, 0, 0, 0, time.UTC)
	plan, err := p.BuildPlan(context.Background(), testWaypoints, rush, BuildOptions{IncludeTraffic: true})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	// fallback schedule gives level 2 in rush hour: 30% delay on every leg
	wantDelay := plan.BaseDurationSec * 0.3
	if plan.TrafficDelaySec != wantDelay {
		t.Fatalf("delay %v, want %v", plan.TrafficDelaySec, wantDelay)
	}
	if plan.TrafficDelayText == "No delays" {
		t.Fatal("expected a traffic delay message")
	}
	for _, seg := range plan.Segments {
		if seg.TrafficLevel != traffic.LevelModerate || seg.TrafficColor != "orange" {
			t.Fatalf("segment level %d color %q", seg.TrafficLevel, seg.TrafficColor)
		}
		if seg.DurationSec != seg.BaseDurationSec+seg.TrafficDelaySec {
			t.Fatalf("segment duration %v != %v + %v", seg.DurationSec, seg.BaseDurationSec, seg.TrafficDelaySec)
		}
	}
}

func TestBuildPlanMatrixUnavailable(t *testing.T) {
	p := &Planner{Matrix: stubMatrix{err: providers.ErrUnavailable}}
	if _, err := p.BuildPlan(context.Background(), testWaypoints, offPeak, BuildOptions{}); err != providers.ErrUnavailable {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestBuildPlanAnnotatesMidpoints(t *testing.T) {
	p := &Planner{
		Matrix:   stubMatrix{mx: testMatrix()},
		Daylight: providers.HourlyDaylight{},
		Risk:     providers.NewHeuristicRisk(providers.HourlyDaylight{}, nil),
	}
	plan, err := p.BuildPlan(context.Background(), testWaypoints, offPeak, BuildOptions{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	for i, seg := range plan.Segments {
		if seg.Lighting == nil || seg.Risk == nil {
			t.Fatalf("segment %d missing annotations", i)
		}
		if seg.Lighting.Status != "night" {
			t.Fatalf("segment %d lighting %q, want night at 3am", i, seg.Lighting.Status)
		}
	}
}

func TestCheckRefreshOutdatedPlan(t *testing.T) {
	p := &Planner{Matrix: stubMatrix{mx: testMatrix()}}
	old, err := p.BuildPlan(context.Background(), testWaypoints, offPeak, BuildOptions{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	check, err := p.CheckRefresh(context.Background(), old, offPeak.Add(11*time.Minute))
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if !check.NeedsUpdate || check.NewPlan == nil {
		t.Fatalf("outdated plan should refresh: %+v", check)
	}
}

func TestCheckRefreshStableTraffic(t *testing.T) {
	// no traffic simulator: durations are pure matrix values, so nothing
	// changes between builds within the age window
	p := &Planner{Matrix: stubMatrix{mx: testMatrix()}}
	old, err := p.BuildPlan(context.Background(), testWaypoints, offPeak, BuildOptions{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	check, err := p.CheckRefresh(context.Background(), old, offPeak.Add(time.Minute))
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if check.NeedsUpdate {
		t.Fatalf("stable traffic should not refresh: %+v", check)
	}
	if check.NewPlan != nil {
		t.Fatal("stable check should not carry a new plan")
	}
}

func TestCheckRefreshSegmentChange(t *testing.T) {
	p := &Planner{Matrix: stubMatrix{mx: testMatrix()}}
	old, err := p.BuildPlan(context.Background(), testWaypoints, offPeak, BuildOptions{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	// pretend the first leg used to be much faster
	old.Segments[0].DurationSec /= 2
	check, err := p.CheckRefresh(context.Background(), old, offPeak.Add(time.Minute))
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if !check.NeedsUpdate || check.ChangedSegment != 0 {
		t.Fatalf("expected refresh on segment 0: %+v", check)
	}
	if check.MaxChangePercent < refreshThresholdPercent {
		t.Fatalf("change percent %v below threshold", check.MaxChangePercent)
	}
}
