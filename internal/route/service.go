// Package route composes optimizer output, simulated traffic and light
// analysis into full route plans, and decides when a stored plan has gone
// stale.
package route

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"lightnav/internal/lights"
	"lightnav/internal/model"
	"lightnav/internal/opt"
	"lightnav/internal/providers"
	"lightnav/internal/traffic"
)

const (
	// refreshMaxAge is how old a plan may get before a refresh is forced
	// regardless of traffic changes.
	refreshMaxAge = 10 * time.Minute
	// refreshThresholdPercent triggers a refresh when any segment duration
	// moved at least this much.
	refreshThresholdPercent = 15.0

	// geometrySampleDeg is the target spacing of interpolated geometry
	// points, roughly 50m. Light detection needs samples denser than the
	// waypoints themselves.
	geometrySampleDeg = 0.00045
	// maxSamplesPerSegment bounds geometry size for very long legs.
	maxSamplesPerSegment = 64
)

// Planner builds route plans. Matrix is required; the remaining
// collaborators are optional and their annotations are skipped when absent.
type Planner struct {
	Matrix   providers.MatrixProvider
	Traffic  *traffic.Simulator
	Lights   *lights.Service
	Daylight providers.Daylight
	Risk     providers.AccidentRisk
}

// BuildOptions carries the per-request knobs for plan construction.
type BuildOptions struct {
	IncludeTraffic bool
	AnalyzeLights  bool
	AvgSpeedMS     float64
}

// BuildPlan optimizes the waypoint order and assembles the per-segment
// breakdown for departure at the given instant. A missing or failing matrix
// provider surfaces as providers.ErrUnavailable; callers map that to their
// own unavailable result rather than a hard failure.
func (p *Planner) BuildPlan(ctx context.Context, waypoints []model.GeoPoint, at time.Time, opts BuildOptions) (*model.RoutePlan, error) {
	mx, err := p.Matrix.Matrix(ctx, waypoints)
	if err != nil {
		return nil, err
	}
	res := opt.OptimizeOrder(waypoints, mx, at)
	if res.Status != model.StatusOK {
		return nil, providers.ErrUnavailable
	}

	plan := &model.RoutePlan{
		Waypoints:   res.Waypoints,
		Order:       res.Order,
		Strategy:    res.Strategy,
		CreatedUnix: at.Unix(),
	}

	for i := 0; i+1 < len(res.Order); i++ {
		from, to := res.Order[i], res.Order[i+1]
		start, end := waypoints[from], waypoints[to]

		base := mx.Durations[from][to]
		distKM := mx.Distances[from][to]

		level := 0
		if p.Traffic != nil {
			level = p.Traffic.Level(ctx, start, end, at)
		}
		delay := 0.0
		if opts.IncludeTraffic && level > 0 {
			delay = base * traffic.DelayFor(level)
		}

		color := traffic.ColorFor(level)
		if base == 0 {
			// no usable duration for this leg, mark it neutral
			color = "gray"
		}

		seg := model.Segment{
			StartIdx:        i,
			EndIdx:          i + 1,
			DistanceKM:      distKM,
			BaseDurationSec: base,
			TrafficDelaySec: delay,
			DurationSec:     base + delay,
			TrafficLevel:    level,
			TrafficColor:    color,
			Geometry:        interpolate(start, end),
		}

		midLat := (start.Lat + end.Lat) / 2
		midLon := (start.Lon + end.Lon) / 2
		if p.Daylight != nil {
			info := p.Daylight.Conditions(midLat, midLon, at)
			seg.Lighting = &info
		}
		if p.Risk != nil {
			info := p.Risk.Risk(ctx, midLat, midLon, at)
			seg.Risk = &info
		}

		plan.Segments = append(plan.Segments, seg)
		plan.BaseDurationSec += base
		plan.TrafficDelaySec += delay
		plan.DurationSec += base + delay
	}

	plan.DurationText = opt.FormatDuration(plan.DurationSec)
	plan.DistanceText = res.DistanceText
	plan.TrafficDelayText = delayText(plan.TrafficDelaySec)

	if opts.AnalyzeLights && p.Lights != nil {
		geometry := concatGeometry(plan.Segments)
		if len(geometry) > 2 {
			min, max := geometryBounds(geometry)
			min.Lon -= 0.01
			min.Lat -= 0.01
			max.Lon += 0.01
			max.Lat += 0.01
			p.Lights.Initialize(min, max)
			analysis := p.Lights.AnalyzeRoute(geometry, opts.AvgSpeedMS, at)
			plan.LightAnalysis = &analysis
			log.Printf("route: detected %d traffic lights on route", len(analysis.Lights))
		}
	}
	return plan, nil
}

// CheckRefresh rebuilds the plan and reports whether the stored one should be
// replaced. Plans past refreshMaxAge always refresh; younger plans refresh
// only when some segment's duration moved past the threshold.
func (p *Planner) CheckRefresh(ctx context.Context, old *model.RoutePlan, at time.Time) (model.RefreshCheck, error) {
	fresh, err := p.BuildPlan(ctx, old.Waypoints, at, BuildOptions{IncludeTraffic: true})
	if err != nil {
		return model.RefreshCheck{}, err
	}

	if at.Unix()-old.CreatedUnix > int64(refreshMaxAge.Seconds()) {
		return model.RefreshCheck{
			NeedsUpdate:    true,
			Reason:         "route information is outdated",
			ChangedSegment: -1,
			NewPlan:        fresh,
		}, nil
	}

	maxChange := 0.0
	changedIdx := -1
	for i := 0; i < len(old.Segments) && i < len(fresh.Segments); i++ {
		oldDur := old.Segments[i].DurationSec
		if oldDur == 0 {
			continue
		}
		change := math.Abs(fresh.Segments[i].DurationSec-oldDur) / oldDur * 100
		if change > maxChange {
			maxChange = change
			changedIdx = i
		}
	}

	check := model.RefreshCheck{
		MaxChangePercent: math.Round(maxChange*100) / 100,
		ChangedSegment:   changedIdx,
	}
	if maxChange >= refreshThresholdPercent {
		check.NeedsUpdate = true
		check.Reason = "traffic conditions changed significantly"
		check.NewPlan = fresh
	} else {
		check.Reason = "traffic conditions stable"
	}
	return check, nil
}

func delayText(delaySec float64) string {
	minutes := int(delaySec / 60)
	if minutes > 0 {
		return fmt.Sprintf("+%dm due to traffic", minutes)
	}
	return "No delays"
}

// interpolate samples the straight line between two waypoints, endpoints
// included. There is no road geometry here; the samples only exist so light
// detection has points to test.
func interpolate(start, end model.GeoPoint) []model.GeoPoint {
	span := math.Hypot(end.Lon-start.Lon, end.Lat-start.Lat)
	steps := int(span / geometrySampleDeg)
	if steps < 1 {
		steps = 1
	}
	if steps > maxSamplesPerSegment {
		steps = maxSamplesPerSegment
	}
	out := make([]model.GeoPoint, 0, steps+1)
	for i := 0; i <= steps; i++ {
		f := float64(i) / float64(steps)
		out = append(out, model.GeoPoint{
			Lon: start.Lon + (end.Lon-start.Lon)*f,
			Lat: start.Lat + (end.Lat-start.Lat)*f,
		})
	}
	return out
}

func concatGeometry(segments []model.Segment) []model.GeoPoint {
	var out []model.GeoPoint
	for _, s := range segments {
		out = append(out, s.Geometry...)
	}
	return out
}

func geometryBounds(points []model.GeoPoint) (min, max model.GeoPoint) {
	min, max = points[0], points[0]
	for _, p := range points[1:] {
		min.Lon = math.Min(min.Lon, p.Lon)
		min.Lat = math.Min(min.Lat, p.Lat)
		max.Lon = math.Max(max.Lon, p.Lon)
		max.Lat = math.Max(max.Lat, p.Lat)
	}
	return min, max
}
