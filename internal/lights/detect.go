package lights

import (
	"math"
	"sort"

	"lightnav/internal/model"
)

const (
	// DefaultRadiusM is the default light search radius around the route.
	DefaultRadiusM = 30.0
	// degPerMeter approximates degrees per meter (1 degree ~ 111 km).
	degPerMeter = 0.000009
	// regionBufferDeg pads a route's bounding box when the map has to be
	// initialized lazily (~1 km).
	regionBufferDeg = 0.01
	// MetersPerDegree converts planar degree distances to meters.
	MetersPerDegree = 111000.0
)

// Detect finds the mapped intersections within radiusM of any route point,
// annotated with cumulative along-route distance and ordered by it. Each
// intersection is reported at most once per route, attributed to the first
// route point that brings it into radius.
//
// If no map has been initialized yet, one is generated from the route's own
// bounding box plus a buffer. Callers that care about the region should
// Initialize explicitly first.
func (s *Service) Detect(route []model.GeoPoint, radiusM float64) []model.DetectedLight {
	if len(route) == 0 {
		return nil
	}
	if radiusM <= 0 {
		radiusM = DefaultRadiusM
	}
	m := s.Snapshot()
	if m == nil {
		min, max := bounds(route)
		min.Lon -= regionBufferDeg
		min.Lat -= regionBufferDeg
		max.Lon += regionBufferDeg
		max.Lat += regionBufferDeg
		m = s.Initialize(min, max)
	}

	radiusDeg := radiusM * degPerMeter
	along := cumulativeDistances(route)

	found := []model.DetectedLight{}
	consumed := map[Key]bool{}
	for i, p := range route {
		for key, light := range m.Lights {
			if consumed[key] {
				continue
			}
			// cheap bounding-box prefilter before the exact check
			if math.Abs(p.Lon-key.Lon) > radiusDeg || math.Abs(p.Lat-key.Lat) > radiusDeg {
				continue
			}
			if math.Hypot(p.Lon-key.Lon, p.Lat-key.Lat) <= radiusDeg {
				found = append(found, model.DetectedLight{
					Light:              light,
					DistanceAlongRoute: along[i],
					RoutePointIndex:    i,
				})
				consumed[key] = true
			}
		}
	}
	sort.SliceStable(found, func(a, b int) bool {
		if found[a].DistanceAlongRoute != found[b].DistanceAlongRoute {
			return found[a].DistanceAlongRoute < found[b].DistanceAlongRoute
		}
		// ties: fixed order so results are stable across map iterations
		if found[a].Coordinates.Lon != found[b].Coordinates.Lon {
			return found[a].Coordinates.Lon < found[b].Coordinates.Lon
		}
		return found[a].Coordinates.Lat < found[b].Coordinates.Lat
	})
	return found
}

// cumulativeDistances returns the planar distance in degrees from the route
// start to each route point.
func cumulativeDistances(route []model.GeoPoint) []float64 {
	out := make([]float64, len(route))
	total := 0.0
	for i := 1; i < len(route); i++ {
		total += math.Hypot(route[i].Lon-route[i-1].Lon, route[i].Lat-route[i-1].Lat)
		out[i] = total
	}
	return out
}

func bounds(route []model.GeoPoint) (min, max model.GeoPoint) {
	min, max = route[0], route[0]
	for _, p := range route[1:] {
		if p.Lon < min.Lon {
			min.Lon = p.Lon
		}
		if p.Lon > max.Lon {
			max.Lon = p.Lon
		}
		if p.Lat < min.Lat {
			min.Lat = p.Lat
		}
		if p.Lat > max.Lat {
			max.Lat = p.Lat
		}
	}
	return min, max
}
