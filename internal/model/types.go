package model

// Core domain types shared across the optimizer, traffic simulation and
// traffic-light analysis packages.

// GeoPoint is a waypoint or route geometry sample in decimal degrees.
type GeoPoint struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Matrix holds pairwise travel durations (seconds) and distances (km)
// between N waypoints. It is owned per optimization call and may be
// asymmetric; Durations[i][j] is travel from waypoint i to waypoint j.
type Matrix struct {
	Durations [][]float64 `json:"durations"`
	Distances [][]float64 `json:"distances"`
}

// ResultStatus discriminates optimizer and advisory outcomes so callers can
// tell retryable upstream conditions from caller errors.
type ResultStatus string

const (
	StatusOK           ResultStatus = "ok"
	StatusUnavailable  ResultStatus = "unavailable"
	StatusInvalidInput ResultStatus = "invalid_input"
)

// Intersection classes, ordered small to complex. Class drives the cycle
// time range during map generation.
const (
	ClassSmall   = "small_intersection"
	ClassMedium  = "medium_intersection"
	ClassLarge   = "large_intersection"
	ClassComplex = "complex_intersection"
)

// Light is a simulated signalized intersection. Phase timing is fully
// described by CycleTime, Offset, GreenTime and YellowTime; red time is the
// remainder of the cycle.
type Light struct {
	Coordinates GeoPoint `json:"coordinates"`
	Class       string   `json:"type"`
	CycleTime   int      `json:"cycleTime"`
	Offset      int      `json:"offset"`
	GreenTime   int      `json:"greenTime"`
	YellowTime  int      `json:"yellowTime"`
}

// RedTime returns the red portion of the cycle in seconds.
func (l Light) RedTime() int { return l.CycleTime - l.GreenTime - l.YellowTime }

// DetectedLight is a Light found near a route, annotated with the cumulative
// planar distance (degrees) from the route start and the index of the route
// point that brought it into radius.
type DetectedLight struct {
	Light
	DistanceAlongRoute float64 `json:"distanceAlongRoute"`
	RoutePointIndex    int     `json:"routePointIndex"`
}

// Phase labels for a signal at an instant.
const (
	PhaseGreen  = "green"
	PhaseYellow = "yellow"
	PhaseRed    = "red"
)

// PhaseEstimate is the derived phase and expected delay at an arrival time.
type PhaseEstimate struct {
	Phase    string `json:"phase"`
	DelaySec int    `json:"delaySec"`
}

// SpeedAdvisory is the outcome of the approach-speed search for one light.
type SpeedAdvisory struct {
	Status         ResultStatus `json:"status"`
	Optimized      bool         `json:"optimized"`
	SuggestedSpeed float64      `json:"suggestedSpeed"` // m/s
	SuggestedKMH   float64      `json:"suggestedSpeedKmh"`
	CurrentKMH     float64      `json:"currentSpeedKmh"`
	Phase          string       `json:"phase,omitempty"`
	TimeSavedSec   int          `json:"timeSavedSec"`
	ArrivalUnix    int64        `json:"arrivalUnix,omitempty"`
}

// LightReport is the per-light row of a route analysis.
type LightReport struct {
	Position         int           `json:"position"`
	DistanceM        float64       `json:"distanceM"`
	Coordinates      GeoPoint      `json:"coordinates"`
	Class            string        `json:"type"`
	CycleTime        int           `json:"cycleTime"`
	EstimatedArrival string        `json:"estimatedArrival"`
	OriginalDelaySec int           `json:"originalDelaySec"`
	OptimizedDelay   int           `json:"optimizedDelaySec"`
	Phase            string        `json:"phase"`
	Advisory         SpeedAdvisory `json:"advisory"`
}

// LightAnalysis aggregates a full route walk over its detected lights.
type LightAnalysis struct {
	Lights         []LightReport `json:"trafficLights"`
	OriginalDelay  int           `json:"totalOriginalDelaySec"`
	OptimizedDelay int           `json:"totalOptimizedDelaySec"`
	TimeSavedSec   int           `json:"totalTimeSavedSec"`
}

// DaylightInfo is the daylight collaborator's output. LightLevel runs 0-10
// where 0 is pitch dark and 10 full daylight.
type DaylightInfo struct {
	Status     string  `json:"status"`
	LightLevel float64 `json:"lightLevel"`
	Dawn       string  `json:"dawn"`
	Sunrise    string  `json:"sunrise"`
	Noon       string  `json:"noon"`
	Sunset     string  `json:"sunset"`
	Dusk       string  `json:"dusk"`
}

// RiskFactors is the accident-risk factor breakdown.
type RiskFactors struct {
	LowLight       float64 `json:"lowLightRisk"`
	Weather        float64 `json:"weatherRisk"`
	TimeOfDay      float64 `json:"timeOfDayRisk"`
	RoadComplexity float64 `json:"roadComplexityRisk"`
}

// RiskInfo is the accident-risk collaborator's output, scaled 0-10.
type RiskInfo struct {
	Score             float64     `json:"riskScore"`
	Level             string      `json:"riskLevel"`
	Factors           RiskFactors `json:"factors"`
	LightConditions   string      `json:"lightConditions"`
	LightLevel        float64     `json:"lightLevel"`
	VisibilityReduced bool        `json:"visibilityReduced"`
}

// WeatherInfo is the weather collaborator's output.
type WeatherInfo struct {
	Condition         string  `json:"condition"`
	Description       string  `json:"description,omitempty"`
	TempC             float64 `json:"tempC,omitempty"`
	VisibilityReduced bool    `json:"visibilityReduced"`
}

// Segment is one leg of a planned route between consecutive waypoints.
type Segment struct {
	StartIdx        int           `json:"startIdx"`
	EndIdx          int           `json:"endIdx"`
	DistanceKM      float64       `json:"distanceKm"`
	BaseDurationSec float64       `json:"baseDurationSec"`
	TrafficDelaySec float64       `json:"trafficDelaySec"`
	DurationSec     float64       `json:"durationSec"`
	TrafficLevel    int           `json:"trafficLevel"`
	TrafficColor    string        `json:"trafficColor"`
	Geometry        []GeoPoint    `json:"geometry"`
	Lighting        *DaylightInfo `json:"lighting,omitempty"`
	Risk            *RiskInfo     `json:"accidentRisk,omitempty"`
}

// RoutePlan is the full planning output persisted by the store.
type RoutePlan struct {
	ID               string         `json:"id"`
	Waypoints        []GeoPoint     `json:"waypoints"`
	Order            []int          `json:"order"`
	Strategy         string         `json:"strategy"`
	DurationText     string         `json:"totalDuration"`
	DistanceText     string         `json:"totalDistance"`
	DurationSec      float64        `json:"totalDurationSec"`
	BaseDurationSec  float64        `json:"baseDurationSec"`
	TrafficDelaySec  float64        `json:"trafficDelaySec"`
	TrafficDelayText string         `json:"trafficDelayText"`
	Segments         []Segment      `json:"segments"`
	LightAnalysis    *LightAnalysis `json:"trafficLightAnalysis,omitempty"`
	CreatedUnix      int64          `json:"timestamp"`
}

// RefreshCheck reports whether a stored plan should be replaced because
// traffic conditions moved past the configured threshold.
type RefreshCheck struct {
	NeedsUpdate      bool       `json:"needsUpdate"`
	Reason           string     `json:"reason"`
	MaxChangePercent float64    `json:"maxChangePercent,omitempty"`
	ChangedSegment   int        `json:"changedSegment"`
	NewPlan          *RoutePlan `json:"newPlan,omitempty"`
}

// OptimizeRequest is the API input for route planning.
type OptimizeRequest struct {
	Waypoints      []GeoPoint `json:"waypoints"`
	DepartAt       string     `json:"departAt,omitempty"` // RFC3339; defaults to now
	AvgSpeedMS     float64    `json:"avgSpeedMs,omitempty"`
	IncludeTraffic *bool      `json:"includeTraffic,omitempty"`
	AnalyzeLights  *bool      `json:"analyzeLights,omitempty"`
}
