package providers

import (
	"context"
	"errors"
	"time"

	"lightnav/internal/model"
)

// ErrUnavailable signals that an upstream collaborator is not configured or
// is failing. Callers recover locally with a sentinel result instead of
// propagating a hard failure.
var ErrUnavailable = errors.New("provider unavailable")

// MatrixProvider supplies the NxN travel-time and travel-distance matrix for
// a set of waypoints.
type MatrixProvider interface {
	Matrix(ctx context.Context, coords []model.GeoPoint) (*model.Matrix, error)
}

// Daylight estimates ambient light conditions for a location and time.
// Implementations never hard-fail; they return defaults instead.
type Daylight interface {
	Conditions(lat, lon float64, at time.Time) model.DaylightInfo
}

// Weather reports current conditions for a location.
type Weather interface {
	Current(ctx context.Context, lat, lon float64) (model.WeatherInfo, error)
}

// AccidentRisk scores accident risk for a location and time.
// Implementations never hard-fail; they return defaults instead.
type AccidentRisk interface {
	Risk(ctx context.Context, lat, lon float64, at time.Time) model.RiskInfo
}
