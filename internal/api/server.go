package api

import (
	"strings"

	"lightnav/internal/config"
	"lightnav/internal/lights"
	"lightnav/internal/providers"
	"lightnav/internal/route"
	"lightnav/internal/store"
	"lightnav/internal/traffic"
)

type Server struct {
	Store   store.Store
	Planner *route.Planner
	Lights  *lights.Service
	Broker  EventBroker
}

// NewServer wires the service from config. If DatabaseURL is unset, uses the
// in-memory store; if ORSAPIKey is unset, falls back to the Haversine matrix.
func NewServer(cfg config.Config) (*Server, error) {
	var s store.Store
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		s = store.NewMemory()
	} else {
		sp, err := store.NewPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		s = sp
	}

	var mx providers.MatrixProvider
	if cfg.ORSAPIKey != "" {
		mx = providers.NewORSMatrix(cfg.ORSAPIKey)
	} else {
		mx = providers.NewLocalMatrix()
	}

	daylight := providers.HourlyDaylight{}
	var weather providers.Weather
	if cfg.WeatherAPIKey != "" {
		weather = providers.NewOpenWeather(cfg.WeatherAPIKey)
	}
	risk := providers.NewHeuristicRisk(daylight, weather)

	lightSvc := lights.NewService()
	planner := &route.Planner{
		Matrix:   mx,
		Traffic:  traffic.NewSimulator(daylight, risk),
		Lights:   lightSvc,
		Daylight: daylight,
		Risk:     risk,
	}

	// Broker selection
	var broker EventBroker
	if cfg.RedisURL != "" {
		if rb, err := NewRedisBroker(cfg.RedisURL); err == nil {
			broker = rb
		} else {
			broker = NewBroker()
		}
	} else {
		broker = NewBroker()
	}

	return &Server{Store: s, Planner: planner, Lights: lightSvc, Broker: broker}, nil
}
