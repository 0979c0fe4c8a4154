package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"lightnav/internal/metrics"
	"lightnav/internal/model"
)

const defaultMatrixURL = "https://api.openrouteservice.org/v2/matrix/driving-car"

// ORSMatrix fetches duration/distance matrices from the OpenRouteService
// matrix API. A missing API key or an auth failure upstream maps to
// ErrUnavailable rather than a hard error.
type ORSMatrix struct {
	APIKey  string
	BaseURL string
	HTTP    *http.Client
	limiter *rate.Limiter
}

// NewORSMatrix builds a client with a conservative request rate; the free
// ORS tier throttles aggressively.
func NewORSMatrix(apiKey string) *ORSMatrix {
	return &ORSMatrix{
		APIKey:  apiKey,
		BaseURL: defaultMatrixURL,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Every(time.Second), 2),
	}
}

func (c *ORSMatrix) Matrix(ctx context.Context, coords []model.GeoPoint) (*model.Matrix, error) {
	if c.APIKey == "" {
		log.Printf("matrix provider: no API key configured")
		return nil, ErrUnavailable
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	locations := make([][2]float64, len(coords))
	for i, p := range coords {
		locations[i] = [2]float64{p.Lon, p.Lat}
	}
	body, err := json.Marshal(map[string]any{
		"locations": locations,
		"metrics":   []string{"distance", "duration"},
		"units":     "km",
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", c.APIKey)
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		log.Printf("matrix provider: request failed: %v", err)
		return nil, ErrUnavailable
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		log.Printf("matrix provider: invalid API key (status %d)", resp.StatusCode)
		return nil, ErrUnavailable
	}
	if resp.StatusCode != http.StatusOK {
		log.Printf("matrix provider: status %d", resp.StatusCode)
		metrics.ProviderRequests.WithLabelValues("ors", "unavailable").Inc()
		return nil, ErrUnavailable
	}
	var out model.Matrix
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode matrix response: %w", err)
	}
	if len(out.Durations) != len(coords) {
		return nil, fmt.Errorf("matrix response has %d rows, want %d", len(out.Durations), len(coords))
	}
	metrics.ProviderRequests.WithLabelValues("ors", "ok").Inc()
	return &out, nil
}
