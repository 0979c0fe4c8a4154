package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lightnav/internal/model"
)

func TestHourlyDaylightBuckets(t *testing.T) {
	d := HourlyDaylight{}
	cases := []struct {
		hour   int
		level  float64
		status string
	}{
		{7, 4, "dawn"},
		{9, 8, "morning"},
		{14, 9, "afternoon"},
		{18, 4, "dusk"},
		{2, 1, "night"},
		{22, 1, "night"},
	}
	for _, c := range cases {
		at := time.Date(2024, 6, 15, c.hour, 30, 0, 0, time.UTC)
		info := d.Conditions(52.4, 16.9, at)
		if info.LightLevel != c.level || info.Status != c.status {
			t.Fatalf("hour %d: got (%v,%s) want (%v,%s)", c.hour, info.LightLevel, info.Status, c.level, c.status)
		}
	}
}

func TestRiskIsStablePerLocation(t *testing.T) {
	r := NewHeuristicRisk(HourlyDaylight{}, nil)
	at := time.Date(2024, 6, 15, 14, 0, 0, 0, time.UTC)
	a := r.Risk(context.Background(), 52.4064, 16.9252, at)
	b := r.Risk(context.Background(), 52.4064, 16.9252, at)
	if a.Factors.RoadComplexity != b.Factors.RoadComplexity {
		t.Fatalf("road complexity not stable: %v vs %v", a.Factors.RoadComplexity, b.Factors.RoadComplexity)
	}
	if a.Factors.RoadComplexity < 0 || a.Factors.RoadComplexity >= 2 {
		t.Fatalf("road complexity out of range: %v", a.Factors.RoadComplexity)
	}
	if a.Score < 0 || a.Score > 10 {
		t.Fatalf("score out of range: %v", a.Score)
	}
}

func TestRiskNightRaisesLowLightFactor(t *testing.T) {
	r := NewHeuristicRisk(HourlyDaylight{}, nil)
	night := r.Risk(context.Background(), 52.4, 16.9, time.Date(2024, 6, 15, 2, 0, 0, 0, time.UTC))
	day := r.Risk(context.Background(), 52.4, 16.9, time.Date(2024, 6, 15, 14, 0, 0, 0, time.UTC))
	if night.Factors.LowLight != 3.0 {
		t.Fatalf("night low-light factor: %v", night.Factors.LowLight)
	}
	if day.Factors.LowLight != 0.0 {
		t.Fatalf("day low-light factor: %v", day.Factors.LowLight)
	}
}

func TestVisibilityReduced(t *testing.T) {
	for _, c := range []string{"Rain", "light drizzle", "Thunderstorm", "Fog"} {
		if !VisibilityReduced(c) {
			t.Fatalf("%q should reduce visibility", c)
		}
	}
	for _, c := range []string{"Clear", "Clouds"} {
		if VisibilityReduced(c) {
			t.Fatalf("%q should not reduce visibility", c)
		}
	}
}

func TestLocalMatrixShape(t *testing.T) {
	coords := []model.GeoPoint{
		{Lon: 16.92, Lat: 52.40},
		{Lon: 16.95, Lat: 52.41},
		{Lon: 17.00, Lat: 52.45},
	}
	mx, err := NewLocalMatrix().Matrix(context.Background(), coords)
	if err != nil {
		t.Fatalf("matrix: %v", err)
	}
	for i := range coords {
		if mx.Durations[i][i] != 0 || mx.Distances[i][i] != 0 {
			t.Fatalf("diagonal not zero at %d", i)
		}
		for j := range coords {
			if i != j && mx.Durations[i][j] <= 0 {
				t.Fatalf("duration %d,%d not positive", i, j)
			}
		}
	}
}

func TestORSMatrixUnavailableWithoutKey(t *testing.T) {
	c := NewORSMatrix("")
	if _, err := c.Matrix(context.Background(), []model.GeoPoint{{}, {}}); err != ErrUnavailable {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestORSMatrixAuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()
	c := NewORSMatrix("bad-key")
	c.BaseURL = srv.URL
	if _, err := c.Matrix(context.Background(), []model.GeoPoint{{}, {}}); err != ErrUnavailable {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestORSMatrixOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"durations":[[0,60],[60,0]],"distances":[[0,1.2],[1.2,0]]}`))
	}))
	defer srv.Close()
	c := NewORSMatrix("test-key")
	c.BaseURL = srv.URL
	mx, err := c.Matrix(context.Background(), []model.GeoPoint{{Lon: 16.9, Lat: 52.4}, {Lon: 16.93, Lat: 52.41}})
	if err != nil {
		t.Fatalf("matrix: %v", err)
	}
	if mx.Durations[0][1] != 60 || mx.Distances[1][0] != 1.2 {
		t.Fatalf("unexpected matrix: %+v", mx)
	}
}
