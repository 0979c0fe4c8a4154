package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"lightnav/internal/lights"
	"lightnav/internal/metrics"
	"lightnav/internal/model"
	"lightnav/internal/providers"
	"lightnav/internal/route"
	"lightnav/internal/store"
)

// OptimizeHandler handles POST /v1/optimize
func (s *Server) OptimizeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req model.OptimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	if err := validateWaypoints(req.Waypoints); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid optimize request", err.Error(), r.URL.Path)
		return
	}

	at := time.Now()
	if req.DepartAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.DepartAt)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid departAt", err.Error(), r.URL.Path)
			return
		}
		at = parsed
	}

	opts := route.BuildOptions{
		IncludeTraffic: req.IncludeTraffic == nil || *req.IncludeTraffic,
		AnalyzeLights:  req.AnalyzeLights == nil || *req.AnalyzeLights,
		AvgSpeedMS:     req.AvgSpeedMS,
	}
	plan, err := s.Planner.BuildPlan(r.Context(), req.Waypoints, at, opts)
	if err != nil {
		if errors.Is(err, providers.ErrUnavailable) {
			metrics.Optimizations.WithLabelValues("none", string(model.StatusUnavailable)).Inc()
			writeProblem(w, http.StatusServiceUnavailable, "Route provider unavailable", "distance matrix could not be computed", r.URL.Path)
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Optimize failed", err.Error(), r.URL.Path)
		return
	}
	metrics.Optimizations.WithLabelValues(plan.Strategy, string(model.StatusOK)).Inc()
	if plan.LightAnalysis != nil {
		metrics.LightAnalyses.Inc()
		metrics.DetectedLights.Observe(float64(len(plan.LightAnalysis.Lights)))
	}

	if _, err := s.Store.SavePlan(r.Context(), plan); err != nil {
		writeProblem(w, http.StatusInternalServerError, "Save plan failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// RoutesIndexHandler handles GET /v1/routes
func (s *Server) RoutesIndexHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	cursor := r.URL.Query().Get("cursor")
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		fmt.Sscanf(v, "%d", &limit)
	}
	items, next, err := s.Store.ListPlans(r.Context(), cursor, limit)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "List plans failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "nextCursor": next})
}

// RouteByIDHandler handles /v1/routes/{id} plus the /refresh, /traffic/stream
// and /advisories/ws subresources.
func (s *Server) RouteByIDHandler(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	rest := strings.TrimPrefix(path, "/v1/routes/")
	if rest == path || rest == "" {
		writeProblem(w, http.StatusNotFound, "Not Found", "missing id", path)
		return
	}
	parts := strings.Split(rest, "/")
	id := parts[0]

	if len(parts) > 2 && parts[1] == "traffic" && parts[2] == "stream" {
		s.trafficStream(w, r, id)
		return
	}
	if len(parts) > 2 && parts[1] == "advisories" && parts[2] == "ws" {
		s.AdvisoryWSHandler(w, r, id)
		return
	}
	if len(parts) > 1 && parts[1] == "refresh" {
		s.refreshPlan(w, r, id)
		return
	}

	switch r.Method {
	case http.MethodGet:
		plan, err := s.Store.GetPlan(r.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeProblem(w, http.StatusNotFound, "Plan not found", "", path)
				return
			}
			writeProblem(w, http.StatusInternalServerError, "Get plan failed", err.Error(), path)
			return
		}
		writeJSON(w, http.StatusOK, plan)
	case http.MethodDelete:
		if err := s.Store.DeletePlan(r.Context(), id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeProblem(w, http.StatusNotFound, "Plan not found", "", path)
				return
			}
			writeProblem(w, http.StatusInternalServerError, "Delete plan failed", err.Error(), path)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) refreshPlan(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	plan, err := s.Store.GetPlan(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Plan not found", "", r.URL.Path)
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Get plan failed", err.Error(), r.URL.Path)
		return
	}
	check, err := s.Planner.CheckRefresh(r.Context(), plan, time.Now())
	if err != nil {
		if errors.Is(err, providers.ErrUnavailable) {
			writeProblem(w, http.StatusServiceUnavailable, "Route provider unavailable", "cannot check traffic updates", r.URL.Path)
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Refresh check failed", err.Error(), r.URL.Path)
		return
	}
	if check.NeedsUpdate && check.NewPlan != nil {
		if err := s.Store.ReplacePlan(r.Context(), id, check.NewPlan); err != nil {
			writeProblem(w, http.StatusInternalServerError, "Replace plan failed", err.Error(), r.URL.Path)
			return
		}
		check.NewPlan.ID = id
		s.Broker.Publish(id, SSEEvent{Type: "traffic.update", Data: map[string]any{
			"planId":           id,
			"reason":           check.Reason,
			"maxChangePercent": check.MaxChangePercent,
			"changedSegment":   check.ChangedSegment,
		}})
	}
	writeJSON(w, http.StatusOK, check)
}

func (s *Server) trafficStream(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeProblem(w, http.StatusInternalServerError, "Streaming unsupported", "", r.URL.Path)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := s.Broker.Subscribe(id)
	defer s.Broker.Unsubscribe(id, ch)
	// initial heartbeat
	fmt.Fprintf(w, "event: heartbeat\n")
	fmt.Fprintf(w, "data: {\"planId\":\"%s\",\"ts\":\"%s\"}\n\n", id, time.Now().Format(time.RFC3339))
	flusher.Flush()

	notify := r.Context().Done()
	for {
		select {
		case <-notify:
			return
		case evt := <-ch:
			b, _ := json.Marshal(evt.Data)
			fmt.Fprintf(w, "event: %s\n", evt.Type)
			fmt.Fprintf(w, "data: %s\n\n", string(b))
			flusher.Flush()
		case <-time.After(15 * time.Second):
			fmt.Fprintf(w, "event: heartbeat\n")
			fmt.Fprintf(w, "data: {\"planId\":\"%s\",\"ts\":\"%s\"}\n\n", id, time.Now().Format(time.RFC3339))
			flusher.Flush()
		}
	}
}

// LightsInitHandler handles POST /v1/lights/init
func (s *Server) LightsInitHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Bounds [][]float64 `json:"bounds"` // [[minLon,minLat],[maxLon,maxLat]]
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	if len(req.Bounds) != 2 || len(req.Bounds[0]) != 2 || len(req.Bounds[1]) != 2 {
		writeProblem(w, http.StatusBadRequest, "Invalid bounds", "expected [[minLon,minLat],[maxLon,maxLat]]", r.URL.Path)
		return
	}
	min := model.GeoPoint{Lon: req.Bounds[0][0], Lat: req.Bounds[0][1]}
	max := model.GeoPoint{Lon: req.Bounds[1][0], Lat: req.Bounds[1][1]}
	if min.Lon >= max.Lon || min.Lat >= max.Lat {
		writeProblem(w, http.StatusBadRequest, "Invalid bounds", "min corner must be south-west of max", r.URL.Path)
		return
	}
	m := s.Lights.Initialize(min, max)
	writeJSON(w, http.StatusOK, map[string]any{"lights": len(m.Lights)})
}

// LightsDetectHandler handles POST /v1/lights/detect
func (s *Server) LightsDetectHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Route   []model.GeoPoint `json:"route"`
		RadiusM float64          `json:"radiusM"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	if len(req.Route) == 0 {
		writeProblem(w, http.StatusBadRequest, "Invalid route", "route must contain at least one point", r.URL.Path)
		return
	}
	found := s.Lights.Detect(req.Route, req.RadiusM)
	writeJSON(w, http.StatusOK, map[string]any{"lights": found})
}

// LightsAdviseHandler handles POST /v1/lights/advise
func (s *Server) LightsAdviseHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Light     model.Light `json:"light"`
		AtUnix    int64       `json:"atUnix"`
		SpeedMS   float64     `json:"speedMs"`
		DistanceM float64     `json:"distanceM"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	if req.Light.CycleTime <= 0 {
		writeProblem(w, http.StatusBadRequest, "Invalid light", "cycleTime must be positive", r.URL.Path)
		return
	}
	at := time.Now()
	if req.AtUnix > 0 {
		at = time.Unix(req.AtUnix, 0)
	}
	adv := lights.AdviseSpeed(req.Light, at, req.SpeedMS, req.DistanceM)
	if adv.Status == model.StatusInvalidInput {
		writeProblem(w, http.StatusBadRequest, "Invalid speed", "speed must be positive", r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, adv)
}

// LightsAnalyzeHandler handles POST /v1/lights/analyze
func (s *Server) LightsAnalyzeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Route      []model.GeoPoint `json:"route"`
		AvgSpeedMS float64          `json:"avgSpeedMs"`
		StartUnix  int64            `json:"startUnix"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	if len(req.Route) < 2 {
		writeProblem(w, http.StatusBadRequest, "Invalid route", "route must contain at least two points", r.URL.Path)
		return
	}
	start := time.Now()
	if req.StartUnix > 0 {
		start = time.Unix(req.StartUnix, 0)
	}
	analysis := s.Lights.AnalyzeRoute(req.Route, req.AvgSpeedMS, start)
	metrics.LightAnalyses.Inc()
	metrics.DetectedLights.Observe(float64(len(analysis.Lights)))
	writeJSON(w, http.StatusOK, analysis)
}

func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	// the store is the only hard dependency; a failing list means not ready
	if _, _, err := s.Store.ListPlans(r.Context(), "", 1); err != nil {
		writeProblem(w, http.StatusServiceUnavailable, "Not ready", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func validateWaypoints(points []model.GeoPoint) error {
	if len(points) == 0 {
		return errors.New("at least one waypoint required")
	}
	for i, p := range points {
		if p.Lon < -180 || p.Lon > 180 || p.Lat < -90 || p.Lat > 90 {
			return fmt.Errorf("waypoint %d out of range: (%v,%v)", i, p.Lon, p.Lat)
		}
	}
	return nil
}
