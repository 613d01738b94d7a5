package health

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

const (
	// probeTimeout bounds /readyz and /health/<check>.
	probeTimeout = 5 * time.Second
	// reportTimeout bounds /health, which runs every check.
	reportTimeout = 10 * time.Second
)

// LivenessHandler answers "OK" while the process can serve HTTP. It never
// looks at credentials.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeText(w, http.StatusOK, "OK")
	}
}

// ReadinessHandler runs every check and answers with the overall status in
// upper case ("OK" when healthy). Only an unhealthy report is a 503: a
// degraded credential set still serves requests.
func ReadinessHandler(agg *Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		defer cancel()

		report := agg.CheckAll(ctx)
		body := "OK"
		if report.Status != StatusHealthy {
			body = strings.ToUpper(report.Status.String())
		}
		writeText(w, httpStatus(report.Status), body)
	}
}

// HealthResponse is the wire form of a Report.
type HealthResponse struct {
	Status    string          `json:"status" yaml:"status"`
	Timestamp string          `json:"timestamp" yaml:"timestamp"`
	Checks    []CheckResponse `json:"checks,omitempty" yaml:"checks,omitempty"`
}

// CheckResponse is the wire form of a single Result.
type CheckResponse struct {
	Name     string         `json:"name,omitempty" yaml:"name,omitempty"`
	Status   string         `json:"status" yaml:"status"`
	Message  string         `json:"message,omitempty" yaml:"message,omitempty"`
	Duration string         `json:"duration,omitempty" yaml:"duration,omitempty"`
	Details  map[string]any `json:"details,omitempty" yaml:"details,omitempty"`
	Error    string         `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewCheckResponse converts a Result to its wire form.
func NewCheckResponse(name string, result Result) CheckResponse {
	resp := CheckResponse{
		Name:     name,
		Status:   result.Status.String(),
		Message:  result.Message,
		Duration: result.Duration.String(),
		Details:  result.Details,
	}
	if result.Error != nil {
		resp.Error = result.Error.Error()
	}
	return resp
}

// NewHealthResponse converts a Report to its wire form, keeping check order.
func NewHealthResponse(report Report) HealthResponse {
	resp := HealthResponse{
		Status:    report.Status.String(),
		Timestamp: report.Timestamp.UTC().Format(time.RFC3339),
		Checks:    make([]CheckResponse, len(report.Checks)),
	}
	for i, c := range report.Checks {
		resp.Checks[i] = NewCheckResponse(c.Name, c.Result)
	}
	return resp
}

// DetailedHandler serves the full Report as JSON.
func DetailedHandler(agg *Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), reportTimeout)
		defer cancel()

		report := agg.CheckAll(ctx)
		writeJSON(w, httpStatus(report.Status), NewHealthResponse(report))
	}
}

// SingleCheckHandler serves one named check as JSON, or 404 when no such
// check is registered.
func SingleCheckHandler(agg *Aggregator, name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		defer cancel()

		result, err := agg.Check(ctx, name)
		if err != nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, httpStatus(result.Status), NewCheckResponse(name, result))
	}
}

// RegisterHandlers mounts /healthz, /readyz, /health and one
// /health/<name> route per check registered at call time.
func RegisterHandlers(mux *http.ServeMux, agg *Aggregator) {
	mux.HandleFunc("/healthz", LivenessHandler())
	mux.HandleFunc("/readyz", ReadinessHandler(agg))
	mux.HandleFunc("/health", DetailedHandler(agg))
	for _, name := range agg.CheckerNames() {
		mux.HandleFunc("/health/"+name, SingleCheckHandler(agg, name))
	}
}

func httpStatus(s Status) int {
	if s == StatusUnhealthy {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
