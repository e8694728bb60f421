package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
)

func TestHealthHandler_Liveness(t *testing.T) {
	e := newTestEcho()
	c, rec := newJSONContext(e, http.MethodGet, "/health", "")

	if err := NewHealthHandler().Liveness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHealthDependenciesHandler_Readiness(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name   string
		checks map[string]DependencyCheck
		code   int
		status string
	}{
		{"all up", map[string]DependencyCheck{"mongodb": ok, "redis": ok}, http.StatusOK, "ok"},
		{"redis down", map[string]DependencyCheck{"mongodb": ok, "redis": down}, http.StatusServiceUnavailable, "degraded"},
		{"no checks", nil, http.StatusOK, "ok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEcho()
			c, rec := newJSONContext(e, http.MethodGet, "/health/ready", "")

			if err := NewHealthDependenciesHandler(tt.checks).Readiness(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != tt.code {
				t.Fatalf("expected %d, got %d", tt.code, rec.Code)
			}

			var resp readinessResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if resp.Status != tt.status {
				t.Fatalf("expected status %q, got %q", tt.status, resp.Status)
			}
			if tt.status == "degraded" && resp.Dependencies["redis"].Error == "" {
				t.Fatalf("expected redis error to be reported")
			}
		})
	}
}
