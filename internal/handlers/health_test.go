package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]HealthCheck
		wantStatus int
		wantState  string
	}{
		{
			name:       "no dependencies",
			checks:     nil,
			wantStatus: http.StatusOK,
			wantState:  "healthy",
		},
		{
			name: "all healthy",
			checks: map[string]HealthCheck{
				"postgres": func(context.Context) error { return nil },
				"redis":    func(context.Context) error { return nil },
			},
			wantStatus: http.StatusOK,
			wantState:  "healthy",
		},
		{
			name: "database down",
			checks: map[string]HealthCheck{
				"postgres": func(context.Context) error { return errors.New("connection refused") },
				"redis":    func(context.Context) error { return nil },
			},
			wantStatus: http.StatusServiceUnavailable,
			wantState:  "unhealthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(NewHealthHandler(tt.checks).Check, http.MethodGet, "", nil)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			body := decodeBody(t, w)
			if body["status"] != tt.wantState {
				t.Errorf("status field = %v, want %s", body["status"], tt.wantState)
			}
			checks, _ := body["checks"].(map[string]any)
			for name := range tt.checks {
				if _, ok := checks[name]; !ok {
					t.Errorf("checks missing %s", name)
				}
			}
		})
	}
}

func TestHealthCheck_PassesDeadline(t *testing.T) {
	var hasDeadline bool
	h := NewHealthHandler(map[string]HealthCheck{
		"postgres": func(ctx context.Context) error {
			_, hasDeadline = ctx.Deadline()
			return nil
		},
	})

	performRequest(h.Check, http.MethodGet, "", nil)

	if !hasDeadline {
		t.Error("health checks should run with a deadline")
	}
}
