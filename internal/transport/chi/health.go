package chi

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	healthuc "github.com/neo-assistant/portfolio-chat/internal/usecase/health"
)

// HealthResponse is the GET /health body.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// HealthHandler serves GET /health. Degraded reports come back as 503 so
// load balancers can pull the instance.
func HealthHandler(svc *healthuc.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := svc.Check(r.Context())

		checks := make(map[string]string, len(report.Checks))
		for name, result := range report.Checks {
			checks[name] = string(result)
		}

		status := http.StatusOK
		if report.Status != healthuc.Healthy {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, HealthResponse{
			Status: string(report.Status),
			Checks: checks,
		})
	}
}

// MetricsHandler serves GET /metrics.
func MetricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	}
}
