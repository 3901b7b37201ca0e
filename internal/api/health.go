package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"flighttest/ftias/internal/common"
	"flighttest/ftias/internal/models/entities"
)

const healthProbeTimeout = 3 * time.Second

// Probe is one dependency checked by the health endpoint.
type Probe struct {
	Name    string
	Details string
	Check   func(ctx context.Context) error
}

// HealthCheckHandler handles GET /api/health
//
// @Summary Health check
// @Description Probes every dependency concurrently. Responds 503 when any is down.
// @Tags Misc
// @Success 200 {object} dtos.APIResponse
// @Failure 503 {object} dtos.APIResponse
// @Router /api/health [get]
func HealthCheckHandler(upSince time.Time, probes ...Probe) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		ctx, cancel := context.WithTimeout(r.Context(), healthProbeTimeout)
		defer cancel()

		var mu sync.Mutex
		services := make(map[string]entities.ServiceStatus, len(probes))

		// Probes report failures in their status, so the group never aborts.
		var g errgroup.Group
		for _, p := range probes {
			g.Go(func() error {
				status := entities.ServiceStatus{Status: "ok", Details: p.Details}
				if err := p.Check(ctx); err != nil {
					status = entities.ServiceStatus{Status: "down", Details: err.Error()}
				}
				mu.Lock()
				services[p.Name] = status
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait()

		overallStatus := "ok"
		for _, svc := range services {
			if svc.Status != "ok" {
				overallStatus = "down"
				break
			}
		}

		resp := entities.HealthCheckResponse{
			Services: services,
			Status:   overallStatus,
			UpSince:  upSince,
			Uptime:   time.Since(upSince).Round(time.Second).String(),
		}

		if overallStatus != "ok" {
			common.RespondSuccess(w, initTime, "Service degraded", resp, http.StatusServiceUnavailable)
			return
		}
		common.RespondSuccess(w, initTime, "Service healthy", resp)
	}
}

// DependencyProbes lists the probes for the wired stores.
func DependencyProbes(deps *Dependencies) []Probe {
	return []Probe{
		{Name: "postgres", Details: "Postgres Connected", Check: deps.Repo.DataPoints.Ping},
		{
			Name:    "revocation_store",
			Details: deps.Services.Revocations.Name() + " store reachable",
			Check:   deps.Services.Revocations.Ping,
		},
	}
}

// PingHandler handles GET /api/ping
func PingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		common.RespondSuccess(w, time.Now(), "pong", map[string]time.Time{"timestamp": time.Now().UTC()})
	}
}
