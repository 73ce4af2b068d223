package http

import (
	"net/http"
	"time"

	"github.com/openfoyer/foyer/internal/admission/store"
	"github.com/openfoyer/foyer/pkg/gatesdk"
	"github.com/openfoyer/foyer/pkg/httpx"
)

// LivezHandler reports process liveness. It never touches dependencies.
//
//	@Summary		Liveness Probe
//	@Description	Returns ok while the process is running.
//	@Tags			System
//	@Produce		json
//	@Success		200	{object}	gatesdk.HealthResponse
//	@Router			/livez [get]
func LivezHandler(startTime time.Time, version string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, gatesdk.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Version: version,
		})
	})
}

// ReadyzHandler reports readiness to serve: the database must answer a ping.
//
//	@Summary		Readiness Probe
//	@Description	Returns ok when the database is reachable, 503 otherwise.
//	@Tags			System
//	@Produce		json
//	@Success		200	{object}	gatesdk.HealthResponse
//	@Failure		503	{object}	gatesdk.HealthResponse
//	@Router			/readyz [get]
func ReadyzHandler(startTime time.Time, version string, st store.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := gatesdk.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Version: version,
			Checks:  &gatesdk.HealthChecks{Database: "ok"},
		}

		code := http.StatusOK
		if err := st.Ping(r.Context()); err != nil {
			resp.Status = "degraded"
			resp.Checks.Database = "unreachable"
			code = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, code, resp)
	})
}
