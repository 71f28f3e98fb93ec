package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/sew4mi/sew4mi-backend/api/responses"
	"github.com/sew4mi/sew4mi-backend/pkg/config"
	"github.com/sew4mi/sew4mi-backend/pkg/db"
	"github.com/sew4mi/sew4mi-backend/pkg/logger"
	"github.com/sew4mi/sew4mi-backend/pkg/redis"
)

const readinessTimeout = 3 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Sew4Mi-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when both Postgres and Redis answer a ping
// within the readiness timeout.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Sew4Mi-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := map[string]string{"database": "ok", "redis": "ok"}
		healthy := true

		if dbP == nil {
			checks["database"] = "not configured"
			healthy = false
		} else if err := dbP.Ping(ctx); err != nil {
			if logg != nil {
				logg.Warn(logg.WithField(ctx, "error", err.Error()), "readiness database ping failed")
			}
			checks["database"] = "unreachable"
			healthy = false
		}

		if redisP == nil {
			checks["redis"] = "not configured"
			healthy = false
		} else if err := redisP.Ping(ctx); err != nil {
			if logg != nil {
				logg.Warn(logg.WithField(ctx, "error", err.Error()), "readiness redis ping failed")
			}
			checks["redis"] = "unreachable"
			healthy = false
		}

		status := http.StatusOK
		payload := map[string]any{"status": "ready", "checks": checks}
		if !healthy {
			status = http.StatusServiceUnavailable
			payload["status"] = "degraded"
		}
		responses.WriteSuccessStatus(w, status, payload)
	}
}
