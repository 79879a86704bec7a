package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/jomarvillega/stockroom-backend/api/responses"
	"github.com/jomarvillega/stockroom-backend/pkg/config"
	pkgerrors "github.com/jomarvillega/stockroom-backend/pkg/errors"
	"github.com/jomarvillega/stockroom-backend/pkg/logger"
)

const envHeader = "X-Stockroom-Env"

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady verifies the database and cache before reporting ready. A dead
// cache degrades to a warning because reads fall back to the database.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP, cacheP pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if dbP != nil {
			if err := dbP.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unreachable"))
				return
			}
		}

		cacheStatus := "ok"
		if cacheP != nil {
			if err := cacheP.Ping(ctx); err != nil {
				cacheStatus = "degraded"
				if logg != nil {
					logg.Warn(logg.WithField(r.Context(), "error", err.Error()), "cache ping failed")
				}
			}
		}

		responses.WriteSuccess(w, map[string]string{
			"status": "ready",
			"cache":  cacheStatus,
		})
	}
}
