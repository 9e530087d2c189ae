package controllers

import (
	"net/http"

	"github.com/storecashier/cashier-backend/api/responses"
	"github.com/storecashier/cashier-backend/pkg/db"
	pkgerrors "github.com/storecashier/cashier-backend/pkg/errors"
	"github.com/storecashier/cashier-backend/pkg/logger"
)

func HealthLive() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}

// HealthReady reports ready only when the database answers a ping.
func HealthReady(client *db.Client, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if client == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "database unavailable"))
			return
		}
		if err := client.Ping(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "database not ready"))
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
