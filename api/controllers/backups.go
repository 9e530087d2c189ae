package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/storecashier/cashier-backend/api/responses"
	"github.com/storecashier/cashier-backend/api/validators"
	"github.com/storecashier/cashier-backend/internal/backup"
	pkgerrors "github.com/storecashier/cashier-backend/pkg/errors"
	"github.com/storecashier/cashier-backend/pkg/logger"
	"github.com/storecashier/cashier-backend/pkg/webdav"
)

type testConnectionRequest struct {
	URL      string `json:"url" validate:"required"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// BackupRun uploads a snapshot to the configured remote folder.
func BackupRun(svc backup.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "backup service unavailable"))
			return
		}

		file, err := svc.Backup(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, file)
	}
}

func BackupList(svc backup.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "backup service unavailable"))
			return
		}

		files, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, files)
	}
}

// BackupRestore downloads a backup and replaces the catalog with it.
func BackupRestore(svc backup.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "backup service unavailable"))
			return
		}

		count, err := svc.Restore(r.Context(), chi.URLParam(r, "file"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int{"restored": count})
	}
}

// BackupTestConnection probes credentials without saving them.
func BackupTestConnection(svc backup.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "backup service unavailable"))
			return
		}

		var body testConnectionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		err := svc.TestConnection(r.Context(), webdav.Config{
			URL:      body.URL,
			Username: body.Username,
			Password: body.Password,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}
