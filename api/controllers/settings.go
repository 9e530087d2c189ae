package controllers

import (
	"net/http"

	"github.com/storecashier/cashier-backend/api/responses"
	"github.com/storecashier/cashier-backend/api/validators"
	"github.com/storecashier/cashier-backend/internal/settings"
	pkgerrors "github.com/storecashier/cashier-backend/pkg/errors"
	"github.com/storecashier/cashier-backend/pkg/logger"
	"github.com/storecashier/cashier-backend/pkg/webdav"
)

type webdavSettingsRequest struct {
	URL      string `json:"url" validate:"required"`
	Username string `json:"username"`
	Password string `json:"password"`
	Folder   string `json:"folder"`
}

type webdavSettingsResponse struct {
	URL         string `json:"url"`
	Username    string `json:"username"`
	Folder      string `json:"folder"`
	PasswordSet bool   `json:"password_set"`
}

// SettingsFetchWebDAV returns the remote-store configuration with the
// password redacted.
func SettingsFetchWebDAV(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings service unavailable"))
			return
		}

		cfg, err := svc.LoadWebDAV(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, webdavSettingsResponse{
			URL:         cfg.URL,
			Username:    cfg.Username,
			Folder:      cfg.Folder,
			PasswordSet: cfg.Password != "",
		})
	}
}

func SettingsSaveWebDAV(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings service unavailable"))
			return
		}

		var body webdavSettingsRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		saved, err := svc.SaveWebDAV(r.Context(), webdav.Config{
			URL:      body.URL,
			Username: body.Username,
			Password: body.Password,
			Folder:   body.Folder,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, webdavSettingsResponse{
			URL:         saved.URL,
			Username:    saved.Username,
			Folder:      saved.Folder,
			PasswordSet: saved.Password != "",
		})
	}
}
