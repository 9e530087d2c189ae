package settings

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/storecashier/cashier-backend/pkg/config"
	pkgerrors "github.com/storecashier/cashier-backend/pkg/errors"
	"github.com/storecashier/cashier-backend/pkg/logger"
	"github.com/storecashier/cashier-backend/pkg/webdav"
)

// Setting keys for the remote-store configuration.
const (
	keyWebDAVURL      = "webdav_url"
	keyWebDAVUsername = "webdav_username"
	keyWebDAVPassword = "webdav_password"
	keyWebDAVFolder   = "webdav_folder"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service persists the WebDAV configuration, falling back to the values
// from the environment when nothing was saved yet.
type Service interface {
	LoadWebDAV(ctx context.Context) (webdav.Config, error)
	SaveWebDAV(ctx context.Context, cfg webdav.Config) (webdav.Config, error)
}

type service struct {
	repo     *Repository
	tx       txRunner
	defaults webdav.Config
	logg     *logger.Logger
}

func NewService(repo *Repository, tx txRunner, envCfg config.WebDAVConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("settings repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	defaults := webdav.Config{
		URL:      envCfg.URL,
		Username: envCfg.Username,
		Password: envCfg.Password,
		Folder:   envCfg.Folder,
		Timeout:  envCfg.Timeout,
	}
	return &service{repo: repo, tx: tx, defaults: defaults, logg: logg}, nil
}

// LoadWebDAV returns the saved configuration. Keys never written fall
// back to the environment defaults.
func (s *service) LoadWebDAV(ctx context.Context) (webdav.Config, error) {
	cfg := s.defaults

	load := func(key string, target *string) error {
		value, ok, err := s.repo.Get(ctx, key)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeStorage, err, fmt.Sprintf("failed to load setting %s", key))
		}
		if ok {
			*target = value
		}
		return nil
	}

	if err := load(keyWebDAVURL, &cfg.URL); err != nil {
		return webdav.Config{}, err
	}
	if err := load(keyWebDAVUsername, &cfg.Username); err != nil {
		return webdav.Config{}, err
	}
	if err := load(keyWebDAVPassword, &cfg.Password); err != nil {
		return webdav.Config{}, err
	}
	if err := load(keyWebDAVFolder, &cfg.Folder); err != nil {
		return webdav.Config{}, err
	}

	return cfg.Normalize(), nil
}

// SaveWebDAV normalizes and persists the configuration in one
// transaction, then returns the normalized copy.
func (s *service) SaveWebDAV(ctx context.Context, cfg webdav.Config) (webdav.Config, error) {
	cfg.Timeout = s.defaults.Timeout
	cfg = cfg.Normalize()
	if cfg.URL == "" {
		return webdav.Config{}, pkgerrors.New(pkgerrors.CodeValidation, "server url is required")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		pairs := map[string]string{
			keyWebDAVURL:      cfg.URL,
			keyWebDAVUsername: cfg.Username,
			keyWebDAVPassword: cfg.Password,
			keyWebDAVFolder:   cfg.Folder,
		}
		for key, value := range pairs {
			if err := txRepo.Set(ctx, key, value); err != nil {
				return fmt.Errorf("save %s: %w", key, err)
			}
		}
		return nil
	})
	if err != nil {
		return webdav.Config{}, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "failed to save webdav settings")
	}

	s.logg.Info(ctx, "webdav settings saved")
	return cfg, nil
}
