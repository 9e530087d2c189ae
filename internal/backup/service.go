package backup

import (
	"context"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/storecashier/cashier-backend/internal/products"
	"github.com/storecashier/cashier-backend/internal/settings"
	pkgerrors "github.com/storecashier/cashier-backend/pkg/errors"
	"github.com/storecashier/cashier-backend/pkg/logger"
	"github.com/storecashier/cashier-backend/pkg/metrics"
	"github.com/storecashier/cashier-backend/pkg/webdav"
)

// Backup files are named Backup_<timestamp>.json.
const (
	filePrefix      = "Backup_"
	fileSuffix      = ".json"
	timestampLayout = "2006-01-02_15-04-05"
)

// Remote is the slice of the DAV client the service needs.
type Remote interface {
	ReadDir(path string) ([]os.FileInfo, error)
	Read(path string) ([]byte, error)
	Write(path string, data []byte, mode os.FileMode) error
	Mkdir(path string, mode os.FileMode) error
}

// Dial builds a Remote for a normalized configuration.
type Dial func(cfg webdav.Config) Remote

// DefaultDial connects with the shared DAV client.
func DefaultDial(cfg webdav.Config) Remote {
	return webdav.NewClient(cfg)
}

// File describes one stored backup.
type File struct {
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// Service copies product snapshots to and from the configured WebDAV
// folder.
type Service interface {
	Backup(ctx context.Context) (*File, error)
	List(ctx context.Context) ([]File, error)
	Restore(ctx context.Context, fileName string) (int, error)
	TestConnection(ctx context.Context, cfg webdav.Config) error
}

type service struct {
	products products.Service
	settings settings.Service
	dial     Dial
	logg     *logger.Logger
	ops      *metrics.OperationMetrics
	now      func() time.Time
}

func NewService(productSvc products.Service, settingsSvc settings.Service, dial Dial, logg *logger.Logger, ops *metrics.OperationMetrics) (Service, error) {
	if productSvc == nil {
		return nil, fmt.Errorf("product service required")
	}
	if settingsSvc == nil {
		return nil, fmt.Errorf("settings service required")
	}
	if dial == nil {
		dial = DefaultDial
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		products: productSvc,
		settings: settingsSvc,
		dial:     dial,
		logg:     logg,
		ops:      ops,
		now:      time.Now,
	}, nil
}

func (s *service) Backup(ctx context.Context) (*File, error) {
	started := s.now()

	file, err := s.backup(ctx)
	s.ops.ObserveDuration("backup", time.Since(started))
	if err != nil {
		s.ops.IncFailure("backup")
		return nil, err
	}
	s.ops.IncSuccess("backup")
	return file, nil
}

func (s *service) backup(ctx context.Context) (*File, error) {
	cfg, remote, err := s.connect(ctx)
	if err != nil {
		return nil, err
	}

	data, err := s.products.ExportSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := ensureFolder(remote, cfg.Folder); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "failed to create remote folder").
			WithDetails(map[string]string{"folder": cfg.Folder})
	}

	name := filePrefix + s.now().Format(timestampLayout) + fileSuffix
	remotePath := path.Join("/", cfg.Folder, name)
	if err := remote.Write(remotePath, data, 0o644); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "failed to upload backup").
			WithDetails(map[string]string{"file": name})
	}

	s.logg.Info(s.logg.WithField(ctx, "file", name), "backup uploaded")
	return &File{Name: name, Size: int64(len(data)), Modified: s.now()}, nil
}

func (s *service) List(ctx context.Context) ([]File, error) {
	cfg, remote, err := s.connect(ctx)
	if err != nil {
		return nil, err
	}

	entries, err := remote.ReadDir(path.Join("/", cfg.Folder))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "failed to list remote folder").
			WithDetails(map[string]string{"folder": cfg.Folder})
	}

	files := make([]File, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileSuffix) {
			continue
		}
		files = append(files, File{
			Name:     entry.Name(),
			Size:     entry.Size(),
			Modified: entry.ModTime(),
		})
	}
	// timestamped names sort chronologically, so newest first
	sort.Slice(files, func(i, j int) bool { return files[i].Name > files[j].Name })
	return files, nil
}

func (s *service) Restore(ctx context.Context, fileName string) (int, error) {
	started := s.now()

	count, err := s.restore(ctx, fileName)
	s.ops.ObserveDuration("restore", time.Since(started))
	if err != nil {
		s.ops.IncFailure("restore")
		return 0, err
	}
	s.ops.IncSuccess("restore")
	return count, nil
}

func (s *service) restore(ctx context.Context, fileName string) (int, error) {
	fileName = strings.TrimSpace(fileName)
	if fileName == "" || strings.ContainsAny(fileName, "/\\") || !strings.HasSuffix(fileName, fileSuffix) {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid backup file name").
			WithDetails(map[string]string{"file": fileName})
	}

	cfg, remote, err := s.connect(ctx)
	if err != nil {
		return 0, err
	}

	data, err := remote.Read(path.Join("/", cfg.Folder, fileName))
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "failed to download backup").
			WithDetails(map[string]string{"file": fileName})
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	count, err := s.products.ImportSnapshot(ctx, data)
	if err != nil {
		return 0, err
	}

	s.logg.Info(s.logg.WithField(ctx, "file", fileName), "backup restored")
	return count, nil
}

// TestConnection probes the given configuration without touching the
// saved one.
func (s *service) TestConnection(ctx context.Context, cfg webdav.Config) error {
	cfg = cfg.Normalize()
	if cfg.URL == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "server url is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := s.dial(cfg).ReadDir("/"); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "connection test failed")
	}
	return nil
}

func (s *service) connect(ctx context.Context) (webdav.Config, Remote, error) {
	cfg, err := s.settings.LoadWebDAV(ctx)
	if err != nil {
		return webdav.Config{}, nil, err
	}
	if cfg.URL == "" {
		return webdav.Config{}, nil, pkgerrors.New(pkgerrors.CodeValidation, "webdav is not configured")
	}
	return cfg, s.dial(cfg), nil
}

// ensureFolder creates the backup folder, tolerating servers that answer
// an existing folder with an error.
func ensureFolder(remote Remote, folder string) error {
	target := path.Join("/", folder)
	if _, err := remote.ReadDir(target); err == nil {
		return nil
	}
	if err := remote.Mkdir(target, 0o755); err != nil {
		if _, readErr := remote.ReadDir(target); readErr == nil {
			return nil
		}
		return err
	}
	return nil
}
