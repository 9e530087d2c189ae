package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/storecashier/cashier-backend/internal/products"
	"github.com/storecashier/cashier-backend/internal/settings"
	"github.com/storecashier/cashier-backend/pkg/config"
	"github.com/storecashier/cashier-backend/pkg/db/models"
	pkgerrors "github.com/storecashier/cashier-backend/pkg/errors"
	"github.com/storecashier/cashier-backend/pkg/logger"
	"github.com/storecashier/cashier-backend/pkg/webdav"
)

type fakeFileInfo struct {
	name    string
	size    int64
	modTime time.Time
	dir     bool
}

func (f fakeFileInfo) Name() string       { return f.name }
func (f fakeFileInfo) Size() int64        { return f.size }
func (f fakeFileInfo) Mode() fs.FileMode  { return 0o644 }
func (f fakeFileInfo) ModTime() time.Time { return f.modTime }
func (f fakeFileInfo) IsDir() bool        { return f.dir }
func (f fakeFileInfo) Sys() any           { return nil }

// fakeRemote is an in-memory DAV server with a flat folder layout.
type fakeRemote struct {
	folders map[string]bool
	files   map[string][]byte
	readErr error
	dialed  int
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		folders: map[string]bool{"/": true},
		files:   map[string][]byte{},
	}
}

func (r *fakeRemote) ReadDir(dir string) ([]os.FileInfo, error) {
	if r.readErr != nil {
		return nil, r.readErr
	}
	if !r.folders[dir] {
		return nil, fmt.Errorf("404 %s", dir)
	}
	var entries []os.FileInfo
	for name, data := range r.files {
		if strings.HasPrefix(name, dir+"/") {
			entries = append(entries, fakeFileInfo{
				name: strings.TrimPrefix(name, dir+"/"),
				size: int64(len(data)),
			})
		}
	}
	return entries, nil
}

func (r *fakeRemote) Read(path string) ([]byte, error) {
	data, ok := r.files[path]
	if !ok {
		return nil, fmt.Errorf("404 %s", path)
	}
	return data, nil
}

func (r *fakeRemote) Write(path string, data []byte, _ os.FileMode) error {
	r.files[path] = data
	return nil
}

func (r *fakeRemote) Mkdir(path string, _ os.FileMode) error {
	if r.folders[path] {
		return errors.New("405 Method Not Allowed")
	}
	r.folders[path] = true
	return nil
}

type fixture struct {
	products products.Service
	settings settings.Service
	remote   *fakeRemote
}

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func newFixture(t *testing.T) (Service, *fixture) {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.Product{}, &models.Setting{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}

	logg := logger.New(logger.Options{ServiceName: "backup-test", Output: io.Discard})
	tx := gormTxRunner{db: conn}

	productSvc, err := products.NewService(products.NewRepository(conn), tx)
	if err != nil {
		t.Fatalf("product service: %v", err)
	}
	settingsSvc, err := settings.NewService(settings.NewRepository(conn), tx, config.WebDAVConfig{Timeout: time.Second}, logg)
	if err != nil {
		t.Fatalf("settings service: %v", err)
	}

	remote := newFakeRemote()
	dial := func(webdav.Config) Remote {
		remote.dialed++
		return remote
	}
	svc, err := NewService(productSvc, settingsSvc, dial, logg, nil)
	if err != nil {
		t.Fatalf("backup service: %v", err)
	}
	return svc, &fixture{products: productSvc, settings: settingsSvc, remote: remote}
}

func (f *fixture) configure(t *testing.T) {
	t.Helper()
	if _, err := f.settings.SaveWebDAV(context.Background(), webdav.Config{
		URL:      "dav.example.com",
		Username: "u",
		Password: "p",
		Folder:   "cashier",
	}); err != nil {
		t.Fatalf("save settings: %v", err)
	}
}

func (f *fixture) seed(t *testing.T, barcode, name string, price float64, stock int) {
	t.Helper()
	if _, err := f.products.Create(context.Background(), products.CreateProductInput{
		Barcode: barcode,
		Name:    name,
		Price:   price,
		Stock:   stock,
	}); err != nil {
		t.Fatalf("seed %s: %v", barcode, err)
	}
}

func TestBackup_UploadsTimestampedSnapshot(t *testing.T) {
	svc, f := newFixture(t)
	f.configure(t)
	f.seed(t, "111", "Water", 2.50, 5)

	file, err := svc.Backup(context.Background())
	if err != nil {
		t.Fatalf("backup: %v", err)
	}
	if !strings.HasPrefix(file.Name, "Backup_") || !strings.HasSuffix(file.Name, ".json") {
		t.Fatalf("unexpected file name %q", file.Name)
	}

	data, ok := f.remote.files["/cashier/"+file.Name]
	if !ok {
		t.Fatalf("snapshot was not uploaded, remote has %v", f.remote.files)
	}
	if !strings.Contains(string(data), `"barcode":"111"`) {
		t.Fatalf("uploaded snapshot missing product: %s", data)
	}
	if !f.remote.folders["/cashier"] {
		t.Fatalf("backup folder was not created")
	}
}

func TestBackup_ExistingFolderIsFine(t *testing.T) {
	svc, f := newFixture(t)
	f.configure(t)
	f.seed(t, "111", "Water", 2.50, 5)
	f.remote.folders["/cashier"] = true

	if _, err := svc.Backup(context.Background()); err != nil {
		t.Fatalf("backup: %v", err)
	}
}

func TestBackup_UnconfiguredRemoteRejected(t *testing.T) {
	svc, _ := newFixture(t)

	_, err := svc.Backup(context.Background())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestList_FiltersAndSortsNewestFirst(t *testing.T) {
	svc, f := newFixture(t)
	f.configure(t)
	f.remote.folders["/cashier"] = true
	f.remote.files["/cashier/Backup_2024-01-01_10-00-00.json"] = []byte("[]")
	f.remote.files["/cashier/Backup_2024-03-05_09-30-00.json"] = []byte("[]")
	f.remote.files["/cashier/notes.txt"] = []byte("ignore me")

	files, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 backups, got %+v", files)
	}
	if files[0].Name != "Backup_2024-03-05_09-30-00.json" {
		t.Fatalf("expected newest first, got %+v", files)
	}
}

func TestRestore_ReplacesCatalog(t *testing.T) {
	svc, f := newFixture(t)
	f.configure(t)
	f.seed(t, "old", "Old", 1.00, 1)
	f.remote.folders["/cashier"] = true
	f.remote.files["/cashier/Backup_x.json"] = []byte(`[
		{"barcode":"111","name":"Water","price":2.5,"stock":5},
		{"barcode":"222","name":"Bread","price":4.0,"stock":2}
	]`)

	count, err := svc.Restore(context.Background(), "Backup_x.json")
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 restored products, got %d", count)
	}

	rows, err := f.products.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 || rows[0].Barcode != "222" || rows[1].Barcode != "111" {
		t.Fatalf("unexpected catalog after restore: %+v", rows)
	}
}

func TestRestore_CorruptBackupLeavesCatalogIntact(t *testing.T) {
	svc, f := newFixture(t)
	f.configure(t)
	f.seed(t, "keep", "Keeper", 1.00, 7)
	f.remote.folders["/cashier"] = true
	f.remote.files["/cashier/bad.json"] = []byte(`{"not":"an array"}`)

	_, err := svc.Restore(context.Background(), "bad.json")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeParse {
		t.Fatalf("expected parse error, got %v", err)
	}

	kept, err := f.products.GetByBarcode(context.Background(), "keep")
	if err != nil || kept.Stock != 7 {
		t.Fatalf("catalog changed after failed restore: %v %+v", err, kept)
	}
}

func TestRestore_RejectsPathTraversal(t *testing.T) {
	svc, f := newFixture(t)
	f.configure(t)

	for _, name := range []string{"", "../etc/passwd.json", "dir/file.json", "backup.txt"} {
		_, err := svc.Restore(context.Background(), name)
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("%q: expected validation error, got %v", name, err)
		}
	}
}

func TestTestConnection(t *testing.T) {
	svc, f := newFixture(t)

	cfg := webdav.Config{URL: "dav.example.com"}
	if err := svc.TestConnection(context.Background(), cfg); err != nil {
		t.Fatalf("test connection: %v", err)
	}

	f.remote.readErr = errors.New("401 Unauthorized")
	err := svc.TestConnection(context.Background(), cfg)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNetwork {
		t.Fatalf("expected network error, got %v", err)
	}

	if err := svc.TestConnection(context.Background(), webdav.Config{}); err == nil {
		t.Fatalf("expected error for empty url")
	}
}
