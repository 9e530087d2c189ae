package products

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/storecashier/cashier-backend/pkg/db/models"
)

// Each test gets its own named in-memory database so fixtures cannot leak
// between tests.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.Product{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return conn
}

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn := newTestDB(t)
	svc, err := NewService(NewRepository(conn), gormTxRunner{db: conn})
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}
	return svc, conn
}

func mustCreate(t *testing.T, svc Service, barcode, name string, price float64, stock int) *models.Product {
	t.Helper()
	product, err := svc.Create(context.Background(), CreateProductInput{
		Barcode: barcode,
		Name:    name,
		Price:   price,
		Stock:   stock,
	})
	if err != nil {
		t.Fatalf("create %s: %v", barcode, err)
	}
	return product
}
