package products

import (
	"context"

	"gorm.io/gorm"

	"github.com/storecashier/cashier-backend/pkg/db/models"
)

// Repository owns persistence for the product table.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a new product row. The unique barcode index rejects
// duplicates with no side effects.
func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// FindByBarcode loads a single product by its natural key.
func (r *Repository) FindByBarcode(ctx context.Context, barcode string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "barcode = ?", barcode).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindAll returns every product ordered by name ascending.
func (r *Repository) FindAll(ctx context.Context) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&rows).
		Error
	return rows, err
}

// UpdateStock overwrites the stock column only. Returns false when no row
// matched the barcode.
func (r *Repository) UpdateStock(ctx context.Context, barcode string, newStock int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("barcode = ?", barcode).
		Update("stock", newStock)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Update overwrites name, price, and stock for the matching barcode.
func (r *Repository) Update(ctx context.Context, barcode, name string, price float64, stock int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("barcode = ?", barcode).
		Updates(map[string]any{"name": name, "price": price, "stock": stock})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DeleteByBarcode removes the matching product. Returns false when no row
// matched.
func (r *Repository) DeleteByBarcode(ctx context.Context, barcode string) (bool, error) {
	res := r.db.WithContext(ctx).Where("barcode = ?", barcode).Delete(&models.Product{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DeleteByID removes the product with the given storage id.
func (r *Repository) DeleteByID(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DeleteAll truncates the product table. Only snapshot import calls this,
// inside a transaction.
func (r *Repository) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Where("1 = 1").Delete(&models.Product{}).Error
}

// CreateBatch bulk-inserts the given rows.
func (r *Repository) CreateBatch(ctx context.Context, rows []models.Product) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// Count returns the number of stored products.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&count).Error
	return count, err
}
