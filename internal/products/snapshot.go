package products

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"github.com/storecashier/cashier-backend/pkg/db/models"
	pkgerrors "github.com/storecashier/cashier-backend/pkg/errors"
)

// SnapshotProduct is the interchange form used for backup, export, import,
// and restore. Storage ids are reassigned on import and never round-trip.
type SnapshotProduct struct {
	Barcode string  `json:"barcode"`
	Name    string  `json:"name"`
	Price   float64 `json:"price"`
	Stock   int     `json:"stock"`
}

// ExportSnapshot serializes the full product set as a JSON array.
func (s *service) ExportSnapshot(ctx context.Context) ([]byte, error) {
	rows, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "load products for snapshot")
	}

	snapshot := make([]SnapshotProduct, 0, len(rows))
	for _, row := range rows {
		snapshot = append(snapshot, SnapshotProduct{
			Barcode: row.Barcode,
			Name:    row.Name,
			Price:   row.Price,
			Stock:   row.Stock,
		})
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode snapshot")
	}
	return data, nil
}

// ImportSnapshot destructively replaces the stored product set. The payload
// is parsed and validated in full before any row is deleted, and the
// delete-all plus bulk insert run inside one transaction, so a bad payload
// or a mid-batch failure leaves the prior state intact.
func (s *service) ImportSnapshot(ctx context.Context, data []byte) (int, error) {
	var snapshot []SnapshotProduct
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeParse, err, "decode snapshot")
	}
	if snapshot == nil {
		return 0, pkgerrors.New(pkgerrors.CodeParse, "snapshot is not a product array")
	}

	rows := make([]models.Product, 0, len(snapshot))
	seen := make(map[string]struct{}, len(snapshot))
	for i, entry := range snapshot {
		if err := validateFields(entry.Barcode, entry.Name, entry.Price, entry.Stock); err != nil {
			return 0, pkgerrors.Wrap(pkgerrors.CodeValidation, err,
				fmt.Sprintf("snapshot entry %d invalid", i))
		}
		if _, dup := seen[entry.Barcode]; dup {
			return 0, pkgerrors.New(pkgerrors.CodeValidation, "snapshot contains duplicate barcode").
				WithDetails(map[string]string{"barcode": entry.Barcode})
		}
		seen[entry.Barcode] = struct{}{}

		rows = append(rows, models.Product{
			Barcode: entry.Barcode,
			Name:    entry.Name,
			Price:   entry.Price,
			Stock:   entry.Stock,
		})
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.DeleteAll(ctx); err != nil {
			return err
		}
		return txRepo.CreateBatch(ctx, rows)
	}); err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "replace products")
	}

	return len(rows), nil
}
