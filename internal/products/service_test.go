package products

import (
	"context"
	"testing"

	pkgerrors "github.com/storecashier/cashier-backend/pkg/errors"
)

func TestCreate_AssignsIDAndRoundTrips(t *testing.T) {
	svc, _ := newTestService(t)

	created := mustCreate(t, svc, "6901234567890", "Cola 330ml", 3.50, 24)
	if created.ID <= 0 {
		t.Fatalf("expected storage-assigned id, got %d", created.ID)
	}

	fetched, err := svc.GetByBarcode(context.Background(), "6901234567890")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if fetched.Name != "Cola 330ml" || fetched.Price != 3.50 || fetched.Stock != 24 {
		t.Fatalf("fetched product does not match input: %+v", fetched)
	}
}

func TestCreate_DuplicateBarcodeLeavesStoreUnchanged(t *testing.T) {
	svc, _ := newTestService(t)
	mustCreate(t, svc, "111", "Chips", 5.00, 10)

	_, err := svc.Create(context.Background(), CreateProductInput{
		Barcode: "111",
		Name:    "Other chips",
		Price:   6.00,
		Stock:   3,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeDuplicate {
		t.Fatalf("expected duplicate key error, got %v", err)
	}

	kept, err := svc.GetByBarcode(context.Background(), "111")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if kept.Name != "Chips" || kept.Stock != 10 {
		t.Fatalf("stored row changed after failed insert: %+v", kept)
	}
}

func TestCreate_RejectsInvalidFields(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), CreateProductInput{
		Barcode: " ",
		Name:    "",
		Price:   0,
		Stock:   -1,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected field details, got %T", typed.Details())
	}
	for _, field := range []string{"barcode", "name", "price", "stock"} {
		if _, present := details[field]; !present {
			t.Fatalf("expected detail for %s, got %v", field, details)
		}
	}
}

func TestList_SortedByNameAscending(t *testing.T) {
	svc, _ := newTestService(t)
	mustCreate(t, svc, "3", "Water", 2.00, 50)
	mustCreate(t, svc, "1", "Apple juice", 8.00, 12)
	mustCreate(t, svc, "2", "Noodles", 4.50, 30)

	rows, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	want := []string{"Apple juice", "Noodles", "Water"}
	if len(rows) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(rows))
	}
	for i, name := range want {
		if rows[i].Name != name {
			t.Fatalf("position %d: expected %s, got %s", i, name, rows[i].Name)
		}
	}
}

func TestUpdateStock_MissingBarcodeLeavesStoreUnchanged(t *testing.T) {
	svc, _ := newTestService(t)
	mustCreate(t, svc, "555", "Gum", 1.50, 7)

	err := svc.UpdateStock(context.Background(), "does-not-exist", 3)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not-found error, got %v", err)
	}

	kept, err := svc.GetByBarcode(context.Background(), "555")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if kept.Stock != 7 {
		t.Fatalf("stock changed after failed update: %d", kept.Stock)
	}
}

func TestUpdateStock_TouchesStockOnly(t *testing.T) {
	svc, _ := newTestService(t)
	mustCreate(t, svc, "555", "Gum", 1.50, 7)

	if err := svc.UpdateStock(context.Background(), "555", 2); err != nil {
		t.Fatalf("update stock: %v", err)
	}

	updated, err := svc.GetByBarcode(context.Background(), "555")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if updated.Stock != 2 {
		t.Fatalf("expected stock 2, got %d", updated.Stock)
	}
	if updated.Name != "Gum" || updated.Price != 1.50 {
		t.Fatalf("non-stock fields changed: %+v", updated)
	}
}

func TestUpdate_OverwritesNamePriceStock(t *testing.T) {
	svc, _ := newTestService(t)
	mustCreate(t, svc, "777", "Old name", 1.00, 1)

	updated, err := svc.Update(context.Background(), "777", UpdateProductInput{
		Name:  "New name",
		Price: 9.90,
		Stock: 15,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "New name" || updated.Price != 9.90 || updated.Stock != 15 {
		t.Fatalf("unexpected updated row: %+v", updated)
	}
	if updated.Barcode != "777" {
		t.Fatalf("barcode changed: %s", updated.Barcode)
	}
}

func TestDelete_ByBarcodeAndByID(t *testing.T) {
	svc, _ := newTestService(t)
	first := mustCreate(t, svc, "10", "First", 1.00, 1)
	mustCreate(t, svc, "20", "Second", 2.00, 2)

	if err := svc.DeleteByBarcode(context.Background(), "20"); err != nil {
		t.Fatalf("delete by barcode: %v", err)
	}
	if err := svc.DeleteByID(context.Background(), first.ID); err != nil {
		t.Fatalf("delete by id: %v", err)
	}

	rows, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected empty store, got %d rows", len(rows))
	}

	err = svc.DeleteByBarcode(context.Background(), "20")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not-found on second delete, got %v", err)
	}
}
