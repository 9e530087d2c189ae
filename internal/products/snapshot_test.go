package products

import (
	"context"
	"encoding/json"
	"testing"

	pkgerrors "github.com/storecashier/cashier-backend/pkg/errors"
)

func TestSnapshot_RoundTrip(t *testing.T) {
	source, _ := newTestService(t)
	mustCreate(t, source, "100", "Bread", 6.50, 8)
	mustCreate(t, source, "200", "Milk", 12.00, 20)

	data, err := source.ExportSnapshot(context.Background())
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	target, _ := newTestService(t)
	count, err := target.ImportSnapshot(context.Background(), data)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 imported products, got %d", count)
	}

	rows, err := target.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Name != "Bread" || rows[0].Price != 6.50 || rows[0].Stock != 8 {
		t.Fatalf("unexpected first row: %+v", rows[0])
	}
	if rows[1].Barcode != "200" || rows[1].Stock != 20 {
		t.Fatalf("unexpected second row: %+v", rows[1])
	}
}

func TestExportSnapshot_EmptyStoreIsEmptyArray(t *testing.T) {
	svc, _ := newTestService(t)

	data, err := svc.ExportSnapshot(context.Background())
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	var decoded []SnapshotProduct
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded == nil || len(decoded) != 0 {
		t.Fatalf("expected empty array, got %s", data)
	}
}

func TestImportSnapshot_ReplacesExistingSet(t *testing.T) {
	svc, _ := newTestService(t)
	mustCreate(t, svc, "old-1", "Old one", 1.00, 1)
	mustCreate(t, svc, "old-2", "Old two", 2.00, 2)
	mustCreate(t, svc, "old-3", "Old three", 3.00, 3)

	payload := []byte(`[{"barcode":"new-1","name":"New one","price":4.00,"stock":4}]`)
	count, err := svc.ImportSnapshot(context.Background(), payload)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 imported product, got %d", count)
	}

	rows, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 || rows[0].Barcode != "new-1" {
		t.Fatalf("expected store replaced with new-1, got %+v", rows)
	}
}

func TestImportSnapshot_MalformedPayloadLeavesStoreIntact(t *testing.T) {
	svc, _ := newTestService(t)
	mustCreate(t, svc, "keep", "Keeper", 3.00, 5)

	cases := map[string][]byte{
		"truncated json":  []byte(`[{"barcode":"x"`),
		"null payload":    []byte(`null`),
		"not an array":    []byte(`{"barcode":"x"}`),
		"invalid product": []byte(`[{"barcode":"","name":"","price":-1,"stock":-1}]`),
		"duplicate entry": []byte(`[{"barcode":"a","name":"A","price":1,"stock":1},{"barcode":"a","name":"B","price":2,"stock":2}]`),
	}

	for name, payload := range cases {
		if _, err := svc.ImportSnapshot(context.Background(), payload); err == nil {
			t.Fatalf("%s: expected import to fail", name)
		}

		kept, err := svc.GetByBarcode(context.Background(), "keep")
		if err != nil {
			t.Fatalf("%s: store was touched by failed import: %v", name, err)
		}
		if kept.Stock != 5 {
			t.Fatalf("%s: stored row changed: %+v", name, kept)
		}
	}
}

func TestImportSnapshot_ParseErrorCode(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.ImportSnapshot(context.Background(), []byte(`not json`))
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeParse {
		t.Fatalf("expected parse error, got %v", err)
	}
}
