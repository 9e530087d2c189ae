package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/storecashier/cashier-backend/pkg/db"
	"github.com/storecashier/cashier-backend/pkg/db/models"
	pkgerrors "github.com/storecashier/cashier-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes validated product operations.
type Service interface {
	Create(ctx context.Context, input CreateProductInput) (*models.Product, error)
	GetByBarcode(ctx context.Context, barcode string) (*models.Product, error)
	List(ctx context.Context) ([]models.Product, error)
	Update(ctx context.Context, barcode string, input UpdateProductInput) (*models.Product, error)
	UpdateStock(ctx context.Context, barcode string, newStock int) error
	DeleteByBarcode(ctx context.Context, barcode string) error
	DeleteByID(ctx context.Context, id int64) error
	ExportSnapshot(ctx context.Context) ([]byte, error)
	ImportSnapshot(ctx context.Context, data []byte) (int, error)
}

type service struct {
	repo *Repository
	tx   txRunner
}

// NewService builds a product service backed by the provided repository.
func NewService(repo *Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

// CreateProductInput carries a new product. The id is assigned by storage.
type CreateProductInput struct {
	Barcode string
	Name    string
	Price   float64
	Stock   int
}

// UpdateProductInput overwrites name, price, and stock.
type UpdateProductInput struct {
	Name  string
	Price float64
	Stock int
}

func (s *service) Create(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	input.Barcode = strings.TrimSpace(input.Barcode)
	input.Name = strings.TrimSpace(input.Name)
	if err := validateFields(input.Barcode, input.Name, input.Price, input.Stock); err != nil {
		return nil, err
	}

	product := &models.Product{
		Barcode: input.Barcode,
		Name:    input.Name,
		Price:   input.Price,
		Stock:   input.Stock,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeDuplicate, "barcode already exists").
				WithDetails(map[string]string{"barcode": input.Barcode})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "insert product")
	}
	return product, nil
}

func (s *service) GetByBarcode(ctx context.Context, barcode string) (*models.Product, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "barcode is required")
	}

	product, err := s.repo.FindByBarcode(ctx, barcode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "load product")
	}
	return product, nil
}

func (s *service) List(ctx context.Context) ([]models.Product, error) {
	rows, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "list products")
	}
	return rows, nil
}

func (s *service) Update(ctx context.Context, barcode string, input UpdateProductInput) (*models.Product, error) {
	barcode = strings.TrimSpace(barcode)
	input.Name = strings.TrimSpace(input.Name)
	if err := validateFields(barcode, input.Name, input.Price, input.Stock); err != nil {
		return nil, err
	}

	matched, err := s.repo.Update(ctx, barcode, input.Name, input.Price, input.Stock)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "update product")
	}
	if !matched {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return s.GetByBarcode(ctx, barcode)
}

func (s *service) UpdateStock(ctx context.Context, barcode string, newStock int) error {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "barcode is required")
	}
	if newStock < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}

	matched, err := s.repo.UpdateStock(ctx, barcode, newStock)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "update stock")
	}
	if !matched {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return nil
}

func (s *service) DeleteByBarcode(ctx context.Context, barcode string) error {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "barcode is required")
	}

	matched, err := s.repo.DeleteByBarcode(ctx, barcode)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "delete product")
	}
	if !matched {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return nil
}

func (s *service) DeleteByID(ctx context.Context, id int64) error {
	if id <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "id must be positive")
	}

	matched, err := s.repo.DeleteByID(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "delete product")
	}
	if !matched {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return nil
}

func validateFields(barcode, name string, price float64, stock int) error {
	details := map[string]string{}
	if barcode == "" {
		details["barcode"] = "is required"
	}
	if name == "" {
		details["name"] = "is required"
	}
	if price <= 0 {
		details["price"] = "must be positive"
	}
	if stock < 0 {
		details["stock"] = "cannot be negative"
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid product").WithDetails(details)
	}
	return nil
}
