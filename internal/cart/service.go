package cart

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/storecashier/cashier-backend/internal/products"
	pkgerrors "github.com/storecashier/cashier-backend/pkg/errors"
	"github.com/storecashier/cashier-backend/pkg/logger"
	"github.com/storecashier/cashier-backend/pkg/money"
)

// Service resolves barcodes against the product catalog and maintains
// per-session carts.
type Service interface {
	Scan(ctx context.Context, sessionID, barcode string) (*View, error)
	Get(ctx context.Context, sessionID string) (*View, error)
	RemoveLine(ctx context.Context, sessionID string, index int) (*View, error)
	Clear(ctx context.Context, sessionID string) (*View, error)
	Cart(sessionID string) *Cart
	Drop(sessionID string)
}

// View is the read model handed back after every cart mutation.
type View struct {
	SessionID string `json:"session_id"`
	Lines     []Line `json:"lines"`
	Total     string `json:"total"`
}

type service struct {
	products products.Service
	registry *Registry
	logg     *logger.Logger
}

func NewService(productSvc products.Service, logg *logger.Logger) (Service, error) {
	if productSvc == nil {
		return nil, fmt.Errorf("product service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		products: productSvc,
		registry: NewRegistry(),
		logg:     logg,
	}, nil
}

func (s *service) Scan(ctx context.Context, sessionID, barcode string) (*View, error) {
	if barcode == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "barcode is required")
	}

	ctx = s.logg.WithSessionID(ctx, sessionID)
	ctx = s.logg.WithBarcode(ctx, barcode)

	product, err := s.products.GetByBarcode(ctx, barcode)
	if err != nil {
		return nil, err
	}

	cart := s.registry.GetOrCreate(sessionID)
	cart.AddOrMerge(*product)
	s.logg.Info(ctx, "product scanned into cart")

	return s.view(sessionID, cart), nil
}

func (s *service) Get(_ context.Context, sessionID string) (*View, error) {
	cart := s.registry.GetOrCreate(sessionID)
	return s.view(sessionID, cart), nil
}

func (s *service) RemoveLine(ctx context.Context, sessionID string, index int) (*View, error) {
	cart := s.registry.Get(sessionID)
	if cart == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart session not found")
	}

	cart.Remove(index)
	s.logg.Info(s.logg.WithSessionID(ctx, sessionID), "cart line removed")
	return s.view(sessionID, cart), nil
}

func (s *service) Clear(ctx context.Context, sessionID string) (*View, error) {
	cart := s.registry.GetOrCreate(sessionID)
	cart.Clear()
	s.logg.Info(s.logg.WithSessionID(ctx, sessionID), "cart cleared")
	return s.view(sessionID, cart), nil
}

// Cart exposes the raw aggregate for settlement.
func (s *service) Cart(sessionID string) *Cart {
	return s.registry.Get(sessionID)
}

// Drop discards the session after checkout completes.
func (s *service) Drop(sessionID string) {
	s.registry.Delete(sessionID)
}

func (s *service) view(sessionID string, cart *Cart) *View {
	lines := cart.Lines()
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Total())
	}
	return &View{
		SessionID: sessionID,
		Lines:     lines,
		Total:     money.Format(total),
	}
}
