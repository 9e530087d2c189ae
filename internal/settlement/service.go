package settlement

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/storecashier/cashier-backend/internal/cart"
	"github.com/storecashier/cashier-backend/internal/products"
	pkgerrors "github.com/storecashier/cashier-backend/pkg/errors"
	"github.com/storecashier/cashier-backend/pkg/logger"
	"github.com/storecashier/cashier-backend/pkg/metrics"
	"github.com/storecashier/cashier-backend/pkg/money"
)

// Policy controls how a settlement run reacts to a line that cannot be
// applied.
type Policy string

const (
	// PolicyFailFast aborts on the first failed line.
	PolicyFailFast Policy = "fail_fast"
	// PolicyContinue attempts every line and reports all failures.
	// Either way the whole run rolls back when any line failed.
	PolicyContinue Policy = "continue"
)

func ParsePolicy(value string) (Policy, error) {
	switch Policy(value) {
	case PolicyFailFast, PolicyContinue:
		return Policy(value), nil
	case "":
		return PolicyFailFast, nil
	}
	return "", fmt.Errorf("unknown settlement policy %q", value)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service commits a cart: every line's quantity is subtracted from its
// product's stock in one transaction, then the cart is emptied.
type Service interface {
	Confirm(ctx context.Context, sessionID string) (*Result, error)
}

// Result summarizes a committed settlement.
type Result struct {
	SessionID string `json:"session_id"`
	LineCount int    `json:"line_count"`
	ItemCount int    `json:"item_count"`
	Total     string `json:"total"`
}

type service struct {
	carts  cart.Service
	repo   *products.Repository
	tx     txRunner
	policy Policy
	logg   *logger.Logger
	ops    *metrics.OperationMetrics
}

func NewService(carts cart.Service, repo *products.Repository, tx txRunner, policy Policy, logg *logger.Logger, ops *metrics.OperationMetrics) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if policy != PolicyFailFast && policy != PolicyContinue {
		return nil, fmt.Errorf("unknown settlement policy %q", policy)
	}
	return &service{
		carts:  carts,
		repo:   repo,
		tx:     tx,
		policy: policy,
		logg:   logg,
		ops:    ops,
	}, nil
}

func (s *service) Confirm(ctx context.Context, sessionID string) (*Result, error) {
	ctx = s.logg.WithSessionID(ctx, sessionID)
	started := time.Now()

	result, err := s.confirm(ctx, sessionID)
	s.ops.ObserveDuration("settlement", time.Since(started))
	if err != nil {
		s.ops.IncFailure("settlement")
		return nil, err
	}
	s.ops.IncSuccess("settlement")
	return result, nil
}

func (s *service) confirm(ctx context.Context, sessionID string) (*Result, error) {
	active := s.carts.Cart(sessionID)
	if active == nil || active.Len() == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	lines := active.Lines()
	total := money.Format(active.Total())

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		var failed []string
		var lineErrs error
		for _, line := range lines {
			if err := applyLine(ctx, txRepo, line); err != nil {
				failed = append(failed, line.Product.Barcode)
				lineErrs = multierr.Append(lineErrs, err)
				if s.policy == PolicyFailFast {
					break
				}
			}
		}
		if lineErrs != nil {
			return pkgerrors.Wrap(pkgerrors.CodeStorage, lineErrs, "settlement failed, no stock was changed").
				WithDetails(map[string]any{"failed_barcodes": failed})
		}
		return nil
	})
	if err != nil {
		s.logg.Error(ctx, "settlement rolled back", err)
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "settlement failed")
	}

	active.Clear()
	s.logg.Info(ctx, "settlement committed")

	itemCount := 0
	for _, line := range lines {
		itemCount += line.Qty
	}
	return &Result{
		SessionID: sessionID,
		LineCount: len(lines),
		ItemCount: itemCount,
		Total:     total,
	}, nil
}

// applyLine subtracts the line quantity from the product's stock.
// Stock is allowed to go negative; physical inventory does not wait
// for the database to catch up.
func applyLine(ctx context.Context, repo *products.Repository, line cart.Line) error {
	current, err := repo.FindByBarcode(ctx, line.Product.Barcode)
	if err != nil {
		return fmt.Errorf("load %s: %w", line.Product.Barcode, err)
	}

	updated, err := repo.UpdateStock(ctx, line.Product.Barcode, current.Stock-line.Qty)
	if err != nil {
		return fmt.Errorf("update %s: %w", line.Product.Barcode, err)
	}
	if !updated {
		return fmt.Errorf("update %s: product disappeared", line.Product.Barcode)
	}
	return nil
}
