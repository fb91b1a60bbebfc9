package pricing

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrNoQuantities is returned for a matrix without quantities.
	ErrNoQuantities = errors.New("at least one quantity is required")
	// ErrDuplicateQuantity is returned when a matrix repeats a quantity.
	ErrDuplicateQuantity = errors.New("duplicate quantity")
)

// DefaultMatrixConcurrency bounds parallel engine calls per matrix.
const DefaultMatrixConcurrency = 4

// MatrixRow is one quantity of a price table.
type MatrixRow struct {
	Quantity   float64 `json:"quantity"`
	PriceNet   float64 `json:"priceNet"`
	PriceGross float64 `json:"priceGross"`
	UnitGross  float64 `json:"unitGross"`
}

// Option configures an Engine.
type Option func(*Engine)

// WithMatrixConcurrency sets how many quantities of a matrix are priced at
// once. Values below 1 are ignored.
func WithMatrixConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.matrixLimit = n
		}
	}
}

// WithNow sets the clock used to decide which margin rules are in force.
// A nil func is ignored.
func WithNow(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// Matrix prices the same configuration at every quantity. Rows come back in
// the order of quantities. Any failing quantity fails the whole matrix.
func (e *Engine) Matrix(ctx context.Context, productID int64, quantities []float64, params map[string]any, ov *Overrides) ([]MatrixRow, error) {
	if productID <= 0 {
		return nil, ErrInvalidProductID
	}
	if len(quantities) == 0 {
		return nil, ErrNoQuantities
	}
	seen := make(map[float64]struct{}, len(quantities))
	for _, qty := range quantities {
		if math.IsNaN(qty) || math.IsInf(qty, 0) || qty <= 0 {
			return nil, fmt.Errorf("%w: %v", ErrInvalidQuantity, qty)
		}
		if _, dup := seen[qty]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateQuantity, formatNumber(qty))
		}
		seen[qty] = struct{}{}
	}

	rows := make([]MatrixRow, len(quantities))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.matrixLimit)
	for i, qty := range quantities {
		g.Go(func() error {
			res, err := e.CalcQuote(gctx, productID, qty, params, ov)
			if err != nil {
				return fmt.Errorf("quantity %s: %w", formatNumber(qty), err)
			}
			rows[i] = MatrixRow{
				Quantity:   qty,
				PriceNet:   res.Final,
				PriceGross: res.PriceGross,
				UnitGross:  res.UnitGross,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rows, nil
}
