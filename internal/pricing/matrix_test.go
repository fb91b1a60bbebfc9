package pricing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Simplici0/printshop-quotes/internal/catalog"
	"github.com/Simplici0/printshop-quotes/internal/money"
)

func TestMatrixKeepsInputOrder(t *testing.T) {
	s := newFlyerStore()
	s.Config.VatPercent = money.Ptr(0.23)
	e := New(s, zaptest.NewLogger(t), WithMatrixConcurrency(2))

	quantities := []float64{1000, 100, 500, 250}
	rows, err := e.Matrix(context.Background(), flyerID, quantities, nil, nil)
	require.NoError(t, err)
	require.Len(t, rows, len(quantities))

	for i, qty := range quantities {
		res, err := e.CalcQuote(context.Background(), flyerID, qty, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, MatrixRow{
			Quantity:   qty,
			PriceNet:   res.Final,
			PriceGross: res.PriceGross,
			UnitGross:  res.UnitGross,
		}, rows[i])
	}
	assert.InDelta(t, 23.40, rows[1].PriceNet, 1e-9)
	assert.InDelta(t, 28.782, rows[1].PriceGross, 1e-9)
}

func TestMatrixRejectsBadQuantities(t *testing.T) {
	e := New(newFlyerStore(), zaptest.NewLogger(t))
	ctx := context.Background()

	_, err := e.Matrix(ctx, flyerID, nil, nil, nil)
	assert.ErrorIs(t, err, ErrNoQuantities)

	_, err = e.Matrix(ctx, flyerID, []float64{100, 200, 100}, nil, nil)
	assert.ErrorIs(t, err, ErrDuplicateQuantity)

	_, err = e.Matrix(ctx, flyerID, []float64{100, 0}, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = e.Matrix(ctx, 0, []float64{100}, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidProductID)

	_, err = e.Matrix(ctx, 404, []float64{100, 200}, nil, nil)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestMatrixSharesOverrides(t *testing.T) {
	s := newFlyerStore()
	s.Prices = []catalog.CustomerPrice{
		{ID: 1, Kind: catalog.PriceMaterial, CustomerID: ptr(customerID), EntityID: paperID, Value: 0.05, Priority: 1, IsCurrent: true},
	}
	e := New(s, nil)

	rows, err := e.Matrix(context.Background(), flyerID, []float64{100, 200}, nil, &Overrides{CustomerID: ptr(customerID)})
	require.NoError(t, err)
	// (5 + 5) * 1.56 and (10 + 10) * 1.56, rounded to 0.05
	assert.InDelta(t, 15.60, rows[0].PriceNet, 1e-9)
	assert.InDelta(t, 31.20, rows[1].PriceNet, 1e-9)
}
