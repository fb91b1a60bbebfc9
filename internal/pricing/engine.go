// Package pricing turns a product configuration and a quantity into a priced
// quote: it aggregates material, printing, finish and supplier costs, then
// applies markup, margin, dynamic adjustments, rounding and VAT.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/Simplici0/printshop-quotes/internal/catalog"
	"github.com/Simplici0/printshop-quotes/internal/imposition"
)

var (
	// ErrInvalidProductID is returned for a product id below 1.
	ErrInvalidProductID = errors.New("product id must be a positive integer")
	// ErrInvalidQuantity is returned for a zero, negative or non-finite quantity.
	ErrInvalidQuantity = errors.New("quantity must be a positive finite number")
	// ErrConfigMissing is returned when the global pricing configuration
	// cannot be loaded.
	ErrConfigMissing = errors.New("pricing configuration missing")
)

// AdditionalFinish adds a finish to a single quote without touching the product.
type AdditionalFinish struct {
	FinishID   int64    `json:"finishId" validate:"required,gt=0"`
	QtyPerUnit *float64 `json:"qtyPerUnit,omitempty" validate:"omitempty,gte=0"`
}

// Overrides carries per-quote adjustments. Every field is optional.
type Overrides struct {
	CustomerID         *int64                `json:"customerId,omitempty" validate:"omitempty,gt=0"`
	MaterialVariantID  *int64                `json:"materialVariantId,omitempty" validate:"omitempty,gt=0"`
	WidthOverride      *float64              `json:"widthOverride,omitempty" validate:"omitempty,gt=0"`
	HeightOverride     *float64              `json:"heightOverride,omitempty" validate:"omitempty,gt=0"`
	AdditionalFinishes []AdditionalFinish    `json:"additionalFinishes,omitempty" validate:"omitempty,dive"`
	SourcingMode       *catalog.SourcingMode `json:"sourcingMode,omitempty" validate:"omitempty,oneof=INTERNAL SUPPLIER HYBRID"`
}

// ItemType classifies a cost line.
type ItemType string

const (
	ItemMaterial ItemType = "MATERIAL"
	ItemPrinting ItemType = "PRINTING"
	ItemFinish   ItemType = "FINISH"
	ItemOther    ItemType = "OTHER"
)

// Item is one line of the cost breakdown. QtyPerUnit is set on material
// lines; with imposition it is the sheets actually bought per piece.
type Item struct {
	Type       ItemType           `json:"type"`
	Name       string             `json:"name"`
	Quantity   float64            `json:"quantity"`
	QtyPerUnit float64            `json:"qtyPerUnit,omitempty"`
	Unit       catalog.Unit       `json:"unit"`
	UnitCost   float64            `json:"unitCost"`
	TotalCost  float64            `json:"totalCost"`
	Imposition *imposition.Result `json:"imposition,omitempty"`
}

// ProductSnapshot is the part of the product echoed back in a quote.
type ProductSnapshot struct {
	ID         int64    `json:"id"`
	Name       string   `json:"name"`
	CategoryID *int64   `json:"categoryId,omitempty"`
	WidthMm    *float64 `json:"widthMm,omitempty"`
	HeightMm   *float64 `json:"heightMm,omitempty"`
}

// Strategies reports the strategies used for a quote.
type Strategies struct {
	Rounding catalog.RoundingStrategy `json:"rounding"`
	Pricing  catalog.PricingStrategy  `json:"pricing"`
}

// QuoteResult is the full engine output.
type QuoteResult struct {
	Product              ProductSnapshot      `json:"product"`
	Quantity             float64              `json:"quantity"`
	EffectiveQuantity    float64              `json:"effectiveQuantity"`
	Params               map[string]any       `json:"params,omitempty"`
	CostMat              float64              `json:"costMat"`
	CostPrint            float64              `json:"costPrint"`
	CostFinish           float64              `json:"costFinish"`
	CostSupplier         float64              `json:"costSupplier"`
	SubtotalProduction   float64              `json:"subtotalProduction"`
	Subtotal             float64              `json:"subtotal"`
	SubtotalWithSupplier float64              `json:"subtotalWithSupplier"`
	Markup               float64              `json:"markup"`
	Margin               float64              `json:"margin"`
	Dynamic              float64              `json:"dynamic"`
	Step                 float64              `json:"step"`
	Strategies           Strategies           `json:"strategies"`
	SourcingMode         catalog.SourcingMode `json:"sourcingMode,omitempty"`
	Final                float64              `json:"final"`
	VatPercent           float64              `json:"vatPercent"`
	VatAmount            float64              `json:"vatAmount"`
	PriceGross           float64              `json:"priceGross"`
	UnitNet              float64              `json:"unitNet"`
	UnitGross            float64              `json:"unitGross"`
	MinOrderApplied      bool                 `json:"minOrderApplied"`
	MinOrderReason       string               `json:"minOrderReason,omitempty"`
	Items                []Item               `json:"items"`
	Sources              map[string]Source    `json:"sources"`
}

// Engine computes quotes against a catalog store. It holds no per-quote
// state and is safe for concurrent use.
type Engine struct {
	store       catalog.Store
	logger      *zap.Logger
	matrixLimit int
	now         func() time.Time
}

// New returns an engine reading from store. A nil logger discards output.
func New(store catalog.Store, logger *zap.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{store: store, logger: logger, matrixLimit: DefaultMatrixConcurrency, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CalcQuote prices quantity units of a product. params is echoed back
// untouched; ov may be nil.
func (e *Engine) CalcQuote(ctx context.Context, productID int64, quantity float64, params map[string]any, ov *Overrides) (*QuoteResult, error) {
	start := time.Now()
	res, err := e.calcQuote(ctx, productID, quantity, params, ov)
	quoteDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		quoteErrors.WithLabelValues(errorReason(err)).Inc()
		return nil, err
	}
	quotesTotal.WithLabelValues(string(res.Strategies.Pricing)).Inc()
	return res, nil
}

func (e *Engine) calcQuote(ctx context.Context, productID int64, quantity float64, params map[string]any, ov *Overrides) (*QuoteResult, error) {
	if productID <= 0 {
		return nil, ErrInvalidProductID
	}
	if math.IsNaN(quantity) || math.IsInf(quantity, 0) || quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if ov == nil {
		ov = &Overrides{}
	}

	b, err := e.loadBase(ctx, productID, ov)
	if err != nil {
		return nil, err
	}
	q := newQuote(b, quantity, ov)
	q.now = e.now()
	if q.minOrderReason != "" {
		e.logger.Debug("minimum order quantity applied",
			zap.Int64("product_id", productID),
			zap.Float64("requested", quantity),
			zap.Float64("effective", q.effQty))
	}

	lk, err := e.loadLookups(ctx, q)
	if err != nil {
		return nil, err
	}

	q.aggregate(lk)
	for _, line := range q.fallbacks {
		e.logger.Debug("imposition did not fit, using manual quantity",
			zap.Int64("product_id", productID), zap.String("material", line))
	}
	res := q.price(lk)
	res.Params = params

	e.logger.Debug("quote calculated",
		zap.Int64("product_id", productID),
		zap.Float64("quantity", quantity),
		zap.String("strategy", string(res.Strategies.Pricing)),
		zap.Float64("final", res.Final))
	return res, nil
}

func errorReason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidProductID), errors.Is(err, ErrInvalidQuantity):
		return "invalid_input"
	case errors.Is(err, catalog.ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConfigMissing):
		return "config_missing"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	}
	return "store"
}

func wrapStore(what string, err error) error {
	return fmt.Errorf("load %s: %w", what, err)
}
