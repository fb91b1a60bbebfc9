package pricing

import (
	"math"

	"github.com/Simplici0/printshop-quotes/internal/catalog"
	"github.com/Simplici0/printshop-quotes/internal/money"
)

// MarginTargetFloor is the smallest denominator used by MARGIN_TARGET.
const MarginTargetFloor = 0.0001

// ApplyStrategy turns a cost base into a net price.
func ApplyStrategy(strategy catalog.PricingStrategy, base, markup, margin, dynamic float64) float64 {
	switch strategy {
	case catalog.StrategyCostMarginOnly:
		return base * (1 + margin + dynamic)
	case catalog.StrategyMarginTarget:
		return base / math.Max(1-(margin+dynamic), MarginTargetFloor)
	default:
		return base * (1 + markup) * (1 + margin + dynamic)
	}
}

// price resolves markup, margin, dynamic adjustment and step, then produces
// the final result.
func (q *quote) price(lk *lookups) *QuoteResult {
	p, cfg := q.product, q.config
	cat := q.category()

	var ov catalog.ProductCustomerOverride
	if lk.override != nil {
		ov = *lk.override
	}

	markup := FirstDefined(0,
		From(SourceOverride, ov.MarkupDefault),
		From(SourceProduct, p.MarkupDefault),
		From(SourceGlobal, cfg.MarkupOperational),
	)

	var ruleMargin *float64
	if rule, scope := ResolveMarginRule(lk.margins, q.now); rule != nil {
		m := rule.Margin
		ruleMargin = &m
		q.sources["marginRule"] = Source(scope)
	}
	margin := FirstDefined(0,
		From(SourceOverride, ov.MarginDefault),
		From(SourceProduct, p.MarginDefault),
		From(SourceRule, ruleMargin),
		From(SourceGlobal, cfg.MarginDefault),
	)

	base := q.subtotal + q.costSupplier

	var dynamic float64
	if rule, scope := ResolveDynamicRule(lk.dynamics, base, q.effQty); rule != nil {
		dynamic = rule.Adjustment
		q.sources["dynamic"] = Source(scope)
	}

	strategy := FirstDefined(catalog.StrategyCostMarkupMargin,
		From(SourceProduct, p.PricingStrategy),
		From(SourceCategory, cat.PricingStrategy),
		From(SourceGlobal, cfg.PricingStrategy),
	)
	step := FirstDefined(0,
		From(SourceOverride, ov.RoundingStep),
		From(SourceProduct, p.RoundingStep),
		From(SourceCategory, cat.RoundingStep),
		From(SourceGlobal, cfg.RoundingStep),
	)
	minPerPiece := FirstDefined(0,
		From(SourceOverride, ov.MinPricePerPiece),
		From(SourceProduct, p.MinPricePerPiece),
		From(SourceCategory, cat.MinPricePerPiece),
		From(SourceGlobal, cfg.MinPricePerPiece),
	)

	final := ApplyStrategy(strategy.Value, base, markup.Value, margin.Value, dynamic)
	if minPerPiece.Source != SourceDefault {
		final = math.Max(final, q.effQty*minPerPiece.Value)
	}
	final = money.RoundToStep(final, step.Value)

	var vatPercent, vatAmount float64
	if cfg.VatPercent != nil {
		vatPercent = *cfg.VatPercent
		vatAmount = final * vatPercent
	}
	gross := final + vatAmount

	q.sources["markup"] = markup.Source
	q.sources["margin"] = margin.Source
	q.sources["pricingStrategy"] = strategy.Source
	q.sources["step"] = step.Source
	q.sources["minPricePerPiece"] = minPerPiece.Source

	return &QuoteResult{
		Product: ProductSnapshot{
			ID:         p.ID,
			Name:       p.Name,
			CategoryID: productCategoryID(p),
			WidthMm:    p.WidthMm,
			HeightMm:   p.HeightMm,
		},
		Quantity:             q.quantity,
		EffectiveQuantity:    q.effQty,
		CostMat:              q.costMat,
		CostPrint:            q.costPrint,
		CostFinish:           q.costFinish,
		CostSupplier:         q.costSupplier,
		SubtotalProduction:   q.costMat + q.costPrint + q.costFinish,
		Subtotal:             q.subtotal,
		SubtotalWithSupplier: base,
		Markup:               markup.Value,
		Margin:               margin.Value,
		Dynamic:              dynamic,
		Step:                 step.Value,
		Strategies:           Strategies{Rounding: q.rounding.Value, Pricing: strategy.Value},
		SourcingMode:         q.sourcing,
		Final:                final,
		VatPercent:           vatPercent,
		VatAmount:            vatAmount,
		PriceGross:           gross,
		UnitNet:              final / q.effQty,
		UnitGross:            gross / q.effQty,
		MinOrderApplied:      q.minOrderApplied,
		MinOrderReason:       q.minOrderReason,
		Items:                q.items,
		Sources:              q.sources,
	}
}

func productCategoryID(p *catalog.Product) *int64 {
	if p.Category == nil {
		return nil
	}
	id := p.Category.ID
	return &id
}
