package pricing

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/Simplici0/printshop-quotes/internal/catalog"
	"github.com/Simplici0/printshop-quotes/internal/imposition"
	"github.com/Simplici0/printshop-quotes/internal/money"
)

// quote is the working state of one calculation.
type quote struct {
	product    *catalog.Product
	config     *catalog.ConfigGlobal
	customerID *int64
	groupID    *int64
	now        time.Time

	quantity        float64
	effQty          float64
	minOrderApplied bool
	minOrderReason  string

	sourcing   catalog.SourcingMode
	production bool
	supplier   bool
	rounding   Resolved[catalog.RoundingStrategy]

	costMat      float64
	costPrint    float64
	costFinish   float64
	costSupplier float64
	subtotal     float64
	items        []Item
	fallbacks    []string
	sources      map[string]Source
}

func newQuote(b *base, quantity float64, ov *Overrides) *quote {
	p, cfg := b.product, b.config
	q := &quote{
		product:    p,
		config:     cfg,
		customerID: b.customerID,
		groupID:    b.groupID,
		quantity:   quantity,
		effQty:     quantity,
		items:      make([]Item, 0),
		sources:    make(map[string]Source),
	}

	if p.MinOrderQty != nil && quantity < *p.MinOrderQty {
		q.effQty = *p.MinOrderQty
		q.minOrderApplied = true
		q.minOrderReason = fmt.Sprintf("minimum order quantity %s applied (requested %s)",
			formatNumber(*p.MinOrderQty), formatNumber(quantity))
	}

	switch {
	case ov.SourcingMode != nil:
		q.sourcing = *ov.SourcingMode
	case p.SourcingMode != nil:
		q.sourcing = *p.SourcingMode
	}
	q.production = q.sourcing != catalog.SourcingSupplier
	q.supplier = q.sourcing != catalog.SourcingInternal

	cat := q.category()
	q.rounding = FirstDefined(catalog.RoundEndOnly,
		From(SourceProduct, p.RoundingStrategy),
		From(SourceCategory, cat.RoundingStrategy),
		From(SourceGlobal, cfg.RoundingStrategy),
	)
	q.sources["roundingStrategy"] = q.rounding.Source
	return q
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// line applies per-line rounding when the strategy asks for it.
func (q *quote) line(cost float64) float64 {
	if q.rounding.Value == catalog.RoundPerStep {
		return money.RoundMoney2(cost)
	}
	return cost
}

func (q *quote) category() catalog.Category {
	if q.product.Category == nil {
		return catalog.Category{}
	}
	return *q.product.Category
}

// lossFactor resolves a loss factor from the most specific level down to
// the global config, defaulting to 0.
func (q *quote) lossFactor(levels ...Candidate[float64]) Resolved[float64] {
	levels = append(levels,
		From(SourceCategory, q.category().LossFactor),
		From(SourceGlobal, q.config.LossFactor),
	)
	return FirstDefined(0, levels...)
}

// aggregate computes every cost line and the production subtotal.
func (q *quote) aggregate(lk *lookups) {
	if q.production {
		for i, pm := range q.product.Materials {
			q.priceSource("material", pm.Material.ID, lk.materials[i])
			q.material(pm, lk.materials[i])
		}
		if q.product.Printing != nil {
			q.priceSource("printing", q.product.Printing.ID, lk.printing)
			q.printing(*q.product.Printing, lk.printing)
		}
		for i, pf := range q.product.Finishes {
			q.priceSource("finish", pf.Finish.ID, lk.finishes[i])
			q.finish(pf, lk.finishes[i])
		}
	}
	if q.supplier {
		for _, sp := range q.product.SupplierPrices {
			q.supplierLine(sp)
		}
	}

	q.subtotal = q.costMat + q.costPrint + q.costFinish
	if q.production && q.product.MinOrderValue != nil && *q.product.MinOrderValue > q.subtotal {
		reason := fmt.Sprintf("minimum order value %s applied (subtotal %s)",
			formatNumber(*q.product.MinOrderValue), formatNumber(q.subtotal))
		q.subtotal = *q.product.MinOrderValue
		q.minOrderApplied = true
		if q.minOrderReason != "" {
			q.minOrderReason += "; " + reason
		} else {
			q.minOrderReason = reason
		}
	}
}

func (q *quote) priceSource(kind string, id int64, hit priceHit) {
	if hit.price != nil {
		q.sources[fmt.Sprintf("%sPrice.%d", kind, id)] = hit.source
	}
}

func (q *quote) material(pm catalog.ProductMaterial, hit priceHit) {
	m := pm.Material
	loss := q.lossFactor(
		From(SourceComposition, pm.LossFactor),
		From(SourceEntity, m.LossFactor),
	)

	var (
		qty        float64
		qtyPerUnit = pm.QtyPerUnit
		imp        *imposition.Result
	)
	if fit, ok := q.impose(pm); ok {
		sheets := money.CeilInt(q.effQty / float64(fit.PiecesPerSheet))
		qty = money.CeilInt(sheets * (1 + loss.Value))
		qtyPerUnit = qty / q.effQty
		imp = &fit
	} else {
		qty = q.effQty * pm.QtyPerUnit * (1 + pm.WasteFactor) * (1 + loss.Value)
		if m.Unit == catalog.UnitSheet {
			qty = money.CeilInt(qty)
		}
	}

	unitCost := hit.value(m.UnitCost)
	total := q.line(unitCost * qty)
	q.costMat += total

	name := m.Name
	if pm.Variant != nil && pm.Variant.Label != "" {
		name += " " + pm.Variant.Label
	}
	q.items = append(q.items, Item{
		Type:       ItemMaterial,
		Name:       name,
		Quantity:   qty,
		QtyPerUnit: qtyPerUnit,
		Unit:       m.Unit,
		UnitCost:   unitCost,
		TotalCost:  total,
		Imposition: imp,
	})
}

// impose runs the imposition calculator for sheet materials with a sized
// variant on a sized product. ok is false when it does not apply or when
// the piece does not fit.
func (q *quote) impose(pm catalog.ProductMaterial) (imposition.Result, bool) {
	p := q.product
	v := pm.Variant
	if pm.Material.Unit != catalog.UnitSheet || v == nil || v.WidthMm == nil || v.HeightMm == nil ||
		p.WidthMm == nil || p.HeightMm == nil {
		return imposition.Result{}, false
	}
	fit := imposition.Fit(imposition.Input{
		PieceWidth:  *p.WidthMm,
		PieceHeight: *p.HeightMm,
		SheetWidth:  *v.WidthMm,
		SheetHeight: *v.HeightMm,
		BleedMm:     imposition.DefaultBleedMm,
		GutterMm:    imposition.DefaultGutterMm,
	})
	if fit.PiecesPerSheet == 0 {
		q.fallbacks = append(q.fallbacks, pm.Material.Name)
		return fit, false
	}
	return fit, true
}

func (q *quote) printing(pr catalog.Printing, hit priceHit) {
	loss := q.lossFactor(From(SourceEntity, pr.LossFactor))

	yield := 1.0
	if pr.Yield != nil && *pr.Yield > 0 {
		yield = *pr.Yield
	}
	baseRuns := money.CeilInt(q.effQty / yield)
	runs := money.CeilInt(baseRuns * (1 + loss.Value))

	unitPrice := hit.value(pr.UnitPrice)
	byQuantity := unitPrice * runs

	var setup float64
	switch pr.SetupMode {
	case catalog.SetupTimeXRate:
		minutes := FirstDefined(0, From(SourceEntity, pr.SetupMinutes), From(SourceGlobal, q.config.SetupTimeMin))
		rate := FirstDefined(0, From(SourceGlobal, q.config.PrintingHourCost))
		setup = minutes.Value / 60 * rate.Value
	default:
		if pr.SetupFlatFee != nil {
			setup = *pr.SetupFlatFee
		}
	}

	cost := byQuantity + setup
	if pr.MinFee != nil {
		cost = math.Max(cost, *pr.MinFee)
	}
	total := q.line(cost)
	q.costPrint += total
	q.items = append(q.items, Item{
		Type:      ItemPrinting,
		Name:      pr.Name,
		Quantity:  runs,
		Unit:      catalog.UnitUnit,
		UnitCost:  unitPrice,
		TotalCost: total,
	})
}

func (q *quote) finish(pf catalog.ProductFinish, hit priceHit) {
	f := pf.Finish
	baseCost := f.BaseCost
	if pf.CostOverride != nil {
		baseCost = *pf.CostOverride
	}
	baseCost = hit.value(baseCost)

	calc := f.CalcType
	if pf.CalcType != nil {
		calc = *pf.CalcType
	}
	if calc == "" {
		calc = catalog.CalcPerUnit
	}
	qtyPerUnit := 1.0
	if pf.QtyPerUnit != nil {
		qtyPerUnit = *pf.QtyPerUnit
	}

	qty := q.effQty * qtyPerUnit
	if calc == catalog.CalcPerM2 && f.AreaStepM2 != nil && *f.AreaStepM2 > 0 {
		qty = money.CeilInt(qty / *f.AreaStepM2) * *f.AreaStepM2
	}
	loss := q.lossFactor(From(SourceEntity, f.LossFactor))
	qty = money.CeilInt(qty * (1 + loss.Value))

	var cost float64
	switch calc {
	case catalog.CalcPerLot:
		cost = baseCost
	case catalog.CalcPerHour:
		cost = baseCost * qtyPerUnit
	default:
		cost = baseCost * qty
	}
	if f.MinFee != nil {
		cost = math.Max(cost, *f.MinFee)
	}
	if f.MinPerPiece != nil {
		cost = math.Max(cost, q.effQty * *f.MinPerPiece)
	}

	total := q.line(cost)
	q.costFinish += total

	itemQty := qty
	if calc == catalog.CalcPerLot {
		itemQty = 1
	}
	q.items = append(q.items, Item{
		Type:      ItemFinish,
		Name:      f.Name,
		Quantity:  itemQty,
		Unit:      calcUnit(calc),
		UnitCost:  baseCost,
		TotalCost: total,
	})
}

func calcUnit(c catalog.CalcType) catalog.Unit {
	switch c {
	case catalog.CalcPerM2:
		return catalog.UnitM2
	case catalog.CalcPerLot:
		return catalog.UnitLot
	case catalog.CalcPerHour:
		return catalog.UnitHour
	}
	return catalog.UnitUnit
}

func (q *quote) supplierLine(sp catalog.SupplierPrice) {
	var qty float64
	switch sp.Unit {
	case catalog.UnitM2:
		qty = q.areaM2() * q.effQty
	case catalog.UnitLot:
		qty = 1
	default:
		qty = q.effQty
	}
	total := q.line(sp.UnitCost * qty)
	q.costSupplier += total
	q.items = append(q.items, Item{
		Type:      ItemOther,
		Name:      "Fornecedor: " + sp.SupplierName,
		Quantity:  qty,
		Unit:      sp.Unit,
		UnitCost:  sp.UnitCost,
		TotalCost: total,
	})
}

// areaM2 is the area of one piece. Dimensions come from the product, or
// from its widthMm/heightMm attributes when the columns are empty.
func (q *quote) areaM2() float64 {
	p := q.product
	var w, h float64
	if p.WidthMm != nil {
		w = *p.WidthMm
	} else {
		w = money.ToNumber(p.Attributes["widthMm"])
	}
	if p.HeightMm != nil {
		h = *p.HeightMm
	} else {
		h = money.ToNumber(p.Attributes["heightMm"])
	}
	return w * h / 1_000_000
}
