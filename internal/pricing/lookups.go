package pricing

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Simplici0/printshop-quotes/internal/catalog"
)

// base is everything a quote needs before override lookups can start.
type base struct {
	product    *catalog.Product
	config     *catalog.ConfigGlobal
	customerID *int64
	groupID    *int64
}

// loadBase fetches the product, the global config, the customer and the
// entities referenced by structural overrides in parallel, then applies
// those overrides to a private copy of the product.
func (e *Engine) loadBase(ctx context.Context, productID int64, ov *Overrides) (*base, error) {
	var (
		product  *catalog.Product
		config   *catalog.ConfigGlobal
		customer *catalog.Customer
		variant  *catalog.MaterialVariant
		finishes = make([]*catalog.Finish, len(ov.AdditionalFinishes))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := e.store.GetProduct(gctx, productID)
		if err != nil {
			return wrapStore("product", err)
		}
		product = p
		return nil
	})
	g.Go(func() error {
		c, err := e.store.GetConfig(gctx)
		if errors.Is(err, catalog.ErrNotFound) {
			return fmt.Errorf("%w (%v)", ErrConfigMissing, err)
		}
		if err != nil {
			return wrapStore("config", err)
		}
		config = c
		return nil
	})
	if ov.CustomerID != nil {
		id := *ov.CustomerID
		g.Go(func() error {
			c, err := e.store.GetCustomer(gctx, id)
			if errors.Is(err, catalog.ErrNotFound) {
				e.logger.Debug("customer not found, pricing without group", zap.Int64("customer_id", id))
				return nil
			}
			if err != nil {
				return wrapStore("customer", err)
			}
			customer = c
			return nil
		})
	}
	if ov.MaterialVariantID != nil {
		id := *ov.MaterialVariantID
		g.Go(func() error {
			v, err := e.store.GetMaterialVariant(gctx, id)
			if errors.Is(err, catalog.ErrNotFound) {
				e.logger.Debug("material variant not found, keeping composition", zap.Int64("variant_id", id))
				return nil
			}
			if err != nil {
				return wrapStore("material variant", err)
			}
			variant = v
			return nil
		})
	}
	for i, af := range ov.AdditionalFinishes {
		g.Go(func() error {
			f, err := e.store.GetFinish(gctx, af.FinishID)
			if errors.Is(err, catalog.ErrNotFound) {
				e.logger.Debug("additional finish not found, skipped", zap.Int64("finish_id", af.FinishID))
				return nil
			}
			if err != nil {
				return wrapStore("finish", err)
			}
			finishes[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	p := product.Clone()
	applyStructural(p, variant, finishes, ov)

	b := &base{product: p, config: config, customerID: ov.CustomerID}
	if customer != nil {
		b.groupID = customer.GroupID
	}
	return b, nil
}

// applyStructural swaps the variant into the composition of the same
// material (or the first composition), replaces dimensions and appends
// ad-hoc finishes with ID 0.
func applyStructural(p *catalog.Product, variant *catalog.MaterialVariant, finishes []*catalog.Finish, ov *Overrides) {
	if variant != nil && len(p.Materials) > 0 {
		idx := 0
		for i, m := range p.Materials {
			if m.Material.ID == variant.MaterialID {
				idx = i
				break
			}
		}
		v := *variant
		p.Materials[idx].Variant = &v
	}
	if ov.WidthOverride != nil {
		w := *ov.WidthOverride
		p.WidthMm = &w
	}
	if ov.HeightOverride != nil {
		h := *ov.HeightOverride
		p.HeightMm = &h
	}
	for i, f := range finishes {
		if f == nil {
			continue
		}
		p.Finishes = append(p.Finishes, catalog.ProductFinish{
			Finish:     *f,
			QtyPerUnit: ov.AdditionalFinishes[i].QtyPerUnit,
		})
	}
}

type priceHit struct {
	price  *catalog.CustomerPrice
	source Source
}

// value returns the override value or fallback.
func (h priceHit) value(fallback float64) float64 {
	if h.price == nil {
		return fallback
	}
	return h.price.Value
}

// lookups holds every override needed by one quote. Slices are indexed like
// the product's compositions.
type lookups struct {
	materials []priceHit
	printing  priceHit
	finishes  []priceHit
	override  *catalog.ProductCustomerOverride
	margins   ScopedMarginRules
	dynamics  []DynamicScope
}

func (e *Engine) loadLookups(ctx context.Context, q *quote) (*lookups, error) {
	p := q.product
	lk := &lookups{
		materials: make([]priceHit, len(p.Materials)),
		finishes:  make([]priceHit, len(p.Finishes)),
		dynamics:  dynamicScopes(p, q.customerID, q.groupID),
	}

	g, gctx := errgroup.WithContext(ctx)

	if q.customerID != nil {
		customerID, groupID := *q.customerID, q.groupID
		price := func(kind catalog.PriceKind, entityID int64, sides *int, dst *priceHit) {
			g.Go(func() error {
				rows, err := e.store.CustomerPrices(gctx, catalog.PriceQuery{
					Kind:       kind,
					EntityID:   entityID,
					CustomerID: customerID,
					GroupID:    groupID,
				})
				if err != nil {
					return wrapStore("customer prices", err)
				}
				dst.price, dst.source = BestCustomerPrice(rows, customerID, groupID, sides)
				return nil
			})
		}
		for i, m := range p.Materials {
			price(catalog.PriceMaterial, m.Material.ID, nil, &lk.materials[i])
		}
		if p.Printing != nil {
			// a product without print sides prints one side
			sides := max(p.PrintSides, 1)
			price(catalog.PricePrinting, p.Printing.ID, &sides, &lk.printing)
		}
		for i, f := range p.Finishes {
			price(catalog.PriceFinish, f.Finish.ID, nil, &lk.finishes[i])
		}
		g.Go(func() error {
			rows, err := e.store.ProductOverrides(gctx, customerID, p.ID)
			if err != nil {
				return wrapStore("product overrides", err)
			}
			lk.override = BestProductOverride(rows)
			return nil
		})
	}

	margin := func(scope catalog.Scope, refID int64, dst *[]catalog.MarginRule) {
		g.Go(func() error {
			rows, err := e.store.MarginRules(gctx, scope, refID)
			if err != nil {
				return wrapStore("margin rules", err)
			}
			*dst = rows
			return nil
		})
	}
	margin(catalog.ScopeProduct, p.ID, &lk.margins.Product)
	if p.Category != nil {
		margin(catalog.ScopeCategory, p.Category.ID, &lk.margins.Category)
	}
	margin(catalog.ScopeGlobal, 0, &lk.margins.Global)

	for i := range lk.dynamics {
		d := &lk.dynamics[i]
		refID := dynamicRef(d.Scope, p, q.customerID, q.groupID)
		g.Go(func() error {
			rows, err := e.store.DynamicRules(gctx, d.Scope, refID)
			if err != nil {
				return wrapStore("dynamic margin rules", err)
			}
			d.Rules = rows
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return lk, nil
}

// dynamicScopes lists the dynamic rule scopes that apply to a quote, most
// specific first.
func dynamicScopes(p *catalog.Product, customerID, groupID *int64) []DynamicScope {
	scopes := make([]DynamicScope, 0, 5)
	if customerID != nil {
		scopes = append(scopes, DynamicScope{Scope: catalog.ScopeCustomer})
	}
	if groupID != nil {
		scopes = append(scopes, DynamicScope{Scope: catalog.ScopeCustomerGroup})
	}
	scopes = append(scopes, DynamicScope{Scope: catalog.ScopeProduct})
	if p.Category != nil {
		scopes = append(scopes, DynamicScope{Scope: catalog.ScopeCategory})
	}
	return append(scopes, DynamicScope{Scope: catalog.ScopeGlobal})
}

func dynamicRef(scope catalog.Scope, p *catalog.Product, customerID, groupID *int64) int64 {
	switch scope {
	case catalog.ScopeCustomer:
		return *customerID
	case catalog.ScopeCustomerGroup:
		return *groupID
	case catalog.ScopeProduct:
		return p.ID
	case catalog.ScopeCategory:
		return p.CategoryID()
	}
	return 0
}
