package catalog

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// PriceQuery selects customer price overrides for one catalog entity.
type PriceQuery struct {
	Kind       PriceKind
	EntityID   int64
	CustomerID int64
	GroupID    *int64
}

// Store is the read side of the catalog used by the quote engine.
//
// Override lookups return only current/active rows. CustomerPrices and
// DynamicRules are ordered by priority ascending then id; MarginRules by
// start date descending then id descending.
type Store interface {
	GetProduct(ctx context.Context, id int64) (*Product, error)
	GetConfig(ctx context.Context) (*ConfigGlobal, error)
	GetMaterialVariant(ctx context.Context, id int64) (*MaterialVariant, error)
	GetFinish(ctx context.Context, id int64) (*Finish, error)
	GetCustomer(ctx context.Context, id int64) (*Customer, error)
	CustomerPrices(ctx context.Context, q PriceQuery) ([]CustomerPrice, error)
	ProductOverrides(ctx context.Context, customerID, productID int64) ([]ProductCustomerOverride, error)
	MarginRules(ctx context.Context, scope Scope, refID int64) ([]MarginRule, error)
	DynamicRules(ctx context.Context, scope Scope, refID int64) ([]MarginRuleDynamic, error)
}
