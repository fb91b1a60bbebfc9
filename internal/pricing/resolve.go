package pricing

import (
	"time"

	"github.com/Simplici0/printshop-quotes/internal/catalog"
)

// BestCustomerPrice picks the override that applies to a customer. Rows owned
// by the customer win over rows owned by its group; within an owner the lowest
// priority wins and ties go to the lowest id. sides is only checked when
// non-nil; a row without sides matches any.
func BestCustomerPrice(rows []catalog.CustomerPrice, customerID int64, groupID *int64, sides *int) (*catalog.CustomerPrice, Source) {
	var byCustomer, byGroup *catalog.CustomerPrice
	for i := range rows {
		r := &rows[i]
		if !r.IsCurrent {
			continue
		}
		if sides != nil && r.Sides != nil && *r.Sides != *sides {
			continue
		}
		switch {
		case r.CustomerID != nil && *r.CustomerID == customerID:
			if better(r.Priority, r.ID, byCustomer) {
				byCustomer = r
			}
		case groupID != nil && r.CustomerGroupID != nil && *r.CustomerGroupID == *groupID:
			if better(r.Priority, r.ID, byGroup) {
				byGroup = r
			}
		}
	}
	if byCustomer != nil {
		return byCustomer, SourceCustomer
	}
	if byGroup != nil {
		return byGroup, SourceCustomerGroup
	}
	return nil, ""
}

func better(priority int, id int64, cur *catalog.CustomerPrice) bool {
	if cur == nil {
		return true
	}
	if priority != cur.Priority {
		return priority < cur.Priority
	}
	return id < cur.ID
}

// BestProductOverride returns the current override with the lowest priority.
func BestProductOverride(rows []catalog.ProductCustomerOverride) *catalog.ProductCustomerOverride {
	var best *catalog.ProductCustomerOverride
	for i := range rows {
		r := &rows[i]
		if !r.IsCurrent {
			continue
		}
		if best == nil || r.Priority < best.Priority || (r.Priority == best.Priority && r.ID < best.ID) {
			best = r
		}
	}
	return best
}

// LatestMarginRule returns the active rule that started most recently,
// ignoring rules that start after now.
func LatestMarginRule(rows []catalog.MarginRule, now time.Time) *catalog.MarginRule {
	var best *catalog.MarginRule
	for i := range rows {
		r := &rows[i]
		if !r.Active || r.StartsAt.After(now) {
			continue
		}
		if best == nil || r.StartsAt.After(best.StartsAt) || (r.StartsAt.Equal(best.StartsAt) && r.ID > best.ID) {
			best = r
		}
	}
	return best
}

// BestDynamicRule returns the highest-priority active rule whose thresholds
// are met by subtotal and quantity.
func BestDynamicRule(rows []catalog.MarginRuleDynamic, subtotal, quantity float64) *catalog.MarginRuleDynamic {
	var best *catalog.MarginRuleDynamic
	for i := range rows {
		r := &rows[i]
		if !r.Active {
			continue
		}
		if r.MinSubtotal != nil && subtotal < *r.MinSubtotal {
			continue
		}
		if r.MinQuantity != nil && quantity < *r.MinQuantity {
			continue
		}
		if best == nil || r.Priority < best.Priority || (r.Priority == best.Priority && r.ID < best.ID) {
			best = r
		}
	}
	return best
}

// ScopedMarginRules holds margin rules per scope, in cascade order.
type ScopedMarginRules struct {
	Product  []catalog.MarginRule
	Category []catalog.MarginRule
	Global   []catalog.MarginRule
}

// ResolveMarginRule walks PRODUCT, CATEGORY, GLOBAL and stops at the first
// scope holding a rule in force at now.
func ResolveMarginRule(rules ScopedMarginRules, now time.Time) (*catalog.MarginRule, catalog.Scope) {
	if r := LatestMarginRule(rules.Product, now); r != nil {
		return r, catalog.ScopeProduct
	}
	if r := LatestMarginRule(rules.Category, now); r != nil {
		return r, catalog.ScopeCategory
	}
	if r := LatestMarginRule(rules.Global, now); r != nil {
		return r, catalog.ScopeGlobal
	}
	return nil, ""
}

// DynamicScope is one level of the dynamic rule cascade.
type DynamicScope struct {
	Scope catalog.Scope
	Rules []catalog.MarginRuleDynamic
}

// ResolveDynamicRule evaluates each scope in order and returns the match of
// the first scope that has one. Lower scopes are not consulted after that.
func ResolveDynamicRule(scopes []DynamicScope, subtotal, quantity float64) (*catalog.MarginRuleDynamic, catalog.Scope) {
	for _, s := range scopes {
		if r := BestDynamicRule(s.Rules, subtotal, quantity); r != nil {
			return r, s.Scope
		}
	}
	return nil, ""
}
