package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/printshop-quotes/internal/catalog"
	"github.com/Simplici0/printshop-quotes/internal/money"
)

func TestFirstDefined(t *testing.T) {
	res := FirstDefined(0.0,
		From[float64](SourceProduct, nil),
		From(SourceCategory, money.Ptr(0.5)),
		From(SourceGlobal, money.Ptr(0.9)),
	)
	assert.Equal(t, Resolved[float64]{Value: 0.5, Source: SourceCategory}, res)

	// a defined zero still wins
	res = FirstDefined(1.0, From(SourceProduct, money.Ptr(0)), From(SourceGlobal, money.Ptr(0.9)))
	assert.Equal(t, Resolved[float64]{Value: 0, Source: SourceProduct}, res)

	s := FirstDefined(catalog.RoundEndOnly, From[catalog.RoundingStrategy](SourceGlobal, nil))
	assert.Equal(t, catalog.RoundEndOnly, s.Value)
	assert.Equal(t, SourceDefault, s.Source)
}

func TestBestCustomerPrice(t *testing.T) {
	rows := []catalog.CustomerPrice{
		{ID: 4, CustomerID: ptr(customerID), Value: 0.50, Priority: 5, IsCurrent: true},
		{ID: 3, CustomerID: ptr(customerID), Value: 0.09, Priority: 1, IsCurrent: true},
		{ID: 2, CustomerID: ptr(customerID), Value: 0.08, Priority: 1, IsCurrent: true},
		{ID: 1, CustomerID: ptr(customerID), Value: 0.01, Priority: 0, IsCurrent: false},
		{ID: 5, CustomerGroupID: ptr(groupID), Value: 0.02, Priority: 0, IsCurrent: true},
	}

	got, src := BestCustomerPrice(rows, customerID, ptr(groupID), nil)
	require.NotNil(t, got)
	assert.Equal(t, int64(2), got.ID, "lowest priority, then lowest id")
	assert.Equal(t, SourceCustomer, src)

	got, src = BestCustomerPrice(rows, 42, ptr(groupID), nil)
	require.NotNil(t, got)
	assert.Equal(t, int64(5), got.ID)
	assert.Equal(t, SourceCustomerGroup, src)

	got, _ = BestCustomerPrice(rows, 42, nil, nil)
	assert.Nil(t, got)
}

func TestBestCustomerPriceSides(t *testing.T) {
	rows := []catalog.CustomerPrice{
		{ID: 1, CustomerID: ptr(customerID), Sides: ptr(1), Value: 0.10, Priority: 1, IsCurrent: true},
		{ID: 2, CustomerID: ptr(customerID), Sides: ptr(2), Value: 0.30, Priority: 2, IsCurrent: true},
		{ID: 3, CustomerID: ptr(customerID), Value: 0.70, Priority: 3, IsCurrent: true},
	}

	got, _ := BestCustomerPrice(rows, customerID, nil, ptr(2))
	require.NotNil(t, got)
	assert.Equal(t, 0.30, got.Value)

	got, _ = BestCustomerPrice(rows, customerID, nil, ptr(4))
	require.NotNil(t, got)
	assert.Equal(t, 0.70, got.Value, "rows without sides match any")
}

func TestBestProductOverride(t *testing.T) {
	assert.Nil(t, BestProductOverride(nil))

	got := BestProductOverride([]catalog.ProductCustomerOverride{
		{ID: 1, Priority: 10, IsCurrent: true},
		{ID: 2, Priority: 1, IsCurrent: false},
		{ID: 3, Priority: 5, IsCurrent: true},
	})
	require.NotNil(t, got)
	assert.Equal(t, int64(3), got.ID)
}

func TestResolveMarginRule(t *testing.T) {
	jan := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	jun := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	rules := ScopedMarginRules{
		Category: []catalog.MarginRule{
			{ID: 1, Margin: 0.2, Active: true, StartsAt: jan},
			{ID: 2, Margin: 0.3, Active: true, StartsAt: jun},
			{ID: 3, Margin: 0.9, Active: false, StartsAt: jun.AddDate(1, 0, 0)},
		},
		Global: []catalog.MarginRule{{ID: 4, Margin: 0.1, Active: true, StartsAt: jun}},
	}
	got, scope := ResolveMarginRule(rules, now)
	require.NotNil(t, got)
	assert.Equal(t, 0.3, got.Margin)
	assert.Equal(t, catalog.ScopeCategory, scope)

	rules.Product = []catalog.MarginRule{{ID: 5, Margin: 0.15, Active: true, StartsAt: jan}}
	got, scope = ResolveMarginRule(rules, now)
	assert.Equal(t, 0.15, got.Margin)
	assert.Equal(t, catalog.ScopeProduct, scope)

	got, _ = ResolveMarginRule(ScopedMarginRules{}, now)
	assert.Nil(t, got)
}

func TestResolveMarginRuleSkipsRulesNotYetStarted(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	rules := ScopedMarginRules{
		Global: []catalog.MarginRule{
			{ID: 1, Margin: 0.30, Active: true, StartsAt: now.AddDate(-1, 0, 0)},
			{ID: 2, Margin: 0.50, Active: true, StartsAt: now.AddDate(1, 0, 0)},
		},
	}

	got, scope := ResolveMarginRule(rules, now)
	require.NotNil(t, got)
	assert.Equal(t, int64(1), got.ID)
	assert.Equal(t, 0.30, got.Margin)
	assert.Equal(t, catalog.ScopeGlobal, scope)

	// a rule starting exactly now is in force
	got, _ = ResolveMarginRule(rules, now.AddDate(1, 0, 0))
	assert.Equal(t, int64(2), got.ID)

	// a scope holding only future rules falls through to the next scope
	rules.Category = []catalog.MarginRule{{ID: 3, Margin: 0.90, Active: true, StartsAt: now.Add(time.Hour)}}
	got, scope = ResolveMarginRule(rules, now)
	assert.Equal(t, int64(1), got.ID)
	assert.Equal(t, catalog.ScopeGlobal, scope)
}

func TestBestDynamicRuleThresholds(t *testing.T) {
	rows := []catalog.MarginRuleDynamic{
		{ID: 1, Adjustment: -0.05, MinQuantity: money.Ptr(500), Priority: 1, Active: true},
		{ID: 2, Adjustment: -0.02, MinSubtotal: money.Ptr(100), Priority: 2, Active: true},
		{ID: 3, Adjustment: 0.01, Priority: 3, Active: true},
		{ID: 4, Adjustment: -0.50, Priority: 0, Active: false},
	}

	assert.Equal(t, int64(3), BestDynamicRule(rows, 50, 100).ID)
	assert.Equal(t, int64(2), BestDynamicRule(rows, 100, 100).ID, "thresholds are inclusive")
	assert.Equal(t, int64(1), BestDynamicRule(rows, 100, 500).ID)
	assert.Nil(t, BestDynamicRule(rows[3:], 1e9, 1e9))
}

func TestResolveDynamicRuleStopsAtFirstScope(t *testing.T) {
	scopes := []DynamicScope{
		{Scope: catalog.ScopeCustomer},
		{Scope: catalog.ScopeProduct, Rules: []catalog.MarginRuleDynamic{
			{ID: 1, Adjustment: 0.04, MinSubtotal: money.Ptr(1000), Priority: 1, Active: true},
		}},
		{Scope: catalog.ScopeCategory, Rules: []catalog.MarginRuleDynamic{
			{ID: 2, Adjustment: -0.03, Priority: 9, Active: true},
		}},
		{Scope: catalog.ScopeGlobal, Rules: []catalog.MarginRuleDynamic{
			{ID: 3, Adjustment: -0.10, Priority: 1, Active: true},
		}},
	}

	got, scope := ResolveDynamicRule(scopes, 10, 10)
	require.NotNil(t, got)
	assert.Equal(t, catalog.ScopeCategory, scope, "product rule fails its threshold")
	assert.Equal(t, -0.03, got.Adjustment)

	got, scope = ResolveDynamicRule(scopes, 1000, 10)
	assert.Equal(t, catalog.ScopeProduct, scope)
	assert.Equal(t, 0.04, got.Adjustment)
}
