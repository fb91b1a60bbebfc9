package catalog_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/printshop-quotes/internal/catalog"
	"github.com/Simplici0/printshop-quotes/internal/db"
	"github.com/Simplici0/printshop-quotes/internal/migrations"
	"github.com/Simplici0/printshop-quotes/internal/seed"
)

func openCatalog(t *testing.T, withSeed bool) *sqlx.DB {
	t.Helper()
	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	require.NoError(t, migrations.Up(database.DB, "sqlite", "../../migrations"))
	if withSeed {
		_, err = seed.Run(database)
		require.NoError(t, err)
	}
	return database
}

func TestSQLStoreGetProduct(t *testing.T) {
	store := catalog.NewSQLStore(openCatalog(t, true))
	ctx := context.Background()

	p, err := store.GetProduct(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Business card", p.Name)
	assert.Equal(t, 2, p.PrintSides)
	require.NotNil(t, p.Category)
	assert.Equal(t, "Flyers", p.Category.Name)
	require.NotNil(t, p.Printing)
	assert.Equal(t, catalog.SetupTimeXRate, p.Printing.SetupMode)
	assert.InDelta(t, 0.25, p.Printing.UnitPrice, 1e-12)
	assert.InDelta(t, 100, *p.MinOrderQty, 1e-12)

	require.Len(t, p.Materials, 1)
	m := p.Materials[0]
	assert.Equal(t, catalog.UnitSheet, m.Material.Unit)
	require.NotNil(t, m.Variant)
	assert.Equal(t, "SRA3", m.Variant.Label)
	assert.InDelta(t, 450, *m.Variant.WidthMm, 1e-12)
	assert.InDelta(t, 0.02, m.WasteFactor, 1e-12)

	require.Len(t, p.Finishes, 1)
	assert.Nil(t, p.Finishes[0].QtyPerUnit)
	assert.Equal(t, catalog.CalcPerUnit, p.Finishes[0].Finish.CalcType)

	banner, err := store.GetProduct(ctx, 3)
	require.NoError(t, err)
	require.NotNil(t, banner.SourcingMode)
	assert.Equal(t, catalog.SourcingHybrid, *banner.SourcingMode)
	assert.InDelta(t, 850, banner.Attributes["widthMm"], 1e-12)
	require.Len(t, banner.SupplierPrices, 1)
	assert.Equal(t, "Banner Stand Co", banner.SupplierPrices[0].SupplierName)
	assert.InDelta(t, 0.05, *banner.Materials[0].Material.LossFactor, 1e-12)

	_, err = store.GetProduct(ctx, 404)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestSQLStoreConfig(t *testing.T) {
	ctx := context.Background()

	_, err := catalog.NewSQLStore(openCatalog(t, false)).GetConfig(ctx)
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	cfg, err := catalog.NewSQLStore(openCatalog(t, true)).GetConfig(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 0.23, *cfg.VatPercent, 1e-12)
	assert.Equal(t, catalog.RoundEndOnly, *cfg.RoundingStrategy)
	assert.Nil(t, cfg.MinPricePerPiece)
}

func TestSQLStoreCustomerData(t *testing.T) {
	database := openCatalog(t, true)
	store := catalog.NewSQLStore(database)
	ctx := context.Background()

	c, err := store.GetCustomer(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, c.GroupID)
	assert.Equal(t, int64(1), *c.GroupID)

	_, err = database.Exec(`INSERT INTO customer_prices (id, kind, customer_id, entity_id, sides, amount, priority, is_current)
		VALUES (10, 'MATERIAL', 1, 2, 0, 11.5, 5, TRUE), (11, 'MATERIAL', 1, 2, 1, 9.5, 1, FALSE)`)
	require.NoError(t, err)

	prices, err := store.CustomerPrices(ctx, catalog.PriceQuery{Kind: catalog.PriceMaterial, EntityID: 2, CustomerID: 1, GroupID: c.GroupID})
	require.NoError(t, err)
	require.Len(t, prices, 1)
	assert.InDelta(t, 11.5, prices[0].Value, 1e-12)
	assert.Nil(t, prices[0].Sides)

	prices, err = store.CustomerPrices(ctx, catalog.PriceQuery{Kind: catalog.PricePrinting, EntityID: 1, CustomerID: 1, GroupID: c.GroupID})
	require.NoError(t, err)
	require.Len(t, prices, 1)
	require.NotNil(t, prices[0].Sides)
	assert.Equal(t, 2, *prices[0].Sides)

	prices, err = store.CustomerPrices(ctx, catalog.PriceQuery{Kind: catalog.PricePrinting, EntityID: 1, CustomerID: 1})
	require.NoError(t, err)
	assert.Empty(t, prices)

	ov, err := store.ProductOverrides(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, ov, 1)
	assert.InDelta(t, 0.25, *ov[0].MarginDefault, 1e-12)
}

func TestSQLStoreDuplicateOverrideRejected(t *testing.T) {
	database := openCatalog(t, true)

	_, err := database.Exec(`INSERT INTO customer_prices (id, kind, customer_id, entity_id, sides, amount, priority, is_current)
		VALUES (20, 'MATERIAL', 1, 1, 0, 0.07, 9, TRUE)`)
	assert.Error(t, err)
}

func TestSQLStoreRules(t *testing.T) {
	store := catalog.NewSQLStore(openCatalog(t, true))
	ctx := context.Background()

	rules, err := store.MarginRules(ctx, catalog.ScopeCategory, 2)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.InDelta(t, 0.35, rules[0].Margin, 1e-12)
	assert.Equal(t, 2025, rules[0].StartsAt.Year())

	rules, err = store.MarginRules(ctx, catalog.ScopeCategory, 1)
	require.NoError(t, err)
	assert.Empty(t, rules)

	dyn, err := store.DynamicRules(ctx, catalog.ScopeGlobal, 0)
	require.NoError(t, err)
	require.Len(t, dyn, 1)
	assert.InDelta(t, -0.05, dyn[0].Adjustment, 1e-12)
	assert.InDelta(t, 1000, *dyn[0].MinQuantity, 1e-12)
	assert.Nil(t, dyn[0].MinSubtotal)

	dyn, err = store.DynamicRules(ctx, catalog.ScopeCustomer, 1)
	require.NoError(t, err)
	assert.Empty(t, dyn)
}
