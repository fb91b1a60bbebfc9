package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Simplici0/printshop-quotes/internal/money"
)

// SQLStore reads the catalog through sqlx. Queries use ? placeholders and are
// rebound for the connected driver, so the same store serves SQLite and Postgres.
type SQLStore struct {
	db *sqlx.DB
}

func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

type configRow struct {
	MarginDefault     money.NullNumber `db:"margin_default"`
	MarkupOperational money.NullNumber `db:"markup_operational"`
	RoundingStep      money.NullNumber `db:"rounding_step"`
	RoundingStrategy  sql.NullString   `db:"rounding_strategy"`
	PricingStrategy   sql.NullString   `db:"pricing_strategy"`
	LossFactor        money.NullNumber `db:"loss_factor"`
	VatPercent        money.NullNumber `db:"vat_percent"`
	PrintingHourCost  money.NullNumber `db:"printing_hour_cost"`
	SetupTimeMin      money.NullNumber `db:"setup_time_min"`
	MinPricePerPiece  money.NullNumber `db:"min_price_per_piece"`
}

func (s *SQLStore) GetConfig(ctx context.Context) (*ConfigGlobal, error) {
	var row configRow
	err := s.db.GetContext(ctx, &row, `
		SELECT margin_default, markup_operational, rounding_step, rounding_strategy, pricing_strategy,
			loss_factor, vat_percent, printing_hour_cost, setup_time_min, min_price_per_piece
		FROM config_global
		WHERE id = 1
	`)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("config_global singleton: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("query config_global: %w", err)
	}
	return &ConfigGlobal{
		MarginDefault:     row.MarginDefault.Ptr(),
		MarkupOperational: row.MarkupOperational.Ptr(),
		RoundingStep:      row.RoundingStep.Ptr(),
		RoundingStrategy:  roundingStrategy(row.RoundingStrategy),
		PricingStrategy:   pricingStrategy(row.PricingStrategy),
		LossFactor:        row.LossFactor.Ptr(),
		VatPercent:        row.VatPercent.Ptr(),
		PrintingHourCost:  row.PrintingHourCost.Ptr(),
		SetupTimeMin:      row.SetupTimeMin.Ptr(),
		MinPricePerPiece:  row.MinPricePerPiece.Ptr(),
	}, nil
}

type productRow struct {
	ID               int64            `db:"id"`
	Name             string           `db:"name"`
	CategoryID       sql.NullInt64    `db:"category_id"`
	PrintingID       sql.NullInt64    `db:"printing_id"`
	PrintSides       int              `db:"print_sides"`
	WidthMm          money.NullNumber `db:"width_mm"`
	HeightMm         money.NullNumber `db:"height_mm"`
	AttributesJSON   sql.NullString   `db:"attributes_json"`
	MinOrderQty      money.NullNumber `db:"min_order_qty"`
	MinOrderValue    money.NullNumber `db:"min_order_value"`
	RoundingStep     money.NullNumber `db:"rounding_step"`
	RoundingStrategy sql.NullString   `db:"rounding_strategy"`
	PricingStrategy  sql.NullString   `db:"pricing_strategy"`
	MarkupDefault    money.NullNumber `db:"markup_default"`
	MarginDefault    money.NullNumber `db:"margin_default"`
	MinPricePerPiece money.NullNumber `db:"min_price_per_piece"`
	SourcingMode     sql.NullString   `db:"sourcing_mode"`
}

type categoryRow struct {
	ID               int64            `db:"id"`
	Name             string           `db:"name"`
	LossFactor       money.NullNumber `db:"loss_factor"`
	RoundingStep     money.NullNumber `db:"rounding_step"`
	RoundingStrategy sql.NullString   `db:"rounding_strategy"`
	PricingStrategy  sql.NullString   `db:"pricing_strategy"`
	MinPricePerPiece money.NullNumber `db:"min_price_per_piece"`
}

type printingRow struct {
	ID           int64            `db:"id"`
	Name         string           `db:"name"`
	UnitPrice    money.NullNumber `db:"unit_price"`
	Yield        money.NullNumber `db:"run_yield"`
	SetupMode    string           `db:"setup_mode"`
	SetupFlatFee money.NullNumber `db:"setup_flat_fee"`
	SetupMinutes money.NullNumber `db:"setup_minutes"`
	MinFee       money.NullNumber `db:"min_fee"`
	LossFactor   money.NullNumber `db:"loss_factor"`
}

type productMaterialRow struct {
	ID            int64            `db:"id"`
	QtyPerUnit    money.NullNumber `db:"qty_per_unit"`
	WasteFactor   money.NullNumber `db:"waste_factor"`
	LossFactor    money.NullNumber `db:"loss_factor"`
	MaterialID    int64            `db:"material_id"`
	MaterialName  string           `db:"material_name"`
	MaterialUnit  string           `db:"material_unit"`
	MaterialCost  money.NullNumber `db:"material_unit_cost"`
	MaterialLoss  money.NullNumber `db:"material_loss_factor"`
	VariantID     sql.NullInt64    `db:"variant_id"`
	VariantLabel  sql.NullString   `db:"variant_label"`
	VariantWidth  money.NullNumber `db:"variant_width_mm"`
	VariantHeight money.NullNumber `db:"variant_height_mm"`
}

type finishRow struct {
	ID          int64            `db:"id"`
	Name        string           `db:"name"`
	BaseCost    money.NullNumber `db:"base_cost"`
	CalcType    string           `db:"calc_type"`
	MinFee      money.NullNumber `db:"min_fee"`
	AreaStepM2  money.NullNumber `db:"area_step_m2"`
	MinPerPiece money.NullNumber `db:"min_per_piece"`
	LossFactor  money.NullNumber `db:"loss_factor"`
}

type productFinishRow struct {
	finishRow
	LinkID       int64            `db:"link_id"`
	LinkCalcType sql.NullString   `db:"link_calc_type"`
	QtyPerUnit   money.NullNumber `db:"link_qty_per_unit"`
	CostOverride money.NullNumber `db:"link_cost_override"`
}

type supplierPriceRow struct {
	ID           int64            `db:"id"`
	SupplierName string           `db:"supplier_name"`
	Unit         string           `db:"unit"`
	UnitCost     money.NullNumber `db:"unit_cost"`
}

// GetProduct loads a product with its category, printing, compositions and
// supplier prices.
func (s *SQLStore) GetProduct(ctx context.Context, id int64) (*Product, error) {
	var row productRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(`
		SELECT id, name, category_id, printing_id, print_sides, width_mm, height_mm, attributes_json,
			min_order_qty, min_order_value, rounding_step, rounding_strategy, pricing_strategy,
			markup_default, margin_default, min_price_per_piece, sourcing_mode
		FROM products
		WHERE id = ?
	`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("query product: %w", err)
	}

	p := &Product{
		ID:               row.ID,
		Name:             row.Name,
		PrintSides:       row.PrintSides,
		WidthMm:          row.WidthMm.Ptr(),
		HeightMm:         row.HeightMm.Ptr(),
		MinOrderQty:      row.MinOrderQty.Ptr(),
		MinOrderValue:    row.MinOrderValue.Ptr(),
		RoundingStep:     row.RoundingStep.Ptr(),
		RoundingStrategy: roundingStrategy(row.RoundingStrategy),
		PricingStrategy:  pricingStrategy(row.PricingStrategy),
		MarkupDefault:    row.MarkupDefault.Ptr(),
		MarginDefault:    row.MarginDefault.Ptr(),
		MinPricePerPiece: row.MinPricePerPiece.Ptr(),
	}
	if row.SourcingMode.Valid && row.SourcingMode.String != "" {
		mode := SourcingMode(row.SourcingMode.String)
		p.SourcingMode = &mode
	}
	if row.AttributesJSON.Valid && row.AttributesJSON.String != "" {
		if err := json.Unmarshal([]byte(row.AttributesJSON.String), &p.Attributes); err != nil {
			return nil, fmt.Errorf("decode product %d attributes: %w", id, err)
		}
	}

	if row.CategoryID.Valid {
		if p.Category, err = s.getCategory(ctx, row.CategoryID.Int64); err != nil {
			return nil, err
		}
	}
	if row.PrintingID.Valid {
		if p.Printing, err = s.getPrinting(ctx, row.PrintingID.Int64); err != nil {
			return nil, err
		}
	}
	if p.Materials, err = s.listProductMaterials(ctx, id); err != nil {
		return nil, err
	}
	if p.Finishes, err = s.listProductFinishes(ctx, id); err != nil {
		return nil, err
	}
	if p.SupplierPrices, err = s.listSupplierPrices(ctx, id); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *SQLStore) getCategory(ctx context.Context, id int64) (*Category, error) {
	var row categoryRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(`
		SELECT id, name, loss_factor, rounding_step, rounding_strategy, pricing_strategy, min_price_per_piece
		FROM categories
		WHERE id = ?
	`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query category: %w", err)
	}
	return &Category{
		ID:               row.ID,
		Name:             row.Name,
		LossFactor:       row.LossFactor.Ptr(),
		RoundingStep:     row.RoundingStep.Ptr(),
		RoundingStrategy: roundingStrategy(row.RoundingStrategy),
		PricingStrategy:  pricingStrategy(row.PricingStrategy),
		MinPricePerPiece: row.MinPricePerPiece.Ptr(),
	}, nil
}

func (s *SQLStore) getPrinting(ctx context.Context, id int64) (*Printing, error) {
	var row printingRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(`
		SELECT id, name, unit_price, run_yield, setup_mode, setup_flat_fee, setup_minutes, min_fee, loss_factor
		FROM printings
		WHERE id = ?
	`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query printing: %w", err)
	}
	return &Printing{
		ID:           row.ID,
		Name:         row.Name,
		UnitPrice:    row.UnitPrice.Float(),
		Yield:        row.Yield.Ptr(),
		SetupMode:    SetupMode(row.SetupMode),
		SetupFlatFee: row.SetupFlatFee.Ptr(),
		SetupMinutes: row.SetupMinutes.Ptr(),
		MinFee:       row.MinFee.Ptr(),
		LossFactor:   row.LossFactor.Ptr(),
	}, nil
}

func (s *SQLStore) listProductMaterials(ctx context.Context, productID int64) ([]ProductMaterial, error) {
	var rows []productMaterialRow
	err := s.db.SelectContext(ctx, &rows, s.db.Rebind(`
		SELECT
			pm.id, pm.qty_per_unit, pm.waste_factor, pm.loss_factor,
			m.id AS material_id, m.name AS material_name, m.unit AS material_unit,
			m.unit_cost AS material_unit_cost, m.loss_factor AS material_loss_factor,
			v.id AS variant_id, v.label AS variant_label,
			v.width_mm AS variant_width_mm, v.height_mm AS variant_height_mm
		FROM product_materials pm
		JOIN materials m ON m.id = pm.material_id
		LEFT JOIN material_variants v ON v.id = pm.material_variant_id
		WHERE pm.product_id = ?
		ORDER BY pm.id
	`), productID)
	if err != nil {
		return nil, fmt.Errorf("query product materials: %w", err)
	}

	out := make([]ProductMaterial, 0, len(rows))
	for _, r := range rows {
		pm := ProductMaterial{
			ID:          r.ID,
			QtyPerUnit:  r.QtyPerUnit.Float(),
			WasteFactor: r.WasteFactor.Float(),
			LossFactor:  r.LossFactor.Ptr(),
			Material: Material{
				ID:         r.MaterialID,
				Name:       r.MaterialName,
				Unit:       Unit(r.MaterialUnit),
				UnitCost:   r.MaterialCost.Float(),
				LossFactor: r.MaterialLoss.Ptr(),
			},
		}
		if r.VariantID.Valid {
			pm.Variant = &MaterialVariant{
				ID:         r.VariantID.Int64,
				MaterialID: r.MaterialID,
				Label:      r.VariantLabel.String,
				WidthMm:    r.VariantWidth.Ptr(),
				HeightMm:   r.VariantHeight.Ptr(),
			}
		}
		out = append(out, pm)
	}
	return out, nil
}

func (s *SQLStore) listProductFinishes(ctx context.Context, productID int64) ([]ProductFinish, error) {
	var rows []productFinishRow
	err := s.db.SelectContext(ctx, &rows, s.db.Rebind(`
		SELECT
			f.id, f.name, f.base_cost, f.calc_type, f.min_fee, f.area_step_m2, f.min_per_piece, f.loss_factor,
			pf.id AS link_id, pf.calc_type AS link_calc_type,
			pf.qty_per_unit AS link_qty_per_unit, pf.cost_override AS link_cost_override
		FROM product_finishes pf
		JOIN finishes f ON f.id = pf.finish_id
		WHERE pf.product_id = ?
		ORDER BY pf.id
	`), productID)
	if err != nil {
		return nil, fmt.Errorf("query product finishes: %w", err)
	}

	out := make([]ProductFinish, 0, len(rows))
	for _, r := range rows {
		pf := ProductFinish{
			ID:           r.LinkID,
			Finish:       r.finishRow.toFinish(),
			QtyPerUnit:   r.QtyPerUnit.Ptr(),
			CostOverride: r.CostOverride.Ptr(),
		}
		if r.LinkCalcType.Valid && r.LinkCalcType.String != "" {
			ct := CalcType(r.LinkCalcType.String)
			pf.CalcType = &ct
		}
		out = append(out, pf)
	}
	return out, nil
}

func (r finishRow) toFinish() Finish {
	return Finish{
		ID:          r.ID,
		Name:        r.Name,
		BaseCost:    r.BaseCost.Float(),
		CalcType:    CalcType(r.CalcType),
		MinFee:      r.MinFee.Ptr(),
		AreaStepM2:  r.AreaStepM2.Ptr(),
		MinPerPiece: r.MinPerPiece.Ptr(),
		LossFactor:  r.LossFactor.Ptr(),
	}
}

func (s *SQLStore) listSupplierPrices(ctx context.Context, productID int64) ([]SupplierPrice, error) {
	var rows []supplierPriceRow
	err := s.db.SelectContext(ctx, &rows, s.db.Rebind(`
		SELECT id, supplier_name, unit, unit_cost
		FROM supplier_prices
		WHERE product_id = ?
		ORDER BY id
	`), productID)
	if err != nil {
		return nil, fmt.Errorf("query supplier prices: %w", err)
	}

	out := make([]SupplierPrice, 0, len(rows))
	for _, r := range rows {
		out = append(out, SupplierPrice{
			ID:           r.ID,
			SupplierName: r.SupplierName,
			Unit:         Unit(r.Unit),
			UnitCost:     r.UnitCost.Float(),
		})
	}
	return out, nil
}

func (s *SQLStore) GetMaterialVariant(ctx context.Context, id int64) (*MaterialVariant, error) {
	var row struct {
		ID         int64            `db:"id"`
		MaterialID int64            `db:"material_id"`
		Label      string           `db:"label"`
		WidthMm    money.NullNumber `db:"width_mm"`
		HeightMm   money.NullNumber `db:"height_mm"`
	}
	err := s.db.GetContext(ctx, &row, s.db.Rebind(`
		SELECT id, material_id, label, width_mm, height_mm
		FROM material_variants
		WHERE id = ?
	`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("material variant %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("query material variant: %w", err)
	}
	return &MaterialVariant{
		ID:         row.ID,
		MaterialID: row.MaterialID,
		Label:      row.Label,
		WidthMm:    row.WidthMm.Ptr(),
		HeightMm:   row.HeightMm.Ptr(),
	}, nil
}

func (s *SQLStore) GetFinish(ctx context.Context, id int64) (*Finish, error) {
	var row finishRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(`
		SELECT id, name, base_cost, calc_type, min_fee, area_step_m2, min_per_piece, loss_factor
		FROM finishes
		WHERE id = ?
	`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("finish %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("query finish: %w", err)
	}
	f := row.toFinish()
	return &f, nil
}

func (s *SQLStore) GetCustomer(ctx context.Context, id int64) (*Customer, error) {
	var row struct {
		ID      int64         `db:"id"`
		Name    string        `db:"name"`
		GroupID sql.NullInt64 `db:"customer_group_id"`
	}
	err := s.db.GetContext(ctx, &row, s.db.Rebind(`
		SELECT id, name, customer_group_id
		FROM customers
		WHERE id = ?
	`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("customer %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("query customer: %w", err)
	}
	return &Customer{ID: row.ID, Name: row.Name, GroupID: nullInt(row.GroupID)}, nil
}

func (s *SQLStore) CustomerPrices(ctx context.Context, q PriceQuery) ([]CustomerPrice, error) {
	var rows []struct {
		ID              int64            `db:"id"`
		Kind            string           `db:"kind"`
		CustomerID      sql.NullInt64    `db:"customer_id"`
		CustomerGroupID sql.NullInt64    `db:"customer_group_id"`
		EntityID        int64            `db:"entity_id"`
		Sides           int              `db:"sides"`
		Amount          money.NullNumber `db:"amount"`
		Priority        int              `db:"priority"`
		IsCurrent       bool             `db:"is_current"`
	}

	var groupID int64 = -1
	if q.GroupID != nil {
		groupID = *q.GroupID
	}
	err := s.db.SelectContext(ctx, &rows, s.db.Rebind(`
		SELECT id, kind, customer_id, customer_group_id, entity_id, sides, amount, priority, is_current
		FROM customer_prices
		WHERE kind = ?
			AND entity_id = ?
			AND is_current = TRUE
			AND (customer_id = ? OR customer_group_id = ?)
		ORDER BY priority ASC, id ASC
	`), string(q.Kind), q.EntityID, q.CustomerID, groupID)
	if err != nil {
		return nil, fmt.Errorf("query customer prices: %w", err)
	}

	out := make([]CustomerPrice, 0, len(rows))
	for _, r := range rows {
		cp := CustomerPrice{
			ID:              r.ID,
			Kind:            PriceKind(r.Kind),
			CustomerID:      nullInt(r.CustomerID),
			CustomerGroupID: nullInt(r.CustomerGroupID),
			EntityID:        r.EntityID,
			Value:           r.Amount.Float(),
			Priority:        r.Priority,
			IsCurrent:       r.IsCurrent,
		}
		if r.Sides > 0 {
			sides := r.Sides
			cp.Sides = &sides
		}
		out = append(out, cp)
	}
	return out, nil
}

func (s *SQLStore) ProductOverrides(ctx context.Context, customerID, productID int64) ([]ProductCustomerOverride, error) {
	var rows []struct {
		ID               int64            `db:"id"`
		CustomerID       int64            `db:"customer_id"`
		ProductID        int64            `db:"product_id"`
		MarkupDefault    money.NullNumber `db:"markup_default"`
		MarginDefault    money.NullNumber `db:"margin_default"`
		RoundingStep     money.NullNumber `db:"rounding_step"`
		MinPricePerPiece money.NullNumber `db:"min_price_per_piece"`
		Priority         int              `db:"priority"`
		IsCurrent        bool             `db:"is_current"`
	}
	err := s.db.SelectContext(ctx, &rows, s.db.Rebind(`
		SELECT id, customer_id, product_id, markup_default, margin_default, rounding_step,
			min_price_per_piece, priority, is_current
		FROM product_customer_overrides
		WHERE customer_id = ? AND product_id = ? AND is_current = TRUE
		ORDER BY priority ASC, id ASC
	`), customerID, productID)
	if err != nil {
		return nil, fmt.Errorf("query product customer overrides: %w", err)
	}

	out := make([]ProductCustomerOverride, 0, len(rows))
	for _, r := range rows {
		out = append(out, ProductCustomerOverride{
			ID:               r.ID,
			CustomerID:       r.CustomerID,
			ProductID:        r.ProductID,
			MarkupDefault:    r.MarkupDefault.Ptr(),
			MarginDefault:    r.MarginDefault.Ptr(),
			RoundingStep:     r.RoundingStep.Ptr(),
			MinPricePerPiece: r.MinPricePerPiece.Ptr(),
			Priority:         r.Priority,
			IsCurrent:        r.IsCurrent,
		})
	}
	return out, nil
}

// scopeColumn maps a rule scope to the foreign key that narrows it.
func scopeColumn(scope Scope) (string, error) {
	switch scope {
	case ScopeGlobal:
		return "", nil
	case ScopeCategory:
		return "category_id", nil
	case ScopeProduct:
		return "product_id", nil
	case ScopeCustomer:
		return "customer_id", nil
	case ScopeCustomerGroup:
		return "customer_group_id", nil
	}
	return "", fmt.Errorf("unknown scope %q", scope)
}

func (s *SQLStore) MarginRules(ctx context.Context, scope Scope, refID int64) ([]MarginRule, error) {
	if scope == ScopeCustomer || scope == ScopeCustomerGroup {
		return []MarginRule{}, nil
	}
	col, err := scopeColumn(scope)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, scope, category_id, product_id, margin, active, starts_at
		FROM margin_rules
		WHERE scope = ? AND active = TRUE`
	args := []any{string(scope)}
	if col != "" {
		query += " AND " + col + " = ?"
		args = append(args, refID)
	}
	query += " ORDER BY starts_at DESC, id DESC"

	var rows []struct {
		ID         int64            `db:"id"`
		Scope      string           `db:"scope"`
		CategoryID sql.NullInt64    `db:"category_id"`
		ProductID  sql.NullInt64    `db:"product_id"`
		Margin     money.NullNumber `db:"margin"`
		Active     bool             `db:"active"`
		StartsAt   time.Time        `db:"starts_at"`
	}
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("query margin rules: %w", err)
	}

	out := make([]MarginRule, 0, len(rows))
	for _, r := range rows {
		out = append(out, MarginRule{
			ID:         r.ID,
			Scope:      Scope(r.Scope),
			CategoryID: nullInt(r.CategoryID),
			ProductID:  nullInt(r.ProductID),
			Margin:     r.Margin.Float(),
			Active:     r.Active,
			StartsAt:   r.StartsAt,
		})
	}
	return out, nil
}

func (s *SQLStore) DynamicRules(ctx context.Context, scope Scope, refID int64) ([]MarginRuleDynamic, error) {
	col, err := scopeColumn(scope)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, scope, category_id, product_id, customer_id, customer_group_id,
			adjustment, min_subtotal, min_quantity, priority, active
		FROM margin_rules_dynamic
		WHERE scope = ? AND active = TRUE`
	args := []any{string(scope)}
	if col != "" {
		query += " AND " + col + " = ?"
		args = append(args, refID)
	}
	query += " ORDER BY priority ASC, id ASC"

	var rows []struct {
		ID              int64            `db:"id"`
		Scope           string           `db:"scope"`
		CategoryID      sql.NullInt64    `db:"category_id"`
		ProductID       sql.NullInt64    `db:"product_id"`
		CustomerID      sql.NullInt64    `db:"customer_id"`
		CustomerGroupID sql.NullInt64    `db:"customer_group_id"`
		Adjustment      money.NullNumber `db:"adjustment"`
		MinSubtotal     money.NullNumber `db:"min_subtotal"`
		MinQuantity     money.NullNumber `db:"min_quantity"`
		Priority        int              `db:"priority"`
		Active          bool             `db:"active"`
	}
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("query dynamic margin rules: %w", err)
	}

	out := make([]MarginRuleDynamic, 0, len(rows))
	for _, r := range rows {
		out = append(out, MarginRuleDynamic{
			ID:              r.ID,
			Scope:           Scope(r.Scope),
			CategoryID:      nullInt(r.CategoryID),
			ProductID:       nullInt(r.ProductID),
			CustomerID:      nullInt(r.CustomerID),
			CustomerGroupID: nullInt(r.CustomerGroupID),
			Adjustment:      r.Adjustment.Float(),
			MinSubtotal:     r.MinSubtotal.Ptr(),
			MinQuantity:     r.MinQuantity.Ptr(),
			Priority:        r.Priority,
			Active:          r.Active,
		})
	}
	return out, nil
}

func nullInt(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	id := v.Int64
	return &id
}

func roundingStrategy(v sql.NullString) *RoundingStrategy {
	if !v.Valid || v.String == "" {
		return nil
	}
	s := RoundingStrategy(v.String)
	return &s
}

func pricingStrategy(v sql.NullString) *PricingStrategy {
	if !v.Valid || v.String == "" {
		return nil
	}
	s := PricingStrategy(v.String)
	return &s
}
