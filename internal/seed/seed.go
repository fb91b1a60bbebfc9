// Package seed loads a small, idempotent demo catalog.
package seed

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
}

// row is one catalog record keyed by its explicit id.
type row struct {
	table  string
	id     int64
	values map[string]any
}

var demoStart = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// demoCatalog is a flyer priced from paper and a cut, a banner bought from a
// supplier, and one customer with negotiated prices.
func demoCatalog() []row {
	return []row{
		{"config_global", 1, map[string]any{
			"margin_default":      0.30,
			"markup_operational":  0.20,
			"rounding_step":       0.05,
			"rounding_strategy":   "END_ONLY",
			"pricing_strategy":    "COST_MARKUP_MARGIN",
			"loss_factor":         0,
			"vat_percent":         0.23,
			"printing_hour_cost":  40,
			"setup_time_min":      15,
			"min_price_per_piece": nil,
		}},
		{"categories", 1, map[string]any{"name": "Flyers"}},
		{"categories", 2, map[string]any{"name": "Banners", "rounding_step": 1}},
		{"materials", 1, map[string]any{"name": "Couche 150g", "unit": "SHEET", "unit_cost": 0.10}},
		{"materials", 2, map[string]any{"name": "Adhesive vinyl", "unit": "M2", "unit_cost": 12.00, "loss_factor": 0.05}},
		{"material_variants", 1, map[string]any{"material_id": 1, "label": "SRA3", "width_mm": 450, "height_mm": 320}},
		{"printings", 1, map[string]any{
			"name": "Digital 4/4", "unit_price": 0.25, "run_yield": 1, "setup_mode": "TIME_X_RATE", "min_fee": 10,
		}},
		{"finishes", 1, map[string]any{"name": "Cut", "base_cost": 0.05, "calc_type": "PER_UNIT"}},
		{"finishes", 2, map[string]any{"name": "Lamination", "base_cost": 4.00, "calc_type": "PER_M2", "area_step_m2": 0.5, "min_fee": 5}},
		{"finishes", 3, map[string]any{"name": "Eyelets", "base_cost": 0.40, "calc_type": "PER_UNIT"}},
		{"products", 1, map[string]any{"name": "Flyer A6", "category_id": 1, "print_sides": 1}},
		{"products", 2, map[string]any{
			"name": "Business card", "category_id": 1, "printing_id": 1, "print_sides": 2,
			"width_mm": 90, "height_mm": 50, "min_order_qty": 100,
		}},
		{"products", 3, map[string]any{
			"name": "Roll-up banner", "category_id": 2, "sourcing_mode": "HYBRID",
			"attributes_json": `{"widthMm": 850, "heightMm": 2000}`, "min_order_value": 50,
		}},
		{"product_materials", 1, map[string]any{"product_id": 1, "material_id": 1, "qty_per_unit": 1, "waste_factor": 0}},
		{"product_materials", 2, map[string]any{"product_id": 2, "material_id": 1, "material_variant_id": 1, "qty_per_unit": 0.05, "waste_factor": 0.02}},
		{"product_materials", 3, map[string]any{"product_id": 3, "material_id": 2, "qty_per_unit": 1.7, "waste_factor": 0.1}},
		{"product_finishes", 1, map[string]any{"product_id": 1, "finish_id": 1, "qty_per_unit": 1}},
		{"product_finishes", 2, map[string]any{"product_id": 2, "finish_id": 1}},
		{"product_finishes", 3, map[string]any{"product_id": 3, "finish_id": 3, "qty_per_unit": 4}},
		{"supplier_prices", 1, map[string]any{"product_id": 3, "supplier_name": "Banner Stand Co", "unit": "UNIT", "unit_cost": 18.50}},
		{"customer_groups", 1, map[string]any{"name": "Agencies"}},
		{"customers", 1, map[string]any{"name": "Studio Norte", "customer_group_id": 1}},
		{"customer_prices", 1, map[string]any{
			"kind": "MATERIAL", "customer_id": 1, "entity_id": 1, "sides": 0, "amount": 0.08, "priority": 1, "is_current": true,
		}},
		{"customer_prices", 2, map[string]any{
			"kind": "PRINTING", "customer_group_id": 1, "entity_id": 1, "sides": 2, "amount": 0.20, "priority": 10, "is_current": true,
		}},
		{"product_customer_overrides", 1, map[string]any{
			"customer_id": 1, "product_id": 1, "margin_default": 0.25, "priority": 1, "is_current": true,
		}},
		{"margin_rules", 1, map[string]any{"scope": "CATEGORY", "category_id": 2, "margin": 0.35, "active": true, "starts_at": demoStart}},
		{"margin_rules_dynamic", 1, map[string]any{
			"scope": "GLOBAL", "adjustment": -0.05, "min_quantity": 1000, "priority": 10, "active": true,
		}},
	}
}

// Run executes the demo seed in an idempotent way. Existing rows are never
// overwritten.
func Run(db *sqlx.DB) (Stats, error) {
	tx, err := db.Beginx()
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}
	for _, r := range demoCatalog() {
		if err := ensureRow(tx, r, &stats); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func ensureRow(tx *sqlx.Tx, r row, stats *Stats) error {
	var exists bool
	if err := tx.QueryRow(tx.Rebind(`SELECT EXISTS(SELECT 1 FROM `+r.table+` WHERE id = ?)`), r.id).Scan(&exists); err != nil {
		return fmt.Errorf("check %s %d existence: %w", r.table, r.id, err)
	}
	if exists {
		return nil
	}

	cols := []string{"id"}
	args := []any{r.id}
	for _, col := range sortedKeys(r.values) {
		cols = append(cols, col)
		args = append(args, r.values[col])
	}
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`, r.table, strings.Join(cols, ", "), marks)
	if _, err := tx.Exec(tx.Rebind(query), args...); err != nil {
		return fmt.Errorf("insert %s %d: %w", r.table, r.id, err)
	}
	stats.Inserts++
	return nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
