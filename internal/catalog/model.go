// Package catalog holds the print-shop catalog entities read by the quote
// engine and the stores that serve them.
package catalog

import "time"

type Unit string

const (
	UnitSheet Unit = "SHEET"
	UnitM2    Unit = "M2"
	UnitUnit  Unit = "UNIT"
	UnitLot   Unit = "LOT"
	UnitHour  Unit = "HOUR"
)

type CalcType string

const (
	CalcPerUnit CalcType = "PER_UNIT"
	CalcPerM2   CalcType = "PER_M2"
	CalcPerLot  CalcType = "PER_LOT"
	CalcPerHour CalcType = "PER_HOUR"
)

type RoundingStrategy string

const (
	RoundPerStep RoundingStrategy = "PER_STEP"
	RoundEndOnly RoundingStrategy = "END_ONLY"
)

type PricingStrategy string

const (
	StrategyCostMarkupMargin PricingStrategy = "COST_MARKUP_MARGIN"
	StrategyCostMarginOnly   PricingStrategy = "COST_MARGIN_ONLY"
	StrategyMarginTarget     PricingStrategy = "MARGIN_TARGET"
)

type SetupMode string

const (
	SetupFlat      SetupMode = "FLAT"
	SetupTimeXRate SetupMode = "TIME_X_RATE"
)

type SourcingMode string

const (
	SourcingInternal SourcingMode = "INTERNAL"
	SourcingSupplier SourcingMode = "SUPPLIER"
	SourcingHybrid   SourcingMode = "HYBRID"
)

// Scope is the breadth at which a margin rule applies.
type Scope string

const (
	ScopeGlobal        Scope = "GLOBAL"
	ScopeCategory      Scope = "CATEGORY"
	ScopeProduct       Scope = "PRODUCT"
	ScopeCustomer      Scope = "CUSTOMER"
	ScopeCustomerGroup Scope = "CUSTOMER_GROUP"
)

// PriceKind discriminates customer price override rows.
type PriceKind string

const (
	PriceMaterial PriceKind = "MATERIAL"
	PricePrinting PriceKind = "PRINTING"
	PriceFinish   PriceKind = "FINISH"
)

// ConfigGlobal is the system-wide pricing singleton.
type ConfigGlobal struct {
	MarginDefault     *float64
	MarkupOperational *float64
	RoundingStep      *float64
	RoundingStrategy  *RoundingStrategy
	PricingStrategy   *PricingStrategy
	LossFactor        *float64
	VatPercent        *float64
	PrintingHourCost  *float64
	SetupTimeMin      *float64
	MinPricePerPiece  *float64
}

type Category struct {
	ID               int64
	Name             string
	LossFactor       *float64
	RoundingStep     *float64
	RoundingStrategy *RoundingStrategy
	PricingStrategy  *PricingStrategy
	MinPricePerPiece *float64
}

type Material struct {
	ID         int64
	Name       string
	Unit       Unit
	UnitCost   float64
	LossFactor *float64
}

// MaterialVariant refines a material with physical sheet dimensions.
type MaterialVariant struct {
	ID         int64
	MaterialID int64
	Label      string
	WidthMm    *float64
	HeightMm   *float64
}

// ProductMaterial is one material composition line of a product.
type ProductMaterial struct {
	ID          int64
	Material    Material
	Variant     *MaterialVariant
	QtyPerUnit  float64
	WasteFactor float64
	LossFactor  *float64
}

type Printing struct {
	ID           int64
	Name         string
	UnitPrice    float64
	Yield        *float64
	SetupMode    SetupMode
	SetupFlatFee *float64
	SetupMinutes *float64
	MinFee       *float64
	LossFactor   *float64
}

type Finish struct {
	ID          int64
	Name        string
	BaseCost    float64
	CalcType    CalcType
	MinFee      *float64
	AreaStepM2  *float64
	MinPerPiece *float64
	LossFactor  *float64
}

// ProductFinish links a finish to a product. ID 0 marks an ad-hoc finish
// added for a single quote.
type ProductFinish struct {
	ID           int64
	Finish       Finish
	CalcType     *CalcType
	QtyPerUnit   *float64
	CostOverride *float64
}

type SupplierPrice struct {
	ID           int64
	SupplierName string
	Unit         Unit
	UnitCost     float64
}

type Product struct {
	ID               int64
	Name             string
	Category         *Category
	Printing         *Printing
	PrintSides       int
	Materials        []ProductMaterial
	Finishes         []ProductFinish
	SupplierPrices   []SupplierPrice
	WidthMm          *float64
	HeightMm         *float64
	Attributes       map[string]any
	MinOrderQty      *float64
	MinOrderValue    *float64
	RoundingStep     *float64
	RoundingStrategy *RoundingStrategy
	PricingStrategy  *PricingStrategy
	MarkupDefault    *float64
	MarginDefault    *float64
	MinPricePerPiece *float64
	SourcingMode     *SourcingMode
}

// CategoryID returns 0 when the product has no category.
func (p *Product) CategoryID() int64 {
	if p.Category == nil {
		return 0
	}
	return p.Category.ID
}

// Clone returns a copy whose slices can be changed without touching p.
func (p *Product) Clone() *Product {
	c := *p
	c.Materials = append([]ProductMaterial(nil), p.Materials...)
	c.Finishes = append([]ProductFinish(nil), p.Finishes...)
	c.SupplierPrices = append([]SupplierPrice(nil), p.SupplierPrices...)
	if p.Attributes != nil {
		c.Attributes = make(map[string]any, len(p.Attributes))
		for k, v := range p.Attributes {
			c.Attributes[k] = v
		}
	}
	return &c
}

type CustomerGroup struct {
	ID   int64
	Name string
}

type Customer struct {
	ID      int64
	Name    string
	GroupID *int64
}

// CustomerPrice overrides the catalog cost of a material, printing or finish
// for one customer or customer group. Sides only applies to printings.
type CustomerPrice struct {
	ID              int64
	Kind            PriceKind
	CustomerID      *int64
	CustomerGroupID *int64
	EntityID        int64
	Sides           *int
	Value           float64
	Priority        int
	IsCurrent       bool
}

// ProductCustomerOverride carries pricing preferences for one customer and product.
type ProductCustomerOverride struct {
	ID               int64
	CustomerID       int64
	ProductID        int64
	MarkupDefault    *float64
	MarginDefault    *float64
	RoundingStep     *float64
	MinPricePerPiece *float64
	Priority         int
	IsCurrent        bool
}

// MarginRule is a fixed margin for a scope.
type MarginRule struct {
	ID         int64
	Scope      Scope
	CategoryID *int64
	ProductID  *int64
	Margin     float64
	Active     bool
	StartsAt   time.Time
}

// MarginRuleDynamic adds a signed margin adjustment once thresholds are met.
type MarginRuleDynamic struct {
	ID              int64
	Scope           Scope
	CategoryID      *int64
	ProductID       *int64
	CustomerID      *int64
	CustomerGroupID *int64
	Adjustment      float64
	MinSubtotal     *float64
	MinQuantity     *float64
	Priority        int
	Active          bool
}
