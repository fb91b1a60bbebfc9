package pricing

// Source names the level that supplied a resolved value.
type Source string

// Sources in rough cascade order.
const (
	SourceCustomer      Source = "CUSTOMER"
	SourceCustomerGroup Source = "CUSTOMER_GROUP"
	SourceOverride      Source = "OVERRIDE"
	SourceComposition   Source = "COMPOSITION"
	SourceEntity        Source = "ENTITY"
	SourceProduct       Source = "PRODUCT"
	SourceCategory      Source = "CATEGORY"
	SourceGlobal        Source = "GLOBAL"
	SourceRule          Source = "RULE"
	SourceDefault       Source = "DEFAULT"
)

// Candidate is one level of a preference cascade. A nil Value means the
// level has nothing to say.
type Candidate[T any] struct {
	Value  *T
	Source Source
}

// From builds a candidate; a nil v makes the level undefined.
func From[T any](src Source, v *T) Candidate[T] {
	return Candidate[T]{Value: v, Source: src}
}

// Resolved is the winning value of a cascade and where it came from.
type Resolved[T any] struct {
	Value  T
	Source Source
}

// FirstDefined walks candidates top-down and returns the first defined
// value, or fallback tagged SourceDefault.
func FirstDefined[T any](fallback T, candidates ...Candidate[T]) Resolved[T] {
	for _, c := range candidates {
		if c.Value != nil {
			return Resolved[T]{Value: *c.Value, Source: c.Source}
		}
	}
	return Resolved[T]{Value: fallback, Source: SourceDefault}
}
