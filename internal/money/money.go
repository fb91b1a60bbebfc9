// Package money holds the numeric primitives used by quote arithmetic.
package money

import (
	"database/sql/driver"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ceilPrecision trims binary noise (e.g. 110.00000000000001) before taking a ceiling.
const ceilPrecision = 9

// ToNumber converts a decimal-like value to float64. Nil, empty strings and
// unparseable values become 0.
func ToNumber(v any) float64 {
	switch x := v.(type) {
	case nil:
		return 0
	case float64:
		return finite(x)
	case *float64:
		if x == nil {
			return 0
		}
		return finite(*x)
	case float32:
		return finite(float64(x))
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case int32:
		return float64(x)
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return 0
		}
		return d.InexactFloat64()
	case []byte:
		return ToNumber(string(x))
	case decimal.Decimal:
		return x.InexactFloat64()
	case decimal.NullDecimal:
		if !x.Valid {
			return 0
		}
		return x.Decimal.InexactFloat64()
	case NullNumber:
		return x.Float()
	default:
		return 0
	}
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// RoundToStep rounds value to the nearest multiple of step. A zero or
// negative step leaves value untouched.
func RoundToStep(value, step float64) float64 {
	if step <= 0 || math.IsNaN(step) {
		return value
	}
	s := decimal.NewFromFloat(step)
	return decimal.NewFromFloat(value).Div(s).Round(0).Mul(s).InexactFloat64()
}

// RoundMoney2 rounds to cents.
func RoundMoney2(value float64) float64 {
	return decimal.NewFromFloat(value).Round(2).InexactFloat64()
}

// CeilInt returns the smallest whole number >= value.
func CeilInt(value float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	return decimal.NewFromFloat(value).Round(ceilPrecision).Ceil().InexactFloat64()
}

// Ptr returns a pointer to v.
func Ptr(v float64) *float64 {
	return &v
}

// NullNumber is a nullable numeric column scanned through decimal parsing.
type NullNumber struct {
	decimal.NullDecimal
}

// Scan implements sql.Scanner.
func (n *NullNumber) Scan(value any) error {
	return n.NullDecimal.Scan(value)
}

// Value implements driver.Valuer.
func (n NullNumber) Value() (driver.Value, error) {
	return n.NullDecimal.Value()
}

// Float returns the value or 0 when NULL.
func (n NullNumber) Float() float64 {
	if !n.Valid {
		return 0
	}
	return n.Decimal.InexactFloat64()
}

// Ptr returns nil for NULL.
func (n NullNumber) Ptr() *float64 {
	if !n.Valid {
		return nil
	}
	f := n.Decimal.InexactFloat64()
	return &f
}

// NewNullNumber wraps an optional float for writes.
func NewNullNumber(v *float64) NullNumber {
	if v == nil {
		return NullNumber{}
	}
	return NullNumber{decimal.NullDecimal{Decimal: decimal.NewFromFloat(*v), Valid: true}}
}
