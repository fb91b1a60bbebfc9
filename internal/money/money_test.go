package money

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToNumber(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want float64
	}{
		{"nil", nil, 0},
		{"float", 1.25, 1.25},
		{"nil pointer", (*float64)(nil), 0},
		{"pointer", Ptr(3.5), 3.5},
		{"int", 7, 7},
		{"string", " 12.3400 ", 12.34},
		{"empty string", "", 0},
		{"garbage", "abc", 0},
		{"bytes", []byte("0.10"), 0.10},
		{"decimal", decimal.RequireFromString("19.99"), 19.99},
		{"null decimal", decimal.NullDecimal{}, 0},
		{"nan", math.NaN(), 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, ToNumber(tc.in), 1e-12)
		})
	}
}

func TestRoundToStep(t *testing.T) {
	assert.InDelta(t, 23.40, RoundToStep(15.0*1.20*1.30, 0.05), 1e-9)
	assert.InDelta(t, 10.5, RoundToStep(10.26, 0.5), 1e-9)
	assert.InDelta(t, 10.0, RoundToStep(10.24, 0.5), 1e-9)
	assert.InDelta(t, 120, RoundToStep(117, 10), 1e-9)

	x := 17.123456
	assert.Equal(t, x, RoundToStep(x, 0))
	assert.Equal(t, x, RoundToStep(x, -1))
}

func TestRoundToStepLandsOnMultiples(t *testing.T) {
	for _, step := range []float64{0.01, 0.05, 0.1, 0.25, 1, 5} {
		for _, x := range []float64{0.004, 1.337, 23.399999, 99.99, 1234.5678} {
			got := RoundToStep(x, step)
			ratio := got / step
			assert.InDelta(t, math.Round(ratio), ratio, 1e-6, "step=%v x=%v", step, x)
		}
	}
}

func TestRoundMoney2(t *testing.T) {
	assert.Equal(t, 1.01, RoundMoney2(1.005))
	assert.Equal(t, 2.35, RoundMoney2(2.345))
	assert.Equal(t, 10.0, RoundMoney2(9.999))
}

func TestCeilInt(t *testing.T) {
	assert.Equal(t, 111.0, CeilInt(110.2))
	assert.Equal(t, 110.0, CeilInt(100*1.1))
	assert.Equal(t, 3.0, CeilInt(3))
	assert.Equal(t, 0.0, CeilInt(math.Inf(1)))
}

func TestNullNumberScan(t *testing.T) {
	var n NullNumber
	require.NoError(t, n.Scan(nil))
	assert.Nil(t, n.Ptr())
	assert.Equal(t, 0.0, n.Float())

	require.NoError(t, n.Scan([]byte("0.2300")))
	require.NotNil(t, n.Ptr())
	assert.InDelta(t, 0.23, *n.Ptr(), 1e-12)

	require.NoError(t, n.Scan(int64(4)))
	assert.Equal(t, 4.0, n.Float())

	v, err := NewNullNumber(nil).Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}
