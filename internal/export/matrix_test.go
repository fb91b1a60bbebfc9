package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Simplici0/printshop-quotes/internal/pricing"
)

func TestWriteMatrixXLSX(t *testing.T) {
	rows := []pricing.MatrixRow{
		{Quantity: 100, PriceNet: 23.40, PriceGross: 28.782, UnitGross: 0.28782},
		{Quantity: 500, PriceNet: 117, PriceGross: 143.91, UnitGross: 0.28782},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteMatrixXLSX(&buf, MatrixMeta{ProductID: 1, ProductName: "Flyer A6"}, rows))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue(matrixSheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Product 1 - Flyer A6", title)

	got, err := f.GetRows(matrixSheet)
	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.Equal(t, matrixHeaders, got[2])

	raw, err := f.GetCellValue(matrixSheet, "B4", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "23.4", raw)
	raw, err = f.GetCellValue(matrixSheet, "A5", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "500", raw)
}

func TestMatrixXLSXEmpty(t *testing.T) {
	f, err := MatrixXLSX(MatrixMeta{ProductID: 7}, nil)
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue(matrixSheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Product 7", title)
}
