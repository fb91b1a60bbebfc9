// Package export renders quote data into spreadsheets.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/Simplici0/printshop-quotes/internal/pricing"
)

const matrixSheet = "Matrix"

var matrixHeaders = []string{"Quantity", "Net price", "Gross price", "Unit gross"}

// MatrixMeta labels an exported matrix.
type MatrixMeta struct {
	ProductID   int64
	ProductName string
}

// MatrixXLSX builds a workbook with one row per matrix quantity.
func MatrixXLSX(meta MatrixMeta, rows []pricing.MatrixRow) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", matrixSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	title := fmt.Sprintf("Product %d", meta.ProductID)
	if meta.ProductName != "" {
		title += " - " + meta.ProductName
	}
	if err := f.SetCellValue(matrixSheet, "A1", title); err != nil {
		return nil, fmt.Errorf("write title: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return nil, fmt.Errorf("money style: %w", err)
	}

	for i, h := range matrixHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 3)
		if err := f.SetCellValue(matrixSheet, cell, h); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}
	if err := f.SetCellStyle(matrixSheet, "A3", "D3", headerStyle); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}

	for i, r := range rows {
		line := i + 4
		values := []any{r.Quantity, r.PriceNet, r.PriceGross, r.UnitGross}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, line)
			if err := f.SetCellValue(matrixSheet, cell, v); err != nil {
				return nil, fmt.Errorf("write row %d: %w", i, err)
			}
		}
	}
	if len(rows) > 0 {
		last := len(rows) + 3
		if err := f.SetCellStyle(matrixSheet, "B4", fmt.Sprintf("D%d", last), moneyStyle); err != nil {
			return nil, fmt.Errorf("style rows: %w", err)
		}
	}

	for i, w := range []float64{12, 14, 14, 12} {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(matrixSheet, col, col, w); err != nil {
			return nil, fmt.Errorf("column width: %w", err)
		}
	}
	return f, nil
}

// WriteMatrixXLSX renders the matrix straight to w.
func WriteMatrixXLSX(w io.Writer, meta MatrixMeta, rows []pricing.MatrixRow) error {
	f, err := MatrixXLSX(meta, rows)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
