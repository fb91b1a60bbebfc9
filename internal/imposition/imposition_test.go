package imposition

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFitPicksBetterOrientation(t *testing.T) {
	res := Fit(Input{
		PieceWidth:  90,
		PieceHeight: 50,
		SheetWidth:  1000,
		SheetHeight: 700,
		BleedMm:     DefaultBleedMm,
		GutterMm:    DefaultGutterMm,
	})

	// usable 994 x 694
	assert.Equal(t, Layout{Across: 10, Down: 13, Pieces: 130}, res.Natural)
	assert.Equal(t, Layout{Across: 19, Down: 7, Pieces: 133}, res.Turned)
	assert.Equal(t, 133, res.PiecesPerSheet)
	assert.True(t, res.Rotated)
}

func TestFitKeepsNaturalOnTie(t *testing.T) {
	res := Fit(Input{PieceWidth: 100, PieceHeight: 100, SheetWidth: 500, SheetHeight: 500})
	assert.Equal(t, 25, res.PiecesPerSheet)
	assert.False(t, res.Rotated)
}

func TestFitPieceLargerThanSheet(t *testing.T) {
	res := Fit(Input{PieceWidth: 800, PieceHeight: 1200, SheetWidth: 700, SheetHeight: 1000, BleedMm: 3, GutterMm: 2})
	assert.Equal(t, 0, res.PiecesPerSheet)
	assert.False(t, res.Rotated)
}

func TestFitOnlyRotatedFits(t *testing.T) {
	res := Fit(Input{PieceWidth: 600, PieceHeight: 300, SheetWidth: 400, SheetHeight: 700})
	assert.Equal(t, 0, res.Natural.Pieces)
	assert.Equal(t, 1, res.PiecesPerSheet)
	assert.True(t, res.Rotated)
}

func TestFitNegativeMarginsTreatedAsZero(t *testing.T) {
	neg := Fit(Input{PieceWidth: 100, PieceHeight: 50, SheetWidth: 1000, SheetHeight: 500, BleedMm: -5, GutterMm: -1})
	zero := Fit(Input{PieceWidth: 100, PieceHeight: 50, SheetWidth: 1000, SheetHeight: 500})
	assert.Equal(t, zero, neg)
	assert.Equal(t, 100, neg.PiecesPerSheet)
}

func TestFitZeroDimensions(t *testing.T) {
	assert.Equal(t, 0, Fit(Input{SheetWidth: 1000, SheetHeight: 700}).PiecesPerSheet)
	assert.Equal(t, 0, Fit(Input{PieceWidth: 10, PieceHeight: 10}).PiecesPerSheet)
}
