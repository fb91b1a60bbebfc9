// Package imposition computes how many pieces fit on a raw material sheet.
package imposition

import "math"

// Default margins applied when a sheet material is imposed for a quote.
const (
	DefaultBleedMm  = 3.0
	DefaultGutterMm = 2.0
)

// Input describes a piece, a sheet and the margins between them. All sizes are mm.
type Input struct {
	PieceWidth  float64
	PieceHeight float64
	SheetWidth  float64
	SheetHeight float64
	BleedMm     float64
	GutterMm    float64
}

// Layout is one orientation's grid.
type Layout struct {
	Across int `json:"across"`
	Down   int `json:"down"`
	Pieces int `json:"pieces"`
}

// Result is the best layout found. PiecesPerSheet is 0 when the piece does
// not fit in either orientation.
type Result struct {
	PiecesPerSheet int    `json:"piecesPerSheet"`
	Rotated        bool   `json:"rotated"`
	Natural        Layout `json:"natural"`
	Turned         Layout `json:"turned"`
}

// Fit tries the natural and the 90° rotated orientation and keeps the one
// with more pieces. Ties keep the natural orientation.
func Fit(in Input) Result {
	bleed := math.Max(in.BleedMm, 0)
	gutter := math.Max(in.GutterMm, 0)

	usableW := in.SheetWidth - 2*bleed
	usableH := in.SheetHeight - 2*bleed

	natural := grid(usableW, usableH, in.PieceWidth, in.PieceHeight, gutter)
	turned := grid(usableW, usableH, in.PieceHeight, in.PieceWidth, gutter)

	res := Result{Natural: natural, Turned: turned, PiecesPerSheet: natural.Pieces}
	if turned.Pieces > natural.Pieces {
		res.PiecesPerSheet = turned.Pieces
		res.Rotated = true
	}
	return res
}

func grid(usableW, usableH, pieceW, pieceH, gutter float64) Layout {
	if usableW <= 0 || usableH <= 0 || pieceW <= 0 || pieceH <= 0 {
		return Layout{}
	}
	across := int(math.Floor((usableW + gutter) / (pieceW + gutter)))
	down := int(math.Floor((usableH + gutter) / (pieceH + gutter)))
	if across < 0 {
		across = 0
	}
	if down < 0 {
		down = 0
	}
	return Layout{Across: across, Down: down, Pieces: across * down}
}
