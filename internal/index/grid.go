package index

import (
	"fmt"
	"math"

	"github.com/jengzang/venue-risk-backend-go/internal/spatial"
)

// DefaultCellSizeKm is the grid cell edge used when the caller passes none
const DefaultCellSizeKm = 10.0

// MinCellSizeKm is the smallest accepted cell edge. Finer grids would need
// more columns than fit the cell arithmetic.
const MinCellSizeKm = 0.1

// CellID addresses one grid cell. Row 0 starts at latitude -90 and column 0
// at longitude -180.
type CellID struct {
	Row int
	Col int
}

// String formats the id as "{row}_{col}"
func (c CellID) String() string {
	return fmt.Sprintf("%d_%d", c.Row, c.Col)
}

// Grid is a uniform decomposition of the globe into cells of CellSizeKm
// measured along a meridian. Cells keep a constant size in degrees, so they
// narrow in kilometers towards the poles. The longitude step is stretched
// slightly so a whole number of columns spans 360 degrees and the last column
// meets column 0 at the antimeridian.
type Grid struct {
	CellSizeKm float64
	step       float64 // latitude degrees
	lonStep    float64 // longitude degrees
	rows       int
	cols       int
}

// NewGrid creates a grid with the given cell size; non-positive sizes fall
// back to DefaultCellSizeKm.
func NewGrid(cellSizeKm float64) Grid {
	if cellSizeKm <= 0 || math.IsNaN(cellSizeKm) {
		cellSizeKm = DefaultCellSizeKm
	}
	step := cellSizeKm / spatial.KmPerDegree
	cols := int(math.Ceil(360 / step))
	return Grid{
		CellSizeKm: cellSizeKm,
		step:       step,
		lonStep:    360 / float64(cols),
		rows:       int(math.Ceil(180 / step)),
		cols:       cols,
	}
}

// StepDegrees returns the cell edges in latitude and longitude degrees
func (g Grid) StepDegrees() (lat, lon float64) {
	return g.step, g.lonStep
}

// Dimensions returns the number of rows and columns
func (g Grid) Dimensions() (rows, cols int) {
	return g.rows, g.cols
}

func (g Grid) row(lat float64) int {
	r := int(math.Floor((lat + 90) / g.step))
	if r < 0 {
		return 0
	}
	if r >= g.rows {
		return g.rows - 1
	}
	return r
}

func (g Grid) col(lon float64) int {
	c := int(math.Floor((lon + 180) / g.lonStep))
	if c < 0 {
		return 0
	}
	if c >= g.cols {
		return g.cols - 1
	}
	return c
}

// CellOf returns the cell containing p
func (g Grid) CellOf(p spatial.Point) CellID {
	return CellID{Row: g.row(p.Lat), Col: g.col(p.Lon)}
}

// Bounds returns the latitude/longitude box of a cell, clipped to the globe
func (g Grid) Bounds(c CellID) spatial.BoundingBox {
	box := spatial.BoundingBox{
		MinLat: -90 + float64(c.Row)*g.step,
		MaxLat: math.Min(90, -90+float64(c.Row+1)*g.step),
		MinLon: -180 + float64(c.Col)*g.lonStep,
		MaxLon: math.Min(180, -180+float64(c.Col+1)*g.lonStep),
	}
	if c.Col == g.cols-1 {
		box.MaxLon = 180
	}
	return box
}

// Center returns the midpoint of the cell box
func (g Grid) Center(c CellID) spatial.Point {
	b := g.Bounds(c)
	return spatial.Point{Lat: (b.MinLat + b.MaxLat) / 2, Lon: (b.MinLon + b.MaxLon) / 2}
}

// Neighbors returns the 8-connected neighbours of c. Columns wrap across
// the antimeridian; rows stop at the poles.
func (g Grid) Neighbors(c CellID) []CellID {
	out := make([]CellID, 0, 8)
	seen := make(map[CellID]bool, 8)
	for dr := -1; dr <= 1; dr++ {
		r := c.Row + dr
		if r < 0 || r >= g.rows {
			continue
		}
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			n := CellID{Row: r, Col: ((c.Col+dc)%g.cols + g.cols) % g.cols}
			if n == c || seen[n] {
				continue
			}
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

// lonSpan is a closed longitude interval that does not cross the antimeridian
type lonSpan struct {
	lo, hi float64
}

// colsFor lists the distinct columns touched by the given longitude spans
func (g Grid) colsFor(spans []lonSpan) []int {
	var cols []int
	seen := make(map[int]bool)
	for _, s := range spans {
		for c := g.col(s.lo); c <= g.col(s.hi); c++ {
			if !seen[c] {
				seen[c] = true
				cols = append(cols, c)
			}
		}
	}
	return cols
}

func (g Grid) allCols() []int {
	cols := make([]int, g.cols)
	for i := range cols {
		cols[i] = i
	}
	return cols
}
