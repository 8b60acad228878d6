// Package spatial provides cache-efficient spatial data structures for
// broad-phase collision/neighbor queries and AI navigation over the pitch.
//
// All structures use preallocated slices with integer indices (not
// pointers) to minimize GC pressure and maximize cache locality, and are
// built for a field centered on the origin (negative coordinates are
// expected on the home side and left touchline) rather than a screen-space
// grid with a top-left origin.
package spatial

import "math"

// Grid provides O(1) average spatial queries via fixed-size cells over a
// rectangular world that may extend into negative coordinates (the pitch is
// centered at the origin). Cell size should equal the largest query radius
// for optimal performance — for the match engine that's the 2.0m collision
// avoidance radius.
type Grid struct {
	originX, originY float64 // world coordinate of cell (0,0)'s corner
	cellSize         float64
	invCellSize      float64
	cols, rows       int
	cells            [][]uint32 // cells[row*cols+col] = entity indices
	scratch          []uint32   // reusable query-result buffer
	maxEntities      int
}

// NewGrid creates a grid covering [minX, minX+width] x [minY, minY+height].
func NewGrid(minX, minY, width, height, cellSize float64, maxEntities int) *Grid {
	cols := int(math.Ceil(width / cellSize))
	rows := int(math.Ceil(height / cellSize))
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	cells := make([][]uint32, cols*rows)
	avgPerCell := maxEntities / len(cells)
	if avgPerCell < 4 {
		avgPerCell = 4
	}
	for i := range cells {
		cells[i] = make([]uint32, 0, avgPerCell)
	}

	return &Grid{
		originX:     minX,
		originY:     minY,
		cellSize:    cellSize,
		invCellSize: 1.0 / cellSize,
		cols:        cols,
		rows:        rows,
		cells:       cells,
		scratch:     make([]uint32, 0, 64),
		maxEntities: maxEntities,
	}
}

// Clear resets all cells without deallocating underlying memory.
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert adds an entity at world position (x, y). entityID should be the
// index into the caller's entity slice.
func (g *Grid) Insert(entityID uint32, x, y float64) {
	g.cells[g.cellIndex(x, y)] = append(g.cells[g.cellIndex(x, y)], entityID)
}

func (g *Grid) cellCoord(x, y float64) (col, row int) {
	col = int((x - g.originX) * g.invCellSize)
	row = int((y - g.originY) * g.invCellSize)
	if col < 0 {
		col = 0
	}
	if col >= g.cols {
		col = g.cols - 1
	}
	if row < 0 {
		row = 0
	}
	if row >= g.rows {
		row = g.rows - 1
	}
	return col, row
}

func (g *Grid) cellIndex(x, y float64) int {
	col, row := g.cellCoord(x, y)
	return row*g.cols + col
}

// QueryRadius returns all entity IDs potentially within radius of (cx, cy).
// The returned candidates may include entities outside the radius; callers
// must perform a precise narrow-phase distance check. The returned slice is
// reused on the next call — copy it if it must outlive that call.
func (g *Grid) QueryRadius(cx, cy, radius float64) []uint32 {
	g.scratch = g.scratch[:0]

	minCol, minRow := g.cellCoord(cx-radius, cy-radius)
	maxCol, maxRow := g.cellCoord(cx+radius, cy+radius)

	for row := minRow; row <= maxRow; row++ {
		base := row * g.cols
		for col := minCol; col <= maxCol; col++ {
			g.scratch = append(g.scratch, g.cells[base+col]...)
		}
	}
	return g.scratch
}

// QueryCell returns all entity IDs in the cell containing (x, y).
func (g *Grid) QueryCell(x, y float64) []uint32 {
	return g.cells[g.cellIndex(x, y)]
}

// Stats reports grid occupancy, useful for tuning cell size.
type Stats struct {
	TotalCells     int
	NonEmptyCells  int
	TotalEntities  int
	MaxInCell      int
	AvgPerNonEmpty float64
}

// Stats computes current grid occupancy statistics.
func (g *Grid) Stats() Stats {
	var total, maxInCell, nonEmpty int
	for _, cell := range g.cells {
		n := len(cell)
		total += n
		if n > maxInCell {
			maxInCell = n
		}
		if n > 0 {
			nonEmpty++
		}
	}
	avg := 0.0
	if nonEmpty > 0 {
		avg = float64(total) / float64(nonEmpty)
	}
	return Stats{TotalCells: len(g.cells), NonEmptyCells: nonEmpty, TotalEntities: total, MaxInCell: maxInCell, AvgPerNonEmpty: avg}
}

// Dimensions returns the grid's cell-grid shape and cell size.
func (g *Grid) Dimensions() (cols, rows int, cellSize float64) {
	return g.cols, g.rows, g.cellSize
}
