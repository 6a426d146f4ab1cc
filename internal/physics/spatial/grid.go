// Package spatial provides the uniform grid used as the broad phase for
// body-body collision detection.
//
// Cells hold body indices (not pointers) in preallocated slices so that a
// rebuild every sub-step produces no garbage.
package spatial

import (
	"math"
)

// Cell identifies a grid cell by its integer column and row.
type Cell struct {
	X, Y int
}

// forward lists the neighbour offsets visited from every cell. Together with
// the cell itself they cover all eight neighbours exactly once per pair of
// cells, so no pair of bodies is ever tested twice.
var forward = [4]Cell{
	{X: 1, Y: 0},
	{X: -1, Y: 1},
	{X: 0, Y: 1},
	{X: 1, Y: 1},
}

// Grid buckets bodies by floor(position / cellSize).
//
// The cell size must be at least the largest collision distance (the sum of
// the two largest radii) so that any overlapping pair lands in the same or
// adjacent cells.
//
// Memory layout: cells are stored in row-major order (cells[row*cols+col]).
// Positions outside the grid are clamped onto the border cells.
type Grid struct {
	cellSize    float64
	invCellSize float64
	cols, rows  int
	cells       [][]uint32
}

// NewGrid creates a grid covering width x height.
// maxBodies is used to preallocate cell capacity.
func NewGrid(width, height, cellSize float64, maxBodies int) *Grid {
	g := &Grid{}
	g.Reset(width, height, cellSize, maxBodies)
	return g
}

// Reset resizes the grid. Existing cell storage is dropped.
func (g *Grid) Reset(width, height, cellSize float64, maxBodies int) {
	if cellSize <= 0 {
		cellSize = 1
	}
	cols := int(math.Ceil(width / cellSize))
	rows := int(math.Ceil(height / cellSize))
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	cells := make([][]uint32, cols*rows)
	avgPerCell := maxBodies / len(cells)
	if avgPerCell < 4 {
		avgPerCell = 4
	}
	for i := range cells {
		cells[i] = make([]uint32, 0, avgPerCell)
	}

	g.cellSize = cellSize
	g.invCellSize = 1.0 / cellSize
	g.cols = cols
	g.rows = rows
	g.cells = cells
}

// Clear resets all cells without deallocating underlying memory.
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// CellOf returns the (clamped) cell containing (x, y).
func (g *Grid) CellOf(x, y float64) Cell {
	c := Cell{
		X: int(math.Floor(x * g.invCellSize)),
		Y: int(math.Floor(y * g.invCellSize)),
	}
	if c.X < 0 {
		c.X = 0
	}
	if c.X >= g.cols {
		c.X = g.cols - 1
	}
	if c.Y < 0 {
		c.Y = 0
	}
	if c.Y >= g.rows {
		c.Y = g.rows - 1
	}
	return c
}

// Insert adds body id at position (x, y).
func (g *Grid) Insert(id uint32, x, y float64) {
	c := g.CellOf(x, y)
	idx := c.Y*g.cols + c.X
	g.cells[idx] = append(g.cells[idx], id)
}

// Bodies returns the ids bucketed in cell c. The slice is owned by the grid.
func (g *Grid) Bodies(c Cell) []uint32 {
	if c.X < 0 || c.X >= g.cols || c.Y < 0 || c.Y >= g.rows {
		return nil
	}
	return g.cells[c.Y*g.cols+c.X]
}

// ForEachPair calls fn once for every candidate pair: all pairs inside a
// cell, then each body against the bodies of the forward neighbour cells.
// The narrow phase is left to fn.
func (g *Grid) ForEachPair(fn func(a, b uint32)) {
	for row := 0; row < g.rows; row++ {
		for col := 0; col < g.cols; col++ {
			cell := g.cells[row*g.cols+col]
			if len(cell) == 0 {
				continue
			}

			for i := 0; i < len(cell); i++ {
				for j := i + 1; j < len(cell); j++ {
					fn(cell[i], cell[j])
				}
			}

			for _, off := range forward {
				nc, nr := col+off.X, row+off.Y
				if nc < 0 || nc >= g.cols || nr >= g.rows {
					continue
				}
				other := g.cells[nr*g.cols+nc]
				for _, a := range cell {
					for _, b := range other {
						fn(a, b)
					}
				}
			}
		}
	}
}

// Stats reports the grid shape and how bodies are spread across cells.
func (g *Grid) Stats() GridStats {
	st := GridStats{Cols: g.cols, Rows: g.rows, CellSize: g.cellSize, TotalCells: len(g.cells)}
	for _, cell := range g.cells {
		n := len(cell)
		st.TotalBodies += n
		st.MaxInCell = max(st.MaxInCell, n)
		if n > 0 {
			st.NonEmptyCells++
		}
	}
	if st.NonEmptyCells > 0 {
		st.AvgPerNonEmpty = float64(st.TotalBodies) / float64(st.NonEmptyCells)
	}
	return st
}

// GridStats describes broad-phase occupancy.
type GridStats struct {
	Cols, Rows     int
	CellSize       float64
	TotalCells     int
	NonEmptyCells  int
	TotalBodies    int
	MaxInCell      int
	AvgPerNonEmpty float64
}
