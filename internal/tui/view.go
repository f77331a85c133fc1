package tui

import (
	"math"

	"github.com/playmatatu/tablesim/internal/game"
)

// World units covered by one terminal cell. Cells are roughly twice as tall
// as they are wide, so a ball keeps its shape on screen.
const (
	CellWidth  = 15.0
	CellHeight = 30.0
)

// statusRows is reserved at the bottom of the screen for the status line.
const statusRows = 1

// View maps between terminal cells and table coordinates.
type View struct {
	Cols, Rows int
}

// ViewForScreen sizes the table area of a cols x rows terminal.
func ViewForScreen(cols, rows int) View {
	rows -= statusRows
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return View{Cols: cols, Rows: rows}
}

// Bounds is the table size this view shows.
func (v View) Bounds() game.Bounds {
	return game.Bounds{Width: float64(v.Cols) * CellWidth, Height: float64(v.Rows) * CellHeight}
}

// CellCenter returns the table point at the middle of cell (x, y).
func (v View) CellCenter(x, y int) game.Vec2 {
	return game.NewVec2((float64(x)+0.5)*CellWidth, (float64(y)+0.5)*CellHeight)
}

// ClosestInCell returns the point of cell (x, y) nearest to p.
func (v View) ClosestInCell(x, y int, p game.Vec2) game.Vec2 {
	left, top := float64(x)*CellWidth, float64(y)*CellHeight
	return game.NewVec2(
		math.Max(left, math.Min(p.X, left+CellWidth)),
		math.Max(top, math.Min(p.Y, top+CellHeight)),
	)
}

// CellAt returns the cell containing p.
func (v View) CellAt(p game.Vec2) (int, int) {
	return int(math.Floor(p.X / CellWidth)), int(math.Floor(p.Y / CellHeight))
}

// InTable reports whether cell (x, y) is inside the table area.
func (v View) InTable(x, y int) bool {
	return x >= 0 && y >= 0 && x < v.Cols && y < v.Rows
}
