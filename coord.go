package gridastar

import (
	"fmt"
	"math"
)

// Coord addresses a grid cell. It is comparable and used directly as a map key.
type Coord struct {
	Row int
	Col int
}

func (c Coord) String() string { return fmt.Sprintf("(%d,%d)", c.Row, c.Col) }

// Add returns c shifted by d.
func (c Coord) Add(d Coord) Coord { return Coord{Row: c.Row + d.Row, Col: c.Col + d.Col} }

// Euclidean is the search heuristic: straight-line distance between a and b.
func Euclidean(a, b Coord) float64 {
	dr := float64(a.Row - b.Row)
	dc := float64(a.Col - b.Col)
	return math.Sqrt(dr*dr + dc*dc)
}

// Chebyshev is the number of king moves between a and b on an open grid.
func Chebyshev(a, b Coord) int {
	return max(abs(a.Row-b.Row), abs(a.Col-b.Col))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
