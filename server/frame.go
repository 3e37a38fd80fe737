package server

import (
	"cmp"
	"slices"

	"github.com/pdrpinto/gridastar"
	"github.com/pdrpinto/gridastar/driver"
)

type point = [2]int

// frameJSON is the wire form of a driver.Frame. Coordinates are [row, col]
// and every list is sorted so equal frames encode identically.
type frameJSON struct {
	Step    int              `json:"step"`
	Rows    int              `json:"rows"`
	Cols    int              `json:"cols"`
	Walls   []point          `json:"walls"`
	Open    []point          `json:"open"`
	Closed  []point          `json:"closed"`
	Path    []point          `json:"path"`
	Current point            `json:"current"`
	Start   point            `json:"start"`
	Goal    point            `json:"goal"`
	Status  gridastar.Status `json:"status"`
	Done    bool             `json:"done"`
	Found   bool             `json:"found"`
	Cost    float64          `json:"cost"`
	Paused  bool             `json:"paused"`
}

func toPoint(c gridastar.Coord) point { return point{c.Row, c.Col} }

func setToList(m map[gridastar.Coord]bool) []point {
	res := make([]point, 0, len(m))
	for c, ok := range m {
		if ok {
			res = append(res, toPoint(c))
		}
	}
	slices.SortFunc(res, func(a, b point) int {
		return cmp.Or(cmp.Compare(a[0], b[0]), cmp.Compare(a[1], b[1]))
	})
	return res
}

func newFrameJSON(frame driver.Frame, paused bool) frameJSON {
	grid, snapshot := frame.Grid, frame.Snapshot

	walls := make([]point, 0)
	for r, row := range grid.Cells() {
		for c, blocked := range row {
			if blocked {
				walls = append(walls, point{r, c})
			}
		}
	}
	path := make([]point, 0, len(snapshot.Path))
	for _, c := range snapshot.Path {
		path = append(path, toPoint(c))
	}

	return frameJSON{
		Step:    snapshot.StepIndex,
		Rows:    grid.Rows(),
		Cols:    grid.Cols(),
		Walls:   walls,
		Open:    setToList(snapshot.Frontier),
		Closed:  setToList(snapshot.Visited),
		Path:    path,
		Current: toPoint(snapshot.Current),
		Start:   toPoint(grid.Start()),
		Goal:    toPoint(grid.Goal()),
		Status:  snapshot.Status,
		Done:    snapshot.Status.Done(),
		Found:   snapshot.Status == gridastar.Succeeded,
		Cost:    snapshot.Cost,
		Paused:  paused,
	}
}
