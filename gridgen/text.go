package gridgen

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/pdrpinto/gridastar"
)

// ParseText reads an ASCII map: '#' or 'X' blocked, '.' free, 'S' start and
// 'G' goal. Blank lines and surrounding whitespace are ignored.
func ParseText(r io.Reader) (*gridastar.Grid, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read map")
	}
	return ParseLines(lines, nil, nil)
}

// ParseLines builds a grid from map lines. A non-nil start or goal overrides
// the 'S' / 'G' markers, which are then optional.
func ParseLines(lines []string, start, goal *gridastar.Coord) (*gridastar.Grid, error) {
	var cells [][]bool
	var markedStart, markedGoal *gridastar.Coord
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		row := make([]bool, 0, len(line))
		for col, ch := range line {
			here := gridastar.Coord{Row: len(cells), Col: col}
			switch ch {
			case '#', 'X':
				row = append(row, true)
			case '.':
				row = append(row, false)
			case 'S':
				if markedStart != nil {
					return nil, errors.Wrapf(gridastar.ErrInvalidGrid, "second start at %v", here)
				}
				markedStart = &here
				row = append(row, false)
			case 'G':
				if markedGoal != nil {
					return nil, errors.Wrapf(gridastar.ErrInvalidGrid, "second goal at %v", here)
				}
				markedGoal = &here
				row = append(row, false)
			default:
				return nil, errors.Wrapf(gridastar.ErrInvalidGrid, "unknown cell %q at %v", ch, here)
			}
		}
		cells = append(cells, row)
	}

	if start == nil {
		start = markedStart
	}
	if goal == nil {
		goal = markedGoal
	}
	if start == nil || goal == nil {
		return nil, errors.Wrap(gridastar.ErrInvalidGrid, "map needs a start and a goal")
	}
	return gridastar.NewGrid(cells, *start, *goal)
}
