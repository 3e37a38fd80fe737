package gridastar

import "github.com/pkg/errors"

var (
	// ErrOutOfBounds is returned when a coordinate lies outside the grid.
	ErrOutOfBounds = errors.New("coordinate out of bounds")
	// ErrInvalidGrid is returned when a grid is malformed or its start or goal
	// is blocked or out of bounds.
	ErrInvalidGrid = errors.New("invalid grid")
)
