package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdrpinto/gridastar"
	"github.com/pdrpinto/gridastar/gridgen"
)

func solved(t *testing.T, lines ...string) (*gridastar.Grid, gridastar.Snapshot) {
	t.Helper()
	grid, err := gridgen.ParseText(strings.NewReader(strings.Join(lines, "\n")))
	require.NoError(t, err)
	engine, err := gridastar.NewEngine(grid)
	require.NoError(t, err)
	for engine.Step() == gridastar.Running {
	}
	return grid, engine.Snapshot()
}

func TestASCIIInitialFrame(t *testing.T) {
	grid, err := gridgen.ParseText(strings.NewReader("S#.\n..G"))
	require.NoError(t, err)
	engine, err := gridastar.NewEngine(grid)
	require.NoError(t, err)

	assert.Equal(t, "S#.\n..G\n", ASCII(grid, engine.Snapshot()))
}

func TestASCIISolvedFrames(t *testing.T) {
	grid, snapshot := solved(t,
		"S..",
		"...",
		"..G",
	)
	assert.Equal(t, "Soo\no*o\nooG\n", ASCII(grid, snapshot))

	grid, snapshot = solved(t,
		"S..",
		"##.",
		"G..",
	)
	assert.Equal(t, "S*o\n##*\nG*o\n", ASCII(grid, snapshot))
}

func pixel(img image.Image, x, y int) color.RGBA {
	return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
}

func TestPNGColors(t *testing.T) {
	grid, err := gridgen.ParseText(strings.NewReader("S#\n.G"))
	require.NoError(t, err)
	engine, err := gridastar.NewEngine(grid)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, PNG(&buf, grid, engine.Snapshot(), 10))
	img, err := png.Decode(&buf)
	require.NoError(t, err)

	assert.Equal(t, image.Rect(0, 0, 20, 20), img.Bounds())
	assert.Equal(t, ColorStart, pixel(img, 5, 5))
	assert.Equal(t, ColorBlocked, pixel(img, 15, 5))
	assert.Equal(t, ColorFree, pixel(img, 5, 15))
	assert.Equal(t, ColorGoal, pixel(img, 15, 15))
}

func TestImagePathCoversEndpoints(t *testing.T) {
	grid, snapshot := solved(t,
		"S..",
		"##.",
		"G..",
	)
	img := Image(grid, snapshot, 0)

	assert.Equal(t, image.Rect(0, 0, 3*DefaultCellSize, 3*DefaultCellSize), img.Bounds())
	center := DefaultCellSize / 2
	at := func(r, c int) color.RGBA {
		return pixel(img, c*DefaultCellSize+center, r*DefaultCellSize+center)
	}
	assert.Equal(t, ColorPath, at(0, 0))
	assert.Equal(t, ColorPath, at(2, 0))
	assert.Equal(t, ColorPath, at(1, 2))
	assert.Equal(t, ColorFrontier, at(0, 2))
	assert.Equal(t, ColorBlocked, at(1, 0))
}
