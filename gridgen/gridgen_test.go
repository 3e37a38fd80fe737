package gridgen

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdrpinto/gridastar"
)

func TestRandomIsDeterministic(t *testing.T) {
	options := DefaultOptions()
	options.Seed = 42

	first, err := Random(options)
	require.NoError(t, err)
	second, err := Random(options)
	require.NoError(t, err)

	assert.Equal(t, first.Cells(), second.Cells())
	assert.Equal(t, first.Goal(), second.Goal())
	assert.Equal(t, gridastar.Coord{}, first.Start())
	assert.NotEqual(t, first.Start(), first.Goal())
	assert.Equal(t, 30, first.Rows())
	assert.Equal(t, 30, first.Cols())
}

func TestRandomKeepsEndpointsFree(t *testing.T) {
	for seed := int64(1); seed <= 50; seed++ {
		grid, err := Random(Options{Rows: 6, Cols: 7, Density: 1, Seed: seed, Start: gridastar.Coord{Row: 2, Col: 3}})
		require.NoError(t, err)
		assert.Equal(t, 2, grid.FreeCount())
		assert.NoError(t, grid.Validate())
	}
}

func TestRandomDensityZeroIsOpen(t *testing.T) {
	grid, err := Random(Options{Rows: 5, Cols: 5, Density: 0, Seed: 3})
	require.NoError(t, err)
	assert.Equal(t, 25, grid.FreeCount())
}

func TestRandomRejectsBadOptions(t *testing.T) {
	cases := map[string]Options{
		"empty":         {Rows: 0, Cols: 5},
		"single cell":   {Rows: 1, Cols: 1},
		"density":       {Rows: 3, Cols: 3, Density: 2},
		"start outside": {Rows: 3, Cols: 3, Start: gridastar.Coord{Row: 3}},
	}
	for name, options := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Random(options)
			assert.Error(t, err)
		})
	}
}

func TestParseText(t *testing.T) {
	grid, err := ParseText(strings.NewReader(`
		S..
		#X.

		G..
	`))
	require.NoError(t, err)

	assert.Equal(t, 3, grid.Rows())
	assert.Equal(t, 3, grid.Cols())
	assert.Equal(t, gridastar.Coord{Row: 0, Col: 0}, grid.Start())
	assert.Equal(t, gridastar.Coord{Row: 2, Col: 0}, grid.Goal())
	assert.Equal(t, [][]bool{
		{false, false, false},
		{true, true, false},
		{false, false, false},
	}, grid.Cells())
}

func TestParseTextErrors(t *testing.T) {
	cases := map[string]string{
		"no goal":     "S..",
		"no start":    "..G",
		"two starts":  "S.S\n..G",
		"two goals":   "S.G\nG..",
		"bad symbol":  "S?G",
		"ragged rows": "S..\n.G",
	}
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseText(strings.NewReader(text))
			assert.ErrorIs(t, err, gridastar.ErrInvalidGrid)
		})
	}
}

func TestLoadScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "detour.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: detour
map:
  - "S.."
  - "##."
  - "..."
goal: [2, 0]
`), 0o600))

	grid, scenario, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "detour", scenario.Name)
	assert.Equal(t, gridastar.Coord{Row: 2, Col: 0}, grid.Goal())
	assert.Equal(t, gridastar.Coord{Row: 0, Col: 0}, grid.Start())
}

func TestScenarioStartOverridesMarker(t *testing.T) {
	scenario, err := ParseScenario([]byte("name: x\nmap: ['S.G']\nstart: [0, 1]\n"))
	require.NoError(t, err)
	grid, err := scenario.Grid()
	require.NoError(t, err)
	assert.Equal(t, gridastar.Coord{Row: 0, Col: 1}, grid.Start())
}

func TestScenarioErrors(t *testing.T) {
	_, err := ParseScenario([]byte("name: empty\n"))
	assert.ErrorIs(t, err, gridastar.ErrInvalidGrid)

	_, err = ParseScenario([]byte("map: [unterminated"))
	assert.Error(t, err)

	scenario, err := ParseScenario([]byte("name: blocked\nmap: ['S#']\ngoal: [0, 1]\n"))
	require.NoError(t, err)
	_, err = scenario.Grid()
	assert.ErrorIs(t, err, gridastar.ErrInvalidGrid)

	_, _, err = LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
