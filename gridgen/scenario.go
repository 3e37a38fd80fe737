package gridgen

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/pdrpinto/gridastar"
)

// Scenario is a named map stored as YAML:
//
//	name: detour
//	map:
//	  - "S.."
//	  - "##."
//	  - "G.."
//	start: [0, 0] # optional, overrides 'S'
//	goal: [2, 0]  # optional, overrides 'G'
type Scenario struct {
	Name  string   `yaml:"name"`
	Map   []string `yaml:"map"`
	Start *[2]int  `yaml:"start,omitempty"`
	Goal  *[2]int  `yaml:"goal,omitempty"`
}

// Grid builds the scenario's grid.
func (s *Scenario) Grid() (*gridastar.Grid, error) {
	grid, err := ParseLines(s.Map, toCoord(s.Start), toCoord(s.Goal))
	if err != nil {
		return nil, errors.Wrapf(err, "scenario %q", s.Name)
	}
	return grid, nil
}

// ParseScenario decodes a YAML scenario.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, errors.Wrap(err, "decode scenario")
	}
	if len(scenario.Map) == 0 {
		return nil, errors.Wrap(gridastar.ErrInvalidGrid, "scenario has no map")
	}
	return &scenario, nil
}

// LoadScenario reads a YAML scenario file and builds its grid.
func LoadScenario(path string) (*gridastar.Grid, *Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "read scenario %s", path)
	}
	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "scenario %s", path)
	}
	grid, err := scenario.Grid()
	if err != nil {
		return nil, nil, err
	}
	return grid, scenario, nil
}

func toCoord(pair *[2]int) *gridastar.Coord {
	if pair == nil {
		return nil
	}
	return &gridastar.Coord{Row: pair[0], Col: pair[1]}
}
