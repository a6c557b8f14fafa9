package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/rightstroke/internal/arbiter"
	"github.com/roach88/rightstroke/internal/gesture"
	"github.com/roach88/rightstroke/internal/settings"
)

// Scenario is a scripted interaction with expectations.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Settings overrides the default settings before the first step.
	Settings *SettingsStep `yaml:"settings,omitempty"`

	// Steps are applied in order.
	Steps []Step `yaml:"steps"`

	// Executed is the expected list of actions handed to the executor.
	// If nil, executions are not checked.
	Executed []string `yaml:"executed,omitempty"`
}

// Step is one scripted input. Exactly one of the input fields is set.
type Step struct {
	Press       *PointerStep  `yaml:"press,omitempty"`
	Move        *PointerStep  `yaml:"move,omitempty"`
	Release     *PointerStep  `yaml:"release,omitempty"`
	ContextMenu bool          `yaml:"contextmenu,omitempty"`
	Wait        string        `yaml:"wait,omitempty"`
	Settings    *SettingsStep `yaml:"settings,omitempty"`

	// Expect is checked after the step. If nil, nothing is checked.
	Expect *Expect `yaml:"expect,omitempty"`
}

// PointerStep is a pointer position, with the button for press and
// release. An empty button means right.
type PointerStep struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Button string  `yaml:"button,omitempty"`
}

// SettingsStep changes the fields that are set and keeps the rest.
type SettingsStep struct {
	GesturesEnabled *bool `yaml:"gesturesEnabled,omitempty"`
	DebugLogging    *bool `yaml:"debugLogging,omitempty"`
}

// Expect lists the expected state after a step. Empty fields are not
// checked.
type Expect struct {
	Mode       string   `yaml:"mode,omitempty"`
	Outcome    string   `yaml:"outcome,omitempty"`
	Directions []string `yaml:"directions,omitempty"`
	Pattern    *string  `yaml:"pattern,omitempty"`
	Action     string   `yaml:"action,omitempty"`
	Menu       string   `yaml:"menu,omitempty"`
}

// expectNone is the expectation value for "no cycle" or "no action".
const expectNone = "none"

// Kind returns the input kind of the step, or "" if none is set.
func (s Step) Kind() string {
	kinds := s.kinds()
	if len(kinds) != 1 {
		return ""
	}
	return kinds[0]
}

func (s Step) kinds() []string {
	var kinds []string
	if s.Press != nil {
		kinds = append(kinds, EventPress)
	}
	if s.Move != nil {
		kinds = append(kinds, EventMove)
	}
	if s.Release != nil {
		kinds = append(kinds, EventRelease)
	}
	if s.ContextMenu {
		kinds = append(kinds, EventContextMenu)
	}
	if s.Wait != "" {
		kinds = append(kinds, EventWait)
	}
	if s.Settings != nil {
		kinds = append(kinds, EventSettings)
	}
	return kinds
}

// Apply returns base with the step's fields applied.
func (s SettingsStep) Apply(base settings.Settings) settings.Settings {
	if s.GesturesEnabled != nil {
		base.GesturesEnabled = *s.GesturesEnabled
	}
	if s.DebugLogging != nil {
		base.DebugLogging = *s.DebugLogging
	}
	return base
}

// point converts the step to a gesture point.
func (p PointerStep) point() gesture.Point {
	return gesture.Point{X: p.X, Y: p.Y}
}

// ParseButton converts a button name to an arbiter.Button. An empty name
// means right.
func ParseButton(name string) (arbiter.Button, error) {
	switch name {
	case "", "right":
		return arbiter.ButtonRight, nil
	case "left":
		return arbiter.ButtonLeft, nil
	case "middle":
		return arbiter.ButtonMiddle, nil
	default:
		return arbiter.ButtonNone, fmt.Errorf("unknown button %q", name)
	}
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict decoding catches typos like "expects:" vs "expect:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// ScenarioPaths expands the given files and directories into a sorted list
// of scenario files. Directories contribute their *.yaml and *.yml files,
// non-recursively.
func ScenarioPaths(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("scenario path: %w", err)
		}
		if !info.IsDir() {
			out = append(out, p)
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("scenario directory: %w", err)
		}
		for _, e := range entries {
			ext := strings.ToLower(filepath.Ext(e.Name()))
			if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
				continue
			}
			out = append(out, filepath.Join(p, e.Name()))
		}
	}
	slices.Sort(out)
	return out, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, step); err != nil {
			return err
		}
	}

	for i, name := range s.Executed {
		if _, err := gesture.ParseAction(name); err != nil {
			return fmt.Errorf("executed[%d]: %w", i, err)
		}
	}

	return nil
}

// validateStep validates a single step and its expect clause.
func validateStep(index int, step Step) error {
	kinds := step.kinds()
	switch len(kinds) {
	case 0:
		return fmt.Errorf("steps[%d]: one of press, move, release, contextmenu, wait or settings is required", index)
	case 1:
	default:
		return fmt.Errorf("steps[%d]: only one input per step, got %s", index, strings.Join(kinds, ", "))
	}

	for _, p := range []*PointerStep{step.Press, step.Release} {
		if p == nil {
			continue
		}
		if _, err := ParseButton(p.Button); err != nil {
			return fmt.Errorf("steps[%d]: %w", index, err)
		}
	}
	if step.Move != nil && step.Move.Button != "" {
		return fmt.Errorf("steps[%d]: move does not take a button", index)
	}

	if step.Wait != "" {
		d, err := time.ParseDuration(step.Wait)
		if err != nil {
			return fmt.Errorf("steps[%d]: invalid wait: %w", index, err)
		}
		if d <= 0 {
			return fmt.Errorf("steps[%d]: wait must be positive", index)
		}
	}

	if step.Expect != nil {
		if err := validateExpect(index, kinds[0], step.Expect); err != nil {
			return err
		}
	}

	return nil
}

func validateExpect(index int, kind string, e *Expect) error {
	switch e.Mode {
	case "", arbiter.ModeIdle.String(), arbiter.ModePressed.String(), arbiter.ModeGesture.String():
	default:
		return fmt.Errorf("steps[%d].expect: unknown mode %q", index, e.Mode)
	}

	switch arbiter.Outcome(e.Outcome) {
	case "", expectNone, arbiter.OutcomeShortClick, arbiter.OutcomeGesture, arbiter.OutcomeDoubleClick, arbiter.OutcomeAborted:
	default:
		return fmt.Errorf("steps[%d].expect: unknown outcome %q", index, e.Outcome)
	}

	for _, d := range e.Directions {
		if _, err := gesture.ParseDirection(d); err != nil {
			return fmt.Errorf("steps[%d].expect: %w", index, err)
		}
	}

	if e.Action != "" && e.Action != expectNone {
		if _, err := gesture.ParseAction(e.Action); err != nil {
			return fmt.Errorf("steps[%d].expect: %w", index, err)
		}
	}

	if e.Menu != "" {
		if kind != EventContextMenu {
			return fmt.Errorf("steps[%d].expect: menu is only valid on contextmenu steps", index)
		}
		if e.Menu != arbiter.VerdictShow.String() && e.Menu != arbiter.VerdictSuppress.String() {
			return fmt.Errorf("steps[%d].expect: unknown menu verdict %q", index, e.Menu)
		}
	}

	return nil
}
