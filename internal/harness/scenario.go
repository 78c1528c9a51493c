package harness

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/mediacore/internal/testenv"
	"github.com/roach88/mediacore/internal/types"
)

// Scenario defines a runtime scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Start is the initial virtual time (RFC 3339). Defaults to testenv.DefaultStart.
	Start string `yaml:"start,omitempty"`

	// Addons serve their manifest at URL.
	Addons []AddonFixture `yaml:"addons,omitempty"`

	// Responses are canned replies keyed by request URL.
	Responses map[string]testenv.Reply `yaml:"responses,omitempty"`

	// Steps drive the runtime, in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the trace and final state.
	// Supported types: request_count, group_states, installed_addons
	Assertions []Assertion `yaml:"assertions"`
}

// AddonFixture is an addon whose manifest is served at URL.
type AddonFixture struct {
	URL      string         `yaml:"url"`
	Manifest map[string]any `yaml:"manifest"`
}

// Step is one scenario action. Exactly one field must be set.
type Step struct {
	Install      string            `yaml:"install,omitempty"`
	Uninstall    string            `yaml:"uninstall,omitempty"`
	LoadCatalogs *LoadCatalogsStep `yaml:"load_catalogs,omitempty"`
	LoadStreams  *LoadStreamsStep  `yaml:"load_streams,omitempty"`
	Deliver      *DeliverStep      `yaml:"deliver,omitempty"`
	DeliverAll   bool              `yaml:"deliver_all,omitempty"`
	Advance      string            `yaml:"advance,omitempty"`
	Unload       bool              `yaml:"unload,omitempty"`
}

// LoadCatalogsStep starts a catalog round. An empty Type means all types.
type LoadCatalogsStep struct {
	Type  string            `yaml:"type,omitempty"`
	Extra []types.ExtraProp `yaml:"extra,omitempty"`
}

// LoadStreamsStep starts a stream round for one title.
type LoadStreamsStep struct {
	Type string `yaml:"type"`
	ID   string `yaml:"id"`
}

// DeliverStep runs the held request of Addon. Path picks one request when
// the addon has several held (e.g. "/catalog/movie/top.json").
type DeliverStep struct {
	Addon string `yaml:"addon"`
	Path  string `yaml:"path,omitempty"`
}

// Assertion validates the trace or the final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "request_count": number of requests, optionally only those to URL
	// - "group_states": states of the groups of Model, in order
	// - "installed_addons": ids of the installed addons, in order
	Type string `yaml:"type"`

	// URL filters request_count.
	URL string `yaml:"url,omitempty"`

	// Count is the expected number of requests (request_count).
	Count int `yaml:"count,omitempty"`

	// Model is "catalogs" or "streams" (group_states).
	Model string `yaml:"model,omitempty"`

	// States are the expected group states: loading, ready or err (group_states).
	States []string `yaml:"states,omitempty"`

	// Addons are the expected addon ids (installed_addons).
	Addons []string `yaml:"addons,omitempty"`
}

// Assertion type constants.
const (
	AssertRequestCount    = "request_count"
	AssertGroupStates     = "group_states"
	AssertInstalledAddons = "installed_addons"
)

// Model names for group_states.
const (
	ModelCatalogs = "catalogs"
	ModelStreams  = "streams"
)

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

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
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

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Start != "" {
		if _, err := time.Parse(time.RFC3339, s.Start); err != nil {
			return fmt.Errorf("start: %w", err)
		}
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, a := range s.Addons {
		if a.URL == "" {
			return fmt.Errorf("addons[%d]: url is required", i)
		}
		if a.Manifest == nil {
			return fmt.Errorf("addons[%d]: manifest is required", i)
		}
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateStep checks that exactly one action is set.
func validateStep(index int, s *Step) error {
	set := 0
	for _, ok := range []bool{
		s.Install != "",
		s.Uninstall != "",
		s.LoadCatalogs != nil,
		s.LoadStreams != nil,
		s.Deliver != nil,
		s.DeliverAll,
		s.Advance != "",
		s.Unload,
	} {
		if ok {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("steps[%d]: exactly one action is required, got %d", index, set)
	}

	switch {
	case s.LoadStreams != nil:
		if s.LoadStreams.Type == "" || s.LoadStreams.ID == "" {
			return fmt.Errorf("steps[%d]: load_streams requires type and id", index)
		}
	case s.Deliver != nil:
		if s.Deliver.Addon == "" {
			return fmt.Errorf("steps[%d]: deliver requires addon", index)
		}
	case s.Advance != "":
		if _, err := time.ParseDuration(s.Advance); err != nil {
			return fmt.Errorf("steps[%d]: advance: %w", index, err)
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertRequestCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for request_count", index)
		}
	case AssertGroupStates:
		if a.Model != ModelCatalogs && a.Model != ModelStreams {
			return fmt.Errorf("assertions[%d]: model must be %q or %q for group_states", index, ModelCatalogs, ModelStreams)
		}
		if a.States == nil {
			return fmt.Errorf("assertions[%d]: states list is required for group_states", index)
		}
	case AssertInstalledAddons:
		if a.Addons == nil {
			return fmt.Errorf("assertions[%d]: addons list is required for installed_addons", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
