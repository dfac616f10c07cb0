package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/otioremap/internal/collect"
)

// Scenario is a retime conformance scenario: a document, the steps to run
// against it and what each step must produce.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Document is the clip or timeline document the steps run against.
	// Relative paths are resolved against the scenario file's directory.
	Document string `yaml:"document"`

	// Settings configures collect steps. Omitted keys keep the collector
	// defaults.
	Settings collect.Settings `yaml:"settings,omitempty"`

	// Flow lists the steps in execution order.
	Flow []Step `yaml:"flow"`

	// Assertions validate the ledger after the flow has run.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step operations.
const (
	OpResolve = "resolve"
	OpRemap   = "remap"
	OpCollect = "collect"
)

// Step runs one engine operation.
type Step struct {
	// Op is one of resolve, remap or collect.
	Op string `yaml:"op"`

	// Clip names the clip within a timeline document. Clip documents
	// ignore it.
	Clip string `yaml:"clip,omitempty"`

	// Handles requested by resolve.
	HandleStart int `yaml:"handle_start,omitempty"`
	HandleEnd   int `yaml:"handle_end,omitempty"`

	// Range mapped by remap, in frames. Rate defaults to the media rate.
	Start    float64 `yaml:"start,omitempty"`
	Duration float64 `yaml:"duration,omitempty"`
	Rate     float64 `yaml:"rate,omitempty"`

	// Expect is checked against the step's outcome. If nil, the step only
	// has to run.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies a step's expected outcome.
type ExpectClause struct {
	// Error is the expected engine error code (e.g. UNSUPPORTED_TIMEWARP).
	Error string `yaml:"error,omitempty"`

	// Result contains expected result fields.
	// This is a subset match - only specified fields are validated.
	Result map[string]any `yaml:"result,omitempty"`
}

// Assertion validates what collect steps recorded in the ledger.
type Assertion struct {
	// Type specifies the assertion type:
	// - "shot_recorded": a shot was recorded with the expected data
	// - "shot_count": exactly Count shots were recorded
	// - "clip_skipped": a clip was skipped with the expected code
	Type string `yaml:"type"`

	// Shot names the shot (shot_recorded) or clip (clip_skipped).
	Shot string `yaml:"shot,omitempty"`

	// Expect contains expected instance fields (shot_recorded).
	// Subset match - only specified fields are validated.
	Expect map[string]any `yaml:"expect,omitempty"`

	// Count is the expected number of shots (shot_count).
	Count int `yaml:"count,omitempty"`

	// Code is the expected skip code (clip_skipped).
	Code string `yaml:"code,omitempty"`
}

// Assertion type constants.
const (
	AssertShotRecorded = "shot_recorded"
	AssertShotCount    = "shot_count"
	AssertClipSkipped  = "clip_skipped"
)

// LoadScenario reads and parses a scenario YAML file. The document path is
// resolved against the scenario file's directory.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving the document path relative to basePath.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario := Scenario{Settings: collect.DefaultSettings()}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Document != "" && !filepath.IsAbs(scenario.Document) && basePath != "" {
		scenario.Document = filepath.Join(basePath, scenario.Document)
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

	if s.Document == "" {
		return fmt.Errorf("document is required")
	}
	if _, err := os.Stat(s.Document); os.IsNotExist(err) {
		return fmt.Errorf("document not found: %s", s.Document)
	}

	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	if err := s.Settings.Validate(); err != nil {
		return fmt.Errorf("settings: %w", err)
	}

	for i, step := range s.Flow {
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

func validateStep(index int, step *Step) error {
	switch step.Op {
	case OpResolve:
		if step.HandleStart < 0 || step.HandleEnd < 0 {
			return fmt.Errorf("flow[%d]: handles must not be negative", index)
		}
	case OpRemap:
		if step.Duration < 0 {
			return fmt.Errorf("flow[%d]: duration must not be negative", index)
		}
		if step.Rate < 0 {
			return fmt.Errorf("flow[%d]: rate must not be negative", index)
		}
	case OpCollect:
		if step.Clip != "" {
			return fmt.Errorf("flow[%d]: collect runs on the whole timeline and takes no clip", index)
		}
	case "":
		return fmt.Errorf("flow[%d]: op is required", index)
	default:
		return fmt.Errorf("flow[%d]: unknown op %q", index, step.Op)
	}

	if step.Expect != nil && step.Expect.Error != "" && step.Expect.Result != nil {
		return fmt.Errorf("flow[%d].expect: error and result are mutually exclusive", index)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertShotRecorded:
		if a.Shot == "" {
			return fmt.Errorf("assertions[%d]: shot is required for shot_recorded", index)
		}
	case AssertShotCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must not be negative", index)
		}
	case AssertClipSkipped:
		if a.Shot == "" {
			return fmt.Errorf("assertions[%d]: shot is required for clip_skipped", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown type %q", index, a.Type)
	}
	return nil
}
