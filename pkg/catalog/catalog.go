// Package catalog holds the ordered list of pipeline steps used to turn a
// reported step into a position.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dukex/hl7autoct/pkg/models"
	"gopkg.in/yaml.v3"
)

var (
	ErrEmptyCatalog    = errors.New("step catalog has no steps")
	ErrInvalidStep     = errors.New("invalid step")
	ErrDuplicateStepID = errors.New("duplicate step id")
)

// Step is one entry of the catalog. Index is its position and is not read
// from the file.
type Step struct {
	Index int    `yaml:"-"`
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
}

// Catalog is immutable after construction and safe for concurrent use.
type Catalog struct {
	version string
	steps   []Step
	byID    map[string]int
	byName  map[string]int
}

type file struct {
	Version string `yaml:"version"`
	Steps   []Step `yaml:"steps"`
}

// New validates the steps and indexes them by position.
func New(version string, steps []Step) (*Catalog, error) {
	if len(steps) == 0 {
		return nil, ErrEmptyCatalog
	}

	c := &Catalog{
		version: version,
		steps:   make([]Step, len(steps)),
		byID:    make(map[string]int, len(steps)),
		byName:  make(map[string]int, len(steps)),
	}

	for i, step := range steps {
		step.ID = strings.TrimSpace(step.ID)
		step.Name = strings.TrimSpace(step.Name)

		if step.ID == "" {
			return nil, fmt.Errorf("%w: step %d has no id", ErrInvalidStep, i)
		}

		if _, exists := c.byID[step.ID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateStepID, step.ID)
		}

		if step.Name == "" {
			step.Name = step.ID
		}

		step.Index = i
		c.steps[i] = step
		c.byID[step.ID] = i

		if _, exists := c.byName[strings.ToLower(step.Name)]; !exists {
			c.byName[strings.ToLower(step.Name)] = i
		}
	}

	return c, nil
}

// Parse reads a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var f file

	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode step catalog: %w", err)
	}

	return New(f.Version, f.Steps)
}

// Load reads the catalog from path.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read step catalog %s: %w", path, err)
	}

	return Parse(data)
}

// Default is the nine step HL7 transformation pipeline.
func Default() *Catalog {
	c, err := New("2025-01", []Step{
		{ID: "ParseHL7Messages", Name: "Parsing HL7 Messages"},
		{ID: "AnalyzeHL7Fields", Name: "Analyzing HL7 Fields"},
		{ID: "EvaluateTransformationRulesPerSegment", Name: "Evaluating Transformation Rules"},
		{ID: "GenerateHL7Specification", Name: "Generating HL7 Specification"},
		{ID: "GenerateMirthJSCode", Name: "Generating Mirth JS Code"},
		{ID: "ExportMirthXMLJSCode", Name: "Exporting Mirth XML + JS"},
		{ID: "ValidateJSLogic", Name: "Validating JS Logic"},
		{ID: "ExportJSValidationReport", Name: "Exporting Validation Report"},
		{ID: "AggregateResults", Name: "Finalizing Results"},
	})
	if err != nil {
		panic(err)
	}

	return c
}

func (c *Catalog) Version() string {
	return c.version
}

func (c *Catalog) Len() int {
	return len(c.steps)
}

// Steps returns a copy of the ordered steps.
func (c *Catalog) Steps() []Step {
	out := make([]Step, len(c.steps))
	copy(out, c.steps)

	return out
}

// Lookup resolves a step reference. Names are matched against step ids
// first and display names second, case-insensitively for display names.
func (c *Catalog) Lookup(ref models.StepRef) (Step, bool) {
	switch ref.Lookup {
	case models.ByIndex:
		if ref.Index < 0 || ref.Index >= len(c.steps) {
			return Step{}, false
		}

		return c.steps[ref.Index], true
	case models.ByName:
		name := strings.TrimSpace(ref.Name)
		if i, ok := c.byID[name]; ok {
			return c.steps[i], true
		}

		if i, ok := c.byName[strings.ToLower(name)]; ok {
			return c.steps[i], true
		}

		return Step{}, false
	default:
		return Step{}, false
	}
}
