package runner

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// Workflow is an ordered list of page actions.
type Workflow struct {
	Version string                  `yaml:"version"`
	Name    string                  `yaml:"name"`
	Steps   []ConfigurationWorkflow `yaml:"steps"`
}

// ConfigurationWorkflow is one step: Action names an exported method of the
// runner target, Params are converted to its parameter types.
type ConfigurationWorkflow struct {
	Index       int      `yaml:"index"`
	Action      string   `yaml:"action"`
	Description string   `yaml:"description"`
	Params      []string `yaml:"params"`
	Retry       int      `yaml:"retry"`
	Optional    bool     `yaml:"optional"`
	Result      string   `yaml:"result,omitempty"`
}

// ParseWorkflow decodes a workflow document.
func ParseWorkflow(data []byte) (*Workflow, error) {
	var wf Workflow
	if err := yaml.Unmarshal(data, &wf); err != nil {
		return nil, err
	}
	for i := range wf.Steps {
		if wf.Steps[i].Action == "" {
			return nil, fmt.Errorf("step %d has no action", i)
		}
		if wf.Steps[i].Index == 0 {
			wf.Steps[i].Index = i + 1
		}
	}
	return &wf, nil
}

// LoadWorkflow reads a workflow file.
func LoadWorkflow(path string) (*Workflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	wf, err := ParseWorkflow(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load workflow %s: %w", path, err)
	}
	return wf, nil
}
