package plan

import (
	"encoding/json"
	"fmt"

	"github.com/codesmith-ai/codesmith/pkg/parser"
)

// Parse decodes a plan from raw LLM output. The response may be wrapped in
// a code fence or prefaced with prose; both are tolerated. The decoded plan
// is validated once here so downstream components can rely on its shape.
func Parse(raw string) (*Plan, []string, error) {
	jsonStr := parser.ExtractJSON(raw)
	if jsonStr == "" {
		return nil, nil, fmt.Errorf("response did not contain plan JSON")
	}

	var p Plan
	if err := json.Unmarshal([]byte(jsonStr), &p); err != nil {
		return nil, nil, fmt.Errorf("failed to parse plan JSON: %w", err)
	}

	warnings, err := p.Validate()
	if err != nil {
		return nil, warnings, err
	}
	return &p, warnings, nil
}

// Validate checks the plan once at ingestion time. Structural problems
// (no phases, empty project) are errors; soft invariants such as a task
// naming no file or a dependency missing from the manifest are reported
// as warnings because the phase runner tolerates them.
func (p *Plan) Validate() ([]string, error) {
	if len(p.Phases) == 0 {
		return nil, fmt.Errorf("plan has no phases")
	}

	declared := make(map[string]bool, len(p.Manifest))
	for _, entry := range p.Manifest {
		declared[entry.Path] = true
	}

	var warnings []string
	for _, phase := range p.Phases {
		if len(phase.Tasks) == 0 {
			warnings = append(warnings, fmt.Sprintf("phase %q has no tasks", phase.Name))
		}
		for _, task := range phase.Tasks {
			path, _ := task.TargetPath()
			if path == "" {
				warnings = append(warnings, fmt.Sprintf("task %q names no target file and will be skipped", task.Name))
				continue
			}
			entry := task.Manifest
			if entry == nil {
				entry = p.ManifestFor(path)
			}
			if entry == nil {
				continue
			}
			for _, dep := range entry.DependsOn {
				if !declared[dep] {
					warnings = append(warnings, fmt.Sprintf("file %q depends on %q which is not in the manifest", path, dep))
				}
			}
		}
	}
	return warnings, nil
}
