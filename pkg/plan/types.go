package plan

import "sort"

// Plan is the structured, machine-readable description of the files to
// generate for one project, grouped into phases. Plans are produced either
// by the caller or by a plan-bootstrap generation call, and are replaced
// wholesale when an attempt is rejected and replanned.
type Plan struct {
	ProjectName      string          `json:"project_name"`
	Description      string          `json:"description"`
	TechStack        []string        `json:"tech_stack,omitempty"`
	RequiredFeatures []string        `json:"required_features,omitempty"`
	Hosting          *Hosting        `json:"hosting,omitempty"`
	Phases           []Phase         `json:"phases"`
	Manifest         []ManifestEntry `json:"manifest,omitempty"`
}

// Hosting describes where the generated project should run.
type Hosting struct {
	Platform  string `json:"platform,omitempty"`
	StaticApp bool   `json:"static_app,omitempty"`
}

// Phase is an ordered group of generation tasks. Phases run in ascending
// Number order; tasks inside a phase run in manifest order.
type Phase struct {
	Name   string `json:"name"`
	Number int    `json:"number"`
	Tasks  []Task `json:"tasks"`
}

// Task names exactly one target file. GeneratePath marks a new file,
// UpdatePath an existing one; when both are set GeneratePath wins.
type Task struct {
	Name         string                 `json:"name"`
	GeneratePath string                 `json:"generate_path,omitempty"`
	UpdatePath   string                 `json:"update_path,omitempty"`
	Instruction  *GenerationInstruction `json:"instruction,omitempty"`
	Manifest     *ManifestEntry         `json:"manifest,omitempty"`
}

// GenerationInstruction carries the per-file guidance embedded into the
// generation prompt.
type GenerationInstruction struct {
	Strategy         string   `json:"strategy,omitempty"`
	RequiredFeatures []string `json:"required_features,omitempty"`
	IntegrationNotes string   `json:"integration_notes,omitempty"`
	PlaceholderData  string   `json:"placeholder_data,omitempty"`
}

// ManifestEntry declares a file's purpose, its dependencies on other file
// paths, and the symbols it is expected to expose.
type ManifestEntry struct {
	Path      string   `json:"path"`
	Purpose   string   `json:"purpose,omitempty"`
	DependsOn []string `json:"depends_on,omitempty"`
	Symbols   []Symbol `json:"symbols,omitempty"`
}

// Symbol is a declared function, constant, or import of a planned file.
type Symbol struct {
	Kind      string `json:"kind,omitempty"`
	Name      string `json:"name"`
	Signature string `json:"signature,omitempty"`
}

// TargetPath resolves the file path and commit operation for a task.
// GeneratePath takes precedence when both fields are set. The returned
// operation is "create" or "update"; an empty path means the task names
// no file at all.
func (t Task) TargetPath() (string, string) {
	if t.GeneratePath != "" {
		return t.GeneratePath, "create"
	}
	if t.UpdatePath != "" {
		return t.UpdatePath, "update"
	}
	return "", ""
}

// OrderedPhases returns the plan's phases sorted by ascending phase number.
// The sort is stable so that phases sharing a number keep their plan order.
func (p *Plan) OrderedPhases() []Phase {
	phases := make([]Phase, len(p.Phases))
	copy(phases, p.Phases)
	sort.SliceStable(phases, func(i, j int) bool {
		return phases[i].Number < phases[j].Number
	})
	return phases
}

// ManifestFor looks up the manifest entry for a file path, preferring the
// task-level entry when the caller has one. Returns nil when the path is
// not declared.
func (p *Plan) ManifestFor(path string) *ManifestEntry {
	for i := range p.Manifest {
		if p.Manifest[i].Path == path {
			return &p.Manifest[i]
		}
	}
	return nil
}

// StaticHostingEligible reports whether an approved build of this plan
// should be deployed as a static site.
func (p *Plan) StaticHostingEligible() bool {
	if p.Hosting == nil {
		return false
	}
	return p.Hosting.Platform != "" || p.Hosting.StaticApp
}
