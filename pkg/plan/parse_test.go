package plan

import (
	"strings"
	"testing"
)

const fencedPlan = "```json\n" + `{
  "project_name": "captcha-solver",
  "description": "A static captcha solver page",
  "hosting": {"platform": "github-pages"},
  "phases": [
    {"name": "scaffold", "number": 0, "tasks": [
      {"name": "create index", "generate_path": "index.html"}
    ]},
    {"name": "logic", "number": 1, "tasks": [
      {"name": "create script", "generate_path": "script.js",
       "manifest": {"path": "script.js", "depends_on": ["index.html"]}}
    ]}
  ],
  "manifest": [
    {"path": "index.html", "purpose": "entry page"},
    {"path": "script.js", "purpose": "solver logic", "depends_on": ["index.html"]}
  ]
}` + "\n```"

func TestParse_FencedPlanJSON(t *testing.T) {
	p, warnings, err := Parse(fencedPlan)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if p.ProjectName != "captcha-solver" {
		t.Fatalf("unexpected project name: %q", p.ProjectName)
	}
	if len(p.Phases) != 2 {
		t.Fatalf("expected 2 phases, got %d", len(p.Phases))
	}
	if !p.StaticHostingEligible() {
		t.Fatalf("expected plan to be static-hosting eligible")
	}
}

func TestParse_InvalidJSONIsError(t *testing.T) {
	_, _, err := Parse("not a plan at all")
	if err == nil {
		t.Fatalf("expected error for non-JSON response")
	}
}

func TestValidate_MissingDependencyIsWarning(t *testing.T) {
	p := &Plan{
		ProjectName: "demo",
		Phases: []Phase{{
			Name: "only", Number: 0,
			Tasks: []Task{{
				Name:         "make app",
				GeneratePath: "app.js",
				Manifest:     &ManifestEntry{Path: "app.js", DependsOn: []string{"missing.js"}},
			}},
		}},
		Manifest: []ManifestEntry{{Path: "app.js"}},
	}
	warnings, err := p.Validate()
	if err != nil {
		t.Fatalf("soft invariant must not fail validation: %v", err)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "missing.js") {
		t.Fatalf("expected missing-dependency warning, got %v", warnings)
	}
}

func TestValidate_NoPhasesIsError(t *testing.T) {
	p := &Plan{ProjectName: "demo"}
	if _, err := p.Validate(); err == nil {
		t.Fatalf("expected error for plan without phases")
	}
}

func TestTargetPath_GenerateWinsOverUpdate(t *testing.T) {
	task := Task{GeneratePath: "new.js", UpdatePath: "old.js"}
	path, op := task.TargetPath()
	if path != "new.js" || op != "create" {
		t.Fatalf("expected create new.js, got %s %s", op, path)
	}
}

func TestOrderedPhases_SortsAscendingAndStable(t *testing.T) {
	p := &Plan{Phases: []Phase{
		{Name: "later", Number: 2},
		{Name: "first", Number: 0},
		{Name: "also-first", Number: 0},
		{Name: "mid", Number: 1},
	}}
	ordered := p.OrderedPhases()
	names := make([]string, len(ordered))
	for i, ph := range ordered {
		names[i] = ph.Name
	}
	want := []string{"first", "also-first", "mid", "later"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("unexpected order: %v", names)
		}
	}
}
