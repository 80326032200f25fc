package orchestration

import (
	"context"
	"strings"
	"testing"
)

const correctedPlanJSON = "```json\n" + `{
  "project_name": "demo",
  "description": "a demo project",
  "phases": [
    {"name": "redo", "number": 0, "tasks": [
      {"name": "rewrite index", "generate_path": "index.html"}
    ]}
  ],
  "manifest": [{"path": "index.html", "purpose": "entry"}]
}` + "\n```"

func TestReplanner_ReturnsCorrectedPlan(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{correctedPlanJSON}}
	replanner := NewReplanner(gen)

	prev := reviewPlan()
	corrected, err := replanner.Replan(context.Background(), testContext(), prev, "index.html was empty")
	if err != nil {
		t.Fatalf("Replan returned error: %v", err)
	}
	if len(corrected.Phases) != 1 || corrected.Phases[0].Name != "redo" {
		t.Fatalf("unexpected corrected plan: %+v", corrected)
	}

	prompt := gen.reqs[0].Prompt
	if !strings.Contains(prompt, "index.html was empty") {
		t.Fatalf("prompt is missing the rejection reason:\n%s", prompt)
	}
	if !strings.Contains(prompt, `"project_name": "demo"`) {
		t.Fatalf("prompt is missing the previous plan JSON:\n%s", prompt)
	}
}

func TestReplanner_MalformedResponseIsFatal(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{"I cannot produce a plan right now"}}
	replanner := NewReplanner(gen)

	_, err := replanner.Replan(context.Background(), testContext(), reviewPlan(), "whatever")
	if err == nil {
		t.Fatalf("expected error for malformed plan response")
	}
}

func TestReplanner_PlanWithoutPhasesIsFatal(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{`{"project_name": "demo", "phases": []}`}}
	replanner := NewReplanner(gen)

	_, err := replanner.Replan(context.Background(), testContext(), reviewPlan(), "whatever")
	if err == nil {
		t.Fatalf("expected error for structurally invalid plan")
	}
}
