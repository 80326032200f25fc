package prompts

import (
	"fmt"
	"strings"

	"github.com/codesmith-ai/codesmith/pkg/plan"
)

// DependencyContent pairs a dependency file path with its already-generated
// content. Order follows the plan's generation order.
type DependencyContent struct {
	Path    string
	Content string
}

// Attachment is a caller-supplied reference included in the brief.
type Attachment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// FileGenSystemInstruction steers every file-generation call.
const FileGenSystemInstruction = "You are an expert software engineer generating production-ready source files. " +
	"Respond with the complete raw content of the requested file only. " +
	"Do not add explanations, comments about your work, or Markdown code fences."

// ReviewSystemInstruction steers the review verdict call.
const ReviewSystemInstruction = "You are a strict code reviewer. Respond only with a JSON object " +
	`of the form {"approved": boolean, "reason": string} and nothing else.`

// BuildFilePrompt assembles the generation prompt for a single planned file
// from the plan fragments and the content of its already-generated
// dependencies.
func BuildFilePrompt(projectName, description, filePath string, instruction *plan.GenerationInstruction, entry *plan.ManifestEntry, deps []DependencyContent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate the complete content of the file %q for the project %q.\n\n", filePath, projectName)
	if description != "" {
		fmt.Fprintf(&b, "Project purpose:\n%s\n\n", description)
	}

	if instruction != nil {
		if instruction.Strategy != "" {
			fmt.Fprintf(&b, "Generation strategy: %s\n", instruction.Strategy)
		}
		if len(instruction.RequiredFeatures) > 0 {
			b.WriteString("Required features:\n")
			for _, f := range instruction.RequiredFeatures {
				fmt.Fprintf(&b, "  - %s\n", f)
			}
		}
		if instruction.IntegrationNotes != "" {
			fmt.Fprintf(&b, "Integration notes: %s\n", instruction.IntegrationNotes)
		}
		if instruction.PlaceholderData != "" {
			fmt.Fprintf(&b, "Placeholder data to use: %s\n", instruction.PlaceholderData)
		}
		b.WriteString("\n")
	}

	if entry != nil {
		if entry.Purpose != "" {
			fmt.Fprintf(&b, "File purpose: %s\n", entry.Purpose)
		}
		if len(entry.Symbols) > 0 {
			b.WriteString("Declared symbols this file must expose:\n")
			for _, sym := range entry.Symbols {
				if sym.Signature != "" {
					fmt.Fprintf(&b, "  - %s %s: %s\n", sym.Kind, sym.Name, sym.Signature)
				} else {
					fmt.Fprintf(&b, "  - %s %s\n", sym.Kind, sym.Name)
				}
			}
		}
		b.WriteString("\n")
	}

	if len(deps) > 0 {
		b.WriteString("This file integrates with the following already-generated files. " +
			"Keep names and interfaces consistent with them.\n\n")
		for _, dep := range deps {
			fmt.Fprintf(&b, "--- %s ---\n%s\n\n", dep.Path, dep.Content)
		}
	}

	fmt.Fprintf(&b, "Return only the raw content of %q.", filePath)
	return b.String()
}

// BuildReviewPrompt assembles the verdict request over the repository
// snapshot.
func BuildReviewPrompt(projectName, description string, techStack, requiredFeatures []string, manifest []plan.ManifestEntry, snapshot string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Review the generated repository for the project %q against its requirements.\n\n", projectName)
	if description != "" {
		fmt.Fprintf(&b, "Declared purpose:\n%s\n\n", description)
	}
	if len(techStack) > 0 {
		fmt.Fprintf(&b, "Technology stack: %s\n", strings.Join(techStack, ", "))
	}
	if len(requiredFeatures) > 0 {
		b.WriteString("Required features:\n")
		for _, f := range requiredFeatures {
			fmt.Fprintf(&b, "  - %s\n", f)
		}
	}
	if len(manifest) > 0 {
		b.WriteString("Planned file manifest:\n")
		for _, entry := range manifest {
			fmt.Fprintf(&b, "  - %s: %s\n", entry.Path, entry.Purpose)
		}
	}

	b.WriteString("\nJudge whether:\n" +
		"  1. every required file is present,\n" +
		"  2. each file has non-empty, valid content,\n" +
		"  3. no placeholder or stub code remains,\n" +
		"  4. the files integrate consistently with each other.\n\n")
	fmt.Fprintf(&b, "Repository snapshot:\n%s\n", snapshot)
	b.WriteString("\nRespond with strict JSON: {\"approved\": true|false, \"reason\": \"...\"}")
	return b.String()
}

// BuildReplanPrompt asks for a corrected plan after a review rejection.
func BuildReplanPrompt(description, previousPlanJSON, rejectionReason string) string {
	var b strings.Builder
	b.WriteString("The previous implementation plan for this project was executed and the result was rejected by review.\n\n")
	if description != "" {
		fmt.Fprintf(&b, "Project requirements:\n%s\n\n", description)
	}
	fmt.Fprintf(&b, "Previous plan:\n%s\n\n", previousPlanJSON)
	fmt.Fprintf(&b, "Rejection reason:\n%s\n\n", rejectionReason)
	b.WriteString("Produce a corrected plan that addresses the rejection reason. " +
		"Use exactly the same JSON schema as the previous plan " +
		"(project_name, description, tech_stack, required_features, hosting, phases, manifest). " +
		"Respond with the plan JSON only.")
	return b.String()
}

// BuildBootstrapPrompt turns an inbound brief into the initial plan request.
func BuildBootstrapPrompt(projectName, brief string, checks []string, attachments []Attachment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create an implementation plan for the project %q from the following brief.\n\n", projectName)
	fmt.Fprintf(&b, "Brief:\n%s\n\n", brief)
	if len(checks) > 0 {
		b.WriteString("The result will be evaluated against these checks:\n")
		for _, check := range checks {
			fmt.Fprintf(&b, "  - %s\n", check)
		}
		b.WriteString("\n")
	}
	if len(attachments) > 0 {
		b.WriteString("Attachments supplied with the brief:\n")
		for _, att := range attachments {
			fmt.Fprintf(&b, "  - %s: %s\n", att.Name, att.URL)
		}
		b.WriteString("\n")
	}
	b.WriteString("Respond with JSON only, using this schema: " +
		`{"project_name": string, "description": string, "tech_stack": [string], ` +
		`"required_features": [string], "hosting": {"platform": string, "static_app": bool}, ` +
		`"phases": [{"name": string, "number": int, "tasks": [{"name": string, ` +
		`"generate_path": string, "update_path": string, "instruction": {...}, "manifest": {...}}]}], ` +
		`"manifest": [{"path": string, "purpose": string, "depends_on": [string], ` +
		`"symbols": [{"kind": string, "name": string, "signature": string}]}]}. ` +
		"Order tasks so every file appears after all files it depends on.")
	return b.String()
}
