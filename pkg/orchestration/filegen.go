package orchestration

import (
	"context"
	"fmt"

	"github.com/codesmith-ai/codesmith/pkg/llm"
	"github.com/codesmith-ai/codesmith/pkg/parser"
	"github.com/codesmith-ai/codesmith/pkg/plan"
	"github.com/codesmith-ai/codesmith/pkg/prompts"
)

const (
	fileGenTemperature = 0.2
	fileGenMaxTokens   = 8192
)

// FileGenerator produces the content of one planned file per call. The
// generation capability it holds is expected to be a FallbackChain, so a
// primary-provider failure is retried once against the fallback with the
// identical request before erroring.
type FileGenerator struct {
	gen llm.Generator
}

func NewFileGenerator(gen llm.Generator) *FileGenerator {
	return &FileGenerator{gen: gen}
}

// Generate builds the prompt for the task's target file and returns the
// sanitized content. Dependency files that have not been generated yet
// contribute empty content rather than an error: the plan's task order is
// expected to place a file after all files it depends on.
func (g *FileGenerator) Generate(ctx context.Context, pctx ProjectContext, task plan.Task, p *plan.Plan, files *FileSet) (string, error) {
	path, _ := task.TargetPath()
	if path == "" {
		return "", fmt.Errorf("task %q names no target file", task.Name)
	}

	entry := task.Manifest
	if entry == nil {
		entry = p.ManifestFor(path)
	}

	var deps []prompts.DependencyContent
	if entry != nil {
		for _, depPath := range entry.DependsOn {
			content, ok := files.Get(depPath)
			if !ok {
				pctx.log().Logf("dependency %s of %s not generated yet; using empty content", depPath, path)
				content = ""
			}
			deps = append(deps, prompts.DependencyContent{Path: depPath, Content: content})
		}
	}

	prompt := prompts.BuildFilePrompt(pctx.ProjectName, pctx.Description, path, task.Instruction, entry, deps)
	raw, err := g.gen.Generate(ctx, llm.GenerateRequest{
		Prompt:            prompt,
		Temperature:       fileGenTemperature,
		MaxOutputTokens:   fileGenMaxTokens,
		SystemInstruction: prompts.FileGenSystemInstruction,
	})
	if err != nil {
		return "", fmt.Errorf("generation failed for %s: %w", path, err)
	}
	return parser.StripCodeFences(raw), nil
}
