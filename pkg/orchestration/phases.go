package orchestration

import (
	"context"
	"fmt"

	"github.com/codesmith-ai/codesmith/pkg/githost"
	"github.com/codesmith-ai/codesmith/pkg/plan"
)

// PhaseRunner executes a plan's tasks phase by phase: phases in ascending
// numeric order, tasks within a phase in manifest order. Tasks run
// sequentially so that a later task can see an earlier task's generated
// content in the same attempt.
type PhaseRunner struct {
	filegen *FileGenerator
	host    githost.Committer
}

func NewPhaseRunner(filegen *FileGenerator, host githost.Committer) *PhaseRunner {
	return &PhaseRunner{filegen: filegen, host: host}
}

// Execute generates and commits every planned file, recording results in
// files. The first generation or commit failure aborts the whole phase run;
// retries happen only at the orchestration loop's attempt granularity.
func (r *PhaseRunner) Execute(ctx context.Context, pctx ProjectContext, p *plan.Plan, files *FileSet, attempt int) error {
	logger := pctx.log()
	for _, phase := range p.OrderedPhases() {
		logger.LogProcessStep(fmt.Sprintf("Phase %d (%s): %d task(s)", phase.Number, phase.Name, len(phase.Tasks)))
		for _, task := range phase.Tasks {
			path, op := task.TargetPath()
			if path == "" {
				logger.LogProcessStep(fmt.Sprintf("Skipping task %q: no target file path", task.Name))
				continue
			}

			content, err := r.filegen.Generate(ctx, pctx, task, p, files)
			if err != nil {
				return fmt.Errorf("phase %d task %q: %w", phase.Number, task.Name, err)
			}
			files.Set(path, content)

			message := fmt.Sprintf("%s: %s %s (attempt %d)", task.Name, op, path, attempt)
			change := githost.FileChange{Path: path, Content: content, Operation: op}
			if err := r.host.CommitFiles(ctx, pctx.Owner, pctx.Repo, []githost.FileChange{change}, message); err != nil {
				return fmt.Errorf("phase %d task %q: commit of %s failed: %w", phase.Number, task.Name, path, err)
			}
			logger.Logf("committed %s (%s)", path, op)
		}
	}
	return nil
}
