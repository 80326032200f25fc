package orchestration

import (
	"context"
	"sync"

	"github.com/codesmith-ai/codesmith/pkg/githost"
	"github.com/codesmith-ai/codesmith/pkg/llm"
	"github.com/codesmith-ai/codesmith/pkg/plan"
	"github.com/codesmith-ai/codesmith/pkg/utils"
)

// scriptedGenerator returns canned responses in order and records every
// request it sees.
type scriptedGenerator struct {
	responses []string
	errs      []error
	reqs      []llm.GenerateRequest
}

func (s *scriptedGenerator) Name() string { return "scripted" }

func (s *scriptedGenerator) Generate(_ context.Context, req llm.GenerateRequest) (string, error) {
	i := len(s.reqs)
	s.reqs = append(s.reqs, req)
	var resp string
	var err error
	if i < len(s.responses) {
		resp = s.responses[i]
	}
	if i < len(s.errs) {
		err = s.errs[i]
	}
	return resp, err
}

type commitRecord struct {
	Path      string
	Operation string
	Message   string
}

// stubHost implements githost.Committer in memory. GetFileContent serves
// the last committed content unless a fetch error is scripted for the path.
type stubHost struct {
	mu         sync.Mutex
	commits    []commitRecord
	committed  map[string]string
	commitErr  error
	fetchErrs  map[string]error
	remote     map[string]string
	pagesCalls int
	pagesURL   string
}

func newStubHost() *stubHost {
	return &stubHost{
		committed: make(map[string]string),
		fetchErrs: make(map[string]error),
		remote:    make(map[string]string),
		pagesURL:  "https://owner.github.io/repo/",
	}
}

func (h *stubHost) CommitFiles(_ context.Context, _, _ string, changes []githost.FileChange, message string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.commitErr != nil {
		return h.commitErr
	}
	for _, change := range changes {
		h.commits = append(h.commits, commitRecord{Path: change.Path, Operation: change.Operation, Message: message})
		h.committed[change.Path] = change.Content
	}
	return nil
}

func (h *stubHost) GetFileContent(_ context.Context, _, _, path string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.fetchErrs[path]; err != nil {
		return "", err
	}
	if content, ok := h.remote[path]; ok {
		return content, nil
	}
	return h.committed[path], nil
}

func (h *stubHost) EnablePages(_ context.Context, _, _ string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pagesCalls++
	return h.pagesURL, nil
}

func (h *stubHost) commitPaths() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	paths := make([]string, len(h.commits))
	for i, c := range h.commits {
		paths[i] = c.Path
	}
	return paths
}

// stubRunner seeds the file set with fixed content instead of generating.
type stubRunner struct {
	files map[string]string
	err   error
	calls int
}

func (s *stubRunner) Execute(_ context.Context, _ ProjectContext, _ *plan.Plan, files *FileSet, _ int) error {
	s.calls++
	if s.err != nil {
		return s.err
	}
	for path, content := range s.files {
		files.Set(path, content)
	}
	return nil
}

// stubVerifier produces scripted verdicts and captures the reviewed
// contents.
type stubVerifier struct {
	results  []VerificationResult
	calls    int
	reviewed []map[string]string
}

func (s *stubVerifier) Verify(_ context.Context, _ ProjectContext, _ *plan.Plan, files *FileSet) VerificationResult {
	s.reviewed = append(s.reviewed, files.Contents())
	i := s.calls
	s.calls++
	if i < len(s.results) {
		return s.results[i]
	}
	return VerificationResult{Success: false, ReviewReason: "unscripted"}
}

// stubCorrector returns the previous plan unchanged and counts calls.
type stubCorrector struct {
	err     error
	calls   int
	reasons []string
}

func (s *stubCorrector) Replan(_ context.Context, _ ProjectContext, prev *plan.Plan, reason string) (*plan.Plan, error) {
	s.calls++
	s.reasons = append(s.reasons, reason)
	if s.err != nil {
		return nil, s.err
	}
	return prev, nil
}

func rejected(reason string) VerificationResult {
	return VerificationResult{
		Success:      false,
		ReviewReason: reason,
		Errors:       []string{"LLM Review Failed: " + reason},
	}
}

func approved() VerificationResult {
	return VerificationResult{Success: true, ReviewReason: "looks complete"}
}

func testContext() ProjectContext {
	return ProjectContext{
		ProjectName: "demo",
		Owner:       "owner",
		Repo:        "repo",
		Description: "a demo project",
		Logger:      utils.GetLogger(true),
	}
}

func testOrchestrator(runner phaseExecutor, reviewer verifier, replanner planCorrector, host githost.Committer) *Orchestrator {
	return &Orchestrator{
		runner:      runner,
		reviewer:    reviewer,
		replanner:   replanner,
		host:        host,
		logger:      utils.GetLogger(true),
		maxAttempts: MaxAttempts,
		settleDelay: 0,
	}
}
