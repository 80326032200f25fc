package orchestration

import (
	"fmt"
	"strings"
	"sync"

	"github.com/codesmith-ai/codesmith/pkg/plan"
	"github.com/codesmith-ai/codesmith/pkg/utils"
)

// ProjectContext is the long-lived identity of one orchestration request.
// It is shared read-only across all attempts of the request.
type ProjectContext struct {
	ProjectName string
	Owner       string
	Repo        string
	Description string
	Logger      *utils.Logger
}

func (p ProjectContext) log() *utils.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return utils.GetLogger(true)
}

// VerificationResult is the reviewer's structured verdict over one attempt.
type VerificationResult struct {
	Success      bool     `json:"success"`
	Errors       []string `json:"errors,omitempty"`
	Warnings     []string `json:"warnings,omitempty"`
	ReviewReason string   `json:"review_reason,omitempty"`
}

// Attempt is one full generate-then-review pass. A fresh Attempt (with a
// fresh FileSet) is created at the start of every loop iteration because a
// replanned attempt may supersede every file of the previous one.
type Attempt struct {
	Number int
	Plan   *plan.Plan
	Files  *FileSet
}

// Result is the success return of an orchestration run.
type Result struct {
	DeploymentURL string             `json:"deployment_url,omitempty"`
	Verification  VerificationResult `json:"verification"`
	Attempts      int                `json:"attempts"`
}

// FileSet maps file paths to their current content, remembering insertion
// order (= generation order). Reads and writes are safe for the concurrent
// remote-content refetch after a phase run.
type FileSet struct {
	mu      sync.Mutex
	order   []string
	content map[string]string
}

func NewFileSet() *FileSet {
	return &FileSet{content: make(map[string]string)}
}

// Set records content for a path, appending it to the generation order the
// first time the path is seen.
func (fs *FileSet) Set(path, content string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if _, seen := fs.content[path]; !seen {
		fs.order = append(fs.order, path)
	}
	fs.content[path] = content
}

func (fs *FileSet) Get(path string) (string, bool) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	content, ok := fs.content[path]
	return content, ok
}

// Paths returns the file paths in generation order.
func (fs *FileSet) Paths() []string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	paths := make([]string, len(fs.order))
	copy(paths, fs.order)
	return paths
}

func (fs *FileSet) Len() int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return len(fs.order)
}

// Contents returns a copy of the path→content mapping.
func (fs *FileSet) Contents() map[string]string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	out := make(map[string]string, len(fs.content))
	for path, content := range fs.content {
		out[path] = content
	}
	return out
}

// Snapshot renders the file set for review: a path listing followed by each
// file's full content, in generation order.
func (fs *FileSet) Snapshot() string {
	var b strings.Builder
	b.WriteString("Files:\n")
	paths := fs.Paths()
	for _, path := range paths {
		fmt.Fprintf(&b, "  - %s\n", path)
	}
	for _, path := range paths {
		content, _ := fs.Get(path)
		fmt.Fprintf(&b, "\n--- %s ---\n%s\n", path, content)
	}
	return b.String()
}
