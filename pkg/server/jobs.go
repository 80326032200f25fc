package server

import (
	"sync"
	"time"

	"github.com/codesmith-ai/codesmith/pkg/history"
)

type JobState string

const (
	JobQueued    JobState = "queued"
	JobRunning   JobState = "running"
	JobSucceeded JobState = "succeeded"
	JobFailed    JobState = "failed"
)

// Job tracks one orchestration run from intake to terminal state. Progress
// messages fan out to websocket subscribers; attempt snapshots go to the
// job's history.
type Job struct {
	ID      string
	Task    string
	History *history.History

	mu            sync.Mutex
	state         JobState
	createdAt     time.Time
	updatedAt     time.Time
	repositoryURL string
	deploymentURL string
	errMessage    string
	subscribers   map[chan string]struct{}
	closed        bool
}

func NewJob(id, task string) *Job {
	now := time.Now()
	return &Job{
		ID:          id,
		Task:        task,
		History:     history.NewHistory(),
		state:       JobQueued,
		createdAt:   now,
		updatedAt:   now,
		subscribers: make(map[chan string]struct{}),
	}
}

// JobView is the JSON shape served by the job status endpoint.
type JobView struct {
	ID         string                  `json:"id"`
	Task       string                  `json:"task"`
	State      JobState                `json:"state"`
	CreatedAt  time.Time               `json:"created_at"`
	UpdatedAt  time.Time               `json:"updated_at"`
	Repository string                  `json:"repository,omitempty"`
	Deployment string                  `json:"deployment,omitempty"`
	Error      string                  `json:"error,omitempty"`
	Attempts   []history.AttemptRecord `json:"attempts"`
}

func (j *Job) View() JobView {
	j.mu.Lock()
	defer j.mu.Unlock()
	return JobView{
		ID:         j.ID,
		Task:       j.Task,
		State:      j.state,
		CreatedAt:  j.createdAt,
		UpdatedAt:  j.updatedAt,
		Repository: j.repositoryURL,
		Deployment: j.deploymentURL,
		Error:      j.errMessage,
		Attempts:   j.History.Attempts(),
	}
}

func (j *Job) State() JobState {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state
}

// Start marks the job running.
func (j *Job) Start() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.state = JobRunning
	j.updatedAt = time.Now()
}

// Succeed records the terminal success state and closes the event stream.
func (j *Job) Succeed(repositoryURL, deploymentURL string) {
	j.mu.Lock()
	j.state = JobSucceeded
	j.repositoryURL = repositoryURL
	j.deploymentURL = deploymentURL
	j.updatedAt = time.Now()
	j.mu.Unlock()
	j.closeStream()
}

// Fail records the terminal failure state and closes the event stream.
func (j *Job) Fail(repositoryURL, message string) {
	j.mu.Lock()
	j.state = JobFailed
	j.repositoryURL = repositoryURL
	j.errMessage = message
	j.updatedAt = time.Now()
	j.mu.Unlock()
	j.closeStream()
}

// Publish sends a progress message to every subscriber. Slow subscribers
// drop messages rather than blocking the orchestration goroutine.
func (j *Job) Publish(message string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return
	}
	for ch := range j.subscribers {
		select {
		case ch <- message:
		default:
		}
	}
}

// Subscribe registers an event channel. The returned cancel func must be
// called when the subscriber goes away; the channel is closed when the job
// reaches a terminal state.
func (j *Job) Subscribe() (<-chan string, func()) {
	j.mu.Lock()
	defer j.mu.Unlock()

	ch := make(chan string, 16)
	if j.closed {
		close(ch)
		return ch, func() {}
	}
	j.subscribers[ch] = struct{}{}
	cancel := func() {
		j.mu.Lock()
		defer j.mu.Unlock()
		if _, ok := j.subscribers[ch]; ok {
			delete(j.subscribers, ch)
			close(ch)
		}
	}
	return ch, cancel
}

func (j *Job) closeStream() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return
	}
	j.closed = true
	for ch := range j.subscribers {
		close(ch)
	}
	j.subscribers = make(map[chan string]struct{})
}

// Registry is the in-memory job index.
type Registry struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

func NewRegistry() *Registry {
	return &Registry{jobs: make(map[string]*Job)}
}

func (r *Registry) Add(job *Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.ID] = job
}

func (r *Registry) Get(id string) (*Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	return job, ok
}
