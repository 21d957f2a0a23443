package pipeline

import (
	"sync"
	"time"

	"github.com/dgallion1/texstruct/internal/structure"
)

// JobStatus represents the state of an outline construction job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusBuilding  JobStatus = "building"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
)

// Job tracks one asynchronous outline construction.
type Job struct {
	mu sync.Mutex

	ID       string `json:"job_id"`
	RootPath string `json:"root_path"`

	MergeSubFiles bool `json:"merge_sub_files"`

	Status JobStatus `json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: populated on completion.
	outline []*structure.Element
	errs    []string
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errs = append(j.errs, err)
	j.UpdatedAt = time.Now()
}

// SetOutline stores the completed outline.
func (j *Job) SetOutline(outline []*structure.Element) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.outline = outline
	j.UpdatedAt = time.Now()
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID        string               `json:"job_id"`
	RootPath  string               `json:"root_path"`
	Status    JobStatus            `json:"status"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
	Errors    []string             `json:"errors"`
	Outline   []*structure.Element `json:"outline,omitempty"`
}

// Snapshot returns a JSON-safe copy of the job state. The outline is included
// only once the job completed.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.errs
	if errs == nil {
		errs = []string{}
	}
	snap := JobSnapshot{
		ID:        j.ID,
		RootPath:  j.RootPath,
		Status:    j.Status,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
		Errors:    errs,
	}
	if j.Status == StatusCompleted {
		snap.Outline = j.outline
	}
	return snap
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
		}
	}
}
