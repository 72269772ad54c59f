package models

import (
	"sort"
	"sync"
)

// JobRegistry is the in-memory store of tracked jobs. It exclusively owns
// every TrackedJob; callers only ever see copies.
type JobRegistry struct {
	mu   sync.RWMutex
	jobs map[string]*TrackedJob
}

// NewJobRegistry creates an empty registry
func NewJobRegistry() *JobRegistry {
	return &JobRegistry{jobs: make(map[string]*TrackedJob)}
}

// Add stores a job. A job with the same ID is replaced.
func (r *JobRegistry) Add(job *TrackedJob) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.JobID] = job.clone()
}

// Get returns a copy of the job with the given ID
func (r *JobRegistry) Get(jobID string) (*TrackedJob, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[jobID]
	if !ok {
		return nil, false
	}
	return job.clone(), true
}

// All returns a snapshot of every tracked job, oldest first
func (r *JobRegistry) All() []*TrackedJob {
	r.mu.RLock()
	jobs := make([]*TrackedJob, 0, len(r.jobs))
	for _, job := range r.jobs {
		jobs = append(jobs, job.clone())
	}
	r.mu.RUnlock()

	sort.SliceStable(jobs, func(i, j int) bool {
		if jobs[i].AddedAt.Equal(jobs[j].AddedAt) {
			return jobs[i].JobID < jobs[j].JobID
		}
		return jobs[i].AddedAt.Before(jobs[j].AddedAt)
	})
	return jobs
}

// Remove deletes a job and reports whether it existed
func (r *JobRegistry) Remove(jobID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[jobID]; !ok {
		return false
	}
	delete(r.jobs, jobID)
	return true
}

// Len returns the number of tracked jobs
func (r *JobRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.jobs)
}
