// Package orchestrator coordinates concurrent fetches across every
// configured job source, persisting results as each source completes
// and exposing pollable progress for a background search.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/DrJonoG/job-search/internal/model"
	"github.com/DrJonoG/job-search/internal/sources"
	"github.com/DrJonoG/job-search/internal/store"
)

const workerConcurrency = 4

// Params is the search request accepted by StartSearch.
type Params struct {
	Keywords         []string
	Location         string
	Remote           string
	JobType          string
	SalaryMin        *float64
	ExperienceLevel  string
	Sources          []string
	MaxResultsPerSrc int
	PostedInLastDays int
}

// SourceStatus is the per-adapter phase the task snapshot reports.
type SourceStatus struct {
	Status        string `json:"status"`
	StartedAt     time.Time `json:"-"`
	FinishedAt    time.Time `json:"-"`
	ElapsedSecs   float64 `json:"elapsed_seconds,omitempty"`
	Jobs          int    `json:"jobs,omitempty"`
	Error         string `json:"error,omitempty"`
}

// Task tracks the state of a running (or finished) search. All fields
// are guarded by mu; callers must go through Snapshot rather than
// reading fields directly, since a search runs in background
// goroutines for the lifetime of the task.
type Task struct {
	mu sync.Mutex

	id              string
	status          string
	cancelled       bool
	totalSources    int
	completedSrcs   int
	currentSource   string
	jobsFound       int
	newJobsSaved    int
	errors          []string
	startedAt       time.Time
	finishedAt      time.Time
	sourceResults   map[string]int
	sourceStatus    map[string]*SourceStatus
}

// Snapshot is the serialisable view returned by GET /api/search/<id>.
type Snapshot struct {
	TaskID          string                   `json:"task_id"`
	Status          string                   `json:"status"`
	Cancelled       bool                     `json:"cancelled"`
	TotalSources    int                      `json:"total_sources"`
	CompletedSrcs   int                      `json:"completed_sources"`
	CurrentSource   string                   `json:"current_source"`
	JobsFound       int                      `json:"jobs_found"`
	NewJobsSaved    int                      `json:"new_jobs_saved"`
	Errors          []string                 `json:"errors"`
	ElapsedSeconds  float64                  `json:"elapsed_seconds"`
	SourceResults   map[string]int           `json:"source_results"`
	SourceStatus    map[string]SourceStatus  `json:"source_status"`
}

func (t *Task) snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	end := t.finishedAt
	if end.IsZero() {
		end = time.Now().UTC()
	}
	elapsed := 0.0
	if !t.startedAt.IsZero() {
		elapsed = roundTo1(end.Sub(t.startedAt).Seconds())
	}

	ss := make(map[string]SourceStatus, len(t.sourceStatus))
	for name, s := range t.sourceStatus {
		cp := *s
		if !cp.StartedAt.IsZero() {
			fin := cp.FinishedAt
			if fin.IsZero() {
				fin = time.Now().UTC()
			}
			cp.ElapsedSecs = roundTo1(fin.Sub(cp.StartedAt).Seconds())
		}
		ss[name] = cp
	}

	errs := make([]string, len(t.errors))
	copy(errs, t.errors)
	results := make(map[string]int, len(t.sourceResults))
	for k, v := range t.sourceResults {
		results[k] = v
	}

	return Snapshot{
		TaskID:         t.id,
		Status:         t.status,
		Cancelled:      t.cancelled,
		TotalSources:   t.totalSources,
		CompletedSrcs:  t.completedSrcs,
		CurrentSource:  t.currentSource,
		JobsFound:      t.jobsFound,
		NewJobsSaved:   t.newJobsSaved,
		Errors:         errs,
		ElapsedSeconds: elapsed,
		SourceResults:  results,
		SourceStatus:   ss,
	}
}

func roundTo1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}

// Orchestrator holds the registry of configured adapters and the
// in-memory table of tasks started against them.
type Orchestrator struct {
	store    *store.Store
	adapters []sources.Adapter
	log      *slog.Logger

	mu    sync.Mutex
	tasks map[string]*Task
}

func New(st *store.Store, adapters []sources.Adapter, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		store:    st,
		adapters: adapters,
		log:      log,
		tasks:    make(map[string]*Task),
	}
}

// StartSearch registers a new task and spawns its background worker
// scheduler, returning the task ID immediately.
func (o *Orchestrator) StartSearch(p Params) string {
	id := uuid.New().String()[:12]
	task := &Task{
		id:           id,
		status:       "pending",
		sourceResults: make(map[string]int),
		sourceStatus:  make(map[string]*SourceStatus),
	}

	o.mu.Lock()
	o.tasks[id] = task
	o.mu.Unlock()

	go o.runSearch(task, p)

	return id
}

// GetTask returns the live snapshot for task_id, or false if unknown.
func (o *Orchestrator) GetTask(taskID string) (Snapshot, bool) {
	o.mu.Lock()
	task, ok := o.tasks[taskID]
	o.mu.Unlock()
	if !ok {
		return Snapshot{}, false
	}
	return task.snapshot(), true
}

// CancelSearch requests cancellation. Returns false if the task is
// missing or not currently running.
func (o *Orchestrator) CancelSearch(taskID string) bool {
	o.mu.Lock()
	task, ok := o.tasks[taskID]
	o.mu.Unlock()
	if !ok {
		return false
	}
	task.mu.Lock()
	defer task.mu.Unlock()
	if task.status != "running" {
		return false
	}
	task.cancelled = true
	return true
}

// selectAdapters dedupes the requested names preserving order, applies
// the JobSpy/LinkedIn elision rule, and filters to available sources.
// An empty names list means "all configured sources".
func (o *Orchestrator) selectAdapters(names []string) []sources.Adapter {
	byName := make(map[string]sources.Adapter, len(o.adapters))
	for _, a := range o.adapters {
		byName[a.Name()] = a
	}

	var ordered []string
	if len(names) == 0 {
		for _, a := range o.adapters {
			ordered = append(ordered, a.Name())
		}
	} else {
		ordered = names
	}

	hasJobSpy := false
	for _, n := range ordered {
		if n == "JobSpy" {
			hasJobSpy = true
			break
		}
	}

	seen := make(map[string]bool, len(ordered))
	var selected []sources.Adapter
	for _, n := range ordered {
		if n == "" || seen[n] {
			continue
		}
		if n == "LinkedIn" && hasJobSpy {
			continue
		}
		seen[n] = true
		a, ok := byName[n]
		if !ok || !a.IsAvailable() {
			continue
		}
		selected = append(selected, a)
	}
	return selected
}

func (o *Orchestrator) runSearch(task *Task, p Params) {
	task.mu.Lock()
	task.status = "running"
	task.startedAt = time.Now().UTC()
	task.mu.Unlock()

	active := o.selectAdapters(p.Sources)

	task.mu.Lock()
	task.totalSources = len(active)
	for _, a := range active {
		task.sourceStatus[a.Name()] = &SourceStatus{Status: "pending"}
	}
	task.mu.Unlock()

	if len(active) == 0 {
		task.mu.Lock()
		task.status = "failed"
		task.errors = append(task.errors, "No sources available. Check API key configuration.")
		task.finishedAt = time.Now().UTC()
		task.mu.Unlock()
		return
	}

	criteria := sources.Criteria{
		Keywords:         p.Keywords,
		Location:         p.Location,
		Remote:           p.Remote,
		JobType:          p.JobType,
		SalaryMin:        p.SalaryMin,
		ExperienceLevel:  p.ExperienceLevel,
		MaxResults:       p.MaxResultsPerSrc,
		PostedInLastDays: p.PostedInLastDays,
	}

	ctx := context.Background()

	type workerResult struct {
		name      string
		jobs      []model.Job
		err       error
		usedBatch bool
	}

	sem := make(chan struct{}, workerConcurrency)
	results := make(chan workerResult, len(active))
	var wg sync.WaitGroup

	for _, adapter := range active {
		adapter := adapter
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			results <- o.runAdapter(task, adapter, criteria)
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	for r := range results {
		task.mu.Lock()
		task.completedSrcs++
		task.sourceResults[r.name] = len(r.jobs)

		if r.err != nil {
			task.errors = append(task.errors, fmt.Sprintf("%s: %s", r.name, r.err))
		} else if !r.usedBatch && len(r.jobs) > 0 {
			saved, err := o.store.SaveJobs(ctx, r.jobs)
			if err != nil {
				task.errors = append(task.errors, fmt.Sprintf("storage error (%s): %s", r.name, err))
			} else {
				task.jobsFound += len(r.jobs)
				task.newJobsSaved += saved
			}
		}

		cancelled := task.cancelled
		task.mu.Unlock()

		if cancelled {
			task.mu.Lock()
			task.status = "cancelled"
			task.finishedAt = time.Now().UTC()
			task.mu.Unlock()
			if o.log != nil {
				o.log.Info("search_cancelled", "task_id", task.id)
			}
			return
		}
	}

	task.mu.Lock()
	task.status = "completed"
	task.finishedAt = time.Now().UTC()
	task.mu.Unlock()
}

func (o *Orchestrator) runAdapter(task *Task, adapter sources.Adapter, criteria sources.Criteria) (result struct {
	name      string
	jobs      []model.Job
	err       error
	usedBatch bool
}) {
	name := adapter.Name()
	start := time.Now().UTC()

	task.mu.Lock()
	task.sourceStatus[name] = &SourceStatus{Status: "running", StartedAt: start}
	task.currentSource = name
	task.mu.Unlock()

	if o.log != nil {
		o.log.Info("source_started", "source", name, "task_id", task.id)
	}

	usedBatch := false
	c := criteria
	c.OnBatch = func(batch []model.Job) {
		if len(batch) == 0 {
			return
		}
		usedBatch = true
		saved, err := o.store.SaveJobs(context.Background(), batch)
		task.mu.Lock()
		task.jobsFound += len(batch)
		if err != nil {
			task.errors = append(task.errors, fmt.Sprintf("storage error (batch, %s): %s", name, err))
		} else {
			task.newJobsSaved += saved
		}
		task.mu.Unlock()
	}

	jobs, err := adapter.FetchJobs(context.Background(), c)
	finish := time.Now().UTC()

	task.mu.Lock()
	if err != nil {
		task.sourceStatus[name] = &SourceStatus{Status: "error", StartedAt: start, FinishedAt: finish, Error: err.Error()}
	} else {
		task.sourceStatus[name] = &SourceStatus{Status: "completed", StartedAt: start, FinishedAt: finish, Jobs: len(jobs)}
	}
	task.mu.Unlock()

	if o.log != nil {
		if err != nil {
			o.log.Warn("source_failed", "source", name, "task_id", task.id, "error", err, "elapsed_s", finish.Sub(start).Seconds())
		} else {
			o.log.Info("source_finished", "source", name, "task_id", task.id, "jobs", len(jobs), "elapsed_s", finish.Sub(start).Seconds())
		}
	}

	result.name = name
	result.jobs = jobs
	result.err = err
	result.usedBatch = usedBatch
	return result
}
