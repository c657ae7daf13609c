package jobs

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/scentaustralia/leadgen/pkg/acquire"
	"github.com/scentaustralia/leadgen/pkg/domain"
	"github.com/scentaustralia/leadgen/pkg/logger"
	"github.com/scentaustralia/leadgen/pkg/models"
	"github.com/scentaustralia/leadgen/pkg/provider"
	"github.com/scentaustralia/leadgen/pkg/scoring"
	"github.com/scentaustralia/leadgen/pkg/store"
)

// Config bounds the orchestrator's behavior.
type Config struct {
	MaxLeadsCeiling int // upper bound on a job's max_leads
	BatchSize       int // records pulled per provider request
	Retries         int // retry attempts for retryable provider errors
	Workers         int // concurrent job executions
	PreviewSample   int // records returned by Preview
	RetryBackoff    time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxLeadsCeiling == 0 {
		c.MaxLeadsCeiling = 1000
	}
	if c.BatchSize == 0 {
		c.BatchSize = 25
	}
	if c.Retries == 0 {
		c.Retries = 3
	}
	if c.Workers == 0 {
		c.Workers = 4
	}
	if c.PreviewSample == 0 {
		c.PreviewSample = 10
	}
	if c.RetryBackoff == 0 {
		c.RetryBackoff = 500 * time.Millisecond
	}
	return c
}

type jobEntry struct {
	job           models.Job
	stopRequested bool
	seenLeadIDs   map[string]bool
}

// Service runs acquisition jobs. The job registry is shared between API
// handlers and background workers; every access goes through the mutex and
// callers only ever see snapshot copies, so state and progress are always
// read consistently.
type Service struct {
	mu      sync.RWMutex
	entries map[string]*jobEntry

	store   *store.Service
	scoring *scoring.Service
	source  provider.Source
	adapter *acquire.Adapter
	cfg     Config
	logger  logger.Logger

	sem chan struct{}
	wg  sync.WaitGroup
}

// NewService creates a new job orchestrator
func NewService(st *store.Service, sc *scoring.Service, src provider.Source, adapter *acquire.Adapter, cfg Config, log logger.Logger) *Service {
	cfg = cfg.withDefaults()
	return &Service{
		entries: make(map[string]*jobEntry),
		store:   st,
		scoring: sc,
		source:  src,
		adapter: adapter,
		cfg:     cfg,
		logger:  log,
		sem:     make(chan struct{}, cfg.Workers),
	}
}

// Submit validates the spec, registers a pending job and dispatches it to
// the worker pool.
func (s *Service) Submit(spec models.JobSpec) (*models.Job, error) {
	if spec.MaxLeads < 1 {
		return nil, domain.NewValidationError("max_leads must be a positive integer")
	}
	if spec.MaxLeads > s.cfg.MaxLeadsCeiling {
		return nil, domain.NewValidationError(
			fmt.Sprintf("max_leads exceeds the ceiling of %d", s.cfg.MaxLeadsCeiling))
	}

	job := models.Job{
		ID:    uuid.New().String(),
		Spec:  spec,
		State: models.JobPending,
		Progress: models.JobProgress{
			Target: spec.MaxLeads,
		},
		ResultLeadIDs: []string{},
		CreatedAt:     time.Now().UTC(),
	}

	s.mu.Lock()
	s.entries[job.ID] = &jobEntry{job: job}
	s.mu.Unlock()

	s.logger.Info("job submitted", "job_id", job.ID,
		"max_leads", spec.MaxLeads, "analyze", spec.AnalyzeWithAI, "save", spec.SaveLeads)

	s.wg.Add(1)
	go s.dispatch(job.ID)

	snapshot := job
	return &snapshot, nil
}

// dispatch waits for a worker slot, then runs the job to a terminal state.
func (s *Service) dispatch(id string) {
	defer s.wg.Done()

	s.sem <- struct{}{}
	defer func() { <-s.sem }()

	// A queued job may have been stopped before a slot freed up.
	if !s.markRunning(id) {
		return
	}
	s.run(id)
}

// markRunning transitions pending -> running. Returns false when the job is
// no longer pending (stopped while queued).
func (s *Service) markRunning(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok || entry.job.State != models.JobPending {
		return false
	}
	now := time.Now().UTC()
	entry.job.State = models.JobRunning
	entry.job.StartedAt = &now
	return true
}

// run executes the acquisition loop until the target is reached, the source
// is exhausted, a fatal error occurs, or a stop is observed at a batch
// boundary.
func (s *Service) run(id string) {
	ctx := context.Background()
	spec := s.snapshotSpec(id)

	page := 1
	for {
		if s.stopObserved(id) {
			s.finish(id, models.JobStopped, nil)
			return
		}

		remaining := s.remaining(id)
		if remaining <= 0 {
			break
		}

		perPage := s.cfg.BatchSize
		result, err := s.searchWithRetry(ctx, provider.Criteria{
			Keywords:   spec.Keywords,
			Locations:  spec.Locations,
			Titles:     spec.Titles,
			Industries: spec.Industries,
			Page:       page,
			PerPage:    perPage,
		})
		if err != nil {
			s.logger.Error("job acquisition failed", "job_id", id, "error", err)
			s.finish(id, models.JobFailed, &models.JobError{
				Kind:    domain.CodeOf(err),
				Message: err.Error(),
			})
			return
		}

		inputs, skipped := s.adapter.NormalizeBatch(result.Records)
		s.addSkipped(id, skipped)

		for _, input := range inputs {
			if s.remaining(id) <= 0 {
				break
			}
			s.processCandidate(ctx, id, spec, input)
		}

		if !result.HasMore {
			break
		}
		page++
	}

	s.finish(id, models.JobCompleted, nil)
}

// processCandidate upserts one candidate and optionally scores it. Scoring
// failures never fail the job; the engine always has a fallback.
func (s *Service) processCandidate(ctx context.Context, id string, spec models.JobSpec, input models.LeadInput) {
	if !spec.SaveLeads {
		// Dry acquisition: count the find, store nothing.
		s.recordResult(id, "", false)
		return
	}

	lead, _, err := s.store.InsertOrMerge(input)
	if err != nil {
		s.logger.Warn("candidate rejected by store", "job_id", id, "error", err)
		s.addSkipped(id, 1)
		return
	}

	analyzed := false
	if spec.AnalyzeWithAI {
		if _, err := s.scoring.ScoreLead(ctx, lead.ID); err != nil {
			// Only a concurrent delete can land here.
			s.logger.Warn("lead scoring skipped", "job_id", id, "lead_id", lead.ID, "error", err)
		} else {
			analyzed = true
		}
	}
	s.recordResult(id, lead.ID, analyzed)
}

// searchWithRetry calls the source, retrying rate-limit and transient
// failures with exponential backoff. Other errors surface immediately.
func (s *Service) searchWithRetry(ctx context.Context, criteria provider.Criteria) (*provider.Result, error) {
	var lastErr error
	backoff := s.cfg.RetryBackoff

	for attempt := 0; attempt <= s.cfg.Retries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, domain.NewTransientError("acquisition cancelled", ctx.Err())
			}
			backoff *= 2
		}

		result, err := s.source.Search(ctx, criteria)
		if err == nil {
			return result, nil
		}
		if !domain.Retryable(err) {
			return nil, err
		}
		lastErr = err
		s.logger.Warn("provider search retry", "attempt", attempt+1, "error", err)
	}
	return nil, lastErr
}

// GetStatus returns a consistent snapshot of the job.
func (s *Service) GetStatus(id string) (*models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[id]
	if !ok {
		return nil, domain.NewNotFoundError("job")
	}
	snapshot := copyJob(entry.job)
	return &snapshot, nil
}

// List returns all known jobs, most recently created first.
func (s *Service) List() []models.Job {
	s.mu.RLock()
	jobs := make([]models.Job, 0, len(s.entries))
	for _, entry := range s.entries {
		jobs = append(jobs, copyJob(entry.job))
	}
	s.mu.RUnlock()

	sort.Slice(jobs, func(i, j int) bool {
		if jobs[i].CreatedAt.Equal(jobs[j].CreatedAt) {
			return jobs[i].ID < jobs[j].ID
		}
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
	return jobs
}

// Stop requests a cooperative stop. A pending job stops immediately; a
// running one stops at the next batch boundary. Terminal jobs are rejected.
func (s *Service) Stop(id string) (*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		return nil, domain.NewNotFoundError("job")
	}
	if entry.job.State.Terminal() {
		return nil, domain.NewInvalidStateError(
			fmt.Sprintf("job is already %s", entry.job.State))
	}

	entry.stopRequested = true
	if entry.job.State == models.JobPending {
		now := time.Now().UTC()
		entry.job.State = models.JobStopped
		entry.job.FinishedAt = &now
	}

	s.logger.Info("job stop requested", "job_id", id, "state", entry.job.State)
	snapshot := copyJob(entry.job)
	return &snapshot, nil
}

// Preview dry-runs the spec against the source: a single bounded search,
// normalized, with no store mutation and no job registered.
func (s *Service) Preview(ctx context.Context, spec models.JobSpec) (*models.PreviewResponse, error) {
	result, err := s.searchWithRetry(ctx, provider.Criteria{
		Keywords:   spec.Keywords,
		Locations:  spec.Locations,
		Titles:     spec.Titles,
		Industries: spec.Industries,
		Page:       1,
		PerPage:    s.cfg.PreviewSample,
	})
	if err != nil {
		return nil, err
	}

	inputs, skipped := s.adapter.NormalizeBatch(result.Records)
	if len(inputs) > s.cfg.PreviewSample {
		inputs = inputs[:s.cfg.PreviewSample]
	}
	return &models.PreviewResponse{
		Records: inputs,
		Skipped: skipped,
		HasMore: result.HasMore,
	}, nil
}

// Stats aggregates all known jobs.
func (s *Service) Stats() *models.JobStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &models.JobStats{
		Total:   len(s.entries),
		ByState: make(map[string]int),
	}

	var totalSecs float64
	finished := 0
	for _, entry := range s.entries {
		job := entry.job
		stats.ByState[string(job.State)]++
		stats.TotalLeadsFound += job.Progress.Found
		stats.TotalLeadsAnalyzed += job.Progress.Analyzed
		if job.StartedAt != nil && job.FinishedAt != nil {
			totalSecs += job.FinishedAt.Sub(*job.StartedAt).Seconds()
			finished++
		}
	}
	if finished > 0 {
		stats.AvgProcessingSecs = totalSecs / float64(finished)
	}
	return stats
}

// Cleanup removes terminal jobs that finished before the cutoff. Returns
// how many were removed.
func (s *Service) Cleanup(olderThan time.Duration) int {
	cutoff := time.Now().UTC().Add(-olderThan)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, entry := range s.entries {
		if !entry.job.State.Terminal() {
			continue
		}
		finished := entry.job.CreatedAt
		if entry.job.FinishedAt != nil {
			finished = *entry.job.FinishedAt
		}
		if finished.Before(cutoff) {
			delete(s.entries, id)
			removed++
		}
	}
	if removed > 0 {
		s.logger.Info("job registry cleaned", "removed", removed)
	}
	return removed
}

// Wait blocks until all dispatched jobs have reached a terminal state.
func (s *Service) Wait() {
	s.wg.Wait()
}

// internal registry helpers

func (s *Service) snapshotSpec(id string) models.JobSpec {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if entry, ok := s.entries[id]; ok {
		return entry.job.Spec
	}
	return models.JobSpec{}
}

func (s *Service) stopObserved(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[id]
	return ok && entry.stopRequested
}

func (s *Service) remaining(id string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[id]
	if !ok {
		return 0
	}
	return entry.job.Spec.MaxLeads - entry.job.Progress.Found
}

func (s *Service) addSkipped(id string, n int) {
	if n == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.entries[id]; ok {
		entry.job.Progress.Skipped += n
	}
}

func (s *Service) recordResult(id, leadID string, analyzed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[id]
	if !ok {
		return
	}
	entry.job.Progress.Found++
	if analyzed {
		entry.job.Progress.Analyzed++
	}
	// Two candidates may merge into one stored lead; record each id once.
	if leadID != "" && !entry.seenLeadIDs[leadID] {
		if entry.seenLeadIDs == nil {
			entry.seenLeadIDs = make(map[string]bool)
		}
		entry.seenLeadIDs[leadID] = true
		entry.job.ResultLeadIDs = append(entry.job.ResultLeadIDs, leadID)
	}
}

// finish moves the job to a terminal state unless it already is terminal
// (a queued stop may have landed first).
func (s *Service) finish(id string, state models.JobState, jobErr *models.JobError) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok || entry.job.State.Terminal() {
		return
	}
	now := time.Now().UTC()
	entry.job.State = state
	entry.job.FinishedAt = &now
	entry.job.Error = jobErr

	s.logger.Info("job finished", "job_id", id, "state", state,
		"found", entry.job.Progress.Found,
		"analyzed", entry.job.Progress.Analyzed,
		"skipped", entry.job.Progress.Skipped)
}

func copyJob(j models.Job) models.Job {
	out := j
	out.ResultLeadIDs = append([]string(nil), j.ResultLeadIDs...)
	if j.StartedAt != nil {
		t := *j.StartedAt
		out.StartedAt = &t
	}
	if j.FinishedAt != nil {
		t := *j.FinishedAt
		out.FinishedAt = &t
	}
	if j.Error != nil {
		e := *j.Error
		out.Error = &e
	}
	return out
}
