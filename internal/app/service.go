// Package service provides the core business service that implements
// the dependencies required by the HTTP API. It owns the active evaluation
// session and the ranking collection, and serializes every mutation through
// a single dispatch queue so no two state changes ever run concurrently.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	dispatch "github.com/evalrank/evalrank/internal/adapters/mq/queue"
	"github.com/evalrank/evalrank/internal/adapters/repository"
	"github.com/evalrank/evalrank/internal/domain/evaluation"
	"github.com/evalrank/evalrank/internal/domain/query"
	"github.com/evalrank/evalrank/internal/domain/ranking"
	"github.com/evalrank/evalrank/internal/domain/report"
	"github.com/evalrank/evalrank/pkg/logger"
	"github.com/evalrank/evalrank/pkg/metrics"
)

// Source labels surfaced alongside the ranking collection.
const (
	sourceLive          = "Performance Evaluations"
	sourceDemo          = "Demo Data (Template)"
	sourceDemoFallback  = "Demo Data (Error Fallback)"
	defaultQueueSize    = 1024
	defaultRefreshEvery = 30 * time.Second
)

// Service implements the evaluation and ranking operations behind the API.
type Service struct {
	mu sync.RWMutex

	// Core components
	store    repository.Store
	dispatch dispatch.Queue
	cron     *cron.Cron

	// Configuration
	storePath    string
	queueSize    int
	refreshEvery time.Duration
	demoFallback bool
	ownsStore    bool

	// Ranking state, fully replaced on every reload.
	records      []ranking.Record
	sourceLabel  string
	demoActive   bool
	lastRevision int64
	loadedAt     time.Time

	// Active evaluation session, one employee at a time.
	session *evaluation.Session

	// State
	started      bool
	dispatchDone chan struct{}

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore injects a snapshot store. The caller keeps ownership.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithStorePath opens a SQLite snapshot store at path on Start.
func WithStorePath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.storePath = path
		}
	}
}

// WithQueueSize bounds the mutation dispatch queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithRefreshInterval sets the periodic ranking refresh interval.
func WithRefreshInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.refreshEvery = interval
		}
	}
}

// WithDemoFallback controls serving the placeholder dataset when the
// snapshot store is empty or unreadable.
func WithDemoFallback(enabled bool) Option {
	return func(s *Service) {
		s.demoFallback = enabled
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates an unstarted Service.
func New(opts ...Option) *Service {
	s := &Service{
		queueSize:    defaultQueueSize,
		refreshEvery: defaultRefreshEvery,
		demoFallback: true,
		storePath:    "evalrank.db",
		sourceLabel:  sourceDemo,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens the store, performs the initial load, and starts the dispatch
// loop and the periodic refresher.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	s.mu.Unlock()

	if s.store == nil {
		store, err := repository.NewSQLiteStore(ctx, s.storePath)
		if err != nil {
			return fmt.Errorf("open snapshot store: %w", err)
		}
		s.store = store
		s.ownsStore = true
	}

	s.dispatch = dispatch.NewInMemoryQueue(dispatch.WithCapacity(s.queueSize))
	s.dispatchDone = make(chan struct{})

	// Initial load happens before any mutation can be dispatched.
	if err := s.reload(ctx, true); err != nil {
		return err
	}

	go s.runDispatch()

	s.cron = cron.New()
	if _, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.refreshEvery), s.pollRefresh); err != nil {
		return fmt.Errorf("schedule refresh: %w", err)
	}
	s.cron.Start()

	s.mu.Lock()
	s.started = true
	s.mu.Unlock()

	s.logger.Info(ctx, "evalrank service started",
		logger.Int("queue_size", s.queueSize),
		logger.String("refresh_every", s.refreshEvery.String()),
		logger.String("source", s.SourceLabel(ctx)),
	)
	return nil
}

// Stop cancels the refresher, drains the dispatch queue, and closes the
// store if this service opened it.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	s.mu.Unlock()

	if s.cron != nil {
		s.cron.Stop()
	}
	if s.dispatch != nil {
		_ = s.dispatch.Close()
		<-s.dispatchDone
	}
	if s.ownsStore && s.store != nil {
		_ = s.store.Close()
	}
	s.logger.Info(context.Background(), "evalrank service stopped")
}

// runDispatch consumes the mutation queue. This is the only goroutine that
// applies state changes.
func (s *Service) runDispatch() {
	defer close(s.dispatchDone)
	ctx := context.Background()
	for m := range s.dispatch.Dequeue(ctx) {
		err := m.Apply(ctx)
		if err != nil {
			s.logger.Debug(ctx, "mutation failed",
				logger.String("mutation", m.Name), logger.Error(err))
		}
		if m.Done != nil {
			m.Done <- err
		}
	}
}

// do submits a mutation and waits for the dispatcher to apply it.
func (s *Service) do(ctx context.Context, name string, fn func(context.Context) error) error {
	s.mu.RLock()
	q := s.dispatch
	s.mu.RUnlock()
	if q == nil {
		return fmt.Errorf("%s: %w", name, ErrNotStarted)
	}
	done := make(chan error, 1)
	if !q.Enqueue(ctx, dispatch.Mutation{Name: name, Apply: fn, Done: done}) {
		return fmt.Errorf("%s: %w", name, ErrBusy)
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// pollRefresh is the cron callback: reload only when new data is present.
func (s *Service) pollRefresh() {
	if err := s.Refresh(context.Background(), false); err != nil {
		s.logger.Warn(context.Background(), "periodic refresh failed", logger.Error(err))
	}
}

// Refresh reloads the ranking collection from the snapshot store. With
// force false the reload is skipped unless the store revision advanced.
func (s *Service) Refresh(ctx context.Context, force bool) error {
	return s.do(ctx, "refresh", func(ctx context.Context) error {
		return s.reload(ctx, force)
	})
}

// reload fully replaces the ranking state. Runs on the dispatch goroutine
// (or during Start, before the dispatcher exists).
func (s *Service) reload(ctx context.Context, force bool) error {
	start := time.Now()

	rev, revErr := s.store.Revision(ctx)
	if revErr == nil && !force && rev == s.currentRevision() {
		return nil
	}

	var (
		data  map[string]ranking.SourceRecord
		order []string
		label string
		demo  bool
	)

	data, err := s.store.Load(ctx)
	switch {
	case err != nil:
		if !s.demoFallback {
			metrics.RecordReloadFailure()
			return fmt.Errorf("load snapshot store: %w", err)
		}
		s.logger.Warn(ctx, "snapshot store unreadable; falling back to demo data", logger.Error(err))
		metrics.RecordReloadFailure()
		data = ranking.DemoSource()
		order = ranking.DemoStaffIDs()
		label = sourceDemoFallback
		demo = true
	case len(data) == 0 && s.demoFallback:
		data = ranking.DemoSource()
		order = ranking.DemoStaffIDs()
		label = sourceDemo
		demo = true
	default:
		label = sourceLive
	}

	// Ingested maps have no inherent order; ascending staff id defines the
	// pre-sort input order that stable ranking ties preserve.
	if order == nil {
		order = make([]string, 0, len(data))
		for id := range data {
			order = append(order, id)
		}
		sort.Strings(order)
	}

	aggregates := make([]ranking.Record, 0, len(order))
	for _, id := range order {
		aggregates = append(aggregates, ranking.FromSource(id, data[id]))
	}
	ranked := ranking.Rank(aggregates)

	s.mu.Lock()
	s.records = ranked
	s.sourceLabel = label
	s.demoActive = demo
	s.lastRevision = rev
	s.loadedAt = time.Now()
	s.mu.Unlock()

	metrics.RecordReload()
	metrics.RecordReloadDuration(float64(time.Since(start).Milliseconds()))
	metrics.UpdateStaffTracked(len(ranked))
	metrics.UpdateLastReload(time.Now().Unix())
	metrics.UpdateDemoFallback(demo)

	s.logger.Info(ctx, "ranking reloaded",
		logger.Int("staff", len(ranked)),
		logger.String("source", label),
		logger.Bool("demo", demo),
	)
	return nil
}

func (s *Service) currentRevision() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRevision
}

// StartSession discards any active session and starts evaluating staffID.
// If the snapshot store already holds an aggregate for the employee, its
// identity fields and comments seed the new session; explicit arguments win.
func (s *Service) StartSession(ctx context.Context, staffID, name, department, status string) (evaluation.Snapshot, error) {
	var snap evaluation.Snapshot
	err := s.do(ctx, "start_session", func(ctx context.Context) error {
		opts := make([]evaluation.Option, 0, 4)
		if prior, err := s.store.Load(ctx); err == nil {
			if rec, ok := prior[staffID]; ok {
				opts = append(opts,
					evaluation.WithName(rec.Name),
					evaluation.WithDepartment(rec.Department),
					evaluation.WithStatus(rec.Status),
				)
				if rec.Comments != nil {
					opts = append(opts, evaluation.WithComments(evaluation.Comments{
						Strengths:    rec.Comments.Strengths,
						Improvements: rec.Comments.Improvements,
						Goals:        rec.Comments.Goals,
					}))
				}
			}
		}
		opts = append(opts,
			evaluation.WithName(name),
			evaluation.WithDepartment(department),
			evaluation.WithStatus(status),
		)
		session := evaluation.NewSession(staffID, opts...)

		s.mu.Lock()
		s.session = session
		s.mu.Unlock()

		snap = session.Snapshot()
		return nil
	})
	return snap, err
}

// SetScore records one criterion score on the active session.
func (s *Service) SetScore(ctx context.Context, criterionID string, score int) error {
	return s.do(ctx, "set_score", func(_ context.Context) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.session == nil {
			return ErrNoSession
		}
		if err := s.session.SetScore(criterionID, score); err != nil {
			if errors.Is(err, evaluation.ErrInvalidScore) {
				metrics.RecordInvalidScore()
			}
			return err
		}
		metrics.RecordScore()
		return nil
	})
}

// ResetScores clears every criterion score and the comments of the active
// session. The confirmation prompt is the caller's concern.
func (s *Service) ResetScores(ctx context.Context) error {
	return s.do(ctx, "reset_scores", func(_ context.Context) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.session == nil {
			return ErrNoSession
		}
		s.session.ResetAll()
		metrics.RecordEvaluationReset()
		return nil
	})
}

// SetComments replaces the free-text comments of the active session.
func (s *Service) SetComments(ctx context.Context, c evaluation.Comments) error {
	return s.do(ctx, "set_comments", func(_ context.Context) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.session == nil {
			return ErrNoSession
		}
		s.session.SetComments(c)
		return nil
	})
}

// SaveSession persists the active session's aggregate to the snapshot store
// and reloads the ranking so it reflects the new data immediately.
func (s *Service) SaveSession(ctx context.Context) error {
	return s.do(ctx, "save_session", func(ctx context.Context) error {
		s.mu.RLock()
		session := s.session
		s.mu.RUnlock()
		if session == nil {
			return ErrNoSession
		}
		if err := s.store.Save(ctx, session.StaffID(), session.Aggregate()); err != nil {
			return err
		}
		metrics.RecordEvaluationSave()
		return s.reload(ctx, true)
	})
}

// SessionSnapshot returns the current state of the active session.
func (s *Service) SessionSnapshot(_ context.Context) (evaluation.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return evaluation.Snapshot{}, ErrNoSession
	}
	return s.session.Snapshot(), nil
}

// Ranking returns the ranked records matching the filter criteria. Rank
// numbers reflect the full population, not the filtered view.
func (s *Service) Ranking(_ context.Context, c query.Criteria) ([]ranking.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return query.Apply(s.records, c), nil
}

// RankOf returns the ranked record for one staff id.
func (s *Service) RankOf(_ context.Context, staffID string) (ranking.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.records {
		if r.StaffID == staffID {
			return r, nil
		}
	}
	return ranking.Record{}, fmt.Errorf("%s: %w", staffID, ErrNotFound)
}

// Departments returns the distinct departments for filter controls.
func (s *Service) Departments(_ context.Context) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return query.Departments(s.records)
}

// Summary returns population statistics for the ranking view.
func (s *Service) Summary(_ context.Context) ranking.Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ranking.Summarize(s.records)
}

// SourceLabel reports where the current ranking data came from.
func (s *Service) SourceLabel(_ context.Context) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sourceLabel
}

// ExportRanking renders the ranking report over the filtered view and
// returns the download filename with the document bytes.
func (s *Service) ExportRanking(_ context.Context, c query.Criteria) (string, []byte, error) {
	s.mu.RLock()
	full := s.records
	label := s.sourceLabel
	s.mu.RUnlock()

	filtered := query.Apply(full, c)
	now := time.Now()
	data, err := report.Ranking(full, filtered, label, now)
	if err != nil {
		metrics.RecordExportError("ranking")
		return "", nil, fmt.Errorf("export ranking: %w", err)
	}
	metrics.RecordExport("ranking")
	return report.RankingFilename(now), data, nil
}

// ExportEvaluation renders the single-employee report for the active session.
func (s *Service) ExportEvaluation(ctx context.Context) (string, []byte, error) {
	snap, err := s.SessionSnapshot(ctx)
	if err != nil {
		metrics.RecordExportError("evaluation")
		return "", nil, err
	}
	now := time.Now()
	data, err := report.Evaluation(snap, now)
	if err != nil {
		metrics.RecordExportError("evaluation")
		return "", nil, fmt.Errorf("export evaluation: %w", err)
	}
	metrics.RecordExport("evaluation")
	return report.EvaluationFilename(snap.StaffID, now), data, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":       s.started,
		"total_staff":   len(s.records),
		"data_source":   s.sourceLabel,
		"demo_data":     s.demoActive,
		"queue_size":    s.queueSize,
		"refresh_every": s.refreshEvery.String(),
	}
	if !s.loadedAt.IsZero() {
		stats["loaded_at"] = s.loadedAt.Format(time.RFC3339)
	}
	if s.dispatch != nil {
		stats["queue_length"] = s.dispatch.Len(context.Background())
	}
	stats["session_active"] = s.session != nil
	if s.session != nil {
		stats["session_staff_id"] = s.session.StaffID()
	}
	return stats
}
