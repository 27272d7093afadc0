// Package evaluation implements the single-employee evaluation session: it
// holds the live criterion scores and derives category and overall
// aggregates on every mutation.
package evaluation

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/evalrank/evalrank/internal/domain/ranking"
	"github.com/evalrank/evalrank/internal/domain/taxonomy"
)

// Score bounds for one criterion.
const (
	MinScore = 1
	MaxScore = 5
)

// Performance level thresholds over the overall average.
const (
	levelNeedsImprovementMax    = 2.0
	levelMeetsExpectationsMax   = 3.0
	levelExceedsExpectationsMax = 4.0
)

// Comments are the free-text evaluation fields.
type Comments struct {
	Strengths    string `json:"strengths"`
	Improvements string `json:"improvements"`
	Goals        string `json:"goals"`
}

// Overall is the whole-evaluation aggregate.
type Overall struct {
	TotalScore       float64 `json:"total_score"`
	CriteriaCount    int     `json:"criteria_count"`
	Average          float64 `json:"average"`
	CompletionRate   float64 `json:"completion_rate"`
	PerformanceLevel string  `json:"performance_level"`
}

// Session owns the criterion store for one employee under evaluation.
// Switching employees means discarding the session and creating a new one.
// Session is not safe for concurrent use; callers serialize mutations.
type Session struct {
	id         string
	staffID    string
	name       string
	department string
	status     string

	scores   map[string]int // criterion id -> score, absent = not evaluated
	comments Comments
	criteria []taxonomy.Criterion
}

// Option applies a configuration option to a Session.
type Option func(*Session)

// WithName sets the employee display name.
func WithName(name string) Option {
	return func(s *Session) {
		if name != "" {
			s.name = name
		}
	}
}

// WithDepartment sets the employee department label.
func WithDepartment(department string) Option {
	return func(s *Session) {
		if department != "" {
			s.department = department
		}
	}
}

// WithStatus sets the employee status label.
func WithStatus(status string) Option {
	return func(s *Session) {
		if status != "" {
			s.status = status
		}
	}
}

// WithComments seeds the free-text comment fields.
func WithComments(c Comments) Option {
	return func(s *Session) {
		s.comments = c
	}
}

// NewSession creates a fresh session for one employee with every criterion
// unscored.
func NewSession(staffID string, opts ...Option) *Session {
	s := &Session{
		id:         uuid.NewString(),
		staffID:    staffID,
		name:       fmt.Sprintf("Employee %s", staffID),
		department: "General",
		status:     "Active",
		scores:     make(map[string]int),
		criteria:   taxonomy.Criteria(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the unique session identifier.
func (s *Session) ID() string { return s.id }

// StaffID returns the employee identity the session evaluates.
func (s *Session) StaffID() string { return s.staffID }

// SetScore records a score for one criterion, overwriting any prior value.
// Scores outside [MinScore, MaxScore] are rejected without mutating state.
func (s *Session) SetScore(criterionID string, score int) error {
	if score < MinScore || score > MaxScore {
		return fmt.Errorf("%w: got %d", ErrInvalidScore, score)
	}
	if !s.knownCriterion(criterionID) {
		return fmt.Errorf("%w: %s", ErrUnknownCriterion, criterionID)
	}
	s.scores[criterionID] = score
	return nil
}

// Score returns the recorded score for a criterion, if any.
func (s *Session) Score(criterionID string) (int, bool) {
	score, ok := s.scores[criterionID]
	return score, ok
}

// ResetAll clears every criterion score and the comment fields, returning
// the session to its zero state. Confirmation is the caller's concern.
func (s *Session) ResetAll() {
	s.scores = make(map[string]int)
	s.comments = Comments{}
}

// SetComments replaces the free-text comment fields.
func (s *Session) SetComments(c Comments) {
	s.comments = c
}

// Comments returns the current comment fields.
func (s *Session) Comments() Comments { return s.comments }

func (s *Session) knownCriterion(criterionID string) bool {
	for _, c := range s.criteria {
		if c.ID == criterionID {
			return true
		}
	}
	return false
}

// categoryAggregate sums the non-nil scores of one category.
func (s *Session) categoryAggregate(categoryKey string) ranking.CategoryScore {
	agg := ranking.CategoryScore{}
	for _, c := range s.criteria {
		if c.CategoryKey != categoryKey {
			continue
		}
		agg.Name = c.CategoryName
		if score, ok := s.scores[c.ID]; ok {
			agg.Total += float64(score)
			agg.Count++
		}
	}
	if agg.Count > 0 {
		agg.Average = agg.Total / float64(agg.Count)
	}
	return agg
}

// CategoryAggregate returns the derived aggregate for one category key.
func (s *Session) CategoryAggregate(categoryKey string) ranking.CategoryScore {
	return s.categoryAggregate(categoryKey)
}

// Overall derives the whole-session aggregate: total, count, average,
// completion rate, and qualitative performance level.
func (s *Session) Overall() Overall {
	o := Overall{}
	for _, score := range s.scores {
		o.TotalScore += float64(score)
		o.CriteriaCount++
	}
	if o.CriteriaCount > 0 {
		o.Average = o.TotalScore / float64(o.CriteriaCount)
	}
	if total := len(s.criteria); total > 0 {
		o.CompletionRate = float64(o.CriteriaCount) / float64(total) * 100
	}
	o.PerformanceLevel = PerformanceLevel(o.Average)
	return o
}

// Aggregate produces the shared persistence payload for this session, the
// same shape the ranking view ingests from the snapshot store.
func (s *Session) Aggregate() ranking.SourceRecord {
	categories := make(map[string]ranking.CategorySource)
	for _, cat := range taxonomy.Categories() {
		agg := s.categoryAggregate(cat.Key)
		categories[cat.Key] = ranking.CategorySource{
			Name:          cat.Name,
			TotalScore:    agg.Total,
			CriteriaCount: agg.Count,
			Average:       agg.Average,
		}
	}
	src := ranking.SourceRecord{
		Name:       s.name,
		Department: s.department,
		Status:     s.status,
		Categories: categories,
	}
	if s.comments != (Comments{}) {
		src.Comments = &ranking.SourceComments{
			Strengths:    s.comments.Strengths,
			Improvements: s.comments.Improvements,
			Goals:        s.comments.Goals,
		}
	}
	return src
}

// PerformanceLevel derives the qualitative level from the overall average of
// all non-nil criterion scores. Boundary values (exactly 2, 3, 4) belong to
// the higher bracket.
func PerformanceLevel(average float64) string {
	switch {
	case average == 0:
		return "Not Evaluated"
	case average < levelNeedsImprovementMax:
		return "Needs Improvement"
	case average < levelMeetsExpectationsMax:
		return "Meets Expectations"
	case average < levelExceedsExpectationsMax:
		return "Exceeds Expectations"
	default:
		return "Outstanding"
	}
}
