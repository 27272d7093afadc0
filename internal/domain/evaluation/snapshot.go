package evaluation

import (
	"github.com/evalrank/evalrank/internal/domain/taxonomy"
)

// CriterionRow is one criterion with its recorded score, nil when the
// criterion has not been evaluated yet.
type CriterionRow struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Category string `json:"category"`
	Score    *int   `json:"score"`
}

// CategoryRow is one category aggregate with its completion context.
type CategoryRow struct {
	Key     string  `json:"key"`
	Name    string  `json:"name"`
	Total   float64 `json:"total"`
	Count   int     `json:"count"`
	OutOf   int     `json:"out_of"`
	Average float64 `json:"average"`
}

// Snapshot is a read-only view of the whole session, in taxonomy order,
// suitable for display and reporting.
type Snapshot struct {
	SessionID  string         `json:"session_id"`
	StaffID    string         `json:"staff_id"`
	Name       string         `json:"name"`
	Department string         `json:"department"`
	Status     string         `json:"status"`
	Criteria   []CriterionRow `json:"criteria"`
	Categories []CategoryRow  `json:"categories"`
	Overall    Overall        `json:"overall"`
	Comments   Comments       `json:"comments"`
}

// Snapshot captures the current session state.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		SessionID:  s.id,
		StaffID:    s.staffID,
		Name:       s.name,
		Department: s.department,
		Status:     s.status,
		Overall:    s.Overall(),
		Comments:   s.comments,
	}
	for _, c := range s.criteria {
		row := CriterionRow{ID: c.ID, Label: c.Label, Category: c.CategoryName}
		if score, ok := s.scores[c.ID]; ok {
			v := score
			row.Score = &v
		}
		snap.Criteria = append(snap.Criteria, row)
	}
	for _, cat := range taxonomy.Categories() {
		agg := s.categoryAggregate(cat.Key)
		snap.Categories = append(snap.Categories, CategoryRow{
			Key:     cat.Key,
			Name:    cat.Name,
			Total:   agg.Total,
			Count:   agg.Count,
			OutOf:   len(cat.Criteria),
			Average: agg.Average,
		})
	}
	return snap
}
