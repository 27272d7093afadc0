// Package ranking computes per-employee aggregates, letter grades, and the
// dense rank ordering for the multi-employee view.
package ranking

import (
	"fmt"
	"sort"
)

// Grade thresholds over the overall average score.
const (
	gradeAPlusMin = 4.6
	gradeAMin     = 4.0
	gradeBMin     = 3.5
	gradeCMin     = 3.0
)

// CategorySource is the per-category slice of an externally persisted
// aggregate. Field names mirror the JSON payload written by evaluation
// sessions.
type CategorySource struct {
	Name          string  `json:"name"`
	TotalScore    float64 `json:"totalScore"`
	CriteriaCount int     `json:"criteriaCount"`
	Average       float64 `json:"average"`
}

// SourceComments carries the free-text evaluation comments through the
// persistence channel.
type SourceComments struct {
	Strengths    string `json:"strengths,omitempty"`
	Improvements string `json:"improvements,omitempty"`
	Goals        string `json:"goals,omitempty"`
}

// SourceRecord is the externally supplied per-employee structure, keyed by
// staff id in the snapshot store. Name, department, and status are optional;
// defaults are filled at ingestion.
type SourceRecord struct {
	Name       string                    `json:"name,omitempty"`
	Department string                    `json:"department,omitempty"`
	Status     string                    `json:"status,omitempty"`
	Categories map[string]CategorySource `json:"categories"`
	Comments   *SourceComments           `json:"comments,omitempty"`
}

// CategoryScore is a computed category aggregate carried on a Record.
type CategoryScore struct {
	Name    string  `json:"name"`
	Total   float64 `json:"total"`
	Count   int     `json:"count"`
	Average float64 `json:"average"`
}

// Record is one employee's aggregate augmented with grade and rank.
// Rank is assigned by Rank, is contiguous 1..N over the full population,
// and is never reassigned by filtering.
type Record struct {
	Rank         int                      `json:"rank"`
	StaffID      string                   `json:"staff_id"`
	Name         string                   `json:"name"`
	Department   string                   `json:"department"`
	Status       string                   `json:"status"`
	Categories   map[string]CategoryScore `json:"categories,omitempty"`
	TotalScore   float64                  `json:"total_score"`
	AverageScore float64                  `json:"average_score"`
	Grade        string                   `json:"grade"`
}

// FromSource ingests an externally supplied aggregate. Categories without a
// positive criteria count are treated as not yet evaluated and excluded from
// the sums. Missing identity fields get documented defaults.
func FromSource(staffID string, src SourceRecord) Record {
	rec := Record{
		StaffID:    staffID,
		Name:       src.Name,
		Department: src.Department,
		Status:     src.Status,
		Categories: make(map[string]CategoryScore, len(src.Categories)),
	}
	if rec.Name == "" {
		rec.Name = fmt.Sprintf("Employee %s", staffID)
	}
	if rec.Department == "" {
		rec.Department = "General"
	}
	if rec.Status == "" {
		rec.Status = "Active"
	}

	totalCriteria := 0
	for key, cat := range src.Categories {
		if cat.CriteriaCount <= 0 {
			continue
		}
		rec.TotalScore += cat.TotalScore
		totalCriteria += cat.CriteriaCount
		rec.Categories[key] = CategoryScore{
			Name:    cat.Name,
			Total:   cat.TotalScore,
			Count:   cat.CriteriaCount,
			Average: cat.Average,
		}
	}
	if totalCriteria > 0 {
		rec.AverageScore = rec.TotalScore / float64(totalCriteria)
	}
	rec.Grade = GradeFor(rec.AverageScore)
	return rec
}

// FromScores builds an aggregate directly from a live criteria score map
// (criterion id to score), as used when ranking entries are produced by the
// evaluation screen instead of ingested pre-aggregated sums.
func FromScores(staffID string, scores map[string]int) Record {
	rec := Record{
		StaffID:    staffID,
		Name:       fmt.Sprintf("Employee %s", staffID),
		Department: "General",
		Status:     "Active",
	}
	for _, score := range scores {
		rec.TotalScore += float64(score)
	}
	if len(scores) > 0 {
		rec.AverageScore = rec.TotalScore / float64(len(scores))
	}
	rec.Grade = GradeFor(rec.AverageScore)
	return rec
}

// GradeFor derives the letter grade from an overall average in [0,5].
// Boundary values take the higher grade.
func GradeFor(average float64) string {
	switch {
	case average >= gradeAPlusMin:
		return "A+"
	case average >= gradeAMin:
		return "A"
	case average >= gradeBMin:
		return "B"
	case average >= gradeCMin:
		return "C"
	default:
		return "D"
	}
}

// Rank sorts records by total score descending and assigns ranks 1..N by
// position, so ties take successive ranks with no gaps. The sort is stable:
// equal total scores keep their input order. The input slice is not mutated.
func Rank(records []Record) []Record {
	ranked := make([]Record, len(records))
	copy(ranked, records)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalScore > ranked[j].TotalScore
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// GradeCount is one row of the grade distribution.
type GradeCount struct {
	Grade string `json:"grade"`
	Count int    `json:"count"`
}

// Distribution counts records per distinct grade, sorted by grade label
// ascending.
func Distribution(records []Record) []GradeCount {
	counts := make(map[string]int)
	for _, r := range records {
		counts[r.Grade]++
	}
	grades := make([]string, 0, len(counts))
	for g := range counts {
		grades = append(grades, g)
	}
	sort.Strings(grades)
	out := make([]GradeCount, 0, len(grades))
	for _, g := range grades {
		out = append(out, GradeCount{Grade: g, Count: counts[g]})
	}
	return out
}

// Summary captures population-level statistics for the ranking view.
type Summary struct {
	TotalStaff  int     `json:"total_staff"`
	TeamAverage float64 `json:"team_average"`
	Best        *Record `json:"best,omitempty"`
	Lowest      *Record `json:"lowest,omitempty"`
}

// Summarize computes population statistics over an already ranked slice.
func Summarize(ranked []Record) Summary {
	s := Summary{TotalStaff: len(ranked)}
	if len(ranked) == 0 {
		return s
	}
	sum := 0.0
	for _, r := range ranked {
		sum += r.AverageScore
	}
	s.TeamAverage = sum / float64(len(ranked))
	best := ranked[0]
	lowest := ranked[len(ranked)-1]
	s.Best = &best
	s.Lowest = &lowest
	return s
}
