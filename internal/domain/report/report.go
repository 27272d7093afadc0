// Package report serializes already-computed evaluation and ranking state
// into delimited text documents. Quoting follows RFC 4180 so spreadsheet
// tools parse labels containing commas or quotes correctly.
package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/evalrank/evalrank/internal/domain/evaluation"
	"github.com/evalrank/evalrank/internal/domain/ranking"
)

const dateLayout = "2006-01-02"

// Evaluation renders the single-employee report: header block, one row per
// criterion, one row per category average, then the comment fields.
func Evaluation(snap evaluation.Snapshot, now time.Time) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	rows := [][]string{
		{"Performance Evaluation Report"},
		{"Employee", snap.StaffID},
		{"Name", snap.Name},
		{"Date", now.Format(dateLayout)},
		{"Overall Score", formatAverage(snap.Overall.Average)},
		{"Performance Level", snap.Overall.PerformanceLevel},
		{"Completion Rate", fmt.Sprintf("%.1f%%", snap.Overall.CompletionRate)},
		{""},
		{"Criteria", "Category", "Score"},
	}
	for _, c := range snap.Criteria {
		score := "Not Evaluated"
		if c.Score != nil {
			score = strconv.Itoa(*c.Score)
		}
		rows = append(rows, []string{c.Label, c.Category, score})
	}
	rows = append(rows, []string{""}, []string{"Category Averages"})
	for _, cat := range snap.Categories {
		rows = append(rows, []string{cat.Name, formatAverage(cat.Average)})
	}
	rows = append(rows,
		[]string{""},
		[]string{"Comments"},
		[]string{"Key Strengths", snap.Comments.Strengths},
		[]string{"Areas for Improvement", snap.Comments.Improvements},
		[]string{"Future Goals", snap.Comments.Goals},
	)

	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("write evaluation report: %w", err)
	}
	return buf.Bytes(), nil
}

// Ranking renders the multi-employee report. The tabular section covers the
// filtered records in filtered order; the grade distribution always covers
// the full population.
func Ranking(full, filtered []ranking.Record, sourceLabel string, now time.Time) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	rows := [][]string{
		{"Staff Ranking Report"},
		{"Generated", now.Format(dateLayout)},
		{"Data Source", sourceLabel},
		{"Total Staff", strconv.Itoa(len(full))},
		{""},
		{"Rank", "Staff ID", "Name", "Department", "Total Score", "Average", "Grade", "Status"},
	}
	for _, r := range filtered {
		rows = append(rows, []string{
			strconv.Itoa(r.Rank),
			r.StaffID,
			r.Name,
			r.Department,
			formatTotal(r.TotalScore),
			formatAverage(r.AverageScore),
			r.Grade,
			r.Status,
		})
	}
	rows = append(rows, []string{""}, []string{"Grade Distribution"})
	for _, gc := range ranking.Distribution(full) {
		rows = append(rows, []string{fmt.Sprintf("%s Grade", gc.Grade), strconv.Itoa(gc.Count)})
	}

	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("write ranking report: %w", err)
	}
	return buf.Bytes(), nil
}

// EvaluationFilename embeds the employee identity and the current date.
func EvaluationFilename(staffID string, now time.Time) string {
	return fmt.Sprintf("performance_evaluation_%s_%s.csv", staffID, now.Format(dateLayout))
}

// RankingFilename embeds the current date.
func RankingFilename(now time.Time) string {
	return fmt.Sprintf("staff_ranking_%s.csv", now.Format(dateLayout))
}

func formatAverage(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// formatTotal prints whole totals without a decimal part.
func formatTotal(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
