// Package query applies display filters over ranked records. Filtering
// narrows the view only: rank numbers always reflect the full population.
package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/evalrank/evalrank/internal/domain/ranking"
)

// Criteria is an immutable filter snapshot. Zero values mean "no filter".
type Criteria struct {
	// Department matches the record department exactly (case-sensitive).
	Department string
	// Grade matches the record grade exactly.
	Grade string
	// Search is a case-insensitive substring matched against
	// "{staff id} {name}".
	Search string
	// TopPerformersOnly restricts to grades A+ and A.
	TopPerformersOnly bool
}

// Matches reports whether one record satisfies every set predicate.
func (c Criteria) Matches(r ranking.Record) bool {
	if c.Department != "" && r.Department != c.Department {
		return false
	}
	if c.Grade != "" && r.Grade != c.Grade {
		return false
	}
	if c.Search != "" {
		haystack := strings.ToLower(fmt.Sprintf("%s %s", r.StaffID, r.Name))
		if !strings.Contains(haystack, strings.ToLower(c.Search)) {
			return false
		}
	}
	if c.TopPerformersOnly && r.Grade != "A+" && r.Grade != "A" {
		return false
	}
	return true
}

// Apply returns the subset of records matching all predicates, preserving
// order and rank numbers. The input is never mutated.
func Apply(records []ranking.Record, c Criteria) []ranking.Record {
	out := make([]ranking.Record, 0, len(records))
	for _, r := range records {
		if c.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

// Departments returns the distinct department labels present across records,
// sorted ascending, for populating filter controls.
func Departments(records []ranking.Record) []string {
	seen := make(map[string]struct{})
	for _, r := range records {
		seen[r.Department] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for d := range seen {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}
