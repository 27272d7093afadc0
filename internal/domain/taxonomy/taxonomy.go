// Package taxonomy holds the fixed evaluation criteria catalog: ordered
// categories, each with an ordered list of criterion labels. Criterion and
// category identifiers are positional and stable across sessions, so
// aggregates persisted by one session remain addressable by another.
package taxonomy

import "fmt"

// Category is a named grouping of criteria.
type Category struct {
	Key      string
	Name     string
	Criteria []string
}

// Criterion describes one scored unit of evaluation.
type Criterion struct {
	ID           string
	Label        string
	CategoryKey  string
	CategoryName string
}

// categories is the catalog in display order. Category keys are
// category_{index}; criterion IDs are criterion_{n} numbered 1..N across
// the whole catalog in order.
var categories = []Category{
	{
		Name: "Work Ethic & Professional Attitude",
		Criteria: []string{
			"Punctuality and attendance consistency",
			"Professional appearance and conduct",
			"Reliability and dependability",
			"Initiative and self-motivation",
			"Work quality and attention to detail",
		},
	},
	{
		Name: "Product & System Knowledge",
		Criteria: []string{
			"Understanding of company products/services",
			"Knowledge of internal systems and processes",
			"Technical proficiency in role requirements",
			"Ability to learn and adapt to changes",
			"Compliance with policies and procedures",
		},
	},
	{
		Name: "Customer Service Quality",
		Criteria: []string{
			"Responsiveness to customer needs",
			"Problem-solving for customer issues",
			"Professional communication with clients",
			"Follow-up and customer satisfaction",
			"Handling difficult situations professionally",
		},
	},
	{
		Name: "Communication Skills",
		Criteria: []string{
			"Verbal communication effectiveness",
			"Written communication clarity",
			"Active listening skills",
			"Presentation abilities",
			"Cross-departmental communication",
		},
	},
	{
		Name: "Problem Solving & Decision Making",
		Criteria: []string{
			"Analytical thinking and reasoning",
			"Creative solution development",
			"Decision-making under pressure",
			"Risk assessment and management",
			"Continuous improvement mindset",
		},
	},
	{
		Name: "Teamwork & Collaboration",
		Criteria: []string{
			"Cooperation with team members",
			"Supporting colleagues when needed",
			"Sharing knowledge and expertise",
			"Conflict resolution skills",
			"Contributing to team objectives",
		},
	},
}

func init() { //nolint:gochecknoinits // derives stable keys from the ordered catalog
	for i := range categories {
		categories[i].Key = fmt.Sprintf("category_%d", i)
	}
}

// Categories returns the catalog in display order. The returned slice is
// shared; callers must not mutate it.
func Categories() []Category {
	return categories
}

// Criteria returns every criterion in catalog order with its assigned ID.
func Criteria() []Criterion {
	out := make([]Criterion, 0, CriteriaCount())
	n := 1
	for _, cat := range categories {
		for _, label := range cat.Criteria {
			out = append(out, Criterion{
				ID:           fmt.Sprintf("criterion_%d", n),
				Label:        label,
				CategoryKey:  cat.Key,
				CategoryName: cat.Name,
			})
			n++
		}
	}
	return out
}

// CriteriaCount returns the total number of criteria across all categories.
func CriteriaCount() int {
	total := 0
	for _, cat := range categories {
		total += len(cat.Criteria)
	}
	return total
}

// CategoryByKey looks up a category by its stable key.
func CategoryByKey(key string) (Category, bool) {
	for _, cat := range categories {
		if cat.Key == key {
			return cat, true
		}
	}
	return Category{}, false
}
