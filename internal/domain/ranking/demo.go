package ranking

import (
	"github.com/evalrank/evalrank/internal/domain/taxonomy"
)

const demoCriteriaPerCategory = 5

// demoStaff holds placeholder totals per taxonomy category, in catalog order.
type demoStaff struct {
	staffID    string
	name       string
	department string
	status     string
	totals     []float64
}

// demoDataset is the placeholder population served when the snapshot store
// is empty or unreadable.
var demoDataset = []demoStaff{
	{"EMP001", "John Smith", "Engineering", "Active", []float64{18, 16, 14, 17, 15, 19}},
	{"EMP002", "Sarah Johnson", "Sales", "Active", []float64{22, 20, 23, 21, 19, 20}},
	{"EMP003", "Michael Chen", "Marketing", "Review", []float64{20, 18, 21, 22, 19, 21}},
	{"EMP004", "Emily Davis", "Human Resources", "Active", []float64{24, 23, 22, 25, 23, 24}},
	{"EMP005", "David Wilson", "Finance", "Active", []float64{17, 19, 16, 15, 18, 17}},
	{"EMP006", "Lisa Anderson", "Engineering", "Active", []float64{21, 22, 20, 19, 23, 21}},
	{"EMP007", "Robert Brown", "Operations", "Review", []float64{13, 12, 14, 11, 13, 15}},
	{"EMP008", "Jennifer Lee", "Customer Support", "Active", []float64{23, 21, 24, 22, 20, 23}},
}

// DemoSource returns the placeholder dataset in the snapshot-store payload
// shape, keyed by staff id. Every call returns fresh values.
func DemoSource() map[string]SourceRecord {
	cats := taxonomy.Categories()
	out := make(map[string]SourceRecord, len(demoDataset))
	for _, d := range demoDataset {
		categories := make(map[string]CategorySource, len(cats))
		for i, cat := range cats {
			total := d.totals[i]
			categories[cat.Key] = CategorySource{
				Name:          cat.Name,
				TotalScore:    total,
				CriteriaCount: demoCriteriaPerCategory,
				Average:       total / demoCriteriaPerCategory,
			}
		}
		out[d.staffID] = SourceRecord{
			Name:       d.name,
			Department: d.department,
			Status:     d.status,
			Categories: categories,
		}
	}
	return out
}

// DemoStaffIDs returns the placeholder staff ids in dataset order.
func DemoStaffIDs() []string {
	ids := make([]string, len(demoDataset))
	for i, d := range demoDataset {
		ids[i] = d.staffID
	}
	return ids
}
