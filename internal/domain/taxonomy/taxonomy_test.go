package taxonomy_test

import (
	"testing"

	"github.com/evalrank/evalrank/internal/domain/taxonomy"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCatalog(t *testing.T) {
	Convey("Given the criteria catalog", t, func() {
		categories := taxonomy.Categories()

		Convey("Then it has six categories of five criteria each", func() {
			So(len(categories), ShouldEqual, 6)
			for _, cat := range categories {
				So(len(cat.Criteria), ShouldEqual, 5)
			}
			So(taxonomy.CriteriaCount(), ShouldEqual, 30)
		})

		Convey("And category keys are positional", func() {
			So(categories[0].Key, ShouldEqual, "category_0")
			So(categories[5].Key, ShouldEqual, "category_5")
		})

		Convey("And criterion ids number 1..30 across the catalog", func() {
			criteria := taxonomy.Criteria()
			So(len(criteria), ShouldEqual, 30)
			So(criteria[0].ID, ShouldEqual, "criterion_1")
			So(criteria[29].ID, ShouldEqual, "criterion_30")
		})

		Convey("And each criterion carries its category", func() {
			criteria := taxonomy.Criteria()
			So(criteria[0].CategoryKey, ShouldEqual, "category_0")
			So(criteria[0].CategoryName, ShouldEqual, "Work Ethic & Professional Attitude")
			So(criteria[29].CategoryKey, ShouldEqual, "category_5")
			So(criteria[29].CategoryName, ShouldEqual, "Teamwork & Collaboration")
		})
	})
}

func TestCategoryByKey(t *testing.T) {
	Convey("Given a known key", t, func() {
		cat, ok := taxonomy.CategoryByKey("category_2")
		So(ok, ShouldBeTrue)
		So(cat.Name, ShouldEqual, "Customer Service Quality")
	})

	Convey("Given an unknown key", t, func() {
		_, ok := taxonomy.CategoryByKey("category_99")
		So(ok, ShouldBeFalse)
	})
}
