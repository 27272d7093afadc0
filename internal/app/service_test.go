package service_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	service "github.com/evalrank/evalrank/internal/app"
	"github.com/evalrank/evalrank/internal/domain/query"
	"github.com/evalrank/evalrank/internal/domain/ranking"
	"github.com/evalrank/evalrank/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

// newTestService returns a started service backed by a store file in a
// temporary directory.
func newTestService(t *testing.T, opts ...service.Option) *service.Service {
	t.Helper()
	base := []service.Option{
		service.WithStorePath(filepath.Join(t.TempDir(), "evalrank.db")),
		service.WithRefreshInterval(time.Hour),
	}
	svc := service.New(append(base, opts...)...)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := svc.Start(ctx); err != nil {
		t.Fatalf("start service: %v", err)
	}
	t.Cleanup(svc.Stop)
	return svc
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should be created successfully", func() {
			So(svc, ShouldNotBeNil)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithQueueSize(2048),
			service.WithRefreshInterval(time.Minute),
			service.WithDemoFallback(false),
		)

		Convey("Then it should be created successfully", func() {
			So(svc, ShouldNotBeNil)
		})
	})
}

func TestService_StartStop(t *testing.T) {
	Convey("Given a started service on an empty store", t, func() {
		svc := newTestService(t)
		ctx := context.Background()

		Convey("Then it should serve the demo template", func() {
			So(svc.SourceLabel(ctx), ShouldEqual, "Demo Data (Template)")

			records, err := svc.Ranking(ctx, query.Criteria{})
			So(err, ShouldBeNil)
			So(len(records), ShouldEqual, 8)
			So(records[0].Rank, ShouldEqual, 1)
			So(records[0].StaffID, ShouldEqual, "EMP004")
		})

		Convey("And stats should report the started state", func() {
			stats := svc.GetStats()
			So(stats["started"], ShouldBeTrue)
			So(stats["total_staff"], ShouldEqual, 8)
			So(stats["demo_data"], ShouldBeTrue)
		})
	})

	Convey("Given an unstarted service", t, func() {
		svc := service.New()

		Convey("Then mutations should be rejected", func() {
			err := svc.Refresh(context.Background(), true)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestService_Sessions(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := newTestService(t)
		ctx := context.Background()

		Convey("When no session is active", func() {
			_, err := svc.SessionSnapshot(ctx)

			Convey("Then snapshot should fail with ErrNoSession", func() {
				So(err, ShouldWrap, service.ErrNoSession)
			})
		})

		Convey("When starting a session with explicit identity", func() {
			snap, err := svc.StartSession(ctx, "EMP100", "Dana Cole", "Finance", "Active")
			So(err, ShouldBeNil)

			Convey("Then the snapshot carries the identity", func() {
				So(snap.StaffID, ShouldEqual, "EMP100")
				So(snap.Name, ShouldEqual, "Dana Cole")
				So(snap.Department, ShouldEqual, "Finance")
				So(len(snap.Criteria), ShouldEqual, 30)
			})

			Convey("And scoring a criterion updates the overall state", func() {
				So(svc.SetScore(ctx, "criterion_1", 5), ShouldBeNil)
				So(svc.SetScore(ctx, "criterion_2", 4), ShouldBeNil)

				snap, err := svc.SessionSnapshot(ctx)
				So(err, ShouldBeNil)
				So(snap.Overall.TotalScore, ShouldEqual, 9)
				So(snap.Overall.CriteriaCount, ShouldEqual, 2)
			})

			Convey("And an out-of-range score is rejected", func() {
				err := svc.SetScore(ctx, "criterion_1", 6)
				So(err, ShouldNotBeNil)

				snap, snapErr := svc.SessionSnapshot(ctx)
				So(snapErr, ShouldBeNil)
				So(snap.Overall.CriteriaCount, ShouldEqual, 0)
			})

			Convey("And resetting clears scores", func() {
				So(svc.SetScore(ctx, "criterion_1", 3), ShouldBeNil)
				So(svc.ResetScores(ctx), ShouldBeNil)

				snap, err := svc.SessionSnapshot(ctx)
				So(err, ShouldBeNil)
				So(snap.Overall.CriteriaCount, ShouldEqual, 0)
			})
		})

		Convey("When starting a session without identity fields", func() {
			snap, err := svc.StartSession(ctx, "EMP200", "", "", "")
			So(err, ShouldBeNil)

			Convey("Then defaults apply", func() {
				So(snap.Name, ShouldEqual, "Employee EMP200")
				So(snap.Department, ShouldEqual, "General")
				So(snap.Status, ShouldEqual, "Active")
			})
		})
	})
}

func TestService_RankingReads(t *testing.T) {
	Convey("Given a started service with demo data", t, func() {
		svc := newTestService(t)
		ctx := context.Background()

		Convey("When filtering by department", func() {
			records, err := svc.Ranking(ctx, query.Criteria{Department: "Engineering"})
			So(err, ShouldBeNil)

			Convey("Then only that department remains with ranks intact", func() {
				So(len(records), ShouldBeGreaterThan, 0)
				for _, r := range records {
					So(r.Department, ShouldEqual, "Engineering")
				}
			})
		})

		Convey("When asking for a known staff id", func() {
			record, err := svc.RankOf(ctx, "EMP004")
			So(err, ShouldBeNil)
			So(record.Rank, ShouldEqual, 1)
			So(record.Grade, ShouldEqual, "A+")
		})

		Convey("When asking for an unknown staff id", func() {
			_, err := svc.RankOf(ctx, "EMP999")
			So(err, ShouldWrap, service.ErrNotFound)
		})

		Convey("When listing departments", func() {
			departments := svc.Departments(ctx)
			So(departments, ShouldContain, "Engineering")
			So(departments, ShouldContain, "Sales")
		})

		Convey("When summarizing", func() {
			summary := svc.Summary(ctx)
			So(summary.TotalStaff, ShouldEqual, 8)
			So(summary.Best, ShouldNotBeNil)
			So(summary.Best.StaffID, ShouldEqual, "EMP004")
		})
	})
}

func TestService_Exports(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := newTestService(t)
		ctx := context.Background()

		Convey("When exporting the ranking", func() {
			filename, data, err := svc.ExportRanking(ctx, query.Criteria{})

			Convey("Then a CSV document is produced", func() {
				So(err, ShouldBeNil)
				So(filename, ShouldStartWith, "staff_ranking_")
				So(string(data), ShouldContainSubstring, "Staff Ranking Report")
				So(string(data), ShouldContainSubstring, "EMP003")
			})
		})

		Convey("When exporting an evaluation without a session", func() {
			_, _, err := svc.ExportEvaluation(ctx)
			So(err, ShouldWrap, service.ErrNoSession)
		})

		Convey("When exporting an evaluation with a session", func() {
			_, err := svc.StartSession(ctx, "EMP100", "Dana Cole", "Finance", "Active")
			So(err, ShouldBeNil)
			So(svc.SetScore(ctx, "criterion_1", 4), ShouldBeNil)

			filename, data, err := svc.ExportEvaluation(ctx)
			So(err, ShouldBeNil)
			So(filename, ShouldStartWith, "performance_evaluation_EMP100_")
			So(string(data), ShouldContainSubstring, "Performance Evaluation Report")
		})
	})
}

func TestService_Refresh(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := newTestService(t)
		ctx := context.Background()

		Convey("When forcing a refresh with no stored rows", func() {
			err := svc.Refresh(ctx, true)

			Convey("Then the demo template stays active", func() {
				So(err, ShouldBeNil)
				So(svc.SourceLabel(ctx), ShouldEqual, "Demo Data (Template)")
			})
		})
	})

	Convey("Given a service with demo fallback disabled", t, func() {
		svc := newTestService(t, service.WithDemoFallback(false))
		ctx := context.Background()

		Convey("Then an empty store yields an empty live ranking", func() {
			records, err := svc.Ranking(ctx, query.Criteria{})
			So(err, ShouldBeNil)
			So(len(records), ShouldEqual, 0)
			So(svc.SourceLabel(ctx), ShouldEqual, "Performance Evaluations")
		})
	})
}

func TestService_DemoDatasetShape(t *testing.T) {
	Convey("Given the bundled demo dataset", t, func() {
		source := ranking.DemoSource()

		Convey("Then it covers eight employees", func() {
			So(len(source), ShouldEqual, 8)
			So(len(ranking.DemoStaffIDs()), ShouldEqual, 8)
		})
	})
}
