package service_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	service "github.com/evalrank/evalrank/internal/app"
	"github.com/evalrank/evalrank/internal/domain/evaluation"
	"github.com/evalrank/evalrank/internal/domain/query"
	. "github.com/smartystreets/goconvey/convey"
)

func TestServiceIntegration_SaveAndRank(t *testing.T) {
	Convey("Given a started service on a fresh store", t, func() {
		storePath := filepath.Join(t.TempDir(), "evalrank.db")
		svc := service.New(
			service.WithStorePath(storePath),
			service.WithRefreshInterval(time.Hour),
		)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When an evaluation is completed and saved", func() {
			_, err := svc.StartSession(ctx, "EMP100", "Dana Cole", "Finance", "Active")
			So(err, ShouldBeNil)

			// Score every criterion so the sheet is complete.
			for i := 1; i <= 30; i++ {
				So(svc.SetScore(ctx, fmt.Sprintf("criterion_%d", i), 4), ShouldBeNil)
			}
			So(svc.SetComments(ctx, evaluation.Comments{
				Strengths:    "Consistent delivery",
				Improvements: "Broader cross-team visibility",
				Goals:        "Lead one initiative next cycle",
			}), ShouldBeNil)

			snap, err := svc.SessionSnapshot(ctx)
			So(err, ShouldBeNil)
			So(snap.Overall.CompletionRate, ShouldEqual, 100)
			So(snap.Overall.Average, ShouldEqual, 4)
			So(snap.Overall.PerformanceLevel, ShouldEqual, "Outstanding")

			So(svc.SaveSession(ctx), ShouldBeNil)

			Convey("Then the ranking switches to live data", func() {
				So(svc.SourceLabel(ctx), ShouldEqual, "Performance Evaluations")

				records, err := svc.Ranking(ctx, query.Criteria{})
				So(err, ShouldBeNil)
				So(len(records), ShouldEqual, 1)
				So(records[0].StaffID, ShouldEqual, "EMP100")
				So(records[0].Rank, ShouldEqual, 1)
				So(records[0].TotalScore, ShouldEqual, 120)
				So(records[0].Grade, ShouldEqual, "A")
			})

			Convey("And a second service on the same store sees the row", func() {
				other := service.New(
					service.WithStorePath(storePath),
					service.WithRefreshInterval(time.Hour),
				)
				So(other.Start(ctx), ShouldBeNil)
				defer other.Stop()

				record, err := other.RankOf(ctx, "EMP100")
				So(err, ShouldBeNil)
				So(record.Name, ShouldEqual, "Dana Cole")
				So(record.Department, ShouldEqual, "Finance")
			})

			Convey("And restarting the session seeds identity and comments", func() {
				snap, err := svc.StartSession(ctx, "EMP100", "", "", "")
				So(err, ShouldBeNil)
				So(snap.Name, ShouldEqual, "Dana Cole")
				So(snap.Department, ShouldEqual, "Finance")
				So(snap.Comments.Strengths, ShouldEqual, "Consistent delivery")

				Convey("But prior scores are not carried over", func() {
					So(snap.Overall.CriteriaCount, ShouldEqual, 0)
				})
			})
		})

		Convey("When several evaluations with distinct totals are saved", func() {
			totals := map[string]int{"EMP201": 5, "EMP202": 3, "EMP203": 4}
			for staffID, score := range totals {
				_, err := svc.StartSession(ctx, staffID, "", "", "")
				So(err, ShouldBeNil)
				for i := 1; i <= 30; i++ {
					So(svc.SetScore(ctx, fmt.Sprintf("criterion_%d", i), score), ShouldBeNil)
				}
				So(svc.SaveSession(ctx), ShouldBeNil)
			}

			Convey("Then ranks order by total score descending", func() {
				records, err := svc.Ranking(ctx, query.Criteria{})
				So(err, ShouldBeNil)
				So(len(records), ShouldEqual, 3)
				So(records[0].StaffID, ShouldEqual, "EMP201")
				So(records[1].StaffID, ShouldEqual, "EMP203")
				So(records[2].StaffID, ShouldEqual, "EMP202")
				So(records[0].Rank, ShouldEqual, 1)
				So(records[1].Rank, ShouldEqual, 2)
				So(records[2].Rank, ShouldEqual, 3)
			})

			Convey("And equal totals keep their input order with contiguous ranks", func() {
				_, err := svc.StartSession(ctx, "EMP204", "", "", "")
				So(err, ShouldBeNil)
				for i := 1; i <= 30; i++ {
					So(svc.SetScore(ctx, fmt.Sprintf("criterion_%d", i), 4), ShouldBeNil)
				}
				So(svc.SaveSession(ctx), ShouldBeNil)

				records, rErr := svc.Ranking(ctx, query.Criteria{})
				So(rErr, ShouldBeNil)
				So(len(records), ShouldEqual, 4)
				// EMP203 and EMP204 both total 120; earlier staff id first.
				So(records[1].StaffID, ShouldEqual, "EMP203")
				So(records[2].StaffID, ShouldEqual, "EMP204")
				So(records[1].Rank, ShouldEqual, 2)
				So(records[2].Rank, ShouldEqual, 3)
				So(records[3].Rank, ShouldEqual, 4)
			})
		})
	})
}

func TestServiceIntegration_ConcurrentMutations(t *testing.T) {
	Convey("Given a started service with an active session", t, func() {
		svc := service.New(
			service.WithStorePath(filepath.Join(t.TempDir(), "evalrank.db")),
			service.WithRefreshInterval(time.Hour),
		)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		_, err := svc.StartSession(ctx, "EMP300", "", "", "")
		So(err, ShouldBeNil)

		Convey("When many goroutines score concurrently", func() {
			done := make(chan error, 30)
			for i := 1; i <= 30; i++ {
				go func(n int) {
					done <- svc.SetScore(ctx, fmt.Sprintf("criterion_%d", n), 1+n%5)
				}(i)
			}
			for i := 0; i < 30; i++ {
				So(<-done, ShouldBeNil)
			}

			Convey("Then every score landed exactly once", func() {
				snap, err := svc.SessionSnapshot(ctx)
				So(err, ShouldBeNil)
				So(snap.Overall.CriteriaCount, ShouldEqual, 30)
				So(snap.Overall.CompletionRate, ShouldEqual, 100)
			})
		})
	})
}
