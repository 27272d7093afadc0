package repository_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/evalrank/evalrank/internal/adapters/repository"
	"github.com/evalrank/evalrank/internal/domain/ranking"
	. "github.com/smartystreets/goconvey/convey"
)

func newTestStore(t *testing.T) (*repository.SQLiteStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "evalrank.db")
	store, err := repository.NewSQLiteStore(context.Background(), path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store, path
}

func sampleRecord() ranking.SourceRecord {
	return ranking.SourceRecord{
		Name:       "Dana Cole",
		Department: "Finance",
		Status:     "Active",
		Categories: map[string]ranking.CategorySource{
			"category_0": {Name: "Work Quality", TotalScore: 18, CriteriaCount: 5, Average: 3.6},
		},
		Comments: &ranking.SourceComments{Strengths: "Thorough"},
	}
}

func TestSQLiteStore_SaveLoad(t *testing.T) {
	Convey("Given a fresh store", t, func() {
		store, _ := newTestStore(t)
		ctx := context.Background()

		Convey("Then loading returns no records", func() {
			records, err := store.Load(ctx)
			So(err, ShouldBeNil)
			So(records, ShouldBeEmpty)
		})

		Convey("When saving an aggregate", func() {
			So(store.Save(ctx, "EMP100", sampleRecord()), ShouldBeNil)

			Convey("Then it loads back intact", func() {
				records, err := store.Load(ctx)
				So(err, ShouldBeNil)
				So(len(records), ShouldEqual, 1)
				rec := records["EMP100"]
				So(rec.Name, ShouldEqual, "Dana Cole")
				So(rec.Categories["category_0"].TotalScore, ShouldEqual, 18)
				So(rec.Comments, ShouldNotBeNil)
				So(rec.Comments.Strengths, ShouldEqual, "Thorough")
			})

			Convey("And saving again overwrites the row", func() {
				updated := sampleRecord()
				updated.Department = "Operations"
				So(store.Save(ctx, "EMP100", updated), ShouldBeNil)

				records, err := store.Load(ctx)
				So(err, ShouldBeNil)
				So(len(records), ShouldEqual, 1)
				So(records["EMP100"].Department, ShouldEqual, "Operations")
			})
		})
	})
}

func TestSQLiteStore_Revision(t *testing.T) {
	Convey("Given a fresh store", t, func() {
		store, _ := newTestStore(t)
		ctx := context.Background()

		Convey("Then the revision starts at zero", func() {
			rev, err := store.Revision(ctx)
			So(err, ShouldBeNil)
			So(rev, ShouldEqual, 0)
		})

		Convey("When saving", func() {
			So(store.Save(ctx, "EMP100", sampleRecord()), ShouldBeNil)
			first, err := store.Revision(ctx)
			So(err, ShouldBeNil)
			So(first, ShouldBeGreaterThan, 0)

			Convey("Then a later save advances the revision", func() {
				time.Sleep(time.Millisecond)
				So(store.Save(ctx, "EMP101", sampleRecord()), ShouldBeNil)
				second, err := store.Revision(ctx)
				So(err, ShouldBeNil)
				So(second, ShouldBeGreaterThan, first)
			})
		})
	})
}

func TestSQLiteStore_MalformedPayload(t *testing.T) {
	Convey("Given a store containing a corrupted payload", t, func() {
		store, path := newTestStore(t)
		ctx := context.Background()
		So(store.Save(ctx, "EMP100", sampleRecord()), ShouldBeNil)

		db, err := sql.Open("sqlite", "file:"+path)
		So(err, ShouldBeNil)
		defer db.Close()
		_, err = db.ExecContext(ctx, `
			INSERT INTO evaluations (staff_id, payload, updated_at) VALUES (?, ?, ?)`,
			"EMP666", `{"categories": "not an object"}`, time.Now().UnixNano())
		So(err, ShouldBeNil)

		Convey("When loading", func() {
			_, err := store.Load(ctx)

			Convey("Then the whole load is rejected as malformed", func() {
				So(err, ShouldWrap, repository.ErrMalformedSource)
			})
		})
	})

	Convey("Given a payload that is not JSON at all", t, func() {
		store, path := newTestStore(t)
		ctx := context.Background()

		db, err := sql.Open("sqlite", "file:"+path)
		So(err, ShouldBeNil)
		defer db.Close()
		_, err = db.ExecContext(ctx, `
			INSERT INTO evaluations (staff_id, payload, updated_at) VALUES (?, ?, ?)`,
			"EMP667", `not json`, time.Now().UnixNano())
		So(err, ShouldBeNil)

		_, loadErr := store.Load(ctx)
		So(loadErr, ShouldWrap, repository.ErrMalformedSource)
	})
}

func TestSQLiteStore_Close(t *testing.T) {
	Convey("Given an open store", t, func() {
		store, _ := newTestStore(t)
		ctx := context.Background()

		Convey("When closed", func() {
			So(store.Close(), ShouldBeNil)

			Convey("Then operations report the closed state", func() {
				_, err := store.Load(ctx)
				So(err, ShouldWrap, repository.ErrStoreClosed)
				So(store.Save(ctx, "EMP100", sampleRecord()), ShouldWrap, repository.ErrStoreClosed)
				_, err = store.Revision(ctx)
				So(err, ShouldWrap, repository.ErrStoreClosed)
			})

			Convey("And closing twice is a no-op", func() {
				So(store.Close(), ShouldBeNil)
			})
		})
	})
}
