package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test-namespace"),
				WithSubsystem("test-subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})

			Convey("And its metrics should land on the custom registry", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestRecordHelpers(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording domain events", func() {
			RecordScore()
			RecordInvalidScore()
			RecordEvaluationReset()
			RecordEvaluationSave()
			RecordReload()
			RecordReloadFailure()
			RecordReloadDuration(12.5)
			UpdateStaffTracked(8)
			UpdateLastReload(1700000000)
			UpdateDemoFallback(true)
			UpdateDemoFallback(false)
			RecordExport("ranking")
			RecordExportError("evaluation")
			RecordHTTPRequest("ranking", "GET", "200")
			RecordHTTPRequestDuration("ranking", "GET", "200", 3.2)
			UpdateQueueDepth(1)
			RecordQueueRejection()

			Convey("Then the registry should gather without error", func() {
				families, err := GetRegistry().Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})
	})
}
