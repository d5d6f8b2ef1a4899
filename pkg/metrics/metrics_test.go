package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When creating a manager with custom options", func() {
			m := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then metrics use the custom namespace", func() {
				So(m, ShouldNotBeNil)
				m.RecordScore(12)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				found := false
				for _, f := range families {
					if f.GetName() == "test_unit_score_calculations_total" {
						found = true
					}
				}
				So(found, ShouldBeTrue)
			})
		})
	})
}

func TestManagerRecording(t *testing.T) {
	Convey("Given a manager on its own registry", t, func() {
		m := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))

		Convey("When recording detections and errors", func() {
			m.RecordDetect("SCENE_MODEL", 0.02, 4)
			m.RecordDetect("SCENE_MODEL", 0.03, 2)
			m.RecordDecodeError("CARD_MODEL")
			m.RecordModelUnavailable("TEMPLE_MODEL")
			m.UpdatePoolOutstanding(3)
			m.RecordRegions("card", 5)

			Convey("Then the counters reflect the calls", func() {
				So(testutil.ToFloat64(m.detectionsEmitted.WithLabelValues("SCENE_MODEL")), ShouldEqual, 6)
				So(testutil.ToFloat64(m.decodeErrors.WithLabelValues("CARD_MODEL")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.detectUnavailable.WithLabelValues("TEMPLE_MODEL")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.poolOutstanding), ShouldEqual, 3)
				So(testutil.ToFloat64(m.regionsExtracted.WithLabelValues("card")), ShouldEqual, 5)
			})
		})
	})
}

func TestHandler(t *testing.T) {
	Default().RecordScore(7)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "faraway_scorer_score_calculations_total") {
		t.Error("metrics output missing score counter")
	}
}
