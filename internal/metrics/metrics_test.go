// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func readTextfile(t *testing.T, m *Manager) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gradebook.prom")
	if err := m.WriteFile(path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading textfile: %v", err)
	}
	return string(data)
}

func TestManager(t *testing.T) {
	Convey("Given a metrics manager with a fixed clock", t, func() {
		m := NewManager()
		m.now = func() float64 { return 1234 }

		Convey("When a ranking run is recorded", func() {
			m.RecordIngest("24-25.csv", 3, 1, 0, 0)
			m.RecordRanking(2, 1)
			m.RecordRun("rank", 1500*time.Millisecond, nil)
			out := readTextfile(t, m)

			Convey("Then the textfile holds every gauge", func() {
				So(out, ShouldContainSubstring, `gradebook_students_ranked{category="Complete"} 2`)
				So(out, ShouldContainSubstring, `gradebook_students_ranked{category="Transfer"} 1`)
				So(out, ShouldContainSubstring, `gradebook_ingest_rows{outcome="accepted",source="24-25.csv"} 3`)
				So(out, ShouldContainSubstring, `gradebook_ingest_rows{outcome="skipped",source="24-25.csv"} 1`)
				So(out, ShouldContainSubstring, `gradebook_run_duration_seconds{command="rank"} 1.5`)
				So(out, ShouldContainSubstring, `gradebook_run_success{command="rank"} 1`)
				So(out, ShouldContainSubstring, `gradebook_last_run_timestamp_seconds{command="rank"} 1234`)
			})
		})

		Convey("When a failed comparison is recorded", func() {
			m.RecordMismatches("value", 4)
			m.RecordRun("compare", time.Second, errors.New("mismatch"))
			out := readTextfile(t, m)

			Convey("Then the run is marked unsuccessful", func() {
				So(out, ShouldContainSubstring, `gradebook_compare_mismatches{kind="value"} 4`)
				So(out, ShouldContainSubstring, `gradebook_run_success{command="compare"} 0`)
			})
		})

		Convey("When a filter run is recorded", func() {
			m.RecordMatchRate(97.5)
			out := readTextfile(t, m)

			Convey("Then the match rate is written", func() {
				So(out, ShouldContainSubstring, "gradebook_filter_match_rate_percent 97.5")
			})
		})

		Convey("When no path is configured", func() {
			err := m.WriteFile("")

			Convey("Then WriteFile refuses", func() {
				So(errors.Is(err, ErrNoFile), ShouldBeTrue)
			})
		})
	})
}

func TestManagerOptions(t *testing.T) {
	Convey("Given custom options", t, func() {
		labels := map[string]string{"cohort": "2023"}
		m := NewManager(WithNamespace("grades"), WithConstLabels(labels))
		labels["cohort"] = "changed"

		Convey("When a run is recorded", func() {
			m.RecordRun("export", 0, nil)
			out := readTextfile(t, m)

			Convey("Then names and labels follow the options", func() {
				So(out, ShouldContainSubstring, `grades_run_success{cohort="2023",command="export"} 1`)
			})
		})

		Convey("When empty or nil options are given", func() {
			d := NewManager(WithNamespace(""), WithConstLabels(nil))

			Convey("Then defaults are kept", func() {
				So(d.namespace, ShouldEqual, "gradebook")
				So(d.constLabels, ShouldBeEmpty)
				So(d.now, ShouldNotBeNil)
			})
		})
	})
}
