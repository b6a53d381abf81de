package gaps_test

import (
	"testing"

	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/category"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/gaps"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCompute(t *testing.T) {
	Convey("Given a single coding requirement", t, func() {
		reqs := []gaps.Requirement{{ID: "r1", Benchmark: "Satoshi", Metric: category.Coding, Target: 8, Detail: "ship it"}}

		Convey("When the user is below the target", func() {
			out := gaps.Compute(category.ScoreMap{category.Coding: 5}, reqs)

			Convey("Then one gap with the delta is returned", func() {
				So(out, ShouldResemble, []gaps.Item{{
					ID: "r1", Metric: category.Coding, UserHas: 5, NeededToReach: 8, Delta: 3, Detail: "ship it",
				}})
			})
		})

		Convey("When the user meets the target exactly", func() {
			out := gaps.Compute(category.ScoreMap{category.Coding: 8}, reqs)

			Convey("Then no gap is returned", func() {
				So(out, ShouldBeEmpty)
				So(out, ShouldNotBeNil)
			})
		})

		Convey("When the user has not rated the metric", func() {
			out := gaps.Compute(category.ScoreMap{}, reqs)

			Convey("Then the rating defaults to zero", func() {
				So(len(out), ShouldEqual, 1)
				So(out[0].UserHas, ShouldEqual, 0)
				So(out[0].Delta, ShouldEqual, 8)
			})
		})
	})

	Convey("Given several requirements", t, func() {
		ev := "commit history"
		reqs := []gaps.Requirement{
			{ID: "b", Metric: category.Writing, Target: 6},
			{ID: "a", Metric: category.Cryptography, Target: 6},
			{ID: "c", Metric: category.Coding, Target: 9, Evidence: &ev},
			{ID: "d", Metric: "vision", Target: 10},
			{ID: "e", Metric: category.Economics, Target: 1},
		}
		user := category.ScoreMap{category.Economics: 4}

		out := gaps.Compute(user, reqs)

		Convey("Then unknown metrics and met targets are dropped", func() {
			So(len(out), ShouldEqual, 3)
		})

		Convey("And the list is sorted by delta with deterministic ties", func() {
			So(out[0].ID, ShouldEqual, "c")
			So(*out[0].Evidence, ShouldEqual, "commit history")
			So(out[1].ID, ShouldEqual, "a")
			So(out[2].ID, ShouldEqual, "b")
			So(gaps.TotalDelta(out), ShouldEqual, 21)
		})
	})

	Convey("Given no requirements", t, func() {
		So(gaps.Compute(category.ScoreMap{category.Coding: 1}, nil), ShouldBeEmpty)
	})
}

func TestForBenchmark(t *testing.T) {
	Convey("Given rows for two benchmarks", t, func() {
		reqs := []gaps.Requirement{{ID: "1", Benchmark: "Satoshi"}, {ID: "2", Benchmark: "Hal Finney"}}
		So(gaps.ForBenchmark(reqs, "Hal Finney"), ShouldResemble, []gaps.Requirement{{ID: "2", Benchmark: "Hal Finney"}})
		So(gaps.ForBenchmark(reqs, "Nobody"), ShouldBeEmpty)
	})
}
