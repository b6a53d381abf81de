package model_test

import (
	"testing"

	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/category"
	model "github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestProfileScores(t *testing.T) {
	convey.Convey("Given a profile with flat rating columns", t, func() {
		p := model.Profile{ID: "p1", Name: "alice", Cryptography: 9, Coding: 4, Community: 2}

		convey.Convey("When reading it as a score map", func() {
			m := p.Scores()

			convey.Convey("Then every category is present in canonical order", func() {
				convey.So(m, convey.ShouldHaveLength, len(category.All()))
				convey.So(m.Values(), convey.ShouldResemble, []float64{9, 0, 0, 4, 0, 2})
			})
		})

		convey.Convey("When overwriting it from a partial map", func() {
			p.SetScores(category.ScoreMap{category.Writing: 7})

			convey.Convey("Then missing categories are reset to zero", func() {
				convey.So(p.Cryptography, convey.ShouldEqual, 0)
				convey.So(p.Writing, convey.ShouldEqual, 7)
				convey.So(p.Scores().Values(), convey.ShouldResemble, []float64{0, 0, 0, 0, 7, 0})
			})
		})
	})
}
