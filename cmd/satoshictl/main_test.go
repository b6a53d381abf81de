package main

import (
	"bytes"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/category"
	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/share"
)

func execute(args ...string) (string, error) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRatings(t *testing.T) {
	Convey("Given rating arguments", t, func() {
		var rf ratingFlags

		Convey("Pairs are parsed and validated", func() {
			m, err := rf.ratings([]string{"coding=9.5", "writing=4"})
			So(err, ShouldBeNil)
			So(m, ShouldResemble, category.ScoreMap{category.Coding: 9.5, category.Writing: 4})

			_, err = rf.ratings([]string{"coding"})
			So(err, ShouldNotBeNil)
			_, err = rf.ratings([]string{"charisma=3"})
			So(err, ShouldNotBeNil)
			_, err = rf.ratings([]string{"coding=11"})
			So(err, ShouldNotBeNil)
		})

		Convey("A code seeds the map and pairs override it", func() {
			rf.code = share.EncodeScores(category.ScoreMap{category.Economics: 6, category.Coding: 2})
			m, err := rf.ratings([]string{"coding=7"})
			So(err, ShouldBeNil)
			So(m, ShouldResemble, category.ScoreMap{category.Economics: 6, category.Coding: 7})
		})

		Convey("A share URL works as a code", func() {
			rf.code = share.BuildScoreURL("https://satoshi.test/share", category.ScoreMap{category.Community: 5})
			m, err := rf.ratings(nil)
			So(err, ShouldBeNil)
			So(m, ShouldResemble, category.ScoreMap{category.Community: 5})
		})

		Convey("A padded standard base64 code is read as a code, not a URL", func() {
			rf.code = base64.StdEncoding.EncodeToString([]byte(`{"coding":5.5}`))
			So(rf.code, ShouldEndWith, "=")
			m, err := rf.ratings(nil)
			So(err, ShouldBeNil)
			So(m, ShouldResemble, category.ScoreMap{category.Coding: 5.5})
		})

		Convey("An empty code is rejected", func() {
			rf.code = "garbage!"
			_, err := rf.ratings(nil)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestScoreCommand(t *testing.T) {
	Convey("Given full marks", t, func() {
		out, err := execute("score", "cryptography=10", "distributedSystems=10", "economics=10", "coding=10", "writing=10", "community=10")
		So(err, ShouldBeNil)
		So(out, ShouldContainSubstring, "score:   100/100")
		So(out, ShouldContainSubstring, "average: 10.00/10")
	})
}

func TestGapsCommand(t *testing.T) {
	Convey("Given partial ratings", t, func() {
		Convey("Gaps to Satoshi are listed with a total", func() {
			out, err := execute("gaps", "coding=10")
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, "total: +47")
		})

		Convey("Matching a benchmark prints nothing left", func() {
			out, err := execute("gaps", "-b", `Craig "Wrong" Wright`, "cryptography=10", "distributedSystems=10", "economics=10", "coding=10", "writing=10", "community=10")
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, "Nothing left")
		})

		Convey("An unknown benchmark fails", func() {
			_, err := execute("gaps", "-b", "Nobody")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestShareCommands(t *testing.T) {
	Convey("Given share subcommands", t, func() {
		Convey("Encode then decode returns the ratings", func() {
			out, err := execute("share", "encode", "economics=7.5")
			So(err, ShouldBeNil)
			code := strings.SplitN(out, "\n", 2)[0]

			out, err = execute("share", "decode", code)
			So(err, ShouldBeNil)
			So(out, ShouldEqual, "economics=7.5\n")
		})

		Convey("Compare links round-trip through ids", func() {
			out, err := execute("share", "compare", "--origin", "https://satoshi.test", "bm-hal", "bm-wei")
			So(err, ShouldBeNil)
			lines := strings.Split(strings.TrimSpace(out), "\n")
			So(lines, ShouldHaveLength, 3)
			So(lines[2], ShouldStartWith, "https://satoshi.test/#/c/")

			for _, link := range lines {
				got, err := execute("share", "ids", link)
				So(err, ShouldBeNil)
				So(got, ShouldEqual, "bm-hal\nbm-wei\n")
			}
		})

		Convey("Compare without valid ids fails", func() {
			_, err := execute("share", "compare", "!!")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestRadarCommand(t *testing.T) {
	Convey("Given ratings and benchmark ids", t, func() {
		out, err := execute("radar", "--ids", "bm-hal,unknown", "coding=5")
		So(err, ShouldBeNil)
		So(out, ShouldContainSubstring, "<svg")
		So(out, ShouldContainSubstring, "Hal Finney")
	})
}

func TestExportCommand(t *testing.T) {
	Convey("Given an output path", t, func() {
		path := filepath.Join(t.TempDir(), "report.pdf")
		_, err := execute("export", "--name", "Ada", "-o", path, "coding=8")
		So(err, ShouldBeNil)

		b, err := os.ReadFile(path)
		So(err, ShouldBeNil)
		So(string(b[:5]), ShouldEqual, "%PDF-")
	})

	Convey("Given an unknown benchmark", t, func() {
		_, err := execute("export", "-b", "Nobody", "-o", "-")
		So(err, ShouldNotBeNil)
	})
}
