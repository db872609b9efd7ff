/*******************************************************************************
 * Copyright (c) 2026 Genome Research Ltd.
 *
 * Author: Rosie Kern <rk18@sanger.ac.uk>
 * Author: Iaroslav Popov <ip13@sanger.ac.uk>
 *
 * Permission is hereby granted, free of charge, to any person obtaining
 * a copy of this software and associated documentation files (the
 * "Software"), to deal in the Software without restriction, including
 * without limitation the rights to use, copy, modify, merge, publish,
 * distribute, sublicense, and/or sell copies of the Software, and to
 * permit persons to whom the Software is furnished to do so, subject to
 * the following conditions:
 *
 * The above copyright notice and this permission notice shall be included
 * in all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
 * EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
 * MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.
 * IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY
 * CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT,
 * TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN CONNECTION WITH THE
 * SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
 ******************************************************************************/

package gnuplot

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/wtsi-hgi/gplot/barrier"
	"github.com/wtsi-hgi/gplot/errs"
	"github.com/wtsi-hgi/gplot/internal"
	"github.com/wtsi-hgi/gplot/options"
)

func TestParseFitResults(t *testing.T) {
	Convey("Fit results are parsed, skipping comments and engine variables", t, func() {
		got, err := ParseFitResults(strings.NewReader("a = 2.500000\nMOUSE_X = 9\n"))
		So(err, ShouldBeNil)
		So(got, ShouldResemble, map[string]float64{"a": 2.5})

		got, err = ParseFitResults(strings.NewReader(`#!/usr/bin/gnuplot
# saved variables

b=3
  c   =   -1e-3
GPVAL_TERM = "x11"
FIT_NDF = 1
I = {0.0, 1.0}
NaN = NaN
`))
		So(err, ShouldBeNil)
		So(got, ShouldResemble, map[string]float64{"b": 3, "c": -0.001})
	})

	Convey("A malformed line aborts parsing", t, func() {
		for _, bad := range []string{
			"a = 1\nnot an assignment\n",
			"a = \"text\"\n",
			"2a = 1\n",
			" = 4\n",
		} {
			_, err := ParseFitResults(strings.NewReader(bad))
			So(errors.Is(err, errs.ParseError), ShouldBeTrue)
		}
	})

	Convey("Substitute replaces whole identifiers only", t, func() {
		So(Substitute("a*x**b + ab", map[string]float64{"a": 2, "b": -1}), ShouldEqual, "2*x**(-1) + ab")
		So(Substitute("sin(x)", map[string]float64{"a": 2}), ShouldEqual, "sin(x)")
	})

	Convey("Substitute leaves numeric literals alone", t, func() {
		vals := map[string]float64{"a": 1.5, "e": 5, "E": 6}
		So(Substitute("a*x + 2e-3", vals), ShouldEqual, "1.5*x + 2e-3")
		So(Substitute("1.5E+10*a + .5e2 + e", vals), ShouldEqual, "1.5E+10*1.5 + .5e2 + 5")
		So(Substitute("e*x2e3", vals), ShouldEqual, "5*x2e3")
	})
}

func TestFit(t *testing.T) {
	ctx := context.Background()

	Convey("Given a session whose engine reports fit results", t, func() {
		dir := t.TempDir()
		eng := internal.NewLocalEngine()
		eng.FitResults = map[string]float64{"a": 2.5, "b": -1, "c": 7}
		s := New(eng, Config{TempDir: dir, Barrier: barrier.New(time.Second)})

		req := FitRequest{
			Call:   "f(x)",
			Eqn:    "a*x**b",
			Params: map[string]float64{"b": 1, "a": 2},
			X:      []float64{1, 2, 3},
			Y:      []float64{2, 4, 6},
		}

		Convey("Fit returns the fitted values and overlays the fitted curve", func() {
			got, err := s.Fit(ctx, req)
			So(err, ShouldBeNil)
			So(got, ShouldResemble, map[string]float64{"a": 2.5, "b": -1, "c": 7})

			So(eng.Scripts[0], ShouldNotBeEmpty)
			fit := string(eng.Scripts[0])
			So(fit, ShouldStartWith, "f(x) = a*x**b\na = 2\nb = 1\nfit f(x) '-' via a,b\n1 2\n2 4\n3 6\ne\nsave var \""+dir)
			So(fit, ShouldEndWith, "\"\nprint \"done\"\n")

			list := s.Series()
			So(len(list), ShouldEqual, 2)
			So(list[1].IsFormula(), ShouldBeTrue)
			So(list[1].Options.Eqn, ShouldEqual, "2.5*x**(-1)")
			So(list[1].Options.Style, ShouldEqual, "lines")

			So(eng.Last(), ShouldEndWith, "plot \"-\" with points notitle, 2.5*x**(-1) with lines notitle\n1 2\n2 4\n3 6\ne\n")
			So(eng.Terminal(), ShouldEqual, DefaultTerminal)
			So(internal.FilesIn(t, dir), ShouldBeEmpty)
		})

		Convey("Options apply to the data, and x defaults to indexes", func() {
			req.X = nil
			req.Options = []options.Option{options.Label("data"), options.Title("fit")}
			req.FitLabel = "model"

			_, err := s.Fit(ctx, req)
			So(err, ShouldBeNil)

			list := s.Series()
			So(list[0].X, ShouldResemble, []float64{0, 1, 2})
			So(list[0].Options.Label, ShouldEqual, "data")
			So(list[1].Options.Label, ShouldEqual, "model")
			So(s.Defaults().Title, ShouldEqual, "fit")
			So(s.Defaults().Label, ShouldBeEmpty)
		})

		Convey("Mismatched data is rejected before anything is sent", func() {
			req.Y = []float64{1}

			_, err := s.Fit(ctx, req)
			So(errors.Is(err, errs.ShapeMismatch), ShouldBeTrue)
			So(eng.Scripts, ShouldBeEmpty)
			So(s.Series(), ShouldBeEmpty)
		})

		Convey("A malformed results file is a ParseError", func() {
			eng.RawResults = "a = 2.5\nrubbish\n"

			_, err := s.Fit(ctx, req)
			So(errors.Is(err, errs.ParseError), ShouldBeTrue)
			So(len(s.Series()), ShouldEqual, 1)
			So(internal.FilesIn(t, dir), ShouldBeEmpty)
		})
	})

	Convey("Given an engine that never writes results", t, func() {
		eng := internal.NewLocalEngine()
		eng.Silent = true
		s := New(eng, Config{TempDir: t.TempDir(), Barrier: barrier.New(shortTimeout)})

		Convey("Fit fails with FitDivergence within the bound", func() {
			start := time.Now()
			_, err := s.Fit(ctx, FitRequest{Call: "f(x)", Eqn: "m*x", Params: map[string]float64{"m": 1},
				Y: []float64{1, 2}})
			elapsed := time.Since(start)

			So(errors.Is(err, errs.FitDivergence), ShouldBeTrue)
			So(errors.Is(err, errs.Timeout), ShouldBeTrue)
			So(elapsed, ShouldBeLessThan, shortTimeout+time.Second)
			So(eng.Terminal(), ShouldEqual, DefaultTerminal)
		})

		Convey("A failed fit still draws its data without an overlay", func() {
			_, err := s.Fit(ctx, FitRequest{Call: "f(x)", Eqn: "m*x", Params: map[string]float64{"m": 1},
				Y: []float64{1, 2}, Options: []options.Option{options.Label("points")}})
			So(errors.Is(err, errs.FitDivergence), ShouldBeTrue)
			So(len(s.Series()), ShouldEqual, 1)

			last := eng.Last()
			So(last, ShouldContainSubstring, `plot "-" with points title "points"`)
			So(last, ShouldNotContainSubstring, "m*x")
		})
	})
}
