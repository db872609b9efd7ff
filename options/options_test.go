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

package options

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/wtsi-hgi/gplot/errs"
)

func TestOptions(t *testing.T) {
	Convey("Bounds render as numbers or the auto symbol", t, func() {
		So(Auto.String(), ShouldEqual, "*")
		So(Fixed(2.5).String(), ShouldEqual, "2.5")
		So(Fixed(-6).String(), ShouldEqual, "-6")
		So(FormatNumber(0.1), ShouldEqual, "0.1")
	})

	Convey("Given the default option set", t, func() {
		base := Defaults()
		So(base.Style, ShouldEqual, DefaultStyle)
		So(base.RangeMargin, ShouldEqual, DefaultRangeMargin)

		Convey("Merge applies overrides to a copy", func() {
			call := Merge(base, Style("lines"), XMin(1), Log(Y, 2), Extra("colour", "red"))

			So(call.Set.Style, ShouldEqual, "lines")
			So(call.Set.XMin, ShouldResemble, Fixed(1))
			So(call.Set.XMax.Set, ShouldBeFalse)
			So(call.Set.YLog, ShouldEqual, 2)
			So(call.Set.Extra["colour"], ShouldEqual, "red")

			So(base.Style, ShouldEqual, DefaultStyle)
			So(base.XMin.Set, ShouldBeFalse)
			So(base.Extra, ShouldBeNil)
		})

		Convey("Merged calls don't share Extra maps", func() {
			first := Merge(base, Extra("a", "1"))
			second := Merge(first.Set, Extra("a", "2"))

			So(first.Set.Extra["a"], ShouldEqual, "1")
			So(second.Set.Extra["a"], ShouldEqual, "2")
		})

		Convey("Error bar options are kept out of the Set", func() {
			bars := []float64{1, 2}
			call := Merge(base, Err(bars), ErrRange([]float64{0}, []float64{3}))

			So(call.Err, ShouldResemble, []float64{1, 2})
			So(call.ErrLow, ShouldResemble, []float64{0})
			So(call.ErrHi, ShouldResemble, []float64{3})

			bars[0] = 9
			So(call.Err[0], ShouldEqual, 1)
		})

		Convey("Axis returns per-axis settings", func() {
			call := Merge(base, ZMin(-1), Tics(Z, Fixed(5)), Log(Z, 10), ZLabel("depth"))
			z := call.Set.Axis(Z)

			So(z.Min, ShouldResemble, Fixed(-1))
			So(z.Max, ShouldResemble, Auto)
			So(z.Tics, ShouldResemble, Fixed(5))
			So(z.Log, ShouldEqual, 10)
			So(z.Label, ShouldEqual, "depth")
		})

		Convey("PlotLevel keeps plot wide keys but not per-series ones", func() {
			call := Merge(base, Title("t"), Style("lines"), Label("l"), Eqn("x**2"), YMax(3))
			kept := call.Set.PlotLevel(base)

			So(kept.Title, ShouldEqual, "t")
			So(kept.YMax, ShouldResemble, Fixed(3))
			So(kept.Style, ShouldEqual, DefaultStyle)
			So(kept.Label, ShouldBeEmpty)
			So(kept.Eqn, ShouldBeEmpty)
		})
	})

	Convey("Parse understands textual options", t, func() {
		opts, err := ParsePairs([]string{
			"style=lines", "main=My plot", "xmin=-1.5", "xmax=*", "ytics=auto",
			"zlog=linear", "ylog=", "margin=3", "rangemargin=0.2", "plab=data", "shade=blue",
		})
		So(err, ShouldBeNil)

		set := Merge(Defaults(), opts...).Set
		So(set.Style, ShouldEqual, "lines")
		So(set.Title, ShouldEqual, "My plot")
		So(set.XMin, ShouldResemble, Fixed(-1.5))
		So(set.XMax, ShouldResemble, Auto)
		So(set.YTics, ShouldResemble, Auto)
		So(set.ZLog, ShouldEqual, 0)
		So(set.YLog, ShouldEqual, 10)
		So(set.Margin, ShouldResemble, Fixed(3))
		So(set.RangeMargin, ShouldEqual, 0.2)
		So(set.Label, ShouldEqual, "data")
		So(set.Extra, ShouldResemble, map[string]string{"shade": "blue"})

		Convey("And rejects bad values", func() {
			_, err = Parse("xmin", "low")
			So(err, ShouldNotBeNil)

			var e errs.Error
			So(errors.As(err, &e), ShouldBeTrue)
			So(e.Msg, ShouldEqual, ErrBadOptionValue)
			So(e.Detail, ShouldEqual, "xmin")

			_, err = Parse("xlog", "1")
			So(err, ShouldNotBeNil)

			_, err = ParsePairs([]string{"nonsense"})
			So(err, ShouldNotBeNil)
		})
	})

	Convey("You can load a config file", t, func() {
		path := filepath.Join(t.TempDir(), "gplot.yml")
		content := `engine: /usr/local/bin/gnuplot
terminal: qt
barrier_timeout: 45s
defaults:
  style: linespoints
  ylog: "2"
`
		So(os.WriteFile(path, []byte(content), 0600), ShouldBeNil)

		cfg, err := LoadConfig(path)
		So(err, ShouldBeNil)
		So(cfg.Engine, ShouldEqual, "/usr/local/bin/gnuplot")
		So(cfg.Terminal, ShouldEqual, "qt")
		So(cfg.BarrierTimeout, ShouldEqual, 45*time.Second)

		set, err := cfg.DefaultSet()
		So(err, ShouldBeNil)
		So(set.Style, ShouldEqual, "linespoints")
		So(set.YLog, ShouldEqual, 2)
		So(set.RangeMargin, ShouldEqual, DefaultRangeMargin)

		Convey("Invalid defaults are rejected", func() {
			So(os.WriteFile(path, []byte("defaults:\n  xmin: abc\n"), 0600), ShouldBeNil)

			_, err = LoadConfig(path)
			So(err, ShouldNotBeNil)
		})

		Convey("Missing files are an error", func() {
			_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))
			So(err, ShouldNotBeNil)
		})
	})
}
