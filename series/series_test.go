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

package series

import (
	"errors"
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/wtsi-hgi/gplot/errs"
	"github.com/wtsi-hgi/gplot/options"
)

var errOdd = errors.New("odd")

func TestSeries(t *testing.T) {
	call := options.Merge(options.Defaults())

	Convey("New accepts lists of equal length", t, func() {
		s, err := New([]float64{1, 2, 3}, []float64{4, 5, 6}, nil, call)
		So(err, ShouldBeNil)
		So(s.Len(), ShouldEqual, 3)
		So(s.ThreeD(), ShouldBeFalse)
		So(s.IsFormula(), ShouldBeFalse)
		So(s.Rows(), ShouldResemble, [][]float64{{1, 4}, {2, 5}, {3, 6}})

		Convey("And copies them", func() {
			x := []float64{1, 2}
			s, err = New(x, []float64{3, 4}, nil, call)
			So(err, ShouldBeNil)

			x[0] = 10
			So(s.X[0], ShouldEqual, 1)
		})
	})

	Convey("Without a second list, x defaults to indexes", t, func() {
		s, err := New([]float64{1, 2, 3}, nil, nil, call)
		So(err, ShouldBeNil)
		So(s.X, ShouldResemble, []float64{0, 1, 2})
		So(s.Y, ShouldResemble, []float64{1, 2, 3})
	})

	Convey("Mismatched lists are a ShapeMismatch", t, func() {
		_, err := New([]float64{1, 2, 3}, []float64{1, 2}, nil, call)
		So(errors.Is(err, errs.ShapeMismatch), ShouldBeTrue)

		_, err = New([]float64{1, 2}, []float64{1, 2}, []float64{1}, call)
		So(errors.Is(err, errs.ShapeMismatch), ShouldBeTrue)

		withErr := options.Merge(options.Defaults(), options.Err([]float64{1}))
		_, err = New([]float64{1, 2}, []float64{1, 2}, nil, withErr)
		So(errors.Is(err, errs.ShapeMismatch), ShouldBeTrue)

		withRange := options.Merge(options.Defaults(), options.ErrRange([]float64{1, 2}, []float64{1}))
		_, err = New([]float64{1, 2}, []float64{1, 2}, nil, withRange)
		So(errors.Is(err, errs.ShapeMismatch), ShouldBeTrue)
	})

	Convey("Rows include z and error bar columns", t, func() {
		c := options.Merge(options.Defaults(), options.Err([]float64{0.5, 0.25}),
			options.ErrRange([]float64{1, 2}, []float64{3, 4}))

		s, err := New([]float64{1, 2}, []float64{3, 4}, []float64{5, 6}, c)
		So(err, ShouldBeNil)
		So(s.ThreeD(), ShouldBeTrue)
		So(s.Rows(), ShouldResemble, [][]float64{{1, 3, 5, 0.5, 1, 3}, {2, 4, 6, 0.25, 2, 4}})
		So(s.Coordinates(), ShouldResemble, [][]float64{{1, 3, 5}, {2, 4, 6}})
	})

	Convey("Formula series carry only an equation", t, func() {
		s := NewFormula("sin(x)", call.Set)
		So(s.IsFormula(), ShouldBeTrue)
		So(s.Options.Eqn, ShouldEqual, "sin(x)")
		So(s.Len(), ShouldEqual, 0)
		So(call.Set.Eqn, ShouldBeBlank)
	})
}

func TestFindRange(t *testing.T) {
	call := options.Merge(options.Defaults())

	mustNew := func(x, y []float64) *Series {
		s, err := New(x, y, nil, call)
		So(err, ShouldBeNil)

		return s
	}

	Convey("With no data series, every bound is auto", t, func() {
		So(FindRange(nil, 0.1), ShouldResemble, Bounds{})
		So(FindRange([]*Series{NewFormula("x", call.Set)}, 0.1), ShouldResemble, Bounds{})
	})

	Convey("Two series are combined and padded by the margin", t, func() {
		list := []*Series{
			mustNew([]float64{0, 10}, []float64{0, 10}),
			mustNew([]float64{-5, 5}, []float64{-5, 5}),
		}

		xm := 0.1 * (10 - -5.0)
		ym := 0.1 * (10 - -5.0)

		b := FindRange(list, 0.1)
		So(b.Left, ShouldResemble, options.Fixed(-5-xm))
		So(b.Right, ShouldResemble, options.Fixed(10+xm))
		So(b.Bottom, ShouldResemble, options.Fixed(-5-ym))
		So(b.Top, ShouldResemble, options.Fixed(10+ym))
		So(b.Left.Value, ShouldAlmostEqual, -6.5)
		So(b.Top.Value, ShouldAlmostEqual, 11.5)

		Convey("Formula series don't contribute", func() {
			list = append(list, NewFormula("1000*x", call.Set))
			So(FindRange(list, 0.1), ShouldResemble, b)
		})
	})

	Convey("A constant series gets a unit margin", t, func() {
		b := FindRange([]*Series{mustNew(nil, []float64{5, 5, 5})}, 0.1)

		So(b.Bottom, ShouldResemble, options.Fixed(4))
		So(b.Top, ShouldResemble, options.Fixed(6))
		So(math.IsNaN(b.Top.Value), ShouldBeFalse)
		So(b.Left, ShouldResemble, options.Fixed(-0.2))
		So(b.Right, ShouldResemble, options.Fixed(2.2))
	})

	Convey("A single point is still visible", t, func() {
		b := FindRange([]*Series{mustNew([]float64{3}, []float64{7})}, 0.5)

		So(b.Left, ShouldResemble, options.Fixed(2))
		So(b.Right, ShouldResemble, options.Fixed(4))
		So(b.Bottom, ShouldResemble, options.Fixed(6))
		So(b.Top, ShouldResemble, options.Fixed(8))
	})

	Convey("NaN and infinite values are ignored", t, func() {
		b := FindRange([]*Series{mustNew(nil, []float64{1, math.NaN(), 3})}, 0.1)
		So(b.Bottom, ShouldResemble, options.Fixed(0.8))
		So(b.Top, ShouldResemble, options.Fixed(3.2))

		b = FindRange([]*Series{mustNew([]float64{math.Inf(-1), 2}, []float64{1, math.Inf(1)})}, 0.1)
		So(b.Left, ShouldResemble, options.Fixed(1))
		So(b.Right, ShouldResemble, options.Fixed(3))
		So(b.Bottom, ShouldResemble, options.Fixed(0))
		So(b.Top, ShouldResemble, options.Fixed(2))

		Convey("An axis with nothing finite is auto", func() {
			b = FindRange([]*Series{mustNew([]float64{0, 1}, []float64{math.NaN(), math.NaN()})}, 0)
			So(b.Left, ShouldResemble, options.Fixed(0))
			So(b.Right, ShouldResemble, options.Fixed(1))
			So(b.Bottom, ShouldResemble, options.Auto)
			So(b.Top, ShouldResemble, options.Auto)
		})
	})

	Convey("Explicit bounds win, independently of each other", t, func() {
		b := FindRange([]*Series{mustNew([]float64{0, 10}, []float64{0, 10})}, 0)
		So(b.Left, ShouldResemble, options.Fixed(0))
		So(b.Right, ShouldResemble, options.Fixed(10))

		set := options.Merge(options.Defaults(), options.XMin(-100), options.YMax(50)).Set
		o := b.Override(set)

		So(o.Left, ShouldResemble, options.Fixed(-100))
		So(o.Right, ShouldResemble, options.Fixed(10))
		So(o.Bottom, ShouldResemble, options.Fixed(0))
		So(o.Top, ShouldResemble, options.Fixed(50))

		set = options.Merge(options.Defaults(), options.XMax(3)).Set
		o = Bounds{}.Override(set)
		So(o.Left, ShouldResemble, options.Auto)
		So(o.Right, ShouldResemble, options.Fixed(3))
	})
}

func TestSample(t *testing.T) {
	Convey("Sample skips points that can't be evaluated", t, func() {
		x, y, err := Sample(func(x float64) (float64, error) {
			if x == 1 {
				return 0, errOdd
			}

			if x == 2 {
				return math.Inf(1), nil
			}

			return x * x, nil
		}, 0, 4, 1)
		So(err, ShouldBeNil)
		So(x, ShouldResemble, []float64{0, 3})
		So(y, ShouldResemble, []float64{0, 9})

		_, _, err = Sample(nil, 0, 1, 0)
		So(err, ShouldEqual, ErrBadStep)
	})

	Convey("Histogram counts values into equal bins", t, func() {
		centres, counts, err := Histogram([]float64{0, 1, 1, 2, 3, 4}, 2)
		So(err, ShouldBeNil)
		So(centres, ShouldResemble, []float64{1, 3})
		So(counts, ShouldResemble, []float64{3, 3})

		centres, counts, err = Histogram([]float64{5, 5}, 3)
		So(err, ShouldBeNil)
		So(centres, ShouldResemble, []float64{5.5, 6.5, 7.5})
		So(counts, ShouldResemble, []float64{2, 0, 0})

		_, _, err = Histogram([]float64{1}, 0)
		So(err, ShouldEqual, ErrNoBins)
	})
}
