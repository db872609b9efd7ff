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
	"math"

	"github.com/wtsi-hgi/gplot/options"
)

// unitMargin is the padding used instead of a proportional one when all values
// on an axis are identical.
const unitMargin = 1

// Bounds are the axis ranges of a plot. Unset bounds are left to the engine.
type Bounds struct {
	Top    options.Bound
	Bottom options.Bound
	Left   options.Bound
	Right  options.Bound
}

// FindRange returns the bounds covering the finite x and y values of every
// non-formula series in list, each axis padded either side by margin times its
// span.
//
// NaN and infinite values are ignored; an axis with no finite values is auto,
// as are all bounds with no data series. An axis with zero span is padded by 1
// instead, and an axis whose bounds are still equal after padding is made
// auto.
func FindRange(list []*Series, margin float64) Bounds {
	var x, y extent

	for _, s := range list {
		if s.IsFormula() {
			continue
		}

		x.add(s.X)
		y.add(s.Y)
	}

	var b Bounds

	b.Left, b.Right = x.bounds(margin)
	b.Bottom, b.Top = y.bounds(margin)

	return b
}

// extent tracks the smallest and largest finite values seen on an axis.
type extent struct {
	lo, hi float64
	ok     bool
}

func (e *extent) add(vals []float64) {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}

		if !e.ok {
			e.lo, e.hi, e.ok = v, v, true

			continue
		}

		e.lo = math.Min(e.lo, v)
		e.hi = math.Max(e.hi, v)
	}
}

// bounds returns the padded extent, or auto bounds if nothing finite was seen
// or padding leaves the axis empty or unbounded.
func (e extent) bounds(margin float64) (options.Bound, options.Bound) {
	if !e.ok {
		return options.Bound{}, options.Bound{}
	}

	lo, hi := pad(e.lo, e.hi, margin)
	if lo == hi || math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return options.Bound{}, options.Bound{}
	}

	return options.Fixed(lo), options.Fixed(hi)
}

func pad(lo, hi, margin float64) (float64, float64) {
	m := (hi - lo) * margin
	if hi == lo {
		m = unitMargin
	}

	return lo - m, hi + m
}

// Override returns a copy of b with any explicitly set min or max of set's x
// and y axes replacing the computed bound. Each bound is overridden
// independently.
func (b Bounds) Override(set options.Set) Bounds {
	b.Left = override(b.Left, set.XMin)
	b.Right = override(b.Right, set.XMax)
	b.Bottom = override(b.Bottom, set.YMin)
	b.Top = override(b.Top, set.YMax)

	return b
}

func override(computed, explicit options.Bound) options.Bound {
	if explicit.Set {
		return explicit
	}

	return computed
}
