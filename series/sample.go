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
	"slices"
)

// ErrBadStep is returned by Sample if step could never reach end.
var ErrBadStep = errors.New("step must be positive")

// ErrNoBins is returned by Histogram if asked for fewer than 1 bin.
var ErrNoBins = errors.New("histogram needs at least 1 bin")

// Func is a function that can be sampled. Points where it returns an error, or
// a value that isn't finite, are left out.
type Func func(x float64) (float64, error)

// Sample evaluates f from start (inclusive) to end (exclusive) in increments
// of step, returning the x and y values of the points it could evaluate.
func Sample(f Func, start, end, step float64) ([]float64, []float64, error) {
	if step <= 0 {
		return nil, nil, ErrBadStep
	}

	var x, y []float64

	for i := 0; ; i++ {
		at := start + float64(i)*step
		if at >= end {
			break
		}

		v, err := f(at)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}

		x = append(x, at)
		y = append(y, v)
	}

	return x, y, nil
}

// Histogram counts values into bins equal-width bins spanning their range,
// returning the bin centres and counts.
func Histogram(values []float64, bins int) ([]float64, []float64, error) {
	if bins < 1 {
		return nil, nil, ErrNoBins
	}

	if len(values) == 0 {
		return []float64{}, []float64{}, nil
	}

	lo, hi := slices.Min(values), slices.Max(values)

	width := (hi - lo) / float64(bins)
	if width == 0 {
		width = 1
	}

	centres := make([]float64, bins)
	counts := make([]float64, bins)

	for i := range centres {
		centres[i] = lo + (float64(i)+0.5)*width //nolint:mnd
	}

	for _, v := range values {
		i := int((v - lo) / width)
		if i >= bins {
			i = bins - 1
		}

		counts[i]++
	}

	return centres, counts, nil
}
