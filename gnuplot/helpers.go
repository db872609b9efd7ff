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
	"math"
	"slices"

	"github.com/wtsi-hgi/gplot/options"
	"github.com/wtsi-hgi/gplot/series"
)

const (
	funcStyle    = "lines"
	histStyle    = "boxes fill solid"
	distribStyle = "boxes"
)

func withStyle(style string, opts []options.Option) []options.Option {
	return append([]options.Option{options.Style(style)}, opts...)
}

// PlotFunc samples f from start to end in steps of step, and plots the result
// with lines (unless opts give another style). Points f can't be evaluated at
// are left out.
func (s *Session) PlotFunc(f series.Func, start, end, step float64, opts ...options.Option) error {
	x, y, err := series.Sample(f, start, end, step)
	if err != nil {
		return err
	}

	return s.AddSeries(x, y, nil, withStyle(funcStyle, opts)...)
}

// PlotDiag plots the line y = x from start to end, with no legend. Auto
// bounds span the finite x and y values of the current data series.
func (s *Session) PlotDiag(start, end options.Bound, opts ...options.Option) error {
	lo, hi := math.Inf(1), math.Inf(-1)

	for _, ser := range s.dataSeries() {
		for _, v := range append(slices.Clone(ser.X), ser.Y...) {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}

			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}

	if start.Set {
		lo = start.Value
	}

	if end.Set {
		hi = end.Value
	}

	if math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return ErrNoSeries
	}

	opts = append([]options.Option{options.Style(funcStyle), options.Label("")}, opts...)

	return s.AddSeries([]float64{lo, hi}, []float64{lo, hi}, nil, opts...)
}

// PlotHist plots a histogram of values counted into the given number of
// bins, as solid boxes unless opts give another style.
func (s *Session) PlotHist(values []float64, bins int, opts ...options.Option) error {
	centres, counts, err := series.Histogram(values, bins)
	if err != nil {
		return err
	}

	return s.AddSeries(centres, counts, nil, withStyle(histStyle, opts)...)
}

// PlotDistrib is like PlotHist(), but plots the density of values, so that the
// boxes have a total area of 1.
func (s *Session) PlotDistrib(values []float64, bins int, opts ...options.Option) error {
	centres, counts, err := series.Histogram(values, bins)
	if err != nil {
		return err
	}

	if len(centres) > 0 {
		width := 1.0
		if len(centres) > 1 {
			width = centres[1] - centres[0]
		}

		total := float64(len(values)) * width
		for i := range counts {
			counts[i] /= total
		}
	}

	return s.AddSeries(centres, counts, nil, withStyle(distribStyle, opts)...)
}
