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

// package series holds the data series (layers) of a plot, and finds the axis
// ranges that cover them.

package series

import (
	"fmt"
	"slices"

	"github.com/wtsi-hgi/gplot/errs"
	"github.com/wtsi-hgi/gplot/options"
)

// Series is one plotted data series, or a formula series defined by an
// equation. A Series should not be altered once created.
type Series struct {
	X      []float64
	Y      []float64
	Z      []float64
	Err    []float64
	ErrLow []float64
	ErrHi  []float64

	Options options.Set
}

// New returns a Series for the given coordinate lists and call options.
//
// If second is nil, first holds the y values and x defaults to the indexes
// 0..len(first)-1. third holds optional z values. The lists, and any error bar
// lists in call, are copied and must all be the same length; if not, an
// errs.ShapeMismatch error is returned.
func New(first, second, third []float64, call options.Call) (*Series, error) {
	x, y := first, second
	if second == nil {
		y = first
		x = indexes(len(first))
	}

	s := &Series{
		X:       slices.Clone(x),
		Y:       slices.Clone(y),
		Z:       slices.Clone(third),
		Err:     slices.Clone(call.Err),
		ErrLow:  slices.Clone(call.ErrLow),
		ErrHi:   slices.Clone(call.ErrHi),
		Options: call.Set.Clone(),
	}

	return s, s.validate()
}

// NewFormula returns a Series that plots the given equation instead of data.
func NewFormula(eqn string, set options.Set) *Series {
	set = set.Clone()
	set.Eqn = eqn

	return &Series{Options: set}
}

func indexes(n int) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = float64(i)
	}

	return x
}

func (s *Series) validate() error {
	n := len(s.X)

	if len(s.Y) != n {
		return shapeError("y", len(s.Y), n)
	}

	if len(s.Z) > 0 && len(s.Z) != n {
		return shapeError("z", len(s.Z), n)
	}

	if len(s.Err) > 0 && len(s.Err) != n {
		return shapeError("err", len(s.Err), n)
	}

	if len(s.ErrLow) != len(s.ErrHi) {
		return shapeError("errhi", len(s.ErrHi), len(s.ErrLow))
	}

	if len(s.ErrLow) > 0 && len(s.ErrLow) != n {
		return shapeError("errlow", len(s.ErrLow), n)
	}

	return nil
}

func shapeError(name string, got, want int) error {
	return errs.New(errs.ErrShapeMismatch, fmt.Sprintf("%s has %d values, expected %d", name, got, want))
}

// IsFormula returns true if this series is plotted from an equation.
func (s *Series) IsFormula() bool {
	return s.Options.Eqn != ""
}

// ThreeD returns true if this series has z values.
func (s *Series) ThreeD() bool {
	return len(s.Z) > 0
}

// Len returns the number of data points.
func (s *Series) Len() int {
	return len(s.X)
}

// Rows returns one row per data point: x, y, z if present, then any error bar
// values.
func (s *Series) Rows() [][]float64 {
	rows := make([][]float64, s.Len())

	for i := range rows {
		row := []float64{s.X[i], s.Y[i]}

		if s.ThreeD() {
			row = append(row, s.Z[i])
		}

		if len(s.Err) > 0 {
			row = append(row, s.Err[i])
		}

		if len(s.ErrLow) > 0 {
			row = append(row, s.ErrLow[i], s.ErrHi[i])
		}

		rows[i] = row
	}

	return rows
}

// Coordinates returns one row per data point holding just x, y and z if
// present.
func (s *Series) Coordinates() [][]float64 {
	rows := make([][]float64, s.Len())

	for i := range rows {
		row := []float64{s.X[i], s.Y[i]}

		if s.ThreeD() {
			row = append(row, s.Z[i])
		}

		rows[i] = row
	}

	return rows
}
