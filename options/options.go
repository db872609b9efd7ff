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

// package options holds the rendering options of a plotting session: the
// session wide defaults and the per-call overrides merged over them.

package options

import (
	"maps"
	"slices"
	"strconv"
)

const (
	DefaultStyle       = "points"
	DefaultRangeMargin = 0.1

	autoSymbol = "*"
)

// Axis names one of the plot axes.
type Axis string

const (
	X Axis = "x"
	Y Axis = "y"
	Z Axis = "z"
)

// Axes lists the axes in the order their settings are emitted.
var Axes = []Axis{X, Y, Z} //nolint:gochecknoglobals

// Bound is an optional number. An unset Bound lets the engine decide, and is
// rendered as "*".
type Bound struct {
	Value float64
	Set   bool
}

// Fixed returns a Bound set to v.
func Fixed(v float64) Bound {
	return Bound{Value: v, Set: true}
}

// Auto is the unset Bound.
var Auto = Bound{} //nolint:gochecknoglobals

// String returns the engine's representation of the bound.
func (b Bound) String() string {
	if !b.Set {
		return autoSymbol
	}

	return FormatNumber(b.Value)
}

// FormatNumber formats f using the fewest digits that represent it exactly.
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Set is a snapshot of the recognised rendering options. Keys that aren't
// recognised are kept in Extra but are never emitted.
type Set struct {
	Style  string
	Title  string
	XLabel string
	YLabel string
	ZLabel string

	// Label is the legend entry of a series; empty means no legend.
	Label string

	// Eqn makes a series a formula series plotted from this equation.
	Eqn string

	XMin, XMax Bound
	YMin, YMax Bound
	ZMin, ZMax Bound

	XTics, YTics, ZTics Bound

	// XLog, YLog and ZLog are log scale bases; 0 means linear.
	XLog, YLog, ZLog int

	// Margin is the canvas margin on all four sides.
	Margin Bound

	// RangeMargin is the proportion of the data span added either side of
	// automatically computed axis ranges.
	RangeMargin float64

	Extra map[string]string
}

// Defaults returns the option set a new session starts with.
func Defaults() Set {
	return Set{
		Style:       DefaultStyle,
		RangeMargin: DefaultRangeMargin,
	}
}

// Clone returns a deep copy of s.
func (s Set) Clone() Set {
	s.Extra = maps.Clone(s.Extra)

	return s
}

// AxisSettings are the options that apply to a single axis.
type AxisSettings struct {
	Min, Max Bound
	Tics     Bound
	Log      int
	Label    string
}

// Axis returns the settings for the given axis.
func (s Set) Axis(a Axis) AxisSettings {
	switch a {
	case X:
		return AxisSettings{Min: s.XMin, Max: s.XMax, Tics: s.XTics, Log: s.XLog, Label: s.XLabel}
	case Y:
		return AxisSettings{Min: s.YMin, Max: s.YMax, Tics: s.YTics, Log: s.YLog, Label: s.YLabel}
	default:
		return AxisSettings{Min: s.ZMin, Max: s.ZMax, Tics: s.ZTics, Log: s.ZLog, Label: s.ZLabel}
	}
}

// Call is the immutable configuration of a single plot or fit call: the merged
// option set plus the data-only error bar arrays, which never become session
// defaults.
type Call struct {
	Set    Set
	Err    []float64
	ErrLow []float64
	ErrHi  []float64
}

// Option overrides part of a Call.
type Option func(*Call)

// Merge returns a new Call made by applying opts over a copy of base. base is
// not altered.
func Merge(base Set, opts ...Option) Call {
	c := Call{Set: base.Clone()}

	for _, opt := range opts {
		opt(&c)
	}

	return c
}

// PlotLevel returns s with its per-series keys (Style, Label and Eqn) replaced
// by those of base. This is what a plot call leaves behind as the new session
// defaults.
func (s Set) PlotLevel(base Set) Set {
	s = s.Clone()
	s.Style = base.Style
	s.Label = base.Label
	s.Eqn = base.Eqn

	return s
}

// Style sets the drawing style, eg. "lines" or "boxes fill solid".
func Style(style string) Option {
	return func(c *Call) { c.Set.Style = style }
}

// Title sets the plot title.
func Title(title string) Option {
	return func(c *Call) { c.Set.Title = title }
}

// XLabel sets the x axis label.
func XLabel(label string) Option {
	return func(c *Call) { c.Set.XLabel = label }
}

// YLabel sets the y axis label.
func YLabel(label string) Option {
	return func(c *Call) { c.Set.YLabel = label }
}

// ZLabel sets the z axis label.
func ZLabel(label string) Option {
	return func(c *Call) { c.Set.ZLabel = label }
}

// Label sets the legend label of a series.
func Label(label string) Option {
	return func(c *Call) { c.Set.Label = label }
}

// Eqn makes the series a formula series.
func Eqn(eqn string) Option {
	return func(c *Call) { c.Set.Eqn = eqn }
}

// Min sets the lower bound of the given axis.
func Min(a Axis, b Bound) Option {
	return func(c *Call) { *c.Set.minOf(a) = b }
}

// Max sets the upper bound of the given axis.
func Max(a Axis, b Bound) Option {
	return func(c *Call) { *c.Set.maxOf(a) = b }
}

// XMin sets the lower bound of the x axis.
func XMin(v float64) Option { return Min(X, Fixed(v)) }

// XMax sets the upper bound of the x axis.
func XMax(v float64) Option { return Max(X, Fixed(v)) }

// YMin sets the lower bound of the y axis.
func YMin(v float64) Option { return Min(Y, Fixed(v)) }

// YMax sets the upper bound of the y axis.
func YMax(v float64) Option { return Max(Y, Fixed(v)) }

// ZMin sets the lower bound of the z axis.
func ZMin(v float64) Option { return Min(Z, Fixed(v)) }

// ZMax sets the upper bound of the z axis.
func ZMax(v float64) Option { return Max(Z, Fixed(v)) }

// Tics sets the tic interval of the given axis; Auto lets the engine choose.
func Tics(a Axis, b Bound) Option {
	return func(c *Call) { *c.Set.ticsOf(a) = b }
}

// Log sets the log scale base of the given axis; 0 means linear.
func Log(a Axis, base int) Option {
	return func(c *Call) { *c.Set.logOf(a) = base }
}

// Margin sets the canvas margin; Auto resets to the engine default.
func Margin(b Bound) Option {
	return func(c *Call) { c.Set.Margin = b }
}

// RangeMargin sets the proportional padding of computed axis ranges.
func RangeMargin(m float64) Option {
	return func(c *Call) { c.Set.RangeMargin = m }
}

// Extra stores an unrecognised key.
func Extra(key, value string) Option {
	return func(c *Call) {
		if c.Set.Extra == nil {
			c.Set.Extra = make(map[string]string)
		}

		c.Set.Extra[key] = value
	}
}

// Err sets symmetric error bars, one per data point.
func Err(err []float64) Option {
	return func(c *Call) { c.Err = slices.Clone(err) }
}

// ErrRange sets asymmetric error bars, one low and one high per data point.
func ErrRange(low, high []float64) Option {
	return func(c *Call) {
		c.ErrLow = slices.Clone(low)
		c.ErrHi = slices.Clone(high)
	}
}

func (s *Set) minOf(a Axis) *Bound {
	switch a {
	case X:
		return &s.XMin
	case Y:
		return &s.YMin
	default:
		return &s.ZMin
	}
}

func (s *Set) maxOf(a Axis) *Bound {
	switch a {
	case X:
		return &s.XMax
	case Y:
		return &s.YMax
	default:
		return &s.ZMax
	}
}

func (s *Set) ticsOf(a Axis) *Bound {
	switch a {
	case X:
		return &s.XTics
	case Y:
		return &s.YTics
	default:
		return &s.ZTics
	}
}

func (s *Set) logOf(a Axis) *int {
	switch a {
	case X:
		return &s.XLog
	case Y:
		return &s.YLog
	default:
		return &s.ZLog
	}
}
