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

// package command builds scripts in gnuplot's command language from an ordered
// list of typed directives.

package command

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/wtsi-hgi/gplot/options"
)

// Kind identifies the type of a Directive.
type Kind int

const (
	KindToggle Kind = iota
	KindMargin
	KindTics
	KindLogScale
	KindRange
	KindLabel
	KindDraw
	KindData
	KindTerminal
	KindOutput
	KindDefine
	KindAssign
	KindFit
	KindSaveVars
	KindPrint
	KindMultiplot
	KindPlacement
	KindRaw
)

var kindNames = [...]string{ //nolint:gochecknoglobals
	"toggle", "margin", "tics", "logscale", "range", "label", "draw", "data",
	"terminal", "output", "define", "assign", "fit", "savevars", "print",
	"multiplot", "placement", "raw",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}

	return "unknown"
}

// Directive is one command of a script.
type Directive interface {
	Kind() Kind
	writeTo(w *bytes.Buffer)
}

// Script is an ordered list of directives.
type Script struct {
	directives []Directive
}

// Add appends directives to the script.
func (s *Script) Add(d ...Directive) {
	s.directives = append(s.directives, d...)
}

// Len returns the number of directives in the script.
func (s *Script) Len() int {
	return len(s.directives)
}

// Directives returns the directives in order.
func (s *Script) Directives() []Directive {
	return append([]Directive(nil), s.directives...)
}

// Kinds returns the kind of each directive in order.
func (s *Script) Kinds() []Kind {
	kinds := make([]Kind, len(s.directives))
	for i, d := range s.directives {
		kinds[i] = d.Kind()
	}

	return kinds
}

// Bytes serialises the script.
func (s *Script) Bytes() []byte {
	var buf bytes.Buffer

	for _, d := range s.directives {
		d.writeTo(&buf)
	}

	return buf.Bytes()
}

// WriteTo writes the serialised script to w.
func (s *Script) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(s.Bytes())

	return int64(n), err
}

// quoter escapes the only characters special inside gnuplot's double-quoted
// strings. Other runes, printable or not, are passed through as they are.
var quoter = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`) //nolint:gochecknoglobals

// Quote returns s as a double-quoted string literal.
func Quote(s string) string {
	return `"` + quoter.Replace(s) + `"`
}

// Toggle is a bare "set" of a display setting, eg. "set mouse".
type Toggle struct {
	Name string
}

func (Toggle) Kind() Kind { return KindToggle }

func (d Toggle) writeTo(w *bytes.Buffer) {
	fmt.Fprintf(w, "set %s\n", d.Name)
}

// Margin sets the margin of one side (t, b, l or r), or resets it to the
// default when the Bound is unset.
type Margin struct {
	Side  string
	Value options.Bound
}

func (Margin) Kind() Kind { return KindMargin }

func (d Margin) writeTo(w *bytes.Buffer) {
	if !d.Value.Set {
		fmt.Fprintf(w, "set %smargin\n", d.Side)

		return
	}

	fmt.Fprintf(w, "set %smargin %s\n", d.Side, d.Value)
}

// Tics sets the tic interval of an axis, or automatic tics when the Bound is
// unset.
type Tics struct {
	Axis     options.Axis
	Interval options.Bound
}

func (Tics) Kind() Kind { return KindTics }

func (d Tics) writeTo(w *bytes.Buffer) {
	if !d.Interval.Set {
		fmt.Fprintf(w, "set %stics autofreq\n", d.Axis)

		return
	}

	fmt.Fprintf(w, "set %stics %s\n", d.Axis, d.Interval)
}

// LogScale enables a log scale of the given base on an axis; a Base of 0
// disables it.
type LogScale struct {
	Axis options.Axis
	Base int
}

func (LogScale) Kind() Kind { return KindLogScale }

func (d LogScale) writeTo(w *bytes.Buffer) {
	if d.Base == 0 {
		fmt.Fprintf(w, "unset logscale %s\n", d.Axis)

		return
	}

	fmt.Fprintf(w, "set logscale %s %d\n", d.Axis, d.Base)
}

// Range sets the range of an axis. Unset bounds are auto.
type Range struct {
	Axis     options.Axis
	Min, Max options.Bound
}

func (Range) Kind() Kind { return KindRange }

func (d Range) writeTo(w *bytes.Buffer) {
	fmt.Fprintf(w, "set %srange [%s:%s]\n", d.Axis, d.Min, d.Max)
}

// Label sets a text element: "title", "xlabel", "ylabel" or "zlabel".
type Label struct {
	Target string
	Text   string
}

func (Label) Kind() Kind { return KindLabel }

func (d Label) writeTo(w *bytes.Buffer) {
	fmt.Fprintf(w, "set %s %s\n", d.Target, Quote(d.Text))
}

// DrawItem is one entry of a Draw directive.
type DrawItem struct {
	// Eqn is plotted when set; otherwise the item reads inline data.
	Eqn   string
	Style string

	// Title is the legend entry; empty means no legend.
	Title string
}

func (i DrawItem) String() string {
	src := `"-"`
	if i.Eqn != "" {
		src = i.Eqn
	}

	parts := []string{src}

	if i.Style != "" {
		parts = append(parts, "with "+i.Style)
	}

	if i.Title != "" {
		parts = append(parts, "title "+Quote(i.Title))
	} else {
		parts = append(parts, "notitle")
	}

	return strings.Join(parts, " ")
}

// Draw is the single plot (or splot, for 3D) command listing every series.
type Draw struct {
	ThreeD bool
	Items  []DrawItem
}

func (Draw) Kind() Kind { return KindDraw }

func (d Draw) writeTo(w *bytes.Buffer) {
	verb := "plot"
	if d.ThreeD {
		verb = "splot"
	}

	items := make([]string, len(d.Items))
	for i, item := range d.Items {
		items[i] = item.String()
	}

	fmt.Fprintf(w, "%s %s\n", verb, strings.Join(items, ", "))
}

// missing is how a non-finite value is written in a data block; the engine
// treats it as an undefined point.
const missing = "NaN"

// Data is a block of inline data, one whitespace separated row per line,
// terminated by an "e" line.
type Data struct {
	Rows [][]float64
}

func (Data) Kind() Kind { return KindData }

func (d Data) writeTo(w *bytes.Buffer) {
	for _, row := range d.Rows {
		for i, v := range row {
			if i > 0 {
				w.WriteByte(' ')
			}

			if math.IsNaN(v) || math.IsInf(v, 0) {
				w.WriteString(missing)

				continue
			}

			w.WriteString(options.FormatNumber(v))
		}

		w.WriteByte('\n')
	}

	w.WriteString("e\n")
}

// Terminal selects the output format, eg. "png" or "postscript color".
type Terminal struct {
	Name string
}

func (Terminal) Kind() Kind { return KindTerminal }

func (d Terminal) writeTo(w *bytes.Buffer) {
	fmt.Fprintf(w, "set terminal %s\n", d.Name)
}

// Output redirects output to a file; an empty Path restores the default.
type Output struct {
	Path string
}

func (Output) Kind() Kind { return KindOutput }

func (d Output) writeTo(w *bytes.Buffer) {
	if d.Path == "" {
		w.WriteString("set output\n")

		return
	}

	fmt.Fprintf(w, "set output %s\n", Quote(d.Path))
}

// Define binds a function call expression to an equation, eg. "f(x) = a*x".
type Define struct {
	Call string
	Eqn  string
}

func (Define) Kind() Kind { return KindDefine }

func (d Define) writeTo(w *bytes.Buffer) {
	fmt.Fprintf(w, "%s = %s\n", d.Call, d.Eqn)
}

// Assign sets a variable to a number.
type Assign struct {
	Name  string
	Value float64
}

func (Assign) Kind() Kind { return KindAssign }

func (d Assign) writeTo(w *bytes.Buffer) {
	fmt.Fprintf(w, "%s = %s\n", d.Name, options.FormatNumber(d.Value))
}

// Fit requests a fit of a function to the inline data that must follow,
// varying the given parameters.
type Fit struct {
	Call   string
	Params []string
}

func (Fit) Kind() Kind { return KindFit }

func (d Fit) writeTo(w *bytes.Buffer) {
	fmt.Fprintf(w, "fit %s '-' via %s\n", d.Call, strings.Join(d.Params, ","))
}

// SaveVars makes the engine write all its variables to a file.
type SaveVars struct {
	Path string
}

func (SaveVars) Kind() Kind { return KindSaveVars }

func (d SaveVars) writeTo(w *bytes.Buffer) {
	fmt.Fprintf(w, "save var %s\n", Quote(d.Path))
}

// Print makes the engine print some text.
type Print struct {
	Text string
}

func (Print) Kind() Kind { return KindPrint }

func (d Print) writeTo(w *bytes.Buffer) {
	fmt.Fprintf(w, "print %s\n", Quote(d.Text))
}

// Multiplot starts or ends a grid of plots sharing one canvas.
type Multiplot struct {
	On bool
}

func (Multiplot) Kind() Kind { return KindMultiplot }

func (d Multiplot) writeTo(w *bytes.Buffer) {
	if d.On {
		w.WriteString("set multiplot\n")

		return
	}

	w.WriteString("unset multiplot\n")
}

// Placement positions the next plot on the canvas. Coordinates are fractions of
// the canvas, with the origin at the bottom left.
type Placement struct {
	X, Y          float64
	Width, Height float64
}

func (Placement) Kind() Kind { return KindPlacement }

func (d Placement) writeTo(w *bytes.Buffer) {
	fmt.Fprintf(w, "set origin %s, %s\n", options.FormatNumber(d.X), options.FormatNumber(d.Y))
	fmt.Fprintf(w, "set size %s, %s\n", options.FormatNumber(d.Width), options.FormatNumber(d.Height))
}

// Raw is engine command text passed through untouched, bar a trailing newline.
type Raw struct {
	Text string
}

func (Raw) Kind() Kind { return KindRaw }

func (d Raw) writeTo(w *bytes.Buffer) {
	w.WriteString(d.Text)

	if !strings.HasSuffix(d.Text, "\n") {
		w.WriteByte('\n')
	}
}
