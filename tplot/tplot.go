/*******************************************************************************
* Copyright (c) 2023 Genome Research Ltd.
*
* Author: Sendu Bala <sb10@sanger.ac.uk>
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

// package tplot previews data series in the terminal: as a YouPlot line chart
// if YouPlot is installed, or just as a table of values if not.
package tplot

import (
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"strconv"

	"github.com/wtsi-hgi/gplot/series"
)

const (
	youplot     = "youplot"
	tinyValue   = 1
	tinyValueDP = 3
	lowValue    = 10
	lowValueDP  = 2
	midValue    = 100
	midValueDP  = 1
	highValueDP = 0

	untitled = "series"
)

type datum struct {
	x, y string
}

// Data is a titled list of x,y points ready for previewing.
type Data struct {
	title string
	data  []*datum
}

// NewData returns an empty Data with the given title.
func NewData(title string) *Data {
	return &Data{
		title: title,
	}
}

// FromSeries returns Data holding the x and y values of a data series, titled
// with the series' label. Formula series have no points to preview.
func FromSeries(s *series.Series) *Data {
	title := s.Options.Label
	if title == "" {
		title = untitled
	}

	d := NewData(title)

	for i := range s.X {
		d.Add(strconv.FormatFloat(s.X[i], 'g', -1, 64), s.Y[i])
	}

	return d
}

// Add adds a point, formatting y with fewer decimal places the bigger it is.
func (d *Data) Add(x string, y float64) {
	var dp int

	switch size := math.Abs(y); {
	case size < tinyValue:
		dp = tinyValueDP
	case size < lowValue:
		dp = lowValueDP
	case size < midValue:
		dp = midValueDP
	default:
		dp = highValueDP
	}

	d.data = append(d.data, &datum{
		x: x,
		y: strconv.FormatFloat(y, 'f', dp, 64),
	})
}

// Len returns the number of points added.
func (d *Data) Len() int {
	return len(d.data)
}

// TPlotter writes previews to an output.
type TPlotter struct {
	youPlotExe string
	output     io.Writer
}

// New returns a TPlotter that writes to STDOUT.
func New() *TPlotter {
	return NewWithOutput(os.Stdout)
}

// NewWithOutput returns a TPlotter that writes to the given output.
func NewWithOutput(output io.Writer) *TPlotter {
	exe, _ := exec.LookPath(youplot) //nolint:errcheck

	return &TPlotter{
		youPlotExe: exe,
		output:     output,
	}
}

// Plot previews the data. Empty data is skipped.
func (t *TPlotter) Plot(data *Data) error {
	if data.Len() == 0 {
		return nil
	}

	if t.youPlotExe == "" {
		t.simplePlot(data)

		return nil
	}

	return t.fancyPlot(data)
}

// PlotSeries previews every data series in the list, skipping formula series.
func (t *TPlotter) PlotSeries(list []*series.Series) error {
	for _, s := range list {
		if s.IsFormula() {
			continue
		}

		if err := t.Plot(FromSeries(s)); err != nil {
			return err
		}
	}

	return nil
}

func (t *TPlotter) simplePlot(data *Data) {
	fmt.Fprintf(t.output, "\n%s:\n", data.title)

	for _, xy := range data.data {
		fmt.Fprintf(t.output, " %s:\t%s\n", xy.x, xy.y)
	}
}

func (t *TPlotter) fancyPlot(data *Data) error {
	fmt.Fprintf(t.output, "\n\n")

	cmd := exec.Command(t.youPlotExe, "line", "-t", data.title) //nolint:gosec
	cmd.Stdout = t.output
	cmd.Stderr = t.output

	w, err := cmd.StdinPipe()
	if err != nil {
		return err
	}

	err = cmd.Start()
	if err != nil {
		return err
	}

	for _, datum := range data.data {
		_, err = fmt.Fprintf(w, "%s\t%s\n", datum.x, datum.y)
		if err != nil {
			return err
		}
	}

	err = w.Close()
	if err != nil {
		return err
	}

	return cmd.Wait()
}
