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
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/wtsi-hgi/gplot/options"
	"github.com/wtsi-hgi/gplot/series"
	"github.com/xuri/excelize/v2"
)

const (
	tableSeparator = "\t"
	maxSheetName   = 31
	defaultSheet   = "Sheet1"
	filePerms      = 0644
)

// WriteSeriesTable writes every data series to w: a line with the series'
// legend label, a line of tab separated axis labels, one tab separated line
// per data point, then a blank line. Formula series are skipped.
func (s *Session) WriteSeriesTable(w io.Writer) error {
	bw := bufio.NewWriter(w)

	for _, ser := range s.dataSeries() {
		fmt.Fprintln(bw, ser.Options.Label)
		fmt.Fprintln(bw, strings.Join(axisLabels(ser), tableSeparator))

		for _, row := range ser.Coordinates() {
			fmt.Fprintln(bw, strings.Join(formatRow(row), tableSeparator))
		}

		fmt.Fprintln(bw)
	}

	return bw.Flush()
}

func (s *Session) dataSeries() []*series.Series {
	var data []*series.Series

	for _, ser := range s.Series() {
		if !ser.IsFormula() {
			data = append(data, ser)
		}
	}

	return data
}

func axisLabels(ser *series.Series) []string {
	labels := []string{ser.Options.XLabel, ser.Options.YLabel}
	if ser.ThreeD() {
		labels = append(labels, ser.Options.ZLabel)
	}

	return labels
}

func formatRow(row []float64) []string {
	cols := make([]string, len(row))
	for i, v := range row {
		cols[i] = options.FormatNumber(v)
	}

	return cols
}

// ExportSeriesTable writes the WriteSeriesTable() output to a file.
func (s *Session) ExportSeriesTable(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}

	if err = s.WriteSeriesTable(f); err != nil {
		f.Close()

		return err
	}

	return f.Close()
}

// ExportWorkbook writes every data series to its own sheet of an xlsx
// workbook: the legend label in the first row, axis labels in the second, then
// one row per data point.
func (s *Session) ExportWorkbook(filename string) error {
	data := s.dataSeries()
	if len(data) == 0 {
		return ErrNoSeries
	}

	f := excelize.NewFile()
	defer f.Close()

	used := make(map[string]bool)

	for i, ser := range data {
		name := sheetName(ser.Options.Label, i, used)

		if err := addSheet(f, name, i); err != nil {
			return err
		}

		if err := writeSheet(f, name, ser); err != nil {
			return err
		}
	}

	return f.SaveAs(filename)
}

// sheetName makes a valid, unique worksheet name from a series label: at most
// maxSheetName characters, none of them reserved, and no apostrophe at either
// end.
func sheetName(label string, i int, used map[string]bool) string {
	name := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return '_'
		}

		return r
	}, label)

	if r := []rune(name); len(r) > maxSheetName {
		name = string(r[:maxSheetName])
	}

	name = strings.Trim(name, "'")

	if name == "" || used[strings.ToLower(name)] {
		name = fmt.Sprintf("Series %d", i+1)
	}

	used[strings.ToLower(name)] = true

	return name
}

func addSheet(f *excelize.File, name string, i int) error {
	if i == 0 {
		return f.SetSheetName(defaultSheet, name)
	}

	_, err := f.NewSheet(name)

	return err
}

func writeSheet(f *excelize.File, name string, ser *series.Series) error {
	if err := f.SetCellValue(name, "A1", ser.Options.Label); err != nil {
		return err
	}

	labels := axisLabels(ser)
	header := make([]interface{}, len(labels))

	for i, l := range labels {
		header[i] = l
	}

	if err := f.SetSheetRow(name, "A2", &header); err != nil {
		return err
	}

	for i, row := range ser.Coordinates() {
		cell, err := excelize.CoordinatesToCellName(1, i+3)
		if err != nil {
			return err
		}

		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}

		if err = f.SetSheetRow(name, cell, &values); err != nil {
			return err
		}
	}

	return nil
}

// SaveCommands writes the script Replot() would send to a file, so the plot
// can be recreated by running the engine on it.
func (s *Session) SaveCommands(filename string) error {
	return os.WriteFile(filename, s.Script(), filePerms)
}
