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


package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/wtsi-hgi/gplot/gnuplot"
	"github.com/wtsi-hgi/gplot/options"
)

const (
	stdinPath  = "-"
	maxColumns = 3
)

var errNoData = errors.New("no data")

// columns holds data read from a file: y alone, x and y, or x, y and z.
type columns struct {
	first, second, third []float64
}

// readColumns reads whitespace separated numbers, one point per line. Every
// line must have the same number of columns.
func readColumns(r io.Reader) (*columns, error) {
	var (
		cols  [maxColumns][]float64
		width int
		num   int
	)

	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		num++

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if width == 0 {
			width = len(fields)
		}

		if width > maxColumns {
			return nil, fmt.Errorf("line %d: more than %d columns", num, maxColumns) //nolint:err113
		}

		if len(fields) != width {
			return nil, fmt.Errorf("line %d: expected %d columns, got %d", num, width, len(fields)) //nolint:err113
		}

		for i, field := range fields {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", num, err)
			}

			cols[i] = append(cols[i], v)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if width == 0 {
		return nil, errNoData
	}

	if width == 1 {
		return &columns{first: cols[0]}, nil
	}

	return &columns{first: cols[0], second: cols[1], third: cols[2]}, nil
}

// readData reads columns from the file at path, or STDIN if path is "-".
func readData(path string) *columns {
	r := io.Reader(os.Stdin)

	if path != stdinPath {
		f, err := os.Open(path)
		if err != nil {
			die(err)
		}

		defer f.Close()

		r = f
	}

	cols, err := readColumns(r)
	if err != nil {
		dief("could not read %s: %s", path, err)
	}

	return cols
}

// addTo adds the columns as a series of the session.
func (c *columns) addTo(s *gnuplot.Session, opts ...options.Option) error {
	return s.AddSeries(c.first, c.second, c.third, opts...)
}

// parseOptions parses key=value pairs given on the command line.
func parseOptions(pairs []string) []options.Option {
	opts, err := options.ParsePairs(pairs)
	if err != nil {
		die(err)
	}

	return opts
}
