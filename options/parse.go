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

package options

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wtsi-hgi/gplot/errs"
)

const (
	ErrBadOptionValue = "invalid option value"

	linearKeyword = "linear"
	autoKeyword   = "auto"
	defaultLog    = 10
)

// BadOptionValue matches, with errors.Is(), any error from parsing a bad value.
var BadOptionValue = errs.Error{Msg: ErrBadOptionValue} //nolint:errname,gochecknoglobals

// Keys lists the option keys that Parse recognises.
var Keys = []string{ //nolint:gochecknoglobals
	"style", "main", "title", "xlab", "ylab", "zlab", "plab", "eqn",
	"xmin", "xmax", "ymin", "ymax", "zmin", "zmax",
	"xtics", "ytics", "ztics", "xlog", "ylog", "zlog",
	"margin", "rangemargin",
}

// Parse turns a textual key and value, as given on a command line or in a
// config file, into an Option. Bounds accept a number or "*"/"auto"; log bases
// accept an integer, "linear" or an empty value (base 10). Keys that aren't
// recognised are stored with Extra().
func Parse(key, value string) (Option, error) {
	key = strings.ToLower(strings.TrimSpace(key))

	if opt := parseString(key, value); opt != nil {
		return opt, nil
	}

	switch key {
	case "xmin", "xmax", "ymin", "ymax", "zmin", "zmax":
		return parseRangeBound(key, value)
	case "xtics", "ytics", "ztics":
		b, err := parseBound(key, value)

		return Tics(Axis(key[:1]), b), err
	case "xlog", "ylog", "zlog":
		base, err := parseLogBase(key, value)

		return Log(Axis(key[:1]), base), err
	case "margin":
		b, err := parseBound(key, value)

		return Margin(b), err
	case "rangemargin":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, errs.Wrap(ErrBadOptionValue, key, err)
		}

		return RangeMargin(f), nil
	}

	return Extra(key, value), nil
}

func parseString(key, value string) Option {
	switch key {
	case "style":
		return Style(value)
	case "main", "title":
		return Title(value)
	case "xlab":
		return XLabel(value)
	case "ylab":
		return YLabel(value)
	case "zlab":
		return ZLabel(value)
	case "plab":
		return Label(value)
	case "eqn":
		return Eqn(value)
	}

	return nil
}

func parseRangeBound(key, value string) (Option, error) {
	b, err := parseBound(key, value)
	if err != nil {
		return nil, err
	}

	axis := Axis(key[:1])

	if strings.HasSuffix(key, "min") {
		return Min(axis, b), nil
	}

	return Max(axis, b), nil
}

func parseBound(key, value string) (Bound, error) {
	value = strings.TrimSpace(value)

	switch strings.ToLower(value) {
	case "", autoSymbol, autoKeyword:
		return Auto, nil
	}

	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return Auto, errs.Wrap(ErrBadOptionValue, key, err)
	}

	return Fixed(f), nil
}

func parseLogBase(key, value string) (int, error) {
	value = strings.TrimSpace(value)

	switch strings.ToLower(value) {
	case linearKeyword, "0", "false", "no":
		return 0, nil
	case "", "true", "yes":
		return defaultLog, nil
	}

	base, err := strconv.Atoi(value)
	if err != nil || base < 0 || base == 1 {
		return 0, errs.Wrap(ErrBadOptionValue, key, fmt.Errorf("bad log base %q", value)) //nolint:err113
	}

	return base, nil
}

// ParsePairs parses "key=value" strings into Options.
func ParsePairs(pairs []string) ([]Option, error) {
	opts := make([]Option, 0, len(pairs))

	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found {
			return nil, errs.New(ErrBadOptionValue, pair)
		}

		opt, err := Parse(key, value)
		if err != nil {
			return nil, err
		}

		opts = append(opts, opt)
	}

	return opts, nil
}
