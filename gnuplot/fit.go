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
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/wtsi-hgi/gplot/command"
	"github.com/wtsi-hgi/gplot/errs"
	"github.com/wtsi-hgi/gplot/options"
	"github.com/wtsi-hgi/gplot/series"
)

const (
	fitDoneMessage = "done"
	fitStyle       = "lines"
	commentPrefix  = "#"
)

// reservedPrefixes mark variables the engine defines for itself, which are
// never fit results.
var reservedPrefixes = []string{"MOUSE_", "GPVAL_", "FIT_", "ARG"} //nolint:gochecknoglobals

// reservedNames are the engine's own variables without a reserved prefix.
var reservedNames = map[string]bool{"I": true, "NaN": true, "GNUTERM": true} //nolint:gochecknoglobals

var identifier = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// token matches a numeric literal, exponent included, or an identifier. Numbers
// are matched first so that the letters of an exponent are never taken for
// identifiers.
var token = regexp.MustCompile(`(?:[0-9]+\.?[0-9]*|\.[0-9]+)(?:[eE][+-]?[0-9]+)?|[A-Za-z_][A-Za-z0-9_]*`)

// FitRequest describes a curve fit.
type FitRequest struct {
	// Call is the model function call, eg. "f(x)".
	Call string

	// Eqn is the model equation, eg. "a*x**b".
	Eqn string

	// Params are the free parameters of Eqn and their starting values.
	Params map[string]float64

	// X may be nil, meaning the indexes of Y. Z is optional.
	X, Y, Z []float64

	// Options apply to the data series, as for AddSeries().
	Options []options.Option

	// FitLabel is the legend entry of the fitted curve; empty means none.
	FitLabel string
}

func (r FitRequest) paramNames() []string {
	names := make([]string, 0, len(r.Params))
	for name := range r.Params {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Fit fits req's model to its data using the engine, and returns the fitted
// variables.
//
// The data is added as a series, and the model with the fitted values
// substituted in is added as a formula series drawn with lines, so the fit
// overlays the data.
//
// If the engine doesn't report results within the barrier's timeout, an
// errs.FitDivergence error wrapping an errs.Timeout is returned. A malformed
// results file gives an errs.ParseError error.
//
// When the fit fails the data series is kept and drawn without an overlay.
func (s *Session) Fit(ctx context.Context, req FitRequest) (map[string]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.usableLocked(); err != nil {
		return nil, err
	}

	first, second := req.X, req.Y
	if req.X == nil {
		first, second = req.Y, nil
	}

	data, err := s.newSeriesLocked(first, second, req.Z, req.Options)
	if err != nil {
		return nil, err
	}

	s.appendLocked(data)

	if err = s.openLocked(); err != nil {
		return nil, err
	}

	fitted, err := s.runFitLocked(ctx, req, data)
	if err != nil {
		if rerr := s.replotLocked(); rerr != nil {
			s.log.Warn("replot after failed fit", "err", rerr)
		}

		return nil, err
	}

	overlay := data.Options.Clone()
	overlay.Style = fitStyle
	overlay.Label = req.FitLabel

	s.appendLocked(series.NewFormula(Substitute(req.Eqn, restrict(fitted, req.Params)), overlay))

	return fitted, s.replotLocked()
}

func (s *Session) runFitLocked(ctx context.Context, req FitRequest, data *series.Series) (map[string]float64, error) {
	results := s.tempName(resultsPrefix, ".txt")
	defer os.Remove(results) //nolint:errcheck

	sc := &command.Script{}
	sc.Add(command.Define{Call: req.Call, Eqn: req.Eqn})

	names := req.paramNames()
	for _, name := range names {
		sc.Add(command.Assign{Name: name, Value: req.Params[name]})
	}

	sc.Add(command.Fit{Call: req.Call, Params: names},
		command.Data{Rows: data.Coordinates()},
		command.SaveVars{Path: results},
		command.Print{Text: fitDoneMessage})

	if err := s.sendLocked(sc.Bytes()); err != nil {
		return nil, err
	}

	s.log.Debug("fit requested", "model", req.Call+" = "+req.Eqn, "points", data.Len())

	if err := s.cfg.Barrier.Wait(ctx, results); err != nil {
		s.restoreLocked() //nolint:errcheck

		if errors.Is(err, errs.Timeout) {
			return nil, errs.Wrap(errs.ErrFitDivergence, req.Call, err)
		}

		return nil, err
	}

	if err := s.syncLocked(ctx); err != nil {
		return nil, err
	}

	f, err := os.Open(results)
	if err != nil {
		return nil, errs.Wrap(errs.ErrFitDivergence, req.Call, err)
	}
	defer f.Close()

	return ParseFitResults(f)
}

// ParseFitResults parses a variables file written by the engine: lines of
// "name = value", with comment lines starting with #. The engine's own
// variables are skipped. Any other line that can't be parsed gives an
// errs.ParseError error.
func ParseFitResults(r io.Reader) (map[string]float64, error) {
	results := make(map[string]float64)
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, commentPrefix) {
			continue
		}

		name, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, errs.New(errs.ErrParse, fmt.Sprintf("line %d: %q", lineNum, line))
		}

		name = strings.TrimSpace(name)
		if reserved(name) {
			continue
		}

		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || name == "" || identifier.FindString(name) != name {
			return nil, errs.Wrap(errs.ErrParse, fmt.Sprintf("line %d: %q", lineNum, line), err)
		}

		results[name] = v
	}

	return results, scanner.Err()
}

func reserved(name string) bool {
	if reservedNames[name] {
		return true
	}

	for _, prefix := range reservedPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}

	return false
}

// restrict returns the entries of fitted that are named in params.
func restrict(fitted, params map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(params))

	for name := range params {
		if v, ok := fitted[name]; ok {
			out[name] = v
		}
	}

	return out
}

// Substitute replaces every whole identifier in eqn that is a key of values
// with its value. Negative values are parenthesised.
func Substitute(eqn string, values map[string]float64) string {
	return token.ReplaceAllStringFunc(eqn, func(name string) string {
		if isNumeric(name) {
			return name
		}

		v, ok := values[name]
		if !ok {
			return name
		}

		s := options.FormatNumber(v)
		if v < 0 {
			return "(" + s + ")"
		}

		return s
	})
}

func isNumeric(tok string) bool {
	return tok[0] == '.' || (tok[0] >= '0' && tok[0] <= '9')
}
