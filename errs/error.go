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

// package errs defines the kinds of error a plotting session can return.

package errs

import (
	"errors"
	"fmt"
)

const (
	ErrShapeMismatch     = "coordinate lists differ in length"
	ErrEngineUnavailable = "plotting engine unavailable"
	ErrTimeout           = "timed out waiting for plotting engine"
	ErrParse             = "malformed fit result"
	ErrUnsupportedFormat = "unsupported output format"
	ErrFitDivergence     = "fit produced no results"
)

// Sentinels for use with errors.Is(). Any Error with the same Msg matches,
// regardless of its Detail.
var (
	ShapeMismatch     = Error{Msg: ErrShapeMismatch}     //nolint:errname
	EngineUnavailable = Error{Msg: ErrEngineUnavailable} //nolint:errname
	Timeout           = Error{Msg: ErrTimeout}           //nolint:errname
	ParseError        = Error{Msg: ErrParse}             //nolint:errname
	UnsupportedFormat = Error{Msg: ErrUnsupportedFormat} //nolint:errname
	FitDivergence     = Error{Msg: ErrFitDivergence}     //nolint:errname
)

// Error is the error type returned by gplot packages. Msg is one of the Err*
// constants, Detail says what it applies to (a path, a key, a line), and Err
// is an optional underlying cause.
type Error struct {
	Msg    string
	Detail string
	Err    error
}

// New returns an Error with the given message and detail.
func New(msg, detail string) Error {
	return Error{Msg: msg, Detail: detail}
}

// Wrap returns an Error with the given message and detail that wraps err.
func Wrap(msg, detail string, err error) Error {
	return Error{Msg: msg, Detail: detail, Err: err}
}

func (e Error) Error() string {
	s := e.Msg

	if e.Detail != "" {
		s = fmt.Sprintf("%s [%s]", s, e.Detail)
	}

	if e.Err != nil {
		s = fmt.Sprintf("%s: %s", s, e.Err)
	}

	return s
}

// Is returns true if err is an Error with the same Msg as us.
func (e Error) Is(err error) bool {
	var other Error
	if errors.As(err, &other) {
		return other.Msg == e.Msg
	}

	return false
}

func (e Error) Unwrap() error {
	return e.Err
}
