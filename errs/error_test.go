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

package errs

import (
	"errors"
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestError(t *testing.T) {
	Convey("Errors describe their message, detail and cause", t, func() {
		So(New(ErrTimeout, "/tmp/sync").Error(), ShouldEqual, ErrTimeout+" [/tmp/sync]")
		So(Wrap(ErrParse, "line 2", errors.New("bad")).Error(), ShouldEqual, ErrParse+" [line 2]: bad")
		So(Wrap(ErrParse, "", errors.New("bad")).Error(), ShouldEqual, ErrParse+": bad")
		So(FitDivergence.Error(), ShouldEqual, ErrFitDivergence)
	})

	Convey("Errors match sentinels by message", t, func() {
		err := fmt.Errorf("rendering: %w", New(ErrShapeMismatch, "y"))

		So(errors.Is(err, ShapeMismatch), ShouldBeTrue)
		So(errors.Is(err, Timeout), ShouldBeFalse)
		So(errors.Is(errors.New(ErrShapeMismatch), ShapeMismatch), ShouldBeFalse)
	})

	Convey("Wrapped causes can be unwrapped", t, func() {
		cause := New(ErrTimeout, "sync")
		err := Wrap(ErrFitDivergence, "f(x)", cause)

		So(errors.Is(err, FitDivergence), ShouldBeTrue)
		So(errors.Is(err, Timeout), ShouldBeTrue)
		So(errors.Unwrap(err), ShouldResemble, cause)
	})
}
