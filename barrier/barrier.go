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

// package barrier lets you wait for the plotting engine to finish its work.
//
// The engine gives no signal when it has executed a command, so the only way to
// know is to ask it to write a file and wait for that file to appear.

package barrier

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/wtsi-hgi/gplot/command"
	"github.com/wtsi-hgi/gplot/errs"
	"github.com/wtsi-ssg/wr/backoff"
	btime "github.com/wtsi-ssg/wr/backoff/time"
	"github.com/wtsi-ssg/wr/retry"
)

const (
	DefaultTimeout    = 30 * time.Second
	DefaultMinBackoff = 5 * time.Millisecond
	DefaultMaxBackoff = 250 * time.Millisecond
	DefaultFactor     = 2

	sentinelTerminal = "postscript color"
)

var errNotEmpty = errors.New("file is empty")

// Barrier polls for files with an exponentially increasing interval, up to a
// maximum wait.
type Barrier struct {
	Timeout    time.Duration
	MinBackoff time.Duration
	MaxBackoff time.Duration
	Factor     float64
}

// New returns a Barrier that waits for up to timeout, with default backoff
// settings. A zero timeout means DefaultTimeout.
func New(timeout time.Duration) Barrier {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return Barrier{
		Timeout:    timeout,
		MinBackoff: DefaultMinBackoff,
		MaxBackoff: DefaultMaxBackoff,
		Factor:     DefaultFactor,
	}
}

// Wait blocks until a non-empty file exists at path.
//
// Returns an errs.Timeout error if that doesn't happen within our Timeout, or
// the context's error if ctx is cancelled first.
func (b Barrier) Wait(ctx context.Context, path string) error {
	timeout := b.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	status := retry.Do(tctx, func() error {
		return exists(path)
	}, &retry.UntilNoError{}, b.backoff(), "wait for "+path)

	if status.Err == nil {
		return nil
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}

	return errs.Wrap(errs.ErrTimeout, path, status.Err)
}

func exists(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	if info.Size() == 0 {
		return errNotEmpty
	}

	return nil
}

func (b Barrier) backoff() *backoff.Backoff {
	minB, maxB, factor := b.MinBackoff, b.MaxBackoff, b.Factor

	if minB <= 0 {
		minB = DefaultMinBackoff
	}

	if maxB < minB {
		maxB = minB
	}

	if factor < 1 {
		factor = 1
	}

	return &backoff.Backoff{
		Min:     minB,
		Max:     maxB,
		Factor:  factor,
		Sleeper: &btime.Sleeper{},
	}
}

// WaitAndRemove is like Wait(), but also deletes the file once it appears.
func (b Barrier) WaitAndRemove(ctx context.Context, path string) error {
	if err := b.Wait(ctx, path); err != nil {
		return err
	}

	return os.Remove(path)
}

// Sentinel returns the directives that make the engine write a file to path
// once it has finished executing everything sent before them: output is
// switched to path and something trivial is plotted.
func Sentinel(path string) []command.Directive {
	return []command.Directive{
		command.Terminal{Name: sentinelTerminal},
		command.Output{Path: path},
		command.Draw{Items: []command.DrawItem{{}}},
		command.Data{Rows: [][]float64{{0, 0}}},
		command.Output{},
	}
}
