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

// package engine provides the backends a plotting session sends its command
// scripts to.

package engine

import (
	"io"
	"sync"

	"github.com/wtsi-hgi/gplot/errs"
)

// Backend is something that accepts command scripts.
type Backend interface {
	// Open readies the backend for Send(), eg. by starting a process. It does
	// nothing if the backend is already open and alive.
	Open() error

	// Send writes a script and makes sure the backend has received it. It
	// returns an errs.EngineUnavailable error if the backend isn't open or has
	// died.
	Send(script []byte) error

	// Alive returns true if the backend is open and can accept scripts.
	Alive() bool

	// Close shuts the backend down. It is safe to call more than once.
	Close() error
}

// Null is the Backend of a session with rendering disabled. It accepts and
// discards everything.
type Null struct{}

func (Null) Open() error         { return nil }
func (Null) Send(_ []byte) error { return nil }
func (Null) Alive() bool         { return true }
func (Null) Close() error        { return nil }

// Recorder is a Backend that writes every script it is sent to a writer, eg.
// to save the commands to a file.
type Recorder struct {
	w      io.Writer
	mu     sync.Mutex
	open   bool
	closed bool
	sends  int
}

// NewRecorder returns a Recorder that writes to w.
func NewRecorder(w io.Writer) *Recorder {
	return &Recorder{w: w}
}

// Open lets subsequent Send()s write to our writer. A closed Recorder can't be
// reopened.
func (r *Recorder) Open() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return errs.New(errs.ErrEngineUnavailable, "recorder closed")
	}

	r.open = true

	return nil
}

// Send writes script to our writer.
func (r *Recorder) Send(script []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.open {
		return errs.New(errs.ErrEngineUnavailable, "recorder not open")
	}

	r.sends++

	if _, err := r.w.Write(script); err != nil {
		return errs.Wrap(errs.ErrEngineUnavailable, "recorder", err)
	}

	return nil
}

// Alive returns true between Open() and Close().
func (r *Recorder) Alive() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.open
}

// Sends returns the number of scripts sent so far.
func (r *Recorder) Sends() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.sends
}

// Close stops further Send()s. If our writer is an io.Closer, it is closed
// the first time this is called.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}

	r.open = false
	r.closed = true

	if c, ok := r.w.(io.Closer); ok {
		return c.Close()
	}

	return nil
}
