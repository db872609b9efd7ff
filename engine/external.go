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

// this file implements a Backend that drives an external gnuplot process over
// its stdin.

package engine

import (
	"bufio"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/wtsi-hgi/gplot/errs"
	"golang.org/x/term"
)

const (
	DefaultEngine = "gnuplot"

	closeGracePeriod = 5 * time.Second
)

// Find returns the path to the named engine executable, found in PATH.
func Find(name string) (string, error) {
	if name == "" {
		name = DefaultEngine
	}

	path, err := exec.LookPath(name)
	if err != nil {
		return "", errs.Wrap(errs.ErrEngineUnavailable, name, err)
	}

	return path, nil
}

// NewLogger returns a zerolog logger writing to STDERR: human readable if
// STDERR is a terminal, JSON otherwise.
func NewLogger() zerolog.Logger {
	var writer io.Writer = os.Stderr

	if term.IsTerminal(int(os.Stderr.Fd())) {
		writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}

	return zerolog.New(zerolog.SyncWriter(writer)).With().Timestamp().Str("component", "engine").Logger()
}

// External is a Backend that runs an engine executable as a child process and
// writes scripts to its STDIN. Anything the process writes to STDOUT or STDERR
// is logged.
type External struct {
	path string
	args []string
	log  zerolog.Logger

	mu     sync.Mutex
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	w      *bufio.Writer
	exited chan struct{}
	runErr error
}

// NewExternal returns an External that will run the executable at path with
// the given args when opened. Output of the process is logged to log.
func NewExternal(log zerolog.Logger, path string, args ...string) *External {
	return &External{
		path: path,
		args: args,
		log:  log,
	}
}

// Open starts the process if it isn't already running. A process that has
// exited is replaced with a new one.
func (e *External) Open() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.aliveLocked() {
		return nil
	}

	if e.stdin != nil {
		e.stdin.Close() //nolint:errcheck
	}

	cmd := exec.Command(e.path, e.args...) //nolint:gosec,noctx

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return errs.Wrap(errs.ErrEngineUnavailable, e.path, err)
	}

	out, err := cmd.StdoutPipe()
	if err != nil {
		return errs.Wrap(errs.ErrEngineUnavailable, e.path, err)
	}

	cmd.Stderr = cmd.Stdout

	if err = cmd.Start(); err != nil {
		return errs.Wrap(errs.ErrEngineUnavailable, e.path, err)
	}

	e.log.Debug().Str("path", e.path).Int("pid", cmd.Process.Pid).Msg("engine started")

	e.cmd = cmd
	e.stdin = stdin
	e.w = bufio.NewWriter(stdin)
	e.exited = make(chan struct{})
	e.runErr = nil

	outputDone := make(chan struct{})

	go e.logOutput(out, outputDone)
	go e.wait(cmd, outputDone, e.exited)

	return nil
}

func (e *External) logOutput(r io.Reader, done chan struct{}) {
	defer close(done)

	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		e.log.Warn().Str("path", e.path).Msg(scanner.Text())
	}
}

// wait waits for the process to exit, after its output has been fully read.
func (e *External) wait(cmd *exec.Cmd, outputDone, exited chan struct{}) {
	<-outputDone

	err := cmd.Wait()

	e.mu.Lock()
	e.runErr = err
	e.mu.Unlock()

	if err != nil {
		e.log.Error().Err(err).Str("path", e.path).Msg("engine exited")
	} else {
		e.log.Debug().Str("path", e.path).Msg("engine exited")
	}

	close(exited)
}

// Send writes script to the process and flushes it.
func (e *External) Send(script []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.aliveLocked() {
		return e.unavailable()
	}

	if _, err := e.w.Write(script); err != nil {
		return errs.Wrap(errs.ErrEngineUnavailable, e.path, err)
	}

	if err := e.w.Flush(); err != nil {
		return errs.Wrap(errs.ErrEngineUnavailable, e.path, err)
	}

	return nil
}

func (e *External) unavailable() error {
	if e.cmd == nil {
		return errs.New(errs.ErrEngineUnavailable, e.path+" not started")
	}

	return errs.Wrap(errs.ErrEngineUnavailable, e.path+" exited", e.runErr)
}

// Alive returns true if the process has been started and hasn't exited.
func (e *External) Alive() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.aliveLocked()
}

func (e *External) aliveLocked() bool {
	if e.cmd == nil {
		return false
	}

	select {
	case <-e.exited:
		return false
	default:
		return true
	}
}

// Close closes the process' STDIN so that it exits, killing it if it hasn't
// exited after a grace period. Does nothing if not running.
func (e *External) Close() error {
	e.mu.Lock()

	if e.cmd == nil {
		e.mu.Unlock()

		return nil
	}

	var flushErr error

	if e.aliveLocked() {
		flushErr = e.w.Flush()
	}

	cmd, exited := e.cmd, e.exited
	e.cmd = nil

	closeErr := e.stdin.Close()
	e.mu.Unlock()

	select {
	case <-exited:
	case <-time.After(closeGracePeriod):
		e.log.Warn().Str("path", e.path).Msg("engine did not exit; killing it")

		if err := cmd.Process.Kill(); err != nil {
			return err
		}

		<-exited
	}

	if flushErr != nil {
		return flushErr
	}

	return ignoreClosed(closeErr)
}

func ignoreClosed(err error) error {
	if err == nil || err == os.ErrClosed { //nolint:errorlint
		return nil
	}

	return err
}
