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
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgryski/go-farm"
	"github.com/wtsi-hgi/gplot/barrier"
	"github.com/wtsi-hgi/gplot/command"
	"github.com/wtsi-hgi/gplot/errs"
)

const (
	FormatPostscript = "ps"
	FormatEPS        = "eps"
	FormatPDF        = "pdf"
	FormatGIF        = "gif"
	FormatPNG        = "png"
	FormatJPEG       = "jpeg"
	FormatSVG        = "svg"

	DefaultCaptureFormat = FormatPostscript

	literalExt     = ".out"
	capturePrefix  = "gplot-capture"
	sentinelPrefix = "gplot-sync"
	resultsPrefix  = "gplot-fit"
)

// ErrNoSeries is returned when capturing a plot that has nothing in it.
var ErrNoSeries = errors.New("no series to plot")

// format describes an output format the engine supports.
type format struct {
	terminal string
	ext      string
}

var formats = map[string]format{ //nolint:gochecknoglobals
	FormatPostscript: {"postscript color", ".ps"},
	FormatEPS:        {"postscript eps color", ".eps"},
	FormatPDF:        {"pdf", ".pdf"},
	FormatGIF:        {"gif", ".gif"},
	FormatPNG:        {"png", ".png"},
	FormatJPEG:       {"jpeg", ".jpg"},
	FormatSVG:        {"svg", ".svg"},
}

var extFormats = map[string]string{ //nolint:gochecknoglobals
	".ps":   FormatPostscript,
	".eps":  FormatEPS,
	".pdf":  FormatPDF,
	".gif":  FormatGIF,
	".png":  FormatPNG,
	".jpg":  FormatJPEG,
	".jpeg": FormatJPEG,
	".svg":  FormatSVG,
}

// FormatFromName returns the output format implied by the extension of path.
// Returns an errs.UnsupportedFormat error if the extension isn't recognised.
func FormatFromName(path string) (string, error) {
	f, ok := extFormats[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return "", errs.New(errs.ErrUnsupportedFormat, path)
	}

	return f, nil
}

// canonical returns the name we know format f by, or "" if we don't know it.
func canonical(f string) string {
	f = strings.ToLower(f)

	switch f {
	case "jpg":
		return FormatJPEG
	case "postscript":
		return FormatPostscript
	}

	if _, ok := formats[f]; ok {
		return f
	}

	return ""
}

// Terminal returns the engine terminal for the given format. Formats we don't
// know are passed to the engine as they are.
func Terminal(f string) string {
	if c := canonical(f); c != "" {
		return formats[c].terminal
	}

	return f
}

// Extension returns the file extension for files of the given format.
func Extension(f string) string {
	if c := canonical(f); c != "" {
		return formats[c].ext
	}

	return literalExt
}

// tempName returns a path in our temp dir that no other session or call will
// use.
func (s *Session) tempName(prefix, ext string) string {
	s.seq++

	key := fmt.Sprintf("%d.%d.%d.%d", os.Getpid(), s.id, s.seq, time.Now().UnixNano())

	return filepath.Join(s.cfg.TempDir, fmt.Sprintf("%s-%016x%s", prefix, farm.Fingerprint64([]byte(key)), ext))
}

// SetOutputTarget sends the engine's output to filename in the given format,
// restarting the engine if it isn't running.
//
// An empty format is worked out from filename's extension, giving an
// errs.UnsupportedFormat error if that can't be done. An empty filename means
// a new temporary file, named with an extension matching the format (default
// postscript). The path used is returned.
func (s *Session) SetOutputTarget(filename, format string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.setOutputTargetLocked(filename, format)
}

func (s *Session) setOutputTargetLocked(filename, format string) (string, error) {
	t := &target{path: filename, format: format}

	if filename == "" {
		if t.format == "" {
			t.format = DefaultCaptureFormat
		}

		t.path = s.tempName(capturePrefix, Extension(t.format))
		t.temp = true
	} else if t.format == "" {
		f, err := FormatFromName(filename)
		if err != nil {
			return "", err
		}

		t.format = f
	}

	if err := s.openLocked(); err != nil {
		return "", err
	}

	if err := s.sendDirectivesLocked(command.Terminal{Name: Terminal(t.format)},
		command.Output{Path: t.path}); err != nil {
		return "", err
	}

	s.target = t
	s.log.Debug("output redirected", "path", t.path, "format", t.format)

	return t.path, nil
}

// OutputTarget returns the file the engine is currently sending output to, and
// its format. Empty strings mean the interactive terminal. temp is true for
// files we chose, which will be deleted once read.
func (s *Session) OutputTarget() (path, format string, temp bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.target == nil {
		return "", "", false
	}

	return s.target.path, s.target.format, s.target.temp
}

// restoreLocked sends output back to the interactive terminal.
func (s *Session) restoreLocked() error {
	s.target = nil

	return s.sendDirectivesLocked(command.Terminal{Name: s.cfg.Terminal}, command.Output{})
}

// Capture renders the plot in the given format (default postscript).
//
// With an empty filename, the plot is rendered to a temporary file, and once
// the engine has finished writing it its contents are returned and the file
// is deleted. If the engine doesn't finish within the barrier's timeout, an
// errs.Timeout error is returned.
//
// With a filename, the plot is rendered to that file (the format being worked
// out from its extension if not supplied) and nil is returned without waiting.
//
// Either way, output is then restored to the interactive terminal.
func (s *Session) Capture(ctx context.Context, filename, format string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.usableLocked(); err != nil {
		return nil, err
	}

	if s.emptyLocked() {
		return nil, ErrNoSeries
	}

	path, err := s.setOutputTargetLocked(filename, format)
	if err != nil {
		return nil, err
	}

	if err = s.replotLocked(); err != nil {
		return nil, err
	}

	if filename != "" {
		return nil, s.restoreLocked()
	}

	return s.collectLocked(ctx, path)
}

func (s *Session) collectLocked(ctx context.Context, path string) ([]byte, error) {
	defer os.Remove(path) //nolint:errcheck

	if err := s.syncLocked(ctx); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	s.log.Debug("captured plot", "bytes", len(data))

	return data, nil
}

// Sync waits until the engine has executed everything sent to it so far.
func (s *Session) Sync(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.usableLocked(); err != nil {
		return err
	}

	return s.syncLocked(ctx)
}

// syncLocked sends the sentinel commands and waits for the sentinel file,
// deleting it afterwards. Output is restored to the interactive terminal
// whether or not the wait succeeds.
func (s *Session) syncLocked(ctx context.Context) error {
	sentinel := s.tempName(sentinelPrefix, ".ps")

	if err := s.sendDirectivesLocked(barrier.Sentinel(sentinel)...); err != nil {
		return err
	}

	waitErr := s.cfg.Barrier.WaitAndRemove(ctx, sentinel)
	if waitErr != nil {
		s.log.Error("engine did not finish", "err", waitErr)
		os.Remove(sentinel) //nolint:errcheck
	}

	if err := s.restoreLocked(); err != nil && waitErr == nil {
		return err
	}

	return waitErr
}

// SaveAll writes the series table to prefix.tab and renders the plot to
// prefix.png and prefix.ps.
func (s *Session) SaveAll(ctx context.Context, prefix string) error {
	if err := s.ExportSeriesTable(prefix + ".tab"); err != nil {
		return err
	}

	for _, ext := range []string{".png", ".ps"} {
		if _, err := s.Capture(ctx, prefix+ext, ""); err != nil {
			return err
		}
	}

	return nil
}
