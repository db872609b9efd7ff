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

// package gnuplot drives a gnuplot engine: it accumulates data series and
// rendering options, and re-sends the whole plot to the engine whenever they
// change. It can also capture rendered images and fit curves to data.
//
// A Session is safe for concurrent use, but the engine only ever sees one
// script at a time, so concurrent callers are serialised.

package gnuplot

import (
	"os"
	"sync"
	"sync/atomic"

	"github.com/inconshreveable/log15"
	"github.com/wtsi-hgi/gplot/barrier"
	"github.com/wtsi-hgi/gplot/command"
	"github.com/wtsi-hgi/gplot/engine"
	"github.com/wtsi-hgi/gplot/errs"
	"github.com/wtsi-hgi/gplot/options"
	"github.com/wtsi-hgi/gplot/series"
)

const (
	DefaultTerminal = "x11"

	errClosed   = "session closed"
	errDisabled = "session disabled"
)

// labelTargets are the text elements of a plot, in the order they're set.
var labelTargets = []string{"title", "xlabel", "ylabel", "zlabel"} //nolint:gochecknoglobals

var sessionCounter atomic.Uint64 //nolint:gochecknoglobals

// toggles are the display toggles sent at the start of every plot.
var toggles = []string{"mouse", "mxtics", "mytics", "mztics"} //nolint:gochecknoglobals

// marginSides are the canvas sides whose margins are sent.
var marginSides = []string{"t", "b", "l", "r"} //nolint:gochecknoglobals

// Config configures a Session.
type Config struct {
	// Terminal is the interactive terminal restored after output has been sent
	// to a file. Defaults to DefaultTerminal.
	Terminal string

	// TempDir is where capture, sentinel and fit result files are made.
	// Defaults to os.TempDir().
	TempDir string

	// Barrier is used to wait for the engine to finish. A zero value waits
	// for up to barrier.DefaultTimeout.
	Barrier barrier.Barrier

	// Defaults are the starting session defaults. nil means
	// options.Defaults().
	Defaults *options.Set

	// Logger defaults to one that discards everything.
	Logger log15.Logger
}

func (c Config) withDefaults() Config {
	if c.Terminal == "" {
		c.Terminal = DefaultTerminal
	}

	if c.TempDir == "" {
		c.TempDir = os.TempDir()
	}

	if c.Barrier.Timeout <= 0 {
		c.Barrier = barrier.New(c.Barrier.Timeout)
	}

	if c.Logger == nil {
		c.Logger = log15.New()
		c.Logger.SetHandler(log15.DiscardHandler())
	}

	return c
}

// target is where the engine is currently sending output.
type target struct {
	path   string
	format string
	temp   bool
}

// Session is a plot made of an ordered list of series and a set of default
// options, rendered by a Backend.
type Session struct {
	cfg     Config
	backend engine.Backend
	log     log15.Logger
	id      uint64
	seq     uint64

	mu       sync.Mutex
	enabled  bool
	opened   bool
	closed   bool
	defaults options.Set
	series   []*series.Series
	target   *target
	panels   []*Session
	layout   Layout

	closeOnce sync.Once
	closeErr  error
}

// New returns a Session that renders with the given backend, which is opened
// lazily the first time something needs to be drawn. A nil backend gives a
// disabled session that never sends anything.
func New(backend engine.Backend, cfg Config) *Session {
	cfg = cfg.withDefaults()

	defaults := options.Defaults()
	if cfg.Defaults != nil {
		defaults = cfg.Defaults.Clone()
	}

	s := &Session{
		cfg:      cfg,
		backend:  backend,
		enabled:  backend != nil,
		defaults: defaults,
		id:       sessionCounter.Add(1),
	}

	if backend == nil {
		s.backend = engine.Null{}
	}

	s.log = cfg.Logger.New("session", s.id)

	return s
}

// Enable turns rendering on or off. While disabled nothing is sent to the
// engine, but series and options are still accumulated.
func (s *Session) Enable(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.enabled = on
}

// Enabled says if rendering is on.
func (s *Session) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.enabled && !s.closed
}

// SetOptions merges opts over the session defaults, then replots. Error bar
// options are ignored, since they only apply to a single series.
func (s *Session) SetOptions(opts ...options.Option) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.defaults = options.Merge(s.defaults, opts...).Set

	return s.replotLocked()
}

// SetOptionsNoReplot is like SetOptions, but doesn't replot.
func (s *Session) SetOptionsNoReplot(opts ...options.Option) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.defaults = options.Merge(s.defaults, opts...).Set
}

// AddSeries adds a data series and replots.
//
// If second is nil, first holds the y values and x defaults to 0..n-1. third
// holds optional z values. opts apply to this call only, merged over the
// session defaults, though the plot wide ones (title, labels, ranges and so on)
// are kept as the new defaults. If the lists differ in length an
// errs.ShapeMismatch error is returned and the session is unchanged.
func (s *Session) AddSeries(first, second, third []float64, opts ...options.Option) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ser, err := s.newSeriesLocked(first, second, third, opts)
	if err != nil {
		return err
	}

	s.appendLocked(ser)

	return s.drawLocked()
}

func (s *Session) newSeriesLocked(first, second, third []float64, opts []options.Option) (*series.Series, error) {
	call := options.Merge(s.defaults, opts...)

	ser, err := series.New(first, second, third, call)
	if err != nil {
		s.log.Warn("series rejected", "err", err)

		return nil, err
	}

	s.defaults = call.Set.PlotLevel(s.defaults)

	return ser, nil
}

func (s *Session) appendLocked(ser ...*series.Series) {
	s.series = append(s.series, ser...)
}

// Plot adds a series of y values plotted against their indexes.
func (s *Session) Plot(y []float64, opts ...options.Option) error {
	return s.AddSeries(y, nil, nil, opts...)
}

// PlotXY adds a series of y values plotted against x.
func (s *Session) PlotXY(x, y []float64, opts ...options.Option) error {
	return s.AddSeries(x, y, nil, opts...)
}

// PlotEquation adds a formula series, which the engine plots from eqn.
func (s *Session) PlotEquation(eqn string, opts ...options.Option) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	call := options.Merge(s.defaults, opts...)
	s.defaults = call.Set.PlotLevel(s.defaults)
	s.appendLocked(series.NewFormula(eqn, call.Set))

	return s.drawLocked()
}

// Clear removes all series and panels. The engine is left running.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.series = nil
	s.panels = nil
}

// SetXRange fixes the x axis range and replots. Auto bounds are computed from
// the data.
func (s *Session) SetXRange(lo, hi options.Bound) error {
	return s.SetOptions(options.Min(options.X, lo), options.Max(options.X, hi))
}

// SetYRange fixes the y axis range and replots.
func (s *Session) SetYRange(lo, hi options.Bound) error {
	return s.SetOptions(options.Min(options.Y, lo), options.Max(options.Y, hi))
}

// SetZRange fixes the z axis range and replots.
func (s *Session) SetZRange(lo, hi options.Bound) error {
	return s.SetOptions(options.Min(options.Z, lo), options.Max(options.Z, hi))
}

// SetLogScale makes the given axis logarithmic with the given base, or linear
// if base is 0, and replots.
func (s *Session) SetLogScale(a options.Axis, base int) error {
	return s.SetOptions(options.Log(a, base))
}

// LogLog makes the x and y axes logarithmic and replots.
func (s *Session) LogLog(base int) error {
	return s.SetOptions(options.Log(options.X, base), options.Log(options.Y, base))
}

// ClearLogScale makes all axes linear and replots.
func (s *Session) ClearLogScale() error {
	opts := make([]options.Option, len(options.Axes))
	for i, a := range options.Axes {
		opts[i] = options.Log(a, 0)
	}

	return s.SetOptions(opts...)
}

// Series returns the current series, in the order they were added.
func (s *Session) Series() []*series.Series {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*series.Series, len(s.series))
	copy(out, s.series)

	return out
}

// Defaults returns a copy of the current session defaults.
func (s *Session) Defaults() options.Set {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.defaults.Clone()
}

// Restore replaces the defaults and series, eg. with ones previously taken
// from Defaults() and Series(), then replots.
func (s *Session) Restore(defaults options.Set, list []*series.Series) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.defaults = defaults.Clone()
	s.series = append([]*series.Series(nil), list...)

	return s.replotLocked()
}

// Replot sends the whole plot to the engine. It does nothing if there are no
// series or the session is disabled.
func (s *Session) Replot() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.replotLocked()
}

func (s *Session) replotLocked() error {
	if !s.enabled || s.emptyLocked() {
		return nil
	}

	if !s.opened {
		if err := s.openLocked(); err != nil {
			return err
		}
	}

	return s.sendLocked(s.scriptLocked().Bytes())
}

// Script returns what Replot would send.
func (s *Session) Script() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.emptyLocked() {
		return nil
	}

	return s.scriptLocked().Bytes()
}

// emptyLocked says if there is nothing to draw.
func (s *Session) emptyLocked() bool {
	return len(s.series) == 0 && len(s.panels) == 0
}

func (s *Session) scriptLocked() *command.Script {
	if len(s.panels) > 0 {
		return s.multiplotLocked()
	}

	sc := &command.Script{}
	d := s.defaults

	for _, name := range toggles {
		sc.Add(command.Toggle{Name: name})
	}

	for _, side := range marginSides {
		sc.Add(command.Margin{Side: side, Value: d.Margin})
	}

	for _, a := range options.Axes {
		sc.Add(command.Tics{Axis: a, Interval: d.Axis(a).Tics})
	}

	for _, a := range options.Axes {
		sc.Add(command.LogScale{Axis: a, Base: d.Axis(a).Log})
	}

	threeD := s.series[0].ThreeD()
	b := series.FindRange(s.series, d.RangeMargin).Override(d)

	sc.Add(command.Range{Axis: options.X, Min: b.Left, Max: b.Right},
		command.Range{Axis: options.Y, Min: b.Bottom, Max: b.Top})

	if threeD {
		sc.Add(command.Range{Axis: options.Z, Min: d.ZMin, Max: d.ZMax})
	}

	s.addLabels(sc)
	s.addDrawing(sc, threeD)

	return sc
}

func (s *Session) addLabels(sc *command.Script) {
	texts := []string{s.defaults.Title, s.defaults.XLabel, s.defaults.YLabel, s.defaults.ZLabel}

	for i, text := range texts {
		if text != "" {
			sc.Add(command.Label{Target: labelTargets[i], Text: text})
		}
	}
}

func (s *Session) addDrawing(sc *command.Script, threeD bool) {
	draw := command.Draw{ThreeD: threeD, Items: make([]command.DrawItem, len(s.series))}

	for i, ser := range s.series {
		draw.Items[i] = command.DrawItem{
			Eqn:   ser.Options.Eqn,
			Style: ser.Options.Style,
			Title: ser.Options.Label,
		}
	}

	sc.Add(draw)

	for _, ser := range s.series {
		if !ser.IsFormula() {
			sc.Add(command.Data{Rows: ser.Rows()})
		}
	}
}

// drawLocked makes sure the engine is running, then replots. Does nothing if
// disabled.
func (s *Session) drawLocked() error {
	if !s.enabled {
		return nil
	}

	if err := s.openLocked(); err != nil {
		return err
	}

	return s.replotLocked()
}

// openLocked (re)starts the engine if it isn't running.
func (s *Session) openLocked() error {
	if err := s.usableLocked(); err != nil {
		return err
	}

	if s.opened && s.backend.Alive() {
		return nil
	}

	if err := s.backend.Open(); err != nil {
		s.log.Error("engine failed to start", "err", err)

		return err
	}

	s.opened = true

	return nil
}

func (s *Session) usableLocked() error {
	if s.closed {
		return errs.New(errs.ErrEngineUnavailable, errClosed)
	}

	if !s.enabled {
		return errs.New(errs.ErrEngineUnavailable, errDisabled)
	}

	return nil
}

func (s *Session) sendLocked(script []byte) error {
	if err := s.usableLocked(); err != nil {
		return err
	}

	if err := s.backend.Send(script); err != nil {
		s.log.Error("engine write failed", "err", err)

		return err
	}

	return nil
}

func (s *Session) sendDirectivesLocked(d ...command.Directive) error {
	sc := &command.Script{}
	sc.Add(d...)

	return s.sendLocked(sc.Bytes())
}

// Close stops the engine. Only the first call has any effect; after it the
// session can no longer render.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		s.closed = true
		s.closeErr = s.backend.Close()
		s.log.Debug("session closed", "err", s.closeErr)
	})

	return s.closeErr
}
