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
	"errors"
	"fmt"
	"math"

	"github.com/wtsi-hgi/gplot/command"
)

// Direction is the order in which panels fill a multiplot grid.
type Direction string

const (
	// ByRow fills each row left to right before moving down.
	ByRow Direction = "row"

	// ByColumn fills each column top to bottom before moving right.
	ByColumn Direction = "col"
)

// ErrUnknownDirection is returned for a Layout whose Direction is neither
// ByRow nor ByColumn.
var ErrUnknownDirection = errors.New("unknown multiplot direction")

// ErrSelfPanel is returned when a session is asked to draw itself as a panel.
var ErrSelfPanel = errors.New("a session can't be its own panel")

// Layout describes a grid of panels on one canvas.
//
// With neither Rows nor Cols set, Cols is the integer square root of the
// number of panels. Otherwise Rows is derived from Cols when Cols is set, else
// Cols from Rows. An empty Direction means ByRow.
type Layout struct {
	Rows      int
	Cols      int
	Direction Direction
}

// Cell is the placement of one panel, in fractions of the canvas with the
// origin at the bottom left.
type Cell struct {
	X, Y          float64
	Width, Height float64
}

// Cells returns the placement of each of n panels, in the order they fill the
// grid.
func (l Layout) Cells(n int) ([]Cell, error) {
	dir := l.Direction
	if dir == "" {
		dir = ByRow
	}

	if dir != ByRow && dir != ByColumn {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDirection, dir)
	}

	if n <= 0 {
		return nil, nil
	}

	rows, cols := l.grid(n)
	width, height := 1/float64(cols), 1/float64(rows)
	cells := make([]Cell, n)

	var x, y int

	for i := range cells {
		cells[i] = Cell{
			X:      float64(x) * width,
			Y:      1 - float64(y+1)*height,
			Width:  width,
			Height: height,
		}

		if dir == ByRow {
			x++
		} else {
			y++
		}

		if x >= cols {
			x = 0
			y++
		}

		if y >= rows {
			y = 0
			x++
		}
	}

	return cells, nil
}

func (l Layout) grid(n int) (int, int) {
	rows, cols := l.Rows, l.Cols

	if rows <= 0 && cols <= 0 {
		cols = max(1, int(math.Sqrt(float64(n))))
	}

	if cols > 0 {
		return ceilDiv(n, cols), cols
	}

	return rows, ceilDiv(n, rows)
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// MultiPlot makes the session draw the given sessions as panels of a grid
// instead of its own series, then replots. Each panel is drawn as it would
// draw itself, so later changes to a panel show on the next replot of this
// session. Calling it with no panels returns the session to drawing its own
// series.
//
// Panels should not themselves have panels that lead back to this session.
func (s *Session) MultiPlot(layout Layout, panels ...*Session) error {
	if _, err := layout.Cells(len(panels)); err != nil {
		return err
	}

	for _, p := range panels {
		if p == s {
			return ErrSelfPanel
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.layout = layout
	s.panels = append([]*Session(nil), panels...)

	s.log.Debug("multiplot set", "panels", len(panels), "direction", string(layout.Direction))

	return s.drawLocked()
}

// multiplotLocked returns the script drawing every panel in its cell. Text
// labels are reset before each panel so one panel's title doesn't carry over
// to the next.
func (s *Session) multiplotLocked() *command.Script {
	sc := &command.Script{}
	cells, _ := s.layout.Cells(len(s.panels)) //nolint:errcheck

	sc.Add(command.Placement{Width: 1, Height: 1}, command.Multiplot{On: true})

	for i, p := range s.panels {
		directives := p.directives()
		if len(directives) == 0 {
			continue
		}

		c := cells[i]
		sc.Add(command.Placement{X: c.X, Y: c.Y, Width: c.Width, Height: c.Height})

		for _, target := range labelTargets {
			sc.Add(command.Label{Target: target})
		}

		sc.Add(directives...)
	}

	sc.Add(command.Multiplot{})

	return sc
}

// directives returns what the session would draw, or nothing if it has
// nothing to draw.
func (s *Session) directives() []command.Directive {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.emptyLocked() {
		return nil
	}

	return s.scriptLocked().Directives()
}

// Send passes raw engine commands straight to the engine, starting it if
// needed. The text isn't kept, so Script() doesn't include it, but settings it
// changes stay in effect for later replots.
func (s *Session) Send(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.openLocked(); err != nil {
		return err
	}

	s.log.Debug("raw commands sent", "bytes", len(text))

	return s.sendDirectivesLocked(command.Raw{Text: text})
}
