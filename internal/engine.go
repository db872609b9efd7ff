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

package internal

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/wtsi-hgi/gplot/errs"
	"github.com/wtsi-hgi/gplot/options"
)

const (
	UserPerms = 0700
	FilePerms = 0600

	stubImageHeader = "%!GPLOT-STUB"
	reservedVar     = "MOUSE_X = 9"
)

// LocalEngine satisfies the engine.Backend interface without running gnuplot.
// It interprets just enough of the command language to act like gnuplot as far
// as the filesystem is concerned: plotting while output is set to a file writes
// that file, and "save var" writes a variables file. For use during tests.
type LocalEngine struct {
	// Silent engines never write any files, like a hung or crashed gnuplot.
	Silent bool

	// FitResults are the variables written by "save var" (along with a
	// reserved MOUSE_ variable and a comment).
	FitResults map[string]float64

	// RawResults, if set, is written by "save var" instead of FitResults.
	RawResults string

	Scripts [][]byte
	Written []string
	Opens   int
	Closes  int

	open     bool
	dead     bool
	terminal string
	output   string
	mu       sync.Mutex
}

// NewLocalEngine returns a LocalEngine.
func NewLocalEngine() *LocalEngine {
	return &LocalEngine{}
}

// Open records that we were opened. A dead engine is revived.
func (l *LocalEngine) Open() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.open && !l.dead {
		return nil
	}

	l.Opens++
	l.open = true
	l.dead = false

	return nil
}

// Alive returns true if opened and not killed.
func (l *LocalEngine) Alive() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.open && !l.dead
}

// Kill makes subsequent Send()s fail, as if the process had died.
func (l *LocalEngine) Kill() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.dead = true
}

// Close records that we were closed.
func (l *LocalEngine) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.Closes++
	l.open = false

	return nil
}

// Send records the script and interprets it.
func (l *LocalEngine) Send(script []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.open || l.dead {
		return errs.New(errs.ErrEngineUnavailable, "local engine")
	}

	l.Scripts = append(l.Scripts, bytes.Clone(script))

	return l.interpret(script)
}

// All returns every script sent so far, concatenated.
func (l *LocalEngine) All() string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return string(bytes.Join(l.Scripts, nil))
}

// Last returns the last script sent, or an empty string.
func (l *LocalEngine) Last() string {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.Scripts) == 0 {
		return ""
	}

	return string(l.Scripts[len(l.Scripts)-1])
}

// Reset forgets the scripts sent so far.
func (l *LocalEngine) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.Scripts = nil
	l.Written = nil
}

func (l *LocalEngine) interpret(script []byte) error {
	scanner := bufio.NewScanner(bytes.NewReader(script))

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		switch {
		case strings.HasPrefix(line, "set terminal "):
			l.terminal = strings.TrimPrefix(line, "set terminal ")
		case line == "set output":
			l.output = ""
		case strings.HasPrefix(line, "set output "):
			path, err := strconv.Unquote(strings.TrimPrefix(line, "set output "))
			if err != nil {
				return err
			}

			l.output = path
		case strings.HasPrefix(line, "plot ") || strings.HasPrefix(line, "splot "):
			skipBlocks(scanner, strings.Count(line, `"-"`)+strings.Count(line, `'-'`))

			if err := l.draw(line); err != nil {
				return err
			}
		case strings.HasPrefix(line, "fit "):
			skipBlocks(scanner, 1)
		case strings.HasPrefix(line, "save var "):
			path, err := strconv.Unquote(strings.TrimPrefix(line, "save var "))
			if err != nil {
				return err
			}

			if err := l.saveVars(path); err != nil {
				return err
			}
		}
	}

	return scanner.Err()
}

func skipBlocks(scanner *bufio.Scanner, n int) {
	for i := 0; i < n; i++ {
		for scanner.Scan() {
			if strings.TrimSpace(scanner.Text()) == "e" {
				break
			}
		}
	}
}

func (l *LocalEngine) draw(line string) error {
	if l.output == "" {
		return nil
	}

	content := fmt.Sprintf("%s %s\n%s\n", stubImageHeader, l.terminal, line)

	return l.write(l.output, content)
}

func (l *LocalEngine) saveVars(path string) error {
	content := l.RawResults

	if content == "" {
		var b strings.Builder

		b.WriteString("#!/usr/bin/gnuplot\n# saved by a stub engine\n")

		names := make([]string, 0, len(l.FitResults))
		for name := range l.FitResults {
			names = append(names, name)
		}

		sort.Strings(names)

		for _, name := range names {
			fmt.Fprintf(&b, "%s = %s\n", name, options.FormatNumber(l.FitResults[name]))
		}

		b.WriteString(reservedVar + "\n")
		content = b.String()
	}

	return l.write(path, content)
}

func (l *LocalEngine) write(path, content string) error {
	if l.Silent {
		return nil
	}

	l.Written = append(l.Written, path)

	return os.WriteFile(path, []byte(content), FilePerms)
}

// Terminal returns the currently selected terminal.
func (l *LocalEngine) Terminal() string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.terminal
}

// Output returns the current output path; empty means the default.
func (l *LocalEngine) Output() string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.output
}

// IsStubImage returns true if content was written by a LocalEngine plot.
func IsStubImage(content []byte) bool {
	return bytes.HasPrefix(content, []byte(stubImageHeader))
}
