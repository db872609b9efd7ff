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

package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/wtsi-hgi/gplot/engine"
	"github.com/wtsi-hgi/gplot/gnuplot"
	"github.com/wtsi-hgi/gplot/internal"
	"github.com/wtsi-hgi/gplot/options"
	"github.com/wtsi-hgi/gplot/store"
)

func TestRenderAll(t *testing.T) {
	Convey("Given some stored plots", t, func() {
		dir := t.TempDir()

		db, err := store.New(filepath.Join(dir, "plots.db"))
		So(err, ShouldBeNil)

		defer db.Close()

		names := []string{"a", "b", "c", "d", "e"}

		for i, name := range names {
			s := gnuplot.New(nil, gnuplot.Config{})
			So(s.Plot([]float64{float64(i), float64(i + 1)}, options.Title(name)), ShouldBeNil)
			So(db.Put(store.FromSession(name, s)), ShouldBeNil)
		}

		So(db.Put(&store.Plot{Name: "empty"}), ShouldBeNil)

		var (
			mu      sync.Mutex
			engines []*internal.LocalEngine
		)

		factory := func() (engine.Backend, error) {
			mu.Lock()
			defer mu.Unlock()

			eng := internal.NewLocalEngine()
			engines = append(engines, eng)

			return eng, nil
		}

		outDir := t.TempDir()
		r := New(2, factory, gnuplot.Config{TempDir: t.TempDir()})

		defer r.Stop()

		Convey("They can all be rendered concurrently", func() {
			jobs, errj := Jobs(db, names, outDir, gnuplot.FormatPNG)
			So(errj, ShouldBeNil)
			So(jobs[0].Path, ShouldEqual, filepath.Join(outDir, "a.png"))

			results := r.RenderAll(context.Background(), jobs)
			So(len(results), ShouldEqual, len(names))

			for i, result := range results {
				So(result.Err, ShouldBeNil)
				So(result.Name, ShouldEqual, names[i])
				So(result.Bytes, ShouldBeGreaterThan, 0)

				content, errr := os.ReadFile(result.Path)
				So(errr, ShouldBeNil)
				So(internal.IsStubImage(content), ShouldBeTrue)
				So(string(content), ShouldContainSubstring, "png")
			}

			So(len(engines), ShouldEqual, len(names))

			for _, eng := range engines {
				So(eng.Closes, ShouldEqual, 1)
			}
		})

		Convey("Failures are reported per job", func() {
			jobs, errj := Jobs(db, []string{"a", "empty"}, outDir, gnuplot.FormatPostscript)
			So(errj, ShouldBeNil)

			results := r.RenderAll(context.Background(), jobs)
			So(results[0].Err, ShouldBeNil)
			So(results[1].Err, ShouldEqual, gnuplot.ErrNoSeries)

			_, err = os.Stat(results[1].Path)
			So(os.IsNotExist(err), ShouldBeTrue)
		})

		Convey("Unknown plots can't be made into jobs", func() {
			_, err = Jobs(db, []string{"a", "missing"}, outDir, gnuplot.FormatPNG)
			So(err, ShouldNotBeNil)
		})

		Convey("Engines that can't be made are reported", func() {
			broken := New(0, func() (engine.Backend, error) {
				return nil, errors.New("no engine")
			}, gnuplot.Config{})

			defer broken.Stop()

			jobs, errj := Jobs(db, names[:1], outDir, gnuplot.FormatPNG)
			So(errj, ShouldBeNil)

			results := broken.RenderAll(context.Background(), jobs)
			So(fmt.Sprint(results[0].Err), ShouldEqual, "no engine")
		})
	})
}
