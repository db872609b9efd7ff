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

// package batch renders many plots to image files at once. Each plot gets its
// own session and engine, since a single engine can only draw one thing at a
// time.

package batch

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/gammazero/workerpool"
	"github.com/inconshreveable/log15"
	"github.com/wtsi-hgi/gplot/engine"
	"github.com/wtsi-hgi/gplot/gnuplot"
	"github.com/wtsi-hgi/gplot/store"
)

const (
	DefaultWorkers = 4

	outputPerms = 0644
)

// BackendFactory returns a new, unopened engine each time it is called.
type BackendFactory func() (engine.Backend, error)

// Job is a plot to render to a file.
type Job struct {
	Plot   *store.Plot
	Path   string
	Format string
}

// Result is the outcome of a Job.
type Result struct {
	Name     string
	Path     string
	Bytes    int
	Duration time.Duration
	Err      error
}

// Renderer renders Jobs concurrently.
type Renderer struct {
	pool       *workerpool.WorkerPool
	newBackend BackendFactory
	cfg        gnuplot.Config
	log        log15.Logger
}

// New returns a Renderer that runs up to workers engines at once, each made
// by newBackend and driven by a session configured with cfg.
func New(workers int, newBackend BackendFactory, cfg gnuplot.Config) *Renderer {
	if workers < 1 {
		workers = DefaultWorkers
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log15.New()
		logger.SetHandler(log15.DiscardHandler())
	}

	return &Renderer{
		pool:       workerpool.New(workers),
		newBackend: newBackend,
		cfg:        cfg,
		log:        logger.New("component", "batch"),
	}
}

// Jobs returns a Job for each of the named plots in db, rendering to a file
// named after the plot in dir.
func Jobs(db *store.DB, names []string, dir, format string) ([]Job, error) {
	jobs := make([]Job, 0, len(names))

	for _, name := range names {
		p, err := db.Get(name)
		if err != nil {
			return nil, err
		}

		jobs = append(jobs, Job{
			Plot:   p,
			Path:   filepath.Join(dir, name+gnuplot.Extension(format)),
			Format: format,
		})
	}

	return jobs, nil
}

// RenderAll renders every job, returning their results in the same order.
func (r *Renderer) RenderAll(ctx context.Context, jobs []Job) []Result {
	results := make([]Result, len(jobs))
	done := make(chan struct{}, len(jobs))

	for i, job := range jobs {
		i, job := i, job

		r.pool.Submit(func() {
			results[i] = r.render(ctx, job)
			done <- struct{}{}
		})
	}

	for range jobs {
		<-done
	}

	return results
}

func (r *Renderer) render(ctx context.Context, job Job) Result {
	start := time.Now()
	result := Result{Name: job.Plot.Name, Path: job.Path}

	data, err := r.capture(ctx, job)
	if err == nil {
		err = os.WriteFile(job.Path, data, outputPerms)
	}

	result.Bytes = len(data)
	result.Duration = time.Since(start)
	result.Err = err

	if err != nil {
		r.log.Warn("render failed", "plot", job.Plot.Name, "err", err)
	} else {
		r.log.Info("rendered", "plot", job.Plot.Name, "path", job.Path, "took", result.Duration)
	}

	return result
}

func (r *Renderer) capture(ctx context.Context, job Job) ([]byte, error) {
	backend, err := r.newBackend()
	if err != nil {
		return nil, err
	}

	s := gnuplot.New(backend, r.cfg)
	defer s.Close()

	if err = job.Plot.Apply(s); err != nil {
		return nil, err
	}

	return s.Capture(ctx, "", job.Format)
}

// Stop waits for any running jobs, then stops the workers.
func (r *Renderer) Stop() {
	r.pool.StopWait()
}
