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

// package server provides a web server for a REST API that renders plots and
// fits curves, plus a client for it.

package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inconshreveable/log15"
	"github.com/wtsi-hgi/gplot/batch"
	"github.com/wtsi-hgi/gplot/errs"
	"github.com/wtsi-hgi/gplot/gnuplot"
	"github.com/wtsi-hgi/gplot/options"
	"github.com/wtsi-hgi/gplot/store"
)

const (
	EndPointREST = "/rest/v1"

	plotPath  = "/plot"
	fitPath   = "/fit"
	plotsPath = "/plots"

	// EndPointPlot is the endpoint for rendering a plot.
	EndPointPlot = EndPointREST + plotPath

	// EndPointFit is the endpoint for fitting a curve.
	EndPointFit = EndPointREST + fitPath

	// EndPointPlots is the endpoint for listing and rendering stored plots.
	EndPointPlots = EndPointREST + plotsPath

	paramName   = "name"
	paramFormat = "format"

	readHeaderTimeout = 10 * time.Second
	stopTimeout       = 10 * time.Second
)

// Server serves the REST API. Every request gets its own session and engine.
type Server struct {
	router     *gin.Engine
	newBackend batch.BackendFactory
	cfg        gnuplot.Config
	log        log15.Logger
	db         *store.DB
	srv        *http.Server
}

// New creates a Server that logs requests to logWriter, and renders using
// engines made by newBackend, driven by sessions configured with cfg.
func New(logWriter io.Writer, newBackend batch.BackendFactory, cfg gnuplot.Config) *Server {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.LoggerWithWriter(logWriter), gin.Recovery())

	logger := cfg.Logger
	if logger == nil {
		logger = log15.New()
		logger.SetHandler(log15.DiscardHandler())
	}

	s := &Server{
		router:     r,
		newBackend: newBackend,
		cfg:        cfg,
		log:        logger.New("component", "server"),
	}

	r.POST(EndPointPlot, s.postPlot)
	r.POST(EndPointFit, s.postFit)

	return s
}

// Router returns the gin router, eg. for use with httptest.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// LoadStore adds endpoints for working with the given plot database:
//
// GET /rest/v1/plots : lists the stored plots.
//
// GET /rest/v1/plots/[name]?format=png : renders the named plot.
func (s *Server) LoadStore(db *store.DB) {
	s.db = db

	s.router.GET(EndPointPlots, s.getPlots)
	s.router.GET(EndPointPlots+"/:"+paramName, s.getPlot)
}

// Start listens on addr and serves until Stop() is called. Returns
// http.ErrServerClosed after a Stop().
func (s *Server) Start(addr string) error {
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	s.log.Info("server starting", "addr", addr)

	return s.srv.ListenAndServe()
}

// Stop gracefully stops a Start()ed server.
func (s *Server) Stop() error {
	if s.srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	return s.srv.Shutdown(ctx)
}

// SeriesRequest is one series of a PlotRequest. If X is missing, Y is plotted
// against its indexes.
type SeriesRequest struct {
	X       []float64         `json:"x,omitempty"`
	Y       []float64         `json:"y"`
	Z       []float64         `json:"z,omitempty"`
	Err     []float64         `json:"err,omitempty"`
	ErrLow  []float64         `json:"errlow,omitempty"`
	ErrHi   []float64         `json:"errhi,omitempty"`
	Eqn     string            `json:"eqn,omitempty"`
	Options map[string]string `json:"options,omitempty"`
}

// PlotRequest is the body of a plot request. Options are textual, as
// understood by options.Parse().
type PlotRequest struct {
	Options map[string]string `json:"options,omitempty"`
	Series  []SeriesRequest   `json:"series"`
	Format  string            `json:"format,omitempty"`
}

// FitRequest is the body of a fit request.
type FitRequest struct {
	Call    string             `json:"call"`
	Eqn     string             `json:"eqn"`
	Params  map[string]float64 `json:"params"`
	X       []float64          `json:"x,omitempty"`
	Y       []float64          `json:"y"`
	Z       []float64          `json:"z,omitempty"`
	Options map[string]string  `json:"options,omitempty"`
}

// FitResponse is the response to a fit request.
type FitResponse struct {
	Params map[string]float64 `json:"params"`
	Curve  string             `json:"curve"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// parseOptions parses textual options in key order.
func parseOptions(m map[string]string) ([]options.Option, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	opts := make([]options.Option, 0, len(keys))

	for _, k := range keys {
		opt, err := options.Parse(k, m[k])
		if err != nil {
			return nil, err
		}

		opts = append(opts, opt)
	}

	return opts, nil
}

func (sr SeriesRequest) options() ([]options.Option, error) {
	opts, err := parseOptions(sr.Options)
	if err != nil {
		return nil, err
	}

	if sr.Err != nil {
		opts = append(opts, options.Err(sr.Err))
	}

	if sr.ErrLow != nil || sr.ErrHi != nil {
		opts = append(opts, options.ErrRange(sr.ErrLow, sr.ErrHi))
	}

	return opts, nil
}

// newSession returns a disabled session; enable it once it's been filled.
func (s *Server) newSession() (*gnuplot.Session, error) {
	backend, err := s.newBackend()
	if err != nil {
		return nil, err
	}

	sess := gnuplot.New(backend, s.cfg)
	sess.Enable(false)

	return sess, nil
}

func (s *Server) postPlot(c *gin.Context) {
	var req PlotRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		s.abort(c, http.StatusBadRequest, err)

		return
	}

	sess, err := s.newSession()
	if err != nil {
		s.abortWithErr(c, err)

		return
	}

	defer sess.Close()

	if err = fillSession(sess, req); err != nil {
		s.abortWithErr(c, err)

		return
	}

	s.capture(c, sess, req.Format)
}

func fillSession(sess *gnuplot.Session, req PlotRequest) error {
	opts, err := parseOptions(req.Options)
	if err != nil {
		return err
	}

	sess.SetOptionsNoReplot(opts...)

	for _, sr := range req.Series {
		sopts, errp := sr.options()
		if errp != nil {
			return errp
		}

		if sr.Eqn != "" {
			err = sess.PlotEquation(sr.Eqn, sopts...)
		} else {
			err = addSeries(sess, sr.X, sr.Y, sr.Z, sopts)
		}

		if err != nil {
			return err
		}
	}

	return nil
}

func addSeries(sess *gnuplot.Session, x, y, z []float64, opts []options.Option) error {
	if x == nil {
		return sess.AddSeries(y, nil, z, opts...)
	}

	return sess.AddSeries(x, y, z, opts...)
}

func (s *Server) capture(c *gin.Context, sess *gnuplot.Session, format string) {
	if format == "" {
		format = gnuplot.FormatPNG
	}

	sess.Enable(true)

	data, err := sess.Capture(c.Request.Context(), "", format)
	if err != nil {
		s.abortWithErr(c, err)

		return
	}

	c.Data(http.StatusOK, ContentType(format), data)
}

func (s *Server) postFit(c *gin.Context) {
	var req FitRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		s.abort(c, http.StatusBadRequest, err)

		return
	}

	opts, err := parseOptions(req.Options)
	if err != nil {
		s.abortWithErr(c, err)

		return
	}

	sess, err := s.newSession()
	if err != nil {
		s.abortWithErr(c, err)

		return
	}

	defer sess.Close()

	sess.Enable(true)

	params, err := sess.Fit(c.Request.Context(), gnuplot.FitRequest{
		Call: req.Call, Eqn: req.Eqn, Params: req.Params,
		X: req.X, Y: req.Y, Z: req.Z, Options: opts,
	})
	if err != nil {
		s.abortWithErr(c, err)

		return
	}

	list := sess.Series()

	c.JSON(http.StatusOK, FitResponse{Params: params, Curve: list[len(list)-1].Options.Eqn})
}

func (s *Server) getPlots(c *gin.Context) {
	list, err := s.db.List()
	if err != nil {
		s.abortWithErr(c, err)

		return
	}

	c.JSON(http.StatusOK, list)
}

func (s *Server) getPlot(c *gin.Context) {
	p, err := s.db.Get(c.Param(paramName))
	if err != nil {
		s.abort(c, http.StatusNotFound, err)

		return
	}

	sess, err := s.newSession()
	if err != nil {
		s.abortWithErr(c, err)

		return
	}

	defer sess.Close()

	if err = p.Apply(sess); err != nil {
		s.abortWithErr(c, err)

		return
	}

	s.capture(c, sess, c.Query(paramFormat))
}

// abortWithErr aborts with a status code suited to the kind of error.
func (s *Server) abortWithErr(c *gin.Context, err error) {
	s.abort(c, statusFor(err), err)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errs.ShapeMismatch), errors.Is(err, errs.UnsupportedFormat),
		errors.Is(err, options.BadOptionValue), errors.Is(err, gnuplot.ErrNoSeries):
		return http.StatusBadRequest
	case errors.Is(err, errs.FitDivergence), errors.Is(err, errs.ParseError):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errs.Timeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, errs.EngineUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) abort(c *gin.Context, code int, err error) {
	s.log.Warn("request failed", "path", c.Request.URL.Path, "status", code, "err", err)
	c.AbortWithStatusJSON(code, errorResponse{Error: err.Error()})
}

// ContentType returns the MIME type of images in the given format.
func ContentType(format string) string {
	switch gnuplot.Extension(format) {
	case ".ps", ".eps":
		return "application/postscript"
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".jpg":
		return "image/jpeg"
	case ".svg":
		return "image/svg+xml"
	default:
		return "application/octet-stream"
	}
}
