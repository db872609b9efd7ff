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

package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/wtsi-hgi/gplot/barrier"
	"github.com/wtsi-hgi/gplot/engine"
	"github.com/wtsi-hgi/gplot/gnuplot"
	"github.com/wtsi-hgi/gplot/internal"
	"github.com/wtsi-hgi/gplot/options"
	"github.com/wtsi-hgi/gplot/store"
)

func TestServer(t *testing.T) {
	Convey("Given a server using stub engines", t, func() {
		var engines []*internal.LocalEngine

		fitResults := map[string]float64{"m": 2, "c": 0.5}
		silent := false

		factory := func() (engine.Backend, error) {
			eng := internal.NewLocalEngine()
			eng.FitResults = fitResults
			eng.Silent = silent
			engines = append(engines, eng)

			return eng, nil
		}

		var logBuf bytes.Buffer

		cfg := gnuplot.Config{TempDir: t.TempDir(), Barrier: barrier.New(time.Second)}
		s := New(&logBuf, factory, cfg)

		ts := httptest.NewServer(s.Router())
		defer ts.Close()

		client := NewClient(ts.URL)

		Convey("You can render a plot", func() {
			img, err := client.Plot(PlotRequest{
				Options: map[string]string{"main": "served"},
				Series: []SeriesRequest{
					{Y: []float64{1, 2, 3}, Options: map[string]string{"plab": "data"}},
					{Eqn: "x**2", Options: map[string]string{"style": "lines"}},
				},
			})
			So(err, ShouldBeNil)
			So(internal.IsStubImage(img), ShouldBeTrue)
			So(string(img), ShouldContainSubstring, "png")
			So(string(img), ShouldContainSubstring, `plot "-" with points title "data", x**2 with lines notitle`)

			So(len(engines), ShouldEqual, 1)
			So(engines[0].All(), ShouldContainSubstring, "set title \"served\"\n")
			So(engines[0].Closes, ShouldEqual, 1)
			So(logBuf.String(), ShouldContainSubstring, EndPointPlot)
		})

		Convey("The response has the content type of the format", func() {
			body, err := json.Marshal(PlotRequest{Series: []SeriesRequest{{Y: []float64{1}}}, Format: "pdf"})
			So(err, ShouldBeNil)

			resp := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, EndPointPlot, bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			s.Router().ServeHTTP(resp, req)

			So(resp.Code, ShouldEqual, http.StatusOK)
			So(resp.Header().Get("Content-Type"), ShouldEqual, "application/pdf")
		})

		Convey("Bad requests are rejected", func() {
			_, err := client.Plot(PlotRequest{Series: []SeriesRequest{{X: []float64{1, 2}, Y: []float64{1}}}})
			So(errors.Is(err, ErrServer), ShouldBeTrue)

			var se StatusError
			So(errors.As(err, &se), ShouldBeTrue)
			So(se.Code, ShouldEqual, http.StatusBadRequest)
			So(se.Msg, ShouldContainSubstring, "differ in length")

			_, err = client.Plot(PlotRequest{Options: map[string]string{"xmin": "low"},
				Series: []SeriesRequest{{Y: []float64{1}}}})
			So(errors.As(err, &se), ShouldBeTrue)
			So(se.Code, ShouldEqual, http.StatusBadRequest)

			_, err = client.Plot(PlotRequest{})
			So(errors.As(err, &se), ShouldBeTrue)
			So(se.Code, ShouldEqual, http.StatusBadRequest)

			resp := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, EndPointPlot, strings.NewReader("{"))
			s.Router().ServeHTTP(resp, req)
			So(resp.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("You can fit a curve", func() {
			fr, err := client.Fit(FitRequest{
				Call:   "f(x)",
				Eqn:    "m*x+c",
				Params: map[string]float64{"m": 1, "c": 0},
				X:      []float64{0, 1, 2},
				Y:      []float64{0.5, 2.5, 4.5},
			})
			So(err, ShouldBeNil)
			So(fr.Params, ShouldResemble, map[string]float64{"m": 2, "c": 0.5})
			So(fr.Curve, ShouldEqual, "2*x+0.5")
		})

		Convey("Engines that never finish give a timeout", func() {
			silent = true
			s.cfg.Barrier = barrier.New(100 * time.Millisecond)

			_, err := client.Plot(PlotRequest{Series: []SeriesRequest{{Y: []float64{1}}}})

			var se StatusError
			So(errors.As(err, &se), ShouldBeTrue)
			So(se.Code, ShouldEqual, http.StatusGatewayTimeout)

			_, err = client.Fit(FitRequest{Call: "f(x)", Eqn: "a*x", Params: map[string]float64{"a": 1},
				Y: []float64{1, 2}})
			So(errors.As(err, &se), ShouldBeTrue)
			So(se.Code, ShouldEqual, http.StatusUnprocessableEntity)
		})

		Convey("With a store loaded, you can list and render stored plots", func() {
			db, err := store.New(filepath.Join(t.TempDir(), "plots.db"))
			So(err, ShouldBeNil)

			defer db.Close()

			sess := gnuplot.New(nil, gnuplot.Config{})
			So(sess.Plot([]float64{3, 1}, options.Title("stored")), ShouldBeNil)
			So(db.Put(store.FromSession("mine", sess)), ShouldBeNil)

			s.LoadStore(db)

			list, err := client.List()
			So(err, ShouldBeNil)
			So(len(list), ShouldEqual, 1)
			So(list[0].Name, ShouldEqual, "mine")
			So(list[0].Title, ShouldEqual, "stored")

			img, err := client.Render("mine", "gif")
			So(err, ShouldBeNil)
			So(string(img), ShouldStartWith, "%!GPLOT-STUB gif\n")

			_, err = client.Render("other", "gif")

			var se StatusError
			So(errors.As(err, &se), ShouldBeTrue)
			So(se.Code, ShouldEqual, http.StatusNotFound)
		})
	})

	Convey("Errors map to status codes", t, func() {
		So(statusFor(errors.New("x")), ShouldEqual, http.StatusInternalServerError)
		So(ContentType("jpg"), ShouldEqual, "image/jpeg")
		So(ContentType("dumb"), ShouldEqual, "application/octet-stream")
	})
}
