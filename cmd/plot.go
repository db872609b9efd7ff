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


package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/wtsi-hgi/gplot/gnuplot"
	"github.com/wtsi-hgi/gplot/options"
	"github.com/wtsi-hgi/gplot/server"
	"github.com/wtsi-hgi/gplot/store"
	"github.com/wtsi-hgi/gplot/tplot"
)

const (
	persistArg  = "-persist"
	stdinLabel  = "stdin"
	outputPerms = 0644
)

// options for this cmd.
var (
	pltInputs  []string
	pltEqns    []string
	pltOptions []string
	pltOutput  string
	pltFormat  string
	pltHist    int
	pltPreview bool
	pltURL     string
	pltSave    string
	pltDB      string
	pltGrid    bool
	pltBy      string
)

// plotCmd represents the plot command.
var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Plot data and equations",
	Long: `Plot data and equations.

Each --input file (or - for STDIN, the default if no --eqn is given) becomes a
data series, and each --eqn a formula series, eg.:

gplot plot -i data.txt -e 'sin(x)' -O main=Waves -o waves.png

Without --output the plot is shown in a gnuplot window that stays open after
gplot exits. With --output it is rendered to that file, in the --format given
or the one implied by the file's extension (ps, eps, pdf, gif, png, jpeg, svg).

With --hist N, the first column of each input is drawn as a histogram with N
bins instead.

With --grid, each input and equation is drawn in its own panel of a grid on
one canvas, filled by row or, with --by col, by column. This only applies when
rendering locally.

With --preview, the data is just printed to the terminal (as a chart if YouPlot
is installed) and gnuplot isn't needed.

With --url (defaulting to the ` + serverURLEnvKey + ` environment variable) the
plot is rendered by a 'gplot serve' server instead of locally, and --output is
required.

With --save, the plot is also stored under that name in the --database (which
defaults to the ` + dbEnvKey + ` environment variable), for later use with
'gplot store'.
`,
	Run: func(_ *cobra.Command, _ []string) {
		if len(pltInputs) == 0 && len(pltEqns) == 0 {
			pltInputs = []string{stdinPath}
		}

		if pltSave != "" && pltDB == "" {
			dief("--save requires --database")
		}

		cfg := loadConfig()

		switch {
		case pltPreview:
			previewPlot(cfg)
		case pltURL != "":
			remotePlot()
		default:
			localPlot(cfg)
		}
	},
}

func init() {
	RootCmd.AddCommand(plotCmd)

	plotCmd.Flags().StringSliceVarP(&pltInputs, "input", "i", nil, "data file to plot (repeatable)")
	plotCmd.Flags().StringArrayVarP(&pltEqns, "eqn", "e", nil, "equation to plot (repeatable)")
	plotCmd.Flags().StringArrayVarP(&pltOptions, "option", "O", nil, "key=value plot option (repeatable)")
	plotCmd.Flags().StringVarP(&pltOutput, "output", "o", "", "render to this file")
	plotCmd.Flags().StringVarP(&pltFormat, "format", "f", "", "output format")
	plotCmd.Flags().IntVar(&pltHist, "hist", 0, "plot a histogram with this many bins")
	plotCmd.Flags().BoolVarP(&pltPreview, "preview", "p", false, "print the data to the terminal")
	plotCmd.Flags().StringVar(&pltURL, "url", os.Getenv(serverURLEnvKey), "gplot server URL, eg. http://host:port")
	plotCmd.Flags().StringVarP(&pltSave, "save", "s", "", "store the plot under this name")
	plotCmd.Flags().StringVarP(&pltDB, "database", "d", os.Getenv(dbEnvKey), "path to plot database")
	plotCmd.Flags().BoolVarP(&pltGrid, "grid", "g", false, "draw each input and equation in its own panel")
	plotCmd.Flags().StringVar(&pltBy, "by", string(gnuplot.ByRow), "grid fill direction: row or col")
}

// fillSession sets the plot options of a session, then adds a data series
// per input and a formula series per equation. With bins > 0, inputs are
// added as histograms.
func fillSession(s *gnuplot.Session, inputs, eqns, optPairs []string, bins int) {
	s.SetOptionsNoReplot(parseOptions(optPairs)...)

	for _, path := range inputs {
		cols := readData(path)
		opts := []options.Option{options.Label(inputLabel(path))}

		var err error

		if bins > 0 {
			err = s.PlotHist(cols.first, bins, opts...)
		} else {
			err = cols.addTo(s, opts...)
		}

		if err != nil {
			die(err)
		}
	}

	for _, eqn := range eqns {
		if err := s.PlotEquation(eqn); err != nil {
			die(err)
		}
	}
}

// inputLabel is the legend entry of the series read from path.
func inputLabel(path string) string {
	if path == stdinPath {
		return stdinLabel
	}

	return filepath.Base(path)
}

func previewPlot(cfg options.Config) {
	s := gnuplot.New(nil, sessionConfig(cfg))
	fillSession(s, pltInputs, pltEqns, pltOptions, pltHist)

	if err := tplot.New().PlotSeries(s.Series()); err != nil {
		die(err)
	}

	savePlot(s)
}

func localPlot(cfg options.Config) {
	start := time.Now()

	var args []string
	if pltOutput == "" {
		args = append(args, persistArg)
	}

	s := newSession(cfg, args...)
	defer s.Close()

	s.Enable(false)
	fillSession(s, pltInputs, pltEqns, pltOptions, pltHist)

	if pltGrid {
		if err := s.MultiPlot(gnuplot.Layout{Direction: gnuplot.Direction(pltBy)}, panels(cfg)...); err != nil {
			die(err)
		}
	}

	s.Enable(true)

	ctx := context.Background()

	var err error

	if pltOutput == "" {
		err = s.Replot()
	} else {
		_, err = s.Capture(ctx, pltOutput, pltFormat)
	}

	if err == nil {
		err = s.Sync(ctx)
	}

	if err != nil {
		die(err)
	}

	if pltOutput != "" {
		info("rendered %s in %s", pltOutput, took(start))
	}

	savePlot(s)
}

// panels returns a disabled session per input and per equation, each with the
// plot options applied.
func panels(cfg options.Config) []*gnuplot.Session {
	out := make([]*gnuplot.Session, 0, len(pltInputs)+len(pltEqns))

	for _, path := range pltInputs {
		p := gnuplot.New(nil, sessionConfig(cfg))
		fillSession(p, []string{path}, nil, pltOptions, pltHist)
		out = append(out, p)
	}

	for _, eqn := range pltEqns {
		p := gnuplot.New(nil, sessionConfig(cfg))
		fillSession(p, nil, []string{eqn}, pltOptions, pltHist)
		out = append(out, p)
	}

	return out
}

func savePlot(s *gnuplot.Session) {
	if pltSave == "" {
		return
	}

	db, err := store.New(pltDB)
	if err != nil {
		die(err)
	}

	defer db.Close()

	if err = db.Put(store.FromSession(pltSave, s)); err != nil {
		die(err)
	}

	info("stored plot %s", pltSave)
}

func remotePlot() {
	if pltOutput == "" {
		dief("--url requires --output")
	}

	req := server.PlotRequest{
		Options: optionMap(pltOptions),
		Format:  pltFormat,
	}

	if req.Format == "" {
		format, err := gnuplot.FormatFromName(pltOutput)
		if err != nil {
			die(err)
		}

		req.Format = format
	}

	for _, path := range pltInputs {
		cols := readData(path)

		sr := server.SeriesRequest{X: cols.first, Y: cols.second, Z: cols.third,
			Options: map[string]string{"plab": inputLabel(path)}}
		if cols.second == nil {
			sr.X, sr.Y = nil, cols.first
		}

		req.Series = append(req.Series, sr)
	}

	for _, eqn := range pltEqns {
		req.Series = append(req.Series, server.SeriesRequest{Eqn: eqn})
	}

	img, err := server.NewClient(pltURL).Plot(req)
	if err != nil {
		die(err)
	}

	if err = os.WriteFile(pltOutput, img, outputPerms); err != nil {
		die(err)
	}

	info("server rendered %s", pltOutput)
}

// optionMap turns key=value pairs into a map, after checking they're valid.
func optionMap(pairs []string) map[string]string {
	parseOptions(pairs)

	m := make(map[string]string, len(pairs))

	for _, pair := range pairs {
		key, value, _ := strings.Cut(pair, "=")
		m[key] = value
	}

	return m
}
