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
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/wtsi-hgi/gplot/gnuplot"
	"github.com/wtsi-hgi/gplot/options"
)

// nullTerminal is the engine terminal that draws nothing.
const nullTerminal = "unknown"

// options for this cmd.
var (
	fitInput   string
	fitCall    string
	fitEqn     string
	fitParams  []string
	fitOptions []string
	fitOutput  string
	fitFormat  string
	fitLabel   string
)

// fitCmd represents the fit command.
var fitCmd = &cobra.Command{
	Use:   "fit",
	Short: "Fit a curve to data",
	Long: `Fit a curve to data.

Give the model as a function --call and its --eqn, and the starting value of
each free parameter with --param, eg. to fit a straight line:

gplot fit -i data.txt --call 'f(x)' --eqn 'm*x+c' --param m=1 --param c=0

The fitted parameter values are printed as a table, followed by the model
equation with those values substituted in.

With --output, the data and the fitted curve are also plotted to that file.
`,
	Run: func(_ *cobra.Command, _ []string) {
		if fitCall == "" || fitEqn == "" {
			dief("you must supply --call and --eqn")
		}

		params := parseParams(fitParams)
		if len(params) == 0 {
			dief("you must supply at least one --param")
		}

		cols := readData(fitInput)
		cfg := loadConfig()

		if fitOutput == "" && cfg.Terminal == "" {
			cfg.Terminal = nullTerminal
		}

		s := newSession(cfg)
		defer s.Close()

		req := gnuplot.FitRequest{
			Call:     fitCall,
			Eqn:      fitEqn,
			Params:   params,
			X:        cols.first,
			Y:        cols.second,
			Z:        cols.third,
			Options:  parseOptions(fitOptions),
			FitLabel: fitLabel,
		}

		if cols.second == nil {
			req.X, req.Y = nil, cols.first
		}

		ctx := context.Background()

		fitted, err := s.Fit(ctx, req)
		if err != nil {
			die(err)
		}

		printFit(params, fitted)

		if fitOutput == "" {
			return
		}

		if _, err = s.Capture(ctx, fitOutput, fitFormat); err == nil {
			err = s.Sync(ctx)
		}

		if err != nil {
			die(err)
		}

		info("plotted fit to %s", fitOutput)
	},
}

func init() {
	RootCmd.AddCommand(fitCmd)

	fitCmd.Flags().StringVarP(&fitInput, "input", "i", stdinPath, "data file to fit")
	fitCmd.Flags().StringVar(&fitCall, "call", "", "model function call, eg. f(x)")
	fitCmd.Flags().StringVar(&fitEqn, "eqn", "", "model equation, eg. m*x+c")
	fitCmd.Flags().StringArrayVarP(&fitParams, "param", "P", nil, "name=start of a free parameter (repeatable)")
	fitCmd.Flags().StringArrayVarP(&fitOptions, "option", "O", nil, "key=value plot option (repeatable)")
	fitCmd.Flags().StringVarP(&fitOutput, "output", "o", "", "plot the fit to this file")
	fitCmd.Flags().StringVarP(&fitFormat, "format", "f", "", "output format")
	fitCmd.Flags().StringVar(&fitLabel, "label", "fit", "legend entry of the fitted curve")
}

// parseParams parses name=value parameter starting values.
func parseParams(pairs []string) map[string]float64 {
	params := make(map[string]float64, len(pairs))

	for _, pair := range pairs {
		name, value, found := strings.Cut(pair, "=")
		if !found || name == "" {
			dief("bad --param %q; expected name=value", pair)
		}

		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			dief("bad --param %q: %s", pair, err)
		}

		params[name] = v
	}

	return params
}

// printFit prints a table of the starting and fitted value of each parameter,
// followed by the fitted equation.
func printFit(params, fitted map[string]float64) {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}

	sort.Strings(names)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Param", "Start", "Fitted"})

	for _, name := range names {
		value, ok := fitted[name]

		result := "-"
		if ok {
			result = options.FormatNumber(value)
		}

		table.Append([]string{name, options.FormatNumber(params[name]), result})
	}

	table.Render()

	cliPrintf("\n%s = %s\n", fitCall, gnuplot.Substitute(fitEqn, fitted))
}
