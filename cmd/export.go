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

	"github.com/spf13/cobra"
	"github.com/wtsi-hgi/gplot/gnuplot"
	"github.com/wtsi-hgi/gplot/store"
)

const (
	workbookExt = ".xlsx"
	scriptExt   = ".gp"
)

// options for this cmd.
var (
	expInputs  []string
	expEqns    []string
	expOptions []string
	expOutput  string
	expName    string
	expDB      string
	expAll     bool
)

// exportCmd represents the export command.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the data of a plot",
	Long: `Export the data of a plot.

The plot is made from --input files and --eqn equations as for 'gplot plot', or
is the stored plot with the given --name in the --database.

What gets written to --output depends on its extension:

.xlsx : an Excel workbook with a sheet per data series.
.gp   : the gnuplot commands that draw the plot.
other : a tab separated table of each data series, with a header line holding
        the series label and one holding the axis labels.

With --all, --output is treated as a prefix, and the table is written to
prefix.tab while the plot is rendered to prefix.png and prefix.ps; this needs
gnuplot.
`,
	Run: func(_ *cobra.Command, _ []string) {
		if expOutput == "" {
			dief("you must supply --output")
		}

		cfg := loadConfig()

		var s *gnuplot.Session
		if expAll {
			s = newSession(cfg)
		} else {
			s = gnuplot.New(nil, sessionConfig(cfg))
		}

		defer s.Close()

		s.Enable(false)

		if expName != "" {
			applyStored(s, expName, expDB)
		} else {
			if len(expInputs) == 0 && len(expEqns) == 0 {
				expInputs = []string{stdinPath}
			}

			fillSession(s, expInputs, expEqns, expOptions, 0)
		}

		if err := export(s, expOutput, expAll); err != nil {
			die(err)
		}
	},
}

func init() {
	RootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringSliceVarP(&expInputs, "input", "i", nil, "data file (repeatable)")
	exportCmd.Flags().StringArrayVarP(&expEqns, "eqn", "e", nil, "equation (repeatable)")
	exportCmd.Flags().StringArrayVarP(&expOptions, "option", "O", nil, "key=value plot option (repeatable)")
	exportCmd.Flags().StringVarP(&expOutput, "output", "o", "", "file to write")
	exportCmd.Flags().StringVarP(&expName, "name", "n", "", "name of a stored plot to export")
	exportCmd.Flags().StringVarP(&expDB, "database", "d", os.Getenv(dbEnvKey), "path to plot database")
	exportCmd.Flags().BoolVarP(&expAll, "all", "a", false, "write the table and render the plot")
}

// applyStored restores the named plot from the database at dbPath into the
// session.
func applyStored(s *gnuplot.Session, name, dbPath string) {
	if dbPath == "" {
		dief("you must supply --database")
	}

	db, err := store.New(dbPath)
	if err != nil {
		die(err)
	}

	defer db.Close()

	p, err := db.Get(name)
	if err != nil {
		die(err)
	}

	if err = p.Apply(s); err != nil {
		die(err)
	}
}

func export(s *gnuplot.Session, output string, all bool) error {
	if all {
		s.Enable(true)

		if err := s.SaveAll(context.Background(), output); err != nil {
			return err
		}

		info("wrote %s.tab and rendered %s.png and %s.ps", output, output, output)

		return s.Sync(context.Background())
	}

	var err error

	switch strings.ToLower(filepath.Ext(output)) {
	case workbookExt:
		err = s.ExportWorkbook(output)
	case scriptExt:
		err = s.SaveCommands(output)
	default:
		err = s.ExportSeriesTable(output)
	}

	if err == nil {
		info("wrote %s", output)
	}

	return err
}
