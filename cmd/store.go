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
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/wtsi-hgi/gplot/batch"
	"github.com/wtsi-hgi/gplot/gnuplot"
	"github.com/wtsi-hgi/gplot/store"
)

// options for this cmd.
var (
	stoDB      string
	stoOutDir  string
	stoFormat  string
	stoWorkers int
)

// storeCmd represents the store command.
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Work with stored plots",
	Long: `Work with stored plots.

Plots are stored in a database with 'gplot plot --save'. Use the sub-commands
of this command to list, render or delete them.

The database is given with --database, defaulting to the ` + dbEnvKey + `
environment variable.
`,
}

// storeListCmd represents the store list command.
var storeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored plots",
	Run: func(_ *cobra.Command, _ []string) {
		db := openStore()
		defer db.Close()

		list, err := db.List()
		if err != nil {
			die(err)
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Name", "Title", "Series", "Points", "Size", "Saved"})

		for _, s := range list {
			table.Append([]string{
				s.Name, s.Title, strconv.Itoa(s.Series), humanize.Comma(int64(s.Points)),
				humanize.Bytes(uint64(s.Bytes)), humanize.Time(s.Saved), //nolint:gosec
			})
		}

		table.Render()
	},
}

// storeRenderCmd represents the store render command.
var storeRenderCmd = &cobra.Command{
	Use:   "render [name...]",
	Short: "Render stored plots to image files",
	Long: `Render stored plots to image files.

The named plots (or all of them if none are named) are rendered concurrently,
up to --workers at a time, to files named after the plots in --dir.
`,
	Run: func(_ *cobra.Command, names []string) {
		db := openStore()
		defer db.Close()

		if len(names) == 0 {
			names = allNames(db)
		}

		jobs, err := batch.Jobs(db, names, stoOutDir, stoFormat)
		if err != nil {
			die(err)
		}

		cfg := loadConfig()

		r := batch.New(stoWorkers, backendFactory(cfg), sessionConfig(cfg))
		defer r.Stop()

		failed := printResults(r.RenderAll(context.Background(), jobs))
		if failed > 0 {
			dief("%d plots failed to render", failed)
		}
	},
}

// storeDeleteCmd represents the store delete command.
var storeDeleteCmd = &cobra.Command{
	Use:   "delete name...",
	Short: "Delete stored plots",
	Args:  cobra.MinimumNArgs(1),
	Run: func(_ *cobra.Command, names []string) {
		db := openStore()
		defer db.Close()

		for _, name := range names {
			if err := db.Delete(name); err != nil {
				die(err)
			}

			info("deleted plot %s", name)
		}
	},
}

func init() {
	RootCmd.AddCommand(storeCmd)
	storeCmd.AddCommand(storeListCmd, storeRenderCmd, storeDeleteCmd)

	storeCmd.PersistentFlags().StringVarP(&stoDB, "database", "d", os.Getenv(dbEnvKey), "path to plot database")

	storeRenderCmd.Flags().StringVar(&stoOutDir, "dir", ".", "directory to render to")
	storeRenderCmd.Flags().StringVarP(&stoFormat, "format", "f", gnuplot.FormatPNG, "output format")
	storeRenderCmd.Flags().IntVarP(&stoWorkers, "workers", "w", batch.DefaultWorkers, "number of concurrent engines")
}

func openStore() *store.DB {
	if stoDB == "" {
		dief("you must supply --database")
	}

	db, err := store.New(stoDB)
	if err != nil {
		die(err)
	}

	return db
}

func allNames(db *store.DB) []string {
	list, err := db.List()
	if err != nil {
		die(err)
	}

	names := make([]string, len(list))
	for i, s := range list {
		names[i] = s.Name
	}

	return names
}

// printResults prints a table of render results, returning the number that
// failed.
func printResults(results []batch.Result) int {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Name", "Path", "Size", "Took", "Error"})

	failed := 0

	for _, r := range results {
		errMsg := ""
		if r.Err != nil {
			errMsg = r.Err.Error()
			failed++
		}

		table.Append([]string{
			r.Name, r.Path, humanize.Bytes(uint64(r.Bytes)), //nolint:gosec
			r.Duration.Round(time.Millisecond).String(), errMsg,
		})
	}

	table.Render()

	return failed
}
