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


// package cmd is the cobra file that enables subcommands and handles
// command-line args.

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/inconshreveable/log15"
	"github.com/spf13/cobra"
	"github.com/wtsi-hgi/gplot/barrier"
	"github.com/wtsi-hgi/gplot/batch"
	"github.com/wtsi-hgi/gplot/engine"
	"github.com/wtsi-hgi/gplot/gnuplot"
	"github.com/wtsi-hgi/gplot/options"
)

// appLogger is used for logging events in our commands.
var appLogger = log15.New()

// global options.
var (
	configPath string
	debug      bool
)

const (
	serverURLEnvKey = "GPLOT_SERVER_URL"
	dbEnvKey        = "GPLOT_DB"
)

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:   "gplot",
	Short: "gplot draws plots and fits curves using gnuplot",
	Long: `gplot draws plots and fits curves using gnuplot.

Data is read as whitespace separated columns, one point per line: a single
column is plotted against its line numbers, 2 columns are x and y, and 3
columns are x, y and z. Blank lines and lines starting with # are ignored.

Plot options are given as key=value pairs with -O, eg.:

gplot plot -i data.txt -o plot.png -O main='My plot' -O xlab=time -O ylog=10

Known keys are: style, main, xlab, ylab, zlab, plab, eqn, xmin, xmax, ymin,
ymax, zmin, zmax, xtics, ytics, ztics, xlog, ylog, zlog, margin and
rangemargin.

The ` + options.ConfigEnvKey + ` environment variable (or the --config argument)
can be set to the path of a YAML config file, in the following format:

engine: gnuplot
terminal: x11
temp_dir: /tmp
barrier_timeout: 30s
defaults:
  style: lines
  rangemargin: 0.1

The gnuplot executable must be in your PATH, unless you name another engine in
the config file.
`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if debug {
			appLogger.SetHandler(log15.LvlFilterHandler(log15.LvlDebug, log15.StderrHandler))
		}
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen once to
// the rootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		die(err)
	}
}

func init() {
	// set up logging to stderr
	appLogger.SetHandler(log15.LvlFilterHandler(log15.LvlInfo, log15.StderrHandler))

	// global flags
	RootCmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv(options.ConfigEnvKey),
		"path to a YAML config file")
	RootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "log the commands sent to the engine")
}

// loadConfig returns the config file's content, or an empty Config if no
// config file was specified.
func loadConfig() options.Config {
	if configPath == "" {
		return options.Config{}
	}

	cfg, err := options.LoadConfig(configPath)
	if err != nil {
		die(err)
	}

	return cfg
}

// sessionConfig turns a config file into the configuration of a session.
func sessionConfig(cfg options.Config) gnuplot.Config {
	defaults, err := cfg.DefaultSet()
	if err != nil {
		die(err)
	}

	return gnuplot.Config{
		Terminal: cfg.Terminal,
		TempDir:  cfg.TempDir,
		Barrier:  barrier.New(cfg.BarrierTimeout),
		Defaults: &defaults,
		Logger:   appLogger,
	}
}

// backendFactory returns a factory of engines running the configured
// executable with the given args.
func backendFactory(cfg options.Config, args ...string) batch.BackendFactory {
	return func() (engine.Backend, error) {
		path, err := engine.Find(cfg.Engine)
		if err != nil {
			return nil, err
		}

		return engine.NewExternal(engine.NewLogger(), path, args...), nil
	}
}

// newSession returns a session driving a new engine.
func newSession(cfg options.Config, args ...string) *gnuplot.Session {
	backend, err := backendFactory(cfg, args...)()
	if err != nil {
		die(err)
	}

	return gnuplot.New(backend, sessionConfig(cfg))
}

// logToFile logs to the given file.
func logToFile(path string) {
	fh, err := log15.FileHandler(path, log15.LogfmtFormat())
	if err != nil {
		fh = log15.StderrHandler

		warn("can't write to log file; logging to stderr instead (%s)", err)
	}

	appLogger.SetHandler(fh)
}

// cliPrintf outputs the message to STDOUT.
func cliPrintf(msg string, a ...interface{}) {
	fmt.Fprintf(os.Stdout, msg, a...)
}

// info is a convenience to log a message at the Info level.
func info(msg string, a ...interface{}) {
	appLogger.Info(fmt.Sprintf(msg, a...))
}

// warn is a convenience to log a message at the Warn level.
func warn(msg string, a ...interface{}) {
	appLogger.Warn(fmt.Sprintf(msg, a...))
}

// die is a convenience to log a message at the Error level and exit non zero.
func die(err error) {
	appLogger.Error(err.Error())
	os.Exit(1)
}

// dief is a convenience to log a message at the Error level and exit non zero.
func dief(msg string, a ...interface{}) {
	appLogger.Error(fmt.Sprintf(msg, a...))
	os.Exit(1)
}

// took describes how long ago start was, for logging.
func took(start time.Time) string {
	return time.Since(start).Round(time.Millisecond).String()
}
