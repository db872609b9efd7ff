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
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/inconshreveable/log15"
	"github.com/spf13/cobra"
	"github.com/wtsi-hgi/gplot/server"
	"github.com/wtsi-hgi/gplot/store"
)

const defaultListen = "localhost:8080"

// options for this cmd.
var (
	srvListen  string
	srvLogPath string
	srvDB      string
)

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST server",
	Long: `Start the REST server.

The server renders plots and fits curves on request, using a new gnuplot for
every request:

POST /rest/v1/plot : takes a JSON body like
  {"options":{"main":"title"},"series":[{"x":[1,2],"y":[3,4]}],"format":"png"}
  and responds with the image.

POST /rest/v1/fit : takes a JSON body like
  {"call":"f(x)","eqn":"m*x+c","params":{"m":1,"c":0},"x":[1,2,3],"y":[2,4,6]}
  and responds with the fitted params and equation.

If --database is given (defaulting to the ` + dbEnvKey + ` environment variable),
its stored plots can also be listed and rendered:

GET /rest/v1/plots
GET /rest/v1/plots/[name]?format=png

Use 'gplot plot --url' to render plots with a running server.

Requests are logged to STDERR, or to --logfile if given.

The server will block forever, so you should run it in the background. It stops
cleanly on SIGINT or SIGTERM.
`,
	Run: func(_ *cobra.Command, _ []string) {
		logWriter := setServerLogger(srvLogPath)
		cfg := loadConfig()

		s := server.New(logWriter, backendFactory(cfg), sessionConfig(cfg))

		if srvDB != "" {
			db, err := store.New(srvDB)
			if err != nil {
				die(err)
			}

			defer db.Close()

			s.LoadStore(db)
		}

		go stopOnSignal(s)
		go sayStarted(srvListen)

		err := s.Start(srvListen)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			die(err)
		}

		info("server stopped")
	},
}

func init() {
	RootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&srvListen, "listen", "l", defaultListen, "address to listen on")
	serveCmd.Flags().StringVar(&srvLogPath, "logfile", "", "log to this file instead of STDERR")
	serveCmd.Flags().StringVarP(&srvDB, "database", "d", os.Getenv(dbEnvKey), "path to plot database")
}

// setServerLogger makes our appLogger log to the given path if non-blank,
// otherwise to STDERR. Returns an io.Writer that logs to our appLogger.
func setServerLogger(path string) io.Writer {
	if path != "" {
		logToFile(path)
	}

	return &log15Writer{logger: appLogger}
}

// log15Writer wraps a log15.Logger to make it conform to io.Writer interface.
type log15Writer struct {
	logger log15.Logger
}

// Write conforms to the io.Writer interface.
func (w *log15Writer) Write(p []byte) (n int, err error) {
	w.logger.Info(string(p))

	return len(p), nil
}

func stopOnSignal(s *server.Server) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigs
	info("received %s, stopping", sig)

	if err := s.Stop(); err != nil {
		warn("server did not stop cleanly: %s", err)
	}
}

// sayStarted logs to console that the server stated. It does this a second
// after being calling in a goroutine, when we can assume the server has
// actually started; if it failed, we expect it to do so in less than a second
// and exit.
func sayStarted(addr string) {
	<-time.After(1 * time.Second)

	info("server started on %s", addr)
}
