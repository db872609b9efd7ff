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

package internal

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	btime "github.com/wtsi-ssg/wr/backoff/time"
	"github.com/wtsi-ssg/wr/retry"
)

const retryTimeout = 5 * time.Second

// WaitForFile waits for up to 5 seconds for the given path to exist, and
// returns false if it doesn't.
func WaitForFile(tb testing.TB, path string) bool {
	tb.Helper()

	ctx, cancelFn := context.WithTimeout(context.Background(), retryTimeout)
	defer cancelFn()

	status := retry.Do(ctx, func() error {
		_, err := os.Stat(path)

		return err
	}, &retry.UntilNoError{}, btime.SecondsRangeBackoff(), "WaitForFile")

	return status.Err == nil
}

// CreateTestFile creates a file at the given path with the given content. It
// creates any directories the path needs as necessary.
func CreateTestFile(tb testing.TB, path, contents string) {
	tb.Helper()

	if err := os.MkdirAll(filepath.Dir(path), UserPerms); err != nil {
		tb.Fatalf("mkdir failed: %s", err)
	}

	if err := os.WriteFile(path, []byte(contents), FilePerms); err != nil {
		tb.Fatalf("write failed: %s", err)
	}
}

// FilesIn returns the names of the entries in dir.
func FilesIn(tb testing.TB, dir string) []string {
	tb.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		tb.Fatalf("readdir failed: %s", err)
	}

	names := make([]string, len(entries))
	for i, entry := range entries {
		names[i] = entry.Name()
	}

	return names
}
