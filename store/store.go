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

// package store is a database of named plots, so they can be rendered again
// later.

package store

import (
	"fmt"
	"sort"
	"syscall"
	"time"

	"github.com/ugorji/go/codec"
	"github.com/wtsi-hgi/gplot/gnuplot"
	"github.com/wtsi-hgi/gplot/options"
	"github.com/wtsi-hgi/gplot/series"
	bolt "go.etcd.io/bbolt"
)

type Error struct {
	msg  string
	name string
}

func (e Error) Error() string {
	if e.name != "" {
		return fmt.Sprintf("%s [%s]", e.msg, e.name)
	}

	return e.msg
}

const (
	ErrNotFound    = "plot not found"
	ErrInvalidName = "invalid plot name"

	plotsBucket   = "plots"
	summaryBucket = "summaries"
	dbOpenMode    = 0600
)

// Plot is a named snapshot of a session: its defaults and series.
type Plot struct {
	Name     string
	Defaults options.Set
	Series   []*series.Series
	Saved    time.Time
}

// FromSession returns a Plot holding the current state of s.
func FromSession(name string, s *gnuplot.Session) *Plot {
	return &Plot{
		Name:     name,
		Defaults: s.Defaults(),
		Series:   s.Series(),
	}
}

// Apply makes s draw this plot, replacing whatever it had.
func (p *Plot) Apply(s *gnuplot.Session) error {
	return s.Restore(p.Defaults, p.Series)
}

// Points returns the total number of data points across all series.
func (p *Plot) Points() int {
	n := 0
	for _, s := range p.Series {
		n += s.Len()
	}

	return n
}

// Summary describes a stored plot without its data.
type Summary struct {
	Name   string
	Title  string
	Series int
	Points int
	Bytes  int
	Saved  time.Time
}

// DB stores Plots in a bolt database.
type DB struct {
	db *bolt.DB
	ch codec.Handle
}

// New opens the database at path, creating it if necessary.
func New(path string) (*DB, error) {
	db, err := bolt.Open(path, dbOpenMode, &bolt.Options{
		NoFreelistSync: true,
		NoGrowSync:     true,
		FreelistType:   bolt.FreelistMapType,
		MmapFlags:      syscall.MAP_POPULATE,
	})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, errc := tx.CreateBucketIfNotExists([]byte(plotsBucket)); errc != nil {
			return errc
		}

		_, errc := tx.CreateBucketIfNotExists([]byte(summaryBucket))

		return errc
	})

	return &DB{
		db: db,
		ch: new(codec.BincHandle),
	}, err
}

// Close closes the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Put stores the plot under its name, replacing any plot of the same name. A
// zero Saved time is set to now.
func (d *DB) Put(p *Plot) error {
	if p.Name == "" {
		return Error{msg: ErrInvalidName}
	}

	if p.Saved.IsZero() {
		p.Saved = time.Now()
	}

	encoded := d.encodeToBytes(p)
	summary := &Summary{
		Name:   p.Name,
		Title:  p.Defaults.Title,
		Series: len(p.Series),
		Points: p.Points(),
		Bytes:  len(encoded),
		Saved:  p.Saved,
	}

	return d.db.Update(func(tx *bolt.Tx) error {
		key := []byte(p.Name)

		if err := tx.Bucket([]byte(plotsBucket)).Put(key, encoded); err != nil {
			return err
		}

		return tx.Bucket([]byte(summaryBucket)).Put(key, d.encodeToBytes(summary))
	})
}

func (d *DB) encodeToBytes(thing interface{}) []byte {
	var encoded []byte
	enc := codec.NewEncoderBytes(&encoded, d.ch)
	enc.MustEncode(thing)

	return encoded
}

// Get returns the plot with the given name.
func (d *DB) Get(name string) (*Plot, error) {
	var p *Plot

	err := d.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(plotsBucket)).Get([]byte(name))
		if v == nil {
			return Error{msg: ErrNotFound, name: name}
		}

		dec := codec.NewDecoderBytes(v, d.ch)

		return dec.Decode(&p)
	})

	return p, err
}

// List returns summaries of every stored plot, sorted by name.
func (d *DB) List() ([]*Summary, error) {
	var summaries []*Summary

	err := d.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(summaryBucket)).ForEach(func(_, v []byte) error {
			var s *Summary

			dec := codec.NewDecoderBytes(v, d.ch)
			if err := dec.Decode(&s); err != nil {
				return err
			}

			summaries = append(summaries, s)

			return nil
		})
	})

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Name < summaries[j].Name
	})

	return summaries, err
}

// Delete removes the plot with the given name.
func (d *DB) Delete(name string) error {
	return d.db.Update(func(tx *bolt.Tx) error {
		key := []byte(name)
		b := tx.Bucket([]byte(plotsBucket))

		if b.Get(key) == nil {
			return Error{msg: ErrNotFound, name: name}
		}

		if err := b.Delete(key); err != nil {
			return err
		}

		return tx.Bucket([]byte(summaryBucket)).Delete(key)
	})
}
