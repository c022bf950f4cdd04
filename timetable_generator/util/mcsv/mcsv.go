// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

// Package mcsv reads CSV files with a header row into maps keyed by column name.
package mcsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"slices"
	"strings"
)

type ErrMissingColumn string

func (e ErrMissingColumn) Error() string {
	return fmt.Sprintf("missing column %q", string(e))
}

type Reader struct {
	r      *csv.Reader
	header []string
	record map[string]string
	err    error
}

func NewReader(r io.Reader) *Reader {
	o := &Reader{r: csv.NewReader(r)}
	o.r.ReuseRecord = true
	o.r.TrimLeadingSpace = true
	return o
}

func (r *Reader) readHeader() {
	var row []string
	row, r.err = r.r.Read()
	if r.err != nil {
		return
	}

	r.header = slices.Clone(row)
	if len(r.header) > 0 {
		// Some exporters prefix the file with a UTF-8 byte order mark
		r.header[0] = strings.TrimPrefix(r.header[0], "\ufeff")
	}
}

// Require reads the header row (if not read yet) and ensures all of the
// given columns are present.
func (r *Reader) Require(columns ...string) error {
	if r.header == nil && r.err == nil {
		r.readHeader()
	}
	if r.err != nil {
		return r.Err()
	}

	for _, column := range columns {
		if !slices.Contains(r.header, column) {
			return ErrMissingColumn(column)
		}
	}
	return nil
}

func (r *Reader) next() {
	if r.header == nil {
		r.readHeader()
		if r.err != nil {
			return
		}
	}

	if r.record == nil {
		r.record = make(map[string]string, len(r.header))
	}

	var row []string
	row, r.err = r.r.Read()
	if r.err != nil {
		return
	}

	for i, key := range r.header {
		r.record[key] = row[i]
	}
}

func (r *Reader) Read() (map[string]string, error) {
	r.next()
	if r.err != nil {
		return nil, r.err
	}
	return r.record, nil
}

// Iter yields every remaining record. The yielded map is reused between iterations.
func (r *Reader) Iter() iter.Seq[map[string]string] {
	return func(yield func(map[string]string) bool) {
		for {
			r.next()
			if r.err != nil || !yield(r.record) {
				return
			}
		}
	}
}

func (r *Reader) Err() error {
	if errors.Is(r.err, io.EOF) {
		return nil
	}
	return r.err
}

func (r *Reader) Line() int {
	line, _ := r.r.FieldPos(0)
	return line
}
