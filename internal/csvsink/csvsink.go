// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package csvsink writes records as CSV rows in the fixed column order.
package csvsink

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/jszwec/csvutil"

	"github.com/wneessen/osm2csv/internal/record"
)

var ErrHeaderWritten = errors.New("CSV header has already been written")

// Sink encodes records to an underlying writer. Rows are buffered until Flush.
type Sink struct {
	writer        *csv.Writer
	encoder       *csvutil.Encoder
	headerWritten bool
}

func New(w io.Writer) *Sink {
	writer := csv.NewWriter(w)
	encoder := csvutil.NewEncoder(writer)
	return &Sink{writer: writer, encoder: encoder}
}

// WriteHeader writes the header row. It must be called once, before any row.
func (s *Sink) WriteHeader() error {
	if s.headerWritten {
		return ErrHeaderWritten
	}
	if err := s.encoder.EncodeHeader(record.Record{}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	s.headerWritten = true
	return nil
}

// WriteRow writes one record. The header is written first if it is missing.
func (s *Sink) WriteRow(rec record.Record) error {
	if !s.headerWritten {
		if err := s.WriteHeader(); err != nil {
			return err
		}
	}
	if err := s.encoder.Encode(rec); err != nil {
		return fmt.Errorf("failed to write CSV row for node %q: %w", rec.OSMID, err)
	}
	return nil
}

// Flush writes buffered rows to the underlying writer.
func (s *Sink) Flush() error {
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV output: %w", err)
	}
	return nil
}
