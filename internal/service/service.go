// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package service runs a single OSM XML to CSV conversion.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/wneessen/osm2csv/internal/config"
	"github.com/wneessen/osm2csv/internal/converter"
	"github.com/wneessen/osm2csv/internal/csvsink"
	"github.com/wneessen/osm2csv/internal/geocode"
	"github.com/wneessen/osm2csv/internal/http"
	"github.com/wneessen/osm2csv/internal/logger"
	"github.com/wneessen/osm2csv/internal/record"
)

type Service struct {
	config   *config.Config
	geocoder geocode.Geocoder
	logger   *logger.Logger
	progress io.Writer
}

// Result summarizes a finished conversion.
type Result struct {
	Rows     int
	Output   string
	Bytes    int64
	Duration time.Duration
}

func New(conf *config.Config, log *logger.Logger) (*Service, error) {
	if conf == nil {
		return nil, errors.New("config must not be nil")
	}
	return NewWithGeocoder(conf, log, newGeocodeProvider(conf, http.New(log))), nil
}

// NewWithGeocoder returns a service using the given geocoder instead of Nominatim.
func NewWithGeocoder(conf *config.Config, log *logger.Logger, coder geocode.Geocoder) *Service {
	return &Service{
		config:   conf,
		geocoder: coder,
		logger:   log,
		progress: os.Stderr,
	}
}

// Run converts the OSM XML file at input into a CSV file at output. On failure
// the output keeps the header and every row written before the error.
func (s *Service) Run(ctx context.Context, input, output string) (Result, error) {
	result := Result{Output: output}
	start := time.Now()

	in, err := os.Open(input)
	if err != nil {
		return result, fmt.Errorf("failed to open input file: %w", err)
	}
	defer func() {
		if err := in.Close(); err != nil {
			s.logger.Error("failed to close input file", logger.Err(err))
		}
	}()

	var reader io.Reader = in
	if s.config.Progress {
		stat, err := in.Stat()
		if err != nil {
			return result, fmt.Errorf("failed to stat input file: %w", err)
		}
		var finish func()
		reader, finish = withProgress(in, stat.Size(), s.progress)
		defer finish()
	}

	out, err := os.Create(output)
	if err != nil {
		return result, fmt.Errorf("failed to create output file: %w", err)
	}

	rows, convErr := s.convert(ctx, reader, out)
	result.Rows = rows
	if err = out.Close(); err != nil && convErr == nil {
		convErr = fmt.Errorf("failed to close output file: %w", err)
	}
	if convErr != nil {
		s.logger.Error("conversion aborted", slog.Int("rows", rows), slog.String("output", output),
			logger.Err(convErr))
		return result, convErr
	}

	result.Duration = time.Since(start)
	if stat, err := os.Stat(output); err == nil {
		result.Bytes = stat.Size()
	}
	s.logger.Info("conversion finished", slog.String("rows", humanize.Comma(int64(result.Rows))),
		slog.String("size", humanize.Bytes(uint64(result.Bytes))), //nolint:gosec
		slog.String("output", output), slog.Duration("duration", result.Duration),
		slog.String("geocoder", s.geocoder.Name()))

	return result, nil
}

func (s *Service) convert(ctx context.Context, r io.Reader, w io.Writer) (int, error) {
	sink := csvsink.New(w)
	if err := sink.WriteHeader(); err != nil {
		return 0, err
	}
	if err := sink.Flush(); err != nil {
		return 0, err
	}

	conv := converter.New(s.geocoder, s.logger, converter.WithPolicy(converter.Policy(s.config.AddressPolicy)))
	rows, err := conv.Convert(ctx, r, flushingSink{sink})
	if err != nil {
		return rows, fmt.Errorf("failed to convert OSM document: %w", err)
	}
	return rows, nil
}

// flushingSink flushes after every row so an aborted run leaves only complete rows.
type flushingSink struct {
	sink *csvsink.Sink
}

func (f flushingSink) WriteRow(rec record.Record) error {
	if err := f.sink.WriteRow(rec); err != nil {
		return err
	}
	return f.sink.Flush()
}
