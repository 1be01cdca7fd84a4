// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package converter implements the streaming OSM node to record state machine.
package converter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"math"
	"strconv"

	"github.com/wneessen/osm2csv/internal/geocode"
	"github.com/wneessen/osm2csv/internal/logger"
	"github.com/wneessen/osm2csv/internal/osmxml"
	"github.com/wneessen/osm2csv/internal/record"
)

const (
	elementNode = "node"
	elementTag  = "tag"
)

// Policy controls how missing coordinates and address fields are handled.
type Policy string

const (
	// PolicyLenient leaves missing address fields empty and skips the lookup for
	// nodes without usable coordinates.
	PolicyLenient Policy = "lenient"
	// PolicyStrict fails the run on any missing coordinate or address field.
	PolicyStrict Policy = "strict"
)

// ErrNestedNode is returned when a node element opens inside another node.
var ErrNestedNode = errors.New("nested node elements are not supported")

// MissingFieldError is returned under PolicyStrict when a node lacks a required
// coordinate or the geocoder result lacks an address field.
type MissingFieldError struct {
	OSMID string
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("node %q: required field %q is missing", e.OSMID, e.Field)
}

// Sink receives completed records in document order.
type Sink interface {
	WriteRow(rec record.Record) error
}

// State is the converter state between two events. The zero value is the
// state before the first event.
type State struct {
	Current record.Record
	InNode  bool
	Rows    int
}

// Converter turns OSM node events into geocoded records.
type Converter struct {
	geocoder geocode.Geocoder
	logger   *logger.Logger
	policy   Policy
}

// Option configures a Converter.
type Option func(*Converter)

// WithPolicy sets the address policy. An empty policy keeps PolicyLenient.
func WithPolicy(policy Policy) Option {
	return func(c *Converter) {
		if policy != "" {
			c.policy = policy
		}
	}
}

// New returns a Converter that looks up every node with coder.
func New(coder geocode.Geocoder, log *logger.Logger, opts ...Option) *Converter {
	c := &Converter{
		geocoder: coder,
		logger:   log,
		policy:   PolicyLenient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Records returns the completed records of the document in r, one per node. The
// sequence stops after the first error. It reads r once and cannot be restarted.
func (c *Converter) Records(ctx context.Context, r io.Reader) iter.Seq2[record.Record, error] {
	return func(yield func(record.Record, error) bool) {
		decoder := osmxml.NewDecoder(r)
		var state State
		for {
			if err := ctx.Err(); err != nil {
				yield(record.Record{}, err)
				return
			}

			event, err := decoder.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(record.Record{}, err)
				return
			}

			rec, done, err := c.Step(ctx, &state, event)
			if errors.Is(err, ErrNestedNode) {
				err = decoder.Errorf("%w", err)
			}
			if err != nil {
				yield(record.Record{}, err)
				return
			}
			if done && !yield(rec, nil) {
				return
			}
		}
	}
}

// Convert writes every record of the document in r to sink and returns the
// number of rows written.
func (c *Converter) Convert(ctx context.Context, r io.Reader, sink Sink) (int, error) {
	rows := 0
	for rec, err := range c.Records(ctx, r) {
		if err != nil {
			return rows, err
		}
		if err = sink.WriteRow(rec); err != nil {
			return rows, err
		}
		rows++
	}
	return rows, nil
}

// Step applies a single event to state. It returns the completed record and true
// when the event closes a node.
func (c *Converter) Step(ctx context.Context, state *State, event osmxml.Event) (record.Record, bool, error) {
	switch {
	case event.Kind == osmxml.Open && event.Name == elementNode:
		if state.InNode {
			return record.Record{}, false, ErrNestedNode
		}
		rec, err := c.openNode(ctx, event.Attrs)
		if err != nil {
			return record.Record{}, false, err
		}
		state.Current = rec
		state.InNode = true
	case event.Kind == osmxml.Close && event.Name == elementTag:
		// Tags of ways and relations are not part of any record
		if !state.InNode {
			return record.Record{}, false, nil
		}
		key, ok := event.Attrs.Get("k")
		if !ok {
			return record.Record{}, false, nil
		}
		value, _ := event.Attrs.Get("v")
		state.Current.SetTag(key, value)
	case event.Kind == osmxml.Close && event.Name == elementNode:
		rec := state.Current
		state.Current = record.Record{}
		state.InNode = false
		state.Rows++
		c.logger.Debug("node converted", slog.String("osm_id", rec.OSMID),
			slog.String("name", rec.Name), slog.String("city", rec.City), slog.Int("row", state.Rows))
		return rec, true, nil
	}
	return record.Record{}, false, nil
}

func (c *Converter) openNode(ctx context.Context, attrs osmxml.Attributes) (record.Record, error) {
	var rec record.Record
	rec.OSMID, _ = attrs.Get("id")
	rec.Lat, _ = attrs.Get("lat")
	rec.Lon, _ = attrs.Get("lon")
	rec.DateAdded, _ = attrs.Get("timestamp")

	lat, latErr := parseCoordinate(rec.Lat, 90)
	lon, lonErr := parseCoordinate(rec.Lon, 180)
	if latErr != nil || lonErr != nil {
		if c.policy == PolicyStrict {
			field := "lat"
			if latErr == nil {
				field = "lon"
			}
			return rec, &MissingFieldError{OSMID: rec.OSMID, Field: field}
		}
		c.logger.Warn("node has no usable coordinates, skipping geocoding",
			slog.String("osm_id", rec.OSMID), slog.String("lat", rec.Lat), slog.String("lon", rec.Lon))
		return rec, nil
	}

	addr, err := c.geocoder.Reverse(ctx, lat, lon)
	if err != nil {
		return rec, fmt.Errorf("failed to reverse geocode node %q using %s: %w", rec.OSMID,
			c.geocoder.Name(), err)
	}
	if !addr.AddressFound {
		return rec, fmt.Errorf("failed to reverse geocode node %q using %s: %w", rec.OSMID,
			c.geocoder.Name(), geocode.ErrNoResult)
	}
	c.logger.Debug("node geocoded", slog.String("osm_id", rec.OSMID),
		slog.String("display_name", addr.DisplayName), slog.Float64("result_lat", addr.Latitude),
		slog.Float64("result_lon", addr.Longitude))
	if err = c.applyAddress(&rec, addr); err != nil {
		return rec, err
	}
	return rec, nil
}

func (c *Converter) applyAddress(rec *record.Record, addr geocode.Address) error {
	fields := []struct {
		name   string
		lookup func() (string, bool)
		target *string
	}{
		{"postal_code", addr.Postcode, &rec.PostalCode},
		{"city", addr.Settlement, &rec.City},
		{"country", addr.Country, &rec.Country},
	}
	for _, field := range fields {
		val, ok := field.lookup()
		if !ok && c.policy == PolicyStrict {
			return &MissingFieldError{OSMID: rec.OSMID, Field: field.name}
		}
		*field.target = val
	}
	return nil
}

func parseCoordinate(val string, limit float64) (float64, error) {
	coord, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(coord) || math.Abs(coord) > limit {
		return 0, fmt.Errorf("coordinate %q out of range", val)
	}
	return coord, nil
}
