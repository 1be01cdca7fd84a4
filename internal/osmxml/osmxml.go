// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package osmxml turns an OSM XML document into a stream of element open and
// close events.
package osmxml

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/encoding/htmlindex"
)

type Kind int

const (
	Open Kind = iota
	Close
)

func (k Kind) String() string {
	switch k {
	case Open:
		return "open"
	case Close:
		return "close"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Attributes maps attribute names to values.
type Attributes map[string]string

// Get returns the attribute value and whether it was present.
func (a Attributes) Get(name string) (string, bool) {
	val, ok := a[name]
	return val, ok
}

// Event is one element boundary. Close events carry the attributes of the
// matching open element.
type Event struct {
	Kind  Kind
	Name  string
	Attrs Attributes
}

// ParseError reports a malformed document.
type ParseError struct {
	Line   int
	Column int
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed OSM document at line %d, column %d: %s", e.Line, e.Column, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Decoder reads events from an XML stream.
type Decoder struct {
	decoder *xml.Decoder
	stack   []Event
}

func NewDecoder(r io.Reader) *Decoder {
	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		enc, err := htmlindex.Get(charset)
		if err != nil {
			return nil, fmt.Errorf("unsupported charset %q: %w", charset, err)
		}
		return enc.NewDecoder().Reader(input), nil
	}
	return &Decoder{decoder: decoder}
}

// Next returns the next open or close event. It returns io.EOF once the
// document has been read completely.
func (d *Decoder) Next() (Event, error) {
	for {
		tok, err := d.decoder.Token()
		if errors.Is(err, io.EOF) {
			if len(d.stack) > 0 {
				return Event{}, d.Errorf("unexpected end of document inside <%s>",
					d.stack[len(d.stack)-1].Name)
			}
			return Event{}, io.EOF
		}
		if err != nil {
			return Event{}, d.wrap(err)
		}

		switch elem := tok.(type) {
		case xml.StartElement:
			attrs := make(Attributes, len(elem.Attr))
			for _, attr := range elem.Attr {
				attrs[attr.Name.Local] = attr.Value
			}
			event := Event{Kind: Open, Name: elem.Name.Local, Attrs: attrs}
			d.stack = append(d.stack, event)
			return event, nil
		case xml.EndElement:
			if len(d.stack) == 0 {
				return Event{}, d.Errorf("unexpected closing element </%s>", elem.Name.Local)
			}
			open := d.stack[len(d.stack)-1]
			d.stack = d.stack[:len(d.stack)-1]
			return Event{Kind: Close, Name: open.Name, Attrs: open.Attrs}, nil
		}
	}
}

// Errorf returns a ParseError positioned at the current input offset.
func (d *Decoder) Errorf(format string, args ...any) error {
	return d.wrap(fmt.Errorf(format, args...))
}

func (d *Decoder) wrap(err error) error {
	line, column := d.decoder.InputPos()
	return &ParseError{Line: line, Column: column, Err: err}
}
