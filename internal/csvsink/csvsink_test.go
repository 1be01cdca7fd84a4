// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package csvsink

import (
	"bytes"
	"encoding/csv"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/wneessen/osm2csv/internal/record"
)

func TestSink_WriteHeader(t *testing.T) {
	t.Run("header contains all fields in order", func(t *testing.T) {
		buf := bytes.NewBuffer(nil)
		sink := New(buf)
		if err := sink.WriteHeader(); err != nil {
			t.Fatalf("failed to write header: %s", err)
		}
		if err := sink.Flush(); err != nil {
			t.Fatalf("failed to flush: %s", err)
		}
		want := strings.Join(record.Fields, ",") + "\n"
		if buf.String() != want {
			t.Errorf("expected header %q, got %q", want, buf.String())
		}
	})
	t.Run("writing the header twice fails", func(t *testing.T) {
		sink := New(bytes.NewBuffer(nil))
		if err := sink.WriteHeader(); err != nil {
			t.Fatalf("failed to write header: %s", err)
		}
		if err := sink.WriteHeader(); !errors.Is(err, ErrHeaderWritten) {
			t.Errorf("expected error to be %s, got %s", ErrHeaderWritten, err)
		}
	})
}

func TestSink_WriteRow(t *testing.T) {
	t.Run("absent fields are written as empty cells", func(t *testing.T) {
		buf := bytes.NewBuffer(nil)
		sink := New(buf)
		if err := sink.WriteHeader(); err != nil {
			t.Fatalf("failed to write header: %s", err)
		}
		if err := sink.WriteRow(record.Record{OSMID: "1", Name: "Louvre"}); err != nil {
			t.Fatalf("failed to write row: %s", err)
		}
		if err := sink.Flush(); err != nil {
			t.Fatalf("failed to flush: %s", err)
		}
		lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
		if len(lines) != 2 {
			t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
		}
		want := "1,Louvre" + strings.Repeat(",", len(record.Fields)-2)
		if lines[1] != want {
			t.Errorf("expected row %q, got %q", want, lines[1])
		}
	})
	t.Run("header is written once when rows come first", func(t *testing.T) {
		buf := bytes.NewBuffer(nil)
		sink := New(buf)
		for _, id := range []string{"1", "2"} {
			if err := sink.WriteRow(record.Record{OSMID: id}); err != nil {
				t.Fatalf("failed to write row: %s", err)
			}
		}
		if err := sink.Flush(); err != nil {
			t.Fatalf("failed to flush: %s", err)
		}
		rows, err := csv.NewReader(buf).ReadAll()
		if err != nil {
			t.Fatalf("failed to read CSV: %s", err)
		}
		if len(rows) != 3 {
			t.Fatalf("expected header and 2 rows, got %d rows", len(rows))
		}
		if rows[0][0] != "osm_id" {
			t.Errorf("expected first row to be the header, got %v", rows[0])
		}
	})
	t.Run("fully populated record survives a round trip", func(t *testing.T) {
		rec := record.Record{
			OSMID:       "123456",
			Name:        `Musée "du" Louvre`,
			NameEN:      "Louvre, Museum",
			IntName:     "Louvre\nMuseum",
			OldName:     "Palais du Louvre",
			OldNameEN:   "Louvre Palace",
			Number:      "99",
			Street:      "Rue de Rivoli",
			PostalCode:  "75001",
			City:        "Paris",
			Country:     "France",
			Lat:         "48.8606",
			Lon:         "2.3376",
			Website:     "https://www.louvre.fr",
			Phone:       "+33 1 40 20 50 50",
			Fax:         "+33 1 40 20 50 51",
			Tags:        "tourism=museum;wheelchair=yes",
			Description: "Art museum, world's largest",
			DateAdded:   "2020-01-01T00:00:00Z",
		}
		buf := bytes.NewBuffer(nil)
		sink := New(buf)
		if err := sink.WriteHeader(); err != nil {
			t.Fatalf("failed to write header: %s", err)
		}
		if err := sink.WriteRow(rec); err != nil {
			t.Fatalf("failed to write row: %s", err)
		}
		if err := sink.Flush(); err != nil {
			t.Fatalf("failed to flush: %s", err)
		}

		rows, err := csv.NewReader(buf).ReadAll()
		if err != nil {
			t.Fatalf("failed to read CSV: %s", err)
		}
		if len(rows) != 2 {
			t.Fatalf("expected 2 rows, got %d", len(rows))
		}
		val := reflect.ValueOf(rec)
		want := make([]string, val.NumField())
		for i := range want {
			want[i] = val.Field(i).String()
		}
		if len(rows[1]) != len(want) {
			t.Fatalf("expected %d columns, got %d", len(want), len(rows[1]))
		}
		for i := range want {
			if rows[1][i] != want[i] {
				t.Errorf("column %s: expected %q, got %q", record.Fields[i], want[i], rows[1][i])
			}
		}
	})
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("intentionally failing") }

func TestSink_Flush(t *testing.T) {
	t.Run("flush reports write errors", func(t *testing.T) {
		sink := New(failWriter{})
		if err := sink.WriteRow(record.Record{OSMID: "1"}); err != nil {
			t.Fatalf("did not expect buffered write to fail: %s", err)
		}
		if err := sink.Flush(); err == nil {
			t.Error("expected flush to fail")
		}
	})
}
