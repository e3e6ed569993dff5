package model

import (
	"errors"
	"strings"
	"testing"
)

func readAll(t *testing.T, input string) []string {
	t.Helper()

	reader := NewRecordReader(strings.NewReader(input), nil)
	defer func() {
		if err := reader.Close(); err != nil {
			t.Errorf("close failed: %v", err)
		}
	}()

	var records []string
	for reader.HasNext() {
		record, err := reader.Next()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		records = append(records, record)
	}
	if err := reader.Err(); err != nil {
		t.Fatalf("unexpected read error: %v", err)
	}
	return records
}

func TestRecordReader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
		{
			name:  "simple records",
			input: "a,b,c\n1,2,3\n",
			want:  []string{"a,b,c", "1,2,3"},
		},
		{
			name:  "final record without terminator",
			input: "a,b\nc,d",
			want:  []string{"a,b", "c,d"},
		},
		{
			name:  "crlf terminators",
			input: "a,b\r\nc,d\r\n",
			want:  []string{"a,b", "c,d"},
		},
		{
			name:  "bare carriage return is dropped",
			input: "a\rb\nc\n",
			want:  []string{"ab", "c"},
		},
		{
			name:  "blank lines become empty records",
			input: "a\n\nb\n",
			want:  []string{"a", "", "b"},
		},
		{
			name:  "quoted line break stays in one record",
			input: "a,\"line1\nline2\",c\nx,y,z\n",
			want:  []string{"a,\"line1\nline2\",c", "x,y,z"},
		},
		{
			name:  "quoted carriage return is preserved",
			input: "\"a\r\nb\"\n",
			want:  []string{"\"a\r\nb\""},
		},
		{
			name:  "escaped quotes pass through verbatim",
			input: "x,\"y\"\"z\"\n",
			want:  []string{`x,"y""z"`},
		},
		{
			name:  "quoted delimiter stays in one field span",
			input: "\"a,b\",c\n",
			want:  []string{`"a,b",c`},
		},
		{
			name:  "unterminated quote swallows to end of stream",
			input: "a,\"unterminated\nstill the same record",
			want:  []string{"a,\"unterminated\nstill the same record"},
		},
		{
			name:  "quote closed at end of stream",
			input: "a,\"done\"",
			want:  []string{`a,"done"`},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := readAll(t, tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d records %q, want %d %q", len(got), got, len(tt.want), tt.want)
			}
			for i, record := range got {
				if record != tt.want[i] {
					t.Errorf("record %d = %q, want %q", i, record, tt.want[i])
				}
			}
		})
	}
}

func TestRecordReader_HasNextIsIdempotent(t *testing.T) {
	t.Parallel()

	reader := NewRecordReader(strings.NewReader("a\nb\n"), nil)
	defer reader.Close() //nolint:errcheck

	for i := 0; i < 3; i++ {
		if !reader.HasNext() {
			t.Fatal("expected HasNext to be true")
		}
	}
	record, err := reader.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record != "a" {
		t.Errorf("expected first record 'a', got %q", record)
	}
}

func TestRecordReader_NextAfterExhaustion(t *testing.T) {
	t.Parallel()

	reader := NewRecordReader(strings.NewReader("only\n"), nil)
	defer reader.Close() //nolint:errcheck

	if _, err := reader.Next(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reader.HasNext() {
		t.Error("expected HasNext to be false")
	}
	if _, err := reader.Next(); !errors.Is(err, ErrNoMoreRecords) {
		t.Errorf("expected ErrNoMoreRecords, got %v", err)
	}
}

func TestRecordReader_CloseIsIdempotent(t *testing.T) {
	t.Parallel()

	closes := 0
	reader := NewRecordReader(strings.NewReader("a\nb\n"), func() error {
		closes++
		return nil
	})

	if !reader.HasNext() {
		t.Fatal("expected HasNext to be true")
	}
	for i := 0; i < 2; i++ {
		if err := reader.Close(); err != nil {
			t.Fatalf("close failed: %v", err)
		}
	}
	if closes != 1 {
		t.Errorf("expected underlying stream closed once, got %d", closes)
	}
	if reader.HasNext() {
		t.Error("expected HasNext to be false after close")
	}
	if _, err := reader.Next(); !errors.Is(err, ErrNoMoreRecords) {
		t.Errorf("expected ErrNoMoreRecords after close, got %v", err)
	}
}

type failingReader struct{ err error }

func (r *failingReader) Read([]byte) (int, error) {
	return 0, r.err
}

func TestRecordReader_ReadErrorSurfacesViaErr(t *testing.T) {
	t.Parallel()

	readErr := errors.New("disk on fire")
	reader := NewRecordReader(&failingReader{err: readErr}, nil)
	defer reader.Close() //nolint:errcheck

	if reader.HasNext() {
		t.Fatal("expected HasNext to be false")
	}
	if !errors.Is(reader.Err(), readErr) {
		t.Errorf("expected Err to surface the read error, got %v", reader.Err())
	}
	if _, err := reader.Next(); !errors.Is(err, readErr) {
		t.Errorf("expected Next to return the read error, got %v", err)
	}
}
