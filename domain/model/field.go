// Package model provides domain model for csvload
package model

// Field is one value within a record. A Field is either a string value
// (possibly empty) or the absent marker, which binds as SQL NULL.
type Field struct {
	value  string
	absent bool
}

// NewField creates a new Field holding the given value.
func NewField(value string) Field {
	return Field{value: value}
}

// AbsentField creates the absent marker Field.
func AbsentField() Field {
	return Field{absent: true}
}

// IsAbsent returns true if the field is the absent marker.
func (f Field) IsAbsent() bool {
	return f.absent
}

// String returns the field value. The absent marker renders as the
// empty string.
func (f Field) String() string {
	return f.value
}

// Bind returns the value to bind to a statement placeholder: nil for the
// absent marker, the string value otherwise.
func (f Field) Bind() any {
	if f.absent {
		return nil
	}
	return f.value
}

// Equal compare Field.
func (f Field) Equal(f2 Field) bool {
	return f.absent == f2.absent && f.value == f2.value
}

// Record is the ordered field values of one record. Its length is the
// record's field count, which may vary record to record.
type Record []Field

// NewRecord create new Record from plain string values.
func NewRecord(values []string) Record {
	r := make(Record, 0, len(values))
	for _, v := range values {
		r = append(r, NewField(v))
	}
	return r
}

// Equal compare Record.
func (r Record) Equal(r2 Record) bool {
	if len(r) != len(r2) {
		return false
	}
	for i, f := range r {
		if !f.Equal(r2[i]) {
			return false
		}
	}
	return true
}

// Bind returns the record values as statement arguments, absent fields
// as nil.
func (r Record) Bind() []any {
	args := make([]any, len(r))
	for i, f := range r {
		args[i] = f.Bind()
	}
	return args
}

// Header is the first record of a file. Its length is the authoritative
// expected column count for the remainder of the file.
type Header []string

// NewHeader creates a Header from the parsed first record. Absent fields
// become empty column names; the field count is preserved.
func NewHeader(record Record) Header {
	h := make(Header, 0, len(record))
	for _, f := range record {
		h = append(h, f.String())
	}
	return h
}

// Columns returns the expected column count.
func (h Header) Columns() int {
	return len(h)
}

// Equal compare Header.
func (h Header) Equal(h2 Header) bool {
	if len(h) != len(h2) {
		return false
	}
	for i, v := range h {
		if v != h2[i] {
			return false
		}
	}
	return true
}
