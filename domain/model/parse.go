package model

import "strings"

const (
	delimiter = ','
	quote     = '"'
)

// ParseRecord splits one raw record into its ordered field values.
//
// The record must already be free of unquoted line terminators (the
// RecordReader guarantees this). Fields enclosed in double quotes may
// contain embedded delimiters and quote characters; an embedded quote is
// represented as a pair of double quotes and is collapsed to a single
// literal quote in the emitted value. A delimiter or closing quote that
// is the final character of the record emits an additional trailing
// absent field, so the field count reflects the implicit trailing empty
// column.
//
// ParseRecord is total: it never fails, even on malformed quoting. A
// quoted field with no closing quote consumes the remainder of the
// record as its value.
func ParseRecord(record string) Record {
	values := Record{}
	if record == "" {
		return values
	}
	s := 0
	for {
		switch record[s] {
		case delimiter:
			values = append(values, AbsentField())
			if s+1 == len(record) {
				return append(values, AbsentField())
			}
			s++
		case quote:
			s++
			e := s
			pair := false
			for {
				if e >= len(record) {
					// Unterminated quote: the rest of the record is the value.
					return append(values, quotedField(record[s:], pair))
				}
				if record[e] != quote {
					e++
					continue
				}
				if e+1 < len(record) && record[e+1] == quote {
					pair = true
					e += 2
					continue
				}
				values = append(values, quotedField(record[s:e], pair))
				if e+1 == len(record) {
					return values
				}
				if e+2 == len(record) {
					return append(values, AbsentField())
				}
				s = e + 2
				break
			}
		default:
			e := s + 1
			for e < len(record) && record[e] != delimiter {
				e++
			}
			values = append(values, NewField(record[s:e]))
			if e == len(record) {
				return values
			}
			if e+1 == len(record) {
				return append(values, AbsentField())
			}
			s = e + 1
		}
	}
}

// quotedField builds the field value for a quoted span. The doubled-quote
// collapse only runs when at least one escape pair was seen, so the
// common no-escape case returns the substring unmodified.
func quotedField(body string, pair bool) Field {
	if pair {
		return NewField(strings.ReplaceAll(body, `""`, `"`))
	}
	return NewField(body)
}
