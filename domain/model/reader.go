package model

import (
	"bufio"
	"errors"
	"io"
)

// ErrNoMoreRecords indicates Next was called on an exhausted RecordReader.
var ErrNoMoreRecords = errors.New("csvload: no more records")

// initialRecordCapacity is the starting size of the record buffer. The
// buffer is reused across records, so the capacity grows to fit the
// largest record seen and stays there.
const initialRecordCapacity = 8192

// RecordReader reads logical records from a delimited text stream.
//
// A record is terminated by an unquoted line terminator. Quoted spans are
// opaque to termination: embedded delimiters, quote pairs, and line breaks
// inside double quotes are preserved verbatim in the returned record.
// A bare '\r' outside quotes is dropped, so '\r\n' and '\n' terminate
// records uniformly. End of stream ends the final record even without a
// terminator; an unterminated quoted span is not detected and simply
// consumes the rest of the stream into the final record.
//
// RecordReader is not safe for concurrent use.
type RecordReader struct {
	reader *bufio.Reader
	close  func() error
	next   *string
	err    error
	closed bool
	buf    []byte
}

// NewRecordReader creates a RecordReader consuming r. The close function
// releases the underlying stream and may be nil.
func NewRecordReader(r io.Reader, close func() error) *RecordReader {
	return &RecordReader{
		reader: bufio.NewReader(r),
		close:  close,
		buf:    make([]byte, 0, initialRecordCapacity),
	}
}

// HasNext reports whether another record is available. It reads ahead at
// most one record; repeated calls before Next return the cached result
// without touching the stream. A read failure makes HasNext return false
// and is available via Err.
func (r *RecordReader) HasNext() bool {
	if r.closed || r.err != nil {
		return false
	}
	if r.next != nil {
		return true
	}
	record, ok, err := r.readRecord()
	if err != nil {
		r.err = err
		return false
	}
	if !ok {
		return false
	}
	r.next = &record
	return true
}

// Next returns the next record and clears the read-ahead cache. It
// returns ErrNoMoreRecords when the stream is exhausted or the reader is
// closed, and the underlying read error if one occurred.
func (r *RecordReader) Next() (string, error) {
	if !r.HasNext() {
		if r.err != nil {
			return "", r.err
		}
		return "", ErrNoMoreRecords
	}
	record := *r.next
	r.next = nil
	return record, nil
}

// Err returns the first read error encountered, if any. End of stream is
// not an error.
func (r *RecordReader) Err() error {
	return r.err
}

// Close releases the underlying stream. It is safe to call multiple
// times; only the first call closes the stream.
func (r *RecordReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.next = nil
	if r.close != nil {
		return r.close()
	}
	return nil
}

// readRecord reads one record. The second return value is false when the
// stream was already exhausted.
func (r *RecordReader) readRecord() (string, bool, error) {
	c, err := r.reader.ReadByte()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", false, nil
		}
		return "", false, err
	}

	r.buf = r.buf[:0]
	for {
		switch c {
		case '\n':
			return string(r.buf), true, nil
		case '\r':
			// Dropped: '\r' never terminates a record by itself.
		case '"':
			r.buf = append(r.buf, c)
			next, done, err := r.readQuotedSpan()
			if err != nil {
				return "", false, err
			}
			if done {
				return string(r.buf), true, nil
			}
			// next was consumed as the quote-end peek; process it
			// without re-reading.
			c = next
			continue
		default:
			r.buf = append(r.buf, c)
		}

		c, err = r.reader.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				// End of file is a valid implicit terminator.
				return string(r.buf), true, nil
			}
			return "", false, err
		}
	}
}

// readQuotedSpan consumes a quoted span (opening quote already buffered),
// appending every byte verbatim including line breaks. A quote pair is an
// escaped quote and stays inside the span. It returns the first byte
// after the span, or done=true if the stream ended inside or immediately
// after the span.
func (r *RecordReader) readQuotedSpan() (byte, bool, error) {
	for {
		c, err := r.reader.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return 0, true, nil
			}
			return 0, true, err
		}
		r.buf = append(r.buf, c)
		if c != '"' {
			continue
		}
		next, err := r.reader.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return 0, true, nil
			}
			return 0, true, err
		}
		if next == '"' {
			r.buf = append(r.buf, next)
			continue
		}
		return next, false, nil
	}
}
