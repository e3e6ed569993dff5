package csvload

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// invalidRecordPath derives the sidecar file path for malformed rows:
// the source path with compression and .csv extensions removed, plus
// "-invalid.csv".
func invalidRecordPath(source string) string {
	base := trimCompressionExt(source)
	if strings.HasSuffix(strings.ToLower(base), ".csv") {
		base = base[:len(base)-len(".csv")]
	}
	return base + "-invalid.csv"
}

// invalidRecordWriter appends raw records to the sidecar file, one per
// line. The file is created lazily on the first write, so a fully valid
// load leaves no sidecar behind.
type invalidRecordWriter struct {
	path    string
	file    *os.File
	writer  *bufio.Writer
	created bool
}

func newInvalidRecordWriter(path string) *invalidRecordWriter {
	return &invalidRecordWriter{path: path}
}

// Write appends one raw record, verbatim, newline-terminated.
func (w *invalidRecordWriter) Write(record string) error {
	if w.file == nil {
		file, err := os.Create(w.path) //nolint:gosec // Sidecar path is derived from the user-provided source path
		if err != nil {
			return fmt.Errorf("failed to create invalid record file: %w", err)
		}
		w.file = file
		w.writer = bufio.NewWriter(file)
		w.created = true
	}
	if _, err := w.writer.WriteString(record); err != nil {
		return fmt.Errorf("failed to write invalid record: %w", err)
	}
	if err := w.writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("failed to write invalid record: %w", err)
	}
	return nil
}

// Path returns the sidecar path, or "" if no record was ever written.
func (w *invalidRecordWriter) Path() string {
	if !w.created {
		return ""
	}
	return w.path
}

// Close flushes and closes the sidecar file if it was created.
func (w *invalidRecordWriter) Close() error {
	if w.file == nil {
		return nil
	}
	flushErr := w.writer.Flush()
	if closeErr := w.file.Close(); closeErr != nil && flushErr == nil {
		flushErr = closeErr
	}
	w.file = nil
	if flushErr != nil {
		return fmt.Errorf("failed to close invalid record file: %w", flushErr)
	}
	return nil
}
