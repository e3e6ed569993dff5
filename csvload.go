// Package csvload loads delimited text files into a SQLite database.
//
// The input file may contain fields enclosed in double quotes that span
// embedded commas, embedded quote characters (doubled), and embedded
// line breaks, and its records may legitimately differ in field count.
// The first record is the header; its field count fixes the expected
// column count for the rest of the file. Records matching that count
// are inserted in batched transactions, records that do not match are
// diverted verbatim to a sidecar file instead of failing the load.
//
// Example usage:
//
//	loader, err := csvload.New("data.db", csvload.WithBatchSize(500))
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer loader.Close()
//
//	summary, err := loader.Load(context.Background(), "users.csv", "users")
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(summary)
package csvload

import (
	"context"
	"errors"
	"fmt"

	"github.com/nao1215/csvload/domain/model"
)

// DefaultBatchSize is the number of pending inserts that triggers a
// commit when no explicit batch size is configured.
const DefaultBatchSize = 1000

// Loader routes records from a delimited text file into a transactional
// sink. A Loader may run multiple loads, but only one at a time.
type Loader struct {
	sink        Sink
	batchSize   int
	createTable bool
}

// Option configures a Loader.
type Option func(*Loader)

// WithBatchSize sets the number of pending inserts per commit. New
// rejects values of zero or less.
func WithBatchSize(size int) Option {
	return func(l *Loader) {
		l.batchSize = size
	}
}

// WithCreateTable makes Load create the target table from the header
// (all columns TEXT) if it does not exist. By default the table must
// already exist.
func WithCreateTable() Option {
	return func(l *Loader) {
		l.createTable = true
	}
}

// New creates a Loader writing to the SQLite database at the given path.
func New(database string, opts ...Option) (*Loader, error) {
	sink, err := NewSQLiteSink(database)
	if err != nil {
		return nil, err
	}
	loader, err := newLoader(sink, opts...)
	if err != nil {
		_ = sink.Close()
		return nil, err
	}
	return loader, nil
}

// newLoader creates a Loader on an arbitrary sink, validating options
// before any I/O occurs.
func newLoader(sink Sink, opts ...Option) (*Loader, error) {
	loader := &Loader{
		sink:      sink,
		batchSize: DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(loader)
	}
	if loader.batchSize <= 0 {
		return nil, ErrInvalidBatchSize
	}
	return loader, nil
}

// Close releases the underlying sink.
func (l *Loader) Close() error {
	return l.sink.Close()
}

// Load reads the delimited text file at source and inserts its records
// into table.
//
// The first record is parsed as the header; its field count C fixes the
// expected column count. Each subsequent record is parsed and routed:
// records with exactly C fields are bound to the prepared insert (absent
// trailing fields as NULL) and committed every batchSize rows plus a
// final flush, records with any other field count are appended verbatim
// to the invalid-record sidecar file, created lazily on first use. Fully
// blank records are skipped and counted in neither total.
//
// Source files compressed with gzip, bzip2, xz, or zstd are decompressed
// transparently based on their extension.
//
// Load fails outright only on I/O errors and sink errors; malformed rows
// never abort the load. Batches committed before a failure remain
// committed.
func (l *Loader) Load(ctx context.Context, source, table string) (*Summary, error) {
	reader, err := openRecordReader(source)
	if err != nil {
		return nil, err
	}

	headerRecord, err := reader.Next()
	if err != nil {
		_ = reader.Close()
		if errors.Is(err, model.ErrNoMoreRecords) {
			return nil, ErrEmptySource
		}
		return nil, err
	}
	header := model.NewHeader(model.ParseRecord(headerRecord))

	if l.createTable {
		if err := l.sink.CreateTable(ctx, table, header); err != nil {
			_ = reader.Close()
			return nil, err
		}
	}

	batch, err := l.sink.Prepare(ctx, table, header.Columns())
	if err != nil {
		_ = reader.Close()
		return nil, err
	}

	invalid := newInvalidRecordWriter(invalidRecordPath(source))
	summary, loadErr := l.route(ctx, reader, batch, invalid, header.Columns())

	// Release order: reader, invalid sidecar, statement. Release
	// failures are reported but never mask an in-flight error.
	if err := reader.Close(); err != nil && loadErr == nil {
		loadErr = err
	}
	if err := invalid.Close(); err != nil && loadErr == nil {
		loadErr = err
	}
	if err := batch.Close(); err != nil && loadErr == nil {
		loadErr = err
	}

	if loadErr != nil {
		return nil, loadErr
	}
	return summary, nil
}

// route consumes the remaining records, dispatching each into the batch
// or the invalid sidecar, and flushes the final partial batch.
func (l *Loader) route(ctx context.Context, reader *model.RecordReader, batch Batch, invalid *invalidRecordWriter, columns int) (*Summary, error) {
	validRecords := 0
	invalidRecords := 0
	inserts := 0

	for reader.HasNext() {
		record, err := reader.Next()
		if err != nil {
			return nil, err
		}
		if record == "" {
			continue
		}

		values := model.ParseRecord(record)
		if len(values) != columns {
			if err := invalid.Write(record); err != nil {
				return nil, err
			}
			invalidRecords++
			continue
		}

		if err := batch.Add(ctx, values.Bind()); err != nil {
			return nil, err
		}
		inserts++
		validRecords++
		if inserts == l.batchSize {
			if err := batch.Flush(ctx); err != nil {
				return nil, err
			}
			inserts = 0
		}
	}
	if err := reader.Err(); err != nil {
		return nil, err
	}

	if inserts > 0 {
		if err := batch.Flush(ctx); err != nil {
			return nil, err
		}
	}

	return &Summary{
		Total:       validRecords + invalidRecords,
		Valid:       validRecords,
		Invalid:     invalidRecords,
		InvalidPath: invalid.Path(),
	}, nil
}

// openRecordReader opens the source file, stacking a decompression
// reader when the extension calls for one.
func openRecordReader(source string) (*model.RecordReader, error) {
	reader, cleanup, err := openSource(source)
	if err != nil {
		return nil, err
	}
	return model.NewRecordReader(reader, cleanup), nil
}

// Summary reports the outcome of one load.
type Summary struct {
	// Total is the number of records processed, excluding the header
	// and blank lines.
	Total int
	// Valid is the number of records inserted into the sink.
	Valid int
	// Invalid is the number of records diverted to the sidecar file.
	Invalid int
	// InvalidPath is the sidecar file path, or "" if every record was
	// valid.
	InvalidPath string
}

// String renders the summary as a human-readable report.
func (s *Summary) String() string {
	message := fmt.Sprintf(
		"Total records in CSV file: %d\nValid records in CSV file: %d\nInvalid records in CSV file: %d",
		s.Total, s.Valid, s.Invalid,
	)
	if s.Invalid > 0 && s.InvalidPath != "" {
		message += "\nInvalid CSV records saved to: " + s.InvalidPath
	}
	return message
}
