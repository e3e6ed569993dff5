package csvload

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/nao1215/csvload/domain/model"

	_ "modernc.org/sqlite" // SQLite driver for the default sink
)

// Sink is the transactional store receiving valid rows. The Loader owns
// the sink's transaction for the duration of one Load call; no other
// writer may interleave commits against the same target during that call.
type Sink interface {
	// CreateTable creates the target table from the header if it does
	// not exist yet. Column names come from the header values.
	CreateTable(ctx context.Context, table string, header model.Header) error

	// Prepare readies a parameterized insert of columns values into
	// table. It is called once per load, before any rows are routed, and
	// fails fatally if the statement cannot be prepared.
	Prepare(ctx context.Context, table string, columns int) (Batch, error)

	// Close releases the underlying connection.
	Close() error
}

// Batch accumulates bound rows against a prepared insert and commits
// them together on Flush.
type Batch interface {
	// Add binds one row of values to the prepared statement. A nil value
	// binds as SQL NULL.
	Add(ctx context.Context, args []any) error

	// Flush executes all pending inserts in one transaction and commits.
	// Flushing an empty batch is a no-op.
	Flush(ctx context.Context) error

	// Close releases the prepared statement. Pending rows that were
	// never flushed are discarded.
	Close() error
}

// SQLiteSink is a Sink backed by a SQLite database file.
type SQLiteSink struct {
	db *sql.DB
}

// NewSQLiteSink opens (or creates) the SQLite database at the given path.
func NewSQLiteSink(database string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &SQLiteSink{db: db}, nil
}

// CreateTable creates the table with one TEXT column per header value.
func (s *SQLiteSink) CreateTable(ctx context.Context, table string, header model.Header) error {
	columns := make([]string, 0, len(header))
	for _, col := range header {
		columns = append(columns, fmt.Sprintf(`[%s] TEXT`, col))
	}

	query := fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS [%s] (%s)`,
		table,
		strings.Join(columns, ", "),
	)
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

// Prepare prepares the insert statement with columns positional
// placeholders against table.
func (s *SQLiteSink) Prepare(ctx context.Context, table string, columns int) (Batch, error) {
	query := fmt.Sprintf(
		`INSERT INTO [%s] VALUES (%s)`,
		table,
		buildPlaceholders(columns),
	)
	stmt, err := s.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare insert: %w", err)
	}
	return &sqliteBatch{db: s.db, stmt: stmt}, nil
}

// Close closes the database connection.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

// buildPlaceholders creates placeholder string for prepared statements
func buildPlaceholders(count int) string {
	if count == 0 {
		return ""
	}
	placeholders := "?"
	for i := 1; i < count; i++ {
		placeholders += ", ?"
	}
	return placeholders
}

// sqliteBatch implements Batch on a prepared statement, executing all
// pending rows inside one transaction per Flush.
type sqliteBatch struct {
	db      *sql.DB
	stmt    *sql.Stmt
	pending [][]any
}

// Add appends one bound row to the pending batch.
func (b *sqliteBatch) Add(_ context.Context, args []any) error {
	b.pending = append(b.pending, args)
	return nil
}

// Flush executes the pending rows in one transaction and commits.
func (b *sqliteBatch) Flush(ctx context.Context) error {
	if len(b.pending) == 0 {
		return nil
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt := tx.StmtContext(ctx, b.stmt)
	for _, args := range b.pending {
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to execute insert: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	b.pending = b.pending[:0]
	return nil
}

// Close releases the prepared statement.
func (b *sqliteBatch) Close() error {
	return b.stmt.Close()
}
