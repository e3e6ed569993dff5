package csvload

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nao1215/csvload/domain/model"
)

func newTestSink(t *testing.T) (*SQLiteSink, string) {
	t.Helper()

	database := filepath.Join(t.TempDir(), "sink.db")
	sink, err := NewSQLiteSink(database)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, sink.Close())
	})
	return sink, database
}

func TestSQLiteSink_CreateTable(t *testing.T) {
	t.Parallel()

	sink, _ := newTestSink(t)
	ctx := context.Background()
	header := model.NewHeader(model.ParseRecord("id,name"))

	require.NoError(t, sink.CreateTable(ctx, "people", header))
	// CREATE TABLE IF NOT EXISTS: repeating is a no-op.
	require.NoError(t, sink.CreateTable(ctx, "people", header))

	batch, err := sink.Prepare(ctx, "people", header.Columns())
	require.NoError(t, err)
	require.NoError(t, batch.Close())
}

func TestSQLiteSink_PrepareMissingTable(t *testing.T) {
	t.Parallel()

	sink, _ := newTestSink(t)

	_, err := sink.Prepare(context.Background(), "missing", 2)
	assert.Error(t, err)
}

func TestSQLiteSink_BatchFlush(t *testing.T) {
	t.Parallel()

	sink, database := newTestSink(t)
	ctx := context.Background()
	header := model.NewHeader(model.ParseRecord("a,b"))
	require.NoError(t, sink.CreateTable(ctx, "rows", header))

	batch, err := sink.Prepare(ctx, "rows", 2)
	require.NoError(t, err)
	defer batch.Close() //nolint:errcheck

	require.NoError(t, batch.Add(ctx, []any{"1", "2"}))
	require.NoError(t, batch.Add(ctx, []any{"3", nil}))
	require.NoError(t, batch.Flush(ctx))

	assert.Equal(t, 2, queryInt(t, database, `SELECT COUNT(*) FROM [rows]`))
	assert.Equal(t, 1, queryInt(t, database, `SELECT COUNT(*) FROM [rows] WHERE b IS NULL`))

	// A flush with nothing pending is a no-op.
	require.NoError(t, batch.Flush(ctx))
	assert.Equal(t, 2, queryInt(t, database, `SELECT COUNT(*) FROM [rows]`))
}

func TestBuildPlaceholders(t *testing.T) {
	t.Parallel()

	assert.Empty(t, buildPlaceholders(0))
	assert.Equal(t, "?", buildPlaceholders(1))
	assert.Equal(t, "?, ?, ?", buildPlaceholders(3))
}
