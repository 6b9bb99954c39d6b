package perf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inferkit/smc-go/pkg/core"
	"github.com/inferkit/smc-go/pkg/errors"
)

func TestExportParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "perf.parquet")
	tables := []*Table{
		sampleTable(t, 0.4, 0.2),
		sampleTable(t, 0.3, 0.1),
	}

	require.NoError(t, ExportParquet(path, tables))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestExportParquetEmptyTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.parquet")

	err := ExportParquet(path, nil)
	require.Error(t, err)
	assert.Equal(t, errors.InvalidInput, errors.Code(err))
}

func TestExportParquetSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mismatch.parquet")
	tables := []*Table{
		sampleTable(t, 0.4),
		NewTable(core.Schema{}),
	}

	err := ExportParquet(path, tables)
	require.Error(t, err)
	assert.Equal(t, errors.InvalidInput, errors.Code(err))
}

func TestExportParquetNoRecords(t *testing.T) {
	// Tables with zero records still produce a valid, empty file.
	path := filepath.Join(t.TempDir(), "norows.parquet")
	require.NoError(t, ExportParquet(path, []*Table{NewTable(timeSchema)}))

	_, err := os.Stat(path)
	require.NoError(t, err)
}
