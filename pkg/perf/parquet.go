package perf

import (
	"os"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/apache/arrow/go/v13/arrow/array"
	"github.com/apache/arrow/go/v13/arrow/memory"
	"github.com/apache/arrow/go/v13/parquet"
	"github.com/apache/arrow/go/v13/parquet/pqarrow"

	"github.com/inferkit/smc-go/pkg/core"
	"github.com/inferkit/smc-go/pkg/errors"
)

// ExportParquet writes the performance tables to one Parquet file. The
// column layout is the fixed record fields followed by one column per
// experiment-parameter schema field; all tables must share the schema of the
// first.
func ExportParquet(path string, tables []*Table) error {
	if len(tables) == 0 {
		return errors.New(errors.InvalidInput, "no tables to export")
	}
	schema := tables[0].Schema
	for i, t := range tables[1:] {
		if len(t.Schema) != len(schema) {
			return errors.WithFields(
				errors.New(errors.InvalidInput, "tables have mismatched schemas"),
				errors.Fields{"table": i + 1},
			)
		}
	}

	fields := []arrow.Field{
		{Name: "trial_id", Type: arrow.BinaryTypes.String},
		{Name: "experiment", Type: arrow.PrimitiveTypes.Int64},
		{Name: "loss", Type: arrow.PrimitiveTypes.Float64},
		{Name: "resample_count", Type: arrow.PrimitiveTypes.Int64},
		{Name: "elapsed_time", Type: arrow.PrimitiveTypes.Float64},
		{Name: "outcome", Type: arrow.PrimitiveTypes.Int64},
	}
	for _, f := range schema {
		switch f.Kind {
		case core.FieldInt:
			fields = append(fields, arrow.Field{Name: f.Name, Type: arrow.PrimitiveTypes.Int64})
		default:
			fields = append(fields, arrow.Field{Name: f.Name, Type: arrow.PrimitiveTypes.Float64})
		}
	}
	arrowSchema := arrow.NewSchema(fields, nil)

	builder := array.NewRecordBuilder(memory.DefaultAllocator, arrowSchema)
	defer builder.Release()

	for _, t := range tables {
		id := t.ID.String()
		for idx, rec := range t.Records {
			builder.Field(0).(*array.StringBuilder).Append(id)
			builder.Field(1).(*array.Int64Builder).Append(int64(idx))
			builder.Field(2).(*array.Float64Builder).Append(rec.Loss)
			builder.Field(3).(*array.Int64Builder).Append(int64(rec.ResampleCount))
			builder.Field(4).(*array.Float64Builder).Append(rec.ElapsedTime)
			builder.Field(5).(*array.Int64Builder).Append(int64(rec.Outcome))
			for j, f := range schema {
				v, _ := rec.ExpParams.Get(f.Name)
				switch f.Kind {
				case core.FieldInt:
					builder.Field(6 + j).(*array.Int64Builder).Append(int64(v))
				default:
					builder.Field(6 + j).(*array.Float64Builder).Append(v)
				}
			}
		}
	}

	record := builder.NewRecord()
	defer record.Release()

	table := array.NewTableFromRecords(arrowSchema, []arrow.Record{record})
	defer table.Release()

	f, err := os.Create(path)
	if err != nil {
		return errors.WithFields(
			errors.Wrap(err, errors.ExportFailed, "failed to create parquet file"),
			errors.Fields{"path": path},
		)
	}
	defer f.Close()

	chunkSize := table.NumRows()
	if chunkSize < 1 {
		chunkSize = 1
	}
	if err := pqarrow.WriteTable(table, f, chunkSize,
		parquet.NewWriterProperties(), pqarrow.DefaultWriterProps()); err != nil {
		return errors.Wrap(err, errors.ExportFailed, "failed to write parquet table")
	}
	return nil
}
