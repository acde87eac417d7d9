package export

import (
	"fmt"
	"io"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/ipc"
	"github.com/apache/arrow/go/v18/arrow/memory"

	"vaxmarket/internal/engine"
)

// DefaultBatchRows is the record batch size of WriteArrow.
const DefaultBatchRows = 1 << 16

// RecordSchema is the flat record layout: id, every dimension as a string
// column, then every measure.
func RecordSchema() *arrow.Schema {
	fields := []arrow.Field{{Name: "record_id", Type: arrow.PrimitiveTypes.Int64}}
	for _, f := range engine.Fields() {
		fields = append(fields, arrow.Field{Name: f.String(), Type: arrow.BinaryTypes.String})
	}
	for _, m := range engine.Measures() {
		typ := arrow.DataType(arrow.PrimitiveTypes.Float64)
		if m.Integral() {
			typ = arrow.PrimitiveTypes.Int64
		}
		fields = append(fields, arrow.Field{Name: m.String(), Type: typ})
	}
	return arrow.NewSchema(fields, nil)
}

// WriteArrow streams the rows of a view as Arrow IPC record batches.
func WriteArrow(w io.Writer, v engine.View, batchRows int) error {
	if batchRows <= 0 {
		batchRows = DefaultBatchRows
	}
	mem := memory.NewGoAllocator()
	schema := RecordSchema()

	writer := ipc.NewWriter(w, ipc.WithSchema(schema), ipc.WithAllocator(mem))
	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()

	for lo := 0; lo < v.Len(); lo += batchRows {
		hi := min(lo+batchRows, v.Len())
		if err := appendRows(b, v, lo, hi); err != nil {
			writer.Close()
			return err
		}
		rec := b.NewRecord()
		err := writer.Write(rec)
		rec.Release()
		if err != nil {
			writer.Close()
			return fmt.Errorf("write arrow batch: %w", err)
		}
	}
	return writer.Close()
}

func appendRows(b *array.RecordBuilder, v engine.View, lo, hi int) error {
	cs := v.Store()
	fields := engine.Fields()
	measures := engine.Measures()

	for i := lo; i < hi; i++ {
		row := v.Row(i)
		b.Field(0).(*array.Int64Builder).Append(cs.IDs[row])
		for k, f := range fields {
			b.Field(1 + k).(*array.StringBuilder).Append(cs.Value(f, row))
		}
		for k, m := range measures {
			x, err := cs.MeasureValue(m, row)
			if err != nil {
				return err
			}
			col := 1 + len(fields) + k
			if m.Integral() {
				b.Field(col).(*array.Int64Builder).Append(int64(x))
			} else {
				b.Field(col).(*array.Float64Builder).Append(x)
			}
		}
	}
	return nil
}
