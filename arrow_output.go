package goksql

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/apache/arrow/go/v16/arrow"
	"github.com/apache/arrow/go/v16/arrow/array"
	"github.com/apache/arrow/go/v16/arrow/ipc"
	"github.com/apache/arrow/go/v16/arrow/memory"
)

type valueKind int

const (
	kindNull valueKind = iota
	kindInt
	kindFloat
	kindBool
	kindString
)

func kindOf(v any) valueKind {
	switch val := v.(type) {
	case nil:
		return kindNull
	case json.Number:
		if _, err := val.Int64(); err == nil {
			return kindInt
		}
		return kindFloat
	case int, int32, int64:
		return kindInt
	case float32, float64:
		return kindFloat
	case bool:
		return kindBool
	default:
		return kindString
	}
}

// mergeKinds widens int to float; every other mix falls back to string.
func mergeKinds(a, b valueKind) valueKind {
	switch {
	case a == kindNull:
		return b
	case b == kindNull, a == b:
		return a
	case (a == kindInt && b == kindFloat) || (a == kindFloat && b == kindInt):
		return kindFloat
	}
	return kindString
}

func arrowTypeOf(kind valueKind) arrow.DataType {
	switch kind {
	case kindInt:
		return arrow.PrimitiveTypes.Int64
	case kindFloat:
		return arrow.PrimitiveTypes.Float64
	case kindBool:
		return arrow.FixedWidthTypes.Boolean
	}
	return arrow.BinaryTypes.String
}

func inferColumnKinds(columns ColumnList, rows []ProjectedRow) []valueKind {
	kinds := make([]valueKind, len(columns))
	for _, row := range rows {
		for i, name := range columns {
			kinds[i] = mergeKinds(kinds[i], kindOf(row[name]))
		}
	}
	return kinds
}

func arrowSchema(columns ColumnList, kinds []valueKind, metadata *MetadataMap) *arrow.Schema {
	fields := make([]arrow.Field, len(columns))
	for i, name := range columns {
		fields[i] = arrow.Field{Name: name, Type: arrowTypeOf(kinds[i]), Nullable: true}
	}
	if metadata.Len() == 0 {
		return arrow.NewSchema(fields, nil)
	}
	names := metadata.Names()
	types := make([]string, len(names))
	for i, name := range names {
		types[i], _ = metadata.Type(name)
	}
	md := arrow.NewMetadata(names, types)
	return arrow.NewSchema(fields, &md)
}

func toInt64(v any) int64 {
	switch val := v.(type) {
	case json.Number:
		i, _ := val.Int64()
		return i
	case int:
		return int64(val)
	case int32:
		return int64(val)
	case int64:
		return val
	}
	return 0
}

func toFloat64(v any) float64 {
	switch val := v.(type) {
	case json.Number:
		f, _ := val.Float64()
		return f
	case int, int32, int64:
		return float64(toInt64(val))
	case float32:
		return float64(val)
	case float64:
		return val
	}
	return 0
}

func toText(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case json.Number:
		return val.String(), nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func appendValue(b array.Builder, kind valueKind, v any) error {
	if v == nil {
		b.AppendNull()
		return nil
	}
	switch kind {
	case kindInt:
		b.(*array.Int64Builder).Append(toInt64(v))
	case kindFloat:
		b.(*array.Float64Builder).Append(toFloat64(v))
	case kindBool:
		b.(*array.BooleanBuilder).Append(v.(bool))
	default:
		s, err := toText(v)
		if err != nil {
			return err
		}
		b.(*array.StringBuilder).Append(s)
	}
	return nil
}

// encodeArrow writes the rows as a single record batch in an Arrow IPC stream.
func (res *Result) encodeArrow() ([]byte, error) {
	data, err := writeArrowStream(memory.NewGoAllocator(), res)
	if err != nil {
		return nil, (&KsqlError{
			Number:      ErrCodeFailedToEncodeOutput,
			Kind:        KindMalformedResponse,
			Message:     errMsgFailedToEncodeOutput,
			MessageArgs: []interface{}{FormatArrow},
		}).withCause(err)
	}
	return data, nil
}

func writeArrowStream(mem memory.Allocator, res *Result) ([]byte, error) {
	columns := res.Columns.distinct()
	kinds := inferColumnKinds(columns, res.Rows)
	schema := arrowSchema(columns, kinds, res.Metadata)

	builder := array.NewRecordBuilder(mem, schema)
	defer builder.Release()
	for _, row := range res.Rows {
		for i, name := range columns {
			if err := appendValue(builder.Field(i), kinds[i], row[name]); err != nil {
				return nil, fmt.Errorf("column %v: %w", name, err)
			}
		}
	}
	record := builder.NewRecord()
	defer record.Release()

	var buf bytes.Buffer
	writer := ipc.NewWriter(&buf, ipc.WithSchema(schema), ipc.WithAllocator(mem))
	if err := writer.Write(record); err != nil {
		_ = writer.Close()
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
