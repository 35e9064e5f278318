package goksql

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/apache/arrow/go/v16/arrow"
	"github.com/apache/arrow/go/v16/arrow/array"
	"github.com/apache/arrow/go/v16/arrow/ipc"
	"github.com/apache/arrow/go/v16/arrow/memory"
)

func TestInferColumnKinds(t *testing.T) {
	columns := ColumnList{"id", "price", "active", "name", "mixed", "empty"}
	rows := []ProjectedRow{
		{"id": json.Number("1"), "price": json.Number("3"), "active": true, "name": "a", "mixed": json.Number("1"), "empty": nil},
		{"id": json.Number("2"), "price": json.Number("3.5"), "active": nil, "name": "b", "mixed": "x", "empty": nil},
	}
	kinds := inferColumnKinds(columns, rows)
	expected := []valueKind{kindInt, kindFloat, kindBool, kindString, kindString, kindNull}
	assertDeepEqualE(t, kinds, expected)
}

func TestMergeKinds(t *testing.T) {
	assertEqualE(t, mergeKinds(kindNull, kindBool), kindBool)
	assertEqualE(t, mergeKinds(kindInt, kindNull), kindInt)
	assertEqualE(t, mergeKinds(kindFloat, kindInt), kindFloat)
	assertEqualE(t, mergeKinds(kindBool, kindInt), kindString)
}

func TestWriteArrowStream(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	md := NewMetadataMap()
	md.Set("ID", "BIGINT")
	md.Set("NAME", "STRING")
	res := &Result{
		Metadata: md,
		Columns:  ColumnList{"ID", "NAME"},
		Rows: []ProjectedRow{
			{"ID": json.Number("7"), "NAME": "seven"},
			{"ID": json.Number("8"), "NAME": nil},
		},
	}
	data, err := writeArrowStream(mem, res)
	assertNilF(t, err)

	rdr, err := ipc.NewReader(bytes.NewReader(data), ipc.WithAllocator(mem))
	assertNilF(t, err)
	defer rdr.Release()

	schema := rdr.Schema()
	assertEqualE(t, schema.NumFields(), 2)
	assertTrueE(t, arrow.TypeEqual(schema.Field(0).Type, arrow.PrimitiveTypes.Int64))
	assertTrueE(t, arrow.TypeEqual(schema.Field(1).Type, arrow.BinaryTypes.String))
	typ, ok := schema.Metadata().GetValue("NAME")
	assertTrueE(t, ok)
	assertEqualE(t, typ, "STRING")

	assertTrueF(t, rdr.Next())
	rec := rdr.Record()
	assertEqualE(t, rec.NumRows(), int64(2))
	ids := rec.Column(0).(*array.Int64)
	assertEqualE(t, ids.Value(0), int64(7))
	assertEqualE(t, ids.Value(1), int64(8))
	names := rec.Column(1).(*array.String)
	assertEqualE(t, names.Value(0), "seven")
	assertTrueE(t, names.IsNull(1))
	assertFalseE(t, rdr.Next())
}

func TestWriteArrowStreamWithoutMetadata(t *testing.T) {
	res := &Result{Columns: ColumnList{"A"}, Rows: []ProjectedRow{{"A": map[string]any{"k": "v"}}}}
	data, err := res.Encode(FormatArrow)
	assertNilF(t, err)
	rdr, err := ipc.NewReader(bytes.NewReader(data))
	assertNilF(t, err)
	defer rdr.Release()
	assertEqualE(t, rdr.Schema().Metadata().Len(), 0)
	assertTrueF(t, rdr.Next())
	assertEqualE(t, rdr.Record().Column(0).(*array.String).Value(0), `{"k":"v"}`)
}
