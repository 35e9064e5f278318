package goksql

import (
	"encoding/json"
	"testing"
)

func TestParseOutputFormat(t *testing.T) {
	for in, expected := range map[string]OutputFormat{"": FormatJSON, "json": FormatJSON, " Arrow ": FormatArrow} {
		f, err := ParseOutputFormat(in)
		assertNilF(t, err, in)
		assertEqualE(t, f, expected, in)
	}
	_, err := ParseOutputFormat("csv")
	var ke *KsqlError
	assertErrorsAsF(t, err, &ke)
	assertEqualE(t, ke.Kind, KindConfiguration)
}

func TestEncodeJSONKeepsColumnOrder(t *testing.T) {
	md := NewMetadataMap()
	md.Set("Z", "INT")
	md.Set("A", "STRING")
	res := &Result{
		Metadata: md,
		Columns:  ColumnList{"Z", "A"},
		Rows:     []ProjectedRow{{"A": "x", "Z": json.Number("1")}},
	}
	data, err := res.Encode(FormatJSON)
	assertNilF(t, err)
	assertEqualE(t, string(data), `{"metadata":{"Z":"INT","A":"STRING"},"data":[{"Z":1,"A":"x"}]}`)
}

func TestEncodeJSONWithoutRows(t *testing.T) {
	data, err := (&Result{}).Encode(FormatJSON)
	assertNilF(t, err)
	assertEqualE(t, string(data), `{"data":[]}`)
}

func TestEncodeUnknownFormat(t *testing.T) {
	_, err := (&Result{}).Encode(OutputFormat(9))
	assertNotNilF(t, err)
}

func TestColumnListDistinct(t *testing.T) {
	assertDeepEqualE(t, ColumnList{"a", "b", "a", "c", "b"}.distinct(), ColumnList{"a", "b", "c"})
	assertEqualE(t, len(ColumnList{}.distinct()), 0)
}
