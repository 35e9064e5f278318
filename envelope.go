package goksql

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// OutputFormat selects how a Result is written.
type OutputFormat int

const (
	// FormatJSON writes the {"metadata": ..., "data": [...]} JSON envelope.
	FormatJSON OutputFormat = iota
	// FormatArrow writes the data as an Arrow IPC stream with the metadata attached to the schema.
	FormatArrow
)

func (f OutputFormat) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatArrow:
		return "arrow"
	default:
		return fmt.Sprintf("OutputFormat(%d)", int(f))
	}
}

func (f OutputFormat) extension() string {
	if f == FormatArrow {
		return "arrow"
	}
	return "json"
}

// ContentType returns the media type of results written in format.
func (f OutputFormat) ContentType() string {
	if f == FormatArrow {
		return arrowStreamContentType
	}
	return "application/json"
}

// ParseOutputFormat parses "json" or "arrow", case insensitively.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "arrow":
		return FormatArrow, nil
	}
	return FormatJSON, &KsqlError{
		Number:      ErrCodeFailedToEncodeOutput,
		Kind:        KindConfiguration,
		Message:     errMsgUnsupportedOutputFormat,
		MessageArgs: []interface{}{s},
	}
}

// Result is the outcome of one execution.
type Result struct {
	// Metadata is set only when the query asked for it.
	Metadata *MetadataMap
	// Columns lists the column names of Rows in output order.
	Columns ColumnList
	Rows    []ProjectedRow
}

type envelope struct {
	Metadata *MetadataMap `json:"metadata,omitempty"`
	Data     []orderedRow `json:"data"`
}

// orderedRow encodes a row with its keys in column order.
type orderedRow struct {
	columns ColumnList
	row     ProjectedRow
}

func (r orderedRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	written := 0
	for _, name := range r.columns.distinct() {
		value, ok := r.row[name]
		if !ok {
			continue
		}
		if written > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSONField(&buf, name, value); err != nil {
			return nil, err
		}
		written++
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeJSONField(buf *bytes.Buffer, name string, value any) error {
	key, err := json.Marshal(name)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return err
	}
	buf.Write(key)
	buf.WriteByte(':')
	buf.Write(encoded)
	return nil
}

// encodeJSON returns the JSON envelope of res.
func (res *Result) encodeJSON() ([]byte, error) {
	env := envelope{Metadata: res.Metadata, Data: make([]orderedRow, 0, len(res.Rows))}
	for _, row := range res.Rows {
		env.Data = append(env.Data, orderedRow{columns: res.Columns, row: row})
	}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, (&KsqlError{
			Number:      ErrCodeFailedToEncodeOutput,
			Kind:        KindMalformedResponse,
			Message:     errMsgFailedToEncodeOutput,
			MessageArgs: []interface{}{FormatJSON},
		}).withCause(err)
	}
	return data, nil
}

// Encode returns res in the given format.
func (res *Result) Encode(format OutputFormat) ([]byte, error) {
	switch format {
	case FormatJSON:
		return res.encodeJSON()
	case FormatArrow:
		return res.encodeArrow()
	}
	return nil, &KsqlError{
		Number:      ErrCodeFailedToEncodeOutput,
		Kind:        KindConfiguration,
		Message:     errMsgUnsupportedOutputFormat,
		MessageArgs: []interface{}{format},
	}
}
