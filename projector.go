package goksql

import (
	"io"
)

// projectRows names the values of every row after the columns at the same position.
// An arity mismatch on any row fails the whole call; src is not read when columns is empty.
func projectRows(columns ColumnList, src rowSource) ([]ProjectedRow, error) {
	rows := make([]ProjectedRow, 0)
	if len(columns) == 0 {
		return rows, nil
	}
	for {
		raw, err := src.next()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		if len(raw) != len(columns) {
			return nil, &KsqlError{
				Number:      ErrCodeColumnCountMismatch,
				Kind:        KindSchemaMismatch,
				Message:     errMsgColumnCountMismatch,
				MessageArgs: []interface{}{len(columns), len(raw)},
			}
		}
		row := make(ProjectedRow, len(columns))
		for i, name := range columns {
			row[name] = raw[i]
		}
		rows = append(rows, row)
	}
}
