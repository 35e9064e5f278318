package goksql

import (
	"bytes"
	"encoding/json"
	"strings"
)

// ShowTablesAndStreamsStatement is the statement that selects the catalog listing instead of a row query.
// It is compared byte for byte.
const ShowTablesAndStreamsStatement = "SHOW TABLES AND STREAMS"

const (
	describeStatementPrefix = "DESCRIBE "
	showTablesStatement     = "show tables"
	showStreamsStatement    = "show streams"
)

// Query is a query against one engine source.
type Query struct {
	// Source is the table or stream the query reads from.
	Source string
	// Statement is sent to the engine. With MetadataRetrieved set the executor sends the
	// projection statement built from the described columns instead.
	Statement string
	// MetadataRetrieved requests schema discovery: the statement is rewritten to project every
	// column of Source and the column types are returned with the data.
	MetadataRetrieved bool
	// SourceQuery is the query text handed to the compiler to resolve the selected columns.
	// Statement is used when it is empty.
	SourceQuery string
}

func (q *Query) rewrite(statement string) {
	q.Statement = statement
}

func (q *Query) compileSource() string {
	if q.SourceQuery != "" {
		return q.SourceQuery
	}
	return q.Statement
}

// ColumnList is the ordered list of column names selected by a query.
type ColumnList []string

// distinct returns the names in first-seen order with repeats removed. A row holds one value per
// name, so a repeated column is written once.
func (c ColumnList) distinct() ColumnList {
	seen := make(map[string]struct{}, len(c))
	out := make(ColumnList, 0, len(c))
	for _, name := range c {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// RawRow holds the positional values of one result row.
type RawRow []any

// ProjectedRow maps column names to the values of one result row.
type ProjectedRow map[string]any

// CatalogKind tells tables and streams apart.
type CatalogKind string

const (
	// CatalogTable is a table.
	CatalogTable CatalogKind = "TABLE"
	// CatalogStream is a stream.
	CatalogStream CatalogKind = "STREAM"
)

// CatalogEntry is a named table or stream.
type CatalogEntry struct {
	Name string
	Kind CatalogKind
}

// MetadataMap maps column names to their declared types, remembering the order
// in which the source schema listed them.
type MetadataMap struct {
	names []string
	types map[string]string
}

// NewMetadataMap returns an empty MetadataMap.
func NewMetadataMap() *MetadataMap {
	return &MetadataMap{types: make(map[string]string)}
}

// Set records a column type. A repeated name keeps its first position and takes the new type.
func (m *MetadataMap) Set(name, typ string) {
	if m.types == nil {
		m.types = make(map[string]string)
	}
	if _, ok := m.types[name]; !ok {
		m.names = append(m.names, name)
	}
	m.types[name] = typ
}

// Names returns the column names in source-schema order.
func (m *MetadataMap) Names() []string {
	if m == nil {
		return nil
	}
	names := make([]string, len(m.names))
	copy(names, m.names)
	return names
}

// Type returns the declared type of a column.
func (m *MetadataMap) Type(name string) (string, bool) {
	if m == nil {
		return "", false
	}
	typ, ok := m.types[name]
	return typ, ok
}

// Len returns the number of columns.
func (m *MetadataMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.names)
}

// MarshalJSON encodes the map as a JSON object with keys in source-schema order.
func (m *MetadataMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range m.Names() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(m.types[name])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// BuildProjectionStatement returns the statement selecting every named column of source, in order.
func BuildProjectionStatement(source string, names []string) string {
	return "select " + strings.Join(names, ",") + " from " + source + " limit 1"
}

// DescribeStatement returns the statement describing source.
func DescribeStatement(source string) string {
	return describeStatementPrefix + source
}
