package goksql

import (
	"context"
)

const catalogNameField = "tablename"

type showResponse struct {
	Type          string        `json:"@type"`
	StatementText string        `json:"statementText"`
	Tables        []catalogItem `json:"tables"`
	Streams       []catalogItem `json:"streams"`
}

type catalogItem struct {
	Name   string `json:"name"`
	Topic  string `json:"topic"`
	Format string `json:"format"`
	Type   string `json:"type"`
}

type catalogLister struct {
	rest *ksqlRestful
}

// entries issues "show tables" then "show streams". A response that is not a one-element
// array contributes nothing; a failed request aborts the listing.
func (cl *catalogLister) entries(ctx context.Context) ([]CatalogEntry, error) {
	var tables, streams []showResponse
	if err := cl.rest.postKsql(ctx, showTablesStatement, &tables); err != nil {
		return nil, err
	}
	if err := cl.rest.postKsql(ctx, showStreamsStatement, &streams); err != nil {
		return nil, err
	}

	entries := make([]CatalogEntry, 0)
	if len(tables) == 1 {
		for _, t := range tables[0].Tables {
			entries = append(entries, CatalogEntry{Name: t.Name, Kind: CatalogTable})
		}
	} else {
		logger.WithContext(ctx).Debugf("ignoring show tables response with %v elements", len(tables))
	}
	if len(streams) == 1 {
		for _, s := range streams[0].Streams {
			entries = append(entries, CatalogEntry{Name: s.Name, Kind: CatalogStream})
		}
	} else {
		logger.WithContext(ctx).Debugf("ignoring show streams response with %v elements", len(streams))
	}
	return entries, nil
}

// list returns every table and stream name once, tables first, in the order the engine listed them.
func (cl *catalogLister) list(ctx context.Context) ([]string, error) {
	entries, err := cl.entries(ctx)
	if err != nil {
		return nil, err
	}
	return uniqueCatalogNames(entries), nil
}

func uniqueCatalogNames(entries []CatalogEntry) []string {
	seen := make(map[string]struct{}, len(entries))
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.Name]; ok {
			continue
		}
		seen[e.Name] = struct{}{}
		names = append(names, e.Name)
	}
	return names
}

func catalogRecords(names []string) []ProjectedRow {
	rows := make([]ProjectedRow, 0, len(names))
	for _, name := range names {
		rows = append(rows, ProjectedRow{catalogNameField: name})
	}
	return rows
}
