package goksql

import (
	"context"
)

type describeResponse struct {
	Type              string             `json:"@type"`
	StatementText     string             `json:"statementText"`
	SourceDescription *sourceDescription `json:"sourceDescription"`
}

type sourceDescription struct {
	Name   string          `json:"name"`
	Type   string          `json:"type"`
	Topic  string          `json:"topic"`
	Fields []describeField `json:"fields"`
}

type describeField struct {
	Name   string      `json:"name"`
	Schema fieldSchema `json:"schema"`
}

type fieldSchema struct {
	Type string `json:"type"`
}

type metadataFetcher struct {
	rest *ksqlRestful
}

// describe returns the column types of source in schema order.
func (mf *metadataFetcher) describe(ctx context.Context, source string) (*MetadataMap, error) {
	statement := DescribeStatement(source)
	var responses []describeResponse
	if err := mf.rest.postKsql(ctx, statement, &responses); err != nil {
		return nil, err
	}
	if len(responses) == 0 || responses[0].SourceDescription == nil {
		return nil, &KsqlError{
			Number:      ErrCodeEmptyDescribeResponse,
			Kind:        KindMalformedResponse,
			Statement:   statement,
			Message:     errMsgEmptyDescribeResponse,
			MessageArgs: []interface{}{source},
		}
	}
	metadata := NewMetadataMap()
	for _, f := range responses[0].SourceDescription.Fields {
		metadata.Set(f.Name, f.Schema.Type)
	}
	logger.WithContext(ctx).Debugf("source %v has %v columns", source, metadata.Len())
	return metadata, nil
}
