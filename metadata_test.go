package goksql

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
)

const describeOrders = `[{"@type":"sourceDescription","statementText":"DESCRIBE ORDERS;","sourceDescription":{"name":"ORDERS","type":"TABLE","fields":[
{"name":"ID","schema":{"type":"BIGINT"}},
{"name":"REGION","schema":{"type":"STRING"}},
{"name":"TOTAL","schema":{"type":"DOUBLE"}}]}}]`

func TestDescribe(t *testing.T) {
	fe := newFakeEngine(t)
	fe.reply(ksqlEndpoint, "DESCRIBE ORDERS", fakeReply{body: describeOrders})
	mf := &metadataFetcher{rest: newTestRestful(t, fe.config(), nil)}

	metadata, err := mf.describe(context.Background(), "ORDERS")
	assertNilF(t, err)
	assertDeepEqualE(t, metadata.Names(), []string{"ID", "REGION", "TOTAL"})
	typ, ok := metadata.Type("TOTAL")
	assertTrueE(t, ok)
	assertEqualE(t, typ, "DOUBLE")

	encoded, err := json.Marshal(metadata)
	assertNilF(t, err)
	assertEqualE(t, string(encoded), `{"ID":"BIGINT","REGION":"STRING","TOTAL":"DOUBLE"}`)
}

func TestDescribeEmptyResponse(t *testing.T) {
	for _, body := range []string{`[]`, `[{"@type":"currentStatus"}]`} {
		fe := newFakeEngine(t)
		fe.reply(ksqlEndpoint, "DESCRIBE NOPE", fakeReply{body: body})
		mf := &metadataFetcher{rest: newTestRestful(t, fe.config(), nil)}

		_, err := mf.describe(context.Background(), "NOPE")
		var ke *KsqlError
		assertErrorsAsF(t, err, &ke, body)
		assertEqualE(t, ke.Number, ErrCodeEmptyDescribeResponse, body)
		assertTrueE(t, IsMalformedResponse(err), body)
	}
}

func TestDescribeNotFound(t *testing.T) {
	fe := newFakeEngine(t)
	fe.reply(ksqlEndpoint, "DESCRIBE NOPE", fakeReply{status: http.StatusBadRequest, body: `{"@type":"statement_error","message":"NOPE does not exist."}`})
	mf := &metadataFetcher{rest: newTestRestful(t, fe.config(), nil)}

	_, err := mf.describe(context.Background(), "NOPE")
	var ke *KsqlError
	assertErrorsAsF(t, err, &ke)
	assertEqualE(t, ke.HTTPStatus, http.StatusBadRequest)
	assertEqualE(t, ke.Statement, "DESCRIBE NOPE")
	assertStringContainsE(t, ke.ResponseBody, "does not exist")
}

func TestMetadataMapDuplicateNames(t *testing.T) {
	m := NewMetadataMap()
	m.Set("A", "INT")
	m.Set("B", "STRING")
	m.Set("A", "BIGINT")
	assertDeepEqualE(t, m.Names(), []string{"A", "B"})
	typ, _ := m.Type("A")
	assertEqualE(t, typ, "BIGINT")
	assertEqualE(t, m.Len(), 2)
}

func TestBuildProjectionStatement(t *testing.T) {
	assertEqualE(t, BuildProjectionStatement("ORDERS", []string{"ID", "REGION"}), "select ID,REGION from ORDERS limit 1")
	assertEqualE(t, DescribeStatement("ORDERS"), "DESCRIBE ORDERS")
}
