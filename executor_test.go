package goksql

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/apache/arrow/go/v16/arrow/array"
	"github.com/apache/arrow/go/v16/arrow/ipc"
)

func newTestExecutor(t *testing.T, fe *fakeEngine, c Compiler) (*Executor, *countingRoundTripper) {
	crt := newCountingRoundTripper(http.DefaultTransport)
	cfg := fe.config()
	cfg.Transporter = crt
	cfg.Compiler = c
	exec, err := NewExecutor(cfg)
	assertNilF(t, err)
	return exec, crt
}

func TestExecuteChunkedBody(t *testing.T) {
	fe := newFakeEngine(t)
	fe.reply(queryEndpoint, "select id, name from users", fakeReply{
		body: `{"header":{"queryId":"q1","schema":"ID INT, NAME STRING"}}{"row":{"columns":[1,"a"]}}{"row":{"columns":[2,"b"]}}`,
	})
	exec, _ := newTestExecutor(t, fe, &stubCompiler{columns: []string{"id", "name"}})

	var buf bytes.Buffer
	err := exec.Execute(context.Background(), &Query{Source: "users", Statement: "select id, name from users"}, &buf)
	assertNilF(t, err)
	assertEqualE(t, buf.String(), `{"data":[{"id":1,"name":"a"},{"id":2,"name":"b"}]}`)

	requests := fe.recorded()
	assertEqualF(t, len(requests), 1)
	assertEqualE(t, requests[0].path, queryEndpoint)
	assertEqualE(t, requests[0].headers.Get(headerAcceptKey), headerKsqlV1JSON)
	assertEqualE(t, requests[0].body.StreamsProperties[autoOffsetResetProperty], "earliest")
}

func TestExecuteWithoutColumnsSendsNoRowRequest(t *testing.T) {
	fe := newFakeEngine(t)
	exec, crt := newTestExecutor(t, fe, &stubCompiler{err: errors.New("no viable alternative")})

	var buf bytes.Buffer
	err := exec.Execute(context.Background(), &Query{Source: "users", Statement: "selec id from users"}, &buf)
	assertNilF(t, err)
	assertEqualE(t, buf.String(), `{"data":[]}`)
	assertEqualE(t, crt.totalRequestsByPath(queryEndpoint), 0)
}

func TestExecuteWithMetadata(t *testing.T) {
	fe := newFakeEngine(t)
	fe.reply(ksqlEndpoint, "DESCRIBE orders", fakeReply{
		body: `[{"sourceDescription":{"name":"orders","fields":[{"name":"id","schema":{"type":"INTEGER"}},{"name":"name","schema":{"type":"VARCHAR"}}]}}]`,
	})
	fe.reply(queryEndpoint, "select id,name from orders limit 1", fakeReply{body: `[{"header":{}},{"row":{"columns":[7,"widget"]}}]`})
	// the built-in compiler resolves the rewritten statement
	exec, _ := newTestExecutor(t, fe, nil)

	q := &Query{Source: "orders", Statement: "select * from orders", MetadataRetrieved: true}
	var buf bytes.Buffer
	assertNilF(t, exec.Execute(context.Background(), q, &buf))
	assertEqualE(t, buf.String(), `{"metadata":{"id":"INTEGER","name":"VARCHAR"},"data":[{"id":7,"name":"widget"}]}`)
	assertEqualE(t, q.Statement, "select * from orders", "the caller's query is not modified")

	requests := fe.recorded()
	assertEqualF(t, len(requests), 2)
	assertEqualE(t, requests[1].body.KSQL, "select id,name from orders limit 1;")
}

func TestExecuteCatalog(t *testing.T) {
	fe := newFakeEngine(t)
	fe.reply(ksqlEndpoint, showTablesStatement, fakeReply{body: `[{"tables":[{"name":"t1"}]}]`})
	fe.reply(ksqlEndpoint, showStreamsStatement, fakeReply{body: `[{"streams":[{"name":"t1"},{"name":"s1"}]}]`})
	sc := &stubCompiler{}
	exec, crt := newTestExecutor(t, fe, sc)

	var buf bytes.Buffer
	assertNilF(t, exec.Execute(context.Background(), &Query{Statement: ShowTablesAndStreamsStatement}, &buf))
	assertEqualE(t, buf.String(), `{"data":[{"tablename":"t1"},{"tablename":"s1"}]}`)
	assertEmptyE(t, sc.queries, "the catalog path does not compile anything")
	assertEqualE(t, crt.totalRequestsByPath(queryEndpoint), 0)
}

func TestExecuteSentinelIsCaseSensitive(t *testing.T) {
	fe := newFakeEngine(t)
	sc := &stubCompiler{err: errors.New("not a select")}
	exec, crt := newTestExecutor(t, fe, sc)

	var buf bytes.Buffer
	assertNilF(t, exec.Execute(context.Background(), &Query{Statement: "show tables and streams"}, &buf))
	assertEqualE(t, buf.String(), `{"data":[]}`)
	assertEqualE(t, crt.totalRequestsByPath(ksqlEndpoint), 0)
}

func TestExecuteTransportFailureWritesNothing(t *testing.T) {
	t.Run("row endpoint", func(t *testing.T) {
		fe := newFakeEngine(t)
		fe.reply(queryEndpoint, "select a from t", fakeReply{status: http.StatusBadRequest, body: `{"message":"t does not exist"}`})
		exec, _ := newTestExecutor(t, fe, &stubCompiler{columns: []string{"a"}})

		var buf bytes.Buffer
		err := exec.Execute(context.Background(), &Query{Statement: "select a from t"}, &buf)
		assertTrueF(t, IsTransportFailure(err))
		assertStringContainsE(t, err.Error(), "select a from t")
		assertEqualE(t, buf.Len(), 0)
	})
	t.Run("catalog endpoint", func(t *testing.T) {
		fe := newFakeEngine(t)
		fe.reply(ksqlEndpoint, showTablesStatement, fakeReply{status: http.StatusBadRequest, body: `{"message":"denied"}`})
		exec, _ := newTestExecutor(t, fe, &stubCompiler{})

		var buf bytes.Buffer
		err := exec.Execute(context.Background(), &Query{Statement: ShowTablesAndStreamsStatement}, &buf)
		var ke *KsqlError
		assertErrorsAsF(t, err, &ke)
		assertEqualE(t, ke.Statement, showTablesStatement)
		assertEqualE(t, buf.Len(), 0)
	})
}

func TestExecuteArityMismatchWritesNothing(t *testing.T) {
	fe := newFakeEngine(t)
	fe.reply(queryEndpoint, "select a, b from t", fakeReply{body: `{"row":{"columns":[1,2]}}{"row":{"columns":[1]}}`})
	exec, _ := newTestExecutor(t, fe, &stubCompiler{columns: []string{"a", "b"}})

	var buf bytes.Buffer
	err := exec.Execute(context.Background(), &Query{Statement: "select a, b from t"}, &buf)
	assertTrueF(t, IsSchemaMismatch(err))
	assertEqualE(t, buf.Len(), 0)
}

func TestExecuteMetadataDescribeFailure(t *testing.T) {
	fe := newFakeEngine(t)
	fe.reply(ksqlEndpoint, "DESCRIBE orders", fakeReply{body: `[]`})
	exec, crt := newTestExecutor(t, fe, nil)

	var buf bytes.Buffer
	err := exec.Execute(context.Background(), &Query{Source: "orders", MetadataRetrieved: true}, &buf)
	assertTrueE(t, IsMalformedResponse(err))
	assertEqualE(t, crt.totalRequestsByPath(queryEndpoint), 0)
	assertEqualE(t, buf.Len(), 0)
}

func TestExecuteNilQuery(t *testing.T) {
	exec, _ := newTestExecutor(t, newFakeEngine(t), nil)
	assertErrIsE(t, exec.Execute(context.Background(), nil, &bytes.Buffer{}), ErrNilQuery)
}

func TestExecuteArrowFormat(t *testing.T) {
	fe := newFakeEngine(t)
	fe.reply(ksqlEndpoint, "DESCRIBE orders", fakeReply{
		body: `[{"sourceDescription":{"fields":[{"name":"id","schema":{"type":"BIGINT"}},{"name":"total","schema":{"type":"DOUBLE"}}]}}]`,
	})
	fe.reply(queryEndpoint, "select id,total from orders limit 1", fakeReply{body: `{"row":{"columns":[3,9.5]}}`})
	exec, _ := newTestExecutor(t, fe, nil)
	exec = exec.WithOutputFormat(FormatArrow)

	var buf bytes.Buffer
	assertNilF(t, exec.Execute(context.Background(), &Query{Source: "orders", MetadataRetrieved: true}, &buf))

	rdr, err := ipc.NewReader(bytes.NewReader(buf.Bytes()))
	assertNilF(t, err)
	defer rdr.Release()
	idx := rdr.Schema().Metadata().FindKey("total")
	assertTrueF(t, idx >= 0)
	assertEqualE(t, rdr.Schema().Metadata().Values()[idx], "DOUBLE")
	assertTrueF(t, rdr.Next())
	rec := rdr.Record()
	assertEqualE(t, rec.NumRows(), int64(1))
	assertEqualE(t, rec.Column(0).(*array.Int64).Value(0), int64(3))
	assertEqualE(t, rec.Column(1).(*array.Float64).Value(0), 9.5)
}

func TestExecuteRepeatedColumnKeepsLastValue(t *testing.T) {
	fe := newFakeEngine(t)
	fe.reply(queryEndpoint, "select a, a from t", fakeReply{body: `{"row":{"columns":[1,2]}}`})
	exec, _ := newTestExecutor(t, fe, nil)

	var buf bytes.Buffer
	assertNilF(t, exec.Execute(context.Background(), &Query{Source: "t", Statement: "select a, a from t"}, &buf))
	assertEqualE(t, buf.String(), `{"data":[{"a":2}]}`)
}

func TestExecuteRepeatedColumnArrow(t *testing.T) {
	fe := newFakeEngine(t)
	fe.reply(queryEndpoint, "select a, b, a from t", fakeReply{body: `{"row":{"columns":[1,"x",2]}}`})
	exec, _ := newTestExecutor(t, fe, nil)
	exec = exec.WithOutputFormat(FormatArrow)

	var buf bytes.Buffer
	assertNilF(t, exec.Execute(context.Background(), &Query{Source: "t", Statement: "select a, b, a from t"}, &buf))
	rdr, err := ipc.NewReader(bytes.NewReader(buf.Bytes()))
	assertNilF(t, err)
	defer rdr.Release()
	assertEqualE(t, rdr.Schema().NumFields(), 2)
	assertEqualE(t, rdr.Schema().Field(0).Name, "a")
	assertEqualE(t, rdr.Schema().Field(1).Name, "b")
	assertTrueF(t, rdr.Next())
	assertEqualE(t, rdr.Record().Column(0).(*array.Int64).Value(0), int64(2))
}

func TestExecuteAndExport(t *testing.T) {
	fe := newFakeEngine(t)
	fe.reply(queryEndpoint, "select a from t", fakeReply{body: `{"row":{"columns":["x"]}}`})
	exec, _ := newTestExecutor(t, fe, &stubCompiler{columns: []string{"a"}})

	dir := t.TempDir()
	obj, err := exec.ExecuteAndExport(context.Background(), &Query{Statement: "select a from t"}, &ExportConfig{Location: "file://" + filepath.ToSlash(dir) + "/"})
	assertNilF(t, err)
	assertEqualE(t, obj.ContentType, "application/json")
	assertHasPrefixE(t, filepath.Base(obj.Location), "result-")

	matches, err := filepath.Glob(filepath.Join(dir, "result-*.json"))
	assertNilF(t, err)
	assertEqualF(t, len(matches), 1)
	data, err := os.ReadFile(matches[0])
	assertNilF(t, err)
	assertEqualE(t, string(data), `{"data":[{"a":"x"}]}`)
}

func TestWithExecutionContext(t *testing.T) {
	ctx := withExecutionContext(context.Background(), "orders")
	id, ok := ctx.Value(KsqlExecutionIDKey).(string)
	assertTrueF(t, ok)
	assertNotEqualE(t, id, "")
	assertEqualE(t, ctx.Value(KsqlSourceKey), "orders")

	again := withExecutionContext(ctx, "")
	assertEqualE(t, again.Value(KsqlExecutionIDKey), id, "an existing execution id is kept")
}

func TestNewExecutorRequiresBaseURL(t *testing.T) {
	_, err := NewExecutor(&Config{})
	assertErrIsE(t, err, ErrEmptyBaseURL)
	_, err = NewExecutor(nil)
	assertErrIsE(t, err, ErrEmptyBaseURL)
}
