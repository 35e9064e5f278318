package goksql

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"runtime"
	"strings"
	"sync"
	"testing"
)

type countingRoundTripper struct {
	mu           sync.Mutex
	delegate     http.RoundTripper
	postReqCount map[string]int
}

func newCountingRoundTripper(delegate http.RoundTripper) *countingRoundTripper {
	return &countingRoundTripper{
		delegate:     delegate,
		postReqCount: make(map[string]int),
	}
}

func (crt *countingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	crt.mu.Lock()
	if req.Method == http.MethodPost {
		crt.postReqCount[req.URL.Path]++
	}
	crt.mu.Unlock()
	return crt.delegate.RoundTrip(req)
}

func (crt *countingRoundTripper) totalRequestsByPath(urlPath string) int {
	crt.mu.Lock()
	defer crt.mu.Unlock()
	return crt.postReqCount[urlPath]
}

func skipOnMissingHome(t *testing.T) {
	if (runtime.GOOS == "linux" || runtime.GOOS == "darwin") && os.Getenv("HOME") == "" {
		t.Skip("skipping on missing HOME environment variable")
	}
}

// fakeReply is a canned engine answer.
type fakeReply struct {
	status int
	body   string
	gzip   bool
}

type recordedRequest struct {
	path    string
	headers http.Header
	body    ksqlRequest
}

// fakeEngine emulates the /ksql and /query endpoints of the engine, answering by statement.
type fakeEngine struct {
	t        *testing.T
	mu       sync.Mutex
	replies  map[string]fakeReply
	requests []recordedRequest
	server   *httptest.Server
}

func newFakeEngine(t *testing.T) *fakeEngine {
	fe := &fakeEngine{t: t, replies: make(map[string]fakeReply)}
	fe.server = httptest.NewServer(http.HandlerFunc(fe.serve))
	t.Cleanup(fe.server.Close)
	return fe
}

func replyKey(path, statement string) string {
	return path + " " + statement
}

// reply registers the answer to statement (without the trailing semicolon) on path.
func (fe *fakeEngine) reply(path, statement string, r fakeReply) {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	if r.status == 0 {
		r.status = http.StatusOK
	}
	fe.replies[replyKey(path, statement+";")] = r
}

func (fe *fakeEngine) recorded() []recordedRequest {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return append([]recordedRequest(nil), fe.requests...)
}

func (fe *fakeEngine) serve(w http.ResponseWriter, r *http.Request) {
	var body ksqlRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		fe.t.Errorf("failed to decode request body: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	fe.mu.Lock()
	fe.requests = append(fe.requests, recordedRequest{path: r.URL.Path, headers: r.Header.Clone(), body: body})
	reply, ok := fe.replies[replyKey(r.URL.Path, body.KSQL)]
	fe.mu.Unlock()
	if !ok {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"@type":"statement_error","error_code":40001,"message":"unexpected statement"}`))
		return
	}
	payload := []byte(reply.body)
	if reply.gzip {
		payload = gzipBytes(fe.t, payload)
	}
	w.Header().Set(headerContentTypeKey, headerKsqlV1JSON)
	w.WriteHeader(reply.status)
	_, _ = w.Write(payload)
}

func (fe *fakeEngine) config() *Config {
	return &Config{BaseURL: fe.server.URL}
}

func gzipBytes(t *testing.T, data []byte) []byte {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// stubCompiler returns fixed columns or a fixed error and records what it was asked to compile.
type stubCompiler struct {
	mu      sync.Mutex
	columns []string
	err     error
	queries []string
}

func (sc *stubCompiler) SelectColumns(query string) ([]string, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.queries = append(sc.queries, query)
	if sc.err != nil {
		return nil, sc.err
	}
	return sc.columns, nil
}

// fakeResponseBody is a response body that remembers whether it was closed.
type fakeResponseBody struct {
	io.Reader
	mu     sync.Mutex
	closed bool
}

func newFakeResponseBody(body string) *fakeResponseBody {
	return &fakeResponseBody{Reader: strings.NewReader(body)}
}

func (b *fakeResponseBody) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

func (b *fakeResponseBody) isClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// sliceRowSource yields fixed rows and counts how often it was read.
type sliceRowSource struct {
	rows  []RawRow
	reads int
}

func (s *sliceRowSource) next() (RawRow, error) {
	s.reads++
	if len(s.rows) == 0 {
		return nil, io.EOF
	}
	row := s.rows[0]
	s.rows = s.rows[1:]
	return row, nil
}
