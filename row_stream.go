package goksql

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
)

// queryResponse is one object of the chunked /query body. Only objects with a row are kept.
type queryResponse struct {
	Row          *queryRow        `json:"row"`
	ErrorMessage *json.RawMessage `json:"errorMessage"`
	FinalMessage string           `json:"finalMessage"`
}

type queryRow struct {
	Columns []any `json:"columns"`
}

// rowSource yields raw rows until io.EOF.
type rowSource interface {
	next() (RawRow, error)
}

type rowDecoder struct {
	rest *ksqlRestful
}

// run posts statement to /query and returns a stream over the response rows.
// The caller must close the stream.
func (rd *rowDecoder) run(ctx context.Context, statement string) (*rowStream, error) {
	resp, err := rd.rest.postStatement(ctx, queryEndpoint, statement, 0)
	if err != nil {
		return nil, err
	}
	return newRowStream(ctx, resp.Body, statement)
}

// rowStream decodes one object at a time from a response body. It is single use.
type rowStream struct {
	ctx       context.Context
	body      io.ReadCloser
	decoder   *json.Decoder
	statement string
	stop      func() bool
	done      bool
	rows      int
	skipped   int
}

func newRowStream(ctx context.Context, body io.ReadCloser, statement string) (*rowStream, error) {
	reader, err := newResponseReader(body)
	if err != nil {
		_ = body.Close()
		return nil, (&KsqlError{
			Number:    ErrCodeStreamDecode,
			Kind:      KindMalformedResponse,
			Statement: statement,
			Message:   errMsgStreamDecode,
		}).withCause(err)
	}
	decoder := json.NewDecoder(&chunkSeparatorFilter{r: reader})
	decoder.UseNumber()
	return &rowStream{
		ctx:       ctx,
		body:      body,
		decoder:   decoder,
		statement: statement,
		// a cancelled context unblocks a pending read by closing the body
		stop: context.AfterFunc(ctx, func() { _ = body.Close() }),
	}, nil
}

func (rs *rowStream) next() (RawRow, error) {
	if rs.done {
		return nil, io.EOF
	}
	for {
		var resp queryResponse
		if err := rs.decoder.Decode(&resp); err != nil {
			rs.close()
			if errors.Is(err, io.EOF) || rs.ctx.Err() != nil {
				logger.WithContext(rs.ctx).Debugf("row stream ended after %v rows, %v other objects", rs.rows, rs.skipped)
				return nil, io.EOF
			}
			return nil, rs.streamError(err)
		}
		if resp.Row == nil {
			rs.skipped++
			if resp.ErrorMessage != nil {
				logger.WithContext(rs.ctx).Warnf("engine reported an error in the row stream: %v", string(*resp.ErrorMessage))
			} else if resp.FinalMessage != "" {
				logger.WithContext(rs.ctx).Debugf("row stream final message: %v", resp.FinalMessage)
			}
			continue
		}
		rs.rows++
		return RawRow(resp.Row.Columns), nil
	}
}

// streamError tells undecodable content apart from a read fault of the connection.
func (rs *rowStream) streamError(err error) *KsqlError {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return (&KsqlError{
			Number:    ErrCodeStreamDecode,
			Kind:      KindMalformedResponse,
			Statement: rs.statement,
			Message:   errMsgStreamDecode,
		}).withCause(err)
	}
	logger.WithContext(rs.ctx).Errorf("row stream interrupted after %v rows: %v", rs.rows, err)
	return (&KsqlError{
		Number:      ErrCodeRequestFailed,
		Kind:        KindTransportFailure,
		Statement:   rs.statement,
		Message:     errMsgStreamInterrupted,
		MessageArgs: []interface{}{queryEndpoint},
	}).withCause(err)
}

func (rs *rowStream) close() {
	if rs.done {
		return
	}
	rs.done = true
	rs.stop()
	_ = rs.body.Close()
}

// chunkSeparatorFilter turns a chunked body into a plain sequence of JSON values: commas between
// top-level values are dropped, and so are the brackets of an enclosing array.
// Bytes inside strings are never touched.
type chunkSeparatorFilter struct {
	r        *bufio.Reader
	started  bool
	inString bool
	escaped  bool
	depth    int
}

func (f *chunkSeparatorFilter) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		b, err := f.r.ReadByte()
		if err != nil {
			if n > 0 {
				return n, nil
			}
			return 0, err
		}
		if f.keep(b) {
			p[n] = b
			n++
		}
		// hand over what we have instead of blocking on a connection that stays open
		if n > 0 && f.r.Buffered() == 0 {
			break
		}
	}
	return n, nil
}

func (f *chunkSeparatorFilter) keep(b byte) bool {
	if f.inString {
		switch {
		case f.escaped:
			f.escaped = false
		case b == '\\':
			f.escaped = true
		case b == '"':
			f.inString = false
		}
		return true
	}
	switch b {
	case '"':
		f.started = true
		f.inString = true
	case '[':
		if f.depth == 0 && !f.started {
			f.started = true
			return false
		}
		f.started = true
		f.depth++
	case '{':
		f.started = true
		f.depth++
	case '}', ']':
		if f.depth == 0 {
			return false
		}
		f.depth--
	case ',':
		return f.depth > 0
	case ' ', '\t', '\r', '\n':
	default:
		f.started = true
	}
	return true
}
