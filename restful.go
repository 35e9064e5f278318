package goksql

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"runtime"
	"time"
)

const (
	headerAuthorizationKey  = "Authorization"
	headerContentTypeKey    = "Content-Type"
	headerAcceptKey         = "Accept"
	headerAcceptEncodingKey = "Accept-Encoding"
	headerUserAgentKey      = "User-Agent"

	headerKsqlV1JSON = "application/vnd.ksql.v1+json"

	queryEndpoint = "/query"
	ksqlEndpoint  = "/ksql"

	maxLoggedBodyLength = 2048
)

// userAgent shows up in User-Agent HTTP header
var userAgent = fmt.Sprintf("goksql/%v (%v-%v) %v", GoksqlVersion, runtime.GOOS, runtime.GOARCH, runtime.Version())

// ksqlRequest is the body of every statement posted to the engine.
type ksqlRequest struct {
	KSQL              string            `json:"ksql"`
	StreamsProperties map[string]string `json:"streamsProperties"`
}

// newRequestParams builds a fresh request body; the properties map is copied.
func newRequestParams(statement string, streamsProperties map[string]string) *ksqlRequest {
	props := make(map[string]string, len(streamsProperties))
	for k, v := range streamsProperties {
		props[k] = v
	}
	return &ksqlRequest{
		KSQL:              statement + ";",
		StreamsProperties: props,
	}
}

func newRequestHeaders(cfg *Config) map[string]string {
	headers := map[string]string{
		headerAcceptKey:      headerKsqlV1JSON,
		headerContentTypeKey: headerKsqlV1JSON,
		headerUserAgentKey:   userAgent,
	}
	if !cfg.DisableGzip {
		headers[headerAcceptEncodingKey] = "gzip"
	}
	return headers
}

type funcPostType func(context.Context, *ksqlRestful, *url.URL, map[string]string, []byte, time.Duration) (*http.Response, error)

type ksqlRestful struct {
	BaseURL *url.URL
	Client  *http.Client
	Config  *Config

	FuncPost funcPostType
}

func newKsqlRestful(cfg *Config) (*ksqlRestful, error) {
	baseURL, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	return &ksqlRestful{
		BaseURL:  baseURL,
		Client:   &http.Client{Transport: newTransportFactory(cfg).createTransport()},
		Config:   cfg,
		FuncPost: postRestful,
	}, nil
}

func (kr *ksqlRestful) getFullURL(endpoint string) *url.URL {
	return kr.BaseURL.JoinPath(endpoint)
}

// cancelOnCloseBody releases a per-request timeout once the caller is done with the body.
type cancelOnCloseBody struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelOnCloseBody) Close() error {
	defer b.cancel()
	return b.ReadCloser.Close()
}

func postRestful(
	ctx context.Context,
	kr *ksqlRestful,
	fullURL *url.URL,
	headers map[string]string,
	body []byte,
	timeout time.Duration) (
	*http.Response, error) {
	cancel := context.CancelFunc(func() {})
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL.String(), bytes.NewReader(body))
	if err != nil {
		cancel()
		return nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if err = authorizeRequest(req, kr.Config); err != nil {
		cancel()
		return nil, err
	}
	resp, err := kr.Client.Do(req)
	if err != nil {
		cancel()
		return nil, err
	}
	resp.Body = &cancelOnCloseBody{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

// postStatement posts statement to endpoint and returns the response when its status is 2xx.
// Any other outcome is a transport failure carrying the statement and the response body.
func (kr *ksqlRestful) postStatement(ctx context.Context, endpoint, statement string, timeout time.Duration) (*http.Response, error) {
	params := newRequestParams(statement, kr.Config.StreamsProperties)
	if endpoint == queryEndpoint {
		// pull queries always read from the start of the source
		params.StreamsProperties[autoOffsetResetProperty] = "earliest"
	}
	body, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}
	fullURL := kr.getFullURL(endpoint)
	logger.WithContext(ctx).Debugf("posting statement to %v: %v", fullURL, statement)

	resp, err := kr.FuncPost(ctx, kr, fullURL, newRequestHeaders(kr.Config), body, timeout)
	if err != nil {
		logger.WithContext(ctx).Errorf("failed to send KSQL request for statement %v: %v", statement, err)
		return nil, (&KsqlError{
			Number:      ErrCodeRequestFailed,
			Kind:        KindTransportFailure,
			Statement:   statement,
			Message:     errMsgRequestNotSent,
			MessageArgs: []interface{}{endpoint},
		}).withCause(err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	defer resp.Body.Close()
	respBody, readErr := readAllResponse(resp.Body)
	if readErr != nil {
		logger.WithContext(ctx).Warnf("failed to read error response body: %v", readErr)
	}
	logger.WithContext(ctx).Errorf("Error making a KSQL request %v for statement %v", truncateForLog(string(respBody), maxLoggedBodyLength), statement)
	return nil, &KsqlError{
		Number:       ErrCodeRequestFailed,
		Kind:         KindTransportFailure,
		Statement:    statement,
		HTTPStatus:   resp.StatusCode,
		ResponseBody: string(respBody),
		Message:      errMsgRequestFailed,
		MessageArgs:  []interface{}{endpoint, resp.StatusCode},
	}
}

// postKsql posts a describe or show statement to /ksql and decodes the whole answer into v.
func (kr *ksqlRestful) postKsql(ctx context.Context, statement string, v interface{}) error {
	resp, err := kr.postStatement(ctx, ksqlEndpoint, statement, kr.Config.RequestTimeout)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := readAllResponse(resp.Body)
	if err != nil {
		return (&KsqlError{
			Number:      ErrCodeFailedToDecodeResponse,
			Kind:        KindMalformedResponse,
			Statement:   statement,
			HTTPStatus:  resp.StatusCode,
			Message:     errMsgFailedToDecodeResponse,
			MessageArgs: []interface{}{ksqlEndpoint},
		}).withCause(err)
	}
	logger.WithContext(ctx).Debugf("KSQL response received %v", truncateForLog(string(respBody), maxLoggedBodyLength))

	decoder := json.NewDecoder(bytes.NewReader(respBody))
	decoder.UseNumber()
	if err = decoder.Decode(v); err != nil {
		return (&KsqlError{
			Number:       ErrCodeFailedToDecodeResponse,
			Kind:         KindMalformedResponse,
			Statement:    statement,
			HTTPStatus:   resp.StatusCode,
			ResponseBody: string(respBody),
			Message:      errMsgFailedToDecodeResponse,
			MessageArgs:  []interface{}{ksqlEndpoint},
		}).withCause(err)
	}
	return nil
}
