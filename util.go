package goksql

import (
	"bufio"
	"compress/gzip"
	"io"
	"runtime"
	"strings"
)

var isWindows = runtime.GOOS == "windows"

type contextKey string

const gzipMagic = "\x1f\x8b"

// newResponseReader returns a buffered reader over body, transparently inflating it when
// it starts with the gzip magic bytes.
func newResponseReader(body io.Reader) (*bufio.Reader, error) {
	bufReader := bufio.NewReader(body)
	magic, err := bufReader.Peek(2)
	if err != nil && err != io.EOF {
		return nil, err
	}
	if string(magic) != gzipMagic {
		return bufReader, nil
	}
	gz, err := gzip.NewReader(bufReader)
	if err != nil {
		return nil, err
	}
	return bufio.NewReader(gz), nil
}

// readAllResponse reads a whole (possibly gzip compressed) response body.
func readAllResponse(body io.Reader) ([]byte, error) {
	r, err := newResponseReader(body)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}

func truncateForLog(s string, limit int) string {
	s = strings.TrimSpace(s)
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
