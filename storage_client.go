package goksql

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
)

const (
	fileScheme  = "file"
	s3Scheme    = "s3"
	gcsScheme   = "gs"
	azureScheme = "azblob"
)

// storageClient uploads an encoded result to one storage backend.
// implemented by localStorageClient, s3StorageClient, gcsStorageClient and azureStorageClient
type storageClient interface {
	upload(ctx context.Context, loc *exportLocation, data []byte, contentType string) error
}

// exportLocation is a parsed export URL. For file locations bucket is empty and key is the path.
type exportLocation struct {
	scheme string
	bucket string
	key    string
}

func parseExportLocation(raw string) (*exportLocation, error) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return nil, unsupportedLocationError(raw, err)
	}
	switch strings.ToLower(u.Scheme) {
	case fileScheme:
		p := u.Path
		if u.Host != "" {
			p = u.Host + p
		}
		if p == "" {
			return nil, unsupportedLocationError(raw, nil)
		}
		return &exportLocation{scheme: fileScheme, key: p}, nil
	case s3Scheme, gcsScheme, azureScheme:
		if u.Host == "" {
			return nil, unsupportedLocationError(raw, nil)
		}
		key := strings.TrimPrefix(u.Path, "/")
		if key == "" {
			key = "/"
		}
		return &exportLocation{scheme: strings.ToLower(u.Scheme), bucket: u.Host, key: key}, nil
	}
	return nil, unsupportedLocationError(raw, nil)
}

func unsupportedLocationError(raw string, cause error) *KsqlError {
	return (&KsqlError{
		Number:      ErrCodeUnsupportedLocation,
		Kind:        KindConfiguration,
		Message:     errMsgUnsupportedLocation,
		MessageArgs: []interface{}{raw},
	}).withCause(cause)
}

// isPrefix reports whether the location names a directory-like prefix rather than an object.
func (l *exportLocation) isPrefix() bool {
	return strings.HasSuffix(l.key, "/")
}

// withObjectName appends a generated result name to a prefix location.
func (l *exportLocation) withObjectName(extension string) *exportLocation {
	if !l.isPrefix() {
		return l
	}
	name := fmt.Sprintf("result-%v.%v", uuid.NewString(), extension)
	key := l.key + name
	if l.scheme != fileScheme && l.key == "/" {
		key = name
	}
	return &exportLocation{scheme: l.scheme, bucket: l.bucket, key: key}
}

func (l *exportLocation) String() string {
	if l.scheme == fileScheme {
		return fileScheme + "://" + l.key
	}
	return l.scheme + "://" + path.Join(l.bucket, l.key)
}
