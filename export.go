package goksql

import (
	"bytes"
	"context"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const arrowStreamContentType = "application/vnd.apache.arrow.stream"

// ExportConfig names where an encoded result is written and the credentials of the backend.
type ExportConfig struct {
	// Location is file:///path, s3://bucket/key, gs://bucket/key or azblob://container/key.
	// A location ending with / gets a generated result-<uuid> object name.
	Location string

	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	AWSSessionToken    string
	S3Endpoint         string // custom endpoint, e.g. a MinIO server
	S3UsePathStyle     bool

	GCSCredentialsFile string
	GCSEndpoint        string
	GCSAnonymous       bool

	AzureAccountName string
	AzureAccountKey  string
	AzureSASToken    string
	AzureServiceURL  string // overrides https://<account>.blob.core.windows.net

	// for testing only
	client storageClient
}

// ExportedObject describes an uploaded result.
type ExportedObject struct {
	Location    string
	ContentType string
	Size        int
}

// detectContentType returns the content type and file extension of an encoded result.
func detectContentType(data []byte) (string, string) {
	if bytes.HasPrefix(data, []byte{0xff, 0xff, 0xff, 0xff}) {
		return arrowStreamContentType, "arrow"
	}
	mt := mimetype.Detect(data)
	if mt.Is("application/json") {
		return "application/json", "json"
	}
	trimmed := bytes.TrimSpace(data)
	if bytes.HasPrefix(trimmed, []byte("{")) {
		return "application/json", "json"
	}
	return mt.String(), strings.TrimPrefix(mt.Extension(), ".")
}

func newStorageClient(cfg *ExportConfig, scheme string) storageClient {
	if cfg.client != nil {
		return cfg.client
	}
	switch scheme {
	case s3Scheme:
		return &s3StorageClient{cfg: cfg}
	case gcsScheme:
		return &gcsStorageClient{cfg: cfg}
	case azureScheme:
		return &azureStorageClient{cfg: cfg}
	}
	return &localStorageClient{}
}

// ExportResult writes an encoded result to cfg.Location.
func ExportResult(ctx context.Context, cfg *ExportConfig, data []byte) (*ExportedObject, error) {
	if cfg == nil {
		return nil, unsupportedLocationError("", nil)
	}
	loc, err := parseExportLocation(cfg.Location)
	if err != nil {
		return nil, err
	}
	contentType, extension := detectContentType(data)
	if extension == "" {
		extension = "bin"
	}
	loc = loc.withObjectName(extension)

	logger.WithContext(ctx).Infof("exporting %v bytes of %v to %v", len(data), contentType, loc)
	if err = newStorageClient(cfg, loc.scheme).upload(ctx, loc, data, contentType); err != nil {
		return nil, (&KsqlError{
			Number:      ErrCodeExportFailed,
			Kind:        KindExport,
			Message:     errMsgExportFailed,
			MessageArgs: []interface{}{loc},
		}).withCause(err)
	}
	return &ExportedObject{Location: loc.String(), ContentType: contentType, Size: len(data)}, nil
}
