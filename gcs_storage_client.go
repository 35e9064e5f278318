package goksql

import (
	"context"
	"errors"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

type gcsStorageClient struct {
	cfg *ExportConfig
}

func (util *gcsStorageClient) clientOptions() []option.ClientOption {
	var opts []option.ClientOption
	if util.cfg.GCSEndpoint != "" {
		opts = append(opts, option.WithEndpoint(util.cfg.GCSEndpoint))
	}
	switch {
	case util.cfg.GCSCredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(util.cfg.GCSCredentialsFile))
	case util.cfg.GCSAnonymous:
		opts = append(opts, option.WithoutAuthentication())
	}
	return opts
}

func (util *gcsStorageClient) upload(ctx context.Context, loc *exportLocation, data []byte, contentType string) error {
	client, err := storage.NewClient(ctx, util.clientOptions()...)
	if err != nil {
		return err
	}
	defer client.Close()

	w := client.Bucket(loc.bucket).Object(loc.key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err = w.Write(data); err != nil {
		_ = w.Close()
		return logGcsError(ctx, loc, err)
	}
	if err = w.Close(); err != nil {
		return logGcsError(ctx, loc, err)
	}
	return nil
}

func logGcsError(ctx context.Context, loc *exportLocation, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		logger.WithContext(ctx).Errorf("GCS upload to %v rejected: status=%v, message=%v", loc, gerr.Code, gerr.Message)
	}
	return err
}
