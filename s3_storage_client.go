package goksql

import (
	"bytes"
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

const defaultS3Region = "us-east-1"

type s3UploadAPI interface {
	Upload(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

type s3StorageClient struct {
	cfg *ExportConfig
	// for testing only
	uploader s3UploadAPI
}

func (util *s3StorageClient) createClient() *s3.Client {
	region := util.cfg.AWSRegion
	if region == "" {
		region = defaultS3Region
	}
	opts := s3.Options{
		Region:       region,
		UsePathStyle: util.cfg.S3UsePathStyle,
	}
	if util.cfg.AWSAccessKeyID != "" {
		opts.Credentials = aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(
			util.cfg.AWSAccessKeyID,
			util.cfg.AWSSecretAccessKey,
			util.cfg.AWSSessionToken))
	}
	if util.cfg.S3Endpoint != "" {
		opts.BaseEndpoint = aws.String(util.cfg.S3Endpoint)
	}
	return s3.New(opts)
}

func (util *s3StorageClient) upload(ctx context.Context, loc *exportLocation, data []byte, contentType string) error {
	uploader := util.uploader
	if uploader == nil {
		uploader = manager.NewUploader(util.createClient())
	}
	_, err := uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(loc.bucket),
		Key:         aws.String(loc.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		var ae smithy.APIError
		if errors.As(err, &ae) {
			logger.WithContext(ctx).Errorf("S3 upload to %v rejected: code=%v, message=%v", loc, ae.ErrorCode(), ae.ErrorMessage())
		}
		return err
	}
	return nil
}
