package goksql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
)

type azureStorageClient struct {
	cfg *ExportConfig
}

func (util *azureStorageClient) serviceURL() string {
	if util.cfg.AzureServiceURL != "" {
		return strings.TrimRight(util.cfg.AzureServiceURL, "/")
	}
	return fmt.Sprintf("https://%v.blob.core.windows.net", util.cfg.AzureAccountName)
}

func (util *azureStorageClient) createClient() (*azblob.Client, error) {
	if util.cfg.AzureAccountKey != "" {
		cred, err := azblob.NewSharedKeyCredential(util.cfg.AzureAccountName, util.cfg.AzureAccountKey)
		if err != nil {
			return nil, err
		}
		return azblob.NewClientWithSharedKeyCredential(util.serviceURL()+"/", cred, nil)
	}
	serviceURL := util.serviceURL() + "/"
	if sas := strings.TrimPrefix(util.cfg.AzureSASToken, "?"); sas != "" {
		serviceURL += "?" + sas
	}
	return azblob.NewClientWithNoCredential(serviceURL, nil)
}

func (util *azureStorageClient) upload(ctx context.Context, loc *exportLocation, data []byte, contentType string) error {
	client, err := util.createClient()
	if err != nil {
		return err
	}
	_, err = client.UploadBuffer(ctx, loc.bucket, loc.key, data, &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{
			BlobContentType: to.Ptr(contentType),
		},
	})
	if err != nil {
		var se *azcore.ResponseError
		if errors.As(err, &se) {
			logger.WithContext(ctx).Errorf("Azure upload to %v rejected: status=%v, code=%v", loc, se.StatusCode, se.ErrorCode)
		}
		return err
	}
	return nil
}
