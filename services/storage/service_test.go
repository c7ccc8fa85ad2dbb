package storage

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calcbuilder/adminstack/config"
)

type memoryClient struct {
	objects map[string][]byte
	err     error
}

func (c *memoryClient) Put(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	if c.err != nil {
		return c.err
	}
	c.objects[bucket+"/"+key] = data
	return nil
}

func (c *memoryClient) Delete(ctx context.Context, bucket, key string) error {
	if c.err != nil {
		return c.err
	}
	delete(c.objects, bucket+"/"+key)
	return nil
}

func TestObjectStorageService(t *testing.T) {
	client := &memoryClient{objects: map[string][]byte{}}
	service := NewObjectStorageService(client, "company-assets", "https://cdn.calcbuilder.com/")
	ctx := context.Background()

	require.NoError(t, service.Upload(ctx, "companies/comp_1/logos/a.png", []byte("png"), "image/png"))
	assert.Equal(t, []byte("png"), client.objects["company-assets/companies/comp_1/logos/a.png"])

	assert.Equal(t, "https://cdn.calcbuilder.com/companies/comp_1/logos/a.png", service.PublicURL("companies/comp_1/logos/a.png"))

	require.NoError(t, service.Delete(ctx, "companies/comp_1/logos/a.png"))
	assert.Empty(t, client.objects)
}

func TestObjectStorageService_WrapsClientErrors(t *testing.T) {
	service := NewObjectStorageService(&memoryClient{err: errors.New("access denied")}, "bucket", "https://cdn")

	err := service.Upload(context.Background(), "k", []byte("x"), "text/plain")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}

func TestNewStorageService_ProviderSelection(t *testing.T) {
	cfg := &config.Config{
		R2StorageConfig: &config.R2StorageConfig{AccessKeyID: "key", AccessKeySecret: "secret", AssetsBucket: "company-assets"},
		S3StorageConfig: &config.S3StorageConfig{Provider: "r2", Region: "eu-north-1"},
	}

	_, err := NewStorageService(cfg)
	assert.Error(t, err, "r2 without account id")

	cfg.R2StorageConfig.AccountID = "acc123"
	service, err := NewStorageService(cfg)
	require.NoError(t, err)
	assert.Equal(t, "https://acc123.r2.cloudflarestorage.com/company-assets/logo.png", service.PublicURL("logo.png"))

	cfg.S3StorageConfig.Provider = "S3"
	service, err = NewStorageService(cfg)
	require.NoError(t, err)
	assert.Equal(t, "https://company-assets.s3.eu-north-1.amazonaws.com/logo.png", service.PublicURL("logo.png"))

	cfg.S3StorageConfig.Provider = "gcs"
	_, err = NewStorageService(cfg)
	assert.Error(t, err)
}
