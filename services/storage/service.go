package storage

import (
	"context"
	"strings"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/calcbuilder/adminstack/config"
	"github.com/calcbuilder/adminstack/interfaces"
	"github.com/calcbuilder/adminstack/internal/tracing"
	"github.com/calcbuilder/adminstack/services/storage/aws_client"
)

const (
	ProviderR2 = "r2"
	ProviderS3 = "s3"
)

type objectStorageService struct {
	client        aws_client.ObjectClient
	bucketName    string
	publicBaseURL string
}

// NewStorageService builds the company asset store for the configured provider.
func NewStorageService(cfg *config.Config) (interfaces.StorageService, error) {
	r2 := cfg.R2StorageConfig

	var (
		client     aws_client.ObjectClient
		publicBase = r2.PublicBaseUrl
		err        error
	)
	switch strings.ToLower(cfg.S3StorageConfig.Provider) {
	case ProviderS3:
		client, err = aws_client.NewObjectClient(aws_client.S3Config(cfg.S3StorageConfig.Region, r2.AccessKeyID, r2.AccessKeySecret))
		if publicBase == "" {
			publicBase = "https://" + r2.AssetsBucket + ".s3." + cfg.S3StorageConfig.Region + ".amazonaws.com"
		}
	case ProviderR2, "":
		if r2.AccountID == "" {
			return nil, errors.New("CLOUDFLARE_R2_ACCOUNT_ID is required for r2 storage")
		}
		client, err = aws_client.NewObjectClient(aws_client.R2Config(r2.AccountID, r2.AccessKeyID, r2.AccessKeySecret))
		if publicBase == "" {
			publicBase = aws_client.R2Endpoint(r2.AccountID) + "/" + r2.AssetsBucket
		}
	default:
		return nil, errors.Errorf("unknown storage provider %q", cfg.S3StorageConfig.Provider)
	}
	if err != nil {
		return nil, err
	}

	return NewObjectStorageService(client, r2.AssetsBucket, publicBase), nil
}

func NewObjectStorageService(client aws_client.ObjectClient, bucketName, publicBaseURL string) interfaces.StorageService {
	return &objectStorageService{
		client:        client,
		bucketName:    bucketName,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
	}
}

func (s *objectStorageService) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "StorageService.Upload")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	err := s.client.Put(ctx, s.bucketName, key, data, contentType)
	if err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrap(err, "failed to upload object")
	}
	return nil
}

func (s *objectStorageService) Delete(ctx context.Context, key string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "StorageService.Delete")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	err := s.client.Delete(ctx, s.bucketName, key)
	if err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrap(err, "failed to delete object")
	}
	return nil
}

func (s *objectStorageService) PublicURL(key string) string {
	return s.publicBaseURL + "/" + strings.TrimPrefix(key, "/")
}
