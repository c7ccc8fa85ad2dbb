package aws_client

import (
	"bytes"
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/calcbuilder/adminstack/internal/tracing"
)

// ObjectClient is the subset of S3 the asset store needs. R2 speaks the same API.
type ObjectClient interface {
	Put(ctx context.Context, bucket, key string, data []byte, contentType string) error
	Delete(ctx context.Context, bucket, key string) error
}

type s3Client struct {
	uploader *s3manager.Uploader
	api      s3iface.S3API
}

func NewObjectClient(config *aws.Config) (ObjectClient, error) {
	s, err := session.NewSession(config)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create aws session")
	}
	return &s3Client{
		uploader: s3manager.NewUploader(s),
		api:      s3.New(s),
	}, nil
}

func (c *s3Client) Put(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ObjectClient.Put")
	defer span.Finish()
	tracing.TagComponentExternal(span)
	span.LogKV("bucket", bucket, "key", key, "size", len(data))

	_, err := c.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:       aws.String(bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	return nil
}

func (c *s3Client) Delete(ctx context.Context, bucket, key string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ObjectClient.Delete")
	defer span.Finish()
	tracing.TagComponentExternal(span)
	span.LogKV("bucket", bucket, "key", key)

	_, err := c.api.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	return nil
}
