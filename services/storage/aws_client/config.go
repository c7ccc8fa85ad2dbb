package aws_client

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
)

// R2Endpoint is the S3 compatible endpoint of a Cloudflare account.
func R2Endpoint(accountID string) string {
	return "https://" + accountID + ".r2.cloudflarestorage.com"
}

// R2Config points the S3 SDK at Cloudflare R2, which requires path style addressing
// and the "auto" region.
func R2Config(accountID, accessKeyID, accessKeySecret string) *aws.Config {
	return &aws.Config{
		Endpoint:         aws.String(R2Endpoint(accountID)),
		Region:           aws.String("auto"),
		Credentials:      credentials.NewStaticCredentials(accessKeyID, accessKeySecret, ""),
		S3ForcePathStyle: aws.Bool(true),
	}
}

// S3Config uses static credentials when given, otherwise the default AWS credential chain.
func S3Config(region, accessKeyID, accessKeySecret string) *aws.Config {
	cfg := &aws.Config{
		Region: aws.String(region),
	}
	if accessKeyID != "" {
		cfg.Credentials = credentials.NewStaticCredentials(accessKeyID, accessKeySecret, "")
	}
	return cfg
}
