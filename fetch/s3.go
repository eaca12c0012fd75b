package fetch

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// readS3 reads s3://bucket/key directly from object storage using the
// configured endpoint credentials.
func (f *Fetcher) readS3(ctx context.Context, path string) ([]byte, error) {
	bucket, key, err := splitS3Path(path)
	if err != nil {
		return nil, err
	}
	client, err := f.s3(ctx)
	if err != nil {
		return nil, err
	}
	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("object read failed: %w", err)
	}
	defer out.Body.Close()
	return readLimited(out.Body, f.limit)
}

// s3 builds the client once per fetcher. Endpoint and credentials must all
// be configured, otherwise the strategy is disabled.
func (f *Fetcher) s3(ctx context.Context) (*s3.Client, error) {
	f.s3Once.Do(func() {
		cfg := f.cfg.S3
		if cfg.Endpoint == "" || cfg.AccessKey.Empty() || cfg.SecretKey.Empty() {
			f.s3Err = fmt.Errorf("object storage is not configured")
			return
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(cfg.AccessKey.Value(), cfg.SecretKey.Value(), "")),
			awsconfig.WithRegion("us-east-1"),
		)
		if err != nil {
			f.s3Err = fmt.Errorf("unable to prepare object storage client: %w", err)
			return
		}
		f.s3Client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.AddressingStyle == "path"
		})
	})
	return f.s3Client, f.s3Err
}

func splitS3Path(path string) (string, string, error) {
	rest, ok := strings.CutPrefix(path, "s3://")
	if !ok {
		return "", "", fmt.Errorf("not an s3 path: %s", path)
	}
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("malformed s3 path: %s", path)
	}
	return bucket, key, nil
}
