package fieldcrypt

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// maxKeyObjectSize bounds how much of the key object is read.
const maxKeyObjectSize = 4 * 1024

// s3Loader reads the secret from an S3 object.
type s3Loader struct {
	client *s3.Client
	bucket string
	logger zerolog.Logger
}

// NewS3Loader creates a KeyLoader backed by bucket in region.
func NewS3Loader(ctx context.Context, bucket, region string, logger zerolog.Logger) (KeyLoader, error) {
	logger = logger.With().Str("component", "s3-key-loader").Logger()

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	logger.Info().Str("bucket", bucket).Str("region", region).Msg("S3 key loader initialised")

	return &s3Loader{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		logger: logger,
	}, nil
}

func (l *s3Loader) Load(ctx context.Context, key string) ([]byte, error) {
	result, err := l.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(l.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		l.logger.Error().Err(err).Str("bucket", l.bucket).Str("key", key).Msg("failed to get key object from S3")
		return nil, fmt.Errorf("failed to get object from S3 (bucket=%s, key=%s): %w", l.bucket, key, err)
	}
	defer result.Body.Close()

	secret, err := io.ReadAll(io.LimitReader(result.Body, maxKeyObjectSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read S3 key object %s: %w", key, err)
	}

	secret = bytes.TrimSpace(secret)
	if len(secret) == 0 {
		return nil, fmt.Errorf("S3 key object %s is empty", key)
	}

	l.logger.Info().Str("bucket", l.bucket).Str("key", key).Msg("encryption key loaded from S3")
	return secret, nil
}
