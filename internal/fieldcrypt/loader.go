package fieldcrypt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// KeyLoader fetches the raw encryption secret from a location.
type KeyLoader interface {
	Load(ctx context.Context, location string) ([]byte, error)
}

// ErrNoSecret is returned when no key source is configured.
var ErrNoSecret = errors.New("no encryption secret configured")

// fileLoader reads the secret from a local file.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a KeyLoader that reads secrets from disk.
func NewFileLoader(logger zerolog.Logger) KeyLoader {
	return &fileLoader{
		logger: logger.With().Str("component", "key-loader").Logger(),
	}
}

func (l *fileLoader) Load(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	secret, err := os.ReadFile(path)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to read key file")
		return nil, fmt.Errorf("failed to read key file %s: %w", path, err)
	}

	secret = bytes.TrimSpace(secret)
	if len(secret) == 0 {
		return nil, fmt.Errorf("key file %s is empty", path)
	}

	l.logger.Info().Str("file", path).Msg("encryption key loaded")
	return secret, nil
}

// fallbackLoader tries S3 first, then the local file system.
type fallbackLoader struct {
	s3Loader   KeyLoader
	fileLoader KeyLoader
	s3Key      string
	s3Enabled  bool
	logger     zerolog.Logger
}

// NewFallbackLoader creates a loader that reads s3Key from S3 when enabled and
// falls back to the local path passed to Load.
func NewFallbackLoader(s3Loader, fileLoader KeyLoader, s3Key string, s3Enabled bool, logger zerolog.Logger) KeyLoader {
	return &fallbackLoader{
		s3Loader:   s3Loader,
		fileLoader: fileLoader,
		s3Key:      s3Key,
		s3Enabled:  s3Enabled,
		logger:     logger.With().Str("component", "fallback-key-loader").Logger(),
	}
}

func (l *fallbackLoader) Load(ctx context.Context, path string) ([]byte, error) {
	if l.s3Enabled && l.s3Loader != nil {
		secret, err := l.s3Loader.Load(ctx, l.s3Key)
		if err == nil {
			return secret, nil
		}
		if path == "" {
			return nil, err
		}
		l.logger.Warn().Err(err).Str("s3_key", l.s3Key).Msg("failed to load key from S3, falling back to local file")
	}

	if path == "" || l.fileLoader == nil {
		return nil, ErrNoSecret
	}

	return l.fileLoader.Load(ctx, path)
}

// Source describes where the secret lives. An inline Key wins over any loader.
type Source struct {
	Key       string
	KeyFile   string
	S3Enabled bool
	S3Bucket  string
	S3Region  string
	S3Key     string
}

// ResolveSecret returns the secret described by src.
func ResolveSecret(ctx context.Context, src Source, logger zerolog.Logger) ([]byte, error) {
	if src.Key != "" {
		return []byte(src.Key), nil
	}

	var s3 KeyLoader
	if src.S3Enabled {
		var err error
		s3, err = NewS3Loader(ctx, src.S3Bucket, src.S3Region, logger)
		if err != nil {
			return nil, err
		}
	}

	return NewFallbackLoader(s3, NewFileLoader(logger), src.S3Key, src.S3Enabled, logger).Load(ctx, src.KeyFile)
}
