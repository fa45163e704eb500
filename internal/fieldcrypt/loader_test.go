package fieldcrypt

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockLoader struct {
	loadFunc func(ctx context.Context, location string) ([]byte, error)
}

func (m *mockLoader) Load(ctx context.Context, location string) ([]byte, error) {
	if m.loadFunc != nil {
		return m.loadFunc(ctx, location)
	}
	return nil, errors.New("not implemented")
}

func writeKeyFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "order.key")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestFileLoader_Load(t *testing.T) {
	path := writeKeyFile(t, "  secret-from-file-0123456789\n")

	secret, err := NewFileLoader(zerolog.Nop()).Load(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, "secret-from-file-0123456789", string(secret))
}

func TestFileLoader_Load_Errors(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())

	_, err := loader.Load(context.Background(), filepath.Join(t.TempDir(), "missing.key"))
	assert.Error(t, err)

	_, err = loader.Load(context.Background(), writeKeyFile(t, "   \n"))
	assert.Error(t, err)
}

func TestFallbackLoader_S3Success(t *testing.T) {
	s3 := &mockLoader{loadFunc: func(ctx context.Context, key string) ([]byte, error) {
		assert.Equal(t, "keys/order.key", key)
		return []byte("from-s3"), nil
	}}
	file := &mockLoader{loadFunc: func(ctx context.Context, path string) ([]byte, error) {
		t.Error("file loader should not be called when S3 succeeds")
		return nil, errors.New("should not be called")
	}}

	secret, err := NewFallbackLoader(s3, file, "keys/order.key", true, zerolog.Nop()).Load(context.Background(), "/etc/order.key")

	require.NoError(t, err)
	assert.Equal(t, "from-s3", string(secret))
}

func TestFallbackLoader_S3FailsFallsBackToFile(t *testing.T) {
	s3 := &mockLoader{loadFunc: func(ctx context.Context, key string) ([]byte, error) {
		return nil, errors.New("access denied")
	}}
	file := &mockLoader{loadFunc: func(ctx context.Context, path string) ([]byte, error) {
		assert.Equal(t, "/etc/order.key", path)
		return []byte("from-file"), nil
	}}

	secret, err := NewFallbackLoader(s3, file, "keys/order.key", true, zerolog.Nop()).Load(context.Background(), "/etc/order.key")

	require.NoError(t, err)
	assert.Equal(t, "from-file", string(secret))
}

func TestFallbackLoader_S3Disabled(t *testing.T) {
	s3 := &mockLoader{loadFunc: func(ctx context.Context, key string) ([]byte, error) {
		t.Error("S3 loader should not be called when disabled")
		return nil, errors.New("should not be called")
	}}
	file := &mockLoader{loadFunc: func(ctx context.Context, path string) ([]byte, error) {
		return []byte("from-file"), nil
	}}

	secret, err := NewFallbackLoader(s3, file, "keys/order.key", false, zerolog.Nop()).Load(context.Background(), "/etc/order.key")

	require.NoError(t, err)
	assert.Equal(t, "from-file", string(secret))
}

func TestFallbackLoader_NothingConfigured(t *testing.T) {
	_, err := NewFallbackLoader(nil, NewFileLoader(zerolog.Nop()), "", false, zerolog.Nop()).Load(context.Background(), "")

	assert.ErrorIs(t, err, ErrNoSecret)
}

func TestResolveSecret(t *testing.T) {
	ctx := context.Background()

	secret, err := ResolveSecret(ctx, Source{Key: "inline-secret", KeyFile: "/does/not/matter"}, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "inline-secret", string(secret))

	path := writeKeyFile(t, "file-secret")
	secret, err = ResolveSecret(ctx, Source{KeyFile: path}, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "file-secret", string(secret))

	_, err = ResolveSecret(ctx, Source{}, zerolog.Nop())
	assert.ErrorIs(t, err, ErrNoSecret)
}
