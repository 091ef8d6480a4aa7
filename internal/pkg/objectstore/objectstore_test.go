package objectstore

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"search-insight-miner/config"
)

type putObjectFunc func(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)

func (f putObjectFunc) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	return f(ctx, params, optFns...)
}

func TestNewUploader_DisabledWithoutBucket(t *testing.T) {
	u, err := NewUploader(context.Background(), &config.Config{}, zap.NewNop().Sugar())
	require.NoError(t, err)
	require.False(t, u.Enabled())
	require.ErrorIs(t, u.Upload(context.Background(), "k", strings.NewReader("x")), ErrDisabled)
}

func TestUpload_PutsObject(t *testing.T) {
	var got *s3.PutObjectInput
	var body string
	u := &Uploader{
		bucket: "exports",
		logger: zap.NewNop().Sugar(),
		client: putObjectFunc(func(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
			got = in
			b, err := io.ReadAll(in.Body)
			require.NoError(t, err)
			body = string(b)
			return &s3.PutObjectOutput{}, nil
		}),
	}

	require.NoError(t, u.Upload(context.Background(), "product_results.xlsx", strings.NewReader("sheet")))
	require.Equal(t, "exports", aws.ToString(got.Bucket))
	require.Equal(t, "product_results.xlsx", aws.ToString(got.Key))
	require.Equal(t, xlsxContentType, aws.ToString(got.ContentType))
	require.Equal(t, "sheet", body)
}

func TestUpload_WrapsError(t *testing.T) {
	boom := errors.New("access denied")
	u := &Uploader{
		bucket: "exports",
		logger: zap.NewNop().Sugar(),
		client: putObjectFunc(func(context.Context, *s3.PutObjectInput, ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
			return nil, boom
		}),
	}

	err := u.Upload(context.Background(), "k", strings.NewReader("x"))
	require.ErrorIs(t, err, boom)
	require.Contains(t, err.Error(), "s3://exports/k")
}
