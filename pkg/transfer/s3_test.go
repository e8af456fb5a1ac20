package transfer_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/uploadkit/pkg/transfer"
)

// MockS3Client is a mock implementation of the S3Client interface
type MockS3Client struct {
	mock.Mock
}

func (m *MockS3Client) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params, optFns)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.PutObjectOutput), args.Error(1)
}

func (m *MockS3Client) HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	args := m.Called(ctx, params, optFns)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.HeadObjectOutput), args.Error(1)
}

func newS3(t *testing.T, client transfer.S3Client, prefix string) *transfer.S3Transfer {
	t.Helper()
	s, err := transfer.NewS3(context.Background(), transfer.S3Config{
		Bucket: "uploads",
		Region: "us-east-1",
		Prefix: prefix,
	}, transfer.WithS3Client(client))
	require.NoError(t, err)
	return s
}

func TestNewS3(t *testing.T) {
	t.Parallel()

	t.Run("valid config", func(t *testing.T) {
		t.Parallel()
		s, err := transfer.NewS3(context.Background(), transfer.S3Config{
			Bucket:      "uploads",
			Region:      "us-east-1",
			AccessKeyID: "test-key",
			SecretKey:   "test-secret",
		})
		require.NoError(t, err)
		assert.Equal(t, transfer.NameS3, s.String())
	})

	t.Run("custom endpoint", func(t *testing.T) {
		t.Parallel()
		s, err := transfer.NewS3(context.Background(), transfer.S3Config{
			Bucket:         "uploads",
			Region:         "us-east-1",
			Endpoint:       "http://localhost:9000",
			ForcePathStyle: true,
		})
		require.NoError(t, err)
		require.NotNil(t, s)
	})

	t.Run("missing bucket", func(t *testing.T) {
		t.Parallel()
		_, err := transfer.NewS3(context.Background(), transfer.S3Config{Region: "us-east-1"})
		assert.ErrorIs(t, err, transfer.ErrInvalidConfig)
	})

	t.Run("missing region", func(t *testing.T) {
		t.Parallel()
		_, err := transfer.NewS3(context.Background(), transfer.S3Config{Bucket: "uploads"})
		assert.ErrorIs(t, err, transfer.ErrInvalidConfig)
	})

	t.Run("prefix with traversal", func(t *testing.T) {
		t.Parallel()
		_, err := transfer.NewS3(context.Background(), transfer.S3Config{
			Bucket: "uploads",
			Region: "us-east-1",
			Prefix: "../etc",
		}, transfer.WithS3Client(&MockS3Client{}))
		assert.ErrorIs(t, err, transfer.ErrInvalidPath)
	})
}

func TestS3Key(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a.txt", newS3(t, &MockS3Client{}, "").Key("/var/uploads/a.txt"))
	assert.Equal(t, "media/2024/a.txt", newS3(t, &MockS3Client{}, "/media/2024/").Key("/var/uploads/a.txt"))
}

func TestS3Transfer(t *testing.T) {
	t.Parallel()

	t.Run("puts object under prefixed key", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		src := filepath.Join(dir, "tmp-upload")
		require.NoError(t, os.WriteFile(src, []byte("hello"), 0o600))

		client := &MockS3Client{}
		client.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
			if aws.ToString(in.Bucket) != "uploads" || aws.ToString(in.Key) != "docs/report.pdf" {
				return false
			}
			if aws.ToString(in.ContentType) != "application/pdf" || aws.ToInt64(in.ContentLength) != 5 {
				return false
			}
			body, err := io.ReadAll(in.Body)
			return err == nil && string(body) == "hello"
		}), mock.Anything).Return(&s3.PutObjectOutput{}, nil)

		err := newS3(t, client, "docs").Transfer(context.Background(), src, "/srv/uploads/report.pdf")
		require.NoError(t, err)
		client.AssertExpectations(t)
		assert.FileExists(t, src)
	})

	t.Run("unknown extension uses octet-stream", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		src := filepath.Join(dir, "tmp-upload")
		require.NoError(t, os.WriteFile(src, []byte("x"), 0o600))

		client := &MockS3Client{}
		client.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
			return aws.ToString(in.ContentType) == "application/octet-stream"
		}), mock.Anything).Return(&s3.PutObjectOutput{}, nil)

		require.NoError(t, newS3(t, client, "").Transfer(context.Background(), src, "blob.unknownext"))
		client.AssertExpectations(t)
	})

	t.Run("missing source", func(t *testing.T) {
		t.Parallel()
		client := &MockS3Client{}

		err := newS3(t, client, "").Transfer(context.Background(), filepath.Join(t.TempDir(), "nope"), "a.txt")
		assert.ErrorIs(t, err, transfer.ErrFailedToOpenFile)
		client.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("access denied", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		src := filepath.Join(dir, "tmp-upload")
		require.NoError(t, os.WriteFile(src, []byte("x"), 0o600))

		client := &MockS3Client{}
		client.On("PutObject", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, &smithy.GenericAPIError{Code: "AccessDenied", Message: "denied"})

		err := newS3(t, client, "").Transfer(context.Background(), src, "a.txt")
		assert.ErrorIs(t, err, transfer.ErrAccessDenied)
	})
}

func TestS3Exists(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     error
		want    bool
		wantErr error
	}{
		{name: "found", want: true},
		{name: "not found type", err: &types.NotFound{}},
		{name: "no such key", err: &types.NoSuchKey{}},
		{name: "not found code", err: &smithy.GenericAPIError{Code: "NotFound"}},
		{name: "no such bucket", err: &types.NoSuchBucket{}, wantErr: transfer.ErrBucketNotFound},
		{name: "throttled", err: &smithy.GenericAPIError{Code: "SlowDown"}, wantErr: transfer.ErrServiceUnavailable},
		{name: "timeout", err: context.DeadlineExceeded, wantErr: transfer.ErrOperationTimeout},
		{name: "canceled", err: context.Canceled, wantErr: transfer.ErrOperationCanceled},
		{name: "other", err: errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			client := &MockS3Client{}
			if tt.err != nil {
				client.On("HeadObject", mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.err)
			} else {
				client.On("HeadObject", mock.Anything, mock.MatchedBy(func(in *s3.HeadObjectInput) bool {
					return aws.ToString(in.Key) == "a.txt"
				}), mock.Anything).Return(&s3.HeadObjectOutput{}, nil)
			}

			got, err := newS3(t, client, "").Exists(context.Background(), "/srv/a.txt")
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.name == "other":
				assert.Error(t, err)
			default:
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
