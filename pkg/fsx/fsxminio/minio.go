package fsxminio

import (
	"bytes"
	"context"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/mlinyun/Peekpa/pkg/config"
	"github.com/mlinyun/Peekpa/pkg/errx"
	"github.com/mlinyun/Peekpa/pkg/fsx"
	"github.com/mlinyun/Peekpa/pkg/logx"
)

const codeNoSuchKey = "NoSuchKey"

// MinioFileSystem stores blobs in a MinIO bucket
type MinioFileSystem struct {
	client *minio.Client
	bucket string
}

var _ fsx.FileSystem = (*MinioFileSystem)(nil)

// NewMinioFileSystem connects and creates the bucket when it is missing
func NewMinioFileSystem(ctx context.Context, cfg config.MinioConfig) (*MinioFileSystem, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, errx.Wrap(err, "failed to create minio client", errx.TypeInternal).
			WithDetail("endpoint", cfg.Endpoint)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, errx.Wrap(err, "failed to check minio bucket", errx.TypeInternal).
			WithDetail("bucket", cfg.Bucket)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, errx.Wrap(err, "failed to create minio bucket", errx.TypeInternal).
				WithDetail("bucket", cfg.Bucket)
		}
		logx.Infof("Created minio bucket %s", cfg.Bucket)
	}

	return &MinioFileSystem{client: client, bucket: cfg.Bucket}, nil
}

func (fs *MinioFileSystem) WriteFile(ctx context.Context, name string, data []byte) error {
	_, err := fs.client.PutObject(ctx, fs.bucket, name, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: fsx.ContentType(name)})
	if err != nil {
		return errx.Wrap(err, "failed to upload object", errx.TypeInternal).
			WithDetail("bucket", fs.bucket).
			WithDetail("key", name)
	}
	return nil
}

func (fs *MinioFileSystem) ReadFile(ctx context.Context, name string) ([]byte, error) {
	obj, err := fs.client.GetObject(ctx, fs.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, errx.Wrap(err, "failed to download object", errx.TypeInternal).WithDetail("key", name)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == codeNoSuchKey {
			return nil, errx.New("file not found", errx.TypeNotFound).WithDetail("path", name)
		}
		return nil, errx.Wrap(err, "failed to read object", errx.TypeInternal).WithDetail("key", name)
	}
	return data, nil
}

func (fs *MinioFileSystem) DeleteFile(ctx context.Context, name string) error {
	if err := fs.client.RemoveObject(ctx, fs.bucket, name, minio.RemoveObjectOptions{}); err != nil {
		return errx.Wrap(err, "failed to delete object", errx.TypeInternal).WithDetail("key", name)
	}
	return nil
}

func (fs *MinioFileSystem) Exists(ctx context.Context, name string) (bool, error) {
	_, err := fs.client.StatObject(ctx, fs.bucket, name, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if minio.ToErrorResponse(err).Code == codeNoSuchKey {
		return false, nil
	}
	return false, errx.Wrap(err, "failed to stat object", errx.TypeInternal).WithDetail("key", name)
}
