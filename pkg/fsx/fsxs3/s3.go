package fsxs3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/mlinyun/Peekpa/pkg/errx"
	"github.com/mlinyun/Peekpa/pkg/fsx"
)

// S3FileSystem stores blobs in an S3 bucket under an optional key prefix
type S3FileSystem struct {
	client *s3.Client
	bucket string
	prefix string
}

var _ fsx.FileSystem = (*S3FileSystem)(nil)

func NewS3FileSystem(client *s3.Client, bucket, prefix string) *S3FileSystem {
	return &S3FileSystem{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

func (fs *S3FileSystem) key(name string) string {
	name = strings.TrimPrefix(name, "/")
	if fs.prefix == "" {
		return name
	}
	return fs.prefix + "/" + name
}

func (fs *S3FileSystem) WriteFile(ctx context.Context, name string, data []byte) error {
	_, err := fs.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(fs.bucket),
		Key:           aws.String(fs.key(name)),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(fsx.ContentType(name)),
	})
	if err != nil {
		return errx.Wrap(err, "failed to upload object", errx.TypeInternal).
			WithDetail("bucket", fs.bucket).
			WithDetail("key", fs.key(name))
	}
	return nil
}

func (fs *S3FileSystem) ReadFile(ctx context.Context, name string) ([]byte, error) {
	out, err := fs.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(fs.bucket),
		Key:    aws.String(fs.key(name)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, errx.New("file not found", errx.TypeNotFound).WithDetail("path", name)
		}
		return nil, errx.Wrap(err, "failed to download object", errx.TypeInternal).
			WithDetail("key", fs.key(name))
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, errx.Wrap(err, "failed to read object body", errx.TypeInternal).
			WithDetail("key", fs.key(name))
	}
	return data, nil
}

// DeleteFile succeeds for missing keys, as S3 does
func (fs *S3FileSystem) DeleteFile(ctx context.Context, name string) error {
	_, err := fs.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(fs.bucket),
		Key:    aws.String(fs.key(name)),
	})
	if err != nil {
		return errx.Wrap(err, "failed to delete object", errx.TypeInternal).
			WithDetail("key", fs.key(name))
	}
	return nil
}

func (fs *S3FileSystem) Exists(ctx context.Context, name string) (bool, error) {
	_, err := fs.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(fs.bucket),
		Key:    aws.String(fs.key(name)),
	})
	if err == nil {
		return true, nil
	}
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return false, nil
	}
	return false, errx.Wrap(err, "failed to head object", errx.TypeInternal).
		WithDetail("key", fs.key(name))
}
