package fsxlocal

import (
	"context"
	"testing"

	"github.com/mlinyun/Peekpa/pkg/errx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFileSystemLifecycle(t *testing.T) {
	ctx := context.Background()
	fs, err := NewLocalFileSystem(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, fs.WriteFile(ctx, "resume/cv_abcd1234.pdf", []byte("pdf")))

	ok, err := fs.Exists(ctx, "resume/cv_abcd1234.pdf")
	require.NoError(t, err)
	assert.True(t, ok)

	data, err := fs.ReadFile(ctx, "resume/cv_abcd1234.pdf")
	require.NoError(t, err)
	assert.Equal(t, "pdf", string(data))

	require.NoError(t, fs.DeleteFile(ctx, "resume/cv_abcd1234.pdf"))
	require.NoError(t, fs.DeleteFile(ctx, "resume/cv_abcd1234.pdf"))

	ok, err = fs.Exists(ctx, "resume/cv_abcd1234.pdf")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = fs.ReadFile(ctx, "resume/cv_abcd1234.pdf")
	assert.True(t, errx.IsType(err, errx.TypeNotFound))
}

func TestLocalFileSystemRejectsTraversal(t *testing.T) {
	fs, err := NewLocalFileSystem(t.TempDir())
	require.NoError(t, err)

	err = fs.WriteFile(context.Background(), "../outside.txt", []byte("x"))
	assert.True(t, errx.IsType(err, errx.TypeValidation))
}
