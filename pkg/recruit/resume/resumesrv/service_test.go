package resumesrv

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mlinyun/Peekpa/pkg/errx"
	"github.com/mlinyun/Peekpa/pkg/fsx"
	"github.com/mlinyun/Peekpa/pkg/fsx/fsxlocal"
	"github.com/mlinyun/Peekpa/pkg/iam/scopes"
	"github.com/mlinyun/Peekpa/pkg/kernel"
	"github.com/mlinyun/Peekpa/pkg/recruit/interview"
	"github.com/mlinyun/Peekpa/pkg/store/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*ResumeService, *memstore.Store, string) {
	t.Helper()
	dir := t.TempDir()
	files, err := fsxlocal.NewLocalFileSystem(dir)
	require.NoError(t, err)
	store := memstore.New()
	return NewResumeService(store.Resumes(), store, files, "media"), store, dir
}

func candidate(id string) scopes.Scope {
	uid := kernel.NewUserID(id)
	return scopes.Resolve(&kernel.AuthContext{UserID: &uid})
}

func blobPath(dir, url string) string {
	return filepath.Join(dir, filepath.FromSlash(fsx.PathFromURL("media", url)))
}

func TestUploadKeepsOneActiveResume(t *testing.T) {
	svc, store, dir := setup(t)
	ctx := context.Background()
	cand := candidate("cand")

	first, err := svc.Upload(ctx, cand, "cv.pdf", []byte("v1"))
	require.NoError(t, err)
	assert.True(t, first.IsActive)
	assert.Regexp(t, `^media/resume/cv_[0-9a-f]{8}\.pdf$`, first.URL)

	// an interview pins the first resume, so it survives as inactive
	require.NoError(t, store.Interviews().Create(ctx, interview.NewInterview(1, "mgr", "cand", first.ID, time.Now())))

	second, err := svc.Upload(ctx, cand, "cv.pdf", []byte("v2"))
	require.NoError(t, err)

	third, err := svc.Upload(ctx, cand, "cv.pdf", []byte("v3"))
	require.NoError(t, err)

	active, err := svc.GetActive(ctx, cand)
	require.NoError(t, err)
	assert.Equal(t, third.ID, active.ID)

	kept, err := store.Resumes().FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, kept.IsActive)
	assert.FileExists(t, blobPath(dir, first.URL))

	_, err = store.Resumes().FindByID(ctx, second.ID)
	assert.True(t, errx.IsType(err, errx.TypeNotFound))
	_, err = os.Stat(blobPath(dir, second.URL))
	assert.True(t, os.IsNotExist(err))
}

func TestUploadGuards(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	_, err := svc.Upload(ctx, scopes.Scope{}, "cv.pdf", []byte("x"))
	assert.True(t, errx.IsType(err, errx.TypeAuthentication))

	_, err = svc.Upload(ctx, candidate("cand"), "cv.pdf", nil)
	assert.True(t, errx.IsType(err, errx.TypeValidation))

	_, err = svc.GetActive(ctx, candidate("cand"))
	assert.True(t, errx.IsType(err, errx.TypeNotFound))
}

func TestSweeperRemovesOrphans(t *testing.T) {
	svc, store, dir := setup(t)
	ctx := context.Background()
	cand := candidate("cand")

	pinned, err := svc.Upload(ctx, cand, "a.pdf", []byte("a"))
	require.NoError(t, err)
	require.NoError(t, store.Interviews().Create(ctx, interview.NewInterview(1, "mgr", "cand", pinned.ID, time.Now())))
	_, err = svc.Upload(ctx, cand, "b.pdf", []byte("b"))
	require.NoError(t, err)

	files, err := fsxlocal.NewLocalFileSystem(dir)
	require.NoError(t, err)
	sweeper := NewSweeper(store.Resumes(), files, "media", time.Hour)

	removed, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed, "pinned and active resumes are never swept")

	// once the only interview moves on to another resume, the old one is orphaned
	i, err := store.Interviews().FindByID(ctx, 1)
	require.NoError(t, err)
	i.ResumeID = 999
	require.NoError(t, store.Interviews().Update(ctx, *i))

	removed, err = sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	_, err = os.Stat(blobPath(dir, pinned.URL))
	assert.True(t, os.IsNotExist(err))
}
