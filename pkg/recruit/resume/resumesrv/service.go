package resumesrv

import (
	"context"

	"github.com/mlinyun/Peekpa/pkg/dbx"
	"github.com/mlinyun/Peekpa/pkg/errx"
	"github.com/mlinyun/Peekpa/pkg/fsx"
	"github.com/mlinyun/Peekpa/pkg/iam/scopes"
	"github.com/mlinyun/Peekpa/pkg/kernel"
	"github.com/mlinyun/Peekpa/pkg/logx"
	"github.com/mlinyun/Peekpa/pkg/recruit/resume"
)

const resumeDir = "resume"

// ResumeService gestiona los CVs de los candidatos
type ResumeService struct {
	resumeRepo  resume.ResumeRepository
	tx          dbx.TxManager
	files       fsx.FileSystem
	mediaPrefix string
}

func NewResumeService(resumeRepo resume.ResumeRepository, tx dbx.TxManager, files fsx.FileSystem, mediaPrefix string) *ResumeService {
	return &ResumeService{
		resumeRepo:  resumeRepo,
		tx:          tx,
		files:       files,
		mediaPrefix: mediaPrefix,
	}
}

// Upload stores a new resume and makes it the only active one. Resumes no
// interview references are deleted; the others are kept inactive.
func (s *ResumeService) Upload(ctx context.Context, scope scopes.Scope, filename string, data []byte) (*resume.Resume, error) {
	if err := scope.RequireAuthenticated(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, resume.ErrResumeMissing()
	}

	name := fsx.UniqueName(resumeDir, filename)
	if err := s.files.WriteFile(ctx, name, data); err != nil {
		return nil, errx.Wrap(err, "failed to store resume", errx.TypeInternal)
	}

	res := &resume.Resume{
		Name:     filename,
		UserID:   scope.UserID,
		URL:      fsx.PublicURL(s.mediaPrefix, name),
		IsActive: true,
	}

	var unused []*resume.Resume
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		unused, err = s.resumeRepo.ListUnused(ctx, scope.UserID)
		if err != nil {
			return err
		}
		if err := s.resumeRepo.Delete(ctx, resumeIDs(unused)); err != nil {
			return err
		}
		if err := s.resumeRepo.DeactivateAll(ctx, scope.UserID); err != nil {
			return err
		}
		return s.resumeRepo.Create(ctx, res)
	})
	if err != nil {
		s.removeBlob(ctx, name)
		return nil, errx.Wrap(err, "failed to save resume", errx.TypeInternal)
	}

	for _, r := range unused {
		s.removeBlob(ctx, fsx.PathFromURL(s.mediaPrefix, r.URL))
	}

	logx.WithFields(logx.Fields{
		"user_id":   scope.UserID,
		"resume_id": res.ID,
		"removed":   len(unused),
	}).Info("resume uploaded")
	return res, nil
}

// GetActive returns the active resume of the scope's user
func (s *ResumeService) GetActive(ctx context.Context, scope scopes.Scope) (*resume.Resume, error) {
	if err := scope.RequireAuthenticated(); err != nil {
		return nil, err
	}
	res, err := s.resumeRepo.FindActive(ctx, scope.UserID)
	if err != nil {
		if errx.IsType(err, errx.TypeBusiness) {
			return nil, resume.ErrResumeNotFound()
		}
		return nil, err
	}
	return res, nil
}

func (s *ResumeService) removeBlob(ctx context.Context, name string) {
	if err := s.files.DeleteFile(ctx, name); err != nil {
		logx.WithFields(logx.Fields{"file": name, "error": err.Error()}).Warn("failed to delete resume blob")
	}
}

func resumeIDs(rs []*resume.Resume) []kernel.ResumeID {
	ids := make([]kernel.ResumeID, 0, len(rs))
	for _, r := range rs {
		ids = append(ids, r.ID)
	}
	return ids
}
