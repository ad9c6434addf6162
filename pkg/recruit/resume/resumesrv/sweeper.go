package resumesrv

import (
	"context"
	"time"

	"github.com/mlinyun/Peekpa/pkg/fsx"
	"github.com/mlinyun/Peekpa/pkg/logx"
	"github.com/mlinyun/Peekpa/pkg/recruit/resume"
)

const sweepBatch = 100

// Sweeper limpia en background los CVs inactivos que ninguna entrevista usa
type Sweeper struct {
	resumeRepo  resume.ResumeRepository
	files       fsx.FileSystem
	mediaPrefix string
	interval    time.Duration
}

func NewSweeper(resumeRepo resume.ResumeRepository, files fsx.FileSystem, mediaPrefix string, interval time.Duration) *Sweeper {
	return &Sweeper{
		resumeRepo:  resumeRepo,
		files:       files,
		mediaPrefix: mediaPrefix,
		interval:    interval,
	}
}

// Start runs a sweep now and then every interval until ctx is done.
// A non positive interval disables the sweeper.
func (s *Sweeper) Start(ctx context.Context) {
	if s.interval <= 0 {
		logx.Info("resume sweeper disabled")
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.runSweep(ctx)

	for {
		select {
		case <-ctx.Done():
			logx.Info("resume sweeper stopped")
			return
		case <-ticker.C:
			s.runSweep(ctx)
		}
	}
}

func (s *Sweeper) runSweep(ctx context.Context) {
	removed, err := s.Sweep(ctx)
	if err != nil {
		logx.Errorf("resume sweep failed: %v", err)
		return
	}
	if removed > 0 {
		logx.Infof("resume sweep removed %d orphan resumes", removed)
	}
}

// Sweep deletes one batch of orphan resumes and their blobs
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	orphans, err := s.resumeRepo.ListOrphans(ctx, sweepBatch)
	if err != nil {
		return 0, err
	}
	if len(orphans) == 0 {
		return 0, nil
	}
	if err := s.resumeRepo.Delete(ctx, resumeIDs(orphans)); err != nil {
		return 0, err
	}
	for _, r := range orphans {
		name := fsx.PathFromURL(s.mediaPrefix, r.URL)
		if err := s.files.DeleteFile(ctx, name); err != nil {
			logx.WithFields(logx.Fields{"file": name, "error": err.Error()}).Warn("failed to delete resume blob")
		}
	}
	return len(orphans), nil
}
