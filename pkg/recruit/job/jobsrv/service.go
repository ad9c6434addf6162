package jobsrv

import (
	"context"
	"errors"

	"github.com/mlinyun/Peekpa/pkg/dbx"
	"github.com/mlinyun/Peekpa/pkg/errx"
	"github.com/mlinyun/Peekpa/pkg/events"
	"github.com/mlinyun/Peekpa/pkg/iam/company"
	"github.com/mlinyun/Peekpa/pkg/iam/scopes"
	"github.com/mlinyun/Peekpa/pkg/kernel"
	"github.com/mlinyun/Peekpa/pkg/logx"
	"github.com/mlinyun/Peekpa/pkg/recruit/interview"
	"github.com/mlinyun/Peekpa/pkg/recruit/job"
	"github.com/mlinyun/Peekpa/pkg/recruit/resume"
)

// JobService gestiona el ciclo de vida de las ofertas
type JobService struct {
	jobRepo       job.JobRepository
	interviewRepo interview.InterviewRepository
	resumeRepo    resume.ResumeRepository
	tx            dbx.TxManager
	publisher     events.Publisher
	now           kernel.Clock
}

func NewJobService(
	jobRepo job.JobRepository,
	interviewRepo interview.InterviewRepository,
	resumeRepo resume.ResumeRepository,
	tx dbx.TxManager,
	publisher events.Publisher,
) *JobService {
	return &JobService{
		jobRepo:       jobRepo,
		interviewRepo: interviewRepo,
		resumeRepo:    resumeRepo,
		tx:            tx,
		publisher:     publisher,
		now:           kernel.SystemClock,
	}
}

// WithClock replaces the clock used for publish times
func (s *JobService) WithClock(c kernel.Clock) *JobService {
	s.now = c
	return s
}

// ============================================================================
// Management
// ============================================================================

// Create publishes a job for the scope's company. The job row, its company
// and the PublishJob binding are written in one transaction.
func (s *JobService) Create(ctx context.Context, scope scopes.Scope, req job.CreateJobRequest) (*job.Job, error) {
	if err := scope.RequireStaff(); err != nil {
		return nil, err
	}
	if !scope.HasCompany() {
		return nil, company.ErrNoCompany()
	}

	j, err := job.NewJob(req, s.now())
	if err != nil {
		return nil, err
	}
	j.AttachCompany(scope.CompanyID)

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.jobRepo.Create(ctx, j); err != nil {
			return err
		}
		return s.jobRepo.CreatePublishJob(ctx, &job.PublishJob{UserID: scope.UserID, JobID: j.ID})
	})
	if err != nil {
		return nil, errx.Wrap(err, "failed to create job", errx.TypeInternal)
	}

	logx.WithFields(logx.Fields{
		"job_id":     j.ID,
		"company_id": scope.CompanyID,
		"user_id":    scope.UserID,
	}).Info("job published")

	events.Emit(ctx, s.publisher, events.New(events.JobCreated, map[string]any{
		"job_id":     j.ID,
		"company_id": scope.CompanyID,
		"user_id":    scope.UserID,
	}))
	return j, nil
}

// ListForScope lists the company jobs visible to the scope; non managers
// only see the jobs they published
func (s *JobService) ListForScope(ctx context.Context, scope scopes.Scope, query string, page kernel.Page) (*kernel.Paginated[job.ListDTO], error) {
	if err := scope.RequireStaff(); err != nil {
		return nil, err
	}
	rows, total, err := s.jobRepo.ListScoped(ctx, scope.Ownership(), query, page)
	if err != nil {
		return nil, errx.Wrap(err, "failed to list jobs", errx.TypeInternal)
	}
	return &kernel.Paginated[job.ListDTO]{Count: total, Results: toListDTOs(rows, true)}, nil
}

// Names lists {id, title} of the jobs visible to the scope
func (s *JobService) Names(ctx context.Context, scope scopes.Scope) ([]job.NameDTO, error) {
	if err := scope.RequireStaff(); err != nil {
		return nil, err
	}
	names, err := s.jobRepo.ListNamesScoped(ctx, scope.Ownership())
	if err != nil {
		return nil, errx.Wrap(err, "failed to list job names", errx.TypeInternal)
	}
	if names == nil {
		names = []job.NameDTO{}
	}
	return names, nil
}

// GetForScope returns a job of the scope; anything else is NotFound
func (s *JobService) GetForScope(ctx context.Context, scope scopes.Scope, id kernel.JobID) (*job.DetailDTO, error) {
	if err := scope.RequireStaff(); err != nil {
		return nil, err
	}
	summary, err := s.jobRepo.FindScoped(ctx, id, scope.Ownership())
	if err != nil {
		return nil, err
	}
	dto := summary.ToDetailDTO()
	return &dto, nil
}

// UpdateForScope applies a partial staff edit, status included
func (s *JobService) UpdateForScope(ctx context.Context, scope scopes.Scope, id kernel.JobID, req job.UpdateJobRequest) (*job.DetailDTO, error) {
	if err := scope.RequireStaff(); err != nil {
		return nil, err
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.jobRepo.FindScoped(ctx, id, scope.Ownership()); err != nil {
			return err
		}
		j, err := s.jobRepo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := j.Apply(req); err != nil {
			return err
		}
		return s.jobRepo.Update(ctx, *j)
	})
	if err != nil {
		return nil, errx.Wrap(err, "failed to update job", errx.TypeInternal)
	}
	return s.GetForScope(ctx, scope, id)
}

// ============================================================================
// Public
// ============================================================================

// ListPublished lists open jobs; staff scopes also see the hiring counters
func (s *JobService) ListPublished(ctx context.Context, scope scopes.Scope, filter job.PublicFilter) (*kernel.Paginated[job.ListDTO], error) {
	rows, total, err := s.jobRepo.ListPublished(ctx, filter)
	if err != nil {
		return nil, errx.Wrap(err, "failed to list jobs", errx.TypeInternal)
	}
	return &kernel.Paginated[job.ListDTO]{Count: total, Results: toListDTOs(rows, scope.IsStaff)}, nil
}

// GetPublished returns an open job. Candidates also learn whether they
// have a resume on file and whether they already applied.
func (s *JobService) GetPublished(ctx context.Context, scope scopes.Scope, id kernel.JobID) (*job.DetailDTO, error) {
	summary, err := s.jobRepo.FindPublished(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := summary.ToDetailDTO()

	if scope.IsCandidate() {
		if _, err := s.resumeRepo.FindActive(ctx, scope.UserID); err == nil {
			dto.HasResume = true
		} else if !isMissingResume(err) {
			return nil, errx.Wrap(err, "failed to load resume", errx.TypeInternal)
		}

		applied, err := s.interviewRepo.HasApplied(ctx, id, scope.UserID)
		if err != nil {
			return nil, errx.Wrap(err, "failed to check application", errx.TypeInternal)
		}
		dto.Applied = applied
	}
	return &dto, nil
}

func isMissingResume(err error) bool {
	return errors.Is(err, resume.ErrNoActiveResume()) || errx.IsType(err, errx.TypeNotFound)
}

// Random y Newest alimentan la portada
func (s *JobService) Random(ctx context.Context, scope scopes.Scope, n int) ([]job.ListDTO, error) {
	rows, err := s.jobRepo.RandomPublished(ctx, n)
	if err != nil {
		return nil, errx.Wrap(err, "failed to sample jobs", errx.TypeInternal)
	}
	return toListDTOs(rows, scope.IsStaff), nil
}

func (s *JobService) Newest(ctx context.Context, scope scopes.Scope, n int) ([]job.ListDTO, error) {
	rows, err := s.jobRepo.NewestPublished(ctx, n)
	if err != nil {
		return nil, errx.Wrap(err, "failed to list newest jobs", errx.TypeInternal)
	}
	return toListDTOs(rows, scope.IsStaff), nil
}

func toListDTOs(rows []job.Summary, staff bool) []job.ListDTO {
	out := make([]job.ListDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ToListDTO(staff))
	}
	return out
}
