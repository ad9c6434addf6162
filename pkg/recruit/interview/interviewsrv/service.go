package interviewsrv

import (
	"context"

	"github.com/mlinyun/Peekpa/pkg/dbx"
	"github.com/mlinyun/Peekpa/pkg/errx"
	"github.com/mlinyun/Peekpa/pkg/events"
	"github.com/mlinyun/Peekpa/pkg/iam/scopes"
	"github.com/mlinyun/Peekpa/pkg/iam/user"
	"github.com/mlinyun/Peekpa/pkg/kernel"
	"github.com/mlinyun/Peekpa/pkg/logx"
	"github.com/mlinyun/Peekpa/pkg/recruit/interview"
	"github.com/mlinyun/Peekpa/pkg/recruit/invitation"
	"github.com/mlinyun/Peekpa/pkg/recruit/job"
	"github.com/mlinyun/Peekpa/pkg/recruit/resume"
)

// InterviewService gestiona las candidaturas y su máquina de estados
type InterviewService struct {
	interviewRepo  interview.InterviewRepository
	jobRepo        job.JobRepository
	resumeRepo     resume.ResumeRepository
	userRepo       user.UserRepository
	invitationRepo invitation.InvitationRepository
	tx             dbx.TxManager
	publisher      events.Publisher
	now            kernel.Clock
}

func NewInterviewService(
	interviewRepo interview.InterviewRepository,
	jobRepo job.JobRepository,
	resumeRepo resume.ResumeRepository,
	userRepo user.UserRepository,
	invitationRepo invitation.InvitationRepository,
	tx dbx.TxManager,
	publisher events.Publisher,
) *InterviewService {
	return &InterviewService{
		interviewRepo:  interviewRepo,
		jobRepo:        jobRepo,
		resumeRepo:     resumeRepo,
		userRepo:       userRepo,
		invitationRepo: invitationRepo,
		tx:             tx,
		publisher:      publisher,
		now:            kernel.SystemClock,
	}
}

func (s *InterviewService) WithClock(c kernel.Clock) *InterviewService {
	s.now = c
	return s
}

// ============================================================================
// Candidate
// ============================================================================

// Apply opens an interview for the scope's candidate on a published job.
// The job publisher becomes the interviewer and the active resume is used.
// Applying twice is allowed.
func (s *InterviewService) Apply(ctx context.Context, scope scopes.Scope, jobID kernel.JobID) (*interview.Interview, error) {
	if err := scope.RequireAuthenticated(); err != nil {
		return nil, err
	}

	j, err := s.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !j.IsPublished() {
		return nil, job.ErrJobNotFound().WithDetail("job_id", jobID.String())
	}
	if scope.IsStaff {
		return nil, interview.ErrStaffCannotApply()
	}

	res, err := s.resumeRepo.FindActive(ctx, scope.UserID)
	if err != nil {
		return nil, err
	}

	var created *interview.Interview
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		poster, err := s.jobRepo.FindPublisher(ctx, jobID)
		if err != nil {
			return err
		}
		created = interview.NewInterview(jobID, poster, scope.UserID, res.ID, s.now())
		if err := s.interviewRepo.Create(ctx, created); err != nil {
			return err
		}
		return s.jobRepo.AddResume(ctx, jobID, res.ID)
	})
	if err != nil {
		return nil, errx.Wrap(err, "failed to apply to job", errx.TypeInternal)
	}

	logx.WithFields(logx.Fields{
		"job_id":       jobID,
		"interview_id": created.ID,
		"candidate_id": scope.UserID,
	}).Info("candidate applied")

	events.Emit(ctx, s.publisher, events.New(events.InterviewApplied, map[string]any{
		"job_id":         jobID,
		"interview_id":   created.ID,
		"candidate_id":   scope.UserID,
		"interviewer_id": created.InterviewerID,
	}))
	return created, nil
}

// ============================================================================
// Management
// ============================================================================

// List returns the interviews of one job, or of every company job when
// jobID is nil; non managers only see the ones they interview
func (s *InterviewService) List(ctx context.Context, scope scopes.Scope, jobID *kernel.JobID) ([]interview.DTO, error) {
	if err := scope.RequireStaff(); err != nil {
		return nil, err
	}
	rows, err := s.interviewRepo.ListScoped(ctx, interview.ListFilter{JobID: jobID, Own: scope.Ownership()})
	if err != nil {
		return nil, errx.Wrap(err, "failed to list interviews", errx.TypeInternal)
	}

	r := newRenderer(s)
	out := make([]interview.DTO, 0, len(rows))
	for _, i := range rows {
		dto, err := r.render(ctx, i)
		if err != nil {
			return nil, err
		}
		out = append(out, dto)
	}
	return out, nil
}

// Get returns one interview of the scope; anything else is NotFound
func (s *InterviewService) Get(ctx context.Context, scope scopes.Scope, jobID kernel.JobID, id kernel.InterviewID) (*interview.DTO, error) {
	if err := scope.RequireStaff(); err != nil {
		return nil, err
	}
	i, err := s.interviewRepo.FindScoped(ctx, jobID, id, scope.Ownership())
	if err != nil {
		return nil, err
	}
	dto, err := newRenderer(s).render(ctx, i)
	if err != nil {
		return nil, err
	}
	return &dto, nil
}

// Update merges status and feedback into an interview. Setting the passed
// status re-evaluates the hire quota of the job, which is locked for the
// rest of the transaction so concurrent passes are serialized.
func (s *InterviewService) Update(ctx context.Context, scope scopes.Scope, jobID kernel.JobID, id kernel.InterviewID, req interview.UpdateInterviewRequest) (*interview.DTO, error) {
	if err := scope.RequireStaff(); err != nil {
		return nil, err
	}

	var (
		updated  *interview.Interview
		finished bool
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		i, err := s.interviewRepo.FindScoped(ctx, jobID, id, scope.Ownership())
		if err != nil {
			return err
		}

		var j *job.Job
		if req.PassesCandidate() {
			if j, err = s.jobRepo.FindByIDForUpdate(ctx, i.JobID); err != nil {
				return err
			}
		}

		if err := i.Apply(req); err != nil {
			return err
		}
		if err := s.interviewRepo.Update(ctx, *i); err != nil {
			return err
		}
		updated = i

		if j == nil {
			return nil
		}
		hired, err := s.countHired(ctx, i.JobID)
		if err != nil {
			return err
		}
		finished = j.CloseIfQuotaMet(hired)
		return s.jobRepo.Update(ctx, *j)
	})
	if err != nil {
		return nil, errx.Wrap(err, "failed to update interview", errx.TypeInternal)
	}

	events.Emit(ctx, s.publisher, events.New(events.InterviewUpdated, map[string]any{
		"job_id":       updated.JobID,
		"interview_id": updated.ID,
		"status":       updated.Status,
	}))
	if finished {
		logx.WithFields(logx.Fields{"job_id": updated.JobID}).Info("job finished, hire quota met")
		events.Emit(ctx, s.publisher, events.New(events.JobFinished, map[string]any{
			"job_id": updated.JobID,
		}))
	}

	dto, err := newRenderer(s).render(ctx, updated)
	if err != nil {
		return nil, err
	}
	return &dto, nil
}

// countHired counts the other interviews of the job already counted toward
// the quota: finalized hires plus candidates passed before. It runs after
// the current interview was saved as passed, so that one is left out and
// re-applying the same pass never moves the count. When no other interview
// of the job is passed this is just the count of hired (status 8) rows, so
// the passed term only adds sequential passes toward hire_number. Dropping
// it would leave a job with hire_number > 1 open forever.
func (s *InterviewService) countHired(ctx context.Context, jobID kernel.JobID) (int, error) {
	hired, err := s.interviewRepo.CountByJobAndStatus(ctx, jobID, interview.StatusHired)
	if err != nil {
		return 0, err
	}
	passed, err := s.interviewRepo.CountByJobAndStatus(ctx, jobID, interview.StatusPassed)
	if err != nil {
		return 0, err
	}
	return hired + max(passed-1, 0), nil
}
