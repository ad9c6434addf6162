package invitationsrv

import (
	"context"
	"time"

	"github.com/mlinyun/Peekpa/pkg/errx"
	"github.com/mlinyun/Peekpa/pkg/events"
	"github.com/mlinyun/Peekpa/pkg/iam/scopes"
	"github.com/mlinyun/Peekpa/pkg/iam/user"
	"github.com/mlinyun/Peekpa/pkg/kernel"
	"github.com/mlinyun/Peekpa/pkg/logx"
	"github.com/mlinyun/Peekpa/pkg/recruit/interview"
	"github.com/mlinyun/Peekpa/pkg/recruit/invitation"
	"github.com/mlinyun/Peekpa/pkg/recruit/job"
)

// InvitationService emite convocatorias y recoge las respuestas
type InvitationService struct {
	invitationRepo invitation.InvitationRepository
	interviewRepo  interview.InterviewRepository
	jobRepo        job.JobRepository
	userRepo       user.UserRepository
	publisher      events.Publisher
	duePeriod      time.Duration
	now            kernel.Clock
}

func NewInvitationService(
	invitationRepo invitation.InvitationRepository,
	interviewRepo interview.InterviewRepository,
	jobRepo job.JobRepository,
	userRepo user.UserRepository,
	publisher events.Publisher,
	duePeriod time.Duration,
) *InvitationService {
	if duePeriod <= 0 {
		duePeriod = invitation.DefaultDuePeriod
	}
	return &InvitationService{
		invitationRepo: invitationRepo,
		interviewRepo:  interviewRepo,
		jobRepo:        jobRepo,
		userRepo:       userRepo,
		publisher:      publisher,
		duePeriod:      duePeriod,
		now:            kernel.SystemClock,
	}
}

func (s *InvitationService) WithClock(c kernel.Clock) *InvitationService {
	s.now = c
	return s
}

// ============================================================================
// Management
// ============================================================================

// Create issues an invitation for one interview of a company job. Any staff
// of the company may invite; the caller is recorded as interviewer.
func (s *InvitationService) Create(ctx context.Context, scope scopes.Scope, jobID kernel.JobID, interviewID kernel.InterviewID, req invitation.CreateInvitationRequest) (*invitation.DTO, error) {
	if err := scope.RequireStaff(); err != nil {
		return nil, err
	}
	if req.UserUID.IsEmpty() {
		return nil, invitation.ErrMissingCandidate()
	}
	if req.Status < 0 {
		return nil, interview.ErrInvalidStatus().WithDetail("status", int(req.Status))
	}

	if _, err := s.interviewRepo.FindScoped(ctx, jobID, interviewID, scope.CompanyOnly()); err != nil {
		return nil, err
	}
	candidate, err := s.userRepo.FindByID(ctx, req.UserUID)
	if err != nil {
		return nil, err
	}

	inv := invitation.New(interviewID, req.Status, req.Message, scope.UserID, candidate.ID, s.now(), s.duePeriod)
	if err := s.invitationRepo.Create(ctx, inv); err != nil {
		return nil, errx.Wrap(err, "failed to create invitation", errx.TypeInternal)
	}

	logx.WithFields(logx.Fields{
		"invitation_id": inv.ID,
		"interview_id":  interviewID,
		"candidate_id":  candidate.ID,
	}).Info("invitation issued")

	events.Emit(ctx, s.publisher, events.New(events.InvitationCreated, map[string]any{
		"invitation_id": inv.ID,
		"interview_id":  interviewID,
		"candidate_id":  candidate.ID,
		"due_time":      inv.DueTime,
	}))
	return s.render(ctx, inv)
}

// Get returns an invitation of an interview the company can see
func (s *InvitationService) Get(ctx context.Context, scope scopes.Scope, jobID kernel.JobID, interviewID kernel.InterviewID, id kernel.InvitationID) (*invitation.DTO, error) {
	inv, err := s.findManaged(ctx, scope, jobID, interviewID, id)
	if err != nil {
		return nil, err
	}
	return s.render(ctx, inv)
}

// Update merges the staff side edit. due_time is never moved.
func (s *InvitationService) Update(ctx context.Context, scope scopes.Scope, jobID kernel.JobID, interviewID kernel.InterviewID, id kernel.InvitationID, req invitation.UpdateInvitationRequest) (*invitation.DTO, error) {
	inv, err := s.findManaged(ctx, scope, jobID, interviewID, id)
	if err != nil {
		return nil, err
	}
	if err := inv.Apply(req); err != nil {
		return nil, err
	}
	if err := s.save(ctx, inv); err != nil {
		return nil, err
	}
	return s.render(ctx, inv)
}

func (s *InvitationService) findManaged(ctx context.Context, scope scopes.Scope, jobID kernel.JobID, interviewID kernel.InterviewID, id kernel.InvitationID) (*invitation.Invitation, error) {
	if err := scope.RequireStaff(); err != nil {
		return nil, err
	}
	if _, err := s.interviewRepo.FindScoped(ctx, jobID, interviewID, scope.CompanyOnly()); err != nil {
		return nil, err
	}
	return s.invitationRepo.FindForInterview(ctx, id, interviewID)
}

// ============================================================================
// Candidate
// ============================================================================

// GetForCandidate returns an invitation addressed to the scope's user
func (s *InvitationService) GetForCandidate(ctx context.Context, scope scopes.Scope, id kernel.InvitationID) (*invitation.DTO, error) {
	if err := scope.RequireAuthenticated(); err != nil {
		return nil, err
	}
	inv, err := s.invitationRepo.FindForCandidate(ctx, id, scope.UserID)
	if err != nil {
		return nil, err
	}
	return s.render(ctx, inv)
}

// Respond records the candidate answer; only the addressee can respond
func (s *InvitationService) Respond(ctx context.Context, scope scopes.Scope, id kernel.InvitationID, req invitation.RespondRequest) (*invitation.DTO, error) {
	if err := scope.RequireAuthenticated(); err != nil {
		return nil, err
	}
	inv, err := s.invitationRepo.FindForCandidate(ctx, id, scope.UserID)
	if err != nil {
		return nil, err
	}
	if req.Response == nil {
		return nil, invitation.ErrInvalidResponse()
	}
	if err := inv.Respond(*req.Response); err != nil {
		return nil, err
	}
	if err := s.save(ctx, inv); err != nil {
		return nil, err
	}

	events.Emit(ctx, s.publisher, events.New(events.InvitationResponded, map[string]any{
		"invitation_id": inv.ID,
		"interview_id":  inv.InterviewID,
		"response":      inv.Response,
	}))
	return s.render(ctx, inv)
}

// save refreshes update_time and persists
func (s *InvitationService) save(ctx context.Context, inv *invitation.Invitation) error {
	inv.Touch(s.now())
	if err := s.invitationRepo.Update(ctx, *inv); err != nil {
		return errx.Wrap(err, "failed to update invitation", errx.TypeInternal)
	}
	return nil
}

func (s *InvitationService) render(ctx context.Context, inv *invitation.Invitation) (*invitation.DTO, error) {
	dto := &invitation.DTO{
		ID:          inv.ID,
		Message:     inv.Message,
		Status:      inv.Status,
		Response:    inv.Response,
		Candidate:   user.CandidateDTO{ID: inv.CandidateID},
		PublishTime: inv.PublishTime,
		DueTime:     inv.DueTime,
		UpdateTime:  inv.UpdateTime,
	}

	candidate, err := s.userRepo.FindByID(ctx, inv.CandidateID)
	switch {
	case err == nil:
		dto.Candidate = candidate.ToCandidateDTO()
	case !errx.IsType(err, errx.TypeNotFound):
		return nil, errx.Wrap(err, "failed to load candidate", errx.TypeInternal)
	}

	iv, err := s.interviewRepo.FindByID(ctx, inv.InterviewID)
	if err != nil {
		return nil, errx.Wrap(err, "failed to load interview", errx.TypeInternal)
	}
	j, err := s.jobRepo.FindByID(ctx, iv.JobID)
	if err != nil {
		return nil, errx.Wrap(err, "failed to load job", errx.TypeInternal)
	}
	dto.Job = invitation.JobRefDTO{ID: j.ID, Title: j.Title}
	return dto, nil
}
