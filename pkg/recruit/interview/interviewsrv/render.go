package interviewsrv

import (
	"context"

	"github.com/mlinyun/Peekpa/pkg/errx"
	"github.com/mlinyun/Peekpa/pkg/iam/user"
	"github.com/mlinyun/Peekpa/pkg/kernel"
	"github.com/mlinyun/Peekpa/pkg/recruit/interview"
	"github.com/mlinyun/Peekpa/pkg/recruit/invitation"
)

// renderer builds interview DTOs, memoizing the job and user lookups of a
// single request
type renderer struct {
	s     *InterviewService
	jobs  map[kernel.JobID]interview.JobRefDTO
	users map[kernel.UserID]*user.User
}

func newRenderer(s *InterviewService) *renderer {
	return &renderer{
		s:     s,
		jobs:  make(map[kernel.JobID]interview.JobRefDTO),
		users: make(map[kernel.UserID]*user.User),
	}
}

func (r *renderer) render(ctx context.Context, i *interview.Interview) (interview.DTO, error) {
	dto := interview.DTO{
		ID:          i.ID,
		Status:      i.Status,
		Feedback:    i.Feedback,
		PublishTime: i.PublishTime,
	}
	if dto.Feedback == nil {
		dto.Feedback = interview.Feedback{}
	}

	jobRef, err := r.job(ctx, i.JobID)
	if err != nil {
		return dto, err
	}
	dto.Job = jobRef

	if u, err := r.user(ctx, i.InterviewerID); err != nil {
		return dto, err
	} else if u != nil {
		dto.Interviewer = u.Name()
	}

	if u, err := r.user(ctx, i.CandidateID); err != nil {
		return dto, err
	} else if u != nil {
		dto.Candidate = u.ToCandidateDTO()
	} else {
		dto.Candidate = user.CandidateDTO{ID: i.CandidateID}
	}

	res, err := r.s.resumeRepo.FindByID(ctx, i.ResumeID)
	switch {
	case err == nil:
		dto.Resume = res.ToRefDTO()
	case !errx.IsType(err, errx.TypeNotFound):
		return dto, errx.Wrap(err, "failed to load resume", errx.TypeInternal)
	}

	invs, err := r.s.invitationRepo.ListByInterview(ctx, i.ID)
	if err != nil {
		return dto, errx.Wrap(err, "failed to load invitations", errx.TypeInternal)
	}
	if current := invitation.Current(invs, i.Status); current != nil {
		dto.Invitation = current.ToRef()
	}
	return dto, nil
}

func (r *renderer) job(ctx context.Context, id kernel.JobID) (interview.JobRefDTO, error) {
	if ref, ok := r.jobs[id]; ok {
		return ref, nil
	}
	j, err := r.s.jobRepo.FindByID(ctx, id)
	if err != nil {
		return interview.JobRefDTO{}, errx.Wrap(err, "failed to load job", errx.TypeInternal)
	}
	passed, err := r.s.interviewRepo.CountByJobAndStatus(ctx, id, interview.StatusPassed)
	if err != nil {
		return interview.JobRefDTO{}, errx.Wrap(err, "failed to count passed interviews", errx.TypeInternal)
	}
	ref := interview.JobRefDTO{ID: j.ID, PassNumber: passed, HireNumber: j.HireNumber, Title: j.Title}
	r.jobs[id] = ref
	return ref, nil
}

// user returns nil for accounts that no longer exist
func (r *renderer) user(ctx context.Context, id kernel.UserID) (*user.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	u, err := r.s.userRepo.FindByID(ctx, id)
	if err != nil {
		if !errx.IsType(err, errx.TypeNotFound) {
			return nil, errx.Wrap(err, "failed to load user", errx.TypeInternal)
		}
		u = nil
	}
	r.users[id] = u
	return u, nil
}
