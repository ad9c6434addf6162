package memstore

import (
	"cmp"
	"context"
	"slices"

	"github.com/mlinyun/Peekpa/pkg/iam/scopes"
	"github.com/mlinyun/Peekpa/pkg/kernel"
	"github.com/mlinyun/Peekpa/pkg/recruit/interview"
)

type InterviewRepository struct {
	s *Store
}

var _ interview.InterviewRepository = (*InterviewRepository)(nil)

func (r *InterviewRepository) Create(ctx context.Context, i *interview.Interview) error {
	return r.s.write(ctx, func(t *tables) error {
		i.ID = kernel.InterviewID(t.next("interviews"))
		t.interviews[i.ID] = copyInterview(*i)
		return nil
	})
}

func (r *InterviewRepository) Update(ctx context.Context, i interview.Interview) error {
	return r.s.write(ctx, func(t *tables) error {
		if _, ok := t.interviews[i.ID]; !ok {
			return interview.ErrInterviewNotFound().WithDetail("interview_id", i.ID.String())
		}
		t.interviews[i.ID] = copyInterview(i)
		return nil
	})
}

func (r *InterviewRepository) FindByID(ctx context.Context, id kernel.InterviewID) (*interview.Interview, error) {
	var out *interview.Interview
	err := r.s.read(ctx, func(t *tables) error {
		i, ok := t.interviews[id]
		if !ok {
			return interview.ErrInterviewNotFound().WithDetail("interview_id", id.String())
		}
		c := copyInterview(i)
		out = &c
		return nil
	})
	return out, err
}

func (r *InterviewRepository) FindScoped(ctx context.Context, jobID kernel.JobID, id kernel.InterviewID, own scopes.Ownership) (*interview.Interview, error) {
	var out *interview.Interview
	err := r.s.read(ctx, func(t *tables) error {
		i, ok := t.interviews[id]
		if !ok || i.JobID != jobID || !t.interviewAdmitted(i, own) {
			return interview.ErrInterviewNotFound().WithDetail("interview_id", id.String())
		}
		c := copyInterview(i)
		out = &c
		return nil
	})
	return out, err
}

func (r *InterviewRepository) ListScoped(ctx context.Context, filter interview.ListFilter) ([]*interview.Interview, error) {
	var out []*interview.Interview
	_ = r.s.read(ctx, func(t *tables) error {
		for _, i := range t.interviews {
			if filter.JobID != nil && i.JobID != *filter.JobID {
				continue
			}
			if !t.interviewAdmitted(i, filter.Own) {
				continue
			}
			c := copyInterview(i)
			out = append(out, &c)
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *interview.Interview) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (r *InterviewRepository) CountByJobAndStatus(ctx context.Context, jobID kernel.JobID, status interview.Status) (int, error) {
	n := 0
	_ = r.s.read(ctx, func(t *tables) error {
		for _, i := range t.interviews {
			if i.JobID == jobID && i.Status == status {
				n++
			}
		}
		return nil
	})
	return n, nil
}

func (r *InterviewRepository) HasApplied(ctx context.Context, jobID kernel.JobID, candidateID kernel.UserID) (bool, error) {
	found := false
	_ = r.s.read(ctx, func(t *tables) error {
		for _, i := range t.interviews {
			if i.JobID == jobID && i.CandidateID == candidateID {
				found = true
				break
			}
		}
		return nil
	})
	return found, nil
}

// interviewAdmitted follows job -> PublishJob -> publisher company for the
// company predicate, and matches the interviewer for the owner predicate
func (t *tables) interviewAdmitted(i interview.Interview, own scopes.Ownership) bool {
	if own.OwnerID != nil && i.InterviewerID != *own.OwnerID {
		return false
	}
	return t.jobPublishedBy(i.JobID, own.CompanyID)
}

// jobPublishedBy reports whether some publisher of the job is staff of companyID
func (t *tables) jobPublishedBy(jobID kernel.JobID, companyID kernel.CompanyID) bool {
	if !companyID.Valid() {
		return false
	}
	for _, p := range t.publishJobs {
		if p.JobID != jobID {
			continue
		}
		if u, ok := t.users[p.UserID]; ok && inCompany(u, companyID) {
			return true
		}
	}
	return false
}
