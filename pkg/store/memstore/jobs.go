package memstore

import (
	"cmp"
	"context"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/mlinyun/Peekpa/pkg/iam/scopes"
	"github.com/mlinyun/Peekpa/pkg/kernel"
	"github.com/mlinyun/Peekpa/pkg/recruit/interview"
	"github.com/mlinyun/Peekpa/pkg/recruit/job"
)

type JobRepository struct {
	s *Store
}

var _ job.JobRepository = (*JobRepository)(nil)

func (r *JobRepository) Create(ctx context.Context, j *job.Job) error {
	return r.s.write(ctx, func(t *tables) error {
		j.ID = kernel.JobID(t.next("jobs"))
		t.jobs[j.ID] = copyJob(*j)
		return nil
	})
}

func (r *JobRepository) Update(ctx context.Context, j job.Job) error {
	return r.s.write(ctx, func(t *tables) error {
		if _, ok := t.jobs[j.ID]; !ok {
			return job.ErrJobNotFound().WithDetail("job_id", j.ID.String())
		}
		t.jobs[j.ID] = copyJob(j)
		return nil
	})
}

func (r *JobRepository) FindByID(ctx context.Context, id kernel.JobID) (*job.Job, error) {
	var out *job.Job
	err := r.s.read(ctx, func(t *tables) error {
		j, ok := t.jobs[id]
		if !ok {
			return job.ErrJobNotFound().WithDetail("job_id", id.String())
		}
		c := copyJob(j)
		out = &c
		return nil
	})
	return out, err
}

// FindByIDForUpdate needs no row lock: transactions are already serialized
func (r *JobRepository) FindByIDForUpdate(ctx context.Context, id kernel.JobID) (*job.Job, error) {
	return r.FindByID(ctx, id)
}

func (r *JobRepository) CreatePublishJob(ctx context.Context, p *job.PublishJob) error {
	return r.s.write(ctx, func(t *tables) error {
		if _, ok := t.jobs[p.JobID]; !ok {
			return job.ErrJobNotFound().WithDetail("job_id", p.JobID.String())
		}
		p.ID = t.next("publish_jobs")
		t.publishJobs[p.ID] = *p
		return nil
	})
}

func (r *JobRepository) FindPublisher(ctx context.Context, jobID kernel.JobID) (kernel.UserID, error) {
	var out kernel.UserID
	err := r.s.read(ctx, func(t *tables) error {
		var first *job.PublishJob
		for _, p := range t.publishJobs {
			if p.JobID == jobID && (first == nil || p.ID < first.ID) {
				p := p
				first = &p
			}
		}
		if first == nil {
			return job.ErrJobNotFound().WithDetail("job_id", jobID.String())
		}
		out = first.UserID
		return nil
	})
	return out, err
}

func (r *JobRepository) AddResume(ctx context.Context, jobID kernel.JobID, resumeID kernel.ResumeID) error {
	return r.s.write(ctx, func(t *tables) error {
		set, ok := t.jobResumes[jobID]
		if !ok {
			set = make(map[kernel.ResumeID]struct{})
			t.jobResumes[jobID] = set
		}
		set[resumeID] = struct{}{}
		return nil
	})
}

func (r *JobRepository) FindScoped(ctx context.Context, id kernel.JobID, own scopes.Ownership) (*job.Summary, error) {
	var out *job.Summary
	err := r.s.read(ctx, func(t *tables) error {
		j, ok := t.jobs[id]
		if !ok || !t.jobAdmitted(j, own) {
			return job.ErrJobNotFound().WithDetail("job_id", id.String())
		}
		s := t.jobSummary(j)
		out = &s
		return nil
	})
	return out, err
}

func (r *JobRepository) ListScoped(ctx context.Context, own scopes.Ownership, query string, page kernel.Page) ([]job.Summary, int, error) {
	q := strings.ToLower(query)
	rows := r.collect(ctx, func(t *tables, j job.Job) bool {
		return t.jobAdmitted(j, own) && (q == "" || containsFold(q, j.Title))
	})
	slices.SortFunc(rows, func(a, b job.Summary) int {
		return cmp.Or(b.PublishTime.Compare(a.PublishTime), cmp.Compare(b.ID, a.ID))
	})
	start, end := page.Slice(len(rows))
	return rows[start:end], len(rows), nil
}

func (r *JobRepository) ListNamesScoped(ctx context.Context, own scopes.Ownership) ([]job.NameDTO, error) {
	rows := r.collect(ctx, func(t *tables, j job.Job) bool { return t.jobAdmitted(j, own) })
	slices.SortFunc(rows, func(a, b job.Summary) int { return cmp.Compare(a.ID, b.ID) })

	out := make([]job.NameDTO, 0, len(rows))
	for _, s := range rows {
		out = append(out, job.NameDTO{ID: s.ID, Title: s.Title})
	}
	return out, nil
}

func (r *JobRepository) FindPublished(ctx context.Context, id kernel.JobID) (*job.Summary, error) {
	var out *job.Summary
	err := r.s.read(ctx, func(t *tables) error {
		j, ok := t.jobs[id]
		if !ok || !j.IsPublished() {
			return job.ErrJobNotFound().WithDetail("job_id", id.String())
		}
		s := t.jobSummary(j)
		out = &s
		return nil
	})
	return out, err
}

func (r *JobRepository) ListPublished(ctx context.Context, filter job.PublicFilter) ([]job.Summary, int, error) {
	q := strings.ToLower(filter.Query)
	rows := r.collect(ctx, func(t *tables, j job.Job) bool {
		if !j.IsPublished() {
			return false
		}
		if filter.Education != "" && j.Education != filter.Education {
			return false
		}
		if filter.Experience != "" && j.Experience != filter.Experience {
			return false
		}
		if q == "" {
			return true
		}
		companyName := t.companies[j.Company()].Name
		return containsFold(q, j.Title, j.City, j.Location, companyName)
	})

	slices.SortFunc(rows, func(a, b job.Summary) int {
		if filter.Newest {
			return cmp.Or(b.PublishTime.Compare(a.PublishTime), cmp.Compare(b.ID, a.ID))
		}
		return cmp.Or(cmp.Compare(a.Title, b.Title), cmp.Compare(a.ID, b.ID))
	})
	start, end := filter.Page.Slice(len(rows))
	return rows[start:end], len(rows), nil
}

func (r *JobRepository) ListPublishedByCompany(ctx context.Context, companyID kernel.CompanyID) ([]job.Summary, error) {
	rows := r.collect(ctx, func(t *tables, j job.Job) bool {
		return j.IsPublished() && j.Company() == companyID
	})
	slices.SortFunc(rows, func(a, b job.Summary) int { return cmp.Compare(a.ID, b.ID) })
	return rows, nil
}

func (r *JobRepository) RandomPublished(ctx context.Context, n int) ([]job.Summary, error) {
	rows := r.collect(ctx, func(_ *tables, j job.Job) bool { return j.IsPublished() })
	rand.Shuffle(len(rows), func(i, k int) { rows[i], rows[k] = rows[k], rows[i] })
	return rows[:window(len(rows), n)], nil
}

func (r *JobRepository) NewestPublished(ctx context.Context, n int) ([]job.Summary, error) {
	rows := r.collect(ctx, func(_ *tables, j job.Job) bool { return j.IsPublished() })
	slices.SortFunc(rows, func(a, b job.Summary) int {
		return cmp.Or(b.PublishTime.Compare(a.PublishTime), cmp.Compare(b.ID, a.ID))
	})
	return rows[:window(len(rows), n)], nil
}

func (r *JobRepository) collect(ctx context.Context, keep func(t *tables, j job.Job) bool) []job.Summary {
	var rows []job.Summary
	_ = r.s.read(ctx, func(t *tables) error {
		for _, j := range t.jobs {
			if keep(t, j) {
				rows = append(rows, t.jobSummary(j))
			}
		}
		return nil
	})
	return rows
}

// jobAdmitted applies the company predicate on the job and the owner
// predicate on its PublishJob rows
func (t *tables) jobAdmitted(j job.Job, own scopes.Ownership) bool {
	if !own.AdmitsCompany(j.Company()) {
		return false
	}
	if own.OwnerID == nil {
		return true
	}
	for _, p := range t.publishJobs {
		if p.JobID == j.ID && p.UserID == *own.OwnerID {
			return true
		}
	}
	return false
}

func (t *tables) jobSummary(j job.Job) job.Summary {
	s := job.Summary{Job: copyJob(j)}
	if c, ok := t.companies[j.Company()]; ok {
		s.CompanyName = c.Name
		s.CompanyTags = c.Tags
		s.CompanyAvatar = c.Avatar
		s.CompanySize = c.Size
		s.CompanyWebsite = c.Website
	}
	for _, i := range t.interviews {
		if i.JobID != j.ID {
			continue
		}
		s.Interviews++
		if i.Status == interview.StatusPassed {
			s.PassNumber++
		}
	}
	s.Resumes = len(t.jobResumes[j.ID])
	return s
}
