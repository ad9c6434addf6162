package memstore

import (
	"cmp"
	"context"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/mlinyun/Peekpa/pkg/iam/company"
	"github.com/mlinyun/Peekpa/pkg/kernel"
)

type CompanyRepository struct {
	s *Store
}

var _ company.CompanyRepository = (*CompanyRepository)(nil)

func (r *CompanyRepository) FindByID(ctx context.Context, id kernel.CompanyID) (*company.Company, error) {
	var out *company.Company
	err := r.s.read(ctx, func(t *tables) error {
		c, ok := t.companies[id]
		if !ok {
			return company.ErrCompanyNotFound().WithDetail("company_id", id.String())
		}
		out = &c
		return nil
	})
	return out, err
}

func (r *CompanyRepository) FindAll(ctx context.Context) ([]*company.Company, error) {
	var out []*company.Company
	_ = r.s.read(ctx, func(t *tables) error {
		for _, c := range t.companies {
			c := c
			out = append(out, &c)
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *company.Company) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (r *CompanyRepository) Create(ctx context.Context, c *company.Company) error {
	return r.s.write(ctx, func(t *tables) error {
		c.ID = kernel.CompanyID(t.next("companies"))
		t.companies[c.ID] = *c
		return nil
	})
}

func (r *CompanyRepository) Update(ctx context.Context, c company.Company) error {
	return r.s.write(ctx, func(t *tables) error {
		if _, ok := t.companies[c.ID]; !ok {
			return company.ErrCompanyNotFound().WithDetail("company_id", c.ID.String())
		}
		t.companies[c.ID] = c
		return nil
	})
}

func (r *CompanyRepository) List(ctx context.Context, filter company.ListFilter) ([]company.Summary, int, error) {
	var rows []company.Summary
	_ = r.s.read(ctx, func(t *tables) error {
		q, tag := strings.ToLower(filter.Query), strings.ToLower(filter.Tag)
		for _, c := range t.companies {
			if q != "" && !containsFold(q, c.Name) {
				continue
			}
			if tag != "" && !containsFold(tag, c.Tags) {
				continue
			}
			if filter.Size != "" && c.Size != filter.Size {
				continue
			}
			rows = append(rows, t.companySummary(c))
		}
		return nil
	})

	slices.SortFunc(rows, func(a, b company.Summary) int {
		if filter.OrderByJobs {
			if c := cmp.Compare(b.Jobs, a.Jobs); c != 0 {
				return c
			}
		}
		return cmp.Compare(a.ID, b.ID)
	})

	start, end := filter.Page.Slice(len(rows))
	return rows[start:end], len(rows), nil
}

func (r *CompanyRepository) TopByInterviews(ctx context.Context, n int) ([]company.Summary, error) {
	type ranked struct {
		company.Summary
		all int
	}
	var rows []ranked
	_ = r.s.read(ctx, func(t *tables) error {
		for _, c := range t.companies {
			all := 0
			for _, i := range t.interviews {
				if j, ok := t.jobs[i.JobID]; ok && j.Company() == c.ID {
					all++
				}
			}
			rows = append(rows, ranked{Summary: t.companySummary(c), all: all})
		}
		return nil
	})
	slices.SortFunc(rows, func(a, b ranked) int {
		return cmp.Or(cmp.Compare(b.all, a.all), cmp.Compare(a.ID, b.ID))
	})

	out := make([]company.Summary, 0, window(len(rows), n))
	for _, row := range rows[:window(len(rows), n)] {
		out = append(out, row.Summary)
	}
	return out, nil
}

func (r *CompanyRepository) Random(ctx context.Context, n int) ([]company.Summary, error) {
	var rows []company.Summary
	_ = r.s.read(ctx, func(t *tables) error {
		for _, c := range t.companies {
			rows = append(rows, t.companySummary(c))
		}
		return nil
	})
	rand.Shuffle(len(rows), func(i, j int) { rows[i], rows[j] = rows[j], rows[i] })
	return rows[:window(len(rows), n)], nil
}

// companySummary counts all company jobs and the interviews still in progress
func (t *tables) companySummary(c company.Company) company.Summary {
	s := company.Summary{Company: c}
	for _, j := range t.jobs {
		if j.Company() == c.ID {
			s.Jobs++
		}
	}
	for _, i := range t.interviews {
		j, ok := t.jobs[i.JobID]
		if ok && j.Company() == c.ID && i.Status.IsInterviewing() {
			s.Interviews++
		}
	}
	return s
}
