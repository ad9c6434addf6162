package memstore

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/mlinyun/Peekpa/pkg/kernel"
	"github.com/mlinyun/Peekpa/pkg/recruit/dashboard"
	"github.com/mlinyun/Peekpa/pkg/recruit/interview"
	"github.com/mlinyun/Peekpa/pkg/recruit/job"
)

type DashboardRepository struct {
	s *Store
}

var _ dashboard.Repository = (*DashboardRepository)(nil)

func (r *DashboardRepository) Summary(ctx context.Context, companyID kernel.CompanyID, day time.Time) (*dashboard.Dashboard, error) {
	d := &dashboard.Dashboard{
		NewJobs:       []dashboard.RecentItem{},
		NewInterviews: []dashboard.RecentItem{},
	}
	y, m, dd := day.Date()

	_ = r.s.read(ctx, func(t *tables) error {
		if !companyID.Valid() {
			return nil
		}

		var published []job.Job
		for _, j := range t.jobs {
			if j.Company() != companyID {
				continue
			}
			d.JobsTotal++
			d.HiredNumber += j.HireNumber
			switch j.Status {
			case job.StatusPublished:
				d.JobsOpen++
				published = append(published, j)
			case job.StatusFinished:
				d.JobsFinish++
			case job.StatusClosed:
				d.JobsClose++
			}
		}
		slices.SortFunc(published, func(a, b job.Job) int {
			return cmp.Or(b.PublishTime.Compare(a.PublishTime), cmp.Compare(b.ID, a.ID))
		})
		for _, j := range published[:window(len(published), dashboard.RecentLimit)] {
			d.NewJobs = append(d.NewJobs, dashboard.RecentItem{ID: j.ID, Title: j.Title, PublishTime: j.PublishTime})
		}

		var recent []interview.Interview
		for _, i := range t.interviews {
			if j, ok := t.jobs[i.JobID]; !ok || j.Company() != companyID {
				continue
			}
			recent = append(recent, i)
			d.Resumes++
			if i.Status.IsInterviewing() {
				d.Interviewing++
			}
			if i.Status == interview.StatusPassed {
				d.PassNumber++
			}
			if iy, im, id := i.PublishTime.In(day.Location()).Date(); iy == y && im == m && id == dd {
				d.ResumesNew++
			}
			for _, inv := range t.invitations {
				if inv.InterviewID == i.ID {
					d.InvitationNumber++
				}
			}
		}
		slices.SortFunc(recent, func(a, b interview.Interview) int {
			return cmp.Or(b.PublishTime.Compare(a.PublishTime), cmp.Compare(b.ID, a.ID))
		})
		for _, i := range recent[:window(len(recent), dashboard.RecentLimit)] {
			d.NewInterviews = append(d.NewInterviews, dashboard.RecentItem{
				ID:          i.JobID,
				Title:       t.jobs[i.JobID].Title,
				PublishTime: i.PublishTime,
			})
		}

		for _, u := range t.users {
			if u.IsActive && inCompany(u, companyID) {
				d.UsersNumber++
			}
		}
		return nil
	})
	return d, nil
}
