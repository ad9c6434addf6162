package dashboardinfra

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mlinyun/Peekpa/pkg/dbx"
	"github.com/mlinyun/Peekpa/pkg/errx"
	"github.com/mlinyun/Peekpa/pkg/kernel"
	"github.com/mlinyun/Peekpa/pkg/recruit/dashboard"
)

// counters se calcula en una sola consulta; $1 company, $2/$3 day bounds
const countersQuery = `
	SELECT
		(SELECT COUNT(*) FROM jobs WHERE company_id = $1) AS jobs_total,
		(SELECT COUNT(*) FROM jobs WHERE company_id = $1 AND status = 0) AS jobs_open,
		(SELECT COUNT(*) FROM jobs WHERE company_id = $1 AND status = 2) AS jobs_finish,
		(SELECT COUNT(*) FROM jobs WHERE company_id = $1 AND status = 1) AS jobs_close,
		(SELECT COALESCE(SUM(hire_number), 0) FROM jobs WHERE company_id = $1) AS hired_number,
		(SELECT COUNT(*) FROM interviews i JOIN jobs j ON j.id = i.job_id
			WHERE j.company_id = $1) AS resumes,
		(SELECT COUNT(*) FROM interviews i JOIN jobs j ON j.id = i.job_id
			WHERE j.company_id = $1 AND i.status BETWEEN 0 AND 3) AS interviewing,
		(SELECT COUNT(*) FROM interviews i JOIN jobs j ON j.id = i.job_id
			WHERE j.company_id = $1 AND i.status = 4) AS pass_number,
		(SELECT COUNT(*) FROM interviews i JOIN jobs j ON j.id = i.job_id
			WHERE j.company_id = $1 AND i.publish_time >= $2 AND i.publish_time < $3) AS resumes_new,
		(SELECT COUNT(*) FROM invitations v JOIN interviews i ON i.id = v.interview_id
			JOIN jobs j ON j.id = i.job_id WHERE j.company_id = $1) AS invitation_number,
		(SELECT COUNT(*) FROM users
			WHERE is_active AND details @> jsonb_build_object('company_id', $1::bigint)) AS users_number`

type counters struct {
	JobsTotal        int `db:"jobs_total"`
	JobsOpen         int `db:"jobs_open"`
	JobsFinish       int `db:"jobs_finish"`
	JobsClose        int `db:"jobs_close"`
	HiredNumber      int `db:"hired_number"`
	Resumes          int `db:"resumes"`
	Interviewing     int `db:"interviewing"`
	PassNumber       int `db:"pass_number"`
	ResumesNew       int `db:"resumes_new"`
	InvitationNumber int `db:"invitation_number"`
	UsersNumber      int `db:"users_number"`
}

// PostgresDashboardRepository computes the company overview in SQL
type PostgresDashboardRepository struct {
	db *sqlx.DB
}

func NewPostgresDashboardRepository(db *sqlx.DB) *PostgresDashboardRepository {
	return &PostgresDashboardRepository{db: db}
}

var _ dashboard.Repository = (*PostgresDashboardRepository)(nil)

func (r *PostgresDashboardRepository) Summary(ctx context.Context, companyID kernel.CompanyID, day time.Time) (*dashboard.Dashboard, error) {
	d := &dashboard.Dashboard{
		NewJobs:       []dashboard.RecentItem{},
		NewInterviews: []dashboard.RecentItem{},
	}
	if !companyID.Valid() {
		return d, nil
	}

	y, m, dd := day.Date()
	start := time.Date(y, m, dd, 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	conn := dbx.Conn(ctx, r.db)
	var c counters
	if err := conn.GetContext(ctx, &c, countersQuery, int64(companyID), start, end); err != nil {
		return nil, errx.Wrap(err, "failed to compute dashboard", errx.TypeInternal)
	}
	*d = dashboard.Dashboard{
		JobsTotal:        c.JobsTotal,
		JobsOpen:         c.JobsOpen,
		JobsFinish:       c.JobsFinish,
		JobsClose:        c.JobsClose,
		Interviewing:     c.Interviewing,
		Resumes:          c.Resumes,
		InvitationNumber: c.InvitationNumber,
		ResumesNew:       c.ResumesNew,
		UsersNumber:      c.UsersNumber,
		HiredNumber:      c.HiredNumber,
		PassNumber:       c.PassNumber,
		NewJobs:          d.NewJobs,
		NewInterviews:    d.NewInterviews,
	}

	newJobs := `
		SELECT id, title, publish_time FROM jobs
		WHERE company_id = $1 AND status = 0
		ORDER BY publish_time DESC, id DESC LIMIT $2`
	if err := conn.SelectContext(ctx, &d.NewJobs, newJobs, int64(companyID), dashboard.RecentLimit); err != nil {
		return nil, errx.Wrap(err, "failed to list new jobs", errx.TypeInternal)
	}

	newInterviews := `
		SELECT j.id, j.title, i.publish_time FROM interviews i
		JOIN jobs j ON j.id = i.job_id
		WHERE j.company_id = $1
		ORDER BY i.publish_time DESC, i.id DESC LIMIT $2`
	if err := conn.SelectContext(ctx, &d.NewInterviews, newInterviews, int64(companyID), dashboard.RecentLimit); err != nil {
		return nil, errx.Wrap(err, "failed to list new interviews", errx.TypeInternal)
	}
	return d, nil
}
