package jobinfra

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/mlinyun/Peekpa/pkg/dbx"
	"github.com/mlinyun/Peekpa/pkg/errx"
	"github.com/mlinyun/Peekpa/pkg/iam/scopes"
	"github.com/mlinyun/Peekpa/pkg/kernel"
	"github.com/mlinyun/Peekpa/pkg/recruit/job"
)

const jobColumns = `j.id, j.title, j.status, j.city, j.location, j.salary_min, j.salary_max,
	j.salary_count, j.hire_number, j.experience, j.benefit, j.education, j.description,
	j.publish_time, j.company_id`

// summarySelect joins the company and counts interviews and resumes
const summarySelect = `
	SELECT ` + jobColumns + `,
		COALESCE(c.name, '') AS company_name,
		COALESCE(c.tags, '') AS company_tags,
		COALESCE(c.avatar, '') AS company_avatar,
		COALESCE(c.size, '') AS company_size,
		COALESCE(c.website, '') AS company_website,
		(SELECT COUNT(*) FROM interviews i WHERE i.job_id = j.id AND i.status = 4) AS pass_number,
		(SELECT COUNT(*) FROM interviews i WHERE i.job_id = j.id) AS interviews,
		(SELECT COUNT(*) FROM job_resumes jr WHERE jr.job_id = j.id) AS resumes
	FROM jobs j
	LEFT JOIN companies c ON c.id = j.company_id`

// ownedBy is the gate predicate; $1 company, $2 owner ('' means any)
const ownedBy = `
	j.company_id = $1
	AND ($2::text = '' OR EXISTS (
		SELECT 1 FROM publish_jobs p WHERE p.job_id = j.id AND p.user_id = $2::text))`

// PostgresJobRepository implementación de PostgreSQL para JobRepository
type PostgresJobRepository struct {
	db *sqlx.DB
}

func NewPostgresJobRepository(db *sqlx.DB) *PostgresJobRepository {
	return &PostgresJobRepository{db: db}
}

var _ job.JobRepository = (*PostgresJobRepository)(nil)

func (r *PostgresJobRepository) Create(ctx context.Context, j *job.Job) error {
	query := `
		INSERT INTO jobs (title, status, city, location, salary_min, salary_max, salary_count,
			hire_number, experience, benefit, education, description, publish_time, company_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id`
	err := dbx.Conn(ctx, r.db).GetContext(ctx, &j.ID, query,
		j.Title, j.Status, j.City, j.Location, j.SalaryMin, j.SalaryMax, j.SalaryCount,
		j.HireNumber, j.Experience, j.Benefit, j.Education, j.Description, j.PublishTime, j.CompanyID)
	if err != nil {
		return errx.Wrap(err, "failed to create job", errx.TypeInternal)
	}
	return nil
}

func (r *PostgresJobRepository) Update(ctx context.Context, j job.Job) error {
	query := `
		UPDATE jobs SET
			title = :title, status = :status, city = :city, location = :location,
			salary_min = :salary_min, salary_max = :salary_max, salary_count = :salary_count,
			hire_number = :hire_number, experience = :experience, benefit = :benefit,
			education = :education, description = :description, company_id = :company_id
		WHERE id = :id`
	res, err := dbx.Conn(ctx, r.db).NamedExecContext(ctx, query, j)
	if err != nil {
		return errx.Wrap(err, "failed to update job", errx.TypeInternal)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return job.ErrJobNotFound().WithDetail("job_id", j.ID.String())
	}
	return nil
}

func (r *PostgresJobRepository) FindByID(ctx context.Context, id kernel.JobID) (*job.Job, error) {
	return r.findJob(ctx, id, "")
}

func (r *PostgresJobRepository) FindByIDForUpdate(ctx context.Context, id kernel.JobID) (*job.Job, error) {
	return r.findJob(ctx, id, " FOR UPDATE")
}

func (r *PostgresJobRepository) findJob(ctx context.Context, id kernel.JobID, lock string) (*job.Job, error) {
	var j job.Job
	query := `SELECT ` + jobColumns + ` FROM jobs j WHERE j.id = $1` + lock
	if err := dbx.Conn(ctx, r.db).GetContext(ctx, &j, query, int64(id)); err != nil {
		return nil, notFoundOr(err, id, "failed to find job")
	}
	return &j, nil
}

func (r *PostgresJobRepository) CreatePublishJob(ctx context.Context, p *job.PublishJob) error {
	// INSERT ... SELECT so a missing job inserts nothing
	query := `
		INSERT INTO publish_jobs (user_id, job_id)
		SELECT $1, id FROM jobs WHERE id = $2
		RETURNING id`
	err := dbx.Conn(ctx, r.db).GetContext(ctx, &p.ID, query, p.UserID.String(), int64(p.JobID))
	if err != nil {
		return notFoundOr(err, p.JobID, "failed to record publisher")
	}
	return nil
}

func (r *PostgresJobRepository) FindPublisher(ctx context.Context, jobID kernel.JobID) (kernel.UserID, error) {
	var uid string
	query := `SELECT user_id FROM publish_jobs WHERE job_id = $1 ORDER BY id LIMIT 1`
	if err := dbx.Conn(ctx, r.db).GetContext(ctx, &uid, query, int64(jobID)); err != nil {
		return "", notFoundOr(err, jobID, "failed to find publisher")
	}
	return kernel.NewUserID(uid), nil
}

func (r *PostgresJobRepository) AddResume(ctx context.Context, jobID kernel.JobID, resumeID kernel.ResumeID) error {
	query := `INSERT INTO job_resumes (job_id, resume_id) VALUES ($1, $2) ON CONFLICT (job_id, resume_id) DO NOTHING`
	if _, err := dbx.Conn(ctx, r.db).ExecContext(ctx, query, int64(jobID), int64(resumeID)); err != nil {
		return errx.Wrap(err, "failed to attach resume", errx.TypeInternal)
	}
	return nil
}

func (r *PostgresJobRepository) FindScoped(ctx context.Context, id kernel.JobID, own scopes.Ownership) (*job.Summary, error) {
	var s job.Summary
	query := summarySelect + ` WHERE ` + ownedBy + ` AND j.id = $3`
	err := dbx.Conn(ctx, r.db).GetContext(ctx, &s, query, int64(own.CompanyID), own.OwnerParam(), int64(id))
	if err != nil {
		return nil, notFoundOr(err, id, "failed to find job")
	}
	return &s, nil
}

func (r *PostgresJobRepository) ListScoped(ctx context.Context, own scopes.Ownership, q string, page kernel.Page) ([]job.Summary, int, error) {
	where := ` WHERE ` + ownedBy + ` AND ($3::text = '' OR j.title ILIKE '%' || $3::text || '%')`
	args := []any{int64(own.CompanyID), own.OwnerParam(), q}

	conn := dbx.Conn(ctx, r.db)
	var total int
	if err := conn.GetContext(ctx, &total, `SELECT COUNT(*) FROM jobs j`+where, args...); err != nil {
		return nil, 0, errx.Wrap(err, "failed to count jobs", errx.TypeInternal)
	}

	var rows []job.Summary
	query := summarySelect + where + ` ORDER BY j.publish_time DESC, j.id DESC LIMIT $4 OFFSET $5`
	if err := conn.SelectContext(ctx, &rows, query, append(args, page.Limit, page.Offset)...); err != nil {
		return nil, 0, errx.Wrap(err, "failed to list jobs", errx.TypeInternal)
	}
	return rows, total, nil
}

func (r *PostgresJobRepository) ListNamesScoped(ctx context.Context, own scopes.Ownership) ([]job.NameDTO, error) {
	var rows []job.NameDTO
	query := `SELECT j.id, j.title FROM jobs j WHERE ` + ownedBy + ` ORDER BY j.id`
	if err := dbx.Conn(ctx, r.db).SelectContext(ctx, &rows, query, int64(own.CompanyID), own.OwnerParam()); err != nil {
		return nil, errx.Wrap(err, "failed to list job names", errx.TypeInternal)
	}
	return rows, nil
}

func (r *PostgresJobRepository) FindPublished(ctx context.Context, id kernel.JobID) (*job.Summary, error) {
	var s job.Summary
	query := summarySelect + ` WHERE j.id = $1 AND j.status = $2`
	if err := dbx.Conn(ctx, r.db).GetContext(ctx, &s, query, int64(id), job.StatusPublished); err != nil {
		return nil, notFoundOr(err, id, "failed to find job")
	}
	return &s, nil
}

// ListPublished busca en título, ciudad, dirección y nombre de empresa
func (r *PostgresJobRepository) ListPublished(ctx context.Context, filter job.PublicFilter) ([]job.Summary, int, error) {
	where := `
		WHERE j.status = $1
		AND ($2::text = '' OR j.title ILIKE '%' || $2::text || '%' OR j.city ILIKE '%' || $2::text || '%'
			OR j.location ILIKE '%' || $2::text || '%' OR c.name ILIKE '%' || $2::text || '%')
		AND ($3::text = '' OR j.education = $3::text)
		AND ($4::text = '' OR j.experience = $4::text)`
	args := []any{job.StatusPublished, filter.Query, filter.Education, filter.Experience}

	conn := dbx.Conn(ctx, r.db)
	var total int
	countQuery := `SELECT COUNT(*) FROM jobs j LEFT JOIN companies c ON c.id = j.company_id` + where
	if err := conn.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, errx.Wrap(err, "failed to count jobs", errx.TypeInternal)
	}

	order := ` ORDER BY j.title, j.id`
	if filter.Newest {
		order = ` ORDER BY j.publish_time DESC, j.id DESC`
	}
	var rows []job.Summary
	query := summarySelect + where + order + ` LIMIT $5 OFFSET $6`
	if err := conn.SelectContext(ctx, &rows, query, append(args, filter.Page.Limit, filter.Page.Offset)...); err != nil {
		return nil, 0, errx.Wrap(err, "failed to list jobs", errx.TypeInternal)
	}
	return rows, total, nil
}

func (r *PostgresJobRepository) ListPublishedByCompany(ctx context.Context, companyID kernel.CompanyID) ([]job.Summary, error) {
	var rows []job.Summary
	query := summarySelect + ` WHERE j.status = $1 AND j.company_id = $2 ORDER BY j.id`
	if err := dbx.Conn(ctx, r.db).SelectContext(ctx, &rows, query, job.StatusPublished, int64(companyID)); err != nil {
		return nil, errx.Wrap(err, "failed to list company jobs", errx.TypeInternal)
	}
	return rows, nil
}

func (r *PostgresJobRepository) RandomPublished(ctx context.Context, n int) ([]job.Summary, error) {
	return r.selectPublished(ctx, ` ORDER BY RANDOM() LIMIT $2`, n)
}

func (r *PostgresJobRepository) NewestPublished(ctx context.Context, n int) ([]job.Summary, error) {
	return r.selectPublished(ctx, ` ORDER BY j.publish_time DESC, j.id DESC LIMIT $2`, n)
}

func (r *PostgresJobRepository) selectPublished(ctx context.Context, tail string, n int) ([]job.Summary, error) {
	var rows []job.Summary
	query := summarySelect + ` WHERE j.status = $1` + tail
	if err := dbx.Conn(ctx, r.db).SelectContext(ctx, &rows, query, job.StatusPublished, n); err != nil {
		return nil, errx.Wrap(err, "failed to sample jobs", errx.TypeInternal)
	}
	return rows, nil
}

func notFoundOr(err error, id kernel.JobID, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return job.ErrJobNotFound().WithDetail("job_id", id.String())
	}
	return errx.Wrap(err, msg, errx.TypeInternal)
}
