package interviewinfra

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/mlinyun/Peekpa/pkg/dbx"
	"github.com/mlinyun/Peekpa/pkg/errx"
	"github.com/mlinyun/Peekpa/pkg/iam/scopes"
	"github.com/mlinyun/Peekpa/pkg/kernel"
	"github.com/mlinyun/Peekpa/pkg/recruit/interview"
)

const interviewColumns = `i.id, i.job_id, i.interviewer_id, i.candidate_id, i.resume_id, i.status, i.feedback, i.publish_time`

// admittedBy sigue job -> publish_jobs -> compañía del publicador.
// $1 company, $2 interviewer ('' means any)
const admittedBy = `
	($2::text = '' OR i.interviewer_id = $2::text)
	AND EXISTS (
		SELECT 1 FROM publish_jobs p JOIN users u ON u.id = p.user_id
		WHERE p.job_id = i.job_id
		AND u.details @> jsonb_build_object('company_id', $1::bigint))`

// PostgresInterviewRepository implementación de PostgreSQL para InterviewRepository
type PostgresInterviewRepository struct {
	db *sqlx.DB
}

func NewPostgresInterviewRepository(db *sqlx.DB) *PostgresInterviewRepository {
	return &PostgresInterviewRepository{db: db}
}

var _ interview.InterviewRepository = (*PostgresInterviewRepository)(nil)

func (r *PostgresInterviewRepository) Create(ctx context.Context, i *interview.Interview) error {
	query := `
		INSERT INTO interviews (job_id, interviewer_id, candidate_id, resume_id, status, feedback, publish_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	err := dbx.Conn(ctx, r.db).GetContext(ctx, &i.ID, query,
		int64(i.JobID), i.InterviewerID.String(), i.CandidateID.String(), int64(i.ResumeID),
		i.Status, i.Feedback, i.PublishTime)
	if err != nil {
		return errx.Wrap(err, "failed to create interview", errx.TypeInternal)
	}
	return nil
}

func (r *PostgresInterviewRepository) Update(ctx context.Context, i interview.Interview) error {
	query := `UPDATE interviews SET status = :status, feedback = :feedback WHERE id = :id`
	res, err := dbx.Conn(ctx, r.db).NamedExecContext(ctx, query, i)
	if err != nil {
		return errx.Wrap(err, "failed to update interview", errx.TypeInternal)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return interview.ErrInterviewNotFound().WithDetail("interview_id", i.ID.String())
	}
	return nil
}

func (r *PostgresInterviewRepository) FindByID(ctx context.Context, id kernel.InterviewID) (*interview.Interview, error) {
	var i interview.Interview
	query := `SELECT ` + interviewColumns + ` FROM interviews i WHERE i.id = $1`
	if err := dbx.Conn(ctx, r.db).GetContext(ctx, &i, query, int64(id)); err != nil {
		return nil, notFoundOr(err, id)
	}
	return &i, nil
}

func (r *PostgresInterviewRepository) FindScoped(ctx context.Context, jobID kernel.JobID, id kernel.InterviewID, own scopes.Ownership) (*interview.Interview, error) {
	var i interview.Interview
	query := `SELECT ` + interviewColumns + ` FROM interviews i
		WHERE ` + admittedBy + ` AND i.job_id = $3 AND i.id = $4`
	err := dbx.Conn(ctx, r.db).GetContext(ctx, &i, query,
		int64(own.CompanyID), own.OwnerParam(), int64(jobID), int64(id))
	if err != nil {
		return nil, notFoundOr(err, id)
	}
	return &i, nil
}

func (r *PostgresInterviewRepository) ListScoped(ctx context.Context, filter interview.ListFilter) ([]*interview.Interview, error) {
	query := `SELECT ` + interviewColumns + ` FROM interviews i WHERE ` + admittedBy
	args := []any{int64(filter.Own.CompanyID), filter.Own.OwnerParam()}
	if filter.JobID != nil {
		query += ` AND i.job_id = $3`
		args = append(args, int64(*filter.JobID))
	}
	query += ` ORDER BY i.id`

	var out []*interview.Interview
	if err := dbx.Conn(ctx, r.db).SelectContext(ctx, &out, query, args...); err != nil {
		return nil, errx.Wrap(err, "failed to list interviews", errx.TypeInternal)
	}
	return out, nil
}

func (r *PostgresInterviewRepository) CountByJobAndStatus(ctx context.Context, jobID kernel.JobID, status interview.Status) (int, error) {
	var n int
	query := `SELECT COUNT(*) FROM interviews WHERE job_id = $1 AND status = $2`
	if err := dbx.Conn(ctx, r.db).GetContext(ctx, &n, query, int64(jobID), status); err != nil {
		return 0, errx.Wrap(err, "failed to count interviews", errx.TypeInternal)
	}
	return n, nil
}

func (r *PostgresInterviewRepository) HasApplied(ctx context.Context, jobID kernel.JobID, candidateID kernel.UserID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM interviews WHERE job_id = $1 AND candidate_id = $2)`
	if err := dbx.Conn(ctx, r.db).GetContext(ctx, &exists, query, int64(jobID), candidateID.String()); err != nil {
		return false, errx.Wrap(err, "failed to check application", errx.TypeInternal)
	}
	return exists, nil
}

func notFoundOr(err error, id kernel.InterviewID) error {
	if errors.Is(err, sql.ErrNoRows) {
		return interview.ErrInterviewNotFound().WithDetail("interview_id", id.String())
	}
	return errx.Wrap(err, "failed to find interview", errx.TypeInternal)
}
