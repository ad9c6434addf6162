package resumeinfra

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/mlinyun/Peekpa/pkg/dbx"
	"github.com/mlinyun/Peekpa/pkg/errx"
	"github.com/mlinyun/Peekpa/pkg/kernel"
	"github.com/mlinyun/Peekpa/pkg/recruit/resume"
)

const resumeColumns = `r.id, r.name, r.user_id, r.url, r.is_active`

const unreferenced = `NOT EXISTS (SELECT 1 FROM interviews i WHERE i.resume_id = r.id)`

// PostgresResumeRepository implementación de PostgreSQL para ResumeRepository
type PostgresResumeRepository struct {
	db *sqlx.DB
}

func NewPostgresResumeRepository(db *sqlx.DB) *PostgresResumeRepository {
	return &PostgresResumeRepository{db: db}
}

var _ resume.ResumeRepository = (*PostgresResumeRepository)(nil)

func (r *PostgresResumeRepository) Create(ctx context.Context, res *resume.Resume) error {
	query := `INSERT INTO resumes (name, user_id, url, is_active) VALUES ($1, $2, $3, $4) RETURNING id`
	err := dbx.Conn(ctx, r.db).GetContext(ctx, &res.ID, query, res.Name, res.UserID.String(), res.URL, res.IsActive)
	if err != nil {
		return errx.Wrap(err, "failed to create resume", errx.TypeInternal)
	}
	return nil
}

func (r *PostgresResumeRepository) FindByID(ctx context.Context, id kernel.ResumeID) (*resume.Resume, error) {
	var res resume.Resume
	query := `SELECT ` + resumeColumns + ` FROM resumes r WHERE r.id = $1`
	if err := dbx.Conn(ctx, r.db).GetContext(ctx, &res, query, int64(id)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, resume.ErrResumeNotFound().WithDetail("resume_id", id.String())
		}
		return nil, errx.Wrap(err, "failed to find resume", errx.TypeInternal)
	}
	return &res, nil
}

// FindActive devuelve el CV activo más reciente
func (r *PostgresResumeRepository) FindActive(ctx context.Context, userID kernel.UserID) (*resume.Resume, error) {
	var res resume.Resume
	query := `SELECT ` + resumeColumns + ` FROM resumes r
		WHERE r.user_id = $1 AND r.is_active ORDER BY r.id DESC LIMIT 1`
	if err := dbx.Conn(ctx, r.db).GetContext(ctx, &res, query, userID.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, resume.ErrNoActiveResume()
		}
		return nil, errx.Wrap(err, "failed to find active resume", errx.TypeInternal)
	}
	return &res, nil
}

func (r *PostgresResumeRepository) ListUnused(ctx context.Context, userID kernel.UserID) ([]*resume.Resume, error) {
	var out []*resume.Resume
	query := `SELECT ` + resumeColumns + ` FROM resumes r WHERE r.user_id = $1 AND ` + unreferenced + ` ORDER BY r.id`
	if err := dbx.Conn(ctx, r.db).SelectContext(ctx, &out, query, userID.String()); err != nil {
		return nil, errx.Wrap(err, "failed to list unused resumes", errx.TypeInternal)
	}
	return out, nil
}

func (r *PostgresResumeRepository) DeactivateAll(ctx context.Context, userID kernel.UserID) error {
	query := `UPDATE resumes SET is_active = FALSE WHERE user_id = $1 AND is_active`
	if _, err := dbx.Conn(ctx, r.db).ExecContext(ctx, query, userID.String()); err != nil {
		return errx.Wrap(err, "failed to deactivate resumes", errx.TypeInternal)
	}
	return nil
}

// Delete removes the resumes and their job attachments
func (r *PostgresResumeRepository) Delete(ctx context.Context, ids []kernel.ResumeID) error {
	if len(ids) == 0 {
		return nil
	}
	conn := dbx.Conn(ctx, r.db)
	for _, stmt := range []string{
		`DELETE FROM job_resumes WHERE resume_id IN (?)`,
		`DELETE FROM resumes WHERE id IN (?)`,
	} {
		query, args, err := sqlx.In(stmt, ids)
		if err != nil {
			return errx.Wrap(err, "failed to build delete", errx.TypeInternal)
		}
		if _, err := conn.ExecContext(ctx, conn.Rebind(query), args...); err != nil {
			return errx.Wrap(err, "failed to delete resumes", errx.TypeInternal)
		}
	}
	return nil
}

func (r *PostgresResumeRepository) ListOrphans(ctx context.Context, limit int) ([]*resume.Resume, error) {
	var out []*resume.Resume
	query := `SELECT ` + resumeColumns + ` FROM resumes r WHERE NOT r.is_active AND ` + unreferenced + ` ORDER BY r.id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	if err := dbx.Conn(ctx, r.db).SelectContext(ctx, &out, query, args...); err != nil {
		return nil, errx.Wrap(err, "failed to list orphan resumes", errx.TypeInternal)
	}
	return out, nil
}
