package companyinfra

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/mlinyun/Peekpa/pkg/dbx"
	"github.com/mlinyun/Peekpa/pkg/errx"
	"github.com/mlinyun/Peekpa/pkg/iam/company"
	"github.com/mlinyun/Peekpa/pkg/kernel"
)

const companyColumns = `c.id, c.avatar, c.name, c.slogan, c.tags, c.size, c.website, c.description`

// summarySelect adds the job count and the in-progress interview count
const summarySelect = `
	SELECT ` + companyColumns + `,
		(SELECT COUNT(*) FROM jobs j WHERE j.company_id = c.id) AS jobs,
		(SELECT COUNT(*) FROM interviews i JOIN jobs j ON j.id = i.job_id
			WHERE j.company_id = c.id AND i.status BETWEEN 0 AND 3) AS interviews
	FROM companies c`

// PostgresCompanyRepository implementación de PostgreSQL para CompanyRepository
type PostgresCompanyRepository struct {
	db *sqlx.DB
}

func NewPostgresCompanyRepository(db *sqlx.DB) *PostgresCompanyRepository {
	return &PostgresCompanyRepository{db: db}
}

var _ company.CompanyRepository = (*PostgresCompanyRepository)(nil)

func (r *PostgresCompanyRepository) FindByID(ctx context.Context, id kernel.CompanyID) (*company.Company, error) {
	var c company.Company
	query := `SELECT ` + companyColumns + ` FROM companies c WHERE c.id = $1`
	if err := dbx.Conn(ctx, r.db).GetContext(ctx, &c, query, int64(id)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, company.ErrCompanyNotFound().WithDetail("company_id", id.String())
		}
		return nil, errx.Wrap(err, "failed to find company", errx.TypeInternal)
	}
	return &c, nil
}

func (r *PostgresCompanyRepository) FindAll(ctx context.Context) ([]*company.Company, error) {
	var out []*company.Company
	query := `SELECT ` + companyColumns + ` FROM companies c ORDER BY c.id`
	if err := dbx.Conn(ctx, r.db).SelectContext(ctx, &out, query); err != nil {
		return nil, errx.Wrap(err, "failed to list companies", errx.TypeInternal)
	}
	return out, nil
}

func (r *PostgresCompanyRepository) Create(ctx context.Context, c *company.Company) error {
	query := `
		INSERT INTO companies (avatar, name, slogan, tags, size, website, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	err := dbx.Conn(ctx, r.db).GetContext(ctx, &c.ID, query,
		c.Avatar, c.Name, c.Slogan, c.Tags, c.Size, c.Website, c.Description)
	if err != nil {
		return errx.Wrap(err, "failed to create company", errx.TypeInternal)
	}
	return nil
}

func (r *PostgresCompanyRepository) Update(ctx context.Context, c company.Company) error {
	query := `
		UPDATE companies SET
			avatar = :avatar, name = :name, slogan = :slogan, tags = :tags,
			size = :size, website = :website, description = :description
		WHERE id = :id`
	res, err := dbx.Conn(ctx, r.db).NamedExecContext(ctx, query, c)
	if err != nil {
		return errx.Wrap(err, "failed to update company", errx.TypeInternal)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return company.ErrCompanyNotFound().WithDetail("company_id", c.ID.String())
	}
	return nil
}

// List busca empresas por nombre, tag y tamaño
func (r *PostgresCompanyRepository) List(ctx context.Context, filter company.ListFilter) ([]company.Summary, int, error) {
	where := `
		WHERE ($1::text = '' OR c.name ILIKE '%' || $1::text || '%')
		AND ($2::text = '' OR c.tags ILIKE '%' || $2::text || '%')
		AND ($3::text = '' OR c.size = $3::text)`
	args := []any{filter.Query, filter.Tag, filter.Size}

	q := dbx.Conn(ctx, r.db)
	var total int
	if err := q.GetContext(ctx, &total, `SELECT COUNT(*) FROM companies c`+where, args...); err != nil {
		return nil, 0, errx.Wrap(err, "failed to count companies", errx.TypeInternal)
	}

	order := ` ORDER BY c.id`
	if filter.OrderByJobs {
		order = ` ORDER BY jobs DESC, c.id`
	}
	query := `SELECT * FROM (` + summarySelect + where + `) c` + order + ` LIMIT $4 OFFSET $5`

	var rows []company.Summary
	if err := q.SelectContext(ctx, &rows, query, append(args, filter.Page.Limit, filter.Page.Offset)...); err != nil {
		return nil, 0, errx.Wrap(err, "failed to list companies", errx.TypeInternal)
	}
	return rows, total, nil
}

// TopByInterviews ordena por el número total de candidaturas
func (r *PostgresCompanyRepository) TopByInterviews(ctx context.Context, n int) ([]company.Summary, error) {
	query := summarySelect + `
		ORDER BY (SELECT COUNT(*) FROM interviews i JOIN jobs j ON j.id = i.job_id WHERE j.company_id = c.id) DESC, c.id
		LIMIT $1`
	var rows []company.Summary
	if err := dbx.Conn(ctx, r.db).SelectContext(ctx, &rows, query, n); err != nil {
		return nil, errx.Wrap(err, "failed to rank companies", errx.TypeInternal)
	}
	return rows, nil
}

func (r *PostgresCompanyRepository) Random(ctx context.Context, n int) ([]company.Summary, error) {
	var rows []company.Summary
	if err := dbx.Conn(ctx, r.db).SelectContext(ctx, &rows, summarySelect+` ORDER BY RANDOM() LIMIT $1`, n); err != nil {
		return nil, errx.Wrap(err, "failed to sample companies", errx.TypeInternal)
	}
	return rows, nil
}
