package userinfra

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/mlinyun/Peekpa/pkg/dbx"
	"github.com/mlinyun/Peekpa/pkg/errx"
	"github.com/mlinyun/Peekpa/pkg/iam/user"
	"github.com/mlinyun/Peekpa/pkg/kernel"
)

const userColumns = `
	id, email, password, first_name, last_name, gender, details,
	is_active, is_staff, is_superuser, date_joined, last_login`

// inCompany matches the StaffProfile stored in the details column
const inCompany = `details @> jsonb_build_object('company_id', $1::bigint)`

// PostgresUserRepository implementación de PostgreSQL para UserRepository
type PostgresUserRepository struct {
	db *sqlx.DB
}

// NewPostgresUserRepository crea una nueva instancia del repositorio de usuarios
func NewPostgresUserRepository(db *sqlx.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

var _ user.UserRepository = (*PostgresUserRepository)(nil)

// FindByID busca un usuario por ID
func (r *PostgresUserRepository) FindByID(ctx context.Context, id kernel.UserID) (*user.User, error) {
	query := `SELECT` + userColumns + ` FROM users WHERE id = $1`

	var u user.User
	if err := dbx.Conn(ctx, r.db).GetContext(ctx, &u, query, id.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrUserNotFound().WithDetail("user_id", id.String())
		}
		return nil, errx.Wrap(err, "failed to find user by id", errx.TypeInternal).
			WithDetail("user_id", id.String())
	}
	return &u, nil
}

// FindByEmail busca un usuario por email, sin distinguir mayúsculas
func (r *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	query := `SELECT` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`

	var u user.User
	if err := dbx.Conn(ctx, r.db).GetContext(ctx, &u, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrUserNotFound().WithDetail("email", email)
		}
		return nil, errx.Wrap(err, "failed to find user by email", errx.TypeInternal)
	}
	return &u, nil
}

// ExistsByEmail verifica si existe una cuenta con ese email
func (r *PostgresUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE LOWER(email) = LOWER($1))`
	if err := dbx.Conn(ctx, r.db).GetContext(ctx, &exists, query, email); err != nil {
		return false, errx.Wrap(err, "failed to check user existence", errx.TypeInternal)
	}
	return exists, nil
}

// Save inserta o actualiza un usuario
func (r *PostgresUserRepository) Save(ctx context.Context, u user.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES (
			:id, :email, :password, :first_name, :last_name, :gender, :details,
			:is_active, :is_staff, :is_superuser, :date_joined, :last_login
		)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			password = EXCLUDED.password,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			gender = EXCLUDED.gender,
			details = EXCLUDED.details,
			is_active = EXCLUDED.is_active,
			is_staff = EXCLUDED.is_staff,
			is_superuser = EXCLUDED.is_superuser,
			last_login = EXCLUDED.last_login`

	if _, err := dbx.Conn(ctx, r.db).NamedExecContext(ctx, query, u); err != nil {
		if dbx.IsUniqueViolation(err, "users_email_key") {
			return user.ErrUserAlreadyExists().WithDetail("email", u.Email)
		}
		return errx.Wrap(err, "failed to save user", errx.TypeInternal).
			WithDetail("user_id", u.ID.String())
	}
	return nil
}

// FindStaff busca un miembro del staff dentro de una empresa
func (r *PostgresUserRepository) FindStaff(ctx context.Context, companyID kernel.CompanyID, id kernel.UserID) (*user.User, error) {
	query := `SELECT` + userColumns + ` FROM users WHERE ` + inCompany + ` AND id = $2`

	var u user.User
	if err := dbx.Conn(ctx, r.db).GetContext(ctx, &u, query, int64(companyID), id.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrUserNotFound().WithDetail("user_id", id.String())
		}
		return nil, errx.Wrap(err, "failed to find staff", errx.TypeInternal)
	}
	return &u, nil
}

// ListStaff lista el staff de una empresa con búsqueda y paginación
func (r *PostgresUserRepository) ListStaff(ctx context.Context, filter user.StaffFilter) ([]*user.User, int, error) {
	where := ` FROM users WHERE ` + inCompany + ` AND id <> $2
		AND ($3 = '' OR first_name ILIKE '%' || $3 || '%' OR last_name ILIKE '%' || $3 || '%' OR email ILIKE '%' || $3 || '%')`
	args := []any{int64(filter.CompanyID), filter.ExcludeID.String(), filter.Query}

	q := dbx.Conn(ctx, r.db)
	var total int
	if err := q.GetContext(ctx, &total, `SELECT COUNT(*)`+where, args...); err != nil {
		return nil, 0, errx.Wrap(err, "failed to count staff", errx.TypeInternal)
	}

	var users []*user.User
	query := `SELECT` + userColumns + where + ` ORDER BY date_joined, id LIMIT $4 OFFSET $5`
	if err := q.SelectContext(ctx, &users, query, append(args, filter.Page.Limit, filter.Page.Offset)...); err != nil {
		return nil, 0, errx.Wrap(err, "failed to list staff", errx.TypeInternal)
	}
	return users, total, nil
}

// FindManager devuelve el primer manager de la empresa
func (r *PostgresUserRepository) FindManager(ctx context.Context, companyID kernel.CompanyID) (*user.User, error) {
	query := `SELECT` + userColumns + ` FROM users
		WHERE ` + inCompany + ` AND details @> '{"is_manager": true}'
		ORDER BY date_joined, id LIMIT 1`

	var u user.User
	if err := dbx.Conn(ctx, r.db).GetContext(ctx, &u, query, int64(companyID)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrUserNotFound().WithDetail("company_id", companyID.String())
		}
		return nil, errx.Wrap(err, "failed to find company manager", errx.TypeInternal)
	}
	return &u, nil
}

// ============================================================================
// Avatars
// ============================================================================

type PostgresAvatarRepository struct {
	db *sqlx.DB
}

func NewPostgresAvatarRepository(db *sqlx.DB) *PostgresAvatarRepository {
	return &PostgresAvatarRepository{db: db}
}

var _ user.AvatarRepository = (*PostgresAvatarRepository)(nil)

func (r *PostgresAvatarRepository) FindByUser(ctx context.Context, userID kernel.UserID) ([]*user.Avatar, error) {
	var out []*user.Avatar
	query := `SELECT id, user_id, name, url FROM avatars WHERE user_id = $1 ORDER BY id`
	if err := dbx.Conn(ctx, r.db).SelectContext(ctx, &out, query, userID.String()); err != nil {
		return nil, errx.Wrap(err, "failed to list avatars", errx.TypeInternal)
	}
	return out, nil
}

func (r *PostgresAvatarRepository) DeleteByUser(ctx context.Context, userID kernel.UserID) error {
	if _, err := dbx.Conn(ctx, r.db).ExecContext(ctx, `DELETE FROM avatars WHERE user_id = $1`, userID.String()); err != nil {
		return errx.Wrap(err, "failed to delete avatars", errx.TypeInternal)
	}
	return nil
}

func (r *PostgresAvatarRepository) Create(ctx context.Context, a *user.Avatar) error {
	query := `INSERT INTO avatars (user_id, name, url) VALUES ($1, $2, $3) RETURNING id`
	if err := dbx.Conn(ctx, r.db).GetContext(ctx, &a.ID, query, a.UserID.String(), a.Name, a.URL); err != nil {
		return errx.Wrap(err, "failed to create avatar", errx.TypeInternal)
	}
	return nil
}
