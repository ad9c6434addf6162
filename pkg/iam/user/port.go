package user

import (
	"context"

	"github.com/mlinyun/Peekpa/pkg/kernel"
)

// UserRepository define el contrato para la persistencia de usuarios
type UserRepository interface {
	FindByID(ctx context.Context, id kernel.UserID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Save(ctx context.Context, u User) error

	// FindStaff looks a user up inside one company; out of company ids are NotFound
	FindStaff(ctx context.Context, companyID kernel.CompanyID, id kernel.UserID) (*User, error)
	ListStaff(ctx context.Context, filter StaffFilter) ([]*User, int, error)
	FindManager(ctx context.Context, companyID kernel.CompanyID) (*User, error)
}

// AvatarRepository persists profile pictures
type AvatarRepository interface {
	FindByUser(ctx context.Context, userID kernel.UserID) ([]*Avatar, error)
	DeleteByUser(ctx context.Context, userID kernel.UserID) error
	Create(ctx context.Context, a *Avatar) error
}

// PasswordService define el contrato para el manejo de contraseñas
type PasswordService interface {
	HashPassword(password string) (string, error)
	VerifyPassword(hashedPassword, password string) bool
}
