package authinfra

import (
	"errors"

	"github.com/mlinyun/Peekpa/pkg/iam/user"
	"golang.org/x/crypto/bcrypt"
)

// BcryptPasswordService hashes account passwords with bcrypt
type BcryptPasswordService struct {
	cost int
}

var _ user.PasswordService = (*BcryptPasswordService)(nil)

// NewBcryptPasswordService clamps cost into the range bcrypt accepts
func NewBcryptPasswordService(cost int) *BcryptPasswordService {
	switch {
	case cost == 0:
		cost = bcrypt.DefaultCost
	case cost < bcrypt.MinCost:
		cost = bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	return &BcryptPasswordService{cost: cost}
}

func (s *BcryptPasswordService) HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", user.ErrInvalidPassword()
	}
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPassword is false for malformed hashes too
func (s *BcryptPasswordService) VerifyPassword(hashedPassword, password string) bool {
	if hashedPassword == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}
