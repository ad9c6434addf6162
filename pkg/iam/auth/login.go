package auth

import (
	"context"
	"strings"

	"github.com/mlinyun/Peekpa/pkg/errx"
	"github.com/mlinyun/Peekpa/pkg/iam/user"
	"github.com/mlinyun/Peekpa/pkg/kernel"
	"github.com/mlinyun/Peekpa/pkg/logx"
)

// Audience selects which accounts a login endpoint accepts
type Audience int

const (
	AudienceCandidate Audience = iota
	AudienceStaff
)

func (a Audience) String() string {
	if a == AudienceStaff {
		return "staff"
	}
	return "candidate"
}

// Admits reports whether the account belongs to the audience
func (a Audience) Admits(u *user.User) bool {
	if a == AudienceStaff {
		return u.IsStaff
	}
	return !u.IsStaff
}

// Credentials is the login body
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Authenticator checks credentials for both login endpoints
type Authenticator struct {
	users     user.UserRepository
	passwords user.PasswordService
	now       kernel.Clock
}

func NewAuthenticator(users user.UserRepository, passwords user.PasswordService) *Authenticator {
	return &Authenticator{users: users, passwords: passwords, now: kernel.SystemClock}
}

func (a *Authenticator) WithClock(c kernel.Clock) *Authenticator {
	a.now = c
	return a
}

// Login returns the account matching the credentials and records the login.
// An unknown email, an account of the other audience, an inactive account
// and a wrong password all fail with the same NotFound.
func (a *Authenticator) Login(ctx context.Context, cred Credentials, aud Audience) (*user.User, error) {
	email := user.NormalizeEmail(cred.Email)
	if email == "" || strings.TrimSpace(cred.Password) == "" {
		return nil, ErrMissingCredentials()
	}

	u, err := a.users.FindByEmail(ctx, email)
	if err != nil {
		if errx.IsType(err, errx.TypeNotFound) {
			return nil, ErrInvalidCredentials()
		}
		return nil, errx.Wrap(err, "failed to load user", errx.TypeInternal)
	}
	if !aud.Admits(u) || !u.IsActive || !a.passwords.VerifyPassword(u.Password, cred.Password) {
		return nil, ErrInvalidCredentials()
	}

	u.UpdateLastLogin(a.now())
	if err := a.users.Save(ctx, *u); err != nil {
		return nil, errx.Wrap(err, "failed to record login", errx.TypeInternal)
	}

	logx.WithFields(logx.Fields{"user_id": u.ID, "audience": aud.String()}).Info("user logged in")
	return u, nil
}
