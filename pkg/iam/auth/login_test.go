package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mlinyun/Peekpa/pkg/iam/user"
	"github.com/mlinyun/Peekpa/pkg/store/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// plainPasswords stores "hash:" + password; enough to drive the login rules
type plainPasswords struct{}

func (plainPasswords) HashPassword(pw string) (string, error) { return "hash:" + pw, nil }
func (plainPasswords) VerifyPassword(hash, pw string) bool    { return hash == "hash:"+pw }

var loginAt = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func seedAccounts(t *testing.T) *memstore.Store {
	t.Helper()
	ctx := context.Background()
	s := memstore.New()

	cand := user.NewCandidate("cand", "cand@mail.test", "Cara", "Did", "hash:secret1")
	staff := user.NewStaff("stf", "stf@acme.test", "Sam", "Tf", "hash:secret2", 1, false)
	gone := user.NewCandidate("gone", "gone@mail.test", "Go", "Ne", "hash:secret3")
	gone.IsActive = false
	for _, u := range []*user.User{cand, staff, gone} {
		require.NoError(t, s.Users().Save(ctx, *u))
	}
	return s
}

func TestLoginByAudience(t *testing.T) {
	s := seedAccounts(t)
	a := NewAuthenticator(s.Users(), plainPasswords{}).WithClock(func() time.Time { return loginAt })
	ctx := context.Background()

	u, err := a.Login(ctx, Credentials{Email: "CAND@mail.test", Password: "secret1"}, AudienceCandidate)
	require.NoError(t, err)
	assert.Equal(t, "cand", u.ID.String())

	stored, err := s.Users().FindByID(ctx, "cand")
	require.NoError(t, err)
	require.NotNil(t, stored.LastLogin)
	assert.Equal(t, loginAt, *stored.LastLogin)

	u, err = a.Login(ctx, Credentials{Email: "stf@acme.test", Password: "secret2"}, AudienceStaff)
	require.NoError(t, err)
	assert.True(t, u.IsStaff)
}

func TestLoginFailuresLookTheSame(t *testing.T) {
	s := seedAccounts(t)
	a := NewAuthenticator(s.Users(), plainPasswords{})
	ctx := context.Background()

	cases := map[string]struct {
		cred Credentials
		aud  Audience
	}{
		"unknown email":   {Credentials{Email: "nobody@mail.test", Password: "x"}, AudienceCandidate},
		"wrong password":  {Credentials{Email: "cand@mail.test", Password: "nope"}, AudienceCandidate},
		"staff as cand":   {Credentials{Email: "stf@acme.test", Password: "secret2"}, AudienceCandidate},
		"cand as staff":   {Credentials{Email: "cand@mail.test", Password: "secret1"}, AudienceStaff},
		"inactive member": {Credentials{Email: "gone@mail.test", Password: "secret3"}, AudienceCandidate},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := a.Login(ctx, tc.cred, tc.aud)
			assert.True(t, errors.Is(err, ErrInvalidCredentials()))
		})
	}

	_, err := a.Login(ctx, Credentials{Email: " ", Password: "x"}, AudienceCandidate)
	assert.True(t, errors.Is(err, ErrMissingCredentials()))
}
