package auth

import (
	"testing"
	"time"

	"github.com/mlinyun/Peekpa/pkg/config"
	"github.com/mlinyun/Peekpa/pkg/errx"
	"github.com/mlinyun/Peekpa/pkg/kernel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJWT(now func() time.Time) *JWTService {
	return NewJWTServiceFromConfig(config.JWTConfig{
		SecretKey:       "0123456789abcdef0123456789abcdef",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
		Issuer:          "peekpa",
		Audience:        []string{"peekpa-api"},
	}).WithClock(now)
}

func staffPrincipal() *kernel.AuthContext {
	id := kernel.NewUserID("u1")
	return &kernel.AuthContext{
		UserID:  &id,
		Email:   "u1@acme.test",
		Name:    "Doe Jane",
		IsStaff: true,
		Staff:   &kernel.StaffProfile{CompanyID: 3, IsManager: true},
	}
}

func TestAccessTokenRoundTripKeepsStaffProfile(t *testing.T) {
	svc := newJWT(time.Now)

	token, err := svc.GenerateAccessToken(staffPrincipal())
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, kernel.UserID("u1"), claims.UserID)
	assert.Equal(t, "u1@acme.test", claims.Email)
	assert.True(t, claims.IsStaff)
	require.NotNil(t, claims.Staff)
	assert.Equal(t, kernel.CompanyID(3), claims.Staff.CompanyID)
	assert.True(t, claims.Staff.IsManager)
	assert.NotEmpty(t, claims.TokenID)

	p := claims.Principal()
	assert.True(t, p.IsManager())
	assert.Equal(t, claims.TokenID, p.TokenID)
}

func TestCandidateTokenHasNoProfile(t *testing.T) {
	svc := newJWT(time.Now)
	id := kernel.NewUserID("c1")

	token, err := svc.GenerateAccessToken(&kernel.AuthContext{UserID: &id})
	require.NoError(t, err)
	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.False(t, claims.IsStaff)
	assert.Nil(t, claims.Staff)
}

func TestTokenTypesAreNotInterchangeable(t *testing.T) {
	svc := newJWT(time.Now)

	refresh, err := svc.GenerateRefreshToken("u1")
	require.NoError(t, err)
	_, err = svc.ValidateAccessToken(refresh)
	assert.True(t, errx.IsType(err, errx.TypeAuthentication))

	access, err := svc.GenerateAccessToken(staffPrincipal())
	require.NoError(t, err)
	_, err = svc.ValidateRefreshToken(access)
	assert.True(t, errx.IsType(err, errx.TypeAuthentication))

	claims, err := svc.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, kernel.UserID("u1"), claims.UserID)
}

func TestExpiredAndForeignTokensFail(t *testing.T) {
	issued := time.Now().Add(-2 * time.Hour)
	old := newJWT(func() time.Time { return issued })
	token, err := old.GenerateAccessToken(staffPrincipal())
	require.NoError(t, err)

	_, err = newJWT(time.Now).ValidateAccessToken(token)
	assert.True(t, errx.IsType(err, errx.TypeAuthentication))

	other := NewJWTServiceFromConfig(config.JWTConfig{
		SecretKey:      "ffffffffffffffffffffffffffffffff",
		AccessTokenTTL: time.Hour,
		Issuer:         "peekpa",
	})
	foreign, err := other.GenerateAccessToken(staffPrincipal())
	require.NoError(t, err)
	_, err = newJWT(time.Now).ValidateAccessToken(foreign)
	assert.Error(t, err)

	_, err = newJWT(time.Now).ValidateAccessToken("not-a-token")
	assert.Error(t, err)
}

func TestGenerateRejectsAnonymous(t *testing.T) {
	_, err := newJWT(time.Now).GenerateAccessToken(nil)
	assert.Error(t, err)
}
