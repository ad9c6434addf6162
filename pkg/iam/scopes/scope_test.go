package scopes

import (
	"testing"

	"github.com/mlinyun/Peekpa/pkg/errx"
	"github.com/mlinyun/Peekpa/pkg/kernel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func principal(id string, staff bool, profile *kernel.StaffProfile) *kernel.AuthContext {
	uid := kernel.NewUserID(id)
	return &kernel.AuthContext{UserID: &uid, IsStaff: staff, Staff: profile}
}

func TestResolveAnonymous(t *testing.T) {
	s := Resolve(nil)
	assert.Equal(t, Scope{}, s)
	assert.True(t, s.IsAnonymous())
	assert.False(t, s.IsStaff)
	assert.False(t, s.IsManager)
	assert.False(t, s.IsSuperuser)

	s = Resolve(&kernel.AuthContext{})
	assert.True(t, s.IsAnonymous())
}

func TestResolveStaffWithoutCompanyUsesSentinel(t *testing.T) {
	s := Resolve(principal("u1", true, nil))
	assert.True(t, s.IsStaff)
	assert.Equal(t, kernel.NoCompany, s.CompanyID)
	assert.False(t, s.HasCompany())

	own := s.Ownership()
	assert.False(t, own.Admits(kernel.NoCompany, "u1"))
	assert.False(t, own.Admits(1, "u1"))
}

func TestResolveManager(t *testing.T) {
	s := Resolve(principal("m1", true, &kernel.StaffProfile{CompanyID: 4, IsManager: true}))
	assert.True(t, s.IsManager)
	assert.Equal(t, kernel.CompanyID(4), s.CompanyID)

	own := s.Ownership()
	assert.Nil(t, own.OwnerID)
	assert.True(t, own.Admits(4, "someone-else"))
	assert.False(t, own.Admits(5, "m1"))
}

func TestResolveCandidateIgnoresProfile(t *testing.T) {
	s := Resolve(principal("c1", false, &kernel.StaffProfile{CompanyID: 4, IsManager: true}))
	assert.True(t, s.IsCandidate())
	assert.False(t, s.IsManager)
	assert.Equal(t, kernel.NoCompany, s.CompanyID)
}

func TestOwnershipNonManagerRestrictsOwner(t *testing.T) {
	s := Resolve(principal("s1", true, &kernel.StaffProfile{CompanyID: 4}))
	own := s.Ownership()
	require.NotNil(t, own.OwnerID)
	assert.True(t, own.Admits(4, "s1"))
	assert.False(t, own.Admits(4, "s2"))
	assert.Equal(t, "s1", own.OwnerParam())

	assert.True(t, s.CompanyOnly().Admits(4, "s2"))
}

func TestRequireGuards(t *testing.T) {
	anon := Scope{}
	assert.True(t, errx.IsType(anon.RequireStaff(), errx.TypeAuthentication))

	cand := Resolve(principal("c1", false, nil))
	assert.True(t, errx.IsType(cand.RequireStaff(), errx.TypeAuthorization))

	staff := Resolve(principal("s1", true, &kernel.StaffProfile{CompanyID: 1}))
	assert.NoError(t, staff.RequireStaff())
	assert.True(t, errx.IsType(staff.RequireManager(), errx.TypeAuthorization))
	assert.True(t, errx.IsType(staff.RequireSuperuser(), errx.TypeAuthorization))
}
