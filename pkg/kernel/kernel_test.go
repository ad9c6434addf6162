package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaffProfileRoundTrip(t *testing.T) {
	p := StaffProfile{CompanyID: 3, IsManager: true}
	v, err := p.Value()
	require.NoError(t, err)

	var got StaffProfile
	require.NoError(t, got.Scan([]byte(v.(string))))
	assert.Equal(t, p, got)

	require.NoError(t, got.Scan(nil))
	assert.Equal(t, StaffProfile{}, got)
}

func TestPageClamp(t *testing.T) {
	p := NewPage(0, -5)
	assert.Equal(t, DefaultPageLimit, p.Limit)
	assert.Equal(t, 0, p.Offset)

	p = NewPage(1000, 3)
	assert.Equal(t, MaxPageLimit, p.Limit)

	start, end := NewPage(2, 3).Slice(4)
	assert.Equal(t, 3, start)
	assert.Equal(t, 4, end)
}

func TestAuthContextManager(t *testing.T) {
	var anon *AuthContext
	assert.False(t, anon.IsValid())

	id := NewUserID("u1")
	staff := &AuthContext{UserID: &id, IsStaff: true, Staff: &StaffProfile{CompanyID: 1, IsManager: true}}
	assert.True(t, staff.IsManager())

	staff.Staff.IsManager = false
	assert.False(t, staff.IsManager())
}
