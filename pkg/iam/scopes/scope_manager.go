package scopes

import (
	"github.com/mlinyun/Peekpa/pkg/iam"
	"github.com/mlinyun/Peekpa/pkg/kernel"
)

// Scope is the authorization context every core operation receives
// explicitly. The zero value is the anonymous scope.
type Scope struct {
	IsStaff     bool
	IsSuperuser bool
	IsManager   bool
	CompanyID   kernel.CompanyID
	UserID      kernel.UserID
}

// Resolve derives the Scope of a principal. It never fails: a nil principal
// is anonymous, and a staff principal without a company gets the NoCompany
// sentinel so company-filtered queries come back empty.
func Resolve(principal *kernel.AuthContext) Scope {
	if !principal.IsValid() {
		return Scope{}
	}

	s := Scope{
		IsStaff:     principal.IsStaff,
		IsSuperuser: principal.IsSuperuser,
		UserID:      *principal.UserID,
		CompanyID:   kernel.NoCompany,
	}

	if principal.IsStaff && principal.Staff != nil {
		if principal.Staff.CompanyID.Valid() {
			s.CompanyID = principal.Staff.CompanyID
		}
		s.IsManager = principal.Staff.IsManager
	}
	return s
}

// IsAnonymous reports whether no user is behind the scope
func (s Scope) IsAnonymous() bool {
	return s.UserID.IsEmpty()
}

// IsCandidate reports whether the scope belongs to a signed-in non-staff user
func (s Scope) IsCandidate() bool {
	return !s.IsAnonymous() && !s.IsStaff
}

// HasCompany reports whether the scope resolved a real company
func (s Scope) HasCompany() bool {
	return s.CompanyID.Valid()
}

// RequireAuthenticated fails for anonymous scopes
func (s Scope) RequireAuthenticated() error {
	if s.IsAnonymous() {
		return iam.ErrUnauthorized()
	}
	return nil
}

// RequireStaff gates management operations
func (s Scope) RequireStaff() error {
	if s.IsAnonymous() {
		return iam.ErrUnauthorized()
	}
	if !s.IsStaff {
		return iam.ErrStaffOnly()
	}
	return nil
}

// RequireManager gates company administration
func (s Scope) RequireManager() error {
	if err := s.RequireStaff(); err != nil {
		return err
	}
	if !s.IsManager {
		return iam.ErrManagerOnly()
	}
	return nil
}

// RequireSuperuser gates platform administration. It bypasses the company
// and role filters entirely.
func (s Scope) RequireSuperuser() error {
	if s.IsAnonymous() {
		return iam.ErrUnauthorized()
	}
	if !s.IsSuperuser {
		return iam.ErrSuperuserOnly()
	}
	return nil
}
