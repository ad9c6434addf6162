package scopes

import "github.com/mlinyun/Peekpa/pkg/kernel"

// Ownership is the conjunctive filter applied to every management query:
// rows must belong to CompanyID, and when OwnerID is set they must also be
// owned by that staff member (publisher of a job, interviewer of an interview).
type Ownership struct {
	CompanyID kernel.CompanyID
	OwnerID   *kernel.UserID
}

// Ownership builds the gate filter for the scope. Managers get company-wide
// visibility; other staff only see what they own.
func (s Scope) Ownership() Ownership {
	o := Ownership{CompanyID: s.CompanyID}
	if !s.HasCompany() {
		o.CompanyID = kernel.NoCompany
	}
	if !s.IsManager {
		uid := s.UserID
		o.OwnerID = &uid
	}
	return o
}

// CompanyOnly builds the gate filter without the role predicate, for
// operations open to any staff of the company.
func (s Scope) CompanyOnly() Ownership {
	o := s.Ownership()
	o.OwnerID = nil
	return o
}

// Admits reports whether a row owned by (companyID, ownerID) passes the
// filter. Stores that cannot push the predicate down evaluate it with this.
func (o Ownership) Admits(companyID kernel.CompanyID, ownerID kernel.UserID) bool {
	if !o.CompanyID.Valid() || companyID != o.CompanyID {
		return false
	}
	if o.OwnerID != nil && *o.OwnerID != ownerID {
		return false
	}
	return true
}

// AdmitsCompany checks only the company predicate
func (o Ownership) AdmitsCompany(companyID kernel.CompanyID) bool {
	return o.CompanyID.Valid() && companyID == o.CompanyID
}

// OwnerParam returns the owner id for SQL, empty when unrestricted
func (o Ownership) OwnerParam() string {
	if o.OwnerID == nil {
		return ""
	}
	return o.OwnerID.String()
}
