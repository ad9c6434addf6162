package kernel

import (
	"strconv"
)

// UserID is the opaque short id of a user
type UserID string

func NewUserID(id string) UserID { return UserID(id) }

func (id UserID) String() string { return string(id) }

func (id UserID) IsEmpty() bool { return id == "" }

// CompanyID identifies a company. NoCompany is the sentinel that matches no row.
type CompanyID int64

const NoCompany CompanyID = -1

func (id CompanyID) String() string { return strconv.FormatInt(int64(id), 10) }

// Valid reports whether id can reference a stored company
func (id CompanyID) Valid() bool { return id > 0 }

type JobID int64

func (id JobID) String() string { return strconv.FormatInt(int64(id), 10) }

type ResumeID int64

func (id ResumeID) String() string { return strconv.FormatInt(int64(id), 10) }

type InterviewID int64

func (id InterviewID) String() string { return strconv.FormatInt(int64(id), 10) }

type InvitationID int64

func (id InvitationID) String() string { return strconv.FormatInt(int64(id), 10) }

type AvatarID int64

func (id AvatarID) String() string { return strconv.FormatInt(int64(id), 10) }

// ParseInt64ID parses a numeric path parameter
func ParseInt64ID(raw string) (int64, bool) {
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}
