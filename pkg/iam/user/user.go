package user

import (
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/mlinyun/Peekpa/pkg/errx"
	"github.com/mlinyun/Peekpa/pkg/kernel"
)

// ============================================================================
// User Entity
// ============================================================================

// Gender del usuario
type Gender int

const (
	GenderUnknown Gender = 0
	GenderMale    Gender = 1
	GenderFemale  Gender = 2
)

// Valid reports whether g is one of the known values
func (g Gender) Valid() bool {
	return g >= GenderUnknown && g <= GenderFemale
}

// User es un candidato o un miembro del staff de una empresa.
// Staff is nil for candidates and holds the company membership for staff.
type User struct {
	ID          kernel.UserID        `db:"id" json:"uid"`
	Email       string               `db:"email" json:"email"`
	Password    string               `db:"password" json:"-"`
	FirstName   string               `db:"first_name" json:"first_name"`
	LastName    string               `db:"last_name" json:"last_name"`
	Gender      Gender               `db:"gender" json:"gender"`
	Staff       *kernel.StaffProfile `db:"details" json:"details,omitempty"`
	IsActive    bool                 `db:"is_active" json:"is_active"`
	IsStaff     bool                 `db:"is_staff" json:"is_staff"`
	IsSuperuser bool                 `db:"is_superuser" json:"is_superuser"`
	DateJoined  time.Time            `db:"date_joined" json:"date_joined"`
	LastLogin   *time.Time           `db:"last_login" json:"last_login,omitempty"`
}

// NewCandidate builds an active candidate account
func NewCandidate(id kernel.UserID, email, firstName, lastName, passwordHash string) *User {
	return &User{
		ID:         id,
		Email:      NormalizeEmail(email),
		Password:   passwordHash,
		FirstName:  firstName,
		LastName:   lastName,
		IsActive:   true,
		DateJoined: time.Now(),
	}
}

// NewStaff builds an active staff account bound to a company
func NewStaff(id kernel.UserID, email, firstName, lastName, passwordHash string, companyID kernel.CompanyID, manager bool) *User {
	u := NewCandidate(id, email, firstName, lastName, passwordHash)
	u.IsStaff = true
	u.Staff = &kernel.StaffProfile{CompanyID: companyID, IsManager: manager}
	return u
}

// NormalizeEmail lowercases the domain part, like most account systems do
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + strings.ToLower(email[at:])
}

// PasswordPolicy bounds the length of plain text passwords
type PasswordPolicy struct {
	MinLength int
	MaxLength int
}

// Check validates a plain text password against the policy
func (p PasswordPolicy) Check(password string) error {
	n := len([]rune(password))
	if n < p.MinLength || (p.MaxLength > 0 && n > p.MaxLength) {
		return ErrInvalidPassword().
			WithDetail("min_length", p.MinLength).
			WithDetail("max_length", p.MaxLength)
	}
	return nil
}

// ValidateEmail checks the address is a bare, parseable email
func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrInvalidEmail().WithDetail("email", email)
	}
	return nil
}

// ============================================================================
// Domain Methods
// ============================================================================

// Name is "last first", trimmed
func (u *User) Name() string {
	return strings.TrimSpace(u.LastName + " " + u.FirstName)
}

// CompanyID returns the staff company or NoCompany
func (u *User) CompanyID() kernel.CompanyID {
	if !u.IsStaff || u.Staff == nil || !u.Staff.CompanyID.Valid() {
		return kernel.NoCompany
	}
	return u.Staff.CompanyID
}

func (u *User) IsManager() bool {
	return u.IsStaff && u.Staff != nil && u.Staff.IsManager
}

// BelongsTo reports whether the user is staff of the company
func (u *User) BelongsTo(companyID kernel.CompanyID) bool {
	return companyID.Valid() && u.CompanyID() == companyID
}

// UpdateLastLogin actualiza la fecha del último login
func (u *User) UpdateLastLogin(now time.Time) {
	u.LastLogin = &now
}

// ApplyStaffUpdate merges a manager's partial edit of a colleague
func (u *User) ApplyStaffUpdate(req UpdateStaffRequest) error {
	err := u.ApplyProfile(UpdateProfileRequest{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Gender:    req.Gender,
	})
	if err != nil {
		return err
	}
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}
	return nil
}

// ApplyProfile merges a partial profile update
func (u *User) ApplyProfile(req UpdateProfileRequest) error {
	if req.Gender != nil && !req.Gender.Valid() {
		return ErrInvalidGender()
	}
	if req.FirstName != nil {
		u.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		u.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Gender != nil {
		u.Gender = *req.Gender
	}
	return nil
}

// Principal builds the AuthContext carried by tokens issued to this user
func (u *User) Principal() *kernel.AuthContext {
	id := u.ID
	ac := &kernel.AuthContext{
		UserID:      &id,
		Email:       u.Email,
		Name:        u.Name(),
		IsStaff:     u.IsStaff,
		IsSuperuser: u.IsSuperuser,
	}
	if u.IsStaff && u.Staff != nil {
		profile := *u.Staff
		ac.Staff = &profile
	}
	return ac
}

// ============================================================================
// Avatar Entity
// ============================================================================

// Avatar is the profile picture of a user, at most one per user
type Avatar struct {
	ID     kernel.AvatarID `db:"id" json:"id"`
	UserID kernel.UserID   `db:"user_id" json:"user"`
	Name   string          `db:"name" json:"name"`
	URL    string          `db:"url" json:"url"`
}

// ============================================================================
// DTOs
// ============================================================================

// UserDTO is what /auth/me and the auth responses return
type UserDTO struct {
	ID          kernel.UserID        `json:"uid"`
	Email       string               `json:"email"`
	FirstName   string               `json:"first_name"`
	LastName    string               `json:"last_name"`
	Name        string               `json:"name"`
	Gender      Gender               `json:"gender"`
	IsStaff     bool                 `json:"is_staff"`
	IsSuperuser bool                 `json:"is_superuser"`
	IsActive    bool                 `json:"is_active"`
	Details     *kernel.StaffProfile `json:"details,omitempty"`
	DateJoined  time.Time            `json:"date_joined"`
	LastLogin   *time.Time           `json:"last_login,omitempty"`
}

func (u *User) ToDTO() UserDTO {
	return UserDTO{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Name:        u.Name(),
		Gender:      u.Gender,
		IsStaff:     u.IsStaff,
		IsSuperuser: u.IsSuperuser,
		IsActive:    u.IsActive,
		Details:     u.Staff,
		DateJoined:  u.DateJoined,
		LastLogin:   u.LastLogin,
	}
}

// StaffDTO is a row of the company staff list
type StaffDTO struct {
	ID         kernel.UserID `json:"uid"`
	Email      string        `json:"email"`
	FirstName  string        `json:"first_name"`
	LastName   string        `json:"last_name"`
	Gender     Gender        `json:"gender"`
	DateJoined time.Time     `json:"data_join"`
	LastLogin  *time.Time    `json:"last_login,omitempty"`
	IsActive   bool          `json:"is_active"`
}

func (u *User) ToStaffDTO() StaffDTO {
	return StaffDTO{
		ID:         u.ID,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Gender:     u.Gender,
		DateJoined: u.DateJoined,
		LastLogin:  u.LastLogin,
		IsActive:   u.IsActive,
	}
}

// CandidateDTO is the candidate block embedded in interviews and invitations
type CandidateDTO struct {
	ID      kernel.UserID        `json:"uid"`
	Email   string               `json:"email"`
	Name    string               `json:"name"`
	Gender  Gender               `json:"gender"`
	Details *kernel.StaffProfile `json:"details,omitempty"`
}

func (u *User) ToCandidateDTO() CandidateDTO {
	return CandidateDTO{
		ID:      u.ID,
		Email:   u.Email,
		Name:    u.Name(),
		Gender:  u.Gender,
		Details: u.Staff,
	}
}

// ManagerDTO is the manager block of the superuser company list
type ManagerDTO struct {
	ID         kernel.UserID `json:"uid"`
	Email      string        `json:"email"`
	FirstName  string        `json:"first_name"`
	LastName   string        `json:"last_name"`
	DateJoined time.Time     `json:"data_join"`
}

func (u *User) ToManagerDTO() ManagerDTO {
	return ManagerDTO{
		ID:         u.ID,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		DateJoined: u.DateJoined,
	}
}

// ============================================================================
// Service DTOs
// ============================================================================

// SignupRequest registers a candidate
type SignupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// CreateStaffRequest is sent by a manager to add a colleague
type CreateStaffRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// UpdateProfileRequest es una actualización parcial del perfil propio
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Gender    *Gender `json:"gender,omitempty"`
}

// UpdateStaffRequest es una actualización parcial hecha por un manager
type UpdateStaffRequest struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Gender    *Gender `json:"gender,omitempty"`
	IsActive  *bool   `json:"is_active,omitempty"`
}

// StaffFilter selects the staff list of a company
type StaffFilter struct {
	CompanyID kernel.CompanyID
	ExcludeID kernel.UserID
	Query     string
	Page      kernel.Page
}

// ============================================================================
// Error Registry - Errores específicos de User
// ============================================================================

var ErrRegistry = errx.NewRegistry("USER")

var (
	CodeUserNotFound      = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "User not found")
	CodeUserAlreadyExists = ErrRegistry.Register("ALREADY_EXISTS", errx.TypeConflict, http.StatusConflict, "A user with this email already exists")
	CodeInvalidEmail      = ErrRegistry.Register("INVALID_EMAIL", errx.TypeValidation, http.StatusBadRequest, "Invalid email address")
	CodeInvalidPassword   = ErrRegistry.Register("INVALID_PASSWORD", errx.TypeValidation, http.StatusBadRequest, "Password length is out of range")
	CodeInvalidGender     = ErrRegistry.Register("INVALID_GENDER", errx.TypeValidation, http.StatusBadRequest, "Invalid gender")
	CodeAvatarMissing     = ErrRegistry.Register("AVATAR_MISSING", errx.TypeValidation, http.StatusBadRequest, "No avatar file was uploaded")
)

func ErrUserNotFound() *errx.Error {
	return ErrRegistry.New(CodeUserNotFound)
}

func ErrUserAlreadyExists() *errx.Error {
	return ErrRegistry.New(CodeUserAlreadyExists)
}

func ErrInvalidEmail() *errx.Error {
	return ErrRegistry.New(CodeInvalidEmail)
}

func ErrInvalidPassword() *errx.Error {
	return ErrRegistry.New(CodeInvalidPassword)
}

func ErrInvalidGender() *errx.Error {
	return ErrRegistry.New(CodeInvalidGender)
}

func ErrAvatarMissing() *errx.Error {
	return ErrRegistry.New(CodeAvatarMissing)
}
