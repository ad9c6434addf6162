package company

import (
	"net/http"
	"strings"

	"github.com/mlinyun/Peekpa/pkg/errx"
	"github.com/mlinyun/Peekpa/pkg/iam/user"
	"github.com/mlinyun/Peekpa/pkg/kernel"
)

// ============================================================================
// Company Entity
// ============================================================================

// Company es la empresa que publica ofertas. Its staff reference it through
// the company_id of their StaffProfile.
type Company struct {
	ID          kernel.CompanyID `db:"id" json:"id"`
	Avatar      string           `db:"avatar" json:"avatar"`
	Name        string           `db:"name" json:"name"`
	Slogan      string           `db:"slogan" json:"slogan"`
	Tags        string           `db:"tags" json:"tags"`
	Size        string           `db:"size" json:"size"`
	Website     string           `db:"website" json:"website"`
	Description string           `db:"description" json:"description"`
}

// Summary is a company with its public counters
type Summary struct {
	Company
	Jobs       int `db:"jobs" json:"jobs"`
	Interviews int `db:"interviews" json:"interviews"`
}

// Apply merges a partial profile update
func (c *Company) Apply(req UpdateCompanyRequest) error {
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return ErrInvalidName()
		}
		c.Name = name
	}
	if req.Avatar != nil {
		c.Avatar = *req.Avatar
	}
	if req.Slogan != nil {
		c.Slogan = *req.Slogan
	}
	if req.Tags != nil {
		c.Tags = *req.Tags
	}
	if req.Size != nil {
		c.Size = *req.Size
	}
	if req.Website != nil {
		c.Website = *req.Website
	}
	if req.Description != nil {
		c.Description = *req.Description
	}
	return nil
}

// ============================================================================
// DTOs
// ============================================================================

// ListDTO is a row of the public company list
type ListDTO struct {
	ID         kernel.CompanyID `json:"id"`
	Name       string           `json:"name"`
	Slogan     string           `json:"slogan"`
	Avatar     string           `json:"avatar"`
	Tags       string           `json:"tags"`
	Size       string           `json:"size"`
	Jobs       int              `json:"jobs"`
	Interviews int              `json:"interviews"`
}

func (s Summary) ToDTO() ListDTO {
	return ListDTO{
		ID:         s.ID,
		Name:       s.Name,
		Slogan:     s.Slogan,
		Avatar:     s.Avatar,
		Tags:       s.Tags,
		Size:       s.Size,
		Jobs:       s.Jobs,
		Interviews: s.Interviews,
	}
}

// AdminDTO is a row of the superuser company list
type AdminDTO struct {
	ID      kernel.CompanyID `json:"id"`
	Name    string           `json:"name"`
	Website string           `json:"website"`
	User    *user.ManagerDTO `json:"user"`
}

// ============================================================================
// Service DTOs
// ============================================================================

// ListFilter selects the public company list
type ListFilter struct {
	Query       string
	Tag         string
	Size        string
	OrderByJobs bool
	Page        kernel.Page
}

// CreateCompanyRequest creates a company and its first manager
type CreateCompanyRequest struct {
	Name        string `json:"name"`
	Website     string `json:"website"`
	Avatar      string `json:"avatar"`
	Slogan      string `json:"slogan"`
	Tags        string `json:"tags"`
	Size        string `json:"size"`
	Description string `json:"description"`

	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

// UpdateCompanyRequest es una actualización parcial del perfil de empresa
type UpdateCompanyRequest struct {
	Name        *string `json:"name,omitempty"`
	Avatar      *string `json:"avatar,omitempty"`
	Slogan      *string `json:"slogan,omitempty"`
	Tags        *string `json:"tags,omitempty"`
	Size        *string `json:"size,omitempty"`
	Website     *string `json:"website,omitempty"`
	Description *string `json:"description,omitempty"`
}

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("COMPANY")

var (
	CodeCompanyNotFound = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Company not found")
	CodeInvalidName     = ErrRegistry.Register("INVALID_NAME", errx.TypeValidation, http.StatusBadRequest, "Company name is required")
	CodeNoCompany       = ErrRegistry.Register("NO_COMPANY", errx.TypeValidation, http.StatusBadRequest, "Your account is not attached to a company")
)

func ErrCompanyNotFound() *errx.Error {
	return ErrRegistry.New(CodeCompanyNotFound)
}

func ErrInvalidName() *errx.Error {
	return ErrRegistry.New(CodeInvalidName)
}

func ErrNoCompany() *errx.Error {
	return ErrRegistry.New(CodeNoCompany)
}
