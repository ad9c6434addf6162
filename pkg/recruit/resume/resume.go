package resume

import (
	"net/http"

	"github.com/mlinyun/Peekpa/pkg/errx"
	"github.com/mlinyun/Peekpa/pkg/kernel"
)

// Resume es un CV subido por un candidato. At most one resume per user is
// active; older ones stay around while interviews still reference them.
type Resume struct {
	ID       kernel.ResumeID `db:"id" json:"id"`
	Name     string          `db:"name" json:"name"`
	UserID   kernel.UserID   `db:"user_id" json:"user"`
	URL      string          `db:"url" json:"url"`
	IsActive bool            `db:"is_active" json:"is_active"`
}

// RefDTO is the resume block embedded in interviews
type RefDTO struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

func (r *Resume) ToRefDTO() RefDTO {
	return RefDTO{Name: r.Name, URL: r.URL}
}

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("RESUME")

var (
	CodeResumeNotFound = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Resume not found")
	CodeResumeMissing  = ErrRegistry.Register("MISSING_FILE", errx.TypeValidation, http.StatusBadRequest, "No resume file was uploaded")
	CodeNoActiveResume = ErrRegistry.Register("NO_ACTIVE", errx.TypeBusiness, http.StatusBadRequest, "You have not uploaded a resume yet, upload one before applying")
)

func ErrResumeNotFound() *errx.Error {
	return ErrRegistry.New(CodeResumeNotFound)
}

func ErrResumeMissing() *errx.Error {
	return ErrRegistry.New(CodeResumeMissing)
}

func ErrNoActiveResume() *errx.Error {
	return ErrRegistry.New(CodeNoActiveResume)
}
