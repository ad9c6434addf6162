package job

import (
	"net/http"
	"strings"
	"time"

	"github.com/mlinyun/Peekpa/pkg/errx"
	"github.com/mlinyun/Peekpa/pkg/kernel"
)

// ============================================================================
// Job Entity
// ============================================================================

// Status del puesto
type Status int

const (
	StatusPublished Status = 0
	StatusClosed    Status = 1
	StatusFinished  Status = 2
)

func (s Status) Valid() bool {
	return s >= StatusPublished && s <= StatusFinished
}

func (s Status) String() string {
	switch s {
	case StatusPublished:
		return "published"
	case StatusClosed:
		return "closed"
	case StatusFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Job es una oferta publicada por el staff de una empresa
type Job struct {
	ID          kernel.JobID      `db:"id" json:"id"`
	Title       string            `db:"title" json:"title"`
	Status      Status            `db:"status" json:"status"`
	City        string            `db:"city" json:"city"`
	Location    string            `db:"location" json:"location"`
	SalaryMin   int               `db:"salary_min" json:"salary_min"`
	SalaryMax   int               `db:"salary_max" json:"salary_max"`
	SalaryCount int               `db:"salary_count" json:"salary_count"`
	HireNumber  int               `db:"hire_number" json:"hire_number"`
	Experience  string            `db:"experience" json:"experience"`
	Benefit     string            `db:"benefit" json:"benefit"`
	Education   string            `db:"education" json:"education"`
	Description string            `db:"description" json:"description"`
	PublishTime time.Time         `db:"publish_time" json:"publish_time"`
	CompanyID   *kernel.CompanyID `db:"company_id" json:"company_id"`
}

// PublishJob binds the staff user who created a job to it
type PublishJob struct {
	ID     int64         `db:"id" json:"id"`
	UserID kernel.UserID `db:"user_id" json:"user_id"`
	JobID  kernel.JobID  `db:"job_id" json:"job_id"`
}

// NewJob builds a published job from a create request. The company is
// attached separately so creation and attachment share a transaction.
func NewJob(req CreateJobRequest, now time.Time) (*Job, error) {
	j := &Job{
		Title:       strings.TrimSpace(req.Title),
		Status:      StatusPublished,
		City:        req.City,
		Location:    req.Location,
		SalaryMin:   req.SalaryMin,
		SalaryMax:   req.SalaryMax,
		SalaryCount: req.SalaryCount,
		HireNumber:  req.HireNumber,
		Experience:  req.Experience,
		Benefit:     req.Benefit,
		Education:   req.Education,
		Description: req.Description,
		PublishTime: now,
	}
	if j.HireNumber == 0 {
		j.HireNumber = 1
	}
	if err := j.validate(); err != nil {
		return nil, err
	}
	return j, nil
}

func (j *Job) validate() error {
	if j.Title == "" {
		return ErrInvalidJob().WithDetail("field", "title")
	}
	if j.HireNumber < 1 {
		return ErrInvalidJob().WithDetail("field", "hire_number")
	}
	if j.SalaryMin < 0 || j.SalaryMax < 0 || j.SalaryCount < 0 {
		return ErrInvalidJob().WithDetail("field", "salary")
	}
	if j.SalaryMax > 0 && j.SalaryMin > j.SalaryMax {
		return ErrInvalidJob().WithDetail("field", "salary_min")
	}
	if !j.Status.Valid() {
		return ErrInvalidJob().WithDetail("field", "status")
	}
	return nil
}

// ============================================================================
// Domain Methods
// ============================================================================

func (j *Job) IsPublished() bool {
	return j.Status == StatusPublished
}

// AttachCompany sets the owning company
func (j *Job) AttachCompany(id kernel.CompanyID) {
	j.CompanyID = &id
}

// Company returns the owning company or NoCompany
func (j *Job) Company() kernel.CompanyID {
	if j.CompanyID == nil {
		return kernel.NoCompany
	}
	return *j.CompanyID
}

// CloseIfQuotaMet finishes the job when the projected hire count reaches
// hire_number. hired counts the other interviews of the job already taken
// toward the quota; the interview being passed right now counts as one more.
// It reports whether the status changed.
func (j *Job) CloseIfQuotaMet(hired int) bool {
	passNumber := hired + 1
	if passNumber == j.HireNumber && j.Status != StatusFinished {
		j.Status = StatusFinished
		return true
	}
	return false
}

// Apply merges a partial staff edit; publish_time is never editable
func (j *Job) Apply(req UpdateJobRequest) error {
	if req.Title != nil {
		j.Title = strings.TrimSpace(*req.Title)
	}
	if req.Status != nil {
		j.Status = *req.Status
	}
	if req.City != nil {
		j.City = *req.City
	}
	if req.Location != nil {
		j.Location = *req.Location
	}
	if req.SalaryMin != nil {
		j.SalaryMin = *req.SalaryMin
	}
	if req.SalaryMax != nil {
		j.SalaryMax = *req.SalaryMax
	}
	if req.SalaryCount != nil {
		j.SalaryCount = *req.SalaryCount
	}
	if req.HireNumber != nil {
		j.HireNumber = *req.HireNumber
	}
	if req.Experience != nil {
		j.Experience = *req.Experience
	}
	if req.Benefit != nil {
		j.Benefit = *req.Benefit
	}
	if req.Education != nil {
		j.Education = *req.Education
	}
	if req.Description != nil {
		j.Description = *req.Description
	}
	return j.validate()
}

// ============================================================================
// Read models
// ============================================================================

// Summary is a job joined with its company and interview counters
type Summary struct {
	Job
	CompanyName    string `db:"company_name"`
	CompanyTags    string `db:"company_tags"`
	CompanyAvatar  string `db:"company_avatar"`
	CompanySize    string `db:"company_size"`
	CompanyWebsite string `db:"company_website"`
	// PassNumber counts interviews with the passed status
	PassNumber int `db:"pass_number"`
	// Interviews counts every application received
	Interviews int `db:"interviews"`
	// Resumes counts the resumes attached to the job
	Resumes int `db:"resumes"`
}

// ListDTO is a row of the job lists. Staff only fields are nil for
// candidates and anonymous visitors.
type ListDTO struct {
	ID            kernel.JobID      `json:"id"`
	Title         string            `json:"title"`
	Status        *Status           `json:"status,omitempty"`
	City          string            `json:"city"`
	Location      string            `json:"location"`
	SalaryMin     int               `json:"salary_min"`
	SalaryMax     int               `json:"salary_max"`
	SalaryCount   int               `json:"salary_count"`
	Education     string            `json:"education"`
	Experience    string            `json:"experience"`
	Benefit       string            `json:"benefit"`
	Description   string            `json:"description"`
	PublishTime   time.Time         `json:"publish_time"`
	PassNumber    *int              `json:"pass_number,omitempty"`
	HireNumber    *int              `json:"hire_number,omitempty"`
	Resumes       *int              `json:"resumes,omitempty"`
	CompanyID     *kernel.CompanyID `json:"company_id"`
	CompanyName   string            `json:"company_name"`
	CompanyTags   string            `json:"company_tags"`
	CompanyAvatar string            `json:"company_avatar"`
}

// ToListDTO renders the summary; staff see the hiring counters
func (s Summary) ToListDTO(staff bool) ListDTO {
	dto := ListDTO{
		ID:            s.ID,
		Title:         s.Title,
		City:          s.City,
		Location:      s.Location,
		SalaryMin:     s.SalaryMin,
		SalaryMax:     s.SalaryMax,
		SalaryCount:   s.SalaryCount,
		Education:     s.Education,
		Experience:    s.Experience,
		Benefit:       s.Benefit,
		Description:   s.Description,
		PublishTime:   s.PublishTime,
		CompanyID:     s.CompanyID,
		CompanyName:   s.CompanyName,
		CompanyTags:   s.CompanyTags,
		CompanyAvatar: s.CompanyAvatar,
	}
	if staff {
		status, pass, hire, resumes := s.Status, s.PassNumber, s.HireNumber, s.Interviews
		dto.Status = &status
		dto.PassNumber = &pass
		dto.HireNumber = &hire
		dto.Resumes = &resumes
	}
	return dto
}

// DetailDTO is the full job view
type DetailDTO struct {
	ID             kernel.JobID      `json:"id"`
	Title          string            `json:"title"`
	Status         Status            `json:"status"`
	City           string            `json:"city"`
	Location       string            `json:"location"`
	SalaryMin      int               `json:"salary_min"`
	SalaryMax      int               `json:"salary_max"`
	SalaryCount    int               `json:"salary_count"`
	Education      string            `json:"education"`
	PassNumber     int               `json:"pass_number"`
	HireNumber     int               `json:"hire_number"`
	Experience     string            `json:"experience"`
	Benefit        string            `json:"benefit"`
	Description    string            `json:"description"`
	PublishTime    time.Time         `json:"publish_time"`
	Resumes        int               `json:"resumes"`
	CompanyID      *kernel.CompanyID `json:"company_id"`
	CompanyName    string            `json:"company_name"`
	CompanyTags    string            `json:"company_tags"`
	CompanySize    string            `json:"company_size"`
	CompanyWebsite string            `json:"company_website"`
	HasResume      bool              `json:"has_resume"`
	Applied        bool              `json:"applied"`
}

func (s Summary) ToDetailDTO() DetailDTO {
	return DetailDTO{
		ID:             s.ID,
		Title:          s.Title,
		Status:         s.Status,
		City:           s.City,
		Location:       s.Location,
		SalaryMin:      s.SalaryMin,
		SalaryMax:      s.SalaryMax,
		SalaryCount:    s.SalaryCount,
		Education:      s.Education,
		PassNumber:     s.PassNumber,
		HireNumber:     s.HireNumber,
		Experience:     s.Experience,
		Benefit:        s.Benefit,
		Description:    s.Description,
		PublishTime:    s.PublishTime,
		Resumes:        s.Resumes,
		CompanyID:      s.CompanyID,
		CompanyName:    s.CompanyName,
		CompanyTags:    s.CompanyTags,
		CompanySize:    s.CompanySize,
		CompanyWebsite: s.CompanyWebsite,
	}
}

// NameDTO is an entry of the job name picker
type NameDTO struct {
	ID    kernel.JobID `db:"id" json:"id"`
	Title string       `db:"title" json:"title"`
}

// ============================================================================
// Service DTOs
// ============================================================================

type CreateJobRequest struct {
	Title       string `json:"title"`
	City        string `json:"city"`
	Location    string `json:"location"`
	SalaryMin   int    `json:"salary_min"`
	SalaryMax   int    `json:"salary_max"`
	SalaryCount int    `json:"salary_count"`
	HireNumber  int    `json:"hire_number"`
	Experience  string `json:"experience"`
	Benefit     string `json:"benefit"`
	Education   string `json:"education"`
	Description string `json:"description"`
}

type UpdateJobRequest struct {
	Title       *string `json:"title,omitempty"`
	Status      *Status `json:"status,omitempty"`
	City        *string `json:"city,omitempty"`
	Location    *string `json:"location,omitempty"`
	SalaryMin   *int    `json:"salary_min,omitempty"`
	SalaryMax   *int    `json:"salary_max,omitempty"`
	SalaryCount *int    `json:"salary_count,omitempty"`
	HireNumber  *int    `json:"hire_number,omitempty"`
	Experience  *string `json:"experience,omitempty"`
	Benefit     *string `json:"benefit,omitempty"`
	Education   *string `json:"education,omitempty"`
	Description *string `json:"description,omitempty"`
}

// PublicFilter selects the public job list (published jobs only)
type PublicFilter struct {
	Query      string
	Education  string
	Experience string
	Newest     bool
	Page       kernel.Page
}

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("JOB")

var (
	CodeJobNotFound = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Job not found")
	CodeInvalidJob  = ErrRegistry.Register("INVALID", errx.TypeValidation, http.StatusBadRequest, "Invalid job data")
)

func ErrJobNotFound() *errx.Error {
	return ErrRegistry.New(CodeJobNotFound)
}

func ErrInvalidJob() *errx.Error {
	return ErrRegistry.New(CodeInvalidJob)
}
