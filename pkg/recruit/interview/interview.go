package interview

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mlinyun/Peekpa/pkg/errx"
	"github.com/mlinyun/Peekpa/pkg/iam/scopes"
	"github.com/mlinyun/Peekpa/pkg/iam/user"
	"github.com/mlinyun/Peekpa/pkg/kernel"
	"github.com/mlinyun/Peekpa/pkg/recruit/resume"
)

// ============================================================================
// Interview Entity
// ============================================================================

// Status is the stage code of an interview. Only StatusPassed and
// StatusHired carry meaning for the job lifecycle; the rest are stages the
// company defines for itself.
type Status int

const (
	StatusApplied Status = 0
	// StatusPassed marks a candidate who cleared the final stage
	StatusPassed Status = 4
	// StatusHired marks a finalized hire and is what the job quota counts
	StatusHired Status = 8
)

// IsInterviewing reports whether the interview is still in stages 0..3
func (s Status) IsInterviewing() bool {
	return s >= 0 && s <= 3
}

// InterviewingStatuses are the stage codes counted as in progress
var InterviewingStatuses = []Status{0, 1, 2, 3}

// Feedback is the free form evaluation stored as JSON
type Feedback map[string]any

func (f Feedback) Value() (driver.Value, error) {
	if f == nil {
		return "{}", nil
	}
	b, err := json.Marshal(f)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (f *Feedback) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*f = Feedback{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("interview: cannot scan %T into Feedback", src)
	}
	out := Feedback{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return err
		}
	}
	*f = out
	return nil
}

// Interview es la candidatura de un usuario a una oferta
type Interview struct {
	ID            kernel.InterviewID `db:"id" json:"id"`
	JobID         kernel.JobID       `db:"job_id" json:"job_id"`
	InterviewerID kernel.UserID      `db:"interviewer_id" json:"interviewer_id"`
	CandidateID   kernel.UserID      `db:"candidate_id" json:"candidate_id"`
	ResumeID      kernel.ResumeID    `db:"resume_id" json:"resume_id"`
	Status        Status             `db:"status" json:"status"`
	Feedback      Feedback           `db:"feedback" json:"feedback"`
	PublishTime   time.Time          `db:"publish_time" json:"publish_time"`
}

// NewInterview opens an application; the publisher of the job interviews
func NewInterview(jobID kernel.JobID, interviewer, candidate kernel.UserID, resumeID kernel.ResumeID, now time.Time) *Interview {
	return &Interview{
		JobID:         jobID,
		InterviewerID: interviewer,
		CandidateID:   candidate,
		ResumeID:      resumeID,
		Status:        StatusApplied,
		Feedback:      Feedback{},
		PublishTime:   now,
	}
}

// Apply merges a partial update. Fields left nil keep their value.
func (i *Interview) Apply(req UpdateInterviewRequest) error {
	if req.Status != nil {
		if *req.Status < 0 {
			return ErrInvalidStatus().WithDetail("status", *req.Status)
		}
		i.Status = *req.Status
	}
	if req.Feedback != nil {
		i.Feedback = *req.Feedback
	}
	return nil
}

// ============================================================================
// DTOs
// ============================================================================

// JobRefDTO is the job block embedded in an interview
type JobRefDTO struct {
	ID         kernel.JobID `json:"id"`
	PassNumber int          `json:"pass_number"`
	HireNumber int          `json:"hire_number"`
	Title      string       `json:"title"`
}

// InvitationRef is the current invitation block embedded in an interview
type InvitationRef struct {
	ID          kernel.InvitationID `json:"id"`
	Response    int                 `json:"response"`
	PublishTime time.Time           `json:"publish_time"`
	DueTime     time.Time           `json:"due_time"`
	Message     string              `json:"message"`
	UpdateTime  time.Time           `json:"update_time"`
}

// DTO is the management view of an interview
type DTO struct {
	ID          kernel.InterviewID `json:"id"`
	Job         JobRefDTO          `json:"job"`
	Interviewer string             `json:"interviewer"`
	Candidate   user.CandidateDTO  `json:"candidate"`
	Resume      resume.RefDTO      `json:"resume"`
	Status      Status             `json:"status"`
	Feedback    Feedback           `json:"feedback"`
	Invitation  *InvitationRef     `json:"invitation"`
	PublishTime time.Time          `json:"publish_time"`
}

// ============================================================================
// Service DTOs
// ============================================================================

type UpdateInterviewRequest struct {
	Status   *Status   `json:"status,omitempty"`
	Feedback *Feedback `json:"feedback,omitempty"`
}

// PassesCandidate reports whether the update sets the passed status
func (r UpdateInterviewRequest) PassesCandidate() bool {
	return r.Status != nil && *r.Status == StatusPassed
}

// ListFilter selects interviews; a nil JobID means every job of the company
type ListFilter struct {
	JobID *kernel.JobID
	Own   scopes.Ownership
}

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("INTERVIEW")

var (
	CodeInterviewNotFound = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Interview not found")
	CodeInvalidStatus     = ErrRegistry.Register("INVALID_STATUS", errx.TypeValidation, http.StatusBadRequest, "Invalid interview status")
	CodeStaffCannotApply  = ErrRegistry.Register("STAFF_CANNOT_APPLY", errx.TypeBusiness, http.StatusBadRequest, "Company accounts cannot apply to jobs")
)

func ErrInterviewNotFound() *errx.Error {
	return ErrRegistry.New(CodeInterviewNotFound)
}

func ErrInvalidStatus() *errx.Error {
	return ErrRegistry.New(CodeInvalidStatus)
}

func ErrStaffCannotApply() *errx.Error {
	return ErrRegistry.New(CodeStaffCannotApply)
}
