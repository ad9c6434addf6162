package invitation

import (
	"net/http"
	"strings"
	"time"

	"github.com/mlinyun/Peekpa/pkg/errx"
	"github.com/mlinyun/Peekpa/pkg/iam/user"
	"github.com/mlinyun/Peekpa/pkg/kernel"
	"github.com/mlinyun/Peekpa/pkg/recruit/interview"
)

// ============================================================================
// Invitation Entity
// ============================================================================

// Response is the candidate's answer to an invitation
type Response int

const (
	ResponseUnresponded Response = 0
	ResponseAccepted    Response = 1
	ResponseDeclined    Response = 2
	ResponseCancelled   Response = 3
)

func (r Response) Valid() bool {
	return r >= ResponseUnresponded && r <= ResponseCancelled
}

// DefaultDuePeriod is how long a candidate has to answer
const DefaultDuePeriod = 3 * 24 * time.Hour

// Invitation es una convocatoria a una etapa de una entrevista. Status is a
// snapshot of the interview stage it was issued for.
type Invitation struct {
	ID            kernel.InvitationID `db:"id" json:"id"`
	InterviewID   kernel.InterviewID  `db:"interview_id" json:"interview_id"`
	Status        interview.Status    `db:"status" json:"status"`
	Message       string              `db:"message" json:"message"`
	InterviewerID kernel.UserID       `db:"interviewer_id" json:"interviewer_id"`
	CandidateID   kernel.UserID       `db:"candidate_id" json:"candidate_id"`
	Response      Response            `db:"response" json:"response"`
	PublishTime   time.Time           `db:"publish_time" json:"publish_time"`
	UpdateTime    time.Time           `db:"update_time" json:"update_time"`
	DueTime       time.Time           `db:"due_time" json:"due_time"`
}

// New issues an invitation at now. DueTime is fixed here and never
// recomputed afterwards.
func New(interviewID kernel.InterviewID, status interview.Status, message string, interviewer, candidate kernel.UserID, now time.Time, due time.Duration) *Invitation {
	if due <= 0 {
		due = DefaultDuePeriod
	}
	return &Invitation{
		InterviewID:   interviewID,
		Status:        status,
		Message:       strings.TrimSpace(message),
		InterviewerID: interviewer,
		CandidateID:   candidate,
		Response:      ResponseUnresponded,
		PublishTime:   now,
		UpdateTime:    now,
		DueTime:       now.Add(due),
	}
}

// ============================================================================
// Domain Methods
// ============================================================================

// Touch refreshes update_time; every save goes through it
func (i *Invitation) Touch(now time.Time) {
	i.UpdateTime = now
}

// Respond records the candidate answer
func (i *Invitation) Respond(r Response) error {
	if !r.Valid() {
		return ErrInvalidResponse().WithDetail("response", int(r))
	}
	i.Response = r
	return nil
}

// Apply merges a staff side partial update
func (i *Invitation) Apply(req UpdateInvitationRequest) error {
	if req.Status != nil {
		if *req.Status < 0 {
			return interview.ErrInvalidStatus().WithDetail("status", int(*req.Status))
		}
		i.Status = *req.Status
	}
	if req.Message != nil {
		i.Message = strings.TrimSpace(*req.Message)
	}
	if req.Response != nil {
		if err := i.Respond(*req.Response); err != nil {
			return err
		}
	}
	return nil
}

// Current selects the invitation whose status snapshot equals the live
// interview status. invs must be ordered by id; the first match wins.
func Current(invs []*Invitation, status interview.Status) *Invitation {
	for _, inv := range invs {
		if inv.Status == status {
			return inv
		}
	}
	return nil
}

// ToRef renders the block embedded in an interview
func (i *Invitation) ToRef() *interview.InvitationRef {
	return &interview.InvitationRef{
		ID:          i.ID,
		Response:    int(i.Response),
		PublishTime: i.PublishTime,
		DueTime:     i.DueTime,
		Message:     i.Message,
		UpdateTime:  i.UpdateTime,
	}
}

// ============================================================================
// DTOs
// ============================================================================

// JobRefDTO is the job block of an invitation
type JobRefDTO struct {
	ID    kernel.JobID `json:"id"`
	Title string       `json:"title"`
}

// DTO is the full invitation view
type DTO struct {
	ID          kernel.InvitationID `json:"id"`
	Message     string              `json:"message"`
	Status      interview.Status    `json:"status"`
	Response    Response            `json:"response"`
	Candidate   user.CandidateDTO   `json:"candidate"`
	Job         JobRefDTO           `json:"job"`
	PublishTime time.Time           `json:"publish_time"`
	DueTime     time.Time           `json:"due_time"`
	UpdateTime  time.Time           `json:"update_time"`
}

// ============================================================================
// Service DTOs
// ============================================================================

// CreateInvitationRequest is sent by staff; UserUID names the candidate
type CreateInvitationRequest struct {
	UserUID kernel.UserID    `json:"user_uid"`
	Status  interview.Status `json:"status"`
	Message string           `json:"message"`
}

// RespondRequest is the candidate answer
type RespondRequest struct {
	Response *Response `json:"response"`
}

// UpdateInvitationRequest is the staff side partial update
type UpdateInvitationRequest struct {
	Message  *string           `json:"message,omitempty"`
	Status   *interview.Status `json:"status,omitempty"`
	Response *Response         `json:"response,omitempty"`
}

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("INVITATION")

var (
	CodeInvitationNotFound = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Invitation not found")
	CodeInvalidResponse    = ErrRegistry.Register("INVALID_RESPONSE", errx.TypeValidation, http.StatusBadRequest, "Response must be between 0 and 3")
	CodeMissingCandidate   = ErrRegistry.Register("MISSING_CANDIDATE", errx.TypeValidation, http.StatusBadRequest, "user_uid is required")
)

func ErrInvitationNotFound() *errx.Error {
	return ErrRegistry.New(CodeInvitationNotFound)
}

func ErrInvalidResponse() *errx.Error {
	return ErrRegistry.New(CodeInvalidResponse)
}

func ErrMissingCandidate() *errx.Error {
	return ErrRegistry.New(CodeMissingCandidate)
}
