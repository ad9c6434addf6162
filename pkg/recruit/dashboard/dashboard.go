package dashboard

import (
	"context"
	"time"

	"github.com/mlinyun/Peekpa/pkg/kernel"
)

// RecentItem is a row of the "new jobs" and "new interviews" panels. For
// interviews ID and Title describe the job applied to.
type RecentItem struct {
	ID          kernel.JobID `db:"id" json:"id"`
	Title       string       `db:"title" json:"title"`
	PublishTime time.Time    `db:"publish_time" json:"publish_time"`
}

// Dashboard is the company overview shown on the management home page
type Dashboard struct {
	JobsTotal        int          `json:"jobs_total"`
	JobsOpen         int          `json:"jobs_open"`
	JobsFinish       int          `json:"jobs_finish"`
	JobsClose        int          `json:"jobs_close"`
	Interviewing     int          `json:"interviewing"`
	Resumes          int          `json:"resumes"`
	InvitationNumber int          `json:"invitation_number"`
	ResumesNew       int          `json:"resumes_new"`
	UsersNumber      int          `json:"users_number"`
	HiredNumber      int          `json:"hired_number"`
	PassNumber       int          `json:"pass_number"`
	NewJobs          []RecentItem `json:"new_jobs"`
	NewInterviews    []RecentItem `json:"new_interviews"`
}

// RecentLimit is the size of the "new" panels
const RecentLimit = 5

// Repository computes the projection for one company. day selects the
// calendar day counted by ResumesNew.
type Repository interface {
	Summary(ctx context.Context, companyID kernel.CompanyID, day time.Time) (*Dashboard, error)
}
