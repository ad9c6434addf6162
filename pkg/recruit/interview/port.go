package interview

import (
	"context"

	"github.com/mlinyun/Peekpa/pkg/iam/scopes"
	"github.com/mlinyun/Peekpa/pkg/kernel"
)

// InterviewRepository define el contrato para la persistencia de entrevistas.
// The company predicate of scoped lookups follows the job's PublishJob row to
// the publisher's company; the owner predicate matches the interviewer.
type InterviewRepository interface {
	Create(ctx context.Context, i *Interview) error
	Update(ctx context.Context, i Interview) error
	FindByID(ctx context.Context, id kernel.InterviewID) (*Interview, error)

	FindScoped(ctx context.Context, jobID kernel.JobID, id kernel.InterviewID, own scopes.Ownership) (*Interview, error)
	ListScoped(ctx context.Context, filter ListFilter) ([]*Interview, error)

	CountByJobAndStatus(ctx context.Context, jobID kernel.JobID, status Status) (int, error)
	HasApplied(ctx context.Context, jobID kernel.JobID, candidateID kernel.UserID) (bool, error)
}
