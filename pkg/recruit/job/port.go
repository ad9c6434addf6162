package job

import (
	"context"

	"github.com/mlinyun/Peekpa/pkg/iam/scopes"
	"github.com/mlinyun/Peekpa/pkg/kernel"
)

// JobRepository define el contrato para la persistencia de ofertas.
// Scoped methods apply the Ownership filter: company_id must match and,
// when an owner is set, a PublishJob row must name that owner.
type JobRepository interface {
	Create(ctx context.Context, j *Job) error
	Update(ctx context.Context, j Job) error
	FindByID(ctx context.Context, id kernel.JobID) (*Job, error)
	// FindByIDForUpdate locks the row until the surrounding transaction ends
	FindByIDForUpdate(ctx context.Context, id kernel.JobID) (*Job, error)

	CreatePublishJob(ctx context.Context, p *PublishJob) error
	FindPublisher(ctx context.Context, jobID kernel.JobID) (kernel.UserID, error)
	AddResume(ctx context.Context, jobID kernel.JobID, resumeID kernel.ResumeID) error

	FindScoped(ctx context.Context, id kernel.JobID, own scopes.Ownership) (*Summary, error)
	ListScoped(ctx context.Context, own scopes.Ownership, query string, page kernel.Page) ([]Summary, int, error)
	ListNamesScoped(ctx context.Context, own scopes.Ownership) ([]NameDTO, error)

	FindPublished(ctx context.Context, id kernel.JobID) (*Summary, error)
	ListPublished(ctx context.Context, filter PublicFilter) ([]Summary, int, error)
	ListPublishedByCompany(ctx context.Context, companyID kernel.CompanyID) ([]Summary, error)
	RandomPublished(ctx context.Context, n int) ([]Summary, error)
	NewestPublished(ctx context.Context, n int) ([]Summary, error)
}
