package company

import (
	"context"

	"github.com/mlinyun/Peekpa/pkg/kernel"
)

// CompanyRepository define el contrato para la persistencia de empresas
type CompanyRepository interface {
	FindByID(ctx context.Context, id kernel.CompanyID) (*Company, error)
	FindAll(ctx context.Context) ([]*Company, error)
	Create(ctx context.Context, c *Company) error
	Update(ctx context.Context, c Company) error

	List(ctx context.Context, filter ListFilter) ([]Summary, int, error)
	// TopByInterviews orders companies by the number of interviews on their jobs
	TopByInterviews(ctx context.Context, n int) ([]Summary, error)
	Random(ctx context.Context, n int) ([]Summary, error)
}
