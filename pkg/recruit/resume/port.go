package resume

import (
	"context"

	"github.com/mlinyun/Peekpa/pkg/kernel"
)

// ResumeRepository define el contrato para la persistencia de CVs
type ResumeRepository interface {
	Create(ctx context.Context, r *Resume) error
	FindByID(ctx context.Context, id kernel.ResumeID) (*Resume, error)
	FindActive(ctx context.Context, userID kernel.UserID) (*Resume, error)
	// ListUnused returns the user's resumes that no interview references
	ListUnused(ctx context.Context, userID kernel.UserID) ([]*Resume, error)
	DeactivateAll(ctx context.Context, userID kernel.UserID) error
	Delete(ctx context.Context, ids []kernel.ResumeID) error
	// ListOrphans returns inactive resumes that no interview references
	ListOrphans(ctx context.Context, limit int) ([]*Resume, error)
}
