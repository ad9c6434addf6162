package dashboardsrv

import (
	"context"

	"github.com/mlinyun/Peekpa/pkg/errx"
	"github.com/mlinyun/Peekpa/pkg/iam/scopes"
	"github.com/mlinyun/Peekpa/pkg/kernel"
	"github.com/mlinyun/Peekpa/pkg/recruit/dashboard"
)

type DashboardService struct {
	repo dashboard.Repository
	now  kernel.Clock
}

func NewDashboardService(repo dashboard.Repository) *DashboardService {
	return &DashboardService{repo: repo, now: kernel.SystemClock}
}

func (s *DashboardService) WithClock(c kernel.Clock) *DashboardService {
	s.now = c
	return s
}

// Get builds the overview of the scope's company. Every staff member sees
// company-wide figures, whatever their role.
func (s *DashboardService) Get(ctx context.Context, scope scopes.Scope) (*dashboard.Dashboard, error) {
	if err := scope.RequireStaff(); err != nil {
		return nil, err
	}
	d, err := s.repo.Summary(ctx, scope.CompanyOnly().CompanyID, s.now())
	if err != nil {
		return nil, errx.Wrap(err, "failed to build dashboard", errx.TypeInternal)
	}
	return d, nil
}
