package companysrv

import (
	"context"
	"strings"

	"github.com/mlinyun/Peekpa/pkg/dbx"
	"github.com/mlinyun/Peekpa/pkg/errx"
	"github.com/mlinyun/Peekpa/pkg/iam/company"
	"github.com/mlinyun/Peekpa/pkg/iam/scopes"
	"github.com/mlinyun/Peekpa/pkg/iam/user"
	"github.com/mlinyun/Peekpa/pkg/kernel"
	"github.com/mlinyun/Peekpa/pkg/logx"
	"github.com/mlinyun/Peekpa/pkg/recruit/job"
)

// ManagerCreator creates the first manager of a new company
type ManagerCreator interface {
	CreateManager(ctx context.Context, companyID kernel.CompanyID, req user.CreateStaffRequest) (*user.User, error)
}

// CompanyService gestiona el perfil de las empresas
type CompanyService struct {
	companyRepo company.CompanyRepository
	userRepo    user.UserRepository
	jobRepo     job.JobRepository
	managers    ManagerCreator
	tx          dbx.TxManager
}

func NewCompanyService(
	companyRepo company.CompanyRepository,
	userRepo user.UserRepository,
	jobRepo job.JobRepository,
	managers ManagerCreator,
	tx dbx.TxManager,
) *CompanyService {
	return &CompanyService{
		companyRepo: companyRepo,
		userRepo:    userRepo,
		jobRepo:     jobRepo,
		managers:    managers,
		tx:          tx,
	}
}

// DetailDTO is the public company page with its open jobs
type DetailDTO struct {
	ID          kernel.CompanyID `json:"id"`
	Name        string           `json:"name"`
	Slogan      string           `json:"slogan"`
	Avatar      string           `json:"avatar"`
	Tags        string           `json:"tags"`
	Size        string           `json:"size"`
	Website     string           `json:"website"`
	Description string           `json:"description"`
	Jobs        []job.ListDTO    `json:"jobs"`
}

// ============================================================================
// Public
// ============================================================================

func (s *CompanyService) List(ctx context.Context, filter company.ListFilter) (*kernel.Paginated[company.ListDTO], error) {
	rows, total, err := s.companyRepo.List(ctx, filter)
	if err != nil {
		return nil, errx.Wrap(err, "failed to list companies", errx.TypeInternal)
	}
	return &kernel.Paginated[company.ListDTO]{Count: total, Results: toListDTOs(rows)}, nil
}

// Get returns the company page; job counters are shown to staff only
func (s *CompanyService) Get(ctx context.Context, scope scopes.Scope, id kernel.CompanyID) (*DetailDTO, error) {
	c, err := s.companyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	jobs, err := s.jobRepo.ListPublishedByCompany(ctx, id)
	if err != nil {
		return nil, errx.Wrap(err, "failed to list company jobs", errx.TypeInternal)
	}

	dto := &DetailDTO{
		ID:          c.ID,
		Name:        c.Name,
		Slogan:      c.Slogan,
		Avatar:      c.Avatar,
		Tags:        c.Tags,
		Size:        c.Size,
		Website:     c.Website,
		Description: c.Description,
		Jobs:        make([]job.ListDTO, 0, len(jobs)),
	}
	for _, j := range jobs {
		dto.Jobs = append(dto.Jobs, j.ToListDTO(scope.IsStaff))
	}
	return dto, nil
}

// TopByInterviews y Random alimentan la portada
func (s *CompanyService) TopByInterviews(ctx context.Context, n int) ([]company.ListDTO, error) {
	rows, err := s.companyRepo.TopByInterviews(ctx, n)
	if err != nil {
		return nil, errx.Wrap(err, "failed to rank companies", errx.TypeInternal)
	}
	return toListDTOs(rows), nil
}

func (s *CompanyService) Random(ctx context.Context, n int) ([]company.ListDTO, error) {
	rows, err := s.companyRepo.Random(ctx, n)
	if err != nil {
		return nil, errx.Wrap(err, "failed to sample companies", errx.TypeInternal)
	}
	return toListDTOs(rows), nil
}

func toListDTOs(rows []company.Summary) []company.ListDTO {
	out := make([]company.ListDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ToDTO())
	}
	return out
}

// ============================================================================
// Own company (staff)
// ============================================================================

// GetOwn devuelve la empresa del staff autenticado
func (s *CompanyService) GetOwn(ctx context.Context, scope scopes.Scope) (*company.Company, error) {
	if err := scope.RequireStaff(); err != nil {
		return nil, err
	}
	if !scope.HasCompany() {
		return nil, company.ErrNoCompany()
	}
	return s.companyRepo.FindByID(ctx, scope.CompanyID)
}

// UpdateOwn lets a manager edit the company profile
func (s *CompanyService) UpdateOwn(ctx context.Context, scope scopes.Scope, req company.UpdateCompanyRequest) (*company.Company, error) {
	if err := scope.RequireManager(); err != nil {
		return nil, err
	}
	c, err := s.GetOwn(ctx, scope)
	if err != nil {
		return nil, err
	}
	if err := c.Apply(req); err != nil {
		return nil, err
	}
	if err := s.companyRepo.Update(ctx, *c); err != nil {
		return nil, errx.Wrap(err, "failed to update company", errx.TypeInternal)
	}
	return c, nil
}

// ============================================================================
// Platform administration (superuser)
// ============================================================================

// ListWithManagers lists every company with its first manager
func (s *CompanyService) ListWithManagers(ctx context.Context, scope scopes.Scope) ([]company.AdminDTO, error) {
	if err := scope.RequireSuperuser(); err != nil {
		return nil, err
	}

	companies, err := s.companyRepo.FindAll(ctx)
	if err != nil {
		return nil, errx.Wrap(err, "failed to list companies", errx.TypeInternal)
	}

	out := make([]company.AdminDTO, 0, len(companies))
	for _, c := range companies {
		dto := company.AdminDTO{ID: c.ID, Name: c.Name, Website: c.Website}
		m, err := s.userRepo.FindManager(ctx, c.ID)
		switch {
		case err == nil:
			md := m.ToManagerDTO()
			dto.User = &md
		case !errx.IsType(err, errx.TypeNotFound):
			return nil, errx.Wrap(err, "failed to load company manager", errx.TypeInternal)
		}
		out = append(out, dto)
	}
	return out, nil
}

// CreateWithManager creates a company and its first manager atomically
func (s *CompanyService) CreateWithManager(ctx context.Context, scope scopes.Scope, req company.CreateCompanyRequest) (*company.AdminDTO, error) {
	if err := scope.RequireSuperuser(); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, company.ErrInvalidName()
	}

	c := &company.Company{
		Name:        name,
		Website:     req.Website,
		Avatar:      req.Avatar,
		Slogan:      req.Slogan,
		Tags:        req.Tags,
		Size:        req.Size,
		Description: req.Description,
	}

	var manager *user.User
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.companyRepo.Create(ctx, c); err != nil {
			return err
		}
		var err error
		manager, err = s.managers.CreateManager(ctx, c.ID, user.CreateStaffRequest{
			Email:     req.Email,
			Password:  req.Password,
			FirstName: req.FirstName,
			LastName:  req.LastName,
		})
		return err
	})
	if err != nil {
		return nil, errx.Wrap(err, "failed to create company", errx.TypeInternal)
	}

	logx.WithFields(logx.Fields{
		"company_id": c.ID,
		"manager_id": manager.ID,
	}).Info("company created")

	md := manager.ToManagerDTO()
	return &company.AdminDTO{ID: c.ID, Name: c.Name, Website: c.Website, User: &md}, nil
}
