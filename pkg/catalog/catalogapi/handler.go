package catalogapi

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/mlinyun/Peekpa/pkg/catalog"
	"github.com/mlinyun/Peekpa/pkg/errx"
	"github.com/mlinyun/Peekpa/pkg/iam/auth"
	"github.com/mlinyun/Peekpa/pkg/iam/company"
	"github.com/mlinyun/Peekpa/pkg/iam/scopes"
	"github.com/mlinyun/Peekpa/pkg/recruit/job"
)

// JobFeed fills the job panels
type JobFeed interface {
	Random(ctx context.Context, scope scopes.Scope, n int) ([]job.ListDTO, error)
	Newest(ctx context.Context, scope scopes.Scope, n int) ([]job.ListDTO, error)
}

// CompanyFeed fills the company panels
type CompanyFeed interface {
	TopByInterviews(ctx context.Context, n int) ([]company.ListDTO, error)
	Random(ctx context.Context, n int) ([]company.ListDTO, error)
}

type JobPanel struct {
	Name string        `json:"name"`
	Jobs []job.ListDTO `json:"jobs"`
}

type CompanyPanel struct {
	Name      string            `json:"name"`
	Companies []company.ListDTO `json:"companies"`
}

// Index es la respuesta de la portada
type Index struct {
	Categories         []catalog.Category `json:"categories"`
	Banners            []catalog.Banner   `json:"banners"`
	RecommendJobs      []JobPanel         `json:"recommend_jobs"`
	RecommendCompanies []CompanyPanel     `json:"recommend_companies"`
}

type CatalogHandlers struct {
	catalog   *catalog.Catalog
	jobs      JobFeed
	companies CompanyFeed
}

func NewCatalogHandlers(c *catalog.Catalog, jobs JobFeed, companies CompanyFeed) *CatalogHandlers {
	return &CatalogHandlers{catalog: c, jobs: jobs, companies: companies}
}

func (h *CatalogHandlers) RegisterRoutes(router fiber.Router, mw *auth.Middleware) {
	router.Get("/index", mw.Optional(), h.Index)
}

// Index arma la portada a partir del catálogo estático
func (h *CatalogHandlers) Index(c *fiber.Ctx) error {
	idx, err := h.build(c.Context(), auth.ScopeOf(c))
	if err != nil {
		return err
	}
	return c.JSON(idx)
}

func (h *CatalogHandlers) build(ctx context.Context, scope scopes.Scope) (*Index, error) {
	idx := &Index{
		Categories:         h.catalog.Categories,
		Banners:            h.catalog.Banners,
		RecommendJobs:      make([]JobPanel, 0, len(h.catalog.RecommendJobs)),
		RecommendCompanies: make([]CompanyPanel, 0, len(h.catalog.RecommendCompanies)),
	}

	for _, s := range h.catalog.RecommendJobs {
		var (
			jobs []job.ListDTO
			err  error
		)
		switch s.Source {
		case catalog.SourceNewest:
			jobs, err = h.jobs.Newest(ctx, scope, s.Size)
		default:
			jobs, err = h.jobs.Random(ctx, scope, s.Size)
		}
		if err != nil {
			return nil, errx.Wrap(err, "failed to build job panel", errx.TypeInternal).WithDetail("panel", s.Name)
		}
		idx.RecommendJobs = append(idx.RecommendJobs, JobPanel{Name: s.Name, Jobs: jobs})
	}

	for _, s := range h.catalog.RecommendCompanies {
		var (
			companies []company.ListDTO
			err       error
		)
		switch s.Source {
		case catalog.SourceTop:
			companies, err = h.companies.TopByInterviews(ctx, s.Size)
		default:
			companies, err = h.companies.Random(ctx, s.Size)
		}
		if err != nil {
			return nil, errx.Wrap(err, "failed to build company panel", errx.TypeInternal).WithDetail("panel", s.Name)
		}
		idx.RecommendCompanies = append(idx.RecommendCompanies, CompanyPanel{Name: s.Name, Companies: companies})
	}
	return idx, nil
}
