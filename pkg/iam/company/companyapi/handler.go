package companyapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mlinyun/Peekpa/pkg/httpx"
	"github.com/mlinyun/Peekpa/pkg/iam/auth"
	"github.com/mlinyun/Peekpa/pkg/iam/company"
	"github.com/mlinyun/Peekpa/pkg/iam/company/companysrv"
	"github.com/mlinyun/Peekpa/pkg/kernel"
)

// CompanyHandlers maneja las rutas de empresas con Fiber
type CompanyHandlers struct {
	service *companysrv.CompanyService
}

func NewCompanyHandlers(service *companysrv.CompanyService) *CompanyHandlers {
	return &CompanyHandlers{service: service}
}

func (h *CompanyHandlers) RegisterRoutes(router fiber.Router, mw *auth.Middleware) {
	public := router.Group("/companies")
	public.Get("/", h.List)
	public.Get("/:id", mw.Optional(), h.Get)

	own := router.Group("/manage/company")
	own.Get("/", mw.Authenticate(), h.GetOwn)
	own.Patch("/", mw.Authenticate(), h.UpdateOwn)
	own.Put("/", httpx.NotImplemented)

	admin := router.Group("/admin/company")
	admin.Get("/", mw.Authenticate(), h.ListWithManagers)
	admin.Post("/", mw.Authenticate(), h.CreateWithManager)
}

// List busca empresas; order=job ordena por número de ofertas
func (h *CompanyHandlers) List(c *fiber.Ctx) error {
	filter := company.ListFilter{
		Query:       c.Query("q"),
		Tag:         c.Query("tag"),
		Size:        c.Query("size"),
		OrderByJobs: c.Query("order") == "job",
		Page:        httpx.PageOf(c),
	}
	res, err := h.service.List(c.Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(res)
}

func (h *CompanyHandlers) Get(c *fiber.Ctx) error {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return err
	}
	res, err := h.service.Get(c.Context(), auth.ScopeOf(c), kernel.CompanyID(id))
	if err != nil {
		return err
	}
	return c.JSON(res)
}

func (h *CompanyHandlers) GetOwn(c *fiber.Ctx) error {
	res, err := h.service.GetOwn(c.Context(), auth.ScopeOf(c))
	if err != nil {
		return err
	}
	return c.JSON(res)
}

// UpdateOwn solo para el manager de la empresa
func (h *CompanyHandlers) UpdateOwn(c *fiber.Ctx) error {
	var req company.UpdateCompanyRequest
	if err := httpx.Bind(c, &req); err != nil {
		return err
	}
	res, err := h.service.UpdateOwn(c.Context(), auth.ScopeOf(c), req)
	if err != nil {
		return err
	}
	return c.JSON(res)
}

func (h *CompanyHandlers) ListWithManagers(c *fiber.Ctx) error {
	res, err := h.service.ListWithManagers(c.Context(), auth.ScopeOf(c))
	if err != nil {
		return err
	}
	return c.JSON(res)
}

// CreateWithManager crea la empresa y su primer manager en una transacción
func (h *CompanyHandlers) CreateWithManager(c *fiber.Ctx) error {
	var req company.CreateCompanyRequest
	if err := httpx.Bind(c, &req); err != nil {
		return err
	}
	res, err := h.service.CreateWithManager(c.Context(), auth.ScopeOf(c), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}
