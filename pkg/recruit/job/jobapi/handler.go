package jobapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mlinyun/Peekpa/pkg/httpx"
	"github.com/mlinyun/Peekpa/pkg/iam/auth"
	"github.com/mlinyun/Peekpa/pkg/kernel"
	"github.com/mlinyun/Peekpa/pkg/recruit/job"
	"github.com/mlinyun/Peekpa/pkg/recruit/job/jobsrv"
)

// JobHandlers maneja las rutas públicas y de gestión de ofertas
type JobHandlers struct {
	service *jobsrv.JobService
}

func NewJobHandlers(service *jobsrv.JobService) *JobHandlers {
	return &JobHandlers{service: service}
}

// RegisterRoutes registra las rutas de ofertas en Fiber
func (h *JobHandlers) RegisterRoutes(router fiber.Router, mw *auth.Middleware) {
	public := router.Group("/jobs")
	public.Get("/", mw.Optional(), h.ListPublished)
	public.Get("/:id", mw.Optional(), h.GetPublished)

	manage := router.Group("/manage/job")
	manage.Get("/", mw.Authenticate(), h.List)
	manage.Post("/", mw.Authenticate(), h.Create)
	manage.Get("/names", mw.Authenticate(), h.Names)
	manage.Get("/:id", mw.Authenticate(), h.Get)
	manage.Patch("/:id", mw.Authenticate(), h.Update)
	manage.Put("/:id", httpx.NotImplemented)
}

// ListPublished lista las ofertas abiertas
func (h *JobHandlers) ListPublished(c *fiber.Ctx) error {
	filter := job.PublicFilter{
		Query:      c.Query("q"),
		Education:  c.Query("education"),
		Experience: c.Query("experience"),
		Newest:     c.Query("order") == "newest",
		Page:       httpx.PageOf(c),
	}
	res, err := h.service.ListPublished(c.Context(), auth.ScopeOf(c), filter)
	if err != nil {
		return err
	}
	return c.JSON(res)
}

func (h *JobHandlers) GetPublished(c *fiber.Ctx) error {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return err
	}
	res, err := h.service.GetPublished(c.Context(), auth.ScopeOf(c), kernel.JobID(id))
	if err != nil {
		return err
	}
	return c.JSON(res)
}

// ============================================================================
// Management
// ============================================================================

func (h *JobHandlers) List(c *fiber.Ctx) error {
	res, err := h.service.ListForScope(c.Context(), auth.ScopeOf(c), c.Query("q"), httpx.PageOf(c))
	if err != nil {
		return err
	}
	return c.JSON(res)
}

// Create publica una oferta para la empresa del staff
func (h *JobHandlers) Create(c *fiber.Ctx) error {
	var req job.CreateJobRequest
	if err := httpx.Bind(c, &req); err != nil {
		return err
	}
	j, err := h.service.Create(c.Context(), auth.ScopeOf(c), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(j)
}

func (h *JobHandlers) Names(c *fiber.Ctx) error {
	res, err := h.service.Names(c.Context(), auth.ScopeOf(c))
	if err != nil {
		return err
	}
	return c.JSON(res)
}

func (h *JobHandlers) Get(c *fiber.Ctx) error {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return err
	}
	res, err := h.service.GetForScope(c.Context(), auth.ScopeOf(c), kernel.JobID(id))
	if err != nil {
		return err
	}
	return c.JSON(res)
}

func (h *JobHandlers) Update(c *fiber.Ctx) error {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return err
	}
	var req job.UpdateJobRequest
	if err := httpx.Bind(c, &req); err != nil {
		return err
	}
	res, err := h.service.UpdateForScope(c.Context(), auth.ScopeOf(c), kernel.JobID(id), req)
	if err != nil {
		return err
	}
	return c.JSON(res)
}
