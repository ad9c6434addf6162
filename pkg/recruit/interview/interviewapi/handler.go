package interviewapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mlinyun/Peekpa/pkg/httpx"
	"github.com/mlinyun/Peekpa/pkg/iam/auth"
	"github.com/mlinyun/Peekpa/pkg/kernel"
	"github.com/mlinyun/Peekpa/pkg/recruit/interview"
	"github.com/mlinyun/Peekpa/pkg/recruit/interview/interviewsrv"
)

// allJobs selects the interviews of every job in scope
const allJobs = "all"

// InterviewHandlers maneja candidaturas y su seguimiento
type InterviewHandlers struct {
	service *interviewsrv.InterviewService
}

func NewInterviewHandlers(service *interviewsrv.InterviewService) *InterviewHandlers {
	return &InterviewHandlers{service: service}
}

func (h *InterviewHandlers) RegisterRoutes(router fiber.Router, mw *auth.Middleware) {
	router.Post("/jobs/:id/apply", mw.Authenticate(), h.Apply)

	manage := router.Group("/manage/job/:id/interview")
	manage.Get("/", mw.Authenticate(), h.List)
	manage.Get("/:iid", mw.Authenticate(), h.Get)
	manage.Patch("/:iid", mw.Authenticate(), h.Update)
	manage.Put("/:iid", httpx.NotImplemented)
}

// Apply crea la candidatura del usuario autenticado
func (h *InterviewHandlers) Apply(c *fiber.Ctx) error {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return err
	}
	i, err := h.service.Apply(c.Context(), auth.ScopeOf(c), kernel.JobID(id))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"id": i.ID, "job_id": i.JobID, "status": i.Status})
}

// List accepts "all" in place of the job id
func (h *InterviewHandlers) List(c *fiber.Ctx) error {
	var jobID *kernel.JobID
	if c.Params("id") != allJobs {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		jid := kernel.JobID(id)
		jobID = &jid
	}
	res, err := h.service.List(c.Context(), auth.ScopeOf(c), jobID)
	if err != nil {
		return err
	}
	return c.JSON(res)
}

func (h *InterviewHandlers) Get(c *fiber.Ctx) error {
	jobID, id, err := ids(c)
	if err != nil {
		return err
	}
	res, err := h.service.Get(c.Context(), auth.ScopeOf(c), jobID, id)
	if err != nil {
		return err
	}
	return c.JSON(res)
}

// Update cambia estado o feedback; el estado 4 puede cerrar la oferta
func (h *InterviewHandlers) Update(c *fiber.Ctx) error {
	jobID, id, err := ids(c)
	if err != nil {
		return err
	}
	var req interview.UpdateInterviewRequest
	if err := httpx.Bind(c, &req); err != nil {
		return err
	}
	res, err := h.service.Update(c.Context(), auth.ScopeOf(c), jobID, id, req)
	if err != nil {
		return err
	}
	return c.JSON(res)
}

func ids(c *fiber.Ctx) (kernel.JobID, kernel.InterviewID, error) {
	jobID, err := httpx.ParamID(c, "id")
	if err != nil {
		return 0, 0, err
	}
	id, err := httpx.ParamID(c, "iid")
	if err != nil {
		return 0, 0, err
	}
	return kernel.JobID(jobID), kernel.InterviewID(id), nil
}
