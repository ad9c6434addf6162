package resumeapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mlinyun/Peekpa/pkg/httpx"
	"github.com/mlinyun/Peekpa/pkg/iam/auth"
	"github.com/mlinyun/Peekpa/pkg/recruit/resume/resumesrv"
)

// uploadField is the multipart field carrying the file
const uploadField = "resume"

type ResumeHandlers struct {
	service *resumesrv.ResumeService
}

func NewResumeHandlers(service *resumesrv.ResumeService) *ResumeHandlers {
	return &ResumeHandlers{service: service}
}

func (h *ResumeHandlers) RegisterRoutes(router fiber.Router, mw *auth.Middleware) {
	router.Get("/resume", mw.Authenticate(), h.GetActive)
	router.Post("/resume", mw.Authenticate(), h.Upload)
}

// Upload reemplaza el CV activo del usuario
func (h *ResumeHandlers) Upload(c *fiber.Ctx) error {
	name, data, err := httpx.Upload(c, uploadField)
	if err != nil {
		return err
	}
	res, err := h.service.Upload(c.Context(), auth.ScopeOf(c), name, data)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

func (h *ResumeHandlers) GetActive(c *fiber.Ctx) error {
	res, err := h.service.GetActive(c.Context(), auth.ScopeOf(c))
	if err != nil {
		return err
	}
	return c.JSON(res)
}
