package invitationapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mlinyun/Peekpa/pkg/httpx"
	"github.com/mlinyun/Peekpa/pkg/iam/auth"
	"github.com/mlinyun/Peekpa/pkg/kernel"
	"github.com/mlinyun/Peekpa/pkg/recruit/invitation"
	"github.com/mlinyun/Peekpa/pkg/recruit/invitation/invitationsrv"
)

// InvitationHandlers maneja las rutas de invitaciones con Fiber
type InvitationHandlers struct {
	service *invitationsrv.InvitationService
}

// NewInvitationHandlers crea un nuevo handler de invitaciones
func NewInvitationHandlers(service *invitationsrv.InvitationService) *InvitationHandlers {
	return &InvitationHandlers{
		service: service,
	}
}

// RegisterRoutes registra las rutas de invitaciones en Fiber
func (h *InvitationHandlers) RegisterRoutes(router fiber.Router, mw *auth.Middleware) {
	// Candidate side
	candidate := router.Group("/invitation")
	candidate.Get("/:iid", mw.Authenticate(), h.GetForCandidate)
	candidate.Patch("/:iid", mw.Authenticate(), h.Respond)
	candidate.Put("/:iid", httpx.NotImplemented)

	// Staff side
	manage := router.Group("/manage/job/:id/interview/:iid/invitation")
	manage.Post("/", mw.Authenticate(), h.CreateInvitation)
	manage.Get("/:ivid", mw.Authenticate(), h.GetInvitation)
	manage.Patch("/:ivid", mw.Authenticate(), h.UpdateInvitation)
	manage.Put("/:ivid", httpx.NotImplemented)
}

// CreateInvitation crea una nueva invitación
func (h *InvitationHandlers) CreateInvitation(c *fiber.Ctx) error {
	jobID, interviewID, err := interviewPath(c)
	if err != nil {
		return err
	}

	var req invitation.CreateInvitationRequest
	if err := httpx.Bind(c, &req); err != nil {
		return err
	}

	inv, err := h.service.Create(c.Context(), auth.ScopeOf(c), jobID, interviewID, req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(inv)
}

// GetInvitation obtiene una invitación desde la gestión
func (h *InvitationHandlers) GetInvitation(c *fiber.Ctx) error {
	jobID, interviewID, err := interviewPath(c)
	if err != nil {
		return err
	}
	id, err := httpx.ParamID(c, "ivid")
	if err != nil {
		return err
	}

	inv, err := h.service.Get(c.Context(), auth.ScopeOf(c), jobID, interviewID, kernel.InvitationID(id))
	if err != nil {
		return err
	}
	return c.JSON(inv)
}

// UpdateInvitation edita mensaje o estado; update_time se renueva
func (h *InvitationHandlers) UpdateInvitation(c *fiber.Ctx) error {
	jobID, interviewID, err := interviewPath(c)
	if err != nil {
		return err
	}
	id, err := httpx.ParamID(c, "ivid")
	if err != nil {
		return err
	}

	var req invitation.UpdateInvitationRequest
	if err := httpx.Bind(c, &req); err != nil {
		return err
	}

	inv, err := h.service.Update(c.Context(), auth.ScopeOf(c), jobID, interviewID, kernel.InvitationID(id), req)
	if err != nil {
		return err
	}
	return c.JSON(inv)
}

// GetForCandidate obtiene una invitación del candidato autenticado
func (h *InvitationHandlers) GetForCandidate(c *fiber.Ctx) error {
	id, err := httpx.ParamID(c, "iid")
	if err != nil {
		return err
	}

	inv, err := h.service.GetForCandidate(c.Context(), auth.ScopeOf(c), kernel.InvitationID(id))
	if err != nil {
		return err
	}
	return c.JSON(inv)
}

// Respond registra la respuesta del candidato
func (h *InvitationHandlers) Respond(c *fiber.Ctx) error {
	id, err := httpx.ParamID(c, "iid")
	if err != nil {
		return err
	}

	var req invitation.RespondRequest
	if err := httpx.Bind(c, &req); err != nil {
		return err
	}

	inv, err := h.service.Respond(c.Context(), auth.ScopeOf(c), kernel.InvitationID(id), req)
	if err != nil {
		return err
	}
	return c.JSON(inv)
}

func interviewPath(c *fiber.Ctx) (kernel.JobID, kernel.InterviewID, error) {
	jobID, err := httpx.ParamID(c, "id")
	if err != nil {
		return 0, 0, err
	}
	interviewID, err := httpx.ParamID(c, "iid")
	if err != nil {
		return 0, 0, err
	}
	return kernel.JobID(jobID), kernel.InterviewID(interviewID), nil
}
