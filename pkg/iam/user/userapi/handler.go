package userapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mlinyun/Peekpa/pkg/httpx"
	"github.com/mlinyun/Peekpa/pkg/iam/auth"
	"github.com/mlinyun/Peekpa/pkg/iam/user"
	"github.com/mlinyun/Peekpa/pkg/iam/user/usersrv"
	"github.com/mlinyun/Peekpa/pkg/kernel"
)

const avatarField = "avatar"

// UserHandlers maneja el perfil propio y la gestión del staff
type UserHandlers struct {
	service *usersrv.UserService
}

func NewUserHandlers(service *usersrv.UserService) *UserHandlers {
	return &UserHandlers{service: service}
}

func (h *UserHandlers) RegisterRoutes(router fiber.Router, mw *auth.Middleware) {
	router.Get("/profile", mw.Authenticate(), h.GetProfile)
	router.Patch("/profile", mw.Authenticate(), h.UpdateProfile)
	router.Put("/profile", httpx.NotImplemented)
	router.Post("/avatar", mw.Authenticate(), h.UploadAvatar)

	staff := router.Group("/manage/user")
	staff.Get("/", mw.Authenticate(), h.ListStaff)
	staff.Post("/", mw.Authenticate(), h.CreateStaff)
	staff.Get("/:uid", mw.Authenticate(), h.GetStaff)
	staff.Patch("/:uid", mw.Authenticate(), h.UpdateStaff)
	staff.Put("/:uid", httpx.NotImplemented)
}

func (h *UserHandlers) GetProfile(c *fiber.Ctx) error {
	u, err := h.service.GetCurrent(c.Context(), auth.ScopeOf(c))
	if err != nil {
		return err
	}
	return c.JSON(u.ToDTO())
}

// UpdateProfile aplica una actualización parcial del perfil
func (h *UserHandlers) UpdateProfile(c *fiber.Ctx) error {
	var req user.UpdateProfileRequest
	if err := httpx.Bind(c, &req); err != nil {
		return err
	}
	u, err := h.service.UpdateProfile(c.Context(), auth.ScopeOf(c), req)
	if err != nil {
		return err
	}
	return c.JSON(u.ToDTO())
}

func (h *UserHandlers) UploadAvatar(c *fiber.Ctx) error {
	name, data, err := httpx.Upload(c, avatarField)
	if err != nil {
		return err
	}
	a, err := h.service.UploadAvatar(c.Context(), auth.ScopeOf(c), name, data)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(a)
}

// ============================================================================
// Staff management (managers only)
// ============================================================================

func (h *UserHandlers) ListStaff(c *fiber.Ctx) error {
	res, err := h.service.ListStaff(c.Context(), auth.ScopeOf(c), c.Query("q"), httpx.PageOf(c))
	if err != nil {
		return err
	}
	return c.JSON(res)
}

func (h *UserHandlers) CreateStaff(c *fiber.Ctx) error {
	var req user.CreateStaffRequest
	if err := httpx.Bind(c, &req); err != nil {
		return err
	}
	u, err := h.service.CreateStaff(c.Context(), auth.ScopeOf(c), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(u.ToStaffDTO())
}

func (h *UserHandlers) GetStaff(c *fiber.Ctx) error {
	u, err := h.service.GetStaff(c.Context(), auth.ScopeOf(c), kernel.NewUserID(c.Params("uid")))
	if err != nil {
		return err
	}
	return c.JSON(u.ToStaffDTO())
}

func (h *UserHandlers) UpdateStaff(c *fiber.Ctx) error {
	var req user.UpdateStaffRequest
	if err := httpx.Bind(c, &req); err != nil {
		return err
	}
	u, err := h.service.UpdateStaff(c.Context(), auth.ScopeOf(c), kernel.NewUserID(c.Params("uid")), req)
	if err != nil {
		return err
	}
	return c.JSON(u.ToStaffDTO())
}
