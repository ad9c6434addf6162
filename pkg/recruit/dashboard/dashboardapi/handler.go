package dashboardapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mlinyun/Peekpa/pkg/iam/auth"
	"github.com/mlinyun/Peekpa/pkg/recruit/dashboard/dashboardsrv"
)

type DashboardHandlers struct {
	service *dashboardsrv.DashboardService
}

func NewDashboardHandlers(service *dashboardsrv.DashboardService) *DashboardHandlers {
	return &DashboardHandlers{service: service}
}

func (h *DashboardHandlers) RegisterRoutes(router fiber.Router, mw *auth.Middleware) {
	router.Get("/manage/dashboard", mw.Authenticate(), h.Get)
}

// Get devuelve el resumen de la empresa del staff
func (h *DashboardHandlers) Get(c *fiber.Ctx) error {
	d, err := h.service.Get(c.Context(), auth.ScopeOf(c))
	if err != nil {
		return err
	}
	return c.JSON(d)
}
