package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ugonnamorgan8-netizen/marvel/internal/core/services"
	"github.com/ugonnamorgan8-netizen/marvel/internal/pkg/response"
)

// DashboardHandler handles dashboard requests
type DashboardHandler struct {
	dashboardService *services.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Stats godoc
// @Summary Dashboard stats
// @Description Returns the headline dashboard numbers
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=services.DashboardStats}
// @Router /dashboard/stats [get]
func (h *DashboardHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.dashboardService.Stats(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to compute dashboard stats")
	}

	return response.Success(c, stats)
}

// Overview godoc
// @Summary Dashboard overview
// @Description Returns dashboard stats with recent students and payments
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=services.Dashboard}
// @Router /dashboard [get]
func (h *DashboardHandler) Overview(c *fiber.Ctx) error {
	overview, err := h.dashboardService.Overview(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to build dashboard")
	}

	return response.Success(c, overview)
}
