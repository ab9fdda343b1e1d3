package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fets-ops/console-api/internal/service"
	"github.com/fets-ops/console-api/pkg/response"
)

// DashboardHandler exposes the operations dashboard endpoint.
type DashboardHandler struct {
	dashboard *service.DashboardService
}

// NewDashboardHandler constructs DashboardHandler.
func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Summary godoc
// @Summary Daily operations summary
// @Description Today's sessions, candidate check-in counts, pending requests, open incidents and active staff
// @Tags Dashboard
// @Produce json
// @Param refresh query bool false "Drop the cached summary and recompute"
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	if c.Query("refresh") == "true" {
		h.dashboard.Invalidate(c.Request.Context())
	}
	summary, cacheHit, err := h.dashboard.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil, map[string]interface{}{"cache_hit": cacheHit})
}
