package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fets-ops/console-api/internal/models"
	"github.com/fets-ops/console-api/internal/service"
	appErrors "github.com/fets-ops/console-api/pkg/errors"
	"github.com/fets-ops/console-api/pkg/response"
)

// StaffHandler exposes staff profile endpoints.
type StaffHandler struct {
	staff *service.StaffService
}

// NewStaffHandler constructs StaffHandler.
func NewStaffHandler(staff *service.StaffService) *StaffHandler {
	return &StaffHandler{staff: staff}
}

// List godoc
// @Summary List staff profiles
// @Tags Staff
// @Produce json
// @Param search query string false "Search by name or email"
// @Param status query string false "Filter by status"
// @Param role query string false "Filter by role"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /staff [get]
func (h *StaffHandler) List(c *gin.Context) {
	var filter models.StaffFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	if status := c.Query("status"); status != "" {
		s := models.StaffStatus(status)
		filter.Status = &s
	}
	if role := c.Query("role"); role != "" {
		r := models.UserRole(role)
		filter.Role = &r
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	profiles, pagination, err := h.staff.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profiles, pagination)
}

// Get godoc
// @Summary Get staff profile
// @Tags Staff
// @Produce json
// @Param id path string true "Staff profile ID"
// @Success 200 {object} response.Envelope
// @Router /staff/{id} [get]
func (h *StaffHandler) Get(c *gin.Context) {
	profile, err := h.staff.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// Create godoc
// @Summary Create staff profile
// @Tags Staff
// @Accept json
// @Produce json
// @Param payload body service.CreateStaffRequest true "Staff payload"
// @Success 201 {object} response.Envelope
// @Router /staff [post]
func (h *StaffHandler) Create(c *gin.Context) {
	var req service.CreateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	profile, err := h.staff.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, profile)
}

// Update godoc
// @Summary Update staff profile
// @Tags Staff
// @Accept json
// @Produce json
// @Param id path string true "Staff profile ID"
// @Param payload body service.UpdateStaffRequest true "Staff payload"
// @Success 200 {object} response.Envelope
// @Router /staff/{id} [put]
func (h *StaffHandler) Update(c *gin.Context) {
	var req service.UpdateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	profile, err := h.staff.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// SetStatus godoc
// @Summary Set staff status
// @Tags Staff
// @Accept json
// @Produce json
// @Param id path string true "Staff profile ID"
// @Param payload body map[string]string true "Status payload"
// @Success 204 {object} response.Envelope
// @Router /staff/{id}/status [put]
func (h *StaffHandler) SetStatus(c *gin.Context) {
	var payload struct {
		Status models.StaffStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "status required"))
		return
	}
	if err := h.staff.SetStatus(c.Request.Context(), c.Param("id"), payload.Status); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
