package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fets-ops/console-api/internal/models"
	"github.com/fets-ops/console-api/internal/service"
	appErrors "github.com/fets-ops/console-api/pkg/errors"
	"github.com/fets-ops/console-api/pkg/response"
)

// LeaveHandler exposes leave and swap request endpoints.
type LeaveHandler struct {
	requests *service.LeaveService
}

// NewLeaveHandler constructs LeaveHandler.
func NewLeaveHandler(requests *service.LeaveService) *LeaveHandler {
	return &LeaveHandler{requests: requests}
}

// List godoc
// @Summary List leave and swap requests
// @Tags Requests
// @Produce json
// @Param status query string false "Filter by status"
// @Param staffId query string false "Filter by staff profile"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /requests [get]
func (h *LeaveHandler) List(c *gin.Context) {
	var filter models.LeaveFilter
	if status := c.Query("status"); status != "" {
		s := models.LeaveStatus(status)
		filter.Status = &s
	}
	filter.StaffProfileID = c.Query("staffId")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	requests, pagination, err := h.requests.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, pagination)
}

// Get godoc
// @Summary Get request detail
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /requests/{id} [get]
func (h *LeaveHandler) Get(c *gin.Context) {
	request, err := h.requests.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// Submit godoc
// @Summary Submit a leave or swap request
// @Tags Requests
// @Accept json
// @Produce json
// @Param payload body service.SubmitLeaveRequest true "Request payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /requests [post]
func (h *LeaveHandler) Submit(c *gin.Context) {
	var req service.SubmitLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	request, err := h.requests.Submit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, request)
}

// Approve godoc
// @Summary Approve a pending request
// @Description Approval writes the leave or swap outcome onto the roster and records a new version
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /requests/{id}/approve [post]
func (h *LeaveHandler) Approve(c *gin.Context) {
	claims := claimsFromContext(c)
	request, err := h.requests.Approve(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// Reject godoc
// @Summary Reject a pending request
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /requests/{id}/reject [post]
func (h *LeaveHandler) Reject(c *gin.Context) {
	claims := claimsFromContext(c)
	request, err := h.requests.Reject(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}
