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

// IncidentHandler exposes incident log endpoints.
type IncidentHandler struct {
	incidents *service.IncidentService
}

// NewIncidentHandler constructs IncidentHandler.
func NewIncidentHandler(incidents *service.IncidentService) *IncidentHandler {
	return &IncidentHandler{incidents: incidents}
}

// List godoc
// @Summary List incidents
// @Tags Incidents
// @Produce json
// @Param status query string false "Filter by status"
// @Param severity query string false "Filter by severity"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /incidents [get]
func (h *IncidentHandler) List(c *gin.Context) {
	var filter models.IncidentFilter
	if status := c.Query("status"); status != "" {
		s := models.IncidentStatus(status)
		filter.Status = &s
	}
	if severity := c.Query("severity"); severity != "" {
		s := models.IncidentSeverity(severity)
		filter.Severity = &s
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	incidents, pagination, err := h.incidents.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, incidents, pagination)
}

// Get godoc
// @Summary Get incident detail
// @Tags Incidents
// @Produce json
// @Param id path string true "Incident ID"
// @Success 200 {object} response.Envelope
// @Router /incidents/{id} [get]
func (h *IncidentHandler) Get(c *gin.Context) {
	incident, err := h.incidents.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, incident, nil)
}

// Create godoc
// @Summary Report an incident
// @Tags Incidents
// @Accept json
// @Produce json
// @Param payload body service.CreateIncidentRequest true "Incident payload"
// @Success 201 {object} response.Envelope
// @Router /incidents [post]
func (h *IncidentHandler) Create(c *gin.Context) {
	var req service.CreateIncidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	claims := claimsFromContext(c)
	incident, err := h.incidents.Create(c.Request.Context(), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, incident)
}

// Update godoc
// @Summary Update an incident
// @Tags Incidents
// @Accept json
// @Produce json
// @Param id path string true "Incident ID"
// @Param payload body service.UpdateIncidentRequest true "Incident payload"
// @Success 200 {object} response.Envelope
// @Router /incidents/{id} [put]
func (h *IncidentHandler) Update(c *gin.Context) {
	var req service.UpdateIncidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	incident, err := h.incidents.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, incident, nil)
}

// Delete godoc
// @Summary Delete an incident
// @Tags Incidents
// @Produce json
// @Param id path string true "Incident ID"
// @Success 204 {object} response.Envelope
// @Router /incidents/{id} [delete]
func (h *IncidentHandler) Delete(c *gin.Context) {
	if err := h.incidents.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
