package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fets-ops/console-api/internal/models"
	"github.com/fets-ops/console-api/internal/service"
	appErrors "github.com/fets-ops/console-api/pkg/errors"
	"github.com/fets-ops/console-api/pkg/response"
)

// ChecklistHandler exposes checklist template and instance endpoints.
type ChecklistHandler struct {
	checklists *service.ChecklistService
}

// NewChecklistHandler constructs ChecklistHandler.
func NewChecklistHandler(checklists *service.ChecklistService) *ChecklistHandler {
	return &ChecklistHandler{checklists: checklists}
}

// ListTemplates godoc
// @Summary List checklist templates
// @Tags Checklists
// @Produce json
// @Param category query string false "Filter by category (pre_exam or post_exam)"
// @Success 200 {object} response.Envelope
// @Router /checklists/templates [get]
func (h *ChecklistHandler) ListTemplates(c *gin.Context) {
	var category *models.ChecklistCategory
	if value := c.Query("category"); value != "" {
		cat := models.ChecklistCategory(value)
		category = &cat
	}
	templates, err := h.checklists.ListTemplates(c.Request.Context(), category)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, templates, nil)
}

// GetTemplate godoc
// @Summary Get template with items
// @Tags Checklists
// @Produce json
// @Param id path string true "Template ID"
// @Success 200 {object} response.Envelope
// @Router /checklists/templates/{id} [get]
func (h *ChecklistHandler) GetTemplate(c *gin.Context) {
	template, items, err := h.checklists.GetTemplate(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"template": template, "items": items}, nil)
}

// CreateTemplate godoc
// @Summary Create a checklist template
// @Tags Checklists
// @Accept json
// @Produce json
// @Param payload body service.CreateTemplateRequest true "Template payload"
// @Success 201 {object} response.Envelope
// @Router /checklists/templates [post]
func (h *ChecklistHandler) CreateTemplate(c *gin.Context) {
	var req service.CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	claims := claimsFromContext(c)
	template, err := h.checklists.CreateTemplate(c.Request.Context(), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, template)
}

// DeleteTemplate godoc
// @Summary Delete a checklist template
// @Description Existing instances keep their copied items
// @Tags Checklists
// @Produce json
// @Param id path string true "Template ID"
// @Success 204 {object} response.Envelope
// @Router /checklists/templates/{id} [delete]
func (h *ChecklistHandler) DeleteTemplate(c *gin.Context) {
	if err := h.checklists.DeleteTemplate(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListInstances godoc
// @Summary List checklist instances
// @Tags Checklists
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /checklists/instances [get]
func (h *ChecklistHandler) ListInstances(c *gin.Context) {
	instances, err := h.checklists.ListInstances(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, instances, nil)
}

// GetInstance godoc
// @Summary Get instance with items
// @Tags Checklists
// @Produce json
// @Param id path string true "Instance ID"
// @Success 200 {object} response.Envelope
// @Router /checklists/instances/{id} [get]
func (h *ChecklistHandler) GetInstance(c *gin.Context) {
	detail, err := h.checklists.GetInstance(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Instantiate godoc
// @Summary Create a dated instance from a template
// @Description Items are deep-copied at creation time so later template edits never touch the instance
// @Tags Checklists
// @Accept json
// @Produce json
// @Param payload body map[string]string true "Template ID and date"
// @Success 201 {object} response.Envelope
// @Router /checklists/instances [post]
func (h *ChecklistHandler) Instantiate(c *gin.Context) {
	var payload struct {
		TemplateID string `json:"template_id" binding:"required"`
		Date       string `json:"date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "template_id and date required"))
		return
	}
	claims := claimsFromContext(c)
	detail, err := h.checklists.Instantiate(c.Request.Context(), payload.TemplateID, payload.Date, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, detail)
}

// SetItemCompletion godoc
// @Summary Toggle a checklist item
// @Tags Checklists
// @Accept json
// @Produce json
// @Param itemId path string true "Instance item ID"
// @Param payload body map[string]bool true "Completed flag"
// @Success 204 {object} response.Envelope
// @Router /checklists/items/{itemId} [put]
func (h *ChecklistHandler) SetItemCompletion(c *gin.Context) {
	var payload struct {
		Completed *bool `json:"completed" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "completed flag required"))
		return
	}
	claims := claimsFromContext(c)
	if err := h.checklists.SetItemCompletion(c.Request.Context(), c.Param("itemId"), *payload.Completed, claims.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
