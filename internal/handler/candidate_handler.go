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

// CandidateHandler exposes candidate tracking endpoints.
type CandidateHandler struct {
	candidates *service.CandidateService
}

// NewCandidateHandler constructs CandidateHandler.
func NewCandidateHandler(candidates *service.CandidateService) *CandidateHandler {
	return &CandidateHandler{candidates: candidates}
}

// List godoc
// @Summary List candidates
// @Tags Candidates
// @Produce json
// @Param status query string false "Filter by status"
// @Param examDate query string false "Filter by exam date"
// @Param search query string false "Search by name or confirmation number"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /candidates [get]
func (h *CandidateHandler) List(c *gin.Context) {
	var filter models.CandidateFilter
	if status := c.Query("status"); status != "" {
		s := models.CandidateStatus(status)
		filter.Status = &s
	}
	filter.ExamDate = c.Query("examDate")
	filter.Search = strings.TrimSpace(c.Query("search"))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	candidates, pagination, err := h.candidates.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, candidates, pagination)
}

// Get godoc
// @Summary Get candidate detail
// @Tags Candidates
// @Produce json
// @Param id path string true "Candidate ID"
// @Success 200 {object} response.Envelope
// @Router /candidates/{id} [get]
func (h *CandidateHandler) Get(c *gin.Context) {
	candidate, err := h.candidates.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, candidate, nil)
}

// Create godoc
// @Summary Register a candidate
// @Tags Candidates
// @Accept json
// @Produce json
// @Param payload body service.CreateCandidateRequest true "Candidate payload"
// @Success 201 {object} response.Envelope
// @Router /candidates [post]
func (h *CandidateHandler) Create(c *gin.Context) {
	var req service.CreateCandidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	candidate, err := h.candidates.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, candidate)
}

// Update godoc
// @Summary Update candidate details
// @Tags Candidates
// @Accept json
// @Produce json
// @Param id path string true "Candidate ID"
// @Param payload body service.UpdateCandidateRequest true "Candidate payload"
// @Success 200 {object} response.Envelope
// @Router /candidates/{id} [put]
func (h *CandidateHandler) Update(c *gin.Context) {
	var req service.UpdateCandidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	candidate, err := h.candidates.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, candidate, nil)
}

// SetStatus godoc
// @Summary Move candidate along the check-in lifecycle
// @Tags Candidates
// @Accept json
// @Produce json
// @Param id path string true "Candidate ID"
// @Param payload body map[string]string true "Status payload"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /candidates/{id}/status [put]
func (h *CandidateHandler) SetStatus(c *gin.Context) {
	var payload struct {
		Status models.CandidateStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "status required"))
		return
	}
	candidate, err := h.candidates.SetStatus(c.Request.Context(), c.Param("id"), payload.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, candidate, nil)
}

// Delete godoc
// @Summary Delete candidate
// @Tags Candidates
// @Produce json
// @Param id path string true "Candidate ID"
// @Success 204 {object} response.Envelope
// @Router /candidates/{id} [delete]
func (h *CandidateHandler) Delete(c *gin.Context) {
	if err := h.candidates.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Import godoc
// @Summary Bulk import candidates from CSV
// @Description Upload a CSV with columns full_name, exam_name and exam_date; confirmation_number is optional and generated when absent. Rejected rows are reported per line.
// @Tags Candidates
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV file"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /candidates/import [post]
func (h *CandidateHandler) Import(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "csv file is required"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "failed to read upload"))
		return
	}
	defer file.Close() //nolint:errcheck

	result, err := h.candidates.Import(c.Request.Context(), file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
