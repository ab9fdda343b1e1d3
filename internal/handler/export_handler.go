package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fets-ops/console-api/internal/models"
	"github.com/fets-ops/console-api/internal/service"
	appErrors "github.com/fets-ops/console-api/pkg/errors"
	"github.com/fets-ops/console-api/pkg/response"
)

// ExportHandler exposes roster export endpoints.
type ExportHandler struct {
	exports *service.ExportService
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Request godoc
// @Summary Queue a roster export
// @Description Renders the monthly roster to CSV or PDF in the background
// @Tags Exports
// @Accept json
// @Produce json
// @Param payload body map[string]interface{} true "Month, year and format"
// @Success 202 {object} response.Envelope
// @Router /exports [post]
func (h *ExportHandler) Request(c *gin.Context) {
	var payload struct {
		Month  int                 `json:"month" binding:"required"`
		Year   int                 `json:"year" binding:"required"`
		Format models.ExportFormat `json:"format" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "month, year and format required"))
		return
	}
	claims := claimsFromContext(c)
	job, err := h.exports.Request(c.Request.Context(), payload.Month, payload.Year, payload.Format, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job, nil)
}

// Status godoc
// @Summary Export job status
// @Tags Exports
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /exports/{id} [get]
func (h *ExportHandler) Status(c *gin.Context) {
	job, err := h.exports.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}

// DownloadLink godoc
// @Summary Signed download link for a completed export
// @Tags Exports
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /exports/{id}/download [get]
func (h *ExportHandler) DownloadLink(c *gin.Context) {
	download, err := h.exports.DownloadLink(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, download, nil)
}

// Download godoc
// @Summary Download an exported file
// @Description Serves the file named by a signed token. The route is unauthenticated; the token carries the authorization.
// @Tags Exports
// @Produce octet-stream
// @Param token query string true "Signed token"
// @Success 200 {file} binary
// @Failure 401 {object} response.Envelope
// @Router /exports/download [get]
func (h *ExportHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	path, err := h.exports.Resolve(token)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.File(path)
}
