package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fets-ops/console-api/internal/middleware"
	"github.com/fets-ops/console-api/internal/models"
	"github.com/fets-ops/console-api/internal/service"
)

func TestSessionHandlerCheckDateRequiresDate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSessionHandler(nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/sessions/capacity", nil)
	c.Request = req

	handler.CheckDate(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionHandlerCreateInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSessionHandler(nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/sessions", bytes.NewReader([]byte(`not json`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin", Role: models.RoleAdmin})

	handler.Create(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScheduleHandlerQuickAddRequiresMonthAndYear(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewScheduleHandler(nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/roster/quick-add", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin", Role: models.RoleAdmin})

	handler.QuickAdd(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCandidateHandlerImportRequiresFile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewCandidateHandler(service.NewCandidateService(nil, nil, nil))
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/candidates/import", nil)
	c.Request = req

	handler.Import(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportHandlerDownloadRequiresToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewExportHandler(nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/exports/download", nil)
	c.Request = req

	handler.Download(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
