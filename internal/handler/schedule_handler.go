package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fets-ops/console-api/internal/service"
	appErrors "github.com/fets-ops/console-api/pkg/errors"
	"github.com/fets-ops/console-api/pkg/response"
	"github.com/fets-ops/console-api/pkg/timeutil"
)

// ScheduleHandler exposes roster grid endpoints.
type ScheduleHandler struct {
	schedules *service.ScheduleService
}

// NewScheduleHandler constructs ScheduleHandler.
func NewScheduleHandler(schedules *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{schedules: schedules}
}

func monthYearParams(c *gin.Context) (int, int, error) {
	now := time.Now().In(timeutil.CenterZone)
	month, err := strconv.Atoi(c.DefaultQuery("month", strconv.Itoa(int(now.Month()))))
	if err != nil {
		return 0, 0, appErrors.Clone(appErrors.ErrValidation, "invalid month")
	}
	year, err := strconv.Atoi(c.DefaultQuery("year", strconv.Itoa(now.Year())))
	if err != nil {
		return 0, 0, appErrors.Clone(appErrors.ErrValidation, "invalid year")
	}
	return month, year, nil
}

// Grid godoc
// @Summary Monthly roster grid
// @Description Staff-by-day shift grid for one month with the active roster version
// @Tags Roster
// @Produce json
// @Param month query int false "Month (defaults to current)"
// @Param year query int false "Year (defaults to current)"
// @Success 200 {object} response.Envelope
// @Router /roster [get]
func (h *ScheduleHandler) Grid(c *gin.Context) {
	month, year, err := monthYearParams(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	grid, err := h.schedules.Grid(c.Request.Context(), month, year)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grid, nil)
}

// StaffSchedule godoc
// @Summary One staff member's month
// @Tags Roster
// @Produce json
// @Param id path string true "Staff profile ID"
// @Param month query int false "Month"
// @Param year query int false "Year"
// @Success 200 {object} response.Envelope
// @Router /roster/staff/{id} [get]
func (h *ScheduleHandler) StaffSchedule(c *gin.Context) {
	month, year, err := monthYearParams(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	entries, err := h.schedules.StaffSchedule(c.Request.Context(), c.Param("id"), month, year)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// UpsertShift godoc
// @Summary Set a shift cell
// @Description Assign a shift code to one staff-day cell and record a new roster version
// @Tags Roster
// @Accept json
// @Produce json
// @Param payload body service.UpsertShiftRequest true "Shift payload"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /roster/shifts [put]
func (h *ScheduleHandler) UpsertShift(c *gin.Context) {
	var req service.UpsertShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	claims := claimsFromContext(c)
	entry, version, err := h.schedules.UpsertShift(c.Request.Context(), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"entry": entry, "version": version}, nil)
}

// ClearShift godoc
// @Summary Clear a shift cell
// @Tags Roster
// @Produce json
// @Param staffId path string true "Staff profile ID"
// @Param date path string true "Shift date"
// @Success 200 {object} response.Envelope
// @Router /roster/shifts/{staffId}/{date} [delete]
func (h *ScheduleHandler) ClearShift(c *gin.Context) {
	claims := claimsFromContext(c)
	version, err := h.schedules.ClearShift(c.Request.Context(), c.Param("staffId"), c.Param("date"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"version": version}, nil)
}

// QuickAdd godoc
// @Summary Fill the month with default shifts
// @Description Insert default day shifts for every active staff member, leaving existing cells untouched
// @Tags Roster
// @Accept json
// @Produce json
// @Param payload body map[string]int true "Month and year"
// @Success 200 {object} response.Envelope
// @Router /roster/quick-add [post]
func (h *ScheduleHandler) QuickAdd(c *gin.Context) {
	var payload struct {
		Month int `json:"month" binding:"required"`
		Year  int `json:"year" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "month and year required"))
		return
	}
	claims := claimsFromContext(c)
	result, err := h.schedules.QuickAddMonth(c.Request.Context(), payload.Month, payload.Year, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Versions godoc
// @Summary Roster version history
// @Tags Roster
// @Produce json
// @Param month query int false "Month"
// @Param year query int false "Year"
// @Success 200 {object} response.Envelope
// @Router /roster/versions [get]
func (h *ScheduleHandler) Versions(c *gin.Context) {
	month, year, err := monthYearParams(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	versions, err := h.schedules.Versions(c.Request.Context(), month, year)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, versions, nil)
}
