package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"prodtrack_backend/internal/models"
	"prodtrack_backend/internal/services"
	"prodtrack_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ScheduleHandler serves time tracking, the monthly timesheet, the
// timesheet roster and the planned work schedule.
type ScheduleHandler struct {
	scheduleService services.ScheduleService
}

// NewScheduleHandler creates a new ScheduleHandler.
func NewScheduleHandler(ss services.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleService: ss}
}

// UpsertTimeEntry records hours for one (user, date). Posting the same key
// twice overwrites instead of duplicating.
func (h *ScheduleHandler) UpsertTimeEntry(c *gin.Context) {
	var req services.UpsertTimeEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), ""))
		return
	}

	entry, err := h.scheduleService.UpsertTimeEntry(req)
	if err != nil {
		h.respondScheduleError(c, err, "UpsertTimeEntry")
		return
	}
	c.JSON(http.StatusOK, entry)
}

// UpdateTimeEntryPayload updates hours and comment on an existing record.
type UpdateTimeEntryPayload struct {
	Hours   *float64 `json:"hours" binding:"required"`
	Comment string   `json:"comment"`
}

func (h *ScheduleHandler) UpdateTimeEntry(c *gin.Context) {
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		utils.RespondValidationFailed(c, "Invalid time entry ID format")
		return
	}
	var payload UpdateTimeEntryPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), ""))
		return
	}

	entry, err := h.scheduleService.UpdateTimeEntry(id, *payload.Hours, payload.Comment)
	if err != nil {
		h.respondScheduleError(c, err, "UpdateTimeEntry")
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *ScheduleHandler) DeleteTimeEntry(c *gin.Context) {
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		utils.RespondValidationFailed(c, "Invalid time entry ID format")
		return
	}
	if err := h.scheduleService.DeleteTimeEntry(id); err != nil {
		h.respondScheduleError(c, err, "DeleteTimeEntry")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetTimeEntries lists recent time records.
func (h *ScheduleHandler) GetTimeEntries(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			utils.RespondValidationFailed(c, "Invalid limit format")
			return
		}
		limit = parsed
	}
	entries, err := h.scheduleService.GetRecentTimeEntries(limit)
	if err != nil {
		utils.RespondInternalError(c, err, "GetTimeEntries: failed to fetch time entries")
		return
	}
	c.JSON(http.StatusOK, entries)
}

// GetMonthlyTimesheet returns day cells per user for a given month,
// defaulting to the current month.
func (h *ScheduleHandler) GetMonthlyTimesheet(c *gin.Context) {
	now := time.Now()
	year := now.Year()
	month := int(now.Month())
	if raw := c.Query("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			utils.RespondValidationFailed(c, "Invalid year format")
			return
		}
		year = parsed
	}
	if raw := c.Query("month"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			utils.RespondValidationFailed(c, "Invalid month format")
			return
		}
		month = parsed
	}
	userID := utils.QueryInt64Ptr(c, "user_id")

	timesheet, err := h.scheduleService.GetMonthlyTimesheet(userID, year, month)
	if err != nil {
		h.respondScheduleError(c, err, "GetMonthlyTimesheet")
		return
	}
	c.JSON(http.StatusOK, timesheet)
}

// --- Timesheet roster ---

func (h *ScheduleHandler) GetTimesheetEmployees(c *gin.Context) {
	employees, err := h.scheduleService.GetTimesheetEmployees()
	if err != nil {
		utils.RespondInternalError(c, err, "GetTimesheetEmployees: failed to fetch employees")
		return
	}
	c.JSON(http.StatusOK, employees)
}

// AddTimesheetEmployeePayload names a new roster entry.
type AddTimesheetEmployeePayload struct {
	FullName string `json:"full_name" binding:"required"`
}

func (h *ScheduleHandler) AddTimesheetEmployee(c *gin.Context) {
	var payload AddTimesheetEmployeePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), ""))
		return
	}
	employee, err := h.scheduleService.AddTimesheetEmployee(payload.FullName)
	if err != nil {
		h.respondScheduleError(c, err, "AddTimesheetEmployee")
		return
	}
	c.JSON(http.StatusCreated, employee)
}

func (h *ScheduleHandler) DeleteTimesheetEmployee(c *gin.Context) {
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		utils.RespondValidationFailed(c, "Invalid employee ID format")
		return
	}
	if err := h.scheduleService.DeleteTimesheetEmployee(id); err != nil {
		h.respondScheduleError(c, err, "DeleteTimesheetEmployee")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// --- Work schedule ---

func (h *ScheduleHandler) UpsertWorkScheduleEntry(c *gin.Context) {
	var entry models.WorkScheduleEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), ""))
		return
	}
	if err := h.scheduleService.UpsertWorkScheduleEntry(&entry); err != nil {
		h.respondScheduleError(c, err, "UpsertWorkScheduleEntry")
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *ScheduleHandler) GetWorkSchedule(c *gin.Context) {
	startDate := c.Query("start_date")
	endDate := c.Query("end_date")
	if startDate == "" || endDate == "" {
		utils.RespondValidationFailed(c, "start_date and end_date are required")
		return
	}
	userID := utils.QueryInt64Ptr(c, "user_id")

	entries, err := h.scheduleService.GetWorkSchedule(userID, startDate, endDate)
	if err != nil {
		h.respondScheduleError(c, err, "GetWorkSchedule")
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *ScheduleHandler) DeleteWorkScheduleEntry(c *gin.Context) {
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		utils.RespondValidationFailed(c, "Invalid schedule entry ID format")
		return
	}
	if err := h.scheduleService.DeleteWorkScheduleEntry(id); err != nil {
		h.respondScheduleError(c, err, "DeleteWorkScheduleEntry")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *ScheduleHandler) respondScheduleError(c *gin.Context, err error, operation string) {
	switch {
	case errors.Is(err, services.ErrValidation):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
	case errors.Is(err, services.ErrTimeEntryNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, err.Error(), ""))
	default:
		utils.RespondInternalError(c, err, operation+": unexpected error")
	}
}
