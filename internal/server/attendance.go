package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/attendance-tracker/constants"
	"github.com/joseph-ayodele/attendance-tracker/internal/attendance"
	"github.com/joseph-ayodele/attendance-tracker/internal/common"
	"github.com/joseph-ayodele/attendance-tracker/internal/entity"
	"github.com/joseph-ayodele/attendance-tracker/internal/schedule"
)

// Requests accept either form fields or a JSON body.
type calculateRequest struct {
	TotalClasses     *int     `form:"total_classes" json:"total_classes" binding:"required"`
	AttendedClasses  *int     `form:"attended_classes" json:"attended_classes" binding:"required"`
	TargetPercentage *float64 `form:"target_percentage" json:"target_percentage"`
}

type calculateCombinedRequest struct {
	TotalWorkingDays     *int     `form:"total_working_days" json:"total_working_days" binding:"required"`
	ClassesPerWorkingDay *int     `form:"classes_per_working_day" json:"classes_per_working_day" binding:"required"`
	AttendedClasses      *int     `form:"attended_classes" json:"attended_classes" binding:"required"`
	TargetPercentage     *float64 `form:"target_percentage" json:"target_percentage"`
}

// planRequest describes a semester to project. WeeklySchedule wins over
// TimetableEvents when both are present. Username merges that user's
// stored holidays into Holidays.
type planRequest struct {
	WeeklySchedule   entity.WeeklySchedule   `json:"weekly_schedule"`
	TimetableEvents  []entity.TimetableEvent `json:"timetable_events"`
	SemesterStart    string                  `json:"semester_start" binding:"required"`
	SemesterEnd      string                  `json:"semester_end" binding:"required"`
	Holidays         []string                `json:"holidays"`
	Username         string                  `json:"username"`
	AttendedClasses  int                     `json:"attended_classes"`
	TargetPercentage *float64                `json:"target_percentage"`
	Name             string                  `json:"name"`
}

func targetOrDefault(t *float64) float64 {
	if t == nil {
		return constants.DefaultTargetPercentage
	}
	return *t
}

func (s *HTTPServer) calculateAttendance(c *gin.Context) {
	var req calculateRequest
	if err := c.ShouldBind(&req); err != nil {
		s.fail(c, common.InvalidInput(err.Error()))
		return
	}
	stats, err := attendance.Compute(*req.TotalClasses, *req.AttendedClasses, targetOrDefault(req.TargetPercentage))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *HTTPServer) calculateCombinedAttendance(c *gin.Context) {
	var req calculateCombinedRequest
	if err := c.ShouldBind(&req); err != nil {
		s.fail(c, common.InvalidInput(err.Error()))
		return
	}
	stats, err := attendance.ComputeFromSchedule(*req.TotalWorkingDays, *req.ClassesPerWorkingDay, *req.AttendedClasses, targetOrDefault(req.TargetPercentage))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *HTTPServer) plan(c *gin.Context) {
	req, start, end, err := s.bindPlan(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	p, err := schedule.BuildPlan(req.WeeklySchedule, start, end, req.Holidays, req.AttendedClasses, targetOrDefault(req.TargetPercentage))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// bindPlan decodes a planRequest, resolves its schedule and holidays and
// parses the semester bounds.
func (s *HTTPServer) bindPlan(c *gin.Context) (planRequest, time.Time, time.Time, error) {
	var req planRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return req, time.Time{}, time.Time{}, common.InvalidInput(err.Error())
	}
	v := common.NewValidator().
		Field("semester_start", req.SemesterStart, common.Required, common.DateYMD).
		Field("semester_end", req.SemesterEnd, common.Required, common.DateYMD)
	for i, h := range req.Holidays {
		v.Field(fmt.Sprintf("holidays[%d]", i), h, common.DateYMD)
	}
	if err := common.ValidateAndReturnError(v); err != nil {
		return req, time.Time{}, time.Time{}, err
	}
	start, _ := time.Parse(time.DateOnly, req.SemesterStart)
	end, _ := time.Parse(time.DateOnly, req.SemesterEnd)
	if end.Before(start) {
		return req, time.Time{}, time.Time{}, common.InvalidInput("semester_end must not be before semester_start")
	}
	if req.WeeklySchedule.EventCount() == 0 {
		req.WeeklySchedule = entity.ScheduleFromEvents(req.TimetableEvents)
	}
	if req.Username != "" {
		if s.deps.Accounts == nil {
			return req, time.Time{}, time.Time{}, common.InvalidInput("accounts are not enabled")
		}
		stored, err := s.deps.Accounts.HolidayDates(c.Request.Context(), req.Username)
		if err != nil {
			return req, time.Time{}, time.Time{}, err
		}
		req.Holidays = append(req.Holidays, stored...)
	}
	return req, start, end, nil
}

// queryTarget reads ?target=, defaulting to the standard target.
func queryTarget(c *gin.Context) (float64, error) {
	raw := c.Query("target")
	if raw == "" {
		return constants.DefaultTargetPercentage, nil
	}
	t, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, common.InvalidInputf("target must be a number, got %q", raw)
	}
	return t, nil
}
