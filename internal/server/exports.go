package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/attendance-tracker/internal/common"
	"github.com/joseph-ayodele/attendance-tracker/internal/entity"
	"github.com/joseph-ayodele/attendance-tracker/internal/export"
	"github.com/joseph-ayodele/attendance-tracker/internal/schedule"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeICS  = "text/calendar; charset=utf-8"
)

func attachment(c *gin.Context, filename, contentType string, body []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, body)
}

func (s *HTTPServer) exportXLSX(c *gin.Context) {
	var rep export.Report
	if err := c.ShouldBindJSON(&rep); err != nil {
		s.fail(c, common.InvalidInput(err.Error()))
		return
	}
	b, err := s.deps.Exports.AttendanceXLSX(c.Request.Context(), rep)
	if err != nil {
		s.fail(c, err)
		return
	}
	attachment(c, "attendance.xlsx", contentTypeXLSX, b)
}

func (s *HTTPServer) exportICS(c *gin.Context) {
	var cal entity.CalendarAnalysis
	if err := c.ShouldBindJSON(&cal); err != nil {
		s.fail(c, common.InvalidInput(err.Error()))
		return
	}
	name := c.Query("name")
	if err := common.ValidateAndReturnError(common.NewValidator().Field("name", name, common.MaxLength(120))); err != nil {
		s.fail(c, err)
		return
	}
	b, err := s.deps.Exports.CalendarICS(c.Request.Context(), cal.Events, name)
	if err != nil {
		s.fail(c, err)
		return
	}
	attachment(c, "calendar.ics", contentTypeICS, b)
}

func (s *HTTPServer) exportScheduleICS(c *gin.Context) {
	req, start, end, err := s.bindPlan(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	proj, err := schedule.Project(req.WeeklySchedule, start, end, req.Holidays)
	if err != nil {
		s.fail(c, err)
		return
	}
	b, err := s.deps.Exports.ScheduleICS(c.Request.Context(), proj, req.Name)
	if err != nil {
		s.fail(c, err)
		return
	}
	attachment(c, "schedule.ics", contentTypeICS, b)
}

// exportRecords renders a user's logged attendance as a workbook.
func (s *HTTPServer) exportRecords(c *gin.Context) {
	ctx := c.Request.Context()
	username := c.Param("username")
	target, err := queryTarget(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	list, err := s.deps.Accounts.ListRecords(ctx, username)
	if err != nil {
		s.fail(c, err)
		return
	}
	stats, err := s.deps.Accounts.Stats(ctx, username, target)
	if err != nil {
		s.fail(c, err)
		return
	}
	records := make([]entity.AttendanceRecord, len(list))
	for i, r := range list {
		records[i] = *r
	}
	b, err := s.deps.Exports.AttendanceXLSX(ctx, export.Report{
		Title:   "Attendance for " + username,
		Stats:   &stats,
		Records: records,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	attachment(c, username+"-attendance.xlsx", contentTypeXLSX, b)
}
