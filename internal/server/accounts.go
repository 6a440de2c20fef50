package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/attendance-tracker/internal/accounts"
	"github.com/joseph-ayodele/attendance-tracker/internal/common"
)

func (s *HTTPServer) register(c *gin.Context) {
	var req accounts.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, common.InvalidInput(err.Error()))
		return
	}
	u, err := s.deps.Accounts.Register(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (s *HTTPServer) login(c *gin.Context) {
	var req accounts.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, common.InvalidInput(err.Error()))
		return
	}
	u, err := s.deps.Accounts.Login(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (s *HTTPServer) listHolidays(c *gin.Context) {
	list, err := s.deps.Accounts.ListHolidays(c.Request.Context(), c.Param("username"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *HTTPServer) addHoliday(c *gin.Context) {
	var req accounts.HolidayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, common.InvalidInput(err.Error()))
		return
	}
	h, err := s.deps.Accounts.AddHoliday(c.Request.Context(), c.Param("username"), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, h)
}

func (s *HTTPServer) deleteHoliday(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		s.fail(c, common.InvalidInput("id must be a valid UUID"))
		return
	}
	if err := s.deps.Accounts.DeleteHoliday(c.Request.Context(), c.Param("username"), id); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *HTTPServer) listRecords(c *gin.Context) {
	list, err := s.deps.Accounts.ListRecords(c.Request.Context(), c.Param("username"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *HTTPServer) addRecord(c *gin.Context) {
	var req accounts.RecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, common.InvalidInput(err.Error()))
		return
	}
	rec, err := s.deps.Accounts.AddRecord(c.Request.Context(), c.Param("username"), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (s *HTTPServer) recordStats(c *gin.Context) {
	target, err := queryTarget(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	stats, err := s.deps.Accounts.Stats(c.Request.Context(), c.Param("username"), target)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
