package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/attendance-tracker/internal/accounts"
	"github.com/joseph-ayodele/attendance-tracker/internal/common"
	"github.com/joseph-ayodele/attendance-tracker/internal/export"
	"github.com/joseph-ayodele/attendance-tracker/internal/pipeline"
	"github.com/joseph-ayodele/attendance-tracker/internal/upload"
)

const (
	serviceName    = "Attendance Tracker API"
	serviceVersion = "1.0.0"
	requestIDHdr   = "X-Request-ID"
)

// Pinger reports whether the backing database is reachable.
type Pinger interface {
	HealthCheck(ctx context.Context, timeout time.Duration) error
}

// Deps are the collaborators the HTTP handlers delegate to. Accounts and DB
// may be nil, in which case the account routes are not mounted.
type Deps struct {
	Processor      *pipeline.Processor
	Uploads        *upload.Store
	MaxUploadBytes int64
	Accounts       *accounts.Service
	Exports        *export.Service
	Metrics        *Metrics
	DB             Pinger
	Provider       string
	Logger         *slog.Logger
}

// HTTPServer exposes the attendance pipeline over JSON and multipart HTTP.
type HTTPServer struct {
	deps   Deps
	engine *gin.Engine
	logger *slog.Logger
}

func NewHTTPServer(deps Deps) *HTTPServer {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Exports == nil {
		deps.Exports = export.NewService(deps.Logger)
	}
	if deps.Metrics == nil {
		deps.Metrics = NewMetrics()
	}
	s := &HTTPServer{deps: deps, logger: deps.Logger}
	s.engine = s.routes()
	return s
}

// Handler returns the root http.Handler.
func (s *HTTPServer) Handler() http.Handler {
	return s.engine
}

func (s *HTTPServer) routes() *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery(), s.requestContext(), s.deps.Metrics.middleware())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", requestIDHdr}
	corsCfg.ExposeHeaders = []string{requestIDHdr, "Content-Disposition"}
	engine.Use(cors.New(corsCfg))

	engine.GET("/", s.root)
	engine.GET("/health", s.health)
	engine.GET("/metrics", gin.WrapH(s.deps.Metrics.Handler()))

	engine.POST("/upload-calendar", s.uploadCalendar)
	engine.POST("/upload-timetable", s.uploadTimetable)
	engine.POST("/process-combined", s.processCombined)
	engine.POST("/calculate-attendance", s.calculateAttendance)
	engine.POST("/calculate-combined-attendance", s.calculateCombinedAttendance)
	engine.POST("/plan", s.plan)

	engine.POST("/debug-pdf", s.debugPDF)
	engine.POST("/debug-timetable", s.debugTimetable)
	engine.GET("/test-subject-extraction", s.testSubjectExtraction)

	exp := engine.Group("/export")
	exp.POST("/xlsx", s.exportXLSX)
	exp.POST("/ics", s.exportICS)
	exp.POST("/schedule-ics", s.exportScheduleICS)

	if s.deps.Accounts != nil {
		auth := engine.Group("/auth")
		auth.POST("/register", s.register)
		auth.POST("/login", s.login)

		users := engine.Group("/users/:username", actingUser)
		users.GET("/holidays", s.listHolidays)
		users.POST("/holidays", s.addHoliday)
		users.DELETE("/holidays/:id", s.deleteHoliday)
		users.GET("/attendance", s.listRecords)
		users.POST("/attendance", s.addRecord)
		users.GET("/attendance/stats", s.recordStats)
		users.GET("/attendance/export", s.exportRecords)
	}
	return engine
}

// requestContext tags every request with an id and logs its outcome.
// actingUser carries the path username so repository and service logs name it.
func actingUser(c *gin.Context) {
	ctx := common.WithUsername(c.Request.Context(), c.Param("username"))
	c.Request = c.Request.WithContext(ctx)
	c.Next()
}

func (s *HTTPServer) requestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHdr)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Header(requestIDHdr, rid)
		c.Request = c.Request.WithContext(common.WithRequestID(c.Request.Context(), rid))

		start := time.Now()
		c.Next()

		logger := common.LoggerFrom(c.Request.Context(), s.logger)
		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"dur_ms", time.Since(start).Milliseconds(),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Error("http.request", attrs...)
			return
		}
		logger.Info("http.request", attrs...)
	}
}

// fail writes err as {"detail": message} with the status its chain maps to.
func (s *HTTPServer) fail(c *gin.Context, err error) {
	code := common.HTTPStatus(err)
	if code >= http.StatusInternalServerError {
		common.LoggerFrom(c.Request.Context(), s.logger).Error("http.handler.failed", "path", c.FullPath(), "err", err)
	}
	c.AbortWithStatusJSON(code, gin.H{"detail": common.Message(err)})
}

func (s *HTTPServer) root(c *gin.Context) {
	provider := s.deps.Provider
	if provider == "" {
		provider = "none"
	}
	c.JSON(http.StatusOK, gin.H{
		"message":     serviceName,
		"version":     serviceVersion,
		"ai_provider": provider,
	})
}

func (s *HTTPServer) health(c *gin.Context) {
	body := gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if s.deps.DB != nil {
		if err := s.deps.DB.HealthCheck(c.Request.Context(), 2*time.Second); err != nil {
			common.LoggerFrom(c.Request.Context(), s.logger).Warn("http.health.db_unavailable", "err", err)
			body["database"] = "unavailable"
		} else {
			body["database"] = "ok"
		}
	}
	c.JSON(http.StatusOK, body)
}
