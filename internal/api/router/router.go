package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"campus-hub/backend/config"
	"campus-hub/backend/internal/api/handler"
	"campus-hub/backend/internal/api/middleware"
	"campus-hub/backend/internal/service"
	"campus-hub/backend/pkg/jwt"
	"campus-hub/backend/pkg/metrics"
)

// Deps 路由依赖；Blacklist、Limiter、Metrics 可为 nil（对应功能降级关闭）
type Deps struct {
	Config     *config.Config
	Handler    *handler.Handler
	JWT        *jwt.Manager
	Authorizer service.Authorizer
	Blacklist  middleware.BlacklistChecker
	Limiter    middleware.RateLimiter
	Metrics    *metrics.Metrics
	Logger     *zap.Logger
}

// Setup 初始化并返回 Gin 路由引擎
func Setup(d Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	h := d.Handler
	cfg := d.Config
	can := func(capability service.Capability) gin.HandlerFunc {
		return middleware.RequireCapability(d.Authorizer, capability)
	}

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimit))
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware())
	}

	// ── 健康检查与指标 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if d.Metrics != nil && cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, d.Metrics.Handler())
	}

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(d.Limiter, cfg.Server.RateLimit), h.Auth.Login)
			auth.POST("/refresh", middleware.RateLimit(d.Limiter, cfg.Server.RateLimit), h.Auth.Refresh)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(d.JWT, d.Blacklist))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			// 课表模块
			timetable := authorized.Group("/timetable")
			{
				timetable.GET("", can(service.CapTimetableRead), h.Timetable.List)
				timetable.GET("/:id", can(service.CapTimetableRead), h.Timetable.Get)
				timetable.GET("/staff/:id/ics", can(service.CapTimetableRead), h.Timetable.ExportICS)
				timetable.POST("", can(service.CapTimetableWrite), h.Timetable.Create)
				timetable.PATCH("/:id", can(service.CapTimetableWrite), h.Timetable.Update)
				timetable.DELETE("/:id", can(service.CapTimetableWrite), h.Timetable.Delete)
			}

			// 考勤场次
			sessions := authorized.Group("/attendance/sessions")
			{
				sessions.GET("/today", can(service.CapAttendanceTake), h.Attendance.Today)
				sessions.GET("/:id", can(service.CapAttendanceTake), h.Attendance.Get)
				sessions.GET("/:id/students", can(service.CapAttendanceTake), h.Attendance.Students)
				sessions.POST("/:id/mark", can(service.CapAttendanceTake), h.Attendance.Mark)
				sessions.POST("/:id/lock", can(service.CapAttendanceLock), h.Attendance.Lock)
				sessions.POST("/:id/cancel", can(service.CapAttendanceTake), h.Attendance.Cancel)
			}

			// 考勤报表
			report := authorized.Group("/attendance/report")
			{
				report.GET("/student/:id", can(service.CapReportRead), h.Report.Student)
				report.GET("/subject/:id", can(service.CapReportRead), h.Report.Subject)
				report.GET("/subject/:id/export", can(service.CapReportExport), h.Report.ExportSubject)
				report.GET("/staff/:id", can(service.CapReportRead), h.Report.Staff)
			}
		}
	}

	return r
}
