package service

import (
	"time"

	"go.uber.org/zap"

	"campus-hub/backend/config"
	"campus-hub/backend/internal/repository"
	"campus-hub/backend/pkg/jwt"
	"campus-hub/backend/pkg/metrics"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth       AuthService
	Timetable  TimetableService
	Attendance AttendanceService
	Report     ReportService
}

// Options 可选依赖：未启用 Redis / 指标时对应字段为 nil，Now 为 nil 时使用 time.Now
type Options struct {
	Tokens  TokenStore
	Metrics *metrics.Metrics
	Now     func() time.Time
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	opts Options,
	logger *zap.Logger,
) *Service {
	loc := cfg.Attendance.Location()
	return &Service{
		Auth:       NewAuthService(repo, jwtMgr, opts.Tokens, logger),
		Timetable:  NewTimetableService(repo, loc, opts.Metrics, opts.Now, logger),
		Attendance: NewAttendanceService(repo, &cfg.Attendance, opts.Metrics, opts.Now, logger),
		Report:     NewReportService(repo, logger),
	}
}
