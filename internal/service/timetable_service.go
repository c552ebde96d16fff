package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"campus-hub/backend/internal/dto"
	"campus-hub/backend/internal/model"
	"campus-hub/backend/internal/repository"
	pkgerrors "campus-hub/backend/pkg/errors"
	"campus-hub/backend/pkg/metrics"
)

// ── 课表模块业务错误 ──

var (
	ErrTimetableNotFound           = errors.New("课表条目不存在")
	ErrTimetableInvalidTime        = errors.New("时间格式无效")
	ErrTimetableTimeOrder          = errors.New("开始时间必须早于结束时间")
	ErrTimetableStaffClash         = errors.New("该教职工在此时段已有课程")
	ErrTimetableRoomClash          = errors.New("该教室在此时段已被占用")
	ErrTimetableStaffInvalid       = errors.New("教职工不存在或已停用")
	ErrTimetableSubjectNotFound    = errors.New("课程不存在")
	ErrTimetableDepartmentNotFound = errors.New("院系不存在")
)

// ── TimetableService 接口 ──────────────────────────────────
//
// 校验顺序：时刻先后 → 引用实体 → 教职工冲突 → 教室冲突（仅当填写教室）。
// 冲突采用半开区间 [start, end)，首尾相接不算冲突；不同星期永不冲突；
// 院系不同不豁免教职工冲突。
// ─────────────────────────────────────────────────────────────

// TimetableService 课表模块业务接口
type TimetableService interface {
	Create(ctx context.Context, req *dto.CreateTimetableRequest, operatorID string) (*dto.TimetableResponse, error)
	// Update 合并部分字段后重新校验（冲突查询排除自身）
	Update(ctx context.Context, id string, req *dto.UpdateTimetableRequest, operatorID string) (*dto.TimetableResponse, error)
	// Delete 级联删除该条目的考勤场次与出勤记录
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*dto.TimetableResponse, error)
	List(ctx context.Context, req *dto.ListTimetableRequest) ([]dto.TimetableResponse, error)
	// ExportICS 导出教职工周课表为 iCalendar
	ExportICS(ctx context.Context, staffID string) ([]byte, string, error)
}

type timetableService struct {
	repo    *repository.Repository
	metrics *metrics.Metrics
	loc     *time.Location
	now     func() time.Time
	logger  *zap.Logger
}

// NewTimetableService 创建 TimetableService 实例
func NewTimetableService(
	repo *repository.Repository,
	loc *time.Location,
	m *metrics.Metrics,
	now func() time.Time,
	logger *zap.Logger,
) TimetableService {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &timetableService{repo: repo, metrics: m, loc: loc, now: now, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// Create
// ═══════════════════════════════════════════════════════════

func (s *timetableService) Create(ctx context.Context, req *dto.CreateTimetableRequest, operatorID string) (*dto.TimetableResponse, error) {
	start, end, err := parseTimeRange(req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	entry := &model.TimetableEntry{
		StaffID:      req.StaffID,
		SubjectID:    req.SubjectID,
		DepartmentID: req.DepartmentID,
		DayOfWeek:    model.DayOfWeek(req.DayOfWeek),
		StartTime:    start,
		EndTime:      end,
		Room:         normalizeOptional(req.Room),
		Semester:     req.Semester,
		Section:      normalizeOptional(req.Section),
	}
	if operatorID != "" {
		entry.CreatedBy = &operatorID
		entry.UpdatedBy = &operatorID
	}

	if err := s.validate(ctx, entry, "", referenceChecks{staff: true, subject: true, department: true}); err != nil {
		return nil, err
	}

	if err := s.repo.Timetable.Create(ctx, entry); err != nil {
		s.logger.Error("创建课表条目失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("课表条目已创建",
		zap.String("timetable_id", entry.TimetableID),
		zap.String("staff_id", entry.StaffID),
		zap.String("day_of_week", string(entry.DayOfWeek)),
	)

	created, err := s.repo.Timetable.GetByID(ctx, entry.TimetableID)
	if err != nil {
		s.logger.Warn("重新加载课表条目失败", zap.Error(err))
		resp := toTimetableResponse(entry)
		return &resp, nil
	}
	resp := toTimetableResponse(created)
	return &resp, nil
}

// ═══════════════════════════════════════════════════════════
// Update
// ═══════════════════════════════════════════════════════════

func (s *timetableService) Update(ctx context.Context, id string, req *dto.UpdateTimetableRequest, operatorID string) (*dto.TimetableResponse, error) {
	entry, err := s.repo.Timetable.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTimetableNotFound
		}
		s.logger.Error("查询课表条目失败", zap.Error(err))
		return nil, err
	}

	checks := referenceChecks{}
	if req.StaffID != nil && *req.StaffID != entry.StaffID {
		entry.StaffID = *req.StaffID
		entry.Staff = nil
		checks.staff = true
	}
	if req.SubjectID != nil && *req.SubjectID != entry.SubjectID {
		entry.SubjectID = *req.SubjectID
		entry.Subject = nil
		checks.subject = true
	}
	if req.DepartmentID != nil && *req.DepartmentID != entry.DepartmentID {
		entry.DepartmentID = *req.DepartmentID
		entry.Department = nil
		checks.department = true
	}
	if req.DayOfWeek != nil {
		entry.DayOfWeek = model.DayOfWeek(*req.DayOfWeek)
	}
	if req.StartTime != nil {
		t, err := model.ParseTimeOfDay(*req.StartTime)
		if err != nil {
			return nil, fmt.Errorf("%w: start_time", ErrTimetableInvalidTime)
		}
		entry.StartTime = t
	}
	if req.EndTime != nil {
		t, err := model.ParseTimeOfDay(*req.EndTime)
		if err != nil {
			return nil, fmt.Errorf("%w: end_time", ErrTimetableInvalidTime)
		}
		entry.EndTime = t
	}
	if req.Room != nil {
		entry.Room = normalizeOptional(req.Room)
	}
	if req.Semester != nil {
		entry.Semester = req.Semester
	}
	if req.Section != nil {
		entry.Section = normalizeOptional(req.Section)
	}
	if req.Version != nil {
		entry.Version = *req.Version
	}
	if operatorID != "" {
		entry.UpdatedBy = &operatorID
	}

	if err := s.validate(ctx, entry, entry.TimetableID, checks); err != nil {
		return nil, err
	}

	if err := s.repo.Timetable.Update(ctx, entry); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, pkgerrors.ErrOptimisticLock
		}
		s.logger.Error("更新课表条目失败", zap.Error(err))
		return nil, err
	}

	updated, err := s.repo.Timetable.GetByID(ctx, id)
	if err != nil {
		resp := toTimetableResponse(entry)
		return &resp, nil
	}
	resp := toTimetableResponse(updated)
	return &resp, nil
}

// ═══════════════════════════════════════════════════════════
// Delete / 查询
// ═══════════════════════════════════════════════════════════

func (s *timetableService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Timetable.DeleteCascade(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTimetableNotFound
		}
		s.logger.Error("删除课表条目失败", zap.String("timetable_id", id), zap.Error(err))
		return err
	}
	s.logger.Info("课表条目已删除", zap.String("timetable_id", id))
	return nil
}

func (s *timetableService) GetByID(ctx context.Context, id string) (*dto.TimetableResponse, error) {
	entry, err := s.repo.Timetable.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTimetableNotFound
		}
		return nil, err
	}
	resp := toTimetableResponse(entry)
	return &resp, nil
}

func (s *timetableService) List(ctx context.Context, req *dto.ListTimetableRequest) ([]dto.TimetableResponse, error) {
	entries, err := s.repo.Timetable.List(ctx, repository.TimetableFilter{
		StaffID:      req.StaffID,
		DepartmentID: req.DepartmentID,
		DayOfWeek:    model.DayOfWeek(req.DayOfWeek),
	})
	if err != nil {
		s.logger.Error("查询课表列表失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.TimetableResponse, 0, len(entries))
	for i := range entries {
		result = append(result, toTimetableResponse(&entries[i]))
	}
	return result, nil
}

// ═══════════════════════════════════════════════════════════
// 校验
// ═══════════════════════════════════════════════════════════

type referenceChecks struct {
	staff      bool
	subject    bool
	department bool
}

func (s *timetableService) validate(ctx context.Context, entry *model.TimetableEntry, excludeID string, checks referenceChecks) error {
	// 1. 时刻先后
	if entry.StartTime >= entry.EndTime {
		s.metrics.TimetableRejected("time_order")
		return ErrTimetableTimeOrder
	}

	// 2. 引用实体
	if err := s.checkReferences(ctx, entry, checks); err != nil {
		return err
	}

	q := repository.ClashQuery{
		DayOfWeek: entry.DayOfWeek,
		Start:     entry.StartTime,
		End:       entry.EndTime,
		ExcludeID: excludeID,
	}

	// 3. 教职工冲突
	clash, err := s.repo.Timetable.FindStaffClash(ctx, entry.StaffID, q)
	if err != nil {
		s.logger.Error("查询教职工冲突失败", zap.Error(err))
		return err
	}
	if clash != nil {
		s.metrics.TimetableRejected("staff_clash")
		return fmt.Errorf("%w（%s %s-%s）", ErrTimetableStaffClash, clash.DayOfWeek, clash.StartTime, clash.EndTime)
	}

	// 4. 教室冲突
	if entry.Room != nil {
		clash, err = s.repo.Timetable.FindRoomClash(ctx, *entry.Room, q)
		if err != nil {
			s.logger.Error("查询教室冲突失败", zap.Error(err))
			return err
		}
		if clash != nil {
			s.metrics.TimetableRejected("room_clash")
			return fmt.Errorf("%w（%s %s %s-%s）", ErrTimetableRoomClash, *entry.Room, clash.DayOfWeek, clash.StartTime, clash.EndTime)
		}
	}

	return nil
}

func (s *timetableService) checkReferences(ctx context.Context, entry *model.TimetableEntry, checks referenceChecks) error {
	if checks.staff {
		staff, err := s.repo.User.GetByID(ctx, entry.StaffID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTimetableStaffInvalid
			}
			return err
		}
		if staff.Role != model.RoleStaff || !staff.IsActive {
			return ErrTimetableStaffInvalid
		}
	}
	if checks.subject {
		if _, err := s.repo.Subject.GetByID(ctx, entry.SubjectID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTimetableSubjectNotFound
			}
			return err
		}
	}
	if checks.department {
		if _, err := s.repo.Department.GetByID(ctx, entry.DepartmentID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTimetableDepartmentNotFound
			}
			return err
		}
	}
	return nil
}

// ── 辅助函数 ──

func parseTimeRange(startStr, endStr string) (model.TimeOfDay, model.TimeOfDay, error) {
	start, err := model.ParseTimeOfDay(startStr)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: start_time", ErrTimetableInvalidTime)
	}
	end, err := model.ParseTimeOfDay(endStr)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: end_time", ErrTimetableInvalidTime)
	}
	return start, end, nil
}

// normalizeOptional 去除首尾空白，空字符串视为未填写
func normalizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func toTimetableResponse(e *model.TimetableEntry) dto.TimetableResponse {
	resp := dto.TimetableResponse{
		ID:           e.TimetableID,
		StaffID:      e.StaffID,
		SubjectID:    e.SubjectID,
		DepartmentID: e.DepartmentID,
		DayOfWeek:    string(e.DayOfWeek),
		StartTime:    e.StartTime.String(),
		EndTime:      e.EndTime.String(),
		Room:         e.Room,
		Semester:     e.Semester,
		Section:      e.Section,
		Version:      e.Version,
	}
	if e.Staff != nil {
		resp.StaffName = e.Staff.Name
	}
	if e.Subject != nil {
		resp.SubjectCode = e.Subject.Code
		resp.SubjectName = e.Subject.Name
	}
	return resp
}
