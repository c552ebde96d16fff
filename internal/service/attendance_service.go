package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"campus-hub/backend/config"
	"campus-hub/backend/internal/dto"
	"campus-hub/backend/internal/model"
	"campus-hub/backend/internal/repository"
	pkgerrors "campus-hub/backend/pkg/errors"
	"campus-hub/backend/pkg/metrics"
)

// ── 考勤模块业务错误 ──

var (
	ErrSessionNotFound    = errors.New("考勤场次不存在")
	ErrSessionLocked      = errors.New("考勤场次已锁定，无法修改出勤")
	ErrCannotCancelLocked = errors.New("已锁定的考勤场次不能取消")
	ErrAttendanceEmpty    = errors.New("出勤记录不能为空")
	ErrAttendanceStatus   = errors.New("出勤状态无效")
	ErrStudentNotInRoster = errors.New("学生不在该场次的点名名单中")
)

// ── AttendanceService 接口 ─────────────────────────────────
//
// 场次状态机：PENDING → COMPLETED（点名）、PENDING → CANCELLED（取消，同时锁定）。
// 锁定后禁止点名与取消；锁定本身幂等。
// "今天的场次"按 (date, timetable_id) 惰性创建，唯一索引冲突时回读已有行。
// ─────────────────────────────────────────────────────────────

// AttendanceService 考勤场次业务接口
type AttendanceService interface {
	GetTodaySessions(ctx context.Context, staffID string) ([]dto.SessionResponse, error)
	GetSession(ctx context.Context, sessionID string) (*dto.SessionDetailResponse, error)
	GetStudentsForSession(ctx context.Context, sessionID string) ([]dto.RosterStudentResponse, error)
	// MarkAttendance 全部记录与状态迁移在同一事务中完成
	MarkAttendance(ctx context.Context, sessionID string, items []dto.MarkRecordItem) (*dto.MarkAttendanceResponse, error)
	CancelSession(ctx context.Context, sessionID string) (*dto.SessionResponse, error)
	LockSession(ctx context.Context, sessionID string) (*dto.SessionResponse, error)
}

type attendanceService struct {
	repo           *repository.Repository
	metrics        *metrics.Metrics
	loc            *time.Location
	sundayAsMonday bool
	now            func() time.Time
	logger         *zap.Logger
}

// NewAttendanceService 创建 AttendanceService 实例
func NewAttendanceService(
	repo *repository.Repository,
	cfg *config.AttendanceConfig,
	m *metrics.Metrics,
	now func() time.Time,
	logger *zap.Logger,
) AttendanceService {
	if now == nil {
		now = time.Now
	}
	return &attendanceService{
		repo:           repo,
		metrics:        m,
		loc:            cfg.Location(),
		sundayAsMonday: cfg.SundayAsMonday,
		now:            now,
		logger:         logger,
	}
}

// ═══════════════════════════════════════════════════════════
// GetTodaySessions 惰性生成今日场次
// ═══════════════════════════════════════════════════════════

func (s *attendanceService) GetTodaySessions(ctx context.Context, staffID string) ([]dto.SessionResponse, error) {
	local := s.now().In(s.loc)
	today := calendarDate(local)

	day, ok := model.DayOfWeekFor(local, s.sundayAsMonday)
	if !ok {
		return []dto.SessionResponse{}, nil
	}

	entries, err := s.repo.Timetable.ListByStaffAndDay(ctx, staffID, day)
	if err != nil {
		s.logger.Error("查询今日课表失败", zap.String("staff_id", staffID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.SessionResponse, 0, len(entries))
	created := 0
	for i := range entries {
		entry := &entries[i]
		session, isNew, err := s.getOrCreateSession(ctx, entry, today)
		if err != nil {
			return nil, err
		}
		if isNew {
			created++
		}

		resp := toSessionResponse(session)
		tt := toTimetableResponse(entry)
		resp.Timetable = &tt
		if entry.Subject != nil {
			resp.SubjectName = entry.Subject.Name
		}
		result = append(result, resp)
	}

	if created > 0 {
		s.metrics.SessionsMaterialized(created)
		s.logger.Info("已生成今日考勤场次",
			zap.String("staff_id", staffID),
			zap.String("date", today.Format("2006-01-02")),
			zap.Int("created", created),
		)
	}
	return result, nil
}

// getOrCreateSession 以 (date, timetable_id) 为幂等键。
// 并发请求下后到者插入会命中唯一索引，此时回读先到者创建的行。
func (s *attendanceService) getOrCreateSession(ctx context.Context, entry *model.TimetableEntry, date time.Time) (*model.AttendanceSession, bool, error) {
	existing, err := s.repo.AttendanceSession.GetByDateAndTimetable(ctx, date, entry.TimetableID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询考勤场次失败", zap.Error(err))
		return nil, false, err
	}

	session := model.SessionFromEntry(entry, date)
	err = s.repo.AttendanceSession.Create(ctx, session)
	if err == nil {
		return session, true, nil
	}
	if !errors.Is(err, pkgerrors.ErrDuplicateKey) {
		s.logger.Error("创建考勤场次失败", zap.String("timetable_id", entry.TimetableID), zap.Error(err))
		return nil, false, err
	}

	existing, err = s.repo.AttendanceSession.GetByDateAndTimetable(ctx, date, entry.TimetableID)
	if err != nil {
		s.logger.Error("回读考勤场次失败", zap.Error(err))
		return nil, false, err
	}
	return existing, false, nil
}

// ═══════════════════════════════════════════════════════════
// 场次详情 / 点名名单
// ═══════════════════════════════════════════════════════════

func (s *attendanceService) GetSession(ctx context.Context, sessionID string) (*dto.SessionDetailResponse, error) {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	records, err := s.repo.AttendanceRecord.ListBySession(ctx, sessionID)
	if err != nil {
		s.logger.Error("查询出勤记录失败", zap.Error(err))
		return nil, err
	}

	detail := &dto.SessionDetailResponse{
		SessionResponse: toSessionResponse(session),
		Records:         make([]dto.RecordResponse, 0, len(records)),
	}
	if session.Timetable != nil {
		tt := toTimetableResponse(session.Timetable)
		detail.Timetable = &tt
	}
	for _, r := range records {
		item := dto.RecordResponse{
			StudentID: r.StudentID,
			Status:    string(r.Status),
			Remarks:   r.Remarks,
		}
		if r.Student != nil {
			item.StudentName = r.Student.Name
		}
		detail.Records = append(detail.Records, item)
	}
	return detail, nil
}

func (s *attendanceService) GetStudentsForSession(ctx context.Context, sessionID string) ([]dto.RosterStudentResponse, error) {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	students, err := s.repo.User.ListRoster(ctx, repository.RosterFilter{
		DepartmentID: session.DepartmentID,
		Semester:     session.Semester,
		Section:      session.Section,
	})
	if err != nil {
		s.logger.Error("查询点名名单失败", zap.String("session_id", sessionID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.RosterStudentResponse, 0, len(students))
	for _, u := range students {
		item := dto.RosterStudentResponse{ID: u.UserID, Name: u.Name, Email: u.Email}
		if u.StudentProfile != nil {
			item.RollNumber = u.StudentProfile.RollNumber
			item.Semester = u.StudentProfile.Semester
			item.Section = u.StudentProfile.Section
		}
		result = append(result, item)
	}
	return result, nil
}

// ═══════════════════════════════════════════════════════════
// 点名 / 取消 / 锁定
// ═══════════════════════════════════════════════════════════

func (s *attendanceService) MarkAttendance(ctx context.Context, sessionID string, items []dto.MarkRecordItem) (*dto.MarkAttendanceResponse, error) {
	if len(items) == 0 {
		return nil, ErrAttendanceEmpty
	}

	// 同一批次内同一学生重复出现时以最后一条为准
	index := make(map[string]int, len(items))
	records := make([]model.AttendanceRecord, 0, len(items))
	for _, item := range items {
		status := model.AttendanceStatus(item.Status)
		if !status.Valid() {
			return nil, ErrAttendanceStatus
		}
		rec := model.AttendanceRecord{
			SessionID: sessionID,
			StudentID: item.StudentID,
			Status:    status,
			Remarks:   normalizeOptional(item.Remarks),
		}
		if i, ok := index[item.StudentID]; ok {
			records[i] = rec
			continue
		}
		index[item.StudentID] = len(records)
		records = append(records, rec)
	}

	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsLocked {
		return nil, ErrSessionLocked
	}
	if err := s.checkRoster(ctx, session, records); err != nil {
		return nil, err
	}

	if err := s.repo.AttendanceSession.MarkAttendance(ctx, sessionID, records); err != nil {
		switch {
		case errors.Is(err, pkgerrors.ErrSessionLocked):
			return nil, ErrSessionLocked
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrSessionNotFound
		}
		s.logger.Error("保存出勤记录失败", zap.String("session_id", sessionID), zap.Error(err))
		return nil, err
	}

	present := 0
	for _, r := range records {
		if r.Status == model.StatusPresent {
			present++
		}
	}
	s.metrics.AttendanceMarked(string(model.StatusPresent), present)
	s.metrics.AttendanceMarked(string(model.StatusAbsent), len(records)-present)
	s.metrics.SessionTransitioned(string(model.SessionCompleted))

	s.logger.Info("考勤已录入",
		zap.String("session_id", sessionID),
		zap.Int("records", len(records)),
		zap.Int("present", present),
	)

	return &dto.MarkAttendanceResponse{
		SessionID: sessionID,
		Status:    string(model.SessionCompleted),
		Marked:    len(records),
	}, nil
}

func (s *attendanceService) CancelSession(ctx context.Context, sessionID string) (*dto.SessionResponse, error) {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsLocked {
		return nil, ErrCannotCancelLocked
	}

	if err := s.repo.AttendanceSession.Cancel(ctx, sessionID); err != nil {
		if errors.Is(err, pkgerrors.ErrSessionLocked) {
			return nil, ErrCannotCancelLocked
		}
		s.logger.Error("取消考勤场次失败", zap.String("session_id", sessionID), zap.Error(err))
		return nil, err
	}
	s.metrics.SessionTransitioned(string(model.SessionCancelled))

	session.Status = model.SessionCancelled
	session.IsLocked = true
	resp := toSessionResponse(session)
	return &resp, nil
}

func (s *attendanceService) LockSession(ctx context.Context, sessionID string) (*dto.SessionResponse, error) {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if !session.IsLocked {
		if err := s.repo.AttendanceSession.Lock(ctx, sessionID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrSessionNotFound
			}
			s.logger.Error("锁定考勤场次失败", zap.String("session_id", sessionID), zap.Error(err))
			return nil, err
		}
		session.IsLocked = true
		s.metrics.SessionTransitioned("LOCKED")
	}

	resp := toSessionResponse(session)
	return &resp, nil
}

// ── 辅助函数 ──

func (s *attendanceService) loadSession(ctx context.Context, sessionID string) (*model.AttendanceSession, error) {
	session, err := s.repo.AttendanceSession.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		s.logger.Error("查询考勤场次失败", zap.String("session_id", sessionID), zap.Error(err))
		return nil, err
	}
	return session, nil
}

// checkRoster 要求每条记录的学生都在场次名单内（同部门、同学期、同班级的在籍学生）
func (s *attendanceService) checkRoster(ctx context.Context, session *model.AttendanceSession, records []model.AttendanceRecord) error {
	students, err := s.repo.User.ListRoster(ctx, repository.RosterFilter{
		DepartmentID: session.DepartmentID,
		Semester:     session.Semester,
		Section:      session.Section,
	})
	if err != nil {
		s.logger.Error("查询点名名单失败", zap.String("session_id", session.SessionID), zap.Error(err))
		return err
	}
	roster := make(map[string]struct{}, len(students))
	for _, u := range students {
		roster[u.UserID] = struct{}{}
	}
	for _, r := range records {
		if _, ok := roster[r.StudentID]; !ok {
			s.logger.Warn("点名学生不在名单内",
				zap.String("session_id", session.SessionID),
				zap.String("student_id", r.StudentID),
			)
			return ErrStudentNotInRoster
		}
	}
	return nil
}

// calendarDate 取本地日历日，落在 UTC 零点（对应 DATE 列）
func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func toSessionResponse(sess *model.AttendanceSession) dto.SessionResponse {
	resp := dto.SessionResponse{
		ID:           sess.SessionID,
		Date:         sess.Date.Format("2006-01-02"),
		TimetableID:  sess.TimetableID,
		StaffID:      sess.StaffID,
		SubjectID:    sess.SubjectID,
		DepartmentID: sess.DepartmentID,
		Semester:     sess.Semester,
		Section:      sess.Section,
		StartTime:    sess.StartTime.String(),
		EndTime:      sess.EndTime.String(),
		Status:       string(sess.Status),
		IsLocked:     sess.IsLocked,
	}
	if sess.Subject != nil {
		resp.SubjectName = sess.Subject.Name
	}
	return resp
}
