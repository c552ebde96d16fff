package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"campus-hub/backend/internal/model"
	pkgerrors "campus-hub/backend/pkg/errors"
)

// SessionWithCounts 场次及其出勤记录计数（教职工报表）
type SessionWithCounts struct {
	model.AttendanceSession
	SubjectName  string `gorm:"column:subject_name"`
	TotalRecords int64  `gorm:"column:total_records"`
	PresentCount int64  `gorm:"column:present_count"`
}

// AttendanceSessionRepository 考勤场次数据访问接口
type AttendanceSessionRepository interface {
	GetByID(ctx context.Context, id string) (*model.AttendanceSession, error)
	GetByDateAndTimetable(ctx context.Context, date time.Time, timetableID string) (*model.AttendanceSession, error)
	// Create 插入新场次；命中 (date, timetable_id) 唯一索引时返回 pkgerrors.ErrDuplicateKey
	Create(ctx context.Context, session *model.AttendanceSession) error
	// MarkAttendance 在单个事务内：行锁场次 → 校验未锁定 → 批量 upsert 记录 → 置为 COMPLETED。
	// 场次已锁定时返回 pkgerrors.ErrSessionLocked，且不写入任何记录。
	MarkAttendance(ctx context.Context, sessionID string, records []model.AttendanceRecord) error
	// Cancel 仅对未锁定场次生效，同一条 UPDATE 内置为 CANCELLED 并锁定；
	// 未命中（已锁定）时返回 pkgerrors.ErrSessionLocked
	Cancel(ctx context.Context, id string) error
	Lock(ctx context.Context, id string) error
	ListByStaffWithCounts(ctx context.Context, staffID string) ([]SessionWithCounts, error)
}

type attendanceSessionRepo struct {
	db *gorm.DB
}

// NewAttendanceSessionRepo 创建 AttendanceSessionRepository 实例
func NewAttendanceSessionRepo(db *gorm.DB) AttendanceSessionRepository {
	return &attendanceSessionRepo{db: db}
}

func (r *attendanceSessionRepo) GetByID(ctx context.Context, id string) (*model.AttendanceSession, error) {
	var session model.AttendanceSession
	err := r.db.WithContext(ctx).
		Preload("Timetable").
		Preload("Subject").
		Where("session_id = ?", id).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *attendanceSessionRepo) GetByDateAndTimetable(ctx context.Context, date time.Time, timetableID string) (*model.AttendanceSession, error) {
	var session model.AttendanceSession
	err := r.db.WithContext(ctx).
		Where("date = ? AND timetable_id = ?", date.Format("2006-01-02"), timetableID).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *attendanceSessionRepo) Create(ctx context.Context, session *model.AttendanceSession) error {
	err := r.db.WithContext(ctx).
		Omit("Timetable", "Subject", "Records").
		Create(session).Error
	if pkgerrors.IsUniqueViolation(err) {
		return pkgerrors.ErrDuplicateKey
	}
	return err
}

func (r *attendanceSessionRepo) MarkAttendance(ctx context.Context, sessionID string, records []model.AttendanceRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var session model.AttendanceSession
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("session_id = ?", sessionID).
			First(&session).Error; err != nil {
			return err
		}
		if session.IsLocked {
			return pkgerrors.ErrSessionLocked
		}

		if len(records) > 0 {
			for i := range records {
				records[i].SessionID = sessionID
			}
			if err := tx.Omit("Student").Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "session_id"}, {Name: "student_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"status", "remarks", "updated_at"}),
			}).Create(&records).Error; err != nil {
				return err
			}
		}

		return tx.Model(&model.AttendanceSession{}).
			Where("session_id = ?", sessionID).
			Updates(map[string]interface{}{
				"status":     model.SessionCompleted,
				"updated_at": gorm.Expr("NOW()"),
			}).Error
	})
}

func (r *attendanceSessionRepo) Cancel(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Model(&model.AttendanceSession{}).
		Where("session_id = ? AND is_locked = ?", id, false).
		Updates(map[string]interface{}{
			"status":     model.SessionCancelled,
			"is_locked":  true,
			"updated_at": gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrSessionLocked
	}
	return nil
}

func (r *attendanceSessionRepo) Lock(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Model(&model.AttendanceSession{}).
		Where("session_id = ?", id).
		Updates(map[string]interface{}{
			"is_locked":  true,
			"updated_at": gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *attendanceSessionRepo) ListByStaffWithCounts(ctx context.Context, staffID string) ([]SessionWithCounts, error) {
	var rows []SessionWithCounts
	err := r.db.WithContext(ctx).
		Table("attendance_sessions AS s").
		Select(`s.*, sub.name AS subject_name,
			COUNT(ar.record_id) AS total_records,
			COUNT(ar.record_id) FILTER (WHERE ar.status = ?) AS present_count`, model.StatusPresent).
		Joins("JOIN subjects sub ON sub.subject_id = s.subject_id").
		Joins("LEFT JOIN attendance_records ar ON ar.session_id = s.session_id").
		Where("s.staff_id = ?", staffID).
		Group("s.session_id, sub.name").
		Order("s.date DESC, s.start_time DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
