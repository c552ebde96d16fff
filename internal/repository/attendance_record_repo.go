package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"campus-hub/backend/internal/model"
)

// StudentAttendanceRow 学生在已完成场次中的单条出勤
type StudentAttendanceRow struct {
	SessionID   string                 `gorm:"column:session_id"`
	Date        time.Time              `gorm:"column:date"`
	SubjectID   string                 `gorm:"column:subject_id"`
	SubjectName string                 `gorm:"column:subject_name"`
	Status      model.AttendanceStatus `gorm:"column:status"`
	Remarks     *string                `gorm:"column:remarks"`
}

// StudentCountRow 某课程下单个学生的出勤计数
type StudentCountRow struct {
	StudentID   string `gorm:"column:student_id"`
	StudentName string `gorm:"column:student_name"`
	RollNumber  string `gorm:"column:roll_number"`
	Total       int64  `gorm:"column:total"`
	Present     int64  `gorm:"column:present"`
}

// AttendanceRecordRepository 出勤记录数据访问接口
// 报表查询只统计 COMPLETED 场次
type AttendanceRecordRepository interface {
	ListBySession(ctx context.Context, sessionID string) ([]model.AttendanceRecord, error)
	ListCompletedByStudent(ctx context.Context, studentID string) ([]StudentAttendanceRow, error)
	CountCompletedBySubject(ctx context.Context, subjectID string) ([]StudentCountRow, error)
}

type attendanceRecordRepo struct {
	db *gorm.DB
}

// NewAttendanceRecordRepo 创建 AttendanceRecordRepository 实例
func NewAttendanceRecordRepo(db *gorm.DB) AttendanceRecordRepository {
	return &attendanceRecordRepo{db: db}
}

func (r *attendanceRecordRepo) ListBySession(ctx context.Context, sessionID string) ([]model.AttendanceRecord, error) {
	var records []model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&records).Error
	return records, err
}

func (r *attendanceRecordRepo) ListCompletedByStudent(ctx context.Context, studentID string) ([]StudentAttendanceRow, error) {
	var rows []StudentAttendanceRow
	err := r.db.WithContext(ctx).
		Table("attendance_records AS ar").
		Select("ar.session_id, s.date, s.subject_id, sub.name AS subject_name, ar.status, ar.remarks").
		Joins("JOIN attendance_sessions s ON s.session_id = ar.session_id").
		Joins("JOIN subjects sub ON sub.subject_id = s.subject_id").
		Where("ar.student_id = ? AND s.status = ?", studentID, model.SessionCompleted).
		Order("s.date DESC, s.start_time DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *attendanceRecordRepo) CountCompletedBySubject(ctx context.Context, subjectID string) ([]StudentCountRow, error) {
	var rows []StudentCountRow
	err := r.db.WithContext(ctx).
		Table("attendance_records AS ar").
		Select(`ar.student_id, u.name AS student_name, COALESCE(sp.roll_number, '') AS roll_number,
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE ar.status = ?) AS present`, model.StatusPresent).
		Joins("JOIN attendance_sessions s ON s.session_id = ar.session_id").
		Joins("JOIN users u ON u.user_id = ar.student_id").
		Joins("LEFT JOIN student_profiles sp ON sp.user_id = ar.student_id").
		Where("s.subject_id = ? AND s.status = ?", subjectID, model.SessionCompleted).
		Group("ar.student_id, u.name, sp.roll_number").
		Order("roll_number ASC").
		Scan(&rows).Error
	return rows, err
}
