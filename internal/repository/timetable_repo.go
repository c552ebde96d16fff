package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"campus-hub/backend/internal/model"
	pkgerrors "campus-hub/backend/pkg/errors"
)

// TimetableFilter 课表列表筛选条件（空值表示不限）
type TimetableFilter struct {
	StaffID      string
	DepartmentID string
	DayOfWeek    model.DayOfWeek
}

// ClashQuery 冲突查询：同一星期内与 [Start, End) 半开区间相交的条目
// ExcludeID 非空时排除该条目自身（更新场景）
type ClashQuery struct {
	DayOfWeek model.DayOfWeek
	Start     model.TimeOfDay
	End       model.TimeOfDay
	ExcludeID string
}

// TimetableRepository 课表条目数据访问接口
type TimetableRepository interface {
	Create(ctx context.Context, entry *model.TimetableEntry) error
	GetByID(ctx context.Context, id string) (*model.TimetableEntry, error)
	List(ctx context.Context, filter TimetableFilter) ([]model.TimetableEntry, error)
	ListByStaffAndDay(ctx context.Context, staffID string, day model.DayOfWeek) ([]model.TimetableEntry, error)
	// FindStaffClash 返回该教职工第一个冲突条目，无冲突时返回 (nil, nil)
	FindStaffClash(ctx context.Context, staffID string, q ClashQuery) (*model.TimetableEntry, error)
	// FindRoomClash 返回该教室第一个冲突条目，无冲突时返回 (nil, nil)
	FindRoomClash(ctx context.Context, room string, q ClashQuery) (*model.TimetableEntry, error)
	// Update 按 version 乐观锁更新，冲突时返回 pkgerrors.ErrOptimisticLock
	Update(ctx context.Context, entry *model.TimetableEntry) error
	// DeleteCascade 在同一事务中依次删除出勤记录、考勤场次、课表条目
	DeleteCascade(ctx context.Context, id string) error
}

type timetableRepo struct {
	db *gorm.DB
}

// NewTimetableRepo 创建 TimetableRepository 实例
func NewTimetableRepo(db *gorm.DB) TimetableRepository {
	return &timetableRepo{db: db}
}

func (r *timetableRepo) Create(ctx context.Context, entry *model.TimetableEntry) error {
	return r.db.WithContext(ctx).Omit("Staff", "Subject", "Department").Create(entry).Error
}

func (r *timetableRepo) GetByID(ctx context.Context, id string) (*model.TimetableEntry, error) {
	var entry model.TimetableEntry
	err := r.db.WithContext(ctx).
		Preload("Staff").
		Preload("Subject").
		Preload("Department").
		Where("timetable_id = ?", id).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *timetableRepo) List(ctx context.Context, filter TimetableFilter) ([]model.TimetableEntry, error) {
	db := r.db.WithContext(ctx)
	if filter.StaffID != "" {
		db = db.Where("staff_id = ?", filter.StaffID)
	}
	if filter.DepartmentID != "" {
		db = db.Where("department_id = ?", filter.DepartmentID)
	}
	if filter.DayOfWeek != "" {
		db = db.Where("day_of_week = ?", filter.DayOfWeek)
	}

	var entries []model.TimetableEntry
	err := db.Preload("Subject").
		Order("day_of_week ASC, start_time ASC").
		Find(&entries).Error
	return entries, err
}

func (r *timetableRepo) ListByStaffAndDay(ctx context.Context, staffID string, day model.DayOfWeek) ([]model.TimetableEntry, error) {
	var entries []model.TimetableEntry
	err := r.db.WithContext(ctx).
		Preload("Subject").
		Where("staff_id = ? AND day_of_week = ?", staffID, day).
		Order("start_time ASC").
		Find(&entries).Error
	return entries, err
}

func (r *timetableRepo) FindStaffClash(ctx context.Context, staffID string, q ClashQuery) (*model.TimetableEntry, error) {
	return findClash(r.db.WithContext(ctx).Where("staff_id = ?", staffID), q)
}

func (r *timetableRepo) FindRoomClash(ctx context.Context, room string, q ClashQuery) (*model.TimetableEntry, error) {
	return findClash(r.db.WithContext(ctx).Where("room = ?", room), q)
}

// findClash 半开区间相交：existing.start < proposed.end AND existing.end > proposed.start
func findClash(db *gorm.DB, q ClashQuery) (*model.TimetableEntry, error) {
	db = db.Where("day_of_week = ? AND start_time < ? AND end_time > ?", q.DayOfWeek, q.End, q.Start)
	if q.ExcludeID != "" {
		db = db.Where("timetable_id <> ?", q.ExcludeID)
	}

	var entry model.TimetableEntry
	err := db.Order("start_time ASC").First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *timetableRepo) Update(ctx context.Context, entry *model.TimetableEntry) error {
	oldVersion := entry.Version
	result := r.db.WithContext(ctx).
		Model(&model.TimetableEntry{}).
		Where("timetable_id = ? AND version = ?", entry.TimetableID, oldVersion).
		Updates(map[string]interface{}{
			"staff_id":      entry.StaffID,
			"subject_id":    entry.SubjectID,
			"department_id": entry.DepartmentID,
			"day_of_week":   entry.DayOfWeek,
			"start_time":    entry.StartTime,
			"end_time":      entry.EndTime,
			"room":          entry.Room,
			"semester":      entry.Semester,
			"section":       entry.Section,
			"updated_by":    entry.UpdatedBy,
			"updated_at":    gorm.Expr("NOW()"),
			"version":       oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	entry.Version = oldVersion + 1
	return nil
}

func (r *timetableRepo) DeleteCascade(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sessionIDs := tx.Model(&model.AttendanceSession{}).
			Select("session_id").
			Where("timetable_id = ?", id)

		if err := tx.Where("session_id IN (?)", sessionIDs).
			Delete(&model.AttendanceRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("timetable_id = ?", id).
			Delete(&model.AttendanceSession{}).Error; err != nil {
			return err
		}

		result := tx.Where("timetable_id = ?", id).Delete(&model.TimetableEntry{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
