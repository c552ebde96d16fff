package repository

import (
	"context"

	"gorm.io/gorm"

	"campus-hub/backend/internal/model"
)

// RosterFilter 点名名单筛选条件
// Semester / Section 为 nil 时精确匹配空值，而不是"不限"
type RosterFilter struct {
	DepartmentID string
	Semester     *int
	Section      *string
}

// UserRepository 用户数据访问接口
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// ListRoster 列出院系、学期、班级均精确匹配的在籍学生
	ListRoster(ctx context.Context, filter RosterFilter) ([]model.User, error)
}

type userRepo struct {
	db *gorm.DB
}

// NewUserRepo 创建 UserRepository 实例
func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Preload("Department").
		Preload("StudentProfile").
		Where("user_id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Preload("Department").
		Where("LOWER(email) = LOWER(?)", email).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) ListRoster(ctx context.Context, filter RosterFilter) ([]model.User, error) {
	db := r.db.WithContext(ctx).
		Joins("JOIN student_profiles sp ON sp.user_id = users.user_id").
		Where("users.role = ? AND users.is_active = ? AND users.department_id = ?", model.RoleStudent, true, filter.DepartmentID)

	if filter.Semester != nil {
		db = db.Where("sp.semester = ?", *filter.Semester)
	} else {
		db = db.Where("sp.semester IS NULL")
	}

	// 空字符串与 NULL 视为同一个"未分班"
	if filter.Section != nil && *filter.Section != "" {
		db = db.Where("sp.section = ?", *filter.Section)
	} else {
		db = db.Where("(sp.section IS NULL OR sp.section = '')")
	}

	var students []model.User
	err := db.Preload("StudentProfile").
		Order("sp.roll_number ASC").
		Find(&students).Error
	return students, err
}
