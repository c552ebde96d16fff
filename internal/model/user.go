package model

// 用户角色
const (
	RoleAdmin   = "admin"
	RoleStaff   = "staff"
	RoleStudent = "student"
)

// User 用户表 — 对应 users（管理员、教职工、学生共用）
type User struct {
	UserID       string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name         string  `gorm:"type:varchar(100);not null"                     json:"name"`
	Email        string  `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	PasswordHash string  `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string  `gorm:"type:varchar(20);not null"                      json:"role"`
	DepartmentID *string `gorm:"type:uuid"                                      json:"department_id,omitempty"`
	IsActive     bool    `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel

	// 关联
	Department     *Department     `gorm:"foreignKey:DepartmentID;references:DepartmentID" json:"department,omitempty"`
	StudentProfile *StudentProfile `gorm:"foreignKey:UserID;references:UserID"             json:"student_profile,omitempty"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }
