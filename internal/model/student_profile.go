package model

// StudentProfile 学生档案表 — 对应 student_profiles
// Semester / Section 为空表示未分配，点名名单按精确匹配（含空值）筛选
type StudentProfile struct {
	UserID     string  `gorm:"type:uuid;primaryKey"                  json:"user_id"`
	RollNumber string  `gorm:"type:varchar(30);not null;uniqueIndex" json:"roll_number"`
	Semester   *int    `gorm:"type:int"                              json:"semester,omitempty"`
	Section    *string `gorm:"type:varchar(10)"                      json:"section,omitempty"`
	BaseModel
}

// TableName 指定表名
func (StudentProfile) TableName() string { return "student_profiles" }
