package model

// Subject 课程表 — 对应 subjects
type Subject struct {
	SubjectID    string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"subject_id"`
	Code         string `gorm:"type:varchar(20);not null;uniqueIndex"          json:"code"`
	Name         string `gorm:"type:varchar(100);not null"                     json:"name"`
	DepartmentID string `gorm:"type:uuid;not null"                             json:"department_id"`
	Semester     *int   `gorm:"type:int"                                       json:"semester,omitempty"`
	BaseModel

	Department *Department `gorm:"foreignKey:DepartmentID;references:DepartmentID" json:"department,omitempty"`
}

// TableName 指定表名
func (Subject) TableName() string { return "subjects" }
