package model

import "time"

// AttendanceStatus 出勤状态（对应 PostgreSQL attendance_status 类型）
type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "PRESENT"
	StatusAbsent  AttendanceStatus = "ABSENT"
)

// Valid 是否为受支持的出勤状态
func (s AttendanceStatus) Valid() bool {
	return s == StatusPresent || s == StatusAbsent
}

// AttendanceRecord 出勤记录 — 对应 attendance_records，(session_id, student_id) 唯一
type AttendanceRecord struct {
	RecordID  string           `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"record_id"`
	SessionID string           `gorm:"type:uuid;not null"                             json:"session_id"`
	StudentID string           `gorm:"type:uuid;not null"                             json:"student_id"`
	Status    AttendanceStatus `gorm:"type:attendance_status;not null"                json:"status"`
	Remarks   *string          `gorm:"type:text"                                      json:"remarks,omitempty"`
	CreatedAt time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	UpdatedAt time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`

	Student *User `gorm:"foreignKey:StudentID;references:UserID" json:"student,omitempty"`
}

// TableName 指定表名
func (AttendanceRecord) TableName() string { return "attendance_records" }
