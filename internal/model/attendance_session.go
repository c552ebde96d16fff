package model

import "time"

// SessionStatus 考勤场次状态（对应 PostgreSQL attendance_session_status 类型）
type SessionStatus string

const (
	SessionPending   SessionStatus = "PENDING"
	SessionCompleted SessionStatus = "COMPLETED"
	SessionCancelled SessionStatus = "CANCELLED"
)

// AttendanceSession 考勤场次 — 对应 attendance_sessions
// 某个课表条目在某一天的实例；(date, timetable_id) 唯一。
// 教职工、课程、院系、学期、班级在创建时从课表条目复制，之后不随课表变更。
type AttendanceSession struct {
	SessionID    string        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"session_id"`
	Date         time.Time     `gorm:"type:date;not null"                             json:"date"`
	TimetableID  string        `gorm:"type:uuid;not null"                             json:"timetable_id"`
	StaffID      string        `gorm:"type:uuid;not null"                             json:"staff_id"`
	SubjectID    string        `gorm:"type:uuid;not null"                             json:"subject_id"`
	DepartmentID string        `gorm:"type:uuid;not null"                             json:"department_id"`
	Semester     *int          `gorm:"type:int"                                       json:"semester,omitempty"`
	Section      *string       `gorm:"type:varchar(10)"                               json:"section,omitempty"`
	StartTime    TimeOfDay     `gorm:"type:time;not null"                             json:"start_time"`
	EndTime      TimeOfDay     `gorm:"type:time;not null"                             json:"end_time"`
	Status       SessionStatus `gorm:"type:attendance_session_status;not null;default:'PENDING'" json:"status"`
	IsLocked     bool          `gorm:"not null;default:false"                         json:"is_locked"`
	CreatedAt    time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	UpdatedAt    time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`

	// 关联
	Timetable *TimetableEntry    `gorm:"foreignKey:TimetableID;references:TimetableID" json:"timetable,omitempty"`
	Subject   *Subject           `gorm:"foreignKey:SubjectID;references:SubjectID"     json:"subject,omitempty"`
	Records   []AttendanceRecord `gorm:"foreignKey:SessionID;references:SessionID"   json:"records,omitempty"`
}

// TableName 指定表名
func (AttendanceSession) TableName() string { return "attendance_sessions" }

// SessionFromEntry 由课表条目生成指定日期的待点名场次
func SessionFromEntry(entry *TimetableEntry, date time.Time) *AttendanceSession {
	return &AttendanceSession{
		Date:         date,
		TimetableID:  entry.TimetableID,
		StaffID:      entry.StaffID,
		SubjectID:    entry.SubjectID,
		DepartmentID: entry.DepartmentID,
		Semester:     entry.Semester,
		Section:      entry.Section,
		StartTime:    entry.StartTime,
		EndTime:      entry.EndTime,
		Status:       SessionPending,
		IsLocked:     false,
	}
}
