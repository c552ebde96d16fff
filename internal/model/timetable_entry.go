package model

import "time"

// DayOfWeek 教学日，六值封闭枚举（对应 PostgreSQL day_of_week 类型）
type DayOfWeek string

const (
	Monday    DayOfWeek = "MONDAY"
	Tuesday   DayOfWeek = "TUESDAY"
	Wednesday DayOfWeek = "WEDNESDAY"
	Thursday  DayOfWeek = "THURSDAY"
	Friday    DayOfWeek = "FRIDAY"
	Saturday  DayOfWeek = "SATURDAY"
)

// AllDaysOfWeek 按周序排列的全部教学日
var AllDaysOfWeek = []DayOfWeek{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

// Valid 是否为受支持的教学日
func (d DayOfWeek) Valid() bool {
	switch d {
	case Monday, Tuesday, Wednesday, Thursday, Friday, Saturday:
		return true
	}
	return false
}

// Weekday 转换为 time.Weekday
func (d DayOfWeek) Weekday() time.Weekday {
	switch d {
	case Monday:
		return time.Monday
	case Tuesday:
		return time.Tuesday
	case Wednesday:
		return time.Wednesday
	case Thursday:
		return time.Thursday
	case Friday:
		return time.Friday
	default:
		return time.Saturday
	}
}

// DayOfWeekFor 计算日期对应的教学日。
// 周日不在教学周内：sundayAsMonday=false 时返回 ok=false，
// 为 true 时按周一处理（兼容旧系统行为）。
func DayOfWeekFor(t time.Time, sundayAsMonday bool) (DayOfWeek, bool) {
	switch t.Weekday() {
	case time.Monday:
		return Monday, true
	case time.Tuesday:
		return Tuesday, true
	case time.Wednesday:
		return Wednesday, true
	case time.Thursday:
		return Thursday, true
	case time.Friday:
		return Friday, true
	case time.Saturday:
		return Saturday, true
	}
	if sundayAsMonday {
		return Monday, true
	}
	return "", false
}

// TimetableEntry 课表条目 — 对应 timetable_entries（按周重复的上课时段）
type TimetableEntry struct {
	TimetableID  string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"timetable_id"`
	StaffID      string    `gorm:"type:uuid;not null"                             json:"staff_id"`
	SubjectID    string    `gorm:"type:uuid;not null"                             json:"subject_id"`
	DepartmentID string    `gorm:"type:uuid;not null"                             json:"department_id"`
	DayOfWeek    DayOfWeek `gorm:"type:day_of_week;not null"                      json:"day_of_week"`
	StartTime    TimeOfDay `gorm:"type:time;not null"                             json:"start_time"`
	EndTime      TimeOfDay `gorm:"type:time;not null"                             json:"end_time"`
	Room         *string   `gorm:"type:varchar(50)"                               json:"room,omitempty"`
	Semester     *int      `gorm:"type:int"                                       json:"semester,omitempty"`
	Section      *string   `gorm:"type:varchar(10)"                               json:"section,omitempty"`
	VersionedModel

	// 关联
	Staff      *User       `gorm:"foreignKey:StaffID;references:UserID"            json:"staff,omitempty"`
	Subject    *Subject    `gorm:"foreignKey:SubjectID;references:SubjectID"       json:"subject,omitempty"`
	Department *Department `gorm:"foreignKey:DepartmentID;references:DepartmentID" json:"department,omitempty"`
}

// TableName 指定表名
func (TimetableEntry) TableName() string { return "timetable_entries" }
