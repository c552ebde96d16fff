package dto

// ── 课表模块 DTO ──

// CreateTimetableRequest 创建课表条目请求
// 时刻支持 "HH:MM"、"HH:MM:SS" 或 ISO 日期时间（只取时刻部分）
type CreateTimetableRequest struct {
	StaffID      string  `json:"staff_id"      binding:"required,uuid"`
	SubjectID    string  `json:"subject_id"    binding:"required,uuid"`
	DepartmentID string  `json:"department_id" binding:"required,uuid"`
	DayOfWeek    string  `json:"day_of_week"   binding:"required,oneof=MONDAY TUESDAY WEDNESDAY THURSDAY FRIDAY SATURDAY"`
	StartTime    string  `json:"start_time"    binding:"required"`
	EndTime      string  `json:"end_time"      binding:"required"`
	Room         *string `json:"room"          binding:"omitempty,max=50"`
	Semester     *int    `json:"semester"      binding:"omitempty,min=1,max=12"`
	Section      *string `json:"section"       binding:"omitempty,max=10"`
}

// UpdateTimetableRequest 部分更新课表条目请求
// Room / Section 传空字符串表示清空；Version 非空时参与乐观锁校验
type UpdateTimetableRequest struct {
	StaffID      *string `json:"staff_id"      binding:"omitempty,uuid"`
	SubjectID    *string `json:"subject_id"    binding:"omitempty,uuid"`
	DepartmentID *string `json:"department_id" binding:"omitempty,uuid"`
	DayOfWeek    *string `json:"day_of_week"   binding:"omitempty,oneof=MONDAY TUESDAY WEDNESDAY THURSDAY FRIDAY SATURDAY"`
	StartTime    *string `json:"start_time"`
	EndTime      *string `json:"end_time"`
	Room         *string `json:"room"          binding:"omitempty,max=50"`
	Semester     *int    `json:"semester"      binding:"omitempty,min=1,max=12"`
	Section      *string `json:"section"       binding:"omitempty,max=10"`
	Version      *int    `json:"version"`
}

// ListTimetableRequest 课表列表筛选
type ListTimetableRequest struct {
	StaffID      string `form:"staff_id"      binding:"omitempty,uuid"`
	DepartmentID string `form:"department_id" binding:"omitempty,uuid"`
	DayOfWeek    string `form:"day_of_week"   binding:"omitempty,oneof=MONDAY TUESDAY WEDNESDAY THURSDAY FRIDAY SATURDAY"`
}

// TimetableResponse 课表条目响应
type TimetableResponse struct {
	ID           string  `json:"id"`
	StaffID      string  `json:"staff_id"`
	StaffName    string  `json:"staff_name,omitempty"`
	SubjectID    string  `json:"subject_id"`
	SubjectCode  string  `json:"subject_code,omitempty"`
	SubjectName  string  `json:"subject_name,omitempty"`
	DepartmentID string  `json:"department_id"`
	DayOfWeek    string  `json:"day_of_week"`
	StartTime    string  `json:"start_time"`
	EndTime      string  `json:"end_time"`
	Room         *string `json:"room,omitempty"`
	Semester     *int    `json:"semester,omitempty"`
	Section      *string `json:"section,omitempty"`
	Version      int     `json:"version"`
}
