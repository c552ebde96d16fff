package dto

// ── 考勤模块 DTO ──

// MarkRecordItem 单个学生的点名结果；请求体为该结构的数组
type MarkRecordItem struct {
	StudentID string  `json:"student_id" binding:"required,uuid"`
	Status    string  `json:"status"     binding:"required,oneof=PRESENT ABSENT"`
	Remarks   *string `json:"remarks"    binding:"omitempty,max=500"`
}

// MarkAttendanceResponse 点名结果
type MarkAttendanceResponse struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
	Marked    int    `json:"marked"`
}

// SessionResponse 考勤场次响应
type SessionResponse struct {
	ID           string             `json:"id"`
	Date         string             `json:"date"` // YYYY-MM-DD
	TimetableID  string             `json:"timetable_id"`
	StaffID      string             `json:"staff_id"`
	SubjectID    string             `json:"subject_id"`
	SubjectName  string             `json:"subject_name,omitempty"`
	DepartmentID string             `json:"department_id"`
	Semester     *int               `json:"semester,omitempty"`
	Section      *string            `json:"section,omitempty"`
	StartTime    string             `json:"start_time"`
	EndTime      string             `json:"end_time"`
	Status       string             `json:"status"`
	IsLocked     bool               `json:"is_locked"`
	Timetable    *TimetableResponse `json:"timetable,omitempty"`
}

// SessionDetailResponse 场次详情（含已录入记录）
type SessionDetailResponse struct {
	SessionResponse
	Records []RecordResponse `json:"records"`
}

// RecordResponse 出勤记录
type RecordResponse struct {
	StudentID   string  `json:"student_id"`
	StudentName string  `json:"student_name,omitempty"`
	Status      string  `json:"status"`
	Remarks     *string `json:"remarks,omitempty"`
}

// RosterStudentResponse 点名名单中的学生
type RosterStudentResponse struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	RollNumber string  `json:"roll_number"`
	Semester   *int    `json:"semester,omitempty"`
	Section    *string `json:"section,omitempty"`
}
