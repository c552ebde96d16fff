package dto

// ── 考勤报表 DTO ──

// StudentReportResponse 学生出勤报表（仅统计已完成场次）
type StudentReportResponse struct {
	StudentID   string              `json:"student_id"`
	StudentName string              `json:"student_name"`
	Total       int                 `json:"total"`
	Present     int                 `json:"present"`
	Absent      int                 `json:"absent"`
	Percentage  float64             `json:"percentage"`
	Records     []StudentReportItem `json:"records"`
}

// StudentReportItem 学生单次出勤
type StudentReportItem struct {
	SessionID   string  `json:"session_id"`
	Date        string  `json:"date"`
	SubjectID   string  `json:"subject_id"`
	SubjectName string  `json:"subject_name"`
	Status      string  `json:"status"`
	Remarks     *string `json:"remarks,omitempty"`
}

// SubjectReportResponse 课程出勤报表
type SubjectReportResponse struct {
	SubjectID   string             `json:"subject_id"`
	SubjectCode string             `json:"subject_code"`
	SubjectName string             `json:"subject_name"`
	Students    []SubjectReportRow `json:"students"`
}

// SubjectReportRow 课程报表中的单个学生
type SubjectReportRow struct {
	StudentID   string  `json:"student_id"`
	StudentName string  `json:"student_name"`
	RollNumber  string  `json:"roll_number"`
	Present     int     `json:"present"`
	Total       int     `json:"total"`
	Percentage  float64 `json:"percentage"`
}

// StaffReportResponse 教职工考勤场次报表（最近的在前，不做百分比汇总）
type StaffReportResponse struct {
	StaffID   string            `json:"staff_id"`
	StaffName string            `json:"staff_name"`
	Sessions  []StaffReportItem `json:"sessions"`
}

// StaffReportItem 教职工报表中的单个场次
type StaffReportItem struct {
	SessionID    string `json:"session_id"`
	Date         string `json:"date"`
	SubjectID    string `json:"subject_id"`
	SubjectName  string `json:"subject_name"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	Status       string `json:"status"`
	IsLocked     bool   `json:"is_locked"`
	TotalRecords int    `json:"total_records"`
	PresentCount int    `json:"present_count"`
}
