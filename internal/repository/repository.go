package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User              UserRepository
	Department        DepartmentRepository
	Subject           SubjectRepository
	Timetable         TimetableRepository
	AttendanceSession AttendanceSessionRepository
	AttendanceRecord  AttendanceRecordRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:              NewUserRepo(db),
		Department:        NewDepartmentRepo(db),
		Subject:           NewSubjectRepo(db),
		Timetable:         NewTimetableRepo(db),
		AttendanceSession: NewAttendanceSessionRepo(db),
		AttendanceRecord:  NewAttendanceRecordRepo(db),
	}
}
