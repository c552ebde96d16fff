package service

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"campus-hub/backend/config"
	"campus-hub/backend/internal/model"
)

const (
	testDeptCS   = "dept-cs"
	testDeptEE   = "dept-ee"
	testStaffA   = "staff-a"
	testStaffB   = "staff-b"
	testSubjectX = "subject-x"
	testSubjectY = "subject-y"
)

// 2025-03-03 为周一，2025-03-02 为周日
var (
	testMonday = time.Date(2025, 3, 3, 8, 30, 0, 0, time.UTC)
	testSunday = time.Date(2025, 3, 2, 8, 30, 0, 0, time.UTC)
)

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// seedCampus 构造两个院系、两名教职工、两门课程，
// 以及 cs 院系第 5 学期 A 班的 10 名学生和若干不应出现在名单中的学生
func seedCampus() *memStore {
	store := newMemStore()

	store.departments[testDeptCS] = &model.Department{DepartmentID: testDeptCS, Name: "计算机学院", Code: "CS", IsActive: true}
	store.departments[testDeptEE] = &model.Department{DepartmentID: testDeptEE, Name: "电子工程学院", Code: "EE", IsActive: true}

	store.users[testStaffA] = &model.User{UserID: testStaffA, Name: "王老师", Email: "wang@campus.test", Role: model.RoleStaff, DepartmentID: strPtr(testDeptCS), IsActive: true}
	store.users[testStaffB] = &model.User{UserID: testStaffB, Name: "李老师", Email: "li@campus.test", Role: model.RoleStaff, DepartmentID: strPtr(testDeptEE), IsActive: true}

	store.subjects[testSubjectX] = &model.Subject{SubjectID: testSubjectX, Code: "CS501", Name: "编译原理", DepartmentID: testDeptCS}
	store.subjects[testSubjectY] = &model.Subject{SubjectID: testSubjectY, Code: "EE301", Name: "信号与系统", DepartmentID: testDeptEE}

	for i := 1; i <= 10; i++ {
		addStudent(store, fmt.Sprintf("stu-%02d", i), testDeptCS, intPtr(5), strPtr("A"), true)
	}
	addStudent(store, "stu-nosection", testDeptCS, intPtr(5), nil, true)
	addStudent(store, "stu-sectionb", testDeptCS, intPtr(5), strPtr("B"), true)
	addStudent(store, "stu-sem3", testDeptCS, intPtr(3), strPtr("A"), true)
	addStudent(store, "stu-inactive", testDeptCS, intPtr(5), strPtr("A"), false)
	addStudent(store, "stu-ee", testDeptEE, intPtr(5), strPtr("A"), true)

	return store
}

func addStudent(store *memStore, id, dept string, semester *int, section *string, active bool) *model.User {
	u := &model.User{
		UserID:       id,
		Name:         "学生" + id,
		Email:        id + "@campus.test",
		Role:         model.RoleStudent,
		DepartmentID: strPtr(dept),
		IsActive:     active,
		StudentProfile: &model.StudentProfile{
			UserID:     id,
			RollNumber: "R-" + id,
			Semester:   semester,
			Section:    section,
		},
	}
	store.users[id] = u
	return u
}

func addEntry(store *memStore, staffID, subjectID, deptID string, day model.DayOfWeek, start, end string, room *string, semester *int, section *string) *model.TimetableEntry {
	s, _ := model.ParseTimeOfDay(start)
	e, _ := model.ParseTimeOfDay(end)
	entry := &model.TimetableEntry{
		TimetableID:    store.nextID("tt"),
		StaffID:        staffID,
		SubjectID:      subjectID,
		DepartmentID:   deptID,
		DayOfWeek:      day,
		StartTime:      s,
		EndTime:        e,
		Room:           room,
		Semester:       semester,
		Section:        section,
		VersionedModel: model.VersionedModel{Version: 1},
	}
	store.entries[entry.TimetableID] = entry
	return entry
}

func setPassword(u *model.User, password string) {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	u.PasswordHash = string(hash)
}

func newTestAttendanceService(store *memStore, now time.Time, sundayAsMonday bool) (AttendanceService, *mockSessionRepo) {
	repo, sessions := newTestRepository(store)
	cfg := &config.AttendanceConfig{Timezone: "UTC", SundayAsMonday: sundayAsMonday}
	return NewAttendanceService(repo, cfg, nil, fixedClock(now), zap.NewNop()), sessions
}

func newTestTimetableService(store *memStore, now time.Time) TimetableService {
	repo, _ := newTestRepository(store)
	return NewTimetableService(repo, time.UTC, nil, fixedClock(now), zap.NewNop())
}

func newTestReportService(store *memStore) ReportService {
	repo, _ := newTestRepository(store)
	return NewReportService(repo, zap.NewNop())
}
