package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"campus-hub/backend/internal/dto"
	"campus-hub/backend/internal/model"
)

func TestPercentage(t *testing.T) {
	cases := []struct {
		present, total int
		want           float64
	}{
		{0, 0, 0},
		{7, 10, 70},
		{1, 3, 33.33},
		{2, 3, 66.67},
		{5, 5, 100},
	}
	for _, tc := range cases {
		if got := percentage(tc.present, tc.total); got != tc.want {
			t.Errorf("percentage(%d, %d) 期望 %.2f，实际 %.2f", tc.present, tc.total, tc.want, got)
		}
	}
}

// seedSession 直接写入一个场次及其记录
func seedSession(store *memStore, id string, date time.Time, status model.SessionStatus, subjectID string, marks map[string]model.AttendanceStatus) {
	store.sessions[id] = &model.AttendanceSession{
		SessionID:    id,
		Date:         date,
		TimetableID:  "tt-" + id,
		StaffID:      testStaffA,
		SubjectID:    subjectID,
		DepartmentID: testDeptCS,
		StartTime:    model.NewTimeOfDay(9, 0, 0),
		EndTime:      model.NewTimeOfDay(10, 0, 0),
		Status:       status,
	}
	for student, st := range marks {
		store.records[recordKey(id, student)] = &model.AttendanceRecord{
			RecordID:  "rec-" + id + student,
			SessionID: id,
			StudentID: student,
			Status:    st,
		}
	}
}

func TestStudentReport_ZeroRecords(t *testing.T) {
	svc := newTestReportService(seedCampus())

	report, err := svc.StudentReport(context.Background(), "stu-01")
	if err != nil {
		t.Fatalf("StudentReport 失败: %v", err)
	}
	if report.Total != 0 || report.Percentage != 0 {
		t.Errorf("无记录时应为 0%%，实际 total=%d percentage=%.2f", report.Total, report.Percentage)
	}
	if report.Records == nil {
		t.Error("Records 应为空切片而不是 nil")
	}
}

func TestStudentReport_CountsCompletedOnly(t *testing.T) {
	store := seedCampus()
	d1 := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	seedSession(store, "s1", d1, model.SessionCompleted, testSubjectX, map[string]model.AttendanceStatus{"stu-01": model.StatusPresent})
	seedSession(store, "s2", d2, model.SessionCompleted, testSubjectX, map[string]model.AttendanceStatus{"stu-01": model.StatusAbsent})
	seedSession(store, "s3", d2, model.SessionPending, testSubjectX, map[string]model.AttendanceStatus{"stu-01": model.StatusAbsent})
	seedSession(store, "s4", d2, model.SessionCancelled, testSubjectX, map[string]model.AttendanceStatus{"stu-01": model.StatusAbsent})
	svc := newTestReportService(store)

	report, err := svc.StudentReport(context.Background(), "stu-01")
	if err != nil {
		t.Fatalf("StudentReport 失败: %v", err)
	}
	if report.Total != 2 || report.Present != 1 || report.Absent != 1 {
		t.Errorf("期望 total=2 present=1 absent=1，实际 %d/%d/%d", report.Total, report.Present, report.Absent)
	}
	if report.Percentage != 50 {
		t.Errorf("期望 50%%，实际 %.2f", report.Percentage)
	}
	if report.Records[0].Date != "2025-03-10" {
		t.Errorf("记录应按日期倒序，首条期望 2025-03-10，实际=%s", report.Records[0].Date)
	}
}

func TestStudentReport_NotAStudent(t *testing.T) {
	svc := newTestReportService(seedCampus())
	if _, err := svc.StudentReport(context.Background(), testStaffA); !errors.Is(err, ErrStudentNotFound) {
		t.Errorf("期望 ErrStudentNotFound，实际=%v", err)
	}
	if _, err := svc.StudentReport(context.Background(), "missing"); !errors.Is(err, ErrStudentNotFound) {
		t.Errorf("期望 ErrStudentNotFound，实际=%v", err)
	}
}

func TestSubjectReport_PerStudentRows(t *testing.T) {
	store := seedCampus()
	d := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	seedSession(store, "s1", d, model.SessionCompleted, testSubjectX, map[string]model.AttendanceStatus{
		"stu-01": model.StatusPresent, "stu-02": model.StatusAbsent,
	})
	seedSession(store, "s2", d.AddDate(0, 0, 7), model.SessionCompleted, testSubjectX, map[string]model.AttendanceStatus{
		"stu-01": model.StatusPresent, "stu-02": model.StatusPresent,
	})
	seedSession(store, "s3", d, model.SessionCompleted, testSubjectY, map[string]model.AttendanceStatus{
		"stu-01": model.StatusAbsent,
	})
	svc := newTestReportService(store)

	report, err := svc.SubjectReport(context.Background(), testSubjectX)
	if err != nil {
		t.Fatalf("SubjectReport 失败: %v", err)
	}
	if len(report.Students) != 2 {
		t.Fatalf("期望 2 行，实际=%d", len(report.Students))
	}
	first, second := report.Students[0], report.Students[1]
	if first.StudentID != "stu-01" || first.Present != 2 || first.Total != 2 || first.Percentage != 100 {
		t.Errorf("stu-01 期望 2/2 100%%，实际 %+v", first)
	}
	if second.StudentID != "stu-02" || second.Present != 1 || second.Percentage != 50 {
		t.Errorf("stu-02 期望 1/2 50%%，实际 %+v", second)
	}

	if _, err := svc.SubjectReport(context.Background(), "missing"); !errors.Is(err, ErrSubjectNotFound) {
		t.Errorf("期望 ErrSubjectNotFound，实际=%v", err)
	}
}

func TestStaffReport_MostRecentFirst(t *testing.T) {
	store := seedCampus()
	d := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	seedSession(store, "old", d, model.SessionCompleted, testSubjectX, map[string]model.AttendanceStatus{
		"stu-01": model.StatusPresent, "stu-02": model.StatusAbsent,
	})
	seedSession(store, "new", d.AddDate(0, 0, 7), model.SessionPending, testSubjectX, nil)
	svc := newTestReportService(store)

	report, err := svc.StaffReport(context.Background(), testStaffA)
	if err != nil {
		t.Fatalf("StaffReport 失败: %v", err)
	}
	if len(report.Sessions) != 2 {
		t.Fatalf("期望 2 个场次，实际=%d", len(report.Sessions))
	}
	if report.Sessions[0].SessionID != "new" {
		t.Errorf("最近的场次应在前，实际首条=%s", report.Sessions[0].SessionID)
	}
	old := report.Sessions[1]
	if old.TotalRecords != 2 || old.PresentCount != 1 {
		t.Errorf("期望 2 条记录 1 人出勤，实际 %d/%d", old.TotalRecords, old.PresentCount)
	}
	if old.SubjectName != "编译原理" {
		t.Errorf("期望课程名 编译原理，实际=%s", old.SubjectName)
	}

	if _, err := svc.StaffReport(context.Background(), "stu-01"); !errors.Is(err, ErrStaffNotFound) {
		t.Errorf("期望 ErrStaffNotFound，实际=%v", err)
	}
}

func TestExportSubjectReport(t *testing.T) {
	store := seedCampus()
	d := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	seedSession(store, "s1", d, model.SessionCompleted, testSubjectX, map[string]model.AttendanceStatus{
		"stu-01": model.StatusPresent, "stu-02": model.StatusAbsent,
	})
	svc := newTestReportService(store)

	buf, filename, err := svc.ExportSubjectReport(context.Background(), testSubjectX)
	if err != nil {
		t.Fatalf("ExportSubjectReport 失败: %v", err)
	}
	if filename != "出勤统计_CS501.xlsx" {
		t.Errorf("文件名不符，实际=%s", filename)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("无法解析导出的 Excel: %v", err)
	}
	defer f.Close()

	header, _ := f.GetCellValue("出勤统计", "A2")
	if header != "学号" {
		t.Errorf("A2 期望 学号，实际=%s", header)
	}
	roll, _ := f.GetCellValue("出勤统计", "A3")
	pct, _ := f.GetCellValue("出勤统计", "E3")
	if roll != "R-stu-01" || pct != "100" {
		t.Errorf("首行期望 R-stu-01 / 100，实际 %s / %s", roll, pct)
	}
	pct, _ = f.GetCellValue("出勤统计", "E4")
	if pct != "0" {
		t.Errorf("缺勤学生出勤率期望 0，实际=%s", pct)
	}
}

func TestWriteSubjectSheet_PropagatesErrors(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	report := &dto.SubjectReportResponse{
		SubjectCode: "CS501",
		SubjectName: "编译原理",
		Students: []dto.SubjectReportRow{
			{RollNumber: "R-01", StudentName: "张三", Present: 1, Total: 2, Percentage: 50},
			{RollNumber: "R-02", StudentName: "李四", Present: 2, Total: 2, Percentage: 100},
		},
	}

	if err := writeSubjectSheet(f, "不存在的工作表", report); err == nil {
		t.Fatal("工作表不存在时应返回错误")
	}

	if err := writeSubjectSheet(f, "Sheet1", report); err != nil {
		t.Fatalf("writeSubjectSheet 失败: %v", err)
	}
	last, _ := f.GetCellValue("Sheet1", "B4")
	if last != "李四" {
		t.Errorf("B4 期望 李四，实际=%s", last)
	}
}
