package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"campus-hub/backend/internal/dto"
	"campus-hub/backend/internal/model"
	"campus-hub/backend/internal/repository"
)

// ── 报表模块业务错误 ──

var (
	ErrStudentNotFound    = errors.New("学生不存在")
	ErrStaffNotFound      = errors.New("教职工不存在")
	ErrSubjectNotFound    = errors.New("课程不存在")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ReportService 考勤报表业务接口
// 学生与课程报表只统计 COMPLETED 场次；教职工报表列出全部场次
type ReportService interface {
	StudentReport(ctx context.Context, studentID string) (*dto.StudentReportResponse, error)
	SubjectReport(ctx context.Context, subjectID string) (*dto.SubjectReportResponse, error)
	StaffReport(ctx context.Context, staffID string) (*dto.StaffReportResponse, error)
	// ExportSubjectReport 导出课程报表为 Excel，返回内容与建议文件名
	ExportSubjectReport(ctx context.Context, subjectID string) (*bytes.Buffer, string, error)
}

type reportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewReportService 创建 ReportService 实例
func NewReportService(repo *repository.Repository, logger *zap.Logger) ReportService {
	return &reportService{repo: repo, logger: logger}
}

func (s *reportService) StudentReport(ctx context.Context, studentID string) (*dto.StudentReportResponse, error) {
	student, err := s.repo.User.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	if student.Role != model.RoleStudent {
		return nil, ErrStudentNotFound
	}

	rows, err := s.repo.AttendanceRecord.ListCompletedByStudent(ctx, studentID)
	if err != nil {
		s.logger.Error("查询学生出勤失败", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}

	resp := &dto.StudentReportResponse{
		StudentID:   student.UserID,
		StudentName: student.Name,
		Records:     make([]dto.StudentReportItem, 0, len(rows)),
	}
	for _, r := range rows {
		if r.Status == model.StatusPresent {
			resp.Present++
		}
		resp.Records = append(resp.Records, dto.StudentReportItem{
			SessionID:   r.SessionID,
			Date:        r.Date.Format("2006-01-02"),
			SubjectID:   r.SubjectID,
			SubjectName: r.SubjectName,
			Status:      string(r.Status),
			Remarks:     r.Remarks,
		})
	}
	resp.Total = len(rows)
	resp.Absent = resp.Total - resp.Present
	resp.Percentage = percentage(resp.Present, resp.Total)
	return resp, nil
}

func (s *reportService) SubjectReport(ctx context.Context, subjectID string) (*dto.SubjectReportResponse, error) {
	subject, err := s.repo.Subject.GetByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubjectNotFound
		}
		return nil, err
	}

	rows, err := s.repo.AttendanceRecord.CountCompletedBySubject(ctx, subjectID)
	if err != nil {
		s.logger.Error("统计课程出勤失败", zap.String("subject_id", subjectID), zap.Error(err))
		return nil, err
	}

	resp := &dto.SubjectReportResponse{
		SubjectID:   subject.SubjectID,
		SubjectCode: subject.Code,
		SubjectName: subject.Name,
		Students:    make([]dto.SubjectReportRow, 0, len(rows)),
	}
	for _, r := range rows {
		resp.Students = append(resp.Students, dto.SubjectReportRow{
			StudentID:   r.StudentID,
			StudentName: r.StudentName,
			RollNumber:  r.RollNumber,
			Present:     int(r.Present),
			Total:       int(r.Total),
			Percentage:  percentage(int(r.Present), int(r.Total)),
		})
	}
	return resp, nil
}

func (s *reportService) StaffReport(ctx context.Context, staffID string) (*dto.StaffReportResponse, error) {
	staff, err := s.repo.User.GetByID(ctx, staffID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStaffNotFound
		}
		return nil, err
	}
	if staff.Role != model.RoleStaff {
		return nil, ErrStaffNotFound
	}

	rows, err := s.repo.AttendanceSession.ListByStaffWithCounts(ctx, staffID)
	if err != nil {
		s.logger.Error("查询教职工场次失败", zap.String("staff_id", staffID), zap.Error(err))
		return nil, err
	}

	resp := &dto.StaffReportResponse{
		StaffID:   staff.UserID,
		StaffName: staff.Name,
		Sessions:  make([]dto.StaffReportItem, 0, len(rows)),
	}
	for _, r := range rows {
		resp.Sessions = append(resp.Sessions, dto.StaffReportItem{
			SessionID:    r.SessionID,
			Date:         r.Date.Format("2006-01-02"),
			SubjectID:    r.SubjectID,
			SubjectName:  r.SubjectName,
			StartTime:    r.StartTime.String(),
			EndTime:      r.EndTime.String(),
			Status:       string(r.Status),
			IsLocked:     r.IsLocked,
			TotalRecords: int(r.TotalRecords),
			PresentCount: int(r.PresentCount),
		})
	}
	return resp, nil
}

// ═══════════════════════════════════════════════════════════
// ExportSubjectReport 导出课程出勤为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 第 1 行：标题（课程代码 课程名）
//   - 第 2 行：表头 学号 | 姓名 | 出勤 | 总计 | 出勤率(%)
//   - 之后每个学生一行

func (s *reportService) ExportSubjectReport(ctx context.Context, subjectID string) (*bytes.Buffer, string, error) {
	report, err := s.SubjectReport(ctx, subjectID)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "出勤统计"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, "", ErrExportGenerateFail
	}
	if err := writeSubjectSheet(f, sheetName, report); err != nil {
		s.logger.Error("生成 Excel 工作表失败", zap.String("subject_id", subjectID), zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("出勤统计_%s.xlsx", report.SubjectCode)
	return buf, filename, nil
}

// writeSubjectSheet 按导出格式写入标题、表头与学生行，任一单元格写入失败即返回
func writeSubjectSheet(f *excelize.File, sheet string, report *dto.SubjectReportResponse) error {
	for _, w := range []struct {
		from, to string
		width    float64
	}{
		{"A", "A", 16},
		{"B", "B", 20},
		{"C", "E", 12},
	} {
		if err := f.SetColWidth(sheet, w.from, w.to, w.width); err != nil {
			return err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}

	if err := f.SetCellValue(sheet, "A1", fmt.Sprintf("%s %s 出勤统计", report.SubjectCode, report.SubjectName)); err != nil {
		return err
	}
	if err := f.MergeCell(sheet, "A1", "E1"); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "A1", headerStyle); err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, "A2", &[]interface{}{"学号", "姓名", "出勤", "总计", "出勤率(%)"}); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A2", "E2", headerStyle); err != nil {
		return err
	}

	for i, row := range report.Students {
		cell, err := excelize.CoordinatesToCellName(1, i+3)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &[]interface{}{
			row.RollNumber, row.StudentName, row.Present, row.Total, row.Percentage,
		}); err != nil {
			return fmt.Errorf("写入第 %d 行: %w", i+3, err)
		}
	}
	return nil
}

// percentage present/total×100，保留两位小数；total 为 0 时为 0
func percentage(present, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(present)*10000/float64(total)) / 100
}
