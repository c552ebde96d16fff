package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"campus-hub/backend/internal/model"
	"campus-hub/backend/internal/service"
	"campus-hub/backend/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler 考勤报表 Handler
type ReportHandler struct {
	svc service.ReportService
}

// NewReportHandler 创建 ReportHandler 实例
func NewReportHandler(svc service.ReportService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

// Student 学生出勤报表
// GET /api/v1/attendance/report/student/:id
// 学生只能查看本人报表
func (h *ReportHandler) Student(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	studentID, ok := pathID(c, "id", 18001, "学生不存在")
	if !ok {
		return
	}
	if role == model.RoleStudent && studentID != userID {
		response.Forbidden(c, 10003, "只能查看本人出勤报表")
		return
	}

	resp, err := h.svc.StudentReport(c.Request.Context(), studentID)
	if err != nil {
		handleReportError(c, err)
		return
	}
	response.OK(c, resp)
}

// Subject 课程出勤报表
// GET /api/v1/attendance/report/subject/:id
func (h *ReportHandler) Subject(c *gin.Context) {
	if !h.denyStudent(c) {
		return
	}
	subjectID, ok := pathID(c, "id", 18002, "课程不存在")
	if !ok {
		return
	}

	resp, err := h.svc.SubjectReport(c.Request.Context(), subjectID)
	if err != nil {
		handleReportError(c, err)
		return
	}
	response.OK(c, resp)
}

// ExportSubject 导出课程出勤报表
// GET /api/v1/attendance/report/subject/:id/export
func (h *ReportHandler) ExportSubject(c *gin.Context) {
	subjectID, ok := pathID(c, "id", 18002, "课程不存在")
	if !ok {
		return
	}
	buf, filename, err := h.svc.ExportSubjectReport(c.Request.Context(), subjectID)
	if err != nil {
		handleReportError(c, err)
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// Staff 教职工场次报表
// GET /api/v1/attendance/report/staff/:id
func (h *ReportHandler) Staff(c *gin.Context) {
	if !h.denyStudent(c) {
		return
	}

	staffID, ok := pathID(c, "id", 18003, "教职工不存在")
	if !ok {
		return
	}

	resp, err := h.svc.StaffReport(c.Request.Context(), staffID)
	if err != nil {
		handleReportError(c, err)
		return
	}
	response.OK(c, resp)
}

// denyStudent 学生角色只开放本人报表
func (h *ReportHandler) denyStudent(c *gin.Context) bool {
	role, ok := MustGetRole(c)
	if !ok {
		return false
	}
	if role == model.RoleStudent {
		response.Forbidden(c, 10003, "无权限访问")
		return false
	}
	return true
}

// handleReportError 统一处理报表模块业务错误
func handleReportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 18001, "学生不存在")
	case errors.Is(err, service.ErrSubjectNotFound):
		response.NotFound(c, 18002, "课程不存在")
	case errors.Is(err, service.ErrStaffNotFound):
		response.NotFound(c, 18003, "教职工不存在")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		response.InternalError(c)
	}
}
