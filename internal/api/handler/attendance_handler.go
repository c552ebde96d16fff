package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"campus-hub/backend/internal/dto"
	"campus-hub/backend/internal/model"
	"campus-hub/backend/internal/service"
	"campus-hub/backend/pkg/response"
)

// AttendanceHandler 考勤场次 Handler
type AttendanceHandler struct {
	svc service.AttendanceService
}

// NewAttendanceHandler 创建 AttendanceHandler 实例
func NewAttendanceHandler(svc service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{svc: svc}
}

// Today 获取今日考勤场次（不存在则按课表生成）
// GET /api/v1/attendance/sessions/today
// 教职工固定查询本人；管理员可通过 staff_id 查询指定教职工
func (h *AttendanceHandler) Today(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	staffID := userID
	if role == model.RoleAdmin {
		staffID = c.Query("staff_id")
		if staffID == "" {
			response.BadRequest(c, 17000, "staff_id 不能为空")
			return
		}
	}

	list, err := h.svc.GetTodaySessions(c.Request.Context(), staffID)
	if err != nil {
		handleAttendanceError(c, err)
		return
	}
	response.OK(c, list)
}

// Get 获取场次详情及出勤记录
// GET /api/v1/attendance/sessions/:id
func (h *AttendanceHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id", 17001, "考勤场次不存在")
	if !ok {
		return
	}
	resp, err := h.svc.GetSession(c.Request.Context(), id)
	if err != nil {
		handleAttendanceError(c, err)
		return
	}
	response.OK(c, resp)
}

// Students 获取场次应到学生名单
// GET /api/v1/attendance/sessions/:id/students
func (h *AttendanceHandler) Students(c *gin.Context) {
	id, ok := pathID(c, "id", 17001, "考勤场次不存在")
	if !ok {
		return
	}
	list, err := h.svc.GetStudentsForSession(c.Request.Context(), id)
	if err != nil {
		handleAttendanceError(c, err)
		return
	}
	response.OK(c, list)
}

// Mark 提交点名结果
// POST /api/v1/attendance/sessions/:id/mark
// 请求体为记录数组：[{"student_id": "...", "status": "PRESENT"}]
func (h *AttendanceHandler) Mark(c *gin.Context) {
	id, ok := pathID(c, "id", 17001, "考勤场次不存在")
	if !ok {
		return
	}

	var items []dto.MarkRecordItem
	if !bindJSON(c, &items, 17000) {
		return
	}
	if len(items) == 0 {
		response.BadRequest(c, 17004, "出勤记录不能为空")
		return
	}
	for i := range items {
		if err := binding.Validator.ValidateStruct(&items[i]); err != nil {
			response.ErrorWithDetails(c, http.StatusBadRequest, 17000, "参数校验失败", err.Error())
			return
		}
	}

	resp, err := h.svc.MarkAttendance(c.Request.Context(), id, items)
	if err != nil {
		handleAttendanceError(c, err)
		return
	}
	response.OK(c, resp)
}

// Lock 锁定场次（幂等）
// POST /api/v1/attendance/sessions/:id/lock
func (h *AttendanceHandler) Lock(c *gin.Context) {
	id, ok := pathID(c, "id", 17001, "考勤场次不存在")
	if !ok {
		return
	}
	resp, err := h.svc.LockSession(c.Request.Context(), id)
	if err != nil {
		handleAttendanceError(c, err)
		return
	}
	response.OK(c, resp)
}

// Cancel 取消场次（同时锁定）
// POST /api/v1/attendance/sessions/:id/cancel
func (h *AttendanceHandler) Cancel(c *gin.Context) {
	id, ok := pathID(c, "id", 17001, "考勤场次不存在")
	if !ok {
		return
	}
	resp, err := h.svc.CancelSession(c.Request.Context(), id)
	if err != nil {
		handleAttendanceError(c, err)
		return
	}
	response.OK(c, resp)
}

// handleAttendanceError 统一处理考勤模块业务错误
func handleAttendanceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		response.NotFound(c, 17001, "考勤场次不存在")
	case errors.Is(err, service.ErrSessionLocked):
		response.Conflict(c, 17002, err.Error())
	case errors.Is(err, service.ErrCannotCancelLocked):
		response.Conflict(c, 17003, err.Error())
	case errors.Is(err, service.ErrAttendanceEmpty):
		response.BadRequest(c, 17004, err.Error())
	case errors.Is(err, service.ErrAttendanceStatus):
		response.BadRequest(c, 17005, err.Error())
	case errors.Is(err, service.ErrStudentNotInRoster):
		response.BadRequest(c, 17006, err.Error())
	default:
		response.InternalError(c)
	}
}
