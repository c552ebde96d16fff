package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"campus-hub/backend/internal/dto"
	"campus-hub/backend/internal/service"
	pkgerrors "campus-hub/backend/pkg/errors"
	"campus-hub/backend/pkg/response"
)

// TimetableHandler 课表模块 Handler
type TimetableHandler struct {
	svc service.TimetableService
}

// NewTimetableHandler 创建 TimetableHandler 实例
func NewTimetableHandler(svc service.TimetableService) *TimetableHandler {
	return &TimetableHandler{svc: svc}
}

// Create 新增课表条目
// POST /api/v1/timetable
func (h *TimetableHandler) Create(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateTimetableRequest
	if !bindJSON(c, &req, 15000) {
		return
	}

	resp, err := h.svc.Create(c.Request.Context(), &req, userID)
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.Created(c, resp)
}

// Update 部分更新课表条目
// PATCH /api/v1/timetable/:id
func (h *TimetableHandler) Update(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", 15001, "课表条目不存在")
	if !ok {
		return
	}

	var req dto.UpdateTimetableRequest
	if !bindJSON(c, &req, 15000) {
		return
	}

	resp, err := h.svc.Update(c.Request.Context(), id, &req, userID)
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, resp)
}

// Delete 删除课表条目（级联删除考勤场次与记录）
// DELETE /api/v1/timetable/:id
func (h *TimetableHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id", 15001, "课表条目不存在")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, nil)
}

// Get 获取课表条目
// GET /api/v1/timetable/:id
func (h *TimetableHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id", 15001, "课表条目不存在")
	if !ok {
		return
	}
	resp, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, resp)
}

// List 按教职工 / 院系 / 星期筛选课表
// GET /api/v1/timetable?staff_id=&department_id=&day_of_week=
func (h *TimetableHandler) List(c *gin.Context) {
	var req dto.ListTimetableRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 15000, "参数校验失败", err.Error())
		return
	}

	list, err := h.svc.List(c.Request.Context(), &req)
	if err != nil {
		handleTimetableError(c, err)
		return
	}
	response.OK(c, list)
}

// ExportICS 导出教职工周课表
// GET /api/v1/timetable/staff/:id/ics
func (h *TimetableHandler) ExportICS(c *gin.Context) {
	staffID, ok := pathID(c, "id", 15006, "教职工不存在")
	if !ok {
		return
	}
	data, filename, err := h.svc.ExportICS(c.Request.Context(), staffID)
	if err != nil {
		handleTimetableError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", data)
}

// handleTimetableError 统一处理课表模块业务错误
// 冲突类错误携带具体时段，直接返回 err.Error()
func handleTimetableError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTimetableNotFound):
		response.NotFound(c, 15001, "课表条目不存在")
	case errors.Is(err, service.ErrTimetableInvalidTime):
		response.BadRequest(c, 15002, err.Error())
	case errors.Is(err, service.ErrTimetableTimeOrder):
		response.BadRequest(c, 15003, err.Error())
	case errors.Is(err, service.ErrTimetableStaffClash):
		response.BadRequest(c, 15004, err.Error())
	case errors.Is(err, service.ErrTimetableRoomClash):
		response.BadRequest(c, 15005, err.Error())
	case errors.Is(err, service.ErrTimetableStaffInvalid):
		response.BadRequest(c, 15006, err.Error())
	case errors.Is(err, service.ErrTimetableSubjectNotFound):
		response.BadRequest(c, 15007, err.Error())
	case errors.Is(err, service.ErrTimetableDepartmentNotFound):
		response.BadRequest(c, 15008, err.Error())
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 15009, "课表条目已被他人修改，请刷新后重试")
	default:
		response.InternalError(c)
	}
}
