package service

import "campus-hub/backend/internal/model"

// Capability 接口能力标识，路由按能力而非角色声明访问要求
type Capability string

const (
	CapTimetableWrite Capability = "timetable:write"
	CapTimetableRead  Capability = "timetable:read"
	CapAttendanceTake Capability = "attendance:take"
	CapAttendanceLock Capability = "attendance:lock"
	CapReportRead     Capability = "report:read"
	CapReportExport   Capability = "report:export"
)

// Authorizer 判断角色是否具备某项能力
type Authorizer interface {
	Can(role string, capability Capability) bool
}

// RolePolicy 角色 → 能力集合的静态授权表
type RolePolicy map[string]map[Capability]bool

// DefaultPolicy 默认授权表
//   - admin：全部能力
//   - staff：除课表写入外的全部能力
//   - student：仅可读报表（Handler 层再限制为本人报表）
func DefaultPolicy() RolePolicy {
	staff := map[Capability]bool{
		CapTimetableRead:  true,
		CapAttendanceTake: true,
		CapAttendanceLock: true,
		CapReportRead:     true,
		CapReportExport:   true,
	}
	admin := map[Capability]bool{CapTimetableWrite: true}
	for c := range staff {
		admin[c] = true
	}
	return RolePolicy{
		model.RoleAdmin:   admin,
		model.RoleStaff:   staff,
		model.RoleStudent: {CapReportRead: true},
	}
}

// Can 实现 Authorizer
func (p RolePolicy) Can(role string, capability Capability) bool {
	return p[role][capability]
}
