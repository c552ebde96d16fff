package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"campus-hub/backend/internal/model"
	"campus-hub/backend/internal/repository"
)

// ── 课表 ICS 导出 ───────────────────────────────────────────
//
// 每个课表条目生成一个 VEVENT：
//   - DTSTART/DTEND 锚定在该星期最近的一次上课（含今天）
//   - RRULE:FREQ=WEEKLY;BYDAY=<星期>
//   - UID 取 timetable_id，重复导出保持稳定
// ─────────────────────────────────────────────────────────────

var icsByDay = map[model.DayOfWeek]string{
	model.Monday:    "MO",
	model.Tuesday:   "TU",
	model.Wednesday: "WE",
	model.Thursday:  "TH",
	model.Friday:    "FR",
	model.Saturday:  "SA",
}

func (s *timetableService) ExportICS(ctx context.Context, staffID string) ([]byte, string, error) {
	staff, err := s.repo.User.GetByID(ctx, staffID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrTimetableStaffInvalid
		}
		return nil, "", err
	}
	if staff.Role != model.RoleStaff {
		return nil, "", ErrTimetableStaffInvalid
	}

	entries, err := s.repo.Timetable.List(ctx, repository.TimetableFilter{StaffID: staffID})
	if err != nil {
		s.logger.Error("查询课表失败", zap.String("staff_id", staffID), zap.Error(err))
		return nil, "", err
	}

	today := s.now().In(s.loc)
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//campus-hub//timetable//ZH")
	cal.SetXWRCalName(staff.Name + " 课表")
	cal.SetXWRTimezone(s.loc.String())

	for i := range entries {
		e := &entries[i]
		date := nextOccurrence(today, e.DayOfWeek.Weekday())

		event := cal.AddEvent(e.TimetableID + "@campus-hub")
		event.SetDtStampTime(today)
		event.SetStartAt(e.StartTime.On(date))
		event.SetEndAt(e.EndTime.On(date))
		event.SetSummary(eventSummary(e))
		if e.Room != nil {
			event.SetLocation(*e.Room)
		}
		event.AddProperty(ics.ComponentPropertyRrule, "FREQ=WEEKLY;BYDAY="+icsByDay[e.DayOfWeek])
	}

	filename := fmt.Sprintf("timetable_%s.ics", staffID)
	return []byte(cal.Serialize()), filename, nil
}

// nextOccurrence 返回 from 当天或之后第一个星期为 wd 的日期（零点）
func nextOccurrence(from time.Time, wd time.Weekday) time.Time {
	y, m, d := from.Date()
	date := time.Date(y, m, d, 0, 0, 0, 0, from.Location())
	offset := (int(wd) - int(date.Weekday()) + 7) % 7
	return date.AddDate(0, 0, offset)
}

func eventSummary(e *model.TimetableEntry) string {
	parts := make([]string, 0, 3)
	if e.Subject != nil {
		parts = append(parts, e.Subject.Name)
	} else {
		parts = append(parts, e.SubjectID)
	}
	if e.Semester != nil {
		parts = append(parts, fmt.Sprintf("第%d学期", *e.Semester))
	}
	if e.Section != nil {
		parts = append(parts, *e.Section+"班")
	}
	return strings.Join(parts, " ")
}
