package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseTimeOfDay(t *testing.T) {
	cases := []struct {
		in   string
		want TimeOfDay
	}{
		{"09:00", NewTimeOfDay(9, 0, 0)},
		{"09:30:15", NewTimeOfDay(9, 30, 15)},
		{"13:45:00.000000", NewTimeOfDay(13, 45, 0)},
		{"1970-01-01T10:00:00Z", NewTimeOfDay(10, 0, 0)},
		{"2024-03-04T08:15:00+08:00", NewTimeOfDay(8, 15, 0)},
		{"2024-03-04T08:15:00", NewTimeOfDay(8, 15, 0)},
		{"2024-03-04T09:00", NewTimeOfDay(9, 0, 0)},
		{"2024-03-04T09:00Z", NewTimeOfDay(9, 0, 0)},
		{"2024-03-04T09:00+08:00", NewTimeOfDay(9, 0, 0)},
		{"2024-03-04T09:00:00.000Z", NewTimeOfDay(9, 0, 0)},
	}
	for _, tc := range cases {
		got, err := ParseTimeOfDay(tc.in)
		if err != nil {
			t.Errorf("ParseTimeOfDay(%q) 失败: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseTimeOfDay(%q) 期望 %s，实际 %s", tc.in, tc.want, got)
		}
	}

	for _, bad := range []string{"", "25:00", "nine", "2024-13-01T00:00:00Z", "2024-03-04T9", "2024-03-04T25:00"} {
		if _, err := ParseTimeOfDay(bad); err == nil {
			t.Errorf("ParseTimeOfDay(%q) 应返回错误", bad)
		}
	}
}

func TestTimeOfDay_ScanValue(t *testing.T) {
	var tod TimeOfDay
	if err := tod.Scan([]byte("10:05:00")); err != nil {
		t.Fatalf("Scan []byte 失败: %v", err)
	}
	if tod != NewTimeOfDay(10, 5, 0) {
		t.Errorf("期望 10:05:00，实际 %s", tod)
	}
	if err := tod.Scan(time.Date(0, 1, 1, 7, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("Scan time.Time 失败: %v", err)
	}
	v, _ := tod.Value()
	if v != "07:00:00" {
		t.Errorf("期望 Value=07:00:00，实际 %v", v)
	}
	if err := tod.Scan(42); err == nil {
		t.Error("不支持的类型应返回错误")
	}
}

func TestTimeOfDay_JSON(t *testing.T) {
	b, _ := json.Marshal(NewTimeOfDay(9, 0, 0))
	if string(b) != `"09:00"` {
		t.Errorf("期望 \"09:00\"，实际 %s", b)
	}
	var tod TimeOfDay
	if err := json.Unmarshal([]byte(`"1970-01-01T14:30:00.000Z"`), &tod); err != nil {
		t.Fatalf("Unmarshal 失败: %v", err)
	}
	if tod != NewTimeOfDay(14, 30, 0) {
		t.Errorf("期望 14:30，实际 %s", tod)
	}
}

func TestOverlaps_HalfOpen(t *testing.T) {
	nine, ten, half, eleven := NewTimeOfDay(9, 0, 0), NewTimeOfDay(10, 0, 0), NewTimeOfDay(9, 30, 0), NewTimeOfDay(11, 0, 0)

	if !Overlaps(nine, ten, half, NewTimeOfDay(10, 30, 0)) {
		t.Error("09:00-10:00 与 09:30-10:30 应重叠")
	}
	if Overlaps(nine, ten, ten, eleven) {
		t.Error("首尾相接不应视为重叠")
	}
	if Overlaps(ten, eleven, nine, ten) {
		t.Error("首尾相接（反向）不应视为重叠")
	}
	if !Overlaps(nine, eleven, half, ten) {
		t.Error("包含关系应重叠")
	}
}

func TestDayOfWeekFor(t *testing.T) {
	monday := time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)
	if d, ok := DayOfWeekFor(monday, false); !ok || d != Monday {
		t.Errorf("期望 MONDAY，实际 %s/%v", d, ok)
	}
	saturday := monday.AddDate(0, 0, 5)
	if d, ok := DayOfWeekFor(saturday, false); !ok || d != Saturday {
		t.Errorf("期望 SATURDAY，实际 %s/%v", d, ok)
	}

	sunday := monday.AddDate(0, 0, 6)
	if _, ok := DayOfWeekFor(sunday, false); ok {
		t.Error("默认策略下周日不应映射到教学日")
	}
	if d, ok := DayOfWeekFor(sunday, true); !ok || d != Monday {
		t.Errorf("兼容策略下周日应映射为 MONDAY，实际 %s/%v", d, ok)
	}
}

func TestDayOfWeek_Valid(t *testing.T) {
	for _, d := range AllDaysOfWeek {
		if !d.Valid() {
			t.Errorf("%s 应有效", d)
		}
		if got, _ := DayOfWeekFor(time.Date(2024, 3, 3+int(d.Weekday()), 0, 0, 0, 0, time.UTC), false); got != d {
			t.Errorf("Weekday 往返不一致: %s → %s", d, got)
		}
	}
	if DayOfWeek("SUNDAY").Valid() {
		t.Error("SUNDAY 不应有效")
	}
}

func TestSessionFromEntry(t *testing.T) {
	sem := 5
	sec := "A"
	entry := &TimetableEntry{
		TimetableID: "tt-1", StaffID: "staff-1", SubjectID: "sub-1", DepartmentID: "dept-1",
		DayOfWeek: Monday, StartTime: NewTimeOfDay(9, 0, 0), EndTime: NewTimeOfDay(10, 0, 0),
		Semester: &sem, Section: &sec,
	}
	date := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	s := SessionFromEntry(entry, date)
	if s.Status != SessionPending || s.IsLocked {
		t.Errorf("新场次应为 PENDING 且未锁定，实际 %s/%v", s.Status, s.IsLocked)
	}
	if *s.Semester != 5 || *s.Section != "A" || s.TimetableID != "tt-1" || !s.Date.Equal(date) {
		t.Errorf("场次字段复制不正确: %+v", s)
	}
}
