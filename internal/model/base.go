package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ── PostgreSQL TIME 自定义类型 ──

// TimeOfDay 一天内的时刻（精确到秒），对应 PostgreSQL TIME 列。
// 内部以距零点的秒数保存，比较与区间判断直接用整数完成。
type TimeOfDay int

// NewTimeOfDay 由时、分、秒构造 TimeOfDay
func NewTimeOfDay(hour, minute, second int) TimeOfDay {
	return TimeOfDay(hour*3600 + minute*60 + second)
}

// dateTimeLayouts ISO 日期时间可接受的格式，秒与时区均可省略
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
}

// ParseTimeOfDay 解析时刻字符串。
// 支持 "15:04"、"15:04:05"、带小数秒的 "15:04:05.000000"，
// 以及 ISO 日期时间（仅取其时刻部分，保留原时区的钟面时间）。
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("时刻不能为空")
	}
	if strings.Contains(s, "T") {
		var (
			t   time.Time
			err error
		)
		for _, layout := range dateTimeLayouts {
			if t, err = time.Parse(layout, s); err == nil {
				return FromTime(t), nil
			}
		}
		return 0, fmt.Errorf("无效的日期时间 %q: %w", s, err)
	}
	for _, layout := range []string{"15:04:05.999999999", "15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return FromTime(t), nil
		}
	}
	return 0, fmt.Errorf("无效的时刻 %q", s)
}

// FromTime 取 time.Time 的钟面时刻
func FromTime(t time.Time) TimeOfDay {
	return NewTimeOfDay(t.Hour(), t.Minute(), t.Second())
}

// String 输出 "15:04:05"
func (t TimeOfDay) String() string {
	sec := int(t)
	return fmt.Sprintf("%02d:%02d:%02d", sec/3600, (sec%3600)/60, sec%60)
}

// On 将时刻落到指定日期上
func (t TimeOfDay) On(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, date.Location()).Add(time.Duration(t) * time.Second)
}

// Scan 实现 sql.Scanner，兼容驱动返回的 string / []byte / time.Time
func (t *TimeOfDay) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*t = 0
		return nil
	case time.Time:
		*t = FromTime(v)
		return nil
	case []byte:
		parsed, err := ParseTimeOfDay(string(v))
		if err != nil {
			return fmt.Errorf("TimeOfDay.Scan: %w", err)
		}
		*t = parsed
		return nil
	case string:
		parsed, err := ParseTimeOfDay(v)
		if err != nil {
			return fmt.Errorf("TimeOfDay.Scan: %w", err)
		}
		*t = parsed
		return nil
	default:
		return fmt.Errorf("TimeOfDay.Scan: unsupported type %T", src)
	}
}

// Value 实现 driver.Valuer，写入 "15:04:05"
func (t TimeOfDay) Value() (driver.Value, error) {
	return t.String(), nil
}

// MarshalJSON 以 "15:04" 形式输出（秒不为零时带秒）
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	s := t.String()
	if int(t)%60 == 0 {
		s = s[:5]
	}
	return json.Marshal(s)
}

// UnmarshalJSON 接受 ParseTimeOfDay 支持的任意格式
func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Overlaps 半开区间 [aStart, aEnd) 与 [bStart, bEnd) 是否相交。
// 首尾相接（aEnd == bStart）不算相交。
func Overlaps(aStart, aEnd, bStart, bEnd TimeOfDay) bool {
	return aStart < bEnd && aEnd > bStart
}

// BaseModel 通用审计字段
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	CreatedBy *string   `gorm:"type:uuid"                          json:"created_by,omitempty"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	UpdatedBy *string   `gorm:"type:uuid"                          json:"updated_by,omitempty"`
}

// VersionedModel 支持乐观锁的模型
type VersionedModel struct {
	BaseModel
	Version int `gorm:"not null;default:1" json:"version"`
}
