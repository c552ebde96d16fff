package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_DefaultsAndEnv(t *testing.T) {
	t.Setenv("CAMPUS_AUTH_JWT_SECRET", "unit-test-secret-0123456789")
	t.Setenv("CAMPUS_ATTENDANCE_SUNDAY_AS_MONDAY", "true")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "server:\n  port: 9090\nattendance:\n  timezone: Asia/Shanghai\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("写入配置文件失败: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load 应成功: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("期望 port=9090，实际=%d", cfg.Server.Port)
	}
	if cfg.Auth.AccessTokenTTL != 15*time.Minute {
		t.Errorf("期望默认 access_token_ttl=15m，实际=%v", cfg.Auth.AccessTokenTTL)
	}
	if !cfg.Attendance.SundayAsMonday {
		t.Error("期望环境变量覆盖 sunday_as_monday=true")
	}
	if cfg.Attendance.Location().String() != "Asia/Shanghai" {
		t.Errorf("期望时区 Asia/Shanghai，实际=%s", cfg.Attendance.Location())
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "empty secret",
			cfg:     Config{Server: ServerConfig{Port: 8080}},
			wantErr: true,
		},
		{
			name:    "short secret",
			cfg:     Config{Server: ServerConfig{Port: 8080}, Auth: AuthConfig{JWTSecret: "short"}},
			wantErr: true,
		},
		{
			name:    "bad port",
			cfg:     Config{Server: ServerConfig{Port: 70000}, Auth: AuthConfig{JWTSecret: "0123456789abcdef"}},
			wantErr: true,
		},
		{
			name: "bad timezone",
			cfg: Config{
				Server:     ServerConfig{Port: 8080},
				Auth:       AuthConfig{JWTSecret: "0123456789abcdef"},
				Attendance: AttendanceConfig{Timezone: "Mars/Olympus"},
			},
			wantErr: true,
		},
		{
			name:    "ok",
			cfg:     Config{Server: ServerConfig{Port: 8080}, Auth: AuthConfig{JWTSecret: "0123456789abcdef"}},
			wantErr: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("期望 wantErr=%v，实际 err=%v", tc.wantErr, err)
			}
		})
	}
}

func TestAttendanceLocation_Fallback(t *testing.T) {
	c := AttendanceConfig{}
	if c.Location() != time.UTC {
		t.Error("空时区应回退到 UTC")
	}
}
