package errors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// ErrDuplicateKey 唯一约束冲突（由 Repository 层从驱动错误翻译而来）
var ErrDuplicateKey = errors.New("记录已存在")

// ErrSessionLocked 考勤场次已锁定，拒绝任何写入
var ErrSessionLocked = errors.New("考勤场次已锁定")

const pgUniqueViolation = "23505"

// IsUniqueViolation 判断错误是否为 PostgreSQL 唯一约束冲突
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDuplicateKey) || errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return false
}
