package database

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

var (
	// ErrMetadataUnavailable 读取表结构元数据失败（连接断开、权限不足等）
	ErrMetadataUnavailable = errors.New("metadata unavailable")
	// ErrTableNotFound 库或表不存在
	ErrTableNotFound = errors.New("table not found")
)

// MySQL 错误码
const (
	errNoSuchTable = 1146
	errBadDB       = 1049
	errTableAccess = 1142
	errDBAccess    = 1044
)

// wrapQueryError 把驱动错误归类为 ErrMetadataUnavailable / ErrTableNotFound
func wrapQueryError(op string, err error) error {
	if err == nil {
		return nil
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case errNoSuchTable, errBadDB:
			return fmt.Errorf("%s: %w: %w: %w", op, ErrMetadataUnavailable, ErrTableNotFound, err)
		case errTableAccess, errDBAccess:
			return fmt.Errorf("%s: %w (access denied): %w", op, ErrMetadataUnavailable, err)
		}
	}

	return fmt.Errorf("%s: %w: %w", op, ErrMetadataUnavailable, err)
}
