package database

import (
	"context"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/yuhuo/column-form/config"
)

// Connection 表示数据库连接
type Connection struct {
	db   *sqlx.DB
	name string // 连接名，用于日志
}

// DSN 根据配置生成 go-sql-driver/mysql 的连接串
func DSN(cfg *config.DatabaseConfig) string {
	mc := mysql.NewConfig()
	mc.User = cfg.Username
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = cfg.Addr()
	mc.DBName = cfg.Database
	mc.ParseTime = true
	mc.Params = map[string]string{"charset": cfg.Charset}
	return mc.FormatDSN()
}

// NewConnection 创建新的数据库连接
func NewConnection(ctx context.Context, cfg *config.DatabaseConfig, name string) (*Connection, error) {
	db, err := sqlx.Open("mysql", DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", name, err)
	}

	// 配置连接池，一次渲染只需要少量连接
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	// 测试连接
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database %s: %w", name, err)
	}

	return &Connection{
		db:   db,
		name: name,
	}, nil
}

// Name 连接名
func (c *Connection) Name() string {
	return c.name
}

// Close 关闭数据库连接
func (c *Connection) Close() error {
	return c.db.Close()
}

// Select 查询多行并扫描到切片
func (c *Connection) Select(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return c.db.SelectContext(ctx, dest, query, args...)
}

// Get 查询单行并扫描到结构体
func (c *Connection) Get(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return c.db.GetContext(ctx, dest, query, args...)
}
