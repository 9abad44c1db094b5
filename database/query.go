package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/yuhuo/column-form/models"
)

// ServerType 数据库服务器类型
type ServerType string

const (
	ServerMySQL   ServerType = "MySQL"
	ServerMariaDB ServerType = "MariaDB"
)

// 5.7.6 开始 INFORMATION_SCHEMA.COLUMNS 提供 GENERATION_EXPRESSION
const generationExpressionVersion = 50705

// QueryHelper 辅助进行表结构元数据查询
type QueryHelper struct {
	conn querier

	mu         sync.Mutex
	version    int
	serverType ServerType
	loaded     bool
}

// querier 是 Connection 提供的查询能力
type querier interface {
	Select(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	Get(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

// NewQueryHelper 创建查询助手
func NewQueryHelper(conn *Connection) *QueryHelper {
	return &QueryHelper{conn: conn}
}

// GetColumnsMeta 获取表的列定义，顺序与表中一致
func (qh *QueryHelper) GetColumnsMeta(ctx context.Context, db, table string) ([]models.ColumnMeta, error) {
	var columns []models.ColumnMeta
	query := "SHOW FULL COLUMNS FROM " + quoteIdent(db) + "." + quoteIdent(table)
	if err := qh.conn.Select(ctx, &columns, query); err != nil {
		return nil, wrapQueryError("failed to query columns", err)
	}
	return columns, nil
}

// GetServerVersion 返回形如 80036 的版本号
func (qh *QueryHelper) GetServerVersion(ctx context.Context) (int, error) {
	version, _, err := qh.serverInfo(ctx)
	return version, err
}

// GetServerType 返回 MySQL 或 MariaDB
func (qh *QueryHelper) GetServerType(ctx context.Context) (ServerType, error) {
	_, serverType, err := qh.serverInfo(ctx)
	return serverType, err
}

// serverInfo 查询一次 VERSION() 并缓存
func (qh *QueryHelper) serverInfo(ctx context.Context) (int, ServerType, error) {
	qh.mu.Lock()
	defer qh.mu.Unlock()

	if qh.loaded {
		return qh.version, qh.serverType, nil
	}

	var raw string
	if err := qh.conn.Get(ctx, &raw, "SELECT VERSION()"); err != nil {
		return 0, "", wrapQueryError("failed to query server version", err)
	}

	version, serverType, err := ParseServerVersion(raw)
	if err != nil {
		return 0, "", err
	}
	qh.version, qh.serverType, qh.loaded = version, serverType, true
	return version, serverType, nil
}

// ParseServerVersion 解析 "8.0.36"、"10.6.12-MariaDB-log" 这类版本字符串
func ParseServerVersion(raw string) (int, ServerType, error) {
	serverType := ServerMySQL
	if strings.Contains(strings.ToLower(raw), "mariadb") {
		serverType = ServerMariaDB
	}

	numeric := raw
	if idx := strings.IndexFunc(raw, func(r rune) bool { return r != '.' && (r < '0' || r > '9') }); idx >= 0 {
		numeric = raw[:idx]
	}

	parts := strings.Split(numeric, ".")
	if len(parts) < 2 {
		return 0, serverType, fmt.Errorf("unrecognized server version %q", raw)
	}

	var nums [3]int
	for i := 0; i < len(parts) && i < 3; i++ {
		n, err := strconv.Atoi(parts[i])
		if err != nil {
			return 0, serverType, fmt.Errorf("unrecognized server version %q: %w", raw, err)
		}
		nums[i] = n
	}

	return nums[0]*10000 + nums[1]*100 + nums[2], serverType, nil
}

// GetGenerationExpression 获取生成列的表达式
func (qh *QueryHelper) GetGenerationExpression(ctx context.Context, db, table, column string) (string, error) {
	version, serverType, err := qh.serverInfo(ctx)
	if err != nil {
		return "", err
	}

	if serverType == ServerMySQL && version > generationExpressionVersion {
		var expr sql.NullString
		err := qh.conn.Get(ctx, &expr, `
			SELECT GENERATION_EXPRESSION
			FROM INFORMATION_SCHEMA.COLUMNS
			WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ? AND COLUMN_NAME = ?
		`, db, table, column)
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		if err != nil {
			return "", wrapQueryError("failed to query generation expression", err)
		}
		return expr.String, nil
	}

	// MariaDB 以及旧版本 MySQL 只能从建表语句中解析
	createSQL, err := qh.GetCreateTableSQL(ctx, db, table)
	if err != nil {
		return "", err
	}
	return ExtractGenerationExpression(createSQL, column), nil
}

// GetTableStamp 返回表的创建与更新时间，ALTER 重建表后会变化；表不存在时为空串
func (qh *QueryHelper) GetTableStamp(ctx context.Context, db, table string) (string, error) {
	var stamp sql.NullString
	err := qh.conn.Get(ctx, &stamp, `
		SELECT CONCAT_WS('|', CREATE_TIME, UPDATE_TIME)
		FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
	`, db, table)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", wrapQueryError("failed to query table stamp", err)
	}
	return stamp.String, nil
}

// createTableRow SHOW CREATE TABLE 的结果
type createTableRow struct {
	Table       string `db:"Table"`
	CreateTable string `db:"Create Table"`
}

// GetCreateTableSQL 获取表的原始 CREATE TABLE 语句
func (qh *QueryHelper) GetCreateTableSQL(ctx context.Context, db, table string) (string, error) {
	var row createTableRow
	if err := qh.conn.Get(ctx, &row, "SHOW CREATE TABLE "+quoteIdent(db)+"."+quoteIdent(table)); err != nil {
		return "", wrapQueryError("failed to query create table statement", err)
	}
	return row.CreateTable, nil
}

// foreignKeyRow KEY_COLUMN_USAGE 与 REFERENTIAL_CONSTRAINTS 连接后的一行
type foreignKeyRow struct {
	Constraint string         `db:"constraint_name"`
	Column     string         `db:"column_name"`
	RefSchema  sql.NullString `db:"ref_schema"`
	RefTable   sql.NullString `db:"ref_table"`
	RefColumn  sql.NullString `db:"ref_column"`
	OnUpdate   string         `db:"on_update"`
	OnDelete   string         `db:"on_delete"`
}

// GetForeignKeys 获取表上的外键，每个约束的列按顺序排列
func (qh *QueryHelper) GetForeignKeys(ctx context.Context, db, table string) ([]models.ForeignKey, error) {
	var rows []foreignKeyRow
	err := qh.conn.Select(ctx, &rows, `
		SELECT
			k.CONSTRAINT_NAME AS constraint_name,
			k.COLUMN_NAME AS column_name,
			k.REFERENCED_TABLE_SCHEMA AS ref_schema,
			k.REFERENCED_TABLE_NAME AS ref_table,
			k.REFERENCED_COLUMN_NAME AS ref_column,
			r.UPDATE_RULE AS on_update,
			r.DELETE_RULE AS on_delete
		FROM INFORMATION_SCHEMA.KEY_COLUMN_USAGE k
		JOIN INFORMATION_SCHEMA.REFERENTIAL_CONSTRAINTS r
			ON r.CONSTRAINT_SCHEMA = k.CONSTRAINT_SCHEMA
			AND r.CONSTRAINT_NAME = k.CONSTRAINT_NAME
			AND r.TABLE_NAME = k.TABLE_NAME
		WHERE k.TABLE_SCHEMA = ? AND k.TABLE_NAME = ?
			AND k.REFERENCED_TABLE_NAME IS NOT NULL
		ORDER BY k.CONSTRAINT_NAME, k.ORDINAL_POSITION
	`, db, table)
	if err != nil {
		return nil, wrapQueryError("failed to query foreign keys", err)
	}

	return groupForeignKeys(rows), nil
}

// groupForeignKeys 按约束名合并多列外键，保持查询顺序
func groupForeignKeys(rows []foreignKeyRow) []models.ForeignKey {
	fkMap := make(map[string]*models.ForeignKey)
	fkOrder := []string{}

	for _, row := range rows {
		if _, exists := fkMap[row.Constraint]; !exists {
			fkMap[row.Constraint] = &models.ForeignKey{
				Constraint: row.Constraint,
				RefSchema:  row.RefSchema.String,
				RefTable:   row.RefTable.String,
				OnUpdate:   row.OnUpdate,
				OnDelete:   row.OnDelete,
			}
			fkOrder = append(fkOrder, row.Constraint)
		}
		fk := fkMap[row.Constraint]
		fk.Columns = append(fk.Columns, row.Column)
		fk.RefColumns = append(fk.RefColumns, row.RefColumn.String)
	}

	foreignKeys := make([]models.ForeignKey, 0, len(fkOrder))
	for _, name := range fkOrder {
		foreignKeys = append(foreignKeys, *fkMap[name])
	}
	return foreignKeys
}

// GetChildReferences 获取其他表中引用本表列的外键
func (qh *QueryHelper) GetChildReferences(ctx context.Context, db, table string) (models.ChildReferences, error) {
	var refs []models.ChildReference
	err := qh.conn.Select(ctx, &refs, `
		SELECT
			COLUMN_NAME AS column_name,
			TABLE_NAME AS table_name,
			TABLE_SCHEMA AS table_schema,
			REFERENCED_COLUMN_NAME AS referenced_column_name
		FROM INFORMATION_SCHEMA.KEY_COLUMN_USAGE
		WHERE REFERENCED_TABLE_NAME = ? AND REFERENCED_TABLE_SCHEMA = ?
	`, table, db)
	if err != nil {
		return nil, wrapQueryError("failed to query child references", err)
	}

	return groupChildReferences(refs), nil
}

// groupChildReferences 按被引用列分组
func groupChildReferences(refs []models.ChildReference) models.ChildReferences {
	grouped := models.ChildReferences{}
	for _, ref := range refs {
		grouped[ref.ReferencedColumnName] = append(grouped[ref.ReferencedColumnName], ref)
	}
	return grouped
}

// quoteIdent 用反引号包裹标识符
func quoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
