// Package relation 判断列是否被外键约束绑定，决定在旧版本 MySQL 上能否重命名
package relation

import (
	"context"
	"fmt"
	"strings"

	"github.com/yuhuo/column-form/models"
)

// SafeRenameVersion 从 MySQL 5.6.6 开始，带外键的列可以直接重命名
const SafeRenameVersion = 50606

// NeedsChildReferences 低于 5.6.6 时才需要查询子表引用
func NeedsChildReferences(serverVersion int) bool {
	return serverVersion < SafeRenameVersion
}

// SearchColumnInForeigners 查找包含该列的外键，没有时返回 nil
func SearchColumnInForeigners(foreignKeys []models.ForeignKey, column, currentDB string) *models.Foreigner {
	for _, fk := range foreignKeys {
		for i, col := range fk.Columns {
			if col != column {
				continue
			}
			f := &models.Foreigner{
				Constraint:   fk.Constraint,
				ForeignDB:    fk.RefSchema,
				ForeignTable: fk.RefTable,
				OnDelete:     fk.OnDelete,
				OnUpdate:     fk.OnUpdate,
			}
			if f.ForeignDB == "" {
				f.ForeignDB = currentDB
			}
			if i < len(fk.RefColumns) {
				f.ForeignField = fk.RefColumns[i]
			}
			return f
		}
	}
	return nil
}

// CheckChildForeignReferences 列既不是外键、也没有被其他表引用时才可编辑
func CheckChildForeignReferences(db, table, column string, foreignKeys []models.ForeignKey, childRefs models.ChildReferences) models.ColumnStatus {
	status := models.ColumnStatus{References: []string{}}

	children := childRefs[column]
	foreigner := SearchColumnInForeigners(foreignKeys, column, db)

	if len(children) == 0 && foreigner == nil {
		status.IsEditable = true
		return status
	}

	if len(children) > 0 {
		status.IsReferenced = true
		for _, ref := range children {
			status.References = append(status.References, Backquote(ref.TableSchema)+"."+Backquote(ref.TableName))
		}
	}
	if foreigner != nil {
		status.IsForeignKey = true
	}

	return status
}

// Backquote 用反引号包裹标识符
func Backquote(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// Checker 基于预先取得的外键数据做检查
type Checker struct{}

// NewChecker 创建外键检查器
func NewChecker() *Checker {
	return &Checker{}
}

// CheckChildForeignReferences 实现 form.ForeignKeyChecker
func (c *Checker) CheckChildForeignReferences(ctx context.Context, db, table, column string, foreignKeys []models.ForeignKey, childRefs models.ChildReferences) (models.ColumnStatus, error) {
	if err := ctx.Err(); err != nil {
		return models.ColumnStatus{}, fmt.Errorf("failed to check foreign references of %s.%s: %w", table, column, err)
	}
	return CheckChildForeignReferences(db, table, column, foreignKeys, childRefs), nil
}
