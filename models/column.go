package models

import "strings"

// ColumnMeta 表示数据库返回的一列元数据，字段与 SHOW FULL COLUMNS 的输出一致
type ColumnMeta struct {
	Field      string  `db:"Field" json:"field"`
	Type       string  `db:"Type" json:"type"`
	Collation  *string `db:"Collation" json:"collation,omitempty"`
	Null       string  `db:"Null" json:"null"` // YES / NO
	Key        string  `db:"Key" json:"key"`
	Default    *string `db:"Default" json:"default,omitempty"`
	Extra      string  `db:"Extra" json:"extra"`
	Privileges string  `db:"Privileges" json:"privileges"`
	Comment    string  `db:"Comment" json:"comment"`
}

// IsNullable 列是否允许 NULL
func (c *ColumnMeta) IsNullable() bool {
	return strings.EqualFold(c.Null, "YES")
}

// CollationName 返回排序规则，没有时返回空串
func (c *ColumnMeta) CollationName() string {
	if c.Collation == nil {
		return ""
	}
	return *c.Collation
}
