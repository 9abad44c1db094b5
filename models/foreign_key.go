package models

// ForeignKey 表示表上的一个外键约束
type ForeignKey struct {
	Constraint string   `yaml:"constraint"`
	Columns    []string `yaml:"columns"`
	RefSchema  string   `yaml:"ref_schema"`
	RefTable   string   `yaml:"ref_table"`
	RefColumns []string `yaml:"ref_columns"`
	OnDelete   string   `yaml:"on_delete"`
	OnUpdate   string   `yaml:"on_update"`
}

// Foreigner 是某一列所在外键的描述
type Foreigner struct {
	Constraint   string
	ForeignDB    string
	ForeignTable string
	ForeignField string
	OnDelete     string
	OnUpdate     string
}

// ChildReference 表示其他表中引用了本表某列的外键列
type ChildReference struct {
	ColumnName           string `db:"column_name"`
	TableName            string `db:"table_name"`
	TableSchema          string `db:"table_schema"`
	ReferencedColumnName string `db:"referenced_column_name"`
}

// ChildReferences 按被引用列名分组
type ChildReferences map[string][]ChildReference

// ColumnStatus 外键检查的结果
type ColumnStatus struct {
	IsEditable   bool     `yaml:"is_editable"`
	IsReferenced bool     `yaml:"is_referenced"`
	IsForeignKey bool     `yaml:"is_foreign_key"`
	References   []string `yaml:"references,omitempty"`
}
