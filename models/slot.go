package models

import "strings"

// DefaultKind 默认值的种类
type DefaultKind int

const (
	DefaultNone DefaultKind = iota
	DefaultUserDefined
	DefaultNull
	DefaultCurrentTimestamp
)

// ParseDefaultKind 解析表单中 field_default_type 的取值，无法识别时返回 DefaultNone
func ParseDefaultKind(s string) DefaultKind {
	switch s {
	case "USER_DEFINED":
		return DefaultUserDefined
	case "NULL":
		return DefaultNull
	case "CURRENT_TIMESTAMP", "current_timestamp()":
		return DefaultCurrentTimestamp
	default:
		return DefaultNone
	}
}

// String 返回表单使用的取值
func (k DefaultKind) String() string {
	switch k {
	case DefaultUserDefined:
		return "USER_DEFINED"
	case DefaultNull:
		return "NULL"
	case DefaultCurrentTimestamp:
		return "CURRENT_TIMESTAMP"
	default:
		return "NONE"
	}
}

// MarshalYAML 输出为字符串形式
func (k DefaultKind) MarshalYAML() (interface{}, error) {
	return k.String(), nil
}

// KeyKind 列上的索引种类，取值与 SHOW COLUMNS 的 Key 列一致
type KeyKind string

const (
	KeyNone     KeyKind = ""
	KeyPrimary  KeyKind = "PRI"
	KeyIndex    KeyKind = "MUL"
	KeyUnique   KeyKind = "UNI"
	KeyFulltext KeyKind = "FULLTEXT"
	KeySpatial  KeyKind = "SPATIAL"
)

var formKeyKinds = map[string]KeyKind{
	"primary":  KeyPrimary,
	"index":    KeyIndex,
	"unique":   KeyUnique,
	"fulltext": KeyFulltext,
	"spatial":  KeySpatial,
}

// ParseFormKeyKind 把表单中的 primary/index/... 映射为 KeyKind，未知值返回 KeyNone
func ParseFormKeyKind(s string) KeyKind {
	return formKeyKinds[s]
}

// ParseKeyKind 解析数据库返回的 Key 列
func ParseKeyKind(s string) KeyKind {
	switch k := KeyKind(strings.ToUpper(s)); k {
	case KeyPrimary, KeyIndex, KeyUnique, KeyFulltext, KeySpatial:
		return k
	default:
		return KeyNone
	}
}

// Action 触发表单渲染的页面
type Action int

const (
	ActionCreateTable Action = iota
	ActionAddField
	ActionAlterColumns
)

// ParseAction 解析 action 参数
func ParseAction(s string) Action {
	switch s {
	case "tbl_create.php", "create":
		return ActionCreateTable
	case "tbl_addfield.php", "addfield", "add":
		return ActionAddField
	default:
		return ActionAlterColumns
	}
}

// IsBackup 修改已有列时需要保留原始属性
func (a Action) IsBackup() bool {
	return a == ActionAlterColumns
}

// EditsExistingTable 表已经存在（添加列或修改列）
func (a Action) EditsExistingTable() bool {
	return a != ActionCreateTable
}

// ColumnSpec 是列类型字符串拆分后的结果
type ColumnSpec struct {
	Type                string   `yaml:"type"`
	SpecInBrackets      string   `yaml:"spec_in_brackets"`
	EnumSetValues       []string `yaml:"enum_set_values,omitempty"`
	PrintType           string   `yaml:"print_type"`
	Binary              bool     `yaml:"binary"`
	Unsigned            bool     `yaml:"unsigned"`
	Zerofill            bool     `yaml:"zerofill"`
	Attribute           string   `yaml:"attribute"`
	CanContainCollation bool     `yaml:"can_contain_collation"`
}

// OriginalColumn 修改已有列时表单回传的旧属性
type OriginalColumn struct {
	Name        string      `yaml:"name"`
	Type        string      `yaml:"type"`
	Length      string      `yaml:"length"`
	Default     string      `yaml:"default"`
	DefaultKind DefaultKind `yaml:"default_kind"`
	Collation   string      `yaml:"collation"`
	Attribute   string      `yaml:"attribute"`
	Null        string      `yaml:"null"`
	Extra       string      `yaml:"extra"`
	Comment     string      `yaml:"comment"`
	Virtuality  string      `yaml:"virtuality"`
	Expression  string      `yaml:"expression"`
}

// ColumnSlot 表示表单中的一行，即一个待创建或待修改的列
type ColumnSlot struct {
	Index                int             `yaml:"index"`
	Name                 string          `yaml:"name"`
	TypeRaw              string          `yaml:"type_raw"`
	TypeNormalized       string          `yaml:"type"`
	Length               string          `yaml:"length"`
	Attribute            string          `yaml:"attribute"`
	SubmittedAttribute   string          `yaml:"submitted_attribute,omitempty"`
	Collation            string          `yaml:"collation"`
	Null                 string          `yaml:"null"`
	DefaultKind          DefaultKind     `yaml:"default_kind"`
	DefaultValue         *string         `yaml:"default_value"`
	DisplayDefault       string          `yaml:"display_default"`
	Extra                string          `yaml:"extra"`
	Virtuality           string          `yaml:"virtuality"`
	GenerationExpression string          `yaml:"expression"`
	Key                  KeyKind         `yaml:"key"`
	Comment              string          `yaml:"comment"`
	MimeType             string          `yaml:"mimetype,omitempty"`
	Transformation       string          `yaml:"transformation,omitempty"`
	TransformationOpts   string          `yaml:"transformation_options,omitempty"`
	IsRenameLocked       bool            `yaml:"rename_locked"`
	Exists               bool            `yaml:"exists"`
	Spec                 ColumnSpec      `yaml:"spec"`
	Status               *ColumnStatus   `yaml:"status,omitempty"`
	Original             *OriginalColumn `yaml:"original,omitempty"`
}

// IsNullable 行上是否勾选了 NULL
func (s *ColumnSlot) IsNullable() bool {
	return strings.EqualFold(s.Null, "YES") || s.Null == "on" || s.Null == "1" || strings.EqualFold(s.Null, "NULL")
}
