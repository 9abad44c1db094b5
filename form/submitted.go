package form

import (
	"net/url"
	"regexp"
	"strconv"
)

// 表单中每一行使用的字段名
const (
	FieldName                  = "field_name"
	FieldType                  = "field_type"
	FieldLength                = "field_length"
	FieldCollation             = "field_collation"
	FieldNull                  = "field_null"
	FieldDefaultType           = "field_default_type"
	FieldDefaultValue          = "field_default_value"
	FieldExtra                 = "field_extra"
	FieldVirtuality            = "field_virtuality"
	FieldExpression            = "field_expression"
	FieldKey                   = "field_key"
	FieldComments              = "field_comments"
	FieldAttribute             = "field_attribute"
	FieldMimeType              = "field_mimetype"
	FieldTransformation        = "field_transformation"
	FieldTransformationOptions = "field_transformation_options"

	FieldOrig             = "field_orig"
	FieldTypeOrig         = "field_type_orig"
	FieldLengthOrig       = "field_length_orig"
	FieldDefaultValueOrig = "field_default_value_orig"
	FieldDefaultTypeOrig  = "field_default_type_orig"
	FieldCollationOrig    = "field_collation_orig"
	FieldAttributeOrig    = "field_attribute_orig"
	FieldNullOrig         = "field_null_orig"
	FieldExtraOrig        = "field_extra_orig"
	FieldCommentsOrig     = "field_comments_orig"
	FieldVirtualityOrig   = "field_virtuality_orig"
	FieldExpressionOrig   = "field_expression_orig"
)

var slotKeyPattern = regexp.MustCompile(`^(field_[a-z_]+)\[(\d+)\]$`)

// SubmittedFields 表单回传的值，按 (字段名, 行号) 寻址
type SubmittedFields map[string]map[int]string

// ParseSubmittedFields 从表单参数中取出 field_xxx[i] 形式的值，其余参数忽略
func ParseSubmittedFields(values url.Values) SubmittedFields {
	fields := SubmittedFields{}
	for key, vals := range values {
		m := slotKeyPattern.FindStringSubmatch(key)
		if m == nil || len(vals) == 0 {
			continue
		}
		index, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		fields.Set(m[1], index, vals[0])
	}
	return fields
}

// ParseSubmittedQuery 解析 URL 编码的表单内容，格式错误时返回已解析的部分
func ParseSubmittedQuery(query string) SubmittedFields {
	values, _ := url.ParseQuery(query)
	return ParseSubmittedFields(values)
}

// Set 设置某行某字段的值
func (f SubmittedFields) Set(kind string, index int, value string) {
	if f[kind] == nil {
		f[kind] = make(map[int]string)
	}
	f[kind][index] = value
}

// Lookup 返回某行某字段的值以及是否提交过
func (f SubmittedFields) Lookup(kind string, index int) (string, bool) {
	if f == nil {
		return "", false
	}
	v, ok := f[kind][index]
	return v, ok
}

// Get 返回某行某字段的值，未提交时返回 def
func (f SubmittedFields) Get(kind string, index int, def string) string {
	if v, ok := f.Lookup(kind, index); ok {
		return v
	}
	return def
}
