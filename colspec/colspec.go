// Package colspec 解析 MySQL 列类型字符串，例如 "decimal(10,2) unsigned zerofill"
package colspec

import (
	"encoding/hex"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/yuhuo/column-form/models"
)

var (
	upper = cases.Upper(language.Und)

	charsetClause   = regexp.MustCompile(`\scharacter set\s\S+`)
	binaryWithParen = regexp.MustCompile(`binary\(`)
	collatableTypes = []string{"char", "varchar", "text", "tinytext", "mediumtext", "longtext", "set", "enum"}

	generatedExtras = map[string]string{
		"VIRTUAL":           "VIRTUAL",
		"PERSISTENT":        "PERSISTENT",
		"VIRTUAL GENERATED": "VIRTUAL",
		"STORED GENERATED":  "STORED",
	}
)

// Extract 把列类型拆成基础类型、括号内规格以及属性
func Extract(columnType string) models.ColumnSpec {
	var spec models.ColumnSpec
	columnType = strings.TrimSpace(columnType)

	if pos := strings.Index(columnType, "("); pos > 0 {
		end := strings.LastIndex(columnType, ")")
		if end < pos {
			end = len(columnType)
		}
		spec.SpecInBrackets = strings.TrimRight(columnType[pos+1:end], " \t\n\r\x00\x0B")
		spec.Type = strings.ToLower(strings.TrimRight(columnType[:pos], " \t\n\r\x00\x0B"))
	} else {
		// 没有括号时，第一个单词就是类型名，其余为 unsigned/binary/zerofill 等属性
		parts := strings.Split(columnType, " ")
		spec.Type = strings.ToLower(parts[0])
	}

	if spec.Type == "enum" || spec.Type == "set" {
		spec.EnumSetValues = ParseEnumSetValues(columnType)
		spec.PrintType = spec.Type + "(" + strings.ReplaceAll(spec.SpecInBrackets, "','", "', '") + ")"
	} else {
		printType := strings.ToLower(columnType)
		// BINARY( 说明是 BINARY/VARBINARY 类型本身，而不是 BINARY 属性
		if strings.Contains(printType, "binary") && !binaryWithParen.MatchString(printType) {
			printType = strings.ReplaceAll(printType, "binary", "")
			spec.Binary = true
		}
		if strings.Contains(printType, "zerofill") {
			printType = strings.ReplaceAll(printType, "zerofill", "")
			spec.Zerofill = true
		}
		if strings.Contains(printType, "unsigned") {
			printType = strings.ReplaceAll(printType, "unsigned", "")
			spec.Unsigned = true
		}
		spec.PrintType = strings.TrimSpace(printType)
	}

	switch {
	case spec.Zerofill:
		spec.Attribute = "UNSIGNED ZEROFILL"
	case spec.Unsigned:
		spec.Attribute = "UNSIGNED"
	case spec.Binary:
		spec.Attribute = "BINARY"
	}

	if !spec.Binary {
		for _, prefix := range collatableTypes {
			if strings.HasPrefix(spec.Type, prefix) {
				spec.CanContainCollation = true
				break
			}
		}
	}

	return spec
}

// ParseEnumSetValues 解析 enum('a','b''c') 中的取值，处理 '' 和 \' 两种转义
func ParseEnumSetValues(definition string) []string {
	values := []string{}
	runes := []rune(definition)
	inString := false
	var buf strings.Builder

	for i := 0; i < len(runes); i++ {
		curr := runes[i]
		var next rune
		if i+1 < len(runes) {
			next = runes[i+1]
		}

		switch {
		case !inString && curr == '\'':
			inString = true
		case inString && curr == '\\' && next == '\\':
			buf.WriteRune('\\')
			i++
		case inString && next == '\'' && (curr == '\'' || curr == '\\'):
			buf.WriteRune('\'')
			i++
		case inString && curr == '\'':
			inString = false
			values = append(values, buf.String())
			buf.Reset()
		case inString:
			buf.WriteRune(curr)
		}
	}
	if buf.Len() > 0 {
		values = append(values, buf.String())
	}

	return values
}

// ConvertBitDefaultValue 把 b'0101' 形式的默认值转换为 0101
func ConvertBitDefaultValue(value string) string {
	return strings.TrimRight(strings.TrimLeft(value, "b'"), "'")
}

// HexDefaultValue 以十六进制显示 BINARY/VARBINARY 的默认值
func HexDefaultValue(value string) string {
	return hex.EncodeToString([]byte(value))
}

// StripCharset 去掉类型末尾的 "character set xxx"，
// 当列的字符集与库不同时 longtext 会被报告为 "longtext character set latin7"
func StripCharset(columnType string) string {
	return strings.TrimRight(charsetClause.ReplaceAllString(columnType, ""), " \t\n\r\x00\x0B")
}

// NormalizeType 去掉字符集后缀并转为大写
func NormalizeType(columnType string) string {
	return upper.String(StripCharset(columnType))
}

// IsGeneratedExtra Extra 是否表示虚拟列或存储生成列
func IsGeneratedExtra(extra string) bool {
	_, ok := generatedExtras[strings.ToUpper(strings.TrimSpace(extra))]
	return ok
}

// VirtualityFromExtra 由 Extra 推出表单中的 virtuality 取值
func VirtualityFromExtra(extra string) string {
	return generatedExtras[strings.ToUpper(strings.TrimSpace(extra))]
}
