package database

import (
	"strings"
)

// ExtractGenerationExpression 从 SHOW CREATE TABLE 输出中找到指定列的
// "AS (...)" 表达式，未找到或不是生成列时返回空串
func ExtractGenerationExpression(createSQL, column string) string {
	for _, line := range strings.Split(createSQL, "\n") {
		line = strings.TrimSpace(line)
		name, rest, ok := leadingIdent(line)
		if !ok || !strings.EqualFold(name, column) {
			continue
		}
		return generationClause(rest)
	}
	return ""
}

// leadingIdent 解析行首的反引号标识符
func leadingIdent(line string) (string, string, bool) {
	if !strings.HasPrefix(line, "`") {
		return "", "", false
	}

	var b strings.Builder
	for i := 1; i < len(line); i++ {
		if line[i] != '`' {
			b.WriteByte(line[i])
			continue
		}
		if i+1 < len(line) && line[i+1] == '`' {
			b.WriteByte('`')
			i++
			continue
		}
		return b.String(), line[i+1:], true
	}
	return "", "", false
}

// generationClause 在列定义剩余部分中定位 AS 后的括号并返回其中内容
func generationClause(def string) string {
	start := -1
	for i := 0; i+2 < len(def) && start < 0; i++ {
		if def[i] == '\'' || def[i] == '"' {
			i = skipQuoted(def, i)
			continue
		}
		if !strings.EqualFold(def[i:i+2], "AS") || (i > 0 && def[i-1] != ' ') {
			continue
		}
		j := i + 2
		for j < len(def) && def[j] == ' ' {
			j++
		}
		if j < len(def) && def[j] == '(' {
			start = j
		}
	}
	if start < 0 {
		return ""
	}

	depth := 0
	for i := start; i < len(def); i++ {
		switch def[i] {
		case '\'', '"', '`':
			i = skipQuoted(def, i)
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return def[start+1 : i]
			}
		}
	}
	return ""
}

// skipQuoted 返回与 s[i] 匹配的结束引号位置，支持重复引号与反斜杠转义
func skipQuoted(s string, i int) int {
	quote := s[i]
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			if quote != '`' {
				j++
			}
		case quote:
			if j+1 < len(s) && s[j+1] == quote {
				j++
				continue
			}
			return j
		}
	}
	return len(s) - 1
}
