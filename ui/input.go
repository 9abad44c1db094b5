package ui

import (
	"bufio"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/yuhuo/column-form/form"
)

// 单行最长 16 MiB，生成列表达式和编码后的整张表单都可能很长
const maxLineSize = 16 * 1024 * 1024

// ReadSubmittedFields 读取表单提交内容
// 每行一个 field_xxx[i]=value，值原样保留；键中没有 "[" 的行按 URL 编码的查询串解析。
// 空行和 # 开头的行被忽略
func ReadSubmittedFields(r io.Reader) (form.SubmittedFields, error) {
	values := url.Values{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("line %d: expected key=value", lineNo)
		}

		// 原始形式的键一定带方括号，编码后的方括号是 %5B
		if strings.Contains(key, "[") {
			values.Add(strings.TrimSpace(key), value)
			continue
		}

		parsed, err := url.ParseQuery(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid query: %w", lineNo, err)
		}
		for k, vals := range parsed {
			values[k] = append(values[k], vals...)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read form input: %w", err)
	}

	return form.ParseSubmittedFields(values), nil
}
