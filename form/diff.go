package form

import (
	"strings"

	"github.com/yuhuo/column-form/models"
)

// SlotChange 一行与原始列之间的差异
type SlotChange struct {
	Index   int
	Name    string
	Renamed bool
	Fields  []string // 发生变化的属性
}

// ChangedSlots 比对每一行与原始列，返回发生变化的行
// 注意：只有修改列（存在 Original）时才有意义，新列不在结果中
func ChangedSlots(slots []models.ColumnSlot) []SlotChange {
	var changes []SlotChange

	for _, slot := range slots {
		if slot.Original == nil || slot.Original.Name == "" {
			continue
		}
		fields := slotDiff(slot, *slot.Original)
		if len(fields) == 0 {
			continue
		}
		changes = append(changes, SlotChange{
			Index:   slot.Index,
			Name:    slot.Original.Name,
			Renamed: slot.Name != slot.Original.Name,
			Fields:  fields,
		})
	}

	return changes
}

// slotDiff 返回不同的属性名
func slotDiff(slot models.ColumnSlot, orig models.OriginalColumn) []string {
	var fields []string

	if slot.Name != orig.Name {
		fields = append(fields, "name")
	}
	if normalizeType(slot.TypeNormalized) != normalizeType(orig.Type) {
		fields = append(fields, "type")
	}
	if slot.Length != orig.Length {
		fields = append(fields, "length")
	}
	if nullFlag(slot.Null) != nullFlag(orig.Null) {
		fields = append(fields, "null")
	}

	// 默认值：种类不同或用户定义的值不同
	if slot.DefaultKind != orig.DefaultKind {
		fields = append(fields, "default")
	} else if slot.DefaultKind == models.DefaultUserDefined && derefOrEmpty(slot.DefaultValue) != orig.Default {
		fields = append(fields, "default")
	}

	if !strings.EqualFold(slot.Collation, orig.Collation) {
		fields = append(fields, "collation")
	}

	attribute := slot.Attribute
	if slot.SubmittedAttribute != "" {
		attribute = slot.SubmittedAttribute
	}
	if !strings.EqualFold(strings.TrimSpace(attribute), orig.Attribute) {
		fields = append(fields, "attribute")
	}

	if !strings.EqualFold(slot.Extra, orig.Extra) {
		fields = append(fields, "extra")
	}
	if slot.Comment != orig.Comment {
		fields = append(fields, "comment")
	}
	if !strings.EqualFold(slot.Virtuality, orig.Virtuality) || slot.GenerationExpression != orig.Expression {
		fields = append(fields, "expression")
	}

	return fields
}

// normalizeType 规范化列类型，用于比对
func normalizeType(typeStr string) string {
	typeStr = strings.ToUpper(typeStr)
	// 清除多余的空格
	return strings.Join(strings.Fields(typeStr), " ")
}

// nullFlag 表单中勾选框的取值和数据库的 YES/NO 统一为布尔值
func nullFlag(v string) bool {
	s := models.ColumnSlot{Null: v}
	return s.IsNullable()
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
