package ui

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/yuhuo/column-form/form"
	"github.com/yuhuo/column-form/models"
)

const lineWidth = 130

// PrintSlots 打印表单各行的汇总表格
func PrintSlots(w io.Writer, title string, slots []models.ColumnSlot) {
	fmt.Fprintf(w, "\n========== %s ==========\n\n", title)

	// 表头
	fmt.Fprintf(w, "%-3s | %-20s | %-15s | %-10s | %-12s | %-4s | %-18s | %-15s | %-4s | %-6s\n",
		"#", "Name", "Type", "Length", "Attribute", "Null", "Default", "Extra", "Key", "Locked")
	fmt.Fprintln(w, strings.Repeat("-", lineWidth))

	for _, slot := range slots {
		locked := "-"
		if slot.IsRenameLocked {
			locked = "yes"
		}
		null := "NO"
		if slot.IsNullable() {
			null = "YES"
		}

		fmt.Fprintf(w, "%-3d | %-20s | %-15s | %-10s | %-12s | %-4s | %-18s | %-15s | %-4s | %-6s\n",
			slot.Index, dash(slot.Name), dash(slot.TypeNormalized), dash(slot.Length), dash(slot.Attribute),
			null, defaultCell(slot), dash(slot.Extra), dash(string(slot.Key)), locked)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Total: %d columns\n\n", len(slots))
}

// PrintChanges 打印与原始列相比发生变化的行
func PrintChanges(w io.Writer, changes []form.SlotChange) {
	fmt.Fprintln(w, "\n========== Changed Columns ==========")
	fmt.Fprintln(w)

	if len(changes) == 0 {
		fmt.Fprintln(w, "No changes")
		fmt.Fprintln(w)
		return
	}

	for i, change := range changes {
		renamed := ""
		if change.Renamed {
			renamed = " (renamed)"
		}
		fmt.Fprintf(w, "%d. [%d] %s%s: %s\n", i+1, change.Index, change.Name, renamed, strings.Join(change.Fields, ", "))
	}

	fmt.Fprintf(w, "\nTotal: %d changed columns\n\n", len(changes))
}

// PrintLockedColumns 打印因外键无法重命名的列及其引用方
func PrintLockedColumns(w io.Writer, slots []models.ColumnSlot) {
	var locked []models.ColumnSlot
	for _, slot := range slots {
		if slot.IsRenameLocked {
			locked = append(locked, slot)
		}
	}
	if len(locked) == 0 {
		return
	}

	fmt.Fprintln(w, "========== Rename Locked Columns ==========")
	for _, slot := range locked {
		reason := "foreign key"
		if slot.Status != nil && len(slot.Status.References) > 0 {
			reason = "referenced by " + strings.Join(slot.Status.References, ", ")
		}
		fmt.Fprintf(w, "✗ %s: %s\n", slot.Name, reason)
	}
	fmt.Fprintln(w)
}

// WriteYAML 以 YAML 输出完整的行定义
func WriteYAML(w io.Writer, slots []models.ColumnSlot) error {
	data, err := yaml.Marshal(struct {
		Columns []models.ColumnSlot `yaml:"columns"`
	}{Columns: slots})
	if err != nil {
		return fmt.Errorf("failed to encode columns: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// defaultCell 表格中默认值一栏的显示内容
func defaultCell(slot models.ColumnSlot) string {
	switch slot.DefaultKind {
	case models.DefaultUserDefined:
		return "'" + slot.DisplayDefault + "'"
	case models.DefaultNone:
		return "-"
	default:
		return slot.DefaultKind.String()
	}
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
