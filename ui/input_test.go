package ui

import (
	"strings"
	"testing"

	"github.com/yuhuo/column-form/form"
)

func TestReadSubmittedFields(t *testing.T) {
	input := `
# resubmitted form
field_name[0]=id
field_type[0]=INT
field_default_value[1]=a=b
field_name%5B1%5D=code&field_type%5B1%5D=VARCHAR
ignored=1
`
	fields, err := ReadSubmittedFields(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadSubmittedFields failed: %v", err)
	}

	checks := []struct {
		kind  string
		index int
		want  string
	}{
		{form.FieldName, 0, "id"},
		{form.FieldType, 0, "INT"},
		{form.FieldDefaultValue, 1, "a=b"},
		{form.FieldName, 1, "code"},
		{form.FieldType, 1, "VARCHAR"},
	}
	for _, c := range checks {
		if got, ok := fields.Lookup(c.kind, c.index); !ok || got != c.want {
			t.Errorf("Expected %s[%d]=%q, got %q", c.kind, c.index, c.want, got)
		}
	}
	if _, ok := fields["ignored"]; ok {
		t.Errorf("Expected non-field keys to be ignored")
	}
}

func TestReadSubmittedFieldsInvalidLine(t *testing.T) {
	if _, err := ReadSubmittedFields(strings.NewReader("field_name[0]\n")); err == nil {
		t.Errorf("Expected error for line without '='")
	}
}

func TestReadSubmittedFieldsKeepsAmpersandValues(t *testing.T) {
	input := "field_expression[0]=`a` & `b`\n" +
		"field_default_value[0]=R&D\n" +
		"field_comments[0]=x%5By%5D&z\n"

	fields, err := ReadSubmittedFields(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadSubmittedFields failed: %v", err)
	}
	if got := fields.Get(form.FieldExpression, 0, ""); got != "`a` & `b`" {
		t.Errorf("Expected expression to be kept verbatim, got %q", got)
	}
	if got := fields.Get(form.FieldDefaultValue, 0, ""); got != "R&D" {
		t.Errorf("Expected default R&D, got %q", got)
	}
	if got := fields.Get(form.FieldComments, 0, ""); got != "x%5By%5D&z" {
		t.Errorf("Expected comment to be kept verbatim, got %q", got)
	}
}

func TestReadSubmittedFieldsLongLine(t *testing.T) {
	expr := strings.Repeat("`a` + ", 20000) + "1"
	fields, err := ReadSubmittedFields(strings.NewReader("field_expression[0]=" + expr + "\n"))
	if err != nil {
		t.Fatalf("ReadSubmittedFields failed on long line: %v", err)
	}
	if got := fields.Get(form.FieldExpression, 0, ""); got != expr {
		t.Errorf("Expected %d byte expression, got %d bytes", len(expr), len(got))
	}
}
