package relation

import (
	"context"
	"testing"

	"github.com/yuhuo/column-form/models"
)

func sampleForeignKeys() []models.ForeignKey {
	return []models.ForeignKey{
		{
			Constraint: "fk_order_customer",
			Columns:    []string{"customer_id", "region"},
			RefTable:   "customers",
			RefColumns: []string{"id", "region"},
			OnDelete:   "CASCADE",
			OnUpdate:   "RESTRICT",
		},
	}
}

func TestSearchColumnInForeigners(t *testing.T) {
	f := SearchColumnInForeigners(sampleForeignKeys(), "region", "shop")
	if f == nil {
		t.Fatal("Expected foreigner for region")
	}
	if f.ForeignField != "region" || f.ForeignTable != "customers" {
		t.Errorf("Unexpected foreigner %+v", f)
	}
	if f.ForeignDB != "shop" {
		t.Errorf("Expected foreign db to default to 'shop', got '%s'", f.ForeignDB)
	}

	if SearchColumnInForeigners(sampleForeignKeys(), "total", "shop") != nil {
		t.Errorf("Expected no foreigner for total")
	}
}

func TestCheckChildForeignReferences(t *testing.T) {
	childRefs := models.ChildReferences{
		"id": {
			{ColumnName: "order_id", TableName: "order_items", TableSchema: "shop", ReferencedColumnName: "id"},
		},
	}

	t.Run("Referenced", func(t *testing.T) {
		status := CheckChildForeignReferences("shop", "orders", "id", nil, childRefs)
		if status.IsEditable {
			t.Errorf("Expected referenced column to be locked")
		}
		if !status.IsReferenced || status.IsForeignKey {
			t.Errorf("Unexpected status %+v", status)
		}
		if len(status.References) != 1 || status.References[0] != "`shop`.`order_items`" {
			t.Errorf("Unexpected references %v", status.References)
		}
	})

	t.Run("ForeignKey", func(t *testing.T) {
		status := CheckChildForeignReferences("shop", "orders", "customer_id", sampleForeignKeys(), childRefs)
		if status.IsEditable || !status.IsForeignKey || status.IsReferenced {
			t.Errorf("Unexpected status %+v", status)
		}
	})

	t.Run("Free", func(t *testing.T) {
		status := CheckChildForeignReferences("shop", "orders", "total", sampleForeignKeys(), childRefs)
		if !status.IsEditable {
			t.Errorf("Expected unrelated column to be editable")
		}
	})
}

func TestCheckerHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewChecker().CheckChildForeignReferences(ctx, "shop", "orders", "id", nil, nil); err == nil {
		t.Errorf("Expected error for cancelled context")
	}
}

func TestNeedsChildReferences(t *testing.T) {
	if !NeedsChildReferences(50500) {
		t.Errorf("Expected 5.5 to need child references")
	}
	if NeedsChildReferences(50606) || NeedsChildReferences(80036) {
		t.Errorf("Expected 5.6.6+ to skip child references")
	}
}

func TestBackquote(t *testing.T) {
	if got := Backquote("we`ird"); got != "`we``ird`" {
		t.Errorf("Unexpected quoting %q", got)
	}
}
