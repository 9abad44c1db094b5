package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/go-sql-driver/mysql"

	"github.com/yuhuo/column-form/models"
)

// fakeQuerier 按目标类型返回预设结果
type fakeQuerier struct {
	version    string
	expression sql.NullString
	stamp      sql.NullString
	createSQL  string
	columns    []models.ColumnMeta
	err        error
	queries    []string
}

func (f *fakeQuerier) Select(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return f.err
	}
	switch d := dest.(type) {
	case *[]models.ColumnMeta:
		*d = f.columns
	default:
		return fmt.Errorf("unexpected select destination %T", dest)
	}
	return nil
}

func (f *fakeQuerier) Get(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return f.err
	}
	switch d := dest.(type) {
	case *string:
		*d = f.version
	case *sql.NullString:
		if strings.Contains(query, "INFORMATION_SCHEMA.TABLES") {
			*d = f.stamp
		} else {
			*d = f.expression
		}
	case *createTableRow:
		d.CreateTable = f.createSQL
	default:
		return fmt.Errorf("unexpected get destination %T", dest)
	}
	return nil
}

func (f *fakeQuerier) count(prefix string) int {
	n := 0
	for _, q := range f.queries {
		if strings.HasPrefix(strings.TrimSpace(q), prefix) {
			n++
		}
	}
	return n
}

func TestParseServerVersion(t *testing.T) {
	tests := []struct {
		raw        string
		version    int
		serverType ServerType
	}{
		{"8.0.36", 80036, ServerMySQL},
		{"5.5.62-log", 50562, ServerMySQL},
		{"5.6.6", 50606, ServerMySQL},
		{"10.6.12-MariaDB-1:10.6.12+maria~ubu2004", 100612, ServerMariaDB},
		{"5.7", 50700, ServerMySQL},
	}

	for _, tt := range tests {
		version, serverType, err := ParseServerVersion(tt.raw)
		if err != nil {
			t.Errorf("ParseServerVersion(%q) failed: %v", tt.raw, err)
			continue
		}
		if version != tt.version || serverType != tt.serverType {
			t.Errorf("ParseServerVersion(%q) = %d %s, expected %d %s", tt.raw, version, serverType, tt.version, tt.serverType)
		}
	}

	if _, _, err := ParseServerVersion("unknown"); err == nil {
		t.Errorf("Expected error for unrecognized version")
	}
}

func TestServerVersionCached(t *testing.T) {
	q := &fakeQuerier{version: "8.0.36"}
	qh := &QueryHelper{conn: q}

	for i := 0; i < 3; i++ {
		v, err := qh.GetServerVersion(context.Background())
		if err != nil || v != 80036 {
			t.Fatalf("Expected 80036, got %d (%v)", v, err)
		}
	}
	serverType, _ := qh.GetServerType(context.Background())
	if serverType != ServerMySQL {
		t.Errorf("Expected MySQL, got %s", serverType)
	}
	if n := q.count("SELECT VERSION()"); n != 1 {
		t.Errorf("Expected version to be queried once, got %d", n)
	}
}

func TestGetColumnsMeta(t *testing.T) {
	q := &fakeQuerier{columns: []models.ColumnMeta{{Field: "id", Type: "int(11)"}}}
	qh := &QueryHelper{conn: q}

	columns, err := qh.GetColumnsMeta(context.Background(), "shop", "or`ders")
	if err != nil {
		t.Fatalf("GetColumnsMeta failed: %v", err)
	}
	if len(columns) != 1 || columns[0].Field != "id" {
		t.Errorf("Unexpected columns %+v", columns)
	}
	if q.queries[0] != "SHOW FULL COLUMNS FROM `shop`.`or``ders`" {
		t.Errorf("Unexpected query %q", q.queries[0])
	}
}

func TestGetColumnsMetaTableNotFound(t *testing.T) {
	q := &fakeQuerier{err: &mysql.MySQLError{Number: 1146, Message: "Table 'shop.nope' doesn't exist"}}
	qh := &QueryHelper{conn: q}

	_, err := qh.GetColumnsMeta(context.Background(), "shop", "nope")
	if err == nil {
		t.Fatal("Expected error for missing table")
	}
	if !strings.Contains(err.Error(), "failed to query columns") {
		t.Errorf("Unexpected error %v", err)
	}
	if !errors.Is(err, ErrTableNotFound) {
		t.Errorf("Expected ErrTableNotFound, got %v", err)
	}
}

func TestGetGenerationExpression(t *testing.T) {
	t.Run("InformationSchema", func(t *testing.T) {
		q := &fakeQuerier{
			version:    "8.0.36",
			expression: sql.NullString{String: "(`price` * `qty`)", Valid: true},
		}
		qh := &QueryHelper{conn: q}

		expr, err := qh.GetGenerationExpression(context.Background(), "shop", "orders", "total")
		if err != nil {
			t.Fatalf("GetGenerationExpression failed: %v", err)
		}
		if expr != "(`price` * `qty`)" {
			t.Errorf("Unexpected expression %q", expr)
		}
		if q.count("SHOW CREATE TABLE") != 0 {
			t.Errorf("Expected no SHOW CREATE TABLE on MySQL 8")
		}
	})

	t.Run("MariaDBCreateTable", func(t *testing.T) {
		q := &fakeQuerier{version: "10.6.12-MariaDB", createSQL: mariaCreateTable}
		qh := &QueryHelper{conn: q}

		expr, err := qh.GetGenerationExpression(context.Background(), "shop", "orders", "Total")
		if err != nil {
			t.Fatalf("GetGenerationExpression failed: %v", err)
		}
		if expr != "`id` * 2" {
			t.Errorf("Unexpected expression %q", expr)
		}
		if q.count("SHOW CREATE TABLE") != 1 {
			t.Errorf("Expected SHOW CREATE TABLE on MariaDB, queries: %v", q.queries)
		}
	})

	t.Run("OldMySQL", func(t *testing.T) {
		q := &fakeQuerier{version: "5.7.5", createSQL: mysqlCreateTable}
		qh := &QueryHelper{conn: q}

		expr, err := qh.GetGenerationExpression(context.Background(), "shop", "orders", "total")
		if err != nil || expr != "(`price` * `qty`)" {
			t.Errorf("Unexpected result %q (%v)", expr, err)
		}
	})
}

func TestGroupForeignKeys(t *testing.T) {
	rows := []foreignKeyRow{
		{Constraint: "fk_customer", Column: "customer_id", RefSchema: sql.NullString{String: "shop", Valid: true}, RefTable: sql.NullString{String: "customers", Valid: true}, RefColumn: sql.NullString{String: "id", Valid: true}, OnDelete: "CASCADE", OnUpdate: "RESTRICT"},
		{Constraint: "fk_customer", Column: "region", RefSchema: sql.NullString{String: "shop", Valid: true}, RefTable: sql.NullString{String: "customers", Valid: true}, RefColumn: sql.NullString{String: "region", Valid: true}, OnDelete: "CASCADE", OnUpdate: "RESTRICT"},
		{Constraint: "fk_coupon", Column: "coupon_id", RefSchema: sql.NullString{String: "promo", Valid: true}, RefTable: sql.NullString{String: "coupons", Valid: true}, RefColumn: sql.NullString{String: "id", Valid: true}, OnDelete: "SET NULL", OnUpdate: "NO ACTION"},
	}

	fks := groupForeignKeys(rows)
	if len(fks) != 2 {
		t.Fatalf("Expected 2 foreign keys, got %d", len(fks))
	}
	if fks[0].Constraint != "fk_customer" || strings.Join(fks[0].Columns, ",") != "customer_id,region" {
		t.Errorf("Unexpected first foreign key %+v", fks[0])
	}
	if strings.Join(fks[0].RefColumns, ",") != "id,region" || fks[0].OnDelete != "CASCADE" {
		t.Errorf("Unexpected first foreign key %+v", fks[0])
	}
	if fks[1].RefSchema != "promo" || fks[1].RefTable != "coupons" {
		t.Errorf("Unexpected second foreign key %+v", fks[1])
	}
}

func TestGroupChildReferences(t *testing.T) {
	refs := []models.ChildReference{
		{ColumnName: "order_id", TableName: "order_items", TableSchema: "shop", ReferencedColumnName: "id"},
		{ColumnName: "order_id", TableName: "payments", TableSchema: "billing", ReferencedColumnName: "id"},
		{ColumnName: "order_code", TableName: "shipments", TableSchema: "shop", ReferencedColumnName: "code"},
	}

	grouped := groupChildReferences(refs)
	if len(grouped["id"]) != 2 || len(grouped["code"]) != 1 {
		t.Errorf("Unexpected grouping %+v", grouped)
	}
	if grouped["id"][1].TableSchema != "billing" {
		t.Errorf("Expected order to be preserved, got %+v", grouped["id"])
	}
}

func TestGetTableStamp(t *testing.T) {
	q := &fakeQuerier{stamp: sql.NullString{String: "2026-10-01 10:00:00|2026-10-02 09:30:00", Valid: true}}
	qh := &QueryHelper{conn: q}

	stamp, err := qh.GetTableStamp(context.Background(), "shop", "orders")
	if err != nil {
		t.Fatalf("GetTableStamp failed: %v", err)
	}
	if stamp != "2026-10-01 10:00:00|2026-10-02 09:30:00" {
		t.Errorf("Unexpected stamp %q", stamp)
	}

	q.err = sql.ErrNoRows
	stamp, err = qh.GetTableStamp(context.Background(), "shop", "nope")
	if err != nil || stamp != "" {
		t.Errorf("Expected empty stamp for missing table, got %q (%v)", stamp, err)
	}
}
