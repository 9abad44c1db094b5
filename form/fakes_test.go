package form

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/yuhuo/column-form/logger"
	"github.com/yuhuo/column-form/models"
	"github.com/yuhuo/column-form/relation"
)

var errConnectionLost = errors.New("connection lost")

// fakeSource 内存中的元数据源
type fakeSource struct {
	mu              sync.Mutex
	version         int
	columns         []models.ColumnMeta
	expressions     map[string]string
	foreignKeys     []models.ForeignKey
	childRefs       models.ChildReferences
	columnsErr      error
	expressionErr   error
	childRefsCalls  int
	expressionCalls int
}

func (f *fakeSource) GetColumnsMeta(ctx context.Context, db, table string) ([]models.ColumnMeta, error) {
	if f.columnsErr != nil {
		return nil, f.columnsErr
	}
	return f.columns, nil
}

func (f *fakeSource) GetGenerationExpression(ctx context.Context, db, table, column string) (string, error) {
	f.mu.Lock()
	f.expressionCalls++
	f.mu.Unlock()
	if f.expressionErr != nil {
		return "", f.expressionErr
	}
	return f.expressions[column], nil
}

func (f *fakeSource) GetForeignKeys(ctx context.Context, db, table string) ([]models.ForeignKey, error) {
	return f.foreignKeys, nil
}

func (f *fakeSource) GetChildReferences(ctx context.Context, db, table string) (models.ChildReferences, error) {
	f.mu.Lock()
	f.childRefsCalls++
	f.mu.Unlock()
	return f.childRefs, nil
}

func (f *fakeSource) GetServerVersion(ctx context.Context) (int, error) {
	return f.version, nil
}

// lockingChecker 对指定列返回不可编辑
type lockingChecker struct {
	locked map[string]bool
	calls  []string
}

func (c *lockingChecker) CheckChildForeignReferences(ctx context.Context, db, table, column string, foreignKeys []models.ForeignKey, childRefs models.ChildReferences) (models.ColumnStatus, error) {
	c.calls = append(c.calls, column)
	if c.locked[column] {
		return models.ColumnStatus{IsForeignKey: true}, nil
	}
	return models.ColumnStatus{IsEditable: true}, nil
}

func testLogger() *logger.Logger {
	return logger.NewWriterLogger("ERROR", io.Discard)
}

func newTestReconciler(source *fakeSource) *Reconciler {
	return NewReconciler(source, relation.NewChecker(), testLogger())
}

func strPtr(s string) *string {
	return &s
}
