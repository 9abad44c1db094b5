package form

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/yuhuo/column-form/logger"
	"github.com/yuhuo/column-form/models"
	"github.com/yuhuo/column-form/relation"
)

// MetadataSource 加载表单所需的全部元数据
type MetadataSource interface {
	SchemaMetadataProvider
	GetForeignKeys(ctx context.Context, db, table string) ([]models.ForeignKey, error)
	GetChildReferences(ctx context.Context, db, table string) (models.ChildReferences, error)
	GetServerVersion(ctx context.Context) (int, error)
}

// LoadRequest 表单请求参数
type LoadRequest struct {
	DB         string
	Table      string
	Action     models.Action
	SlotCount  int
	Regenerate bool
	Submitted  SubmittedFields
	Selected   []string // 修改列时选中的列名，为空表示全部
}

// Loader 从数据库读取元数据并组装 ReconcileInput
type Loader struct {
	source MetadataSource
	logger *logger.Logger
}

// NewLoader 创建 Loader
func NewLoader(source MetadataSource, logger *logger.Logger) *Loader {
	return &Loader{
		source: source,
		logger: logger,
	}
}

// Load 读取服务器版本、列、外键和子表引用
func (l *Loader) Load(ctx context.Context, req LoadRequest) (*ReconcileInput, error) {
	in := NewReconcileInput(req.DB, req.Table)
	in.Action = req.Action
	in.SlotCount = req.SlotCount
	in.Regenerate = req.Regenerate
	if req.Submitted != nil {
		in.Submitted = req.Submitted
	}

	version, err := l.source.GetServerVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get server version: %w", err)
	}
	in.ServerVersion = version

	// 新建表时没有任何元数据
	if !req.Action.EditsExistingTable() {
		return in, nil
	}

	var (
		columns     []models.ColumnMeta
		foreignKeys []models.ForeignKey
		childRefs   models.ChildReferences
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		columns, err = l.source.GetColumnsMeta(gctx, req.DB, req.Table)
		return err
	})
	g.Go(func() error {
		var err error
		foreignKeys, err = l.source.GetForeignKeys(gctx, req.DB, req.Table)
		return err
	})
	// 5.6.6 之后带外键的列可以直接重命名，不需要子表引用
	if relation.NeedsChildReferences(version) {
		g.Go(func() error {
			var err error
			childRefs, err = l.source.GetChildReferences(gctx, req.DB, req.Table)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load metadata of %s.%s: %w", req.DB, req.Table, err)
	}

	if req.Action.IsBackup() {
		in.Live = selectColumns(columns, req.Selected)
	}
	in.ForeignKeys = foreignKeys
	if childRefs != nil {
		in.ChildReferences = childRefs
	}

	l.logger.Info(fmt.Sprintf("Loaded %s.%s: %d columns, %d foreign keys, server version %d",
		req.DB, req.Table, len(in.Live), len(foreignKeys), version))

	return in, nil
}

// selectColumns 按选中顺序过滤列，未选中任何列时返回全部
func selectColumns(columns []models.ColumnMeta, selected []string) []models.ColumnMeta {
	if len(selected) == 0 {
		return columns
	}

	byName := make(map[string]models.ColumnMeta, len(columns))
	for _, col := range columns {
		byName[col.Field] = col
	}

	var result []models.ColumnMeta
	for _, name := range selected {
		if col, ok := byName[name]; ok {
			result = append(result, col)
		}
	}
	return result
}
