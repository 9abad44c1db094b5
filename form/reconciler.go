// Package form 为“创建表 / 添加列 / 修改列”表单构建每一行的列定义
package form

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/yuhuo/column-form/colspec"
	"github.com/yuhuo/column-form/logger"
	"github.com/yuhuo/column-form/models"
	"github.com/yuhuo/column-form/relation"
)

// SchemaMetadataProvider 读取表结构元数据
type SchemaMetadataProvider interface {
	GetColumnsMeta(ctx context.Context, db, table string) ([]models.ColumnMeta, error)
	GetGenerationExpression(ctx context.Context, db, table, column string) (string, error)
}

// ForeignKeyChecker 判断列能否被重命名
type ForeignKeyChecker interface {
	CheckChildForeignReferences(ctx context.Context, db, table, column string, foreignKeys []models.ForeignKey, childRefs models.ChildReferences) (models.ColumnStatus, error)
}

// ReconcileInput 一次表单渲染所需的全部输入
type ReconcileInput struct {
	DB              string
	Table           string
	Action          models.Action
	SlotCount       int
	Regenerate      bool
	Submitted       SubmittedFields
	Live            []models.ColumnMeta
	ForeignKeys     []models.ForeignKey
	ChildReferences models.ChildReferences
	ServerVersion   int
}

// NewReconcileInput 创建默认输入：新建表、不重建、没有提交值
func NewReconcileInput(db, table string) *ReconcileInput {
	return &ReconcileInput{
		DB:              db,
		Table:           table,
		Action:          models.ActionCreateTable,
		Submitted:       SubmittedFields{},
		ChildReferences: models.ChildReferences{},
	}
}

// Reconciler 合并表单提交值、数据库元数据和默认值
type Reconciler struct {
	schema  SchemaMetadataProvider
	checker ForeignKeyChecker
	logger  *logger.Logger
}

// NewReconciler 创建 Reconciler
func NewReconciler(schema SchemaMetadataProvider, checker ForeignKeyChecker, log *logger.Logger) *Reconciler {
	if log == nil {
		log = logger.NewWriterLogger("ERROR", io.Discard)
	}
	return &Reconciler{
		schema:  schema,
		checker: checker,
		logger:  log,
	}
}

// origin 某一行对应的已有列
type origin struct {
	slot   *models.ColumnSlot
	name   string
	typ    string
	exists bool
}

// Reconcile 为 SlotCount 行各生成一个 ColumnSlot，顺序与行号一致
func (r *Reconciler) Reconcile(ctx context.Context, in *ReconcileInput) ([]models.ColumnSlot, error) {
	count := in.SlotCount
	if count < 0 {
		count = 0
	}

	log := r.logger.With("render=" + uuid.NewString())
	log.Debug(fmt.Sprintf("Reconciling %d slots for %s.%s (regenerate=%v, live=%d, version=%d)",
		count, in.DB, in.Table, in.Regenerate, len(in.Live), in.ServerVersion))

	slots := make([]models.ColumnSlot, 0, count)
	for i := 0; i < count; i++ {
		slot, err := r.reconcileSlot(ctx, in, i)
		if err != nil {
			log.Error(fmt.Sprintf("Failed to build slot %d: %v", i, err))
			return nil, err
		}
		slots = append(slots, slot)
	}

	log.Debug(fmt.Sprintf("Reconciled %d slots", len(slots)))
	return slots, nil
}

// reconcileSlot 构建第 i 行
func (r *Reconciler) reconcileSlot(ctx context.Context, in *ReconcileInput, i int) (models.ColumnSlot, error) {
	var live *models.ColumnMeta
	if i < len(in.Live) {
		live = &in.Live[i]
	}

	orig, err := r.resolveOrigin(ctx, in, live, i)
	if err != nil {
		return models.ColumnSlot{}, err
	}

	var slot models.ColumnSlot
	switch {
	case in.Regenerate:
		slot = fromSubmission(in.Submitted, i)
	case orig.slot != nil:
		slot = *orig.slot
	default:
		// 新列，保持空白
		slot = models.ColumnSlot{Index: i}
	}
	slot.Exists = orig.exists

	// 重命名锁定只针对已有表上的已有列
	if in.Action.EditsExistingTable() && relation.NeedsChildReferences(in.ServerVersion) && orig.exists {
		status, err := r.checker.CheckChildForeignReferences(ctx, in.DB, in.Table, orig.name, in.ForeignKeys, in.ChildReferences)
		if err != nil {
			return models.ColumnSlot{}, fmt.Errorf("failed to check foreign references for column %s: %w", orig.name, err)
		}
		slot.Status = &status
		if !status.IsEditable {
			slot.IsRenameLocked = true
			slot.Name = orig.name
			slot.TypeNormalized = orig.typ
		}
	}

	if in.Action.IsBackup() {
		slot.Original = originalColumn(orig, in.Submitted, i)
	}

	return slot, nil
}

// resolveOrigin 优先使用数据库中的列，其次使用表单回传的 field_orig
func (r *Reconciler) resolveOrigin(ctx context.Context, in *ReconcileInput, live *models.ColumnMeta, i int) (origin, error) {
	if live != nil {
		slot, err := r.fromLive(ctx, in, live, i)
		if err != nil {
			return origin{}, err
		}
		return origin{slot: &slot, name: slot.Name, typ: slot.TypeNormalized, exists: true}, nil
	}

	if in.Regenerate {
		if name, ok := in.Submitted.Lookup(FieldOrig, i); ok && name != "" {
			return origin{
				name:   name,
				typ:    strings.ToUpper(in.Submitted.Get(FieldTypeOrig, i, "")),
				exists: true,
			}, nil
		}
	}

	return origin{}, nil
}

// fromSubmission 由表单回传值构建一行，缺失的字段取空值
func fromSubmission(fields SubmittedFields, i int) models.ColumnSlot {
	slot := models.ColumnSlot{
		Index:                i,
		Name:                 fields.Get(FieldName, i, ""),
		TypeRaw:              fields.Get(FieldType, i, ""),
		Collation:            fields.Get(FieldCollation, i, ""),
		Null:                 fields.Get(FieldNull, i, ""),
		DefaultKind:          models.ParseDefaultKind(fields.Get(FieldDefaultType, i, "NONE")),
		Extra:                fields.Get(FieldExtra, i, ""),
		Virtuality:           fields.Get(FieldVirtuality, i, ""),
		GenerationExpression: fields.Get(FieldExpression, i, ""),
		Key:                  decodeKey(fields.Get(FieldKey, i, ""), i),
		Comment:              fields.Get(FieldComments, i, ""),
		Length:               fields.Get(FieldLength, i, ""),
		SubmittedAttribute:   fields.Get(FieldAttribute, i, ""),
		MimeType:             fields.Get(FieldMimeType, i, ""),
		Transformation:       fields.Get(FieldTransformation, i, ""),
		TransformationOpts:   fields.Get(FieldTransformationOptions, i, ""),
	}

	switch slot.DefaultKind {
	case models.DefaultUserDefined:
		value := fields.Get(FieldDefaultValue, i, "")
		slot.DefaultValue = &value
		slot.DisplayDefault = value
	case models.DefaultNull, models.DefaultCurrentTimestamp:
		kind := slot.DefaultKind.String()
		slot.DefaultValue = &kind
	}

	finishSlot(&slot)
	return slot
}

// decodeKey 解析 "<kind>_<index>"，只有后缀与行号一致时才生效
func decodeKey(value string, i int) models.KeyKind {
	parts := strings.SplitN(value, "_", 2)
	if len(parts) != 2 {
		return models.KeyNone
	}
	n, err := strconv.Atoi(parts[1])
	if err != nil || n != i {
		return models.KeyNone
	}
	return models.ParseFormKeyKind(parts[0])
}

// fromLive 由数据库中的列元数据构建一行
func (r *Reconciler) fromLive(ctx context.Context, in *ReconcileInput, live *models.ColumnMeta, i int) (models.ColumnSlot, error) {
	slot := models.ColumnSlot{
		Index:     i,
		Name:      live.Field,
		TypeRaw:   live.Type,
		Collation: live.CollationName(),
		Null:      live.Null,
		Extra:     live.Extra,
		Key:       models.ParseKeyKind(live.Key),
		Comment:   live.Comment,
	}

	if colspec.IsGeneratedExtra(live.Extra) {
		slot.Virtuality = colspec.VirtualityFromExtra(live.Extra)
		// 重建时表达式取自提交值，只有首次渲染才需要查询
		if !in.Regenerate {
			expr, err := r.schema.GetGenerationExpression(ctx, in.DB, in.Table, live.Field)
			if err != nil {
				return models.ColumnSlot{}, fmt.Errorf("failed to get generation expression for column %s: %w", live.Field, err)
			}
			slot.GenerationExpression = expr
		}
	}

	slot.DefaultKind, slot.DefaultValue = ClassifyDefault(live.Default, live.IsNullable())
	if slot.DefaultKind == models.DefaultUserDefined {
		slot.DisplayDefault = *slot.DefaultValue
	}

	finishSlot(&slot)

	// 数据库里的 BINARY/VARBINARY 默认值是原始字节
	if slot.TypeNormalized == "BINARY" || slot.TypeNormalized == "VARBINARY" {
		slot.DisplayDefault = colspec.HexDefaultValue(slot.DisplayDefault)
	}

	return slot, nil
}

// ClassifyDefault 根据数据库返回的 (默认值, 是否可空) 判断默认值种类
func ClassifyDefault(def *string, nullable bool) (models.DefaultKind, *string) {
	if def == nil {
		if nullable {
			return models.DefaultNull, nil
		}
		return models.DefaultNone, nil
	}

	value := *def
	switch value {
	case "CURRENT_TIMESTAMP", "current_timestamp()":
		return models.DefaultCurrentTimestamp, &value
	default:
		return models.DefaultUserDefined, &value
	}
}

// finishSlot 拆分列类型、规范化类型名并处理 BIT 默认值
func finishSlot(slot *models.ColumnSlot) {
	if slot.TypeRaw == "" {
		slot.TypeNormalized = ""
		return
	}

	slot.Spec = colspec.Extract(slot.TypeRaw)
	if slot.Spec.Type == "bit" && slot.DefaultValue != nil {
		converted := colspec.ConvertBitDefaultValue(*slot.DefaultValue)
		slot.DefaultValue = &converted
	}
	if slot.Length == "" {
		slot.Length = slot.Spec.SpecInBrackets
	}
	slot.Attribute = slot.Spec.Attribute
	slot.TypeNormalized = colspec.NormalizeType(slot.Spec.Type)

	if slot.TypeNormalized == "BIT" {
		slot.DisplayDefault = colspec.ConvertBitDefaultValue(slot.DisplayDefault)
	}
}

// originalColumn 修改已有列时需要回传的旧属性
func originalColumn(orig origin, fields SubmittedFields, i int) *models.OriginalColumn {
	if orig.slot != nil {
		s := orig.slot
		o := &models.OriginalColumn{
			Name:        s.Name,
			Type:        s.TypeNormalized,
			Length:      s.Length,
			DefaultKind: s.DefaultKind,
			Collation:   s.Collation,
			Attribute:   strings.TrimSpace(s.Attribute),
			Null:        s.Null,
			Extra:       s.Extra,
			Comment:     s.Comment,
			Virtuality:  s.Virtuality,
			Expression:  s.GenerationExpression,
		}
		if s.DefaultValue != nil {
			o.Default = *s.DefaultValue
		}
		if o.Expression == "" {
			o.Expression = fields.Get(FieldExpressionOrig, i, "")
		}
		return o
	}

	if !orig.exists {
		return &models.OriginalColumn{}
	}

	return &models.OriginalColumn{
		Name:        orig.name,
		Type:        orig.typ,
		Length:      fields.Get(FieldLengthOrig, i, ""),
		Default:     fields.Get(FieldDefaultValueOrig, i, ""),
		DefaultKind: models.ParseDefaultKind(fields.Get(FieldDefaultTypeOrig, i, "NONE")),
		Collation:   fields.Get(FieldCollationOrig, i, ""),
		Attribute:   strings.TrimSpace(fields.Get(FieldAttributeOrig, i, "")),
		Null:        fields.Get(FieldNullOrig, i, ""),
		Extra:       fields.Get(FieldExtraOrig, i, ""),
		Comment:     fields.Get(FieldCommentsOrig, i, ""),
		Virtuality:  fields.Get(FieldVirtualityOrig, i, ""),
		Expression:  fields.Get(FieldExpressionOrig, i, ""),
	}
}
