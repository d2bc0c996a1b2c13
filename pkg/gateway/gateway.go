package gateway

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"

	"fieldops/pkg/scope"
	"fieldops/pkg/tenantctx"

	"gorm.io/gorm"
)

// ErrNotFound 记录不存在，或存在但归属其他租户
// 两种情况对外必须不可区分，防止跨租户探测记录存在性
var ErrNotFound = errors.New("记录不存在")

// Gateway 租户作用域数据访问网关
// 租户实体的所有读写唯一入口：每个操作自动注入租户谓词，
// 租户身份从请求上下文读取，不存在全局"当前租户"变量
type Gateway struct {
	db       *gorm.DB
	registry *scope.Registry
}

// New 创建网关
func New(db *gorm.DB, registry *scope.Registry) *Gateway {
	return &Gateway{db: db, registry: registry}
}

// Registry 返回归属注册表
func (g *Gateway) Registry() *scope.Registry {
	return g.registry
}

// ========== 提升作用域 ==========

type overrideKey struct{}

// WithTenant 按调用指定目标租户（仅提升作用域上下文有效）
// 提升只给"显式指定租户"的能力，指定后仍走完整的归属校验
func WithTenant(ctx context.Context, tenantID uint) context.Context {
	return context.WithValue(ctx, overrideKey{}, tenantID)
}

// tenantFor 解析本次操作生效的租户
func (g *Gateway) tenantFor(ctx context.Context) (uint, error) {
	cc, err := tenantctx.Current(ctx)
	if err != nil {
		return 0, err
	}
	if ov, ok := ctx.Value(overrideKey{}).(uint); ok {
		if !cc.Elevated {
			// 普通调用方不能指名租户，按归属不一致处理
			return 0, fmt.Errorf("非提升上下文指定目标租户: %w", scope.ErrTenantMismatch)
		}
		if ov == 0 {
			return 0, tenantctx.ErrNoTenantBound
		}
		return ov, nil
	}
	if cc.TenantID == 0 {
		// 提升上下文也必须显式指名租户，不存在"全部租户"的隐式作用域
		return 0, tenantctx.ErrNoTenantBound
	}
	return cc.TenantID, nil
}

// scoped 构造带租户谓词的查询
func (g *Gateway) scoped(ctx context.Context, model any) (*gorm.DB, error) {
	tenantID, err := g.tenantFor(ctx)
	if err != nil {
		return nil, err
	}
	return g.registry.ScopedQuery(g.db.WithContext(ctx).Model(model), model, tenantID)
}

// ========== 四种操作 ==========

// Find 按ID查找，租户谓词和ID谓词一起下推
// 记录归属其他租户时返回 ErrNotFound，与不存在不可区分
func (g *Gateway) Find(ctx context.Context, dest any, id uint) error {
	q, err := g.scoped(ctx, dest)
	if err != nil {
		return err
	}
	if err := q.Where("id = ?", id).First(dest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// List 列表查询，dest为 *[]T 或 *[]*T
// 调用方条件全部在租户谓词之下AND，无法放宽或移除租户边界
func (g *Gateway) List(ctx context.Context, dest any, opts ...QueryOption) error {
	model, err := sliceElem(dest)
	if err != nil {
		return err
	}
	q, err := g.scoped(ctx, model)
	if err != nil {
		return err
	}
	for _, opt := range opts {
		q = opt(q)
	}
	return q.Find(dest).Error
}

// Count 统计当前租户内满足条件的记录数
func (g *Gateway) Count(ctx context.Context, model any, opts ...QueryOption) (int64, error) {
	q, err := g.scoped(ctx, model)
	if err != nil {
		return 0, err
	}
	for _, opt := range opts {
		q = opt(q)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// Create 创建记录
// 直接列归属：零值盖章为调用方租户，冲突值拒绝；父链归属：父记录必须同租户
func (g *Gateway) Create(ctx context.Context, record any) error {
	tenantID, err := g.tenantFor(ctx)
	if err != nil {
		return err
	}
	db := g.db.WithContext(ctx)
	if err := g.registry.ValidateCreate(db, record, tenantID); err != nil {
		return err
	}
	return db.Create(record).Error
}

// Update 按ID更新，先做作用域内查找，越界ID等同不存在，更新不会触达
// 归属字段创建后不可变：补丁试图改租户列一律拒绝
func (g *Gateway) Update(ctx context.Context, record any, id uint, patch map[string]any) error {
	tenantID, err := g.tenantFor(ctx)
	if err != nil {
		return err
	}
	if err := g.Find(ctx, record, id); err != nil {
		return err
	}
	if err := g.vetPatch(ctx, record, patch, tenantID); err != nil {
		return err
	}
	return g.db.WithContext(ctx).Model(record).Updates(patch).Error
}

// Delete 按ID删除，同样先做作用域内查找
func (g *Gateway) Delete(ctx context.Context, model any, id uint) error {
	record := reflect.New(modelStructType(model)).Interface()
	if err := g.Find(ctx, record, id); err != nil {
		return err
	}
	return g.db.WithContext(ctx).Delete(record).Error
}

// vetPatch 校验补丁不改变记录归属
func (g *Gateway) vetPatch(ctx context.Context, record any, patch map[string]any, tenantID uint) error {
	d, err := g.registry.Describe(record)
	if err != nil {
		return err
	}
	val, touched := patchValue(patch, d.Field, d.Column)
	if !touched {
		return nil
	}
	if d.IsDirect() {
		// 直接租户列不可改，写回相同值也不接受
		return fmt.Errorf("归属租户创建后不可变更: %w", scope.ErrTenantMismatch)
	}
	// 父链外键允许在同租户内迁移（如设备换到同租户的另一处物业）
	fk, ok := toUint(val)
	if !ok || fk == 0 {
		return fmt.Errorf("父引用无效: %w", scope.ErrOwnershipUnresolvable)
	}
	candidate := reflect.New(modelStructType(record)).Interface()
	if err := setField(candidate, d.Field, fk); err != nil {
		return err
	}
	return g.registry.ValidateCreate(g.db.WithContext(ctx), candidate, tenantID)
}

// ========== 辅助 ==========

// sliceElem 从 *[]T / *[]*T 取元素原型
func sliceElem(dest any) (any, error) {
	t := reflect.TypeOf(dest)
	if t == nil || t.Kind() != reflect.Ptr || t.Elem().Kind() != reflect.Slice {
		return nil, fmt.Errorf("List 需要 *[]T 类型的dest")
	}
	e := t.Elem().Elem()
	for e.Kind() == reflect.Ptr {
		e = e.Elem()
	}
	return reflect.New(e).Interface(), nil
}

func modelStructType(model any) reflect.Type {
	t := reflect.TypeOf(model)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

// patchValue 补丁里既可能用列名也可能用字段名
func patchValue(patch map[string]any, field, column string) (any, bool) {
	if v, ok := patch[column]; ok {
		return v, true
	}
	if v, ok := patch[field]; ok {
		return v, true
	}
	return nil, false
}

func toUint(v any) (uint, bool) {
	switch n := v.(type) {
	case uint:
		return n, true
	case uint64:
		return uint(n), true
	case uint32:
		return uint(n), true
	case int:
		if n < 0 {
			return 0, false
		}
		return uint(n), true
	case int64:
		if n < 0 {
			return 0, false
		}
		return uint(n), true
	case float64:
		// JSON数字统一解码成float64，带小数的ID是无效引用，不做截断
		if n < 0 || n != math.Trunc(n) {
			return 0, false
		}
		return uint(n), true
	case *uint:
		if n == nil {
			return 0, true
		}
		return *n, true
	}
	return 0, false
}

func setField(record any, field string, val uint) error {
	v := reflect.ValueOf(record).Elem().FieldByName(field)
	if !v.IsValid() || !v.CanSet() {
		return fmt.Errorf("字段 %s 不可写", field)
	}
	if v.Kind() == reflect.Ptr {
		p := reflect.New(v.Type().Elem())
		p.Elem().SetUint(uint64(val))
		v.Set(p)
		return nil
	}
	v.SetUint(uint64(val))
	return nil
}
