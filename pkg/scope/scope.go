package scope

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"gorm.io/gorm"
)

// 归属校验错误
var (
	// ErrUnregisteredEntity 实体类型未注册归属描述
	ErrUnregisteredEntity = errors.New("实体类型未注册租户归属")
	// ErrOwnershipUnresolvable 无法解析记录的归属租户（父引用缺失等）
	ErrOwnershipUnresolvable = errors.New("无法解析记录的归属租户")
	// ErrTenantMismatch 记录归属与调用方租户不一致
	ErrTenantMismatch = errors.New("记录归属租户与当前租户不一致")
)

// MaxChainDepth 归属链最大层级，注册时超出直接报错
const MaxChainDepth = 5

// Descriptor 归属描述 - 声明某实体类型的租户归属方式
// 两种形态：直接租户列，或经由一个父实体间接归属
type Descriptor struct {
	Field  string // Go结构体字段名：直接列为租户字段，父链为外键字段
	Column string // 对应数据库列名

	parent reflect.Type // 父实体类型，直接列时为nil
}

// Direct 直接列归属：实体自带租户ID列
func Direct(field, column string) Descriptor {
	return Descriptor{Field: field, Column: column}
}

// ViaParent 父链归属：实体经外键归属于父实体，租户从父实体解析
func ViaParent(parentModel any, fkField, fkColumn string) Descriptor {
	return Descriptor{Field: fkField, Column: fkColumn, parent: modelType(parentModel)}
}

// IsDirect 是否直接列归属
func (d Descriptor) IsDirect() bool {
	return d.parent == nil
}

type entry struct {
	desc  Descriptor
	depth int // 到租户列的跳数，直接列为0
}

// Registry 实体归属注册表
// 进程启动时一次性注册，之后只读；未注册的实体类型一律拒绝访问
type Registry struct {
	mu      sync.RWMutex
	entries map[reflect.Type]entry
}

// NewRegistry 创建空注册表
func NewRegistry() *Registry {
	return &Registry{entries: make(map[reflect.Type]entry)}
}

// Register 注册实体类型的归属描述
// 父链归属要求父类型先注册，归属链的环和超深在这里就报错，不留到查询时
func (r *Registry) Register(model any, d Descriptor) error {
	t := modelType(model)
	if t.Kind() != reflect.Struct {
		return fmt.Errorf("注册失败：%v 不是结构体类型", t)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[t]; exists {
		return fmt.Errorf("注册失败：%s 已注册归属描述", t.Name())
	}

	field, ok := t.FieldByName(d.Field)
	if !ok {
		return fmt.Errorf("注册失败：%s 缺少字段 %s", t.Name(), d.Field)
	}
	if !isUintField(field.Type) {
		return fmt.Errorf("注册失败：%s.%s 必须是 uint 或 *uint", t.Name(), d.Field)
	}

	depth := 0
	if !d.IsDirect() {
		// 父类型必须先注册：新实体漏注册时在启动阶段暴露，而不是查询时
		pe, ok := r.entries[d.parent]
		if !ok {
			return fmt.Errorf("注册失败：%s 的父实体 %s 未注册: %w",
				t.Name(), d.parent.Name(), ErrUnregisteredEntity)
		}
		depth = pe.depth + 1
		if depth > MaxChainDepth {
			return fmt.Errorf("注册失败：%s 归属链超过最大层级 %d", t.Name(), MaxChainDepth)
		}
	}

	r.entries[t] = entry{desc: d, depth: depth}
	return nil
}

// MustRegister 注册失败直接panic，用于启动流程
func (r *Registry) MustRegister(model any, d Descriptor) {
	if err := r.Register(model, d); err != nil {
		panic(err)
	}
}

// Describe 返回实体类型的归属描述
func (r *Registry) Describe(model any) (Descriptor, error) {
	return r.describe(modelType(model))
}

func (r *Registry) describe(t reflect.Type) (Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[t]
	if !ok {
		return Descriptor{}, fmt.Errorf("%s: %w", t.Name(), ErrUnregisteredEntity)
	}
	return e.desc, nil
}

// ResolveOwner 解析记录的归属租户
// 直接列读取本记录，父链逐级加载父记录；父引用缺失返回 ErrOwnershipUnresolvable
func (r *Registry) ResolveOwner(db *gorm.DB, record any) (uint, error) {
	t := modelType(record)
	d, err := r.describe(t)
	if err != nil {
		return 0, err
	}

	val, ok := uintFieldValue(record, d.Field)
	if !ok || val == 0 {
		return 0, fmt.Errorf("%s.%s 为空: %w", t.Name(), d.Field, ErrOwnershipUnresolvable)
	}
	if d.IsDirect() {
		return val, nil
	}

	// 父链：加载父记录再递归解析，深度在注册时已封顶
	parent := reflect.New(d.parent).Interface()
	err = db.Session(&gorm.Session{NewDB: true}).First(parent, val).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("%s 的父记录 %s(%d) 不存在: %w",
				t.Name(), d.parent.Name(), val, ErrOwnershipUnresolvable)
		}
		return 0, err
	}
	return r.ResolveOwner(db, parent)
}

// ValidateCreate 创建前校验归属
// 直接列：零值由网关盖章为调用方租户，非零且不一致的拒绝（不静默覆盖）
// 父链：父记录必须归属调用方租户
func (r *Registry) ValidateCreate(db *gorm.DB, record any, callerTenant uint) error {
	t := modelType(record)
	d, err := r.describe(t)
	if err != nil {
		return err
	}

	if d.IsDirect() {
		val, ok := uintFieldValue(record, d.Field)
		if !ok {
			return fmt.Errorf("%s.%s 不可读: %w", t.Name(), d.Field, ErrOwnershipUnresolvable)
		}
		if val == 0 {
			return setUintField(record, d.Field, callerTenant)
		}
		if val != callerTenant {
			return fmt.Errorf("%s 声明租户 %d 与调用方租户 %d 冲突: %w",
				t.Name(), val, callerTenant, ErrTenantMismatch)
		}
		return nil
	}

	fk, ok := uintFieldValue(record, d.Field)
	if !ok || fk == 0 {
		return fmt.Errorf("%s.%s 为空: %w", t.Name(), d.Field, ErrOwnershipUnresolvable)
	}
	parent := reflect.New(d.parent).Interface()
	if err := db.Session(&gorm.Session{NewDB: true}).First(parent, fk).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%s 的父记录不存在: %w", t.Name(), ErrOwnershipUnresolvable)
		}
		return err
	}
	owner, err := r.ResolveOwner(db, parent)
	if err != nil {
		return err
	}
	if owner != callerTenant {
		return fmt.Errorf("%s 的父记录归属租户 %d: %w", t.Name(), owner, ErrTenantMismatch)
	}
	return nil
}

// ScopedQuery 为查询追加租户谓词
// 直接列追加 WHERE 条件，父链生成嵌套子查询：fk IN (SELECT id FROM 父表 WHERE <父谓词>)
func (r *Registry) ScopedQuery(db *gorm.DB, model any, tenantID uint) (*gorm.DB, error) {
	t := modelType(model)
	d, err := r.describe(t)
	if err != nil {
		return nil, err
	}
	if d.IsDirect() {
		return db.Where(d.Column+" = ?", tenantID), nil
	}

	parentProto := reflect.New(d.parent).Interface()
	sub := db.Session(&gorm.Session{NewDB: true}).Model(parentProto).Select("id")
	sub, err = r.ScopedQuery(sub, parentProto, tenantID)
	if err != nil {
		return nil, err
	}
	return db.Where(d.Column+" IN (?)", sub), nil
}

// ========== 反射辅助 ==========

// modelType 取实体的结构体类型（解引用指针）
func modelType(model any) reflect.Type {
	t := reflect.TypeOf(model)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

func isUintField(t reflect.Type) bool {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

// uintFieldValue 读取uint或*uint字段，nil指针按(0, true)处理
func uintFieldValue(record any, field string) (uint, bool) {
	v := reflect.ValueOf(record)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return 0, false
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return 0, false
	}
	f := v.FieldByName(field)
	if !f.IsValid() {
		return 0, false
	}
	if f.Kind() == reflect.Ptr {
		if f.IsNil() {
			return 0, true
		}
		f = f.Elem()
	}
	if !isUintField(f.Type()) {
		return 0, false
	}
	return uint(f.Uint()), true
}

func setUintField(record any, field string, val uint) error {
	v := reflect.ValueOf(record)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return fmt.Errorf("盖章租户字段需要非空指针记录")
	}
	f := v.Elem().FieldByName(field)
	if !f.IsValid() || !f.CanSet() {
		return fmt.Errorf("字段 %s 不可写", field)
	}
	if f.Kind() == reflect.Ptr {
		p := reflect.New(f.Type().Elem())
		p.Elem().SetUint(uint64(val))
		f.Set(p)
		return nil
	}
	f.SetUint(uint64(val))
	return nil
}
