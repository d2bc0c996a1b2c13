package scope_test

import (
	"fmt"
	"testing"

	"fieldops/pkg/scope"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Shop struct {
	ID       uint `gorm:"primarykey"`
	TenantID uint
	Name     string
}

type Shelf struct {
	ID     uint `gorm:"primarykey"`
	ShopID uint
	Label  string
}

type Bin struct {
	ID      uint `gorm:"primarykey"`
	ShelfID uint
	Code    string
}

func newTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// 内存库只能有一个连接
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&Shop{}, &Shelf{}, &Bin{}))
	return db
}

func newTestRegistry(t *testing.T) *scope.Registry {
	r := scope.NewRegistry()
	require.NoError(t, r.Register(&Shop{}, scope.Direct("TenantID", "tenant_id")))
	require.NoError(t, r.Register(&Shelf{}, scope.ViaParent(&Shop{}, "ShopID", "shop_id")))
	require.NoError(t, r.Register(&Bin{}, scope.ViaParent(&Shelf{}, "ShelfID", "shelf_id")))
	return r
}

func TestRegisterValidation(t *testing.T) {
	r := scope.NewRegistry()

	// 非结构体
	err := r.Register(42, scope.Direct("TenantID", "tenant_id"))
	assert.Error(t, err)

	// 字段不存在
	err = r.Register(&Shop{}, scope.Direct("Missing", "missing"))
	assert.Error(t, err)

	// 字段类型不是uint
	err = r.Register(&Shop{}, scope.Direct("Name", "name"))
	assert.Error(t, err)

	// 正常注册
	require.NoError(t, r.Register(&Shop{}, scope.Direct("TenantID", "tenant_id")))

	// 重复注册
	err = r.Register(&Shop{}, scope.Direct("TenantID", "tenant_id"))
	assert.Error(t, err)
}

func TestRegisterParentMustBeFirst(t *testing.T) {
	r := scope.NewRegistry()

	// 父实体未注册时子实体注册失败，漏注册在启动阶段暴露
	err := r.Register(&Shelf{}, scope.ViaParent(&Shop{}, "ShopID", "shop_id"))
	assert.ErrorIs(t, err, scope.ErrUnregisteredEntity)

	require.NoError(t, r.Register(&Shop{}, scope.Direct("TenantID", "tenant_id")))
	require.NoError(t, r.Register(&Shelf{}, scope.ViaParent(&Shop{}, "ShopID", "shop_id")))
}

type chain0 struct {
	ID       uint `gorm:"primarykey"`
	TenantID uint
}
type chain1 struct {
	ID       uint `gorm:"primarykey"`
	Chain0ID uint
}
type chain2 struct {
	ID       uint `gorm:"primarykey"`
	Chain1ID uint
}
type chain3 struct {
	ID       uint `gorm:"primarykey"`
	Chain2ID uint
}
type chain4 struct {
	ID       uint `gorm:"primarykey"`
	Chain3ID uint
}
type chain5 struct {
	ID       uint `gorm:"primarykey"`
	Chain4ID uint
}
type chain6 struct {
	ID       uint `gorm:"primarykey"`
	Chain5ID uint
}

func TestRegisterChainDepthCap(t *testing.T) {
	r := scope.NewRegistry()
	require.NoError(t, r.Register(&chain0{}, scope.Direct("TenantID", "tenant_id")))
	require.NoError(t, r.Register(&chain1{}, scope.ViaParent(&chain0{}, "Chain0ID", "chain0_id")))
	require.NoError(t, r.Register(&chain2{}, scope.ViaParent(&chain1{}, "Chain1ID", "chain1_id")))
	require.NoError(t, r.Register(&chain3{}, scope.ViaParent(&chain2{}, "Chain2ID", "chain2_id")))
	require.NoError(t, r.Register(&chain4{}, scope.ViaParent(&chain3{}, "Chain3ID", "chain3_id")))
	require.NoError(t, r.Register(&chain5{}, scope.ViaParent(&chain4{}, "Chain4ID", "chain4_id")))

	// 第6跳超过上限
	err := r.Register(&chain6{}, scope.ViaParent(&chain5{}, "Chain5ID", "chain5_id"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), fmt.Sprintf("%d", scope.MaxChainDepth))
}

func TestDescribe(t *testing.T) {
	r := newTestRegistry(t)

	d, err := r.Describe(&Shop{})
	require.NoError(t, err)
	assert.True(t, d.IsDirect())
	assert.Equal(t, "tenant_id", d.Column)

	d, err = r.Describe(&Shelf{})
	require.NoError(t, err)
	assert.False(t, d.IsDirect())

	_, err = r.Describe(&struct{ ID uint }{})
	assert.ErrorIs(t, err, scope.ErrUnregisteredEntity)
}

func TestResolveOwner(t *testing.T) {
	db := newTestDB(t)
	r := newTestRegistry(t)

	shop := &Shop{TenantID: 3, Name: "主仓"}
	require.NoError(t, db.Create(shop).Error)
	shelf := &Shelf{ShopID: shop.ID, Label: "A1"}
	require.NoError(t, db.Create(shelf).Error)
	bin := &Bin{ShelfID: shelf.ID, Code: "A1-01"}
	require.NoError(t, db.Create(bin).Error)

	// 直接列
	owner, err := r.ResolveOwner(db, shop)
	require.NoError(t, err)
	assert.Equal(t, uint(3), owner)

	// 一级父链
	owner, err = r.ResolveOwner(db, shelf)
	require.NoError(t, err)
	assert.Equal(t, uint(3), owner)

	// 二级父链
	owner, err = r.ResolveOwner(db, bin)
	require.NoError(t, err)
	assert.Equal(t, uint(3), owner)
}

func TestResolveOwnerUnresolvable(t *testing.T) {
	db := newTestDB(t)
	r := newTestRegistry(t)

	// 外键为零
	_, err := r.ResolveOwner(db, &Shelf{})
	assert.ErrorIs(t, err, scope.ErrOwnershipUnresolvable)

	// 父记录不存在
	_, err = r.ResolveOwner(db, &Shelf{ShopID: 999})
	assert.ErrorIs(t, err, scope.ErrOwnershipUnresolvable)
}

func TestValidateCreateDirect(t *testing.T) {
	db := newTestDB(t)
	r := newTestRegistry(t)

	// 零值盖章为调用方租户
	shop := &Shop{Name: "新店"}
	require.NoError(t, r.ValidateCreate(db, shop, 7))
	assert.Equal(t, uint(7), shop.TenantID)

	// 一致的声明值放行
	shop = &Shop{TenantID: 7, Name: "新店"}
	require.NoError(t, r.ValidateCreate(db, shop, 7))

	// 冲突的声明值拒绝，不静默覆盖
	shop = &Shop{TenantID: 8, Name: "新店"}
	err := r.ValidateCreate(db, shop, 7)
	assert.ErrorIs(t, err, scope.ErrTenantMismatch)
	assert.Equal(t, uint(8), shop.TenantID)
}

func TestValidateCreateViaParent(t *testing.T) {
	db := newTestDB(t)
	r := newTestRegistry(t)

	mine := &Shop{TenantID: 1, Name: "本租户"}
	require.NoError(t, db.Create(mine).Error)
	other := &Shop{TenantID: 2, Name: "其他租户"}
	require.NoError(t, db.Create(other).Error)

	// 父记录归属本租户
	require.NoError(t, r.ValidateCreate(db, &Shelf{ShopID: mine.ID}, 1))

	// 父记录归属其他租户
	err := r.ValidateCreate(db, &Shelf{ShopID: other.ID}, 1)
	assert.ErrorIs(t, err, scope.ErrTenantMismatch)

	// 父引用缺失
	err = r.ValidateCreate(db, &Shelf{}, 1)
	assert.ErrorIs(t, err, scope.ErrOwnershipUnresolvable)

	// 父记录不存在
	err = r.ValidateCreate(db, &Shelf{ShopID: 999}, 1)
	assert.ErrorIs(t, err, scope.ErrOwnershipUnresolvable)
}

func TestScopedQuery(t *testing.T) {
	db := newTestDB(t)
	r := newTestRegistry(t)

	shopA := &Shop{TenantID: 1, Name: "A"}
	shopB := &Shop{TenantID: 2, Name: "B"}
	require.NoError(t, db.Create(shopA).Error)
	require.NoError(t, db.Create(shopB).Error)
	require.NoError(t, db.Create(&Shelf{ShopID: shopA.ID, Label: "a1"}).Error)
	require.NoError(t, db.Create(&Shelf{ShopID: shopB.ID, Label: "b1"}).Error)

	// 直接列谓词
	var shops []Shop
	q, err := r.ScopedQuery(db.Model(&Shop{}), &Shop{}, 1)
	require.NoError(t, err)
	require.NoError(t, q.Find(&shops).Error)
	require.Len(t, shops, 1)
	assert.Equal(t, "A", shops[0].Name)

	// 父链子查询谓词
	var shelves []Shelf
	q, err = r.ScopedQuery(db.Model(&Shelf{}), &Shelf{}, 1)
	require.NoError(t, err)
	require.NoError(t, q.Find(&shelves).Error)
	require.Len(t, shelves, 1)
	assert.Equal(t, "a1", shelves[0].Label)

	// 未注册实体
	_, err = r.ScopedQuery(db.Model(&struct{ ID uint }{}), &struct{ ID uint }{}, 1)
	assert.ErrorIs(t, err, scope.ErrUnregisteredEntity)
}

func TestScopedQueryDeepChain(t *testing.T) {
	db := newTestDB(t)
	r := newTestRegistry(t)

	shopA := &Shop{TenantID: 1, Name: "A"}
	shopB := &Shop{TenantID: 2, Name: "B"}
	require.NoError(t, db.Create(shopA).Error)
	require.NoError(t, db.Create(shopB).Error)
	shelfA := &Shelf{ShopID: shopA.ID, Label: "a1"}
	shelfB := &Shelf{ShopID: shopB.ID, Label: "b1"}
	require.NoError(t, db.Create(shelfA).Error)
	require.NoError(t, db.Create(shelfB).Error)
	require.NoError(t, db.Create(&Bin{ShelfID: shelfA.ID, Code: "a1-01"}).Error)
	require.NoError(t, db.Create(&Bin{ShelfID: shelfB.ID, Code: "b1-01"}).Error)

	var bins []Bin
	q, err := r.ScopedQuery(db.Model(&Bin{}), &Bin{}, 1)
	require.NoError(t, err)
	require.NoError(t, q.Find(&bins).Error)
	require.Len(t, bins, 1)
	assert.Equal(t, "a1-01", bins[0].Code)
}

func TestMustRegisterPanics(t *testing.T) {
	r := scope.NewRegistry()
	assert.Panics(t, func() {
		r.MustRegister(&Shelf{}, scope.ViaParent(&Shop{}, "ShopID", "shop_id"))
	})
}
