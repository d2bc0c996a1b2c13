package gateway_test

import (
	"context"
	"testing"

	"fieldops/pkg/gateway"
	"fieldops/pkg/scope"
	"fieldops/pkg/tenantctx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Customer struct {
	ID       uint `gorm:"primarykey"`
	TenantID uint
	Name     string
}

type Site struct {
	ID       uint `gorm:"primarykey"`
	TenantID uint
	Label    string
}

type Device struct {
	ID       uint `gorm:"primarykey"`
	SiteID   uint
	SerialNo string
}

type fixture struct {
	db *gorm.DB
	gw *gateway.Gateway

	// 两个租户各一套数据
	custA, custB     *Customer
	siteA, siteB     *Site
	deviceA, deviceB *Device
}

func newFixture(t *testing.T) *fixture {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// 内存库只能有一个连接
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&Customer{}, &Site{}, &Device{}))

	registry := scope.NewRegistry()
	registry.MustRegister(&Customer{}, scope.Direct("TenantID", "tenant_id"))
	registry.MustRegister(&Site{}, scope.Direct("TenantID", "tenant_id"))
	registry.MustRegister(&Device{}, scope.ViaParent(&Site{}, "SiteID", "site_id"))

	f := &fixture{db: db, gw: gateway.New(db, registry)}

	f.custA = &Customer{TenantID: 1, Name: "客户A"}
	f.custB = &Customer{TenantID: 2, Name: "客户B"}
	f.siteA = &Site{TenantID: 1, Label: "站点A"}
	f.siteB = &Site{TenantID: 2, Label: "站点B"}
	require.NoError(t, db.Create(f.custA).Error)
	require.NoError(t, db.Create(f.custB).Error)
	require.NoError(t, db.Create(f.siteA).Error)
	require.NoError(t, db.Create(f.siteB).Error)

	f.deviceA = &Device{SiteID: f.siteA.ID, SerialNo: "SN-A"}
	f.deviceB = &Device{SiteID: f.siteB.ID, SerialNo: "SN-B"}
	require.NoError(t, db.Create(f.deviceA).Error)
	require.NoError(t, db.Create(f.deviceB).Error)

	return f
}

func bind(t *testing.T, tenantID uint) context.Context {
	ctx, err := tenantctx.Bind(context.Background(), tenantID, 100+tenantID, false)
	require.NoError(t, err)
	return ctx
}

func bindElevated(t *testing.T) context.Context {
	ctx, err := tenantctx.Bind(context.Background(), 0, 0, true)
	require.NoError(t, err)
	return ctx
}

// ========== 查找 ==========

func TestFindOwnRecord(t *testing.T) {
	f := newFixture(t)
	ctx := bind(t, 1)

	var got Customer
	require.NoError(t, f.gw.Find(ctx, &got, f.custA.ID))
	assert.Equal(t, "客户A", got.Name)

	// 重复查找结果一致
	var again Customer
	require.NoError(t, f.gw.Find(ctx, &again, f.custA.ID))
	assert.Equal(t, got.ID, again.ID)
}

func TestFindCrossTenantIndistinguishable(t *testing.T) {
	f := newFixture(t)
	ctx := bind(t, 1)

	// 其他租户的记录和不存在的记录返回同一个错误
	var got Customer
	errCross := f.gw.Find(ctx, &got, f.custB.ID)
	assert.ErrorIs(t, errCross, gateway.ErrNotFound)

	errMissing := f.gw.Find(ctx, &got, 99999)
	assert.ErrorIs(t, errMissing, gateway.ErrNotFound)

	assert.Equal(t, errMissing.Error(), errCross.Error())
}

func TestFindWithoutBinding(t *testing.T) {
	f := newFixture(t)

	var got Customer
	err := f.gw.Find(context.Background(), &got, f.custA.ID)
	assert.ErrorIs(t, err, tenantctx.ErrNoTenantBound)
}

func TestFindUnregisteredEntity(t *testing.T) {
	f := newFixture(t)
	ctx := bind(t, 1)

	type Orphan struct {
		ID uint `gorm:"primarykey"`
	}
	var got Orphan
	err := f.gw.Find(ctx, &got, 1)
	assert.ErrorIs(t, err, scope.ErrUnregisteredEntity)
}

// ========== 列表与统计 ==========

func TestListOnlyOwnTenant(t *testing.T) {
	f := newFixture(t)

	var forA []Customer
	require.NoError(t, f.gw.List(bind(t, 1), &forA))
	require.Len(t, forA, 1)
	assert.Equal(t, "客户A", forA[0].Name)

	var forB []Customer
	require.NoError(t, f.gw.List(bind(t, 2), &forB))
	require.Len(t, forB, 1)
	assert.Equal(t, "客户B", forB[0].Name)
}

func TestListConditionsCannotWidenScope(t *testing.T) {
	f := newFixture(t)
	ctx := bind(t, 1)

	// 调用方条件在租户谓词之下AND，指名其他租户也查不到
	var got []Customer
	require.NoError(t, f.gw.List(ctx, &got, gateway.Where("tenant_id = ?", 2)))
	assert.Empty(t, got)
}

func TestCountScoped(t *testing.T) {
	f := newFixture(t)

	total, err := f.gw.Count(bind(t, 1), &Customer{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	total, err = f.gw.Count(bind(t, 2), &Device{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

// ========== 创建 ==========

func TestCreateStampsCallerTenant(t *testing.T) {
	f := newFixture(t)
	ctx := bind(t, 1)

	c := &Customer{Name: "新客户"}
	require.NoError(t, f.gw.Create(ctx, c))
	assert.Equal(t, uint(1), c.TenantID)
}

func TestCreateConflictingTenantRejected(t *testing.T) {
	f := newFixture(t)
	ctx := bind(t, 1)

	c := &Customer{TenantID: 2, Name: "越界客户"}
	err := f.gw.Create(ctx, c)
	assert.ErrorIs(t, err, scope.ErrTenantMismatch)

	// 未落库
	var count int64
	f.db.Model(&Customer{}).Where("name = ?", "越界客户").Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestCreateChildUnderForeignParentRejected(t *testing.T) {
	f := newFixture(t)
	ctx := bind(t, 1)

	d := &Device{SiteID: f.siteB.ID, SerialNo: "SN-X"}
	err := f.gw.Create(ctx, d)
	assert.ErrorIs(t, err, scope.ErrTenantMismatch)

	var count int64
	f.db.Model(&Device{}).Where("serial_no = ?", "SN-X").Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestCreateChildWithoutParentRejected(t *testing.T) {
	f := newFixture(t)
	ctx := bind(t, 1)

	err := f.gw.Create(ctx, &Device{SerialNo: "SN-Y"})
	assert.ErrorIs(t, err, scope.ErrOwnershipUnresolvable)

	err = f.gw.Create(ctx, &Device{SiteID: 99999, SerialNo: "SN-Y"})
	assert.ErrorIs(t, err, scope.ErrOwnershipUnresolvable)
}

// ========== 更新 ==========

func TestUpdateOwnRecord(t *testing.T) {
	f := newFixture(t)
	ctx := bind(t, 1)

	var c Customer
	require.NoError(t, f.gw.Update(ctx, &c, f.custA.ID, map[string]any{"name": "改名"}))
	assert.Equal(t, "改名", c.Name)

	var check Customer
	require.NoError(t, f.db.First(&check, f.custA.ID).Error)
	assert.Equal(t, "改名", check.Name)
}

func TestUpdateCrossTenantUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := bind(t, 1)

	var c Customer
	err := f.gw.Update(ctx, &c, f.custB.ID, map[string]any{"name": "篡改"})
	assert.ErrorIs(t, err, gateway.ErrNotFound)

	// 记录原样
	var check Customer
	require.NoError(t, f.db.First(&check, f.custB.ID).Error)
	assert.Equal(t, "客户B", check.Name)
}

func TestUpdateTenantColumnImmutable(t *testing.T) {
	f := newFixture(t)
	ctx := bind(t, 1)

	var c Customer
	err := f.gw.Update(ctx, &c, f.custA.ID, map[string]any{"tenant_id": 2})
	assert.ErrorIs(t, err, scope.ErrTenantMismatch)

	// 写回相同值也不接受
	err = f.gw.Update(ctx, &c, f.custA.ID, map[string]any{"tenant_id": 1})
	assert.ErrorIs(t, err, scope.ErrTenantMismatch)

	var check Customer
	require.NoError(t, f.db.First(&check, f.custA.ID).Error)
	assert.Equal(t, uint(1), check.TenantID)
}

func TestUpdateRehomeWithinTenant(t *testing.T) {
	f := newFixture(t)
	ctx := bind(t, 1)

	// 同租户的第二个站点
	site2 := &Site{TenantID: 1, Label: "站点A2"}
	require.NoError(t, f.db.Create(site2).Error)

	var d Device
	require.NoError(t, f.gw.Update(ctx, &d, f.deviceA.ID, map[string]any{"site_id": site2.ID}))

	var check Device
	require.NoError(t, f.db.First(&check, f.deviceA.ID).Error)
	assert.Equal(t, site2.ID, check.SiteID)
}

func TestUpdateRehomeFractionalIDRejected(t *testing.T) {
	f := newFixture(t)
	ctx := bind(t, 1)

	// JSON解码后的数字是float64，带小数的父引用不能截断成合法ID
	var d Device
	err := f.gw.Update(ctx, &d, f.deviceA.ID, map[string]any{"site_id": float64(f.siteA.ID) + 0.7})
	assert.ErrorIs(t, err, scope.ErrOwnershipUnresolvable)

	var check Device
	require.NoError(t, f.db.First(&check, f.deviceA.ID).Error)
	assert.Equal(t, f.siteA.ID, check.SiteID)

	// 整数值的float64照常接受
	require.NoError(t, f.gw.Update(ctx, &d, f.deviceA.ID, map[string]any{"site_id": float64(f.siteA.ID)}))
}

func TestUpdateRehomeAcrossTenantRejected(t *testing.T) {
	f := newFixture(t)
	ctx := bind(t, 1)

	var d Device
	err := f.gw.Update(ctx, &d, f.deviceA.ID, map[string]any{"site_id": f.siteB.ID})
	assert.ErrorIs(t, err, scope.ErrTenantMismatch)

	var check Device
	require.NoError(t, f.db.First(&check, f.deviceA.ID).Error)
	assert.Equal(t, f.siteA.ID, check.SiteID)
}

// ========== 删除 ==========

func TestDeleteOwnRecord(t *testing.T) {
	f := newFixture(t)
	ctx := bind(t, 1)

	require.NoError(t, f.gw.Delete(ctx, &Customer{}, f.custA.ID))

	var count int64
	f.db.Model(&Customer{}).Where("id = ?", f.custA.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestDeleteCrossTenantUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := bind(t, 1)

	err := f.gw.Delete(ctx, &Customer{}, f.custB.ID)
	assert.ErrorIs(t, err, gateway.ErrNotFound)

	var count int64
	f.db.Model(&Customer{}).Where("id = ?", f.custB.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

// ========== 父链作用域 ==========

func TestParentChainScoping(t *testing.T) {
	f := newFixture(t)

	// 设备没有租户列，作用域经站点解析
	var forA []Device
	require.NoError(t, f.gw.List(bind(t, 1), &forA))
	require.Len(t, forA, 1)
	assert.Equal(t, "SN-A", forA[0].SerialNo)

	var got Device
	err := f.gw.Find(bind(t, 1), &got, f.deviceB.ID)
	assert.ErrorIs(t, err, gateway.ErrNotFound)
}

// ========== 提升作用域 ==========

func TestElevatedOverride(t *testing.T) {
	f := newFixture(t)
	ectx := bindElevated(t)

	// 提升上下文必须按调用显式指名租户
	var got Customer
	err := f.gw.Find(ectx, &got, f.custA.ID)
	assert.ErrorIs(t, err, tenantctx.ErrNoTenantBound)

	// 指名后按该租户的作用域执行
	require.NoError(t, f.gw.Find(gateway.WithTenant(ectx, 1), &got, f.custA.ID))
	assert.Equal(t, "客户A", got.Name)

	err = f.gw.Find(gateway.WithTenant(ectx, 1), &got, f.custB.ID)
	assert.ErrorIs(t, err, gateway.ErrNotFound)

	var forB []Customer
	require.NoError(t, f.gw.List(gateway.WithTenant(ectx, 2), &forB))
	require.Len(t, forB, 1)
	assert.Equal(t, "客户B", forB[0].Name)
}

func TestNonElevatedOverrideRejected(t *testing.T) {
	f := newFixture(t)
	ctx := bind(t, 1)

	var got Customer
	err := f.gw.Find(gateway.WithTenant(ctx, 2), &got, f.custB.ID)
	assert.ErrorIs(t, err, scope.ErrTenantMismatch)

	// 指名自己的租户同样拒绝：普通调用方没有指名能力
	err = f.gw.Find(gateway.WithTenant(ctx, 1), &got, f.custA.ID)
	assert.ErrorIs(t, err, scope.ErrTenantMismatch)
}

func TestElevatedOverrideZeroTenantRejected(t *testing.T) {
	f := newFixture(t)
	ectx := bindElevated(t)

	var got Customer
	err := f.gw.Find(gateway.WithTenant(ectx, 0), &got, f.custA.ID)
	assert.ErrorIs(t, err, tenantctx.ErrNoTenantBound)
}

// ========== 分页选项 ==========

func TestListOptions(t *testing.T) {
	f := newFixture(t)
	ctx := bind(t, 1)

	for i := 0; i < 5; i++ {
		require.NoError(t, f.gw.Create(ctx, &Customer{Name: "批量客户"}))
	}

	var page []Customer
	require.NoError(t, f.gw.List(ctx, &page,
		gateway.Where("name = ?", "批量客户"),
		gateway.Order("id"),
		gateway.Page(1, 3)))
	assert.Len(t, page, 3)

	var rest []Customer
	require.NoError(t, f.gw.List(ctx, &rest,
		gateway.Where("name = ?", "批量客户"),
		gateway.Order("id"),
		gateway.Page(2, 3)))
	assert.Len(t, rest, 2)
}
