package services_test

import (
	"context"
	"testing"

	"fieldops/internal/models"
	"fieldops/internal/services"
	"fieldops/pkg/gateway"
	"fieldops/pkg/scope"
	"fieldops/pkg/tenantctx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newUserServiceFixture(t *testing.T) (*services.UserService, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// 内存库只能有一个连接
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.Tenant{}, &models.User{}))

	registry := scope.NewRegistry()
	registry.MustRegister(&models.User{}, scope.Direct("TenantID", "tenant_id"))

	return services.NewUserService(db, gateway.New(db, registry)), db
}

func bindUser(t *testing.T, tenantID uint) context.Context {
	ctx, err := tenantctx.Bind(context.Background(), tenantID, 100+tenantID, false)
	require.NoError(t, err)
	return ctx
}

func TestCreateUserStampsBoundTenant(t *testing.T) {
	svc, db := newUserServiceFixture(t)
	ctx := bindUser(t, 1)

	user, err := svc.CreateUser(ctx, "zhangsan", "secret123", "张三", true)
	require.NoError(t, err)
	assert.Equal(t, uint(1), user.TenantID)
	assert.Equal(t, models.UserStatusActive, user.Status)
	assert.True(t, user.IsTechnician)

	// 密码以bcrypt哈希落库，不是明文
	var saved models.User
	require.NoError(t, db.First(&saved, user.ID).Error)
	assert.NotEqual(t, "secret123", saved.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(saved.Password), []byte("secret123")))
}

func TestCreateUserDuplicateUsernameSameTenant(t *testing.T) {
	svc, _ := newUserServiceFixture(t)
	ctx := bindUser(t, 1)

	_, err := svc.CreateUser(ctx, "zhangsan", "secret123", "张三", false)
	require.NoError(t, err)

	_, err = svc.CreateUser(ctx, "zhangsan", "other456", "李四", false)
	assert.EqualError(t, err, "用户名已存在")
}

func TestCreateUserSameUsernameOtherTenant(t *testing.T) {
	svc, _ := newUserServiceFixture(t)

	_, err := svc.CreateUser(bindUser(t, 1), "zhangsan", "secret123", "张三", false)
	require.NoError(t, err)

	// 唯一性按租户作用域校验，另一个租户可用同名
	other, err := svc.CreateUser(bindUser(t, 2), "zhangsan", "other456", "另一个张三", false)
	require.NoError(t, err)
	assert.Equal(t, uint(2), other.TenantID)
}

func TestCreateUserUnboundContext(t *testing.T) {
	svc, db := newUserServiceFixture(t)

	_, err := svc.CreateUser(context.Background(), "zhangsan", "secret123", "张三", false)
	assert.ErrorIs(t, err, tenantctx.ErrNoTenantBound)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
}
