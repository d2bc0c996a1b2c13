package tenantctx_test

import (
	"context"
	"testing"

	"fieldops/pkg/tenantctx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindAndCurrent(t *testing.T) {
	ctx, err := tenantctx.Bind(context.Background(), 42, 7, false)
	require.NoError(t, err)

	cc, err := tenantctx.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint(42), cc.TenantID)
	assert.Equal(t, uint(7), cc.CallerID)
	assert.False(t, cc.Elevated)
}

func TestCurrentWithoutBind(t *testing.T) {
	_, err := tenantctx.Current(context.Background())
	assert.ErrorIs(t, err, tenantctx.ErrNoTenantBound)
}

func TestRebindRejected(t *testing.T) {
	ctx, err := tenantctx.Bind(context.Background(), 1, 1, false)
	require.NoError(t, err)

	_, err = tenantctx.Bind(ctx, 2, 1, false)
	assert.ErrorIs(t, err, tenantctx.ErrContextAlreadyBound)

	// 原绑定不受影响
	cc, err := tenantctx.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint(1), cc.TenantID)
}

func TestBindZeroTenantRejected(t *testing.T) {
	_, err := tenantctx.Bind(context.Background(), 0, 1, false)
	assert.ErrorIs(t, err, tenantctx.ErrNoTenantBound)
}

func TestElevatedBindAllowsZeroTenant(t *testing.T) {
	// 系统任务先以提升作用域绑定，目标租户由每次调用显式指定
	ctx, err := tenantctx.Bind(context.Background(), 0, 0, true)
	require.NoError(t, err)

	cc, err := tenantctx.Current(ctx)
	require.NoError(t, err)
	assert.True(t, cc.Elevated)
	assert.Equal(t, uint(0), cc.TenantID)
}

func TestBindPropagatesToChildContext(t *testing.T) {
	ctx, err := tenantctx.Bind(context.Background(), 9, 3, false)
	require.NoError(t, err)

	child, cancel := context.WithCancel(ctx)
	defer cancel()

	cc, err := tenantctx.Current(child)
	require.NoError(t, err)
	assert.Equal(t, uint(9), cc.TenantID)
}

func TestIsBound(t *testing.T) {
	assert.False(t, tenantctx.IsBound(context.Background()))

	ctx, err := tenantctx.Bind(context.Background(), 5, 1, false)
	require.NoError(t, err)
	assert.True(t, tenantctx.IsBound(ctx))
}
