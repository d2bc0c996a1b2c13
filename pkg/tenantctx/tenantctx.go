package tenantctx

import (
	"context"
	"errors"
)

// 上下文绑定错误
var (
	// ErrNoTenantBound 当前执行上下文未绑定租户
	ErrNoTenantBound = errors.New("当前上下文未绑定租户")
	// ErrContextAlreadyBound 同一执行上下文不允许重复绑定租户
	ErrContextAlreadyBound = errors.New("当前上下文已绑定租户，禁止重复绑定")
)

// CallerContext 调用方上下文 - 一次请求（或一次任务执行）内的租户身份
// 随 context.Context 传播，绑定后不可变，请求结束随上下文一起销毁
type CallerContext struct {
	TenantID uint // 本次操作所属租户
	CallerID uint // 发起人用户ID（系统任务为0）
	Elevated bool // 提升作用域：允许按调用显式指定目标租户（系统/维护任务）
}

// 私有key类型，避免与其他包的context key冲突
type contextKey struct{}

var callerKey contextKey

// Bind 在ctx上绑定调用方上下文，返回派生的新context
// 同一请求内重复绑定返回 ErrContextAlreadyBound，任务不允许中途切换租户
func Bind(ctx context.Context, tenantID, callerID uint, elevated bool) (context.Context, error) {
	if _, ok := ctx.Value(callerKey).(*CallerContext); ok {
		return nil, ErrContextAlreadyBound
	}
	if tenantID == 0 && !elevated {
		// 没有"默认租户"，普通调用方必须携带租户
		return nil, ErrNoTenantBound
	}
	cc := &CallerContext{
		TenantID: tenantID,
		CallerID: callerID,
		Elevated: elevated,
	}
	return context.WithValue(ctx, callerKey, cc), nil
}

// Current 取出当前绑定的调用方上下文
// 未绑定时返回 ErrNoTenantBound：缺失上下文永远是错误，不是租户0
func Current(ctx context.Context) (*CallerContext, error) {
	cc, ok := ctx.Value(callerKey).(*CallerContext)
	if !ok || cc == nil {
		return nil, ErrNoTenantBound
	}
	return cc, nil
}

// IsBound 判断ctx是否已绑定调用方上下文
func IsBound(ctx context.Context) bool {
	_, ok := ctx.Value(callerKey).(*CallerContext)
	return ok
}
