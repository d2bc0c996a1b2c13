package models

// Tenant 租户模型 - 隔离的根单元，自身不属于任何租户
type Tenant struct {
	BaseModel
	Name   string `json:"name" gorm:"not null;size:100"`
	Code   string `json:"code" gorm:"unique;not null;size:50;index"` // 子域/路由标识
	Status string `json:"status" gorm:"default:'active';size:20"`
}

// TableName 表名
func (t *Tenant) TableName() string {
	return "tenants"
}

// 租户状态常量
// 存在关联数据的租户只停用，不做硬删除
const (
	TenantStatusActive   = "active"
	TenantStatusInactive = "inactive"
)
