package models

import "time"

// User 用户模型
type User struct {
	BaseModel
	TenantID uint `gorm:"not null;index" json:"tenant_id"`

	Username string `gorm:"size:50;not null;uniqueIndex:idx_tenant_user" json:"username"`
	Password string `gorm:"size:100;not null" json:"-"` // bcrypt哈希
	Name     string `gorm:"size:100" json:"name"`
	Email    string `gorm:"size:100" json:"email"`
	Phone    string `gorm:"size:20" json:"phone"`

	// 平台管理员拥有提升作用域，可按调用指名租户；普通用户严格限定本租户
	IsPlatformAdmin bool `gorm:"default:false" json:"is_platform_admin"`

	// 技师可被派单
	IsTechnician bool `gorm:"default:false" json:"is_technician"`

	Status      string     `gorm:"size:20;default:'active'" json:"status"`
	LastLoginAt *time.Time `json:"last_login_at"`
}

// TableName 表名
func (u *User) TableName() string {
	return "users"
}

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)
