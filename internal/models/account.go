package models

// Account 客户/供应商账户
type Account struct {
	BaseModel
	TenantID uint `gorm:"not null;index" json:"tenant_id"`

	AccountNo string `gorm:"size:50;not null;uniqueIndex:idx_tenant_account" json:"account_no"`
	Name      string `gorm:"size:200;not null" json:"name"`
	Type      string `gorm:"size:20;default:'customer'" json:"type"` // customer/vendor
	Phone     string `gorm:"size:20" json:"phone"`
	Email     string `gorm:"size:100" json:"email"`
	Address   string `gorm:"size:500" json:"address"`
	Status    string `gorm:"size:20;default:'active'" json:"status"`
	Notes     string `gorm:"size:1000" json:"notes"`

	CreatedBy uint `json:"created_by"`
}

// TableName 表名
func (a *Account) TableName() string {
	return "accounts"
}

// 账户类型常量
const (
	AccountTypeCustomer = "customer"
	AccountTypeVendor   = "vendor"
)

// 账户状态常量
const (
	AccountStatusActive   = "active"
	AccountStatusInactive = "inactive"
)
