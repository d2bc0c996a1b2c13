package models

// Contact 联系人
type Contact struct {
	BaseModel
	TenantID uint `gorm:"not null;index" json:"tenant_id"`

	AccountID *uint  `gorm:"index" json:"account_id"` // 所属账户，可为空（散客）
	FirstName string `gorm:"size:50;not null" json:"first_name"`
	LastName  string `gorm:"size:50" json:"last_name"`
	Email     string `gorm:"size:100" json:"email"`
	Phone     string `gorm:"size:20" json:"phone"`
	Role      string `gorm:"size:50" json:"role"` // 决策人/现场联系人等
	IsPrimary bool   `gorm:"default:false" json:"is_primary"`

	Account *Account `gorm:"foreignKey:AccountID" json:"account,omitempty"`
}

// TableName 表名
func (c *Contact) TableName() string {
	return "contacts"
}
