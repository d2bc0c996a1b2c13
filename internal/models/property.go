package models

// Property 物业/服务地址
type Property struct {
	BaseModel
	TenantID uint `gorm:"not null;index" json:"tenant_id"`

	AccountID *uint  `gorm:"index" json:"account_id"` // 所属账户
	Name      string `gorm:"size:200;not null" json:"name"`
	Address   string `gorm:"size:500;not null" json:"address"`
	City      string `gorm:"size:100" json:"city"`
	Province  string `gorm:"size:100" json:"province"`
	Zip       string `gorm:"size:20" json:"zip"`
	Type      string `gorm:"size:50" json:"type"` // residential/commercial/industrial
	Status    string `gorm:"size:20;default:'active'" json:"status"`

	Account   *Account    `gorm:"foreignKey:AccountID" json:"account,omitempty"`
	Equipment []Equipment `gorm:"foreignKey:PropertyID" json:"equipment,omitempty"`
}

// TableName 表名
func (p *Property) TableName() string {
	return "properties"
}
