package models

// SKU 库存品目
type SKU struct {
	BaseModel
	TenantID uint `gorm:"not null;index" json:"tenant_id"`

	Code        string  `gorm:"size:50;not null;uniqueIndex:idx_tenant_sku" json:"code"`
	Name        string  `gorm:"size:200;not null" json:"name"`
	Description string  `gorm:"size:500" json:"description"`
	Unit        string  `gorm:"size:20;default:'ea'" json:"unit"`
	UnitPrice   float64 `json:"unit_price"`
	IsActive    bool    `gorm:"default:true" json:"is_active"`

	StockLevels []StockLevel `gorm:"foreignKey:SKUID" json:"stock_levels,omitempty"`
}

// TableName 表名
func (s *SKU) TableName() string {
	return "skus"
}

// StockLevel 库存水平 - 经SKU间接归属租户
type StockLevel struct {
	BaseModel
	SKUID uint `gorm:"not null;index;uniqueIndex:idx_sku_location" json:"sku_id"`

	Location string `gorm:"size:100;not null;uniqueIndex:idx_sku_location" json:"location"` // 仓库/车辆
	OnHand   int    `gorm:"default:0" json:"on_hand"`
	Reserved int    `gorm:"default:0" json:"reserved"`
	ReorderAt int   `gorm:"default:0" json:"reorder_at"` // 低于该值触发补货提醒

	SKU *SKU `gorm:"foreignKey:SKUID" json:"sku,omitempty"`
}

// TableName 表名
func (s *StockLevel) TableName() string {
	return "stock_levels"
}
