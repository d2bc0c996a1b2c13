package models

import "time"

// PurchaseOrder 采购单
type PurchaseOrder struct {
	BaseModel
	TenantID uint `gorm:"not null;index" json:"tenant_id"`

	PONumber  string     `gorm:"size:50;not null;uniqueIndex:idx_tenant_po" json:"po_number"`
	VendorID  *uint      `gorm:"index" json:"vendor_id"` // 供应商账户
	Status    string     `gorm:"size:20;default:'draft'" json:"status"`
	OrderedAt *time.Time `json:"ordered_at"`
	ExpectedAt *time.Time `json:"expected_at"`
	Notes     string     `gorm:"size:1000" json:"notes"`

	CreatedBy uint `json:"created_by"`

	Vendor *Account            `gorm:"foreignKey:VendorID" json:"vendor,omitempty"`
	Lines  []PurchaseOrderLine `gorm:"foreignKey:PurchaseOrderID" json:"lines,omitempty"`
}

// TableName 表名
func (p *PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// 采购单状态常量
const (
	POStatusDraft     = "draft"
	POStatusOrdered   = "ordered"
	POStatusReceived  = "received"
	POStatusCancelled = "cancelled"
)

// PurchaseOrderLine 采购单行 - 经采购单间接归属租户
type PurchaseOrderLine struct {
	BaseModel
	PurchaseOrderID uint `gorm:"not null;index" json:"purchase_order_id"`

	SKUID       uint    `gorm:"not null;index" json:"sku_id"`
	Quantity    int     `gorm:"not null" json:"quantity"`
	ReceivedQty int     `gorm:"default:0" json:"received_qty"`
	UnitPrice   float64 `json:"unit_price"`

	SKU *SKU `gorm:"foreignKey:SKUID" json:"sku,omitempty"`
}

// TableName 表名
func (p *PurchaseOrderLine) TableName() string {
	return "purchase_order_lines"
}
