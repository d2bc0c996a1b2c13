package models

import (
	"time"

	"gorm.io/datatypes"
)

// WorkOrder 工单
type WorkOrder struct {
	BaseModel
	TenantID uint `gorm:"not null;index" json:"tenant_id"`

	Number      string `gorm:"size:50;not null;uniqueIndex:idx_tenant_wo" json:"number"`
	Title       string `gorm:"size:200;not null" json:"title"`
	Description string `gorm:"size:2000" json:"description"`
	Priority    string `gorm:"size:20;default:'normal'" json:"priority"` // low/normal/high/urgent
	Status      string `gorm:"size:20;default:'pending'" json:"status"`

	// 业务关联，都必须指向同租户的记录（网关创建时校验）
	AccountID   *uint `gorm:"index" json:"account_id"`
	PropertyID  *uint `gorm:"index" json:"property_id"`
	EquipmentID *uint `gorm:"index" json:"equipment_id"`

	// 派单
	AssigneeID  *uint      `gorm:"index" json:"assignee_id"` // 技师
	ScheduledAt *time.Time `json:"scheduled_at"`
	DueAt       *time.Time `json:"due_at"`
	StartedAt   *time.Time `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`

	// 各租户自定义字段
	CustomFields datatypes.JSON `json:"custom_fields"`

	CreatedBy uint `json:"created_by"`

	Account   *Account        `gorm:"foreignKey:AccountID" json:"account,omitempty"`
	Property  *Property       `gorm:"foreignKey:PropertyID" json:"property,omitempty"`
	Equipment *Equipment      `gorm:"foreignKey:EquipmentID" json:"equipment,omitempty"`
	Notes     []WorkOrderNote `gorm:"foreignKey:WorkOrderID" json:"notes,omitempty"`
}

// TableName 表名
func (w *WorkOrder) TableName() string {
	return "work_orders"
}

// 工单状态常量
const (
	WorkOrderStatusPending    = "pending"
	WorkOrderStatusScheduled  = "scheduled"
	WorkOrderStatusDispatched = "dispatched"
	WorkOrderStatusInProgress = "in_progress"
	WorkOrderStatusCompleted  = "completed"
	WorkOrderStatusCancelled  = "cancelled"
)

// 工单优先级常量
const (
	WorkOrderPriorityLow    = "low"
	WorkOrderPriorityNormal = "normal"
	WorkOrderPriorityHigh   = "high"
	WorkOrderPriorityUrgent = "urgent"
)

// WorkOrderNote 工单备注 - 经工单间接归属租户
type WorkOrderNote struct {
	BaseModel
	WorkOrderID uint `gorm:"not null;index" json:"work_order_id"`

	AuthorID uint   `gorm:"not null" json:"author_id"`
	Body     string `gorm:"size:2000;not null" json:"body"`
}

// TableName 表名
func (w *WorkOrderNote) TableName() string {
	return "work_order_notes"
}
