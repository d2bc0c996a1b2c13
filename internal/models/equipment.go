package models

import (
	"time"

	"gorm.io/datatypes"
)

// Equipment 设备
// 没有自己的租户列：经物业间接归属租户（设备→物业→租户）
type Equipment struct {
	BaseModel
	PropertyID uint `gorm:"not null;index" json:"property_id"`

	Name          string     `gorm:"size:200;not null" json:"name"`
	SerialNo      string     `gorm:"size:100" json:"serial_no"`
	Manufacturer  string     `gorm:"size:100" json:"manufacturer"`
	ModelNo       string     `gorm:"size:100" json:"model_no"`
	InstalledAt   *time.Time `json:"installed_at"`
	WarrantyUntil *time.Time `json:"warranty_until"`
	Status        string     `gorm:"size:20;default:'in_service'" json:"status"`

	// 规格参数，各设备类型差异太大，用JSON存
	Attributes datatypes.JSON `json:"attributes"`

	Property *Property `gorm:"foreignKey:PropertyID" json:"property,omitempty"`
}

// TableName 表名
func (e *Equipment) TableName() string {
	return "equipment"
}

// 设备状态常量
const (
	EquipmentStatusInService    = "in_service"
	EquipmentStatusOutOfService = "out_of_service"
	EquipmentStatusRetired      = "retired"
)
