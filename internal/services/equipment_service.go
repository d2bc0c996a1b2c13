package services

import (
	"context"
	"errors"

	"fieldops/internal/models"
	"fieldops/pkg/gateway"
)

// EquipmentService 设备服务
// 设备经物业间接归属租户，网关对它走父链谓词（子查询），
// 这里的代码和直接列实体完全一样——归属方式对业务层透明
type EquipmentService struct {
	gw *gateway.Gateway
}

func NewEquipmentService(gw *gateway.Gateway) *EquipmentService {
	return &EquipmentService{gw: gw}
}

// Create 创建设备
// 物业引用指向其他租户时，网关返回 ErrTenantMismatch
func (s *EquipmentService) Create(ctx context.Context, equipment *models.Equipment) (*models.Equipment, error) {
	if equipment.Name == "" {
		return nil, errors.New("设备名称不能为空")
	}
	if equipment.Status == "" {
		equipment.Status = models.EquipmentStatusInService
	}

	if err := s.gw.Create(ctx, equipment); err != nil {
		return nil, err
	}
	return equipment, nil
}

// GetByID 按ID获取设备
func (s *EquipmentService) GetByID(ctx context.Context, id uint) (*models.Equipment, error) {
	var equipment models.Equipment
	if err := s.gw.Find(ctx, &equipment, id); err != nil {
		return nil, err
	}
	return &equipment, nil
}

// ListWithPage 分页列表
func (s *EquipmentService) ListWithPage(ctx context.Context, propertyID uint, status string, page, pageSize int) ([]*models.Equipment, int64, error) {
	var opts []gateway.QueryOption
	if propertyID > 0 {
		opts = append(opts, gateway.Where("property_id = ?", propertyID))
	}
	if status != "" {
		opts = append(opts, gateway.Where("status = ?", status))
	}

	total, err := s.gw.Count(ctx, &models.Equipment{}, opts...)
	if err != nil {
		return nil, 0, err
	}

	var equipment []*models.Equipment
	listOpts := append(opts, gateway.Order("id DESC"), gateway.Page(page, pageSize))
	if err := s.gw.List(ctx, &equipment, listOpts...); err != nil {
		return nil, 0, err
	}
	return equipment, total, nil
}

// Update 更新设备
// 补丁里的property_id变更会被网关校验：新物业必须同租户
func (s *EquipmentService) Update(ctx context.Context, id uint, patch map[string]any) (*models.Equipment, error) {
	var equipment models.Equipment
	if err := s.gw.Update(ctx, &equipment, id, patch); err != nil {
		return nil, err
	}
	return &equipment, nil
}

// Delete 删除设备
func (s *EquipmentService) Delete(ctx context.Context, id uint) error {
	return s.gw.Delete(ctx, &models.Equipment{}, id)
}
