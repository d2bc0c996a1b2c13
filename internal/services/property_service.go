package services

import (
	"context"
	"errors"
	"fmt"

	"fieldops/internal/models"
	"fieldops/pkg/gateway"
)

// PropertyService 物业服务
type PropertyService struct {
	gw *gateway.Gateway
}

func NewPropertyService(gw *gateway.Gateway) *PropertyService {
	return &PropertyService{gw: gw}
}

// Create 创建物业
func (s *PropertyService) Create(ctx context.Context, property *models.Property) (*models.Property, error) {
	if property.Name == "" {
		return nil, errors.New("物业名称不能为空")
	}
	if property.Address == "" {
		return nil, errors.New("物业地址不能为空")
	}

	if property.AccountID != nil {
		var account models.Account
		if err := s.gw.Find(ctx, &account, *property.AccountID); err != nil {
			return nil, err
		}
	}

	if err := s.gw.Create(ctx, property); err != nil {
		return nil, err
	}
	return property, nil
}

// GetByID 按ID获取物业（带设备）
func (s *PropertyService) GetByID(ctx context.Context, id uint) (*models.Property, error) {
	var property models.Property
	if err := s.gw.Find(ctx, &property, id); err != nil {
		return nil, err
	}

	// 设备经网关查，保持作用域一致
	var equipment []models.Equipment
	err := s.gw.List(ctx, &equipment, gateway.Where("property_id = ?", id), gateway.Order("id"))
	if err != nil {
		return nil, err
	}
	property.Equipment = equipment
	return &property, nil
}

// ListWithPage 分页列表
func (s *PropertyService) ListWithPage(ctx context.Context, accountID uint, keyword string, page, pageSize int) ([]*models.Property, int64, error) {
	var opts []gateway.QueryOption
	if accountID > 0 {
		opts = append(opts, gateway.Where("account_id = ?", accountID))
	}
	if keyword != "" {
		pattern := fmt.Sprintf("%%%s%%", keyword)
		opts = append(opts, gateway.Where("name LIKE ? OR address LIKE ?", pattern, pattern))
	}

	total, err := s.gw.Count(ctx, &models.Property{}, opts...)
	if err != nil {
		return nil, 0, err
	}

	var properties []*models.Property
	listOpts := append(opts, gateway.Order("id DESC"), gateway.Page(page, pageSize))
	if err := s.gw.List(ctx, &properties, listOpts...); err != nil {
		return nil, 0, err
	}
	return properties, total, nil
}

// Update 更新物业
func (s *PropertyService) Update(ctx context.Context, id uint, patch map[string]any) (*models.Property, error) {
	var property models.Property
	if err := s.gw.Update(ctx, &property, id, patch); err != nil {
		return nil, err
	}
	return &property, nil
}

// Delete 删除物业
func (s *PropertyService) Delete(ctx context.Context, id uint) error {
	equipment, err := s.gw.Count(ctx, &models.Equipment{}, gateway.Where("property_id = ?", id))
	if err != nil {
		return err
	}
	if equipment > 0 {
		return errors.New("物业下仍有设备，不能删除")
	}
	return s.gw.Delete(ctx, &models.Property{}, id)
}
