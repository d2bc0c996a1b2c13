package services

import (
	"context"
	"errors"
	"fmt"

	"fieldops/internal/models"
	"fieldops/pkg/gateway"
)

// InventoryService 库存服务
type InventoryService struct {
	gw *gateway.Gateway
}

func NewInventoryService(gw *gateway.Gateway) *InventoryService {
	return &InventoryService{gw: gw}
}

// CreateSKU 创建库存品目
func (s *InventoryService) CreateSKU(ctx context.Context, sku *models.SKU) (*models.SKU, error) {
	if sku.Code == "" {
		return nil, errors.New("SKU编码不能为空")
	}
	if sku.Name == "" {
		return nil, errors.New("SKU名称不能为空")
	}

	count, err := s.gw.Count(ctx, &models.SKU{}, gateway.Where("code = ?", sku.Code))
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("SKU编码已存在")
	}

	if err := s.gw.Create(ctx, sku); err != nil {
		return nil, err
	}
	return sku, nil
}

// GetSKU 按ID获取SKU（带库存水平）
func (s *InventoryService) GetSKU(ctx context.Context, id uint) (*models.SKU, error) {
	var sku models.SKU
	if err := s.gw.Find(ctx, &sku, id); err != nil {
		return nil, err
	}

	var levels []models.StockLevel
	if err := s.gw.List(ctx, &levels, gateway.Where("sku_id = ?", id)); err != nil {
		return nil, err
	}
	sku.StockLevels = levels
	return &sku, nil
}

// ListSKUsWithPage 分页列表
func (s *InventoryService) ListSKUsWithPage(ctx context.Context, keyword string, activeOnly bool, page, pageSize int) ([]*models.SKU, int64, error) {
	var opts []gateway.QueryOption
	if keyword != "" {
		pattern := fmt.Sprintf("%%%s%%", keyword)
		opts = append(opts, gateway.Where("code LIKE ? OR name LIKE ?", pattern, pattern))
	}
	if activeOnly {
		opts = append(opts, gateway.Where("is_active = ?", true))
	}

	total, err := s.gw.Count(ctx, &models.SKU{}, opts...)
	if err != nil {
		return nil, 0, err
	}

	var skus []*models.SKU
	listOpts := append(opts, gateway.Order("code"), gateway.Page(page, pageSize))
	if err := s.gw.List(ctx, &skus, listOpts...); err != nil {
		return nil, 0, err
	}
	return skus, total, nil
}

// UpdateSKU 更新SKU
func (s *InventoryService) UpdateSKU(ctx context.Context, id uint, patch map[string]any) (*models.SKU, error) {
	var sku models.SKU
	if err := s.gw.Update(ctx, &sku, id, patch); err != nil {
		return nil, err
	}
	return &sku, nil
}

// AdjustStock 调整库存
// 库存水平经SKU间接归属租户：sku_id越界时等同SKU不存在
func (s *InventoryService) AdjustStock(ctx context.Context, skuID uint, location string, delta int) (*models.StockLevel, error) {
	if location == "" {
		return nil, errors.New("库位不能为空")
	}

	// SKU必须在本租户内
	var sku models.SKU
	if err := s.gw.Find(ctx, &sku, skuID); err != nil {
		return nil, err
	}

	var levels []models.StockLevel
	err := s.gw.List(ctx, &levels,
		gateway.Where("sku_id = ?", skuID),
		gateway.Where("location = ?", location),
		gateway.Limit(1))
	if err != nil {
		return nil, err
	}

	if len(levels) == 0 {
		if delta < 0 {
			return nil, errors.New("库存不足")
		}
		level := &models.StockLevel{
			SKUID:    skuID,
			Location: location,
			OnHand:   delta,
		}
		if err := s.gw.Create(ctx, level); err != nil {
			return nil, err
		}
		return level, nil
	}

	level := levels[0]
	newOnHand := level.OnHand + delta
	if newOnHand < 0 {
		return nil, errors.New("库存不足")
	}

	var updated models.StockLevel
	if err := s.gw.Update(ctx, &updated, level.ID, map[string]any{"on_hand": newOnHand}); err != nil {
		return nil, err
	}
	return &updated, nil
}

// ListStock 某SKU的全部库存水平
func (s *InventoryService) ListStock(ctx context.Context, skuID uint) ([]*models.StockLevel, error) {
	var levels []*models.StockLevel
	err := s.gw.List(ctx, &levels, gateway.Where("sku_id = ?", skuID), gateway.Order("location"))
	if err != nil {
		return nil, err
	}
	return levels, nil
}
