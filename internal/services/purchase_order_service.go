package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fieldops/internal/models"
	"fieldops/pkg/gateway"

	"github.com/google/uuid"
)

// PurchaseOrderService 采购单服务
type PurchaseOrderService struct {
	gw        *gateway.Gateway
	inventory *InventoryService
}

func NewPurchaseOrderService(gw *gateway.Gateway, inventory *InventoryService) *PurchaseOrderService {
	return &PurchaseOrderService{gw: gw, inventory: inventory}
}

// generatePONumber 生成采购单号
func generatePONumber() string {
	return "PO-" + strings.ToUpper(uuid.New().String()[:8])
}

// Create 创建采购单
func (s *PurchaseOrderService) Create(ctx context.Context, po *models.PurchaseOrder) (*models.PurchaseOrder, error) {
	if po.PONumber == "" {
		po.PONumber = generatePONumber()
	}
	if po.Status == "" {
		po.Status = models.POStatusDraft
	}

	// 供应商必须是本租户的vendor账户
	if po.VendorID != nil {
		var vendor models.Account
		if err := s.gw.Find(ctx, &vendor, *po.VendorID); err != nil {
			return nil, err
		}
		if vendor.Type != models.AccountTypeVendor {
			return nil, errors.New("指定账户不是供应商")
		}
	}

	if err := s.gw.Create(ctx, po); err != nil {
		return nil, err
	}
	return po, nil
}

// GetByID 按ID获取采购单（带行）
func (s *PurchaseOrderService) GetByID(ctx context.Context, id uint) (*models.PurchaseOrder, error) {
	var po models.PurchaseOrder
	if err := s.gw.Find(ctx, &po, id); err != nil {
		return nil, err
	}

	var lines []models.PurchaseOrderLine
	err := s.gw.List(ctx, &lines, gateway.Where("purchase_order_id = ?", id), gateway.Order("id"))
	if err != nil {
		return nil, err
	}
	po.Lines = lines
	return &po, nil
}

// ListWithPage 分页列表
func (s *PurchaseOrderService) ListWithPage(ctx context.Context, status string, page, pageSize int) ([]*models.PurchaseOrder, int64, error) {
	var opts []gateway.QueryOption
	if status != "" {
		opts = append(opts, gateway.Where("status = ?", status))
	}

	total, err := s.gw.Count(ctx, &models.PurchaseOrder{}, opts...)
	if err != nil {
		return nil, 0, err
	}

	var orders []*models.PurchaseOrder
	listOpts := append(opts, gateway.Order("id DESC"), gateway.Page(page, pageSize))
	if err := s.gw.List(ctx, &orders, listOpts...); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// AddLine 添加采购单行
// 采购单行经采购单间接归属租户；SKU引用也必须落在本租户
func (s *PurchaseOrderService) AddLine(ctx context.Context, poID, skuID uint, quantity int, unitPrice float64) (*models.PurchaseOrderLine, error) {
	if quantity <= 0 {
		return nil, errors.New("数量必须大于0")
	}

	po, err := s.GetByID(ctx, poID)
	if err != nil {
		return nil, err
	}
	if po.Status != models.POStatusDraft {
		return nil, fmt.Errorf("采购单状态为%s，不能添加行", po.Status)
	}

	var sku models.SKU
	if err := s.gw.Find(ctx, &sku, skuID); err != nil {
		return nil, err
	}

	line := &models.PurchaseOrderLine{
		PurchaseOrderID: poID,
		SKUID:           skuID,
		Quantity:        quantity,
		UnitPrice:       unitPrice,
	}
	if err := s.gw.Create(ctx, line); err != nil {
		return nil, err
	}
	return line, nil
}

// Submit 提交采购单
func (s *PurchaseOrderService) Submit(ctx context.Context, id uint) (*models.PurchaseOrder, error) {
	po, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if po.Status != models.POStatusDraft {
		return nil, fmt.Errorf("采购单状态为%s，不能提交", po.Status)
	}
	if len(po.Lines) == 0 {
		return nil, errors.New("空采购单不能提交")
	}

	now := time.Now()
	var updated models.PurchaseOrder
	err = s.gw.Update(ctx, &updated, id, map[string]any{
		"status":     models.POStatusOrdered,
		"ordered_at": &now,
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// ReceiveLine 收货
// 收货数量累加到行上，并调整对应库位的库存
func (s *PurchaseOrderService) ReceiveLine(ctx context.Context, lineID uint, quantity int, location string) (*models.PurchaseOrderLine, error) {
	if quantity <= 0 {
		return nil, errors.New("收货数量必须大于0")
	}
	if location == "" {
		location = "main"
	}

	var line models.PurchaseOrderLine
	if err := s.gw.Find(ctx, &line, lineID); err != nil {
		return nil, err
	}
	if line.ReceivedQty+quantity > line.Quantity {
		return nil, errors.New("收货数量超出订购数量")
	}

	var po models.PurchaseOrder
	if err := s.gw.Find(ctx, &po, line.PurchaseOrderID); err != nil {
		return nil, err
	}
	if po.Status != models.POStatusOrdered {
		return nil, fmt.Errorf("采购单状态为%s，不能收货", po.Status)
	}

	var updated models.PurchaseOrderLine
	err := s.gw.Update(ctx, &updated, lineID, map[string]any{
		"received_qty": line.ReceivedQty + quantity,
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.inventory.AdjustStock(ctx, line.SKUID, location, quantity); err != nil {
		return nil, err
	}

	// 全部行收齐后关单
	lines, err := s.listLines(ctx, line.PurchaseOrderID)
	if err != nil {
		return nil, err
	}
	allReceived := true
	for _, l := range lines {
		if l.ReceivedQty < l.Quantity {
			allReceived = false
			break
		}
	}
	if allReceived {
		var closedPO models.PurchaseOrder
		err = s.gw.Update(ctx, &closedPO, line.PurchaseOrderID, map[string]any{
			"status": models.POStatusReceived,
		})
		if err != nil {
			return nil, err
		}
	}

	return &updated, nil
}

func (s *PurchaseOrderService) listLines(ctx context.Context, poID uint) ([]*models.PurchaseOrderLine, error) {
	var lines []*models.PurchaseOrderLine
	err := s.gw.List(ctx, &lines, gateway.Where("purchase_order_id = ?", poID))
	if err != nil {
		return nil, err
	}
	return lines, nil
}
