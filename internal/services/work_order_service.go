package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fieldops/internal/models"
	"fieldops/pkg/gateway"
	"fieldops/pkg/logger"
	"fieldops/pkg/queue"
	"fieldops/pkg/tenantctx"

	"github.com/google/uuid"
)

// WorkOrderService 工单服务
// 工单读写经网关；派单动作额外发布事件到派单队列
type WorkOrderService struct {
	gw    *gateway.Gateway
	queue *queue.DispatchQueue
}

func NewWorkOrderService(gw *gateway.Gateway, q *queue.DispatchQueue) *WorkOrderService {
	return &WorkOrderService{gw: gw, queue: q}
}

// generateWONumber 生成工单编号
func generateWONumber() string {
	return "WO-" + strings.ToUpper(uuid.New().String()[:8])
}

// Create 创建工单
// 账户/物业/设备引用都必须落在本租户内，越界引用等同不存在
func (s *WorkOrderService) Create(ctx context.Context, wo *models.WorkOrder) (*models.WorkOrder, error) {
	if wo.Title == "" {
		return nil, errors.New("工单标题不能为空")
	}
	if wo.Number == "" {
		wo.Number = generateWONumber()
	}
	if wo.Priority == "" {
		wo.Priority = models.WorkOrderPriorityNormal
	}
	if wo.Status == "" {
		wo.Status = models.WorkOrderStatusPending
	}

	if wo.AccountID != nil {
		var account models.Account
		if err := s.gw.Find(ctx, &account, *wo.AccountID); err != nil {
			return nil, err
		}
	}
	if wo.PropertyID != nil {
		var property models.Property
		if err := s.gw.Find(ctx, &property, *wo.PropertyID); err != nil {
			return nil, err
		}
	}
	if wo.EquipmentID != nil {
		var equipment models.Equipment
		if err := s.gw.Find(ctx, &equipment, *wo.EquipmentID); err != nil {
			return nil, err
		}
		// 设备和物业同时指定时必须一致
		if wo.PropertyID != nil && equipment.PropertyID != *wo.PropertyID {
			return nil, errors.New("设备不属于指定物业")
		}
	}

	if cc, err := tenantctx.Current(ctx); err == nil {
		wo.CreatedBy = cc.CallerID
	}

	if err := s.gw.Create(ctx, wo); err != nil {
		return nil, err
	}
	return wo, nil
}

// GetByID 按ID获取工单（带备注）
func (s *WorkOrderService) GetByID(ctx context.Context, id uint) (*models.WorkOrder, error) {
	var wo models.WorkOrder
	if err := s.gw.Find(ctx, &wo, id); err != nil {
		return nil, err
	}

	var notes []models.WorkOrderNote
	err := s.gw.List(ctx, &notes, gateway.Where("work_order_id = ?", id), gateway.Order("id"))
	if err != nil {
		return nil, err
	}
	wo.Notes = notes
	return &wo, nil
}

// ListWithPage 分页列表
func (s *WorkOrderService) ListWithPage(ctx context.Context, status, priority string, assigneeID uint, page, pageSize int) ([]*models.WorkOrder, int64, error) {
	var opts []gateway.QueryOption
	if status != "" {
		opts = append(opts, gateway.Where("status = ?", status))
	}
	if priority != "" {
		opts = append(opts, gateway.Where("priority = ?", priority))
	}
	if assigneeID > 0 {
		opts = append(opts, gateway.Where("assignee_id = ?", assigneeID))
	}

	total, err := s.gw.Count(ctx, &models.WorkOrder{}, opts...)
	if err != nil {
		return nil, 0, err
	}

	var orders []*models.WorkOrder
	listOpts := append(opts, gateway.Order("id DESC"), gateway.Page(page, pageSize))
	if err := s.gw.List(ctx, &orders, listOpts...); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// Update 更新工单基础字段
func (s *WorkOrderService) Update(ctx context.Context, id uint, patch map[string]any) (*models.WorkOrder, error) {
	var wo models.WorkOrder
	if err := s.gw.Update(ctx, &wo, id, patch); err != nil {
		return nil, err
	}
	return &wo, nil
}

// Assign 派单
// 技师必须是本租户的激活技师（经网关查用户表，作用域一致）
func (s *WorkOrderService) Assign(ctx context.Context, id, technicianID uint, scheduledAt *time.Time) (*models.WorkOrder, error) {
	wo, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch wo.Status {
	case models.WorkOrderStatusCompleted, models.WorkOrderStatusCancelled:
		return nil, fmt.Errorf("工单状态为%s，不能派单", wo.Status)
	}

	var technician models.User
	if err := s.gw.Find(ctx, &technician, technicianID); err != nil {
		return nil, err
	}
	if !technician.IsTechnician || technician.Status != models.UserStatusActive {
		return nil, errors.New("指定用户不是可派单的技师")
	}

	patch := map[string]any{
		"assignee_id": technicianID,
		"status":      models.WorkOrderStatusDispatched,
	}
	if scheduledAt != nil {
		patch["scheduled_at"] = scheduledAt
	}

	var updated models.WorkOrder
	if err := s.gw.Update(ctx, &updated, id, patch); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, queue.EventWorkOrderAssigned, &updated)
	return &updated, nil
}

// Start 开工
func (s *WorkOrderService) Start(ctx context.Context, id uint) (*models.WorkOrder, error) {
	wo, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if wo.Status != models.WorkOrderStatusDispatched && wo.Status != models.WorkOrderStatusScheduled {
		return nil, fmt.Errorf("工单状态为%s，不能开工", wo.Status)
	}

	now := time.Now()
	var updated models.WorkOrder
	err = s.gw.Update(ctx, &updated, id, map[string]any{
		"status":     models.WorkOrderStatusInProgress,
		"started_at": &now,
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, queue.EventWorkOrderStarted, &updated)
	return &updated, nil
}

// Complete 完工
func (s *WorkOrderService) Complete(ctx context.Context, id uint) (*models.WorkOrder, error) {
	wo, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if wo.Status != models.WorkOrderStatusInProgress {
		return nil, fmt.Errorf("工单状态为%s，不能完工", wo.Status)
	}

	now := time.Now()
	var updated models.WorkOrder
	err = s.gw.Update(ctx, &updated, id, map[string]any{
		"status":       models.WorkOrderStatusCompleted,
		"completed_at": &now,
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, queue.EventWorkOrderCompleted, &updated)
	return &updated, nil
}

// Cancel 取消工单
func (s *WorkOrderService) Cancel(ctx context.Context, id uint) (*models.WorkOrder, error) {
	wo, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if wo.Status == models.WorkOrderStatusCompleted || wo.Status == models.WorkOrderStatusCancelled {
		return nil, fmt.Errorf("工单状态为%s，不能取消", wo.Status)
	}

	var updated models.WorkOrder
	err = s.gw.Update(ctx, &updated, id, map[string]any{
		"status": models.WorkOrderStatusCancelled,
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, queue.EventWorkOrderCancelled, &updated)
	return &updated, nil
}

// AddNote 添加工单备注
// 备注经工单间接归属租户：work_order_id越界时创建直接被网关拒绝
func (s *WorkOrderService) AddNote(ctx context.Context, workOrderID uint, body string) (*models.WorkOrderNote, error) {
	if body == "" {
		return nil, errors.New("备注内容不能为空")
	}

	note := &models.WorkOrderNote{
		WorkOrderID: workOrderID,
		Body:        body,
	}
	if cc, err := tenantctx.Current(ctx); err == nil {
		note.AuthorID = cc.CallerID
	}

	if err := s.gw.Create(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

// publishEvent 发布派单事件，失败只记日志不影响主流程
func (s *WorkOrderService) publishEvent(ctx context.Context, kind string, wo *models.WorkOrder) {
	if s.queue == nil {
		return
	}

	event := &queue.DispatchEvent{
		EventID:     uuid.New().String(),
		Kind:        kind,
		TenantID:    wo.TenantID,
		WorkOrderID: wo.ID,
		Number:      wo.Number,
	}
	if wo.AssigneeID != nil {
		event.AssigneeID = *wo.AssigneeID
	}
	if cc, err := tenantctx.Current(ctx); err == nil {
		event.ActorID = cc.CallerID
	}

	if err := s.queue.Publish(ctx, event); err != nil {
		logger.GetLogger().Errorf("发布派单事件失败: %v", err)
	}
}
