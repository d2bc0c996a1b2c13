package services

import (
	"context"
	"fmt"
	"time"

	"fieldops/internal/models"
	"fieldops/pkg/gateway"
	"fieldops/pkg/logger"
	"fieldops/pkg/queue"
	"fieldops/pkg/tenantctx"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// OverdueScheduler 工单逾期巡检调度器
// 系统级任务：对每个活跃租户单独绑定提升上下文+按租户覆盖，
// 逐租户扫描，从不在无作用域的状态下碰租户数据
type OverdueScheduler struct {
	db      *gorm.DB
	gw      *gateway.Gateway
	queue   *queue.DispatchQueue
	cron    *cron.Cron
	running bool
}

// NewOverdueScheduler 创建逾期巡检调度器
func NewOverdueScheduler(db *gorm.DB, gw *gateway.Gateway, q *queue.DispatchQueue) *OverdueScheduler {
	return &OverdueScheduler{
		db:    db,
		gw:    gw,
		queue: q,
		cron:  cron.New(),
	}
}

// Start 启动调度器，每10分钟巡检一次
func (s *OverdueScheduler) Start() error {
	if s.running {
		return fmt.Errorf("调度器已经在运行")
	}

	_, err := s.cron.AddFunc("*/10 * * * *", func() {
		if err := s.Sweep(); err != nil {
			logger.GetLogger().Errorf("工单逾期巡检失败: %v", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.running = true
	logger.GetLogger().Info("工单逾期巡检调度器启动成功")
	return nil
}

// Stop 停止调度器
func (s *OverdueScheduler) Stop() {
	if !s.running {
		return
	}
	s.cron.Stop()
	s.running = false
	logger.GetLogger().Info("工单逾期巡检调度器已停止")
}

// Sweep 扫描全部活跃租户的逾期工单
func (s *OverdueScheduler) Sweep() error {
	appLogger := logger.GetLogger()

	// 租户列表本身不是租户数据，直接查
	var tenants []models.Tenant
	err := s.db.Where("status = ?", models.TenantStatusActive).Find(&tenants).Error
	if err != nil {
		return fmt.Errorf("加载租户列表失败: %v", err)
	}

	for _, tenant := range tenants {
		count, err := s.sweepTenant(tenant.ID)
		if err != nil {
			appLogger.Errorf("租户 %s (ID: %d) 逾期巡检失败: %v", tenant.Code, tenant.ID, err)
			continue
		}
		if count > 0 {
			appLogger.Infof("租户 %s 发现 %d 个逾期工单", tenant.Code, count)
		}
	}
	return nil
}

// sweepTenant 扫描单个租户
// 提升上下文只给"指名租户"的能力，查询仍由网关注入该租户的谓词
func (s *OverdueScheduler) sweepTenant(tenantID uint) (int, error) {
	ctx, err := tenantctx.Bind(context.Background(), 0, 0, true)
	if err != nil {
		return 0, err
	}
	ctx = gateway.WithTenant(ctx, tenantID)

	now := time.Now()
	var overdue []models.WorkOrder
	err = s.gw.List(ctx, &overdue,
		gateway.Where("due_at IS NOT NULL AND due_at < ?", now),
		gateway.Where("status IN ?", []string{
			models.WorkOrderStatusPending,
			models.WorkOrderStatusScheduled,
			models.WorkOrderStatusDispatched,
			models.WorkOrderStatusInProgress,
		}))
	if err != nil {
		return 0, err
	}

	for _, wo := range overdue {
		event := &queue.DispatchEvent{
			EventID:     uuid.New().String(),
			Kind:        queue.EventWorkOrderOverdue,
			TenantID:    wo.TenantID,
			WorkOrderID: wo.ID,
			Number:      wo.Number,
		}
		if wo.AssigneeID != nil {
			event.AssigneeID = *wo.AssigneeID
		}
		if err := s.queue.Publish(ctx, event); err != nil {
			logger.GetLogger().Errorf("发布逾期事件失败 (工单 %s): %v", wo.Number, err)
		}
	}
	return len(overdue), nil
}
