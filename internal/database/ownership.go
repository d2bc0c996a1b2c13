package database

import (
	"sync"

	"fieldops/internal/models"
	"fieldops/pkg/gateway"
	"fieldops/pkg/scope"
)

var (
	gatewayInstance *gateway.Gateway
	gatewayOnce     sync.Once
)

// RegisterOwnership 注册全部租户实体的归属描述
// 进程启动时调用一次，父实体必须先于子实体注册
// 新增租户实体时必须在这里补一行，否则网关对该类型一律拒绝访问
func RegisterOwnership(registry *scope.Registry) {
	// 直接租户列
	registry.MustRegister(&models.User{}, scope.Direct("TenantID", "tenant_id"))
	registry.MustRegister(&models.Account{}, scope.Direct("TenantID", "tenant_id"))
	registry.MustRegister(&models.Contact{}, scope.Direct("TenantID", "tenant_id"))
	registry.MustRegister(&models.Property{}, scope.Direct("TenantID", "tenant_id"))
	registry.MustRegister(&models.SKU{}, scope.Direct("TenantID", "tenant_id"))
	registry.MustRegister(&models.PurchaseOrder{}, scope.Direct("TenantID", "tenant_id"))
	registry.MustRegister(&models.WorkOrder{}, scope.Direct("TenantID", "tenant_id"))

	// 父链归属
	registry.MustRegister(&models.Equipment{}, scope.ViaParent(&models.Property{}, "PropertyID", "property_id"))
	registry.MustRegister(&models.StockLevel{}, scope.ViaParent(&models.SKU{}, "SKUID", "sku_id"))
	registry.MustRegister(&models.PurchaseOrderLine{}, scope.ViaParent(&models.PurchaseOrder{}, "PurchaseOrderID", "purchase_order_id"))
	registry.MustRegister(&models.WorkOrderNote{}, scope.ViaParent(&models.WorkOrder{}, "WorkOrderID", "work_order_id"))
}

// GetGateway 获取数据访问网关的单例实例
// 租户实体的读写必须经过它，不允许直接使用 GetDB 查租户表
func GetGateway() *gateway.Gateway {
	gatewayOnce.Do(func() {
		registry := scope.NewRegistry()
		RegisterOwnership(registry)
		gatewayInstance = gateway.New(GetDB(), registry)
	})
	return gatewayInstance
}
