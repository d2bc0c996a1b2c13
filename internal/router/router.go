package router

import (
	"time"

	"fieldops/internal/database"
	"fieldops/internal/handlers"
	"fieldops/internal/middleware"
	"fieldops/internal/services"
	"fieldops/pkg/response"

	"github.com/gin-gonic/gin"
)

// SetupRouter 设置路由
func SetupRouter() *gin.Engine {
	router := gin.New()

	// 中间件
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.SetupCORS())

	// 注册路由
	registerRoutes(router)
	return router
}

// 注册所有路由
func registerRoutes(router *gin.Engine) {

	auth := middleware.NewAuthMiddleware()
	gw := database.GetGateway()
	dispatchQueue := database.GetDispatchQueue()

	userService := services.NewUserService(database.GetDB(), gw)
	tenantService := services.NewTenantService()
	accountService := services.NewAccountService(gw)
	contactService := services.NewContactService(gw)
	propertyService := services.NewPropertyService(gw)
	equipmentService := services.NewEquipmentService(gw)
	inventoryService := services.NewInventoryService(gw)
	purchaseOrderService := services.NewPurchaseOrderService(gw, inventoryService)
	workOrderService := services.NewWorkOrderService(gw, dispatchQueue)

	// API路由组
	api := router.Group("/api/v1")
	{
		// 健康检查接口
		api.GET("/health", healthCheck)
		api.GET("/ping", ping)

		// JWT认证路由（无需认证）
		authHandler := handlers.NewAuthHandler(userService, tenantService)
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)          // 用户登录
			authGroup.POST("/refresh", authHandler.RefreshToken) // 刷新Token

			// 获取当前用户完整信息
			authGroup.GET("/me", auth.RequireLogin(), authHandler.Me)

			// 租户切换（仅平台管理员）
			authGroup.POST("/switch-tenant", auth.RequireLogin(), authHandler.SwitchTenant)
		}

		// 租户路由（仅平台管理员）
		tenantHandler := handlers.NewTenantHandler(tenantService)
		tenants := api.Group("/tenants", auth.RequireLogin(), auth.RequirePlatformAdmin())
		{
			tenants.POST("", tenantHandler.Create)
			tenants.GET("", tenantHandler.GetAll)
			tenants.GET("/stats", tenantHandler.Stats)
			tenants.GET("/:id", tenantHandler.GetByID)
			tenants.DELETE("/:id", tenantHandler.Delete)
			tenants.POST("/:id/activate", tenantHandler.Activate)
			tenants.POST("/:id/deactivate", tenantHandler.Deactivate)
		}

		// 用户路由（当前租户内）
		userHandler := handlers.NewUserHandler(userService, gw)
		users := api.Group("/users", auth.RequireLogin())
		{
			users.POST("", userHandler.Create)
			users.GET("", userHandler.GetAll)
			users.GET("/:id", userHandler.GetByID)
		}

		// 账户路由
		accountHandler := handlers.NewAccountHandler(accountService)
		accounts := api.Group("/accounts", auth.RequireLogin())
		{
			accounts.POST("", accountHandler.Create)
			accounts.GET("", accountHandler.GetAll)
			accounts.GET("/:id", accountHandler.GetByID)
			accounts.PUT("/:id", accountHandler.Update)
			accounts.DELETE("/:id", accountHandler.Delete)
		}

		// 联系人路由
		contactHandler := handlers.NewContactHandler(contactService)
		contacts := api.Group("/contacts", auth.RequireLogin())
		{
			contacts.POST("", contactHandler.Create)
			contacts.GET("", contactHandler.GetAll)
			contacts.GET("/:id", contactHandler.GetByID)
			contacts.PUT("/:id", contactHandler.Update)
			contacts.DELETE("/:id", contactHandler.Delete)
		}

		// 物业路由
		propertyHandler := handlers.NewPropertyHandler(propertyService)
		properties := api.Group("/properties", auth.RequireLogin())
		{
			properties.POST("", propertyHandler.Create)
			properties.GET("", propertyHandler.GetAll)
			properties.GET("/:id", propertyHandler.GetByID)
			properties.PUT("/:id", propertyHandler.Update)
			properties.DELETE("/:id", propertyHandler.Delete)
		}

		// 设备路由（经物业间接归属租户）
		equipmentHandler := handlers.NewEquipmentHandler(equipmentService)
		equipment := api.Group("/equipment", auth.RequireLogin())
		{
			equipment.POST("", equipmentHandler.Create)
			equipment.GET("", equipmentHandler.GetAll)
			equipment.GET("/:id", equipmentHandler.GetByID)
			equipment.PUT("/:id", equipmentHandler.Update)
			equipment.DELETE("/:id", equipmentHandler.Delete)
		}

		// 库存路由
		inventoryHandler := handlers.NewInventoryHandler(inventoryService)
		skus := api.Group("/skus", auth.RequireLogin())
		{
			skus.POST("", inventoryHandler.CreateSKU)
			skus.GET("", inventoryHandler.GetSKUs)
			skus.GET("/:id", inventoryHandler.GetSKU)
			skus.PUT("/:id", inventoryHandler.UpdateSKU)
			skus.GET("/:id/stock", inventoryHandler.ListStock)
			skus.POST("/:id/adjust-stock", inventoryHandler.AdjustStock)
		}

		// 采购单路由
		purchaseOrderHandler := handlers.NewPurchaseOrderHandler(purchaseOrderService)
		purchaseOrders := api.Group("/purchase-orders", auth.RequireLogin())
		{
			purchaseOrders.POST("", purchaseOrderHandler.Create)
			purchaseOrders.GET("", purchaseOrderHandler.GetAll)
			purchaseOrders.GET("/:id", purchaseOrderHandler.GetByID)
			purchaseOrders.POST("/:id/lines", purchaseOrderHandler.AddLine)
			purchaseOrders.POST("/:id/submit", purchaseOrderHandler.Submit)
			purchaseOrders.POST("/lines/:line_id/receive", purchaseOrderHandler.ReceiveLine)
		}

		// 工单路由
		workOrderHandler := handlers.NewWorkOrderHandler(workOrderService)
		workOrders := api.Group("/work-orders", auth.RequireLogin())
		{
			workOrders.POST("", workOrderHandler.Create)
			workOrders.GET("", workOrderHandler.GetAll)
			workOrders.GET("/:id", workOrderHandler.GetByID)
			workOrders.PUT("/:id", workOrderHandler.Update)
			workOrders.POST("/:id/assign", workOrderHandler.Assign)
			workOrders.POST("/:id/start", workOrderHandler.Start)
			workOrders.POST("/:id/complete", workOrderHandler.Complete)
			workOrders.POST("/:id/cancel", workOrderHandler.Cancel)
			workOrders.POST("/:id/notes", workOrderHandler.AddNote)
		}

		// 派单看板路由
		dispatchHandler := handlers.NewDispatchHandler()
		dispatch := api.Group("/dispatch")
		{
			// WebSocket连接认证走查询参数token
			dispatch.GET("/board", dispatchHandler.Board)
			dispatch.GET("/events", auth.RequireLogin(), dispatchHandler.RecentEvents)
		}
	}
}

func healthCheck(c *gin.Context) {
	data := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now(),
		"service":   "FieldOps",
		"version":   "1.0.0",
	}
	response.Success(c, data)
}

func ping(c *gin.Context) {
	response.SuccessWithMessage(c, "pong", nil)
}
