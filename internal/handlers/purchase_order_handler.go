package handlers

import (
	"strconv"
	"time"

	"fieldops/internal/models"
	"fieldops/internal/services"
	"fieldops/pkg/pagination"
	"fieldops/pkg/response"

	"github.com/gin-gonic/gin"
)

type PurchaseOrderHandler struct {
	service *services.PurchaseOrderService
}

func NewPurchaseOrderHandler(service *services.PurchaseOrderService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{service: service}
}

// CreatePORequest 创建采购单请求
type CreatePORequest struct {
	VendorID   *uint      `json:"vendor_id"`
	ExpectedAt *time.Time `json:"expected_at"`
	Notes      string     `json:"notes"`
}

// Create 创建采购单
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	var req CreatePORequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	po := &models.PurchaseOrder{
		VendorID:   req.VendorID,
		ExpectedAt: req.ExpectedAt,
		Notes:      req.Notes,
	}
	if userID, exists := c.Get("user_id"); exists {
		po.CreatedBy = userID.(uint)
	}

	created, err := h.service.Create(c.Request.Context(), po)
	if err != nil {
		if handleCoreError(c, err) {
			return
		}
		response.BadRequest(c, err.Error())
		return
	}
	response.Success(c, created)
}

// GetAll 采购单列表
func (h *PurchaseOrderHandler) GetAll(c *gin.Context) {
	params := pagination.ParsePageParams(c)

	orders, total, err := h.service.ListWithPage(c.Request.Context(),
		c.Query("status"), params.Page, params.PageSize)
	if err != nil {
		if handleCoreError(c, err) {
			return
		}
		response.ServerError(c, "查询采购单失败")
		return
	}

	response.SuccessWithPage(c, orders, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

// GetByID 采购单详情
func (h *PurchaseOrderHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "采购单ID格式错误")
		return
	}

	po, err := h.service.GetByID(c.Request.Context(), uint(id))
	if err != nil {
		if handleCoreError(c, err) {
			return
		}
		response.ServerError(c, "查询采购单失败")
		return
	}
	response.Success(c, po)
}

// AddLineRequest 添加采购单行请求
type AddLineRequest struct {
	SKUID     uint    `json:"sku_id" binding:"required"`
	Quantity  int     `json:"quantity" binding:"required"`
	UnitPrice float64 `json:"unit_price"`
}

// AddLine 添加采购单行
func (h *PurchaseOrderHandler) AddLine(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "采购单ID格式错误")
		return
	}

	var req AddLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	line, err := h.service.AddLine(c.Request.Context(), uint(id), req.SKUID, req.Quantity, req.UnitPrice)
	if err != nil {
		if handleCoreError(c, err) {
			return
		}
		response.BadRequest(c, err.Error())
		return
	}
	response.Success(c, line)
}

// Submit 提交采购单
func (h *PurchaseOrderHandler) Submit(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "采购单ID格式错误")
		return
	}

	po, err := h.service.Submit(c.Request.Context(), uint(id))
	if err != nil {
		if handleCoreError(c, err) {
			return
		}
		response.BadRequest(c, err.Error())
		return
	}
	response.Success(c, po)
}

// ReceiveLineRequest 收货请求
type ReceiveLineRequest struct {
	Quantity int    `json:"quantity" binding:"required"`
	Location string `json:"location"`
}

// ReceiveLine 采购单行收货
func (h *PurchaseOrderHandler) ReceiveLine(c *gin.Context) {
	lineID, err := strconv.ParseUint(c.Param("line_id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "行ID格式错误")
		return
	}

	var req ReceiveLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	line, err := h.service.ReceiveLine(c.Request.Context(), uint(lineID), req.Quantity, req.Location)
	if err != nil {
		if handleCoreError(c, err) {
			return
		}
		response.BadRequest(c, err.Error())
		return
	}
	response.Success(c, line)
}
