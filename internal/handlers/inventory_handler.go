package handlers

import (
	"strconv"

	"fieldops/internal/models"
	"fieldops/internal/services"
	"fieldops/pkg/pagination"
	"fieldops/pkg/response"

	"github.com/gin-gonic/gin"
)

type InventoryHandler struct {
	service *services.InventoryService
}

func NewInventoryHandler(service *services.InventoryService) *InventoryHandler {
	return &InventoryHandler{service: service}
}

// CreateSKURequest 创建SKU请求
type CreateSKURequest struct {
	Code        string  `json:"code" binding:"required"`
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Unit        string  `json:"unit"`
	UnitPrice   float64 `json:"unit_price"`
}

// CreateSKU 创建SKU
func (h *InventoryHandler) CreateSKU(c *gin.Context) {
	var req CreateSKURequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	sku := &models.SKU{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		Unit:        req.Unit,
		UnitPrice:   req.UnitPrice,
		IsActive:    true,
	}

	created, err := h.service.CreateSKU(c.Request.Context(), sku)
	if err != nil {
		if handleCoreError(c, err) {
			return
		}
		response.BadRequest(c, err.Error())
		return
	}
	response.Success(c, created)
}

// GetSKUs SKU列表
func (h *InventoryHandler) GetSKUs(c *gin.Context) {
	params := pagination.ParsePageParams(c)
	activeOnly := c.Query("active") == "true"

	skus, total, err := h.service.ListSKUsWithPage(c.Request.Context(),
		c.Query("keyword"), activeOnly, params.Page, params.PageSize)
	if err != nil {
		if handleCoreError(c, err) {
			return
		}
		response.ServerError(c, "查询SKU失败")
		return
	}

	response.SuccessWithPage(c, skus, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

// GetSKU SKU详情（含库存水平）
func (h *InventoryHandler) GetSKU(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "SKU ID格式错误")
		return
	}

	sku, err := h.service.GetSKU(c.Request.Context(), uint(id))
	if err != nil {
		if handleCoreError(c, err) {
			return
		}
		response.ServerError(c, "查询SKU失败")
		return
	}
	response.Success(c, sku)
}

// UpdateSKU 更新SKU
func (h *InventoryHandler) UpdateSKU(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "SKU ID格式错误")
		return
	}

	var req map[string]any
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	patch := map[string]any{}
	for _, key := range []string{"name", "description", "unit", "unit_price", "is_active"} {
		if v, ok := req[key]; ok {
			patch[key] = v
		}
	}

	sku, err := h.service.UpdateSKU(c.Request.Context(), uint(id), patch)
	if err != nil {
		if handleCoreError(c, err) {
			return
		}
		response.BadRequest(c, err.Error())
		return
	}
	response.Success(c, sku)
}

// ListStock 某SKU的库存水平列表
func (h *InventoryHandler) ListStock(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "SKU ID格式错误")
		return
	}

	levels, err := h.service.ListStock(c.Request.Context(), uint(id))
	if err != nil {
		if handleCoreError(c, err) {
			return
		}
		response.ServerError(c, "查询库存失败")
		return
	}
	response.Success(c, levels)
}

// AdjustStockRequest 库存调整请求
type AdjustStockRequest struct {
	Location string `json:"location" binding:"required"`
	Delta    int    `json:"delta" binding:"required"`
}

// AdjustStock 调整库存
func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "SKU ID格式错误")
		return
	}

	var req AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	level, err := h.service.AdjustStock(c.Request.Context(), uint(id), req.Location, req.Delta)
	if err != nil {
		if handleCoreError(c, err) {
			return
		}
		response.BadRequest(c, err.Error())
		return
	}
	response.Success(c, level)
}
