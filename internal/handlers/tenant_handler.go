package handlers

import (
	"strconv"

	"fieldops/internal/services"
	"fieldops/pkg/pagination"
	"fieldops/pkg/response"

	"github.com/gin-gonic/gin"
)

// TenantHandler 租户管理（仅平台管理员）
type TenantHandler struct {
	service *services.TenantService
}

func NewTenantHandler(service *services.TenantService) *TenantHandler {
	return &TenantHandler{service: service}
}

// CreateTenantRequest 创建租户请求
type CreateTenantRequest struct {
	Name string `json:"name" binding:"required"`
	Code string `json:"code" binding:"required"`
}

// Create 创建租户
func (h *TenantHandler) Create(c *gin.Context) {
	var req CreateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	tenant, err := h.service.Create(req.Name, req.Code)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, tenant)
}

// GetAll 租户列表
func (h *TenantHandler) GetAll(c *gin.Context) {
	params := pagination.ParsePageParams(c)
	status := c.Query("status")
	keyword := c.Query("keyword")

	tenants, total, err := h.service.GetWithFiltersAndPage(status, keyword, params.Page, params.PageSize)
	if err != nil {
		response.ServerError(c, "查询租户失败")
		return
	}

	response.SuccessWithPage(c, tenants, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

// GetByID 租户详情
func (h *TenantHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "租户ID格式错误")
		return
	}

	tenant, err := h.service.GetByID(uint(id))
	if err != nil {
		response.NotFound(c, "租户不存在")
		return
	}

	response.Success(c, tenant)
}

// Activate 启用租户
func (h *TenantHandler) Activate(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "租户ID格式错误")
		return
	}

	if err := h.service.Activate(uint(id)); err != nil {
		response.ServerError(c, "启用租户失败")
		return
	}
	response.SuccessWithMessage(c, "租户已启用", nil)
}

// Deactivate 停用租户
func (h *TenantHandler) Deactivate(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "租户ID格式错误")
		return
	}

	if err := h.service.Deactivate(uint(id)); err != nil {
		response.ServerError(c, "停用租户失败")
		return
	}
	response.SuccessWithMessage(c, "租户已停用", nil)
}

// Delete 删除租户（仅限无数据的租户）
func (h *TenantHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "租户ID格式错误")
		return
	}

	if err := h.service.Delete(uint(id)); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.SuccessWithMessage(c, "租户已删除", nil)
}

// Stats 租户统计
func (h *TenantHandler) Stats(c *gin.Context) {
	stats, err := h.service.GetStats()
	if err != nil {
		response.ServerError(c, "查询统计失败")
		return
	}
	response.Success(c, stats)
}
