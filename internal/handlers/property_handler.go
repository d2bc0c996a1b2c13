package handlers

import (
	"strconv"

	"fieldops/internal/models"
	"fieldops/internal/services"
	"fieldops/pkg/pagination"
	"fieldops/pkg/response"

	"github.com/gin-gonic/gin"
)

type PropertyHandler struct {
	service *services.PropertyService
}

func NewPropertyHandler(service *services.PropertyService) *PropertyHandler {
	return &PropertyHandler{service: service}
}

// CreatePropertyRequest 创建物业请求
type CreatePropertyRequest struct {
	AccountID *uint  `json:"account_id"`
	Name      string `json:"name" binding:"required"`
	Address   string `json:"address" binding:"required"`
	City      string `json:"city"`
	Province  string `json:"province"`
	Zip       string `json:"zip"`
	Type      string `json:"type"`
}

// Create 创建物业
func (h *PropertyHandler) Create(c *gin.Context) {
	var req CreatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	property := &models.Property{
		AccountID: req.AccountID,
		Name:      req.Name,
		Address:   req.Address,
		City:      req.City,
		Province:  req.Province,
		Zip:       req.Zip,
		Type:      req.Type,
	}

	created, err := h.service.Create(c.Request.Context(), property)
	if err != nil {
		if handleCoreError(c, err) {
			return
		}
		response.BadRequest(c, err.Error())
		return
	}
	response.Success(c, created)
}

// GetAll 物业列表
func (h *PropertyHandler) GetAll(c *gin.Context) {
	params := pagination.ParsePageParams(c)

	var accountID uint
	if v := c.Query("account_id"); v != "" {
		parsed, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			response.BadRequest(c, "账户ID格式错误")
			return
		}
		accountID = uint(parsed)
	}

	properties, total, err := h.service.ListWithPage(c.Request.Context(),
		accountID, c.Query("keyword"), params.Page, params.PageSize)
	if err != nil {
		if handleCoreError(c, err) {
			return
		}
		response.ServerError(c, "查询物业失败")
		return
	}

	response.SuccessWithPage(c, properties, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

// GetByID 物业详情（含设备）
func (h *PropertyHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "物业ID格式错误")
		return
	}

	property, err := h.service.GetByID(c.Request.Context(), uint(id))
	if err != nil {
		if handleCoreError(c, err) {
			return
		}
		response.ServerError(c, "查询物业失败")
		return
	}
	response.Success(c, property)
}

// Update 更新物业
func (h *PropertyHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "物业ID格式错误")
		return
	}

	var req map[string]any
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	patch := map[string]any{}
	for _, key := range []string{"name", "address", "city", "province", "zip", "type", "status"} {
		if v, ok := req[key]; ok {
			patch[key] = v
		}
	}

	property, err := h.service.Update(c.Request.Context(), uint(id), patch)
	if err != nil {
		if handleCoreError(c, err) {
			return
		}
		response.BadRequest(c, err.Error())
		return
	}
	response.Success(c, property)
}

// Delete 删除物业
func (h *PropertyHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "物业ID格式错误")
		return
	}

	if err := h.service.Delete(c.Request.Context(), uint(id)); err != nil {
		if handleCoreError(c, err) {
			return
		}
		response.BadRequest(c, err.Error())
		return
	}
	response.SuccessWithMessage(c, "物业已删除", nil)
}
