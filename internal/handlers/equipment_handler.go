package handlers

import (
	"strconv"

	"fieldops/internal/models"
	"fieldops/internal/services"
	"fieldops/pkg/pagination"
	"fieldops/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

type EquipmentHandler struct {
	service *services.EquipmentService
}

func NewEquipmentHandler(service *services.EquipmentService) *EquipmentHandler {
	return &EquipmentHandler{service: service}
}

// CreateEquipmentRequest 创建设备请求
type CreateEquipmentRequest struct {
	PropertyID   uint           `json:"property_id" binding:"required"`
	Name         string         `json:"name" binding:"required"`
	SerialNo     string         `json:"serial_no"`
	Manufacturer string         `json:"manufacturer"`
	ModelNo      string         `json:"model_no"`
	Attributes   datatypes.JSON `json:"attributes"`
}

// Create 创建设备
func (h *EquipmentHandler) Create(c *gin.Context) {
	var req CreateEquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	equipment := &models.Equipment{
		PropertyID:   req.PropertyID,
		Name:         req.Name,
		SerialNo:     req.SerialNo,
		Manufacturer: req.Manufacturer,
		ModelNo:      req.ModelNo,
		Attributes:   req.Attributes,
	}

	created, err := h.service.Create(c.Request.Context(), equipment)
	if err != nil {
		if handleCoreError(c, err) {
			return
		}
		response.BadRequest(c, err.Error())
		return
	}
	response.Success(c, created)
}

// GetAll 设备列表
func (h *EquipmentHandler) GetAll(c *gin.Context) {
	params := pagination.ParsePageParams(c)

	var propertyID uint
	if v := c.Query("property_id"); v != "" {
		parsed, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			response.BadRequest(c, "物业ID格式错误")
			return
		}
		propertyID = uint(parsed)
	}

	equipment, total, err := h.service.ListWithPage(c.Request.Context(),
		propertyID, c.Query("status"), params.Page, params.PageSize)
	if err != nil {
		if handleCoreError(c, err) {
			return
		}
		response.ServerError(c, "查询设备失败")
		return
	}

	response.SuccessWithPage(c, equipment, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

// GetByID 设备详情
func (h *EquipmentHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "设备ID格式错误")
		return
	}

	equipment, err := h.service.GetByID(c.Request.Context(), uint(id))
	if err != nil {
		if handleCoreError(c, err) {
			return
		}
		response.ServerError(c, "查询设备失败")
		return
	}
	response.Success(c, equipment)
}

// Update 更新设备
func (h *EquipmentHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "设备ID格式错误")
		return
	}

	var req map[string]any
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	// property_id在白名单内：网关校验新物业必须同租户
	patch := map[string]any{}
	for _, key := range []string{"name", "serial_no", "manufacturer", "model_no", "status", "property_id"} {
		if v, ok := req[key]; ok {
			patch[key] = v
		}
	}

	equipment, err := h.service.Update(c.Request.Context(), uint(id), patch)
	if err != nil {
		if handleCoreError(c, err) {
			return
		}
		response.BadRequest(c, err.Error())
		return
	}
	response.Success(c, equipment)
}

// Delete 删除设备
func (h *EquipmentHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "设备ID格式错误")
		return
	}

	if err := h.service.Delete(c.Request.Context(), uint(id)); err != nil {
		if handleCoreError(c, err) {
			return
		}
		response.ServerError(c, "删除设备失败")
		return
	}
	response.SuccessWithMessage(c, "设备已删除", nil)
}
