package handlers

import (
	"strconv"
	"time"

	"fieldops/internal/models"
	"fieldops/internal/services"
	"fieldops/pkg/pagination"
	"fieldops/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

type WorkOrderHandler struct {
	service *services.WorkOrderService
}

func NewWorkOrderHandler(service *services.WorkOrderService) *WorkOrderHandler {
	return &WorkOrderHandler{service: service}
}

// CreateWorkOrderRequest 创建工单请求
type CreateWorkOrderRequest struct {
	Title        string         `json:"title" binding:"required"`
	Description  string         `json:"description"`
	Priority     string         `json:"priority" binding:"omitempty,oneof=low normal high urgent"`
	AccountID    *uint          `json:"account_id"`
	PropertyID   *uint          `json:"property_id"`
	EquipmentID  *uint          `json:"equipment_id"`
	DueAt        *time.Time     `json:"due_at"`
	CustomFields datatypes.JSON `json:"custom_fields"`
}

// Create 创建工单
func (h *WorkOrderHandler) Create(c *gin.Context) {
	var req CreateWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	wo := &models.WorkOrder{
		Title:        req.Title,
		Description:  req.Description,
		Priority:     req.Priority,
		AccountID:    req.AccountID,
		PropertyID:   req.PropertyID,
		EquipmentID:  req.EquipmentID,
		DueAt:        req.DueAt,
		CustomFields: req.CustomFields,
	}

	created, err := h.service.Create(c.Request.Context(), wo)
	if err != nil {
		if handleCoreError(c, err) {
			return
		}
		response.BadRequest(c, err.Error())
		return
	}
	response.Success(c, created)
}

// GetAll 工单列表
func (h *WorkOrderHandler) GetAll(c *gin.Context) {
	params := pagination.ParsePageParams(c)

	var assigneeID uint
	if v := c.Query("assignee_id"); v != "" {
		parsed, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			response.BadRequest(c, "技师ID格式错误")
			return
		}
		assigneeID = uint(parsed)
	}

	orders, total, err := h.service.ListWithPage(c.Request.Context(),
		c.Query("status"), c.Query("priority"), assigneeID, params.Page, params.PageSize)
	if err != nil {
		if handleCoreError(c, err) {
			return
		}
		response.ServerError(c, "查询工单失败")
		return
	}

	response.SuccessWithPage(c, orders, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

// GetByID 工单详情（含备注）
func (h *WorkOrderHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "工单ID格式错误")
		return
	}

	wo, err := h.service.GetByID(c.Request.Context(), uint(id))
	if err != nil {
		if handleCoreError(c, err) {
			return
		}
		response.ServerError(c, "查询工单失败")
		return
	}
	response.Success(c, wo)
}

// Update 更新工单基础字段
func (h *WorkOrderHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "工单ID格式错误")
		return
	}

	var req map[string]any
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	patch := map[string]any{}
	for _, key := range []string{"title", "description", "priority", "due_at", "custom_fields"} {
		if v, ok := req[key]; ok {
			patch[key] = v
		}
	}

	wo, err := h.service.Update(c.Request.Context(), uint(id), patch)
	if err != nil {
		if handleCoreError(c, err) {
			return
		}
		response.BadRequest(c, err.Error())
		return
	}
	response.Success(c, wo)
}

// AssignRequest 派单请求
type AssignRequest struct {
	TechnicianID uint       `json:"technician_id" binding:"required"`
	ScheduledAt  *time.Time `json:"scheduled_at"`
}

// Assign 派单
func (h *WorkOrderHandler) Assign(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "工单ID格式错误")
		return
	}

	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	wo, err := h.service.Assign(c.Request.Context(), uint(id), req.TechnicianID, req.ScheduledAt)
	if err != nil {
		if handleCoreError(c, err) {
			return
		}
		response.BadRequest(c, err.Error())
		return
	}
	response.SuccessWithMessage(c, "派单成功", wo)
}

// Start 开工
func (h *WorkOrderHandler) Start(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "工单ID格式错误")
		return
	}

	wo, err := h.service.Start(c.Request.Context(), uint(id))
	if err != nil {
		if handleCoreError(c, err) {
			return
		}
		response.BadRequest(c, err.Error())
		return
	}
	response.Success(c, wo)
}

// Complete 完工
func (h *WorkOrderHandler) Complete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "工单ID格式错误")
		return
	}

	wo, err := h.service.Complete(c.Request.Context(), uint(id))
	if err != nil {
		if handleCoreError(c, err) {
			return
		}
		response.BadRequest(c, err.Error())
		return
	}
	response.Success(c, wo)
}

// Cancel 取消工单
func (h *WorkOrderHandler) Cancel(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "工单ID格式错误")
		return
	}

	wo, err := h.service.Cancel(c.Request.Context(), uint(id))
	if err != nil {
		if handleCoreError(c, err) {
			return
		}
		response.BadRequest(c, err.Error())
		return
	}
	response.Success(c, wo)
}

// AddNoteRequest 添加备注请求
type AddNoteRequest struct {
	Body string `json:"body" binding:"required"`
}

// AddNote 添加工单备注
func (h *WorkOrderHandler) AddNote(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "工单ID格式错误")
		return
	}

	var req AddNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	note, err := h.service.AddNote(c.Request.Context(), uint(id), req.Body)
	if err != nil {
		if handleCoreError(c, err) {
			return
		}
		response.BadRequest(c, err.Error())
		return
	}
	response.Success(c, note)
}
