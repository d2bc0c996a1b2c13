package handlers

import (
	"strconv"

	"fieldops/internal/models"
	"fieldops/internal/services"
	"fieldops/pkg/pagination"
	"fieldops/pkg/response"

	"github.com/gin-gonic/gin"
)

type ContactHandler struct {
	service *services.ContactService
}

func NewContactHandler(service *services.ContactService) *ContactHandler {
	return &ContactHandler{service: service}
}

// CreateContactRequest 创建联系人请求
type CreateContactRequest struct {
	AccountID *uint  `json:"account_id"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Role      string `json:"role"`
	IsPrimary bool   `json:"is_primary"`
}

// Create 创建联系人
func (h *ContactHandler) Create(c *gin.Context) {
	var req CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	contact := &models.Contact{
		AccountID: req.AccountID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Role:      req.Role,
		IsPrimary: req.IsPrimary,
	}

	created, err := h.service.Create(c.Request.Context(), contact)
	if err != nil {
		if handleCoreError(c, err) {
			return
		}
		response.BadRequest(c, err.Error())
		return
	}
	response.Success(c, created)
}

// GetAll 联系人列表
func (h *ContactHandler) GetAll(c *gin.Context) {
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

	contacts, total, err := h.service.ListWithPage(c.Request.Context(),
		accountID, c.Query("keyword"), params.Page, params.PageSize)
	if err != nil {
		if handleCoreError(c, err) {
			return
		}
		response.ServerError(c, "查询联系人失败")
		return
	}

	response.SuccessWithPage(c, contacts, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

// GetByID 联系人详情
func (h *ContactHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "联系人ID格式错误")
		return
	}

	contact, err := h.service.GetByID(c.Request.Context(), uint(id))
	if err != nil {
		if handleCoreError(c, err) {
			return
		}
		response.ServerError(c, "查询联系人失败")
		return
	}
	response.Success(c, contact)
}

// Update 更新联系人
func (h *ContactHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "联系人ID格式错误")
		return
	}

	var req map[string]any
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	// 只接受白名单字段
	patch := map[string]any{}
	for _, key := range []string{"first_name", "last_name", "email", "phone", "role", "is_primary"} {
		if v, ok := req[key]; ok {
			patch[key] = v
		}
	}

	contact, err := h.service.Update(c.Request.Context(), uint(id), patch)
	if err != nil {
		if handleCoreError(c, err) {
			return
		}
		response.BadRequest(c, err.Error())
		return
	}
	response.Success(c, contact)
}

// Delete 删除联系人
func (h *ContactHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "联系人ID格式错误")
		return
	}

	if err := h.service.Delete(c.Request.Context(), uint(id)); err != nil {
		if handleCoreError(c, err) {
			return
		}
		response.ServerError(c, "删除联系人失败")
		return
	}
	response.SuccessWithMessage(c, "联系人已删除", nil)
}
