package handlers

import (
	"strconv"

	"fieldops/internal/models"
	"fieldops/internal/services"
	"fieldops/pkg/pagination"
	"fieldops/pkg/response"

	"github.com/gin-gonic/gin"
)

type AccountHandler struct {
	service *services.AccountService
}

func NewAccountHandler(service *services.AccountService) *AccountHandler {
	return &AccountHandler{service: service}
}

// CreateAccountRequest 创建账户请求
type CreateAccountRequest struct {
	AccountNo string `json:"account_no" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Type      string `json:"type"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Address   string `json:"address"`
	Notes     string `json:"notes"`
}

// Create 创建账户
func (h *AccountHandler) Create(c *gin.Context) {
	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	account := &models.Account{
		AccountNo: req.AccountNo,
		Name:      req.Name,
		Type:      req.Type,
		Phone:     req.Phone,
		Email:     req.Email,
		Address:   req.Address,
		Notes:     req.Notes,
	}
	if userID, exists := c.Get("user_id"); exists {
		account.CreatedBy = userID.(uint)
	}

	created, err := h.service.Create(c.Request.Context(), account)
	if err != nil {
		if handleCoreError(c, err) {
			return
		}
		response.BadRequest(c, err.Error())
		return
	}
	response.Success(c, created)
}

// GetAll 账户列表
func (h *AccountHandler) GetAll(c *gin.Context) {
	params := pagination.ParsePageParams(c)

	accounts, total, err := h.service.ListWithPage(c.Request.Context(),
		c.Query("type"), c.Query("status"), c.Query("keyword"),
		params.Page, params.PageSize)
	if err != nil {
		if handleCoreError(c, err) {
			return
		}
		response.ServerError(c, "查询账户失败")
		return
	}

	response.SuccessWithPage(c, accounts, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

// GetByID 账户详情
func (h *AccountHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "账户ID格式错误")
		return
	}

	account, err := h.service.GetByID(c.Request.Context(), uint(id))
	if err != nil {
		if handleCoreError(c, err) {
			return
		}
		response.ServerError(c, "查询账户失败")
		return
	}
	response.Success(c, account)
}

// UpdateAccountRequest 更新账户请求
type UpdateAccountRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Status  string `json:"status"`
	Notes   string `json:"notes"`
}

// Update 更新账户
func (h *AccountHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "账户ID格式错误")
		return
	}

	var req UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	patch := map[string]any{}
	if req.Name != "" {
		patch["name"] = req.Name
	}
	if req.Phone != "" {
		patch["phone"] = req.Phone
	}
	if req.Email != "" {
		patch["email"] = req.Email
	}
	if req.Address != "" {
		patch["address"] = req.Address
	}
	if req.Status != "" {
		patch["status"] = req.Status
	}
	if req.Notes != "" {
		patch["notes"] = req.Notes
	}

	account, err := h.service.Update(c.Request.Context(), uint(id), patch)
	if err != nil {
		if handleCoreError(c, err) {
			return
		}
		response.BadRequest(c, err.Error())
		return
	}
	response.Success(c, account)
}

// Delete 删除账户
func (h *AccountHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "账户ID格式错误")
		return
	}

	if err := h.service.Delete(c.Request.Context(), uint(id)); err != nil {
		if handleCoreError(c, err) {
			return
		}
		response.BadRequest(c, err.Error())
		return
	}
	response.SuccessWithMessage(c, "账户已删除", nil)
}
