package handlers

import (
	"strconv"

	"fieldops/internal/models"
	"fieldops/internal/services"
	"fieldops/pkg/gateway"
	"fieldops/pkg/pagination"
	"fieldops/pkg/response"

	"github.com/gin-gonic/gin"
)

// UserHandler 租户内用户管理
// 创建走UserService（密码哈希），查询走网关（租户作用域）
type UserHandler struct {
	service *services.UserService
	gw      *gateway.Gateway
}

func NewUserHandler(service *services.UserService, gw *gateway.Gateway) *UserHandler {
	return &UserHandler{service: service, gw: gw}
}

// CreateUserRequest 创建用户请求
type CreateUserRequest struct {
	Username     string `json:"username" binding:"required,min=3,max=50"`
	Password     string `json:"password" binding:"required,min=6"`
	Name         string `json:"name"`
	IsTechnician bool   `json:"is_technician"`
}

// Create 创建用户（当前租户内，租户由网关从绑定上下文盖章）
func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	user, err := h.service.CreateUser(c.Request.Context(), req.Username, req.Password, req.Name, req.IsTechnician)
	if err != nil {
		if handleCoreError(c, err) {
			return
		}
		response.BadRequest(c, err.Error())
		return
	}
	response.Success(c, user)
}

// GetAll 用户列表（当前租户内）
func (h *UserHandler) GetAll(c *gin.Context) {
	params := pagination.ParsePageParams(c)

	var opts []gateway.QueryOption
	if c.Query("technician") == "true" {
		opts = append(opts, gateway.Where("is_technician = ?", true))
	}
	if status := c.Query("status"); status != "" {
		opts = append(opts, gateway.Where("status = ?", status))
	}

	total, err := h.gw.Count(c.Request.Context(), &models.User{}, opts...)
	if err != nil {
		if handleCoreError(c, err) {
			return
		}
		response.ServerError(c, "查询用户失败")
		return
	}

	var users []*models.User
	listOpts := append(opts, gateway.Order("username"), gateway.Page(params.Page, params.PageSize))
	if err := h.gw.List(c.Request.Context(), &users, listOpts...); err != nil {
		if handleCoreError(c, err) {
			return
		}
		response.ServerError(c, "查询用户失败")
		return
	}

	response.SuccessWithPage(c, users, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

// GetByID 用户详情（租户作用域内）
func (h *UserHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "用户ID格式错误")
		return
	}

	var user models.User
	if err := h.gw.Find(c.Request.Context(), &user, uint(id)); err != nil {
		if handleCoreError(c, err) {
			return
		}
		response.ServerError(c, "查询用户失败")
		return
	}
	response.Success(c, &user)
}
