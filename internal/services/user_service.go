package services

import (
	"context"
	"errors"
	"time"

	"fieldops/internal/models"
	"fieldops/pkg/gateway"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService 用户服务
// 登录和中间件的用户加载发生在租户上下文绑定之前，这两条路径直接用db；
// 绑定之后的用户读写（创建、技师校验）一律走网关
type UserService struct {
	db *gorm.DB
	gw *gateway.Gateway
}

func NewUserService(db *gorm.DB, gw *gateway.Gateway) *UserService {
	return &UserService{db: db, gw: gw}
}

// GetByID 按ID获取用户（中间件加载用，先于上下文绑定）
func (s *UserService) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Authenticate 用户登录校验
// 用户名在租户内唯一，登录必须带租户代码
func (s *UserService) Authenticate(tenantCode, username, password string) (*models.User, error) {
	var tenant models.Tenant
	err := s.db.Where("code = ? AND status = ?", tenantCode, models.TenantStatusActive).First(&tenant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("用户名或密码错误")
		}
		return nil, err
	}

	var user models.User
	err = s.db.Where("tenant_id = ? AND username = ?", tenant.ID, username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 不区分"用户不存在"和"密码错误"
			return nil, errors.New("用户名或密码错误")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, errors.New("用户名或密码错误")
	}

	if user.Status != models.UserStatusActive {
		return nil, errors.New("用户已被禁用")
	}

	// 记录登录时间，失败不影响登录
	now := time.Now()
	s.db.Model(&user).Update("last_login_at", &now)

	return &user, nil
}

// CreateUser 创建用户（当前租户内）
// 持久化经网关：租户由绑定上下文盖章，用户名唯一性在租户作用域内校验
func (s *UserService) CreateUser(ctx context.Context, username, password, name string, isTechnician bool) (*models.User, error) {
	count, err := s.gw.Count(ctx, &models.User{}, gateway.Where("username = ?", username))
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("用户名已存在")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     username,
		Password:     string(hashed),
		Name:         name,
		IsTechnician: isTechnician,
		Status:       models.UserStatusActive,
	}
	if err := s.gw.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
