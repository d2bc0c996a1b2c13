package services

import (
	"errors"
	"fmt"
	"regexp"
	"unicode/utf8"

	"fieldops/internal/database"
	"fieldops/internal/models"

	"gorm.io/gorm"
)

// TenantService 租户服务
// 租户表是隔离的根，自身不走网关（平台管理员专用入口在路由层限制）
type TenantService struct {
	db *gorm.DB
}

func NewTenantService() *TenantService {
	return &TenantService{db: database.GetDB()}
}

// TenantStats 租户统计信息
type TenantStats struct {
	Total    int64 `json:"total"`
	Active   int64 `json:"active"`
	Inactive int64 `json:"inactive"`
}

var tenantCodePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,48}[a-z0-9]$`)

// Create 创建租户
func (s *TenantService) Create(name, code string) (*models.Tenant, error) {
	if utf8.RuneCountInString(name) < 2 || utf8.RuneCountInString(name) > 100 {
		return nil, errors.New("租户名称长度必须在2-100个字符之间")
	}
	if !tenantCodePattern.MatchString(code) {
		return nil, errors.New("租户代码只能包含小写字母、数字和连字符，长度3-50")
	}

	var count int64
	s.db.Model(&models.Tenant{}).Where("code = ?", code).Count(&count)
	if count > 0 {
		return nil, errors.New("租户代码已存在")
	}

	tenant := &models.Tenant{
		Name:   name,
		Code:   code,
		Status: models.TenantStatusActive,
	}
	if err := s.db.Create(tenant).Error; err != nil {
		return nil, err
	}
	return tenant, nil
}

// GetByID 按ID获取租户
func (s *TenantService) GetByID(id uint) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := s.db.First(&tenant, id).Error; err != nil {
		return nil, err
	}
	return &tenant, nil
}

// GetByCode 按代码获取租户
func (s *TenantService) GetByCode(code string) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := s.db.Where("code = ?", code).First(&tenant).Error; err != nil {
		return nil, err
	}
	return &tenant, nil
}

// GetWithFiltersAndPage 组合查询（分页版本）
func (s *TenantService) GetWithFiltersAndPage(status, keyword string, page, pageSize int) ([]*models.Tenant, int64, error) {
	var tenants []*models.Tenant
	var total int64

	query := s.db.Model(&models.Tenant{})

	if status != "" {
		query = query.Where("status = ?", status)
	}
	if keyword != "" {
		searchPattern := fmt.Sprintf("%%%s%%", keyword)
		query = query.Where("name LIKE ? OR code LIKE ?", searchPattern, searchPattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Offset(offset).Limit(pageSize).Find(&tenants).Error; err != nil {
		return nil, 0, err
	}

	return tenants, total, nil
}

// Deactivate 停用租户（软操作，数据保留）
func (s *TenantService) Deactivate(id uint) error {
	return s.db.Model(&models.Tenant{}).Where("id = ?", id).
		Update("status", models.TenantStatusInactive).Error
}

// Activate 启用租户
func (s *TenantService) Activate(id uint) error {
	return s.db.Model(&models.Tenant{}).Where("id = ?", id).
		Update("status", models.TenantStatusActive).Error
}

// Delete 删除租户
// 还有关联数据的租户不允许硬删除，只能停用
func (s *TenantService) Delete(id uint) error {
	var count int64
	if err := s.db.Model(&models.User{}).Where("tenant_id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return errors.New("租户下仍有用户，只能停用不能删除")
	}

	for _, check := range []struct {
		model any
		name  string
	}{
		{&models.Account{}, "账户"},
		{&models.Contact{}, "联系人"},
		{&models.Property{}, "物业"},
		{&models.SKU{}, "库存品目"},
		{&models.PurchaseOrder{}, "采购单"},
		{&models.WorkOrder{}, "工单"},
	} {
		if err := s.db.Model(check.model).Where("tenant_id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("租户下仍有%s数据，只能停用不能删除", check.name)
		}
	}

	return s.db.Delete(&models.Tenant{}, id).Error
}

// GetStats 租户统计
func (s *TenantService) GetStats() (*TenantStats, error) {
	stats := &TenantStats{}
	if err := s.db.Model(&models.Tenant{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Tenant{}).Where("status = ?", models.TenantStatusActive).Count(&stats.Active).Error; err != nil {
		return nil, err
	}
	stats.Inactive = stats.Total - stats.Active
	return stats, nil
}
