package services

import (
	"context"
	"errors"
	"fmt"

	"fieldops/internal/models"
	"fieldops/pkg/gateway"
)

// AccountService 账户服务
// 所有读写经网关，租户作用域由网关注入，这里不出现tenant_id条件
type AccountService struct {
	gw *gateway.Gateway
}

func NewAccountService(gw *gateway.Gateway) *AccountService {
	return &AccountService{gw: gw}
}

// Create 创建账户
func (s *AccountService) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	if account.AccountNo == "" {
		return nil, errors.New("账户编号不能为空")
	}
	if account.Name == "" {
		return nil, errors.New("账户名称不能为空")
	}
	if account.Type == "" {
		account.Type = models.AccountTypeCustomer
	}
	if account.Status == "" {
		account.Status = models.AccountStatusActive
	}

	// 编号在租户内唯一
	count, err := s.gw.Count(ctx, &models.Account{}, gateway.Where("account_no = ?", account.AccountNo))
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("账户编号已存在")
	}

	if err := s.gw.Create(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// GetByID 按ID获取账户
func (s *AccountService) GetByID(ctx context.Context, id uint) (*models.Account, error) {
	var account models.Account
	if err := s.gw.Find(ctx, &account, id); err != nil {
		return nil, err
	}
	return &account, nil
}

// ListWithPage 分页列表
func (s *AccountService) ListWithPage(ctx context.Context, accountType, status, keyword string, page, pageSize int) ([]*models.Account, int64, error) {
	var opts []gateway.QueryOption
	if accountType != "" {
		opts = append(opts, gateway.Where("type = ?", accountType))
	}
	if status != "" {
		opts = append(opts, gateway.Where("status = ?", status))
	}
	if keyword != "" {
		pattern := fmt.Sprintf("%%%s%%", keyword)
		opts = append(opts, gateway.Where("name LIKE ? OR account_no LIKE ?", pattern, pattern))
	}

	total, err := s.gw.Count(ctx, &models.Account{}, opts...)
	if err != nil {
		return nil, 0, err
	}

	var accounts []*models.Account
	listOpts := append(opts, gateway.Order("id DESC"), gateway.Page(page, pageSize))
	if err := s.gw.List(ctx, &accounts, listOpts...); err != nil {
		return nil, 0, err
	}
	return accounts, total, nil
}

// Update 更新账户
func (s *AccountService) Update(ctx context.Context, id uint, patch map[string]any) (*models.Account, error) {
	var account models.Account
	if err := s.gw.Update(ctx, &account, id, patch); err != nil {
		return nil, err
	}
	return &account, nil
}

// Delete 删除账户
// 还有下属数据的账户不允许删除
func (s *AccountService) Delete(ctx context.Context, id uint) error {
	contacts, err := s.gw.Count(ctx, &models.Contact{}, gateway.Where("account_id = ?", id))
	if err != nil {
		return err
	}
	if contacts > 0 {
		return errors.New("账户下仍有联系人，不能删除")
	}

	workOrders, err := s.gw.Count(ctx, &models.WorkOrder{}, gateway.Where("account_id = ?", id))
	if err != nil {
		return err
	}
	if workOrders > 0 {
		return errors.New("账户下仍有工单，不能删除")
	}

	return s.gw.Delete(ctx, &models.Account{}, id)
}
