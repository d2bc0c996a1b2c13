package services

import (
	"context"
	"errors"
	"fmt"

	"fieldops/internal/models"
	"fieldops/pkg/gateway"
)

// ContactService 联系人服务
type ContactService struct {
	gw *gateway.Gateway
}

func NewContactService(gw *gateway.Gateway) *ContactService {
	return &ContactService{gw: gw}
}

// Create 创建联系人
// account_id指向其他租户的账户时网关按ErrNotFound处理
func (s *ContactService) Create(ctx context.Context, contact *models.Contact) (*models.Contact, error) {
	if contact.FirstName == "" {
		return nil, errors.New("联系人姓名不能为空")
	}

	// 账户引用必须落在本租户内
	if contact.AccountID != nil {
		var account models.Account
		if err := s.gw.Find(ctx, &account, *contact.AccountID); err != nil {
			return nil, err
		}
	}

	if err := s.gw.Create(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

// GetByID 按ID获取联系人
func (s *ContactService) GetByID(ctx context.Context, id uint) (*models.Contact, error) {
	var contact models.Contact
	if err := s.gw.Find(ctx, &contact, id); err != nil {
		return nil, err
	}
	return &contact, nil
}

// ListWithPage 分页列表
func (s *ContactService) ListWithPage(ctx context.Context, accountID uint, keyword string, page, pageSize int) ([]*models.Contact, int64, error) {
	var opts []gateway.QueryOption
	if accountID > 0 {
		opts = append(opts, gateway.Where("account_id = ?", accountID))
	}
	if keyword != "" {
		pattern := fmt.Sprintf("%%%s%%", keyword)
		opts = append(opts, gateway.Where("first_name LIKE ? OR last_name LIKE ? OR email LIKE ?", pattern, pattern, pattern))
	}

	total, err := s.gw.Count(ctx, &models.Contact{}, opts...)
	if err != nil {
		return nil, 0, err
	}

	var contacts []*models.Contact
	listOpts := append(opts, gateway.Order("id DESC"), gateway.Page(page, pageSize))
	if err := s.gw.List(ctx, &contacts, listOpts...); err != nil {
		return nil, 0, err
	}
	return contacts, total, nil
}

// Update 更新联系人
func (s *ContactService) Update(ctx context.Context, id uint, patch map[string]any) (*models.Contact, error) {
	var contact models.Contact
	if err := s.gw.Update(ctx, &contact, id, patch); err != nil {
		return nil, err
	}
	return &contact, nil
}

// Delete 删除联系人
func (s *ContactService) Delete(ctx context.Context, id uint) error {
	return s.gw.Delete(ctx, &models.Contact{}, id)
}
