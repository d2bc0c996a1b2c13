package gateway

import "gorm.io/gorm"

// QueryOption 查询选项，叠加在租户谓词之下
type QueryOption func(*gorm.DB) *gorm.DB

// Where 追加过滤条件（与租户谓词AND，不可能覆盖它）
func Where(query any, args ...any) QueryOption {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(query, args...)
	}
}

// Order 排序
func Order(value any) QueryOption {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(value)
	}
}

// Limit 条数限制
func Limit(n int) QueryOption {
	return func(db *gorm.DB) *gorm.DB {
		return db.Limit(n)
	}
}

// Offset 偏移
func Offset(n int) QueryOption {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(n)
	}
}

// Preload 预加载关联
func Preload(query string, args ...any) QueryOption {
	return func(db *gorm.DB) *gorm.DB {
		return db.Preload(query, args...)
	}
}

// Page 分页快捷方式
func Page(page, pageSize int) QueryOption {
	return func(db *gorm.DB) *gorm.DB {
		if page < 1 {
			page = 1
		}
		return db.Offset((page - 1) * pageSize).Limit(pageSize)
	}
}
