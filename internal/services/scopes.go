package services

import "gorm.io/gorm"

const maxPageSize = 100

// Paginate returns a GORM scope selecting one 1-based page.
func Paginate(page, limit int) func(db *gorm.DB) *gorm.DB {
	page, limit = normalizePage(page, limit)
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset((page - 1) * limit).Limit(limit)
	}
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 6
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

// ForUser filters membership rows by the owning user.
func ForUser(userID uint) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}
}

func exists(db *gorm.DB, model interface{}, id uint) (bool, error) {
	var count int64
	if err := db.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
