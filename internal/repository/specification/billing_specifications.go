package specification

import "gorm.io/gorm"

type BySlug struct {
	Slug string
}

func (s BySlug) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("slug = ?", s.Slug)
}

type ActivePlans struct{}

func (s ActivePlans) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = ?", true).Order("sort_order ASC")
}

type ActiveSubscriptions struct{}

func (s ActiveSubscriptions) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", "active")
}

type ByMidtransTransactionID struct {
	TransactionID string
}

func (s ByMidtransTransactionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("midtrans_transaction_id = ?", s.TransactionID)
}
