package services

import "gorm.io/gorm"

// TransactionManager runs a function inside one database transaction. The
// function's error decides the outcome: nil commits, anything else rolls the
// whole transaction back.
type TransactionManager interface {
	Transaction(fn func(tx *gorm.DB) error) error
}

type gormTransactionManager struct {
	db *gorm.DB
}

func NewGormTransactionManager(db *gorm.DB) TransactionManager {
	return &gormTransactionManager{db: db}
}

func (m *gormTransactionManager) Transaction(fn func(tx *gorm.DB) error) error {
	return m.db.Transaction(fn)
}
