package repositories

import (
	"fmt"
	"time"

	"org-registry-backend/db/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ImportOperationRepository interface {
	OpenEntry(user *models.User, storageObjectKey string) (*models.ImportOperation, error)
	CloseEntry(id uuid.UUID, status models.ImportStatus, addedCount int, errorMessage string) error
	GetOperationsForUser(user *models.User) ([]models.ImportOperation, error)
	GetOperationByID(id string) (*models.ImportOperation, error)
}

// importOperationRepository writes the import audit trail. It is handed the
// root database handle, never a transaction, so its rows are committed on
// their own connection and survive a rollback of the main import transaction.
type importOperationRepository struct {
	db *gorm.DB
}

func NewImportOperationRepository(db *gorm.DB) ImportOperationRepository {
	return &importOperationRepository{db: db}
}

func (r *importOperationRepository) OpenEntry(user *models.User, storageObjectKey string) (*models.ImportOperation, error) {
	op := &models.ImportOperation{
		UserID:    user.ID,
		Status:    models.ImportStatusInProgress,
		StartTime: time.Now(),
	}
	if storageObjectKey != "" {
		op.StorageObjectKey = &storageObjectKey
	}
	if err := r.db.Create(op).Error; err != nil {
		return nil, fmt.Errorf("failed to open import audit entry: %w", err)
	}
	return op, nil
}

func (r *importOperationRepository) CloseEntry(id uuid.UUID, status models.ImportStatus, addedCount int, errorMessage string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"status":              status,
		"end_time":            &now,
		"added_objects_count": addedCount,
		"error_message":       errorMessage,
	}
	result := r.db.Model(&models.ImportOperation{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to close import audit entry: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("import audit entry %s not found", id)
	}
	return nil
}

func (r *importOperationRepository) GetOperationsForUser(user *models.User) ([]models.ImportOperation, error) {
	var operations []models.ImportOperation
	db := r.db.Preload("User").Order("start_time DESC")
	if !user.IsAdmin {
		db = db.Where("user_id = ?", user.ID)
	}
	if err := db.Find(&operations).Error; err != nil {
		return nil, err
	}
	return operations, nil
}

func (r *importOperationRepository) GetOperationByID(id string) (*models.ImportOperation, error) {
	var op models.ImportOperation
	if err := r.db.Where("id = ?", id).First(&op).Error; err != nil {
		return nil, err
	}
	return &op, nil
}
