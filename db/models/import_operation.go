package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ImportStatus string

const (
	ImportStatusPending    ImportStatus = "PENDING"
	ImportStatusInProgress ImportStatus = "IN_PROGRESS"
	ImportStatusSuccess    ImportStatus = "SUCCESS"
	ImportStatusFailure    ImportStatus = "FAILURE"
)

// ErrorMessageMaxLen is the storage limit for ImportOperation.ErrorMessage.
// Longer messages are truncated, never rejected.
const ErrorMessageMaxLen = 4000

// ImportOperation is the audit trail of one import attempt. It is written
// through its own transaction boundary so the record survives a rollback of
// the import's business transaction.
//
// EndTime is set if and only if Status is SUCCESS or FAILURE.
// StorageObjectKey is set once the file upload succeeded and is never cleared
// afterwards, even when compensation later deletes the object.
type ImportOperation struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User   *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`

	Status    ImportStatus `gorm:"type:varchar(50);not null;index" json:"status"`
	StartTime time.Time    `gorm:"not null;index" json:"start_time"`
	EndTime   *time.Time   `json:"end_time"`

	AddedObjectsCount int     `gorm:"default:0" json:"added_objects_count"`
	ErrorMessage      string  `gorm:"type:varchar(4000)" json:"error_message"`
	StorageObjectKey  *string `gorm:"index" json:"storage_object_key"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (op *ImportOperation) BeforeCreate(tx *gorm.DB) error {
	if op.ID == uuid.Nil {
		op.ID = uuid.New()
	}
	return nil
}
