package services

import (
	"context"
	"errors"
	"fmt"

	"org-registry-backend/db/models"
	org_requests "org-registry-backend/organizations/requests"
	"org-registry-backend/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Saga states, logged at every transition.
const (
	sagaStatePending      = "PENDING"
	sagaStateUploading    = "UPLOADING"
	sagaStateAbortedNoDB  = "ABORTED_NO_DB"
	sagaStateDBWriting    = "DB_WRITING"
	sagaStateCommitted    = "COMMITTED"
	sagaStateCompensating = "COMPENSATING"
	sagaStateRolledBack   = "ROLLED_BACK"
)

// AuditLog writes the import audit trail on its own transaction boundary so
// FAILURE entries survive the rollback of the import transaction.
type AuditLog interface {
	OpenEntry(user *models.User, storageObjectKey string) (*models.ImportOperation, error)
	CloseEntry(id uuid.UUID, status models.ImportStatus, addedCount int, errorMessage string) error
}

// OrganizationCreator persists one validated organization inside the caller's
// transaction, enforcing the (name, type) business key.
type OrganizationCreator interface {
	CreateOrganizationTx(tx *gorm.DB, req org_requests.OrganizationRequest, createdBy string) (*models.Organization, error)
}

// OrganizationIndexer pushes committed organizations into the search index.
// Indexing runs strictly after commit and never affects the saga outcome.
type OrganizationIndexer interface {
	IndexCreatedOrganizations(orgs []models.Organization)
}

// ImportResult is what one import attempt produced. AuditEntryID is nil when
// the saga aborted before the audit entry was opened.
type ImportResult struct {
	AuditEntryID      *uuid.UUID          `json:"audit_entry_id"`
	Status            models.ImportStatus `json:"status"`
	AddedObjectsCount int                 `json:"added_objects_count"`
	StorageObjectKey  string              `json:"storage_object_key,omitempty"`
	ErrorMessage      string              `json:"error_message,omitempty"`
}

// ImportSagaService coordinates one bulk import across two stores that share
// no transaction manager: the object store holding the raw file and the
// relational store holding the parsed organizations. The relational side is a
// single all-or-nothing transaction; the object-store side is compensated by
// deleting the uploaded file whenever that transaction does not commit.
type ImportSagaService struct {
	storage    utils.ObjectStorage
	txManager  TransactionManager
	auditLog   AuditLog
	orgCreator OrganizationCreator
	indexer    OrganizationIndexer
	cache      *utils.QueryCache
	logger     *zap.Logger
}

func NewImportSagaService(
	storage utils.ObjectStorage,
	txManager TransactionManager,
	auditLog AuditLog,
	orgCreator OrganizationCreator,
	indexer OrganizationIndexer,
	cache *utils.QueryCache,
	logger *zap.Logger,
) *ImportSagaService {
	return &ImportSagaService{
		storage:    storage,
		txManager:  txManager,
		auditLog:   auditLog,
		orgCreator: orgCreator,
		indexer:    indexer,
		cache:      cache,
		logger:     logger,
	}
}

// RunImport executes the full saga for one uploaded file. faults carries the
// armed failure-injection point for this call and may be nil.
//
// Order of operations, and what each failure leaves behind:
//  1. Upload the raw file. Failure here leaves nothing: no object, no audit
//     entry.
//  2. Open the audit entry on the audit log's own connection. From this point
//     on, every outcome closes exactly one audit entry.
//  3. Parse and persist every row inside one transaction, in file order. Any
//     error rolls back all rows and triggers compensation: the uploaded
//     object is deleted and the audit entry is closed as FAILURE with the
//     root cause message.
//  4. On commit the audit entry is closed as SUCCESS with the row count, and
//     the new rows are indexed and the listing cache invalidated.
func (s *ImportSagaService) RunImport(ctx context.Context, user *models.User, fileName string, fileBytes []byte, faults *FaultInjector) (*ImportResult, error) {
	objectKey := utils.GenerateObjectKey(fileName)
	log := s.logger.With(
		zap.String("object_key", objectKey),
		zap.String("username", user.Username),
	)
	log.Info("Import saga started", zap.String("saga_state", sagaStatePending), zap.String("file_name", fileName))

	// Step 1: upload. A failure here aborts before any durable trace exists.
	log.Info("Uploading import file", zap.String("saga_state", sagaStateUploading), zap.Int("size_bytes", len(fileBytes)))
	if err := s.uploadFile(ctx, objectKey, fileBytes, faults); err != nil {
		log.Error("Import aborted before audit entry was opened",
			zap.String("saga_state", sagaStateAbortedNoDB),
			zap.Error(err),
		)
		return &ImportResult{
			Status:       models.ImportStatusFailure,
			ErrorMessage: TruncateErrorMessage(RootMessage(err)),
		}, err
	}

	// Step 2: the audit entry is opened on the audit log's independent
	// connection, outside the import transaction, so it survives rollback.
	entry, err := s.auditLog.OpenEntry(user, objectKey)
	if err != nil {
		// The file is already up but nothing can record the attempt.
		// Compensate and abort.
		s.compensateUpload(ctx, objectKey, log)
		return &ImportResult{
			Status:           models.ImportStatusFailure,
			StorageObjectKey: objectKey,
			ErrorMessage:     TruncateErrorMessage(RootMessage(err)),
		}, err
	}
	log = log.With(zap.String("audit_entry_id", entry.ID.String()))

	created, err := s.runImportTransaction(user, fileBytes, faults, log)
	if err != nil {
		log.Warn("Import transaction rolled back, compensating upload",
			zap.String("saga_state", sagaStateCompensating),
			zap.Error(err),
		)
		s.compensateUpload(ctx, objectKey, log)

		message := TruncateErrorMessage(RootMessage(err))
		if closeErr := s.auditLog.CloseEntry(entry.ID, models.ImportStatusFailure, 0, message); closeErr != nil {
			log.Error("Failed to close audit entry after rollback", zap.Error(closeErr))
		}
		log.Info("Import saga finished", zap.String("saga_state", sagaStateRolledBack))
		return &ImportResult{
			AuditEntryID:     &entry.ID,
			Status:           models.ImportStatusFailure,
			StorageObjectKey: objectKey,
			ErrorMessage:     message,
		}, err
	}

	if closeErr := s.auditLog.CloseEntry(entry.ID, models.ImportStatusSuccess, len(created), ""); closeErr != nil {
		// The rows are committed; a failed close must not undo them.
		log.Error("Failed to close audit entry after commit", zap.Error(closeErr))
	}
	log.Info("Import saga finished",
		zap.String("saga_state", sagaStateCommitted),
		zap.Int("added_objects_count", len(created)),
	)
	s.afterCommit(created)

	return &ImportResult{
		AuditEntryID:      &entry.ID,
		Status:            models.ImportStatusSuccess,
		AddedObjectsCount: len(created),
		StorageObjectKey:  objectKey,
	}, nil
}

func (s *ImportSagaService) uploadFile(ctx context.Context, objectKey string, fileBytes []byte, faults *FaultInjector) error {
	if faults.Fire(FaultUpload) {
		return &StorageError{Op: "upload", Key: objectKey, Err: errors.New("injected storage failure")}
	}
	if err := s.storage.Upload(ctx, objectKey, fileBytes, "text/csv"); err != nil {
		return &StorageError{Op: "upload", Key: objectKey, Err: err}
	}
	return nil
}

// runImportTransaction parses the file and persists every row inside one
// transaction. Rows are processed in file order; the first bad row aborts the
// whole batch. Returns the persisted organizations on commit.
func (s *ImportSagaService) runImportTransaction(user *models.User, fileBytes []byte, faults *FaultInjector, log *zap.Logger) ([]models.Organization, error) {
	if faults.Fire(FaultMidLogic) {
		return nil, &TransactionError{Reason: "injected mid-logic failure", Err: errors.New("injected mid-logic failure")}
	}

	var created []models.Organization
	err := s.txManager.Transaction(func(tx *gorm.DB) error {
		log.Info("Import transaction started", zap.String("saga_state", sagaStateDBWriting))

		rows, err := ParseImportFile(fileBytes)
		if err != nil {
			return err
		}

		for _, row := range rows {
			req, err := MapRowToOrganization(row)
			if err != nil {
				return fmt.Errorf("line %d: %w", row.Line, err)
			}
			org, err := s.orgCreator.CreateOrganizationTx(tx, req, user.Username)
			if err != nil {
				return fmt.Errorf("line %d: %w", row.Line, err)
			}
			created = append(created, *org)
		}

		if faults.Fire(FaultDatabase) {
			return &TransactionError{Reason: "injected database failure before commit", Err: errors.New("injected database failure")}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// compensateUpload deletes the uploaded object. Deleting a missing object is
// a no-op in the storage client, so compensation is idempotent. A delete
// failure is logged and never changes the saga outcome.
func (s *ImportSagaService) compensateUpload(ctx context.Context, objectKey string, log *zap.Logger) {
	if err := s.storage.Delete(ctx, objectKey); err != nil {
		log.Error("Compensating delete failed, object may be orphaned",
			zap.String("object_key", objectKey),
			zap.Error(err),
		)
		return
	}
	log.Info("Compensating delete completed", zap.String("object_key", objectKey))
}

// afterCommit runs the post-commit side effects: search indexing and listing
// cache invalidation. Both are best-effort.
func (s *ImportSagaService) afterCommit(created []models.Organization) {
	if len(created) == 0 {
		return
	}
	if s.indexer != nil {
		s.indexer.IndexCreatedOrganizations(created)
	}
	if s.cache != nil {
		s.cache.InvalidateAsync("organizations")
	}
}
