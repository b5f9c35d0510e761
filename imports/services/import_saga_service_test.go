package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"org-registry-backend/db/models"
	org_requests "org-registry-backend/organizations/requests"
	org_services "org-registry-backend/organizations/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const validCSV = "name,fullName,type,annualTurnover,employeesCount,rating,coordinates.x,coordinates.y,officialAddress.street,officialAddress.zipCode,postalAddress.street,postalAddress.zipCode\n" +
	"Acme,Acme Corp,COMMERCIAL,1000.50,10,4.5,1.5,10,Main St,12345,Postal St,54321\n" +
	"Globex,,PUBLIC,2000,20,3.0,2.5,20,Side St,11111,,\n" +
	"Initech,Initech LLC,TRUST,3000,30,5.0,3.5,30,Back St,22222,Box St,33333\n"

// fakeStorage is an in-memory object store that records every call.
type fakeStorage struct {
	objects   map[string][]byte
	uploadErr error
	deleteErr error
	deletes   []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (s *fakeStorage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	if s.uploadErr != nil {
		return s.uploadErr
	}
	s.objects[key] = data
	return nil
}

func (s *fakeStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	data, ok := s.objects[key]
	if !ok {
		return nil, errors.New("object not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *fakeStorage) Delete(ctx context.Context, key string) error {
	s.deletes = append(s.deletes, key)
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.objects, key)
	return nil
}

// fakeOrgStore mimics transactional row visibility: rows stay pending until
// the surrounding fake transaction commits them.
type fakeOrgStore struct {
	committed []org_requests.OrganizationRequest
	pending   []org_requests.OrganizationRequest
	failOn    string
}

func (s *fakeOrgStore) CreateOrganizationTx(tx *gorm.DB, req org_requests.OrganizationRequest, createdBy string) (*models.Organization, error) {
	if err := org_services.ValidateOrganizationRequest(req); err != nil {
		return nil, err
	}
	if req.Name == s.failOn {
		return nil, fmt.Errorf("forced failure on %s", req.Name)
	}
	for _, existing := range append(append([]org_requests.OrganizationRequest{}, s.committed...), s.pending...) {
		if existing.Name == req.Name && existing.Type == req.Type {
			return nil, &org_services.UniqueConstraintError{Name: req.Name, Type: req.Type}
		}
	}
	s.pending = append(s.pending, req)
	return &models.Organization{ID: uuid.New(), Name: req.Name, Type: req.Type, CreatedBy: createdBy}, nil
}

// fakeTxManager commits the pending rows only when the function succeeds.
type fakeTxManager struct {
	store *fakeOrgStore
}

func (m *fakeTxManager) Transaction(fn func(tx *gorm.DB) error) error {
	m.store.pending = nil
	if err := fn(nil); err != nil {
		m.store.pending = nil
		return err
	}
	m.store.committed = append(m.store.committed, m.store.pending...)
	m.store.pending = nil
	return nil
}

type auditEntry struct {
	id         uuid.UUID
	objectKey  string
	status     models.ImportStatus
	addedCount int
	errMessage string
	closed     bool
}

type fakeAuditLog struct {
	entries []*auditEntry
	openErr error
}

func (a *fakeAuditLog) OpenEntry(user *models.User, storageObjectKey string) (*models.ImportOperation, error) {
	if a.openErr != nil {
		return nil, a.openErr
	}
	entry := &auditEntry{id: uuid.New(), objectKey: storageObjectKey, status: models.ImportStatusInProgress}
	a.entries = append(a.entries, entry)
	return &models.ImportOperation{ID: entry.id, UserID: user.ID, Status: models.ImportStatusInProgress}, nil
}

func (a *fakeAuditLog) CloseEntry(id uuid.UUID, status models.ImportStatus, addedCount int, errorMessage string) error {
	for _, entry := range a.entries {
		if entry.id == id {
			entry.status = status
			entry.addedCount = addedCount
			entry.errMessage = errorMessage
			entry.closed = true
			return nil
		}
	}
	return errors.New("entry not found")
}

type sagaFixture struct {
	storage *fakeStorage
	store   *fakeOrgStore
	audit   *fakeAuditLog
	service *ImportSagaService
	user    *models.User
}

func newSagaFixture(t *testing.T) *sagaFixture {
	t.Helper()
	storage := newFakeStorage()
	store := &fakeOrgStore{}
	audit := &fakeAuditLog{}
	service := NewImportSagaService(
		storage,
		&fakeTxManager{store: store},
		audit,
		store,
		nil,
		nil,
		zap.NewNop(),
	)
	return &sagaFixture{
		storage: storage,
		store:   store,
		audit:   audit,
		service: service,
		user:    &models.User{ID: uuid.New(), Username: "importer", Email: "importer@example.com"},
	}
}

func TestRunImportHappyPath(t *testing.T) {
	f := newSagaFixture(t)

	result, err := f.service.RunImport(context.Background(), f.user, "orgs.csv", []byte(validCSV), nil)
	require.NoError(t, err)

	assert.Equal(t, models.ImportStatusSuccess, result.Status)
	assert.Equal(t, 3, result.AddedObjectsCount)
	require.NotNil(t, result.AuditEntryID)

	// All rows committed in file order.
	require.Len(t, f.store.committed, 3)
	assert.Equal(t, "Acme", f.store.committed[0].Name)
	assert.Equal(t, "Globex", f.store.committed[1].Name)
	assert.Equal(t, "Initech", f.store.committed[2].Name)

	// The uploaded object persists.
	assert.Contains(t, f.storage.objects, result.StorageObjectKey)
	assert.Empty(t, f.storage.deletes)

	// Exactly one audit entry, closed as SUCCESS with the row count.
	require.Len(t, f.audit.entries, 1)
	entry := f.audit.entries[0]
	assert.True(t, entry.closed)
	assert.Equal(t, models.ImportStatusSuccess, entry.status)
	assert.Equal(t, 3, entry.addedCount)
	assert.Empty(t, entry.errMessage)
}

func TestRunImportUploadFailureLeavesNoTrace(t *testing.T) {
	f := newSagaFixture(t)
	faults := NewFaultInjector()
	faults.Arm(FaultUpload)

	result, err := f.service.RunImport(context.Background(), f.user, "orgs.csv", []byte(validCSV), faults)
	require.Error(t, err)

	var storageErr *StorageError
	assert.ErrorAs(t, err, &storageErr)

	assert.Equal(t, models.ImportStatusFailure, result.Status)
	assert.Nil(t, result.AuditEntryID)
	assert.NotEmpty(t, result.ErrorMessage)

	// Nothing durable: no audit entry, no object, no rows.
	assert.Empty(t, f.audit.entries)
	assert.Empty(t, f.storage.objects)
	assert.Empty(t, f.store.committed)

	// The fault disarmed itself.
	_, armed := faults.Armed()
	assert.False(t, armed)
}

func TestRunImportMidLogicFailureCompensates(t *testing.T) {
	f := newSagaFixture(t)
	faults := NewFaultInjector()
	faults.Arm(FaultMidLogic)

	result, err := f.service.RunImport(context.Background(), f.user, "orgs.csv", []byte(validCSV), faults)
	require.Error(t, err)

	assert.Equal(t, models.ImportStatusFailure, result.Status)
	require.NotNil(t, result.AuditEntryID)

	// Upload happened, then was compensated.
	assert.Empty(t, f.storage.objects)
	require.Len(t, f.storage.deletes, 1)
	assert.Equal(t, result.StorageObjectKey, f.storage.deletes[0])

	// No rows reached the store.
	assert.Empty(t, f.store.committed)

	// Audit entry survives as FAILURE with zero count and a message.
	require.Len(t, f.audit.entries, 1)
	entry := f.audit.entries[0]
	assert.Equal(t, models.ImportStatusFailure, entry.status)
	assert.Equal(t, 0, entry.addedCount)
	assert.NotEmpty(t, entry.errMessage)
}

func TestRunImportDatabaseFailureRollsBackEveryRow(t *testing.T) {
	f := newSagaFixture(t)
	faults := NewFaultInjector()
	faults.Arm(FaultDatabase)

	result, err := f.service.RunImport(context.Background(), f.user, "orgs.csv", []byte(validCSV), faults)
	require.Error(t, err)

	var txErr *TransactionError
	assert.ErrorAs(t, err, &txErr)

	// All three rows were inserted inside the transaction, none survive.
	assert.Empty(t, f.store.committed)
	assert.Empty(t, f.store.pending)

	// Object compensated, audit entry FAILURE.
	assert.Empty(t, f.storage.objects)
	require.Len(t, f.audit.entries, 1)
	assert.Equal(t, models.ImportStatusFailure, f.audit.entries[0].status)
	assert.Equal(t, 0, f.audit.entries[0].addedCount)
	assert.Equal(t, models.ImportStatusFailure, result.Status)
}

func TestRunImportBadRowAbortsWholeBatch(t *testing.T) {
	f := newSagaFixture(t)
	f.store.failOn = "Initech" // last row

	result, err := f.service.RunImport(context.Background(), f.user, "orgs.csv", []byte(validCSV), nil)
	require.Error(t, err)

	// Earlier valid rows must not survive the failed batch.
	assert.Empty(t, f.store.committed)
	assert.Equal(t, models.ImportStatusFailure, result.Status)
	assert.Empty(t, f.storage.objects)
	require.Len(t, f.audit.entries, 1)
	assert.Equal(t, models.ImportStatusFailure, f.audit.entries[0].status)
}

func TestRunImportDuplicateWithinFileFails(t *testing.T) {
	f := newSagaFixture(t)
	duplicateCSV := "name,type,annualTurnover,employeesCount,rating,coordinates.x,coordinates.y,officialAddress.street,officialAddress.zipCode,postalAddress.street,postalAddress.zipCode\n" +
		"Acme,COMMERCIAL,1000,10,4.5,1.5,10,Main St,12345,Main St,12345\n" +
		"Acme,COMMERCIAL,2000,20,3.0,2.5,20,Side St,11111,Side St,11111\n"

	_, err := f.service.RunImport(context.Background(), f.user, "orgs.csv", []byte(duplicateCSV), nil)
	require.Error(t, err)

	var uniqueErr *org_services.UniqueConstraintError
	assert.ErrorAs(t, err, &uniqueErr)
	assert.Empty(t, f.store.committed)
}

func TestRunImportAlreadyCommittedDuplicateFails(t *testing.T) {
	f := newSagaFixture(t)

	_, err := f.service.RunImport(context.Background(), f.user, "orgs.csv", []byte(validCSV), nil)
	require.NoError(t, err)
	require.Len(t, f.store.committed, 3)

	_, err = f.service.RunImport(context.Background(), f.user, "orgs.csv", []byte(validCSV), nil)
	require.Error(t, err)

	var uniqueErr *org_services.UniqueConstraintError
	assert.ErrorAs(t, err, &uniqueErr)

	// Store unchanged by the failed second import.
	assert.Len(t, f.store.committed, 3)
}

func TestRunImportParseFailureIsCompensated(t *testing.T) {
	f := newSagaFixture(t)

	result, err := f.service.RunImport(context.Background(), f.user, "orgs.csv", []byte("not,a,valid\nheader"), nil)
	require.Error(t, err)

	var parseErr *ParseError
	assert.ErrorAs(t, err, &parseErr)
	assert.Empty(t, f.storage.objects)
	assert.Equal(t, models.ImportStatusFailure, result.Status)
}

func TestRunImportCompensationFailureDoesNotChangeOutcome(t *testing.T) {
	f := newSagaFixture(t)
	f.storage.deleteErr = errors.New("storage unavailable")
	faults := NewFaultInjector()
	faults.Arm(FaultDatabase)

	result, err := f.service.RunImport(context.Background(), f.user, "orgs.csv", []byte(validCSV), faults)
	require.Error(t, err)

	// The failed delete is swallowed: the saga still closes FAILURE.
	assert.Equal(t, models.ImportStatusFailure, result.Status)
	require.Len(t, f.audit.entries, 1)
	assert.True(t, f.audit.entries[0].closed)
}

func TestRunImportAuditOpenFailureCompensatesUpload(t *testing.T) {
	f := newSagaFixture(t)
	f.audit.openErr = errors.New("audit store down")

	result, err := f.service.RunImport(context.Background(), f.user, "orgs.csv", []byte(validCSV), nil)
	require.Error(t, err)

	assert.Nil(t, result.AuditEntryID)
	assert.Empty(t, f.storage.objects)
	require.Len(t, f.storage.deletes, 1)
	assert.Empty(t, f.store.committed)
}
