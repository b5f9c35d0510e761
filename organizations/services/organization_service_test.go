package services

import (
	"testing"

	"org-registry-backend/db/models"
	"org-registry-backend/organizations/requests"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// fakeOrgRepository keeps organizations in memory and records the order of
// repository calls, so tests can assert the gate runs lock, then check, then
// insert.
type fakeOrgRepository struct {
	byID      map[string]*models.Organization
	byKey     map[string]*models.Organization
	calls     []string
	createErr error
}

func newFakeOrgRepository() *fakeOrgRepository {
	return &fakeOrgRepository{
		byID:  make(map[string]*models.Organization),
		byKey: make(map[string]*models.Organization),
	}
}

func businessKey(name string, orgType models.OrganizationType) string {
	return name + "|" + string(orgType)
}

func (r *fakeOrgRepository) LockBusinessKey(tx *gorm.DB, name string, orgType models.OrganizationType) error {
	r.calls = append(r.calls, "lock:"+businessKey(name, orgType))
	return nil
}

func (r *fakeOrgRepository) ExistsByBusinessKey(tx *gorm.DB, name string, orgType models.OrganizationType) (bool, error) {
	r.calls = append(r.calls, "exists:"+businessKey(name, orgType))
	_, ok := r.byKey[businessKey(name, orgType)]
	return ok, nil
}

func (r *fakeOrgRepository) CreateOrganization(tx *gorm.DB, org *models.Organization) error {
	r.calls = append(r.calls, "create:"+businessKey(org.Name, org.Type))
	if r.createErr != nil {
		return r.createErr
	}
	if org.ID == uuid.Nil {
		org.ID = uuid.New()
	}
	if _, ok := r.byKey[businessKey(org.Name, org.Type)]; ok {
		return gorm.ErrDuplicatedKey
	}
	r.byID[org.ID.String()] = org
	r.byKey[businessKey(org.Name, org.Type)] = org
	return nil
}

func (r *fakeOrgRepository) GetOrganizationByID(id string) (*models.Organization, error) {
	org, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *org
	return &copied, nil
}

func (r *fakeOrgRepository) UpdateOrganization(tx *gorm.DB, org *models.Organization) error {
	old, ok := r.byID[org.ID.String()]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.byKey, businessKey(old.Name, old.Type))
	r.byID[org.ID.String()] = org
	r.byKey[businessKey(org.Name, org.Type)] = org
	return nil
}

func (r *fakeOrgRepository) DeleteOrganization(tx *gorm.DB, id uuid.UUID) error {
	org, ok := r.byID[id.String()]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.byKey, businessKey(org.Name, org.Type))
	delete(r.byID, id.String())
	return nil
}

func (r *fakeOrgRepository) GetFilteredOrganizations(pageSize int, offset int, filters map[string]string) ([]models.Organization, int64, error) {
	return nil, 0, nil
}

func (r *fakeOrgRepository) GetOrganizationWithMaxFullName() (*models.Organization, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeOrgRepository) CountByTypeLessThan(orgType models.OrganizationType) (int64, error) {
	return 0, nil
}

func newServiceWithFake() (*OrganizationService, *fakeOrgRepository) {
	repo := newFakeOrgRepository()
	return NewOrganizationService(repo, zap.NewNop()), repo
}

func TestCreateOrganizationTxGateOrdering(t *testing.T) {
	service, repo := newServiceWithFake()

	org, err := service.CreateOrganizationTx(nil, validRequest(), "importer")
	require.NoError(t, err)
	require.NotNil(t, org)

	// The lock must be held before the existence check, and the check must
	// precede the insert.
	assert.Equal(t, []string{
		"lock:Acme|COMMERCIAL",
		"exists:Acme|COMMERCIAL",
		"create:Acme|COMMERCIAL",
	}, repo.calls)
}

func TestCreateOrganizationTxRejectsExistingKey(t *testing.T) {
	service, repo := newServiceWithFake()

	_, err := service.CreateOrganizationTx(nil, validRequest(), "importer")
	require.NoError(t, err)
	repo.calls = nil

	_, err = service.CreateOrganizationTx(nil, validRequest(), "importer")
	var uniqueErr *UniqueConstraintError
	require.ErrorAs(t, err, &uniqueErr)
	assert.Equal(t, "Acme", uniqueErr.Name)

	// The check rejected the key; the insert was never attempted.
	assert.Equal(t, []string{
		"lock:Acme|COMMERCIAL",
		"exists:Acme|COMMERCIAL",
	}, repo.calls)
}

func TestCreateOrganizationTxConvertsDuplicateKeyError(t *testing.T) {
	// A racing writer that slipped past the check surfaces as a driver
	// duplicate-key error at insert time. The caller sees the same error type
	// as for the programmatic rejection.
	service, repo := newServiceWithFake()
	repo.createErr = gorm.ErrDuplicatedKey

	_, err := service.CreateOrganizationTx(nil, validRequest(), "importer")
	var uniqueErr *UniqueConstraintError
	require.ErrorAs(t, err, &uniqueErr)
	assert.Equal(t, "Acme", uniqueErr.Name)
	assert.Equal(t, models.CommercialType, uniqueErr.Type)
}

func TestCreateOrganizationTxValidationFailureSkipsRepository(t *testing.T) {
	service, repo := newServiceWithFake()

	req := validRequest()
	req.Coordinates.Y = MinCoordinateY

	_, err := service.CreateOrganizationTx(nil, req, "importer")
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Empty(t, repo.calls)
}

func TestBusinessKeyReusableAfterMerge(t *testing.T) {
	service, _ := newServiceWithFake()

	req1 := validRequest()
	org1, err := service.CreateOrganizationTx(nil, req1, "importer")
	require.NoError(t, err)

	req2 := validRequest()
	req2.Name = "Globex"
	req2.AnnualTurnover = decimal.NewFromInt(500)
	org2, err := service.CreateOrganizationTx(nil, req2, "importer")
	require.NoError(t, err)

	survivor, err := service.MergeOrganizations(nil, requests.MergeRequest{
		OrgID1:     org1.ID.String(),
		OrgID2:     org2.ID.String(),
		NewName:    "Acme Globex",
		NewAddress: models.Address{Street: "Merged St"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme Globex", survivor.Name)
	assert.Equal(t, decimal.NewFromInt(1500).String(), survivor.AnnualTurnover.String())

	// The merged organization is gone; its business key is free again.
	recreated, err := service.CreateOrganizationTx(nil, req2, "importer")
	require.NoError(t, err)
	assert.NotEqual(t, org2.ID, recreated.ID)
}
