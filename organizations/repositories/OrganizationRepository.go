package repositories

import (
	"strings"

	"org-registry-backend/db/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrganizationRepository interface {
	CreateOrganization(tx *gorm.DB, org *models.Organization) error
	LockBusinessKey(tx *gorm.DB, name string, orgType models.OrganizationType) error
	ExistsByBusinessKey(tx *gorm.DB, name string, orgType models.OrganizationType) (bool, error)
	GetOrganizationByID(id string) (*models.Organization, error)
	UpdateOrganization(tx *gorm.DB, org *models.Organization) error
	DeleteOrganization(tx *gorm.DB, id uuid.UUID) error
	GetFilteredOrganizations(pageSize int, offset int, filters map[string]string) ([]models.Organization, int64, error)
	GetOrganizationWithMaxFullName() (*models.Organization, error)
	CountByTypeLessThan(orgType models.OrganizationType) (int64, error)
}

// Implementations
type organizationRepository struct {
	db *gorm.DB
}

func NewOrganizationRepository(db *gorm.DB) OrganizationRepository {
	return &organizationRepository{db: db}
}

func (r *organizationRepository) CreateOrganization(tx *gorm.DB, org *models.Organization) error {
	return tx.Create(org).Error
}

// LockBusinessKey serializes writers of the same (name, type) pair for the
// duration of the surrounding transaction. The advisory lock is keyed on the
// hashed business key, so unrelated pairs never block each other, and it is
// released automatically at commit or rollback.
func (r *organizationRepository) LockBusinessKey(tx *gorm.DB, name string, orgType models.OrganizationType) error {
	key := name + "|" + string(orgType)
	return tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", key).Error
}

// ExistsByBusinessKey must run after LockBusinessKey in the same transaction.
// The FOR UPDATE read keeps an existing row pinned until the caller decides.
func (r *organizationRepository) ExistsByBusinessKey(tx *gorm.DB, name string, orgType models.OrganizationType) (bool, error) {
	var count int64
	err := tx.Model(&models.Organization{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("name = ? AND type = ?", name, orgType).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *organizationRepository) GetOrganizationByID(id string) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.Where("id = ?", id).First(&org).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *organizationRepository) UpdateOrganization(tx *gorm.DB, org *models.Organization) error {
	return tx.Save(org).Error
}

func (r *organizationRepository) DeleteOrganization(tx *gorm.DB, id uuid.UUID) error {
	return tx.Delete(&models.Organization{}, "id = ?", id).Error
}

func (r *organizationRepository) GetFilteredOrganizations(pageSize int, offset int, filters map[string]string) ([]models.Organization, int64, error) {
	var organizations []models.Organization
	var total int64

	db := r.db.Model(&models.Organization{}) // start a new query chain

	// Apply filters
	for key, value := range filters {
		switch key {
		case "name":
			db = db.Where("name ILIKE ?", "%"+value+"%")
		case "type":
			db = db.Where("type = ?", strings.ToUpper(value))
		case "created_by":
			db = db.Where("created_by = ?", value)
		case "start_date":
			db = db.Where("created_at >= ?", value)
		case "end_date":
			db = db.Where("created_at <= ?", value)
		case "min_rating":
			db = db.Where("rating >= ?", value)
		}
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Order("created_at DESC").
		Limit(pageSize).
		Offset(offset).
		Find(&organizations).Error
	if err != nil {
		return nil, 0, err
	}

	return organizations, total, nil
}

func (r *organizationRepository) GetOrganizationWithMaxFullName() (*models.Organization, error) {
	var org models.Organization
	err := r.db.Where("full_name IS NOT NULL").
		Order("char_length(full_name) DESC").
		First(&org).Error
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// CountByTypeLessThan counts organizations whose type precedes the given one
// in the declaration order of the type enum.
func (r *organizationRepository) CountByTypeLessThan(orgType models.OrganizationType) (int64, error) {
	rank, ok := models.OrganizationTypeOrder[orgType]
	if !ok {
		return 0, gorm.ErrInvalidValue
	}

	var lesser []models.OrganizationType
	for t, r := range models.OrganizationTypeOrder {
		if r < rank {
			lesser = append(lesser, t)
		}
	}
	if len(lesser) == 0 {
		return 0, nil
	}

	var count int64
	err := r.db.Model(&models.Organization{}).
		Where("type IN ?", lesser).
		Count(&count).Error
	return count, err
}
