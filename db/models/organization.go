package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrganizationType classifies an organization. Order matters: comparisons
// ("type less than") use declaration order.
type OrganizationType string

const (
	CommercialType            OrganizationType = "COMMERCIAL"
	PublicType                OrganizationType = "PUBLIC"
	GovernmentType            OrganizationType = "GOVERNMENT"
	TrustType                 OrganizationType = "TRUST"
	PrivateLimitedCompanyType OrganizationType = "PRIVATE_LIMITED_COMPANY"
)

// OrganizationTypeOrder is the ordinal position of each type, used by
// count-by-type-less-than queries.
var OrganizationTypeOrder = map[OrganizationType]int{
	CommercialType:            0,
	PublicType:                1,
	GovernmentType:            2,
	TrustType:                 3,
	PrivateLimitedCompanyType: 4,
}

func IsValidOrganizationType(t OrganizationType) bool {
	_, ok := OrganizationTypeOrder[t]
	return ok
}

// Coordinates is an embedded value object. Y has a domain lower bound of -461
// (exclusive), enforced by the validation gate.
type Coordinates struct {
	X float64 `gorm:"not null" json:"x"`
	Y int     `gorm:"not null" json:"y"`
}

// Address is an embedded value object; ZipCode is optional.
type Address struct {
	Street  string `json:"street"`
	ZipCode string `json:"zip_code"`
}

// Organization is the domain record produced by imports and by the CRUD
// surface. The (name, type) pair is the business key: the composite unique
// index is the commit-time backstop behind the in-transaction uniqueness gate.
// The index only covers live rows, so a merged or deleted organization frees
// its key for reuse.
type Organization struct {
	ID       uuid.UUID        `gorm:"type:uuid;primary_key;" json:"id"`
	Name     string           `gorm:"not null;uniqueIndex:idx_org_business_key,where:deleted_at IS NULL" json:"name"`
	FullName *string          `gorm:"type:text" json:"full_name"`
	Type     OrganizationType `gorm:"type:varchar(50);not null;uniqueIndex:idx_org_business_key,where:deleted_at IS NULL" json:"type"`

	AnnualTurnover decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"annual_turnover"`
	EmployeesCount int             `gorm:"not null" json:"employees_count"`
	Rating         float64         `gorm:"not null" json:"rating"`

	Coordinates     Coordinates `gorm:"embedded;embeddedPrefix:coord_" json:"coordinates"`
	OfficialAddress Address     `gorm:"embedded;embeddedPrefix:official_" json:"official_address"`
	PostalAddress   Address     `gorm:"embedded;embeddedPrefix:postal_" json:"postal_address"`

	CreatedBy string         `gorm:"not null" json:"created_by"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (o *Organization) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
