package requests

import (
	"org-registry-backend/db/models"

	"github.com/shopspring/decimal"
)

// OrganizationRequest is the validated-at-the-gate input for creating one
// organization, produced either by the CSV record mapper or by the create
// endpoint.
type OrganizationRequest struct {
	Name            string                  `json:"name"`
	FullName        *string                 `json:"full_name"`
	Type            models.OrganizationType `json:"type"`
	AnnualTurnover  decimal.Decimal         `json:"annual_turnover"`
	EmployeesCount  int                     `json:"employees_count"`
	Rating          float64                 `json:"rating"`
	Coordinates     models.Coordinates      `json:"coordinates"`
	OfficialAddress models.Address          `json:"official_address"`
	PostalAddress   models.Address          `json:"postal_address"`
}

// MergeRequest renames the surviving organization and folds the other's
// measures into it.
type MergeRequest struct {
	OrgID1     string         `json:"org_id_1"`
	OrgID2     string         `json:"org_id_2"`
	NewName    string         `json:"new_name"`
	NewAddress models.Address `json:"new_address"`
}

// AbsorbRequest folds the absorbed organization's measures into the absorber
// and deletes the absorbed record.
type AbsorbRequest struct {
	AbsorberID string `json:"absorber_id"`
	AbsorbedID string `json:"absorbed_id"`
}
