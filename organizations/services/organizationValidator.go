package services

import (
	"org-registry-backend/db/models"
	"org-registry-backend/organizations/requests"
)

// MinCoordinateY is the exclusive lower bound of the Y coordinate.
const MinCoordinateY = -461

// ValidateOrganizationRequest runs the field-level checks every organization
// must pass before the business-key gate, whether it arrives through the CSV
// import or the create endpoint.
func ValidateOrganizationRequest(req requests.OrganizationRequest) error {
	if req.Name == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if req.Type == "" {
		return &ValidationError{Field: "type", Reason: "must not be empty"}
	}
	if !models.IsValidOrganizationType(req.Type) {
		return &ValidationError{Field: "type", Reason: "unknown organization type"}
	}
	if !req.AnnualTurnover.IsPositive() {
		return &ValidationError{Field: "annualTurnover", Reason: "must be positive"}
	}
	if req.EmployeesCount <= 0 {
		return &ValidationError{Field: "employeesCount", Reason: "must be positive"}
	}
	if req.Rating <= 0 {
		return &ValidationError{Field: "rating", Reason: "must be positive"}
	}
	if req.Coordinates.Y <= MinCoordinateY {
		return &ValidationError{Field: "coordinates.y", Reason: "must be greater than -461"}
	}
	if req.OfficialAddress.Street == "" {
		return &ValidationError{Field: "officialAddress.street", Reason: "must not be empty"}
	}
	if req.PostalAddress.Street == "" {
		return &ValidationError{Field: "postalAddress.street", Reason: "must not be empty"}
	}
	return nil
}
