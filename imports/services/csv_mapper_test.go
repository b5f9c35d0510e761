package services

import (
	"testing"

	"org-registry-backend/db/models"
	org_services "org-registry-backend/organizations/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseImportFilePreservesOrderAndLineNumbers(t *testing.T) {
	rows, err := ParseImportFile([]byte(validCSV))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// Line numbers count from the top of the file, header included.
	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, 3, rows[1].Line)
	assert.Equal(t, 4, rows[2].Line)
	assert.Equal(t, "Acme", rows[0].get("name"))
	assert.Equal(t, "Initech", rows[2].get("name"))
}

func TestParseImportFileRejectsEmptyFile(t *testing.T) {
	_, err := ParseImportFile([]byte(""))
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestParseImportFileRejectsHeaderOnlyFile(t *testing.T) {
	_, err := ParseImportFile([]byte("name,type\n"))
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Contains(t, err.Error(), "no data rows")
}

func TestParseImportFileRejectsMalformedRow(t *testing.T) {
	_, err := ParseImportFile([]byte("name,type,rating\nAcme,COMMERCIAL,4.5\nBroken,PUBLIC\n"))
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestMapRowToOrganizationFullRow(t *testing.T) {
	rows, err := ParseImportFile([]byte(validCSV))
	require.NoError(t, err)

	req, err := MapRowToOrganization(rows[0])
	require.NoError(t, err)

	assert.Equal(t, "Acme", req.Name)
	require.NotNil(t, req.FullName)
	assert.Equal(t, "Acme Corp", *req.FullName)
	assert.Equal(t, models.CommercialType, req.Type)
	assert.True(t, req.AnnualTurnover.Equal(decimal.RequireFromString("1000.50")))
	assert.Equal(t, 10, req.EmployeesCount)
	assert.Equal(t, 4.5, req.Rating)
	assert.Equal(t, 1.5, req.Coordinates.X)
	assert.Equal(t, 10, req.Coordinates.Y)
	assert.Equal(t, "Main St", req.OfficialAddress.Street)
	assert.Equal(t, "12345", req.OfficialAddress.ZipCode)
	assert.Equal(t, "Postal St", req.PostalAddress.Street)
}

func TestMapRowToOrganizationPostalStreetFallsBack(t *testing.T) {
	rows, err := ParseImportFile([]byte(validCSV))
	require.NoError(t, err)

	req, err := MapRowToOrganization(rows[1])
	require.NoError(t, err)

	assert.Nil(t, req.FullName)
	assert.Equal(t, "Side St", req.OfficialAddress.Street)
	assert.Equal(t, "Side St", req.PostalAddress.Street, "postal street defaults to official street")
}

func TestMapRowToOrganizationTypeIsCaseInsensitive(t *testing.T) {
	csv := "name,type,annualTurnover,employeesCount,rating,coordinates.x,coordinates.y,officialAddress.street,officialAddress.zipCode,postalAddress.street,postalAddress.zipCode\n" +
		"Acme,commercial,1000,10,4.5,1.5,10,Main St,12345,Main St,12345\n"
	rows, err := ParseImportFile([]byte(csv))
	require.NoError(t, err)

	req, err := MapRowToOrganization(rows[0])
	require.NoError(t, err)
	assert.Equal(t, models.CommercialType, req.Type)
}

func TestMapRowToOrganizationFieldErrors(t *testing.T) {
	header := "name,type,annualTurnover,employeesCount,rating,coordinates.x,coordinates.y,officialAddress.street,officialAddress.zipCode,postalAddress.street,postalAddress.zipCode\n"

	tests := []struct {
		name  string
		row   string
		field string
	}{
		{"missing name", ",COMMERCIAL,1000,10,4.5,1.5,10,Main St,123,Main St,123", "name"},
		{"unknown type", "Acme,SHELL_COMPANY,1000,10,4.5,1.5,10,Main St,123,Main St,123", "type"},
		{"bad turnover", "Acme,COMMERCIAL,lots,10,4.5,1.5,10,Main St,123,Main St,123", "annualTurnover"},
		{"bad employees", "Acme,COMMERCIAL,1000,ten,4.5,1.5,10,Main St,123,Main St,123", "employeesCount"},
		{"bad rating", "Acme,COMMERCIAL,1000,10,great,1.5,10,Main St,123,Main St,123", "rating"},
		{"bad y coordinate", "Acme,COMMERCIAL,1000,10,4.5,1.5,deep,Main St,123,Main St,123", "coordinates.y"},
		{"missing official street", "Acme,COMMERCIAL,1000,10,4.5,1.5,10,,123,Main St,123", "officialAddress.street"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := ParseImportFile([]byte(header + tt.row + "\n"))
			require.NoError(t, err)

			_, err = MapRowToOrganization(rows[0])
			var validationErr *org_services.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.field, validationErr.Field)
		})
	}
}
