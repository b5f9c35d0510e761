package services

import (
	"bytes"
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"org-registry-backend/db/models"
	org_requests "org-registry-backend/organizations/requests"
	org_services "org-registry-backend/organizations/services"

	"github.com/shopspring/decimal"
)

// Column names of the import file, header-addressed. The mapping below is
// static and field-by-field: every column is read and converted explicitly.
const (
	colName           = "name"
	colFullName       = "fullName"
	colType           = "type"
	colAnnualTurnover = "annualTurnover"
	colEmployeesCount = "employeesCount"
	colRating         = "rating"
	colCoordX         = "coordinates.x"
	colCoordY         = "coordinates.y"
	colOfficialStreet = "officialAddress.street"
	colOfficialZip    = "officialAddress.zipCode"
	colPostalStreet   = "postalAddress.street"
	colPostalZip      = "postalAddress.zipCode"
)

// ImportRow is one data row of the uploaded file, addressed by column name.
type ImportRow struct {
	Line   int // 1-based line number in the file, header included
	values map[string]string
}

func (r ImportRow) get(column string) string {
	return strings.TrimSpace(r.values[column])
}

// ParseImportFile reads the whole delimited file into rows, preserving file
// order. A file without data rows is a parse failure: the original system
// refused empty imports rather than committing a zero-row success.
func ParseImportFile(fileBytes []byte) ([]ImportRow, error) {
	reader := csv.NewReader(bytes.NewReader(fileBytes))
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, &ParseError{Reason: "file is empty"}
		}
		return nil, &ParseError{Reason: "failed to read header row", Err: err}
	}

	columnIndex := make(map[string]int, len(header))
	for i, name := range header {
		columnIndex[strings.TrimSpace(name)] = i
	}

	var rows []ImportRow
	line := 1
	for {
		record, err := reader.Read()
		line++
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ParseError{Reason: "malformed row", Err: err}
		}

		values := make(map[string]string, len(columnIndex))
		for name, idx := range columnIndex {
			if idx < len(record) {
				values[name] = record[idx]
			}
		}
		rows = append(rows, ImportRow{Line: line, values: values})
	}

	if len(rows) == 0 {
		return nil, &ParseError{Reason: "file contains no data rows"}
	}
	return rows, nil
}

// MapRowToOrganization converts one parsed row into a validated-shape
// organization request. Pure: no I/O, no repository access. Missing required
// fields fail with a validation error naming the field; an absent postal
// street falls back to the official street (documented default, not an
// error).
func MapRowToOrganization(row ImportRow) (org_requests.OrganizationRequest, error) {
	var req org_requests.OrganizationRequest

	name := row.get(colName)
	if name == "" {
		return req, &org_services.ValidationError{Field: colName, Reason: "required field is missing"}
	}

	typeValue := models.OrganizationType(strings.ToUpper(row.get(colType)))
	if typeValue == "" {
		return req, &org_services.ValidationError{Field: colType, Reason: "required field is missing"}
	}
	if !models.IsValidOrganizationType(typeValue) {
		return req, &org_services.ValidationError{Field: colType, Reason: "unknown organization type"}
	}

	turnoverRaw := row.get(colAnnualTurnover)
	if turnoverRaw == "" {
		return req, &org_services.ValidationError{Field: colAnnualTurnover, Reason: "required field is missing"}
	}
	turnover, err := decimal.NewFromString(turnoverRaw)
	if err != nil {
		return req, &org_services.ValidationError{Field: colAnnualTurnover, Reason: "not a valid number"}
	}

	employeesRaw := row.get(colEmployeesCount)
	if employeesRaw == "" {
		return req, &org_services.ValidationError{Field: colEmployeesCount, Reason: "required field is missing"}
	}
	employees, err := strconv.Atoi(employeesRaw)
	if err != nil {
		return req, &org_services.ValidationError{Field: colEmployeesCount, Reason: "not a valid integer"}
	}

	ratingRaw := row.get(colRating)
	if ratingRaw == "" {
		return req, &org_services.ValidationError{Field: colRating, Reason: "required field is missing"}
	}
	rating, err := strconv.ParseFloat(ratingRaw, 64)
	if err != nil {
		return req, &org_services.ValidationError{Field: colRating, Reason: "not a valid number"}
	}

	xRaw := row.get(colCoordX)
	if xRaw == "" {
		return req, &org_services.ValidationError{Field: colCoordX, Reason: "required field is missing"}
	}
	x, err := strconv.ParseFloat(xRaw, 64)
	if err != nil {
		return req, &org_services.ValidationError{Field: colCoordX, Reason: "not a valid number"}
	}

	yRaw := row.get(colCoordY)
	if yRaw == "" {
		return req, &org_services.ValidationError{Field: colCoordY, Reason: "required field is missing"}
	}
	y, err := strconv.Atoi(yRaw)
	if err != nil {
		return req, &org_services.ValidationError{Field: colCoordY, Reason: "not a valid integer"}
	}

	officialStreet := row.get(colOfficialStreet)
	if officialStreet == "" {
		return req, &org_services.ValidationError{Field: colOfficialStreet, Reason: "required field is missing"}
	}

	// Postal street defaults to the official street when absent.
	postalStreet := row.get(colPostalStreet)
	if postalStreet == "" {
		postalStreet = officialStreet
	}

	var fullName *string
	if v := row.get(colFullName); v != "" {
		fullName = &v
	}

	req = org_requests.OrganizationRequest{
		Name:           name,
		FullName:       fullName,
		Type:           typeValue,
		AnnualTurnover: turnover,
		EmployeesCount: employees,
		Rating:         rating,
		Coordinates:    models.Coordinates{X: x, Y: y},
		OfficialAddress: models.Address{
			Street:  officialStreet,
			ZipCode: row.get(colOfficialZip),
		},
		PostalAddress: models.Address{
			Street:  postalStreet,
			ZipCode: row.get(colPostalZip),
		},
	}
	return req, nil
}
