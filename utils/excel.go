package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"

	"org-registry-backend/config"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// EnsureDirectoryExists ensures the specified directory exists before file saving
func EnsureDirectoryExists(dirPath string) error {
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		if err := os.MkdirAll(dirPath, 0755); err != nil {
			return fmt.Errorf("error creating directory: %v", err)
		}
	}
	return nil
}

// GenerateExcel creates an Excel file from a slice of structs. headers name
// the struct fields to export, in column order. Returns the path under
// ./public/files, which is served statically.
func GenerateExcel(data interface{}, fileTag string, headers []string) (string, error) {
	dirPath := "./public/files"
	if err := EnsureDirectoryExists(dirPath); err != nil {
		return "", fmt.Errorf("failed to ensure directory exists: %v", err)
	}

	f := excelize.NewFile()
	sheetName := "Sheet1"
	if _, err := f.NewSheet(sheetName); err != nil {
		return "", fmt.Errorf("error creating sheet: %v", err)
	}

	// Write headers dynamically
	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return "", fmt.Errorf("error resolving header cell: %v", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return "", fmt.Errorf("error setting header %s: %v", header, err)
		}
	}

	dataSlice := reflect.ValueOf(data)
	if dataSlice.Kind() != reflect.Slice {
		return "", fmt.Errorf("expected data to be a slice")
	}

	for row := 0; row < dataSlice.Len(); row++ {
		item := dataSlice.Index(row).Interface()

		for col, header := range headers {
			field := reflect.ValueOf(item).FieldByName(header)
			if !field.IsValid() {
				continue
			}
			value := field.Interface()
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return "", fmt.Errorf("error resolving data cell: %v", err)
			}
			if err := f.SetCellValue(sheetName, cell, fmt.Sprintf("%v", value)); err != nil {
				return "", fmt.Errorf("error setting value at %s: %v", cell, err)
			}
		}
	}

	filePath := filepath.Join(dirPath, fmt.Sprintf("%s.xlsx", fileTag))
	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving Excel file: %v", err)
	}

	config.Logger.Info("Generated Excel export",
		zap.String("path", filePath),
		zap.Int("rows", dataSlice.Len()))

	// Static handler serves ./public under /public
	return "/" + filepath.ToSlash(filepath.Clean(filePath)), nil
}

// GenerateDownloadLink builds an absolute URL for a generated file.
func GenerateDownloadLink(filePath string) string {
	port := os.Getenv("PORT")
	appEnv := os.Getenv("APP_ENV")

	baseURL := "http://localhost:" + port
	if appEnv == "production" {
		baseURL = os.Getenv("BASE_URL")
	}

	return baseURL + filePath
}
