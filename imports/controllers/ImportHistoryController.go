package controllers

import (
	"errors"
	"fmt"
	"time"

	"org-registry-backend/db/models"
	"org-registry-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// importHistoryRow flattens one audit entry for the Excel export. Field names
// double as export headers.
type importHistoryRow struct {
	ID                string
	Username          string
	Status            string
	StartTime         string
	EndTime           string
	AddedObjectsCount int
	ErrorMessage      string
	StorageObjectKey  string
}

var importHistoryHeaders = []string{
	"ID", "Username", "Status", "StartTime", "EndTime",
	"AddedObjectsCount", "ErrorMessage", "StorageObjectKey",
}

// GetImportHistory returns the audit trail for the requesting user, newest
// first. Admins see every user's operations.
func (ic *ImportController) GetImportHistory(c *fiber.Ctx) error {
	user, err := ic.requestingUser(c)
	if user == nil {
		return err
	}

	operations, err := ic.AuditRepo.GetOperationsForUser(user)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to fetch import history"})
	}

	return c.JSON(fiber.Map{
		"data":  operations,
		"total": len(operations),
	})
}

// ExportImportHistory writes the visible audit trail to an Excel file and
// returns a download link for it.
func (ic *ImportController) ExportImportHistory(c *fiber.Ctx) error {
	user, err := ic.requestingUser(c)
	if user == nil {
		return err
	}

	operations, err := ic.AuditRepo.GetOperationsForUser(user)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to fetch import history"})
	}

	rows := make([]importHistoryRow, 0, len(operations))
	for _, op := range operations {
		row := importHistoryRow{
			ID:                op.ID.String(),
			Status:            string(op.Status),
			StartTime:         op.StartTime.Format(time.RFC3339),
			AddedObjectsCount: op.AddedObjectsCount,
			ErrorMessage:      op.ErrorMessage,
		}
		if op.User != nil {
			row.Username = op.User.Username
		}
		if op.EndTime != nil {
			row.EndTime = op.EndTime.Format(time.RFC3339)
		}
		if op.StorageObjectKey != nil {
			row.StorageObjectKey = *op.StorageObjectKey
		}
		rows = append(rows, row)
	}

	fileTag := fmt.Sprintf("import_history_%s", time.Now().Format("20060102_150405"))
	filePath, err := utils.GenerateExcel(rows, fileTag, importHistoryHeaders)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to generate Excel export"})
	}

	return c.JSON(fiber.Map{
		"message":  "Export generated",
		"file_url": utils.GenerateDownloadLink(filePath),
	})
}

// DownloadImportFile streams the originally uploaded file for one audit
// entry. Entries whose saga never finished the upload, or whose object was
// deleted by compensation, have nothing to stream.
func (ic *ImportController) DownloadImportFile(c *fiber.Ctx) error {
	id := c.Params("id")

	op, err := ic.AuditRepo.GetOperationByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Import operation not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to fetch import operation"})
	}
	if op.StorageObjectKey == nil || op.Status != models.ImportStatusSuccess {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "No stored file for this import operation"})
	}

	reader, err := ic.Storage.Download(c.Context(), *op.StorageObjectKey)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Stored file is no longer available"})
	}

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", *op.StorageObjectKey))
	return c.SendStream(reader)
}

// requestingUser resolves the acting user from the 'username' query param.
// On failure it writes the error response and returns a nil user.
func (ic *ImportController) requestingUser(c *fiber.Ctx) (*models.User, error) {
	username := c.Query("username")
	if username == "" {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Missing 'username' query parameter"})
	}
	user, err := ic.UserRepo.GetUserByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "User not found"})
		}
		return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to look up user"})
	}
	return user, nil
}
