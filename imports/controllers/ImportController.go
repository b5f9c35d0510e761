package controllers

import (
	"errors"
	"fmt"
	"io"

	"org-registry-backend/config"
	"org-registry-backend/imports/repositories"
	"org-registry-backend/imports/services"
	org_services "org-registry-backend/organizations/services"
	user_repositories "org-registry-backend/users/repositories"
	"org-registry-backend/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ImportController struct {
	SagaService *services.ImportSagaService
	AuditRepo   repositories.ImportOperationRepository
	UserRepo    user_repositories.UserRepository
	Storage     utils.ObjectStorage
	Faults      *services.FaultInjector
}

// UploadImportFile accepts a multipart CSV file plus the acting username and
// runs the import saga on it. The response always carries the saga result,
// including the audit entry id when one was opened.
func (ic *ImportController) UploadImportFile(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Failed to get file"})
	}

	username := c.FormValue("created_by")
	if username == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Missing 'created_by' field in FormData"})
	}

	user, err := ic.UserRepo.GetUserByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "User not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to look up user"})
	}

	src, err := file.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to open uploaded file"})
	}
	fileBytes, err := io.ReadAll(src)
	src.Close()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to read uploaded file"})
	}

	result, err := ic.SagaService.RunImport(c.Context(), user, file.Filename, fileBytes, ic.Faults)
	if err != nil {
		ic.notifyImportFailure(user.Email, file.Filename, result.ErrorMessage)
		return c.Status(importFailureStatus(err)).JSON(fiber.Map{
			"message": "Import failed",
			"result":  result,
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Import completed successfully",
		"result":  result,
	})
}

// importFailureStatus maps saga errors to HTTP statuses: bad input is the
// caller's fault, a business-key collision is a conflict, everything else is
// an internal failure.
func importFailureStatus(err error) int {
	var parseErr *services.ParseError
	var validationErr *org_services.ValidationError
	var uniqueErr *org_services.UniqueConstraintError
	switch {
	case errors.As(err, &parseErr), errors.As(err, &validationErr):
		return fiber.StatusBadRequest
	case errors.As(err, &uniqueErr):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

func (ic *ImportController) notifyImportFailure(email, fileName, reason string) {
	if email == "" {
		return
	}
	go func() {
		message := fmt.Sprintf("Your import of file '%s' failed and was rolled back.\n\nReason: %s", fileName, reason)
		if err := utils.SendEmail(email, message, "Import Failed", ""); err != nil {
			config.Logger.Error("Failed to send import failure email",
				zap.String("email", email),
				zap.Error(err),
			)
		}
	}()
}
