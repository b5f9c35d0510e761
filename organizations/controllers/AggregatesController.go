package controllers

import (
	"errors"

	"org-registry-backend/db/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GetMaxFullNameController returns the organization with the longest full
// name on record.
func (oc *OrganizationController) GetMaxFullNameController(c *fiber.Ctx) error {
	org, err := oc.OrgRepo.GetOrganizationWithMaxFullName()
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "No organizations with a full name exist"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to fetch organization"})
	}

	return c.JSON(fiber.Map{"data": org})
}

// CountByTypeLessThanController counts organizations whose type precedes the
// given one in the type ordering.
func (oc *OrganizationController) CountByTypeLessThanController(c *fiber.Ctx) error {
	orgType := models.OrganizationType(c.Query("type"))
	if !models.IsValidOrganizationType(orgType) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Unknown organization type"})
	}

	count, err := oc.OrgRepo.CountByTypeLessThan(orgType)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to count organizations"})
	}

	return c.JSON(fiber.Map{
		"type":  orgType,
		"count": count,
	})
}
