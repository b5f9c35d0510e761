package controllers

import (
	"org-registry-backend/config"
	"org-registry-backend/db/models"
	"org-registry-backend/organizations/requests"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MergeOrganizationsController merges two organizations into one under a new
// name inside a single transaction.
func (oc *OrganizationController) MergeOrganizationsController(c *fiber.Ctx) error {
	var req requests.MergeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}

	var survivor *models.Organization
	err := oc.DB.Transaction(func(tx *gorm.DB) error {
		merged, err := oc.OrgService.MergeOrganizations(tx, req)
		if err != nil {
			return err
		}
		survivor = merged
		return nil
	})
	if err != nil {
		return c.Status(organizationErrorStatus(err)).JSON(fiber.Map{"message": err.Error()})
	}

	oc.refreshAfterFold(survivor, req.OrgID2)

	return c.JSON(fiber.Map{
		"message": "Organizations merged",
		"data":    survivor,
	})
}

// AbsorbOrganizationController folds one organization into another inside a
// single transaction.
func (oc *OrganizationController) AbsorbOrganizationController(c *fiber.Ctx) error {
	var req requests.AbsorbRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}

	var absorber *models.Organization
	err := oc.DB.Transaction(func(tx *gorm.DB) error {
		result, err := oc.OrgService.AbsorbOrganization(tx, req)
		if err != nil {
			return err
		}
		absorber = result
		return nil
	})
	if err != nil {
		return c.Status(organizationErrorStatus(err)).JSON(fiber.Map{"message": err.Error()})
	}

	oc.refreshAfterFold(absorber, req.AbsorbedID)

	return c.JSON(fiber.Map{
		"message": "Organization absorbed",
		"data":    absorber,
	})
}

// refreshAfterFold updates the search index and listing cache after a merge
// or absorb committed: the survivor is re-indexed, the folded organization's
// document is removed.
func (oc *OrganizationController) refreshAfterFold(survivor *models.Organization, foldedID string) {
	if oc.BleveRepo != nil {
		if err := oc.BleveRepo.UpdateOrganization(*survivor); err != nil {
			config.Logger.Error("Failed to re-index surviving organization", zap.Error(err))
		}
		if err := oc.BleveRepo.DeleteOrganization(foldedID); err != nil {
			config.Logger.Error("Failed to remove folded organization from index", zap.Error(err))
		}
	}
	oc.Cache.InvalidateAsync("organizations")
}
