package controllers

import (
	"org-registry-backend/config"
	"org-registry-backend/db/models"
	"org-registry-backend/organizations/requests"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type createOrganizationRequest struct {
	requests.OrganizationRequest
	CreatedBy string `json:"created_by"`
}

// CreateOrganizationController creates a single organization through the same
// validation and business-key gate the bulk import uses.
func (oc *OrganizationController) CreateOrganizationController(c *fiber.Ctx) error {
	var req createOrganizationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	if req.CreatedBy == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Missing 'created_by' field"})
	}

	var org *models.Organization
	err := oc.DB.Transaction(func(tx *gorm.DB) error {
		created, err := oc.OrgService.CreateOrganizationTx(tx, req.OrganizationRequest, req.CreatedBy)
		if err != nil {
			return err
		}
		org = created
		return nil
	})
	if err != nil {
		return c.Status(organizationErrorStatus(err)).JSON(fiber.Map{"message": err.Error()})
	}

	if oc.BleveRepo != nil {
		if err := oc.BleveRepo.IndexSingleOrganization(*org); err != nil {
			config.Logger.Error("Failed to index created organization", zap.Error(err))
		}
	}
	oc.Cache.InvalidateAsync("organizations")

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Organization created",
		"data":    org,
	})
}

// DeleteOrganizationController soft-deletes one organization.
func (oc *OrganizationController) DeleteOrganizationController(c *fiber.Ctx) error {
	id := c.Params("id")

	org, err := oc.OrgRepo.GetOrganizationByID(id)
	if err != nil {
		return c.Status(organizationErrorStatus(err)).JSON(fiber.Map{"message": "Organization not found"})
	}

	if err := oc.OrgRepo.DeleteOrganization(oc.DB, org.ID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to delete organization"})
	}

	if oc.BleveRepo != nil {
		if err := oc.BleveRepo.DeleteOrganization(org.ID.String()); err != nil {
			config.Logger.Error("Failed to remove organization from index", zap.Error(err))
		}
	}
	oc.Cache.InvalidateAsync("organizations")

	return c.JSON(fiber.Map{"message": "Organization deleted"})
}
