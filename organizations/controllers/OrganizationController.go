package controllers

import (
	"errors"

	indexing_repository "org-registry-backend/bleve/repositories"
	"org-registry-backend/organizations/repositories"
	"org-registry-backend/organizations/services"
	"org-registry-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type OrganizationController struct {
	OrgRepo    repositories.OrganizationRepository
	OrgService *services.OrganizationService
	DB         *gorm.DB
	Cache      *utils.QueryCache
	BleveRepo  indexing_repository.BleveRepositoryInterface
}

// organizationErrorStatus maps service errors to HTTP statuses.
func organizationErrorStatus(err error) int {
	var validationErr *services.ValidationError
	var uniqueErr *services.UniqueConstraintError
	switch {
	case errors.As(err, &validationErr):
		return fiber.StatusBadRequest
	case errors.As(err, &uniqueErr):
		return fiber.StatusConflict
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}
