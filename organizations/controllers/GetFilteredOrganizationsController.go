package controllers

import (
	"encoding/json"
	"strings"

	"org-registry-backend/config"
	"org-registry-backend/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// GetFilteredOrganizationsController lists organizations with pagination and
// filtering. Responses are served from the Redis query cache when an
// identical query was answered recently; any write to the table invalidates
// the whole resource.
func (oc *OrganizationController) GetFilteredOrganizationsController(c *fiber.Ctx) error {

	// Parse query parameters
	pageSize := c.QueryInt("page_size", 20)
	if pageSize <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid page_size parameter"})
	}

	page := c.QueryInt("page", 1)
	if page <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid page parameter"})
	}

	cleanQueryParam := func(param string) string {
		param = strings.TrimSpace(param)
		if param == "" || strings.ToLower(param) == "null" {
			return ""
		}
		return param
	}

	filters := make(map[string]string)
	for _, key := range []string{"name", "type", "created_by", "start_date", "end_date", "min_rating"} {
		if value := cleanQueryParam(c.Query(key)); value != "" {
			filters[key] = value
		}
	}

	cacheKey := utils.GenerateQueryHash("organizations", filters, page, pageSize)
	if cached, ok := oc.Cache.Get(c.Context(), cacheKey); ok {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.SendString(cached)
	}

	offset := (page - 1) * pageSize

	organizations, total, err := oc.OrgRepo.GetFilteredOrganizations(pageSize, offset, filters)
	if err != nil {
		config.Logger.Error("Failed to fetch paginated organizations", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch organizations"})
	}

	totalPages := (total + int64(pageSize) - 1) / int64(pageSize)
	response := fiber.Map{
		"data": organizations,
		"meta": fiber.Map{
			"current_page": page,
			"page_size":    pageSize,
			"total":        total,
			"total_pages":  totalPages,
		},
	}

	if payload, err := json.Marshal(response); err == nil {
		if err := oc.Cache.Set(c.Context(), cacheKey, string(payload)); err != nil {
			config.Logger.Warn("Failed to cache organizations page", zap.Error(err))
		}
	}

	return c.Status(fiber.StatusOK).JSON(response)
}

// GetSingleOrganizationController returns one organization by id.
func (oc *OrganizationController) GetSingleOrganizationController(c *fiber.Ctx) error {
	id := c.Params("id")

	org, err := oc.OrgRepo.GetOrganizationByID(id)
	if err != nil {
		return c.Status(organizationErrorStatus(err)).JSON(fiber.Map{"error": "Organization not found"})
	}

	return c.JSON(fiber.Map{"data": org})
}
