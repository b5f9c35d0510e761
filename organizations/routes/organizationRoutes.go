package routes

import (
	indexing_repository "org-registry-backend/bleve/repositories"
	"org-registry-backend/organizations/controllers"
	"org-registry-backend/organizations/repositories"
	"org-registry-backend/organizations/services"
	"org-registry-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func OrganizationRouterInit(
	app *fiber.App,
	db *gorm.DB,
	organizationRepository repositories.OrganizationRepository,
	organizationService *services.OrganizationService,
	queryCache *utils.QueryCache,
	bleveRepo indexing_repository.BleveRepositoryInterface,
) {
	organizationController := &controllers.OrganizationController{
		OrgRepo:    organizationRepository,
		OrgService: organizationService,
		DB:         db,
		Cache:      queryCache,
		BleveRepo:  bleveRepo,
	}

	organizationRoutes := app.Group("/organizations")
	organizationRoutes.Post("/", organizationController.CreateOrganizationController)
	organizationRoutes.Get("/", organizationController.GetFilteredOrganizationsController)
	organizationRoutes.Get("/aggregates/max-full-name", organizationController.GetMaxFullNameController)
	organizationRoutes.Get("/aggregates/count-by-type", organizationController.CountByTypeLessThanController)
	organizationRoutes.Post("/merge", organizationController.MergeOrganizationsController)
	organizationRoutes.Post("/absorb", organizationController.AbsorbOrganizationController)
	organizationRoutes.Get("/:id", organizationController.GetSingleOrganizationController)
	organizationRoutes.Delete("/:id", organizationController.DeleteOrganizationController)
}
