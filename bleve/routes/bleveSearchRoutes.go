package routes

import (
	"org-registry-backend/bleve/controllers"

	"github.com/gofiber/fiber/v2"
)

func InitBleveRoutes(app *fiber.App, controller *controllers.SearchController) {
	api := app.Group("/api/v1/search")

	api.Get("/organizations", controller.SearchOrganizationsController)
}
