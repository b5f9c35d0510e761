package routes

import (
	"org-registry-backend/imports/controllers"
	"org-registry-backend/imports/repositories"
	"org-registry-backend/imports/services"
	user_repositories "org-registry-backend/users/repositories"
	"org-registry-backend/utils"

	"github.com/gofiber/fiber/v2"
)

func ImportRouterInit(
	app *fiber.App,
	sagaService *services.ImportSagaService,
	auditRepository repositories.ImportOperationRepository,
	userRepository user_repositories.UserRepository,
	storage utils.ObjectStorage,
	faults *services.FaultInjector,
	queryCache *utils.QueryCache,
	uploadLimiter fiber.Handler,
) {
	importController := &controllers.ImportController{
		SagaService: sagaService,
		AuditRepo:   auditRepository,
		UserRepo:    userRepository,
		Storage:     storage,
		Faults:      faults,
	}
	testFlagsController := &controllers.TestFlagsController{
		Faults: faults,
		Cache:  queryCache,
	}

	importRoutes := app.Group("/imports")
	importRoutes.Post("/", uploadLimiter, importController.UploadImportFile)
	importRoutes.Get("/history", importController.GetImportHistory)
	importRoutes.Get("/history/export", importController.ExportImportHistory)
	importRoutes.Get("/:id/file", importController.DownloadImportFile)

	testFlagRoutes := app.Group("/test-flags")
	testFlagRoutes.Post("/faults/arm", testFlagsController.ArmFault)
	testFlagRoutes.Post("/faults/reset", testFlagsController.ResetFaults)
	testFlagRoutes.Get("/faults", testFlagsController.FaultStatus)
	testFlagRoutes.Post("/cache/stats-logging", testFlagsController.SetCacheStatsLogging)
	testFlagRoutes.Get("/cache/stats", testFlagsController.CacheStats)
}
