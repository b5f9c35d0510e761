package main

import (
	"context"

	config "org-registry-backend/config"
	"org-registry-backend/middleware"
	"org-registry-backend/utils"

	// Repositories
	imports_repositories "org-registry-backend/imports/repositories"
	organizations_repositories "org-registry-backend/organizations/repositories"
	users_repositories "org-registry-backend/users/repositories"

	// Services
	imports_services "org-registry-backend/imports/services"
	organizations_services "org-registry-backend/organizations/services"

	// Routes
	import_routes "org-registry-backend/imports/routes"
	organization_routes "org-registry-backend/organizations/routes"

	// bleve
	bleveControllers "org-registry-backend/bleve/controllers"
	bleveRepositories "org-registry-backend/bleve/repositories"
	bleveRoutes "org-registry-backend/bleve/routes"
	bleveServices "org-registry-backend/bleve/services"

	"org-registry-backend/internal/bootstrap"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	// Initialize Zap logger
	config.InitLogger()

	// Load environment variables
	config.LoadEnv()

	app := fiber.New(fiber.Config{
		BodyLimit: 50 * 1024 * 1024, // import files can be large
	})

	// Apply CORS middleware from middleware package
	middleware.InitCors(app)

	// Initialize database and configs
	db := config.ConfigureDatabase()
	port := config.GetEnvDefault("PORT", "8080")
	ctx := context.Background()

	redisClient := config.InitRedisServer(ctx)
	queryCache := utils.NewQueryCache(redisClient)

	bucketName := config.GetEnvDefault("MINIO_BUCKET", "org-imports")
	minioClient := config.InitMinioClient(ctx, bucketName)
	objectStorage := utils.NewMinioObjectStorage(minioClient, bucketName)

	indexPath := config.GetEnvDefault("BLEVE_INDEX_PATH", "./bleve_data")

	// Initialize the mailer
	utils.InitializeMailer()
	if utils.GetMailer() == nil {
		config.Logger.Fatal("Mailer not initialized")
	}
	utils.SetEmailLogDB(db)

	// Serve static files
	app.Static("/public", "./public")

	// Repositories
	bleveIndexingService := bleveServices.NewIndexingService(config.Logger, indexPath)
	bleveServiceRepo, bleveInterfaceRepo := bleveRepositories.NewBleveRepository(bleveIndexingService)
	userRepo := users_repositories.NewUserRepository(db)
	organizationRepo := organizations_repositories.NewOrganizationRepository(db)
	auditRepo := imports_repositories.NewImportOperationRepository(db)

	// Services
	organizationService := organizations_services.NewOrganizationService(organizationRepo, config.Logger)
	txManager := imports_services.NewGormTransactionManager(db)
	faults := imports_services.NewFaultInjector()
	sagaService := imports_services.NewImportSagaService(
		objectStorage,
		txManager,
		auditRepo,
		organizationService,
		bleveServiceRepo,
		queryCache,
		config.Logger,
	)

	// Routes
	uploadLimiter := middleware.NewUploadLimiter(rate.Limit(1), 3)
	organization_routes.OrganizationRouterInit(app, db, organizationRepo, organizationService, queryCache, bleveInterfaceRepo)
	import_routes.ImportRouterInit(app, sagaService, auditRepo, userRepo, objectStorage, faults, queryCache, uploadLimiter)

	// Bleve Routes
	bleveController := bleveControllers.NewSearchController(bleveServiceRepo)
	bleveRoutes.InitBleveRoutes(app, bleveController)

	// Background cleanup of generated exports
	go utils.RunScheduledCleanup()

	// Re-Index all data
	bootstrap.IndexBleveData(ctx, organizationRepo, bleveInterfaceRepo)

	// Seed the default users the import endpoints authenticate against
	if err := config.SeedInitialUsers(db); err != nil {
		config.Logger.Error("Database seeding failed", zap.Error(err))
	}

	// Start the application
	config.Logger.Info("Server starting", zap.String("port", port))
	config.Logger.Fatal("Server failed", zap.String("port", port), zap.Error(app.Listen(":"+port)))
}
