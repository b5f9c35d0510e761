package bootstrap

import (
	"context"
	"log"

	bleveRepositories "org-registry-backend/bleve/repositories"
	"org-registry-backend/config"
	organizations_repositories "org-registry-backend/organizations/repositories"

	"go.uber.org/zap"
)

// IndexBleveData rebuilds the search index from the database at startup.
func IndexBleveData(
	ctx context.Context,
	organizationRepo organizations_repositories.OrganizationRepository,
	bleveRepo bleveRepositories.BleveRepositoryInterface,
) {

	// Delete All Indexes first
	err := bleveRepo.DeleteAllIndices(ctx)
	if err != nil {
		log.Fatalf("Error deleting all indices: %v", err)
	}

	// Index Organizations
	if organizations, _, err := organizationRepo.GetFilteredOrganizations(10000, 0, nil); err != nil {
		config.Logger.Error("Error fetching organizations for Bleve indexing", zap.Error(err))
	} else if err := bleveRepo.IndexExistingOrganizations(organizations); err != nil {
		config.Logger.Error("Failed to index organizations into Bleve", zap.Error(err))
	}
}
