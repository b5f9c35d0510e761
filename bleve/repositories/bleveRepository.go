package repositories

import (
	"context"
	bleveindex "org-registry-backend/bleve/services"
	"org-registry-backend/db/models"
)

type BleveRepository struct {
	indexer *bleveindex.IndexingService
}

type BleveRepositoryInterface interface {
	// General
	DeleteAllIndices(ctx context.Context) error

	// ==== Organization Indexing ====
	IndexSingleOrganization(org models.Organization) error
	IndexCreatedOrganizations(orgs []models.Organization)
	IndexExistingOrganizations(orgs []models.Organization) error
	UpdateOrganization(org models.Organization) error
	DeleteOrganization(orgID string) error
}

// Constructor returning both the struct and the interface
func NewBleveRepository(indexer *bleveindex.IndexingService) (*BleveRepository, BleveRepositoryInterface) {
	repo := &BleveRepository{indexer: indexer}
	return repo, repo
}

func (r *BleveRepository) DeleteAllIndices(ctx context.Context) error {
	return r.indexer.DeleteAllIndices()
}
