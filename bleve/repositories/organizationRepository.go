package repositories

import (
	"org-registry-backend/config"
	"org-registry-backend/db/models"

	"github.com/blevesearch/bleve/v2"
	"go.uber.org/zap"
)

const organizationsIndex = "organizations"

// bleveOrganizationDoc is the minimal document shape stored in the index.
type bleveOrganizationDoc struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	FullName       string  `json:"full_name,omitempty"`
	Type           string  `json:"type"`
	OfficialStreet string  `json:"official_street"`
	PostalStreet   string  `json:"postal_street"`
	Rating         float64 `json:"rating"`
	CreatedBy      string  `json:"created_by"`
}

func makeOrganizationDoc(org models.Organization) bleveOrganizationDoc {
	doc := bleveOrganizationDoc{
		ID:             org.ID.String(),
		Name:           org.Name,
		Type:           string(org.Type),
		OfficialStreet: org.OfficialAddress.Street,
		PostalStreet:   org.PostalAddress.Street,
		Rating:         org.Rating,
		CreatedBy:      org.CreatedBy,
	}
	if org.FullName != nil {
		doc.FullName = *org.FullName
	}
	return doc
}

// SearchOrganizations combines exact, prefix and fuzzy matching over the
// searchable organization fields, weighted so exact hits rank first.
func (r *BleveRepository) SearchOrganizations(queryString string) (*bleve.SearchResult, error) {
	booleanQuery := bleve.NewBooleanQuery()

	fieldsToSearch := []string{"name", "full_name", "official_street", "postal_street", "created_by"}

	for _, field := range fieldsToSearch {
		fieldMatchQuery := bleve.NewMatchQuery(queryString)
		fieldMatchQuery.SetField(field)
		fieldMatchQuery.SetBoost(3.0)
		booleanQuery.AddShould(fieldMatchQuery)

		fieldPrefixQuery := bleve.NewPrefixQuery(queryString)
		fieldPrefixQuery.SetField(field)
		fieldPrefixQuery.SetBoost(2.0)
		booleanQuery.AddShould(fieldPrefixQuery)

		fieldFuzzyQuery := bleve.NewFuzzyQuery(queryString)
		fieldFuzzyQuery.SetField(field)
		fieldFuzzyQuery.SetFuzziness(1)
		fieldFuzzyQuery.SetBoost(1.0)
		booleanQuery.AddShould(fieldFuzzyQuery)
	}

	booleanQuery.SetMinShould(1)

	return r.indexer.SearchIndex(organizationsIndex, booleanQuery, 20)
}

func (r *BleveRepository) GetOrganizationDocument(id string) (interface{}, error) {
	return r.indexer.GetDocument(organizationsIndex, id)
}

func (r *BleveRepository) IndexSingleOrganization(org models.Organization) error {
	err := r.indexer.IndexDocument(organizationsIndex, org.ID.String(), makeOrganizationDoc(org))
	if err != nil {
		config.Logger.Error("Failed to index single organization into Bleve",
			zap.Error(err),
			zap.String("organization_id", org.ID.String()))
		return err
	}
	return nil
}

// IndexCreatedOrganizations indexes freshly committed rows in the background.
// Indexing failures are logged and never surfaced to the caller.
func (r *BleveRepository) IndexCreatedOrganizations(orgs []models.Organization) {
	go func() {
		for _, org := range orgs {
			_ = r.IndexSingleOrganization(org)
		}
	}()
}

// UpdateOrganization deletes the existing document and re-indexes the
// updated organization.
func (r *BleveRepository) UpdateOrganization(org models.Organization) error {
	orgID := org.ID.String()

	if err := r.indexer.DeleteDocument(organizationsIndex, orgID); err != nil {
		config.Logger.Error("Failed to delete organization document for update in Bleve",
			zap.Error(err), zap.String("organization_id", orgID))
		return err
	}
	return r.IndexSingleOrganization(org)
}

// DeleteOrganization removes an organization document from the index.
func (r *BleveRepository) DeleteOrganization(orgID string) error {
	if err := r.indexer.DeleteDocument(organizationsIndex, orgID); err != nil {
		config.Logger.Error("Failed to delete organization from Bleve",
			zap.Error(err), zap.String("organization_id", orgID))
		return err
	}
	return nil
}

// IndexExistingOrganizations bulk-indexes the current table contents, used at
// startup to rebuild the index from the database.
func (r *BleveRepository) IndexExistingOrganizations(orgs []models.Organization) error {
	documents := make(map[string]interface{}, len(orgs))
	for _, org := range orgs {
		documents[org.ID.String()] = makeOrganizationDoc(org)
	}

	if err := r.indexer.BulkIndexDocuments(organizationsIndex, documents); err != nil {
		config.Logger.Error("Failed to bulk index organizations into Bleve", zap.Error(err))
		return err
	}

	config.Logger.Info("Indexed existing organizations into Bleve", zap.Int("count", len(orgs)))
	return nil
}
