package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
	"go.uber.org/zap"
)

// IndexingService owns the bleve indexes under basePath, opening each one
// lazily on first use. Post-commit indexing runs from background goroutines,
// so access to the open-index map is serialized.
type IndexingService struct {
	mu       sync.Mutex
	open     map[string]bleve.Index
	logger   *zap.Logger
	basePath string
}

func NewIndexingService(logger *zap.Logger, basePath string) *IndexingService {
	return &IndexingService{
		open:     make(map[string]bleve.Index),
		logger:   logger,
		basePath: basePath,
	}
}

func (s *IndexingService) indexPath(indexName string) string {
	return filepath.Join(s.basePath, indexName+".bleve")
}

// openIndex returns the cached handle, opening the on-disk index or creating
// a fresh one with the default mapping when none exists yet.
func (s *IndexingService) openIndex(indexName string) (bleve.Index, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx, ok := s.open[indexName]; ok {
		return idx, nil
	}

	path := s.indexPath(indexName)
	idx, err := bleve.Open(path)
	if err != nil {
		idx, err = bleve.New(path, bleve.NewIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("failed to open or create index %s: %w", path, err)
		}
	}

	s.open[indexName] = idx
	return idx, nil
}

func (s *IndexingService) SearchIndex(indexName string, q query.Query, size int) (*bleve.SearchResult, error) {
	idx, err := s.openIndex(indexName)
	if err != nil {
		return nil, err
	}

	request := bleve.NewSearchRequestOptions(q, size, 0, false)
	request.Fields = []string{"*"}

	result, err := idx.Search(request)
	if err != nil {
		s.logger.Error("Index search failed", zap.String("index_name", indexName), zap.Error(err))
		return nil, err
	}
	return result, nil
}

func (s *IndexingService) IndexDocument(indexName, id string, document interface{}) error {
	idx, err := s.openIndex(indexName)
	if err != nil {
		return err
	}
	if err := idx.Index(id, document); err != nil {
		s.logger.Error("Failed to index document",
			zap.String("index_name", indexName),
			zap.String("id", id),
			zap.Error(err))
		return err
	}
	return nil
}

// BulkIndexDocuments writes all documents in one batch. The batch either
// applies fully or returns an error with nothing committed.
func (s *IndexingService) BulkIndexDocuments(indexName string, documents map[string]interface{}) error {
	idx, err := s.openIndex(indexName)
	if err != nil {
		return err
	}

	batch := idx.NewBatch()
	for id, doc := range documents {
		if err := batch.Index(id, doc); err != nil {
			return fmt.Errorf("failed to stage document %s: %w", id, err)
		}
	}
	if err := idx.Batch(batch); err != nil {
		s.logger.Error("Failed to apply index batch",
			zap.String("index_name", indexName),
			zap.Int("count", len(documents)),
			zap.Error(err))
		return err
	}
	return nil
}

func (s *IndexingService) DeleteDocument(indexName, id string) error {
	idx, err := s.openIndex(indexName)
	if err != nil {
		return err
	}
	if err := idx.Delete(id); err != nil {
		s.logger.Error("Failed to delete document",
			zap.String("index_name", indexName),
			zap.String("id", id),
			zap.Error(err))
		return err
	}
	return nil
}

// GetDocument fetches one document's stored fields by a doc-ID search; bleve
// has no direct stored-field lookup.
func (s *IndexingService) GetDocument(indexName, id string) (interface{}, error) {
	idx, err := s.openIndex(indexName)
	if err != nil {
		return nil, err
	}

	request := bleve.NewSearchRequest(bleve.NewDocIDQuery([]string{id}))
	request.Size = 1
	request.Fields = []string{"*"}

	result, err := idx.Search(request)
	if err != nil {
		return nil, err
	}
	if len(result.Hits) == 0 {
		return nil, fmt.Errorf("document %s not found in index %s", id, indexName)
	}
	return result.Hits[0].Fields, nil
}

// deleteIndex closes the open handle and removes the index directory.
func (s *IndexingService) deleteIndex(indexName string) error {
	s.mu.Lock()
	if idx, ok := s.open[indexName]; ok {
		if err := idx.Close(); err != nil {
			s.mu.Unlock()
			return fmt.Errorf("failed to close index %s: %w", indexName, err)
		}
		delete(s.open, indexName)
	}
	s.mu.Unlock()

	if err := os.RemoveAll(s.indexPath(indexName)); err != nil {
		return fmt.Errorf("failed to remove index files for %s: %w", indexName, err)
	}
	return nil
}

// DeleteAllIndices removes every index under basePath, both the ones this
// process has opened and leftovers from earlier runs. Used by the startup
// rebuild.
func (s *IndexingService) DeleteAllIndices() error {
	s.mu.Lock()
	names := make([]string, 0, len(s.open))
	for name := range s.open {
		names = append(names, name)
	}
	s.mu.Unlock()

	files, err := filepath.Glob(filepath.Join(s.basePath, "*.bleve"))
	if err != nil {
		return fmt.Errorf("failed to scan index directory %s: %w", s.basePath, err)
	}
	for _, file := range files {
		name := strings.TrimSuffix(filepath.Base(file), ".bleve")
		if !contains(names, name) {
			names = append(names, name)
		}
	}

	var failed int
	for _, name := range names {
		if err := s.deleteIndex(name); err != nil {
			s.logger.Error("Failed to delete index", zap.String("index_name", name), zap.Error(err))
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d indices could not be deleted", failed, len(names))
	}

	s.logger.Info("Deleted all indices", zap.Int("count", len(names)))
	return nil
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
