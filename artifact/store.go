// Package artifact persists fitted pipelines as write-once blobs on the
// filesystem, keyed by generated ids.
package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"attrition/ml"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
)

// ErrNotFound marks a missing or unreadable artifact. Distinct from input
// validation errors so callers can map it to a 404.
var ErrNotFound = errors.New("artifact not found")

// Config locates and sizes the store. Injected paths keep tests isolated;
// there are no package-level directories.
type Config struct {
	// Dir is the directory holding artifact blobs. Created if absent.
	Dir string

	// CacheSize bounds the LRU of loaded pipelines. Defaults to 16.
	CacheSize int
}

// Store is an append-only id→blob map: ids are globally unique, blobs are
// immutable after the write completes, so reads need no locking. Loaded
// pipelines are cached and shared; they are read-only by contract.
type Store struct {
	dir   string
	cache *lru.Cache[string, *ml.FittedPipeline]
}

// NewStore creates the storage directory and the read cache.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("artifact store: dir is required")
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 16
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("artifact store: %w", err)
	}
	cache, err := lru.New[string, *ml.FittedPipeline](cfg.CacheSize)
	if err != nil {
		return nil, err
	}
	return &Store{dir: cfg.Dir, cache: cache}, nil
}

// Save writes a pipeline as a new artifact and returns its id and path.
// Artifacts are never updated in place.
func (s *Store) Save(p *ml.FittedPipeline) (string, string, error) {
	id := uuid.NewString()
	path := s.pathFor(id)

	payload, err := json.Marshal(p)
	if err != nil {
		return "", "", fmt.Errorf("encode pipeline: %w", err)
	}
	if err := os.WriteFile(path, payload, 0o600); err != nil {
		return "", "", fmt.Errorf("write artifact %s: %w", id, err)
	}

	s.cache.Add(id, p)
	return id, path, nil
}

// Load reads a pipeline back by id. Missing or corrupt blobs surface as
// ErrNotFound.
func (s *Store) Load(id string) (*ml.FittedPipeline, error) {
	if p, ok := s.cache.Get(id); ok {
		return p, nil
	}

	payload, err := os.ReadFile(s.pathFor(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("read artifact %s: %w", id, err)
	}

	var p ml.FittedPipeline
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("%w: %s: corrupt blob: %v", ErrNotFound, id, err)
	}
	if p.Version != ml.PipelineVersion {
		return nil, fmt.Errorf("%w: %s: unsupported version %d", ErrNotFound, id, p.Version)
	}

	s.cache.Add(id, &p)
	return &p, nil
}

func (s *Store) pathFor(id string) string {
	return filepath.Join(s.dir, "model_"+id+".json")
}
