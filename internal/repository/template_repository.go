package repository

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/bala2207022/face-attendance/pkg/storage"
)

// TemplateRepository persists identity centroids in centroids.json.
// One centroid per label; re-registration overwrites, never merges.
type TemplateRepository struct {
	file *storage.JSONFile
	mu   sync.RWMutex
}

type centroidsDoc struct {
	Centroids map[string][]float64 `json:"centroids"`
}

// NewTemplateRepository opens (or seeds) the centroid store under the
// models directory.
func NewTemplateRepository(modelsDir string) (*TemplateRepository, error) {
	file, err := storage.NewJSONFile(filepath.Join(modelsDir, "centroids.json"))
	if err != nil {
		return nil, err
	}
	repo := &TemplateRepository{file: file}
	if !file.Exists() {
		if err := file.Save(centroidsDoc{Centroids: map[string][]float64{}}); err != nil {
			return nil, fmt.Errorf("seed centroid store: %w", err)
		}
	}
	return repo, nil
}

// All returns a copy of every stored centroid.
func (r *TemplateRepository) All() (map[string][]float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, err := r.load()
	if err != nil {
		return nil, err
	}
	out := make(map[string][]float64, len(doc.Centroids))
	for label, vec := range doc.Centroids {
		copied := make([]float64, len(vec))
		copy(copied, vec)
		out[label] = copied
	}
	return out, nil
}

// Upsert stores the centroid for the label, replacing any previous one.
func (r *TemplateRepository) Upsert(label string, centroid []float64) error {
	if label == "" || len(centroid) == 0 {
		return fmt.Errorf("centroid upsert requires a label and a non-empty vector")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return err
	}
	stored := make([]float64, len(centroid))
	copy(stored, centroid)
	doc.Centroids[label] = stored
	if err := r.file.Save(doc); err != nil {
		return fmt.Errorf("save centroid store: %w", err)
	}
	return nil
}

func (r *TemplateRepository) load() (centroidsDoc, error) {
	doc := centroidsDoc{}
	if err := r.file.Load(&doc); err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return centroidsDoc{Centroids: map[string][]float64{}}, nil
		}
		return doc, fmt.Errorf("load centroid store: %w", err)
	}
	if doc.Centroids == nil {
		doc.Centroids = map[string][]float64{}
	}
	return doc, nil
}
