package repository

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/bala2207022/face-attendance/internal/models"
	"github.com/bala2207022/face-attendance/pkg/storage"
)

// ErrIdentityNotFound reports a label with no backing identity record.
var ErrIdentityNotFound = errors.New("identity not found")

// IdentityRepository persists the label -> identity mapping in
// students_meta.json. Ids are allocated from the stored next_id counter
// under the repository lock, so allocation is atomic even when
// registrations race.
type IdentityRepository struct {
	file *storage.JSONFile
	mu   sync.Mutex
}

type identityDoc struct {
	NextID   int64                      `json:"next_id"`
	Students map[string]models.Identity `json:"students"`
}

// NewIdentityRepository opens (or seeds) the identity store under the
// models directory.
func NewIdentityRepository(modelsDir string) (*IdentityRepository, error) {
	file, err := storage.NewJSONFile(filepath.Join(modelsDir, "students_meta.json"))
	if err != nil {
		return nil, err
	}
	repo := &IdentityRepository{file: file}
	if !file.Exists() {
		if err := file.Save(identityDoc{NextID: 1, Students: map[string]models.Identity{}}); err != nil {
			return nil, fmt.Errorf("seed identity store: %w", err)
		}
	}
	return repo, nil
}

// Upsert updates the record for the label in place, or allocates the
// next id for an unseen label. Ids start at 1, strictly increase and are
// never reused. The role is fixed at creation and kept on update.
func (r *IdentityRepository) Upsert(label, name, code string, role models.Role) (*models.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return nil, err
	}

	identity, exists := doc.Students[label]
	if exists {
		identity.Name = name
		identity.Code = code
		if !identity.Role.Valid() {
			identity.Role = role
		}
	} else {
		identity = models.Identity{ID: doc.NextID, Name: name, Code: code, Role: role}
		doc.NextID++
	}
	doc.Students[label] = identity

	if err := r.file.Save(doc); err != nil {
		return nil, fmt.Errorf("save identity store: %w", err)
	}
	identity.Label = label
	return &identity, nil
}

// Lookup returns the identity registered for the label.
func (r *IdentityRepository) Lookup(label string) (*models.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return nil, err
	}
	identity, ok := doc.Students[label]
	if !ok {
		return nil, ErrIdentityNotFound
	}
	identity.Label = label
	return &identity, nil
}

func (r *IdentityRepository) load() (identityDoc, error) {
	doc := identityDoc{}
	if err := r.file.Load(&doc); err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return identityDoc{NextID: 1, Students: map[string]models.Identity{}}, nil
		}
		return doc, fmt.Errorf("load identity store: %w", err)
	}
	if doc.Students == nil {
		doc.Students = map[string]models.Identity{}
	}
	if doc.NextID < 1 {
		doc.NextID = 1
	}
	// records written before roles were stored carry an empty role;
	// derive it from the label prefix once, here
	for label, identity := range doc.Students {
		if !identity.Role.Valid() {
			_, _, role := models.ParseLabel(label)
			identity.Role = role
			doc.Students[label] = identity
		}
	}
	return doc, nil
}
