package repository

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/bala2207022/face-attendance/internal/models"
	"github.com/bala2207022/face-attendance/pkg/storage"
)

// ErrClassNotFound reports an unknown class id.
var ErrClassNotFound = errors.New("class not found")

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// ClassRepository persists class records in classes_meta.json and owns
// the class id -> ledger file mapping.
type ClassRepository struct {
	file       *storage.JSONFile
	reportsDir string
	mu         sync.Mutex
}

type classDoc struct {
	NextID  int64                   `json:"next_id"`
	Classes map[string]models.Class `json:"classes"`
}

// NewClassRepository opens (or seeds) the class registry and ensures the
// reports directory exists.
func NewClassRepository(modelsDir, reportsDir string) (*ClassRepository, error) {
	file, err := storage.NewJSONFile(filepath.Join(modelsDir, "classes_meta.json"))
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(reportsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create reports directory: %w", err)
	}
	repo := &ClassRepository{file: file, reportsDir: reportsDir}
	if !file.Exists() {
		if err := file.Save(classDoc{NextID: 1, Classes: map[string]models.Class{}}); err != nil {
			return nil, fmt.Errorf("seed class registry: %w", err)
		}
	}
	return repo, nil
}

// Create allocates the next class id, derives the ledger file path from
// it and persists the record. The returned class carries both.
func (r *ClassRepository) Create(className, professorLabel, professorName, professorCode string) (*models.Class, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return nil, err
	}

	id := doc.NextID
	doc.NextID++

	safeName := unsafeFileChars.ReplaceAllString(className, "_")
	cls := models.Class{
		ID:             id,
		Name:           className,
		ProfessorLabel: professorLabel,
		ProfessorName:  professorName,
		ProfessorCode:  professorCode,
		LedgerFile:     filepath.Join(r.reportsDir, fmt.Sprintf("class_%d_%s.json", id, safeName)),
		StartTime:      time.Now(),
		SessionCount:   0,
	}
	doc.Classes[strconv.FormatInt(id, 10)] = cls

	if err := r.file.Save(doc); err != nil {
		return nil, fmt.Errorf("save class registry: %w", err)
	}
	return &cls, nil
}

// FindByID returns the class record for the id.
func (r *ClassRepository) FindByID(id int64) (*models.Class, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return nil, err
	}
	cls, ok := doc.Classes[strconv.FormatInt(id, 10)]
	if !ok {
		return nil, ErrClassNotFound
	}
	return &cls, nil
}

// LatestForProfessor returns the class with the most recent start time
// among those owned by the professor label.
func (r *ClassRepository) LatestForProfessor(label string) (*models.Class, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return nil, err
	}
	var best *models.Class
	for key := range doc.Classes {
		cls := doc.Classes[key]
		if cls.ProfessorLabel != label {
			continue
		}
		if best == nil || cls.StartTime.After(best.StartTime) {
			copied := cls
			best = &copied
		}
	}
	if best == nil {
		return nil, ErrClassNotFound
	}
	return best, nil
}

// IncrementSessionCount advances the class's session counter by exactly
// one and persists it, returning the updated record. The new counter
// value is the id of the session just opened.
func (r *ClassRepository) IncrementSessionCount(id int64) (*models.Class, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return nil, err
	}
	key := strconv.FormatInt(id, 10)
	cls, ok := doc.Classes[key]
	if !ok {
		return nil, ErrClassNotFound
	}
	cls.SessionCount++
	doc.Classes[key] = cls

	if err := r.file.Save(doc); err != nil {
		return nil, fmt.Errorf("save class registry: %w", err)
	}
	return &cls, nil
}

func (r *ClassRepository) load() (classDoc, error) {
	doc := classDoc{}
	if err := r.file.Load(&doc); err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return classDoc{NextID: 1, Classes: map[string]models.Class{}}, nil
		}
		return doc, fmt.Errorf("load class registry: %w", err)
	}
	if doc.Classes == nil {
		doc.Classes = map[string]models.Class{}
	}
	if doc.NextID < 1 {
		doc.NextID = 1
	}
	return doc, nil
}
