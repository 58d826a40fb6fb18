package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/bala2207022/face-attendance/internal/embedding"
	"github.com/bala2207022/face-attendance/internal/models"
	appErrors "github.com/bala2207022/face-attendance/pkg/errors"
)

type frameStore interface {
	Save(label string, data []byte) (int, error)
	Count(label string) (int, error)
	List(label string) ([][]byte, error)
}

type templateWriter interface {
	Upsert(label string, centroid []float64) error
}

type identityWriter interface {
	Upsert(label, name, code string, role models.Role) (*models.Identity, error)
}

type classCreator interface {
	Create(className, professorLabel, professorName, professorCode string) (*models.Class, error)
	FindByID(id int64) (*models.Class, error)
}

type ledgerInitializer interface {
	Init(cls *models.Class) error
	EnsureRosterRow(cls *models.Class, identity *models.Identity) error
}

// EnrollmentService owns frame capture and registration. Registration
// collapses the saved frames for a label into a single normalized
// centroid template.
type EnrollmentService struct {
	frames     frameStore
	templates  templateWriter
	identities identityWriter
	classes    classCreator
	ledgers    ledgerInitializer
	extractor  embedding.Extractor
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewEnrollmentService constructs the enrollment service.
func NewEnrollmentService(frames frameStore, templates templateWriter, identities identityWriter, classes classCreator, ledgers ledgerInitializer, extractor embedding.Extractor, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{
		frames:     frames,
		templates:  templates,
		identities: identities,
		classes:    classes,
		ledgers:    ledgers,
		extractor:  extractor,
		validator:  validate,
		logger:     logger,
	}
}

// SaveFrameRequest describes one captured enrollment frame.
type SaveFrameRequest struct {
	Name  string `json:"name" validate:"required"`
	Code  string `json:"code" validate:"required"`
	Role  string `json:"role" validate:"required,oneof=PROFESSOR STUDENT"`
	Image []byte `json:"-" validate:"required"`
}

// SaveFrameResult reports how many frames are stored for the label.
type SaveFrameResult struct {
	Label  string `json:"label"`
	Frames int    `json:"frames"`
}

// SaveFrame persists one capture for later centroid training.
func (s *EnrollmentService) SaveFrame(_ context.Context, req SaveFrameRequest) (*SaveFrameResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid frame payload")
	}
	label := labelFor(req.Code, req.Name, models.Role(strings.ToUpper(req.Role)))
	count, err := s.frames.Save(label, req.Image)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to store frame")
	}
	return &SaveFrameResult{Label: label, Frames: count}, nil
}

// RegisterProfessorRequest enrolls a professor and creates their class.
type RegisterProfessorRequest struct {
	Name      string `json:"name" validate:"required"`
	Code      string `json:"code" validate:"required"`
	ClassName string `json:"class_name" validate:"required"`
}

// RegisterProfessorResult reports the stored identity and the new class.
type RegisterProfessorResult struct {
	Identity *models.Identity `json:"identity"`
	Class    *models.Class    `json:"class"`
	Frames   int              `json:"frames"`
}

// RegisterProfessor trains the professor template from stored frames,
// records the identity and creates a class with its empty ledger.
func (s *EnrollmentService) RegisterProfessor(ctx context.Context, req RegisterProfessorRequest) (*RegisterProfessorResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}
	label := models.NewProfessorLabel(req.Code, req.Name)
	count, err := s.train(ctx, label)
	if err != nil {
		return nil, err
	}
	identity, err := s.identities.Upsert(label, req.Name, req.Code, models.RoleProfessor)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to store identity")
	}
	cls, err := s.classes.Create(req.ClassName, label, req.Name, req.Code)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to create class")
	}
	if err := s.ledgers.Init(cls); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to initialise class ledger")
	}
	s.logger.Info("professor registered",
		zap.String("label", label),
		zap.Int64("class_id", cls.ID),
		zap.Int("frames", count))
	return &RegisterProfessorResult{Identity: identity, Class: cls, Frames: count}, nil
}

// RegisterStudentRequest enrolls a student, optionally attaching them to
// a class roster.
type RegisterStudentRequest struct {
	Name    string `json:"name" validate:"required"`
	Code    string `json:"code" validate:"required"`
	ClassID int64  `json:"class_id"`
}

// RegisterStudentResult reports the stored identity.
type RegisterStudentResult struct {
	Identity *models.Identity `json:"identity"`
	Frames   int              `json:"frames"`
}

// RegisterStudent trains the student template from stored frames and
// records the identity. When a class id is given the student is added to
// that class roster with a zero present count.
func (s *EnrollmentService) RegisterStudent(ctx context.Context, req RegisterStudentRequest) (*RegisterStudentResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}
	label := models.NewStudentLabel(req.Code, req.Name)
	count, err := s.train(ctx, label)
	if err != nil {
		return nil, err
	}
	identity, err := s.identities.Upsert(label, req.Name, req.Code, models.RoleStudent)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to store identity")
	}
	if req.ClassID > 0 {
		cls, err := s.classes.FindByID(req.ClassID)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrUnknownClass, "unknown class for roster attachment")
		}
		if err := s.ledgers.EnsureRosterRow(cls, identity); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to update class roster")
		}
	}
	s.logger.Info("student registered", zap.String("label", label), zap.Int("frames", count))
	return &RegisterStudentResult{Identity: identity, Frames: count}, nil
}

// train averages the embeddings of every stored frame for the label into
// a unit-norm centroid and stores it as the template.
func (s *EnrollmentService) train(ctx context.Context, label string) (int, error) {
	frames, err := s.frames.List(label)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to read frames")
	}
	if len(frames) == 0 {
		return 0, appErrors.Clone(appErrors.ErrNoEnrollmentFrames, "")
	}

	var centroid []float64
	used := 0
	for _, frame := range frames {
		vec, err := s.extractor.Extract(ctx, frame)
		if err != nil {
			if errors.Is(err, embedding.ErrNoFaceDetected) {
				continue
			}
			return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "embedding extraction failed")
		}
		if centroid == nil {
			centroid = make([]float64, len(vec))
		}
		if len(vec) != len(centroid) {
			continue
		}
		floats.Add(centroid, vec)
		used++
	}
	if used == 0 {
		return 0, appErrors.Clone(appErrors.ErrNoEnrollmentFrames, "no stored frame contained a detectable face")
	}
	floats.Scale(1/float64(used), centroid)
	if norm := floats.Norm(centroid, 2); norm > 0 {
		floats.Scale(1/norm, centroid)
	}

	if err := s.templates.Upsert(label, centroid); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to store template")
	}
	return used, nil
}

func labelFor(code, name string, role models.Role) string {
	if role == models.RoleProfessor {
		return models.NewProfessorLabel(code, name)
	}
	return models.NewStudentLabel(code, name)
}
