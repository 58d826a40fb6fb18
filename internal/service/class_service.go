package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/bala2207022/face-attendance/internal/models"
	"github.com/bala2207022/face-attendance/internal/repository"
	appErrors "github.com/bala2207022/face-attendance/pkg/errors"
)

type identityReader interface {
	Lookup(label string) (*models.Identity, error)
}

type classSessionRepository interface {
	FindByID(id int64) (*models.Class, error)
	LatestForProfessor(label string) (*models.Class, error)
	IncrementSessionCount(id int64) (*models.Class, error)
}

type sessionLedger interface {
	AppendSessionOpen(cls *models.Class, sessionID int64, at time.Time) error
}

// ClassService opens attendance sessions from professor probe scans.
type ClassService struct {
	recognizer *RecognitionService
	identities identityReader
	classes    classSessionRepository
	ledgers    sessionLedger
	logger     *zap.Logger
	now        func() time.Time
}

// NewClassService constructs the class session service.
func NewClassService(recognizer *RecognitionService, identities identityReader, classes classSessionRepository, ledgers sessionLedger, logger *zap.Logger) *ClassService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassService{
		recognizer: recognizer,
		identities: identities,
		classes:    classes,
		ledgers:    ledgers,
		logger:     logger,
		now:        time.Now,
	}
}

// OpenByProbe recognizes a professor from the probe image and opens the
// next session of their most recent class. A matched student yields a
// role mismatch outcome rather than an error.
func (s *ClassService) OpenByProbe(ctx context.Context, image []byte) (*models.OpenClassResult, error) {
	rec, err := s.recognizer.Recognize(ctx, image)
	if err != nil {
		return nil, err
	}
	if !rec.Matched() {
		return &models.OpenClassResult{Outcome: rec.Outcome, Similarity: rec.Similarity}, nil
	}

	identity, err := s.identities.Lookup(rec.Label)
	if err != nil {
		if errors.Is(err, repository.ErrIdentityNotFound) {
			return nil, appErrors.Clone(appErrors.ErrUnknownIdentity, "matched template has no identity record")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load identity")
	}
	if identity.Role != models.RoleProfessor {
		return &models.OpenClassResult{Outcome: models.OutcomeRoleMismatch, Similarity: rec.Similarity}, nil
	}

	cls, err := s.classes.LatestForProfessor(identity.Label)
	if err != nil {
		if errors.Is(err, repository.ErrClassNotFound) {
			return nil, appErrors.Clone(appErrors.ErrUnknownClass, "professor has no classes")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to resolve class")
	}

	updated, err := s.classes.IncrementSessionCount(cls.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to advance session counter")
	}
	if err := s.ledgers.AppendSessionOpen(updated, updated.SessionCount, s.now()); err != nil {
		if errors.Is(err, repository.ErrLedgerMissing) {
			return nil, appErrors.Clone(appErrors.ErrCorruptStore, "class exists but its ledger file is missing")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to record session open")
	}

	s.logger.Info("session opened",
		zap.Int64("class_id", updated.ID),
		zap.String("class", updated.Name),
		zap.Int64("session_id", updated.SessionCount))
	return &models.OpenClassResult{
		Outcome:    models.OutcomeSessionOpened,
		ClassID:    updated.ID,
		ClassName:  updated.Name,
		SessionID:  updated.SessionCount,
		Similarity: rec.Similarity,
	}, nil
}
