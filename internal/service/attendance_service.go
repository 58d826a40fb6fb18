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

type attendanceLedger interface {
	Load(cls *models.Class) (*models.Ledger, error)
	RecordAttendance(cls *models.Class, identity *models.Identity, at time.Time) (models.Outcome, error)
}

type identityResolver interface {
	Lookup(label string) (*models.Identity, error)
	Upsert(label, name, code string, role models.Role) (*models.Identity, error)
}

// AttendanceService records check-ins against class ledgers and serves
// the live view of the current session.
type AttendanceService struct {
	recognizer *RecognitionService
	identities identityResolver
	classes    classSessionRepository
	ledgers    attendanceLedger
	cooldown   repository.CooldownStore
	window     time.Duration
	metrics    *MetricsService
	logger     *zap.Logger
	now        func() time.Time
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(recognizer *RecognitionService, identities identityResolver, classes classSessionRepository, ledgers attendanceLedger, cooldown repository.CooldownStore, window time.Duration, metrics *MetricsService, logger *zap.Logger) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{
		recognizer: recognizer,
		identities: identities,
		classes:    classes,
		ledgers:    ledgers,
		cooldown:   cooldown,
		window:     window,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// CheckIn recognizes a student from the probe image and records their
// attendance for the class. Professors are rejected with a role mismatch
// outcome. The cooldown is advisory and sits in front of the durable
// same-day rule.
func (s *AttendanceService) CheckIn(ctx context.Context, classID int64, image []byte) (*models.CheckInResult, error) {
	cls, err := s.findClass(classID)
	if err != nil {
		return nil, err
	}

	rec, err := s.recognizer.Recognize(ctx, image)
	if err != nil {
		return nil, err
	}
	if !rec.Matched() {
		s.metrics.RecordCheckIn(rec.Outcome)
		return &models.CheckInResult{Outcome: rec.Outcome, ClassName: cls.Name, Similarity: rec.Similarity}, nil
	}

	identity, err := s.lookupIdentity(rec.Label)
	if err != nil {
		return nil, err
	}
	if identity.Role == models.RoleProfessor {
		s.metrics.RecordCheckIn(models.OutcomeRoleMismatch)
		return &models.CheckInResult{
			Outcome:    models.OutcomeRoleMismatch,
			ClassName:  cls.Name,
			Name:       identity.Name,
			Code:       identity.Code,
			Similarity: rec.Similarity,
		}, nil
	}

	if s.onCooldown(ctx, identity.Label) {
		s.metrics.RecordCheckIn(models.OutcomeCooldown)
		return &models.CheckInResult{
			Outcome:    models.OutcomeCooldown,
			ClassName:  cls.Name,
			Name:       identity.Name,
			Code:       identity.Code,
			Similarity: rec.Similarity,
		}, nil
	}

	outcome, err := s.record(cls, identity)
	if err != nil {
		return nil, err
	}
	if outcome == models.OutcomeRecorded {
		s.markCooldown(ctx, identity.Label)
	}
	s.metrics.RecordCheckIn(outcome)
	return &models.CheckInResult{
		Outcome:    outcome,
		ClassName:  cls.Name,
		Name:       identity.Name,
		Code:       identity.Code,
		Similarity: rec.Similarity,
	}, nil
}

// Record appends an attendance entry for an already-resolved label. The
// raw ledger path performs no role check, and labels without an identity
// record are registered on the fly from the label's own fields; callers
// that need recognition and the role check use CheckIn instead.
func (s *AttendanceService) Record(_ context.Context, label string, classID int64) (*models.CheckInResult, error) {
	cls, err := s.findClass(classID)
	if err != nil {
		return nil, err
	}
	identity, err := s.resolveIdentity(label)
	if err != nil {
		return nil, err
	}
	outcome, err := s.record(cls, identity)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordCheckIn(outcome)
	return &models.CheckInResult{
		Outcome:   outcome,
		ClassName: cls.Name,
		Name:      identity.Name,
		Code:      identity.Code,
	}, nil
}

// SessionSummary returns the live view of the class's current session:
// distinct identities recorded under the current session id against the
// roster size.
func (s *AttendanceService) SessionSummary(_ context.Context, classID int64) (*models.SessionSummary, error) {
	cls, err := s.findClass(classID)
	if err != nil {
		return nil, err
	}
	ledger, err := s.ledgers.Load(cls)
	if err != nil {
		if errors.Is(err, repository.ErrLedgerMissing) {
			return nil, appErrors.Clone(appErrors.ErrCorruptStore, "class exists but its ledger file is missing")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load ledger")
	}

	summary := &models.SessionSummary{
		TotalEnrolled: int64(len(ledger.Roster)),
		Present:       []models.PresentEntry{},
	}
	seen := map[int64]struct{}{}
	for _, row := range ledger.Sessions {
		if row.IsOpenMarker() || !cls.IsActiveSession(row.SessionID) {
			continue
		}
		if _, ok := seen[row.IdentityID]; ok {
			continue
		}
		seen[row.IdentityID] = struct{}{}
		summary.Present = append(summary.Present, models.PresentEntry{Name: row.Name, Code: row.Code})
	}
	summary.TotalPresent = int64(len(seen))
	if absent := summary.TotalEnrolled - summary.TotalPresent; absent > 0 {
		summary.TotalAbsent = absent
	}
	return summary, nil
}

func (s *AttendanceService) findClass(classID int64) (*models.Class, error) {
	cls, err := s.classes.FindByID(classID)
	if err != nil {
		if errors.Is(err, repository.ErrClassNotFound) {
			return nil, appErrors.Clone(appErrors.ErrUnknownClass, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load class")
	}
	return cls, nil
}

// resolveIdentity backfills an identity record for labels that predate
// the identity file, using the label's own code and name as display
// fields.
func (s *AttendanceService) resolveIdentity(label string) (*models.Identity, error) {
	identity, err := s.identities.Lookup(label)
	if err == nil {
		return identity, nil
	}
	if !errors.Is(err, repository.ErrIdentityNotFound) {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load identity")
	}

	code, name, role := models.ParseLabel(label)
	identity, err = s.identities.Upsert(label, name, code, role)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to register identity")
	}
	s.logger.Info("identity auto-registered from label", zap.String("label", label))
	return identity, nil
}

func (s *AttendanceService) lookupIdentity(label string) (*models.Identity, error) {
	identity, err := s.identities.Lookup(label)
	if err != nil {
		if errors.Is(err, repository.ErrIdentityNotFound) {
			return nil, appErrors.Clone(appErrors.ErrUnknownIdentity, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load identity")
	}
	return identity, nil
}

func (s *AttendanceService) record(cls *models.Class, identity *models.Identity) (models.Outcome, error) {
	outcome, err := s.ledgers.RecordAttendance(cls, identity, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrLedgerMissing) {
			return "", appErrors.Clone(appErrors.ErrCorruptStore, "class exists but its ledger file is missing")
		}
		return "", appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to record attendance")
	}
	return outcome, nil
}

// cooldown failures only log; the durable same-day rule still applies.
func (s *AttendanceService) onCooldown(ctx context.Context, label string) bool {
	if s.cooldown == nil || s.window <= 0 {
		return false
	}
	seen, err := s.cooldown.Seen(ctx, label)
	if err != nil {
		s.logger.Warn("cooldown lookup failed", zap.String("label", label), zap.Error(err))
		return false
	}
	return seen
}

func (s *AttendanceService) markCooldown(ctx context.Context, label string) {
	if s.cooldown == nil || s.window <= 0 {
		return
	}
	if err := s.cooldown.Mark(ctx, label, s.window); err != nil {
		s.logger.Warn("cooldown mark failed", zap.String("label", label), zap.Error(err))
	}
}
