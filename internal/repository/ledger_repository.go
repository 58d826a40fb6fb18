package repository

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bala2207022/face-attendance/internal/models"
	"github.com/bala2207022/face-attendance/pkg/storage"
)

// ErrLedgerMissing reports a class whose ledger file does not exist.
// A class record without its ledger is a partially-created class and is
// treated as corrupt rather than half-functional.
var ErrLedgerMissing = errors.New("ledger file missing for class")

// LedgerRepository persists the per-class ledgers. Every read-modify-
// write sequence against one class's ledger runs under that class's
// mutex: two check-ins for the same class cannot interleave between the
// duplicate scan and the roster increment, while different classes
// proceed in parallel.
type LedgerRepository struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewLedgerRepository constructs the repository.
func NewLedgerRepository() *LedgerRepository {
	return &LedgerRepository{locks: make(map[string]*sync.Mutex)}
}

func (r *LedgerRepository) lockFor(path string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.locks[path]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[path] = lock
	}
	return lock
}

// Init creates the ledger file for a freshly created class with its
// meta section filled and empty roster/sessions sections.
func (r *LedgerRepository) Init(cls *models.Class) error {
	lock := r.lockFor(cls.LedgerFile)
	lock.Lock()
	defer lock.Unlock()

	file, err := storage.NewJSONFile(cls.LedgerFile)
	if err != nil {
		return err
	}
	ledger := models.Ledger{
		Meta: models.LedgerMeta{
			ClassID:        cls.ID,
			ClassName:      cls.Name,
			ProfessorLabel: cls.ProfessorLabel,
			ProfessorName:  cls.ProfessorName,
			ProfessorCode:  cls.ProfessorCode,
			StartTime:      cls.StartTime,
			SessionCount:   cls.SessionCount,
		},
		Roster:   []models.RosterRow{},
		Sessions: []models.SessionRow{},
	}
	if err := file.Save(ledger); err != nil {
		return fmt.Errorf("init ledger for class %d: %w", cls.ID, err)
	}
	return nil
}

// Load returns a snapshot of the class's ledger.
func (r *LedgerRepository) Load(cls *models.Class) (*models.Ledger, error) {
	lock := r.lockFor(cls.LedgerFile)
	lock.Lock()
	defer lock.Unlock()

	return r.read(cls)
}

// EnsureRosterRow adds a roster row for the identity when absent. Used
// when a student is registered and linked to a class before their first
// check-in.
func (r *LedgerRepository) EnsureRosterRow(cls *models.Class, identity *models.Identity) error {
	lock := r.lockFor(cls.LedgerFile)
	lock.Lock()
	defer lock.Unlock()

	ledger, err := r.read(cls)
	if err != nil {
		return err
	}
	for _, row := range ledger.Roster {
		if row.Label == identity.Label || row.IdentityID == identity.ID {
			return nil
		}
	}
	ledger.Roster = append(ledger.Roster, models.RosterRow{
		IdentityID: identity.ID,
		Label:      identity.Label,
		Name:       identity.Name,
		Code:       identity.Code,
	})
	return r.write(cls, ledger)
}

// AppendSessionOpen records a session-open marker row. The identity
// fields stay empty; only the session id and timestamp are carried.
func (r *LedgerRepository) AppendSessionOpen(cls *models.Class, sessionID int64, at time.Time) error {
	lock := r.lockFor(cls.LedgerFile)
	lock.Lock()
	defer lock.Unlock()

	ledger, err := r.read(cls)
	if err != nil {
		return err
	}
	ledger.Meta.SessionCount = cls.SessionCount
	ledger.Sessions = append(ledger.Sessions, models.SessionRow{SessionID: sessionID, Timestamp: at})
	return r.write(cls, ledger)
}

// RecordAttendance runs the check-in consistency rules as one critical
// section and returns the discriminated outcome:
//
//  1. an attendance entry for this identity on the same calendar day
//     suppresses the check-in (AlreadyToday) regardless of session state;
//  2. a class that has never opened a session records nothing
//     (NoOpenSession);
//  3. otherwise one entry tagged with the current session id is appended
//     and the identity's roster present-counter increments exactly once.
func (r *LedgerRepository) RecordAttendance(cls *models.Class, identity *models.Identity, at time.Time) (models.Outcome, error) {
	lock := r.lockFor(cls.LedgerFile)
	lock.Lock()
	defer lock.Unlock()

	ledger, err := r.read(cls)
	if err != nil {
		return "", err
	}

	year, month, day := at.Date()
	for _, row := range ledger.Sessions {
		if row.IsOpenMarker() || row.IdentityID != identity.ID {
			continue
		}
		ry, rm, rd := row.Timestamp.Date()
		if ry == year && rm == month && rd == day {
			return models.OutcomeAlreadyToday, nil
		}
	}

	if !cls.HasOpenSession() {
		return models.OutcomeNoOpenSession, nil
	}

	ledger.Sessions = append(ledger.Sessions, models.SessionRow{
		SessionID:  cls.SessionCount,
		Timestamp:  at,
		IdentityID: identity.ID,
		Label:      identity.Label,
		Name:       identity.Name,
		Code:       identity.Code,
	})

	found := false
	for i := range ledger.Roster {
		if ledger.Roster[i].IdentityID == identity.ID {
			ledger.Roster[i].TotalPresent++
			found = true
			break
		}
	}
	if !found {
		ledger.Roster = append(ledger.Roster, models.RosterRow{
			IdentityID:   identity.ID,
			Label:        identity.Label,
			Name:         identity.Name,
			Code:         identity.Code,
			TotalPresent: 1,
		})
	}

	if err := r.write(cls, ledger); err != nil {
		return "", err
	}
	return models.OutcomeRecorded, nil
}

// ReplaceSummary overwrites the derived summary section in full.
func (r *LedgerRepository) ReplaceSummary(cls *models.Class, rows []models.SummaryRow) error {
	lock := r.lockFor(cls.LedgerFile)
	lock.Lock()
	defer lock.Unlock()

	ledger, err := r.read(cls)
	if err != nil {
		return err
	}
	ledger.Summary = rows
	return r.write(cls, ledger)
}

func (r *LedgerRepository) read(cls *models.Class) (*models.Ledger, error) {
	file, err := storage.NewJSONFile(cls.LedgerFile)
	if err != nil {
		return nil, err
	}
	ledger := &models.Ledger{}
	if err := file.Load(ledger); err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return nil, ErrLedgerMissing
		}
		return nil, fmt.Errorf("load ledger for class %d: %w", cls.ID, err)
	}
	return ledger, nil
}

func (r *LedgerRepository) write(cls *models.Class, ledger *models.Ledger) error {
	file, err := storage.NewJSONFile(cls.LedgerFile)
	if err != nil {
		return err
	}
	if err := file.Save(ledger); err != nil {
		return fmt.Errorf("save ledger for class %d: %w", cls.ID, err)
	}
	return nil
}
