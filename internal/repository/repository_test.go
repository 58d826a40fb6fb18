package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bala2207022/face-attendance/internal/models"
)

func TestIdentityRepositoryAllocatesMonotonicIDs(t *testing.T) {
	repo, err := NewIdentityRepository(t.TempDir())
	require.NoError(t, err)

	first, err := repo.Upsert("S1_Bob", "Bob", "S1", models.RoleStudent)
	require.NoError(t, err)
	second, err := repo.Upsert("S2_Carol", "Carol", "S2", models.RoleStudent)
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
}

func TestIdentityRepositoryUpsertUpdatesInPlace(t *testing.T) {
	repo, err := NewIdentityRepository(t.TempDir())
	require.NoError(t, err)

	created, err := repo.Upsert("S1_Bob", "Bob", "S1", models.RoleStudent)
	require.NoError(t, err)
	updated, err := repo.Upsert("S1_Bob", "Robert", "S1", models.RoleStudent)
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Robert", updated.Name)

	looked, err := repo.Lookup("S1_Bob")
	require.NoError(t, err)
	assert.Equal(t, "Robert", looked.Name)
	assert.Equal(t, models.RoleStudent, looked.Role)
}

func TestIdentityRepositoryLookupAbsent(t *testing.T) {
	repo, err := NewIdentityRepository(t.TempDir())
	require.NoError(t, err)

	_, err = repo.Lookup("S9_Ghost")
	assert.ErrorIs(t, err, ErrIdentityNotFound)
}

func TestIdentityRepositoryConcurrentUpserts(t *testing.T) {
	repo, err := NewIdentityRepository(t.TempDir())
	require.NoError(t, err)

	const n = 20
	var wg sync.WaitGroup
	ids := make(chan int64, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			identity, err := repo.Upsert(fmt.Sprintf("S%d_Student", i), "Student", fmt.Sprintf("S%d", i), models.RoleStudent)
			require.NoError(t, err)
			ids <- identity.ID
		}(i)
	}
	wg.Wait()
	close(ids)

	seen := map[int64]bool{}
	for id := range ids {
		assert.False(t, seen[id], "id %d allocated twice", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
}

func TestTemplateRepositoryOverwritesOnReRegistration(t *testing.T) {
	repo, err := NewTemplateRepository(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, repo.Upsert("S1_Bob", []float64{1, 2, 3}))
	require.NoError(t, repo.Upsert("S1_Bob", []float64{4, 5, 6}))

	all, err := repo.All()
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 5, 6}, all["S1_Bob"])
	assert.Len(t, all, 1)
}

func TestTemplateRepositoryStartsEmpty(t *testing.T) {
	repo, err := NewTemplateRepository(t.TempDir())
	require.NoError(t, err)

	all, err := repo.All()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func newClassRepo(t *testing.T) *ClassRepository {
	t.Helper()
	dir := t.TempDir()
	repo, err := NewClassRepository(dir, dir+"/reports")
	require.NoError(t, err)
	return repo
}

func TestClassRepositoryCreateAssignsIDsAndLedgerFiles(t *testing.T) {
	repo := newClassRepo(t)

	first, err := repo.Create("CS101", "prof_P1_Alice", "Alice", "P1")
	require.NoError(t, err)
	second, err := repo.Create("MSBA 700!", "prof_P1_Alice", "Alice", "P1")
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
	assert.Contains(t, first.LedgerFile, "class_1_CS101.json")
	assert.Contains(t, second.LedgerFile, "class_2_MSBA_700_.json")
	assert.EqualValues(t, 0, first.SessionCount)
}

func TestClassRepositoryLatestForProfessor(t *testing.T) {
	repo := newClassRepo(t)

	_, err := repo.Create("Old", "prof_P1_Alice", "Alice", "P1")
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	newest, err := repo.Create("New", "prof_P1_Alice", "Alice", "P1")
	require.NoError(t, err)
	_, err = repo.Create("Other", "prof_P2_Dan", "Dan", "P2")
	require.NoError(t, err)

	latest, err := repo.LatestForProfessor("prof_P1_Alice")
	require.NoError(t, err)
	assert.Equal(t, newest.ID, latest.ID)

	_, err = repo.LatestForProfessor("prof_P9_Ghost")
	assert.ErrorIs(t, err, ErrClassNotFound)
}

func TestClassRepositoryIncrementSessionCount(t *testing.T) {
	repo := newClassRepo(t)

	cls, err := repo.Create("CS101", "prof_P1_Alice", "Alice", "P1")
	require.NoError(t, err)

	for want := int64(1); want <= 3; want++ {
		updated, err := repo.IncrementSessionCount(cls.ID)
		require.NoError(t, err)
		assert.Equal(t, want, updated.SessionCount)
	}

	_, err = repo.IncrementSessionCount(99)
	assert.ErrorIs(t, err, ErrClassNotFound)
}

func newLedgerFixture(t *testing.T) (*LedgerRepository, *models.Class) {
	t.Helper()
	dir := t.TempDir()
	classes, err := NewClassRepository(dir, dir+"/reports")
	require.NoError(t, err)
	cls, err := classes.Create("CS101", "prof_P1_Alice", "Alice", "P1")
	require.NoError(t, err)
	ledgers := NewLedgerRepository()
	require.NoError(t, ledgers.Init(cls))
	return ledgers, cls
}

func bob() *models.Identity {
	return &models.Identity{ID: 1, Label: "S1_Bob", Name: "Bob", Code: "S1", Role: models.RoleStudent}
}

func TestLedgerRecordAttendanceNoOpenSession(t *testing.T) {
	ledgers, cls := newLedgerFixture(t)

	outcome, err := ledgers.RecordAttendance(cls, bob(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeNoOpenSession, outcome)

	ledger, err := ledgers.Load(cls)
	require.NoError(t, err)
	assert.Empty(t, ledger.Sessions)
	assert.Empty(t, ledger.Roster)
}

func TestLedgerRecordAttendanceThenDuplicateSameDay(t *testing.T) {
	ledgers, cls := newLedgerFixture(t)
	cls.SessionCount = 1
	require.NoError(t, ledgers.AppendSessionOpen(cls, 1, time.Now()))

	outcome, err := ledgers.RecordAttendance(cls, bob(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeRecorded, outcome)

	outcome, err = ledgers.RecordAttendance(cls, bob(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeAlreadyToday, outcome)

	ledger, err := ledgers.Load(cls)
	require.NoError(t, err)
	require.Len(t, ledger.Roster, 1)
	assert.EqualValues(t, 1, ledger.Roster[0].TotalPresent)
}

func TestLedgerDuplicateCheckPrecedesSessionCheck(t *testing.T) {
	ledgers, cls := newLedgerFixture(t)
	cls.SessionCount = 1

	outcome, err := ledgers.RecordAttendance(cls, bob(), time.Now())
	require.NoError(t, err)
	require.Equal(t, models.OutcomeRecorded, outcome)

	// even with the counter back at zero, the same-day entry wins
	cls.SessionCount = 0
	outcome, err = ledgers.RecordAttendance(cls, bob(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeAlreadyToday, outcome)
}

func TestLedgerNewDayAllowsSecondEntry(t *testing.T) {
	ledgers, cls := newLedgerFixture(t)
	cls.SessionCount = 1

	yesterday := time.Now().AddDate(0, 0, -1)
	outcome, err := ledgers.RecordAttendance(cls, bob(), yesterday)
	require.NoError(t, err)
	require.Equal(t, models.OutcomeRecorded, outcome)

	cls.SessionCount = 2
	outcome, err = ledgers.RecordAttendance(cls, bob(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeRecorded, outcome)

	ledger, err := ledgers.Load(cls)
	require.NoError(t, err)
	require.Len(t, ledger.Roster, 1)
	assert.EqualValues(t, 2, ledger.Roster[0].TotalPresent)
}

func TestLedgerEnsureRosterRowIsIdempotent(t *testing.T) {
	ledgers, cls := newLedgerFixture(t)

	require.NoError(t, ledgers.EnsureRosterRow(cls, bob()))
	require.NoError(t, ledgers.EnsureRosterRow(cls, bob()))

	ledger, err := ledgers.Load(cls)
	require.NoError(t, err)
	require.Len(t, ledger.Roster, 1)
	assert.EqualValues(t, 0, ledger.Roster[0].TotalPresent)
}

func TestLedgerMissingFileIsCorrupt(t *testing.T) {
	ledgers := NewLedgerRepository()
	cls := &models.Class{ID: 7, LedgerFile: t.TempDir() + "/nope/class_7_x.json"}

	_, err := ledgers.Load(cls)
	assert.ErrorIs(t, err, ErrLedgerMissing)
}

func TestLedgerReplaceSummaryOverwrites(t *testing.T) {
	ledgers, cls := newLedgerFixture(t)

	require.NoError(t, ledgers.ReplaceSummary(cls, []models.SummaryRow{{Name: "Bob", Code: "S1", Present: 1}}))
	require.NoError(t, ledgers.ReplaceSummary(cls, []models.SummaryRow{{Name: "Bob", Code: "S1", Present: 2}}))

	ledger, err := ledgers.Load(cls)
	require.NoError(t, err)
	require.Len(t, ledger.Summary, 1)
	assert.EqualValues(t, 2, ledger.Summary[0].Present)
}

func TestMemoryCooldownStore(t *testing.T) {
	store := NewMemoryCooldownStore()
	now := time.Now()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	seen, err := store.Seen(ctx, "S1_Bob")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, store.Mark(ctx, "S1_Bob", 10*time.Minute))
	seen, err = store.Seen(ctx, "S1_Bob")
	require.NoError(t, err)
	assert.True(t, seen)

	now = now.Add(11 * time.Minute)
	seen, err = store.Seen(ctx, "S1_Bob")
	require.NoError(t, err)
	assert.False(t, seen)
}
