package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bala2207022/face-attendance/internal/models"
	appErrors "github.com/bala2207022/face-attendance/pkg/errors"
)

func seedTwoSessionClass(t *testing.T, env *testEnv) int64 {
	t.Helper()
	classID := env.enrollProfessor(t, "Alice", "P1", "CS101")
	env.enrollStudent(t, "Bob", "S1", classID)
	env.enrollStudent(t, "Carol", "S2", classID)

	ctx := context.Background()
	_, err := env.class.OpenByProbe(ctx, profImage)
	require.NoError(t, err)
	_, err = env.attendance.Record(ctx, "S1_Bob", classID)
	require.NoError(t, err)
	_, err = env.attendance.Record(ctx, "S2_Carol", classID)
	require.NoError(t, err)

	_, err = env.class.OpenByProbe(ctx, profImage)
	require.NoError(t, err)
	// second session falls on the same day, so only the still-unseen
	// student can be recorded; Bob and Carol stay at one entry
	return classID
}

func TestRebuildCountsDistinctSessions(t *testing.T) {
	env := newTestEnv(t)
	classID := seedTwoSessionClass(t, env)

	rows, err := env.summary.Rebuild(context.Background(), classID)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byCode := map[string]models.SummaryRow{}
	for _, row := range rows {
		byCode[row.Code] = row
	}
	assert.EqualValues(t, 1, byCode["S1"].Present)
	assert.EqualValues(t, 1, byCode["S1"].Absent)
	assert.EqualValues(t, 2, byCode["S1"].TotalSessions)
	assert.EqualValues(t, 1, byCode["S2"].Present)
	assert.NotEmpty(t, byCode["S1"].Date)
}

func TestRebuildDateFollowsLatestSessionActivity(t *testing.T) {
	env := newTestEnv(t)
	classID := env.enrollProfessor(t, "Alice", "P1", "CS101")
	env.enrollStudent(t, "Bob", "S1", classID)

	openDay := time.Date(2026, 3, 9, 23, 50, 0, 0, time.UTC)
	env.class.now = func() time.Time { return openDay }
	_, err := env.class.OpenByProbe(context.Background(), profImage)
	require.NoError(t, err)

	// the session runs past midnight
	recordDay := openDay.Add(30 * time.Minute)
	env.attendance.now = func() time.Time { return recordDay }
	_, err = env.attendance.Record(context.Background(), "S1_Bob", classID)
	require.NoError(t, err)

	rows, err := env.summary.Rebuild(context.Background(), classID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "2026-03-10", rows[0].Date)
}

func TestRebuildIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	classID := seedTwoSessionClass(t, env)

	first, err := env.summary.Rebuild(context.Background(), classID)
	require.NoError(t, err)
	second, err := env.summary.Rebuild(context.Background(), classID)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	cls, err := env.classes.FindByID(classID)
	require.NoError(t, err)
	ledger, err := env.ledgers.Load(cls)
	require.NoError(t, err)
	assert.Equal(t, second, ledger.Summary)
}

func TestRebuildUnknownClass(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.summary.Rebuild(context.Background(), 42)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnknownClass.Code, appErrors.FromError(err).Code)
}

func TestExportCSV(t *testing.T) {
	env := newTestEnv(t)
	classID := seedTwoSessionClass(t, env)

	result, err := env.summary.Export(context.Background(), classID, "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.Equal(t, "class_1_summary.csv", result.Filename)

	body := string(result.Data)
	assert.True(t, strings.HasPrefix(body, "Name,Code,Date,Present,Absent,Total Sessions"))
	assert.Contains(t, body, "Bob,S1")
	assert.Contains(t, body, "Carol,S2")
}

func TestExportPDF(t *testing.T) {
	env := newTestEnv(t)
	classID := seedTwoSessionClass(t, env)

	result, err := env.summary.Export(context.Background(), classID, "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasPrefix(string(result.Data), "%PDF"))
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	env := newTestEnv(t)
	classID := seedTwoSessionClass(t, env)

	_, err := env.summary.Export(context.Background(), classID, "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
