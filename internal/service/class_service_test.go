package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bala2207022/face-attendance/internal/models"
	appErrors "github.com/bala2207022/face-attendance/pkg/errors"
)

func TestOpenByProbeOpensConsecutiveSessions(t *testing.T) {
	env := newTestEnv(t)
	classID := env.enrollProfessor(t, "Alice", "P1", "CS101")
	assert.Equal(t, int64(1), classID)

	result, err := env.class.OpenByProbe(context.Background(), profImage)
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeSessionOpened, result.Outcome)
	assert.Equal(t, int64(1), result.ClassID)
	assert.Equal(t, "CS101", result.ClassName)
	assert.Equal(t, int64(1), result.SessionID)

	result, err = env.class.OpenByProbe(context.Background(), profImage)
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.SessionID)
}

func TestOpenByProbeTargetsLatestClass(t *testing.T) {
	env := newTestEnv(t)
	env.enrollProfessor(t, "Alice", "P1", "CS101")
	env.enrollProfessor(t, "Alice", "P1", "CS202")

	result, err := env.class.OpenByProbe(context.Background(), profImage)
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeSessionOpened, result.Outcome)
	assert.Equal(t, "CS202", result.ClassName)
}

func TestOpenByProbeRejectsStudents(t *testing.T) {
	env := newTestEnv(t)
	classID := env.enrollProfessor(t, "Alice", "P1", "CS101")
	env.enrollStudent(t, "Bob", "S1", classID)

	result, err := env.class.OpenByProbe(context.Background(), studentImage)
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeRoleMismatch, result.Outcome)
	assert.Zero(t, result.SessionID)
}

func TestOpenByProbePropagatesRecognitionOutcomes(t *testing.T) {
	env := newTestEnv(t)
	env.enrollProfessor(t, "Alice", "P1", "CS101")

	result, err := env.class.OpenByProbe(context.Background(), unknownImage)
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeNotRecognized, result.Outcome)

	result, err = env.class.OpenByProbe(context.Background(), blankImage)
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeNoFace, result.Outcome)
}

func TestOpenByProbeWithoutClassErrors(t *testing.T) {
	env := newTestEnv(t)
	// enroll the professor template and identity but no class
	_, err := env.frames.Save("prof_P9_Dana", profImage)
	require.NoError(t, err)
	_, err = env.identities.Upsert("prof_P9_Dana", "Dana", "P9", models.RoleProfessor)
	require.NoError(t, err)
	require.NoError(t, env.templates.Upsert("prof_P9_Dana", []float64{1, 0, 0}))

	_, err = env.class.OpenByProbe(context.Background(), profImage)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnknownClass.Code, appErrors.FromError(err).Code)
}
