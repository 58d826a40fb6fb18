package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bala2207022/face-attendance/internal/embedding"
	"github.com/bala2207022/face-attendance/internal/repository"
	"github.com/bala2207022/face-attendance/pkg/export"
	"github.com/bala2207022/face-attendance/pkg/storage"
)

// stubExtractor maps raw image bytes to fixed embeddings. Unknown
// images behave like captures without a detectable face.
type stubExtractor struct {
	vectors map[string][]float64
}

func (s *stubExtractor) Extract(_ context.Context, image []byte) ([]float64, error) {
	vec, ok := s.vectors[string(image)]
	if !ok {
		return nil, embedding.ErrNoFaceDetected
	}
	return vec, nil
}

func (s *stubExtractor) Name() string { return "stub" }

var (
	profImage    = []byte("prof-frame")
	studentImage = []byte("student-frame")
	unknownImage = []byte("unknown-frame")
	blankImage   = []byte("blank-frame")
)

// testEnv wires the services over real file-backed repositories in a
// temp directory, with a stub extractor standing in for the embedding
// backend.
type testEnv struct {
	frames     *storage.FrameStore
	templates  *repository.TemplateRepository
	identities *repository.IdentityRepository
	classes    *repository.ClassRepository
	ledgers    *repository.LedgerRepository
	cooldown   *repository.MemoryCooldownStore

	recognizer *RecognitionService
	enrollment *EnrollmentService
	class      *ClassService
	attendance *AttendanceService
	summary    *SummaryService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()

	frames, err := storage.NewFrameStore(dir + "/data")
	require.NoError(t, err)
	templates, err := repository.NewTemplateRepository(dir + "/models")
	require.NoError(t, err)
	identities, err := repository.NewIdentityRepository(dir + "/models")
	require.NoError(t, err)
	classes, err := repository.NewClassRepository(dir+"/models", dir+"/reports")
	require.NoError(t, err)
	ledgers := repository.NewLedgerRepository()
	cooldown := repository.NewMemoryCooldownStore()

	extractor := &stubExtractor{vectors: map[string][]float64{
		string(profImage):    {1, 0, 0},
		string(studentImage): {0, 1, 0},
		string(unknownImage): {0, 0, 1},
	}}

	recognizer := NewRecognitionService(templates, extractor, 0.45, nil, nil)
	env := &testEnv{
		frames:     frames,
		templates:  templates,
		identities: identities,
		classes:    classes,
		ledgers:    ledgers,
		cooldown:   cooldown,
		recognizer: recognizer,
		enrollment: NewEnrollmentService(frames, templates, identities, classes, ledgers, extractor, nil, nil),
		class:      NewClassService(recognizer, identities, classes, ledgers, nil),
		attendance: NewAttendanceService(recognizer, identities, classes, ledgers, nil, 0, nil, nil),
		summary:    NewSummaryService(classes, ledgers, export.NewCSVExporter(), export.NewPDFExporter(), nil),
	}
	return env
}

// enrollProfessor registers a professor with one stored frame and
// returns the created class id.
func (env *testEnv) enrollProfessor(t *testing.T, name, code, className string) int64 {
	t.Helper()
	_, err := env.frames.Save("prof_"+code+"_"+name, profImage)
	require.NoError(t, err)
	result, err := env.enrollment.RegisterProfessor(context.Background(), RegisterProfessorRequest{
		Name: name, Code: code, ClassName: className,
	})
	require.NoError(t, err)
	return result.Class.ID
}

// enrollStudent registers a student with one stored frame, attached to
// the given class roster.
func (env *testEnv) enrollStudent(t *testing.T, name, code string, classID int64) {
	t.Helper()
	_, err := env.frames.Save(code+"_"+name, studentImage)
	require.NoError(t, err)
	_, err = env.enrollment.RegisterStudent(context.Background(), RegisterStudentRequest{
		Name: name, Code: code, ClassID: classID,
	})
	require.NoError(t, err)
}
