package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/bala2207022/face-attendance/internal/models"
	appErrors "github.com/bala2207022/face-attendance/pkg/errors"
)

type attendanceServiceMock struct {
	lastLabel   string
	lastClassID int64
	lastImage   []byte
}

func (m *attendanceServiceMock) CheckIn(_ context.Context, classID int64, image []byte) (*models.CheckInResult, error) {
	m.lastClassID = classID
	m.lastImage = image
	return &models.CheckInResult{Outcome: models.OutcomeRecorded, Name: "Bob", Code: "S1"}, nil
}

func (m *attendanceServiceMock) Record(_ context.Context, label string, classID int64) (*models.CheckInResult, error) {
	m.lastLabel = label
	m.lastClassID = classID
	return &models.CheckInResult{Outcome: models.OutcomeRecorded, Name: "Bob", Code: "S1"}, nil
}

func (m *attendanceServiceMock) SessionSummary(_ context.Context, classID int64) (*models.SessionSummary, error) {
	if classID != 1 {
		return nil, appErrors.Clone(appErrors.ErrUnknownClass, "")
	}
	return &models.SessionSummary{TotalEnrolled: 2, TotalPresent: 1, TotalAbsent: 1}, nil
}

func postContext(t *testing.T, w *httptest.ResponseRecorder, path, body string, params gin.Params) *gin.Context {
	t.Helper()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = params
	return c
}

func TestCheckInHandlerWithImage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &attendanceServiceMock{}
	h := NewAttendanceHandler(mock, nil)

	image := base64.StdEncoding.EncodeToString([]byte("probe"))
	w := httptest.NewRecorder()
	c := postContext(t, w, "/classes/1/checkins", `{"image":"data:image/jpeg;base64,`+image+`"}`,
		gin.Params{{Key: "id", Value: "1"}})

	h.CheckIn(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, int64(1), mock.lastClassID)
	require.Equal(t, []byte("probe"), mock.lastImage)
	require.Contains(t, w.Body.String(), `"RECORDED"`)
}

func TestCheckInHandlerWithLabel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &attendanceServiceMock{}
	h := NewAttendanceHandler(mock, nil)

	w := httptest.NewRecorder()
	c := postContext(t, w, "/classes/3/checkins", `{"label":"S1_Bob"}`,
		gin.Params{{Key: "id", Value: "3"}})

	h.CheckIn(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "S1_Bob", mock.lastLabel)
	require.Equal(t, int64(3), mock.lastClassID)
}

func TestCheckInHandlerRejectsBadID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewAttendanceHandler(&attendanceServiceMock{}, nil)

	w := httptest.NewRecorder()
	c := postContext(t, w, "/classes/zero/checkins", `{"label":"S1_Bob"}`,
		gin.Params{{Key: "id", Value: "zero"}})

	h.CheckIn(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckInHandlerRejectsMissingImage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewAttendanceHandler(&attendanceServiceMock{}, nil)

	w := httptest.NewRecorder()
	c := postContext(t, w, "/classes/1/checkins", `{}`,
		gin.Params{{Key: "id", Value: "1"}})

	h.CheckIn(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSummaryHandlerUnknownClass(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewAttendanceHandler(&attendanceServiceMock{}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodGet, "/classes/9/summary", nil)
	require.NoError(t, err)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "9"}}

	h.Summary(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

type summaryRebuilderMock struct {
	rebuilt []int64
}

func (m *summaryRebuilderMock) Rebuild(_ context.Context, classID int64) ([]models.SummaryRow, error) {
	m.rebuilt = append(m.rebuilt, classID)
	return nil, nil
}

func TestSummaryHandlerRefreshesStoredSummary(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rebuilder := &summaryRebuilderMock{}
	h := NewAttendanceHandler(&attendanceServiceMock{}, rebuilder)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodGet, "/classes/1/summary", nil)
	require.NoError(t, err)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	h.Summary(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, []int64{1}, rebuilder.rebuilt)
}

func TestSummaryHandlerOK(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewAttendanceHandler(&attendanceServiceMock{}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodGet, "/classes/1/summary", nil)
	require.NoError(t, err)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	h.Summary(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"total_enrolled":2`)
}
