package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byebilly/waitlist-api/internal/dto"
	"github.com/byebilly/waitlist-api/internal/models"
	"github.com/byebilly/waitlist-api/internal/repository"
	"github.com/byebilly/waitlist-api/internal/service"
	appErrors "github.com/byebilly/waitlist-api/pkg/errors"
	"github.com/byebilly/waitlist-api/pkg/response"
)

type waitlistServiceMock struct {
	enrollReq  dto.EnrollRequest
	enrollResp *dto.EnrollResult
	enrollErr  error
	statsResp  *dto.WaitlistStatsResponse
	statsHit   bool
	statsErr   error
	lastFilter models.WaitlistFilter
	listResp   []models.WaitlistEntry
	listErr    error
	lastFormat dto.ExportFormat
	exportResp *dto.ExportFile
	exportErr  error
	calls      int
}

func (m *waitlistServiceMock) Enroll(ctx context.Context, req dto.EnrollRequest) (*dto.EnrollResult, error) {
	m.calls++
	m.enrollReq = req
	return m.enrollResp, m.enrollErr
}

func (m *waitlistServiceMock) Stats(ctx context.Context) (*dto.WaitlistStatsResponse, bool, error) {
	m.calls++
	return m.statsResp, m.statsHit, m.statsErr
}

func (m *waitlistServiceMock) List(ctx context.Context, filter models.WaitlistFilter) ([]models.WaitlistEntry, *models.Pagination, error) {
	m.calls++
	m.lastFilter = filter
	if m.listErr != nil {
		return nil, nil, m.listErr
	}
	return m.listResp, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: len(m.listResp)}, nil
}

func (m *waitlistServiceMock) Export(ctx context.Context, format dto.ExportFormat) (*dto.ExportFile, error) {
	m.calls++
	m.lastFormat = format
	return m.exportResp, m.exportErr
}

func newWaitlistRouter(svc waitlistService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewWaitlistHandler(svc)
	router := gin.New()
	router.POST("/waitlist", h.Enroll)
	router.GET("/waitlist", h.Stats)
	router.GET("/waitlist/entries", h.List)
	router.GET("/waitlist/export", h.Export)
	return router
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) response.ErrorBody {
	t.Helper()
	var body response.ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestWaitlistHandlerEnroll(t *testing.T) {
	mockSvc := &waitlistServiceMock{enrollResp: &dto.EnrollResult{Success: true, Position: 3}}
	router := newWaitlistRouter(mockSvc)

	w := doJSON(router, http.MethodPost, "/waitlist", `{"email":"alice@example.com","name":"Alice"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"position":3,"alreadyEnrolled":false}`, w.Body.String())
	assert.Equal(t, "alice@example.com", mockSvc.enrollReq.Email)
	assert.Equal(t, "Alice", mockSvc.enrollReq.Name)
}

func TestWaitlistHandlerEnrollMalformedJSON(t *testing.T) {
	mockSvc := &waitlistServiceMock{}
	router := newWaitlistRouter(mockSvc)

	for _, body := range []string{`{"email":`, ``, `[1,2]`} {
		w := doJSON(router, http.MethodPost, "/waitlist", body)
		require.Equal(t, http.StatusBadRequest, w.Code, body)
		errBody := decodeError(t, w)
		assert.False(t, errBody.Success)
		assert.Equal(t, appErrors.KindInvalidInput, errBody.Kind)
	}
	assert.Zero(t, mockSvc.calls)
}

func TestWaitlistHandlerEnrollStoreUnavailable(t *testing.T) {
	mockSvc := &waitlistServiceMock{enrollErr: appErrors.StoreUnavailable(errors.New("pq: connection refused"), "")}
	router := newWaitlistRouter(mockSvc)

	w := doJSON(router, http.MethodPost, "/waitlist", `{"email":"carol@example.com"}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	errBody := decodeError(t, w)
	assert.Equal(t, appErrors.KindStoreUnavailable, errBody.Kind)
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestWaitlistHandlerStats(t *testing.T) {
	name := "Alice"
	mockSvc := &waitlistServiceMock{
		statsResp: &dto.WaitlistStatsResponse{
			TotalCount: 1,
			ThisWeek:   1,
			WithNames:  1,
			RecentSignups: []dto.RecentSignup{
				{Email: "alice@example.com", Name: &name, CreatedAt: time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)},
			},
		},
		statsHit: true,
	}
	router := newWaitlistRouter(mockSvc)

	w := doJSON(router, http.MethodGet, "/waitlist", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))
	assert.JSONEq(t, `{"totalCount":1,"thisWeek":1,"withNames":1,"recentSignups":[{"email":"alice@example.com","name":"Alice","createdAt":"2026-10-01T09:00:00Z"}]}`, w.Body.String())
}

func TestWaitlistHandlerListParsesQuery(t *testing.T) {
	mockSvc := &waitlistServiceMock{listResp: []models.WaitlistEntry{{ID: "1", Email: "a@example.com", Status: models.WaitlistStatusInvited}}}
	router := newWaitlistRouter(mockSvc)

	w := doJSON(router, http.MethodGet, "/waitlist/entries?status=INVITED&page=2&limit=5", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.WaitlistFilter{Status: models.WaitlistStatusInvited, Page: 2, PageSize: 5}, mockSvc.lastFilter)

	var page struct {
		Data       []models.WaitlistEntry `json:"data"`
		Pagination models.Pagination      `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Len(t, page.Data, 1)
	assert.Equal(t, 2, page.Pagination.Page)
}

func TestWaitlistHandlerListInvalidStatus(t *testing.T) {
	mockSvc := &waitlistServiceMock{listErr: appErrors.Clone(appErrors.ErrInvalidInput, "bad status")}
	router := newWaitlistRouter(mockSvc)

	w := doJSON(router, http.MethodGet, "/waitlist/entries?status=banned", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "bad status", decodeError(t, w).Error)
}

func TestWaitlistHandlerListHugePage(t *testing.T) {
	svc := service.NewWaitlistService(repository.NewMemoryWaitlistRepository(), nil, nil, nil, service.WaitlistConfig{}, nil)
	router := newWaitlistRouter(svc)
	require.Equal(t, http.StatusOK, doJSON(router, http.MethodPost, "/waitlist", `{"email":"alice@example.com"}`).Code)

	w := doJSON(router, http.MethodGet, "/waitlist/entries?page=9223372036854775807&limit=20", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	errBody := decodeError(t, w)
	assert.Equal(t, appErrors.KindInvalidInput, errBody.Kind)
	assert.Equal(t, "page is out of range", errBody.Error)
}

func TestWaitlistHandlerExport(t *testing.T) {
	mockSvc := &waitlistServiceMock{exportResp: &dto.ExportFile{Filename: "waitlist-2026-10-18.pdf", ContentType: "application/pdf", Payload: []byte("%PDF-1.3")}}
	router := newWaitlistRouter(mockSvc)

	w := doJSON(router, http.MethodGet, "/waitlist/export?format=PDF", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, dto.ExportFormatPDF, mockSvc.lastFormat)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="waitlist-2026-10-18.pdf"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.3", w.Body.String())
}

// End to end through the real service and in-memory store.
func TestWaitlistHandlerEnrollFlow(t *testing.T) {
	start := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	repo := repository.NewMemoryWaitlistRepository().WithClock(func() time.Time {
		tick++
		return start.Add(time.Duration(tick) * time.Second)
	})
	svc := service.NewWaitlistService(repo, nil, nil, nil, service.WaitlistConfig{}, nil)
	router := newWaitlistRouter(svc)

	steps := []struct {
		body   string
		status int
		want   string
	}{
		{`{"email":"alice@example.com"}`, http.StatusOK, `{"success":true,"position":1,"alreadyEnrolled":false}`},
		{`{"email":"bob@example.com","name":"Bob"}`, http.StatusOK, `{"success":true,"position":2,"alreadyEnrolled":false}`},
		{`{"email":"Alice@Example.com"}`, http.StatusOK, `{"success":true,"position":1,"alreadyEnrolled":true}`},
		{`{"email":""}`, http.StatusBadRequest, `{"success":false,"kind":"InvalidInput","error":"email is required"}`},
		{`{"email":42}`, http.StatusBadRequest, `{"success":false,"kind":"InvalidInput","error":"email must be a string"}`},
		{`{"email":"dave@example.com","name":7}`, http.StatusBadRequest, `{"success":false,"kind":"InvalidInput","error":"name must be a string"}`},
	}
	for _, step := range steps {
		w := doJSON(router, http.MethodPost, "/waitlist", step.body)
		require.Equal(t, step.status, w.Code, step.body)
		assert.JSONEq(t, step.want, w.Body.String(), step.body)
	}

	w := doJSON(router, http.MethodGet, "/waitlist", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	var stats dto.WaitlistStatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.TotalCount)
	assert.Len(t, stats.RecentSignups, 2)
}
