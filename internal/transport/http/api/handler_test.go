package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/ledcontent/internal/config"
	"github.com/xiaot623/ledcontent/internal/domain"
	"github.com/xiaot623/ledcontent/internal/logging"
	"github.com/xiaot623/ledcontent/internal/service"
	"github.com/xiaot623/ledcontent/internal/store"
	"github.com/xiaot623/ledcontent/policy"
	"github.com/xiaot623/ledcontent/tests/helpers"
)

func newTestHandler(t *testing.T) (*Handler, *service.Service, *store.SQLStore) {
	t.Helper()
	db := helpers.NewTestSQLStore(t)
	policyEngine, err := policy.NewEngine(context.Background(), policy.DefaultPolicy)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	svc := service.New(db, policyEngine, &config.Config{}, logging.Discard(), nil)
	return NewHandler(svc), svc, db
}

func serve(t *testing.T, handler echo.HandlerFunc, path string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec
}

func seed(t *testing.T, svc *service.Service) {
	t.Helper()
	ctx := context.Background()
	frame := time.Date(0, 1, 1, 8, 0, 0, 0, time.UTC)
	live := &domain.Document{
		DocumentID: "live",
		Title:      "Live",
		Checksum:   "c-live",
		StartTime:  &frame,
		IsActive:   true,
		Sessions: []domain.Session{
			{Order: 1, Delay: 250, Text: &domain.SessionText{StartIndex: 1, Content: "Hi", Color: "#00ff00"}},
		},
	}
	rehearsal := &domain.Document{
		DocumentID: "test",
		Title:      "Test",
		IsTest:     true,
		Sessions: []domain.Session{
			{Order: 1, Delay: 100, Text: &domain.SessionText{Content: "Check", Color: "#ff0000"}},
		},
	}
	require.NoError(t, svc.SaveDocument(ctx, live))
	require.NoError(t, svc.SaveDocument(ctx, rehearsal))
}

func TestGetContentEmpty(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := serve(t, h.GetContent, "/api/content/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"sessions":[],"checksum":""}`, rec.Body.String())
}

func TestGetContent(t *testing.T) {
	h, svc, _ := newTestHandler(t)
	seed(t, svc)

	rec := serve(t, h.GetContent, "/api/content/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"sessions": [{
			"text": {"startIndex": 1, "content": "Hi", "color": [0, 255, 0]},
			"lines": [],
			"animation": null,
			"delay": 250
		}],
		"checksum": "c-live"
	}`, rec.Body.String())
}

func TestGetContentTextEmpty(t *testing.T) {
	h, _, _ := newTestHandler(t)

	for _, handler := range []echo.HandlerFunc{h.GetContentText, h.GetTestText} {
		rec := serve(t, handler, "/api/content.txt")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, textContentType, rec.Header().Get(echo.HeaderContentType))
		assert.Empty(t, rec.Body.String())
	}
}

func TestGetContentText(t *testing.T) {
	h, svc, _ := newTestHandler(t)
	seed(t, svc)

	rec := serve(t, h.GetContentText, "/api/content.txt")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, textContentType, rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, "Frame1=08:00\nText=1,Hi\nColor=0,255,0\nDelay=250", rec.Body.String())

	rec = serve(t, h.GetTestText, "/api/test.txt")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Text=0,Check\nColor=255,0,0\nDelay=100", rec.Body.String())
}

func TestStoreFailureIsServerError(t *testing.T) {
	h, _, db := newTestHandler(t)
	require.NoError(t, db.Close())

	for _, handler := range []echo.HandlerFunc{h.GetContent, h.GetContentText, h.GetTestText} {
		rec := serve(t, handler, "/api/content/")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), `"error"`)
	}

	rec := serve(t, h.Health, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealth(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := serve(t, h.Health, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}
