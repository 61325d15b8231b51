package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SAP-F-2025/survey-assistant/internal/cache"
	"github.com/SAP-F-2025/survey-assistant/internal/events"
	"github.com/SAP-F-2025/survey-assistant/internal/models"
	"github.com/SAP-F-2025/survey-assistant/internal/repositories/memory"
	"github.com/SAP-F-2025/survey-assistant/internal/services"
	"github.com/SAP-F-2025/survey-assistant/internal/source"
	"github.com/SAP-F-2025/survey-assistant/internal/storage"
	"github.com/SAP-F-2025/survey-assistant/internal/utils"
	"github.com/SAP-F-2025/survey-assistant/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const formURL = "https://docs.google.com/forms/d/e/party-rsvp/viewform"

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	v := validator.New()
	manager := services.NewServiceManager(services.ManagerDeps{
		Repo:  memory.NewSessionMemory(),
		Cache: cache.NewSessionCache(cache.NewMemoryCache(), time.Minute),
		Source: source.StaticSource{Questions: models.QuestionSet{
			{Text: "Name?", Type: models.ShortAnswer},
			{Text: "Coming?", Type: models.MultipleChoice, Options: []string{"Yes", "No"}},
			{Text: "Dishes?", Type: models.Checkboxes, Options: []string{"Mains", "Dessert"}},
		}},
		CSV:       storage.NewCSVStore(t.TempDir()),
		Publisher: events.NewMockEventPublisher(logger),
		Validator: v,
		Logger:    logger,
	})

	router := gin.New()
	router.Use(utils.RequestID())
	NewHandlerManager(manager, v, utils.NewSlogLogger(logger)).SetupRoutes(router)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func startSession(t *testing.T, router *gin.Engine) string {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/v1/sessions", gin.H{"form_url": formURL})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[services.SessionResponse](t, w).ID
}

func TestHealthCheck(t *testing.T) {
	router := setupRouter(t)
	w := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestSessionLifecycle(t *testing.T) {
	router := setupRouter(t)
	id := startSession(t, router)
	base := "/api/v1/sessions/" + id

	w := doJSON(t, router, http.MethodGet, base+"/current", nil)
	require.Equal(t, http.StatusOK, w.Code)
	current := decode[services.CurrentQuestionResponse](t, w)
	assert.Equal(t, 0, current.Index)
	assert.Equal(t, models.WidgetTextInput, current.Widget)
	assert.True(t, current.IsFirst)

	w = doJSON(t, router, http.MethodPut, base+"/answers/0", gin.H{"value": "Ann"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 1, decode[services.SessionResponse](t, w).Answered)

	w = doJSON(t, router, http.MethodPost, base+"/next", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[services.SessionResponse](t, w).CurrentIndex)

	w = doJSON(t, router, http.MethodPost, base+"/transcript", gin.H{"transcript": "yes!"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	transcript := decode[services.TranscriptResponse](t, w)
	assert.Equal(t, 1, transcript.Index)
	assert.Equal(t, "Yes", transcript.Value.Text())

	w = doJSON(t, router, http.MethodPut, base+"/answers/2", gin.H{"value": []string{"Mains", "Dessert"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodPost, base+"/finish", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[services.SessionResponse](t, w).ReviewMode)

	w = doJSON(t, router, http.MethodGet, base+"/review", nil)
	require.Equal(t, http.StatusOK, w.Code)
	review := decode[services.ReviewResponse](t, w)
	require.Len(t, review.Items, 3)
	assert.Equal(t, []string{"Mains", "Dessert"}, review.Items[2].Value.Values())

	w = doJSON(t, router, http.MethodPost, base+"/complete", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	summary := decode[models.CompletionSummary](t, w)
	assert.Equal(t, map[string]string{"Name?": "Ann", "Coming?": "Yes", "Dishes?": "Mains; Dessert"}, summary.Row)

	w = doJSON(t, router, http.MethodPost, base+"/complete", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "session_submitted", decode[ErrorResponse](t, w).Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/forms/party-rsvp/responses", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"Dishes?":["Mains","Dessert"]`)

	w = doJSON(t, router, http.MethodGet, "/api/v1/forms/party-rsvp/export?format=csv", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "party-rsvp.csv")
	assert.Equal(t, "Name?,Coming?,Dishes?\nAnn,Yes,Mains; Dessert\n", w.Body.String())

	w = doJSON(t, router, http.MethodGet, "/api/v1/sessions/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"submitted":1`)
}

func TestSessionErrors(t *testing.T) {
	router := setupRouter(t)
	id := startSession(t, router)
	base := "/api/v1/sessions/" + id

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		status int
		code   string
	}{
		{"unknown session", http.MethodGet, "/api/v1/sessions/nope", nil, http.StatusNotFound, "session_not_found"},
		{"invalid payload", http.MethodPost, "/api/v1/sessions", "not an object", http.StatusBadRequest, "invalid_payload"},
		{"invalid url", http.MethodPost, "/api/v1/sessions", gin.H{"form_url": "nope"}, http.StatusBadRequest, "validation_failed"},
		{"bad index", http.MethodPut, base + "/answers/x", gin.H{"value": "a"}, http.StatusBadRequest, ""},
		{"index out of range", http.MethodPut, base + "/answers/9", gin.H{"value": "a"}, http.StatusBadRequest, "bad_request"},
		{"wrong shape", http.MethodPut, base + "/answers/0", gin.H{"value": []string{"a"}}, http.StatusBadRequest, "validation_failed"},
		{"unknown option", http.MethodPut, base + "/answers/1", gin.H{"value": "Maybe"}, http.StatusBadRequest, "validation_failed"},
		{"complete outside review", http.MethodPost, base + "/complete", nil, http.StatusConflict, "conflict"},
		{"suggestions disabled", http.MethodGet, base + "/answers/0/suggestion", nil, http.StatusServiceUnavailable, "suggestions_disabled"},
		{"bad list query", http.MethodGet, "/api/v1/sessions?status=lost", nil, http.StatusBadRequest, "validation_failed"},
		{"negative back target", http.MethodPost, base + "/back", gin.H{"target": -1}, http.StatusBadRequest, "validation_failed"},
		{"missing responses", http.MethodGet, "/api/v1/forms/nobody/responses", nil, http.StatusNotFound, "not_found"},
		{"unsupported export", http.MethodGet, "/api/v1/forms/party-rsvp/export?format=pdf", nil, http.StatusBadRequest, "validation_failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, router, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			if tt.code != "" {
				assert.Equal(t, tt.code, decode[ErrorResponse](t, w).Code)
			}
		})
	}
}

func TestSuggestionForChoiceQuestion(t *testing.T) {
	router := setupRouter(t)
	id := startSession(t, router)

	w := doJSON(t, router, http.MethodGet, "/api/v1/sessions/"+id+"/answers/1/suggestion", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	suggestion := decode[services.SuggestionResponse](t, w)
	assert.Contains(t, []string{"Yes", "No"}, suggestion.Value.Text())
}

func TestListAndDeleteSessions(t *testing.T) {
	router := setupRouter(t)
	first := startSession(t, router)
	startSession(t, router)

	w := doJSON(t, router, http.MethodGet, "/api/v1/sessions?limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[services.SessionListResponse](t, w)
	assert.EqualValues(t, 2, list.Total)
	assert.Len(t, list.Sessions, 1)

	w = doJSON(t, router, http.MethodDelete, "/api/v1/sessions/"+first, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/sessions/"+first, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
