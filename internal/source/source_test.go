package source

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/SAP-F-2025/survey-assistant/internal/models"
	"github.com/SAP-F-2025/survey-assistant/internal/survey"
	"github.com/SAP-F-2025/survey-assistant/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const recordsJSON = `[
	{"question": "Name?", "question type": "Short Answer", "answer": []},
	{"question": "Color?", "question type": "Multiple Choice", "answer": ["Red", "Blue"]}
]`

func discardLogger() utils.Logger {
	return utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHTTPSource_Fetch(t *testing.T) {
	var gotURL string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURL = r.URL.Query().Get("url")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, recordsJSON)
	}))
	defer server.Close()

	src := NewHTTPSource(server.URL+"/questions", 5*time.Second)
	qs, err := src.Fetch(context.Background(), "https://docs.google.com/forms/d/e/abc/viewform")
	require.NoError(t, err)

	assert.Equal(t, "https://docs.google.com/forms/d/e/abc/viewform", gotURL)
	assert.Equal(t, []string{"Name?", "Color?"}, qs.Texts())
	assert.Equal(t, models.MultipleChoice, qs[1].Type)
}

func TestHTTPSource_Failures(t *testing.T) {
	testCases := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"server error", http.StatusInternalServerError, `oops`, ErrFetchFailure},
		{"not json", http.StatusOK, `<html>`, survey.ErrMalformedQuestion},
		{"empty set", http.StatusOK, `[]`, survey.ErrEmptyQuestionSet},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			}))
			defer server.Close()

			_, err := NewHTTPSource(server.URL, time.Second).Fetch(context.Background(), "x")
			assert.ErrorIs(t, err, ErrFetchFailure)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestFileSource_Fetch(t *testing.T) {
	dir := t.TempDir()

	t.Run("records", func(t *testing.T) {
		path := filepath.Join(dir, "questions.json")
		require.NoError(t, os.WriteFile(path, []byte(recordsJSON), 0o644))

		qs, err := FileSource{Path: path}.Fetch(context.Background(), "")
		require.NoError(t, err)
		assert.Len(t, qs, 2)
	})

	t.Run("line format pages", func(t *testing.T) {
		path := filepath.Join(dir, "questions.txt")
		content := `[["Name?; Short Answer; []"], ["Dish?; Checkboxes; ['Mains', 'Salad']"]]`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		qs, err := FileSource{Path: path}.Fetch(context.Background(), "")
		require.NoError(t, err)
		assert.Equal(t, []string{"Name?", "Dish?"}, qs.Texts())
		assert.Equal(t, []string{"Mains", "Salad"}, qs[1].Options)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := FileSource{Path: filepath.Join(dir, "nope.json")}.Fetch(context.Background(), "")
		assert.ErrorIs(t, err, ErrFetchFailure)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestLoadWithFallback(t *testing.T) {
	logger := discardLogger()

	t.Run("source succeeds", func(t *testing.T) {
		qs := models.QuestionSet{{Text: "Name?", Type: models.ShortAnswer}}
		res := LoadWithFallback(context.Background(), StaticSource{Questions: qs}, "", logger)
		assert.False(t, res.Fallback)
		assert.NoError(t, res.Err)
		assert.Equal(t, qs, res.Questions)
	})

	t.Run("source fails", func(t *testing.T) {
		res := LoadWithFallback(context.Background(), FileSource{Path: "/does/not/exist"}, "", logger)
		assert.True(t, res.Fallback)
		assert.ErrorIs(t, res.Err, ErrFetchFailure)
		assert.Equal(t, survey.SampleQuestions(), res.Questions)
	})

	t.Run("empty source", func(t *testing.T) {
		res := LoadWithFallback(context.Background(), StaticSource{}, "", logger)
		assert.True(t, res.Fallback)
		assert.ErrorIs(t, res.Err, survey.ErrEmptyQuestionSet)
	})
}
