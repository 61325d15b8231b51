package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SAP-F-2025/survey-assistant/internal/models"
	"github.com/SAP-F-2025/survey-assistant/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAsker struct {
	mock.Mock
}

func (m *MockAsker) Ask(ctx context.Context, background, question string) (string, error) {
	args := m.Called(ctx, background, question)
	return args.String(0), args.Error(1)
}

func discardLogger() utils.Logger {
	return utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestClient_Ask(t *testing.T) {
	var gotPath, gotKey string
	var gotBody generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Sunny"},{"text":"side "}]}}]}`))
	}))
	defer srv.Close()

	c := NewClient("k-123", "", srv.URL, time.Second)
	got, err := c.Ask(context.Background(), "park survey", "Where do you live?")
	require.NoError(t, err)
	assert.Equal(t, "Sunnyside", got)
	assert.Equal(t, "/v1beta/models/"+DefaultModel+":generateContent", gotPath)
	assert.Equal(t, "k-123", gotKey)
	require.Len(t, gotBody.Contents, 1)
	assert.Equal(t, "in this context: park survey, Where do you live?", gotBody.Contents[0].Parts[0].Text)
}

func TestClient_AskErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("key") {
		case "bad":
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":{"code":403,"message":"API key not valid"}}`))
		default:
			_, _ = w.Write([]byte(`{"candidates":[]}`))
		}
	}))
	defer srv.Close()

	_, err := NewClient("", "", srv.URL, time.Second).Ask(context.Background(), "", "q")
	assert.ErrorIs(t, err, ErrNoAPIKey)

	_, err = NewClient("bad", "", srv.URL, time.Second).Ask(context.Background(), "", "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key not valid")

	_, err = NewClient("ok", "", srv.URL, time.Second).Ask(context.Background(), "", "q")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestPrompt(t *testing.T) {
	assert.Equal(t, "Why?", Prompt("  ", " Why? "))
	assert.Equal(t, "in this context: a, b", Prompt("a", "b"))
}

func TestResponder_ChoiceQuestions(t *testing.T) {
	r := NewResponder(nil, discardLogger(), 7)
	radio := models.Question{Text: "Age?", Type: models.MultipleChoice, Options: []string{"Under 18", "18-24", "65+"}}
	boxes := models.Question{Text: "Parks?", Type: models.Checkboxes, Options: []string{"Nose Hill", "Fish Creek", "Other"}}

	for i := 0; i < 50; i++ {
		v := r.AutoAnswer(context.Background(), radio)
		assert.False(t, v.IsMulti())
		assert.True(t, radio.HasOption(v.Text()))

		set := r.AutoAnswer(context.Background(), boxes)
		require.True(t, set.IsMulti())
		require.NotEmpty(t, set.Values())
		for _, label := range set.Values() {
			assert.True(t, boxes.HasOption(label))
		}
	}
}

func TestResponder_DateAndTime(t *testing.T) {
	r := NewResponder(nil, discardLogger(), 1)
	r.now = func() time.Time { return time.Date(2024, 12, 24, 0, 0, 0, 0, time.UTC) }

	d := r.AutoAnswer(context.Background(), models.Question{Text: "When?", Type: models.Date})
	day, err := time.Parse("2006-01-02", d.Text())
	require.NoError(t, err)
	assert.False(t, day.After(r.now()))

	tm := r.AutoAnswer(context.Background(), models.Question{Text: "At?", Type: models.Time})
	_, err = time.Parse("15:04", tm.Text())
	assert.NoError(t, err)
}

func TestResponder_TextQuestions(t *testing.T) {
	asker := new(MockAsker)
	asker.On("Ask", mock.Anything, DefaultBackground, "Neighbourhood?").Return("Kensington", nil)
	asker.On("Ask", mock.Anything, DefaultBackground, "Comments?").Return("", errors.New("quota"))

	r := NewResponder(asker, discardLogger(), 3)
	assert.Equal(t, "Kensington", r.AutoAnswer(context.Background(), models.Question{Text: "Neighbourhood?", Type: models.ShortAnswer}).Text())
	assert.Equal(t, DefaultFallback, r.AutoAnswer(context.Background(), models.Question{Text: "Comments?", Type: models.Paragraph}).Text())
	asker.AssertExpectations(t)

	assert.Equal(t, DefaultFallback, NewResponder(nil, discardLogger(), 3).AutoAnswer(context.Background(), models.Question{Text: "x", Type: models.ShortAnswer}).Text())
}
