package survey

import (
	"testing"

	"github.com/SAP-F-2025/survey-assistant/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSampleSession(t *testing.T) *Session {
	t.Helper()
	s, err := NewSession("3f1c", "https://docs.google.com/forms/d/e/abc/viewform", "Party", models.ModeVoice, SampleQuestions())
	require.NoError(t, err)
	return s
}

func TestNewSession_EmptyQuestionSet(t *testing.T) {
	_, err := NewSession("x", "", "", "", nil)
	assert.ErrorIs(t, err, ErrEmptyQuestionSet)
}

func TestNewSession_DuplicateQuestionText(t *testing.T) {
	qs := models.QuestionSet{
		{Text: "Name?", Type: models.ShortAnswer},
		{Text: "Name?", Type: models.Paragraph},
	}
	_, err := NewSession("x", "", "", "", qs)
	assert.ErrorIs(t, err, ErrDuplicateQuestion)
}

func TestSession_DefaultMode(t *testing.T) {
	s, err := NewSession("x", "", "", "", colourQuestions())
	require.NoError(t, err)
	assert.Equal(t, models.ModeNormal, s.Mode)
	assert.Equal(t, models.SessionAnswering, s.Status())
}

func TestSession_CurrentQuestion(t *testing.T) {
	s := newSampleSession(t)

	q, idx, ok := s.CurrentQuestion()
	require.True(t, ok)
	assert.Equal(t, 0, idx)
	assert.Equal(t, "What is your name?", q.Text)

	require.NoError(t, s.Finish())
	_, _, ok = s.CurrentQuestion()
	assert.False(t, ok)
	assert.ErrorIs(t, s.AnswerCurrent(models.Scalar("late")), ErrNotInReview)
}

func TestSession_AnswerTranscript(t *testing.T) {
	s := newSampleSession(t)

	t.Run("text question keeps transcript", func(t *testing.T) {
		v, err := s.AnswerTranscript(0, "Ann Lee")
		require.NoError(t, err)
		assert.Equal(t, "Ann Lee", v.Text())
	})

	t.Run("multiple choice picks option", func(t *testing.T) {
		v, err := s.AnswerTranscript(1, "yes, i'll be there!")
		require.NoError(t, err)
		assert.Equal(t, "Yes, I'll be there", v.Text())
	})

	t.Run("multiple choice without match", func(t *testing.T) {
		_, err := s.AnswerTranscript(1, "maybe")
		assert.ErrorIs(t, err, ErrTypeMismatch)
		assert.True(t, s.Store().Answered(1))
	})

	t.Run("checkboxes collect every mention", func(t *testing.T) {
		v, err := s.AnswerTranscript(3, "I'll bring salad and dessert")
		require.NoError(t, err)
		assert.Equal(t, []string{"Salad", "Dessert"}, v.Values())
	})

	t.Run("out of range", func(t *testing.T) {
		_, err := s.AnswerTranscript(10, "anything")
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
	})
}

func TestSession_ReviewAndComplete(t *testing.T) {
	s := newSampleSession(t)
	require.NoError(t, s.Answer(0, models.Scalar("Ann")))
	require.NoError(t, s.Answer(3, models.MultiValue("Mains")))

	require.NoError(t, s.Finish())
	assert.Equal(t, models.SessionReviewing, s.Status())

	items := s.Review()
	require.Len(t, items, 6)
	assert.True(t, items[0].Answered)
	assert.Equal(t, models.WidgetTextInput, items[0].Widget)
	assert.False(t, items[1].Answered)
	assert.Nil(t, items[1].Value)
	assert.Equal(t, models.WidgetMultiSelect, items[3].Widget)
	assert.Equal(t, []string{"Mains"}, items[3].Value.Values())

	// edits are allowed during review
	require.NoError(t, s.Answer(1, models.Scalar("Sorry, can't make it")))

	require.NoError(t, s.BackToQuestions(2))
	assert.Equal(t, 2, s.Navigation().Current())
	require.NoError(t, s.Finish())

	require.NoError(t, s.Complete())
	assert.Equal(t, models.SessionSubmitted, s.Status())
	assert.ErrorIs(t, s.Answer(0, models.Scalar("Bo")), ErrAlreadySubmitted)
}

func TestSession_ModelRoundTrip(t *testing.T) {
	s := newSampleSession(t)
	s.UsedFallback = true
	require.NoError(t, s.Answer(0, models.Scalar("Ann")))
	require.NoError(t, s.Answer(3, models.MultiValue("Salad", "Drinks")))
	s.Next()
	s.Next()

	m, err := s.ToModel()
	require.NoError(t, err)
	assert.Equal(t, "3f1c", m.ID)
	assert.Equal(t, models.SessionAnswering, m.Status)
	assert.Equal(t, 2, m.CurrentIndex)

	restored, err := SessionFromModel(m)
	require.NoError(t, err)
	assert.Equal(t, s.Questions(), restored.Questions())
	assert.Equal(t, s.Store().Snapshot(), restored.Store().Snapshot())
	assert.Equal(t, s.Navigation().State(), restored.Navigation().State())
	assert.Equal(t, models.ModeVoice, restored.Mode)
	assert.True(t, restored.UsedFallback)
}

func TestSessionFromModel_Submitted(t *testing.T) {
	s := newSampleSession(t)
	require.NoError(t, s.Finish())
	require.NoError(t, s.Complete())

	m, err := s.ToModel()
	require.NoError(t, err)

	restored, err := SessionFromModel(m)
	require.NoError(t, err)
	assert.True(t, restored.Navigation().Submitted())
	assert.Equal(t, models.SessionSubmitted, restored.Status())
}
