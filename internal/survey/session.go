package survey

import (
	"fmt"

	"github.com/SAP-F-2025/survey-assistant/internal/models"
)

// Session is the explicit context of one survey-filling session. The caller
// owns it; nothing in this package keeps session state of its own.
type Session struct {
	ID           string
	FormURL      string
	FormName     string
	Mode         models.SessionMode
	UsedFallback bool

	questions models.QuestionSet
	store     *ResponseStore
	nav       *NavigationController
}

// NewSession starts a session at the first question. Question texts name
// the columns of the session's row, so they must be unique.
func NewSession(id, formURL, formName string, mode models.SessionMode, questions models.QuestionSet) (*Session, error) {
	nav, err := NewNavigationController(questions.Len())
	if err != nil {
		return nil, err
	}
	seen := make(map[string]int, len(questions))
	for idx, q := range questions {
		if first, dup := seen[q.Text]; dup {
			return nil, fmt.Errorf("%w: questions %d and %d are both %q", ErrDuplicateQuestion, first, idx, q.Text)
		}
		seen[q.Text] = idx
	}
	if mode == "" {
		mode = models.ModeNormal
	}
	return &Session{
		ID:        id,
		FormURL:   formURL,
		FormName:  formName,
		Mode:      mode,
		questions: questions,
		store:     NewResponseStore(questions),
		nav:       nav,
	}, nil
}

func (s *Session) Questions() models.QuestionSet { return s.questions }
func (s *Session) Store() *ResponseStore         { return s.store }
func (s *Session) Navigation() *NavigationController {
	return s.nav
}

// Status maps the navigation state onto the persisted status.
func (s *Session) Status() models.SessionStatus {
	switch {
	case s.nav.Submitted():
		return models.SessionSubmitted
	case s.nav.InReview():
		return models.SessionReviewing
	default:
		return models.SessionAnswering
	}
}

// CurrentQuestion returns the active question and its index. ok is false in
// review mode, where no single question is active.
func (s *Session) CurrentQuestion() (q models.Question, idx int, ok bool) {
	if s.nav.InReview() || s.nav.Submitted() {
		return models.Question{}, -1, false
	}
	idx = s.nav.Current()
	return s.questions[idx], idx, true
}

// Answer records an answer for any question. Answers may be edited in
// review mode; a submitted session is read-only.
func (s *Session) Answer(idx int, v models.ResponseValue) error {
	if s.nav.Submitted() {
		return ErrAlreadySubmitted
	}
	return s.store.Set(idx, v)
}

// AnswerCurrent records an answer for the active question.
func (s *Session) AnswerCurrent(v models.ResponseValue) error {
	_, idx, ok := s.CurrentQuestion()
	if !ok {
		return ErrNotInReview
	}
	return s.Answer(idx, v)
}

// AnswerTranscript records a spoken answer for question idx. Choice questions
// are matched against their option labels; see MatchOptions.
func (s *Session) AnswerTranscript(idx int, transcript string) (models.ResponseValue, error) {
	if !s.questions.Valid(idx) {
		return models.ResponseValue{}, fmt.Errorf("%w: %d", ErrIndexOutOfRange, idx)
	}
	q := s.questions[idx]
	var v models.ResponseValue
	switch q.Type {
	case models.MultipleChoice:
		matched := MatchOptions(transcript, q.Options)
		if len(matched) == 0 {
			return models.ResponseValue{}, fmt.Errorf("%w: %q matches no option of %q", ErrTypeMismatch, transcript, q.Text)
		}
		v = models.Scalar(matched[0])
	case models.Checkboxes:
		v = models.MultiValue(MatchOptions(transcript, q.Options)...)
	default:
		v = models.Scalar(transcript)
	}
	return v, s.Answer(idx, v)
}

func (s *Session) Next()     { s.nav.Advance() }
func (s *Session) Previous() { s.nav.Retreat() }

// Finish ends question-by-question input and opens the review.
func (s *Session) Finish() error { return s.nav.EnterReview() }

// BackToQuestions leaves review at target.
func (s *Session) BackToQuestions(target int) error { return s.nav.ExitReview(target) }

// Complete closes the session. The caller persists and submits afterwards.
func (s *Session) Complete() error { return s.nav.Complete() }

// ReviewItem is one line of the review listing.
type ReviewItem struct {
	Index    int                   `json:"index"`
	Question models.Question       `json:"question"`
	Widget   models.WidgetKind     `json:"widget"`
	Answered bool                  `json:"answered"`
	Value    *models.ResponseValue `json:"value,omitempty"`
}

// Review lists every question with its current answer.
func (s *Session) Review() []ReviewItem {
	items := make([]ReviewItem, len(s.questions))
	for idx, q := range s.questions {
		item := ReviewItem{Index: idx, Question: q, Widget: q.Type.Widget()}
		if v, ok := s.store.Get(idx); ok {
			item.Answered = true
			item.Value = &v
		}
		items[idx] = item
	}
	return items
}

func (s *Session) Row() PersistedRow {
	return ToRow(s.questions, s.store)
}

// ToModel snapshots the session for the repository.
func (s *Session) ToModel() (*models.SurveySession, error) {
	state := s.nav.State()
	m := &models.SurveySession{
		ID:           s.ID,
		FormURL:      s.FormURL,
		FormName:     s.FormName,
		Mode:         s.Mode,
		Status:       s.Status(),
		CurrentIndex: state.CurrentIndex,
		ReviewMode:   state.ReviewMode,
		UsedFallback: s.UsedFallback,
	}
	if err := m.SetQuestions(s.questions); err != nil {
		return nil, err
	}
	if err := m.SetAnswers(s.store.Snapshot()); err != nil {
		return nil, err
	}
	return m, nil
}

// SessionFromModel rebuilds a session from its persisted snapshot.
func SessionFromModel(m *models.SurveySession) (*Session, error) {
	questions, err := m.QuestionSet()
	if err != nil {
		return nil, err
	}
	answers, err := m.AnswerMap()
	if err != nil {
		return nil, err
	}
	nav, err := RestoreNavigation(questions.Len(), NavigationState{
		CurrentIndex: m.CurrentIndex,
		ReviewMode:   m.ReviewMode || m.Status == models.SessionReviewing || m.Status == models.SessionSubmitted,
		Submitted:    m.Status == models.SessionSubmitted,
	})
	if err != nil {
		return nil, err
	}
	store, _ := RestoreResponseStore(questions, answers)
	return &Session{
		ID:           m.ID,
		FormURL:      m.FormURL,
		FormName:     m.FormName,
		Mode:         m.Mode,
		UsedFallback: m.UsedFallback,
		questions:    questions,
		store:        store,
		nav:          nav,
	}, nil
}
