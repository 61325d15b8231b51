package survey

import (
	"fmt"
	"sort"

	"github.com/SAP-F-2025/survey-assistant/internal/models"
)

// ResponseStore holds the answers of one session, keyed by question index.
// A missing key means the question is unanswered.
type ResponseStore struct {
	questions models.QuestionSet
	answers   map[int]models.ResponseValue
}

func NewResponseStore(questions models.QuestionSet) *ResponseStore {
	return &ResponseStore{
		questions: questions,
		answers:   make(map[int]models.ResponseValue),
	}
}

// RestoreResponseStore loads persisted answers, dropping entries whose index
// or tag no longer fits the question set. A lone string stored for a
// Checkboxes question is widened to a one element set.
func RestoreResponseStore(questions models.QuestionSet, answers map[int]models.ResponseValue) (*ResponseStore, []int) {
	s := NewResponseStore(questions)
	var dropped []int
	for idx, v := range answers {
		if questions.Valid(idx) {
			v, _ = v.As(questions[idx].Type)
		}
		if err := s.Set(idx, v); err != nil {
			dropped = append(dropped, idx)
		}
	}
	sort.Ints(dropped)
	return s, dropped
}

// Set records the answer for idx.
func (s *ResponseStore) Set(idx int, v models.ResponseValue) error {
	if !s.questions.Valid(idx) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, idx)
	}
	q := s.questions[idx]
	if !v.Matches(q.Type) {
		return fmt.Errorf("%w: question %d is %s, got %s value", ErrTypeMismatch, idx, q.Type, v.Kind())
	}
	s.answers[idx] = v
	return nil
}

func (s *ResponseStore) Get(idx int) (models.ResponseValue, bool) {
	v, ok := s.answers[idx]
	return v, ok
}

// Clear marks idx unanswered again.
func (s *ResponseStore) Clear(idx int) {
	delete(s.answers, idx)
}

func (s *ResponseStore) Answered(idx int) bool {
	_, ok := s.answers[idx]
	return ok
}

func (s *ResponseStore) Count() int {
	return len(s.answers)
}

// Indices returns the answered indices in ascending order.
func (s *ResponseStore) Indices() []int {
	out := make([]int, 0, len(s.answers))
	for idx := range s.answers {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

// Snapshot returns a copy of the answers suitable for persistence.
func (s *ResponseStore) Snapshot() map[int]models.ResponseValue {
	out := make(map[int]models.ResponseValue, len(s.answers))
	for k, v := range s.answers {
		out[k] = v
	}
	return out
}

func (s *ResponseStore) Questions() models.QuestionSet {
	return s.questions
}
