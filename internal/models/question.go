package models

import (
	"strings"
)

type QuestionType string

const (
	ShortAnswer    QuestionType = "short_answer"
	Paragraph      QuestionType = "paragraph"
	MultipleChoice QuestionType = "multiple_choice"
	Checkboxes     QuestionType = "checkboxes"
	Date           QuestionType = "date"
	Time           QuestionType = "time"
)

// QuestionTypes lists every supported question type in display order.
var QuestionTypes = []QuestionType{
	ShortAnswer,
	Paragraph,
	MultipleChoice,
	Checkboxes,
	Date,
	Time,
}

// ParseQuestionType maps a type label from a question source onto the closed
// set of question types. Matching ignores case and treats spaces, dashes and
// underscores alike, so "Short Answer", "short answer" and "short_answer" are
// the same type. Anything unrecognised is a ShortAnswer.
func ParseQuestionType(raw string) QuestionType {
	qt, _ := LookupQuestionType(raw)
	return qt
}

// LookupQuestionType is ParseQuestionType that also reports whether the label
// was recognised.
func LookupQuestionType(raw string) (QuestionType, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	for _, qt := range QuestionTypes {
		if string(qt) == key {
			return qt, true
		}
	}
	return ShortAnswer, false
}

// Valid reports whether t is one of the declared question types.
func (t QuestionType) Valid() bool {
	for _, qt := range QuestionTypes {
		if qt == t {
			return true
		}
	}
	return false
}

// Label returns the human readable name used by hosted form builders.
func (t QuestionType) Label() string {
	switch t {
	case Paragraph:
		return "Paragraph"
	case MultipleChoice:
		return "Multiple Choice"
	case Checkboxes:
		return "Checkboxes"
	case Date:
		return "Date"
	case Time:
		return "Time"
	default:
		return "Short Answer"
	}
}

// WidgetKind identifies the input widget a client should render for a question.
type WidgetKind string

const (
	WidgetTextInput   WidgetKind = "text_input"
	WidgetTextArea    WidgetKind = "text_area"
	WidgetRadio       WidgetKind = "radio"
	WidgetMultiSelect WidgetKind = "multi_select"
	WidgetDatePicker  WidgetKind = "date_picker"
	WidgetTimePicker  WidgetKind = "time_picker"
)

func (t QuestionType) Widget() WidgetKind {
	switch t {
	case Paragraph:
		return WidgetTextArea
	case MultipleChoice:
		return WidgetRadio
	case Checkboxes:
		return WidgetMultiSelect
	case Date:
		return WidgetDatePicker
	case Time:
		return WidgetTimePicker
	default:
		return WidgetTextInput
	}
}

// ControlCategory groups live form controls for positional matching.
type ControlCategory string

const (
	CategoryText   ControlCategory = "text"
	CategoryChoice ControlCategory = "choice"
)

func (t QuestionType) Category() ControlCategory {
	switch t {
	case MultipleChoice, Checkboxes:
		return CategoryChoice
	default:
		return CategoryText
	}
}

// MultiValued reports whether answers to this type are MultiValue responses.
func (t QuestionType) MultiValued() bool {
	return t == Checkboxes
}

// HasOptions reports whether questions of this type carry an option list.
func (t QuestionType) HasOptions() bool {
	return t.Category() == CategoryChoice
}

// Question is a single survey question as delivered by a question source.
type Question struct {
	Text    string       `json:"text" validate:"required"`
	Type    QuestionType `json:"type" validate:"required,question_type"`
	Options []string     `json:"options,omitempty"`
	// EntryID is the hosted form field id, when the source knows it.
	EntryID string `json:"entry_id,omitempty"`
}

// HasOption reports whether label is one of the question's options.
func (q Question) HasOption(label string) bool {
	for _, opt := range q.Options {
		if opt == label {
			return true
		}
	}
	return false
}

// QuestionSet is an ordered list of questions. It is never mutated after fetch.
type QuestionSet []Question

// Len is the number of questions in the set.
func (qs QuestionSet) Len() int {
	return len(qs)
}

// Valid reports whether idx addresses a question in the set.
func (qs QuestionSet) Valid(idx int) bool {
	return idx >= 0 && idx < len(qs)
}

// Texts returns the question texts in order; these are the CSV columns.
func (qs QuestionSet) Texts() []string {
	texts := make([]string, len(qs))
	for i, q := range qs {
		texts[i] = q.Text
	}
	return texts
}

// Ordinal returns the position of question idx among questions that satisfy
// match, counting from zero. It returns -1 if idx itself does not match.
func (qs QuestionSet) Ordinal(idx int, match func(Question) bool) int {
	if !qs.Valid(idx) || !match(qs[idx]) {
		return -1
	}
	n := 0
	for i := 0; i < idx; i++ {
		if match(qs[i]) {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of the set.
func (qs QuestionSet) Clone() QuestionSet {
	out := make(QuestionSet, len(qs))
	for i, q := range qs {
		q.Options = append([]string(nil), q.Options...)
		out[i] = q
	}
	return out
}
