package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseQuestionType(t *testing.T) {
	testCases := []struct {
		raw      string
		expected QuestionType
		known    bool
	}{
		{"Short Answer", ShortAnswer, true},
		{"paragraph", Paragraph, true},
		{"Multiple Choice", MultipleChoice, true},
		{"multiple-choice", MultipleChoice, true},
		{"CHECKBOXES", Checkboxes, true},
		{" Date ", Date, true},
		{"time", Time, true},
		{"Ranking", ShortAnswer, false},
		{"", ShortAnswer, false},
	}

	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			got, ok := LookupQuestionType(tc.raw)
			assert.Equal(t, tc.expected, got)
			assert.Equal(t, tc.known, ok)
			assert.Equal(t, tc.expected, ParseQuestionType(tc.raw))
		})
	}
}

func TestQuestionType_Widget(t *testing.T) {
	assert.Equal(t, WidgetTextInput, ShortAnswer.Widget())
	assert.Equal(t, WidgetTextArea, Paragraph.Widget())
	assert.Equal(t, WidgetRadio, MultipleChoice.Widget())
	assert.Equal(t, WidgetMultiSelect, Checkboxes.Widget())
	assert.Equal(t, WidgetDatePicker, Date.Widget())
	assert.Equal(t, WidgetTimePicker, Time.Widget())

	// unrecognised labels render like a short answer
	assert.Equal(t, WidgetTextInput, ParseQuestionType("Ranking").Widget())
}

func TestQuestionType_Categories(t *testing.T) {
	for _, qt := range QuestionTypes {
		assert.True(t, qt.Valid())
		assert.Equal(t, qt == Checkboxes, qt.MultiValued(), qt)
		assert.Equal(t, qt == Checkboxes || qt == MultipleChoice, qt.HasOptions(), qt)
	}
	assert.False(t, QuestionType("ranking").Valid())
	assert.Equal(t, CategoryText, Date.Category())
	assert.Equal(t, CategoryChoice, Checkboxes.Category())
}

func TestQuestionSet_Ordinal(t *testing.T) {
	qs := QuestionSet{
		{Text: "a", Type: ShortAnswer},
		{Text: "b", Type: MultipleChoice},
		{Text: "c", Type: Paragraph},
		{Text: "d", Type: Checkboxes},
		{Text: "e", Type: MultipleChoice},
	}
	isText := func(q Question) bool { return q.Type.Category() == CategoryText }
	isRadio := func(q Question) bool { return q.Type == MultipleChoice }

	assert.Equal(t, 0, qs.Ordinal(0, isText))
	assert.Equal(t, 1, qs.Ordinal(2, isText))
	assert.Equal(t, 1, qs.Ordinal(4, isRadio))
	assert.Equal(t, -1, qs.Ordinal(3, isRadio))
	assert.Equal(t, -1, qs.Ordinal(9, isRadio))
}

func TestQuestionSet_Clone(t *testing.T) {
	qs := QuestionSet{{Text: "b", Type: MultipleChoice, Options: []string{"x", "y"}}}
	clone := qs.Clone()
	clone[0].Options[0] = "z"
	assert.Equal(t, "x", qs[0].Options[0])
}
