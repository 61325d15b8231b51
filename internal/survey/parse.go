package survey

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/SAP-F-2025/survey-assistant/internal/models"
	"github.com/titanous/json5"
)

// QuestionRecord is the shape produced by the question extractor.
// The option list travels under "answer"; "options" is accepted as well.
type QuestionRecord struct {
	Question string   `json:"question"`
	Type     string   `json:"question type"`
	Answer   []string `json:"answer"`
	Options  []string `json:"options,omitempty"`
	EntryID  string   `json:"entry_id,omitempty"`
}

// ToQuestion converts a record, mapping unknown types to ShortAnswer and
// discarding options on types that have none.
func (r QuestionRecord) ToQuestion() (models.Question, error) {
	text := strings.TrimSpace(r.Question)
	if text == "" {
		return models.Question{}, fmt.Errorf("%w: empty question text", ErrMalformedQuestion)
	}
	q := models.Question{
		Text:    text,
		Type:    models.ParseQuestionType(r.Type),
		EntryID: r.EntryID,
	}
	if q.Type.HasOptions() {
		opts := r.Options
		if len(opts) == 0 {
			opts = r.Answer
		}
		q.Options = append([]string(nil), opts...)
	}
	return q, nil
}

// DecodeQuestionRecords parses a JSON array of extractor records.
func DecodeQuestionRecords(data []byte) (models.QuestionSet, error) {
	var records []QuestionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedQuestion, err)
	}
	qs := make(models.QuestionSet, 0, len(records))
	for i, r := range records {
		q, err := r.ToQuestion()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		qs = append(qs, q)
	}
	if len(qs) == 0 {
		return nil, ErrEmptyQuestionSet
	}
	return qs, nil
}

// ParseQuestionString parses the line format "text; type; [options]" where
// the options are a list literal, e.g.
//
//	Favourite colour?; Multiple Choice; ['Red', 'Blue']
func ParseQuestionString(line string) (models.Question, error) {
	parts := strings.Split(line, ";")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) != 3 {
		return models.Question{}, fmt.Errorf("%w: expected 3 parts, got %d: %q", ErrMalformedQuestion, len(parts), line)
	}

	var options []string
	if err := json5.Unmarshal([]byte(parts[2]), &options); err != nil {
		return models.Question{}, fmt.Errorf("%w: options of %q: %v", ErrMalformedQuestion, parts[0], err)
	}
	return QuestionRecord{Question: parts[0], Type: parts[1], Answer: options}.ToQuestion()
}

// ParseQuestionPages parses a list literal of pages, each a list of question
// strings in the line format.
func ParseQuestionPages(text string) ([]models.QuestionSet, error) {
	var raw [][]string
	if err := json5.Unmarshal([]byte(strings.TrimSpace(text)), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedQuestion, err)
	}
	pages := make([]models.QuestionSet, 0, len(raw))
	for _, page := range raw {
		qs := make(models.QuestionSet, 0, len(page))
		for _, line := range page {
			q, err := ParseQuestionString(line)
			if err != nil {
				return nil, err
			}
			qs = append(qs, q)
		}
		pages = append(pages, qs)
	}
	return pages, nil
}

// JoinPages concatenates pages into one question set.
func JoinPages(pages []models.QuestionSet) models.QuestionSet {
	var out models.QuestionSet
	for _, p := range pages {
		out = append(out, p...)
	}
	return out
}
