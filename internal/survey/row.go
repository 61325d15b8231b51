package survey

import (
	"errors"

	"github.com/SAP-F-2025/survey-assistant/internal/models"
)

// PersistedRow is one completed session in tabular form: one column per
// question text, in question order.
type PersistedRow struct {
	Columns []string
	Values  map[string]string
}

// Record returns the values in column order.
func (r PersistedRow) Record() []string {
	out := make([]string, len(r.Columns))
	for i, c := range r.Columns {
		out[i] = r.Values[c]
	}
	return out
}

// ToRow flattens a store into a row. Unanswered questions are empty strings.
// Question texts must be unique; NewSession enforces this for sessions.
func ToRow(questions models.QuestionSet, store *ResponseStore) PersistedRow {
	row := PersistedRow{
		Columns: questions.Texts(),
		Values:  make(map[string]string, len(questions)),
	}
	for idx, q := range questions {
		value := ""
		if v, ok := store.Get(idx); ok {
			value = Flatten(v)
		}
		row.Values[q.Text] = value
	}
	return row
}

// FromRecord rebuilds a store from a persisted row. header maps column
// positions to question texts; columns without a matching question are
// ignored and empty cells stay unanswered. Malformed checkbox cells are
// recovered as empty sets and reported in the returned error.
func FromRecord(questions models.QuestionSet, header, record []string) (*ResponseStore, error) {
	byText := make(map[string]int, len(questions))
	for i, q := range questions {
		byText[q.Text] = i
	}

	store := NewResponseStore(questions)
	var errs []error
	for col, text := range header {
		idx, ok := byText[text]
		if !ok || col >= len(record) || record[col] == "" {
			continue
		}
		v, err := UnflattenQuestion(record[col], questions[idx])
		if err != nil {
			errs = append(errs, err)
		}
		_ = store.Set(idx, v)
	}
	return store, errors.Join(errs...)
}
