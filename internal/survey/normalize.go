package survey

import (
	"fmt"
	"strings"

	"github.com/SAP-F-2025/survey-assistant/internal/models"
	"github.com/titanous/json5"
)

// Delimiter joins the members of a Checkboxes answer in persisted rows.
// Members are not escaped: a member containing the delimiter does not survive
// a flatten/unflatten round trip.
const Delimiter = "; "

// Flatten converts a response to its persisted string form.
func Flatten(v models.ResponseValue) string {
	if v.IsMulti() {
		return strings.Join(v.Values(), Delimiter)
	}
	return v.Text()
}

// Unflatten rebuilds a response of type t from its persisted form. It never
// fails: a malformed legacy list yields an empty set. Without the option
// list it cannot tell stray text from a single member, so
// Unflatten("notalist", Checkboxes) is MultiValue("notalist"); use
// UnflattenQuestion to drop values that are not options.
func Unflatten(raw string, t models.QuestionType) models.ResponseValue {
	v, _ := UnflattenQuestion(raw, models.Question{Type: t})
	return v
}

// UnflattenQuestion is Unflatten with the question's option list available.
// For Checkboxes questions with options, members that are not options are
// dropped. The returned error wraps ErrMalformedPersistedValue whenever
// anything had to be discarded; the value is always usable.
func UnflattenQuestion(raw string, q models.Question) (models.ResponseValue, error) {
	if !q.Type.MultiValued() {
		return models.Scalar(raw), nil
	}

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return models.MultiValue(), nil
	}

	var parts []string
	if strings.HasPrefix(trimmed, "[") {
		// Older rows stored the list literal itself, e.g. ['Mains', 'Dessert'].
		if err := json5.Unmarshal([]byte(trimmed), &parts); err != nil {
			return models.MultiValue(), fmt.Errorf("%w: %q is not a list: %v", ErrMalformedPersistedValue, raw, err)
		}
	} else {
		parts = strings.Split(trimmed, Delimiter)
	}

	kept := make([]string, 0, len(parts))
	var rejected []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if len(q.Options) > 0 && !q.HasOption(p) {
			rejected = append(rejected, p)
			continue
		}
		kept = append(kept, p)
	}

	v := models.MultiValue(kept...)
	if len(rejected) > 0 {
		return v, fmt.Errorf("%w: %q not among the options of %q", ErrMalformedPersistedValue, rejected, q.Text)
	}
	return v, nil
}
