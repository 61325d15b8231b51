package validator

import (
	"fmt"
	"strings"

	"github.com/SAP-F-2025/survey-assistant/internal/errors"
	"github.com/SAP-F-2025/survey-assistant/internal/models"
	"github.com/SAP-F-2025/survey-assistant/internal/survey"
)

// Use shared validation errors from errors package
type ValidationError = errors.ValidationError
type ValidationErrors = errors.ValidationErrors

// ToValidationErrors converts validator.ValidationErrors to our custom type
func ToValidationErrors(err error) ValidationErrors {
	return errors.ToValidationErrors(err)
}

// QuestionValidator checks question sets and the answers given to them
type QuestionValidator struct{}

func NewQuestionValidator() *QuestionValidator {
	return &QuestionValidator{}
}

// ValidateQuestion checks a single question. field prefixes the reported
// field names, e.g. "questions[3]".
func (v *QuestionValidator) ValidateQuestion(field string, q models.Question) ValidationErrors {
	var errs ValidationErrors
	if strings.TrimSpace(q.Text) == "" {
		errs = append(errs, *errors.NewValidationErrorWithRule(field+".text", "is required", "required", q.Text))
	}
	if !q.Type.Valid() {
		errs = append(errs, *errors.NewValidationErrorWithRule(field+".type", "must be a valid question type", "question_type", q.Type))
	}
	if !q.Type.HasOptions() {
		return errs
	}

	if len(q.Options) == 0 {
		errs = append(errs, *errors.NewValidationErrorWithRule(field+".options", "must list at least one option", "min", 0))
	}
	seen := make(map[string]bool, len(q.Options))
	for i, opt := range q.Options {
		optField := fmt.Sprintf("%s.options[%d]", field, i)
		switch {
		case strings.TrimSpace(opt) == "":
			errs = append(errs, *errors.NewValidationErrorWithRule(optField, "is required", "required", opt))
		case seen[opt]:
			errs = append(errs, *errors.NewValidationErrorWithRule(optField, "is a duplicate option", "unique", opt))
		case q.Type == models.Checkboxes && strings.Contains(opt, survey.Delimiter):
			errs = append(errs, *errors.NewValidationErrorWithRule(optField,
				fmt.Sprintf("must not contain %q", survey.Delimiter), "delimiter", opt))
		}
		seen[opt] = true
	}
	return errs
}

// ValidateSet checks every question of qs. Question texts name the columns
// of the responses file, so they must be unique.
func (v *QuestionValidator) ValidateSet(qs models.QuestionSet) error {
	if qs.Len() == 0 {
		return ValidationErrors{*errors.NewValidationErrorWithRule("questions", "must contain at least one question", "min", 0)}
	}

	var errs ValidationErrors
	texts := make(map[string]int, len(qs))
	for i, q := range qs {
		field := fmt.Sprintf("questions[%d]", i)
		errs = append(errs, v.ValidateQuestion(field, q)...)
		if first, dup := texts[q.Text]; dup && q.Text != "" {
			errs = append(errs, *errors.NewValidationErrorWithRule(field+".text",
				fmt.Sprintf("duplicates question %d", first), "unique", q.Text))
			continue
		}
		texts[q.Text] = i
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateAnswer checks that v fits q: its shape must match the question
// type and choice labels must be among the question's options. Empty values
// are always acceptable.
func (v *QuestionValidator) ValidateAnswer(idx int, q models.Question, value models.ResponseValue) error {
	field := fmt.Sprintf("answers[%d]", idx)
	if !value.Matches(q.Type) {
		return ValidationErrors{*errors.NewValidationErrorWithRule(field,
			fmt.Sprintf("must be a %s value", kindFor(q.Type)), "response_kind", value.String())}
	}
	if !q.Type.HasOptions() {
		return nil
	}

	var errs ValidationErrors
	for _, label := range value.Values() {
		if !q.HasOption(label) {
			errs = append(errs, *errors.NewValidationErrorWithRule(field,
				fmt.Sprintf("%q is not an option of this question", label), "option", label))
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func kindFor(t models.QuestionType) models.ResponseKind {
	return models.EmptyFor(t).Kind()
}
