package formfill

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SAP-F-2025/survey-assistant/internal/models"
	"github.com/SAP-F-2025/survey-assistant/internal/utils"
)

const DefaultTimeout = 10 * time.Second

// Answers is the read side of a response store.
type Answers interface {
	Get(idx int) (models.ResponseValue, bool)
}

// FieldError records a question whose answer could not be entered.
type FieldError struct {
	Index    int    `json:"index"`
	Question string `json:"question"`
	Err      error  `json:"-"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("question %d (%q): %v", e.Index, e.Question, e.Err)
}

func (e FieldError) Unwrap() error {
	return e.Err
}

// Result is the outcome of one submission. Success is only set once the form
// confirmed the submission; Err holds the reason otherwise.
type Result struct {
	Success     bool         `json:"success"`
	Filled      []int        `json:"filled"`
	FieldErrors []FieldError `json:"field_errors,omitempty"`
	Err         error        `json:"-"`
}

// Submitter enters recorded answers into a live form and submits it.
type Submitter struct {
	logger  utils.Logger
	timeout time.Duration
}

func NewSubmitter(logger utils.Logger, timeout time.Duration) *Submitter {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Submitter{logger: logger, timeout: timeout}
}

// Submit fills every answered question and submits the form. Questions are
// matched to controls by their position among questions of the same kind:
// text-like questions to text controls, multiple choice questions to radio
// groups and checkbox questions to checkbox groups. A field that cannot be
// filled is recorded in FieldErrors and does not stop the submission, but
// the form is not submitted when every answered question failed.
func (s *Submitter) Submit(ctx context.Context, driver Driver, questions models.QuestionSet, answers Answers) Result {
	var res Result
	controls := newControlCache(driver)

	for idx, q := range questions {
		v, ok := answers.Get(idx)
		if !ok || v.IsEmpty() {
			continue
		}

		filled, err := s.fill(ctx, controls, questions, idx, v)
		if err != nil {
			fe := FieldError{Index: idx, Question: q.Text, Err: err}
			res.FieldErrors = append(res.FieldErrors, fe)
			s.logger.WarnContext(ctx, "Failed to fill form field",
				"index", idx,
				"question", q.Text,
				"error", err,
			)
			continue
		}
		if filled {
			res.Filled = append(res.Filled, idx)
		}
	}

	if len(res.Filled) == 0 && len(res.FieldErrors) > 0 {
		res.Err = fmt.Errorf("%w: %d field errors", ErrNothingFilled, len(res.FieldErrors))
		s.logger.WarnContext(ctx, "Form not submitted, no field could be filled",
			"field_errors", len(res.FieldErrors),
		)
		return res
	}

	if err := driver.Submit(ctx); err != nil {
		res.Err = fmt.Errorf("submit form: %w", err)
		s.logger.ErrorContext(ctx, "Form submit failed", "error", err)
		return res
	}

	if err := driver.WaitForConfirmation(ctx, s.timeout); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %w", ErrSubmissionTimeout, err)
		}
		res.Err = err
		s.logger.WarnContext(ctx, "Form submission not confirmed",
			"timeout", s.timeout.String(),
			"error", err,
		)
		return res
	}

	res.Success = true
	s.logger.InfoContext(ctx, "Form submitted",
		"filled", len(res.Filled),
		"field_errors", len(res.FieldErrors),
	)
	return res
}

func (s *Submitter) fill(ctx context.Context, controls *controlCache, questions models.QuestionSet, idx int, v models.ResponseValue) (bool, error) {
	q := questions[idx]

	switch q.Type {
	case models.MultipleChoice:
		group, err := controls.group(ctx, false, questions.Ordinal(idx, isRadio))
		if err != nil {
			return false, err
		}
		for _, opt := range group.Options() {
			if opt.Label() == v.Text() {
				return true, opt.Select(ctx)
			}
		}
		s.logger.DebugContext(ctx, "No option matches answer", "index", idx, "answer", v.Text())
		return false, nil

	case models.Checkboxes:
		group, err := controls.group(ctx, true, questions.Ordinal(idx, isCheckbox))
		if err != nil {
			return false, err
		}
		selected := false
		for _, opt := range group.Options() {
			if !v.Contains(opt.Label()) {
				continue
			}
			if err := opt.Select(ctx); err != nil {
				return selected, err
			}
			selected = true
		}
		return selected, nil

	default:
		control, err := controls.text(ctx, questions.Ordinal(idx, isTextLike))
		if err != nil {
			return false, err
		}
		if err := control.Clear(ctx); err != nil {
			return false, err
		}
		return true, control.SetText(ctx, v.Text())
	}
}

func isTextLike(q models.Question) bool { return q.Type.Category() == models.CategoryText }
func isRadio(q models.Question) bool    { return q.Type == models.MultipleChoice }
func isCheckbox(q models.Question) bool { return q.Type == models.Checkboxes }

// controlCache looks each control list up once per submission.
type controlCache struct {
	driver Driver

	texts    []TextControl
	textsErr error
	textsOK  bool

	groups    map[bool][]ChoiceGroup
	groupsErr map[bool]error
}

func newControlCache(driver Driver) *controlCache {
	return &controlCache{
		driver:    driver,
		groups:    make(map[bool][]ChoiceGroup),
		groupsErr: make(map[bool]error),
	}
}

func (c *controlCache) text(ctx context.Context, ordinal int) (TextControl, error) {
	if !c.textsOK {
		c.texts, c.textsErr = c.driver.TextControls(ctx)
		c.textsOK = true
	}
	if c.textsErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrFieldNotFound, c.textsErr)
	}
	if ordinal < 0 || ordinal >= len(c.texts) {
		return nil, fmt.Errorf("%w: text control %d of %d", ErrFieldNotFound, ordinal, len(c.texts))
	}
	return c.texts[ordinal], nil
}

func (c *controlCache) group(ctx context.Context, multi bool, ordinal int) (ChoiceGroup, error) {
	groups, ok := c.groups[multi]
	if !ok {
		if _, failed := c.groupsErr[multi]; !failed {
			var err error
			groups, err = c.driver.ChoiceGroups(ctx, multi)
			if err != nil {
				c.groupsErr[multi] = err
			} else {
				c.groups[multi] = groups
			}
		}
	}
	if err := c.groupsErr[multi]; err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFieldNotFound, err)
	}
	kind := "radio group"
	if multi {
		kind = "checkbox group"
	}
	if ordinal < 0 || ordinal >= len(groups) {
		return nil, fmt.Errorf("%w: %s %d of %d", ErrFieldNotFound, kind, ordinal, len(groups))
	}
	return groups[ordinal], nil
}
