package formfill

import (
	"context"
	"errors"
	"time"
)

var (
	ErrFieldNotFound     = errors.New("form control not found")
	ErrSubmissionTimeout = errors.New("form submission was not confirmed in time")
	ErrNothingFilled     = errors.New("no answer could be entered into the form")
)

// TextControl is a free-text input of a live form.
type TextControl interface {
	Clear(ctx context.Context) error
	SetText(ctx context.Context, value string) error
}

// ChoiceOption is one selectable option of a choice group.
type ChoiceOption interface {
	Label() string
	Select(ctx context.Context) error
}

// ChoiceGroup is a radio group or a checkbox group.
type ChoiceGroup interface {
	Options() []ChoiceOption
}

// Driver exposes the controls of one live form, in page order.
type Driver interface {
	TextControls(ctx context.Context) ([]TextControl, error)
	// ChoiceGroups returns checkbox groups when multi is set, radio groups
	// otherwise.
	ChoiceGroups(ctx context.Context, multi bool) ([]ChoiceGroup, error)
	Submit(ctx context.Context) error
	// WaitForConfirmation blocks until the form reports success or timeout
	// elapses, in which case it returns ErrSubmissionTimeout.
	WaitForConfirmation(ctx context.Context, timeout time.Duration) error
}
