package survey

import "errors"

var (
	ErrEmptyQuestionSet        = errors.New("question set is empty")
	ErrIndexOutOfRange         = errors.New("question index out of range")
	ErrTypeMismatch            = errors.New("response value does not match question type")
	ErrNotInReview             = errors.New("session is not in review mode")
	ErrAlreadySubmitted        = errors.New("session already submitted")
	ErrMalformedPersistedValue = errors.New("malformed persisted value")
	ErrMalformedQuestion       = errors.New("malformed question record")
	ErrDuplicateQuestion       = errors.New("question text is not unique")
)
