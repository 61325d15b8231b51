package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the survey lifecycle events
type EventType string

const (
	EventSessionStarted   EventType = "session.started"
	EventSessionCompleted EventType = "session.completed"

	EventFormSubmitted        EventType = "form.submitted"
	EventFormSubmissionFailed EventType = "form.submission_failed"
)

const (
	eventSource  = "survey-assistant"
	eventVersion = "1.0"
)

// SurveyEvent is the envelope of every published event
type SurveyEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type SessionStartedEvent struct {
	SessionID    string `json:"session_id"`
	FormURL      string `json:"form_url"`
	FormName     string `json:"form_name"`
	Mode         string `json:"mode"`
	Questions    int    `json:"questions"`
	UsedFallback bool   `json:"used_fallback"`
}

type SessionCompletedEvent struct {
	SessionID string            `json:"session_id"`
	FormName  string            `json:"form_name"`
	Answered  int               `json:"answered"`
	Questions int               `json:"questions"`
	CSVPath   string            `json:"csv_path"`
	Row       map[string]string `json:"row"`
}

type FormSubmissionEvent struct {
	SessionID   string   `json:"session_id"`
	FormURL     string   `json:"form_url"`
	Filled      int      `json:"filled"`
	FieldErrors []string `json:"field_errors,omitempty"`
	Failure     string   `json:"failure,omitempty"`
}

func newEvent(t EventType, data interface{}) *SurveyEvent {
	return &SurveyEvent{
		ID:        GenerateEventID(),
		Type:      t,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}

func NewSessionStartedEvent(data SessionStartedEvent) *SurveyEvent {
	return newEvent(EventSessionStarted, data)
}

func NewSessionCompletedEvent(data SessionCompletedEvent) *SurveyEvent {
	return newEvent(EventSessionCompleted, data)
}

// NewFormSubmissionEvent picks the submitted or failed type from data.Failure.
func NewFormSubmissionEvent(data FormSubmissionEvent) *SurveyEvent {
	if data.Failure != "" {
		return newEvent(EventFormSubmissionFailed, data)
	}
	return newEvent(EventFormSubmitted, data)
}

func GenerateEventID() string {
	return uuid.NewString()
}
