package services

import (
	"context"
	"time"

	"github.com/SAP-F-2025/survey-assistant/internal/models"
	"github.com/SAP-F-2025/survey-assistant/internal/repositories"
	"github.com/SAP-F-2025/survey-assistant/internal/survey"
)

// ===== SERVICE INTERFACES =====

// SurveyService drives survey-filling sessions. Every operation loads the
// session, applies one state change under the session's lock and persists
// the new snapshot.
type SurveyService interface {
	Start(ctx context.Context, req *StartSessionRequest) (*SessionResponse, error)
	Get(ctx context.Context, id string) (*SessionResponse, error)
	List(ctx context.Context, filters repositories.SessionFilters) (*SessionListResponse, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context, formName string) (map[models.SessionStatus]int64, error)

	// Answering
	Current(ctx context.Context, id string) (*CurrentQuestionResponse, error)
	Answer(ctx context.Context, id string, idx int, value models.ResponseValue) (*SessionResponse, error)
	AnswerTranscript(ctx context.Context, id string, req *TranscriptRequest) (*TranscriptResponse, error)
	Suggest(ctx context.Context, id string, idx int) (*SuggestionResponse, error)

	// Navigation
	Next(ctx context.Context, id string) (*SessionResponse, error)
	Previous(ctx context.Context, id string) (*SessionResponse, error)
	Finish(ctx context.Context, id string) (*SessionResponse, error)
	BackToQuestions(ctx context.Context, id string, target int) (*SessionResponse, error)
	Review(ctx context.Context, id string) (*ReviewResponse, error)

	Complete(ctx context.Context, id string) (*models.CompletionSummary, error)
}

// ResponseService reads back the responses files written by completed sessions.
type ResponseService interface {
	Load(ctx context.Context, formName string) (*ResponsesResponse, error)
	Export(ctx context.Context, req *models.ExportRequest) (*ExportResult, error)
}

// AutofillService generates synthetic responses in bulk.
type AutofillService interface {
	Run(ctx context.Context, req *AutofillRequest) (*AutofillReport, error)
}

// ===== REQUESTS =====

type StartSessionRequest struct {
	FormURL  string             `json:"form_url" validate:"required,url"`
	Mode     models.SessionMode `json:"mode" validate:"omitempty,session_mode"`
	FormName string             `json:"form_name" validate:"omitempty,max=255"`
}

type AnswerRequest struct {
	Value models.ResponseValue `json:"value"`
}

// TranscriptRequest carries a spoken answer. Index defaults to the current
// question.
type TranscriptRequest struct {
	Index      *int   `json:"index" validate:"omitempty,gte=0"`
	Transcript string `json:"transcript" validate:"required"`
}

type BackRequest struct {
	Target int `json:"target" validate:"gte=0"`
}

type AutofillRequest struct {
	FormURL  string        `json:"form_url" validate:"required,url"`
	FormName string        `json:"form_name" validate:"omitempty,max=255"`
	Count    int           `json:"count" validate:"gte=1,lte=500"`
	Submit   bool          `json:"submit"`
	Delay    time.Duration `json:"delay" validate:"gte=0"`
	Seed     uint64        `json:"seed"`
}

// ===== RESPONSES =====

type SessionResponse struct {
	ID           string               `json:"id"`
	FormURL      string               `json:"form_url"`
	FormName     string               `json:"form_name"`
	Mode         models.SessionMode   `json:"mode"`
	Status       models.SessionStatus `json:"status"`
	CurrentIndex int                  `json:"current_index"`
	ReviewMode   bool                 `json:"review_mode"`
	Total        int                  `json:"total"`
	Answered     int                  `json:"answered"`
	UsedFallback bool                 `json:"used_fallback"`
	CSVPath      *string              `json:"csv_path,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
	CompletedAt  *time.Time           `json:"completed_at,omitempty"`
}

type SessionListResponse struct {
	Sessions []*SessionResponse `json:"sessions"`
	Total    int64              `json:"total"`
	Limit    int                `json:"limit"`
	Offset   int                `json:"offset"`
}

// CurrentQuestionResponse describes the active question. Question is nil in
// review mode.
type CurrentQuestionResponse struct {
	Session  *SessionResponse      `json:"session"`
	Index    int                   `json:"index"`
	Question *models.Question      `json:"question,omitempty"`
	Widget   models.WidgetKind     `json:"widget,omitempty"`
	Answer   *models.ResponseValue `json:"answer,omitempty"`
	IsFirst  bool                  `json:"is_first"`
	IsLast   bool                  `json:"is_last"`
}

type TranscriptResponse struct {
	Session *SessionResponse     `json:"session"`
	Index   int                  `json:"index"`
	Value   models.ResponseValue `json:"value"`
}

type SuggestionResponse struct {
	Index int                  `json:"index"`
	Value models.ResponseValue `json:"value"`
}

type ReviewResponse struct {
	Session *SessionResponse    `json:"session"`
	Items   []survey.ReviewItem `json:"items"`
}

type ResponsesResponse struct {
	FormName  string                            `json:"form_name"`
	Questions models.QuestionSet                `json:"questions"`
	Rows      []map[string]models.ResponseValue `json:"rows"`
	Warnings  []string                          `json:"warnings,omitempty"`
}

type ExportResult struct {
	FileName    string
	ContentType string
	Data        []byte
}

type AutofillReport struct {
	FormName  string   `json:"form_name"`
	CSVPath   string   `json:"csv_path"`
	Generated int      `json:"generated"`
	Submitted int      `json:"submitted"`
	Fallback  bool     `json:"fallback"`
	Failures  []string `json:"failures,omitempty"`
}
