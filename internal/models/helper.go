package models

type ExportRequest struct {
	FormName string `json:"form_name" validate:"required"`
	Format   string `json:"format" validate:"oneof=xlsx csv"`
}

// CompletionSummary is returned when a session is completed.
type CompletionSummary struct {
	SessionID     string            `json:"session_id"`
	Row           map[string]string `json:"row"`
	CSVPath       string            `json:"csv_path"`
	FormSubmitted bool              `json:"form_submitted"`
	FieldErrors   []string          `json:"field_errors,omitempty"`
	Failure       string            `json:"failure,omitempty"`
}
