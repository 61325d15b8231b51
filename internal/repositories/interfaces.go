package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/SAP-F-2025/survey-assistant/internal/models"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("record not found")

// ===== SHARED FILTER STRUCTS =====

type SessionFilters struct {
	Status    *models.SessionStatus `json:"status"`
	FormName  string                `json:"form_name"`
	DateFrom  *time.Time            `json:"date_from"`
	DateTo    *time.Time            `json:"date_to"`
	Limit     int                   `json:"limit"`
	Offset    int                   `json:"offset"`
	SortBy    string                `json:"sort_by"`    // "created_at", "updated_at", "form_name"
	SortOrder string                `json:"sort_order"` // "asc", "desc"
}

// SessionRepository persists survey session snapshots
type SessionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, session *models.SurveySession) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.SurveySession, error)
	Update(ctx context.Context, tx *gorm.DB, session *models.SurveySession) error
	Delete(ctx context.Context, tx *gorm.DB, id string) error

	List(ctx context.Context, tx *gorm.DB, filters SessionFilters) ([]*models.SurveySession, int64, error)
	CountByStatus(ctx context.Context, tx *gorm.DB, formName string) (map[models.SessionStatus]int64, error)

	// MarkCompleted records the outcome of completing a session
	MarkCompleted(ctx context.Context, tx *gorm.DB, id string, csvPath string, submitted bool, fieldErrors int, at time.Time) error
}
