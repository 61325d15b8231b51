package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SAP-F-2025/survey-assistant/internal/models"
	"github.com/SAP-F-2025/survey-assistant/internal/repositories"
	"gorm.io/gorm"
)

type SessionPostgreSQL struct {
	db *gorm.DB
}

func NewSessionPostgreSQL(db *gorm.DB) repositories.SessionRepository {
	return &SessionPostgreSQL{db: db}
}

func (s SessionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, session *models.SurveySession) error {
	db := s.getDB(tx)
	return db.WithContext(ctx).Create(session).Error
}

func (s SessionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.SurveySession, error) {
	db := s.getDB(tx)
	var session models.SurveySession
	if err := db.WithContext(ctx).Where("id = ?", id).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("session %s: %w", id, repositories.ErrNotFound)
		}
		return nil, err
	}
	return &session, nil
}

func (s SessionPostgreSQL) Update(ctx context.Context, tx *gorm.DB, session *models.SurveySession) error {
	db := s.getDB(tx)
	return db.WithContext(ctx).Save(session).Error
}

func (s SessionPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	db := s.getDB(tx)
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&models.SurveySession{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("session %s: %w", id, repositories.ErrNotFound)
	}
	return nil
}

func (s SessionPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.SessionFilters) ([]*models.SurveySession, int64, error) {
	var sessions []*models.SurveySession
	var total int64

	// apply filter first
	query := s.getDB(tx).WithContext(ctx).Model(&models.SurveySession{})
	query = s.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// then apply pagination and sorting
	query = s.applyPaginationAndSort(query, filters)

	if err := query.Find(&sessions).Error; err != nil {
		return nil, 0, err
	}
	return sessions, total, nil
}

func (s SessionPostgreSQL) CountByStatus(ctx context.Context, tx *gorm.DB, formName string) (map[models.SessionStatus]int64, error) {
	var rows []struct {
		Status models.SessionStatus
		Count  int64
	}
	query := s.getDB(tx).WithContext(ctx).Model(&models.SurveySession{}).
		Select("status, COUNT(*) AS count").
		Group("status")
	if formName != "" {
		query = query.Where("form_name = ?", formName)
	}
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[models.SessionStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

func (s SessionPostgreSQL) MarkCompleted(ctx context.Context, tx *gorm.DB, id string, csvPath string, submitted bool, fieldErrors int, at time.Time) error {
	db := s.getDB(tx)
	res := db.WithContext(ctx).Model(&models.SurveySession{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":            models.SessionSubmitted,
			"csv_path":          csvPath,
			"form_submitted":    submitted,
			"submission_errors": fieldErrors,
			"completed_at":      at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("session %s: %w", id, repositories.ErrNotFound)
	}
	return nil
}

func (s SessionPostgreSQL) applyFilters(query *gorm.DB, filters repositories.SessionFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.FormName != "" {
		query = query.Where("form_name = ?", filters.FormName)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}
	return query
}

func (s SessionPostgreSQL) applyPaginationAndSort(query *gorm.DB, filters repositories.SessionFilters) *gorm.DB {
	sortBy := "created_at"
	switch filters.SortBy {
	case "updated_at", "form_name":
		sortBy = filters.SortBy
	}
	sortOrder := "desc"
	if filters.SortOrder == "asc" {
		sortOrder = "asc"
	}
	query = query.Order(sortBy + " " + sortOrder)

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}
	return query
}

func (s SessionPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.db
}
