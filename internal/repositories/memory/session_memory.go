// Package memory keeps sessions in process memory. It backs the server when
// no database is configured.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/SAP-F-2025/survey-assistant/internal/models"
	"github.com/SAP-F-2025/survey-assistant/internal/repositories"
	"gorm.io/gorm"
)

type SessionMemory struct {
	mu       sync.RWMutex
	sessions map[string]models.SurveySession
	now      func() time.Time
}

func NewSessionMemory() *SessionMemory {
	return &SessionMemory{sessions: make(map[string]models.SurveySession), now: time.Now}
}

var _ repositories.SessionRepository = (*SessionMemory)(nil)

func (m *SessionMemory) Create(_ context.Context, _ *gorm.DB, session *models.SurveySession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sessions[session.ID]; exists {
		return fmt.Errorf("session %s already exists", session.ID)
	}
	now := m.now()
	session.CreatedAt = now
	session.UpdatedAt = now
	m.sessions[session.ID] = *session
	return nil
}

func (m *SessionMemory) GetByID(_ context.Context, _ *gorm.DB, id string) (*models.SurveySession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, repositories.ErrNotFound)
	}
	return &s, nil
}

func (m *SessionMemory) Update(_ context.Context, _ *gorm.DB, session *models.SurveySession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev, ok := m.sessions[session.ID]
	if !ok {
		return fmt.Errorf("session %s: %w", session.ID, repositories.ErrNotFound)
	}
	session.CreatedAt = prev.CreatedAt
	session.UpdatedAt = m.now()
	m.sessions[session.ID] = *session
	return nil
}

func (m *SessionMemory) Delete(_ context.Context, _ *gorm.DB, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return fmt.Errorf("session %s: %w", id, repositories.ErrNotFound)
	}
	delete(m.sessions, id)
	return nil
}

func (m *SessionMemory) List(_ context.Context, _ *gorm.DB, filters repositories.SessionFilters) ([]*models.SurveySession, int64, error) {
	m.mu.RLock()
	var out []*models.SurveySession
	for _, s := range m.sessions {
		if matches(s, filters) {
			s := s
			out = append(out, &s)
		}
	}
	m.mu.RUnlock()

	asc := filters.SortOrder == "asc"
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		var less bool
		switch filters.SortBy {
		case "form_name":
			less = a.FormName < b.FormName
		case "updated_at":
			less = a.UpdatedAt.Before(b.UpdatedAt)
		default:
			less = a.CreatedAt.Before(b.CreatedAt)
		}
		if asc {
			return less
		}
		return !less
	})

	total := int64(len(out))
	if filters.Offset > 0 {
		if filters.Offset >= len(out) {
			return nil, total, nil
		}
		out = out[filters.Offset:]
	}
	if filters.Limit > 0 && filters.Limit < len(out) {
		out = out[:filters.Limit]
	}
	return out, total, nil
}

func (m *SessionMemory) CountByStatus(_ context.Context, _ *gorm.DB, formName string) (map[models.SessionStatus]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	counts := make(map[models.SessionStatus]int64)
	for _, s := range m.sessions {
		if formName == "" || s.FormName == formName {
			counts[s.Status]++
		}
	}
	return counts, nil
}

func (m *SessionMemory) MarkCompleted(_ context.Context, _ *gorm.DB, id string, csvPath string, submitted bool, fieldErrors int, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return fmt.Errorf("session %s: %w", id, repositories.ErrNotFound)
	}
	s.Status = models.SessionSubmitted
	s.CSVPath = &csvPath
	s.FormSubmitted = submitted
	s.SubmissionErrors = fieldErrors
	s.CompletedAt = &at
	s.UpdatedAt = m.now()
	m.sessions[id] = s
	return nil
}

func matches(s models.SurveySession, f repositories.SessionFilters) bool {
	if f.Status != nil && s.Status != *f.Status {
		return false
	}
	if f.FormName != "" && s.FormName != f.FormName {
		return false
	}
	if f.DateFrom != nil && s.CreatedAt.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && s.CreatedAt.After(*f.DateTo) {
		return false
	}
	return true
}
