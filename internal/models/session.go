package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SessionMode string

const (
	ModeNormal SessionMode = "normal"
	ModeVoice  SessionMode = "voice"
)

type SessionStatus string

const (
	SessionAnswering SessionStatus = "answering"
	SessionReviewing SessionStatus = "reviewing"
	SessionSubmitted SessionStatus = "submitted"
)

// SurveySession is the persisted snapshot of one survey-filling session.
type SurveySession struct {
	ID       string      `json:"id" gorm:"primaryKey;size:36"` // UUID
	FormURL  string      `json:"form_url" gorm:"not null;size:1000"`
	FormName string      `json:"form_name" gorm:"not null;size:255;index"`
	Mode     SessionMode `json:"mode" gorm:"default:normal;size:20"`

	// Navigation
	Status       SessionStatus `json:"status" gorm:"default:answering;index;size:20"`
	CurrentIndex int           `json:"current_index" gorm:"default:0"`
	ReviewMode   bool          `json:"review_mode" gorm:"default:false"`

	// Content
	Questions datatypes.JSON `json:"questions" gorm:"type:jsonb"` // QuestionSet
	Answers   datatypes.JSON `json:"answers" gorm:"type:jsonb"`   // map[int]ResponseValue

	// Set when the questions came from the built-in sample after a fetch failure
	UsedFallback bool `json:"used_fallback" gorm:"default:false"`

	// Completion
	CSVPath          *string    `json:"csv_path" gorm:"size:500"`
	FormSubmitted    bool       `json:"form_submitted" gorm:"default:false"`
	SubmissionErrors int        `json:"submission_errors" gorm:"default:0"`
	CompletedAt      *time.Time `json:"completed_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (SurveySession) TableName() string {
	return "survey_sessions"
}

// QuestionSet decodes the stored questions.
func (s *SurveySession) QuestionSet() (QuestionSet, error) {
	var qs QuestionSet
	if len(s.Questions) == 0 {
		return qs, nil
	}
	if err := json.Unmarshal(s.Questions, &qs); err != nil {
		return nil, fmt.Errorf("failed to decode questions of session %s: %w", s.ID, err)
	}
	return qs, nil
}

// AnswerMap decodes the stored answers.
func (s *SurveySession) AnswerMap() (map[int]ResponseValue, error) {
	answers := make(map[int]ResponseValue)
	if len(s.Answers) == 0 {
		return answers, nil
	}
	if err := json.Unmarshal(s.Answers, &answers); err != nil {
		return nil, fmt.Errorf("failed to decode answers of session %s: %w", s.ID, err)
	}
	return answers, nil
}

func (s *SurveySession) SetQuestions(qs QuestionSet) error {
	data, err := json.Marshal(qs)
	if err != nil {
		return fmt.Errorf("failed to encode questions: %w", err)
	}
	s.Questions = datatypes.JSON(data)
	return nil
}

func (s *SurveySession) SetAnswers(answers map[int]ResponseValue) error {
	data, err := json.Marshal(answers)
	if err != nil {
		return fmt.Errorf("failed to encode answers: %w", err)
	}
	s.Answers = datatypes.JSON(data)
	return nil
}
