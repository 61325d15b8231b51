package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/survey-assistant/internal/models"
	"github.com/SAP-F-2025/survey-assistant/internal/repositories"
	"github.com/SAP-F-2025/survey-assistant/internal/storage"
	"github.com/SAP-F-2025/survey-assistant/internal/validator"
)

const (
	contentTypeCSV  = "text/csv"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type responseService struct {
	repo      repositories.SessionRepository
	csv       *storage.CSVStore
	validator *validator.Validator
	logger    *slog.Logger
}

func NewResponseService(repo repositories.SessionRepository, csv *storage.CSVStore, validator *validator.Validator, logger *slog.Logger) ResponseService {
	return &responseService{
		repo:      repo,
		csv:       csv,
		validator: validator,
		logger:    logger,
	}
}

// Load reads a form's responses file and rebuilds typed answers. The
// question set of the most recent session for the form is used when one
// exists; otherwise every column is read as a short answer.
func (s *responseService) Load(ctx context.Context, formName string) (*ResponsesResponse, error) {
	formName = strings.TrimSpace(formName)
	if formName == "" {
		return nil, ValidationErrors{*NewValidationError("form_name", "is required", formName)}
	}

	table, err := s.csv.Load(formName)
	if err != nil {
		return nil, err
	}

	questions := s.questionsFor(ctx, formName, table)
	stores, err := table.Sessions(questions)

	resp := &ResponsesResponse{
		FormName:  formName,
		Questions: questions,
		Rows:      make([]map[string]models.ResponseValue, 0, len(stores)),
	}
	if err != nil {
		for _, line := range strings.Split(err.Error(), "\n") {
			resp.Warnings = append(resp.Warnings, line)
		}
		s.logger.WarnContext(ctx, "Responses file has malformed cells",
			"form_name", formName,
			"warnings", len(resp.Warnings),
		)
	}

	for _, store := range stores {
		row := make(map[string]models.ResponseValue, questions.Len())
		for _, idx := range store.Indices() {
			v, _ := store.Get(idx)
			row[questions[idx].Text] = v
		}
		resp.Rows = append(resp.Rows, row)
	}
	return resp, nil
}

// questionsFor prefers a stored question set whose texts cover the header
func (s *responseService) questionsFor(ctx context.Context, formName string, table *storage.Table) models.QuestionSet {
	list, _, err := s.repo.List(ctx, nil, repositories.SessionFilters{
		FormName:  formName,
		Limit:     1,
		SortBy:    "created_at",
		SortOrder: "desc",
	})
	if err != nil || len(list) == 0 {
		return table.Questions()
	}

	qs, err := list[0].QuestionSet()
	if err != nil || !coversHeader(qs, table.Header) {
		return table.Questions()
	}
	return qs
}

func coversHeader(qs models.QuestionSet, header []string) bool {
	texts := make(map[string]bool, len(qs))
	for _, q := range qs {
		texts[q.Text] = true
	}
	for _, h := range header {
		if !texts[h] {
			return false
		}
	}
	return true
}

// Export returns the raw responses file or its spreadsheet rendering.
func (s *responseService) Export(ctx context.Context, req *models.ExportRequest) (*ExportResult, error) {
	if req.Format == "" {
		req.Format = "xlsx"
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	switch req.Format {
	case "csv":
		data, err := s.csv.ReadFile(req.FormName)
		if err != nil {
			return nil, err
		}
		return &ExportResult{FileName: req.FormName + ".csv", ContentType: contentTypeCSV, Data: data}, nil

	case "xlsx":
		table, err := s.csv.Load(req.FormName)
		if err != nil {
			return nil, err
		}
		data, err := storage.ExportXLSX(table)
		if err != nil {
			return nil, err
		}
		s.logger.InfoContext(ctx, "Exported responses", "form_name", req.FormName, "rows", len(table.Records))
		return &ExportResult{FileName: req.FormName + ".xlsx", ContentType: contentTypeXLSX, Data: data}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, req.Format)
}
