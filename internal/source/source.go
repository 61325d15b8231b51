package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/SAP-F-2025/survey-assistant/internal/models"
	"github.com/SAP-F-2025/survey-assistant/internal/survey"
	"github.com/SAP-F-2025/survey-assistant/internal/utils"
	"github.com/go-resty/resty/v2"
)

// ErrFetchFailure is returned when a question source cannot deliver a usable
// question set.
var ErrFetchFailure = errors.New("failed to fetch questions")

// QuestionSource delivers the question set of a form.
type QuestionSource interface {
	Fetch(ctx context.Context, formURL string) (models.QuestionSet, error)
}

// StaticSource always returns the same questions.
type StaticSource struct {
	Questions models.QuestionSet
}

func (s StaticSource) Fetch(_ context.Context, _ string) (models.QuestionSet, error) {
	if s.Questions.Len() == 0 {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailure, survey.ErrEmptyQuestionSet)
	}
	return s.Questions.Clone(), nil
}

// FileSource reads questions from disk. Files holding a JSON array of
// extractor records are decoded as such; anything else is read as a list of
// pages in the line format.
type FileSource struct {
	Path string
}

func (s FileSource) Fetch(_ context.Context, _ string) (models.QuestionSet, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailure, err)
	}
	qs, err := ParseQuestions(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFetchFailure, filepath.Base(s.Path), err)
	}
	return qs, nil
}

// ParseQuestions decodes either extractor records or line-format pages.
func ParseQuestions(data []byte) (models.QuestionSet, error) {
	text := strings.TrimSpace(string(data))
	inner := strings.TrimSpace(strings.TrimPrefix(text, "["))
	if strings.HasPrefix(text, "[") && strings.HasPrefix(inner, "{") {
		return survey.DecodeQuestionRecords([]byte(text))
	}
	pages, err := survey.ParseQuestionPages(text)
	if err != nil {
		return nil, err
	}
	qs := survey.JoinPages(pages)
	if qs.Len() == 0 {
		return nil, survey.ErrEmptyQuestionSet
	}
	return qs, nil
}

// HTTPSource asks an extraction service for the questions of a form. The
// service answers GET {endpoint}?url={formURL} with a JSON array of records.
type HTTPSource struct {
	client   *resty.Client
	endpoint string
}

func NewHTTPSource(endpoint string, timeout time.Duration) *HTTPSource {
	client := resty.New()
	client.SetTimeout(timeout)
	client.SetHeader("Accept", "application/json")
	return &HTTPSource{client: client, endpoint: endpoint}
}

func (s *HTTPSource) Fetch(ctx context.Context, formURL string) (models.QuestionSet, error) {
	res, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("url", formURL).
		Get(s.endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailure, err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("%w: %s responded %s", ErrFetchFailure, s.endpoint, res.Status())
	}
	qs, err := survey.DecodeQuestionRecords(res.Body())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailure, err)
	}
	return qs, nil
}

// LoadResult is the outcome of LoadWithFallback.
type LoadResult struct {
	Questions models.QuestionSet
	// Fallback is set when Questions is the built-in sample because the
	// source failed; Err then holds the source's error.
	Fallback bool
	Err      error
}

// LoadWithFallback fetches from src and substitutes the sample question set
// when the fetch fails.
func LoadWithFallback(ctx context.Context, src QuestionSource, formURL string, logger utils.Logger) LoadResult {
	qs, err := src.Fetch(ctx, formURL)
	if err == nil && qs.Len() > 0 {
		return LoadResult{Questions: qs}
	}
	if err == nil {
		err = fmt.Errorf("%w: %w", ErrFetchFailure, survey.ErrEmptyQuestionSet)
	}
	logger.WarnContext(ctx, "Question source failed, using sample questions",
		"form_url", formURL,
		"error", err,
	)
	return LoadResult{Questions: survey.SampleQuestions(), Fallback: true, Err: err}
}
