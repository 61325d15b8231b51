package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/survey-assistant/internal/assistant"
	"github.com/SAP-F-2025/survey-assistant/internal/formfill"
	"github.com/SAP-F-2025/survey-assistant/internal/models"
	"github.com/SAP-F-2025/survey-assistant/internal/source"
	"github.com/SAP-F-2025/survey-assistant/internal/storage"
	"github.com/SAP-F-2025/survey-assistant/internal/survey"
	"github.com/SAP-F-2025/survey-assistant/internal/utils"
	"github.com/SAP-F-2025/survey-assistant/internal/validator"
	"github.com/google/uuid"
)

// AutofillDeps wires the bulk generator. Asker is optional; without it text
// questions get the fallback answer.
type AutofillDeps struct {
	Source    source.QuestionSource
	CSV       *storage.CSVStore
	Asker     assistant.Asker
	Submitter *formfill.Submitter
	Drivers   DriverFactory
	Validator *validator.Validator
	Logger    *slog.Logger

	FetchTimeout time.Duration
}

type autofillService struct {
	AutofillDeps
	svcLogger *ServiceLogger
}

func NewAutofillService(deps AutofillDeps) AutofillService {
	if deps.FetchTimeout <= 0 {
		deps.FetchTimeout = 15 * time.Second
	}
	return &autofillService{
		AutofillDeps: deps,
		svcLogger:    NewServiceLogger(deps.Logger, LogConfig{Service: "survey-assistant", Component: "autofill"}),
	}
}

// Run answers the form Count times with generated answers. Each response is
// appended to the form's responses file and, when requested, submitted. A
// failing submission is recorded in the report and the run goes on; a
// cancelled context stops the run between responses.
func (s *autofillService) Run(ctx context.Context, req *AutofillRequest) (report *AutofillReport, err error) {
	op := s.svcLogger.WithOperation(ctx, "autofill", "")
	defer func() { op.LogResult("", err) }()

	if err = s.Validator.Validate(req); err != nil {
		return nil, err
	}
	if req.Submit && (s.Submitter == nil || s.Drivers == nil) {
		return nil, NewBusinessRuleError("submission_unavailable", "form submission is not configured", nil)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.FetchTimeout)
	loaded := source.LoadWithFallback(fetchCtx, s.Source, req.FormURL, utils.NewSlogLogger(s.Logger))
	cancel()
	if !loaded.Fallback {
		if verr := s.Validator.Question().ValidateSet(loaded.Questions); verr != nil {
			s.Logger.WarnContext(ctx, "Fetched questions are unusable, using sample questions",
				"form_url", req.FormURL,
				"error", verr,
			)
			loaded = source.LoadResult{Questions: survey.SampleQuestions(), Fallback: true, Err: verr}
		}
	}
	if loaded.Fallback && req.Submit {
		return nil, fmt.Errorf("cannot submit sample answers to %s: %w", req.FormURL, loaded.Err)
	}

	formName := storage.FormNameFromURL(req.FormURL)
	if req.FormName != "" {
		formName = storage.SanitizeFormName(req.FormName)
	}
	report = &AutofillReport{FormName: formName, Fallback: loaded.Fallback}

	seed := req.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	responder := assistant.NewResponder(s.Asker, utils.NewSlogLogger(s.Logger), seed)

	for i := 0; i < req.Count; i++ {
		if i > 0 && req.Delay > 0 {
			select {
			case <-ctx.Done():
				return report, ctx.Err()
			case <-time.After(req.Delay):
			}
		}
		if err = ctx.Err(); err != nil {
			return report, err
		}

		sess, err := s.generate(ctx, responder, req.FormURL, formName, loaded.Questions)
		if err != nil {
			report.Failures = append(report.Failures, fmt.Sprintf("response %d: %v", i+1, err))
			continue
		}

		path, err := s.CSV.Append(formName, sess.Row())
		if err != nil {
			return report, fmt.Errorf("failed to save responses: %w", err)
		}
		report.CSVPath = path
		report.Generated++

		if req.Submit {
			driver, derr := s.Drivers(req.FormURL, sess.Questions())
			if derr != nil {
				report.Failures = append(report.Failures, fmt.Sprintf("response %d: %v", i+1, derr))
				continue
			}
			result := s.Submitter.Submit(ctx, driver, sess.Questions(), sess.Store())
			if result.Success {
				report.Submitted++
			} else {
				report.Failures = append(report.Failures, fmt.Sprintf("response %d: %v", i+1, result.Err))
			}
		}

		s.Logger.InfoContext(ctx, "Generated response",
			"form_name", formName,
			"number", i+1,
			"of", req.Count,
		)
	}
	return report, nil
}

// generate fills a fresh session and walks it to completion.
func (s *autofillService) generate(ctx context.Context, responder *assistant.Responder, formURL, formName string, qs models.QuestionSet) (*survey.Session, error) {
	sess, err := survey.NewSession(uuid.NewString(), formURL, formName, models.ModeNormal, qs)
	if err != nil {
		return nil, err
	}
	for idx, q := range qs {
		if err := sess.Answer(idx, responder.AutoAnswer(ctx, q)); err != nil {
			return nil, err
		}
	}
	if err := sess.Finish(); err != nil {
		return nil, err
	}
	if err := sess.Complete(); err != nil {
		return nil, err
	}
	return sess, nil
}
