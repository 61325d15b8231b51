package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SAP-F-2025/survey-assistant/internal/assistant"
	"github.com/SAP-F-2025/survey-assistant/internal/cache"
	"github.com/SAP-F-2025/survey-assistant/internal/events"
	"github.com/SAP-F-2025/survey-assistant/internal/formfill"
	"github.com/SAP-F-2025/survey-assistant/internal/models"
	"github.com/SAP-F-2025/survey-assistant/internal/repositories"
	"github.com/SAP-F-2025/survey-assistant/internal/source"
	"github.com/SAP-F-2025/survey-assistant/internal/storage"
	"github.com/SAP-F-2025/survey-assistant/internal/survey"
	"github.com/SAP-F-2025/survey-assistant/internal/utils"
	"github.com/SAP-F-2025/survey-assistant/internal/validator"
	"github.com/google/uuid"
)

// DriverFactory opens a form driver for one submission.
type DriverFactory func(formURL string, questions models.QuestionSet) (formfill.Driver, error)

// TitleFetcher reads the display title of a form.
type TitleFetcher func(ctx context.Context, formURL string) (string, error)

type SurveyDeps struct {
	Repo      repositories.SessionRepository
	Cache     *cache.SessionCache
	Source    source.QuestionSource
	CSV       *storage.CSVStore
	Publisher events.EventPublisher
	Validator *validator.Validator
	Logger    *slog.Logger

	// Submitter and Drivers are both required for form submission; with
	// either missing, Complete only writes the responses file.
	Submitter *formfill.Submitter
	Drivers   DriverFactory
	// Titles is optional; without it form names come from the URL.
	Titles    TitleFetcher
	Responder *assistant.Responder

	FetchTimeout time.Duration
}

type surveyService struct {
	SurveyDeps
	svcLogger *ServiceLogger
	locks     *sessionLocks
	newID     func() string
	now       func() time.Time
}

func NewSurveyService(deps SurveyDeps) SurveyService {
	if deps.FetchTimeout <= 0 {
		deps.FetchTimeout = 15 * time.Second
	}
	return &surveyService{
		SurveyDeps: deps,
		svcLogger:  NewServiceLogger(deps.Logger, LogConfig{Service: "survey-assistant", Component: "survey"}),
		locks:      newSessionLocks(),
		newID:      uuid.NewString,
		now:        time.Now,
	}
}

// ===== LIFECYCLE =====

func (s *surveyService) Start(ctx context.Context, req *StartSessionRequest) (resp *SessionResponse, err error) {
	op := s.svcLogger.WithOperation(ctx, "start_session", "")
	var sessionID string
	defer func() { op.LogResult(sessionID, err) }()

	if err = s.Validator.Validate(req); err != nil {
		return nil, err
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.FetchTimeout)
	loaded := source.LoadWithFallback(fetchCtx, s.Source, req.FormURL, utils.NewSlogLogger(s.Logger))
	cancel()

	questions := loaded.Questions
	if !loaded.Fallback {
		if verr := s.Validator.Question().ValidateSet(questions); verr != nil {
			s.Logger.WarnContext(ctx, "Fetched questions are unusable, using sample questions",
				"form_url", req.FormURL,
				"error", verr,
			)
			questions = survey.SampleQuestions()
			loaded.Fallback = true
		}
	}

	sessionID = s.newID()
	sess, err := survey.NewSession(sessionID, req.FormURL, s.formName(ctx, req), req.Mode, questions)
	if err != nil {
		return nil, err
	}
	sess.UsedFallback = loaded.Fallback

	m, err := sess.ToModel()
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot session: %w", err)
	}
	if err = s.Repo.Create(ctx, nil, m); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	s.Cache.Put(ctx, m)

	s.publish(ctx, events.NewSessionStartedEvent(events.SessionStartedEvent{
		SessionID:    sessionID,
		FormURL:      req.FormURL,
		FormName:     sess.FormName,
		Mode:         string(sess.Mode),
		Questions:    questions.Len(),
		UsedFallback: sess.UsedFallback,
	}))

	return toSessionResponse(sess, m), nil
}

// formName picks the responses file name: an explicit name first, then the
// form's title, then the URL.
func (s *surveyService) formName(ctx context.Context, req *StartSessionRequest) string {
	if name := strings.TrimSpace(req.FormName); name != "" {
		return storage.SanitizeFormName(name)
	}
	if s.Titles != nil {
		fetchCtx, cancel := context.WithTimeout(ctx, s.FetchTimeout)
		defer cancel()
		title, err := s.Titles(fetchCtx, req.FormURL)
		if err == nil {
			return storage.FormNameFromTitle(title, req.FormURL)
		}
		s.Logger.DebugContext(ctx, "Form title unavailable", "form_url", req.FormURL, "error", err)
	}
	return storage.FormNameFromURL(req.FormURL)
}

func (s *surveyService) Get(ctx context.Context, id string) (*SessionResponse, error) {
	sess, m, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return toSessionResponse(sess, m), nil
}

func (s *surveyService) List(ctx context.Context, filters repositories.SessionFilters) (*SessionListResponse, error) {
	if filters.Limit <= 0 || filters.Limit > 100 {
		filters.Limit = 20
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}

	list, total, err := s.Repo.List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	out := &SessionListResponse{
		Sessions: make([]*SessionResponse, 0, len(list)),
		Total:    total,
		Limit:    filters.Limit,
		Offset:   filters.Offset,
	}
	for _, m := range list {
		sess, err := survey.SessionFromModel(m)
		if err != nil {
			s.Logger.WarnContext(ctx, "Skipping unreadable session", "session_id", m.ID, "error", err)
			continue
		}
		out.Sessions = append(out.Sessions, toSessionResponse(sess, m))
	}
	return out, nil
}

func (s *surveyService) Delete(ctx context.Context, id string) (err error) {
	op := s.svcLogger.WithOperation(ctx, "delete_session", id)
	defer func() { op.LogResult("", err) }()

	unlock := s.locks.Lock(id)
	defer unlock()

	if err = s.Repo.Delete(ctx, nil, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}
	s.Cache.Invalidate(ctx, id)
	return nil
}

func (s *surveyService) Stats(ctx context.Context, formName string) (map[models.SessionStatus]int64, error) {
	counts, err := s.Repo.CountByStatus(ctx, nil, formName)
	if err != nil {
		return nil, fmt.Errorf("failed to count sessions: %w", err)
	}
	return counts, nil
}

// ===== ANSWERING =====

func (s *surveyService) Current(ctx context.Context, id string) (*CurrentQuestionResponse, error) {
	sess, m, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := &CurrentQuestionResponse{Session: toSessionResponse(sess, m), Index: -1}
	q, idx, ok := sess.CurrentQuestion()
	if !ok {
		return resp, nil
	}
	nav := sess.Navigation()
	resp.Index = idx
	resp.Question = &q
	resp.Widget = q.Type.Widget()
	resp.IsFirst = idx == 0
	resp.IsLast = idx == nav.LastIndex()
	if v, answered := sess.Store().Get(idx); answered {
		resp.Answer = &v
	}
	return resp, nil
}

func (s *surveyService) Answer(ctx context.Context, id string, idx int, value models.ResponseValue) (*SessionResponse, error) {
	return s.mutate(ctx, "answer", id, func(sess *survey.Session) error {
		questions := sess.Questions()
		if !questions.Valid(idx) {
			return fmt.Errorf("%w: %d", survey.ErrIndexOutOfRange, idx)
		}
		if err := s.Validator.Question().ValidateAnswer(idx, questions[idx], value); err != nil {
			return err
		}
		return sess.Answer(idx, value)
	})
}

func (s *surveyService) AnswerTranscript(ctx context.Context, id string, req *TranscriptRequest) (*TranscriptResponse, error) {
	if err := s.Validator.Validate(req); err != nil {
		return nil, err
	}

	out := &TranscriptResponse{}
	resp, err := s.mutate(ctx, "answer_transcript", id, func(sess *survey.Session) error {
		idx := sess.Navigation().Current()
		if req.Index != nil {
			idx = *req.Index
		} else if sess.Navigation().InReview() {
			return fmt.Errorf("%w: index is required in review mode", ErrBadRequest)
		}
		v, err := sess.AnswerTranscript(idx, req.Transcript)
		if err != nil {
			return err
		}
		out.Index = idx
		out.Value = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	out.Session = resp
	return out, nil
}

func (s *surveyService) Suggest(ctx context.Context, id string, idx int) (*SuggestionResponse, error) {
	if s.Responder == nil {
		return nil, ErrSuggestionsDisabled
	}
	sess, _, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	questions := sess.Questions()
	if !questions.Valid(idx) {
		return nil, fmt.Errorf("%w: %d", survey.ErrIndexOutOfRange, idx)
	}
	q := questions[idx]
	if !q.Type.HasOptions() && q.Type != models.Date && q.Type != models.Time && !s.Responder.CanSuggestText() {
		return nil, ErrSuggestionsDisabled
	}
	return &SuggestionResponse{Index: idx, Value: s.Responder.AutoAnswer(ctx, q)}, nil
}

// ===== NAVIGATION =====

func (s *surveyService) Next(ctx context.Context, id string) (*SessionResponse, error) {
	return s.mutate(ctx, "next", id, func(sess *survey.Session) error {
		sess.Next()
		return nil
	})
}

func (s *surveyService) Previous(ctx context.Context, id string) (*SessionResponse, error) {
	return s.mutate(ctx, "previous", id, func(sess *survey.Session) error {
		sess.Previous()
		return nil
	})
}

func (s *surveyService) Finish(ctx context.Context, id string) (*SessionResponse, error) {
	return s.mutate(ctx, "finish", id, func(sess *survey.Session) error {
		return sess.Finish()
	})
}

func (s *surveyService) BackToQuestions(ctx context.Context, id string, target int) (*SessionResponse, error) {
	return s.mutate(ctx, "back_to_questions", id, func(sess *survey.Session) error {
		return sess.BackToQuestions(target)
	})
}

func (s *surveyService) Review(ctx context.Context, id string) (*ReviewResponse, error) {
	sess, m, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ReviewResponse{Session: toSessionResponse(sess, m), Items: sess.Review()}, nil
}

// ===== COMPLETION =====

// Complete closes a session in review: the row is appended to the form's
// responses file, the form is submitted when a driver is configured and the
// outcome is recorded. A failed submission does not fail the call; it is
// reported in the summary. Once the row is saved, a retry after a failed
// completion record does not append or submit again.
func (s *surveyService) Complete(ctx context.Context, id string) (summary *models.CompletionSummary, err error) {
	op := s.svcLogger.WithOperation(ctx, "complete_session", id)
	defer func() { op.LogResult("", err) }()

	unlock := s.locks.Lock(id)
	defer unlock()

	sess, prev, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Navigation().Submitted() {
		return nil, fmt.Errorf("%w: %s", ErrSessionSubmitted, id)
	}
	if err = sess.Complete(); err != nil {
		return nil, err
	}

	row := sess.Row()
	summary = &models.CompletionSummary{
		SessionID: id,
		Row:       row.Values,
	}
	submissionErrors := 0

	if prev.CSVPath != nil {
		summary.CSVPath = *prev.CSVPath
		summary.FormSubmitted = prev.FormSubmitted
		submissionErrors = prev.SubmissionErrors
		s.Logger.InfoContext(ctx, "Resuming session completion",
			"session_id", id,
			"csv_path", summary.CSVPath,
		)
	} else {
		csvPath, err := s.CSV.Append(sess.FormName, row)
		if err != nil {
			return nil, fmt.Errorf("failed to save responses: %w", err)
		}
		summary.CSVPath = csvPath

		if s.submissionEnabled() && !sess.UsedFallback {
			result := s.submit(ctx, sess)
			summary.FormSubmitted = result.Success
			for _, fe := range result.FieldErrors {
				summary.FieldErrors = append(summary.FieldErrors, fe.Error())
			}
			if result.Err != nil {
				summary.Failure = result.Err.Error()
			}
			s.publish(ctx, events.NewFormSubmissionEvent(events.FormSubmissionEvent{
				SessionID:   id,
				FormURL:     sess.FormURL,
				Filled:      len(result.Filled),
				FieldErrors: summary.FieldErrors,
				Failure:     summary.Failure,
			}))
		}
		submissionErrors = len(summary.FieldErrors)
		s.checkpoint(ctx, prev, summary.CSVPath, summary.FormSubmitted, submissionErrors)
	}

	if err = s.Repo.MarkCompleted(ctx, nil, id, summary.CSVPath, summary.FormSubmitted, submissionErrors, s.now().UTC()); err != nil {
		return nil, fmt.Errorf("failed to record completion: %w", err)
	}
	s.Cache.Invalidate(ctx, id)

	s.publish(ctx, events.NewSessionCompletedEvent(events.SessionCompletedEvent{
		SessionID: id,
		FormName:  sess.FormName,
		Answered:  sess.Store().Count(),
		Questions: sess.Questions().Len(),
		CSVPath:   summary.CSVPath,
		Row:       row.Values,
	}))
	return summary, nil
}

// checkpoint records that the row of a session in review was saved and how
// its submission went. The session stays in review until MarkCompleted
// succeeds.
func (s *surveyService) checkpoint(ctx context.Context, prev *models.SurveySession, csvPath string, submitted bool, fieldErrors int) {
	pending := *prev
	pending.CSVPath = &csvPath
	pending.FormSubmitted = submitted
	pending.SubmissionErrors = fieldErrors

	s.Cache.Put(ctx, &pending)
	if err := s.Repo.Update(ctx, nil, &pending); err != nil {
		s.Logger.WarnContext(ctx, "Failed to save completion checkpoint",
			"session_id", prev.ID,
			"error", err,
		)
	}
}

func (s *surveyService) submissionEnabled() bool {
	return s.Submitter != nil && s.Drivers != nil
}

func (s *surveyService) submit(ctx context.Context, sess *survey.Session) formfill.Result {
	driver, err := s.Drivers(sess.FormURL, sess.Questions())
	if err != nil {
		return formfill.Result{Err: fmt.Errorf("failed to open form: %w", err)}
	}
	return s.Submitter.Submit(ctx, driver, sess.Questions(), sess.Store())
}

// ===== HELPERS =====

// load returns the session from the cache or the repository.
func (s *surveyService) load(ctx context.Context, id string) (*survey.Session, *models.SurveySession, error) {
	m, ok := s.Cache.Get(ctx, id)
	if !ok {
		var err error
		m, err = s.Repo.GetByID(ctx, nil, id)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
			}
			return nil, nil, fmt.Errorf("failed to get session: %w", err)
		}
		s.Cache.Put(ctx, m)
	}

	sess, err := survey.SessionFromModel(m)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %w", ErrSessionCorrupted, id, err)
	}
	return sess, m, nil
}

// mutate applies fn to the session under its lock and saves the result.
func (s *surveyService) mutate(ctx context.Context, operation, id string, fn func(*survey.Session) error) (resp *SessionResponse, err error) {
	op := s.svcLogger.WithOperation(ctx, operation, id)
	defer func() { op.LogResult("", err) }()

	unlock := s.locks.Lock(id)
	defer unlock()

	sess, prev, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	// a saved row freezes the answers even before the completion is recorded
	if sess.Navigation().Submitted() || prev.CSVPath != nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionSubmitted, id)
	}
	if err = fn(sess); err != nil {
		return nil, err
	}

	m, err := sess.ToModel()
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot session: %w", err)
	}
	m.CreatedAt = prev.CreatedAt
	m.CSVPath = prev.CSVPath
	m.FormSubmitted = prev.FormSubmitted
	m.SubmissionErrors = prev.SubmissionErrors
	m.CompletedAt = prev.CompletedAt

	if err = s.Repo.Update(ctx, nil, m); err != nil {
		s.Cache.Invalidate(ctx, id)
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
		}
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	s.Cache.Put(ctx, m)
	return toSessionResponse(sess, m), nil
}

func (s *surveyService) publish(ctx context.Context, event *events.SurveyEvent) {
	if s.Publisher == nil {
		return
	}
	if err := s.Publisher.PublishSurveyEvent(ctx, event); err != nil {
		s.Logger.WarnContext(ctx, "Failed to publish survey event",
			"event_type", event.Type,
			"event_id", event.ID,
			"error", err,
		)
	}
}

func toSessionResponse(sess *survey.Session, m *models.SurveySession) *SessionResponse {
	state := sess.Navigation().State()
	return &SessionResponse{
		ID:           sess.ID,
		FormURL:      sess.FormURL,
		FormName:     sess.FormName,
		Mode:         sess.Mode,
		Status:       sess.Status(),
		CurrentIndex: state.CurrentIndex,
		ReviewMode:   state.ReviewMode,
		Total:        sess.Questions().Len(),
		Answered:     sess.Store().Count(),
		UsedFallback: sess.UsedFallback,
		CSVPath:      m.CSVPath,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
		CompletedAt:  m.CompletedAt,
	}
}
