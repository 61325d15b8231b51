package handlers

import (
	"context"
	"net/http"

	"github.com/SAP-F-2025/survey-assistant/internal/models"
	"github.com/SAP-F-2025/survey-assistant/internal/repositories"
	"github.com/SAP-F-2025/survey-assistant/internal/services"
	"github.com/SAP-F-2025/survey-assistant/internal/utils"
	"github.com/SAP-F-2025/survey-assistant/internal/validator"
	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	BaseHandler
	surveyService services.SurveyService
	validator     *validator.Validator
}

func NewSessionHandler(
	surveyService services.SurveyService,
	validator *validator.Validator,
	logger utils.Logger,
) *SessionHandler {
	return &SessionHandler{
		BaseHandler:   NewBaseHandler(logger),
		surveyService: surveyService,
		validator:     validator,
	}
}

// listSessionsQuery is the query string accepted by ListSessions
type listSessionsQuery struct {
	Status    string `form:"status" json:"status" validate:"omitempty,oneof=answering reviewing submitted"`
	FormName  string `form:"form_name" json:"form_name" validate:"omitempty,max=255"`
	Limit     int    `form:"limit" json:"limit" validate:"omitempty,gte=1,lte=100"`
	Offset    int    `form:"offset" json:"offset" validate:"gte=0"`
	SortBy    string `form:"sort_by" json:"sort_by" validate:"omitempty,oneof=created_at updated_at form_name"`
	SortOrder string `form:"sort_order" json:"sort_order" validate:"omitempty,oneof=asc desc"`
}

// StartSession fetches the form's questions and opens a session on them
// @Router /sessions [post]
func (h *SessionHandler) StartSession(c *gin.Context) {
	h.LogRequest(c, "Starting session")

	var req services.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "invalid_payload", "Invalid request payload", err.Error())
		return
	}

	session, err := h.surveyService.Start(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// GetSession retrieves a session by ID
// @Router /sessions/{id} [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	session, err := h.surveyService.Get(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// ListSessions lists sessions, newest first unless sort_by says otherwise
// @Router /sessions [get]
func (h *SessionHandler) ListSessions(c *gin.Context) {
	var query listSessionsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "invalid_query", "Invalid query parameters", err.Error())
		return
	}
	if err := h.validator.Validate(&query); err != nil {
		h.handleServiceError(c, err)
		return
	}

	filters := repositories.SessionFilters{
		FormName:  query.FormName,
		Limit:     query.Limit,
		Offset:    query.Offset,
		SortBy:    query.SortBy,
		SortOrder: query.SortOrder,
	}
	if query.Status != "" {
		status := models.SessionStatus(query.Status)
		filters.Status = &status
	}

	list, err := h.surveyService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// DeleteSession drops a session snapshot
// @Router /sessions/{id} [delete]
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	h.LogRequest(c, "Deleting session", "session_id", id)

	if err := h.surveyService.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetStats counts sessions per status, optionally for one form
// @Router /sessions/stats [get]
func (h *SessionHandler) GetStats(c *gin.Context) {
	formName := c.Query("form_name")
	stats, err := h.surveyService.Stats(c.Request.Context(), formName)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"form_name": formName,
		"counts":    stats,
	})
}

// GetCurrentQuestion describes the question being answered
// @Router /sessions/{id}/current [get]
func (h *SessionHandler) GetCurrentQuestion(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	current, err := h.surveyService.Current(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, current)
}

// SubmitAnswer records the answer to one question
// @Router /sessions/{id}/answers/{index} [put]
func (h *SessionHandler) SubmitAnswer(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	idx, ok := ParseIndexParam(c, "index")
	if !ok {
		return
	}
	h.LogRequest(c, "Submitting answer", "session_id", id, "index", idx)

	var req services.AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "invalid_payload", "Invalid request payload", err.Error())
		return
	}

	session, err := h.surveyService.Answer(c.Request.Context(), id, idx, req.Value)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// SubmitTranscript answers a question from a spoken transcript
// @Router /sessions/{id}/transcript [post]
func (h *SessionHandler) SubmitTranscript(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	var req services.TranscriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "invalid_payload", "Invalid request payload", err.Error())
		return
	}

	resp, err := h.surveyService.AnswerTranscript(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SuggestAnswer proposes an answer without recording it
// @Router /sessions/{id}/answers/{index}/suggestion [get]
func (h *SessionHandler) SuggestAnswer(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	idx, ok := ParseIndexParam(c, "index")
	if !ok {
		return
	}

	suggestion, err := h.surveyService.Suggest(c.Request.Context(), id, idx)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, suggestion)
}

// Next moves to the following question
// @Router /sessions/{id}/next [post]
func (h *SessionHandler) Next(c *gin.Context) {
	h.navigate(c, h.surveyService.Next)
}

// Previous moves back one question
// @Router /sessions/{id}/previous [post]
func (h *SessionHandler) Previous(c *gin.Context) {
	h.navigate(c, h.surveyService.Previous)
}

// Finish enters review
// @Router /sessions/{id}/finish [post]
func (h *SessionHandler) Finish(c *gin.Context) {
	h.navigate(c, h.surveyService.Finish)
}

// BackToQuestions leaves review for the given question
// @Router /sessions/{id}/back [post]
func (h *SessionHandler) BackToQuestions(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	var req services.BackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "invalid_payload", "Invalid request payload", err.Error())
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	session, err := h.surveyService.BackToQuestions(c.Request.Context(), id, req.Target)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// GetReview lists every question with its answer
// @Router /sessions/{id}/review [get]
func (h *SessionHandler) GetReview(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	review, err := h.surveyService.Review(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

// CompleteSession persists the answers and submits them to the form
// @Router /sessions/{id}/complete [post]
func (h *SessionHandler) CompleteSession(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	h.LogRequest(c, "Completing session", "session_id", id)

	summary, err := h.surveyService.Complete(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *SessionHandler) navigate(c *gin.Context, move func(ctx context.Context, id string) (*services.SessionResponse, error)) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	session, err := move(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}
