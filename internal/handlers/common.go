package handlers

import (
	"errors"
	"net/http"

	"github.com/SAP-F-2025/survey-assistant/internal/services"
	"github.com/SAP-F-2025/survey-assistant/internal/utils"
	"github.com/gin-gonic/gin"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides common logging and error mapping for all handlers
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{
		logger: logger,
	}
}

// LogRequest logs an incoming call with its request id and route
func (h *BaseHandler) LogRequest(c *gin.Context, message string, additionalFields ...interface{}) {
	fields := []interface{}{
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"request_id", utils.RequestIDFrom(c.Request.Context()),
	}
	fields = append(fields, additionalFields...)
	h.logger.DebugContext(c.Request.Context(), message, fields...)
}

// LogError logs error details with context information
func (h *BaseHandler) LogError(c *gin.Context, err error, message string, additionalFields ...interface{}) {
	fields := []interface{}{
		"request_id", utils.RequestIDFrom(c.Request.Context()),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	}
	fields = append(fields, additionalFields...)
	h.logger.LogError(err, message, fields...)
}

// RespondWithError sends a consistent error response
func (h *BaseHandler) RespondWithError(c *gin.Context, statusCode int, code, message string, details interface{}) {
	c.JSON(statusCode, ErrorResponse{
		Message: message,
		Details: details,
		Code:    code,
	})
}

// handleServiceError maps service errors onto HTTP statuses. Anything it
// does not recognise is logged and answered with a 500.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		h.RespondWithError(c, http.StatusBadRequest, "validation_failed", "Validation failed", validationErrors)
		return
	}

	var businessRuleError *services.BusinessRuleError
	if errors.As(err, &businessRuleError) {
		h.RespondWithError(c, http.StatusUnprocessableEntity, businessRuleError.Rule, businessRuleError.Message, map[string]interface{}{
			"rule":    businessRuleError.Rule,
			"context": businessRuleError.Context,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		h.RespondWithError(c, http.StatusNotFound, "session_not_found", "Session not found", nil)
	case services.IsNotFound(err):
		h.RespondWithError(c, http.StatusNotFound, "not_found", "Resource not found", err.Error())
	case services.IsValidation(err):
		h.RespondWithError(c, http.StatusBadRequest, "bad_request", "Invalid request", err.Error())
	case errors.Is(err, services.ErrSessionSubmitted):
		h.RespondWithError(c, http.StatusConflict, "session_submitted", "Session already submitted", nil)
	case services.IsConflict(err):
		h.RespondWithError(c, http.StatusConflict, "conflict", "Operation not allowed in the session's current state", err.Error())
	case errors.Is(err, services.ErrSuggestionsDisabled):
		h.RespondWithError(c, http.StatusServiceUnavailable, "suggestions_disabled", "Answer suggestions are not configured", nil)
	case services.IsUpstream(err):
		h.RespondWithError(c, http.StatusBadGateway, "upstream_error", "Upstream service failed", err.Error())
	default:
		h.LogError(c, err, "Unhandled service error")
		h.RespondWithError(c, http.StatusInternalServerError, "internal_error", "Internal server error", nil)
	}
}

// HealthCheck reports liveness
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "survey-assistant",
	})
}
