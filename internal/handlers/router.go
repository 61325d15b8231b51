package handlers

import (
	"github.com/SAP-F-2025/survey-assistant/internal/services"
	"github.com/SAP-F-2025/survey-assistant/internal/utils"
	"github.com/SAP-F-2025/survey-assistant/internal/validator"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	sessionHandler  *SessionHandler
	responseHandler *ResponseHandler
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		sessionHandler:  NewSessionHandler(serviceManager.Survey(), validator, logger),
		responseHandler: NewResponseHandler(serviceManager.Responses(), logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", HealthCheck)

	v1 := router.Group("/api/v1")
	{
		sessions := v1.Group("/sessions")
		{
			sessions.POST("", hm.sessionHandler.StartSession)
			sessions.GET("", hm.sessionHandler.ListSessions)
			sessions.GET("/stats", hm.sessionHandler.GetStats)
			sessions.GET("/:id", hm.sessionHandler.GetSession)
			sessions.DELETE("/:id", hm.sessionHandler.DeleteSession)

			// Answering
			sessions.GET("/:id/current", hm.sessionHandler.GetCurrentQuestion)
			sessions.PUT("/:id/answers/:index", hm.sessionHandler.SubmitAnswer)
			sessions.GET("/:id/answers/:index/suggestion", hm.sessionHandler.SuggestAnswer)
			sessions.POST("/:id/transcript", hm.sessionHandler.SubmitTranscript)

			// Navigation and review
			sessions.POST("/:id/next", hm.sessionHandler.Next)
			sessions.POST("/:id/previous", hm.sessionHandler.Previous)
			sessions.POST("/:id/finish", hm.sessionHandler.Finish)
			sessions.POST("/:id/back", hm.sessionHandler.BackToQuestions)
			sessions.GET("/:id/review", hm.sessionHandler.GetReview)
			sessions.POST("/:id/complete", hm.sessionHandler.CompleteSession)
		}

		forms := v1.Group("/forms")
		{
			forms.GET("/:name/responses", hm.responseHandler.GetResponses)
			forms.GET("/:name/export", hm.responseHandler.ExportResponses)
		}
	}
}
