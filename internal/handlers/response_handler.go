package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/survey-assistant/internal/models"
	"github.com/SAP-F-2025/survey-assistant/internal/services"
	"github.com/SAP-F-2025/survey-assistant/internal/utils"
	"github.com/gin-gonic/gin"
)

type ResponseHandler struct {
	BaseHandler
	responseService services.ResponseService
}

func NewResponseHandler(responseService services.ResponseService, logger utils.Logger) *ResponseHandler {
	return &ResponseHandler{
		BaseHandler:     NewBaseHandler(logger),
		responseService: responseService,
	}
}

// GetResponses returns the stored responses of a form as typed answers
// @Router /forms/{name}/responses [get]
func (h *ResponseHandler) GetResponses(c *gin.Context) {
	name := ParseStringIDParam(c, "name")
	if name == "" {
		return
	}

	responses, err := h.responseService.Load(c.Request.Context(), name)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, responses)
}

// ExportResponses downloads a form's responses as xlsx (default) or csv
// @Router /forms/{name}/export [get]
func (h *ResponseHandler) ExportResponses(c *gin.Context) {
	name := ParseStringIDParam(c, "name")
	if name == "" {
		return
	}
	h.LogRequest(c, "Exporting responses", "form_name", name, "format", c.Query("format"))

	result, err := h.responseService.Export(c.Request.Context(), &models.ExportRequest{
		FormName: name,
		Format:   c.Query("format"),
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+result.FileName+`"`)
	c.Data(http.StatusOK, result.ContentType, result.Data)
}
