package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coronacion-creator/colegio-api/internal/models"
	appErrors "github.com/coronacion-creator/colegio-api/pkg/errors"
)

// ContextOutcomeKey carries the business outcome of a transactional
// operation through the gin context so metrics middleware can label it.
const ContextOutcomeKey = "operationOutcome"

// Envelope represents the common response contract.
type Envelope struct {
	Data       interface{}            `json:"data,omitempty"`
	Error      *appErrors.Error       `json:"error,omitempty"`
	Pagination *models.Pagination     `json:"pagination,omitempty"`
	Meta       map[string]interface{} `json:"meta,omitempty"`
}

// JSON sends a success response with optional pagination metadata.
func JSON(c *gin.Context, status int, data interface{}, pagination *models.Pagination, meta ...map[string]interface{}) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	envelope := Envelope{Data: data, Pagination: pagination}
	if len(meta) > 0 && meta[0] != nil {
		envelope.Meta = meta[0]
	}
	c.JSON(status, envelope)
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data, nil)
}

// Operation sends the result of a transactional operation. Business-rule
// rejections ride the same 200 with success=false; the flag is authoritative,
// callers never parse the message.
func Operation(c *gin.Context, result *models.OperationResult) {
	if result.Success {
		c.Set(ContextOutcomeKey, "ok")
	} else {
		c.Set(ContextOutcomeKey, "rejected")
	}
	JSON(c, http.StatusOK, result, nil)
}

// Error sends an error response converting the error to the common structure.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	if appErrors.IsContention(appErr) {
		c.Set(ContextOutcomeKey, "contention")
	} else {
		c.Set(ContextOutcomeKey, "error")
	}
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(appErr.Status, Envelope{Error: appErr})
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
