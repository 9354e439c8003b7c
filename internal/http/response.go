package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fintrack/internal/log"
	"fintrack/internal/schema"
	"fintrack/internal/services"
)

type BadRequestErrorResponse struct {
	Message string              `json:"message"`
	Details []schema.FieldError `json:"details"`
}

func RespondWithError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{
		"message": message,
	})
}

// RespondWithValidationError writes a 400 listing the rejected fields.
func RespondWithValidationError(c *gin.Context, err error) {
	ctx := c.Request.Context()
	log.FromContext(ctx).WithComponent(log.ComponentHTTP).InfoContext(ctx, "Request rejected",
		log.FieldOperation, log.OpValidate,
		log.FieldPath, c.FullPath(),
		log.FieldError, err,
		log.FieldErrorType, log.ErrorTypeValidation)

	var verr *schema.ValidationError
	if !errors.As(err, &verr) {
		RespondWithError(c, http.StatusBadRequest, "Invalid request data")
		return
	}
	c.JSON(http.StatusBadRequest, BadRequestErrorResponse{
		Message: "Invalid request data",
		Details: verr.Fields,
	})
}

// RespondWithServiceError maps a record service error onto a status code.
// Store errors are logged, never sent.
func RespondWithServiceError(c *gin.Context, err error, fallback string) {
	ctx := c.Request.Context()
	logger := log.FromContext(ctx).WithComponent(log.ComponentHTTP)

	switch services.Classify(err) {
	case services.OutcomeNotFound:
		logger.DebugContext(ctx, "Record not found",
			log.FieldPath, c.FullPath(),
			log.FieldError, err,
			log.FieldErrorType, log.ErrorTypeNotFound)
		RespondWithError(c, http.StatusNotFound, err.Error())
	default:
		logger.ErrorContext(ctx, "Request failed",
			log.FieldPath, c.FullPath(),
			log.FieldError, err,
			log.FieldErrorType, log.ErrorTypeDatabase)
		RespondWithError(c, http.StatusInternalServerError, fallback)
	}
}
