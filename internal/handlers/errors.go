package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/JonnyWalker81/stride/backend/internal/apierror"
	"github.com/JonnyWalker81/stride/backend/internal/logger"
	"github.com/JonnyWalker81/stride/backend/internal/repository"
	"github.com/JonnyWalker81/stride/backend/internal/service"
)

// currentUser returns the authenticated user ID, writing a 401 when there is none
func currentUser(c *gin.Context) (string, bool) {
	userID, exists := c.Get("user_id")
	if id, ok := userID.(string); exists && ok && id != "" {
		return id, true
	}
	apierror.WriteProblem(c, apierror.NewUnauthorizedError(apierror.GetRequestID(c)))
	return "", false
}

// pathID reads and validates a UUID path parameter, writing a 400 when it is malformed
func pathID(c *gin.Context, field string) (string, bool) {
	id := c.Param("id")
	if err := service.ValidateID(id); err != nil {
		apierror.WriteProblem(c, apierror.NewInvalidUUIDError(apierror.GetRequestID(c), field, id))
		return "", false
	}
	return id, true
}

// writeServiceError maps service errors to problem responses. Unknown errors are
// logged and hidden behind a generic 500.
func writeServiceError(c *gin.Context, err error, resource, id string) {
	requestID := apierror.GetRequestID(c)

	switch {
	case errors.Is(err, repository.ErrNotFound):
		apierror.WriteProblem(c, apierror.NewNotFoundError(requestID, resource, id))
	case errors.Is(err, service.ErrFutureDate):
		apierror.WriteProblem(c, apierror.NewFutureDateError(requestID, "date"))
	default:
		logger.Ctx(c.Request.Context()).Error("request failed",
			logger.String("resource", resource),
			logger.String("id", id),
			logger.Err(err),
		)
		apierror.WriteProblem(c, apierror.NewInternalError(requestID))
	}
}

func init() {
	// Report validation failures by their JSON names
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

// writeBindError turns binding failures into problems. Validation failures list
// every offending field; malformed JSON is a plain 400.
func writeBindError(c *gin.Context, err error) {
	requestID := apierror.GetRequestID(c)

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		apierror.WriteProblem(c, apierror.NewBadRequestError(requestID, err.Error(), "Please check your input and try again"))
		return
	}

	fields := make([]apierror.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apierror.FieldError{
			Field:   fe.Field(),
			Message: validationMessage(fe),
			Code:    fe.Tag(),
		})
	}
	apierror.WriteProblem(c, apierror.NewValidationError(requestID, fields))
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
