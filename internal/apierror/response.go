package apierror

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ContentTypeProblemJSON is the MIME type for RFC 9457 Problem Details.
const ContentTypeProblemJSON = "application/problem+json"

// WriteProblem writes problem as the response. Instance defaults to the
// request path, and RetryAfter is mirrored into the Retry-After header.
func WriteProblem(c *gin.Context, problem *ProblemDetails) {
	if problem.Instance == "" && c.Request != nil {
		problem.Instance = c.Request.URL.Path
	}

	c.Header("Content-Type", ContentTypeProblemJSON)
	if problem.RetryAfter != nil {
		c.Header("Retry-After", strconv.Itoa(*problem.RetryAfter))
	}

	c.JSON(problem.Status, problem)
}

// GetRequestID returns the request ID set by the logging middleware, falling
// back to the inbound X-Request-ID header.
func GetRequestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	return c.GetHeader("X-Request-ID")
}

func newProblem(problemURN, requestID, detail, userMessage string) *ProblemDetails {
	t := catalog[problemURN]
	return &ProblemDetails{
		Type:        problemURN,
		Title:       t.title,
		Status:      t.status,
		Detail:      detail,
		RequestID:   requestID,
		UserMessage: userMessage,
	}
}

// NewValidationError reports every field that failed binding validation
func NewValidationError(requestID string, errors []FieldError) *ProblemDetails {
	p := newProblem(TypeValidation, requestID, "One or more fields failed validation", "Please check your input and try again")
	p.Errors = errors
	return p
}

// NewBadRequestError is for bodies that could not be parsed at all
func NewBadRequestError(requestID, detail, userMessage string) *ProblemDetails {
	return newProblem(TypeBadRequest, requestID, detail, userMessage)
}

// NewInvalidUUIDError rejects a malformed identifier in the path or body
func NewInvalidUUIDError(requestID, field, value string) *ProblemDetails {
	p := newProblem(TypeInvalidUUID, requestID,
		fmt.Sprintf("Invalid UUID format for field '%s': '%s'", field, value),
		"Invalid identifier format")
	p.Errors = []FieldError{{Field: field, Message: "must be a valid UUID", Code: "invalid_uuid"}}
	return p
}

// NewFutureDateError rejects a check-in or progress entry dated after the user's today
func NewFutureDateError(requestID, field string) *ProblemDetails {
	p := newProblem(TypeFutureDate, requestID,
		fmt.Sprintf("Field '%s' is later than today", field),
		"You can't log progress for a day that hasn't happened yet")
	p.Errors = []FieldError{{Field: field, Message: "date cannot be in the future", Code: "future_date"}}
	return p
}

// NewUnknownEventError rejects an event type reserved for the engine
func NewUnknownEventError(requestID, eventType string) *ProblemDetails {
	p := newProblem(TypeUnknownEvent, requestID,
		fmt.Sprintf("Event type '%s' is reserved", eventType),
		"This activity can't be recorded")
	p.Errors = []FieldError{{Field: "event_type", Message: "is reserved and cannot be recorded by clients", Code: "reserved_event"}}
	return p
}

// NewUnauthorizedError asks the client to sign in again
func NewUnauthorizedError(requestID string) *ProblemDetails {
	p := newProblem(TypeUnauthorized, requestID, "Authentication is required to access this resource", "Please sign in to continue")
	p.Action = "authenticate"
	return p
}

// NewNotFoundError covers missing rows and rows owned by someone else alike
func NewNotFoundError(requestID, resource, id string) *ProblemDetails {
	return newProblem(TypeNotFound, requestID,
		fmt.Sprintf("%s with ID '%s' was not found", resource, id),
		fmt.Sprintf("The requested %s could not be found", resource))
}

// NewRateLimitError tells the client how many seconds to wait
func NewRateLimitError(requestID string, retryAfter int) *ProblemDetails {
	p := newProblem(TypeRateLimit, requestID,
		fmt.Sprintf("Rate limit exceeded. Please retry after %d seconds", retryAfter),
		"Too many requests. Please wait before trying again.")
	p.RetryAfter = &retryAfter
	p.Action = "retry_later"
	return p
}

// NewInternalError hides the cause; callers log the real error first
func NewInternalError(requestID string) *ProblemDetails {
	return newProblem(TypeInternal, requestID, "An unexpected error occurred", "Something went wrong. Please try again later.")
}
