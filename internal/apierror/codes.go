package apierror

import "net/http"

// Problem type URNs, used as the RFC 9457 "type" member
const (
	TypeValidation   = "urn:stride:error:validation"
	TypeBadRequest   = "urn:stride:error:bad_request"
	TypeInvalidUUID  = "urn:stride:error:invalid_uuid"
	TypeFutureDate   = "urn:stride:error:future_date"
	TypeUnknownEvent = "urn:stride:error:unknown_event"
	TypeUnauthorized = "urn:stride:error:unauthorized"
	TypeNotFound     = "urn:stride:error:not_found"
	TypeRateLimit    = "urn:stride:error:rate_limit"
	TypeInternal     = "urn:stride:error:internal"
)

type problemType struct {
	title  string
	status int
}

// catalog fixes the title and status of every problem type
var catalog = map[string]problemType{
	TypeValidation:   {"Validation Error", http.StatusBadRequest},
	TypeBadRequest:   {"Bad Request", http.StatusBadRequest},
	TypeInvalidUUID:  {"Invalid UUID Format", http.StatusBadRequest},
	TypeFutureDate:   {"Future Date Not Allowed", http.StatusBadRequest},
	TypeUnknownEvent: {"Reserved Event Type", http.StatusBadRequest},
	TypeUnauthorized: {"Authentication Required", http.StatusUnauthorized},
	TypeNotFound:     {"Resource Not Found", http.StatusNotFound},
	TypeRateLimit:    {"Rate Limit Exceeded", http.StatusTooManyRequests},
	TypeInternal:     {"Internal Server Error", http.StatusInternalServerError},
}

// Title returns the fixed title of a problem type
func Title(problemURN string) string {
	return catalog[problemURN].title
}
