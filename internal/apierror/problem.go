// Package apierror renders API failures as RFC 9457 problem details
// (https://www.rfc-editor.org/rfc/rfc9457.html).
package apierror

// ProblemDetails is an RFC 9457 problem with stride's extension members
type ProblemDetails struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`

	// RequestID echoes X-Request-ID so clients can quote it in bug reports
	RequestID string `json:"request_id,omitempty"`
	// UserMessage is safe to show in the app as-is
	UserMessage string `json:"user_message,omitempty"`
	// RetryAfter is in seconds and mirrors the Retry-After header
	RetryAfter *int `json:"retry_after,omitempty"`
	// Action hints what the client should do next: "authenticate" or "retry_later"
	Action string       `json:"action,omitempty"`
	Errors []FieldError `json:"errors,omitempty"`
}

// FieldError describes one invalid request field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func (p *ProblemDetails) Error() string {
	if p.Detail != "" {
		return p.Detail
	}
	return p.Title
}
