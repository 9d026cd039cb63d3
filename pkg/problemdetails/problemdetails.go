package problemdetails

import (
	"fmt"
	"net/http"
)

const (
	TypeBadRequest             = "bad-request"
	TypeValidationError        = "validation-error"
	TypeUnauthorized           = "unauthorized"
	TypeForbidden              = "forbidden"
	TypeNotFound               = "not-found"
	TypeConflict               = "conflict"
	TypeInvalidStateTransition = "invalid-state-transition"
	TypeRateLimitExceeded      = "rate-limit-exceeded"
	TypeUnavailable            = "unavailable"
	TypeInternalError          = "internal-error"
)

const typeBaseURL = "https://api.marketplace.example/problems/"

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ProblemDetail struct {
	Type     string       `json:"type"`
	Title    string       `json:"title"`
	Status   int          `json:"status"`
	Detail   string       `json:"detail"`
	Instance string       `json:"instance,omitempty"`
	Errors   []FieldError `json:"errors,omitempty"`
}

func New(status int, problemType, title, detail string) *ProblemDetail {
	return &ProblemDetail{
		Type:   fmt.Sprintf("%s%s", typeBaseURL, problemType),
		Title:  title,
		Status: status,
		Detail: detail,
	}
}

func NewValidation(errors []FieldError) *ProblemDetail {
	return &ProblemDetail{
		Type:   fmt.Sprintf("%s%s", typeBaseURL, TypeValidationError),
		Title:  "Validation Failed",
		Status: http.StatusBadRequest,
		Detail: "Request validation failed",
		Errors: errors,
	}
}

// WithInstance sets the request path the problem occurred on.
func (p *ProblemDetail) WithInstance(instance string) *ProblemDetail {
	p.Instance = instance
	return p
}
