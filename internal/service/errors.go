package service

import (
	"errors"
	"net/http"
	"sort"

	"go-marketplace/internal/domain"
	"go-marketplace/pkg/problemdetails"
	"go-marketplace/pkg/serrors"

	"github.com/go-kratos/kratos/v2/log"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// errMissingRequester is returned when the gateway did not set the seller header.
var errMissingRequester = serrors.With(serrors.ErrUnauthorized, "missing or invalid %s header", SellerIDHeader)

// problemFor maps an error to its problem response. Errors without a kind
// are logged and reported without their message.
func problemFor(r *http.Request, err error, logger *log.Helper) *problemdetails.ProblemDetail {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return problemdetails.NewValidation(fieldErrors(verrs)).WithInstance(r.URL.Path)
	}

	var p *problemdetails.ProblemDetail
	switch serrors.KindOf(err) {
	case serrors.ErrBadRequest:
		p = problemdetails.New(http.StatusBadRequest, problemdetails.TypeBadRequest, "Bad Request", err.Error())
	case serrors.ErrUnauthorized:
		p = problemdetails.New(http.StatusUnauthorized, problemdetails.TypeUnauthorized, "Unauthorized", err.Error())
	case serrors.ErrForbidden:
		p = problemdetails.New(http.StatusForbidden, problemdetails.TypeForbidden, "Forbidden", err.Error())
	case serrors.ErrNotFound:
		p = problemdetails.New(http.StatusNotFound, problemdetails.TypeNotFound, "Not Found", err.Error())
	case serrors.ErrConflict:
		p = problemdetails.New(http.StatusConflict, problemdetails.TypeConflict, "Conflict", err.Error())
	case domain.ErrKindInvalidStateTransition:
		p = problemdetails.New(http.StatusUnprocessableEntity, problemdetails.TypeInvalidStateTransition, "Invalid State Transition", err.Error())
	case serrors.ErrUnavailable:
		p = problemdetails.New(http.StatusServiceUnavailable, problemdetails.TypeUnavailable, "Service Unavailable", "A dependency is unavailable, retry later")
	default:
		logger.WithContext(r.Context()).Errorf("%s %s failed: %v", r.Method, r.URL.Path, err)
		p = problemdetails.New(http.StatusInternalServerError, problemdetails.TypeInternalError, "Internal Server Error", "Internal server error")
	}
	return p.WithInstance(r.URL.Path)
}

func fieldErrors(verrs validation.Errors) []problemdetails.FieldError {
	out := make([]problemdetails.FieldError, 0, len(verrs))
	for field, err := range verrs {
		var nested validation.Errors
		if errors.As(err, &nested) {
			for _, fe := range fieldErrors(nested) {
				out = append(out, problemdetails.FieldError{Field: field + "." + fe.Field, Message: fe.Message})
			}
			continue
		}
		out = append(out, problemdetails.FieldError{Field: field, Message: err.Error()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}

func writeError(w http.ResponseWriter, r *http.Request, err error, logger *log.Helper) {
	WriteProblem(w, problemFor(r, err, logger))
}
