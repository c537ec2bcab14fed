package httpadapter

import (
	"net/http"

	"github.com/gaiachat/horizon-rag/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrDataQuality):
		return http.StatusUnprocessableEntity
	case domain.IsKind(err, domain.ErrMalformedModelOutput):
		return http.StatusBadGateway
	case domain.IsKind(err, domain.ErrUpstreamUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage keeps upstream details out of responses. The full error is
// logged server-side with the request id.
func errorMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "invalid request"
	case http.StatusUnprocessableEntity:
		return "the answer could not be classified, please try again"
	default:
		return "something went wrong, please try again"
	}
}
