package httpadapter

import (
	"net/http"

	"github.com/okanyild/listingflow/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrListingNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrJobFailed):
		return http.StatusUnprocessableEntity
	case domain.IsKind(err, domain.ErrJobTimeout):
		return http.StatusGatewayTimeout
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
