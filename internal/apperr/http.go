package apperr

import "net/http"

// HTTPStatus maps an error kind to the status the handlers respond with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case Validation:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case ProcessorRejection:
		return http.StatusPaymentRequired
	case Network:
		return http.StatusBadGateway
	case ConflictExhausted:
		return http.StatusConflict
	case PartialCommit:
		// The order exists; the response body must make that visible.
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}
