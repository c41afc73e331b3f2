// Package errhttp maps domain sentinel errors to HTTP status codes.
// Add a case to mapErrorToStatus for each new domain sentinel error.
package errhttp

import (
	"errors"
	"net/http"

	"github.com/ghuser/eggledger/pkg/httpx"
	accountdomain "github.com/ghuser/eggledger/services/account/domain"
	ledgerdomain "github.com/ghuser/eggledger/services/ledger/domain"
)

// WriteError maps err to an HTTP status code and writes a JSON error response.
// Uses errors.Is() so wrapped sentinel errors are matched correctly.
// Defaults to 500 Internal Server Error for unrecognized errors (typically
// datastore failures), whose details are not surfaced to the client.
func WriteError(w http.ResponseWriter, err error) {
	status := mapErrorToStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = http.StatusText(http.StatusInternalServerError)
	}
	httpx.JSONError(w, status, msg)
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, ledgerdomain.ErrBatchNotFound),
		errors.Is(err, ledgerdomain.ErrSaleNotFound):
		return http.StatusNotFound // 404
	case errors.Is(err, ledgerdomain.ErrInsufficientStock):
		return http.StatusBadRequest // 400: stock policy violation, not a missing resource
	case errors.Is(err, ledgerdomain.ErrBatchBusy),
		errors.Is(err, ledgerdomain.ErrBatchInUse),
		errors.Is(err, ledgerdomain.ErrBatchExists),
		errors.Is(err, accountdomain.ErrUsernameTaken):
		return http.StatusConflict // 409
	case errors.Is(err, ledgerdomain.ErrInvalidBatch),
		errors.Is(err, ledgerdomain.ErrInvalidSale),
		errors.Is(err, accountdomain.ErrInvalidUser):
		return http.StatusUnprocessableEntity // 422
	case errors.Is(err, accountdomain.ErrInvalidCredentials):
		return http.StatusUnauthorized // 401
	default:
		return http.StatusInternalServerError // 500
	}
}
