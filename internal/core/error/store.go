package errx

import (
	"database/sql"
	"errors"
	"net/http"
)

// WrapStore maps position-store errors to the unified AppError type. Missing
// rows are not faults for the pipeline; only real driver errors are wrapped.
func WrapStore(err error) error {
	if err == nil || errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	return &AppError{
		Err:     err,
		Status:  http.StatusBadGateway,
		Message: StoreErrorMessage,
		Fault:   FaultQuery,
	}
}
