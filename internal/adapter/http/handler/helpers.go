package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/iho/loanledger/internal/adapter/http/dto"
	"github.com/iho/loanledger/internal/calendar"
	"github.com/iho/loanledger/internal/domain"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// writeDomainError writes err with the status mapDomainError picks for it.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	writeError(w, mapDomainError(err), message, err.Error())
}

// csvHeaders prepares w for a CSV attachment.
func csvHeaders(w http.ResponseWriter, filename string) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrLoanNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrLoanClosed),
		errors.Is(err, domain.ErrOutstandingBalance):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInterestCheckLimit):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrSpanTooLarge):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidEventOrder),
		errors.Is(err, domain.ErrInvalidDate),
		errors.Is(err, domain.ErrNonPositiveAmount),
		errors.Is(err, domain.ErrAmountTooLarge),
		errors.Is(err, domain.ErrInvalidEventType),
		errors.Is(err, domain.ErrInvalidEntryKind),
		errors.Is(err, domain.ErrNarrationTooLong),
		errors.Is(err, domain.ErrInvalidRate),
		errors.Is(err, domain.ErrInvalidAllocationMode),
		errors.Is(err, domain.ErrInvalidRepaymentMode),
		errors.Is(err, domain.ErrInvalidBorrower),
		errors.Is(err, calendar.ErrInvalidDay):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON decodes a JSON body into v. An empty body leaves v untouched when allowEmpty.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any, allowEmpty bool) error {
	if r.Body == nil || r.Body == http.NoBody {
		if allowEmpty {
			return nil
		}
		return errors.New("request body is required")
	}
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

// parseDayQuery parses a YYYY-MM-DD query parameter. A missing parameter is the zero Day.
func parseDayQuery(r *http.Request, key string) (calendar.Day, error) {
	val := r.URL.Query().Get(key)
	if val == "" {
		return calendar.Day{}, nil
	}
	return calendar.Parse(val)
}
