package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/jbweber/homelab/gamestore/internal/result"
)

// ProblemDetails is the body of every failed request.
type ProblemDetails struct {
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// statusFor maps a failure category to its HTTP status and problem title.
func statusFor(errType result.ErrorType) (int, string) {
	switch errType {
	case result.NotFound:
		return http.StatusNotFound, "Resource Not Found"
	case result.Conflict:
		return http.StatusConflict, "Conflict"
	case result.Forbidden:
		return http.StatusForbidden, "Forbidden"
	case result.Unauthorized:
		return http.StatusUnauthorized, "Unauthorized"
	case result.InternalError:
		return http.StatusInternalServerError, "Internal Server Error"
	default:
		return http.StatusBadRequest, "Bad Request"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("failed to encode response")
	}
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ProblemDetails{Title: title, Status: status, Detail: detail}); err != nil {
		log.WithError(err).Warn("failed to encode problem response")
	}
}

func writeBadRequest(w http.ResponseWriter, detail string) {
	writeProblem(w, http.StatusBadRequest, "Bad Request", detail)
}

func writeFailure(w http.ResponseWriter, message string, errType result.ErrorType) {
	status, title := statusFor(errType)
	writeProblem(w, status, title, message)
}

// writeResult writes the value of a successful result with okStatus, or the
// mapped problem otherwise.
func writeResult[T any](w http.ResponseWriter, res result.Result[T], okStatus int) {
	if res.IsFailure() {
		writeFailure(w, res.Error(), res.ErrorType())
		return
	}
	writeJSON(w, okStatus, res.Value())
}

// writeStatus answers 204 on success.
func writeStatus(w http.ResponseWriter, status result.Status) {
	if status.IsFailure() {
		writeFailure(w, status.Error(), status.ErrorType())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeCreated answers 201 with a Location built from the new resource id.
func writeCreated[T any](w http.ResponseWriter, res result.Result[T], location func(T) string) {
	if res.IsSuccess() {
		w.Header().Set("Location", location(res.Value()))
	}
	writeResult(w, res, http.StatusCreated)
}

// urlID parses the {id} route parameter. Invalid ids are answered with 400.
func urlID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeBadRequest(w, "Invalid ID")
		return 0, false
	}
	return id, true
}

// decodeJSON reads the request body into dst. Malformed bodies are answered
// with 400.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		detail := "Invalid JSON"
		if errors.Is(err, io.EOF) {
			detail = "Request body is required"
		}
		writeBadRequest(w, detail)
		return false
	}
	return true
}

func resourcePath(collection string, id int64) string {
	return fmt.Sprintf("/api/v1/%s/%d", collection, id)
}
