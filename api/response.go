// Package api carries the small building blocks shared by all HTTP handlers:
// JSON encoding, the error body shape and rate limiting.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// maxBodySize caps request bodies at 1 MB
const maxBodySize = 1 << 20

// ErrorBody is the wire shape of every error response
type ErrorBody struct {
	Detail string `json:"detail"`
}

// JSON writes data as a JSON response with the given status
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// Error writes a JSON error body with the given status
func Error(w http.ResponseWriter, status int, detail string) {
	JSON(w, status, ErrorBody{Detail: detail})
}

// NoContent writes an empty 204 response
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// DecodeJSON reads one JSON value from the request body into dst
func DecodeJSON(r *http.Request, dst interface{}) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodySize)
	dec := json.NewDecoder(body)

	if err := dec.Decode(dst); err != nil {
		return err
	}

	// A second value means the body was not a single JSON document
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("body must contain a single JSON value")
	}

	return nil
}
