// Package httputil provides the shared response envelope, client-IP
// extraction and pooled-client helpers used across the ingress chain and
// the HTTP surface.
package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/r3e-network/metasearch/internal/platform/apierrors"
)

// ErrorResponse is the wire shape of every 4xx/5xx response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// WriteJSON writes v as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError renders err as the standard JSON error envelope. If err is not
// a *apierrors.ServiceError it is treated as an opaque internal error.
func WriteError(w http.ResponseWriter, err error) {
	se, ok := apierrors.AsServiceError(err)
	if !ok {
		se = apierrors.Internal(err)
	}
	WriteJSON(w, se.HTTPStatus, ErrorResponse{
		Code:    string(se.Code),
		Message: se.Message,
		Details: se.Details,
	})
}
