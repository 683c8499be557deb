package httputil

import "net/http"

// StatusWriter wraps http.ResponseWriter to capture the status code written,
// defaulting to 200 if the body is written before WriteHeader is called.
type StatusWriter struct {
	http.ResponseWriter
	Status  int
	written bool
}

func NewStatusWriter(w http.ResponseWriter) *StatusWriter {
	return &StatusWriter{ResponseWriter: w, Status: http.StatusOK}
}

func (sw *StatusWriter) WriteHeader(status int) {
	if sw.written {
		return
	}
	sw.Status = status
	sw.written = true
	sw.ResponseWriter.WriteHeader(status)
}

func (sw *StatusWriter) Write(b []byte) (int, error) {
	if !sw.written {
		sw.WriteHeader(http.StatusOK)
	}
	return sw.ResponseWriter.Write(b)
}
