// Package handlers implements the HTTP API: search runs, ad-hoc status
// and scoring analysis, keyword sets, and health probes.
package handlers

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/turtacn/aether-intel/internal/interfaces/http/middleware"
	"github.com/turtacn/aether-intel/pkg/errors"
	"github.com/turtacn/aether-intel/pkg/types/common"
)

const maxRequestBody = 1 << 20 // 1 MiB

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// respond wraps data in the standard success envelope.
func respond[T any](w http.ResponseWriter, r *http.Request, statusCode int, data T) {
	resp := common.NewSuccessResponse(data)
	resp.RequestID = middleware.ContextGetRequestID(r.Context())
	writeJSON(w, statusCode, resp)
}

// respondError maps an application error onto the envelope and the HTTP
// status derived from its code.  Only the AppError's own message reaches
// the client; wrapped causes stay in the logs.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	message := "internal server error"
	var ae *errors.AppError
	if stderrors.As(err, &ae) {
		message = ae.Message
	}
	resp := common.NewErrorResponse(string(code), message)
	resp.RequestID = middleware.ContextGetRequestID(r.Context())
	writeJSON(w, errors.HTTPStatusForCode(code), resp)
}

// decodeJSON reads a bounded request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.Wrap(err, errors.ErrCodeBadRequest, "malformed request body")
	}
	return nil
}
