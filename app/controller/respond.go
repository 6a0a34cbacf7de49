package controller

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"armario-outfits/apperr"
)

const (
	maxJSONBody   = 1 << 20
	maxUploadBody = 25 << 20
)

type errorBody struct {
	Error string      `json:"error"`
	Code  apperr.Code `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("❌ Error encoding response: %v", err)
	}
}

func errorJSON(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeError maps err to a status through its apperr code. Errors without
// a code are logged and reported as 500 without leaking their text.
func writeError(w http.ResponseWriter, handler string, err error) {
	status := apperr.HTTPStatus(err)
	code := apperr.GetCode(err)
	if code == "" || status >= http.StatusInternalServerError {
		log.Errorf("❌ %s: %v", handler, err)
	} else {
		log.Warnf("⚠️  %s: %v", handler, err)
	}

	if code == "" {
		writeJSON(w, status, errorBody{Error: "internal error", Code: apperr.CodeInternal})
		return
	}
	writeJSON(w, status, errorBody{Error: apperr.Message(err), Code: code})
}

// decodeJSON reads a size-limited JSON body into v
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.New(apperr.CodeInvalidInput, "request body is empty")
		}
		return apperr.Wrap(apperr.CodeInvalidInput, err, "invalid json")
	}
	return nil
}

// readUpload returns the bytes of the multipart file field
func readUpload(w http.ResponseWriter, r *http.Request, field string) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	if err := r.ParseMultipartForm(maxUploadBody); err != nil {
		return nil, apperr.Wrap(apperr.CodeInvalidInput, err, "invalid multipart form")
	}
	file, _, err := r.FormFile(field)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInvalidInput, err, "missing %q file", field)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInvalidInput, err, "failed to read %q", field)
	}
	return data, nil
}

func int64Param(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.New(apperr.CodeInvalidInput, "%s must be a positive integer", name)
	}
	return id, nil
}
