package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("bucket unavailable")
	err := Wrap(CodeUploadFailed, cause, "failed to upload %s", "a.png")

	if !errors.Is(err, cause) {
		t.Error("wrapped error should unwrap to its cause")
	}
	if !Is(err, CodeUploadFailed) {
		t.Errorf("Is(UPLOAD_FAILED) = false, code %q", GetCode(err))
	}
	if Message(err) != "failed to upload a.png" {
		t.Errorf("Message = %q", Message(err))
	}
}

func TestGetCodeThroughFmtWrap(t *testing.T) {
	inner := New(CodeNoItems, "no items")
	outer := fmt.Errorf("submit: %w", inner)

	if GetCode(outer) != CodeNoItems {
		t.Errorf("GetCode = %q, want %q", GetCode(outer), CodeNoItems)
	}
	if GetCode(errors.New("plain")) != "" {
		t.Error("plain errors should have no code")
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeInvalidName, http.StatusUnprocessableEntity},
		{CodeNoItems, http.StatusUnprocessableEntity},
		{CodeCaptureFailed, http.StatusUnprocessableEntity},
		{CodeInvalidOrder, http.StatusBadRequest},
		{CodeLayerNotFound, http.StatusNotFound},
		{CodeBusy, http.StatusConflict},
		{CodeUploadFailed, http.StatusBadGateway},
		{CodeSessionClosed, http.StatusGone},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := HTTPStatus(New(tt.code, "x")); got != tt.want {
				t.Errorf("HTTPStatus(%s) = %d, want %d", tt.code, got, tt.want)
			}
		})
	}
	if got := HTTPStatus(errors.New("boom")); got != http.StatusInternalServerError {
		t.Errorf("uncoded error status = %d", got)
	}
}
