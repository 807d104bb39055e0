package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWriteError_AppError(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, ErrInvalidOTP)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Fatalf("content-type = %q", ct)
	}
	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["code"] != "INVALID_OTP" || body["message"] != "Invalid or expired OTP." {
		t.Fatalf("unexpected body %v", body)
	}
	if _, ok := body["detail"]; ok {
		t.Fatalf("detail should be omitted when empty")
	}
}

func TestWriteError_GenericIsInternal(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, stderrors.New("db down"))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
}

func TestWriteError_WrappedAppError(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, fmt.Errorf("controller: %w", ErrUserExists))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestWithDetailDoesNotMutateBase(t *testing.T) {
	cp := ErrBadRequest.WithDetail("email is required")
	if ErrBadRequest.Detail != "" {
		t.Fatalf("base error mutated")
	}
	if cp.Detail != "email is required" || cp.Code != ErrBadRequest.Code {
		t.Fatalf("unexpected copy %+v", cp)
	}

	cause := stderrors.New("boom")
	wc := ErrInternalServerError.WithCause(cause)
	if !stderrors.Is(wc, cause) {
		t.Fatalf("cause not unwrapped")
	}
	if ErrInternalServerError.Err != nil {
		t.Fatalf("base error mutated")
	}
}
